// Package jwt implementa auth.AuthVerifier con tokens HS256 firmados con un secreto compartido.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"purrr-love/internal/ports/auth"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrSecretMissing = errors.New("jwt secret is required")
	ErrInvalidToken  = errors.New("invalid token")
)

// Claims acepta el id en "sub" o en "user_id" (tokens emitidos por el sitio viejo).
type Claims struct {
	UserID   string `json:"user_id,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
	gojwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

type Options struct {
	Secret string
	// Issuer opcional; si viene, el token tiene que traer el mismo "iss".
	Issuer string
	Leeway time.Duration
}

func NewVerifier(opts Options) (*Verifier, error) {
	secret := strings.TrimSpace(opts.Secret)
	if secret == "" {
		return nil, ErrSecretMissing
	}
	leeway := opts.Leeway
	if leeway <= 0 {
		leeway = 30 * time.Second
	}
	return &Verifier{secret: []byte(secret), issuer: strings.TrimSpace(opts.Issuer), leeway: leeway}, nil
}

func (v *Verifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	parserOpts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, gojwt.WithIssuer(v.issuer))
	}

	parsed, err := gojwt.ParseWithClaims(token, &Claims{}, func(*gojwt.Token) (any, error) {
		return v.secret, nil
	}, parserOpts...)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	c, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return auth.Claims{}, ErrInvalidToken
	}

	uid := strings.TrimSpace(c.Subject)
	if uid == "" {
		uid = strings.TrimSpace(c.UserID)
	}
	if uid == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return auth.Claims{
		UserID:   uid,
		Email:    strings.TrimSpace(c.Email),
		TenantID: strings.TrimSpace(c.TenantID),
		Role:     strings.TrimSpace(c.Role),
	}, nil
}

// Sign emite un token para userID. Lo usan los tests y el entorno local.
func (v *Verifier) Sign(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := Claims{
		Email: email,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    v.issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, c).SignedString(v.secret)
}
