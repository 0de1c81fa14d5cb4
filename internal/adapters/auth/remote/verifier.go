// Package remote verifica tokens contra un servicio de identidad externo por HTTP.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"purrr-love/internal/platform/httpclient"
	"purrr-love/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("identity service not configured")
	ErrUnauthorized  = errors.New("identity service rejected token")
	ErrUpstream      = errors.New("identity service error")
	ErrTokenEmpty    = errors.New("token is empty")
)

const (
	DefaultVerifyPath   = "/v1/tokens/verify"
	DefaultAPIKeyHeader = "X-Api-Key"
)

type Config struct {
	BaseURL string
	APIKey  string

	// Vacíos usan DefaultVerifyPath y DefaultAPIKeyHeader.
	VerifyPath   string
	APIKeyHeader string

	Timeout time.Duration
}

// Verifier implementa auth.AuthVerifier: POST {token} al servicio y mapea la respuesta a claims.
type Verifier struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
	verifyPath   string
}

func NewVerifier(cfg Config) (*Verifier, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	key := strings.TrimSpace(cfg.APIKey)
	if base == "" || key == "" {
		return nil, ErrNotConfigured
	}

	hc, err := httpclient.New(httpclient.Options{BaseURL: base, Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}

	v := &Verifier{
		http:         hc,
		apiKey:       key,
		apiKeyHeader: strings.TrimSpace(cfg.APIKeyHeader),
		verifyPath:   strings.TrimSpace(cfg.VerifyPath),
	}
	if v.apiKeyHeader == "" {
		v.apiKeyHeader = DefaultAPIKeyHeader
	}
	if v.verifyPath == "" {
		v.verifyPath = DefaultVerifyPath
	}
	return v, nil
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.http == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var out verifyResponse
	err := v.http.DoJSON(ctx, http.MethodPost, v.verifyPath, map[string]string{
		v.apiKeyHeader:  v.apiKey,
		"Authorization": "Bearer " + token,
	}, verifyRequest{Token: token}, &out)
	if err != nil {
		if httpclient.StatusIs(err, http.StatusUnauthorized, http.StatusForbidden) {
			return auth.Claims{}, ErrUnauthorized
		}
		return auth.Claims{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	uid := strings.TrimSpace(out.UserID)
	if uid == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing user_id", ErrUpstream)
	}

	return auth.Claims{
		UserID:   uid,
		Email:    strings.TrimSpace(out.Email),
		TenantID: strings.TrimSpace(out.TenantID),
		Role:     strings.TrimSpace(out.Role),
	}, nil
}
