package middleware

import (
	"context"
	"net/http"
	"strings"

	"purrr-love/internal/platform/logger"
	"purrr-love/internal/ports/auth"
)

// DebugUserHeader identifica al usuario en modo dev (sin verifier).
const DebugUserHeader = "X-Debug-User-ID"

type ctxKey string

const claimsKey ctxKey = "claims"

// AuthContext resuelve la identidad del request y la deja en el contexto.
// Con verifier nil se toma el usuario de DebugUserHeader; si no, de un Bearer token.
// Nunca corta el request: los handlers deciden si responden 401.
func AuthContext(verifier auth.AuthVerifier, log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := resolveClaims(r, verifier, log)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func resolveClaims(r *http.Request, verifier auth.AuthVerifier, log logger.Logger) (auth.Claims, bool) {
	if verifier == nil {
		uid := strings.TrimSpace(r.Header.Get(DebugUserHeader))
		return auth.Claims{UserID: uid}, uid != ""
	}

	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return auth.Claims{}, false
	}

	claims, err := verifier.Verify(r.Context(), token)
	if err != nil {
		log.Debug("token rejected", map[string]any{"path": r.URL.Path, "err": err})
		return auth.Claims{}, false
	}
	claims.UserID = strings.TrimSpace(claims.UserID)
	if claims.UserID == "" {
		return auth.Claims{}, false
	}
	return claims, true
}

// WithClaims guarda claims en ctx. Claims sin usuario no se guardan.
func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	if strings.TrimSpace(c.UserID) == "" {
		return ctx
	}
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(auth.Claims)
	return c, ok
}

// UserID devuelve el usuario autenticado del request, si lo hay.
func UserID(ctx context.Context) (string, bool) {
	c, ok := GetClaims(ctx)
	if !ok || c.UserID == "" {
		return "", false
	}
	return c.UserID, true
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
