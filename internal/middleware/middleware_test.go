package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"purrr-love/internal/platform/logger"
	"purrr-love/internal/ports/auth"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	switch token {
	case "ok":
		return auth.Claims{UserID: " u-1 "}, nil
	case "anon":
		return auth.Claims{Email: "a@b.c"}, nil
	}
	return auth.Claims{}, errors.New("bad token")
}

func whoami(w http.ResponseWriter, r *http.Request) {
	c, ok := GetClaims(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	_, _ = w.Write([]byte(c.UserID))
}

func TestAuthContext_DevHeader(t *testing.T) {
	h := AuthContext(nil, nil)(http.HandlerFunc(whoami))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "dev-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "dev-1", rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthContext_Verifier(t *testing.T) {
	h := AuthContext(stubVerifier{}, nil)(http.HandlerFunc(whoami))

	cases := map[string]int{
		"Bearer ok":   http.StatusOK,
		"bearer ok":   http.StatusOK,
		"Bearer bad":  http.StatusUnauthorized,
		"Bearer anon": http.StatusUnauthorized,
		"Basic ok":    http.StatusUnauthorized,
		"ok":          http.StatusUnauthorized,
		"":            http.StatusUnauthorized,
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		// con verifier el header de debug se ignora
		req.Header.Set("X-Debug-User-ID", "dev-1")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, want, rr.Code, header)
	}
}

func TestAuthContext_TrimsUserAndLogsRejections(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := AuthContext(stubVerifier{}, logger.FromZap(zap.New(core)))(http.HandlerFunc(whoami))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer ok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "u-1", rr.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/pets", nil)
	req.Header.Set("Authorization", "Bearer bad")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("token rejected").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/pets", entries[0].ContextMap()["path"])
}

func TestWithClaimsAndUserID(t *testing.T) {
	ctx := context.Background()
	_, ok := UserID(ctx)
	assert.False(t, ok)

	assert.Equal(t, ctx, WithClaims(ctx, auth.Claims{Email: "x@y.z"}))

	uid, ok := UserID(WithClaims(ctx, auth.Claims{UserID: "u-9"}))
	assert.True(t, ok)
	assert.Equal(t, "u-9", uid)
}

func TestRateLimiter_PerUserBucket(t *testing.T) {
	require.Nil(t, NewRateLimiter(0))

	rl := NewRateLimiter(4) // burst 2
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("user:a"))
	assert.True(t, rl.Allow("user:a"))
	assert.False(t, rl.Allow("user:a"))
	assert.True(t, rl.Allow("user:b"))

	// 4/min = un token cada 15s
	now = now.Add(15 * time.Second)
	assert.True(t, rl.Allow("user:a"))
	assert.False(t, rl.Allow("user:a"))

	// entradas inactivas se limpian
	now = now.Add(limiterIdleTTL + time.Second)
	rl.Allow("user:c")
	rl.mu.Lock()
	_, stillThere := rl.limiters["user:b"]
	rl.mu.Unlock()
	assert.False(t, stillThere)
}

func TestRateLimiter_SweepsAtMostOncePerInterval(t *testing.T) {
	rl := NewRateLimiter(4)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("user:x")
	rl.mu.Lock()
	rl.limiters["user:x"].expires = now.Add(-time.Second)
	rl.mu.Unlock()

	has := func(key string) bool {
		rl.mu.Lock()
		defer rl.mu.Unlock()
		_, ok := rl.limiters[key]
		return ok
	}

	now = now.Add(sweepEvery / 2)
	rl.Allow("user:y")
	assert.True(t, has("user:x"), "no sweep before the interval elapses")

	now = now.Add(sweepEvery / 2)
	rl.Allow("user:y")
	assert.False(t, has("user:x"))
	assert.True(t, has("user:y"))
}

func TestRateLimiter_Handler(t *testing.T) {
	rl := NewRateLimiter(1) // burst 1
	h := AuthContext(nil, nil)(rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	do := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/pets/p1/play", nil)
		if user != "" {
			req.Header.Set("X-Debug-User-ID", user)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusNoContent, do("u-1"))
	assert.Equal(t, http.StatusTooManyRequests, do("u-1"))
	assert.Equal(t, http.StatusNoContent, do("u-2"))
	assert.Equal(t, http.StatusNoContent, do(""))
	assert.Equal(t, http.StatusTooManyRequests, do(""))
}

func TestRequestLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	h := chimw.RequestID(RequestLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pets", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, 2, logs.Len())
	first := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, first.Level)
	assert.EqualValues(t, 200, first.ContextMap()["status"])
	assert.NotEmpty(t, first.ContextMap()["request_id"])
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)
}
