package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdentityServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != DefaultVerifyPath || r.Header.Get(DefaultAPIKeyHeader) != "key-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req verifyRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		switch req.Token {
		case "good":
			_ = json.NewEncoder(w).Encode(verifyResponse{UserID: " u-1 ", Email: "cat@purrr.love", Role: "admin"})
		case "anonymous":
			_ = json.NewEncoder(w).Encode(verifyResponse{})
		case "revoked":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewVerifier_RequiresConfig(t *testing.T) {
	_, err := NewVerifier(Config{BaseURL: "http://x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = NewVerifier(Config{BaseURL: "::bad", APIKey: "k"})
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	srv := newIdentityServer(t)
	v, err := NewVerifier(Config{BaseURL: srv.URL, APIKey: "key-1"})
	require.NoError(t, err)
	ctx := context.Background()

	c, err := v.Verify(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UserID)
	assert.Equal(t, "admin", c.Role)

	_, err = v.Verify(ctx, " ")
	assert.ErrorIs(t, err, ErrTokenEmpty)

	_, err = v.Verify(ctx, "revoked")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = v.Verify(ctx, "anonymous")
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = v.Verify(ctx, "boom")
	assert.ErrorIs(t, err, ErrUpstream)
}
