package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"purrr-love/internal/adapters/storage/memory"
	"purrr-love/internal/domain/economy"
	"purrr-love/internal/domain/health"
	"purrr-love/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, opts router.Options) *httptest.Server {
	t.Helper()
	if opts.Store == nil {
		opts.Store = memory.NewStore()
	}
	if opts.Rand == nil {
		opts.Rand = economy.NewSeededRand(42)
	}
	ts := httptest.NewServer(router.NewRouter(opts))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_PlayShopAndHealth(t *testing.T) {
	ts := newServer(t, router.Options{StartingCoins: 100})
	owner := "owner-1"

	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Equal(t, "ok", string(body))

	// 1) catálogo público
	{
		st, body := doReq(t, ts.URL, "GET", "/catalog/games", "", nil)
		require.Equal(t, http.StatusOK, st)
		var games []map[string]any
		require.NoError(t, json.Unmarshal(body, &games))
		assert.Len(t, games, 4)

		st, body = doReq(t, ts.URL, "GET", "/catalog/store", "", nil)
		require.Equal(t, http.StatusOK, st)
		var items []map[string]any
		require.NoError(t, json.Unmarshal(body, &items))
		assert.Len(t, items, 6)
	}

	// 2) sin usuario no se adopta
	st, _ = doReq(t, ts.URL, "POST", "/pets", "", map[string]any{"name": "Milo"})
	require.Equal(t, http.StatusUnauthorized, st)

	st, _ = doReq(t, ts.URL, "POST", "/pets", owner, map[string]any{"name": "  "})
	require.Equal(t, http.StatusBadRequest, st)

	petID := adoptPet(t, ts.URL, owner, "Milo")
	assert.Equal(t, 100, getCoins(t, ts.URL, owner))

	// 3) compras hasta quedarse sin saldo (vitaminas a 30)
	for _, want := range []int{70, 40, 10} {
		st, body := doReq(t, ts.URL, "POST", "/pets/"+petID+"/purchase", owner, map[string]any{"item": "vitamin_supplements"})
		require.Equal(t, http.StatusOK, st, string(body))
		var res actionResponse
		require.NoError(t, json.Unmarshal(body, &res))
		assert.Equal(t, want, res.Coins)
		assert.Equal(t, -30, res.CoinsDelta)
		assert.Contains(t, res.Message, "Milo")
	}
	st, body = doReq(t, ts.URL, "POST", "/pets/"+petID+"/purchase", owner, map[string]any{"item": "vitamin_supplements"})
	require.Equal(t, http.StatusPaymentRequired, st)
	assert.Equal(t, "Not enough coins to purchase this item!", strings.TrimSpace(string(body)))
	assert.Equal(t, 10, getCoins(t, ts.URL, owner))

	// 4) acción desconocida y gato ajeno
	st, body = doReq(t, ts.URL, "POST", "/pets/"+petID+"/play", owner, map[string]any{"game": "fetch_the_moon"})
	require.Equal(t, http.StatusBadRequest, st)
	assert.Equal(t, "unknown action", strings.TrimSpace(string(body)))

	st, _ = doReq(t, ts.URL, "POST", "/pets/"+petID+"/play", "intruder", map[string]any{"game": "ball_toss"})
	require.Equal(t, http.StatusNotFound, st)
	st, _ = doReq(t, ts.URL, "GET", "/pets/"+petID, "intruder", nil)
	require.Equal(t, http.StatusNotFound, st)

	// 5) jugar suma coins
	st, body = doReq(t, ts.URL, "POST", "/pets/"+petID+"/play", owner, map[string]any{"game": "ball_toss"})
	require.Equal(t, http.StatusOK, st, string(body))
	var played actionResponse
	require.NoError(t, json.Unmarshal(body, &played))
	assert.GreaterOrEqual(t, played.CoinsDelta, 2)
	assert.LessOrEqual(t, played.CoinsDelta, 10)
	assert.Equal(t, 10+played.CoinsDelta, played.Coins)

	// 6) chequeo de salud: exige los cinco stats, acota y deja energía baja
	st, _ = doReq(t, ts.URL, "POST", "/pets/"+petID+"/health-checks", owner, map[string]any{"health": 50})
	require.Equal(t, http.StatusBadRequest, st)

	st, body = doReq(t, ts.URL, "POST", "/pets/"+petID+"/health-checks", owner, map[string]any{
		"health": 55, "happiness": 140, "energy": 3, "hunger": -5, "cleanliness": 80,
		"weight": 4.2, "notes": "<script>x</script>sleepy",
	})
	require.Equal(t, http.StatusCreated, st, string(body))
	var hc struct {
		Pet petResponse `json:"pet"`
		Log struct {
			Notes string `json:"notes"`
		} `json:"log"`
	}
	require.NoError(t, json.Unmarshal(body, &hc))
	assert.Equal(t, 100, hc.Pet.Stats.Happiness)
	assert.Equal(t, 0, hc.Pet.Stats.Hunger)
	assert.Equal(t, 3, hc.Pet.Stats.Energy)
	assert.Equal(t, "sleepy", hc.Log.Notes)

	// 7) con energía < 5 no se juega
	st, body = doReq(t, ts.URL, "POST", "/pets/"+petID+"/play", owner, map[string]any{"game": "laser_chase"})
	require.Equal(t, http.StatusConflict, st)
	assert.Equal(t, "your cat is too tired to play", strings.TrimSpace(string(body)))

	// 8) historial, dashboard y ledger
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID+"/health-checks", owner, nil)
		require.Equal(t, http.StatusOK, st)
		var logs []map[string]any
		require.NoError(t, json.Unmarshal(body, &logs))
		assert.Len(t, logs, 1)

		st, body = doReq(t, ts.URL, "GET", "/health/dashboard", owner, nil)
		require.Equal(t, http.StatusOK, st)
		var dash struct {
			Pets    []petResponse `json:"pets"`
			Summary struct {
				TotalCats      int `json:"total_cats"`
				AtRiskCats     int `json:"at_risk_cats"`
				AverageHealth  int `json:"average_health"`
				NeedsAttention int `json:"needs_attention"`
			} `json:"summary"`
		}
		require.NoError(t, json.Unmarshal(body, &dash))
		assert.Equal(t, 1, dash.Summary.TotalCats)
		assert.Equal(t, 1, dash.Summary.AtRiskCats)
		assert.Equal(t, 55, dash.Summary.AverageHealth)
		assert.Equal(t, 1, dash.Summary.NeedsAttention)

		st, body = doReq(t, ts.URL, "GET", "/me/actions", owner, nil)
		require.Equal(t, http.StatusOK, st)
		var actions []map[string]any
		require.NoError(t, json.Unmarshal(body, &actions))
		require.Len(t, actions, 4)
		// más reciente primero: el juego y después las tres compras
		assert.Equal(t, "ball_toss", actions[0]["action"])
		assert.EqualValues(t, 10+played.CoinsDelta, actions[0]["coins_after"])
		assert.EqualValues(t, 10, actions[1]["coins_after"])
		assert.EqualValues(t, 70, actions[3]["coins_after"])

		st, body = doReq(t, ts.URL, "GET", "/me/actions?limit=1", owner, nil)
		require.Equal(t, http.StatusOK, st)
		require.NoError(t, json.Unmarshal(body, &actions))
		require.Len(t, actions, 1)
		assert.Equal(t, "ball_toss", actions[0]["action"])
	}
}

type mapCache struct {
	mu    sync.Mutex
	items map[string]health.Dashboard
	hits  int
}

func (c *mapCache) Get(_ context.Context, owner string) (health.Dashboard, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.items[owner]
	if ok {
		c.hits++
	}
	return d, ok, nil
}

func (c *mapCache) Set(_ context.Context, owner string, d health.Dashboard) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[owner] = d
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, owner string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, owner)
	return nil
}

func TestHTTP_DashboardCacheInvalidatedOnChanges(t *testing.T) {
	cache := &mapCache{items: map[string]health.Dashboard{}}
	ts := newServer(t, router.Options{DashboardCache: cache})
	owner := "owner-2"

	adoptPet(t, ts.URL, owner, "Luna")
	st, body := doReq(t, ts.URL, "GET", "/health/dashboard", owner, nil)
	require.Equal(t, http.StatusOK, st)
	assert.Contains(t, string(body), `"total_cats":1`)

	// segunda lectura sale del cache
	st, _ = doReq(t, ts.URL, "GET", "/health/dashboard", owner, nil)
	require.Equal(t, http.StatusOK, st)
	assert.Equal(t, 1, cache.hits)

	petID := adoptPet(t, ts.URL, owner, "Sol")
	st, body = doReq(t, ts.URL, "GET", "/health/dashboard", owner, nil)
	require.Equal(t, http.StatusOK, st)
	assert.Contains(t, string(body), `"total_cats":2`)

	// un juego también invalida
	st, _ = doReq(t, ts.URL, "POST", "/pets/"+petID+"/play", owner, map[string]any{"game": "feather_play"})
	require.Equal(t, http.StatusOK, st)
	cache.mu.Lock()
	_, cached := cache.items[owner]
	cache.mu.Unlock()
	assert.False(t, cached)
}

func TestHTTP_DashboardSeesNewAdoptions(t *testing.T) {
	ts := newServer(t, router.Options{})
	owner := "owner-2"

	adoptPet(t, ts.URL, owner, "Luna")
	st, body := doReq(t, ts.URL, "GET", "/health/dashboard", owner, nil)
	require.Equal(t, http.StatusOK, st)
	assert.Contains(t, string(body), `"total_cats":1`)

	adoptPet(t, ts.URL, owner, "Sol")
	st, body = doReq(t, ts.URL, "GET", "/health/dashboard", owner, nil)
	require.Equal(t, http.StatusOK, st)
	assert.Contains(t, string(body), `"total_cats":2`)
}

func TestHTTP_PlayIsRateLimitedPerUser(t *testing.T) {
	ts := newServer(t, router.Options{PlayRatePerMinute: 1})
	petA := adoptPet(t, ts.URL, "a", "Milo")
	petB := adoptPet(t, ts.URL, "b", "Luna")

	st, _ := doReq(t, ts.URL, "POST", "/pets/"+petA+"/play", "a", map[string]any{"game": "ball_toss"})
	require.Equal(t, http.StatusOK, st)
	st, _ = doReq(t, ts.URL, "POST", "/pets/"+petA+"/play", "a", map[string]any{"game": "ball_toss"})
	require.Equal(t, http.StatusTooManyRequests, st)

	st, _ = doReq(t, ts.URL, "POST", "/pets/"+petB+"/play", "b", map[string]any{"game": "ball_toss"})
	require.Equal(t, http.StatusOK, st)
}

func TestHTTP_AdminChangesRoles(t *testing.T) {
	ts := newServer(t, router.Options{AdminUserIDs: []string{"admin-1"}})

	// user-1 existe y todavía no es admin
	_ = getCoins(t, ts.URL, "user-1")
	st, _ := doReq(t, ts.URL, "GET", "/admin/support/tickets", "user-1", nil)
	require.Equal(t, http.StatusForbidden, st)

	st, _ = doReq(t, ts.URL, "PATCH", "/admin/owners/admin-1/role", "user-1", map[string]any{"role": "user"})
	require.Equal(t, http.StatusForbidden, st)
	st, _ = doReq(t, ts.URL, "PATCH", "/admin/owners/user-1/role", "", map[string]any{"role": "admin"})
	require.Equal(t, http.StatusUnauthorized, st)
	st, _ = doReq(t, ts.URL, "PATCH", "/admin/owners/user-1/role", "admin-1", map[string]any{"role": "owner"})
	require.Equal(t, http.StatusBadRequest, st)
	st, _ = doReq(t, ts.URL, "PATCH", "/admin/owners/ghost/role", "admin-1", map[string]any{"role": "admin"})
	require.Equal(t, http.StatusNotFound, st)

	st, body := doReq(t, ts.URL, "PATCH", "/admin/owners/user-1/role", "admin-1", map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, st, string(body))
	assert.Contains(t, string(body), `"role":"admin"`)

	st, _ = doReq(t, ts.URL, "GET", "/admin/support/tickets", "user-1", nil)
	require.Equal(t, http.StatusOK, st)

	st, body = doReq(t, ts.URL, "GET", "/me", "user-1", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Contains(t, string(body), `"role":"admin"`)
}

func TestHTTP_SupportTickets(t *testing.T) {
	ts := newServer(t, router.Options{AdminUserIDs: []string{"admin-1"}})

	st, body := doReq(t, ts.URL, "POST", "/support/tickets", "", map[string]any{
		"name": "", "email": "nope", "subject": "help", "message": "short",
	})
	require.Equal(t, http.StatusBadRequest, st)
	var verr struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(body, &verr))
	assert.Contains(t, verr.Errors, "Name is required")
	assert.Contains(t, verr.Errors, "Please enter a valid email address")
	assert.Contains(t, verr.Errors, "Message must be at least 10 characters long")

	st, body = doReq(t, ts.URL, "POST", "/support/tickets", "user-1", map[string]any{
		"name": "Ana", "email": "ana@example.com", "subject": "Milo is sad",
		"message": "He will not play with the laser anymore.", "priority": "high",
	})
	require.Equal(t, http.StatusCreated, st, string(body))
	var ticket struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(body, &ticket))
	assert.Equal(t, "open", ticket.Status)

	st, body = doReq(t, ts.URL, "GET", "/support/tickets", "user-1", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Contains(t, string(body), ticket.ID)

	st, _ = doReq(t, ts.URL, "GET", "/admin/support/tickets", "", nil)
	require.Equal(t, http.StatusUnauthorized, st)
	st, _ = doReq(t, ts.URL, "GET", "/admin/support/tickets", "user-1", nil)
	require.Equal(t, http.StatusForbidden, st)

	st, body = doReq(t, ts.URL, "GET", "/admin/support/tickets?status=open", "admin-1", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Contains(t, string(body), ticket.ID)

	st, _ = doReq(t, ts.URL, "PATCH", "/admin/support/tickets/"+ticket.ID, "admin-1", map[string]any{"status": "bogus"})
	require.Equal(t, http.StatusBadRequest, st)
	st, body = doReq(t, ts.URL, "PATCH", "/admin/support/tickets/"+ticket.ID, "admin-1", map[string]any{"status": "resolved"})
	require.Equal(t, http.StatusOK, st)
	assert.Contains(t, string(body), `"status":"resolved"`)
	st, _ = doReq(t, ts.URL, "PATCH", "/admin/support/tickets/missing", "admin-1", map[string]any{"status": "closed"})
	require.Equal(t, http.StatusNotFound, st)
}

type petResponse struct {
	ID    string `json:"id"`
	Stats struct {
		Health    int `json:"health"`
		Happiness int `json:"happiness"`
		Energy    int `json:"energy"`
		Hunger    int `json:"hunger"`
	} `json:"stats"`
}

type actionResponse struct {
	Pet        petResponse `json:"pet"`
	Coins      int         `json:"coins"`
	CoinsDelta int         `json:"coins_delta"`
	Message    string      `json:"message"`
}

func adoptPet(t *testing.T, baseURL, userID, name string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", userID, map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, st, string(body))

	var p petResponse
	require.NoError(t, json.Unmarshal(body, &p))
	require.NotEmpty(t, p.ID)
	assert.Equal(t, 100, p.Stats.Health)
	assert.Equal(t, 0, p.Stats.Hunger)
	return p.ID
}

func getCoins(t *testing.T, baseURL, userID string) int {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/me", userID, nil)
	require.Equal(t, http.StatusOK, st)
	var me struct {
		Coins int `json:"coins"`
	}
	require.NoError(t, json.Unmarshal(body, &me))
	return me.Coins
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
