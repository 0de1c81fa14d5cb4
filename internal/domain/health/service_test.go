package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"purrr-love/internal/domain/pets"
	"purrr-love/internal/ports/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Fakes
// -------------------------

type fakePetRepo struct {
	byID map[string]pets.Pet
	// calls cuenta ListByOwner para verificar hits de cache
	calls int
	// onList corre dentro de ListByOwner (escritura concurrente simulada)
	onList func()
}

func (r *fakePetRepo) Create(ctx context.Context, p pets.Pet) error {
	r.byID[p.ID] = p
	return nil
}

func (r *fakePetRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return pets.Pet{}, storage.ErrNotFound
	}
	return p, nil
}

func (r *fakePetRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	r.calls++
	if r.onList != nil {
		r.onList()
	}
	out := make([]pets.Pet, 0)
	for _, p := range r.byID {
		if p.OwnerUserID == ownerUserID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeLogRepo struct {
	logs  []Log
	limit int
}

func (r *fakeLogRepo) ListByPet(ctx context.Context, petID string, limit int) ([]Log, error) {
	r.limit = limit
	out := make([]Log, 0)
	for _, l := range r.logs {
		if l.PetID == petID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeCache struct {
	items map[string]Dashboard
	err   error
}

func (c *fakeCache) Get(ctx context.Context, ownerUserID string) (Dashboard, bool, error) {
	if c.err != nil {
		return Dashboard{}, false, c.err
	}
	d, ok := c.items[ownerUserID]
	return d, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, ownerUserID string, d Dashboard) error {
	if c.err != nil {
		return c.err
	}
	c.items[ownerUserID] = d
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, ownerUserID string) error {
	delete(c.items, ownerUserID)
	return nil
}

func seedPets() *fakePetRepo {
	checked := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	earlier := checked.Add(-24 * time.Hour)
	return &fakePetRepo{byID: map[string]pets.Pet{
		"a": {ID: "a", OwnerUserID: "u1", Stats: pets.Stats{Health: 90, Happiness: 90, Energy: 90}},
		"b": {ID: "b", OwnerUserID: "u1", Stats: pets.Stats{Health: 40, Happiness: 90, Energy: 90}, LastHealthCheck: &checked},
		"c": {ID: "c", OwnerUserID: "u1", Stats: pets.Stats{Health: 40, Happiness: 90, Energy: 90}, LastHealthCheck: &earlier},
		"d": {ID: "d", OwnerUserID: "u1", Stats: pets.Stats{Health: 40, Happiness: 90, Energy: 90}},
		"x": {ID: "x", OwnerUserID: "u2", Stats: pets.Stats{Health: 10}},
	}}
}

// -------------------------
// Tests
// -------------------------

func TestService_Dashboard_OrderAndSummary(t *testing.T) {
	repo := seedPets()
	svc := NewService(&fakeLogRepo{}, pets.NewService(repo))

	d, err := svc.Dashboard(context.Background(), "u1")
	require.NoError(t, err)

	ids := make([]string, 0, len(d.Pets))
	for _, p := range d.Pets {
		ids = append(ids, p.ID)
	}
	// health asc; empate por último chequeo asc con los nunca chequeados primero
	assert.Equal(t, []string{"d", "c", "b", "a"}, ids)
	assert.Equal(t, 4, d.Summary.TotalCats)
	assert.Equal(t, 1, d.Summary.HealthyCats)
	assert.Equal(t, 3, d.Summary.AtRiskCats)
	assert.Equal(t, 53, d.Summary.AverageHealth) // 210/4 = 52.5
}

func TestService_Dashboard_UsesCacheUntilInvalidated(t *testing.T) {
	repo := seedPets()
	cache := &fakeCache{items: map[string]Dashboard{}}
	svc := NewService(&fakeLogRepo{}, pets.NewService(repo), WithCache(cache))
	ctx := context.Background()

	_, err := svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls, "second call must be served from cache")

	svc.Invalidate(ctx, "u1")
	_, err = svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestService_Dashboard_CacheErrorsFallBackToStore(t *testing.T) {
	repo := seedPets()
	cache := &fakeCache{items: map[string]Dashboard{}, err: errors.New("redis down")}
	svc := NewService(&fakeLogRepo{}, pets.NewService(repo), WithCache(cache))

	d, err := svc.Dashboard(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, d.Pets, 4)
}

func TestService_Dashboard_SkipsSetWhenInvalidatedMidRead(t *testing.T) {
	repo := seedPets()
	cache := &fakeCache{items: map[string]Dashboard{}}
	svc := NewService(&fakeLogRepo{}, pets.NewService(repo), WithCache(cache))
	ctx := context.Background()

	repo.onList = func() { svc.Invalidate(ctx, "u1") }
	_, err := svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cache.items, "a read that raced an invalidation must not be cached")

	repo.onList = nil
	_, err = svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, cache.items, "u1")
}

func TestService_ListLogs_OwnershipAndLimit(t *testing.T) {
	repo := seedPets()
	logs := &fakeLogRepo{logs: []Log{{ID: "l1", PetID: "a"}, {ID: "l2", PetID: "x"}}}
	svc := NewService(logs, pets.NewService(repo))
	ctx := context.Background()

	items, err := svc.ListLogs(ctx, "u1", "a", 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "l1", items[0].ID)
	assert.Equal(t, DefaultListLimit, logs.limit)

	_, err = svc.ListLogs(ctx, "u1", "a", 5000)
	require.NoError(t, err)
	assert.Equal(t, MaxListLimit, logs.limit)

	_, err = svc.ListLogs(ctx, "u1", "x", 10)
	assert.ErrorIs(t, err, pets.ErrNotFound, "another owner's pet is reported as not found")
}
