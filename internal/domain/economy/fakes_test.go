package economy

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"purrr-love/internal/domain/catalog"
	"purrr-love/internal/domain/health"
	"purrr-love/internal/domain/owners"
	"purrr-love/internal/domain/pets"
	"purrr-love/internal/ports/storage"
)

// -------------------------
// Rand determinísticos
// -------------------------

// edgeRand siempre devuelve el mínimo (low) o el máximo (!low) del rango.
type edgeRand struct{ low bool }

func (r edgeRand) IntN(n int) int {
	if r.low {
		return 0
	}
	return n - 1
}

// -------------------------
// Store en memoria con staging
// -------------------------

var errBoom = errors.New("disk on fire")

type testStore struct {
	mu sync.Mutex

	owners     map[string]owners.Owner
	pets       map[string]pets.Pet
	healthLogs []health.Log
	actionLogs []ActionLog

	// failOn fuerza un error en esa operación: update_pet, adjust_coins, action_log, health_log.
	failOn string
}

func newTestStore() *testStore {
	return &testStore{
		owners: map[string]owners.Owner{},
		pets:   map[string]pets.Pet{},
	}
}

func (s *testStore) addOwner(id string, coins int64) {
	s.owners[id] = owners.Owner{ID: id, Role: owners.RoleUser, Coins: coins}
}

func (s *testStore) addPet(id, ownerID string, st pets.Stats) {
	s.pets[id] = pets.Pet{ID: id, OwnerUserID: ownerID, Name: "Milo", Stats: st}
}

func (s *testStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &testTx{
		s:      s,
		owners: maps.Clone(s.owners),
		pets:   maps.Clone(s.pets),
	}
	if err := fn(tx); err != nil {
		return err
	}

	s.owners = tx.owners
	s.pets = tx.pets
	s.healthLogs = append(s.healthLogs, tx.healthLogs...)
	s.actionLogs = append(s.actionLogs, tx.actionLogs...)
	return nil
}

type testTx struct {
	s          *testStore
	owners     map[string]owners.Owner
	pets       map[string]pets.Pet
	healthLogs []health.Log
	actionLogs []ActionLog
}

func (t *testTx) GetOwnerForUpdate(ctx context.Context, id string) (owners.Owner, error) {
	o, ok := t.owners[id]
	if !ok {
		return owners.Owner{}, storage.ErrNotFound
	}
	return o, nil
}

func (t *testTx) GetPetForUpdate(ctx context.Context, id string) (pets.Pet, error) {
	p, ok := t.pets[id]
	if !ok {
		return pets.Pet{}, storage.ErrNotFound
	}
	return p, nil
}

func (t *testTx) UpdatePetStats(ctx context.Context, p pets.Pet) error {
	if t.s.failOn == "update_pet" {
		return errBoom
	}
	t.pets[p.ID] = p
	return nil
}

func (t *testTx) AdjustOwnerCoins(ctx context.Context, id string, delta int64, at time.Time) (int64, error) {
	if t.s.failOn == "adjust_coins" {
		return 0, errBoom
	}
	o := t.owners[id]
	if o.Coins+delta < 0 {
		return 0, storage.ErrNegativeBalance
	}
	o.Coins += delta
	o.UpdatedAt = at
	t.owners[id] = o
	return o.Coins, nil
}

func (t *testTx) InsertHealthLog(ctx context.Context, l health.Log) error {
	if t.s.failOn == "health_log" {
		return errBoom
	}
	t.healthLogs = append(t.healthLogs, l)
	return nil
}

func (t *testTx) InsertActionLog(ctx context.Context, l ActionLog) error {
	if t.s.failOn == "action_log" {
		return errBoom
	}
	t.actionLogs = append(t.actionLogs, l)
	return nil
}

// -------------------------
// Helpers
// -------------------------

func testCatalog() *catalog.Catalog {
	c, err := catalog.New([]catalog.Action{
		{
			Key:  "honeysuckle_dance",
			Kind: catalog.KindGame,
			Name: "Honeysuckle Dance",
			Effects: []catalog.Effect{
				{Attribute: pets.AttrHappiness, Delta: catalog.Range{Min: 5, Max: 15}},
				{Attribute: pets.AttrEnergy, Delta: catalog.Range{Min: -20, Max: -10}},
			},
			Reward:  catalog.Range{Min: 5, Max: 15},
			Message: "{pet} danced and earned {coins} coins!",
		},
		{
			Key:  "vitamin_supplements",
			Kind: catalog.KindStoreItem,
			Name: "Vitamin Supplements",
			Cost: 30,
			Effects: []catalog.Effect{
				{Attribute: pets.AttrHealth, Delta: catalog.Fixed(15)},
				{Attribute: pets.AttrEnergy, Delta: catalog.Fixed(10)},
			},
			Message: "{pet} took vitamins for {cost} coins!",
		},
	})
	if err != nil {
		panic(err)
	}
	return c
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
