package memory

import (
	"context"
	"maps"
	"time"

	"purrr-love/internal/domain/economy"
	"purrr-love/internal/domain/health"
	"purrr-love/internal/domain/owners"
	"purrr-love/internal/domain/pets"
	"purrr-love/internal/ports/storage"
)

// unitOfWork serializa transacciones tomando los locks de escritura de todos los
// repos en orden fijo (owners, pets, logs, actions). Las escrituras se acumulan
// en el tx y se aplican solo si fn devuelve nil.
type unitOfWork struct {
	s *Store
}

func (u *unitOfWork) WithinTx(ctx context.Context, fn func(tx economy.Tx) error) error {
	s := u.s

	s.owners.mu.Lock()
	defer s.owners.mu.Unlock()
	s.pets.mu.Lock()
	defer s.pets.mu.Unlock()
	s.logs.mu.Lock()
	defer s.logs.mu.Unlock()
	s.actions.mu.Lock()
	defer s.actions.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{
		s:      s,
		owners: map[string]owners.Owner{},
		pets:   map[string]pets.Pet{},
	}
	if err := fn(tx); err != nil {
		return err
	}

	// commit
	maps.Copy(s.owners.byID, tx.owners)
	maps.Copy(s.pets.byID, tx.pets)
	for _, l := range tx.logs {
		s.logs.byPet[l.PetID] = append(s.logs.byPet[l.PetID], l)
	}
	s.actions.items = append(s.actions.items, tx.actions...)
	return nil
}

// memTx lee primero lo staged y después el estado comprometido.
// Los locks ya los tiene WithinTx.
type memTx struct {
	s *Store

	owners  map[string]owners.Owner
	pets    map[string]pets.Pet
	logs    []health.Log
	actions []economy.ActionLog
}

func (t *memTx) GetOwnerForUpdate(ctx context.Context, id string) (owners.Owner, error) {
	if o, ok := t.owners[id]; ok {
		return o, nil
	}
	o, ok := t.s.owners.byID[id]
	if !ok {
		return owners.Owner{}, storage.ErrNotFound
	}
	return o, nil
}

func (t *memTx) GetPetForUpdate(ctx context.Context, id string) (pets.Pet, error) {
	if p, ok := t.pets[id]; ok {
		return p, nil
	}
	p, ok := t.s.pets.byID[id]
	if !ok {
		return pets.Pet{}, storage.ErrNotFound
	}
	return p, nil
}

func (t *memTx) UpdatePetStats(ctx context.Context, p pets.Pet) error {
	cur, err := t.GetPetForUpdate(ctx, p.ID)
	if err != nil {
		return err
	}
	cur.Stats = p.Stats
	cur.Vitals = p.Vitals
	cur.LastHealthCheck = p.LastHealthCheck
	cur.UpdatedAt = p.UpdatedAt
	t.pets[p.ID] = cur
	return nil
}

func (t *memTx) AdjustOwnerCoins(ctx context.Context, id string, delta int64, at time.Time) (int64, error) {
	o, err := t.GetOwnerForUpdate(ctx, id)
	if err != nil {
		return 0, err
	}
	if o.Coins+delta < 0 {
		return 0, storage.ErrNegativeBalance
	}
	o.Coins += delta
	o.UpdatedAt = at
	t.owners[id] = o
	return o.Coins, nil
}

func (t *memTx) InsertHealthLog(ctx context.Context, l health.Log) error {
	t.logs = append(t.logs, l)
	return nil
}

func (t *memTx) InsertActionLog(ctx context.Context, l economy.ActionLog) error {
	t.actions = append(t.actions, l)
	return nil
}
