package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"purrr-love/internal/domain/owners"
	"purrr-love/internal/ports/storage"
)

type ownerRepo struct {
	mu   sync.RWMutex
	byID map[string]owners.Owner
}

func newOwnerRepo() *ownerRepo {
	return &ownerRepo{
		byID: make(map[string]owners.Owner),
	}
}

func (r *ownerRepo) Create(ctx context.Context, o owners.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(o.ID) == "" {
		return errors.New("owner id required")
	}
	if _, exists := r.byID[o.ID]; exists {
		return storage.ErrAlreadyExists
	}
	r.byID[o.ID] = o
	return nil
}

func (r *ownerRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return owners.Owner{}, storage.ErrNotFound
	}
	return o, nil
}

func (r *ownerRepo) UpdateRole(ctx context.Context, id string, role owners.Role, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byID[id]
	if !ok {
		return storage.ErrNotFound
	}
	o.Role = role
	o.UpdatedAt = at
	r.byID[id] = o
	return nil
}
