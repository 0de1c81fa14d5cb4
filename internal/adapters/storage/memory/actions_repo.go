package memory

import (
	"context"
	"sync"

	"purrr-love/internal/domain/economy"
	"purrr-love/internal/domain/health"
)

// actionLogRepo guarda el ledger de juegos y compras.
type actionLogRepo struct {
	mu    sync.RWMutex
	items []economy.ActionLog
}

func newActionLogRepo() *actionLogRepo {
	return &actionLogRepo{}
}

// ListByOwner devuelve el ledger del owner, lo último insertado primero.
func (r *actionLogRepo) ListByOwner(ctx context.Context, ownerID string, limit int) ([]economy.ActionLog, error) {
	limit = health.NormalizeLimit(limit)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]economy.ActionLog, 0)
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		if r.items[i].OwnerID == ownerID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}
