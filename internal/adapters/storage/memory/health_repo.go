package memory

import (
	"context"
	"sort"
	"sync"

	"purrr-love/internal/domain/health"
)

// healthLogRepo es append-only; las inserciones llegan solo por el unit of work.
type healthLogRepo struct {
	mu    sync.RWMutex
	byPet map[string][]health.Log
}

func newHealthLogRepo() *healthLogRepo {
	return &healthLogRepo{
		byPet: make(map[string][]health.Log),
	}
}

func (r *healthLogRepo) ListByPet(ctx context.Context, petID string, limit int) ([]health.Log, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit = health.NormalizeLimit(limit)

	src := r.byPet[petID]
	out := make([]health.Log, len(src))
	copy(out, src)

	// Orden por recorded_at desc (más reciente primero)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
