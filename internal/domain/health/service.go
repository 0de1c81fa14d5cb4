package health

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"purrr-love/internal/domain/pets"
	"purrr-love/internal/platform/logger"
)

// Dashboard es lo que ve el owner en el panel de salud.
type Dashboard struct {
	Pets        []pets.Pet
	Summary     Summary
	GeneratedAt time.Time
}

// DashboardCache guarda el dashboard por owner. Implementación en adapters/cache/redis.
type DashboardCache interface {
	Get(ctx context.Context, ownerUserID string) (Dashboard, bool, error)
	Set(ctx context.Context, ownerUserID string, d Dashboard) error
	Invalidate(ctx context.Context, ownerUserID string) error
}

type Service struct {
	logs  Repository
	pets  *pets.Service
	cache DashboardCache
	log   logger.Logger
	now   func() time.Time

	// gen cuenta invalidaciones por owner para no cachear lecturas viejas.
	mu  sync.Mutex
	gen map[string]uint64
}

type Option func(*Service)

func WithCache(c DashboardCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func NewService(logs Repository, petsSvc *pets.Service, opts ...Option) *Service {
	s := &Service{
		logs: logs,
		pets: petsSvc,
		log:  logger.NewNop(),
		now:  time.Now,
		gen:  map[string]uint64{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ListLogs devuelve el historial del gato (más reciente primero).
// Un gato ajeno responde pets.ErrNotFound.
func (s *Service) ListLogs(ctx context.Context, ownerUserID, petID string, limit int) ([]Log, error) {
	if _, err := s.pets.GetOwned(ctx, petID, ownerUserID); err != nil {
		return nil, err
	}
	return s.logs.ListByPet(ctx, strings.TrimSpace(petID), NormalizeLimit(limit))
}

// Dashboard arma el panel: gatos ordenados por health asc y luego por último
// chequeo asc (los nunca chequeados primero), más los agregados.
func (s *Service) Dashboard(ctx context.Context, ownerUserID string) (Dashboard, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)

	if s.cache != nil {
		d, ok, err := s.cache.Get(ctx, ownerUserID)
		if err != nil {
			s.log.Warn("dashboard cache get failed", map[string]any{"owner_id": ownerUserID, "err": err})
		} else if ok {
			return d, nil
		}
	}
	startGen := s.generation(ownerUserID)

	items, err := s.pets.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return Dashboard{}, err
	}
	SortForDashboard(items)

	d := Dashboard{
		Pets:        items,
		Summary:     Summarize(items),
		GeneratedAt: s.now().UTC(),
	}

	// Si hubo un Invalidate durante la lectura no se cachea. Entre réplicas
	// el Set tardío sigue siendo posible y queda acotado por el TTL.
	if s.cache != nil && s.generation(ownerUserID) == startGen {
		if err := s.cache.Set(ctx, ownerUserID, d); err != nil {
			s.log.Warn("dashboard cache set failed", map[string]any{"owner_id": ownerUserID, "err": err})
		}
	}
	return d, nil
}

// Invalidate descarta el dashboard cacheado. Se engancha como hook OnChange
// de pets.Service y del engine.
func (s *Service) Invalidate(ctx context.Context, ownerUserID string) {
	if s.cache == nil {
		return
	}
	ownerUserID = strings.TrimSpace(ownerUserID)
	s.mu.Lock()
	s.gen[ownerUserID]++
	s.mu.Unlock()

	if err := s.cache.Invalidate(ctx, ownerUserID); err != nil {
		s.log.Warn("dashboard cache invalidate failed", map[string]any{"owner_id": ownerUserID, "err": err})
	}
}

func (s *Service) generation(ownerUserID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[ownerUserID]
}

func SortForDashboard(items []pets.Pet) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Stats.Health != b.Stats.Health {
			return a.Stats.Health < b.Stats.Health
		}
		switch {
		case a.LastHealthCheck == nil && b.LastHealthCheck == nil:
			return a.CreatedAt.Before(b.CreatedAt)
		case a.LastHealthCheck == nil:
			return true
		case b.LastHealthCheck == nil:
			return false
		}
		return a.LastHealthCheck.Before(*b.LastHealthCheck)
	})
}
