package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"purrr-love/internal/domain/support"
	"purrr-love/internal/ports/storage"
)

type ticketRepo struct {
	mu   sync.RWMutex
	byID map[string]support.Ticket
}

func newTicketRepo() *ticketRepo {
	return &ticketRepo{
		byID: make(map[string]support.Ticket),
	}
}

func (r *ticketRepo) Create(ctx context.Context, t support.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == "" {
		return errors.New("ticket id required")
	}
	if _, exists := r.byID[t.ID]; exists {
		return storage.ErrAlreadyExists
	}
	r.byID[t.ID] = t
	return nil
}

func (r *ticketRepo) Update(ctx context.Context, t support.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == "" {
		return errors.New("ticket id required")
	}
	if _, exists := r.byID[t.ID]; !exists {
		return storage.ErrNotFound
	}
	r.byID[t.ID] = t
	return nil
}

func (r *ticketRepo) GetByID(ctx context.Context, id string) (support.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return support.Ticket{}, storage.ErrNotFound
	}
	return t, nil
}

func (r *ticketRepo) ListByUser(ctx context.Context, userID string) ([]support.Ticket, error) {
	return r.list(func(t support.Ticket) bool { return t.UserID == userID }), nil
}

func (r *ticketRepo) ListAll(ctx context.Context, status support.Status) ([]support.Ticket, error) {
	return r.list(func(t support.Ticket) bool { return status == "" || t.Status == status }), nil
}

func (r *ticketRepo) list(keep func(support.Ticket) bool) []support.Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]support.Ticket, 0)
	for _, t := range r.byID {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
