package memory

import (
	"context"

	"purrr-love/internal/domain/economy"
	"purrr-love/internal/domain/health"
	"purrr-love/internal/domain/owners"
	"purrr-love/internal/domain/pets"
	"purrr-love/internal/domain/support"
)

// Store agrupa los repos in-memory. Los datos se pierden al reiniciar (modo dev/tests).
type Store struct {
	owners  *ownerRepo
	pets    *petRepo
	logs    *healthLogRepo
	actions *actionLogRepo
	tickets *ticketRepo
}

func NewStore() *Store {
	return &Store{
		owners:  newOwnerRepo(),
		pets:    newPetRepo(),
		logs:    newHealthLogRepo(),
		actions: newActionLogRepo(),
		tickets: newTicketRepo(),
	}
}

func (s *Store) Owners() owners.Repository     { return s.owners }
func (s *Store) Pets() pets.Repository         { return s.pets }
func (s *Store) HealthLogs() health.Repository { return s.logs }
func (s *Store) Tickets() support.Repository   { return s.tickets }

// UnitOfWork devuelve la implementación transaccional para el engine.
func (s *Store) UnitOfWork() economy.UnitOfWork { return &unitOfWork{s: s} }

// ActionLogs devuelve el ledger de juegos y compras del owner.
func (s *Store) ActionLogs(ctx context.Context, ownerID string, limit int) ([]economy.ActionLog, error) {
	return s.actions.ListByOwner(ctx, ownerID, limit)
}
