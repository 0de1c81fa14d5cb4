package support

import "context"

type Repository interface {
	Create(ctx context.Context, t Ticket) error
	Update(ctx context.Context, t Ticket) error
	GetByID(ctx context.Context, id string) (Ticket, error)

	// ListByUser y ListAll devuelven el más reciente primero.
	ListByUser(ctx context.Context, userID string) ([]Ticket, error)
	// status vacío = todos.
	ListAll(ctx context.Context, status Status) ([]Ticket, error)
}
