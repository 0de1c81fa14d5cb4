package owners

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, o Owner) error
	GetByID(ctx context.Context, id string) (Owner, error)
	// UpdateRole devuelve storage.ErrNotFound si el owner no existe.
	UpdateRole(ctx context.Context, id string, role Role, at time.Time) error
}
