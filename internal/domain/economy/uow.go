package economy

import (
	"context"
	"time"

	"purrr-love/internal/domain/catalog"
	"purrr-love/internal/domain/health"
	"purrr-love/internal/domain/owners"
	"purrr-love/internal/domain/pets"
)

// ActionLog es el registro de cada acción resuelta (juego o compra).
type ActionLog struct {
	ID         string
	OwnerID    string
	PetID      string
	Kind       catalog.Kind
	ActionKey  string
	CoinsDelta int64
	CoinsAfter int64
	Message    string
	CreatedAt  time.Time
}

// Tx son las operaciones disponibles dentro de una transacción.
// Orden de locks: primero el owner, después la mascota.
type Tx interface {
	GetOwnerForUpdate(ctx context.Context, ownerID string) (owners.Owner, error)
	GetPetForUpdate(ctx context.Context, petID string) (pets.Pet, error)

	// UpdatePetStats persiste Stats, Vitals, LastHealthCheck y UpdatedAt.
	UpdatePetStats(ctx context.Context, p pets.Pet) error

	// AdjustOwnerCoins suma delta al saldo y devuelve el nuevo saldo.
	// Devuelve storage.ErrNegativeBalance si el saldo quedaría negativo.
	AdjustOwnerCoins(ctx context.Context, ownerID string, delta int64, at time.Time) (int64, error)

	InsertHealthLog(ctx context.Context, l health.Log) error
	InsertActionLog(ctx context.Context, l ActionLog) error
}

// UnitOfWork corre fn en una transacción: commit si fn devuelve nil, rollback si no.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}
