package health

import "context"

// Repository es de solo lectura: los logs se insertan dentro de la transacción
// del chequeo (economy.Tx.InsertHealthLog).
type Repository interface {
	ListByPet(ctx context.Context, petID string, limit int) ([]Log, error)
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// NormalizeLimit lleva limit a [1, MaxListLimit]; <= 0 usa el default.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
