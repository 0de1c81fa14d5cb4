package economy

import (
	"errors"
	"fmt"

	"purrr-love/internal/domain/catalog"
)

var (
	ErrUnknownAction      = catalog.ErrUnknownAction
	ErrInsufficientEnergy = errors.New("insufficient energy")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNotFound           = errors.New("pet not found")

	// ErrPersistence envuelve cualquier error del store. El mensaje original
	// queda para logs; al usuario se le muestra uno genérico.
	ErrPersistence = errors.New("persistence failure")
)

// classify deja pasar los errores de dominio y envuelve el resto como ErrPersistence.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnknownAction),
		errors.Is(err, ErrInsufficientEnergy),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrPersistence):
		return err
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
