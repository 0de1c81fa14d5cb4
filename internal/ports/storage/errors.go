package storage

import "errors"

// Errores comunes que devuelven todos los adapters de storage.
// Los services los traducen a sus propios errores de dominio.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// ErrNegativeBalance: el ajuste de coins dejaría el saldo por debajo de cero.
	ErrNegativeBalance = errors.New("negative balance")
)
