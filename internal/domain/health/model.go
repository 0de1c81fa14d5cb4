package health

import (
	"time"

	"purrr-love/internal/domain/pets"
)

// Log es una foto inmutable del estado de la mascota al momento de un chequeo.
// Solo se agrega; nunca se edita ni se borra.
type Log struct {
	ID    string
	PetID string

	Stats  pets.Stats
	Vitals pets.Vitals
	Notes  string

	RecordedAt time.Time
}
