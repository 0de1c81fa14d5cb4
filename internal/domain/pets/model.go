package pets

import "time"

// Vitals son mediciones opcionales cargadas en un chequeo de salud.
// nil = nunca medido.
type Vitals struct {
	Weight      *float64 // positivo
	Temperature *float64 // °F, rango mamífero razonable (~99-103)
	HeartRate   *int     // lpm, positivo
}

// Pet representa un gato virtual adoptado por un owner.
type Pet struct {
	ID          string
	OwnerUserID string

	Name  string
	Breed string
	Color string

	Stats  Stats
	Vitals Vitals

	LastHealthCheck *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
