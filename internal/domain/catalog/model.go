package catalog

import (
	"strconv"
	"strings"

	"purrr-love/internal/domain/pets"
)

// Kind distingue juegos de items de la tienda.
type Kind string

const (
	KindGame      Kind = "game"
	KindStoreItem Kind = "store_item"
)

func (k Kind) Valid() bool {
	return k == KindGame || k == KindStoreItem
}

// Range es un rango entero inclusivo. Un monto fijo es Min == Max.
type Range struct {
	Min int
	Max int
}

func Fixed(v int) Range { return Range{Min: v, Max: v} }

func (r Range) IsFixed() bool { return r.Min == r.Max }

func (r Range) Valid() bool { return r.Min <= r.Max }

func (r Range) Contains(v int) bool { return v >= r.Min && v <= r.Max }

func (r Range) IsZero() bool { return r.Min == 0 && r.Max == 0 }

func (r Range) String() string {
	if r.IsFixed() {
		return strconv.Itoa(r.Min)
	}
	return strconv.Itoa(r.Min) + ".." + strconv.Itoa(r.Max)
}

// Effect es el delta declarado sobre un atributo.
type Effect struct {
	Attribute pets.Attribute
	Delta     Range
}

// Action es una entrada del catálogo: un juego o un item comprable.
type Action struct {
	Key         string
	Kind        Kind
	Name        string
	Description string
	Icon        string

	// Cost: 0 para juegos, > 0 para items.
	Cost int64

	// Effects en el orden de pets.Attributes (determinístico para el muestreo).
	Effects []Effect

	// Reward: coins ganados en juegos. Siempre cero en items.
	Reward Range

	// Message admite {pet}, {coins}, {cost} y {action}.
	Message string
}

// FormatMessage arma el texto para la UI a partir de la plantilla.
func (a Action) FormatMessage(petName string, coins int64) string {
	msg := a.Message
	if strings.TrimSpace(msg) == "" {
		msg = "{pet} enjoyed {action}!"
	}
	return strings.NewReplacer(
		"{pet}", petName,
		"{coins}", strconv.FormatInt(coins, 10),
		"{cost}", strconv.FormatInt(a.Cost, 10),
		"{action}", a.Name,
	).Replace(msg)
}
