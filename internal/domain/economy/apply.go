package economy

import (
	"purrr-love/internal/domain/catalog"
	"purrr-love/internal/domain/pets"
)

// MinGameEnergy es la energía mínima para jugar.
const MinGameEnergy = 5

// Outcome es el resultado de aplicar una acción, sin persistir.
type Outcome struct {
	Stats pets.Stats

	// Deltas efectivos por atributo (después de acotar).
	Deltas map[pets.Attribute]int

	CoinsDelta int64
	Coins      int64
	Message    string
}

// Apply valida precondiciones, muestrea los efectos y acota el resultado.
// No toca el store: ResolveAction lo corre dentro de la transacción.
func Apply(p pets.Pet, coins int64, a catalog.Action, r Rand) (Outcome, error) {
	switch a.Kind {
	case catalog.KindGame:
		if p.Stats.Energy < MinGameEnergy {
			return Outcome{}, ErrInsufficientEnergy
		}
	case catalog.KindStoreItem:
		if coins < a.Cost {
			return Outcome{}, ErrInsufficientFunds
		}
	default:
		return Outcome{}, ErrUnknownAction
	}

	if r == nil {
		r = DefaultRand()
	}

	stats := p.Stats.Clamped()
	deltas := make(map[pets.Attribute]int, len(a.Effects))
	for _, e := range a.Effects {
		before := stats.Get(e.Attribute)
		stats = stats.With(e.Attribute, before+sample(r, e.Delta))
		deltas[e.Attribute] = stats.Get(e.Attribute) - before
	}

	var coinsDelta, shown int64
	if a.Kind == catalog.KindGame {
		coinsDelta = int64(sample(r, a.Reward))
		shown = coinsDelta
	} else {
		coinsDelta = -a.Cost
		shown = a.Cost
	}

	return Outcome{
		Stats:      stats,
		Deltas:     deltas,
		CoinsDelta: coinsDelta,
		Coins:      coins + coinsDelta,
		Message:    a.FormatMessage(p.Name, shown),
	}, nil
}
