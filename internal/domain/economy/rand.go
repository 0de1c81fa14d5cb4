package economy

import (
	"math/rand/v2"
	"sync"

	"purrr-love/internal/domain/catalog"
)

// Rand es la fuente de aleatoriedad del engine. Inyectable para tests.
type Rand interface {
	// IntN devuelve un entero en [0, n). n > 0.
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand usa el generador global de math/rand/v2 (seguro para uso concurrente).
func DefaultRand() Rand { return globalRand{} }

type seededRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRand devuelve un generador reproducible.
func NewSeededRand(seed uint64) Rand {
	return &seededRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededRand) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// sample toma un valor uniforme en el rango inclusivo.
func sample(r Rand, rg catalog.Range) int {
	if rg.IsFixed() {
		return rg.Min
	}
	return rg.Min + r.IntN(rg.Max-rg.Min+1)
}
