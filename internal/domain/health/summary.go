package health

import (
	"math"

	"purrr-love/internal/domain/pets"
)

const (
	HealthyThreshold = 80 // health >= 80
	AtRiskThreshold  = 60 // health < 60

	attentionHealth    = 70
	attentionHappiness = 60
	attentionEnergy    = 50
)

// Summary son los agregados del dashboard. Función pura sobre la colección.
type Summary struct {
	TotalCats      int
	HealthyCats    int
	AtRiskCats     int
	AverageHealth  int
	NeedsAttention int
}

func Summarize(items []pets.Pet) Summary {
	var s Summary
	total := 0
	for _, p := range items {
		st := p.Stats
		s.TotalCats++
		total += st.Health

		if st.Health >= HealthyThreshold {
			s.HealthyCats++
		}
		if st.Health < AtRiskThreshold {
			s.AtRiskCats++
		}
		if NeedsAttention(st) {
			s.NeedsAttention++
		}
	}
	if s.TotalCats > 0 {
		s.AverageHealth = int(math.Round(float64(total) / float64(s.TotalCats)))
	}
	return s
}

// NeedsAttention: health < 70 o happiness < 60 o energy < 50.
func NeedsAttention(st pets.Stats) bool {
	return st.Health < attentionHealth ||
		st.Happiness < attentionHappiness ||
		st.Energy < attentionEnergy
}
