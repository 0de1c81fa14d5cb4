package pets

// Attribute identifica uno de los cinco stats porcentuales de una mascota.
type Attribute string

const (
	AttrHealth      Attribute = "health"
	AttrHappiness   Attribute = "happiness"
	AttrEnergy      Attribute = "energy"
	AttrHunger      Attribute = "hunger"
	AttrCleanliness Attribute = "cleanliness"
)

// Attributes en orden estable (útil para iterar y para respuestas JSON).
var Attributes = []Attribute{
	AttrHealth,
	AttrHappiness,
	AttrEnergy,
	AttrHunger,
	AttrCleanliness,
}

func (a Attribute) Valid() bool {
	switch a {
	case AttrHealth, AttrHappiness, AttrEnergy, AttrHunger, AttrCleanliness:
		return true
	}
	return false
}

const (
	MinStat = 0
	MaxStat = 100
)

// Clamp acota v a [MinStat, MaxStat].
func Clamp(v int) int {
	if v < MinStat {
		return MinStat
	}
	if v > MaxStat {
		return MaxStat
	}
	return v
}

// Stats son los atributos porcentuales. Invariante: todos en [0,100] en reposo.
type Stats struct {
	Health      int
	Happiness   int
	Energy      int
	Hunger      int
	Cleanliness int
}

// DefaultStats son los valores de una mascota recién adoptada.
func DefaultStats() Stats {
	return Stats{
		Health:      100,
		Happiness:   100,
		Energy:      100,
		Hunger:      0,
		Cleanliness: 100,
	}
}

func (s Stats) Get(a Attribute) int {
	switch a {
	case AttrHealth:
		return s.Health
	case AttrHappiness:
		return s.Happiness
	case AttrEnergy:
		return s.Energy
	case AttrHunger:
		return s.Hunger
	case AttrCleanliness:
		return s.Cleanliness
	}
	return 0
}

// With devuelve una copia con el atributo seteado (ya acotado).
// Atributos desconocidos se ignoran.
func (s Stats) With(a Attribute, v int) Stats {
	v = Clamp(v)
	switch a {
	case AttrHealth:
		s.Health = v
	case AttrHappiness:
		s.Happiness = v
	case AttrEnergy:
		s.Energy = v
	case AttrHunger:
		s.Hunger = v
	case AttrCleanliness:
		s.Cleanliness = v
	}
	return s
}

// Clamped acota los cinco atributos.
func (s Stats) Clamped() Stats {
	return Stats{
		Health:      Clamp(s.Health),
		Happiness:   Clamp(s.Happiness),
		Energy:      Clamp(s.Energy),
		Hunger:      Clamp(s.Hunger),
		Cleanliness: Clamp(s.Cleanliness),
	}
}

func (s Stats) Valid() bool {
	return s == s.Clamped()
}
