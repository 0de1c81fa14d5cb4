package pets

import "testing"

func TestClamp(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{-15, 0},
		{0, 0},
		{42, 42},
		{100, 100},
		{130, 100},
	}
	for _, c := range cases {
		if got := Clamp(c.in); got != c.want {
			t.Fatalf("Clamp(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestStats_WithClampsAndIgnoresUnknown(t *testing.T) {
	s := DefaultStats()

	s = s.With(AttrEnergy, -30)
	if s.Energy != 0 {
		t.Fatalf("expected energy clamped to 0, got %d", s.Energy)
	}
	s = s.With(AttrHunger, 250)
	if s.Hunger != 100 {
		t.Fatalf("expected hunger clamped to 100, got %d", s.Hunger)
	}

	before := s
	s = s.With(Attribute("mood"), 10)
	if s != before {
		t.Fatalf("unknown attribute should not change stats")
	}
}

func TestStats_GetRoundTrip(t *testing.T) {
	s := Stats{Health: 1, Happiness: 2, Energy: 3, Hunger: 4, Cleanliness: 5}
	for i, a := range Attributes {
		if got := s.Get(a); got != i+1 {
			t.Fatalf("Get(%s) = %d, want %d", a, got, i+1)
		}
	}
}

func TestStats_ClampedAndValid(t *testing.T) {
	s := Stats{Health: 120, Happiness: -1, Energy: 50, Hunger: 101, Cleanliness: 0}
	if s.Valid() {
		t.Fatalf("expected out-of-range stats to be invalid")
	}
	c := s.Clamped()
	want := Stats{Health: 100, Happiness: 0, Energy: 50, Hunger: 100, Cleanliness: 0}
	if c != want {
		t.Fatalf("Clamped() = %#v, want %#v", c, want)
	}
	if !c.Valid() {
		t.Fatalf("clamped stats must be valid")
	}
}
