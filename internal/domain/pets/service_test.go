package pets

import (
	"context"
	"errors"
	"testing"
	"time"

	"purrr-love/internal/ports/storage"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Pet
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Pet{}}
}

func (r *testRepo) Create(ctx context.Context, p Pet) error {
	if _, ok := r.byID[p.ID]; ok {
		return storage.ErrAlreadyExists
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, storage.ErrNotFound
	}
	return p, nil
}

func (r *testRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	out := make([]Pet, 0)
	for _, p := range r.byID {
		if p.OwnerUserID == ownerUserID {
			out = append(out, p)
		}
	}
	return out, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Adopt_Defaults(t *testing.T) {
	repo := newTestRepo()

	var changedFor string
	svc := NewService(repo, WithOnChange(func(_ context.Context, ownerUserID string) {
		changedFor = ownerUserID
	}))
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	p, err := svc.Adopt(context.Background(), "owner-1", AdoptInput{Name: "  Milo "})
	if err != nil {
		t.Fatalf("Adopt returned error: %v", err)
	}
	if p.Name != "Milo" {
		t.Fatalf("expected trimmed name, got %q", p.Name)
	}
	if p.Breed != DefaultBreed || p.Color != DefaultColor {
		t.Fatalf("expected default breed/color, got %q/%q", p.Breed, p.Color)
	}
	if p.Stats != DefaultStats() {
		t.Fatalf("expected default stats, got %#v", p.Stats)
	}
	if p.Stats.Hunger != 0 || p.Stats.Health != 100 {
		t.Fatalf("unexpected default stats %#v", p.Stats)
	}
	if !p.CreatedAt.Equal(now) || !p.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps = now")
	}
	if changedFor != "owner-1" {
		t.Fatalf("expected onChange hook for owner-1, got %q", changedFor)
	}
	if _, ok := repo.byID[p.ID]; !ok {
		t.Fatalf("expected pet persisted")
	}
}

func TestService_Adopt_RequiresName(t *testing.T) {
	svc := NewService(newTestRepo())

	_, err := svc.Adopt(context.Background(), "owner-1", AdoptInput{Name: "   "})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	_, err = svc.Adopt(context.Background(), "", AdoptInput{Name: "Milo"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty owner, got %v", err)
	}
}

func TestService_GetOwned_HidesForeignPets(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p, err := svc.Adopt(context.Background(), "owner-1", AdoptInput{Name: "Milo"})
	if err != nil {
		t.Fatalf("Adopt error: %v", err)
	}

	if _, err := svc.GetOwned(context.Background(), p.ID, "owner-1"); err != nil {
		t.Fatalf("owner should see own pet: %v", err)
	}
	if _, err := svc.GetOwned(context.Background(), p.ID, "intruder"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign pet, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing pet, got %v", err)
	}
}
