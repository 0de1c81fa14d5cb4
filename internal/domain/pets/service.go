package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"purrr-love/internal/ports/storage"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("pet not found")
)

const (
	DefaultBreed = "domestic"
	DefaultColor = "mixed"

	maxNameLen = 100
)

type Service struct {
	repo     Repository
	now      func() time.Time
	onChange func(ctx context.Context, ownerUserID string)
}

type Option func(*Service)

// WithOnChange registra un hook que corre después de adoptar (p.ej. invalidar cache del dashboard).
func WithOnChange(fn func(ctx context.Context, ownerUserID string)) Option {
	return func(s *Service) { s.onChange = fn }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		now:  time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type AdoptInput struct {
	Name  string
	Breed string
	Color string
}

// Adopt crea una mascota nueva con stats por defecto.
func (s *Service) Adopt(ctx context.Context, ownerUserID string, in AdoptInput) (Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return Pet{}, ErrInvalidInput
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > maxNameLen {
		return Pet{}, ErrInvalidInput
	}

	breed := strings.TrimSpace(in.Breed)
	if breed == "" {
		breed = DefaultBreed
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = DefaultColor
	}

	now := s.now().UTC()
	p := Pet{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        name,
		Breed:       breed,
		Color:       color,
		Stats:       DefaultStats(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	if s.onChange != nil {
		s.onChange(ctx, ownerUserID)
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Pet{}, ErrNotFound
		}
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// GetOwned devuelve la mascota solo si pertenece a ownerUserID.
// Una mascota ajena se reporta como ErrNotFound para no filtrar su existencia.
func (s *Service) GetOwned(ctx context.Context, petID, ownerUserID string) (Pet, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerUserID != strings.TrimSpace(ownerUserID) {
		return Pet{}, ErrNotFound
	}
	return p, nil
}
