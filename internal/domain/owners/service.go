package owners

import (
	"context"
	"errors"
	"strings"
	"time"

	"purrr-love/internal/ports/storage"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("owner not found")
	ErrForbidden    = errors.New("admin role required")
)

const DefaultStartingCoins int64 = 100

type Options struct {
	// StartingCoins <= 0 usa DefaultStartingCoins.
	StartingCoins int64
	// AdminUserIDs se promueven a admin al crearse o en su próximo Ensure.
	AdminUserIDs []string
}

type Service struct {
	repo          Repository
	now           func() time.Time
	startingCoins int64
	admins        map[string]struct{}
}

func NewService(repo Repository, opts Options) *Service {
	coins := opts.StartingCoins
	if coins <= 0 {
		coins = DefaultStartingCoins
	}

	admins := make(map[string]struct{}, len(opts.AdminUserIDs))
	for _, id := range opts.AdminUserIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		admins[id] = struct{}{}
	}

	return &Service{
		repo:          repo,
		now:           time.Now,
		startingCoins: coins,
		admins:        admins,
	}
}

// Ensure carga el owner o lo crea con el saldo inicial la primera vez que aparece.
// La identidad viene del verifier; acá solo materializamos la fila.
func (s *Service) Ensure(ctx context.Context, userID string) (Owner, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Owner{}, ErrInvalidInput
	}

	o, err := s.repo.GetByID(ctx, userID)
	if err == nil {
		return s.promoteIfListed(ctx, o)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return Owner{}, err
	}

	now := s.now().UTC()
	role := RoleUser
	if s.isListedAdmin(userID) {
		role = RoleAdmin
	}
	o = Owner{
		ID:        userID,
		Role:      role,
		Coins:     s.startingCoins,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		// Otro request lo creó en paralelo: nos quedamos con esa fila.
		if errors.Is(err, storage.ErrAlreadyExists) {
			existing, err := s.repo.GetByID(ctx, userID)
			if err != nil {
				return Owner{}, err
			}
			return s.promoteIfListed(ctx, existing)
		}
		return Owner{}, err
	}
	return o, nil
}

// promoteIfListed sube a admin a un owner existente que está en ADMIN_USER_IDS.
// Nunca degrada: un admin nombrado por SetRole sigue siéndolo.
func (s *Service) promoteIfListed(ctx context.Context, o Owner) (Owner, error) {
	if o.IsAdmin() || !s.isListedAdmin(o.ID) {
		return o, nil
	}
	now := s.now().UTC()
	if err := s.repo.UpdateRole(ctx, o.ID, RoleAdmin, now); err != nil {
		return Owner{}, err
	}
	o.Role = RoleAdmin
	o.UpdatedAt = now
	return o, nil
}

func (s *Service) isListedAdmin(id string) bool {
	_, ok := s.admins[id]
	return ok
}

// SetRole cambia el rol de otro owner. Solo un admin puede hacerlo y no sobre sí mismo.
func (s *Service) SetRole(ctx context.Context, actorID, targetID string, role Role) (Owner, error) {
	actor, err := s.Ensure(ctx, actorID)
	if err != nil {
		return Owner{}, err
	}
	if !actor.IsAdmin() {
		return Owner{}, ErrForbidden
	}

	targetID = strings.TrimSpace(targetID)
	role = Role(strings.ToLower(strings.TrimSpace(string(role))))
	if targetID == "" || targetID == actor.ID || !role.Valid() {
		return Owner{}, ErrInvalidInput
	}

	now := s.now().UTC()
	if err := s.repo.UpdateRole(ctx, targetID, role, now); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Owner{}, ErrNotFound
		}
		return Owner{}, err
	}
	return s.GetByID(ctx, targetID)
}

func (s *Service) GetByID(ctx context.Context, id string) (Owner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Owner{}, ErrNotFound
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Owner{}, ErrNotFound
		}
		return Owner{}, err
	}
	return o, nil
}
