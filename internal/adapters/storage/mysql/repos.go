package mysql

import (
	"context"
	"strings"
	"time"

	"purrr-love/internal/domain/health"
	"purrr-love/internal/domain/owners"
	"purrr-love/internal/domain/pets"
	"purrr-love/internal/domain/support"
	"purrr-love/internal/ports/storage"

	"gorm.io/gorm"
)

type ownersRepo struct {
	db *gorm.DB
}

func (r *ownersRepo) Create(ctx context.Context, o owners.Owner) error {
	m := ownerFromDomain(o)
	return mapErr(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *ownersRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return owners.Owner{}, storage.ErrNotFound
	}
	var m ownerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return owners.Owner{}, mapErr(err)
	}
	return m.toDomain(), nil
}

// UpdateRole: MySQL informa 0 filas si el valor no cambió, así que ahí se confirma que exista.
func (r *ownersRepo) UpdateRole(ctx context.Context, id string, role owners.Role, at time.Time) error {
	id = strings.TrimSpace(id)
	res := r.db.WithContext(ctx).
		Model(&ownerModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"role": string(role), "updated_at": at.UTC()})
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

type petsRepo struct {
	db *gorm.DB
}

func (r *petsRepo) Create(ctx context.Context, p pets.Pet) error {
	m := petFromDomain(p)
	return mapErr(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *petsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, storage.ErrNotFound
	}
	var m petModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return pets.Pet{}, mapErr(err)
	}
	return m.toDomain(), nil
}

func (r *petsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}
	var rows []petModel
	if err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, mapErr(err)
	}
	out := make([]pets.Pet, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

type healthLogsRepo struct {
	db *gorm.DB
}

func (r *healthLogsRepo) ListByPet(ctx context.Context, petID string, limit int) ([]health.Log, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, nil
	}
	var rows []healthLogModel
	if err := r.db.WithContext(ctx).
		Where("pet_id = ?", petID).
		Order("recorded_at DESC").
		Limit(health.NormalizeLimit(limit)).
		Find(&rows).Error; err != nil {
		return nil, mapErr(err)
	}
	out := make([]health.Log, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

type ticketsRepo struct {
	db *gorm.DB
}

func (r *ticketsRepo) Create(ctx context.Context, t support.Ticket) error {
	m := ticketFromDomain(t)
	return mapErr(r.db.WithContext(ctx).Create(&m).Error)
}

// Update solo cambia el estado: el resto del ticket es inmutable.
func (r *ticketsRepo) Update(ctx context.Context, t support.Ticket) error {
	res := r.db.WithContext(ctx).
		Model(&ticketModel{}).
		Where("id = ?", t.ID).
		Updates(map[string]any{"status": string(t.Status), "updated_at": t.UpdatedAt.UTC()})
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *ticketsRepo) GetByID(ctx context.Context, id string) (support.Ticket, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return support.Ticket{}, storage.ErrNotFound
	}
	var m ticketModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return support.Ticket{}, mapErr(err)
	}
	return m.toDomain(), nil
}

func (r *ticketsRepo) ListByUser(ctx context.Context, userID string) ([]support.Ticket, error) {
	return r.list(r.db.WithContext(ctx).Where("user_id = ?", strings.TrimSpace(userID)))
}

func (r *ticketsRepo) ListAll(ctx context.Context, status support.Status) ([]support.Ticket, error) {
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	return r.list(q)
}

func (r *ticketsRepo) list(q *gorm.DB) ([]support.Ticket, error) {
	var rows []ticketModel
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, mapErr(err)
	}
	out := make([]support.Ticket, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}
