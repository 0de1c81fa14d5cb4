package postgres

import (
	"context"
	"database/sql"
	"strings"

	"purrr-love/internal/domain/pets"
	"purrr-love/internal/ports/storage"
)

const petColumns = `
	id, owner_user_id,
	name, breed, color,
	health, happiness, energy, hunger, cleanliness,
	weight, temperature, heart_rate, last_health_check,
	created_at, updated_at`

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		p.ID,
		p.OwnerUserID,
		p.Name,
		p.Breed,
		p.Color,
		p.Stats.Health,
		p.Stats.Happiness,
		p.Stats.Energy,
		p.Stats.Hunger,
		p.Stats.Cleanliness,
		nullFloat(p.Vitals.Weight),
		nullFloat(p.Vitals.Temperature),
		nullInt(p.Vitals.HeartRate),
		nullTime(p.LastHealthCheck),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return mapErr(err)
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	return getPet(ctx, r.db, id, false)
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

// getPet lee una mascota; forUpdate agrega el lock de fila (solo dentro de un tx).
func getPet(ctx context.Context, q queryer, id string, forUpdate bool) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, storage.ErrNotFound
	}

	query := `SELECT ` + petColumns + ` FROM pets WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	p, err := scanPet(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return pets.Pet{}, mapErr(err)
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPet(s scanner) (pets.Pet, error) {
	var (
		p         pets.Pet
		weight    sql.NullFloat64
		temp      sql.NullFloat64
		heartRate sql.NullInt64
		lastCheck sql.NullTime
	)
	if err := s.Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.Name,
		&p.Breed,
		&p.Color,
		&p.Stats.Health,
		&p.Stats.Happiness,
		&p.Stats.Energy,
		&p.Stats.Hunger,
		&p.Stats.Cleanliness,
		&weight,
		&temp,
		&heartRate,
		&lastCheck,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}

	p.Vitals = pets.Vitals{
		Weight:      floatPtr(weight),
		Temperature: floatPtr(temp),
		HeartRate:   intPtr(heartRate),
	}
	p.LastHealthCheck = timePtr(lastCheck)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}
