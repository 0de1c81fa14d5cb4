package postgres

import (
	"context"
	"database/sql"
	"strings"

	"purrr-love/internal/domain/health"
)

type HealthLogsRepo struct {
	db *sql.DB
}

func NewHealthLogsRepo(db *sql.DB) *HealthLogsRepo {
	return &HealthLogsRepo{db: db}
}

func (r *HealthLogsRepo) ListByPet(ctx context.Context, petID string, limit int) ([]health.Log, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, pet_id,
			health, happiness, energy, hunger, cleanliness,
			weight, temperature, heart_rate,
			notes, recorded_at
		FROM health_logs
		WHERE pet_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`, petID, health.NormalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]health.Log, 0)
	for rows.Next() {
		var (
			l         health.Log
			weight    sql.NullFloat64
			temp      sql.NullFloat64
			heartRate sql.NullInt64
		)
		if err := rows.Scan(
			&l.ID,
			&l.PetID,
			&l.Stats.Health,
			&l.Stats.Happiness,
			&l.Stats.Energy,
			&l.Stats.Hunger,
			&l.Stats.Cleanliness,
			&weight,
			&temp,
			&heartRate,
			&l.Notes,
			&l.RecordedAt,
		); err != nil {
			return nil, err
		}
		l.Vitals.Weight = floatPtr(weight)
		l.Vitals.Temperature = floatPtr(temp)
		l.Vitals.HeartRate = intPtr(heartRate)
		l.RecordedAt = l.RecordedAt.UTC()
		out = append(out, l)
	}
	return out, rows.Err()
}

func insertHealthLog(ctx context.Context, q queryer, l health.Log) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO health_logs (
			id, pet_id,
			health, happiness, energy, hunger, cleanliness,
			weight, temperature, heart_rate,
			notes, recorded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		l.ID,
		l.PetID,
		l.Stats.Health,
		l.Stats.Happiness,
		l.Stats.Energy,
		l.Stats.Hunger,
		l.Stats.Cleanliness,
		nullFloat(l.Vitals.Weight),
		nullFloat(l.Vitals.Temperature),
		nullInt(l.Vitals.HeartRate),
		l.Notes,
		l.RecordedAt,
	)
	return mapErr(err)
}
