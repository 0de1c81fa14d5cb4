package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"purrr-love/internal/domain/catalog"
	"purrr-love/internal/domain/economy"
	"purrr-love/internal/domain/health"
	"purrr-love/internal/domain/owners"
	"purrr-love/internal/domain/pets"
	"purrr-love/internal/domain/support"
	"purrr-love/internal/ports/storage"
)

// ---- owners ----

type ownersRepo struct {
	db *sql.DB
}

func (r *ownersRepo) Create(ctx context.Context, o owners.Owner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO owners (id, role, coins, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, o.ID, string(o.Role), o.Coins, toMillis(o.CreatedAt), toMillis(o.UpdatedAt))
	return mapErr(err)
}

func (r *ownersRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	return getOwner(ctx, r.db, id)
}

func (r *ownersRepo) UpdateRole(ctx context.Context, id string, role owners.Role, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE owners SET role = ?, updated_at = ? WHERE id = ?
	`, string(role), toMillis(at), strings.TrimSpace(id))
	if err != nil {
		return mapErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func getOwner(ctx context.Context, q queryer, id string) (owners.Owner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return owners.Owner{}, storage.ErrNotFound
	}

	var (
		o                    owners.Owner
		role                 string
		createdAt, updatedAt int64
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, role, coins, created_at, updated_at FROM owners WHERE id = ?
	`, id).Scan(&o.ID, &role, &o.Coins, &createdAt, &updatedAt)
	if err != nil {
		return owners.Owner{}, mapErr(err)
	}
	o.Role = owners.Role(role)
	o.CreatedAt = fromMillis(createdAt)
	o.UpdatedAt = fromMillis(updatedAt)
	return o, nil
}

// ---- pets ----

const petColumns = `
	id, owner_user_id,
	name, breed, color,
	health, happiness, energy, hunger, cleanliness,
	weight, temperature, heart_rate, last_health_check,
	created_at, updated_at`

type petsRepo struct {
	db *sql.DB
}

func (r *petsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
		nullMillis(p.LastHealthCheck),
		toMillis(p.CreatedAt),
		toMillis(p.UpdatedAt),
	)
	return mapErr(err)
}

func (r *petsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	return getPet(ctx, r.db, id)
}

func (r *petsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE owner_user_id = ?
		ORDER BY created_at ASC, id ASC
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

func getPet(ctx context.Context, q queryer, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, storage.ErrNotFound
	}
	p, err := scanPet(q.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = ?`, id))
	if err != nil {
		return pets.Pet{}, mapErr(err)
	}
	return p, nil
}

func scanPet(s scanner) (pets.Pet, error) {
	var (
		p                    pets.Pet
		weight, temp         sql.NullFloat64
		heartRate, lastCheck sql.NullInt64
		createdAt, updatedAt int64
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
		&createdAt,
		&updatedAt,
	); err != nil {
		return pets.Pet{}, err
	}
	p.Vitals = pets.Vitals{
		Weight:      floatPtr(weight),
		Temperature: floatPtr(temp),
		HeartRate:   intPtr(heartRate),
	}
	p.LastHealthCheck = millisPtr(lastCheck)
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}

// ---- health logs ----

type healthLogsRepo struct {
	db *sql.DB
}

func (r *healthLogsRepo) ListByPet(ctx context.Context, petID string, limit int) ([]health.Log, error) {
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
		WHERE pet_id = ?
		ORDER BY recorded_at DESC, rowid DESC
		LIMIT ?
	`, petID, health.NormalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]health.Log, 0)
	for rows.Next() {
		var (
			l            health.Log
			weight, temp sql.NullFloat64
			heartRate    sql.NullInt64
			recordedAt   int64
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
			&recordedAt,
		); err != nil {
			return nil, err
		}
		l.Vitals = pets.Vitals{
			Weight:      floatPtr(weight),
			Temperature: floatPtr(temp),
			HeartRate:   intPtr(heartRate),
		}
		l.RecordedAt = fromMillis(recordedAt)
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
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
		toMillis(l.RecordedAt),
	)
	return mapErr(err)
}

// ---- action logs ----

func insertActionLog(ctx context.Context, q queryer, l economy.ActionLog) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO action_logs (
			id, owner_id, pet_id,
			kind, action_key,
			coins_delta, coins_after,
			message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		l.ID,
		l.OwnerID,
		l.PetID,
		string(l.Kind),
		l.ActionKey,
		l.CoinsDelta,
		l.CoinsAfter,
		l.Message,
		toMillis(l.CreatedAt),
	)
	return mapErr(err)
}

func listActionLogs(ctx context.Context, q queryer, ownerID string, limit int) ([]economy.ActionLog, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, owner_id, pet_id, kind, action_key, coins_delta, coins_after, message, created_at
		FROM action_logs
		WHERE owner_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, strings.TrimSpace(ownerID), health.NormalizeLimit(limit))
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]economy.ActionLog, 0)
	for rows.Next() {
		var (
			l         economy.ActionLog
			kind      string
			createdAt int64
		)
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.PetID, &kind, &l.ActionKey, &l.CoinsDelta, &l.CoinsAfter, &l.Message, &createdAt); err != nil {
			return nil, err
		}
		l.Kind = catalog.Kind(kind)
		l.CreatedAt = fromMillis(createdAt)
		out = append(out, l)
	}
	return out, rows.Err()
}

// ---- support tickets ----

const ticketColumns = `
	id, user_id,
	name, email, subject, message,
	priority, status,
	created_at, updated_at`

type ticketsRepo struct {
	db *sql.DB
}

func (r *ticketsRepo) Create(ctx context.Context, t support.Ticket) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO support_tickets (`+ticketColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		nullString(t.UserID),
		t.Name,
		t.Email,
		t.Subject,
		t.Message,
		string(t.Priority),
		string(t.Status),
		toMillis(t.CreatedAt),
		toMillis(t.UpdatedAt),
	)
	return mapErr(err)
}

// Update solo cambia el estado: el resto del ticket es inmutable.
func (r *ticketsRepo) Update(ctx context.Context, t support.Ticket) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE support_tickets SET status = ?, updated_at = ? WHERE id = ?
	`, string(t.Status), toMillis(t.UpdatedAt), t.ID)
	if err != nil {
		return mapErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *ticketsRepo) GetByID(ctx context.Context, id string) (support.Ticket, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return support.Ticket{}, storage.ErrNotFound
	}
	t, err := scanTicket(r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM support_tickets WHERE id = ?`, id))
	if err != nil {
		return support.Ticket{}, mapErr(err)
	}
	return t, nil
}

func (r *ticketsRepo) ListByUser(ctx context.Context, userID string) ([]support.Ticket, error) {
	return r.list(ctx, `
		SELECT `+ticketColumns+`
		FROM support_tickets
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, userID)
}

func (r *ticketsRepo) ListAll(ctx context.Context, status support.Status) ([]support.Ticket, error) {
	if status == "" {
		return r.list(ctx, `SELECT `+ticketColumns+` FROM support_tickets ORDER BY created_at DESC, rowid DESC`)
	}
	return r.list(ctx, `
		SELECT `+ticketColumns+`
		FROM support_tickets
		WHERE status = ?
		ORDER BY created_at DESC, rowid DESC
	`, string(status))
}

func (r *ticketsRepo) list(ctx context.Context, query string, args ...any) ([]support.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]support.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTicket(s scanner) (support.Ticket, error) {
	var (
		t                    support.Ticket
		userID               sql.NullString
		priority, status     string
		createdAt, updatedAt int64
	)
	if err := s.Scan(
		&t.ID,
		&userID,
		&t.Name,
		&t.Email,
		&t.Subject,
		&t.Message,
		&priority,
		&status,
		&createdAt,
		&updatedAt,
	); err != nil {
		return support.Ticket{}, err
	}
	t.UserID = userID.String
	t.Priority = support.Priority(priority)
	t.Status = support.Status(status)
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}
