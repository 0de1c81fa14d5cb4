package postgres

import (
	"context"
	"database/sql"
	"strings"

	"purrr-love/internal/domain/support"
	"purrr-love/internal/ports/storage"
)

const ticketColumns = `
	id, user_id,
	name, email, subject, message,
	priority, status,
	created_at, updated_at`

type TicketsRepo struct {
	db *sql.DB
}

func NewTicketsRepo(db *sql.DB) *TicketsRepo {
	return &TicketsRepo{db: db}
}

func (r *TicketsRepo) Create(ctx context.Context, t support.Ticket) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO support_tickets (`+ticketColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		t.ID,
		nullString(t.UserID),
		t.Name,
		t.Email,
		t.Subject,
		t.Message,
		string(t.Priority),
		string(t.Status),
		t.CreatedAt,
		t.UpdatedAt,
	)
	return mapErr(err)
}

// Update solo cambia el estado: el resto del ticket es inmutable.
func (r *TicketsRepo) Update(ctx context.Context, t support.Ticket) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE support_tickets
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, t.ID, string(t.Status), t.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *TicketsRepo) GetByID(ctx context.Context, id string) (support.Ticket, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return support.Ticket{}, storage.ErrNotFound
	}
	t, err := scanTicket(r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM support_tickets WHERE id = $1`, id))
	if err != nil {
		return support.Ticket{}, mapErr(err)
	}
	return t, nil
}

func (r *TicketsRepo) ListByUser(ctx context.Context, userID string) ([]support.Ticket, error) {
	return r.list(ctx, `
		SELECT `+ticketColumns+`
		FROM support_tickets
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

func (r *TicketsRepo) ListAll(ctx context.Context, status support.Status) ([]support.Ticket, error) {
	if status == "" {
		return r.list(ctx, `SELECT `+ticketColumns+` FROM support_tickets ORDER BY created_at DESC`)
	}
	return r.list(ctx, `
		SELECT `+ticketColumns+`
		FROM support_tickets
		WHERE status = $1
		ORDER BY created_at DESC
	`, string(status))
}

func (r *TicketsRepo) list(ctx context.Context, query string, args ...any) ([]support.Ticket, error) {
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
		t                support.Ticket
		userID           sql.NullString
		priority, status string
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
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return support.Ticket{}, err
	}
	t.UserID = userID.String
	t.Priority = support.Priority(priority)
	t.Status = support.Status(status)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func nullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
