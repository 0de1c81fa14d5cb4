package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"purrr-love/internal/domain/owners"
	"purrr-love/internal/ports/storage"
)

type OwnersRepo struct {
	db *sql.DB
}

func NewOwnersRepo(db *sql.DB) *OwnersRepo {
	return &OwnersRepo{db: db}
}

func (r *OwnersRepo) Create(ctx context.Context, o owners.Owner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO owners (id, role, coins, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		o.ID,
		string(o.Role),
		o.Coins,
		o.CreatedAt,
		o.UpdatedAt,
	)
	return mapErr(err)
}

func (r *OwnersRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	return getOwner(ctx, r.db, id, false)
}

func (r *OwnersRepo) UpdateRole(ctx context.Context, id string, role owners.Role, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE owners SET role = $2, updated_at = $3 WHERE id = $1
	`, strings.TrimSpace(id), string(role), at)
	if err != nil {
		return mapErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func getOwner(ctx context.Context, q queryer, id string, forUpdate bool) (owners.Owner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return owners.Owner{}, storage.ErrNotFound
	}

	query := `SELECT id, role, coins, created_at, updated_at FROM owners WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		o    owners.Owner
		role string
	)
	if err := q.QueryRowContext(ctx, query, id).Scan(
		&o.ID,
		&role,
		&o.Coins,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return owners.Owner{}, mapErr(err)
	}
	o.Role = owners.Role(role)
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return o, nil
}
