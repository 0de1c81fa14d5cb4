package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"purrr-love/internal/domain/economy"
	"purrr-love/internal/domain/health"
	"purrr-love/internal/domain/owners"
	"purrr-love/internal/domain/pets"
	"purrr-love/internal/ports/storage"
)

// UnitOfWork abre un tx por operación del engine. Los locks de fila
// (SELECT ... FOR UPDATE) se toman en orden owner -> pet.
type UnitOfWork struct {
	db *sql.DB
}

func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(tx economy.Tx) error) error {
	sqlTx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&pgTx{tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", mapErr(err))
	}
	return nil
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) GetOwnerForUpdate(ctx context.Context, id string) (owners.Owner, error) {
	return getOwner(ctx, t.tx, id, true)
}

func (t *pgTx) GetPetForUpdate(ctx context.Context, id string) (pets.Pet, error) {
	return getPet(ctx, t.tx, id, true)
}

func (t *pgTx) UpdatePetStats(ctx context.Context, p pets.Pet) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE pets
		SET
			health = $2,
			happiness = $3,
			energy = $4,
			hunger = $5,
			cleanliness = $6,
			weight = $7,
			temperature = $8,
			heart_rate = $9,
			last_health_check = $10,
			updated_at = $11
		WHERE id = $1
	`,
		p.ID,
		p.Stats.Health,
		p.Stats.Happiness,
		p.Stats.Energy,
		p.Stats.Hunger,
		p.Stats.Cleanliness,
		nullFloat(p.Vitals.Weight),
		nullFloat(p.Vitals.Temperature),
		nullInt(p.Vitals.HeartRate),
		nullTime(p.LastHealthCheck),
		p.UpdatedAt,
	)
	if err != nil {
		return mapErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AdjustOwnerCoins aplica el delta solo si el saldo no queda negativo.
// Sin fila afectada: o no existe el owner o no alcanza el saldo.
func (t *pgTx) AdjustOwnerCoins(ctx context.Context, id string, delta int64, at time.Time) (int64, error) {
	var coins int64
	err := t.tx.QueryRowContext(ctx, `
		UPDATE owners
		SET coins = coins + $2,
		    updated_at = $3
		WHERE id = $1 AND coins + $2 >= 0
		RETURNING coins
	`, id, delta, at).Scan(&coins)
	if err == nil {
		return coins, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, mapErr(err)
	}

	if _, gerr := getOwner(ctx, t.tx, id, false); gerr != nil {
		return 0, gerr
	}
	return 0, storage.ErrNegativeBalance
}

func (t *pgTx) InsertHealthLog(ctx context.Context, l health.Log) error {
	return insertHealthLog(ctx, t.tx, l)
}

func (t *pgTx) InsertActionLog(ctx context.Context, l economy.ActionLog) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO action_logs (
			id, owner_id, pet_id,
			kind, action_key,
			coins_delta, coins_after,
			message, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		l.ID,
		l.OwnerID,
		l.PetID,
		string(l.Kind),
		l.ActionKey,
		l.CoinsDelta,
		l.CoinsAfter,
		l.Message,
		l.CreatedAt,
	)
	return mapErr(err)
}
