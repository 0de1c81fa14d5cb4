package sqlite

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

// unitOfWork abre un tx por operación del engine. Con _txlock=immediate el
// BEGIN ya toma el lock de escritura, así que las lecturas "for update" no
// necesitan cláusula extra.
type unitOfWork struct {
	db *sql.DB
}

func (u *unitOfWork) WithinTx(ctx context.Context, fn func(tx economy.Tx) error) error {
	sqlTx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&liteTx{tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", mapErr(err))
	}
	return nil
}

type liteTx struct {
	tx *sql.Tx
}

func (t *liteTx) GetOwnerForUpdate(ctx context.Context, id string) (owners.Owner, error) {
	return getOwner(ctx, t.tx, id)
}

func (t *liteTx) GetPetForUpdate(ctx context.Context, id string) (pets.Pet, error) {
	return getPet(ctx, t.tx, id)
}

func (t *liteTx) UpdatePetStats(ctx context.Context, p pets.Pet) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE pets
		SET
			health = ?,
			happiness = ?,
			energy = ?,
			hunger = ?,
			cleanliness = ?,
			weight = ?,
			temperature = ?,
			heart_rate = ?,
			last_health_check = ?,
			updated_at = ?
		WHERE id = ?
	`,
		p.Stats.Health,
		p.Stats.Happiness,
		p.Stats.Energy,
		p.Stats.Hunger,
		p.Stats.Cleanliness,
		nullFloat(p.Vitals.Weight),
		nullFloat(p.Vitals.Temperature),
		nullInt(p.Vitals.HeartRate),
		nullMillis(p.LastHealthCheck),
		toMillis(p.UpdatedAt),
		p.ID,
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
func (t *liteTx) AdjustOwnerCoins(ctx context.Context, id string, delta int64, at time.Time) (int64, error) {
	var coins int64
	err := t.tx.QueryRowContext(ctx, `
		UPDATE owners
		SET coins = coins + ?1, updated_at = ?2
		WHERE id = ?3 AND coins + ?1 >= 0
		RETURNING coins
	`, delta, toMillis(at), id).Scan(&coins)
	if err == nil {
		return coins, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, mapErr(err)
	}

	if _, gerr := getOwner(ctx, t.tx, id); gerr != nil {
		return 0, gerr
	}
	return 0, storage.ErrNegativeBalance
}

func (t *liteTx) InsertHealthLog(ctx context.Context, l health.Log) error {
	return insertHealthLog(ctx, t.tx, l)
}

func (t *liteTx) InsertActionLog(ctx context.Context, l economy.ActionLog) error {
	return insertActionLog(ctx, t.tx, l)
}
