package mysql

import (
	"context"
	"time"

	"purrr-love/internal/domain/economy"
	"purrr-love/internal/domain/health"
	"purrr-love/internal/domain/owners"
	"purrr-love/internal/domain/pets"
	"purrr-love/internal/ports/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// unitOfWork corre fn dentro de db.Transaction; los locks de fila se toman
// con SELECT ... FOR UPDATE en orden owner -> pet.
type unitOfWork struct {
	db *gorm.DB
}

func (u *unitOfWork) WithinTx(ctx context.Context, fn func(tx economy.Tx) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{tx: tx})
	})
}

type gormTx struct {
	tx *gorm.DB
}

func (t *gormTx) locked(ctx context.Context) *gorm.DB {
	return t.tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func (t *gormTx) GetOwnerForUpdate(ctx context.Context, id string) (owners.Owner, error) {
	var m ownerModel
	if err := t.locked(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return owners.Owner{}, mapErr(err)
	}
	return m.toDomain(), nil
}

func (t *gormTx) GetPetForUpdate(ctx context.Context, id string) (pets.Pet, error) {
	var m petModel
	if err := t.locked(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return pets.Pet{}, mapErr(err)
	}
	return m.toDomain(), nil
}

// UpdatePetStats no mira RowsAffected: MySQL cuenta filas cambiadas, no
// encontradas, y la fila ya está bloqueada por GetPetForUpdate.
func (t *gormTx) UpdatePetStats(ctx context.Context, p pets.Pet) error {
	return mapErr(t.tx.WithContext(ctx).
		Model(&petModel{}).
		Where("id = ?", p.ID).
		Updates(statsUpdates(p)).Error)
}

// AdjustOwnerCoins aplica el delta solo si el saldo no queda negativo.
func (t *gormTx) AdjustOwnerCoins(ctx context.Context, id string, delta int64, at time.Time) (int64, error) {
	res := t.tx.WithContext(ctx).
		Model(&ownerModel{}).
		Where("id = ? AND coins + ? >= 0", id, delta).
		Updates(map[string]any{
			"coins":      gorm.Expr("coins + ?", delta),
			"updated_at": at.UTC(),
		})
	if res.Error != nil {
		return 0, mapErr(res.Error)
	}

	var m ownerModel
	if err := t.tx.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return 0, mapErr(err)
	}
	if res.RowsAffected == 0 && m.Coins+delta < 0 {
		return 0, storage.ErrNegativeBalance
	}
	return m.Coins, nil
}

func (t *gormTx) InsertHealthLog(ctx context.Context, l health.Log) error {
	m := healthLogFromDomain(l)
	return mapErr(t.tx.WithContext(ctx).Create(&m).Error)
}

func (t *gormTx) InsertActionLog(ctx context.Context, l economy.ActionLog) error {
	m := actionLogFromDomain(l)
	return mapErr(t.tx.WithContext(ctx).Create(&m).Error)
}
