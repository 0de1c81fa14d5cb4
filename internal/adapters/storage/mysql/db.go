// Package mysql implementa los repos y la unidad de trabajo sobre MySQL/MariaDB con gorm.
package mysql

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"purrr-love/internal/domain/economy"
	"purrr-love/internal/domain/health"
	"purrr-love/internal/domain/owners"
	"purrr-love/internal/domain/pets"
	"purrr-love/internal/domain/support"
	"purrr-love/internal/ports/storage"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open conecta con gorm. El DSN tiene que traer parseTime=true; si no trae loc
// se fuerza UTC.
func Open(dsn, logLevel string) (*gorm.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("mysql: dsn is required")
	}
	dsn = withDefaultParams(dsn)

	gLogger := gormlogger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(logLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         gLogger,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("mysql: sql db: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return db, nil
}

// EnsureSchema crea las tablas que falten. Las existentes no se tocan.
func EnsureSchema(ctx context.Context, db *gorm.DB) error {
	m := db.WithContext(ctx).Migrator()
	for _, model := range allModels() {
		if m.HasTable(model) {
			continue
		}
		if err := db.WithContext(ctx).AutoMigrate(model); err != nil {
			return fmt.Errorf("mysql: migrate %T: %w", model, err)
		}
	}
	return nil
}

func withDefaultParams(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.Contains(dsn, "parseTime=") {
		dsn += sep + "parseTime=true"
		sep = "&"
	}
	if !strings.Contains(dsn, "loc=") {
		dsn += sep + "loc=UTC"
		sep = "&"
	}
	if !strings.Contains(dsn, "charset=") {
		dsn += sep + "charset=utf8mb4"
	}
	return dsn
}

func toGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	case "silent":
		return gormlogger.Silent
	default:
		return gormlogger.Warn
	}
}

// Store agrupa los repos sobre un mismo *gorm.DB.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Owners() owners.Repository      { return &ownersRepo{db: s.db} }
func (s *Store) Pets() pets.Repository          { return &petsRepo{db: s.db} }
func (s *Store) HealthLogs() health.Repository  { return &healthLogsRepo{db: s.db} }
func (s *Store) Tickets() support.Repository    { return &ticketsRepo{db: s.db} }
func (s *Store) UnitOfWork() economy.UnitOfWork { return &unitOfWork{db: s.db} }

// ActionLogs devuelve el historial de acciones del owner, más reciente primero.
func (s *Store) ActionLogs(ctx context.Context, ownerID string, limit int) ([]economy.ActionLog, error) {
	var rows []actionLogModel
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", strings.TrimSpace(ownerID)).
		Order("created_at DESC").
		Order("id DESC").
		Limit(health.NormalizeLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]economy.ActionLog, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// mapErr traduce errores de gorm a los del port.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storage.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return storage.ErrAlreadyExists
	case strings.Contains(err.Error(), "owners_coins_non_negative"):
		return storage.ErrNegativeBalance
	default:
		return err
	}
}
