// @title purrr-love API
// @version 1.0
// @description Adopción de gatos, juegos, tienda, salud y soporte.
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	jwtauth "purrr-love/internal/adapters/auth/jwt"
	"purrr-love/internal/adapters/auth/remote"
	rediscache "purrr-love/internal/adapters/cache/redis"
	mem "purrr-love/internal/adapters/storage/memory"
	"purrr-love/internal/adapters/storage/mysql"
	pg "purrr-love/internal/adapters/storage/postgres"
	"purrr-love/internal/adapters/storage/sqlite"
	"purrr-love/internal/domain/catalog"
	"purrr-love/internal/domain/health"
	"purrr-love/internal/platform/config"
	"purrr-love/internal/platform/logger"
	"purrr-love/internal/ports/auth"
	"purrr-love/internal/router"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "purrr-love: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:      logger.ParseLevel(cfg.LogLevel),
		Format:     logger.ParseFormat(cfg.LogFormat),
		App:        cfg.AppName,
		Path:       cfg.LogPath,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if zl, ok := log.(*logger.ZapLogger); ok {
		defer zl.Sync()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore.Close()

	verifier, err := newVerifier(cfg)
	if err != nil {
		return err
	}

	var cache health.DashboardCache
	if cfg.RedisAddr != "" {
		rc, err := rediscache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rc.Close()
		cache = rediscache.NewDashboardCache(rc, rediscache.Options{TTL: cfg.DashboardCacheTTL})
	}

	h := router.NewRouter(router.Options{
		AuthVerifier:      verifier,
		Store:             store,
		Catalog:           cat,
		DashboardCache:    cache,
		Logger:            log,
		StartingCoins:     cfg.StartingCoins,
		AdminUserIDs:      cfg.AdminUserIDs,
		PlayRatePerMinute: cfg.PlayRatePerMinute,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":    srv.Addr,
			"storage": cfg.StorageDriver,
			"auth":    cfg.AuthMode,
			"cache":   cache != nil,
			"games":   len(cat.List(catalog.KindGame)),
			"items":   len(cat.List(catalog.KindStoreItem)),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config) (router.Store, io.Closer, error) {
	switch cfg.StorageDriver {
	case "postgres":
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := pg.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return pg.NewStore(db), db, nil

	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlite.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlite.NewStore(db), db, nil

	case "mysql":
		gdb, err := mysql.Open(cfg.MySQLDSN, cfg.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, err
		}
		if err := mysql.EnsureSchema(ctx, gdb); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return mysql.NewStore(gdb), sqlDB, nil

	default:
		return mem.NewStore(), nopCloser{}, nil
	}
}

func newVerifier(cfg config.Config) (auth.AuthVerifier, error) {
	switch cfg.AuthMode {
	case "jwt":
		return jwtauth.NewVerifier(jwtauth.Options{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})
	case "remote":
		return remote.NewVerifier(remote.Config{
			BaseURL: cfg.IdentityBaseURL,
			APIKey:  cfg.IdentityAPIKey,
			Timeout: cfg.IdentityTimeout,
		})
	default:
		// modo dev: sin verifier, el usuario viene en X-Debug-User-ID
		return nil, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
