package router

import (
	"context"
	"fmt"
	"net/http"

	_ "purrr-love/docs"
	mem "purrr-love/internal/adapters/storage/memory"
	"purrr-love/internal/domain/catalog"
	"purrr-love/internal/domain/economy"
	"purrr-love/internal/domain/health"
	"purrr-love/internal/domain/owners"
	"purrr-love/internal/domain/pets"
	"purrr-love/internal/domain/support"
	"purrr-love/internal/middleware"
	"purrr-love/internal/platform/logger"
	"purrr-love/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Store es lo que el router necesita de un backend de persistencia.
// Lo cumplen memory.Store, postgres.Store, sqlite.Store y mysql.Store.
type Store interface {
	Owners() owners.Repository
	Pets() pets.Repository
	HealthLogs() health.Repository
	Tickets() support.Repository
	UnitOfWork() economy.UnitOfWork
	economy.History
}

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si es nil se usa el store in-memory.
	Store Store

	// Opcional: si es nil se usa el catálogo embebido.
	Catalog *catalog.Catalog

	// Opcional: sin cache el dashboard se calcula en cada request.
	DashboardCache health.DashboardCache

	Logger logger.Logger

	StartingCoins     int64
	AdminUserIDs      []string
	PlayRatePerMinute int // <= 0 desactiva el rate limit

	// Rand fija la fuente de azar del engine (tests).
	Rand economy.Rand
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	store := opts.Store
	if store == nil {
		store = mem.NewStore()
	}

	cat := opts.Catalog
	if cat == nil {
		def, err := catalog.Default()
		if err != nil {
			panic(fmt.Sprintf("router: embedded catalog: %v", err))
		}
		cat = def
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AuthContext(opts.AuthVerifier, log))
	r.Use(middleware.RequestLog(log))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Services por módulo
	ownersSvc := owners.NewService(store.Owners(), owners.Options{
		StartingCoins: opts.StartingCoins,
		AdminUserIDs:  opts.AdminUserIDs,
	})

	// pets y economy invalidan el dashboard cacheado del owner cuando cambian sus gatos.
	var healthSvc *health.Service
	invalidate := func(ctx context.Context, ownerUserID string) {
		healthSvc.Invalidate(ctx, ownerUserID)
	}

	petsSvc := pets.NewService(store.Pets(), pets.WithOnChange(invalidate))

	healthOpts := []health.Option{health.WithLogger(log)}
	if opts.DashboardCache != nil {
		healthOpts = append(healthOpts, health.WithCache(opts.DashboardCache))
	}
	healthSvc = health.NewService(store.HealthLogs(), petsSvc, healthOpts...)

	engOpts := []economy.Option{
		economy.WithLogger(log),
		economy.WithOnChange(invalidate),
	}
	if opts.Rand != nil {
		engOpts = append(engOpts, economy.WithRand(opts.Rand))
	}
	eng := economy.NewEngine(store.UnitOfWork(), cat, engOpts...)

	supportSvc := support.NewService(store.Tickets())

	ensureOwner := func(ctx context.Context, userID string) error {
		_, err := ownersSvc.Ensure(ctx, userID)
		return err
	}
	isAdmin := func(ctx context.Context, userID string) (bool, error) {
		o, err := ownersSvc.Ensure(ctx, userID)
		if err != nil {
			return false, err
		}
		return o.IsAdmin(), nil
	}

	var limit func(http.Handler) http.Handler
	if rl := middleware.NewRateLimiter(opts.PlayRatePerMinute); rl != nil {
		limit = rl.Handler
	}

	// Rutas por módulo
	owners.RegisterRoutes(r, ownersSvc)
	pets.RegisterRoutes(r, petsSvc, ensureOwner)
	economy.RegisterRoutes(r, eng, limit)
	economy.RegisterHistoryRoutes(r, store)
	health.RegisterRoutes(r, healthSvc)
	support.RegisterRoutes(r, supportSvc, isAdmin)

	return r
}
