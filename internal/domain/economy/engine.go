package economy

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"purrr-love/internal/domain/catalog"
	"purrr-love/internal/domain/health"
	"purrr-love/internal/domain/pets"
	"purrr-love/internal/platform/logger"
	"purrr-love/internal/ports/storage"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const (
	maxNotesLen = 2000

	// Rango plausible de temperatura felina en °F; fuera de esto se descarta.
	minTemperatureF = 90.0
	maxTemperatureF = 110.0
)

// Engine resuelve juegos, compras y chequeos de salud de forma atómica.
type Engine struct {
	uow      UnitOfWork
	catalog  *catalog.Catalog
	rand     Rand
	now      func() time.Time
	log      logger.Logger
	notes    *bluemonday.Policy
	onChange func(ctx context.Context, ownerID string)
}

type Option func(*Engine)

func WithRand(r Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rand = r
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithOnChange corre después de cada commit exitoso (invalidar cache del dashboard).
func WithOnChange(fn func(ctx context.Context, ownerID string)) Option {
	return func(e *Engine) { e.onChange = fn }
}

func NewEngine(uow UnitOfWork, cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		uow:     uow,
		catalog: cat,
		rand:    DefaultRand(),
		now:     time.Now,
		log:     logger.NewNop(),
		notes:   bluemonday.StrictPolicy(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

type ResolveInput struct {
	OwnerID string
	PetID   string
	Kind    catalog.Kind
	Key     string
}

type Result struct {
	Pet        pets.Pet
	Coins      int64
	CoinsDelta int64
	Deltas     map[pets.Attribute]int
	Message    string
	Action     catalog.Action
}

// ResolveAction aplica un juego o una compra sobre la mascota del owner.
// Stats, saldo y ledger se escriben en la misma transacción; ante cualquier
// error no queda nada aplicado.
func (e *Engine) ResolveAction(ctx context.Context, in ResolveInput) (Result, error) {
	a, err := e.catalog.Lookup(in.Kind, in.Key)
	if err != nil {
		return Result{}, ErrUnknownAction
	}

	ownerID := strings.TrimSpace(in.OwnerID)
	petID := strings.TrimSpace(in.PetID)
	if ownerID == "" || petID == "" {
		return Result{}, ErrNotFound
	}

	var res Result
	err = e.uow.WithinTx(ctx, func(tx Tx) error {
		o, err := tx.GetOwnerForUpdate(ctx, ownerID)
		if err != nil {
			return notFoundOr(err)
		}
		p, err := tx.GetPetForUpdate(ctx, petID)
		if err != nil {
			return notFoundOr(err)
		}
		if p.OwnerUserID != o.ID {
			return ErrNotFound
		}

		out, err := Apply(p, o.Coins, a, e.rand)
		if err != nil {
			return err
		}

		now := e.now().UTC()
		p.Stats = out.Stats
		p.UpdatedAt = now
		if err := tx.UpdatePetStats(ctx, p); err != nil {
			return err
		}

		coins, err := tx.AdjustOwnerCoins(ctx, o.ID, out.CoinsDelta, now)
		if err != nil {
			if errors.Is(err, storage.ErrNegativeBalance) {
				return ErrInsufficientFunds
			}
			return err
		}

		if err := tx.InsertActionLog(ctx, ActionLog{
			ID:         uuid.NewString(),
			OwnerID:    o.ID,
			PetID:      p.ID,
			Kind:       a.Kind,
			ActionKey:  a.Key,
			CoinsDelta: out.CoinsDelta,
			CoinsAfter: coins,
			Message:    out.Message,
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		res = Result{
			Pet:        p,
			Coins:      coins,
			CoinsDelta: out.CoinsDelta,
			Deltas:     out.Deltas,
			Message:    out.Message,
			Action:     a,
		}
		return nil
	})
	if err != nil {
		err = classify(err)
		e.logFailure("resolve action failed", err, map[string]any{
			"owner_id": ownerID,
			"pet_id":   petID,
			"kind":     string(in.Kind),
			"action":   a.Key,
		})
		return Result{}, err
	}

	e.log.Info("action resolved", map[string]any{
		"owner_id":    ownerID,
		"pet_id":      petID,
		"kind":        string(a.Kind),
		"action":      a.Key,
		"coins_delta": res.CoinsDelta,
		"coins":       res.Coins,
	})
	e.changed(ctx, ownerID)
	return res, nil
}

type HealthCheckInput struct {
	OwnerID string
	PetID   string
	Stats   pets.Stats
	Vitals  pets.Vitals
	Notes   string
}

type HealthCheckResult struct {
	Pet pets.Pet
	Log health.Log
}

// RecordHealthCheck reemplaza los stats por los valores enviados (acotados),
// actualiza vitals y agrega una entrada al historial. No mueve coins.
func (e *Engine) RecordHealthCheck(ctx context.Context, in HealthCheckInput) (HealthCheckResult, error) {
	ownerID := strings.TrimSpace(in.OwnerID)
	petID := strings.TrimSpace(in.PetID)
	if ownerID == "" || petID == "" {
		return HealthCheckResult{}, ErrNotFound
	}

	stats := in.Stats.Clamped()
	vitals := cleanVitals(in.Vitals)
	notes := e.cleanNotes(in.Notes)

	var res HealthCheckResult
	err := e.uow.WithinTx(ctx, func(tx Tx) error {
		p, err := tx.GetPetForUpdate(ctx, petID)
		if err != nil {
			return notFoundOr(err)
		}
		if p.OwnerUserID != ownerID {
			return ErrNotFound
		}

		now := e.now().UTC()
		p.Stats = stats
		p.Vitals = mergeVitals(p.Vitals, vitals)
		p.LastHealthCheck = &now
		p.UpdatedAt = now
		if err := tx.UpdatePetStats(ctx, p); err != nil {
			return err
		}

		l := health.Log{
			ID:         uuid.NewString(),
			PetID:      p.ID,
			Stats:      p.Stats,
			Vitals:     p.Vitals,
			Notes:      notes,
			RecordedAt: now,
		}
		if err := tx.InsertHealthLog(ctx, l); err != nil {
			return err
		}

		res = HealthCheckResult{Pet: p, Log: l}
		return nil
	})
	if err != nil {
		err = classify(err)
		e.logFailure("health check failed", err, map[string]any{
			"owner_id": ownerID,
			"pet_id":   petID,
		})
		return HealthCheckResult{}, err
	}

	e.log.Info("health check recorded", map[string]any{
		"owner_id": ownerID,
		"pet_id":   petID,
		"health":   res.Pet.Stats.Health,
	})
	e.changed(ctx, ownerID)
	return res, nil
}

func (e *Engine) changed(ctx context.Context, ownerID string) {
	if e.onChange != nil {
		e.onChange(ctx, ownerID)
	}
}

func (e *Engine) logFailure(msg string, err error, fields map[string]any) {
	fields["err"] = err
	if errors.Is(err, ErrPersistence) {
		e.log.Error(msg, fields)
		return
	}
	e.log.Debug(msg, fields)
}

// cleanNotes deja texto plano: sin tags y sin entidades HTML.
func (e *Engine) cleanNotes(s string) string {
	s = strings.TrimSpace(html.UnescapeString(e.notes.Sanitize(s)))
	if utf8.RuneCountInString(s) > maxNotesLen {
		s = string([]rune(s)[:maxNotesLen])
	}
	return s
}

func notFoundOr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// cleanVitals descarta valores no positivos y temperaturas fuera de rango.
func cleanVitals(v pets.Vitals) pets.Vitals {
	var out pets.Vitals
	if v.Weight != nil && *v.Weight > 0 {
		w := *v.Weight
		out.Weight = &w
	}
	if v.Temperature != nil && *v.Temperature >= minTemperatureF && *v.Temperature <= maxTemperatureF {
		t := *v.Temperature
		out.Temperature = &t
	}
	if v.HeartRate != nil && *v.HeartRate > 0 {
		hr := *v.HeartRate
		out.HeartRate = &hr
	}
	return out
}

// mergeVitals pisa solo los valores informados; el resto queda como estaba.
func mergeVitals(cur, in pets.Vitals) pets.Vitals {
	if in.Weight != nil {
		cur.Weight = in.Weight
	}
	if in.Temperature != nil {
		cur.Temperature = in.Temperature
	}
	if in.HeartRate != nil {
		cur.HeartRate = in.HeartRate
	}
	return cur
}
