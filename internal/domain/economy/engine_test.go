package economy

import (
	"context"
	"strings"
	"testing"
	"time"

	"purrr-love/internal/domain/catalog"
	"purrr-love/internal/domain/pets"
	"purrr-love/internal/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(store *testStore, opts ...Option) *Engine {
	base := []Option{WithRand(edgeRand{low: false}), WithClock(fixedClock(t0))}
	return NewEngine(store, testCatalog(), append(base, opts...)...)
}

func TestEngine_ResolveAction_PlayPersistsPetCoinsAndLedger(t *testing.T) {
	store := newTestStore()
	store.addOwner("u1", 100)
	store.addPet("p1", "u1", pets.Stats{Health: 100, Happiness: 50, Energy: 20})

	var changed []string
	eng := newTestEngine(store, WithOnChange(func(_ context.Context, ownerID string) {
		changed = append(changed, ownerID)
	}))

	res, err := eng.ResolveAction(context.Background(), ResolveInput{
		OwnerID: "u1", PetID: "p1", Kind: catalog.KindGame, Key: "honeysuckle_dance",
	})
	require.NoError(t, err)

	assert.EqualValues(t, 115, res.Coins)
	assert.EqualValues(t, 15, res.CoinsDelta)
	assert.Equal(t, 65, res.Pet.Stats.Happiness)
	assert.Equal(t, 10, res.Pet.Stats.Energy)
	assert.Equal(t, t0, res.Pet.UpdatedAt)
	assert.Equal(t, "Milo danced and earned 15 coins!", res.Message)

	assert.EqualValues(t, 115, store.owners["u1"].Coins)
	assert.Equal(t, res.Pet.Stats, store.pets["p1"].Stats)
	require.Len(t, store.actionLogs, 1)
	assert.Equal(t, "honeysuckle_dance", store.actionLogs[0].ActionKey)
	assert.EqualValues(t, 115, store.actionLogs[0].CoinsAfter)
	assert.Equal(t, []string{"u1"}, changed)
}

func TestEngine_ResolveAction_PurchaseUntilBroke(t *testing.T) {
	store := newTestStore()
	store.addOwner("u1", 30)
	store.addPet("p1", "u1", pets.DefaultStats())
	eng := newTestEngine(store)
	ctx := context.Background()

	in := ResolveInput{OwnerID: "u1", PetID: "p1", Kind: catalog.KindStoreItem, Key: "vitamin_supplements"}

	res, err := eng.ResolveAction(ctx, in)
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Coins)

	before := store.pets["p1"]
	_, err = eng.ResolveAction(ctx, in)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.EqualValues(t, 0, store.owners["u1"].Coins)
	assert.Equal(t, before, store.pets["p1"])
	assert.Len(t, store.actionLogs, 1)
}

func TestEngine_ResolveAction_EnergyGateLeavesStateUntouched(t *testing.T) {
	store := newTestStore()
	store.addOwner("u1", 50)
	store.addPet("p1", "u1", pets.Stats{Health: 80, Happiness: 40, Energy: 4})
	eng := newTestEngine(store)

	var changed bool
	eng.onChange = func(context.Context, string) { changed = true }

	before := store.pets["p1"]
	_, err := eng.ResolveAction(context.Background(), ResolveInput{
		OwnerID: "u1", PetID: "p1", Kind: catalog.KindGame, Key: "honeysuckle_dance",
	})
	assert.ErrorIs(t, err, ErrInsufficientEnergy)
	assert.Equal(t, before, store.pets["p1"])
	assert.EqualValues(t, 50, store.owners["u1"].Coins)
	assert.Empty(t, store.actionLogs)
	assert.False(t, changed)
}

func TestEngine_ResolveAction_Atomicity(t *testing.T) {
	for _, op := range []string{"update_pet", "adjust_coins", "action_log"} {
		t.Run(op, func(t *testing.T) {
			store := newTestStore()
			store.addOwner("u1", 100)
			store.addPet("p1", "u1", pets.Stats{Health: 100, Happiness: 50, Energy: 50})
			store.failOn = op

			core, logs := observer.New(zapcore.ErrorLevel)
			eng := newTestEngine(store, WithLogger(logger.FromZap(zap.New(core))))

			before := store.pets["p1"]
			_, err := eng.ResolveAction(context.Background(), ResolveInput{
				OwnerID: "u1", PetID: "p1", Kind: catalog.KindGame, Key: "honeysuckle_dance",
			})
			require.ErrorIs(t, err, ErrPersistence)
			assert.ErrorIs(t, err, errBoom)

			assert.Equal(t, before, store.pets["p1"])
			assert.EqualValues(t, 100, store.owners["u1"].Coins)
			assert.Empty(t, store.actionLogs)
			assert.Equal(t, 1, logs.Len(), "persistence failures are logged at error level")
		})
	}
}

func TestEngine_ResolveAction_NotFound(t *testing.T) {
	store := newTestStore()
	store.addOwner("u1", 100)
	store.addOwner("u2", 100)
	store.addPet("p1", "u1", pets.DefaultStats())
	eng := newTestEngine(store)
	ctx := context.Background()

	cases := []ResolveInput{
		{OwnerID: "u2", PetID: "p1"},      // gato ajeno
		{OwnerID: "u1", PetID: "missing"}, // no existe
		{OwnerID: "ghost", PetID: "p1"},   // owner sin fila
		{OwnerID: "", PetID: "p1"},
	}
	for _, in := range cases {
		in.Kind = catalog.KindGame
		in.Key = "honeysuckle_dance"
		_, err := eng.ResolveAction(ctx, in)
		assert.ErrorIs(t, err, ErrNotFound, "%+v", in)
	}
	assert.EqualValues(t, 100, store.owners["u2"].Coins)
}

func TestEngine_ResolveAction_UnknownAction(t *testing.T) {
	store := newTestStore()
	store.addOwner("u1", 100)
	store.addPet("p1", "u1", pets.DefaultStats())
	eng := newTestEngine(store)

	_, err := eng.ResolveAction(context.Background(), ResolveInput{
		OwnerID: "u1", PetID: "p1", Kind: catalog.KindStoreItem, Key: "honeysuckle_dance",
	})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestEngine_RecordHealthCheck_ClampsAndAppendsOneLog(t *testing.T) {
	store := newTestStore()
	store.addOwner("u1", 100)
	store.addPet("p1", "u1", pets.DefaultStats())

	now := time.Now().UTC()
	eng := NewEngine(store, testCatalog())

	weight := 4.2
	badTemp := 250.0
	hr := 0
	res, err := eng.RecordHealthCheck(context.Background(), HealthCheckInput{
		OwnerID: "u1",
		PetID:   "p1",
		Stats:   pets.Stats{Health: 120, Happiness: -5, Energy: 60, Hunger: 30, Cleanliness: 100},
		Vitals:  pets.Vitals{Weight: &weight, Temperature: &badTemp, HeartRate: &hr},
		Notes:   "  <script>alert(1)</script>ate well  ",
	})
	require.NoError(t, err)

	want := pets.Stats{Health: 100, Happiness: 0, Energy: 60, Hunger: 30, Cleanliness: 100}
	stored := store.pets["p1"]
	assert.Equal(t, want, stored.Stats)
	assert.Equal(t, want, res.Pet.Stats)
	require.NotNil(t, stored.Vitals.Weight)
	assert.Equal(t, 4.2, *stored.Vitals.Weight)
	assert.Nil(t, stored.Vitals.Temperature)
	assert.Nil(t, stored.Vitals.HeartRate)
	require.NotNil(t, stored.LastHealthCheck)

	require.Len(t, store.healthLogs, 1)
	l := store.healthLogs[0]
	assert.Equal(t, want, l.Stats)
	assert.Equal(t, "ate well", l.Notes)
	assert.False(t, l.RecordedAt.Before(now))
	assert.Empty(t, store.actionLogs)
	assert.EqualValues(t, 100, store.owners["u1"].Coins)
}

func TestEngine_RecordHealthCheck_NotesArePlainText(t *testing.T) {
	store := newTestStore()
	store.addOwner("u1", 100)
	store.addPet("p1", "u1", pets.DefaultStats())
	eng := newTestEngine(store)

	res, err := eng.RecordHealthCheck(context.Background(), HealthCheckInput{
		OwnerID: "u1", PetID: "p1", Stats: pets.DefaultStats(),
		Notes: `Ate "chicken" & fish, weight < 5kg, it's <b>fine</b>`,
	})
	require.NoError(t, err)
	assert.Equal(t, `Ate "chicken" & fish, weight < 5kg, it's fine`, res.Log.Notes)

	// el tope se mide sobre el texto plano, no sobre las entidades
	res, err = eng.RecordHealthCheck(context.Background(), HealthCheckInput{
		OwnerID: "u1", PetID: "p1", Stats: pets.DefaultStats(),
		Notes: strings.Repeat("&", maxNotesLen+500),
	})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("&", maxNotesLen), res.Log.Notes)
}

func TestEngine_RecordHealthCheck_KeepsPreviousVitalsWhenOmitted(t *testing.T) {
	store := newTestStore()
	store.addOwner("u1", 100)
	w := 5.0
	store.pets["p1"] = pets.Pet{ID: "p1", OwnerUserID: "u1", Stats: pets.DefaultStats(), Vitals: pets.Vitals{Weight: &w}}
	eng := newTestEngine(store)

	temp := 101.5
	res, err := eng.RecordHealthCheck(context.Background(), HealthCheckInput{
		OwnerID: "u1", PetID: "p1", Stats: pets.DefaultStats(), Vitals: pets.Vitals{Temperature: &temp},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Pet.Vitals.Weight)
	assert.Equal(t, 5.0, *res.Pet.Vitals.Weight)
	require.NotNil(t, res.Pet.Vitals.Temperature)
	assert.Equal(t, 101.5, *res.Pet.Vitals.Temperature)
}

func TestEngine_RecordHealthCheck_FailureLeavesNoTrace(t *testing.T) {
	store := newTestStore()
	store.addOwner("u1", 100)
	store.addPet("p1", "u1", pets.DefaultStats())
	store.failOn = "health_log"
	eng := newTestEngine(store)

	before := store.pets["p1"]
	_, err := eng.RecordHealthCheck(context.Background(), HealthCheckInput{
		OwnerID: "u1", PetID: "p1", Stats: pets.Stats{Health: 10},
	})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, before, store.pets["p1"])
	assert.Empty(t, store.healthLogs)
}

func TestEngine_RecordHealthCheck_ForeignPet(t *testing.T) {
	store := newTestStore()
	store.addOwner("u1", 100)
	store.addPet("p1", "u1", pets.DefaultStats())
	eng := newTestEngine(store)

	_, err := eng.RecordHealthCheck(context.Background(), HealthCheckInput{OwnerID: "u2", PetID: "p1"})
	assert.ErrorIs(t, err, ErrNotFound)
}
