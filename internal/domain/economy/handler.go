package economy

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"purrr-love/internal/domain/catalog"
	"purrr-love/internal/domain/health"
	"purrr-love/internal/domain/pets"
	"purrr-love/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// Mensajes que ve el usuario. Nunca se expone el error interno.
const (
	msgUnknownAction      = "unknown action"
	msgInsufficientEnergy = "your cat is too tired to play"
	msgInsufficientFunds  = "Not enough coins to purchase this item!"
	msgNotFound           = "pet not found"
	msgPersistence        = "something went wrong, please try again"
)

// RegisterRoutes: catálogo público, acciones y chequeos de salud.
// limit es opcional (rate limit por usuario para play/purchase).
func RegisterRoutes(r chi.Router, eng *Engine, limit func(http.Handler) http.Handler) {
	r.Get("/catalog/games", listCatalogHandler(eng.Catalog(), catalog.KindGame))
	r.Get("/catalog/store", listCatalogHandler(eng.Catalog(), catalog.KindStoreItem))

	actions := r
	if limit != nil {
		actions = r.With(limit)
	}
	actions.Post("/pets/{petID}/play", resolveActionHandler(eng, catalog.KindGame))
	actions.Post("/pets/{petID}/purchase", resolveActionHandler(eng, catalog.KindStoreItem))

	r.Post("/pets/{petID}/health-checks", recordHealthCheckHandler(eng))
}

type rangeResponse struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type catalogItemResponse struct {
	Key         string                   `json:"key"`
	Kind        catalog.Kind             `json:"kind"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Icon        string                   `json:"icon"`
	Cost        int64                    `json:"cost"`
	Reward      *rangeResponse           `json:"reward,omitempty"`
	Effects     map[string]rangeResponse `json:"effects"`
}

// playRequest: cuerpo de POST /pets/{petID}/play.
type playRequest struct {
	Game string `json:"game"`
}

// purchaseRequest: cuerpo de POST /pets/{petID}/purchase.
type purchaseRequest struct {
	Item string `json:"item"`
}

type actionResponse struct {
	Pet        pets.PetResponse `json:"pet"`
	Coins      int64            `json:"coins"`
	CoinsDelta int64            `json:"coins_delta"`
	Deltas     map[string]int   `json:"deltas"`
	Message    string           `json:"message"`
	Action     string           `json:"action"`
}

// healthCheckRequest: los cinco stats son obligatorios; vitals y notas opcionales.
type healthCheckRequest struct {
	Health      *int     `json:"health"`
	Happiness   *int     `json:"happiness"`
	Energy      *int     `json:"energy"`
	Hunger      *int     `json:"hunger"`
	Cleanliness *int     `json:"cleanliness"`
	Weight      *float64 `json:"weight"`
	Temperature *float64 `json:"temperature"`
	HeartRate   *int     `json:"heart_rate"`
	Notes       string   `json:"notes"`
}

type healthCheckResponse struct {
	Pet pets.PetResponse   `json:"pet"`
	Log health.LogResponse `json:"log"`
}

// listCatalogHandler godoc
// @Summary Catálogo de juegos o tienda
// @Description Definiciones estáticas cargadas al arrancar. No requiere autenticación.
// @Tags catalog
// @Produce json
// @Success 200 {array} catalogItemResponse
// @Router /catalog/games [get]
// @Router /catalog/store [get]
func listCatalogHandler(cat *catalog.Catalog, kind catalog.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := cat.List(kind)
		out := make([]catalogItemResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toCatalogItemResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// resolveActionHandler godoc
// @Summary Jugar o comprar
// @Description Resuelve un juego (`/play`, body `{"game": "..."}`) o una compra (`/purchase`, body `{"item": "..."}`) sobre el gato. Stats y saldo se actualizan en una sola transacción.
// @Tags economy
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID del gato"
// @Param payload body playRequest true "Juego a jugar"
// @Success 200 {object} actionResponse
// @Failure 400 {string} string "invalid json / unknown action"
// @Failure 401 {string} string "unauthorized"
// @Failure 402 {string} string "Not enough coins to purchase this item!"
// @Failure 404 {string} string "pet not found"
// @Failure 409 {string} string "your cat is too tired to play"
// @Failure 429 {string} string "rate limit exceeded"
// @Failure 500 {string} string "something went wrong, please try again"
// @Router /pets/{petID}/play [post]
// @Router /pets/{petID}/purchase [post]
func resolveActionHandler(eng *Engine, kind catalog.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var key string
		if kind == catalog.KindGame {
			var req playRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			key = req.Game
		} else {
			var req purchaseRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			key = req.Item
		}

		res, err := eng.ResolveAction(r.Context(), ResolveInput{
			OwnerID: claims.UserID,
			PetID:   chi.URLParam(r, "petID"),
			Kind:    kind,
			Key:     key,
		})
		if err != nil {
			writeEngineError(w, err)
			return
		}

		deltas := make(map[string]int, len(res.Deltas))
		for attr, d := range res.Deltas {
			deltas[string(attr)] = d
		}
		writeJSON(w, http.StatusOK, actionResponse{
			Pet:        pets.ToResponse(res.Pet),
			Coins:      res.Coins,
			CoinsDelta: res.CoinsDelta,
			Deltas:     deltas,
			Message:    res.Message,
			Action:     res.Action.Key,
		})
	}
}

// recordHealthCheckHandler godoc
// @Summary Registrar chequeo de salud
// @Description Reemplaza los cinco stats del gato (acotados a 0-100), actualiza vitals y agrega una entrada al historial.
// @Tags health
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID del gato"
// @Param payload body healthCheckRequest true "Valores del chequeo"
// @Success 201 {object} healthCheckResponse
// @Failure 400 {string} string "invalid json / all five stats are required"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "pet not found"
// @Failure 500 {string} string "something went wrong, please try again"
// @Router /pets/{petID}/health-checks [post]
func recordHealthCheckHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req healthCheckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Health == nil || req.Happiness == nil || req.Energy == nil || req.Hunger == nil || req.Cleanliness == nil {
			http.Error(w, "all five stats are required", http.StatusBadRequest)
			return
		}

		res, err := eng.RecordHealthCheck(r.Context(), HealthCheckInput{
			OwnerID: claims.UserID,
			PetID:   chi.URLParam(r, "petID"),
			Stats: pets.Stats{
				Health:      *req.Health,
				Happiness:   *req.Happiness,
				Energy:      *req.Energy,
				Hunger:      *req.Hunger,
				Cleanliness: *req.Cleanliness,
			},
			Vitals: pets.Vitals{
				Weight:      req.Weight,
				Temperature: req.Temperature,
				HeartRate:   req.HeartRate,
			},
			Notes: req.Notes,
		})
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, healthCheckResponse{
			Pet: pets.ToResponse(res.Pet),
			Log: health.ToLogResponse(res.Log),
		})
	}
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownAction):
		http.Error(w, msgUnknownAction, http.StatusBadRequest)
	case errors.Is(err, ErrInsufficientEnergy):
		http.Error(w, msgInsufficientEnergy, http.StatusConflict)
	case errors.Is(err, ErrInsufficientFunds):
		http.Error(w, msgInsufficientFunds, http.StatusPaymentRequired)
	case errors.Is(err, ErrNotFound):
		http.Error(w, msgNotFound, http.StatusNotFound)
	default:
		http.Error(w, msgPersistence, http.StatusInternalServerError)
	}
}

func toCatalogItemResponse(a catalog.Action) catalogItemResponse {
	out := catalogItemResponse{
		Key:         a.Key,
		Kind:        a.Kind,
		Name:        a.Name,
		Description: a.Description,
		Icon:        a.Icon,
		Cost:        a.Cost,
		Effects:     make(map[string]rangeResponse, len(a.Effects)),
	}
	if a.Kind == catalog.KindGame {
		out.Reward = &rangeResponse{Min: a.Reward.Min, Max: a.Reward.Max}
	}
	for _, e := range a.Effects {
		out.Effects[string(e.Attribute)] = rangeResponse{Min: e.Delta.Min, Max: e.Delta.Max}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
