package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"purrr-love/internal/domain/pets"
	"purrr-love/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes expone lectura de historial y dashboard.
// El POST de chequeos lo registra economy (es una escritura transaccional del engine).
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/pets/{petID}/health-checks", listHealthLogsHandler(svc))
	r.Get("/health/dashboard", dashboardHandler(svc))
}

type statsResponse struct {
	Health      int `json:"health"`
	Happiness   int `json:"happiness"`
	Energy      int `json:"energy"`
	Hunger      int `json:"hunger"`
	Cleanliness int `json:"cleanliness"`
}

// LogResponse es un registro del historial de salud.
type LogResponse struct {
	ID          string        `json:"id"`
	PetID       string        `json:"pet_id"`
	Stats       statsResponse `json:"stats"`
	Weight      *float64      `json:"weight,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	HeartRate   *int          `json:"heart_rate,omitempty"`
	Notes       string        `json:"notes"`
	RecordedAt  time.Time     `json:"recorded_at"`
}

type summaryResponse struct {
	TotalCats      int `json:"total_cats"`
	HealthyCats    int `json:"healthy_cats"`
	AtRiskCats     int `json:"at_risk_cats"`
	AverageHealth  int `json:"average_health"`
	NeedsAttention int `json:"needs_attention"`
}

type dashboardResponse struct {
	Pets        []pets.PetResponse `json:"pets"`
	Summary     summaryResponse    `json:"summary"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// listHealthLogsHandler godoc
// @Summary Historial de salud de un gato
// @Description Chequeos registrados, el más reciente primero. Solo el dueño puede verlos.
// @Tags health
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID del gato"
// @Param limit query int false "Máximo de registros (1-200). Por defecto 50"
// @Success 200 {array} LogResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "pet not found"
// @Failure 500 {string} string "internal error"
// @Router /pets/{petID}/health-checks [get]
func listHealthLogsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}

		items, err := svc.ListLogs(r.Context(), claims.UserID, chi.URLParam(r, "petID"), limit)
		if err != nil {
			if errors.Is(err, pets.ErrNotFound) {
				http.Error(w, "pet not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]LogResponse, 0, len(items))
		for _, l := range items {
			out = append(out, ToLogResponse(l))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// dashboardHandler godoc
// @Summary Dashboard de salud
// @Description Gatos del usuario ordenados por health ascendente y agregados (sanos >= 80, en riesgo < 60, promedio, requieren atención).
// @Tags health
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} dashboardResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /health/dashboard [get]
func dashboardHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		d, err := svc.Dashboard(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := dashboardResponse{
			Pets: make([]pets.PetResponse, 0, len(d.Pets)),
			Summary: summaryResponse{
				TotalCats:      d.Summary.TotalCats,
				HealthyCats:    d.Summary.HealthyCats,
				AtRiskCats:     d.Summary.AtRiskCats,
				AverageHealth:  d.Summary.AverageHealth,
				NeedsAttention: d.Summary.NeedsAttention,
			},
			GeneratedAt: d.GeneratedAt,
		}
		for _, p := range d.Pets {
			out.Pets = append(out.Pets, pets.ToResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func ToLogResponse(l Log) LogResponse {
	return LogResponse{
		ID:    l.ID,
		PetID: l.PetID,
		Stats: statsResponse{
			Health:      l.Stats.Health,
			Happiness:   l.Stats.Happiness,
			Energy:      l.Stats.Energy,
			Hunger:      l.Stats.Hunger,
			Cleanliness: l.Stats.Cleanliness,
		},
		Weight:      l.Vitals.Weight,
		Temperature: l.Vitals.Temperature,
		HeartRate:   l.Vitals.HeartRate,
		Notes:       l.Notes,
		RecordedAt:  l.RecordedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
