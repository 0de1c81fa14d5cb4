package pets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"purrr-love/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// EnsureOwnerFunc materializa al owner antes de adoptar (FK pets.owner_user_id).
// El router la arma con owners.Service para no importar ese paquete desde acá.
type EnsureOwnerFunc func(ctx context.Context, userID string) error

func RegisterRoutes(r chi.Router, svc *Service, ensureOwner EnsureOwnerFunc) {
	// Rutas planas: economy y health cuelgan subrutas de /pets/{petID} sobre el mismo router.
	r.Post("/pets", adoptPetHandler(svc, ensureOwner))
	r.Get("/pets", listPetsHandler(svc))
	r.Get("/pets/{petID}", getPetHandler(svc))
}

// adoptPetRequest es el cuerpo para adoptar un gato.
type adoptPetRequest struct {
	Name  string `json:"name"`
	Breed string `json:"breed"` // opcional, default "domestic"
	Color string `json:"color"` // opcional, default "mixed"
}

type statsResponse struct {
	Health      int `json:"health"`
	Happiness   int `json:"happiness"`
	Energy      int `json:"energy"`
	Hunger      int `json:"hunger"`
	Cleanliness int `json:"cleanliness"`
}

type vitalsResponse struct {
	Weight      *float64 `json:"weight,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	HeartRate   *int     `json:"heart_rate,omitempty"`
}

// PetResponse es la representación JSON de una mascota. Exportado porque
// economy y health devuelven la mascota actualizada con el mismo formato.
type PetResponse struct {
	ID              string         `json:"id"`
	OwnerUserID     string         `json:"owner_user_id"`
	Name            string         `json:"name"`
	Breed           string         `json:"breed"`
	Color           string         `json:"color"`
	Stats           statsResponse  `json:"stats"`
	Vitals          vitalsResponse `json:"vitals"`
	LastHealthCheck *time.Time     `json:"last_health_check,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// adoptPetHandler godoc
// @Summary Adoptar un gato
// @Description Crea un gato nuevo para el usuario autenticado con stats iniciales (health/happiness/energy/cleanliness 100, hunger 0).
// @Tags pets
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body adoptPetRequest true "Datos del gato"
// @Success 201 {object} PetResponse
// @Failure 400 {string} string "invalid json / cat name is required"
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /pets [post]
func adoptPetHandler(svc *Service, ensureOwner EnsureOwnerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req adoptPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if ensureOwner != nil {
			if err := ensureOwner(r.Context(), claims.UserID); err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}

		p, err := svc.Adopt(r.Context(), claims.UserID, AdoptInput{
			Name:  req.Name,
			Breed: req.Breed,
			Color: req.Color,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "cat name is required", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, ToResponse(p))
	}
}

// listPetsHandler godoc
// @Summary Listar mis gatos
// @Tags pets
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {array} PetResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]PetResponse, 0, len(items))
		for _, p := range items {
			out = append(out, ToResponse(p))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// getPetHandler godoc
// @Summary Perfil de un gato
// @Description Solo el dueño puede ver el gato; para cualquier otro usuario responde 404.
// @Tags pets
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID del gato"
// @Success 200 {object} PetResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.GetOwned(r.Context(), chi.URLParam(r, "petID"), claims.UserID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "pet not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, ToResponse(p))
	}
}

func ToResponse(p Pet) PetResponse {
	return PetResponse{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		Name:        p.Name,
		Breed:       p.Breed,
		Color:       p.Color,
		Stats: statsResponse{
			Health:      p.Stats.Health,
			Happiness:   p.Stats.Happiness,
			Energy:      p.Stats.Energy,
			Hunger:      p.Stats.Hunger,
			Cleanliness: p.Stats.Cleanliness,
		},
		Vitals: vitalsResponse{
			Weight:      p.Vitals.Weight,
			Temperature: p.Vitals.Temperature,
			HeartRate:   p.Vitals.HeartRate,
		},
		LastHealthCheck: p.LastHealthCheck,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos (pets/economy/health)
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
