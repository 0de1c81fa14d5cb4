package owners

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"purrr-love/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/me", getMeHandler(svc))
	r.Patch("/admin/owners/{ownerID}/role", setRoleHandler(svc))
}

type setRoleRequest struct {
	Role Role `json:"role"`
}

// ownerResponse es la cuenta del usuario autenticado.
type ownerResponse struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Coins     int64     `json:"coins"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// getMeHandler godoc
// @Summary Mi cuenta
// @Description Devuelve la cuenta del usuario autenticado (la crea con el saldo inicial la primera vez).
// @Tags owners
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} ownerResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /me [get]
func getMeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		o, err := svc.Ensure(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

// setRoleHandler godoc
// @Summary Cambiar el rol de un usuario (admin)
// @Description Un admin cambia el rol de otro usuario a user o admin. No puede cambiar el propio.
// @Tags owners
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param ownerID path string true "ID del usuario"
// @Param payload body setRoleRequest true "Nuevo rol"
// @Success 200 {object} ownerResponse
// @Failure 400 {string} string "invalid role"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "owner not found"
// @Router /admin/owners/{ownerID}/role [patch]
func setRoleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req setRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		o, err := svc.SetRole(r.Context(), claims.UserID, chi.URLParam(r, "ownerID"), req.Role)
		if err != nil {
			switch {
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "invalid role", http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "owner not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

func toOwnerResponse(o Owner) ownerResponse {
	return ownerResponse{
		ID:        o.ID,
		Role:      o.Role,
		Coins:     o.Coins,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
