package economy

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"purrr-love/internal/domain/catalog"
	"purrr-love/internal/domain/health"
	"purrr-love/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// History es la lectura del ledger de acciones. La implementan los stores:
// más reciente primero, como mucho limit entradas (ver health.NormalizeLimit).
type History interface {
	ActionLogs(ctx context.Context, ownerID string, limit int) ([]ActionLog, error)
}

func RegisterHistoryRoutes(r chi.Router, h History) {
	r.Get("/me/actions", listActionsHandler(h))
}

type actionLogResponse struct {
	ID         string       `json:"id"`
	PetID      string       `json:"pet_id"`
	Kind       catalog.Kind `json:"kind"`
	Action     string       `json:"action"`
	CoinsDelta int64        `json:"coins_delta"`
	CoinsAfter int64        `json:"coins_after"`
	Message    string       `json:"message"`
	CreatedAt  time.Time    `json:"created_at"`
}

// listActionsHandler godoc
// @Summary Historial de juegos y compras
// @Description Ledger del usuario autenticado, más reciente primero.
// @Tags economy
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param limit query int false "Máximo de registros (1-200). Por defecto 50"
// @Success 200 {array} actionLogResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "something went wrong, please try again"
// @Router /me/actions [get]
func listActionsHandler(h History) http.HandlerFunc {
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

		items, err := h.ActionLogs(r.Context(), claims.UserID, health.NormalizeLimit(limit))
		if err != nil {
			http.Error(w, msgPersistence, http.StatusInternalServerError)
			return
		}

		out := make([]actionLogResponse, 0, len(items))
		for _, l := range items {
			out = append(out, actionLogResponse{
				ID:         l.ID,
				PetID:      l.PetID,
				Kind:       l.Kind,
				Action:     l.ActionKey,
				CoinsDelta: l.CoinsDelta,
				CoinsAfter: l.CoinsAfter,
				Message:    l.Message,
				CreatedAt:  l.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
