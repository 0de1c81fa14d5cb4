package support

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

// IsAdminFunc resuelve el rol efectivo del usuario (owners.Service en el router).
type IsAdminFunc func(ctx context.Context, userID string) (bool, error)

func RegisterRoutes(r chi.Router, svc *Service, isAdmin IsAdminFunc) {
	r.Route("/support/tickets", func(sr chi.Router) {
		sr.Post("/", createTicketHandler(svc))
		sr.Get("/", listMyTicketsHandler(svc))
	})

	r.Route("/admin/support/tickets", func(ar chi.Router) {
		ar.Get("/", listAllTicketsHandler(svc, isAdmin))
		ar.Patch("/{ticketID}", updateTicketStatusHandler(svc, isAdmin))
	})
}

type createTicketRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Subject  string   `json:"subject"`
	Message  string   `json:"message"`
	Priority Priority `json:"priority" enums:"low,medium,high,urgent"` // opcional, default medium
}

type updateTicketStatusRequest struct {
	Status Status `json:"status" enums:"open,in_progress,resolved,closed"`
}

type ticketResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Priority  Priority  `json:"priority"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type validationResponse struct {
	Errors []string `json:"errors"`
}

// createTicketHandler godoc
// @Summary Crear ticket de soporte
// @Description Se puede enviar sin sesión; si hay usuario autenticado queda asociado. Devuelve todos los errores de validación juntos.
// @Tags support
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createTicketRequest true "Datos del ticket"
// @Success 201 {object} ticketResponse
// @Failure 400 {object} validationResponse
// @Failure 500 {string} string "internal error"
// @Router /support/tickets [post]
func createTicketHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var userID string
		if claims, ok := middleware.GetClaims(r.Context()); ok {
			userID = claims.UserID
		}

		var req createTicketRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		t, err := svc.Create(r.Context(), userID, CreateInput{
			Name:     req.Name,
			Email:    req.Email,
			Subject:  req.Subject,
			Message:  req.Message,
			Priority: req.Priority,
		})
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				writeJSON(w, http.StatusBadRequest, validationResponse{Errors: verr.Problems})
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toTicketResponse(t))
	}
}

// listMyTicketsHandler godoc
// @Summary Mis tickets
// @Tags support
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {array} ticketResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /support/tickets [get]
func listMyTicketsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListMine(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toTicketResponses(items))
	}
}

// listAllTicketsHandler godoc
// @Summary Todos los tickets (admin)
// @Tags support
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param status query string false "Filtrar por estado (open, in_progress, resolved, closed)"
// @Success 200 {array} ticketResponse
// @Failure 400 {string} string "invalid status"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /admin/support/tickets [get]
func listAllTicketsHandler(svc *Service, isAdmin IsAdminFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r, isAdmin) {
			return
		}

		status := Status(strings.TrimSpace(r.URL.Query().Get("status")))
		items, err := svc.ListAll(r.Context(), status)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "invalid status", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toTicketResponses(items))
	}
}

// updateTicketStatusHandler godoc
// @Summary Cambiar estado de un ticket (admin)
// @Tags support
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param ticketID path string true "ID del ticket"
// @Param payload body updateTicketStatusRequest true "Nuevo estado"
// @Success 200 {object} ticketResponse
// @Failure 400 {string} string "invalid json / invalid status"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "ticket not found"
// @Router /admin/support/tickets/{ticketID} [patch]
func updateTicketStatusHandler(svc *Service, isAdmin IsAdminFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r, isAdmin) {
			return
		}

		var req updateTicketStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		t, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "ticketID"), req.Status)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "invalid status", http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "ticket not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, toTicketResponse(t))
	}
}

// requireAdmin escribe 401/403 y devuelve false si el usuario no es admin.
func requireAdmin(w http.ResponseWriter, r *http.Request, isAdmin IsAdminFunc) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if isAdmin == nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	admin, err := isAdmin(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return false
	}
	if !admin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func toTicketResponse(t Ticket) ticketResponse {
	return ticketResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		Name:      t.Name,
		Email:     t.Email,
		Subject:   t.Subject,
		Message:   t.Message,
		Priority:  t.Priority,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func toTicketResponses(items []Ticket) []ticketResponse {
	out := make([]ticketResponse, 0, len(items))
	for _, t := range items {
		out = append(out, toTicketResponse(t))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
