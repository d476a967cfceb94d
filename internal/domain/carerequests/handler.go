package carerequests

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-sitting-marketplace/internal/domain/bookings"
	"pet-sitting-marketplace/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service, bookingsSvc *bookings.Service) {
	r.Route("/bookings/{bookingID}/care-requests", func(cr chi.Router) {
		cr.Post("/", issueCareRequestHandler(svc, bookingsSvc))
		cr.Get("/", listCareRequestsHandler(svc, bookingsSvc))
		cr.Get("/cooldown", cooldownStatusHandler(svc, bookingsSvc))
	})
}

type issueCareRequestRequest struct {
	Type string `json:"type"`
}

type logEntryResponse struct {
	ID             string    `json:"id"`
	BookingID      string    `json:"booking_id"`
	Type           string    `json:"type"`
	ConversationID string    `json:"conversation_id"`
	MessageID      string    `json:"message_id"`
	CreatedAt      time.Time `json:"created_at"`
}

type cooldownStatusResponse struct {
	Type             string `json:"type"`
	OnCooldown       bool   `json:"on_cooldown"`
	RemainingMinutes int    `json:"remaining_minutes"`
}

func issueCareRequestHandler(svc *Service, bookingsSvc *bookings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		b, err := bookingsSvc.GetByID(r.Context(), chi.URLParam(r, "bookingID"))
		if err != nil {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}

		var req issueCareRequestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		t := RequestType(strings.TrimSpace(req.Type))
		entry, err := svc.Issue(r.Context(), BookingRef{
			ID:       b.ID,
			OwnerID:  b.OwnerID,
			SitterID: b.SitterID,
		}, t, claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, ErrOnCooldown):
				remaining, _ := svc.RemainingMinutes(r.Context(), b.ID, t, time.Now())
				writeJSON(w, http.StatusTooManyRequests, map[string]any{
					"error":             "request on cooldown",
					"remaining_minutes": remaining,
				})
			case errors.Is(err, ErrMessageFailed):
				http.Error(w, "could not deliver care request message", http.StatusBadGateway)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toLogEntryResponse(entry))
	}
}

func listCareRequestsHandler(svc *Service, bookingsSvc *bookings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		b, err := bookingsSvc.GetByID(r.Context(), chi.URLParam(r, "bookingID"))
		if err != nil {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		if claims.UserID != b.OwnerID && claims.UserID != b.SitterID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.repo.ListByBooking(r.Context(), b.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]logEntryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toLogEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func cooldownStatusHandler(svc *Service, bookingsSvc *bookings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		b, err := bookingsSvc.GetByID(r.Context(), chi.URLParam(r, "bookingID"))
		if err != nil {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		if claims.UserID != b.OwnerID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		statuses, err := svc.StatusFor(r.Context(), b.ID, time.Now())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]cooldownStatusResponse, 0, len(statuses))
		for _, st := range statuses {
			out = append(out, cooldownStatusResponse{
				Type:             string(st.Type),
				OnCooldown:       st.OnCooldown,
				RemainingMinutes: st.RemainingMinutes,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toLogEntryResponse(e LogEntry) logEntryResponse {
	return logEntryResponse{
		ID:             e.ID,
		BookingID:      e.BookingID,
		Type:           string(e.Type),
		ConversationID: e.ConversationID,
		MessageID:      e.MessageID,
		CreatedAt:      e.CreatedAt,
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en pets/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
