package bookings

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"pet-sitting-marketplace/internal/domain/listings"
	"pet-sitting-marketplace/internal/domain/messaging"
	"pet-sitting-marketplace/internal/domain/pets"
	"pet-sitting-marketplace/internal/middleware"
)

var validate = validator.New()

func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service, listingsSvc *listings.Service, messagingSvc *messaging.Service) {
	r.Route("/bookings", func(br chi.Router) {
		br.Post("/", createBookingHandler(svc, petsSvc, listingsSvc))
		br.Get("/", listBookingsHandler(svc))
		br.Get("/{bookingID}", getBookingHandler(svc))

		br.Post("/{bookingID}/accept", acceptBookingHandler(svc, messagingSvc))
		br.Post("/{bookingID}/decline", declineBookingHandler(svc, messagingSvc))
		br.Post("/{bookingID}/cancel", cancelBookingHandler(svc))
		br.Post("/{bookingID}/start", startBookingHandler(svc))
		br.Post("/{bookingID}/complete", completeBookingHandler(svc))
	})
}

type createBookingRequest struct {
	ListingID       string   `json:"listing_id" validate:"required"`
	PetIDs          []string `json:"pet_ids" validate:"required,min=1"`
	StartDate       string   `json:"start_date" validate:"required"` // YYYY-MM-DD
	EndDate         string   `json:"end_date" validate:"required"`   // YYYY-MM-DD
	SpecialRequests string   `json:"special_requests"`
}

type decisionRequest struct {
	ConversationID string `json:"conversation_id"`
	Reason         string `json:"reason"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type bookingResponse struct {
	ID                 string     `json:"id"`
	ListingID          string     `json:"listing_id"`
	OwnerID            string     `json:"owner_id"`
	SitterID           string     `json:"sitter_id"`
	PetIDs             []string   `json:"pet_ids"`
	StartDate          string     `json:"start_date"`
	EndDate            string     `json:"end_date"`
	Status             string     `json:"status"`
	TotalPriceCents    *int64     `json:"total_price_cents,omitempty"`
	SpecialRequests    string     `json:"special_requests,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

type statusChangeResponse struct {
	Booking           bookingResponse `json:"booking"`
	NotificationSent  bool            `json:"notification_sent"`
	NotificationError string          `json:"notification_error,omitempty"`
}

type groupedResponse struct {
	Current  []bookingResponse `json:"current"`
	Upcoming []bookingResponse `json:"upcoming"`
	Past     []bookingResponse `json:"past"`
}

func createBookingHandler(svc *Service, petsSvc *pets.Service, listingsSvc *listings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			http.Error(w, "end_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		l, err := listingsSvc.GetByID(r.Context(), req.ListingID)
		if err != nil {
			http.Error(w, "listing not found", http.StatusNotFound)
			return
		}
		if !l.Active {
			http.Error(w, "listing is not active", http.StatusBadRequest)
			return
		}
		if len(req.PetIDs) > l.MaxPets {
			http.Error(w, "too many pets for this listing", http.StatusBadRequest)
			return
		}

		owns, err := petsSvc.OwnsAll(r.Context(), claims.UserID, req.PetIDs)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !owns {
			http.Error(w, "pets must belong to the booking owner", http.StatusBadRequest)
			return
		}

		// El precio total lo calcula este caller: noches * tarifa.
		nights := int64(end.Sub(start).Hours() / 24)
		total := nights * l.RatePerNightCents

		b, err := svc.Create(r.Context(), CreateInput{
			ListingID:       l.ID,
			OwnerID:         claims.UserID,
			SitterID:        l.SitterID,
			PetIDs:          req.PetIDs,
			StartDate:       start,
			EndDate:         end,
			TotalPriceCents: &total,
			SpecialRequests: req.SpecialRequests,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toBookingResponse(b))
	}
}

func listBookingsHandler(svc *Service) http.HandlerFunc {
	// Agrupado para las pestañas: ?role=owner (default) | sitter
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		asSitter := r.URL.Query().Get("role") == "sitter"
		g, err := svc.Grouped(r.Context(), claims.UserID, asSitter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toGroupedResponse(g))
	}
}

func getBookingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		b, err := svc.GetByID(r.Context(), chi.URLParam(r, "bookingID"))
		if err != nil {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		if claims.UserID != b.OwnerID && claims.UserID != b.SitterID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toBookingResponse(b))
	}
}

func acceptBookingHandler(svc *Service, messagingSvc *messaging.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decisionHandler(w, r, svc, messagingSvc, true)
	}
}

func declineBookingHandler(svc *Service, messagingSvc *messaging.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decisionHandler(w, r, svc, messagingSvc, false)
	}
}

// decisionHandler comparte el flujo de accept/decline: resuelve la
// conversación (la del body o get-or-create del par owner/sitter) y mapea
// el resultado degradado a un 200 con notification_sent.
func decisionHandler(w http.ResponseWriter, r *http.Request, svc *Service, messagingSvc *messaging.Service, accept bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	bookingID := chi.URLParam(r, "bookingID")

	var req decisionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // body opcional
	}

	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID == "" {
		b, err := svc.GetByID(r.Context(), bookingID)
		if err != nil {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		conversationID, err = messagingSvc.GetOrCreateConversation(r.Context(), b.OwnerID, b.SitterID)
		if err != nil {
			http.Error(w, "could not resolve conversation", http.StatusInternalServerError)
			return
		}
	}

	var (
		change StatusChange
		err    error
	)
	if accept {
		change, err = svc.Accept(r.Context(), bookingID, claims.UserID, conversationID)
	} else {
		change, err = svc.Decline(r.Context(), bookingID, claims.UserID, conversationID, req.Reason)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := statusChangeResponse{
		Booking:          toBookingResponse(change.Booking),
		NotificationSent: change.NotifyErr == nil,
	}
	if change.NotifyErr != nil {
		resp.NotificationError = change.NotifyErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func cancelBookingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req cancelRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		b, err := svc.Cancel(r.Context(), chi.URLParam(r, "bookingID"), claims.UserID, req.Reason)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toBookingResponse(b))
	}
}

func startBookingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		b, err := svc.Start(r.Context(), chi.URLParam(r, "bookingID"), claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toBookingResponse(b))
	}
}

func completeBookingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		b, err := svc.Complete(r.Context(), chi.URLParam(r, "bookingID"), claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toBookingResponse(b))
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch err {
	case ErrInvalidInput:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case ErrNotFound:
		http.Error(w, "booking not found", http.StatusNotFound)
	case ErrForbidden:
		http.Error(w, "forbidden", http.StatusForbidden)
	case ErrBadState, ErrStatusConflict:
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toBookingResponse(b Booking) bookingResponse {
	const layout = "2006-01-02"
	return bookingResponse{
		ID:                 b.ID,
		ListingID:          b.ListingID,
		OwnerID:            b.OwnerID,
		SitterID:           b.SitterID,
		PetIDs:             b.PetIDs,
		StartDate:          b.StartDate.Format(layout),
		EndDate:            b.EndDate.Format(layout),
		Status:             string(b.Status),
		TotalPriceCents:    b.TotalPriceCents,
		SpecialRequests:    b.SpecialRequests,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		ConfirmedAt:        b.ConfirmedAt,
		CancelledAt:        b.CancelledAt,
		CompletedAt:        b.CompletedAt,
	}
}

func toGroupedResponse(g Grouped) groupedResponse {
	conv := func(items []Booking) []bookingResponse {
		out := make([]bookingResponse, 0, len(items))
		for _, b := range items {
			out = append(out, toBookingResponse(b))
		}
		return out
	}
	return groupedResponse{
		Current:  conv(g.Current),
		Upcoming: conv(g.Upcoming),
		Past:     conv(g.Past),
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en pets/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
