package reviews

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-sitting-marketplace/internal/domain/bookings"
	"pet-sitting-marketplace/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service, bookingsSvc *bookings.Service) {
	r.Post("/bookings/{bookingID}/review", createReviewHandler(svc, bookingsSvc))
	r.Get("/listings/{listingID}/reviews", listReviewsHandler(svc))
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type reviewResponse struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	ListingID string    `json:"listing_id"`
	OwnerID   string    `json:"owner_id"`
	SitterID  string    `json:"sitter_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type reviewListResponse struct {
	Items         []reviewResponse `json:"items"`
	AverageRating float64          `json:"average_rating"`
	Count         int              `json:"count"`
}

func createReviewHandler(svc *Service, bookingsSvc *bookings.Service) http.HandlerFunc {
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

		var req createReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rv, err := svc.Create(r.Context(), BookingInfo{
			ID:        b.ID,
			ListingID: b.ListingID,
			OwnerID:   b.OwnerID,
			SitterID:  b.SitterID,
			Completed: b.Status == bookings.StatusCompleted,
		}, claims.UserID, req.Rating, req.Comment)
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			case ErrBadState:
				http.Error(w, err.Error(), http.StatusConflict)
			case ErrAlreadyExists:
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toReviewResponse(rv))
	}
}

func listReviewsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID := chi.URLParam(r, "listingID")

		items, err := svc.ListByListing(r.Context(), listingID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		avg, count, err := svc.AverageForListing(r.Context(), listingID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := reviewListResponse{
			Items:         make([]reviewResponse, 0, len(items)),
			AverageRating: avg,
			Count:         count,
		}
		for _, rv := range items {
			out.Items = append(out.Items, toReviewResponse(rv))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toReviewResponse(rv Review) reviewResponse {
	return reviewResponse{
		ID:        rv.ID,
		BookingID: rv.BookingID,
		ListingID: rv.ListingID,
		OwnerID:   rv.OwnerID,
		SitterID:  rv.SitterID,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en pets/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
