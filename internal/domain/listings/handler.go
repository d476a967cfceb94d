package listings

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"pet-sitting-marketplace/internal/middleware"
)

var validate = validator.New()

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/listings", func(lr chi.Router) {
		lr.Post("/", createListingHandler(svc))
		lr.Get("/", listActiveHandler(svc))
		lr.Get("/{listingID}", getListingHandler(svc))
		lr.Post("/{listingID}/deactivate", deactivateListingHandler(svc))
	})

	r.Get("/me/listings", listMyListingsHandler(svc))
}

type createListingRequest struct {
	Title             string `json:"title" validate:"required"`
	Description       string `json:"description"`
	City              string `json:"city"`
	RatePerNightCents int64  `json:"rate_per_night_cents" validate:"required,gt=0"`
	MaxPets           int    `json:"max_pets" validate:"gte=0"`
}

type listingResponse struct {
	ID                string    `json:"id"`
	SitterID          string    `json:"sitter_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	City              string    `json:"city"`
	RatePerNightCents int64     `json:"rate_per_night_cents"`
	MaxPets           int       `json:"max_pets"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func createListingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createListingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		l, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Title:             req.Title,
			Description:       req.Description,
			City:              req.City,
			RatePerNightCents: req.RatePerNightCents,
			MaxPets:           req.MaxPets,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toListingResponse(l))
	}
}

func listActiveHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListActive(r.Context(), r.URL.Query().Get("city"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]listingResponse, 0, len(items))
		for _, l := range items {
			out = append(out, toListingResponse(l))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getListingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := svc.GetByID(r.Context(), chi.URLParam(r, "listingID"))
		if err != nil {
			http.Error(w, "listing not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toListingResponse(l))
	}
}

func deactivateListingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		l, err := svc.Deactivate(r.Context(), chi.URLParam(r, "listingID"), claims.UserID)
		if err != nil {
			switch err {
			case ErrNotFound, ErrInvalidInput:
				http.Error(w, "listing not found", http.StatusNotFound)
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toListingResponse(l))
	}
}

func listMyListingsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListBySitter(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]listingResponse, 0, len(items))
		for _, l := range items {
			out = append(out, toListingResponse(l))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toListingResponse(l Listing) listingResponse {
	return listingResponse{
		ID:                l.ID,
		SitterID:          l.SitterID,
		Title:             l.Title,
		Description:       l.Description,
		City:              l.City,
		RatePerNightCents: l.RatePerNightCents,
		MaxPets:           l.MaxPets,
		Active:            l.Active,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en pets/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
