package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-sitting-marketplace/internal/domain/carerequests"
)

type careRequestRepo struct {
	mu      sync.RWMutex
	entries []carerequests.LogEntry
}

func NewCareRequestRepo() carerequests.Repository {
	return &careRequestRepo{
		entries: make([]carerequests.LogEntry, 0),
	}
}

// Create es append-only: nunca se actualiza una entrada existente.
func (r *careRequestRepo) Create(ctx context.Context, e carerequests.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("log entry id required")
	}
	for _, existing := range r.entries {
		if existing.ID == e.ID {
			return errors.New("log entry already exists")
		}
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *careRequestRepo) LatestFor(ctx context.Context, bookingID string, t carerequests.RequestType) (carerequests.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest carerequests.LogEntry
	has := false

	for _, e := range r.entries {
		if e.BookingID != bookingID || e.Type != t {
			continue
		}
		if !has || e.CreatedAt.After(latest.CreatedAt) {
			latest = e
			has = true
		}
	}

	if !has {
		return carerequests.LogEntry{}, carerequests.ErrNoEntry
	}
	return latest, nil
}

func (r *careRequestRepo) ListByBooking(ctx context.Context, bookingID string) ([]carerequests.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]carerequests.LogEntry, 0)
	for _, e := range r.entries {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}
