package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pet-sitting-marketplace/internal/router"
)

func TestHTTP_EndToEnd_BookingLifecycle(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"
	sitterID := "sitter-1"

	// 1) Sitter publica su listing
	listingID := createListing(t, ts.URL, sitterID, map[string]any{
		"title":                "Cozy home with garden",
		"description":          "Big yard, no cages",
		"city":                 "Lima",
		"rate_per_night_cents": 4500,
		"max_pets":             2,
	})

	// 2) Owner registra su mascota
	petID := createPet(t, ts.URL, ownerID, map[string]any{
		"name":    "Milo",
		"species": "dog",
		"size":    "medium",
	})

	// 3) Owner crea el booking (empieza hoy para poder arrancarlo después)
	start := time.Now()
	end := start.AddDate(0, 0, 3)
	bookingID := createBooking(t, ts.URL, ownerID, listingID, []string{petID}, start, end)

	// 4) Nace pending y el precio es noches * tarifa
	{
		st, body := doReq(t, ts.URL, "GET", "/bookings/"+bookingID, ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get booking, got %d body=%s", st, string(body))
		}
		var resp struct {
			Status          string `json:"status"`
			TotalPriceCents *int64 `json:"total_price_cents"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "pending" {
			t.Fatalf("expected pending, got %s", resp.Status)
		}
		if resp.TotalPriceCents == nil || *resp.TotalPriceCents != 3*4500 {
			t.Fatalf("expected total 13500, got %v", resp.TotalPriceCents)
		}
	}

	// 5) El owner no puede aceptar su propio booking
	{
		st, _ := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/accept", ownerID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 accept by owner, got %d", st)
		}
	}

	// 6) Sitter acepta; la notificación de chat sale
	{
		st, body := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/accept", sitterID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 accept, got %d body=%s", st, string(body))
		}
		var resp struct {
			Booking struct {
				Status string `json:"status"`
			} `json:"booking"`
			NotificationSent bool `json:"notification_sent"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Booking.Status != "confirmed" {
			t.Fatalf("expected confirmed, got %s", resp.Booking.Status)
		}
		if !resp.NotificationSent {
			t.Fatalf("expected notification_sent = true")
		}
	}

	// 7) El mensaje de aceptación quedó en la conversación del par
	convID := getOrCreateConversation(t, ts.URL, ownerID, sitterID)
	{
		st, body := doReq(t, ts.URL, "GET", "/conversations/"+convID+"/messages", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list messages, got %d body=%s", st, string(body))
		}
		var msgs []struct {
			Text     string            `json:"text"`
			Metadata map[string]string `json:"metadata"`
		}
		_ = json.Unmarshal(body, &msgs)
		if len(msgs) != 1 {
			t.Fatalf("expected 1 message, got %d", len(msgs))
		}
		if msgs[0].Metadata["kind"] != "booking_accepted" {
			t.Fatalf("expected booking_accepted metadata, got %#v", msgs[0].Metadata)
		}
	}

	// 8) Un segundo accept sobre un booking ya confirmado => 409
	{
		st, _ := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/accept", sitterID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 re-accept, got %d", st)
		}
	}

	// 9) Sitter arranca la estadía
	{
		st, body := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/start", sitterID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 start, got %d body=%s", st, string(body))
		}
	}

	// 10) Owner pide foto del paseo
	{
		st, body := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/care-requests", ownerID, map[string]any{
			"type": "walk",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 care request, got %d body=%s", st, string(body))
		}
	}

	// 11) Segundo walk dentro de la ventana => 429 con countdown
	{
		st, body := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/care-requests", ownerID, map[string]any{
			"type": "walk",
		})
		if st != http.StatusTooManyRequests {
			t.Fatalf("expected 429 second walk, got %d body=%s", st, string(body))
		}
		var resp struct {
			RemainingMinutes int `json:"remaining_minutes"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.RemainingMinutes < 14 || resp.RemainingMinutes > 15 {
			t.Fatalf("expected ~15 minutes remaining, got %d", resp.RemainingMinutes)
		}
	}

	// 12) Un feed inmediato NO está bloqueado (cooldown por tipo)
	{
		st, body := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/care-requests", ownerID, map[string]any{
			"type": "feed",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 feed after walk, got %d body=%s", st, string(body))
		}
	}

	// 13) El sitter no puede emitir care requests
	{
		st, _ := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/care-requests", sitterID, map[string]any{
			"type": "play",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 care request by sitter, got %d", st)
		}
	}

	// 14) Estado de cooldown por tipo para la UI
	{
		st, body := doReq(t, ts.URL, "GET", "/bookings/"+bookingID+"/care-requests/cooldown", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 cooldown status, got %d body=%s", st, string(body))
		}
		var statuses []struct {
			Type       string `json:"type"`
			OnCooldown bool   `json:"on_cooldown"`
		}
		_ = json.Unmarshal(body, &statuses)
		blocked := map[string]bool{}
		for _, s := range statuses {
			blocked[s.Type] = s.OnCooldown
		}
		if !blocked["walk"] || !blocked["feed"] || blocked["play"] {
			t.Fatalf("expected walk+feed blocked, play free; got %#v", blocked)
		}
	}

	// 15) Sitter completa; owner deja review
	{
		st, body := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/complete", sitterID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 complete, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/review", ownerID, map[string]any{
			"rating":  5,
			"comment": "Milo came back happy!",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 review, got %d body=%s", st, string(body))
		}
	}

	// 16) El promedio del listing refleja la review
	{
		st, body := doReq(t, ts.URL, "GET", "/listings/"+listingID+"/reviews", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing reviews, got %d body=%s", st, string(body))
		}
		var resp struct {
			AverageRating float64 `json:"average_rating"`
			Count         int     `json:"count"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Count != 1 || resp.AverageRating != 5 {
			t.Fatalf("expected 1 review avg 5, got %d avg %v", resp.Count, resp.AverageRating)
		}
	}
}

func TestHTTP_Decline_CancelsAndNotifiesWithReason(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"
	sitterID := "sitter-1"

	listingID := createListing(t, ts.URL, sitterID, map[string]any{
		"title":                "Quiet apartment",
		"rate_per_night_cents": 3000,
	})
	petID := createPet(t, ts.URL, ownerID, map[string]any{"name": "Luna", "species": "cat"})

	start := time.Now().AddDate(0, 0, 7)
	bookingID := createBooking(t, ts.URL, ownerID, listingID, []string{petID}, start, start.AddDate(0, 0, 2))

	st, body := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/decline", sitterID, map[string]any{
		"reason": "fully booked that week",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 decline, got %d body=%s", st, string(body))
	}

	var resp struct {
		Booking struct {
			Status             string `json:"status"`
			CancellationReason string `json:"cancellation_reason"`
		} `json:"booking"`
		NotificationSent bool `json:"notification_sent"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Booking.Status != "cancelled" {
		t.Fatalf("expected cancelled, got %s", resp.Booking.Status)
	}
	if resp.Booking.CancellationReason != "fully booked that week" {
		t.Fatalf("expected reason stored, got %q", resp.Booking.CancellationReason)
	}
	if !resp.NotificationSent {
		t.Fatalf("expected notification_sent = true")
	}

	// Un booking cancelado es terminal: ni accept ni cancel lo mueven.
	{
		st, _ := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/accept", sitterID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 accept after decline, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/cancel", ownerID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 cancel after decline, got %d", st)
		}
	}
}

func TestHTTP_BookingTabs_GroupByDate(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"
	sitterID := "sitter-1"

	listingID := createListing(t, ts.URL, sitterID, map[string]any{
		"title":                "Beach house",
		"rate_per_night_cents": 6000,
		"max_pets":             3,
	})
	petID := createPet(t, ts.URL, ownerID, map[string]any{"name": "Rocky", "species": "dog"})

	today := time.Now()

	// upcoming: pending que empieza la semana que viene
	upcomingID := createBooking(t, ts.URL, ownerID, listingID, []string{petID},
		today.AddDate(0, 0, 7), today.AddDate(0, 0, 10))

	// current: confirmado que empieza hoy
	currentID := createBooking(t, ts.URL, ownerID, listingID, []string{petID},
		today, today.AddDate(0, 0, 3))
	{
		st, body := doReq(t, ts.URL, "POST", "/bookings/"+currentID+"/accept", sitterID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 accept, got %d body=%s", st, string(body))
		}
	}

	// past: declinado
	pastID := createBooking(t, ts.URL, ownerID, listingID, []string{petID},
		today.AddDate(0, 0, 14), today.AddDate(0, 0, 16))
	{
		st, body := doReq(t, ts.URL, "POST", "/bookings/"+pastID+"/decline", sitterID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 decline, got %d body=%s", st, string(body))
		}
	}

	st, body := doReq(t, ts.URL, "GET", "/bookings", ownerID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list bookings, got %d body=%s", st, string(body))
	}

	var resp struct {
		Current []struct {
			ID string `json:"id"`
		} `json:"current"`
		Upcoming []struct {
			ID string `json:"id"`
		} `json:"upcoming"`
		Past []struct {
			ID string `json:"id"`
		} `json:"past"`
	}
	_ = json.Unmarshal(body, &resp)

	if len(resp.Current) != 1 || resp.Current[0].ID != currentID {
		t.Fatalf("expected current = [%s], got %+v", currentID, resp.Current)
	}
	if len(resp.Upcoming) != 1 || resp.Upcoming[0].ID != upcomingID {
		t.Fatalf("expected upcoming = [%s], got %+v", upcomingID, resp.Upcoming)
	}
	if len(resp.Past) != 1 || resp.Past[0].ID != pastID {
		t.Fatalf("expected past = [%s], got %+v", pastID, resp.Past)
	}

	// El mismo set visto como sitter también particiona completo.
	st, body = doReq(t, ts.URL, "GET", "/bookings?role=sitter", sitterID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 sitter bookings, got %d body=%s", st, string(body))
	}
	_ = json.Unmarshal(body, &resp)
	if len(resp.Current)+len(resp.Upcoming)+len(resp.Past) != 3 {
		t.Fatalf("expected 3 bookings total for sitter, got %d/%d/%d",
			len(resp.Current), len(resp.Upcoming), len(resp.Past))
	}
}

func TestHTTP_CreateBooking_ValidatesListingAndPets(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"
	sitterID := "sitter-1"

	listingID := createListing(t, ts.URL, sitterID, map[string]any{
		"title":                "Small flat",
		"rate_per_night_cents": 2000,
		"max_pets":             1,
	})
	petID := createPet(t, ts.URL, ownerID, map[string]any{"name": "Coco", "species": "dog"})
	otherPetID := createPet(t, ts.URL, "other-owner", map[string]any{"name": "Max", "species": "dog"})

	start := time.Now().AddDate(0, 0, 5)
	startStr := start.Format("2006-01-02")
	endStr := start.AddDate(0, 0, 2).Format("2006-01-02")

	// Mascota ajena => 400
	{
		st, _ := doReq(t, ts.URL, "POST", "/bookings", ownerID, map[string]any{
			"listing_id": listingID,
			"pet_ids":    []string{otherPetID},
			"start_date": startStr,
			"end_date":   endStr,
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for foreign pet, got %d", st)
		}
	}

	// Más mascotas que max_pets => 400
	{
		st, _ := doReq(t, ts.URL, "POST", "/bookings", ownerID, map[string]any{
			"listing_id": listingID,
			"pet_ids":    []string{petID, otherPetID},
			"start_date": startStr,
			"end_date":   endStr,
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for too many pets, got %d", st)
		}
	}

	// Listing desactivado => 400
	{
		st, body := doReq(t, ts.URL, "POST", "/listings/"+listingID+"/deactivate", sitterID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 deactivate, got %d body=%s", st, string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "POST", "/bookings", ownerID, map[string]any{
			"listing_id": listingID,
			"pet_ids":    []string{petID},
			"start_date": startStr,
			"end_date":   endStr,
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for inactive listing, got %d", st)
		}
	}
}

func TestHTTP_Wishlist_SaveListRemove(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"
	sitterID := "sitter-1"

	listingID := createListing(t, ts.URL, sitterID, map[string]any{
		"title":                "Farm stay",
		"rate_per_night_cents": 5000,
	})

	// Guardar dos veces es idempotente
	for i := 0; i < 2; i++ {
		st, body := doReq(t, ts.URL, "PUT", "/wishlist/"+listingID, ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 save wishlist (try %d), got %d body=%s", i+1, st, string(body))
		}
	}

	{
		st, body := doReq(t, ts.URL, "GET", "/wishlist", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list wishlist, got %d body=%s", st, string(body))
		}
		var items []struct {
			ListingID string `json:"listing_id"`
		}
		_ = json.Unmarshal(body, &items)
		if len(items) != 1 || items[0].ListingID != listingID {
			t.Fatalf("expected single wishlist item, got %+v", items)
		}
	}

	{
		st, _ := doReq(t, ts.URL, "DELETE", "/wishlist/"+listingID, ownerID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 remove, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/wishlist/"+listingID, ownerID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 remove twice, got %d", st)
		}
	}
}

// -------------------------
// Helpers
// -------------------------

func createListing(t *testing.T, baseURL, sitterID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/listings", sitterID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create listing, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create listing: missing id body=%s", string(body))
	}
	return resp.ID
}

func createPet(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create pet: missing id body=%s", string(body))
	}
	return resp.ID
}

func createBooking(t *testing.T, baseURL, ownerID, listingID string, petIDs []string, start, end time.Time) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/bookings", ownerID, map[string]any{
		"listing_id": listingID,
		"pet_ids":    petIDs,
		"start_date": start.Format("2006-01-02"),
		"end_date":   end.Format("2006-01-02"),
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create booking, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create booking: missing id body=%s", string(body))
	}
	return resp.ID
}

func getOrCreateConversation(t *testing.T, baseURL, userID, otherID string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/conversations", userID, map[string]any{
		"other_user_id": otherID,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 get-or-create conversation, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("conversation: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
