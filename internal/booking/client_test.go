package booking

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"voice-booking-capture-service/internal/models"
)

func TestClient_Create(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	var gotBody models.BookingRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		json.NewEncoder(w).Encode(models.Booking{
			ID:        "bk-1",
			GuestName: "Mario Rossi",
			PartySize: 4,
			Status:    models.BookingStatusPending,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok")
	booking, err := client.Create(context.Background(), models.BookingRequest{
		VenueID:   "venue-1",
		GuestName: "Mario Rossi",
		PartySize: 4,
		Date:      "2026-09-01",
		TimeSlot:  "20:00",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/api/v1/bookings" {
		t.Errorf("unexpected request %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if gotBody.GuestName != "Mario Rossi" || gotBody.TimeSlot != "20:00" {
		t.Errorf("unexpected payload %+v", gotBody)
	}
	if booking.ID != "bk-1" || booking.Status != models.BookingStatusPending {
		t.Errorf("unexpected booking %+v", booking)
	}
}

func TestClient_ChangeStatus(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(models.Booking{ID: "bk-1", Status: models.BookingStatusSeated})
	}))
	defer srv.Close()

	booking, err := NewClient(srv.URL, "").ChangeStatus(context.Background(), "bk-1", models.BookingStatusSeated)
	if err != nil {
		t.Fatalf("change status failed: %v", err)
	}

	if gotMethod != http.MethodPatch || gotPath != "/api/v1/bookings/bk-1/status" {
		t.Errorf("unexpected request %s %s", gotMethod, gotPath)
	}
	if gotBody["status"] != models.BookingStatusSeated {
		t.Errorf("unexpected payload %v", gotBody)
	}
	if booking.Status != models.BookingStatusSeated {
		t.Errorf("unexpected booking %+v", booking)
	}
}

func TestClient_SwitchTablePosition(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(models.Booking{ID: "bk-1", TableID: "t-9"})
	}))
	defer srv.Close()

	booking, err := NewClient(srv.URL, "").SwitchTablePosition(context.Background(), "bk-1", "t-9")
	if err != nil {
		t.Fatalf("switch table failed: %v", err)
	}

	if gotPath != "/api/v1/bookings/bk-1/table" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotBody["table_id"] != "t-9" {
		t.Errorf("unexpected payload %v", gotBody)
	}
	if booking.TableID != "t-9" {
		t.Errorf("unexpected booking %+v", booking)
	}
}

func TestClient_GetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "").Get(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for 404")
	}
}
