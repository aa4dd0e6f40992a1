package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"voice-booking-capture-service/internal/booking"
	"voice-booking-capture-service/internal/events"
	"voice-booking-capture-service/internal/lexicon"
	"voice-booking-capture-service/internal/models"
	"voice-booking-capture-service/internal/observability/metrics"
	"voice-booking-capture-service/internal/service/capture"
	"voice-booking-capture-service/internal/service/session"
	"voice-booking-capture-service/internal/service/stt"
	"voice-booking-capture-service/internal/service/stt/demo"
)

// fakeBackend serves both the voice submission endpoint and the booking
// CRUD API.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/voice/bookings", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		json.NewEncoder(w).Encode(models.VoiceBookingResponse{
			Status:    models.VoiceStatusSuccess,
			BookingID: "bk-100",
			Booking:   &models.Booking{ID: "bk-100", GuestName: "Mario Rossi", PartySize: 4},
		})
	})
	mux.HandleFunc("POST /api/v1/bookings", func(w http.ResponseWriter, r *http.Request) {
		var req models.BookingRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(models.Booking{
			ID:        "bk-200",
			VenueID:   req.VenueID,
			GuestName: req.GuestName,
			PartySize: req.PartySize,
			Status:    models.BookingStatusPending,
		})
	})
	mux.HandleFunc("PATCH /api/v1/bookings/bk-200/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.Booking{ID: "bk-200", Status: models.BookingStatusConfirmed})
	})
	return httptest.NewServer(mux)
}

func newTestRouter(t *testing.T, backendURL string) http.Handler {
	t.Helper()

	scripted := demo.SimulatedUtterance{
		Final:      "Tavolo per quattro persone alle 20:00 per Mario Rossi",
		Confidence: 0.95,
	}
	factory := func(ctx context.Context) (stt.Adapter, error) {
		return demo.NewScripted(scripted), nil
	}

	manager := session.NewManager(
		session.ManagerConfig{
			Controller: session.Config{
				MaxDuration:      time.Minute,
				Locale:           "it-IT",
				RecheckThreshold: 70,
			},
			VenueID:      "venue-1",
			SpoolDir:     t.TempDir(),
			SampleRateHz: 16000,
		},
		lexicon.Default(),
		factory,
		capture.StaticPermission{Granted: true},
		zerolog.Nop(),
	)
	t.Cleanup(manager.Shutdown)

	submitter := booking.NewSubmitter(booking.SubmitterConfig{
		BaseURL:  backendURL,
		Timezone: "Europe/Rome",
		Metadata: booking.Metadata{StaffID: "staff-1", VenueID: "venue-1", Platform: "daemon"},
	}, zerolog.Nop())

	return NewRouter(Deps{
		Manager:   manager,
		Submitter: submitter,
		Bookings:  booking.NewClient(backendURL, ""),
		Publisher: events.New(nil),
		Metrics:   metrics.DefaultMetrics,
		VenueID:   "venue-1",
		StaffID:   "staff-1",
		Logger:    zerolog.Nop(),
	})
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()
	router := newTestRouter(t, backend.URL)

	// Start
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var started sessionResponse
	json.Unmarshal(rec.Body.Bytes(), &started)
	if started.SessionID == "" || started.State != "RECORDING" {
		t.Fatalf("unexpected start response %+v", started)
	}

	// Audio
	chunk := make([]byte, 3200)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions/"+started.SessionID+"/audio", bytes.NewReader(chunk)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("audio: expected 202, got %d: %s", rec.Code, rec.Body)
	}

	// Snapshot while recording
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sessions/"+started.SessionID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	// Stop: pipeline runs, backend answers success
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions/"+started.SessionID+"/stop", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("stop: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var stopped stopResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &stopped); err != nil {
		t.Fatalf("decode stop response: %v", err)
	}
	if stopped.Result.Transcript != "Tavolo per quattro persone alle 20:00 per Mario Rossi" {
		t.Errorf("unexpected transcript %q", stopped.Result.Transcript)
	}
	if stopped.Result.Tokens.PartySize == nil || *stopped.Result.Tokens.PartySize != 4 {
		t.Errorf("unexpected tokens %+v", stopped.Result.Tokens)
	}
	if stopped.Outcome == nil || stopped.Outcome.Status != models.VoiceStatusSuccess || stopped.Outcome.BookingID != "bk-100" {
		t.Errorf("unexpected outcome %+v", stopped.Outcome)
	}
}

func TestSecondSessionRefusedWhileRecording(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()
	router := newTestRouter(t, backend.URL)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d", rec.Code)
	}
	var started sessionResponse
	json.Unmarshal(rec.Body.Bytes(), &started)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("second start: expected 409, got %d", rec.Code)
	}

	// Release the device for other tests.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions/"+started.SessionID+"/cancel", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d", rec.Code)
	}
}

func TestCancelSession(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()
	router := newTestRouter(t, backend.URL)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions", nil))
	var started sessionResponse
	json.Unmarshal(rec.Body.Bytes(), &started)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions/"+started.SessionID+"/cancel", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	// The session is gone from the registry.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sessions/"+started.SessionID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after cancel: expected 404, got %d", rec.Code)
	}
}

func TestUnknownSessionRoutes(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()
	router := newTestRouter(t, backend.URL)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/v1/sessions/nope", nil),
		httptest.NewRequest(http.MethodPost, "/v1/sessions/nope/audio", bytes.NewReader([]byte{1})),
		httptest.NewRequest(http.MethodPost, "/v1/sessions/nope/stop", nil),
		httptest.NewRequest(http.MethodPost, "/v1/sessions/nope/cancel", nil),
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", req.Method, req.URL.Path, rec.Code)
		}
	}
}

func TestStopSubmissionFailureKeepsResult(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer backend.Close()
	router := newTestRouter(t, backend.URL)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions", nil))
	var started sessionResponse
	json.Unmarshal(rec.Body.Bytes(), &started)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions/"+started.SessionID+"/stop", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("stop: expected 502, got %d", rec.Code)
	}
	var stopped stopResponse
	json.Unmarshal(rec.Body.Bytes(), &stopped)
	if stopped.Result.Transcript == "" {
		t.Error("local result must survive a failed submission")
	}
	if stopped.Outcome != nil {
		t.Error("no outcome expected when the backend is unreachable")
	}
}

func TestBookingEndpoints(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()
	router := newTestRouter(t, backend.URL)

	payload, _ := json.Marshal(models.BookingRequest{
		GuestName: "Sarah Miller",
		PartySize: 2,
		Date:      "2026-09-01",
		TimeSlot:  "19:30",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/bookings", bytes.NewReader(payload)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var created models.Booking
	json.Unmarshal(rec.Body.Bytes(), &created)
	if created.ID != "bk-200" || created.VenueID != "venue-1" {
		t.Errorf("unexpected booking %+v (venue must default from config)", created)
	}

	statusPayload := []byte(`{"status":"confirmed"}`)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/v1/bookings/bk-200/status", bytes.NewReader(statusPayload)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var updated models.Booking
	json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated.Status != models.BookingStatusConfirmed {
		t.Errorf("unexpected status %q", updated.Status)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/v1/bookings/bk-200/table", bytes.NewReader([]byte(`{}`))))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("table without table_id: expected 400, got %d", rec.Code)
	}
}
