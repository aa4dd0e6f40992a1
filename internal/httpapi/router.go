// Package httpapi exposes the control API driven by push-to-talk clients:
// session start/audio/stop/cancel plus the booking endpoints used after
// confirmation.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"voice-booking-capture-service/internal/booking"
	"voice-booking-capture-service/internal/events"
	"voice-booking-capture-service/internal/observability/metrics"
	"voice-booking-capture-service/internal/service/session"
)

// Deps are the collaborators the API drives.
type Deps struct {
	Manager   *session.Manager
	Submitter *booking.Submitter
	Bookings  *booking.Client
	Publisher *events.Publisher
	Metrics   *metrics.Metrics
	VenueID   string
	StaffID   string
	Logger    zerolog.Logger
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(deps Deps) http.Handler {
	h := &handlers{deps: deps}

	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	r.Route("/v1", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.startSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", h.getSession)
				r.Post("/audio", h.pushAudio)
				r.Post("/stop", h.stopSession)
				r.Post("/cancel", h.cancelSession)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", h.createBooking)
			r.Get("/{bookingID}", h.getBooking)
			r.Patch("/{bookingID}/status", h.changeBookingStatus)
			r.Patch("/{bookingID}/table", h.switchBookingTable)
		})
	})

	return r
}
