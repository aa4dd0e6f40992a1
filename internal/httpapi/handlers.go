package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"voice-booking-capture-service/internal/events"
	"voice-booking-capture-service/internal/models"
	"voice-booking-capture-service/internal/service/capture"
	"voice-booking-capture-service/internal/service/session"
)

// maxAudioChunk bounds one audio POST body; push-to-talk clients send
// small PCM frames, not whole recordings.
const maxAudioChunk = 1 << 20

type handlers struct {
	deps Deps
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
}

type stopResponse struct {
	Result  models.RecordingResult       `json:"result"`
	Outcome *models.VoiceBookingResponse `json:"outcome,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// startSession begins a new recording session.
func (h *handlers) startSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.deps.Manager.Start(r.Context())
	if err != nil {
		if errors.Is(err, capture.ErrCaptureBusy) || errors.Is(err, session.ErrAlreadyActive) {
			writeError(w, http.StatusConflict, "a recording is already in progress")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.deps.Metrics.RecordRecordingStart()
	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: sess.ID,
		State:     sess.Controller.State().String(),
	})
}

// getSession returns a live view of the session.
func (h *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.deps.Manager.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	view := struct {
		session.Snapshot
		LastError  string                  `json:"lastError,omitempty"`
		LastResult *models.RecordingResult `json:"lastResult,omitempty"`
	}{
		Snapshot:   sess.Controller.Snapshot(),
		LastError:  sess.LastError(),
		LastResult: sess.LastResult(),
	}
	writeJSON(w, http.StatusOK, view)
}

// pushAudio appends one PCM chunk to the session's capture.
func (h *handlers) pushAudio(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.deps.Manager.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	if sess.Push == nil {
		writeError(w, http.StatusConflict, "session captures from the local microphone")
		return
	}

	chunk, err := io.ReadAll(io.LimitReader(r.Body, maxAudioChunk))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio chunk")
		return
	}
	if len(chunk) == 0 {
		writeError(w, http.StatusBadRequest, "empty audio chunk")
		return
	}

	if err := sess.Push.Push(chunk); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	h.deps.Metrics.RecordAudioReceived(len(chunk))
	w.WriteHeader(http.StatusAccepted)
}

// stopSession ends the recording, runs the heuristic pipeline and submits
// the result to the backend. The response carries both the local result
// and the backend's verdict.
func (h *handlers) stopSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, ok := h.deps.Manager.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	result, err := sess.Controller.Stop(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrNotRecording) {
			writeError(w, http.StatusConflict, "session is not recording")
			return
		}
		h.deps.Metrics.RecordRecordingFailed("stop")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.deps.Metrics.RecordRecordingCompleted(
		float64(result.DurationMs)/1000,
		result.ConfidenceScore,
		result.WordCount,
		result.NeedsServerRecheck,
	)

	h.publishCapture(r, result)

	submitStart := time.Now()
	outcome, err := h.deps.Submitter.Submit(r.Context(), result)
	if err != nil {
		h.deps.Metrics.RecordSubmission("", err, time.Since(submitStart).Seconds())
		h.deps.Logger.Error().Err(err).Str("sessionId", id).Msg("backend submission failed")
		// The local result survives so the client can fall back to manual
		// entry without re-recording.
		writeJSON(w, http.StatusBadGateway, stopResponse{Result: result})
		return
	}
	h.deps.Metrics.RecordSubmission(outcome.Status, nil, time.Since(submitStart).Seconds())

	h.publishOutcome(r, result, outcome)
	writeJSON(w, http.StatusOK, stopResponse{Result: result, Outcome: outcome})
}

// cancelSession tears the session down without a result.
func (h *handlers) cancelSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, ok := h.deps.Manager.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	if err := sess.Controller.Cancel(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.deps.Metrics.RecordRecordingCancelled()
	h.deps.Manager.Remove(id)
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, State: session.StateIdle.String()})
}

// createBooking books a table manually, the fallback path after a
// clarification.
func (h *handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking payload")
		return
	}
	if req.VenueID == "" {
		req.VenueID = h.deps.VenueID
	}

	created, err := h.deps.Bookings.Create(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	got, err := h.deps.Bookings.Get(r.Context(), chi.URLParam(r, "bookingID"))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, got)
}

func (h *handlers) changeBookingStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "invalid status payload")
		return
	}

	updated, err := h.deps.Bookings.ChangeStatus(r.Context(), chi.URLParam(r, "bookingID"), req.Status)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handlers) switchBookingTable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TableID string `json:"table_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TableID == "" {
		writeError(w, http.StatusBadRequest, "invalid table payload")
		return
	}

	updated, err := h.deps.Bookings.SwitchTablePosition(r.Context(), chi.URLParam(r, "bookingID"), req.TableID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handlers) publishCapture(r *http.Request, result models.RecordingResult) {
	event := models.CaptureCompleted{
		EventType:          events.EventTypeCaptureCompleted,
		SessionID:          result.SessionID,
		VenueID:            h.deps.VenueID,
		StaffID:            h.deps.StaffID,
		Locale:             result.Locale,
		Timestamp:          time.Now().UnixMilli(),
		Transcript:         result.Transcript,
		WordCount:          result.WordCount,
		ConfidenceScore:    result.ConfidenceScore,
		DurationMs:         result.DurationMs,
		NeedsServerRecheck: result.NeedsServerRecheck,
	}
	if err := h.deps.Publisher.PublishCaptureCompleted(r.Context(), result.SessionID, event); err != nil {
		h.deps.Logger.Warn().Err(err).Str("sessionId", result.SessionID).Msg("capture event publish failed")
	}
}

func (h *handlers) publishOutcome(r *http.Request, result models.RecordingResult, outcome *models.VoiceBookingResponse) {
	event := models.BookingOutcome{
		EventType: events.EventTypeBookingOutcome,
		SessionID: result.SessionID,
		VenueID:   h.deps.VenueID,
		Timestamp: time.Now().UnixMilli(),
		Status:    outcome.Status,
		BookingID: outcome.BookingID,
		ErrorCode: outcome.ErrorCode,
	}
	if err := h.deps.Publisher.PublishBookingOutcome(r.Context(), result.SessionID, event); err != nil {
		h.deps.Logger.Warn().Err(err).Str("sessionId", result.SessionID).Msg("outcome event publish failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
