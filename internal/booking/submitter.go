// Package booking talks to the restaurant backend: the voice-intent
// submission endpoint and the plain booking CRUD API used after
// confirmation.
package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"voice-booking-capture-service/internal/models"
)

const (
	submitPath     = "/api/v1/voice/bookings"
	defaultTimeout = 30 * time.Second
)

// Metadata identifies who recorded the booking and from where. It is sent
// as a JSON string field alongside the transcript.
type Metadata struct {
	StaffID    string `json:"staff_id"`
	VenueID    string `json:"venue_id"`
	AppVersion string `json:"app_version"`
	Platform   string `json:"platform"`
}

// SubmitterConfig holds backend connection settings.
type SubmitterConfig struct {
	BaseURL  string
	Token    string
	Timezone string
	Metadata Metadata
}

// Submitter packages a RecordingResult into a multipart request and
// interprets the backend's tagged response. No retry policy: a network or
// decode failure propagates to the caller, who re-records or falls back to
// manual entry.
type Submitter struct {
	cfg    SubmitterConfig
	client *http.Client
	log    zerolog.Logger
}

// NewSubmitter creates a backend submitter.
func NewSubmitter(cfg SubmitterConfig, log zerolog.Logger) *Submitter {
	return &Submitter{
		cfg:    cfg,
		client: &http.Client{Timeout: defaultTimeout},
		log:    log,
	}
}

// Submit sends the voice-intent payload. Raw audio is attached only when
// the result is flagged for a server recheck; well-understood utterances
// never upload audio.
func (s *Submitter) Submit(ctx context.Context, result models.RecordingResult) (*models.VoiceBookingResponse, error) {
	body, contentType, err := s.buildForm(result)
	if err != nil {
		return nil, fmt.Errorf("build submission form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+submitPath, body)
	if err != nil {
		return nil, fmt.Errorf("build submission request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit voice booking: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("submit voice booking: backend returned %d: %s", resp.StatusCode, snippet)
	}

	var decoded models.VoiceBookingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode voice booking response: %w", err)
	}

	s.log.Info().
		Str("sessionId", result.SessionID).
		Str("status", decoded.Status).
		Bool("audioAttached", attachAudio(result)).
		Msg("voice booking submitted")
	return &decoded, nil
}

// buildForm assembles the multipart body. Field names are the backend's
// contract and must not drift.
func (s *Submitter) buildForm(result models.RecordingResult) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := map[string]string{
		"transcript":           result.Transcript,
		"locale":               result.Locale,
		"confidence_score":     strconv.Itoa(result.ConfidenceScore),
		"duration_ms":          strconv.FormatInt(result.DurationMs, 10),
		"word_count":           strconv.Itoa(result.WordCount),
		"timestamp":            time.Now().UTC().Format(time.RFC3339),
		"timezone":             s.cfg.Timezone,
		"needs_server_recheck": strconv.FormatBool(result.NeedsServerRecheck),
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	for name, v := range map[string]any{
		"metadata":         s.cfg.Metadata,
		"extracted_tokens": result.Tokens,
		"validation":       result.Validation,
	} {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		if err := w.WriteField(name, string(encoded)); err != nil {
			return nil, "", err
		}
	}

	if attachAudio(result) {
		if err := writeAudioPart(w, result.Audio.URI); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// attachAudio reports whether the raw recording goes with this submission.
func attachAudio(result models.RecordingResult) bool {
	return result.NeedsServerRecheck && result.Audio != nil && result.Audio.URI != ""
}

func writeAudioPart(w *multipart.Writer, uri string) error {
	f, err := os.Open(uri)
	if err != nil {
		return fmt.Errorf("open recorded audio: %w", err)
	}
	defer f.Close()

	part, err := w.CreateFormFile("audio_file", filepath.Base(uri))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}
