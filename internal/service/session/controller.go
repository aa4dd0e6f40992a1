package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"voice-booking-capture-service/internal/lexicon"
	"voice-booking-capture-service/internal/models"
	"voice-booking-capture-service/internal/service/capture"
	"voice-booking-capture-service/internal/service/stt"
	"voice-booking-capture-service/internal/service/transcript"
)

// Config holds per-controller settings.
type Config struct {
	// MaxDuration force-stops a recording that runs too long.
	MaxDuration time.Duration

	// Locale tags the transcript for the backend, e.g. "it-IT".
	Locale string

	// RecheckThreshold is the confidence score below which raw audio is
	// escalated to the backend.
	RecheckThreshold int
}

// Callbacks deliver session events to the owner. All fields are optional.
type Callbacks struct {
	// OnResult receives the assembled RecordingResult after a successful
	// stop. Cancelled sessions never invoke it.
	OnResult func(models.RecordingResult)

	// OnError receives a user-facing error message. The controller is
	// back in idle (or awaiting a manual stop for mid-session recognizer
	// errors) when it fires.
	OnError func(msg string)

	// OnPartial receives live interim transcripts for display.
	OnPartial func(text string)

	// OnLevel receives 0-100 audio meter updates for the visualizer.
	OnLevel func(level int)
}

// Controller owns one recording session at a time: it acquires the
// microphone, runs recognition, accumulates the transcript and turns the
// final text into a RecordingResult via the heuristic pipeline.
type Controller struct {
	cfg     Config
	lex     *lexicon.Lexicon
	factory stt.Factory
	driver  capture.Driver
	perm    capture.Permission
	cb      Callbacks
	log     zerolog.Logger

	lifecycle *Lifecycle

	// recording is the capture intent, read by recognizer callbacks at
	// call time. A recognizer session that ends on its own (silence) is
	// restarted only while this is still true; reading the lifecycle
	// state instead would race with the stop path.
	recording atomic.Bool

	// generation invalidates callbacks from recognizer sessions that
	// belong to a cancelled or completed recording.
	generation atomic.Uint64

	mu         sync.Mutex
	recognizer stt.Adapter
	sessionID  string
	finals     []string
	partial    string
	level      int
	startedAt  time.Time
	stopTimer  *time.Timer
}

// NewController wires a controller from its collaborators. The recognizer
// factory was selected once at service construction; no platform
// branching happens here.
func NewController(
	cfg Config,
	lex *lexicon.Lexicon,
	factory stt.Factory,
	driver capture.Driver,
	perm capture.Permission,
	cb Callbacks,
	log zerolog.Logger,
) *Controller {
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = 60 * time.Second
	}
	if cfg.RecheckThreshold == 0 {
		cfg.RecheckThreshold = transcript.DefaultRecheckThreshold
	}
	return &Controller{
		cfg:       cfg,
		lex:       lex,
		factory:   factory,
		driver:    driver,
		perm:      perm,
		cb:        cb,
		log:       log,
		lifecycle: NewLifecycle(),
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.lifecycle.State()
}

// Snapshot is a point-in-time view of the session for the control API.
type Snapshot struct {
	SessionID  string `json:"sessionId"`
	State      string `json:"state"`
	Partial    string `json:"partialTranscript"`
	Transcript string `json:"transcript"`
	Level      int    `json:"audioLevel"`
	DurationMs int64  `json:"durationMs"`
}

// Snapshot returns the live session view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	var durationMs int64
	if !c.startedAt.IsZero() && c.recording.Load() {
		durationMs = time.Since(c.startedAt).Milliseconds()
	}
	return Snapshot{
		SessionID:  c.sessionID,
		State:      c.lifecycle.State().String(),
		Partial:    c.partial,
		Transcript: strings.Join(c.finals, " "),
		Level:      c.level,
		DurationMs: durationMs,
	}
}

// Start begins a recording session. Permission is requested if not yet
// granted; denial, recognizer init failure and capture-start failure all
// leave the controller idle and surface through the error callback as
// well as the returned error.
func (c *Controller) Start(ctx context.Context, sessionID string) error {
	status, err := c.perm.Status(ctx)
	if err == nil && !status.Granted {
		status, err = c.perm.Request(ctx)
	}
	if err != nil {
		return c.fail(fmt.Sprintf("microphone permission check failed: %v", err))
	}
	if !status.Granted {
		return c.fail("microphone permission denied")
	}

	if err := c.lifecycle.BeginRecording(); err != nil {
		return err
	}

	// Fresh transcript state: replaced per session, never appended across
	// sessions.
	c.mu.Lock()
	c.sessionID = sessionID
	c.finals = nil
	c.partial = ""
	c.level = 0
	c.startedAt = time.Now()
	c.mu.Unlock()

	gen := c.generation.Add(1)

	recognizer, err := c.factory(ctx)
	if err != nil {
		c.lifecycle.Reset()
		return c.fail(fmt.Sprintf("speech recognizer unavailable: %v", err))
	}
	if err := recognizer.Start(ctx, &recognizerShim{c: c, gen: gen}); err != nil {
		recognizer.Close()
		c.lifecycle.Reset()
		return c.fail(fmt.Sprintf("failed to start speech recognition: %v", err))
	}

	c.mu.Lock()
	c.recognizer = recognizer
	c.mu.Unlock()

	if err := c.driver.Start(c.onFrame); err != nil {
		recognizer.Close()
		c.mu.Lock()
		c.recognizer = nil
		c.mu.Unlock()
		c.lifecycle.Reset()
		return c.failWith(err, "failed to start recording")
	}

	c.recording.Store(true)

	c.mu.Lock()
	c.stopTimer = time.AfterFunc(c.cfg.MaxDuration, func() {
		c.log.Info().Str("sessionId", sessionID).Msg("recording hit max duration, forcing stop")
		if _, err := c.Stop(context.Background()); err != nil && !errors.Is(err, ErrNotRecording) {
			c.log.Error().Err(err).Msg("auto-stop failed")
		}
	})
	c.mu.Unlock()

	c.log.Info().Str("sessionId", sessionID).Msg("recording started")
	return nil
}

// Stop ends the recording, runs the heuristic pipeline over the final
// transcript and returns the assembled RecordingResult. The completion
// callback fires with the same result.
func (c *Controller) Stop(ctx context.Context) (models.RecordingResult, error) {
	if err := c.lifecycle.BeginProcessing(); err != nil {
		return models.RecordingResult{}, err
	}
	c.recording.Store(false)

	c.mu.Lock()
	if c.stopTimer != nil {
		c.stopTimer.Stop()
		c.stopTimer = nil
	}
	recognizer := c.recognizer
	c.recognizer = nil
	c.mu.Unlock()

	// Closing the recognizer first lets batch engines deliver their final
	// transcript before the text is composed below.
	if recognizer != nil {
		if err := recognizer.Close(); err != nil {
			c.log.Warn().Err(err).Msg("recognizer close failed")
		}
	}

	audio, err := c.driver.Stop()
	if err != nil {
		c.lifecycle.Reset()
		return models.RecordingResult{}, c.fail(fmt.Sprintf("failed to stop recording: %v", err))
	}

	c.mu.Lock()
	sessionID := c.sessionID
	text := strings.TrimSpace(strings.Join(c.finals, " "))
	if text == "" {
		text = strings.TrimSpace(c.partial)
	}
	startedAt := c.startedAt
	c.partial = ""
	c.mu.Unlock()

	durationMs := audio.DurationMs
	if durationMs == 0 {
		durationMs = time.Since(startedAt).Milliseconds()
	}

	result := c.compose(sessionID, text, durationMs, audio)

	if err := c.lifecycle.Finish(); err != nil {
		c.lifecycle.Reset()
	}

	c.log.Info().
		Str("sessionId", sessionID).
		Int("confidence", result.ConfidenceScore).
		Int("wordCount", result.WordCount).
		Bool("needsServerRecheck", result.NeedsServerRecheck).
		Msg("recording processed")

	if c.cb.OnResult != nil {
		c.cb.OnResult(result)
	}
	return result, nil
}

// Cancel tears the session down without invoking the completion callback.
// The recognizer and capture driver are released before state is cleared
// so no microphone session leaks.
func (c *Controller) Cancel() error {
	if !c.lifecycle.IsActive() {
		return nil
	}
	c.recording.Store(false)
	c.generation.Add(1)

	c.mu.Lock()
	if c.stopTimer != nil {
		c.stopTimer.Stop()
		c.stopTimer = nil
	}
	recognizer := c.recognizer
	c.recognizer = nil
	sessionID := c.sessionID
	c.mu.Unlock()

	if recognizer != nil {
		recognizer.Close()
	}
	err := c.driver.Abort()

	c.mu.Lock()
	c.finals = nil
	c.partial = ""
	c.level = 0
	c.mu.Unlock()
	c.lifecycle.Reset()

	c.log.Info().Str("sessionId", sessionID).Msg("recording cancelled")
	return err
}

// compose runs the heuristic pipeline over the final transcript.
func (c *Controller) compose(sessionID, text string, durationMs int64, audio models.AudioRef) models.RecordingResult {
	tokens := transcript.Extract(c.lex, text)
	validation := transcript.Validate(text, tokens)

	score := transcript.Score(transcript.Signals{
		DurationMs: durationMs,
		Transcript: text,
		WordCount:  validation.WordCount,
		HasNumbers: transcript.HasNumbers(c.lex, text),
		HasTimes:   transcript.HasTimeReferences(c.lex, text),
	})

	result := models.RecordingResult{
		SessionID:          sessionID,
		Transcript:         text,
		Locale:             c.cfg.Locale,
		DurationMs:         durationMs,
		ConfidenceScore:    score,
		WordCount:          validation.WordCount,
		Tokens:             tokens,
		Validation:         validation,
		NeedsServerRecheck: transcript.NeedsServerRecheck(score, c.cfg.RecheckThreshold),
	}
	if audio.URI != "" {
		result.Audio = &audio
	}
	return result
}

// onFrame forwards captured audio to the recognizer and tracks the meter.
func (c *Controller) onFrame(frame []byte, level int) {
	c.mu.Lock()
	recognizer := c.recognizer
	c.level = level
	c.mu.Unlock()

	if c.cb.OnLevel != nil {
		c.cb.OnLevel(level)
	}
	if recognizer != nil && c.recording.Load() {
		if err := recognizer.SendAudio(context.Background(), frame); err != nil {
			c.log.Warn().Err(err).Msg("send audio to recognizer failed")
		}
	}
}

// fail reports a user-facing error and returns it as an error value.
func (c *Controller) fail(msg string) error {
	c.log.Error().Msg(msg)
	if c.cb.OnError != nil {
		c.cb.OnError(msg)
	}
	return errors.New(msg)
}

// failWith is fail with the cause preserved in the chain, so callers can
// branch on sentinel errors like capture.ErrCaptureBusy.
func (c *Controller) failWith(err error, msg string) error {
	wrapped := fmt.Errorf("%s: %w", msg, err)
	c.log.Error().Err(err).Msg(msg)
	if c.cb.OnError != nil {
		c.cb.OnError(wrapped.Error())
	}
	return wrapped
}

// recognizerShim adapts stt.Callback events onto the controller,
// discarding events from superseded recognizer sessions.
type recognizerShim struct {
	c   *Controller
	gen uint64
}

func (s *recognizerShim) current() bool {
	return s.c.generation.Load() == s.gen
}

func (s *recognizerShim) OnPartial(text string) {
	if !s.current() {
		return
	}
	s.c.mu.Lock()
	s.c.partial = text
	s.c.mu.Unlock()
	if s.c.cb.OnPartial != nil {
		s.c.cb.OnPartial(text)
	}
}

func (s *recognizerShim) OnFinal(text string, confidence float64) {
	if !s.current() {
		return
	}
	s.c.mu.Lock()
	s.c.finals = append(s.c.finals, text)
	s.c.partial = ""
	s.c.mu.Unlock()
	s.c.log.Debug().Float64("recognizerConfidence", confidence).Msg("final transcript segment")
}

// OnSessionEnd restarts recognition while the staff member is still
// recording. The intent flag is read here, at call time; a value captured
// when the recognizer was started would be stale by now.
func (s *recognizerShim) OnSessionEnd() {
	if !s.current() || !s.c.recording.Load() {
		return
	}

	ctx := context.Background()
	recognizer, err := s.c.factory(ctx)
	if err != nil {
		s.c.fail(fmt.Sprintf("speech recognition restart failed: %v", err))
		return
	}
	if err := recognizer.Start(ctx, s); err != nil {
		recognizer.Close()
		s.c.fail(fmt.Sprintf("speech recognition restart failed: %v", err))
		return
	}

	s.c.mu.Lock()
	// Re-check under the lock; Stop or Cancel may have won the race.
	if s.current() && s.c.recording.Load() {
		s.c.recognizer = recognizer
		recognizer = nil
	}
	s.c.mu.Unlock()

	if recognizer != nil {
		recognizer.Close()
	}
}

func (s *recognizerShim) OnError(err error) {
	if !s.current() {
		return
	}
	// Mid-session recognizer errors leave the session to be stopped or
	// cancelled manually; no automatic retry.
	s.c.fail(fmt.Sprintf("speech recognition error: %v", err))
}
