package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"voice-booking-capture-service/internal/lexicon"
	"voice-booking-capture-service/internal/models"
	"voice-booking-capture-service/internal/service/capture"
	"voice-booking-capture-service/internal/service/stt"
)

// Generator produces recording session IDs.
type Generator struct {
	counter uint64
}

// NewGenerator creates a session ID generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Next returns the next session ID for a venue.
func (g *Generator) Next(venueID string) string {
	n := atomic.AddUint64(&g.counter, 1)
	return fmt.Sprintf("%s-rec-%d", venueID, n)
}

// ManagerConfig holds the settings shared by all sessions.
type ManagerConfig struct {
	Controller   Config
	VenueID      string
	SpoolDir     string
	SampleRateHz int

	// Source selects where audio comes from: "push" (the control API feeds
	// PCM chunks) or "mic" (the local microphone, kiosk deployments).
	Source string
}

// Manager creates and tracks recording sessions for the control API. The
// capture device is a singleton, so at most one session is actively
// recording; stale entries stick around only until their client removes
// them.
type Manager struct {
	cfg        ManagerConfig
	lex        *lexicon.Lexicon
	sttFactory stt.Factory
	perm       capture.Permission
	log        zerolog.Logger
	gen        *Generator

	mu       sync.Mutex
	sessions map[string]*Session
}

// Session pairs a controller with its capture driver, plus the last error
// and result for display. Push is nil when the session captures from the
// local microphone.
type Session struct {
	ID         string
	Controller *Controller
	Push       *capture.PushDriver

	mu         sync.Mutex
	lastError  string
	lastResult *models.RecordingResult
}

// LastError returns the most recent user-facing error for this session.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// LastResult returns the retained result of the last completed recording,
// or nil.
func (s *Session) LastResult() *models.RecordingResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

func (s *Session) setError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
}

func (s *Session) setResult(r models.RecordingResult) {
	s.mu.Lock()
	s.lastResult = &r
	s.mu.Unlock()
}

// NewManager wires a session manager.
func NewManager(
	cfg ManagerConfig,
	lex *lexicon.Lexicon,
	sttFactory stt.Factory,
	perm capture.Permission,
	log zerolog.Logger,
) *Manager {
	return &Manager{
		cfg:        cfg,
		lex:        lex,
		sttFactory: sttFactory,
		perm:       perm,
		log:        log,
		gen:        NewGenerator(),
		sessions:   make(map[string]*Session),
	}
}

// Start creates a session and begins recording. Fails when the capture
// device is already held by another session.
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	id := m.gen.Next(m.cfg.VenueID)

	var driver capture.Driver
	sess := &Session{ID: id}
	if m.cfg.Source == "mic" {
		driver = capture.NewMic(m.cfg.SpoolDir, m.cfg.SampleRateHz)
	} else {
		sess.Push = capture.NewPush(m.cfg.SpoolDir, m.cfg.SampleRateHz)
		driver = sess.Push
	}

	sess.Controller = NewController(
		m.cfg.Controller,
		m.lex,
		m.sttFactory,
		driver,
		m.perm,
		Callbacks{OnError: sess.setError, OnResult: sess.setResult},
		m.log.With().Str("sessionId", id).Logger(),
	)

	if err := sess.Controller.Start(ctx, id); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()
	return sess, nil
}

// Get looks up a session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove drops a finished session from the registry.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Shutdown cancels any session that is still active.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		if s.Controller.lifecycle.IsActive() {
			if err := s.Controller.Cancel(); err != nil {
				m.log.Warn().Err(err).Str("sessionId", s.ID).Msg("cancel on shutdown failed")
			}
		}
	}
}
