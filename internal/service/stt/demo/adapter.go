// Package demo provides a recognizer adapter that synthesizes transcripts
// from a fixed multilingual example set. It exists so the downstream
// pipeline can be exercised in development environments that have no
// speech engine at all; the factory refuses to select it outside dev
// builds, regardless of engine availability.
package demo

import (
	"context"
	"sync"
	"time"

	"voice-booking-capture-service/internal/service/stt"
)

// SimulatedUtterance is one scripted recognition with progressive partials.
type SimulatedUtterance struct {
	Partials   []string
	Final      string
	Confidence float64
}

// DefaultUtterances covers the three launch languages with realistic
// booking dictations, including one incomplete utterance so the
// clarification path gets exercised too.
var DefaultUtterances = []SimulatedUtterance{
	{
		Partials:   []string{"Tavolo per", "Tavolo per quattro persone", "Tavolo per quattro persone alle 20:00"},
		Final:      "Tavolo per quattro persone alle 20:00 per Mario Rossi",
		Confidence: 0.95,
	},
	{
		Partials:   []string{"Table for", "Table for two at"},
		Final:      "Table for two at 19:30 for Sarah Miller",
		Confidence: 0.93,
	},
	{
		Partials:   []string{"Una mesa", "Una mesa para seis"},
		Final:      "Una mesa para seis a las nueve para Carmen Lopez",
		Confidence: 0.91,
	},
	{
		Partials:   []string{"Prenotazione"},
		Final:      "Prenotazione stasera",
		Confidence: 0.74,
	},
}

var (
	utteranceCounter int
	counterMu        sync.Mutex
)

// Adapter implements stt.Adapter with scripted responses. One partial is
// delivered per audio frame; the final transcript is emitted synchronously
// on Close so callers can compose the result deterministically.
type Adapter struct {
	mu           sync.Mutex
	cb           stt.Callback
	utterance    SimulatedUtterance
	partialIndex int
	finalSent    bool
	closed       bool
}

// New creates a demo adapter, cycling through the default utterances.
func New() *Adapter {
	counterMu.Lock()
	idx := utteranceCounter % len(DefaultUtterances)
	utteranceCounter++
	counterMu.Unlock()

	return &Adapter{utterance: DefaultUtterances[idx]}
}

// NewScripted creates a demo adapter that replays a specific utterance.
func NewScripted(u SimulatedUtterance) *Adapter {
	return &Adapter{utterance: u}
}

// Start begins the scripted session.
func (a *Adapter) Start(ctx context.Context, cb stt.Callback) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cb = cb
	return nil
}

// SendAudio delivers the next partial, if any. A short delay mimics
// recognizer latency.
func (a *Adapter) SendAudio(ctx context.Context, audio []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || a.cb == nil || a.partialIndex >= len(a.utterance.Partials) {
		return nil
	}

	partial := a.utterance.Partials[a.partialIndex]
	a.partialIndex++

	go func(text string) {
		time.Sleep(20 * time.Millisecond)
		a.mu.Lock()
		cb := a.cb
		closed := a.closed
		a.mu.Unlock()
		if !closed && cb != nil {
			cb.OnPartial(text)
		}
	}(partial)

	return nil
}

// Close emits the scripted final synchronously and ends the session.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	cb := a.cb
	sendFinal := !a.finalSent && cb != nil
	a.finalSent = true
	utt := a.utterance
	a.mu.Unlock()

	if sendFinal {
		cb.OnFinal(utt.Final, utt.Confidence)
	}
	return nil
}
