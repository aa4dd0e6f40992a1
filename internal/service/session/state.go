// Package session owns the recording session lifecycle: the state machine,
// the controller that wires recognizer and capture driver together, and
// the registry the control API drives.
package session

import (
	"errors"
	"fmt"
	"sync"
)

// State is the lifecycle state of a recording session.
type State int

const (
	// StateIdle - no recording in progress.
	StateIdle State = iota
	// StateRecording - audio capture and recognition are running.
	StateRecording
	// StateProcessing - capture stopped, heuristics and submission running.
	StateProcessing
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRecording:
		return "RECORDING"
	case StateProcessing:
		return "PROCESSING"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// Errors for invalid state transitions.
var (
	ErrAlreadyActive = errors.New("session: recording already in progress")
	ErrNotRecording  = errors.New("session: no recording in progress")
)

// Lifecycle manages the state machine for one recording session.
// Thread-safe for concurrent access.
//
// State transitions:
//
//	IDLE → RECORDING → PROCESSING → IDLE
//
// Failures on any path reset straight back to IDLE; errors are surfaced
// through the controller's error callback, not held as a state.
type Lifecycle struct {
	mu    sync.RWMutex
	state State
}

// NewLifecycle creates a lifecycle in IDLE state.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: StateIdle}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// IsActive returns true while a recording is being captured or processed.
// No second recording may start during either phase.
func (l *Lifecycle) IsActive() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state != StateIdle
}

// BeginRecording transitions IDLE → RECORDING.
func (l *Lifecycle) BeginRecording() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateIdle {
		return ErrAlreadyActive
	}
	l.state = StateRecording
	return nil
}

// BeginProcessing transitions RECORDING → PROCESSING.
func (l *Lifecycle) BeginProcessing() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateRecording {
		return ErrNotRecording
	}
	l.state = StateProcessing
	return nil
}

// Finish transitions PROCESSING → IDLE.
func (l *Lifecycle) Finish() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateProcessing {
		return ErrNotRecording
	}
	l.state = StateIdle
	return nil
}

// Reset forces the lifecycle back to IDLE from any state. Used on
// cancellation and on every failure path. Idempotent.
func (l *Lifecycle) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = StateIdle
}
