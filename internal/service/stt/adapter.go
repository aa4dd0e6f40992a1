// Package stt defines the interface for speech recognizer adapters.
package stt

import "context"

// Callback receives transcript results from the recognizer.
type Callback interface {
	// OnPartial is called when an interim/partial transcript is received.
	OnPartial(text string)

	// OnFinal is called when a final transcript is received.
	OnFinal(text string, confidence float64)

	// OnSessionEnd is called when the recognizer ends its session on its
	// own, typically after silence. The session controller decides whether
	// to start a fresh session or let the recording end.
	OnSessionEnd()

	// OnError is called when an error occurs during recognition.
	OnError(err error)
}

// Adapter is one recognition session. Implementations exist for Google
// Cloud streaming recognition, local whisper.cpp, and a demo fallback for
// development environments without any engine.
type Adapter interface {
	// Start begins the recognition session.
	Start(ctx context.Context, cb Callback) error

	// SendAudio feeds PCM bytes to the recognizer.
	SendAudio(ctx context.Context, audio []byte) error

	// Close ends the session and releases resources. Batch engines emit
	// their final transcript synchronously before returning.
	Close() error
}

// Factory creates a fresh Adapter per recognition session. The session
// controller uses it both at recording start and when restarting after a
// premature session end.
type Factory func(ctx context.Context) (Adapter, error)
