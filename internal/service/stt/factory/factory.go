// Package factory selects the recognizer implementation once, at service
// construction, instead of branching on platform capabilities throughout
// the control flow.
package factory

import (
	"context"
	"fmt"

	"voice-booking-capture-service/internal/service/stt"
	"voice-booking-capture-service/internal/service/stt/demo"
	"voice-booking-capture-service/internal/service/stt/google"
	"voice-booking-capture-service/internal/service/stt/whisper"
)

// Options describe the configured recognizer.
type Options struct {
	// Provider is "google", "whisper", "demo" or "" (none configured).
	Provider string

	// Environment is "dev" or "prod". The demo recognizer is only ever
	// selected in dev; a prod build without a real engine fails instead
	// of synthesizing transcripts.
	Environment string

	LanguageCode     string
	SampleRateHz     int
	WhisperModelPath string
}

// ErrNoRecognizer is returned when no speech engine is configured and the
// demo fallback is not permitted.
var ErrNoRecognizer = fmt.Errorf("stt: no speech recognizer available")

// New returns a session factory for the configured provider plus a cleanup
// function releasing any shared engine state.
func New(opts Options) (stt.Factory, func() error, error) {
	noop := func() error { return nil }

	switch opts.Provider {
	case "google":
		f := func(ctx context.Context) (stt.Adapter, error) {
			return google.New(ctx, google.Config{
				LanguageCode: opts.LanguageCode,
				SampleRateHz: opts.SampleRateHz,
			})
		}
		return f, noop, nil

	case "whisper":
		lang := shortLang(opts.LanguageCode)
		engine, err := whisper.NewEngine(opts.WhisperModelPath, lang)
		if err != nil {
			return nil, nil, fmt.Errorf("stt: load whisper model: %w", err)
		}
		f := func(ctx context.Context) (stt.Adapter, error) {
			return engine.NewAdapter(), nil
		}
		return f, engine.Close, nil

	case "demo", "":
		// The guard is on the environment, not on engine availability:
		// demo transcripts must never appear in production.
		if opts.Environment != "dev" {
			return nil, nil, ErrNoRecognizer
		}
		f := func(ctx context.Context) (stt.Adapter, error) {
			return demo.New(), nil
		}
		return f, noop, nil

	default:
		return nil, nil, fmt.Errorf("stt: unknown provider %q", opts.Provider)
	}
}

// shortLang reduces a BCP-47 tag to the two-letter code whisper expects.
func shortLang(tag string) string {
	if len(tag) >= 2 {
		return tag[:2]
	}
	return "auto"
}
