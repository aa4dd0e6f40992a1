// Package whisper provides a local whisper.cpp recognizer adapter.
//
// whisper.cpp is a batch engine: it has no streaming partials, so the
// adapter buffers PCM for the whole recording and emits exactly one final
// transcript synchronously when the session is closed.
package whisper

import (
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"voice-booking-capture-service/internal/service/stt"
)

// maxBufferBytes bounds the per-session audio buffer. At 16kHz 16-bit mono
// this is well past the 60 second recording cap.
const maxBufferBytes = 4 * 1024 * 1024

// Engine wraps a loaded whisper model shared across sessions. ggml
// inference is not thread safe, so a mutex serializes Process calls.
type Engine struct {
	model    whisper.Model
	language string
	mu       sync.Mutex
}

// NewEngine loads the model file at path. language is a two-letter code or
// "auto".
func NewEngine(path, language string) (*Engine, error) {
	model, err := whisper.New(path)
	if err != nil {
		return nil, err
	}
	if language == "" {
		language = "auto"
	}
	return &Engine{model: model, language: language}, nil
}

// Close releases the model.
func (e *Engine) Close() error {
	return e.model.Close()
}

// NewAdapter creates a recognition session backed by this engine.
func (e *Engine) NewAdapter() *Adapter {
	return &Adapter{engine: e}
}

// Adapter implements stt.Adapter by buffering audio and transcribing on
// Close.
type Adapter struct {
	engine *Engine

	mu     sync.Mutex
	cb     stt.Callback
	buf    []byte
	closed bool
}

// Start records the callback; nothing else happens until audio arrives.
func (a *Adapter) Start(ctx context.Context, cb stt.Callback) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cb = cb
	return nil
}

// SendAudio appends PCM bytes to the session buffer.
func (a *Adapter) SendAudio(ctx context.Context, audio []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return errors.New("whisper stt: session closed")
	}
	if len(a.buf)+len(audio) > maxBufferBytes {
		return errors.New("whisper stt: audio buffer limit exceeded")
	}
	a.buf = append(a.buf, audio...)
	return nil
}

// Close runs inference over the buffered audio and emits the final
// transcript before returning.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	cb := a.cb
	buf := a.buf
	a.buf = nil
	a.mu.Unlock()

	if cb == nil || len(buf) == 0 {
		return nil
	}

	text, err := a.engine.transcribe(buf)
	if err != nil {
		cb.OnError(err)
		return err
	}
	if text != "" {
		// The bindings expose no confidence; report full confidence and
		// let the heuristic scorer judge the transcript on its own.
		cb.OnFinal(text, 1.0)
	}
	return nil
}

func (e *Engine) transcribe(pcm []byte) (string, error) {
	samples := bytesToFloat32(pcm)

	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, err := e.model.NewContext()
	if err != nil {
		return "", err
	}
	if err := ctx.SetLanguage(e.language); err != nil {
		return "", err
	}
	ctx.SetTranslate(false)

	var sb strings.Builder
	segmentCb := func(segment whisper.Segment) {
		sb.WriteString(segment.Text)
	}
	if err := ctx.Process(samples, nil, segmentCb, nil); err != nil {
		return "", err
	}

	text := strings.TrimSpace(sb.String())
	if text == "[BLANK_AUDIO]" || len(text) < 2 {
		return "", nil
	}
	return text, nil
}

// bytesToFloat32 converts little-endian 16-bit PCM to the normalized
// float samples whisper.cpp expects.
func bytesToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		out[i] = float32(s) / 32768.0
	}
	return out
}
