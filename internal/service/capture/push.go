package capture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"

	"voice-booking-capture-service/internal/models"
)

// wavHeaderSize is the standard PCM WAV header length.
const wavHeaderSize = 44

// PushDriver is fed PCM chunks by the control API on behalf of a remote
// push-to-talk client. Chunks are spooled to a WAV file so the raw audio
// can be escalated to the backend when confidence is low.
type PushDriver struct {
	spoolDir     string
	sampleRateHz int

	mu      sync.Mutex
	fn      FrameFunc
	file    *os.File
	bytes   int64
	started bool
}

// NewPush creates a push driver spooling under dir.
func NewPush(dir string, sampleRateHz int) *PushDriver {
	return &PushDriver{spoolDir: dir, sampleRateHz: sampleRateHz}
}

// Start acquires the capture slot and opens the spool file.
func (d *PushDriver) Start(fn FrameFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return errors.New("capture: push driver already started")
	}
	if err := acquire(); err != nil {
		return err
	}

	f, err := os.CreateTemp(d.spoolDir, "capture-*.wav")
	if err != nil {
		release()
		return fmt.Errorf("capture: create spool file: %w", err)
	}
	// Placeholder header, patched with real sizes on Stop.
	if _, err := f.Write(make([]byte, wavHeaderSize)); err != nil {
		f.Close()
		os.Remove(f.Name())
		release()
		return fmt.Errorf("capture: write header: %w", err)
	}

	d.fn = fn
	d.file = f
	d.bytes = 0
	d.started = true
	return nil
}

// Push appends one PCM chunk, spools it, and delivers it with its meter
// level.
func (d *PushDriver) Push(chunk []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return errors.New("capture: push before start")
	}
	if _, err := d.file.Write(chunk); err != nil {
		return fmt.Errorf("capture: spool chunk: %w", err)
	}
	d.bytes += int64(len(chunk))

	if d.fn != nil {
		d.fn(chunk, meterLevel(chunk))
	}
	return nil
}

// Stop finalizes the WAV file and returns its reference.
func (d *PushDriver) Stop() (models.AudioRef, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return models.AudioRef{}, errors.New("capture: stop before start")
	}
	d.started = false
	defer release()

	path := d.file.Name()
	if err := d.finalizeWAV(); err != nil {
		d.file.Close()
		return models.AudioRef{}, err
	}
	if err := d.file.Close(); err != nil {
		return models.AudioRef{}, fmt.Errorf("capture: close spool: %w", err)
	}

	return models.AudioRef{
		URI:        path,
		DurationMs: pcmDurationMs(d.bytes, d.sampleRateHz),
	}, nil
}

// Abort discards the capture.
func (d *PushDriver) Abort() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return nil
	}
	d.started = false
	defer release()

	path := d.file.Name()
	d.file.Close()
	return os.Remove(path)
}

// finalizeWAV rewrites the header with the real chunk sizes.
func (d *PushDriver) finalizeWAV() error {
	header := make([]byte, wavHeaderSize)
	rate := uint32(d.sampleRateHz)
	dataLen := uint32(d.bytes)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataLen)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // PCM chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(header[22:24], 1)  // mono
	binary.LittleEndian.PutUint32(header[24:28], rate)
	binary.LittleEndian.PutUint32(header[28:32], rate*2) // byte rate
	binary.LittleEndian.PutUint16(header[32:34], 2)      // block align
	binary.LittleEndian.PutUint16(header[34:36], 16)     // bits per sample
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataLen)

	if _, err := d.file.WriteAt(header, 0); err != nil {
		return fmt.Errorf("capture: finalize wav header: %w", err)
	}
	return nil
}

// pcmDurationMs computes the duration of 16-bit mono PCM.
func pcmDurationMs(bytes int64, sampleRateHz int) int64 {
	if sampleRateHz <= 0 {
		return 0
	}
	return bytes * 1000 / int64(sampleRateHz*2)
}
