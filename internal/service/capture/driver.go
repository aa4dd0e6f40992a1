// Package capture provides the audio capture drivers feeding a recording
// session: a push driver fed over the control API and a portaudio driver
// for the local microphone. Whichever driver runs, the capture device is a
// singleton; a second acquisition fails until the first is released.
package capture

import (
	"errors"
	"math"
	"sync/atomic"

	"voice-booking-capture-service/internal/models"
)

// FrameFunc receives each captured PCM frame together with a normalized
// 0-100 meter level. The level feeds the visualizer only, never the
// decision logic.
type FrameFunc func(frame []byte, level int)

// Driver is one audio capture session.
type Driver interface {
	// Start acquires the capture device and begins delivering frames.
	Start(fn FrameFunc) error

	// Stop ends the capture and returns a playable reference to the
	// recorded audio.
	Stop() (models.AudioRef, error)

	// Abort tears the capture down and discards the recorded audio.
	Abort() error
}

// ErrCaptureBusy is returned when a capture session is already holding the
// device.
var ErrCaptureBusy = errors.New("capture: device already in use")

// captureInUse guards the singleton capture device across drivers.
var captureInUse atomic.Bool

func acquire() error {
	if !captureInUse.CompareAndSwap(false, true) {
		return ErrCaptureBusy
	}
	return nil
}

func release() {
	captureInUse.Store(false)
}

// meterLevel computes a 0-100 RMS level from little-endian 16-bit PCM.
func meterLevel(frame []byte) int {
	n := len(frame) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := int16(uint16(frame[i*2]) | uint16(frame[i*2+1])<<8)
		sum += float64(s) * float64(s)
	}
	rms := math.Sqrt(sum / float64(n))
	level := int(rms / 327.68)
	if level > 100 {
		level = 100
	}
	return level
}
