//go:build portaudio

package capture

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"voice-booking-capture-service/internal/models"
)

// framesPerBuffer at 16kHz gives 64ms frames, enough meter updates for a
// responsive visualizer.
const framesPerBuffer = 1024

// MicDriver captures from the default input device via portaudio. Used in
// kiosk deployments where voicebookd runs next to the microphone.
type MicDriver struct {
	spoolDir     string
	sampleRateHz int

	mu     sync.Mutex
	stream *portaudio.Stream
	push   *PushDriver
}

// NewMic creates a microphone driver spooling WAV files under dir.
func NewMic(dir string, sampleRateHz int) *MicDriver {
	return &MicDriver{spoolDir: dir, sampleRateHz: sampleRateHz}
}

// Start opens the default input device and begins streaming frames. The
// spooling and metering reuse the push driver underneath.
func (d *MicDriver) Start(fn FrameFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("capture: init portaudio: %w", err)
	}

	device, err := portaudio.DefaultInputDevice()
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("capture: no default input device: %w", err)
	}

	push := NewPush(d.spoolDir, d.sampleRateHz)
	if err := push.Start(fn); err != nil {
		portaudio.Terminate()
		return err
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(d.sampleRateHz),
		FramesPerBuffer: framesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, func(in []int16) {
		frame := make([]byte, len(in)*2)
		for i, s := range in {
			binary.LittleEndian.PutUint16(frame[i*2:], uint16(s))
		}
		// Spool errors mid-stream surface on Stop.
		_ = push.Push(frame)
	})
	if err != nil {
		push.Abort()
		portaudio.Terminate()
		return fmt.Errorf("capture: open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		push.Abort()
		portaudio.Terminate()
		return fmt.Errorf("capture: start stream: %w", err)
	}

	d.stream = stream
	d.push = push
	return nil
}

// Stop ends the capture and returns the spooled recording.
func (d *MicDriver) Stop() (models.AudioRef, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream == nil {
		return models.AudioRef{}, fmt.Errorf("capture: stop before start")
	}

	err := d.stream.Stop()
	d.stream.Close()
	d.stream = nil
	portaudio.Terminate()

	ref, stopErr := d.push.Stop()
	d.push = nil
	if err == nil {
		err = stopErr
	}
	return ref, err
}

// Abort tears the capture down and discards the recording.
func (d *MicDriver) Abort() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream == nil {
		return nil
	}
	d.stream.Stop()
	d.stream.Close()
	d.stream = nil
	portaudio.Terminate()

	err := d.push.Abort()
	d.push = nil
	return err
}
