//go:build !portaudio

package capture

import (
	"errors"

	"voice-booking-capture-service/internal/models"
)

// MicDriver without the portaudio build tag refuses to start, so the
// service still builds on hosts without the PortAudio C library.
type MicDriver struct{}

// NewMic returns the stub microphone driver.
func NewMic(dir string, sampleRateHz int) *MicDriver {
	return &MicDriver{}
}

func (d *MicDriver) Start(fn FrameFunc) error {
	return errors.New("capture: built without portaudio support")
}

func (d *MicDriver) Stop() (models.AudioRef, error) {
	return models.AudioRef{}, errors.New("capture: built without portaudio support")
}

func (d *MicDriver) Abort() error {
	return nil
}
