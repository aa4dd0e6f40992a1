package events

import (
	"context"
	"testing"
	"time"

	"voice-booking-capture-service/internal/models"
)

func TestNew_NilConfigDisabled(t *testing.T) {
	p := New(nil)
	if p.enabled {
		t.Error("nil config must produce a disabled publisher")
	}
	if err := p.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
}

func TestNew_DisabledWithoutBrokers(t *testing.T) {
	p := New(&Config{
		Enabled:      true,
		TopicCapture: "voice.capture.completed",
		TopicOutcome: "voice.booking.outcome",
		Principal:    "svc-voice-booking",
	})
	if p.enabled {
		t.Error("empty broker list must disable Kafka")
	}
}

func TestPublish_LogOnlyModeSucceeds(t *testing.T) {
	p := New(&Config{Enabled: false, Principal: "svc-voice-booking"})

	event := models.CaptureCompleted{
		EventType:       EventTypeCaptureCompleted,
		SessionID:       "venue-1-rec-3",
		VenueID:         "venue-1",
		Timestamp:       time.Now().UnixMilli(),
		Transcript:      "Tavolo per due",
		WordCount:       3,
		ConfidenceScore: 85,
	}
	if err := p.PublishCaptureCompleted(context.Background(), event.SessionID, event); err != nil {
		t.Errorf("log-only capture publish must not fail: %v", err)
	}

	outcome := models.BookingOutcome{
		EventType: EventTypeBookingOutcome,
		SessionID: "venue-1-rec-3",
		Status:    models.VoiceStatusSuccess,
		BookingID: "bk-1",
	}
	if err := p.PublishBookingOutcome(context.Background(), outcome.SessionID, outcome); err != nil {
		t.Errorf("log-only outcome publish must not fail: %v", err)
	}
}

func TestPublish_UnserializableEventFails(t *testing.T) {
	p := New(nil)
	if err := p.PublishBookingOutcome(context.Background(), "k", make(chan int)); err == nil {
		t.Error("expected marshal error for unserializable event")
	}
}
