package demo

import (
	"context"
	"sync"
	"testing"
	"time"
)

type collector struct {
	mu       sync.Mutex
	partials []string
	finals   []string
	ended    int
	errs     []error
}

func (c *collector) OnPartial(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.partials = append(c.partials, text)
}

func (c *collector) OnFinal(text string, confidence float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finals = append(c.finals, text)
}

func (c *collector) OnSessionEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ended++
}

func (c *collector) OnError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func TestAdapter_ScriptedSession(t *testing.T) {
	utterance := SimulatedUtterance{
		Partials:   []string{"Table for", "Table for two"},
		Final:      "Table for two at 19:30 for Sarah Miller",
		Confidence: 0.93,
	}
	adapter := NewScripted(utterance)
	cb := &collector{}

	if err := adapter.Start(context.Background(), cb); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	for i := 0; i < 4; i++ {
		if err := adapter.SendAudio(context.Background(), make([]byte, 640)); err != nil {
			t.Fatalf("send audio failed: %v", err)
		}
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		cb.mu.Lock()
		n := len(cb.partials)
		cb.mu.Unlock()
		if n == len(utterance.Partials) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := adapter.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if len(cb.partials) != 2 {
		t.Errorf("expected 2 partials, got %v", cb.partials)
	}
	if len(cb.finals) != 1 || cb.finals[0] != utterance.Final {
		t.Errorf("expected scripted final, got %v", cb.finals)
	}
	if len(cb.errs) != 0 {
		t.Errorf("unexpected errors: %v", cb.errs)
	}
}

func TestAdapter_FinalIsSynchronousOnClose(t *testing.T) {
	adapter := NewScripted(SimulatedUtterance{Final: "Prenotazione stasera", Confidence: 0.74})
	cb := &collector{}

	adapter.Start(context.Background(), cb)
	adapter.Close()

	// No waiting: the final must already be there.
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if len(cb.finals) != 1 || cb.finals[0] != "Prenotazione stasera" {
		t.Errorf("expected final delivered before Close returns, got %v", cb.finals)
	}
}

func TestAdapter_CloseIsIdempotent(t *testing.T) {
	adapter := NewScripted(SimulatedUtterance{Final: "Tavolo per due", Confidence: 0.9})
	cb := &collector{}

	adapter.Start(context.Background(), cb)
	adapter.Close()
	adapter.Close()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if len(cb.finals) != 1 {
		t.Errorf("expected exactly one final, got %d", len(cb.finals))
	}
}

func TestAdapter_NoPartialsAfterClose(t *testing.T) {
	adapter := NewScripted(SimulatedUtterance{
		Partials: []string{"Una mesa"},
		Final:    "Una mesa para seis",
	})
	cb := &collector{}

	adapter.Start(context.Background(), cb)
	adapter.Close()
	adapter.SendAudio(context.Background(), make([]byte, 640))

	time.Sleep(50 * time.Millisecond)

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if len(cb.partials) != 0 {
		t.Errorf("expected no partials after close, got %v", cb.partials)
	}
}

func TestNew_CyclesThroughDefaults(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < len(DefaultUtterances); i++ {
		adapter := New()
		seen[adapter.utterance.Final] = true
	}
	if len(seen) != len(DefaultUtterances) {
		t.Errorf("expected %d distinct utterances, got %d", len(DefaultUtterances), len(seen))
	}
}
