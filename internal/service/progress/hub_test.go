package progress

import (
	"testing"
	"time"
)

func TestPublishReachesSubscriber(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("run-1")
	defer cancel()

	h.Publish(Event{RunID: "run-1", Stage: StageLoading})
	select {
	case ev := <-ch:
		if ev.Stage != StageLoading {
			t.Fatalf("want loading, got %s", ev.Stage)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event delivered")
	}
}

func TestPublishIgnoresOtherRuns(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("run-1")
	defer cancel()

	h.Publish(Event{RunID: "run-2", Stage: StageDone})
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseEndsStream(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("run-1")
	defer cancel()

	h.Close("run-1")
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("channel not closed")
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe("run-1")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			h.Publish(Event{RunID: "run-1", Stage: StageSimulating})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("publish blocked on a slow subscriber")
	}
}

func TestCancelRemovesSubscription(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe("run-1")
	cancel()
	// publishing after cancel must not panic or deliver
	h.Publish(Event{RunID: "run-1", Stage: StageDone})
}

// A subscriber that goes away mid-run must not leave its receive loop
// blocked forever: cancel closes the channel even though the run's own
// Close only sees subscribers still in the map.
func TestCancelEndsReceiveLoop(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("run-1")

	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("receive loop still blocked after cancel")
	}

	// neither the run-end close nor a second cancel may double-close
	h.Close("run-1")
	cancel()
}
