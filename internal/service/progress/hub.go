package progress

import (
	"sync"
	"time"
)

// Event is one progress update for a running backtest. Stage moves
// through loading -> factors -> simulating -> analyzing -> done (or
// failed); Equity carries incremental equity points while simulating.
type Event struct {
	RunID  string    `json:"run_id"`
	Stage  string    `json:"stage"`
	Symbol string    `json:"symbol,omitempty"`
	Date   time.Time `json:"date,omitempty"`
	Equity float64   `json:"equity,omitempty"`
	Error  string    `json:"error,omitempty"`
}

const (
	StageLoading    = "loading"
	StageFactors    = "factors"
	StageSimulating = "simulating"
	StageAnalyzing  = "analyzing"
	StageDone       = "done"
	StageFailed     = "failed"
)

// Hub fans out run progress to any number of subscribers. Slow
// subscribers drop events instead of blocking the run.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a listener for a run. The returned cancel func
// must be called when the listener goes away; it closes the event
// channel so receive loops terminate. Safe to call more than once.
func (h *Hub) Subscribe(runID string) (<-chan Event, func()) {
	ch := make(chan Event, 256)
	h.mu.Lock()
	set, ok := h.subs[runID]
	if !ok {
		set = make(map[chan Event]struct{})
		h.subs[runID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[runID]; ok {
			if _, member := set[ch]; member {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.subs, runID)
				}
				// closed under the lock: Publish sends only while
				// holding the read lock, so no send can race the close
				close(ch)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to current subscribers of the run.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[ev.RunID] {
		select {
		case ch <- ev:
		default: // subscriber lagging; drop
		}
	}
}

// Close signals end-of-stream to all remaining subscribers of the run.
// Channels already closed by their cancel func are no longer in the map.
func (h *Hub) Close(runID string) {
	h.mu.Lock()
	set := h.subs[runID]
	delete(h.subs, runID)
	for ch := range set {
		close(ch)
	}
	h.mu.Unlock()
}
