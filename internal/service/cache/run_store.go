package cache

import (
	"sync"
	"time"

	"FactorBack/internal/domain/models"
)

type entry struct {
	res *models.BacktestResult
	exp time.Time
}

// RunStore keeps completed backtest results in memory, addressable by
// run ID, with optional expiry so long-lived servers do not accumulate
// old curves indefinitely.
type RunStore struct {
	mu  sync.RWMutex
	m   map[string]entry
	ttl time.Duration
}

func NewRunStore(ttl time.Duration) *RunStore {
	return &RunStore{m: make(map[string]entry), ttl: ttl}
}

func (s *RunStore) Put(res *models.BacktestResult) {
	var exp time.Time
	if s.ttl > 0 {
		exp = time.Now().Add(s.ttl)
	}
	s.mu.Lock()
	s.m[res.ID] = entry{res: res, exp: exp}
	s.mu.Unlock()
}

func (s *RunStore) Get(id string) (*models.BacktestResult, bool) {
	s.mu.RLock()
	e, ok := s.m[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		s.mu.Lock()
		delete(s.m, id)
		s.mu.Unlock()
		return nil, false
	}
	return e.res, true
}
