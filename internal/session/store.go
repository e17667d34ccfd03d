package session

import (
	"context"
	"sync"
	"time"

	"github.com/Eursukkul/competition-portal/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type entry struct {
	wizard  Wizard
	touched time.Time
}

// Store keeps sessions in memory. Sessions idle for longer than the TTL
// are dropped by Sweep.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewStore(ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.With(zap.String("component", "session_store")),
	}
}

func (s *Store) Put(w Wizard) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &entry{wizard: w, touched: s.now()}
	n := len(s.sessions)
	s.mu.Unlock()
	metrics.ActiveSessions.Set(float64(n))
	return id
}

// Get returns the session and refreshes its idle timer.
func (s *Store) Get(id string) (Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.touched = s.now()
	return e.wizard, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	e.wizard.Close()
	metrics.ActiveSessions.Set(float64(n))
	return nil
}

// Sweep drops idle sessions and returns how many it removed.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.ttl)
	var expired []Wizard

	s.mu.Lock()
	for id, e := range s.sessions {
		if e.touched.Before(cutoff) {
			expired = append(expired, e.wizard)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, w := range expired {
		w.Close()
	}
	if len(expired) > 0 {
		s.logger.Info("expired sessions dropped", zap.Int("count", len(expired)))
	}
	metrics.ActiveSessions.Set(float64(n))
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
