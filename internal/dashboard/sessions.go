package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwaldner/stockai/internal/logger"
)

// Sessions maps a browser session id to its dashboard
type Sessions struct {
	predictor Predictor

	mu     sync.Mutex
	boards map[string]*Dashboard
}

// NewSessions creates an empty session store whose dashboards share p
func NewSessions(p Predictor) *Sessions {
	return &Sessions{
		predictor: p,
		boards:    make(map[string]*Dashboard),
	}
}

// Get returns the dashboard for id, creating a new session when id is empty
// or unknown. The returned id is the one the caller must keep using.
func (s *Sessions) Get(id string) (string, *Dashboard) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.boards[id]; ok && id != "" {
		d.Touch()
		return id, d
	}

	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	d := New(s.predictor)
	s.boards[id] = d
	logger.Debug.Printf("🆕 SESSION: created %s (%d active)", id, len(s.boards))
	return id, d
}

// Lookup returns the dashboard for an existing session only
func (s *Sessions) Lookup(id string) (*Dashboard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.boards[id]
	if ok {
		d.Touch()
	}
	return d, ok
}

// Len is the number of live sessions
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.boards)
}

// Prune drops sessions idle for longer than idle that are neither loading
// nor watched, and returns how many were dropped.
func (s *Sessions) Prune(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for id, d := range s.boards {
		if d.idleSince(cutoff) {
			delete(s.boards, id)
			dropped++
		}
	}
	if dropped > 0 {
		logger.Info.Printf("🧹 SESSION: pruned %d idle sessions (%d active)", dropped, len(s.boards))
	}
	return dropped
}
