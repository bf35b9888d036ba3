package websocket

import (
	"sync"

	"github.com/swiftride/dispatch-backend/pkg/logger"
)

// Registry maintains the live driver sessions, at most one per driver id.
// It is the only in-memory shared structure of the dispatch subsystem and
// owns the map exclusively; callers interact through Register, Unregister
// and Lookup only.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *logger.Logger
}

// NewRegistry creates an empty session registry
func NewRegistry(logger *logger.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Register inserts or replaces the session for a driver. Last write wins;
// a displaced session is closed so its pumps and connection wind down
// instead of idling on ping/pong forever.
func (r *Registry) Register(driverID string, s *Session) {
	r.mu.Lock()
	prev, displaced := r.sessions[driverID]
	r.sessions[driverID] = s
	r.mu.Unlock()

	if displaced && prev != s {
		prev.Close()
		r.logger.Warn("Driver session displaced by newer connection",
			logger.String("driver_id", driverID),
			logger.String("old_session_id", prev.ID),
			logger.String("new_session_id", s.ID),
		)
		return
	}
	r.logger.Info("Driver session registered",
		logger.String("driver_id", driverID),
		logger.String("session_id", s.ID),
	)
}

// Unregister removes the driver's entry only if it still points at s, so a
// stale disconnect from a superseded connection never clobbers a newer one.
func (r *Registry) Unregister(driverID string, s *Session) {
	r.mu.Lock()
	current, ok := r.sessions[driverID]
	if ok && current == s {
		delete(r.sessions, driverID)
	}
	r.mu.Unlock()

	if ok && current == s {
		r.logger.Info("Driver session unregistered",
			logger.String("driver_id", driverID),
			logger.String("session_id", s.ID),
		)
	}
}

// Lookup returns the driver's live session, if any. Never blocks.
func (r *Registry) Lookup(driverID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[driverID]
	return s, ok
}

// Count returns the number of connected drivers
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
