// Package session tracks wizard sessions. Each session owns one
// project store and its controller; idle sessions are swept on a cron
// schedule since wizard state is transient and not persisted across
// reloads.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"vibeguide/internal/store"
	"vibeguide/internal/wizard"
)

// Session is one user's in-progress wizard run.
type Session struct {
	ID         string
	UserID     string
	Store      *store.Store
	Controller *wizard.Controller

	mu       sync.Mutex
	lastSeen time.Time
}

// touch marks the session as recently used.
func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Registry holds live sessions keyed by ID.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	logger   *slog.Logger
}

// NewRegistry creates a registry whose sessions expire after ttl of
// inactivity.
func NewRegistry(ttl time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   logger,
	}
}

// Create starts a fresh session for the user.
func (r *Registry) Create(userID string) *Session {
	st := store.New(r.logger)
	s := &Session{
		ID:         uuid.New().String(),
		UserID:     userID,
		Store:      st,
		Controller: wizard.NewController(st),
		lastSeen:   time.Now(),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.logger.Info("session created", "session_id", s.ID, "user_id", userID)
	return s
}

// Get returns a live session and refreshes its idle timer.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.touch(time.Now())
	return s, true
}

// Remove drops a session. No-op if absent.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes sessions idle longer than the TTL and returns how many
// were dropped.
func (r *Registry) Sweep() int {
	cutoff := time.Now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Info("swept idle sessions", "removed", removed, "remaining", len(r.sessions))
	}
	return removed
}

// StartSweeper registers the sweep job on the given cron runner.
func (r *Registry) StartSweeper(c *cron.Cron, schedule string) error {
	_, err := c.AddFunc(schedule, func() { r.Sweep() })
	return err
}
