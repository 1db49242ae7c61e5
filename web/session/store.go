package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/batteryform/core/form"
	"github.com/kilianp07/batteryform/core/logger"
	"github.com/kilianp07/batteryform/core/metrics"
)

// Session pairs a form controller with the lock serialising its events.
type Session struct {
	mu       sync.Mutex
	ctrl     *form.Controller
	lastSeen time.Time
}

// Do runs fn with exclusive access to the controller.
func (s *Session) Do(fn func(*form.Controller) form.Snapshot) form.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.ctrl)
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.ctrl.ID() }

// ControllerFactory builds the controller of a new session.
type ControllerFactory func(id string) *form.Controller

// Store keeps one form controller per browser session. Sessions idle for
// longer than the configured timeout are discarded by Sweep.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idle     time.Duration
	newCtrl  ControllerFactory
	rec      metrics.SessionRecorder
	log      logger.Logger
	now      func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithRecorder reports the number of live sessions.
func WithRecorder(r metrics.SessionRecorder) Option {
	return func(s *Store) {
		if r != nil {
			s.rec = r
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now, used in tests.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// NewStore creates an empty store.
func NewStore(idle time.Duration, newCtrl ControllerFactory, opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		idle:     idle,
		newCtrl:  newCtrl,
		rec:      metrics.NopRecorder{},
		log:      logger.NopLogger{},
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get returns the live session with the given id and refreshes its idle
// timer.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(sess) {
		s.remove(id)
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess, true
}

// GetOrCreate returns the session for id, creating a new one with a fresh
// identifier when id is unknown or expired. created reports the latter.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	if id != "" {
		if sess, ok := s.Get(id); ok {
			return sess, false
		}
	}
	return s.Create(), true
}

// Create starts a new session in its initial state.
func (s *Store) Create() *Session {
	sess := &Session{ctrl: s.newCtrl(uuid.NewString())}
	s.mu.Lock()
	sess.lastSeen = s.now()
	s.sessions[sess.ID()] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	s.rec.SetActiveSessions(n)
	s.log.Debugf("session %s created", sess.ID())
	return sess
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	dropped := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			s.remove(id)
			dropped++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()
	if dropped > 0 {
		s.rec.SetActiveSessions(n)
		s.log.Debugf("swept %d idle sessions", dropped)
	}
	return dropped
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// expired must be called with s.mu held.
func (s *Store) expired(sess *Session) bool {
	return s.now().Sub(sess.lastSeen) > s.idle
}

// remove must be called with s.mu held.
func (s *Store) remove(id string) {
	delete(s.sessions, id)
}
