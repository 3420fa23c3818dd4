package session

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

type StoreOptions struct {
	Generator   Generator
	IdleTimeout time.Duration
	Logger      *slog.Logger
	Now         func() time.Time
}

type entry struct {
	ctrl         *Controller
	lastActivity time.Time
}

type Store struct {
	mu          sync.Mutex
	sessions    map[string]*entry
	gen         Generator
	idleTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

func NewStore(opts StoreOptions) *Store {
	idle := opts.IdleTimeout
	if idle <= 0 {
		idle = 60 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Store{
		sessions:    make(map[string]*entry),
		gen:         opts.Generator,
		idleTimeout: idle,
		logger:      logger,
		now:         now,
	}
}

// Create starts a session under a fresh random id.
func (s *Store) Create() (string, *Controller) {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	return id, s.createLocked(id)
}

func (s *Store) Get(id string) (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastActivity = s.now()
	return e.ctrl, nil
}

// GetOrCreate is used by front-ends that bring their own ids, like chat ids.
func (s *Store) GetOrCreate(id string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[id]; ok {
		e.lastActivity = s.now()
		return e.ctrl
	}
	return s.createLocked(id)
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the idle timeout. Sessions with a
// call in flight are kept.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTimeout)
	removed := 0
	for id, e := range s.sessions {
		if e.lastActivity.After(cutoff) || e.ctrl.Busy() {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	if removed > 0 {
		s.logger.Info("sessions swept", "removed", removed, "remaining", len(s.sessions))
	}
	return removed
}

func (s *Store) createLocked(id string) *Controller {
	ctrl := NewController(Options{Generator: s.gen, Logger: s.logger.With("session", id)})
	s.sessions[id] = &entry{ctrl: ctrl, lastActivity: s.now()}
	return ctrl
}
