package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cookie-jar-solutions/honey/internal/logging"
	"github.com/cookie-jar-solutions/honey/pkg/jar"
)

// ErrSessionNotFound is returned when a session ID is unknown.
var ErrSessionNotFound = errors.New("session not found")

// Factory builds the executor for a new session.
type Factory func(ctx context.Context, sessionID string) (jar.Executor, error)

// Info summarizes a live session.
type Info struct {
	ID         string    `json:"id"`
	Backend    string    `json:"backend"`
	Messages   int       `json:"messages"`
	Tokens     int       `json:"tokens"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

type entry struct {
	executor jar.Executor
	created  time.Time
	lastUsed time.Time
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns the live sessions.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	factory Factory

	mu       sync.Mutex
	sessions map[string]*entry
	locks    map[string]*lockEntry

	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Manager that builds executors with factory.
func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		factory:  factory,
		sessions: make(map[string]*entry),
		locks:    make(map[string]*lockEntry),
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	le, exists := m.locks[sessionID]
	if !exists {
		le = &lockEntry{}
		m.locks[sessionID] = le
	}
	le.refs++
	return le
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	le, exists := m.locks[sessionID]
	if !exists {
		return
	}

	le.refs--
	if le.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	le := m.acquire(sessionID)
	le.mu.Lock()
	defer func() {
		le.mu.Unlock()
		m.release(sessionID)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// Get returns the executor of an existing session.
func (m *Manager) Get(sessionID string) (jar.Executor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", sessionID, ErrSessionNotFound)
	}
	return e.executor, nil
}

// LoadOrStart returns the session's executor, building it on first use.
// Concurrent callers for the same ID share one executor.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID string) (jar.Executor, error) {
	var ex jar.Executor
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		e, ok := m.sessions[sessionID]
		if ok {
			e.lastUsed = m.now()
			ex = e.executor
		}
		m.mu.Unlock()
		if ok {
			return nil
		}

		built, err := m.factory(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}

		now := m.now()
		m.mu.Lock()
		m.sessions[sessionID] = &entry{executor: built, created: now, lastUsed: now}
		m.mu.Unlock()

		m.logger.Debug("session started", "session_id", sessionID, "backend", built.Backend())
		ex = built
		return nil
	})
	return ex, err
}

// Run executes fn with the session's executor active, holding the session
// lock for the duration. The session is created if needed.
func (m *Manager) Run(ctx context.Context, sessionID string, fn func(context.Context, jar.Executor) error) error {
	ex, err := m.LoadOrStart(ctx, sessionID)
	if err != nil {
		return err
	}
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.touch(sessionID)
		return jar.Use(ctx, ex, func(ctx context.Context) error {
			return fn(ctx, ex)
		})
	})
}

func (m *Manager) touch(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[sessionID]; ok {
		e.lastUsed = m.now()
	}
}

// Delete drops the session. Deleting an unknown session is not an error.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		delete(m.sessions, sessionID)
		m.mu.Unlock()
		return nil
	})
}

// List returns a summary of every live session, ordered by ID.
func (m *Manager) List() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]Info, 0, len(m.sessions))
	for id, e := range m.sessions {
		infos = append(infos, Info{
			ID:         id,
			Backend:    e.executor.Backend(),
			Messages:   e.executor.MessageCount(),
			Tokens:     e.executor.TotalTokens(),
			CreatedAt:  e.created,
			LastUsedAt: e.lastUsed,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Prune drops sessions idle for longer than maxIdle and returns how many went.
func (m *Manager) Prune(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxIdle)
	n := 0
	for id, e := range m.sessions {
		if _, busy := m.locks[id]; busy {
			continue
		}
		if e.lastUsed.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	if n > 0 {
		m.logger.Info("pruned idle sessions", "count", n)
	}
	return n
}

// Janitor prunes idle sessions every interval until ctx is done.
func (m *Manager) Janitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Prune(maxIdle)
		}
	}
}
