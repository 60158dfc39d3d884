package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultIdleTTL is how long an untouched session stays in memory.
	DefaultIdleTTL = 30 * time.Minute
	// DefaultMaxSessions bounds the sessions held in memory at once.
	DefaultMaxSessions = 10000
)

// SessionManager creates sessions on first use and evicts idle ones. A
// session evicted from memory keeps its cart in the snapshot repository and
// is rehydrated on the next request.
type SessionManager struct {
	cfg         SessionConfig
	idleTTL     time.Duration
	maxSessions int
	logger      *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// ManagerOption configures a SessionManager.
type ManagerOption func(*SessionManager)

// WithMaxSessions caps the sessions held in memory. Opening one more evicts
// the least recently seen session; its cart stays in the repository.
func WithMaxSessions(n int) ManagerOption {
	return func(m *SessionManager) {
		if n > 0 {
			m.maxSessions = n
		}
	}
}

// NewSessionManager returns a manager building sessions from cfg.
func NewSessionManager(cfg SessionConfig, idleTTL time.Duration, opts ...ManagerOption) *SessionManager {
	cfg = cfg.withDefaults()
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	m := &SessionManager{
		cfg:         cfg,
		idleTTL:     idleTTL,
		maxSessions: DefaultMaxSessions,
		logger:      cfg.Logger,
		sessions:    make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session returns the session for id, opening it on first use.
func (m *SessionManager) Session(ctx context.Context, id string) (*Session, error) {
	if s := m.lookup(id); s != nil {
		return s, nil
	}

	// Rehydration talks to the repository, so it happens outside the lock.
	created, err := NewSession(ctx, id, m.cfg)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		created.Close()
		s.touch()
		return s, nil
	}
	var evicted *Session
	if len(m.sessions) >= m.maxSessions {
		evicted = m.removeOldestLocked()
	}
	m.sessions[id] = created
	activeSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	if evicted != nil {
		evicted.Close()
		sessionsEvictedTotal.Inc()
		m.logger.WarnContext(ctx, "session limit reached, evicted least recently seen session",
			slog.String("evicted_session_id", evicted.ID()),
			slog.Int("max_sessions", m.maxSessions),
		)
	}
	m.logger.DebugContext(ctx, "session opened", slog.String("session_id", id))
	return created, nil
}

// removeOldestLocked drops the least recently seen session from the map and
// returns it. m.mu must be held.
func (m *SessionManager) removeOldestLocked() *Session {
	var (
		oldestID string
		oldest   *Session
		seen     time.Time
	)
	for id, s := range m.sessions {
		if last := s.LastSeen(); oldest == nil || last.Before(seen) {
			oldestID, oldest, seen = id, s, last
		}
	}
	if oldest != nil {
		delete(m.sessions, oldestID)
	}
	return oldest
}

func (m *SessionManager) lookup(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	s.touch()
	return s
}

// Len is the number of sessions in memory.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// EvictIdle closes every session not seen since now minus the idle TTL and
// returns how many were evicted.
func (m *SessionManager) EvictIdle(now time.Time) int {
	cutoff := now.Add(-m.idleTTL)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	activeSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		sessionsEvictedTotal.Add(float64(len(idle)))
		m.logger.Info("evicted idle sessions", slog.Int("count", len(idle)))
	}
	return len(idle)
}

// Run evicts idle sessions periodically until ctx is done.
func (m *SessionManager) Run(ctx context.Context) {
	interval := m.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.EvictIdle(m.cfg.Now())
		}
	}
}

// Close closes every session.
func (m *SessionManager) Close() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	activeSessions.Set(0)
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
