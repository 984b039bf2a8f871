package service

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"loan-assistant/domain"
	"loan-assistant/logger"
)

const minSweepInterval = time.Minute

type sessionEntry struct {
	mu       sync.Mutex
	ctx      *domain.SessionContext
	lastSeen time.Time
}

// SessionManager owns the live sessions. Turns for one session are
// processed one at a time; different sessions run in parallel.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	machine  *GateMachine
	idleTTL  time.Duration
	now      func() time.Time
	log      *logger.Logger

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewSessionManager starts a sweeper that drops sessions idle for longer
// than idleTTL. A zero idleTTL keeps sessions until they are ended.
func NewSessionManager(machine *GateMachine, idleTTL time.Duration, log *logger.Logger) *SessionManager {
	m := &SessionManager{
		sessions:    make(map[string]*sessionEntry),
		machine:     machine,
		idleTTL:     idleTTL,
		now:         time.Now,
		log:         log.With("service", "SessionManager"),
		stopCleanup: make(chan struct{}),
	}
	if idleTTL > 0 {
		go m.cleanupLoop(max(idleTTL/2, minSweepInterval))
	}
	return m
}

func (m *SessionManager) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.stopCleanup:
			return
		}
	}
}

// Sweep drops idle sessions and returns how many were removed. Sessions
// with a turn in progress are never idle, so Sweep does not wait on them.
func (m *SessionManager) Sweep() int {
	if m.idleTTL <= 0 {
		return 0
	}

	m.mu.Lock()
	entries := maps.Clone(m.sessions)
	m.mu.Unlock()

	now := m.now()
	var idle []string
	for id, entry := range entries {
		if !entry.mu.TryLock() {
			continue
		}
		if now.Sub(entry.lastSeen) > m.idleTTL {
			idle = append(idle, id)
		}
		entry.mu.Unlock()
	}

	m.mu.Lock()
	removed := 0
	for _, id := range idle {
		if m.sessions[id] == entries[id] {
			delete(m.sessions, id)
			removed++
		}
	}
	m.mu.Unlock()

	if removed > 0 {
		m.log.Info("idle sessions dropped", "count", removed)
	}
	return removed
}

func (m *SessionManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCleanup) })
}

// Create opens a session at the first gate.
func (m *SessionManager) Create() domain.SessionContext {
	now := m.now()
	s := domain.NewSessionContext(uuid.NewString(), now)

	m.mu.Lock()
	m.sessions[s.ID] = &sessionEntry{ctx: s, lastSeen: now}
	m.mu.Unlock()

	m.log.Info("session created", "session", s.ID)
	return *s
}

// Get returns a snapshot of the session.
func (m *SessionManager) Get(id string) (domain.SessionContext, error) {
	entry, err := m.entry(id)
	if err != nil {
		return domain.SessionContext{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return *entry.ctx, nil
}

// Turn applies one turn to the session, waiting for any turn already in
// progress on it.
func (m *SessionManager) Turn(ctx context.Context, id string, turn domain.Turn) (domain.TurnOutput, error) {
	entry, err := m.entry(id)
	if err != nil {
		return domain.TurnOutput{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.lastSeen = m.now()
	return m.machine.Process(ctx, entry.ctx, turn)
}

// End drops the session and everything it collected.
func (m *SessionManager) End(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	m.log.Info("session ended", "session", id)
	return nil
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) entry(id string) (*sessionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return entry, nil
}
