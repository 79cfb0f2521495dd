package spectator

import (
	"sync"
	"time"

	"github.com/cbodonnell/replaycipher/pkg/cipher"
	"github.com/google/uuid"
)

// Manager holds the live sessions keyed by stream ID.
type Manager struct {
	lock     sync.RWMutex
	selector *cipher.Selector
	sessions map[uuid.UUID]*Session
}

func NewManager(selector *cipher.Selector) *Manager {
	return &Manager{
		selector: selector,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Get returns the session of a stream, if one exists.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// GetOrCreate returns the session of a stream, creating it on first use.
func (m *Manager) GetOrCreate(id uuid.UUID) *Session {
	if s, ok := m.Get(id); ok {
		return s
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := NewSession(id, m.selector)
	m.sessions[id] = s
	return s
}

func (m *Manager) Remove(id uuid.UUID) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.sessions, id)
}

// Sessions returns every live session.
func (m *Manager) Sessions() []*Session {
	m.lock.RLock()
	defer m.lock.RUnlock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// List returns the status of every session.
func (m *Manager) List() []Status {
	sessions := m.Sessions()
	statuses := make([]Status, 0, len(sessions))
	for _, s := range sessions {
		statuses = append(statuses, s.Status())
	}
	return statuses
}

// Expire removes sessions without frames since before cutoff and returns how
// many were removed.
func (m *Manager) Expire(cutoff time.Time) int {
	m.lock.Lock()
	defer m.lock.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.UpdatedAt().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
