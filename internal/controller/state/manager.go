package state

import (
	"sort"
	"sync"

	"github.com/Freeeeeet/practice_scheduler/internal/calendar"
)

// EngineFactory builds the engine of a new session.
type EngineFactory func() (*calendar.Engine, error)

// Manager keeps one calendar session per chat.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[int64]*Session
	newEngine EngineFactory
}

func NewManager(newEngine EngineFactory) *Manager {
	return &Manager{
		sessions:  make(map[int64]*Session),
		newEngine: newEngine,
	}
}

// Get returns the session of chatID.
func (m *Manager) Get(chatID int64) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[chatID]
	return s, ok
}

// Open returns the session of chatID, creating it if needed. created
// reports whether a new session was made.
func (m *Manager) Open(chatID int64) (s *Session, created bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[chatID]; ok {
		return s, false, nil
	}
	engine, err := m.newEngine()
	if err != nil {
		return nil, false, err
	}
	s = &Session{ChatID: chatID, Engine: engine}
	m.sessions[chatID] = s
	return s, true, nil
}

// Close ends the session of chatID.
func (m *Manager) Close(chatID int64) {
	m.mu.Lock()
	s, ok := m.sessions[chatID]
	delete(m.sessions, chatID)
	m.mu.Unlock()

	if ok {
		s.close()
	}
}

// CloseAll ends every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[int64]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

// Engines returns the engines of all live sessions ordered by chat.
func (m *Manager) Engines() []*calendar.Engine {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int64, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*calendar.Engine, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.sessions[id].Engine)
	}
	return out
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
