package session

import "sync"

// Manager hands out sessions keyed by ID. Each session is created once
// and reused until removed; sessions do not share mutable state.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  EngineFactory
}

// NewManager creates a Manager that builds engines with the given factory.
func NewManager(factory EngineFactory) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		factory:  factory,
	}
}

// GetOrCreate returns the session for the given ID, creating it with a
// freshly seeded transcript when no session exists yet.
func (m *Manager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[id]; ok {
		return sess
	}
	sess := &Session{
		ID:         id,
		factory:    m.factory,
		transcript: NewTranscript(),
	}
	m.sessions[id] = sess
	return sess
}

// Get returns the session for the given ID if it exists.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Remove tears down the session for the given ID.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
