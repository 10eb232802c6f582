package generator

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marbeck/campman/internal/blueprint"
)

// Session pairs a builder with its identifier. The builder inside a session
// belongs to exactly one caller; only the session bookkeeping is shared.
type Session struct {
	ID        string
	Kind      string
	Builder   *Builder
	StartedAt time.Time
}

// SessionManager opens and tracks generation sessions for one blueprint set.
// The set and graph are built once and shared read-only across sessions; each
// session gets its own builder.
type SessionManager struct {
	kind  string
	set   *blueprint.Set
	graph *Graph
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionManager derives the dependency graph for the set once and
// prepares the manager. Graph construction errors propagate.
func NewSessionManager(kind string, set *blueprint.Set) (*SessionManager, error) {
	graph, err := NewGraph(set)
	if err != nil {
		return nil, fmt.Errorf("generator: kind %s: %w", kind, err)
	}
	return &SessionManager{
		kind:     kind,
		set:      set,
		graph:    graph,
		now:      time.Now,
		sessions: map[string]*Session{},
	}, nil
}

// Open starts a new generation session with a fresh builder.
func (m *SessionManager) Open() *Session {
	session := &Session{
		ID:        uuid.NewString(),
		Kind:      m.kind,
		Builder:   NewBuilderWithGraph(m.set, m.graph),
		StartedAt: m.now(),
	}
	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()
	return session
}

// Get returns the session with the given identifier.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	return session, ok
}

// Close discards a session. Abandoning an unfinished record needs nothing
// more than dropping its builder.
func (m *SessionManager) Close(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len reports the number of open sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
