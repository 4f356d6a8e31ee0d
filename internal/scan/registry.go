package scan

import (
	"sync"

	"scanledger/internal/scan/metrics"
	id "scanledger/pkg/domain"
	dErrors "scanledger/pkg/domain-errors"
)

// Registry holds the open sessions of this process. Sessions are ephemeral:
// they live in memory and die with the process or when the operator closes
// them, so there is no persistence behind this map.
type Registry struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*Session
	metrics  *metrics.Metrics
}

// RegistryOption configures the registry.
type RegistryOption func(*Registry)

func RegistryWithMetrics(m *metrics.Metrics) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{sessions: make(map[id.SessionID]*Session)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers an open session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	r.metrics.SessionOpened()
}

// Get returns the session, or a not-found error.
func (r *Registry) Get(sessionID id.SessionID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	return s, nil
}

// Remove closes a session. Removing an unknown id is a no-op.
func (r *Registry) Remove(sessionID id.SessionID) {
	r.mu.Lock()
	_, existed := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()
	if existed {
		r.metrics.SessionClosed()
	}
}
