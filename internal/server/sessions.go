package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RyanBlaney/sonido-modal/ingest"
	"github.com/RyanBlaney/sonido-modal/modal"
	"github.com/RyanBlaney/sonido-modal/timeseries"
)

// ErrSessionNotFound is returned for unknown or deleted sessions
var ErrSessionNotFound = errors.New("session not found")

// Session holds one uploaded record and the latest analysis run on it.
// Sessions never share series or results.
type Session struct {
	ID        uuid.UUID
	FileName  string
	Format    ingest.Kind
	Series    *timeseries.TimeSeries
	CreatedAt time.Time

	mu   sync.Mutex
	last *modal.Analysis
}

// NewSession wraps an ingested series in a new session
func NewSession(fileName string, format ingest.Kind, series *timeseries.TimeSeries) *Session {
	return &Session{
		ID:        uuid.New(),
		FileName:  fileName,
		Format:    format,
		Series:    series,
		CreatedAt: time.Now().UTC(),
	}
}

// SetLastAnalysis records the most recent analysis of the session
func (s *Session) SetLastAnalysis(a *modal.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = a
}

// LastAnalysis returns the most recent analysis, or nil
func (s *Session) LastAnalysis() *modal.Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// SessionStore keeps sessions between requests
type SessionStore interface {
	Create(session *Session) error
	Get(id uuid.UUID) (*Session, error)
	Delete(id uuid.UUID) error
}

// MemoryStore is an in-process SessionStore
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[uuid.UUID]*Session)}
}

// Create implements SessionStore
func (m *MemoryStore) Create(session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return nil
}

// Get implements SessionStore
func (m *MemoryStore) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete implements SessionStore
func (m *MemoryStore) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
