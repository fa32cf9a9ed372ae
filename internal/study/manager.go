package study

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ba1414/studydeck/internal/domain/srs"
	"github.com/ba1414/studydeck/internal/store"
)

// ErrSessionNotFound is returned when looking up a session ID that does
// not correspond to a live session.
var ErrSessionNotFound = errors.New("study session not found")

// Manager tracks live study sessions by ID so a request-scoped caller
// (the HTTP layer) can drive a session across multiple requests. Each
// session stays single-cursor; the manager only guards the lookup map.
//
// Sessions live in process memory only. A restart discards them, which
// matches the session contract: applied ratings are already persisted,
// the walk itself is ephemeral.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	deckStore *store.DeckStore
	scheduler srs.Service
	logger    *slog.Logger
}

// NewManager creates a session manager over the given store and scheduler.
func NewManager(deckStore *store.DeckStore, scheduler srs.Service, logger *slog.Logger) *Manager {
	if deckStore == nil {
		panic("deckStore cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		sessions:  make(map[uuid.UUID]*Session),
		deckStore: deckStore,
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "session_manager")),
	}
}

// StartSession begins a new session over the given deck and registers
// it. Sessions that have gone idle are pruned opportunistically.
func (m *Manager) StartSession(deckID uuid.UUID) (*Session, error) {
	session, err := Start(m.deckStore, m.scheduler, deckID, m.logger)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, old := range m.sessions {
		if old.State() == StateIdle {
			delete(m.sessions, id)
		}
	}
	m.sessions[session.ID()] = session

	return session, nil
}

// GetSession returns the live session with the given ID.
func (m *Manager) GetSession(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// EndSession exits the session (a no-op if it already ended) and
// removes it from the manager.
func (m *Manager) EndSession(id uuid.UUID) error {
	m.mu.Lock()
	session, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	session.Exit()
	return nil
}

// ActiveCount returns the number of registered sessions, counting
// exhausted ones that have not been pruned yet.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
