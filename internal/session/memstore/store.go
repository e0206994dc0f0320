// Package memstore keeps sessions in memory behind an LRU bound. It backs
// tests and setups that do not want session files on disk; evicted sessions
// are simply gone, which is acceptable for a chat demo but not for anything
// whose reservations must outlive traffic spikes.
package memstore

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"bitebot/internal/agent/ports"
	"bitebot/internal/utils/id"
)

const defaultMaxSessions = 1024

type store struct {
	sessions *lru.Cache[string, *ports.Session]
}

// New returns an in-memory session store holding at most maxSessions
// entries. Non-positive means the default bound.
func New(maxSessions int) (ports.SessionStore, error) {
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	cache, err := lru.New[string, *ports.Session](maxSessions)
	if err != nil {
		return nil, err
	}
	return &store{sessions: cache}, nil
}

func (s *store) Create(_ context.Context) (*ports.Session, error) {
	session := &ports.Session{
		ID:           id.NewSessionID(),
		Messages:     []ports.Message{},
		Reservations: []ports.Reservation{},
		ToolContext:  map[string]any{},
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	s.sessions.Add(session.ID, clone(session))
	return session, nil
}

func (s *store) Get(_ context.Context, sessionID string) (*ports.Session, error) {
	if session, ok := s.sessions.Get(sessionID); ok {
		return clone(session), nil
	}
	return nil, fmt.Errorf("session not found: %s", sessionID)
}

func (s *store) Save(_ context.Context, session *ports.Session) error {
	session.UpdatedAt = time.Now()
	s.sessions.Add(session.ID, clone(session))
	return nil
}

// clone isolates callers from the stored session so a handler that mutates
// its copy and then fails persists nothing. File-backed stores get this for
// free from serialization.
func clone(session *ports.Session) *ports.Session {
	cp := *session
	cp.Messages = append([]ports.Message(nil), session.Messages...)
	cp.Reservations = append([]ports.Reservation(nil), session.Reservations...)
	cp.ToolContext = make(map[string]any, len(session.ToolContext))
	for k, v := range session.ToolContext {
		cp.ToolContext[k] = v
	}
	return &cp
}
