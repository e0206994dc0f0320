// Package filestore persists sessions as one JSON file per session. It is
// the default store; restarts keep conversations and reservations intact.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bitebot/internal/agent/ports"
	"bitebot/internal/utils"
	"bitebot/internal/utils/id"
)

type store struct {
	baseDir string
	logger  *utils.Logger
}

// New returns a file-backed session store rooted at baseDir. A leading ~/ is
// expanded against the user's home directory.
func New(baseDir string) ports.SessionStore {
	if strings.HasPrefix(baseDir, "~/") {
		home, _ := os.UserHomeDir()
		baseDir = filepath.Join(home, baseDir[2:])
	}
	_ = os.MkdirAll(baseDir, 0755) // directory may already exist
	return &store{
		baseDir: baseDir,
		logger:  utils.NewComponentLogger("SessionFileStore"),
	}
}

func (s *store) Create(ctx context.Context) (*ports.Session, error) {
	session := &ports.Session{
		ID:           id.NewSessionID(),
		Messages:     []ports.Message{},
		Reservations: []ports.Reservation{},
		ToolContext:  map[string]any{},
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return nil, err
	}

	// Exclusive create so an id collision cannot clobber another session.
	path := s.path(session.ID)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create session file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write session: %w", err)
	}
	s.logger.Info("Created session %s", session.ID)
	return session, nil
}

func (s *store) Get(_ context.Context, sessionID string) (*ports.Session, error) {
	if !validSessionID(sessionID) {
		return nil, fmt.Errorf("invalid session id")
	}
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	var session ports.Session
	if err := json.Unmarshal(data, &session); err != nil {
		s.logger.Error("Failed to decode session file %s: %v", sessionID, err)
		return nil, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}
	normalize(&session)
	return &session, nil
}

func (s *store) Save(_ context.Context, session *ports.Session) error {
	if !validSessionID(session.ID) {
		return fmt.Errorf("invalid session id")
	}
	session.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(session.ID), data, 0644)
}

func (s *store) path(sessionID string) string {
	return filepath.Join(s.baseDir, sessionID+".json")
}

// validSessionID rejects ids that could escape baseDir. Generated ids are
// alphanumeric with dashes; anything else never came from us.
func validSessionID(sessionID string) bool {
	if sessionID == "" {
		return false
	}
	for _, r := range sessionID {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
		default:
			return false
		}
	}
	return true
}

// normalize heals nil collections in sessions written by older versions so
// callers can append without checking.
func normalize(session *ports.Session) {
	if session.Messages == nil {
		session.Messages = []ports.Message{}
	}
	if session.Reservations == nil {
		session.Reservations = []ports.Reservation{}
	}
	if session.ToolContext == nil {
		session.ToolContext = map[string]any{}
	}
}
