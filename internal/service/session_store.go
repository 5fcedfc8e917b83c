package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	app_errors "ai-terminal/internal/errors"
	"ai-terminal/internal/model"
)

// SessionRepository is the slice of the local store the session store needs.
type SessionRepository interface {
	SessionSaver
	LoadSessions(ctx context.Context) ([]model.Session, error)
}

// SessionStore owns every chat session. Newest sessions sit at the head.
// Each mutation schedules a debounced write of the full collection.
type SessionStore struct {
	repo      SessionRepository
	persister *persister
	now       func() time.Time

	mu       sync.RWMutex
	sessions []model.Session
	activeID string
}

func NewSessionStore(repo SessionRepository, debounce time.Duration) *SessionStore {
	return &SessionStore{
		repo:      repo,
		persister: newPersister(repo, debounce),
		now:       func() time.Time { return time.Now().UTC().Round(0) },
		sessions:  []model.Session{},
	}
}

// Load replaces the in-memory collection with what the local store holds.
// No session is active afterwards.
func (s *SessionStore) Load(ctx context.Context) error {
	sessions, err := s.repo.LoadSessions(ctx)
	if err != nil {
		return fmt.Errorf("could not load sessions: %w", err)
	}
	for i := range sessions {
		if sessions[i].Messages == nil {
			sessions[i].Messages = []model.Message{}
		}
	}

	s.mu.Lock()
	s.sessions = sessions
	s.activeID = ""
	s.mu.Unlock()

	slog.InfoContext(ctx, "Loaded sessions", "sessions", len(sessions))
	return nil
}

// Create inserts an empty session at the head and makes it active.
func (s *SessionStore) Create() model.Session {
	now := s.now()
	session := model.Session{
		ID:        ulid.Make().String(),
		Title:     model.DefaultSessionTitle,
		Messages:  []model.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions = append([]model.Session{session}, s.sessions...)
	s.activeID = session.ID
	s.persistLocked()
	s.mu.Unlock()

	slog.Info("Created session", "session_id", session.ID)
	return session.Clone()
}

// AppendUserMessage adds a user turn. The first message freezes the title.
func (s *SessionStore) AppendUserMessage(sessionID, text string) (model.Message, error) {
	msg := model.Message{ID: uuid.NewString(), Role: model.RoleUser, Content: text}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(sessionID)
	if i < 0 {
		return model.Message{}, s.notFound("append user message", sessionID)
	}

	session := &s.sessions[i]
	if len(session.Messages) == 0 {
		session.Title = Title(text)
	}
	session.Messages = append(session.Messages, msg)
	session.UpdatedAt = s.now()
	s.persistLocked()

	return msg, nil
}

// CommitAssistantMessage appends a completed assistant turn.
func (s *SessionStore) CommitAssistantMessage(sessionID string, msg model.Message) error {
	msg.Role = model.RoleAssistant
	msg.Streaming = false
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(sessionID)
	if i < 0 {
		return s.notFound("commit assistant message", sessionID)
	}

	session := &s.sessions[i]
	session.Messages = append(session.Messages, msg)
	session.UpdatedAt = s.now()
	s.persistLocked()

	return nil
}

// Delete removes a session and clears the active pointer if it pointed there.
func (s *SessionStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(sessionID)
	if i < 0 {
		return s.notFound("delete session", sessionID)
	}

	s.sessions = append(s.sessions[:i:i], s.sessions[i+1:]...)
	if s.activeID == sessionID {
		s.activeID = ""
	}
	s.persistLocked()

	slog.Info("Deleted session", "session_id", sessionID)
	return nil
}

// SetActive points the store at an existing session.
func (s *SessionStore) SetActive(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(sessionID) < 0 {
		return s.notFound("set active session", sessionID)
	}
	s.activeID = sessionID
	return nil
}

// ActiveID returns "" when no session is active.
func (s *SessionStore) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

func (s *SessionStore) Active() (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeID == "" {
		return model.Session{}, false
	}
	return s.getLocked(s.activeID)
}

func (s *SessionStore) Get(sessionID string) (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(sessionID)
}

// List returns copies of all sessions, newest first.
func (s *SessionStore) List() []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Flush writes any pending snapshot immediately.
func (s *SessionStore) Flush(ctx context.Context) error {
	return s.persister.flush(ctx)
}

// Close stops the debounce timer and writes what is pending.
func (s *SessionStore) Close(ctx context.Context) error {
	s.persister.stop()
	return s.persister.flush(ctx)
}

func (s *SessionStore) indexLocked(sessionID string) int {
	for i := range s.sessions {
		if s.sessions[i].ID == sessionID {
			return i
		}
	}
	return -1
}

func (s *SessionStore) getLocked(sessionID string) (model.Session, bool) {
	i := s.indexLocked(sessionID)
	if i < 0 {
		return model.Session{}, false
	}
	return s.sessions[i].Clone(), true
}

func (s *SessionStore) snapshotLocked() []model.Session {
	out := make([]model.Session, len(s.sessions))
	for i := range s.sessions {
		out[i] = s.sessions[i].Clone()
	}
	return out
}

func (s *SessionStore) persistLocked() {
	s.persister.schedule(s.snapshotLocked())
}

// notFound reports a caller referencing a session it does not own.
func (s *SessionStore) notFound(op, sessionID string) error {
	slog.Error("Session invariant violated", "op", op, "session_id", sessionID)
	return fmt.Errorf("%s %q: %w", op, sessionID, app_errors.ErrSessionNotFound)
}
