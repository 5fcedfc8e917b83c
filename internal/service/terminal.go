package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	app_errors "ai-terminal/internal/errors"
	"ai-terminal/internal/llm"
	"ai-terminal/internal/model"
)

// Terminal is the surface a front end drives. Front ends never touch the
// session store or reconciler directly.
type Terminal struct {
	sessions   *SessionStore
	settings   *SettingsService
	reconciler *Reconciler

	// submitMu orders admission, session creation, the user append and dispatch.
	submitMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTerminal(sessions *SessionStore, settings *SettingsService, streamer llm.ChatStreamer) *Terminal {
	ctx, cancel := context.WithCancel(context.Background())
	return &Terminal{
		sessions:   sessions,
		settings:   settings,
		reconciler: NewReconciler(streamer, sessions),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Open loads persisted sessions and settings.
func (t *Terminal) Open(ctx context.Context) error {
	if err := t.sessions.Load(ctx); err != nil {
		return err
	}
	if _, err := t.settings.InitAndGet(ctx); err != nil {
		return err
	}
	return nil
}

// Submit sends text as the next user turn of the active session, creating a
// session first when none is active. It returns once the request has been
// dispatched; the response arrives through the reconciler. A submission while
// another request is in flight fails with ErrBusy and changes nothing.
func (t *Terminal) Submit(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: message is empty", app_errors.ErrValidation)
	}

	t.submitMu.Lock()
	defer t.submitMu.Unlock()

	if err := t.reconciler.Begin(); err != nil {
		return err
	}

	sessionID := t.sessions.ActiveID()
	if sessionID == "" {
		sessionID = t.sessions.Create().ID
	}
	if _, err := t.sessions.AppendUserMessage(sessionID, text); err != nil {
		t.reconciler.Release()
		return err
	}

	session, ok := t.sessions.Get(sessionID)
	if !ok {
		t.reconciler.Release()
		return fmt.Errorf("submit %q: %w", sessionID, app_errors.ErrSessionNotFound)
	}
	req := NewChatRequest(session, t.settings.Current())

	slog.DebugContext(ctx, "Dispatching request", "session_id", sessionID, "request", req)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.reconciler.Run(t.ctx, sessionID, req)
	}()
	return nil
}

// NewChatRequest builds the relay request for the session's committed history.
func NewChatRequest(session model.Session, settings model.Settings) *model.ChatRequest {
	req := &model.ChatRequest{
		Messages: make([]model.ChatMessage, 0, len(session.Messages)),
		Model:    settings.Model,
		Provider: settings.Provider,
		APIKey:   settings.ActiveKey(),
	}
	for _, m := range session.Messages {
		req.Messages = append(req.Messages, model.ChatMessage{ID: m.ID, Role: m.Role, Content: m.Content})
	}
	return req
}

// NewSession creates and activates an empty session and clears the error banner.
func (t *Terminal) NewSession() model.Session {
	session := t.sessions.Create()
	t.reconciler.DismissError()
	return session
}

func (t *Terminal) DeleteSession(id string) error {
	return t.sessions.Delete(id)
}

func (t *Terminal) SetActiveSession(id string) error {
	return t.sessions.SetActive(id)
}

// UpdateSettings saves settings and clears the error banner.
func (t *Terminal) UpdateSettings(ctx context.Context, settings model.Settings) error {
	if err := t.settings.Save(ctx, settings); err != nil {
		return err
	}
	t.reconciler.DismissError()
	return nil
}

func (t *Terminal) Settings() model.Settings {
	return t.settings.Current()
}

// SettingsService exposes provider, key and theme helpers to front ends.
func (t *Terminal) SettingsService() *SettingsService {
	return t.settings
}

func (t *Terminal) ActiveSession() (model.Session, bool) {
	return t.sessions.Active()
}

func (t *Terminal) Sessions() []model.Session {
	return t.sessions.List()
}

func (t *Terminal) State() State {
	return t.reconciler.State()
}

// Streaming returns the in-flight assistant message for the active session.
func (t *Terminal) Streaming() (model.Message, bool) {
	sessionID, msg, ok := t.reconciler.Streaming()
	if !ok || sessionID != t.sessions.ActiveID() {
		return model.Message{}, false
	}
	return msg, true
}

// Error is the current banner, nil when there is none.
func (t *Terminal) Error() *app_errors.ChatError {
	return t.reconciler.Err()
}

func (t *Terminal) DismissError() {
	t.reconciler.DismissError()
}

// Subscribe registers an observer of reconciler events.
func (t *Terminal) Subscribe(o Observer) {
	t.reconciler.Subscribe(o)
}

// Wait blocks until no request is in flight.
func (t *Terminal) Wait(ctx context.Context) error {
	return t.reconciler.Wait(ctx)
}

// Close abandons any in-flight request without committing it and writes
// pending sessions.
func (t *Terminal) Close(ctx context.Context) error {
	t.cancel()
	t.wg.Wait()
	return t.sessions.Close(ctx)
}
