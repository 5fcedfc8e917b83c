package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ai-terminal/internal/model"
)

// Fixed keys inside each named store. Each store holds a single record.
const (
	keySessions = "sessions"
	keySettings = "settings"
	keyTheme    = "theme"
)

// LocalStore is the typed view of the repository used by the client services.
type LocalStore struct {
	repo Repository
}

func NewLocalStore(repo Repository) *LocalStore {
	return &LocalStore{repo: repo}
}

// LoadSessions returns the persisted session collection, or an empty one if
// nothing has been saved yet.
func (s *LocalStore) LoadSessions(ctx context.Context) ([]model.Session, error) {
	raw, err := s.repo.Get(ctx, StoreSessions, keySessions)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []model.Session{}, nil
		}
		return nil, err
	}
	var sessions []model.Session
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return nil, fmt.Errorf("could not decode sessions: %w", err)
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	return sessions, nil
}

// SaveSessions replaces the whole persisted collection.
func (s *LocalStore) SaveSessions(ctx context.Context, sessions []model.Session) error {
	if sessions == nil {
		sessions = []model.Session{}
	}
	raw, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("could not encode sessions: %w", err)
	}
	return s.repo.Put(ctx, StoreSessions, keySessions, raw)
}

// LoadSettings returns ErrNotFound when no settings were saved yet.
func (s *LocalStore) LoadSettings(ctx context.Context) (*model.Settings, error) {
	raw, err := s.repo.Get(ctx, StoreSettings, keySettings)
	if err != nil {
		return nil, err
	}
	var settings model.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("could not decode settings: %w", err)
	}
	return &settings, nil
}

func (s *LocalStore) SaveSettings(ctx context.Context, settings model.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("could not encode settings: %w", err)
	}
	return s.repo.Put(ctx, StoreSettings, keySettings, raw)
}

// LoadTheme returns ErrNotFound when no theme was saved yet.
func (s *LocalStore) LoadTheme(ctx context.Context) (model.Theme, error) {
	raw, err := s.repo.Get(ctx, StoreTheme, keyTheme)
	if err != nil {
		return "", err
	}
	return model.Theme(raw), nil
}

func (s *LocalStore) SaveTheme(ctx context.Context, theme model.Theme) error {
	return s.repo.Put(ctx, StoreTheme, keyTheme, []byte(theme))
}

func (s *LocalStore) ClearTheme(ctx context.Context) error {
	return s.repo.Delete(ctx, StoreTheme, keyTheme)
}

func (s *LocalStore) Close() error {
	return s.repo.Close()
}
