package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	app_errors "ai-terminal/internal/errors"
	"ai-terminal/internal/model"
	"ai-terminal/internal/repository"
	"ai-terminal/internal/validate"
)

// SettingsRepository is the slice of the local store the settings service needs.
type SettingsRepository interface {
	LoadSettings(ctx context.Context) (*model.Settings, error)
	SaveSettings(ctx context.Context, settings model.Settings) error
	LoadTheme(ctx context.Context) (model.Theme, error)
	SaveTheme(ctx context.Context, theme model.Theme) error
	ClearTheme(ctx context.Context) error
}

// SettingsService keeps the in-memory mirror of the user's settings and theme
// in step with the local store.
type SettingsService struct {
	repo   SettingsRepository
	models *ModelService

	mu      sync.RWMutex
	current model.Settings
}

func NewSettingsService(repo SettingsRepository, models *ModelService) *SettingsService {
	return &SettingsService{repo: repo, models: models, current: model.DefaultSettings()}
}

// InitAndGet loads saved settings, or writes the defaults on first launch.
func (s *SettingsService) InitAndGet(ctx context.Context) (model.Settings, error) {
	saved, err := s.repo.LoadSettings(ctx)
	if err == nil {
		settings := normalize(*saved)
		s.mu.Lock()
		s.current = settings
		s.mu.Unlock()
		slog.InfoContext(ctx, "Found existing settings", "settings", settings)
		return cloneSettings(settings), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	slog.InfoContext(ctx, "No settings found, using defaults")
	defaults := model.DefaultSettings()
	if err := s.repo.SaveSettings(ctx, defaults); err != nil {
		return model.Settings{}, fmt.Errorf("failed to save initial settings: %w", err)
	}
	s.mu.Lock()
	s.current = defaults
	s.mu.Unlock()
	return cloneSettings(defaults), nil
}

// Current returns a copy of the in-memory settings.
func (s *SettingsService) Current() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSettings(s.current)
}

// Save validates and persists settings, replacing the previous record.
func (s *SettingsService) Save(ctx context.Context, settings model.Settings) error {
	settings = normalize(settings)
	if err := validate.Struct(settings); err != nil {
		return err
	}
	if err := s.models.Check(settings.Provider, settings.Model); err != nil {
		return err
	}

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	s.mu.Lock()
	s.current = settings
	s.mu.Unlock()

	slog.InfoContext(ctx, "Saved settings", "settings", settings)
	return nil
}

// SelectProvider switches provider and selects its default model.
func (s *SettingsService) SelectProvider(ctx context.Context, p model.Provider) error {
	settings := s.Current()
	settings.Provider = p
	settings.Model = s.models.Default(p)
	return s.Save(ctx, settings)
}

// SetAPIKey stores the key for one provider. An empty key clears it.
func (s *SettingsService) SetAPIKey(ctx context.Context, p model.Provider, key string) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", app_errors.ErrUnknownProvider, p)
	}
	settings := s.Current()
	settings.APIKeys[p] = key
	return s.Save(ctx, settings)
}

// Theme returns the saved theme, or the default when none was saved.
func (s *SettingsService) Theme(ctx context.Context) (model.Theme, error) {
	theme, err := s.repo.LoadTheme(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return model.DefaultTheme, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load theme: %w", err)
	}
	if !slices.Contains(model.Themes, theme) {
		slog.WarnContext(ctx, "Ignoring unknown saved theme", "theme", theme)
		return model.DefaultTheme, nil
	}
	return theme, nil
}

func (s *SettingsService) SetTheme(ctx context.Context, theme model.Theme) error {
	if err := validate.Var(theme, "theme"); err != nil {
		return fmt.Errorf("unknown theme %q: %w", theme, err)
	}
	return s.repo.SaveTheme(ctx, theme)
}

// ResetTheme forgets the saved theme so the default applies again.
func (s *SettingsService) ResetTheme(ctx context.Context) error {
	err := s.repo.ClearTheme(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

// normalize makes sure every provider has an entry in the key map.
func normalize(settings model.Settings) model.Settings {
	settings = cloneSettings(settings)
	for _, p := range model.Providers {
		if _, ok := settings.APIKeys[p]; !ok {
			settings.APIKeys[p] = ""
		}
	}
	return settings
}

func cloneSettings(settings model.Settings) model.Settings {
	keys := maps.Clone(settings.APIKeys)
	if keys == nil {
		keys = make(map[model.Provider]string, len(model.Providers))
	}
	settings.APIKeys = keys
	return settings
}
