package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/sudevbasti/portfolio-assistant/domain/repositories"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	defaultFilePath = "theme_preference.json"
)

// FilePreferenceStore persists the theme flag as a small JSON file: read at
// startup, written on toggle. This mirrors the one piece of state the site
// keeps across visits.
type FilePreferenceStore struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// Ensure FilePreferenceStore implements the repository interface
var _ repositories.PreferenceRepository = (*FilePreferenceStore)(nil)

type preferenceFile struct {
	Theme string `json:"theme"`
}

// NewFilePreferenceStore creates a store backed by the given path. An empty
// path uses the default file in the working directory.
func NewFilePreferenceStore(path string, logger *zap.Logger) *FilePreferenceStore {
	if path == "" {
		path = defaultFilePath
		logger.Info("Using default preference file path", zap.String("path", path))
	}

	return &FilePreferenceStore{
		path:   path,
		logger: logger,
	}
}

// Theme returns the stored theme, defaulting to light when nothing has been
// saved yet.
func (s *FilePreferenceStore) Theme(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ThemeLight, nil
		}
		return "", fmt.Errorf("error opening preference file: %w", err)
	}
	defer file.Close()

	var pref preferenceFile
	if err := json.NewDecoder(file).Decode(&pref); err != nil {
		return "", fmt.Errorf("error decoding preference file: %w", err)
	}

	if pref.Theme != ThemeLight && pref.Theme != ThemeDark {
		s.logger.Warn("Ignoring unknown stored theme", zap.String("theme", pref.Theme))
		return ThemeLight, nil
	}

	return pref.Theme, nil
}

// SetTheme validates and writes the theme flag.
func (s *FilePreferenceStore) SetTheme(ctx context.Context, theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("theme must be %q or %q, got %q", ThemeLight, ThemeDark, theme)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("error creating preference file: %w", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(preferenceFile{Theme: theme}); err != nil {
		return fmt.Errorf("error encoding preference file: %w", err)
	}

	s.logger.Info("Theme preference saved", zap.String("theme", theme))
	return nil
}

// NewFilePreferenceStoreFromEnv creates a store using the THEME_PREFERENCE_FILE
// environment variable for the path.
func NewFilePreferenceStoreFromEnv(logger *zap.Logger) *FilePreferenceStore {
	return NewFilePreferenceStore(os.Getenv("THEME_PREFERENCE_FILE"), logger)
}
