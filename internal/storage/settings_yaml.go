package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"sleeptimer/internal/core/model"
	"sleeptimer/internal/ui/preferences"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	LastDurationMinutes int    `yaml:"last_duration_minutes"`
	PresetsMinutes      []int  `yaml:"presets_minutes,omitempty"`
	BackgroundAllowed   *bool  `yaml:"background_allowed,omitempty"`
	PlayerBusName       string `yaml:"player_bus_name,omitempty"`
}

// LoadSettings reads user preferences from YAML in configDir.
// If the file does not exist, default settings are returned.
func LoadSettings(configDir string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(filepath.Join(configDir, settingsFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML in configDir.
func SaveSettings(configDir string, settings preferences.Settings) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	backgroundAllowed := settings.BackgroundAllowed
	fileData := yamlSettings{
		LastDurationMinutes: settings.DurationMinutes,
		PresetsMinutes:      settings.Presets,
		BackgroundAllowed:   &backgroundAllowed,
		PlayerBusName:       settings.PlayerBusName,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(filepath.Join(configDir, settingsFileName), serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// DefaultConfigDir returns the per-user directory for appName.
func DefaultConfigDir(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if model.ValidateMinutes(fileData.LastDurationMinutes) == nil {
		settings.DurationMinutes = fileData.LastDurationMinutes
	}

	var presets []int
	for _, minutes := range fileData.PresetsMinutes {
		if model.ValidateMinutes(minutes) == nil {
			presets = append(presets, minutes)
		}
	}
	if len(presets) > 0 {
		settings.Presets = presets
	}

	if fileData.BackgroundAllowed != nil {
		settings.BackgroundAllowed = *fileData.BackgroundAllowed
	}
	settings.PlayerBusName = fileData.PlayerBusName
}

// Store keeps the current settings in memory and writes every change through
// to disk.
type Store struct {
	mu        sync.RWMutex
	configDir string
	settings  preferences.Settings
}

// OpenStore loads settings from configDir. A parse error still yields a usable
// store holding defaults.
func OpenStore(configDir string) (*Store, error) {
	settings, err := LoadSettings(configDir)
	return &Store{configDir: configDir, settings: settings}, err
}

// Settings returns a copy of the current settings.
func (store *Store) Settings() preferences.Settings {
	store.mu.RLock()
	defer store.mu.RUnlock()
	settings := store.settings
	settings.Presets = append([]int(nil), store.settings.Presets...)
	return settings
}

// Update replaces the settings and persists them.
func (store *Store) Update(settings preferences.Settings) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.settings = settings
	return SaveSettings(store.configDir, settings)
}

// DurationMinutes returns the last selected duration.
func (store *Store) DurationMinutes() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.settings.DurationMinutes
}

// SetDurationMinutes records minutes as the last selected duration.
func (store *Store) SetDurationMinutes(minutes int) error {
	if err := model.ValidateMinutes(minutes); err != nil {
		return err
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	store.settings.DurationMinutes = minutes
	return SaveSettings(store.configDir, store.settings)
}

// BackgroundAllowed reports the user's consent to background ticking.
func (store *Store) BackgroundAllowed() bool {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.settings.BackgroundAllowed
}
