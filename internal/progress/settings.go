package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/at-ishikawa/literacy/internal/kvstore"
)

var settingsValidator = validator.New()

// SettingsStore keeps UserSettings under a single key.
type SettingsStore struct {
	kv     kvstore.Store
	logger *slog.Logger
}

func NewSettingsStore(kv kvstore.Store) *SettingsStore {
	return &SettingsStore{kv: kv, logger: slog.Default()}
}

// Get returns the stored settings, or DefaultSettings when nothing is stored.
// On a read or decode failure it returns DefaultSettings with a *PersistenceError.
func (s *SettingsStore) Get(ctx context.Context) (UserSettings, error) {
	value, found, err := s.kv.Get(ctx, SettingsKey)
	if err != nil {
		s.logger.Warn("failed to read settings, using defaults", "error", err)
		return DefaultSettings(), &PersistenceError{Op: "read", Key: SettingsKey, Err: err}
	}
	if !found {
		return DefaultSettings(), nil
	}

	settings := DefaultSettings()
	if err := json.Unmarshal([]byte(value), &settings); err != nil {
		s.logger.Warn("failed to decode settings, using defaults", "error", err)
		return DefaultSettings(), &PersistenceError{Op: "decode", Key: SettingsKey, Err: err}
	}
	if err := settingsValidator.Struct(settings); err != nil {
		s.logger.Warn("stored settings are invalid, using defaults", "error", err)
		return DefaultSettings(), &PersistenceError{Op: "decode", Key: SettingsKey, Err: err}
	}
	return settings, nil
}

// Save validates settings before writing them.
func (s *SettingsStore) Save(ctx context.Context, settings UserSettings) error {
	if err := ValidateSettings(settings); err != nil {
		return err
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return &PersistenceError{Op: "encode", Key: SettingsKey, Err: err}
	}
	if err := s.kv.Set(ctx, SettingsKey, string(data)); err != nil {
		s.logger.Error("failed to persist settings", "error", err)
		return &PersistenceError{Op: "write", Key: SettingsKey, Err: err}
	}
	return nil
}

func ValidateSettings(settings UserSettings) error {
	if err := settingsValidator.Struct(settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}
