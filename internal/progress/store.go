package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/at-ishikawa/literacy/internal/clock"
	"github.com/at-ishikawa/literacy/internal/kvstore"
)

//go:generate mockgen -source=store.go -destination=../mocks/progress/mock_store.go -package=mock_progress

const (
	recordKeyPrefix = "progress_"
	SettingsKey     = "userSettings"
)

// Repository records attempts and reads mastery records.
type Repository interface {
	RecordAttempt(ctx context.Context, userID, wordID string, correct bool) (MasteryRecord, error)
	Get(ctx context.Context, userID, wordID string) (*MasteryRecord, error)
	List(ctx context.Context, userID string) ([]MasteryRecord, error)
}

// SettingsRepository reads and writes the installation's UserSettings.
type SettingsRepository interface {
	Get(ctx context.Context) (UserSettings, error)
	Save(ctx context.Context, settings UserSettings) error
}

// RecordKey returns the key-value key of the record for (userID, wordID).
func RecordKey(userID, wordID string) string {
	return recordPrefix(userID) + wordID
}

func recordPrefix(userID string) string {
	return recordKeyPrefix + userID + "_"
}

// Store persists mastery records in a key-value store.
//
// Failures never leave the caller without a value: reads fall back to an absent record
// and a failed write still returns the computed record. Both cases also return a
// *PersistenceError.
type Store struct {
	kv     kvstore.Store
	clock  clock.Clock
	logger *slog.Logger

	// serializes read-modify-write in RecordAttempt
	mu sync.Mutex
}

func NewStore(kv kvstore.Store, clk clock.Clock) *Store {
	return &Store{
		kv:     kv,
		clock:  clk,
		logger: slog.Default(),
	}
}

// RecordAttempt adds one attempt to the record of (userID, wordID) and persists it.
func (s *Store) RecordAttempt(ctx context.Context, userID, wordID string, correct bool) (MasteryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := RecordKey(userID, wordID)
	record := MasteryRecord{UserID: userID, WordID: wordID}
	existing, err := s.read(ctx, userID, wordID)
	if err != nil {
		s.logger.Warn("failed to read mastery record, starting from zero",
			"key", key,
			"error", err,
		)
	} else if existing != nil {
		record = *existing
	}

	record.TotalAttempts++
	if correct {
		record.CorrectCount++
	}
	record.LastStudied = s.clock.Now()
	record.Recompute()

	data, err := json.Marshal(record)
	if err != nil {
		return record, &PersistenceError{Op: "encode", Key: key, Err: err}
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		perr := &PersistenceError{Op: "write", Key: key, Err: err}
		s.logger.Error("failed to persist mastery record",
			"key", key,
			"error", err,
		)
		return record, perr
	}
	return record, nil
}

// Get returns nil without an error when the record does not exist.
func (s *Store) Get(ctx context.Context, userID, wordID string) (*MasteryRecord, error) {
	key := RecordKey(userID, wordID)
	record, err := s.read(ctx, userID, wordID)
	if err != nil {
		s.logger.Warn("failed to read mastery record", "key", key, "error", err)
		return nil, err
	}
	return record, nil
}

// List returns every record of userID ordered by key.
// Corrupt values are skipped and reported in the returned error together with the valid records.
func (s *Store) List(ctx context.Context, userID string) ([]MasteryRecord, error) {
	prefix := recordPrefix(userID)
	keys, err := s.kv.Keys(ctx, prefix)
	if err != nil {
		s.logger.Warn("failed to list mastery records", "prefix", prefix, "error", err)
		return nil, &PersistenceError{Op: "list", Key: prefix, Err: err}
	}
	if len(keys) == 0 {
		return []MasteryRecord{}, nil
	}

	values, err := s.kv.MultiGet(ctx, keys)
	if err != nil {
		s.logger.Warn("failed to read mastery records", "prefix", prefix, "error", err)
		return nil, &PersistenceError{Op: "read", Key: prefix, Err: err}
	}

	records := make([]MasteryRecord, 0, len(values))
	var errs []error
	for _, key := range keys {
		value, ok := values[key]
		if !ok {
			continue
		}
		record, err := decodeRecord(key, value)
		if err != nil {
			s.logger.Warn("skipping corrupt mastery record", "key", key, "error", err)
			errs = append(errs, err)
			continue
		}
		// "progress_a_" is also a prefix of user "a_b"'s keys.
		if record.UserID != userID {
			continue
		}
		records = append(records, *record)
	}
	return records, errors.Join(errs...)
}

// read treats a record stored under the key of another (userID, wordID) pair as absent.
func (s *Store) read(ctx context.Context, userID, wordID string) (*MasteryRecord, error) {
	key := RecordKey(userID, wordID)
	value, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Key: key, Err: err}
	}
	if !found {
		return nil, nil
	}
	record, err := decodeRecord(key, value)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID || record.WordID != wordID {
		s.logger.Warn("key collision, ignoring stored mastery record",
			"key", key,
			"storedUserId", record.UserID,
			"storedWordId", record.WordID,
		)
		return nil, nil
	}
	return record, nil
}

func decodeRecord(key, value string) (*MasteryRecord, error) {
	var record MasteryRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, &PersistenceError{Op: "decode", Key: key, Err: err}
	}
	if record.TotalAttempts < 0 || record.CorrectCount < 0 || record.CorrectCount > record.TotalAttempts {
		return nil, &PersistenceError{
			Op:  "decode",
			Key: key,
			Err: fmt.Errorf("invalid counts %d/%d", record.CorrectCount, record.TotalAttempts),
		}
	}
	record.Recompute()
	return &record, nil
}
