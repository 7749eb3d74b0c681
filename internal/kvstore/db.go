package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// DBStore stores entries in the kv_entries table. The queries are portable
// between MySQL and SQLite.
type DBStore struct {
	db *sqlx.DB
}

type entryRow struct {
	Key   string `db:"entry_key"`
	Value string `db:"entry_value"`
}

func NewDBStore(db *sqlx.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT entry_value FROM kv_entries WHERE entry_key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("db.GetContext(kv_entries) > %w", err)
	}
	return value, true, nil
}

func (s *DBStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx,
		"REPLACE INTO kv_entries (entry_key, entry_value) VALUES (?, ?)",
		key, value); err != nil {
		return fmt.Errorf("db.ExecContext(replace kv_entries) > %w", err)
	}
	return nil
}

func (s *DBStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	if err := s.db.SelectContext(ctx, &keys,
		"SELECT entry_key FROM kv_entries WHERE entry_key LIKE ? ESCAPE '!' ORDER BY entry_key",
		escapeLike(prefix)+"%"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(kv_entries keys) > %w", err)
	}
	return keys, nil
}

func (s *DBStore) MultiGet(ctx context.Context, keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In("SELECT entry_key, entry_value FROM kv_entries WHERE entry_key IN (?)", keys)
	if err != nil {
		return nil, fmt.Errorf("sqlx.In > %w", err)
	}
	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(kv_entries values) > %w", err)
	}
	for _, row := range rows {
		result[row.Key] = row.Value
	}
	return result, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
