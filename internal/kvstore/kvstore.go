// Package kvstore provides string key-value persistence backends.
package kvstore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

//go:generate mockgen -source=kvstore.go -destination=../mocks/kvstore/mock_kvstore.go -package=mock_kvstore

// Store is a string key-value store.
type Store interface {
	// Get returns found=false without an error when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	// Keys returns every key starting with prefix. Order is unspecified.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// MultiGet omits keys that are absent.
	MultiGet(ctx context.Context, keys []string) (map[string]string, error)
}

// MemoryStore keeps entries in a map.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

func (s *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return keysWithPrefix(s.entries, prefix), nil
}

func (s *MemoryStore) MultiGet(_ context.Context, keys []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pick(s.entries, keys), nil
}

func keysWithPrefix(entries map[string]string, prefix string) []string {
	keys := make([]string, 0)
	for k := range entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func pick(entries map[string]string, keys []string) map[string]string {
	result := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := entries[k]; ok {
			result[k] = v
		}
	}
	return result
}
