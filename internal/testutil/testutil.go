// Package testutil provides shared test helpers for creating config files and catalog fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/literacy/internal/vocabulary"
)

// ConfigOption configures optional sections of the generated config file.
type ConfigOption func(*testConfig)

type testConfig struct {
	driver      string
	catalogPath string
	endpoint    string
}

func WithStorageDriver(driver string) ConfigOption {
	return func(cfg *testConfig) {
		cfg.driver = driver
	}
}

func WithCatalog(path string) ConfigOption {
	return func(cfg *testConfig) {
		cfg.catalogPath = path
	}
}

func WithSpeechEndpoint(endpoint string) ConfigOption {
	return func(cfg *testConfig) {
		cfg.endpoint = endpoint
	}
}

// SetupTestConfig creates a config file with short timings and every path under tmpDir.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string, opts ...ConfigOption) string {
	t.Helper()

	cfg := testConfig{driver: "file"}
	for _, opt := range opts {
		opt(&cfg)
	}

	for _, d := range []string{"data", "reports", "audio"} {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `user:
  id: user1
storage:
  driver: %s
  file: %s
  database:
    path: %s
session:
  advance_delay: 1ms
stroke:
  highlight: 1ms
  dim: 1ms
  pause: 1ms
reports:
  output_directory: %s
log:
  level: error
speech:
  cache_directory: %s
`,
		cfg.driver,
		filepath.Join(tmpDir, "data", "progress.yml"),
		filepath.Join(tmpDir, "data", "literacy.db"),
		filepath.Join(tmpDir, "reports"),
		filepath.Join(tmpDir, "audio"),
	)
	if cfg.endpoint != "" {
		fmt.Fprintf(&b, "  endpoint: %s\n  max_retry_attempts: 0\n", cfg.endpoint)
	}
	if cfg.catalogPath != "" {
		fmt.Fprintf(&b, "catalog:\n  path: %s\n", cfg.catalogPath)
	}

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(b.String()), 0644))
	return cfgPath
}

// CreateCatalog writes a catalog file with words and lessons into dir and returns its path.
func CreateCatalog(t *testing.T, dir string, words []vocabulary.WordEntry, lessons []vocabulary.Lesson) string {
	t.Helper()

	content, err := yaml.Marshal(vocabulary.Catalog{Words: words, Lessons: lessons})
	require.NoError(t, err)

	path := filepath.Join(dir, "catalog.yml")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}
