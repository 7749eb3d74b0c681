package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		User: UserConfig{ID: "user1"},
		Storage: StorageConfig{
			Driver: "file",
			File:   filepath.Join("data", "progress.yml"),
			Database: DatabaseConfig{
				Path: filepath.Join("data", "literacy.db"),
				Port: 3306,
			},
		},
		Speech: SpeechConfig{
			Locale:           "zh-CN",
			Rate:             0.5,
			Pitch:            1.0,
			CacheDirectory:   filepath.Join("data", "audio"),
			MaxRetryAttempts: 3,
		},
		Session: SessionConfig{AdvanceDelay: 1500 * time.Millisecond},
		Stroke: StrokeConfig{
			Highlight: 800 * time.Millisecond,
			Dim:       200 * time.Millisecond,
			Pause:     500 * time.Millisecond,
		},
		Server: ServerConfig{
			Address:            ":8080",
			AllowedOrigin:      "http://localhost:3000",
			SessionIdleTimeout: 30 * time.Minute,
		},
		Reports: ReportsConfig{OutputDirectory: filepath.Join("outputs", "reports")},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		env               map[string]string
		wantErr           bool
		want              func() *Config
		wantErrorContains []string
	}{
		{
			name:            "no config file uses defaults",
			useExplicitPath: false,
			want:            defaultConfig,
		},
		{
			name: "valid config file with custom values",
			configContent: `user:
  id: alice
storage:
  driver: sqlite
  database:
    path: custom/literacy.db
speech:
  locale: zh-TW
  rate: 0.8
  pitch: 1.5
  endpoint: https://tts.example.com/v1
  player: ["afplay"]
session:
  advance_delay: 2s
stroke:
  highlight: 1s
  dim: 100ms
  pause: 0s
log:
  level: debug
  format: json
`,
			useExplicitPath: true,
			env:             map[string]string{"LITERACY_TTS_API_KEY": "secret"},
			want: func() *Config {
				cfg := defaultConfig()
				cfg.User.ID = "alice"
				cfg.Storage.Driver = "sqlite"
				cfg.Storage.Database.Path = "custom/literacy.db"
				cfg.Speech.Locale = "zh-TW"
				cfg.Speech.Rate = 0.8
				cfg.Speech.Pitch = 1.5
				cfg.Speech.Endpoint = "https://tts.example.com/v1"
				cfg.Speech.APIKey = "secret"
				cfg.Speech.Player = []string{"afplay"}
				cfg.Session.AdvanceDelay = 2 * time.Second
				cfg.Stroke = StrokeConfig{Highlight: time.Second, Dim: 100 * time.Millisecond}
				cfg.Log = LogConfig{Level: "debug", Format: "json"}
				return cfg
			},
		},
		{
			name: "partial config with missing fields uses defaults",
			configContent: `user:
  id: bob
`,
			useExplicitPath: false,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.User.ID = "bob"
				return cfg
			},
		},
		{
			name: "invalid YAML format",
			configContent: `user:
  id: bob
  invalid yaml format here [[[
`,
			useExplicitPath: true,
			wantErr:         true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
		{
			name: "out of range speech options are rejected",
			configContent: `speech:
  rate: 1.5
  pitch: 0
`,
			useExplicitPath: true,
			wantErr:         true,
			wantErrorContains: []string{
				"invalid configuration",
				"rate must be 1 or less",
				"pitch must be greater than 0",
			},
		},
		{
			name: "unknown storage driver and locale are rejected",
			configContent: `storage:
  driver: redis
speech:
  locale: "not a locale!"
`,
			useExplicitPath: true,
			wantErr:         true,
			wantErrorContains: []string{
				"driver must be one of [memory file sqlite mysql]",
				"speech.locale must be a BCP 47 language tag",
			},
		},
		{
			name: "missing catalog file is rejected",
			configContent: `catalog:
  path: /non/existent/catalog.yml
`,
			useExplicitPath: true,
			wantErr:         true,
			wantErrorContains: []string{
				"catalog.path must be an existing and readable file",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("HOME", tempDir)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "config.yml")
				err := os.WriteFile(configPath, []byte(tt.configContent), 0644)
				require.NoError(t, err)
			} else {
				if tt.configContent != "" {
					err := os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(tt.configContent), 0644)
					require.NoError(t, err)
				}

				originalDir, err := os.Getwd()
				require.NoError(t, err)
				defer func() {
					err := os.Chdir(originalDir)
					require.NoError(t, err)
				}()

				err = os.Chdir(tempDir)
				require.NoError(t, err)
			}

			got, err := Load(configPath)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want(), got)
		})
	}
}

func TestLoad_CatalogFileExists(t *testing.T) {
	tempDir := t.TempDir()
	catalogPath := filepath.Join(tempDir, "catalog.yml")
	require.NoError(t, os.WriteFile(catalogPath, []byte("words: []\n"), 0644))

	configPath := filepath.Join(tempDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("catalog:\n  path: "+catalogPath+"\n"), 0644))

	got, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, catalogPath, got.Catalog.Path)
}
