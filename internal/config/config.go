package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	User    UserConfig    `mapstructure:"user"`
	Storage StorageConfig `mapstructure:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Speech  SpeechConfig  `mapstructure:"speech"`
	Session SessionConfig `mapstructure:"session"`
	Stroke  StrokeConfig  `mapstructure:"stroke"`
	Server  ServerConfig  `mapstructure:"server"`
	Reports ReportsConfig `mapstructure:"reports"`
	Log     LogConfig     `mapstructure:"log"`
}

type UserConfig struct {
	ID string `mapstructure:"id" validate:"required"`
}

type StorageConfig struct {
	Driver   string         `mapstructure:"driver" validate:"oneof=memory file sqlite mysql"`
	File     string         `mapstructure:"file" validate:"required_if=Driver file"`
	Database DatabaseConfig `mapstructure:"database"`
}

// DatabaseConfig configures the sqlite or mysql backend. Path is only used by sqlite.
type DatabaseConfig struct {
	Path            string            `mapstructure:"path"`
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path" validate:"omitempty,file"`
}

type SpeechConfig struct {
	Locale           string   `mapstructure:"locale" validate:"required,locale"`
	Rate             float64  `mapstructure:"rate" validate:"gt=0,lte=1"`
	Pitch            float64  `mapstructure:"pitch" validate:"gt=0,lte=2"`
	Endpoint         string   `mapstructure:"endpoint" validate:"omitempty,url"`
	APIKey           string   `mapstructure:"api_key"`
	CacheDirectory   string   `mapstructure:"cache_directory"`
	Player           []string `mapstructure:"player"`
	MaxRetryAttempts uint     `mapstructure:"max_retry_attempts"`
}

type SessionConfig struct {
	AdvanceDelay time.Duration `mapstructure:"advance_delay" validate:"gt=0"`
}

type StrokeConfig struct {
	Highlight time.Duration `mapstructure:"highlight" validate:"gt=0"`
	Dim       time.Duration `mapstructure:"dim" validate:"gt=0"`
	Pause     time.Duration `mapstructure:"pause" validate:"gte=0"`
}

type ServerConfig struct {
	Address       string `mapstructure:"address" validate:"required"`
	AllowedOrigin string `mapstructure:"allowed_origin"`
	// SessionIdleTimeout is how long a study session is kept without requests.
	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout" validate:"gt=0"`
}

type ReportsConfig struct {
	OutputDirectory string `mapstructure:"output_directory"`
	TemplatePath    string `mapstructure:"template_path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/literacy")
	}

	v.SetDefault("user.id", "user1")
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.file", filepath.Join("data", "progress.yml"))
	v.SetDefault("storage.database.path", filepath.Join("data", "literacy.db"))
	v.SetDefault("storage.database.port", 3306)
	v.SetDefault("speech.locale", "zh-CN")
	v.SetDefault("speech.rate", 0.5)
	v.SetDefault("speech.pitch", 1.0)
	v.SetDefault("speech.cache_directory", filepath.Join("data", "audio"))
	v.SetDefault("speech.max_retry_attempts", 3)
	v.SetDefault("session.advance_delay", 1500*time.Millisecond)
	v.SetDefault("stroke.highlight", 800*time.Millisecond)
	v.SetDefault("stroke.dim", 200*time.Millisecond)
	v.SetDefault("stroke.pause", 500*time.Millisecond)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allowed_origin", "http://localhost:3000")
	v.SetDefault("server.session_idle_timeout", 30*time.Minute)
	v.SetDefault("reports.output_directory", filepath.Join("outputs", "reports"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Secrets are bound to environment variables only (not from config file)
	if err := v.BindEnv("speech.api_key", "LITERACY_TTS_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind LITERACY_TTS_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("storage.database.password", "LITERACY_DATABASE_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind LITERACY_DATABASE_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the config and reports every violation in one error.
func (cfg *Config) Validate() error {
	validate, trans, err := newValidator()
	if err != nil {
		return fmt.Errorf("newValidator() > %w", err)
	}

	err = validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validate.Struct() > %w", err)
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, fe.Translate(trans))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}
