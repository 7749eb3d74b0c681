package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/at-ishikawa/literacy/internal/clock"
	"github.com/at-ishikawa/literacy/internal/config"
	"github.com/at-ishikawa/literacy/internal/logging"
	"github.com/at-ishikawa/literacy/internal/progress"
	"github.com/at-ishikawa/literacy/internal/recommend"
	"github.com/at-ishikawa/literacy/internal/session"
	"github.com/at-ishikawa/literacy/internal/speech"
	"github.com/at-ishikawa/literacy/internal/speech/httptts"
	"github.com/at-ishikawa/literacy/internal/storage"
	"github.com/at-ishikawa/literacy/internal/stroke"
	"github.com/at-ishikawa/literacy/internal/vocabulary"
)

// app holds the components shared by every command.
type app struct {
	cfg      *config.Config
	clock    clock.Clock
	catalog  vocabulary.Store
	records  *progress.Store
	settings *progress.SettingsStore
	closers  []func() error
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if debugMode {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func newApp(ctx context.Context, stderr io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if _, err := logging.Setup(cfg.Log, stderr); err != nil {
		return nil, fmt.Errorf("logging.Setup() > %w", err)
	}

	catalog, err := vocabulary.Open(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("vocabulary.Open() > %w", err)
	}

	a := &app{
		cfg:     cfg,
		clock:   clock.Real(),
		catalog: catalog,
	}
	kv, closeStore, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("storage.Open() > %w", err)
	}
	a.closers = append(a.closers, closeStore)
	a.records = progress.NewStore(kv, a.clock)
	a.settings = progress.NewSettingsStore(kv)
	return a, nil
}

// newSpeech returns the speech gateway. Without an endpoint, speech is printed to stdout.
func (a *app) newSpeech(ctx context.Context, stdout io.Writer) *speech.Gateway {
	options := speech.Options{
		Locale: a.cfg.Speech.Locale,
		Rate:   a.cfg.Speech.Rate,
		Pitch:  a.cfg.Speech.Pitch,
	}

	var synthesizer speech.Synthesizer
	if a.cfg.Speech.Endpoint != "" {
		client := httptts.NewClient(
			a.cfg.Speech.Endpoint,
			a.cfg.Speech.APIKey,
			httptts.NewAudioCache(a.cfg.Speech.CacheDirectory),
			a.cfg.Speech.Player,
			a.cfg.Speech.MaxRetryAttempts,
		)
		a.closers = append(a.closers, client.Close)
		synthesizer = client
	} else {
		synthesizer = speech.NewConsoleSynthesizer(stdout)
	}

	gateway := speech.NewGateway(synthesizer, options)
	settings, err := a.settings.Get(ctx)
	if err != nil {
		slog.Default().Warn("using default settings", "error", err)
	}
	gateway.SetEnabled(settings.VoiceEnabled)
	return gateway
}

func (a *app) newController(userID string, speaker session.Speaker) *session.Controller {
	return session.NewController(session.Dependencies{
		Vocabulary:   a.catalog,
		Progress:     a.records,
		Speech:       speaker,
		Clock:        a.clock,
		UserID:       userID,
		AdvanceDelay: a.cfg.Session.AdvanceDelay,
		StrokeTiming: stroke.Timing{
			Highlight: a.cfg.Stroke.Highlight,
			Dim:       a.cfg.Stroke.Dim,
			Pause:     a.cfg.Stroke.Pause,
		},
	})
}

func (a *app) newRecommender() *recommend.Selector {
	return recommend.NewSelector(a.catalog, a.records, a.settings)
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
