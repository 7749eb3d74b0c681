package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/at-ishikawa/literacy/internal/clock"
	"github.com/at-ishikawa/literacy/internal/config"
	"github.com/at-ishikawa/literacy/internal/logging"
	"github.com/at-ishikawa/literacy/internal/progress"
	"github.com/at-ishikawa/literacy/internal/recommend"
	"github.com/at-ishikawa/literacy/internal/server"
	"github.com/at-ishikawa/literacy/internal/session"
	"github.com/at-ishikawa/literacy/internal/storage"
	"github.com/at-ishikawa/literacy/internal/stroke"
	"github.com/at-ishikawa/literacy/internal/vocabulary"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("LITERACY_CONFIG"))
	if err != nil {
		return fmt.Errorf("config.Load() > %w", err)
	}
	logger, err := logging.Setup(cfg.Log, os.Stderr)
	if err != nil {
		return fmt.Errorf("logging.Setup() > %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, closeStore, err := newHandler(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = closeStore()
	}()

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           h2c.NewHandler(handler.Routes(), &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("srv.ListenAndServe() > %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newHandler(ctx context.Context, cfg *config.Config) (*server.Handler, func() error, error) {
	catalog, err := vocabulary.Open(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("vocabulary.Open() > %w", err)
	}
	kv, closeStore, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("storage.Open() > %w", err)
	}

	clk := clock.Real()
	records := progress.NewStore(kv, clk)
	settings := progress.NewSettingsStore(kv)
	strokeTiming := stroke.Timing{
		Highlight: cfg.Stroke.Highlight,
		Dim:       cfg.Stroke.Dim,
		Pause:     cfg.Stroke.Pause,
	}

	handler := server.NewHandler(server.Dependencies{
		Vocabulary:  catalog,
		Progress:    records,
		Settings:    settings,
		Recommender: recommend.NewSelector(catalog, records, settings),
		// speech is played by the client
		NewSession: func(userID string) *session.Controller {
			return session.NewController(session.Dependencies{
				Vocabulary:   catalog,
				Progress:     records,
				Clock:        clk,
				UserID:       userID,
				AdvanceDelay: cfg.Session.AdvanceDelay,
				StrokeTiming: strokeTiming,
			})
		},
		Clock:              clk,
		AllowedOrigin:      cfg.Server.AllowedOrigin,
		SessionIdleTimeout: cfg.Server.SessionIdleTimeout,
	})
	return handler, closeStore, nil
}
