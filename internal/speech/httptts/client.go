// Package httptts synthesizes speech through an HTTP text-to-speech endpoint
// and plays the audio with an external command.
package httptts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/exec"
	"sync"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/at-ishikawa/literacy/internal/speech"
)

type SynthesizeRequest struct {
	Text   string  `json:"text"`
	Locale string  `json:"locale"`
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("response error %d: %s", e.code, e.body)
}

// CommandRunner runs the audio player. It must return when ctx is cancelled.
type CommandRunner func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

type Client struct {
	httpClient       *resty.Client
	cache            *AudioCache
	player           []string
	maxRetryAttempts uint
	run              CommandRunner

	mu         sync.Mutex
	stopPlayer context.CancelFunc
}

// NewClient creates a client for the endpoint. player is the command and its arguments;
// the audio file path is appended. An empty player only fills the cache.
func NewClient(endpoint, apiKey string, cache *AudioCache, player []string, retryAttempts uint) *Client {
	client := resty.New()
	client.SetBaseURL(endpoint)
	if apiKey != "" {
		client.SetHeader("Authorization", "Bearer "+apiKey)
	}
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		cache:            cache,
		player:           player,
		maxRetryAttempts: retryAttempts,
		run:              runCommand,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

func (client *Client) Speak(ctx context.Context, text string, options speech.Options) error {
	audioPath, err := client.cache.fetch(cacheKey(text, options), func() ([]byte, error) {
		return client.synthesizeWithRetry(ctx, text, options)
	})
	if err != nil {
		return fmt.Errorf("synthesize > %w", err)
	}
	if len(client.player) == 0 {
		slog.Default().Debug("no audio player configured", "path", audioPath)
		return nil
	}

	playCtx, cancel := context.WithCancel(ctx)
	client.mu.Lock()
	client.stopPlayer = cancel
	client.mu.Unlock()
	defer func() {
		client.mu.Lock()
		client.stopPlayer = nil
		client.mu.Unlock()
		cancel()
	}()

	args := append(append([]string{}, client.player[1:]...), audioPath)
	if err := client.run(playCtx, client.player[0], args...); err != nil {
		if errors.Is(playCtx.Err(), context.Canceled) && ctx.Err() == nil {
			// stopped by Stop
			return nil
		}
		return fmt.Errorf("run(%s) > %w", client.player[0], err)
	}
	return nil
}

// Stop kills the running player, if any.
func (client *Client) Stop(context.Context) error {
	client.mu.Lock()
	defer client.mu.Unlock()
	if client.stopPlayer != nil {
		client.stopPlayer()
	}
	return nil
}

func (client *Client) synthesizeWithRetry(ctx context.Context, text string, options speech.Options) ([]byte, error) {
	var audio []byte
	if err := retry.Do(
		func() error {
			body, err := client.synthesize(ctx, text, options)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			audio = body
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Default().Info("retrying speech synthesis",
				"attempt", n+1,
				"error", err)
		}),
	); err != nil {
		return nil, err
	}
	return audio, nil
}

func (client *Client) synthesize(ctx context.Context, text string, options speech.Options) ([]byte, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(SynthesizeRequest{
			Text:   text,
			Locale: options.Locale,
			Rate:   options.Rate,
			Pitch:  options.Pitch,
		}).
		Post("/synthesize")
	if err != nil {
		return nil, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return nil, &statusError{code: response.StatusCode(), body: response.String()}
	}
	audio := response.Bytes()
	if len(audio) == 0 {
		return nil, errors.New("empty audio response")
	}
	return audio, nil
}

func isRetryableError(err error) bool {
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return statusErr.code >= 500 || statusErr.code == 429
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
