// Package speech wraps a text-to-speech capability. Failures are reported as
// *SpeechError values and logged; they never interrupt a study session.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

//go:generate mockgen -source=speech.go -destination=../mocks/speech/mock_speech.go -package=mock_speech

const (
	PhraseCorrect     = "回答正确！"
	PhraseIncorrect   = "再试一次"
	PhraseStrokeOrder = "请看笔画顺序"

	pinyinPrefix  = "拼音："
	meaningPrefix = "意思是："
)

// Options controls how an utterance is synthesized.
type Options struct {
	Locale string  `json:"locale"`
	Rate   float64 `json:"rate"`  // (0, 1]
	Pitch  float64 `json:"pitch"` // (0, 2]
}

func DefaultOptions() Options {
	return Options{Locale: "zh-CN", Rate: 0.5, Pitch: 1.0}
}

func (o Options) Validate() error {
	var errs []error
	if o.Locale == "" {
		errs = append(errs, errors.New("locale is required"))
	}
	if o.Rate <= 0 || o.Rate > 1 {
		errs = append(errs, fmt.Errorf("rate %v must be in (0, 1]", o.Rate))
	}
	if o.Pitch <= 0 || o.Pitch > 2 {
		errs = append(errs, fmt.Errorf("pitch %v must be in (0, 2]", o.Pitch))
	}
	return errors.Join(errs...)
}

// Synthesizer is the external voice synthesis capability.
type Synthesizer interface {
	// Speak returns once the utterance has been played.
	Speak(ctx context.Context, text string, opts Options) error
	// Stop interrupts the current utterance, if any.
	Stop(ctx context.Context) error
}

// SpeechError is returned by Gateway when synthesis fails.
type SpeechError struct {
	Op   string
	Text string
	Err  error
}

func (e *SpeechError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("speech %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("speech %s %q: %v", e.Op, e.Text, e.Err)
}

func (e *SpeechError) Unwrap() error {
	return e.Err
}

// Gateway plays one utterance at a time through a Synthesizer.
// A disabled Gateway accepts every call and does nothing.
type Gateway struct {
	synth   Synthesizer
	options Options
	enabled atomic.Bool
	logger  *slog.Logger

	// held for the duration of an utterance so that they never overlap
	speaking sync.Mutex
}

func NewGateway(synth Synthesizer, options Options) *Gateway {
	g := &Gateway{
		synth:   synth,
		options: options,
		logger:  slog.Default(),
	}
	g.enabled.Store(true)
	return g
}

func (g *Gateway) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *Gateway) Enabled() bool {
	return g.enabled.Load()
}

func (g *Gateway) Options() Options {
	return g.options
}

// Speak says text with the gateway's default options.
func (g *Gateway) Speak(ctx context.Context, text string) error {
	return g.SpeakWithOptions(ctx, text, g.options)
}

func (g *Gateway) SpeakWithOptions(ctx context.Context, text string, options Options) error {
	if !g.Enabled() || text == "" {
		return nil
	}
	if err := options.Validate(); err != nil {
		return g.fail("speak", text, err)
	}

	g.speaking.Lock()
	defer g.speaking.Unlock()
	return g.call("speak", text, func() error {
		return g.synth.Speak(ctx, text, options)
	})
}

func (g *Gateway) SpeakPinyin(ctx context.Context, pinyin string) error {
	return g.Speak(ctx, pinyinPrefix+pinyin)
}

func (g *Gateway) SpeakMeaning(ctx context.Context, meaning string) error {
	return g.Speak(ctx, meaningPrefix+meaning)
}

// SpeakFeedback says whether an answer was correct.
func (g *Gateway) SpeakFeedback(ctx context.Context, correct bool) error {
	if correct {
		return g.Speak(ctx, PhraseCorrect)
	}
	return g.Speak(ctx, PhraseIncorrect)
}

// Stop interrupts the current utterance without waiting for it to finish.
func (g *Gateway) Stop(ctx context.Context) error {
	if !g.Enabled() {
		return nil
	}
	return g.call("stop", "", func() error {
		return g.synth.Stop(ctx)
	})
}

func (g *Gateway) call(op, text string, f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = g.fail(op, text, fmt.Errorf("synthesizer panicked: %v", r))
		}
	}()
	if err := f(); err != nil {
		return g.fail(op, text, err)
	}
	return nil
}

func (g *Gateway) fail(op, text string, err error) error {
	g.logger.Warn("speech failed",
		"op", op,
		"text", text,
		"error", err,
	)
	return &SpeechError{Op: op, Text: text, Err: err}
}
