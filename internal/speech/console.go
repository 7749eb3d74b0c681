package speech

import (
	"context"
	"io"
	"sync"

	"github.com/fatih/color"
)

// ConsoleSynthesizer prints utterances instead of playing audio.
type ConsoleSynthesizer struct {
	mu     sync.Mutex
	writer io.Writer
	color  *color.Color
}

func NewConsoleSynthesizer(w io.Writer) *ConsoleSynthesizer {
	return &ConsoleSynthesizer{
		writer: w,
		color:  color.New(color.FgMagenta),
	}
}

func (s *ConsoleSynthesizer) Speak(_ context.Context, text string, _ Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.color.Fprintf(s.writer, "🔊 %s\n", text)
	return err
}

func (s *ConsoleSynthesizer) Stop(context.Context) error {
	return nil
}
