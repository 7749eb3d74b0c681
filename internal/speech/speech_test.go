package speech_test

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/literacy/internal/speech"
	mock_speech "github.com/at-ishikawa/literacy/internal/mocks/speech"
)

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		options speech.Options
		wantErr bool
	}{
		{name: "defaults", options: speech.DefaultOptions()},
		{name: "upper bounds", options: speech.Options{Locale: "zh-TW", Rate: 1, Pitch: 2}},
		{name: "zero rate", options: speech.Options{Locale: "zh-CN", Rate: 0, Pitch: 1}, wantErr: true},
		{name: "rate above one", options: speech.Options{Locale: "zh-CN", Rate: 1.5, Pitch: 1}, wantErr: true},
		{name: "pitch above two", options: speech.Options{Locale: "zh-CN", Rate: 0.5, Pitch: 2.1}, wantErr: true},
		{name: "missing locale", options: speech.Options{Rate: 0.5, Pitch: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.options.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGateway_Speak(t *testing.T) {
	tests := []struct {
		name      string
		call      func(ctx context.Context, g *speech.Gateway) error
		setupMock func(m *mock_speech.MockSynthesizer)
		disabled  bool
		wantErr   bool
	}{
		{
			name: "text with default options",
			call: func(ctx context.Context, g *speech.Gateway) error { return g.Speak(ctx, "人") },
			setupMock: func(m *mock_speech.MockSynthesizer) {
				m.EXPECT().Speak(gomock.Any(), "人", speech.DefaultOptions()).Return(nil)
			},
		},
		{
			name: "pinyin prefix",
			call: func(ctx context.Context, g *speech.Gateway) error { return g.SpeakPinyin(ctx, "rén") },
			setupMock: func(m *mock_speech.MockSynthesizer) {
				m.EXPECT().Speak(gomock.Any(), "拼音：rén", speech.DefaultOptions()).Return(nil)
			},
		},
		{
			name: "meaning prefix",
			call: func(ctx context.Context, g *speech.Gateway) error { return g.SpeakMeaning(ctx, "人类") },
			setupMock: func(m *mock_speech.MockSynthesizer) {
				m.EXPECT().Speak(gomock.Any(), "意思是：人类", speech.DefaultOptions()).Return(nil)
			},
		},
		{
			name: "correct feedback",
			call: func(ctx context.Context, g *speech.Gateway) error { return g.SpeakFeedback(ctx, true) },
			setupMock: func(m *mock_speech.MockSynthesizer) {
				m.EXPECT().Speak(gomock.Any(), speech.PhraseCorrect, speech.DefaultOptions()).Return(nil)
			},
		},
		{
			name: "incorrect feedback",
			call: func(ctx context.Context, g *speech.Gateway) error { return g.SpeakFeedback(ctx, false) },
			setupMock: func(m *mock_speech.MockSynthesizer) {
				m.EXPECT().Speak(gomock.Any(), speech.PhraseIncorrect, speech.DefaultOptions()).Return(nil)
			},
		},
		{
			name:      "empty text is skipped",
			call:      func(ctx context.Context, g *speech.Gateway) error { return g.Speak(ctx, "") },
			setupMock: func(m *mock_speech.MockSynthesizer) {},
		},
		{
			name:      "disabled gateway does nothing",
			call:      func(ctx context.Context, g *speech.Gateway) error { return g.Speak(ctx, "人") },
			setupMock: func(m *mock_speech.MockSynthesizer) {},
			disabled:  true,
		},
		{
			name: "invalid options never reach the synthesizer",
			call: func(ctx context.Context, g *speech.Gateway) error {
				return g.SpeakWithOptions(ctx, "人", speech.Options{Locale: "zh-CN", Rate: 3, Pitch: 1})
			},
			setupMock: func(m *mock_speech.MockSynthesizer) {},
			wantErr:   true,
		},
		{
			name: "synthesizer failure",
			call: func(ctx context.Context, g *speech.Gateway) error { return g.Speak(ctx, "人") },
			setupMock: func(m *mock_speech.MockSynthesizer) {
				m.EXPECT().Speak(gomock.Any(), "人", gomock.Any()).Return(fmt.Errorf("engine unavailable"))
			},
			wantErr: true,
		},
		{
			name: "synthesizer panic",
			call: func(ctx context.Context, g *speech.Gateway) error { return g.Speak(ctx, "人") },
			setupMock: func(m *mock_speech.MockSynthesizer) {
				m.EXPECT().Speak(gomock.Any(), "人", gomock.Any()).DoAndReturn(
					func(context.Context, string, speech.Options) error { panic("boom") },
				)
			},
			wantErr: true,
		},
		{
			name: "stop",
			call: func(ctx context.Context, g *speech.Gateway) error { return g.Stop(ctx) },
			setupMock: func(m *mock_speech.MockSynthesizer) {
				m.EXPECT().Stop(gomock.Any()).Return(nil)
			},
		},
		{
			name: "stop failure",
			call: func(ctx context.Context, g *speech.Gateway) error { return g.Stop(ctx) },
			setupMock: func(m *mock_speech.MockSynthesizer) {
				m.EXPECT().Stop(gomock.Any()).Return(fmt.Errorf("not playing"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			synth := mock_speech.NewMockSynthesizer(ctrl)
			tt.setupMock(synth)

			gateway := speech.NewGateway(synth, speech.DefaultOptions())
			gateway.SetEnabled(!tt.disabled)

			err := tt.call(context.Background(), gateway)
			if tt.wantErr {
				var speechErr *speech.SpeechError
				require.ErrorAs(t, err, &speechErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

type overlapSynthesizer struct {
	active  atomic.Int32
	overlap atomic.Bool
	spoken  atomic.Int32
}

func (s *overlapSynthesizer) Speak(context.Context, string, speech.Options) error {
	if s.active.Add(1) > 1 {
		s.overlap.Store(true)
	}
	time.Sleep(5 * time.Millisecond)
	s.active.Add(-1)
	s.spoken.Add(1)
	return nil
}

func (s *overlapSynthesizer) Stop(context.Context) error {
	return nil
}

func TestGateway_SerializesUtterances(t *testing.T) {
	synth := &overlapSynthesizer{}
	gateway := speech.NewGateway(synth, speech.DefaultOptions())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = gateway.Speak(context.Background(), fmt.Sprintf("utterance %d", i))
		}()
	}
	wg.Wait()

	assert.False(t, synth.overlap.Load())
	assert.Equal(t, int32(5), synth.spoken.Load())
}

func TestConsoleSynthesizer(t *testing.T) {
	var buf bytes.Buffer
	synth := speech.NewConsoleSynthesizer(&buf)

	require.NoError(t, synth.Speak(context.Background(), "拼音：rén", speech.DefaultOptions()))
	require.NoError(t, synth.Stop(context.Background()))
	assert.Contains(t, buf.String(), "拼音：rén")
}
