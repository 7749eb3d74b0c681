package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/literacy/internal/clock"
	"github.com/at-ishikawa/literacy/internal/kvstore"
	mock_cli "github.com/at-ishikawa/literacy/internal/mocks/cli"
	mock_vocabulary "github.com/at-ishikawa/literacy/internal/mocks/vocabulary"
	"github.com/at-ishikawa/literacy/internal/progress"
	"github.com/at-ishikawa/literacy/internal/session"
	"github.com/at-ishikawa/literacy/internal/speech"
	"github.com/at-ishikawa/literacy/internal/stroke"
	"github.com/at-ishikawa/literacy/internal/vocabulary"
)

func newTestController(vocab vocabulary.Store) (*session.Controller, *progress.Store) {
	records := progress.NewStore(kvstore.NewMemoryStore(), clock.Real())
	return session.NewController(session.Dependencies{
		Vocabulary:   vocab,
		Progress:     records,
		Speech:       speech.NewGateway(speech.NewConsoleSynthesizer(io.Discard), speech.DefaultOptions()),
		Clock:        clock.Real(),
		UserID:       "user1",
		AdvanceDelay: time.Millisecond,
		StrokeTiming: stroke.Timing{Highlight: time.Millisecond, Dim: time.Millisecond, Pause: time.Millisecond},
	}), records
}

func TestStudyCLI_Run(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantOutput   []string
		wantAttempts int
	}{
		{
			name:  "answers every word and quits",
			input: "1\ny\nn\n>\ny\nq\n",
			wantOutput: []string{
				"Choose a difficulty",
				"[1 / 3]",
				"回答正确！",
				"再试一次",
				"Session complete!",
				"Accuracy: 67% (2/3)",
			},
			wantAttempts: 3,
		},
		{
			name:  "restart after finishing",
			input: "3\nn\n>\nr\ny\nq\n",
			wantOutput: []string{
				"Accuracy: 0% (0/1)",
				"Accuracy: 100% (1/1)",
			},
			wantAttempts: 2,
		},
		{
			name:       "shows pinyin and meaning",
			input:      "2\np\nm\nq\n",
			wantOutput: []string{"拼音：jiā", "意思是：家庭，家里"},
		},
		{
			name:       "plays stroke order",
			input:      "1\no\nq\n",
			wantOutput: []string{"总笔画数: 2", "当前笔画: 1 / 2  丿 ·", "当前笔画: 2 / 2  丿 乀"},
		},
		{
			name:       "ignores unknown commands and invalid difficulty",
			input:      "9\nhello\n",
			wantOutput: []string{`Unknown command "9"`, `Unknown command "hello"`},
		},
		{
			name:       "end of input stops the session",
			input:      "1\n",
			wantOutput: []string{"[1 / 3]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller, records := newTestController(vocabulary.DefaultCatalog())
			var stdout bytes.Buffer
			studyCLI := NewStudyCLI(controller, strings.NewReader(tt.input), &stdout)

			require.NoError(t, studyCLI.Run(context.Background(), studyCLI))

			for _, want := range tt.wantOutput {
				assert.Contains(t, stdout.String(), want)
			}
			list, err := records.List(context.Background(), "user1")
			require.NoError(t, err)
			total := 0
			for _, r := range list {
				total += r.TotalAttempts
			}
			assert.Equal(t, tt.wantAttempts, total)
		})
	}
}

func TestStudyCLI_RetryAfterLoadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	vocab := mock_vocabulary.NewMockStore(ctrl)
	gomock.InOrder(
		vocab.EXPECT().WordsByDifficulty(gomock.Any(), 2).Return(nil, fmt.Errorf("catalog offline")),
		vocab.EXPECT().WordsByDifficulty(gomock.Any(), 2).Return([]vocabulary.WordEntry{
			{ID: "4", Character: "家", Pinyin: "jiā", Difficulty: 2},
		}, nil),
	)

	controller, _ := newTestController(vocab)
	var stdout bytes.Buffer
	studyCLI := NewStudyCLI(controller, strings.NewReader("2\nr\nq\n"), &stdout)

	require.NoError(t, studyCLI.Run(context.Background(), studyCLI))
	assert.Contains(t, stdout.String(), "Could not load words")
	assert.Contains(t, stdout.String(), "catalog offline")
	assert.Contains(t, stdout.String(), "家")
}

func TestInteractiveCLI_Run(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(m *mock_cli.MockSession)
		wantErr   bool
	}{
		{
			name: "ends normally",
			setupMock: func(m *mock_cli.MockSession) {
				gomock.InOrder(
					m.EXPECT().Session(gomock.Any()).Return(nil).Times(2),
					m.EXPECT().Session(gomock.Any()).Return(errEnd),
				)
			},
		},
		{
			name: "session error",
			setupMock: func(m *mock_cli.MockSession) {
				m.EXPECT().Session(gomock.Any()).Return(fmt.Errorf("broken"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			s := mock_cli.NewMockSession(ctrl)
			tt.setupMock(s)

			cli := newInteractiveCLI(strings.NewReader(""), io.Discard)
			err := cli.Run(context.Background(), s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRenderStrokes(t *testing.T) {
	got := renderStrokes(stroke.Snapshot{
		Index:   1,
		Strokes: []string{"丨", "乀", "丿"},
		Visible: []bool{true, true, false},
	})
	assert.Equal(t, "丨 乀 ·", got)
}
