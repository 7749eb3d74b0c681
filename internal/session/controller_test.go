package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/literacy/internal/clock"
	"github.com/at-ishikawa/literacy/internal/kvstore"
	mock_progress "github.com/at-ishikawa/literacy/internal/mocks/progress"
	mock_speech "github.com/at-ishikawa/literacy/internal/mocks/speech"
	mock_vocabulary "github.com/at-ishikawa/literacy/internal/mocks/vocabulary"
	"github.com/at-ishikawa/literacy/internal/progress"
	"github.com/at-ishikawa/literacy/internal/speech"
	"github.com/at-ishikawa/literacy/internal/stroke"
	"github.com/at-ishikawa/literacy/internal/vocabulary"
)

var testStart = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	controller *Controller
	clock      *clock.Fake
	records    *progress.Store
	synth      *mock_speech.MockSynthesizer
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	clk := clock.NewFake(testStart)
	records := progress.NewStore(kvstore.NewMemoryStore(), clk)
	synth := mock_speech.NewMockSynthesizer(ctrl)
	controller := NewController(Dependencies{
		Vocabulary: vocabulary.DefaultCatalog(),
		Progress:   records,
		Speech:     speech.NewGateway(synth, speech.DefaultOptions()),
		Clock:      clk,
		UserID:     "user1",
	})
	t.Cleanup(controller.Close)
	return fixture{controller: controller, clock: clk, records: records, synth: synth}
}

func TestController_ScenarioA(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.synth.EXPECT().Speak(gomock.Any(), speech.PhraseCorrect, gomock.Any()).Return(nil).Times(2)
	f.synth.EXPECT().Speak(gomock.Any(), speech.PhraseIncorrect, gomock.Any()).Return(nil).Times(1)

	require.NoError(t, f.controller.SelectDifficulty(ctx, 1))
	snapshot := f.controller.Snapshot()
	require.Equal(t, StateReady, snapshot.State)
	assert.Equal(t, "1 / 3", snapshot.Indicator())
	assert.Equal(t, "人", snapshot.Word.Character)

	// correct: advances after the delay
	result, err := f.controller.Answer(ctx, true)
	require.NoError(t, err)
	assert.True(t, result.AdvanceScheduled)
	assert.NoError(t, result.PersistenceErr)
	assert.Equal(t, 100, result.Record.MasteryLevel)
	f.clock.Advance(DefaultAdvanceDelay - time.Millisecond)
	assert.Equal(t, 0, f.controller.Snapshot().Position)
	f.clock.Advance(time.Millisecond)
	assert.Equal(t, "2 / 3", f.controller.Snapshot().Indicator())

	// wrong: stays until the learner moves on
	result, err = f.controller.Answer(ctx, false)
	require.NoError(t, err)
	assert.False(t, result.AdvanceScheduled)
	f.clock.Advance(time.Minute)
	assert.Equal(t, 1, f.controller.Snapshot().Position)
	snapshot, err = f.controller.Advance()
	require.NoError(t, err)
	assert.Equal(t, "3 / 3", snapshot.Indicator())
	assert.Equal(t, 50, snapshot.Accuracy)

	_, err = f.controller.Answer(ctx, true)
	require.NoError(t, err)
	f.clock.Advance(DefaultAdvanceDelay)

	snapshot = f.controller.Snapshot()
	assert.Equal(t, StateFinished, snapshot.State)
	require.NotNil(t, snapshot.Summary)
	assert.Equal(t, Summary{Score: 2, Answered: 3, Words: 3, Accuracy: 67}, *snapshot.Summary)
	assert.Nil(t, snapshot.Word)

	records, err := f.records.List(ctx, "user1")
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestController_ScenarioB_StaleLoad(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	vocab := mock_vocabulary.NewMockStore(ctrl)

	levelOne := []vocabulary.WordEntry{{ID: "1", Character: "人", Difficulty: 1}}
	levelTwo := []vocabulary.WordEntry{
		{ID: "4", Character: "家", Difficulty: 2},
		{ID: "5", Character: "水", Difficulty: 2},
	}
	started := make(chan struct{})
	release := make(chan struct{})
	vocab.EXPECT().WordsByDifficulty(gomock.Any(), 1).DoAndReturn(
		func(context.Context, int) ([]vocabulary.WordEntry, error) {
			close(started)
			<-release
			return levelOne, nil
		},
	)
	vocab.EXPECT().WordsByDifficulty(gomock.Any(), 2).Return(levelTwo, nil)

	controller := NewController(Dependencies{
		Vocabulary: vocab,
		Progress:   mock_progress.NewMockRepository(ctrl),
		Clock:      clock.NewFake(testStart),
		UserID:     "user1",
	})

	staleErr := make(chan error, 1)
	go func() {
		staleErr <- controller.SelectDifficulty(ctx, 1)
	}()
	<-started

	require.NoError(t, controller.SelectDifficulty(ctx, 2))
	close(release)
	assert.ErrorIs(t, <-staleErr, ErrStaleLoad)

	snapshot := controller.Snapshot()
	assert.Equal(t, StateReady, snapshot.State)
	assert.Equal(t, 2, snapshot.Difficulty)
	assert.Equal(t, 2, snapshot.Total)
	assert.Equal(t, "家", snapshot.Word.Character)
}

func TestController_LoadFailure(t *testing.T) {
	tests := []struct {
		name  string
		words []vocabulary.WordEntry
		err   error
	}{
		{name: "catalog error", err: fmt.Errorf("catalog unavailable")},
		{name: "no words", words: []vocabulary.WordEntry{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ctrl := gomock.NewController(t)
			vocab := mock_vocabulary.NewMockStore(ctrl)
			gomock.InOrder(
				vocab.EXPECT().WordsByDifficulty(gomock.Any(), 3).Return(tt.words, tt.err),
				vocab.EXPECT().WordsByDifficulty(gomock.Any(), 3).Return(
					[]vocabulary.WordEntry{{ID: "6", Character: "学习", Difficulty: 3}}, nil),
			)
			controller := NewController(Dependencies{
				Vocabulary: vocab,
				Progress:   mock_progress.NewMockRepository(ctrl),
				Clock:      clock.NewFake(testStart),
			})

			err := controller.SelectDifficulty(ctx, 3)
			var loadErr *CatalogLoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, 3, loadErr.Difficulty)
			assert.True(t, IsCatalogLoadError(err))

			snapshot := controller.Snapshot()
			assert.Equal(t, StateLoading, snapshot.State)
			assert.Equal(t, err, snapshot.LoadError)

			_, err = controller.Answer(ctx, true)
			assert.ErrorIs(t, err, ErrNotReady)

			require.NoError(t, controller.Retry(ctx))
			snapshot = controller.Snapshot()
			assert.Equal(t, StateReady, snapshot.State)
			assert.NoError(t, snapshot.LoadError)
			assert.ErrorIs(t, controller.Retry(ctx), ErrNothingToRetry)
		})
	}
}

func TestController_InvalidDifficulty(t *testing.T) {
	f := newFixture(t)
	err := f.controller.SelectDifficulty(context.Background(), 9)
	assert.ErrorIs(t, err, vocabulary.ErrInvalidDifficulty)
	assert.True(t, IsCatalogLoadError(err))
}

func TestController_ZeroAnswered(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.controller.SelectDifficulty(context.Background(), 2))
	assert.Equal(t, 0, f.controller.Snapshot().Accuracy)

	_, err := f.controller.Advance()
	require.NoError(t, err)
	snapshot, err := f.controller.Advance()
	require.NoError(t, err)

	assert.Equal(t, StateFinished, snapshot.State)
	assert.Equal(t, Summary{Words: 2, Accuracy: 0}, *snapshot.Summary)
}

func TestController_AdvancePending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.synth.EXPECT().Speak(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	require.NoError(t, f.controller.SelectDifficulty(ctx, 1))

	_, err := f.controller.Answer(ctx, true)
	require.NoError(t, err)
	assert.True(t, f.controller.Snapshot().AdvancePending)

	_, err = f.controller.Answer(ctx, true)
	assert.ErrorIs(t, err, ErrAdvancePending)
	assert.Equal(t, 1, f.controller.Snapshot().Answered)

	// a manual advance cancels the scheduled one
	snapshot, err := f.controller.Advance()
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.Position)
	assert.False(t, snapshot.AdvancePending)
	f.clock.Advance(DefaultAdvanceDelay)
	assert.Equal(t, 1, f.controller.Snapshot().Position)
}

func TestController_SelectDifficultyCancelsScheduledAdvance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.synth.EXPECT().Speak(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	require.NoError(t, f.controller.SelectDifficulty(ctx, 1))
	_, err := f.controller.Answer(ctx, true)
	require.NoError(t, err)

	require.NoError(t, f.controller.SelectDifficulty(ctx, 2))
	assert.Equal(t, 0, f.clock.Pending())
	f.clock.Advance(DefaultAdvanceDelay)

	snapshot := f.controller.Snapshot()
	assert.Equal(t, 0, snapshot.Position)
	assert.Equal(t, 0, snapshot.Answered)
}

func TestController_Restart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.synth.EXPECT().Speak(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	require.NoError(t, f.controller.SelectDifficulty(ctx, 2))

	assert.ErrorIs(t, f.controller.Restart(), ErrNotFinished)

	_, err := f.controller.Answer(ctx, false)
	require.NoError(t, err)
	_, err = f.controller.Advance()
	require.NoError(t, err)
	_, err = f.controller.Advance()
	require.NoError(t, err)
	require.Equal(t, StateFinished, f.controller.Snapshot().State)

	_, err = f.controller.Advance()
	assert.ErrorIs(t, err, ErrNotReady)

	require.NoError(t, f.controller.Restart())
	snapshot := f.controller.Snapshot()
	assert.Equal(t, StateReady, snapshot.State)
	assert.Equal(t, 0, snapshot.Position)
	assert.Equal(t, 0, snapshot.Answered)
	assert.Equal(t, 2, snapshot.Total)
	assert.Nil(t, snapshot.Summary)
	assert.Equal(t, "家", snapshot.Word.Character)
}

func TestController_SideEffectFailuresDoNotStopTheSession(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	records := mock_progress.NewMockRepository(ctrl)
	synth := mock_speech.NewMockSynthesizer(ctrl)
	clk := clock.NewFake(testStart)

	writeErr := &progress.PersistenceError{Op: "write", Key: "progress_user1_1", Err: errors.New("disk full")}
	records.EXPECT().RecordAttempt(gomock.Any(), "user1", "1", true).
		Return(progress.MasteryRecord{UserID: "user1", WordID: "1", CorrectCount: 1, TotalAttempts: 1, MasteryLevel: 100}, writeErr)
	synth.EXPECT().Speak(gomock.Any(), speech.PhraseCorrect, gomock.Any()).Return(errors.New("no audio device"))

	controller := NewController(Dependencies{
		Vocabulary: vocabulary.DefaultCatalog(),
		Progress:   records,
		Speech:     speech.NewGateway(synth, speech.DefaultOptions()),
		Clock:      clk,
		UserID:     "user1",
	})
	var logs bytes.Buffer
	controller.logger = slog.New(slog.NewTextHandler(&logs, nil))
	require.NoError(t, controller.SelectDifficulty(ctx, 1))

	result, err := controller.Answer(ctx, true)
	require.NoError(t, err)
	assert.ErrorIs(t, result.PersistenceErr, writeErr)
	assert.Equal(t, 100, result.Record.MasteryLevel)

	clk.Advance(DefaultAdvanceDelay)
	assert.Equal(t, 1, controller.Snapshot().Position)

	controller.Close()
	assert.Contains(t, logs.String(), "feedback was not spoken")
	assert.Contains(t, logs.String(), "no audio device")
}

func TestController_AnswerDoesNotWaitForFeedback(t *testing.T) {
	tests := []struct {
		name    string
		correct bool
		phrase  string
	}{
		{name: "correct", correct: true, phrase: speech.PhraseCorrect},
		{name: "wrong", correct: false, phrase: speech.PhraseIncorrect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			f := newFixture(t)
			started := make(chan struct{})
			release := make(chan struct{})
			var speakErr error
			f.synth.EXPECT().Speak(gomock.Any(), tt.phrase, gomock.Any()).
				DoAndReturn(func(ctx context.Context, _ string, _ speech.Options) error {
					close(started)
					<-release
					speakErr = ctx.Err()
					return nil
				})
			require.NoError(t, f.controller.SelectDifficulty(ctx, 1))

			done := make(chan AnswerResult)
			go func() {
				result, err := f.controller.Answer(ctx, tt.correct)
				assert.NoError(t, err)
				done <- result
			}()

			select {
			case result := <-done:
				assert.Equal(t, 1, result.Record.TotalAttempts)
				assert.Equal(t, tt.correct, result.AdvanceScheduled)
			case <-time.After(5 * time.Second):
				t.Fatal("Answer waited for the feedback utterance")
			}
			<-started

			// the request that answered may be gone while feedback is still playing
			cancel()
			close(release)
			f.controller.Close()
			assert.NoError(t, speakErr)
		})
	}
}

func TestController_Close(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.synth.EXPECT().Speak(gomock.Any(), speech.PhraseCorrect, gomock.Any()).Return(nil)
	require.NoError(t, f.controller.SelectDifficulty(ctx, 1))

	_, err := f.controller.Answer(ctx, true)
	require.NoError(t, err)
	require.Equal(t, 1, f.clock.Pending())

	f.controller.Close()
	assert.Equal(t, 0, f.clock.Pending())
	f.clock.Advance(DefaultAdvanceDelay)
	assert.Equal(t, 0, f.controller.Snapshot().Position)

	_, err = f.controller.Answer(ctx, false)
	assert.ErrorIs(t, err, ErrClosed)

	// closing twice is harmless
	f.controller.Close()
}

func TestController_Speak(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.controller.ShowStrokeOrder(ctx)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, f.controller.SpeakWord(ctx), ErrNotReady)

	require.NoError(t, f.controller.SelectDifficulty(ctx, 1))
	gomock.InOrder(
		f.synth.EXPECT().Speak(gomock.Any(), "人", gomock.Any()).Return(nil),
		f.synth.EXPECT().Speak(gomock.Any(), "拼音：rén", gomock.Any()).Return(nil),
		f.synth.EXPECT().Speak(gomock.Any(), "意思是：人类，人员", gomock.Any()).Return(nil),
		f.synth.EXPECT().Speak(gomock.Any(), speech.PhraseStrokeOrder, gomock.Any()).Return(nil),
	)
	require.NoError(t, f.controller.SpeakWord(ctx))
	require.NoError(t, f.controller.SpeakPinyin(ctx))
	require.NoError(t, f.controller.SpeakMeaning(ctx))

	player, err := f.controller.ShowStrokeOrder(ctx)
	require.NoError(t, err)
	require.NotNil(t, player)
	assert.Equal(t, []string{"丿", "乀"}, player.Snapshot().Strokes)

	require.True(t, player.Play())
	f.clock.Advance(stroke.DefaultTiming().Highlight + stroke.DefaultTiming().Dim + stroke.DefaultTiming().Pause)
	assert.Equal(t, 1, player.Snapshot().Index)
}

func TestController_Subscribe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.synth.EXPECT().Speak(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	var states []State
	unsubscribe := f.controller.Subscribe(func(s Snapshot) {
		states = append(states, s.State)
	})
	defer unsubscribe()

	require.NoError(t, f.controller.SelectDifficulty(ctx, 3))
	_, err := f.controller.Answer(ctx, true)
	require.NoError(t, err)
	f.clock.Advance(DefaultAdvanceDelay)

	assert.Equal(t, []State{StateLoading, StateReady, StateReady, StateFinished}, states)
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		score    int
		answered int
		want     int
	}{
		{0, 0, 0},
		{2, 3, 67},
		{1, 3, 33},
		{1, 2, 50},
		{5, 5, 100},
		{0, 4, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d of %d", tt.score, tt.answered), func(t *testing.T) {
			assert.Equal(t, tt.want, accuracy(tt.score, tt.answered))
		})
	}
}
