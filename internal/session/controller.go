// Package session drives a study session: load the words of a difficulty,
// answer each one, and finish with an accuracy summary.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/at-ishikawa/literacy/internal/clock"
	"github.com/at-ishikawa/literacy/internal/progress"
	"github.com/at-ishikawa/literacy/internal/speech"
	"github.com/at-ishikawa/literacy/internal/stroke"
	"github.com/at-ishikawa/literacy/internal/vocabulary"
)

const DefaultAdvanceDelay = 1500 * time.Millisecond

type State int

const (
	StateLoading State = iota
	StateReady
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFinished:
		return "finished"
	default:
		return "loading"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Speaker is the part of speech.Gateway a session uses.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	SpeakPinyin(ctx context.Context, pinyin string) error
	SpeakMeaning(ctx context.Context, meaning string) error
	SpeakFeedback(ctx context.Context, correct bool) error
}

type Dependencies struct {
	Vocabulary vocabulary.Store
	Progress   progress.Repository
	// Speech is optional.
	Speech       Speaker
	Clock        clock.Clock
	UserID       string
	AdvanceDelay time.Duration
	StrokeTiming stroke.Timing
}

type Summary struct {
	Score    int `json:"score"`
	Answered int `json:"answered"`
	Words    int `json:"words"`
	Accuracy int `json:"accuracy"`
}

type Snapshot struct {
	State          State
	Difficulty     int
	Word           *vocabulary.WordEntry
	Position       int // zero-based
	Total          int
	Score          int
	Answered       int
	Accuracy       int
	AdvancePending bool
	LoadError      error
	Summary        *Summary
}

// Indicator is the "i / n" position shown to the learner.
func (s Snapshot) Indicator() string {
	if s.Total == 0 {
		return "0 / 0"
	}
	return fmt.Sprintf("%d / %d", s.Position+1, s.Total)
}

type AnswerResult struct {
	Word             vocabulary.WordEntry
	Correct          bool
	Record           progress.MasteryRecord
	AdvanceScheduled bool
	// PersistenceErr reports a record that was not saved. The answer still counts.
	PersistenceErr error
}

// Controller holds the state of one study session. All transitions are serialized.
type Controller struct {
	deps   Dependencies
	logger *slog.Logger

	mu         sync.Mutex
	state      State
	difficulty int
	words      []vocabulary.WordEntry
	position   int
	score      int
	answered   int
	loadErr    error
	summary    *Summary

	// loadToken identifies the latest SelectDifficulty call
	loadToken uint64
	// epoch invalidates scheduled advances
	epoch        uint64
	advanceTimer clock.Timer

	observers map[int]func(Snapshot)
	nextID    int

	closed bool
	// feedback tracks feedback utterances still being spoken
	feedback sync.WaitGroup
}

func NewController(deps Dependencies) *Controller {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.AdvanceDelay <= 0 {
		deps.AdvanceDelay = DefaultAdvanceDelay
	}
	if deps.StrokeTiming == (stroke.Timing{}) {
		deps.StrokeTiming = stroke.DefaultTiming()
	}
	return &Controller{
		deps:      deps,
		logger:    slog.Default().With("user_id", deps.UserID),
		state:     StateLoading,
		observers: make(map[int]func(Snapshot)),
	}
}

// SelectDifficulty loads the words of level and starts over. If another SelectDifficulty
// is called before this one completes, this one returns ErrStaleLoad and has no effect.
func (c *Controller) SelectDifficulty(ctx context.Context, level int) error {
	c.mu.Lock()
	c.loadToken++
	token := c.loadToken
	c.cancelAdvanceLocked()
	c.state = StateLoading
	c.difficulty = level
	c.words = nil
	c.resetScoreLocked()
	c.loadErr = nil
	c.unlockAndNotify()

	words, err := c.deps.Vocabulary.WordsByDifficulty(ctx, level)
	if err == nil && len(words) == 0 {
		err = fmt.Errorf("no words at difficulty %d", level)
	}

	c.mu.Lock()
	if token != c.loadToken {
		c.mu.Unlock()
		c.logger.Debug("discarding stale load", "difficulty", level)
		return ErrStaleLoad
	}
	if err != nil {
		loadErr := &CatalogLoadError{Difficulty: level, Err: err}
		c.loadErr = loadErr
		c.unlockAndNotify()
		c.logger.Warn("failed to load words", "difficulty", level, "error", err)
		return loadErr
	}
	c.words = words
	c.state = StateReady
	c.unlockAndNotify()
	return nil
}

// Retry repeats the last failed load.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateLoading || c.loadErr == nil {
		c.mu.Unlock()
		return ErrNothingToRetry
	}
	level := c.difficulty
	c.mu.Unlock()
	return c.SelectDifficulty(ctx, level)
}

// Answer records the learner's answer for the current word and returns once the record
// is saved. Feedback is spoken in the background and its failures are only logged.
// A correct answer moves to the next word after the advance delay.
func (c *Controller) Answer(ctx context.Context, correct bool) (AnswerResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return AnswerResult{}, ErrClosed
	}
	if c.state != StateReady {
		c.mu.Unlock()
		return AnswerResult{}, ErrNotReady
	}
	if c.advanceTimer != nil {
		c.mu.Unlock()
		return AnswerResult{}, ErrAdvancePending
	}

	word := c.words[c.position]
	c.answered++
	if correct {
		c.score++
		epoch := c.epoch
		c.advanceTimer = c.deps.Clock.AfterFunc(c.deps.AdvanceDelay, func() {
			c.scheduledAdvance(epoch)
		})
	}
	if c.deps.Speech != nil {
		c.feedback.Add(1)
		go c.speakFeedback(context.WithoutCancel(ctx), word.ID, correct)
	}
	result := AnswerResult{
		Word:             word,
		Correct:          correct,
		AdvanceScheduled: correct,
	}
	c.unlockAndNotify()

	result.Record, result.PersistenceErr = c.deps.Progress.RecordAttempt(ctx, c.deps.UserID, word.ID, correct)
	if result.PersistenceErr != nil {
		c.logger.Warn("answer was not persisted", "word_id", word.ID, "error", result.PersistenceErr)
	}
	return result, nil
}

func (c *Controller) speakFeedback(ctx context.Context, wordID string, correct bool) {
	defer c.feedback.Done()
	if err := c.deps.Speech.SpeakFeedback(ctx, correct); err != nil {
		c.logger.Warn("feedback was not spoken", "word_id", wordID, "error", err)
	}
}

// Close cancels a scheduled advance and waits for feedback that is still being spoken.
// A closed controller rejects answers.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.cancelAdvanceLocked()
	c.mu.Unlock()
	c.feedback.Wait()
}

// Advance moves to the next word, or finishes the session after the last one.
// A scheduled advance is cancelled.
func (c *Controller) Advance() (Snapshot, error) {
	c.mu.Lock()
	if c.state != StateReady {
		c.mu.Unlock()
		return Snapshot{}, ErrNotReady
	}
	c.cancelAdvanceLocked()
	c.advanceLocked()
	snapshot := c.snapshotLocked()
	c.unlockAndNotify()
	return snapshot, nil
}

// Restart studies the same words again from the first one.
func (c *Controller) Restart() error {
	c.mu.Lock()
	if c.state != StateFinished {
		c.mu.Unlock()
		return ErrNotFinished
	}
	c.cancelAdvanceLocked()
	c.resetScoreLocked()
	c.state = StateReady
	c.unlockAndNotify()
	return nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers f to be called after every transition. The returned function unsubscribes.
func (c *Controller) Subscribe(f func(Snapshot)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.observers[id] = f
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

func (c *Controller) SpeakWord(ctx context.Context) error {
	word, err := c.currentWord()
	if err != nil {
		return err
	}
	return c.speak(func(s Speaker) error { return s.Speak(ctx, word.Character) })
}

func (c *Controller) SpeakPinyin(ctx context.Context) error {
	word, err := c.currentWord()
	if err != nil {
		return err
	}
	return c.speak(func(s Speaker) error { return s.SpeakPinyin(ctx, word.Pinyin) })
}

func (c *Controller) SpeakMeaning(ctx context.Context) error {
	word, err := c.currentWord()
	if err != nil {
		return err
	}
	return c.speak(func(s Speaker) error { return s.SpeakMeaning(ctx, word.Meaning) })
}

// ShowStrokeOrder announces the stroke order and returns a player for the current word.
// The player is returned even when the announcement fails.
func (c *Controller) ShowStrokeOrder(ctx context.Context) (*stroke.Player, error) {
	word, err := c.currentWord()
	if err != nil {
		return nil, err
	}
	player := stroke.NewPlayer(word.Strokes, c.deps.StrokeTiming, c.deps.Clock)
	return player, c.speak(func(s Speaker) error { return s.Speak(ctx, speech.PhraseStrokeOrder) })
}

func (c *Controller) speak(f func(Speaker) error) error {
	if c.deps.Speech == nil {
		return nil
	}
	return f(c.deps.Speech)
}

func (c *Controller) currentWord() (vocabulary.WordEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return vocabulary.WordEntry{}, ErrNotReady
	}
	return c.words[c.position], nil
}

func (c *Controller) scheduledAdvance(epoch uint64) {
	c.mu.Lock()
	if epoch != c.epoch || c.state != StateReady {
		c.mu.Unlock()
		return
	}
	c.advanceTimer = nil
	c.epoch++
	c.advanceLocked()
	c.unlockAndNotify()
}

func (c *Controller) advanceLocked() {
	if c.position+1 < len(c.words) {
		c.position++
		return
	}
	c.state = StateFinished
	c.summary = &Summary{
		Score:    c.score,
		Answered: c.answered,
		Words:    len(c.words),
		Accuracy: accuracy(c.score, c.answered),
	}
}

func (c *Controller) cancelAdvanceLocked() {
	c.epoch++
	if c.advanceTimer != nil {
		c.advanceTimer.Stop()
		c.advanceTimer = nil
	}
}

func (c *Controller) resetScoreLocked() {
	c.position = 0
	c.score = 0
	c.answered = 0
	c.summary = nil
}

func (c *Controller) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		State:          c.state,
		Difficulty:     c.difficulty,
		Position:       c.position,
		Total:          len(c.words),
		Score:          c.score,
		Answered:       c.answered,
		Accuracy:       accuracy(c.score, c.answered),
		AdvancePending: c.advanceTimer != nil,
		LoadError:      c.loadErr,
	}
	if c.state == StateReady {
		word := c.words[c.position]
		snapshot.Word = &word
	}
	if c.summary != nil {
		summary := *c.summary
		snapshot.Summary = &summary
	}
	return snapshot
}

func (c *Controller) unlockAndNotify() {
	snapshot := c.snapshotLocked()
	observers := make([]func(Snapshot), 0, len(c.observers))
	for _, f := range c.observers {
		observers = append(observers, f)
	}
	c.mu.Unlock()

	for _, f := range observers {
		f(snapshot)
	}
}

func accuracy(score, answered int) int {
	if answered == 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(answered)))
}

// IsCatalogLoadError reports whether err is a failed (retryable) load.
func IsCatalogLoadError(err error) bool {
	var loadErr *CatalogLoadError
	return errors.As(err, &loadErr)
}
