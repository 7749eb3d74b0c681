package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/at-ishikawa/literacy/internal/session"
	"github.com/at-ishikawa/literacy/internal/stroke"
	"github.com/at-ishikawa/literacy/internal/vocabulary"
)

// StudyCLI drives a session.Controller from the terminal
type StudyCLI struct {
	*InteractiveCLI
	controller *session.Controller
}

func NewStudyCLI(controller *session.Controller, stdin io.Reader, stdout io.Writer) *StudyCLI {
	return &StudyCLI{
		InteractiveCLI: newInteractiveCLI(stdin, stdout),
		controller:     controller,
	}
}

// Session handles one prompt for the current state of the controller.
func (r *StudyCLI) Session(ctx context.Context) error {
	snapshot := r.controller.Snapshot()
	switch snapshot.State {
	case session.StateReady:
		return r.studyWord(ctx, snapshot)
	case session.StateFinished:
		return r.finished(ctx, snapshot)
	default:
		return r.chooseDifficulty(ctx, snapshot)
	}
}

func (r *StudyCLI) chooseDifficulty(ctx context.Context, snapshot session.Snapshot) error {
	if snapshot.LoadError != nil {
		_, _ = r.red.Fprintf(r.stdoutWriter, "Could not load words: %v\n", snapshot.LoadError)
		fmt.Fprint(r.stdoutWriter, "[r] retry  [1-5] difficulty  [q] quit: ")
	} else {
		fmt.Fprintf(r.stdoutWriter, "Choose a difficulty (%d-%d) or [q] quit: ", vocabulary.MinDifficulty, vocabulary.MaxDifficulty)
	}

	command, err := r.readCommand()
	if err != nil {
		return err
	}
	switch command {
	case "q", "quit":
		return errEnd
	case "r":
		if snapshot.LoadError != nil {
			return r.ignoreLoadError(r.controller.Retry(ctx))
		}
	}
	if level, ok := parseDifficulty(command); ok {
		return r.ignoreLoadError(r.controller.SelectDifficulty(ctx, level))
	}
	fmt.Fprintf(r.stdoutWriter, "Unknown command %q\n", command)
	return nil
}

func (r *StudyCLI) studyWord(ctx context.Context, snapshot session.Snapshot) error {
	word := snapshot.Word
	fmt.Fprintln(r.stdoutWriter)
	fmt.Fprintf(r.stdoutWriter, "[%s]  accuracy %d%%\n", snapshot.Indicator(), snapshot.Accuracy)
	_, _ = r.bold.Fprintf(r.stdoutWriter, "    %s\n", word.Character)
	fmt.Fprint(r.stdoutWriter, "[y] know  [n] don't know  [s] say  [p] pinyin  [m] meaning  [o] stroke order  [>] next  [1-5] difficulty  [q] quit: ")

	command, err := r.readCommand()
	if err != nil {
		return err
	}
	switch command {
	case "q", "quit":
		return errEnd
	case "y", "yes":
		return r.answer(ctx, true)
	case "n", "no":
		return r.answer(ctx, false)
	case "s":
		_ = r.controller.SpeakWord(ctx)
	case "p":
		fmt.Fprintf(r.stdoutWriter, "拼音：%s\n", word.Pinyin)
		_ = r.controller.SpeakPinyin(ctx)
	case "m":
		fmt.Fprintf(r.stdoutWriter, "意思是：%s\n", word.Meaning)
		_ = r.controller.SpeakMeaning(ctx)
	case "o":
		player, _ := r.controller.ShowStrokeOrder(ctx)
		if player != nil {
			return r.playStrokes(ctx, player)
		}
	case ">":
		if _, err := r.controller.Advance(); err != nil {
			return fmt.Errorf("controller.Advance() > %w", err)
		}
	default:
		if level, ok := parseDifficulty(command); ok {
			return r.ignoreLoadError(r.controller.SelectDifficulty(ctx, level))
		}
		fmt.Fprintf(r.stdoutWriter, "Unknown command %q\n", command)
	}
	return nil
}

func (r *StudyCLI) answer(ctx context.Context, correct bool) error {
	// subscribe before answering so that a fast advance is not missed
	advanced := make(chan struct{}, 1)
	unsubscribe := r.controller.Subscribe(func(s session.Snapshot) {
		if !s.AdvancePending {
			select {
			case advanced <- struct{}{}:
			default:
			}
		}
	})
	defer unsubscribe()

	result, err := r.controller.Answer(ctx, correct)
	if errors.Is(err, session.ErrAdvancePending) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("controller.Answer() > %w", err)
	}

	word := result.Word
	if result.Correct {
		fmt.Fprint(r.stdoutWriter, "✅ ")
		_, _ = r.green.Fprintf(r.stdoutWriter, "回答正确！ %s (%s) %s\n",
			r.bold.Sprint(word.Character), word.Pinyin, r.italic.Sprint(word.Meaning))
	} else {
		fmt.Fprint(r.stdoutWriter, "❌ ")
		_, _ = r.red.Fprintf(r.stdoutWriter, "再试一次 %s (%s) %s\n",
			r.bold.Sprint(word.Character), word.Pinyin, r.italic.Sprint(word.Meaning))
	}
	if result.PersistenceErr != nil {
		fmt.Fprintln(r.stdoutWriter, "   (progress could not be saved)")
	} else {
		fmt.Fprintf(r.stdoutWriter, "   mastery %d%% (%d/%d)\n",
			result.Record.MasteryLevel, result.Record.CorrectCount, result.Record.TotalAttempts)
	}

	if !result.AdvanceScheduled {
		return nil
	}
	select {
	case <-advanced:
	case <-ctx.Done():
	}
	return nil
}

func (r *StudyCLI) playStrokes(ctx context.Context, player *stroke.Player) error {
	snapshot := player.Snapshot()
	if len(snapshot.Strokes) == 0 {
		fmt.Fprintln(r.stdoutWriter, "No stroke data for this word.")
		return nil
	}
	fmt.Fprintf(r.stdoutWriter, "总笔画数: %d\n", len(snapshot.Strokes))

	var mu sync.Mutex
	done := make(chan struct{})
	lastIndex := -1
	unsubscribe := player.Subscribe(func(s stroke.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if s.State == stroke.StateIdle {
			select {
			case <-done:
			default:
				close(done)
			}
			return
		}
		if s.Index != lastIndex && s.Emphasis == stroke.EmphasisHighlight {
			lastIndex = s.Index
			fmt.Fprintf(r.stdoutWriter, "当前笔画: %d / %d  %s\n", s.Index+1, len(s.Strokes), renderStrokes(s))
		}
	})
	defer unsubscribe()

	player.Play()
	select {
	case <-done:
	case <-ctx.Done():
		player.Reset()
	}
	return nil
}

func renderStrokes(s stroke.Snapshot) string {
	parts := make([]string, 0, len(s.Strokes))
	for i, label := range s.Strokes {
		if !s.Visible[i] {
			parts = append(parts, "·")
			continue
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " ")
}

func (r *StudyCLI) finished(ctx context.Context, snapshot session.Snapshot) error {
	fmt.Fprintln(r.stdoutWriter)
	_, _ = r.bold.Fprintln(r.stdoutWriter, "Session complete!")
	if snapshot.Summary != nil {
		fmt.Fprintf(r.stdoutWriter, "Accuracy: %d%% (%d/%d)\n",
			snapshot.Summary.Accuracy, snapshot.Summary.Score, snapshot.Summary.Answered)
	}
	fmt.Fprint(r.stdoutWriter, "[r] restart  [1-5] difficulty  [q] quit: ")

	command, err := r.readCommand()
	if err != nil {
		return err
	}
	switch command {
	case "q", "quit":
		return errEnd
	case "r":
		if err := r.controller.Restart(); err != nil {
			return fmt.Errorf("controller.Restart() > %w", err)
		}
		return nil
	}
	if level, ok := parseDifficulty(command); ok {
		return r.ignoreLoadError(r.controller.SelectDifficulty(ctx, level))
	}
	fmt.Fprintf(r.stdoutWriter, "Unknown command %q\n", command)
	return nil
}

// ignoreLoadError drops errors the controller already exposes through its snapshot.
func (r *StudyCLI) ignoreLoadError(err error) error {
	if err == nil || session.IsCatalogLoadError(err) || errors.Is(err, session.ErrStaleLoad) {
		return nil
	}
	return err
}

func parseDifficulty(command string) (int, bool) {
	level, err := strconv.Atoi(command)
	if err != nil || !vocabulary.ValidDifficulty(level) {
		return 0, false
	}
	return level, true
}
