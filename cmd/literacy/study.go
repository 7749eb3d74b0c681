package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/literacy/internal/cli"
	"github.com/at-ishikawa/literacy/internal/vocabulary"
)

func newStudyCommand() *cobra.Command {
	var (
		difficulty int
		mute       bool
	)
	command := &cobra.Command{
		Use:   "study",
		Short: "Study characters with flashcards",
		RunE: func(cmd *cobra.Command, args []string) error {
			if difficulty != 0 && !vocabulary.ValidDifficulty(difficulty) {
				return vocabulary.ErrInvalidDifficulty
			}

			ctx := context.Background()
			a, err := newApp(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
			}()

			// feedback is spoken while the next prompt is printed
			stdout := &lockedWriter{w: cmd.OutOrStdout()}
			gateway := a.newSpeech(ctx, stdout)
			if mute {
				gateway.SetEnabled(false)
			}
			controller := a.newController(a.cfg.User.ID, gateway)
			defer controller.Close()
			if difficulty != 0 {
				// a failed load is shown by the first prompt
				_ = controller.SelectDifficulty(ctx, difficulty)
			}

			studyCLI := cli.NewStudyCLI(controller, cmd.InOrStdin(), stdout)
			fmt.Fprintf(stdout, "Study session started for %s. Type 'q' to quit.\n", a.cfg.User.ID)
			return studyCLI.Run(ctx, studyCLI)
		},
	}
	command.Flags().IntVarP(&difficulty, "difficulty", "d", 0, "difficulty to start with (1-5)")
	command.Flags().BoolVar(&mute, "mute", false, "disable speech for this session")
	return command
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
