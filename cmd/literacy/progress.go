package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/literacy/internal/progress"
	"github.com/at-ishikawa/literacy/internal/statistics"
)

func newProgressCommand() *cobra.Command {
	var (
		userID string
		year   int
		month  int
	)
	command := &cobra.Command{
		Use:   "progress",
		Short: "Show mastery of studied words",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month < 0 || month > 12 {
				return fmt.Errorf("invalid month %d", month)
			}
			if month != 0 && year == 0 {
				return errors.New("--month requires --year")
			}

			ctx := context.Background()
			a, err := newApp(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
			}()
			if userID == "" {
				userID = a.cfg.User.ID
			}

			out := cmd.OutOrStdout()
			records, err := a.records.List(ctx, userID)
			if err != nil {
				_, _ = color.New(color.FgYellow).Fprintf(out, "Some records could not be read: %v\n", err)
			}
			settings, _ := a.settings.Get(ctx)
			summary := statistics.Summarize(records, settings, a.clock.Now(), year, month)
			writeProgress(out, records, summary, func(wordID string) string {
				word, err := a.catalog.FindByID(ctx, wordID)
				if err != nil || word == nil {
					return wordID
				}
				return word.Character
			})
			return nil
		},
	}
	command.Flags().StringVar(&userID, "user", "", "user id (default is user.id in the config)")
	command.Flags().IntVar(&year, "year", 0, "only show statistics of this year")
	command.Flags().IntVar(&month, "month", 0, "only show statistics of this month (requires --year)")
	return command
}

func writeProgress(out io.Writer, records []progress.MasteryRecord, summary statistics.Summary, character func(wordID string) string) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Fprintf(out, "Words studied: %d, mastered: %d, average mastery: %d%%\n",
		summary.WordsStudied, summary.WordsMastered, summary.AverageMastery)
	fmt.Fprintf(out, "Today: %d / %d", summary.StudiedToday, summary.DailyGoal)
	if summary.GoalReached {
		_, _ = green.Fprint(out, " goal reached")
	}
	fmt.Fprintln(out)

	for _, period := range summary.Periods {
		fmt.Fprintf(out, "  %s: %d studied, %d mastered, %d/%d correct\n",
			period.Period, period.WordsStudied, period.WordsMastered, period.CorrectAnswers, period.Attempts)
	}

	for _, record := range records {
		c := red
		if !record.NeedsPractice() {
			c = green
		}
		fmt.Fprintf(out, "%s  ", character(record.WordID))
		_, _ = c.Fprintf(out, "%3d%%", record.MasteryLevel)
		fmt.Fprintf(out, "  %d/%d\n", record.CorrectCount, record.TotalAttempts)
	}
}
