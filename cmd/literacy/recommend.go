package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRecommendCommand() *cobra.Command {
	var (
		count  int
		userID string
	)
	command := &cobra.Command{
		Use:   "recommend",
		Short: "Show the words to study next",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			words, err := a.newRecommender().Recommend(ctx, userID, count)
			if err != nil {
				return fmt.Errorf("Recommend() > %w", err)
			}

			out := cmd.OutOrStdout()
			if len(words) == 0 {
				fmt.Fprintln(out, "Nothing to recommend.")
				return nil
			}
			bold := color.New(color.Bold)
			for i, word := range words {
				fmt.Fprintf(out, "%d. ", i+1)
				_, _ = bold.Fprint(out, word.Character)
				fmt.Fprintf(out, "  %s  %s (difficulty %d)\n", word.Pinyin, word.Meaning, word.Difficulty)
			}
			return nil
		},
	}
	command.Flags().IntVarP(&count, "count", "n", 5, "number of words")
	command.Flags().StringVar(&userID, "user", "", "user id (default is user.id in the config)")
	return command
}
