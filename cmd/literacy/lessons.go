package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/literacy/internal/vocabulary"
)

func newLessonsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lessons",
		Short: "List lessons in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			catalog, err := vocabulary.Open(cfg.Catalog.Path)
			if err != nil {
				return fmt.Errorf("vocabulary.Open() > %w", err)
			}

			ctx := context.Background()
			lessons, err := catalog.Lessons(ctx)
			if err != nil {
				return fmt.Errorf("catalog.Lessons() > %w", err)
			}

			out := cmd.OutOrStdout()
			bold := color.New(color.Bold)
			for _, lesson := range lessons {
				words, err := catalog.LessonWords(ctx, lesson.ID)
				if err != nil {
					return fmt.Errorf("catalog.LessonWords(%s) > %w", lesson.ID, err)
				}
				_, _ = bold.Fprintf(out, "%s", lesson.Title)
				fmt.Fprintf(out, " [%s, difficulty %d]\n", lesson.Category, lesson.Difficulty)
				characters := lo.Map(words, func(w vocabulary.WordEntry, _ int) string {
					return w.Character
				})
				fmt.Fprintf(out, "  %s\n", strings.Join(characters, " "))
			}
			return nil
		},
	}
}
