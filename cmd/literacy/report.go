package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/literacy/internal/pdf"
	"github.com/at-ishikawa/literacy/internal/report"
)

func newReportCommand() *cobra.Command {
	var (
		userID      string
		generatePDF bool
	)
	command := &cobra.Command{
		Use:   "report",
		Short: "Write a Markdown progress report",
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

			generator := report.NewGenerator(a.catalog, a.records, a.settings, a.newRecommender(), a.clock)
			files, err := generator.Generate(ctx, userID, report.Options{
				OutputDirectory: a.cfg.Reports.OutputDirectory,
				TemplatePath:    a.cfg.Reports.TemplatePath,
				PDF:             generatePDF,
				PDFOptions:      pdf.DefaultOptions(),
			})
			if err != nil {
				return fmt.Errorf("generator.Generate() > %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", files.Markdown)
			if files.PDF != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "PDF written to %s\n", files.PDF)
			}
			return nil
		},
	}
	command.Flags().StringVar(&userID, "user", "", "user id (default is user.id in the config)")
	command.Flags().BoolVar(&generatePDF, "pdf", false, "Generate PDF output in addition to markdown")
	return command
}
