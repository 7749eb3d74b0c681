// Package report writes a learner's progress report as Markdown, and optionally PDF.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/lo"

	"github.com/at-ishikawa/literacy/internal/assets"
	"github.com/at-ishikawa/literacy/internal/clock"
	"github.com/at-ishikawa/literacy/internal/pdf"
	"github.com/at-ishikawa/literacy/internal/progress"
	"github.com/at-ishikawa/literacy/internal/statistics"
	"github.com/at-ishikawa/literacy/internal/vocabulary"
)

const recommendationCount = 5

type Recommender interface {
	Recommend(ctx context.Context, userID string, desiredCount int) ([]vocabulary.WordEntry, error)
}

type Options struct {
	OutputDirectory string
	// TemplatePath overrides the embedded template when it exists.
	TemplatePath string
	PDF          bool
	PDFOptions   pdf.Options
}

// Files are the paths written by Generate. PDF is empty unless requested.
type Files struct {
	Markdown string
	PDF      string
}

type Generator struct {
	vocabulary  vocabulary.Store
	progress    progress.Repository
	settings    progress.SettingsRepository
	recommender Recommender
	clock       clock.Clock
	logger      *slog.Logger
}

func NewGenerator(
	vocab vocabulary.Store,
	records progress.Repository,
	settings progress.SettingsRepository,
	recommender Recommender,
	clk clock.Clock,
) *Generator {
	return &Generator{
		vocabulary:  vocab,
		progress:    records,
		settings:    settings,
		recommender: recommender,
		clock:       clk,
		logger:      slog.Default(),
	}
}

// Build collects the report data for userID. Unreadable records are left out of the report.
func (g *Generator) Build(ctx context.Context, userID string) (assets.ProgressReport, error) {
	now := g.clock.Now()
	records, err := g.progress.List(ctx, userID)
	if err != nil {
		g.logger.Warn("some mastery records are missing from the report", "user_id", userID, "error", err)
	}
	settings, err := g.settings.Get(ctx)
	if err != nil {
		g.logger.Warn("using default settings for the report", "error", err)
	}

	words, err := g.vocabulary.All(ctx)
	if err != nil {
		return assets.ProgressReport{}, fmt.Errorf("vocabulary.All() > %w", err)
	}
	wordsByID := lo.KeyBy(words, func(w vocabulary.WordEntry) string {
		return w.ID
	})

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].MasteryLevel > records[j].MasteryLevel
	})
	reportWords := make([]assets.ReportWord, 0, len(records))
	for _, record := range records {
		word, ok := wordsByID[record.WordID]
		if !ok {
			g.logger.Debug("skipping a record of an unknown word", "word_id", record.WordID)
			continue
		}
		reportWord := toReportWord(word)
		reportWord.MasteryLevel = record.MasteryLevel
		reportWord.CorrectCount = record.CorrectCount
		reportWord.TotalAttempts = record.TotalAttempts
		reportWord.LastStudied = record.LastStudied
		reportWords = append(reportWords, reportWord)
	}

	recommended, err := g.recommender.Recommend(ctx, userID, recommendationCount)
	if err != nil {
		return assets.ProgressReport{}, fmt.Errorf("recommender.Recommend() > %w", err)
	}

	summary := statistics.Summarize(records, settings, now, 0, 0)
	return assets.ProgressReport{
		UserID:      userID,
		GeneratedAt: now,
		Summary: assets.ReportSummary{
			WordsStudied:   summary.WordsStudied,
			WordsMastered:  summary.WordsMastered,
			AverageMastery: summary.AverageMastery,
			StudiedToday:   summary.StudiedToday,
			DailyGoal:      summary.DailyGoal,
			GoalReached:    summary.GoalReached,
		},
		Periods: lo.Map(summary.Periods, func(p statistics.PeriodStatistics, _ int) assets.ReportPeriod {
			return assets.ReportPeriod{
				Period:         p.Period,
				WordsStudied:   p.WordsStudied,
				WordsMastered:  p.WordsMastered,
				Attempts:       p.Attempts,
				CorrectAnswers: p.CorrectAnswers,
			}
		}),
		Words:           reportWords,
		Recommendations: lo.Map(recommended, func(w vocabulary.WordEntry, _ int) assets.ReportWord { return toReportWord(w) }),
	}, nil
}

// Generate writes the report of userID into the output directory.
func (g *Generator) Generate(ctx context.Context, userID string, options Options) (Files, error) {
	data, err := g.Build(ctx, userID)
	if err != nil {
		return Files{}, err
	}

	if err := os.MkdirAll(options.OutputDirectory, 0755); err != nil {
		return Files{}, fmt.Errorf("os.MkdirAll(%s) > %w", options.OutputDirectory, err)
	}
	fileName := fmt.Sprintf("progress-%s-%s.md", userID, data.GeneratedAt.Format("20060102"))
	markdownPath := filepath.Join(options.OutputDirectory, fileName)

	output, err := os.Create(markdownPath)
	if err != nil {
		return Files{}, fmt.Errorf("os.Create(%s) > %w", markdownPath, err)
	}
	defer func() {
		_ = output.Close()
	}()
	if err := assets.WriteProgressReport(output, options.TemplatePath, data); err != nil {
		return Files{}, fmt.Errorf("assets.WriteProgressReport(%s, %s) > %w", markdownPath, options.TemplatePath, err)
	}
	if err := output.Close(); err != nil {
		return Files{}, fmt.Errorf("output.Close() > %w", err)
	}

	files := Files{Markdown: markdownPath}
	if options.PDF {
		pdfPath, err := pdf.ConvertMarkdownToPDF(markdownPath, options.PDFOptions)
		if err != nil {
			return files, fmt.Errorf("pdf.ConvertMarkdownToPDF(%s) > %w", markdownPath, err)
		}
		files.PDF = pdfPath
	}
	g.logger.Info("progress report written", "user_id", userID, "markdown", files.Markdown, "pdf", files.PDF)
	return files, nil
}

func toReportWord(w vocabulary.WordEntry) assets.ReportWord {
	return assets.ReportWord{
		Character: w.Character,
		Pinyin:    w.Pinyin,
		Meaning:   w.Meaning,
	}
}
