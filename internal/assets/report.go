package assets

import (
	_ "embed"
	"fmt"
	"io"
	"text/template"
	"time"
)

const progressReportTemplateName = "progress-report.md.go.tmpl"

//go:embed templates/progress-report.md.go.tmpl
var fallbackProgressReportTemplate string

// ProgressReport is the data passed to the progress report template.
type ProgressReport struct {
	UserID          string
	GeneratedAt     time.Time
	Summary         ReportSummary
	Periods         []ReportPeriod
	Words           []ReportWord
	Recommendations []ReportWord
}

type ReportSummary struct {
	WordsStudied   int
	WordsMastered  int
	AverageMastery int
	StudiedToday   int
	DailyGoal      int
	GoalReached    bool
}

type ReportPeriod struct {
	Period         string
	WordsStudied   int
	WordsMastered  int
	Attempts       int
	CorrectAnswers int
}

// ReportWord is a catalog word, with the learner's mastery when it has been studied.
type ReportWord struct {
	Character     string
	Pinyin        string
	Meaning       string
	MasteryLevel  int
	CorrectCount  int
	TotalAttempts int
	LastStudied   time.Time
}

func ParseProgressReportTemplate(templatePath string) (*template.Template, error) {
	return parseTemplateWithFallback(templatePath, progressReportTemplateName, fallbackProgressReportTemplate)
}

func WriteProgressReport(output io.Writer, templatePath string, report ProgressReport) error {
	tmpl, err := ParseProgressReportTemplate(templatePath)
	if err != nil {
		return fmt.Errorf("ParseProgressReportTemplate() > %w", err)
	}
	if err := tmpl.Execute(output, report); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}
