// Package statistics summarizes mastery records for reports and the CLI.
package statistics

import (
	"fmt"
	"sort"
	"time"

	"github.com/at-ishikawa/literacy/internal/progress"
)

// PeriodStatistics holds statistics for the words last studied in a month
type PeriodStatistics struct {
	Period         string // "2025-01"
	WordsStudied   int
	WordsMastered  int
	Attempts       int
	CorrectAnswers int
}

// Summary holds totals across every record of a user
type Summary struct {
	WordsStudied   int
	WordsMastered  int
	AverageMastery int // floor of the mean mastery level, 0 when nothing was studied
	Attempts       int
	CorrectAnswers int
	StudiedToday   int // words whose last attempt happened on the same calendar day as now
	DailyGoal      int
	GoalReached    bool
	Periods        []PeriodStatistics // newest first
}

// Summarize aggregates records. It accepts optional year and month filters for the
// periods (0 means no filter); totals always cover every record.
func Summarize(records []progress.MasteryRecord, settings progress.UserSettings, now time.Time, year, month int) Summary {
	summary := Summary{DailyGoal: settings.DailyGoal}
	periods := make(map[string]*PeriodStatistics)

	var masterySum int
	for _, record := range records {
		if record.TotalAttempts == 0 {
			continue
		}
		summary.WordsStudied++
		summary.Attempts += record.TotalAttempts
		summary.CorrectAnswers += record.CorrectCount
		masterySum += record.MasteryLevel
		mastered := !record.NeedsPractice()
		if mastered {
			summary.WordsMastered++
		}
		if sameDay(record.LastStudied, now) {
			summary.StudiedToday++
		}

		if record.LastStudied.IsZero() {
			continue
		}
		studied := record.LastStudied.In(now.Location())
		if !matchesFilter(studied.Year(), int(studied.Month()), year, month) {
			continue
		}
		key := fmt.Sprintf("%d-%02d", studied.Year(), int(studied.Month()))
		period, ok := periods[key]
		if !ok {
			period = &PeriodStatistics{Period: key}
			periods[key] = period
		}
		period.WordsStudied++
		period.Attempts += record.TotalAttempts
		period.CorrectAnswers += record.CorrectCount
		if mastered {
			period.WordsMastered++
		}
	}

	if summary.WordsStudied > 0 {
		summary.AverageMastery = masterySum / summary.WordsStudied
	}
	summary.GoalReached = summary.DailyGoal > 0 && summary.StudiedToday >= summary.DailyGoal

	summary.Periods = make([]PeriodStatistics, 0, len(periods))
	for _, period := range periods {
		summary.Periods = append(summary.Periods, *period)
	}
	// Sort by period descending (newest first)
	sort.Slice(summary.Periods, func(i, j int) bool {
		return summary.Periods[i].Period > summary.Periods[j].Period
	})
	return summary
}

func sameDay(t, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	t = t.In(now.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func matchesFilter(recordYear, recordMonth, filterYear, filterMonth int) bool {
	if filterYear == 0 {
		return true
	}
	if recordYear != filterYear {
		return false
	}
	if filterMonth == 0 {
		return true
	}
	return recordMonth == filterMonth
}
