// Package progress tracks per-user mastery of catalog words and the learner's settings.
package progress

import (
	"time"

	"github.com/at-ishikawa/literacy/internal/vocabulary"
)

// MasteredThreshold is the mastery level at which a word no longer needs practice.
const MasteredThreshold = 80

// MasteryRecord is the learning state of one user for one word.
type MasteryRecord struct {
	UserID        string    `json:"userId"`
	WordID        string    `json:"wordId"`
	CorrectCount  int       `json:"correctCount"`
	TotalAttempts int       `json:"totalAttempts"`
	LastStudied   time.Time `json:"lastStudied"`
	// MasteryLevel is derived from the counts. Use Recompute instead of setting it.
	MasteryLevel int `json:"masteryLevel"`
}

// Recompute derives MasteryLevel from the stored counts.
func (r *MasteryRecord) Recompute() {
	r.MasteryLevel = masteryLevel(r.CorrectCount, r.TotalAttempts)
}

// NeedsPractice reports whether the word is still below the mastered threshold.
func (r MasteryRecord) NeedsPractice() bool {
	return r.MasteryLevel < MasteredThreshold
}

func masteryLevel(correct, total int) int {
	if total <= 0 || correct <= 0 {
		return 0
	}
	return min(100, 100*correct/total)
}

type FontSize string

const (
	FontSizeSmall      FontSize = "small"
	FontSizeMedium     FontSize = "medium"
	FontSizeLarge      FontSize = "large"
	FontSizeExtraLarge FontSize = "extra-large"
)

// UserSettings is stored once per installation.
type UserSettings struct {
	FontSize     FontSize `json:"fontSize" validate:"oneof=small medium large extra-large"`
	VoiceEnabled bool     `json:"voiceEnabled"`
	Difficulty   int      `json:"difficulty" validate:"min=1,max=5"`
	DailyGoal    int      `json:"dailyGoal" validate:"min=1"`
}

func DefaultSettings() UserSettings {
	return UserSettings{
		FontSize:     FontSizeLarge,
		VoiceEnabled: true,
		Difficulty:   vocabulary.MinDifficulty,
		DailyGoal:    10,
	}
}
