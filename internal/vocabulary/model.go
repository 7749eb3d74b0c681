// Package vocabulary provides the character catalog and lesson groupings.
package vocabulary

import "errors"

const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

var ErrInvalidDifficulty = errors.New("difficulty must be between 1 and 5")

// WordEntry is a single character (or word) in the catalog.
type WordEntry struct {
	ID         string   `yaml:"id" json:"id" validate:"required"`
	Character  string   `yaml:"character" json:"character" validate:"required"`
	Pinyin     string   `yaml:"pinyin" json:"pinyin" validate:"required"`
	Meaning    string   `yaml:"meaning" json:"meaning"`
	Difficulty int      `yaml:"difficulty" json:"difficulty" validate:"min=1,max=5"`
	Strokes    []string `yaml:"strokes,omitempty" json:"strokes"`
	AudioURL   string   `yaml:"audio_url,omitempty" json:"audioUrl,omitempty"`
	ImageURL   string   `yaml:"image_url,omitempty" json:"imageUrl,omitempty"`
}

// Lesson groups catalog entries for presentation. It is not used for recommendations.
type Lesson struct {
	ID         string   `yaml:"id" json:"id" validate:"required"`
	Title      string   `yaml:"title" json:"title"`
	Difficulty int      `yaml:"difficulty" json:"difficulty" validate:"min=1,max=5"`
	Category   string   `yaml:"category" json:"category"`
	WordIDs    []string `yaml:"words" json:"wordIds"`
}

// ValidDifficulty reports whether level is within the supported range.
func ValidDifficulty(level int) bool {
	return level >= MinDifficulty && level <= MaxDifficulty
}
