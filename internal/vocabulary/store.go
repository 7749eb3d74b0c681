package vocabulary

import (
	"context"
	"fmt"

	"github.com/samber/lo"
)

//go:generate mockgen -source=store.go -destination=../mocks/vocabulary/mock_store.go -package=mock_vocabulary

// Store is a read-only catalog of words and lessons.
type Store interface {
	WordsByDifficulty(ctx context.Context, level int) ([]WordEntry, error)
	All(ctx context.Context) ([]WordEntry, error)
	FindByID(ctx context.Context, id string) (*WordEntry, error)
	Lessons(ctx context.Context) ([]Lesson, error)
	FindLesson(ctx context.Context, id string) (*Lesson, error)
	LessonWords(ctx context.Context, id string) ([]WordEntry, error)
}

// MemoryStore keeps the catalog in memory. Entries are never mutated after construction.
type MemoryStore struct {
	words   []WordEntry
	byID    map[string]int
	lessons []Lesson
}

// NewMemoryStore builds a catalog from words and lessons, preserving their order.
func NewMemoryStore(words []WordEntry, lessons []Lesson) (*MemoryStore, error) {
	byID := make(map[string]int, len(words))
	for i, w := range words {
		if w.ID == "" {
			return nil, fmt.Errorf("word at index %d has no id", i)
		}
		if _, ok := byID[w.ID]; ok {
			return nil, fmt.Errorf("duplicate word id %q", w.ID)
		}
		if !ValidDifficulty(w.Difficulty) {
			return nil, fmt.Errorf("word %q: %w", w.ID, ErrInvalidDifficulty)
		}
		byID[w.ID] = i
	}
	for _, l := range lessons {
		for _, id := range l.WordIDs {
			if _, ok := byID[id]; !ok {
				return nil, fmt.Errorf("lesson %q references unknown word %q", l.ID, id)
			}
		}
	}

	return &MemoryStore{
		words:   cloneWords(words),
		byID:    byID,
		lessons: lessons,
	}, nil
}

func (s *MemoryStore) WordsByDifficulty(_ context.Context, level int) ([]WordEntry, error) {
	if !ValidDifficulty(level) {
		return nil, fmt.Errorf("level %d: %w", level, ErrInvalidDifficulty)
	}
	return cloneWords(lo.Filter(s.words, func(w WordEntry, _ int) bool {
		return w.Difficulty == level
	})), nil
}

func (s *MemoryStore) All(_ context.Context) ([]WordEntry, error) {
	return cloneWords(s.words), nil
}

// FindByID returns nil without an error when the id is unknown.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*WordEntry, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	w := cloneWord(s.words[i])
	return &w, nil
}

func (s *MemoryStore) Lessons(_ context.Context) ([]Lesson, error) {
	return append([]Lesson(nil), s.lessons...), nil
}

// FindLesson returns nil without an error when the id is unknown.
func (s *MemoryStore) FindLesson(_ context.Context, id string) (*Lesson, error) {
	l, ok := lo.Find(s.lessons, func(l Lesson) bool { return l.ID == id })
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (s *MemoryStore) LessonWords(ctx context.Context, id string) ([]WordEntry, error) {
	lesson, err := s.FindLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, fmt.Errorf("lesson %q not found", id)
	}
	return lo.Map(lesson.WordIDs, func(wordID string, _ int) WordEntry {
		return cloneWord(s.words[s.byID[wordID]])
	}), nil
}

func cloneWords(words []WordEntry) []WordEntry {
	return lo.Map(words, func(w WordEntry, _ int) WordEntry { return cloneWord(w) })
}

// cloneWord always yields a non-nil stroke list so that it serializes as [].
func cloneWord(w WordEntry) WordEntry {
	strokes := make([]string, len(w.Strokes))
	copy(strokes, w.Strokes)
	w.Strokes = strokes
	return w
}
