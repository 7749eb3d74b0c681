// Package recommend picks the next words a learner should study.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/samber/lo"

	"github.com/at-ishikawa/literacy/internal/progress"
	"github.com/at-ishikawa/literacy/internal/vocabulary"
)

// Selector combines weak mastery records with unseen catalog words.
type Selector struct {
	vocabulary vocabulary.Store
	progress   progress.Repository
	settings   progress.SettingsRepository
	logger     *slog.Logger
}

func NewSelector(vocab vocabulary.Store, records progress.Repository, settings progress.SettingsRepository) *Selector {
	return &Selector{
		vocabulary: vocab,
		progress:   records,
		settings:   settings,
		logger:     slog.Default(),
	}
}

// Recommend returns at most desiredCount words for userID.
// Words still below the mastered threshold come first, weakest first. The rest is filled
// with catalog words the user has never attempted, up to the configured difficulty, in
// catalog order. Identifiers that are no longer in the catalog are dropped.
//
// The result as a whole is not in catalog order: a weak word late in the catalog is
// returned before an earlier one. Callers that display words by catalog position must
// sort the result themselves.
func (s *Selector) Recommend(ctx context.Context, userID string, desiredCount int) ([]vocabulary.WordEntry, error) {
	if desiredCount <= 0 {
		return []vocabulary.WordEntry{}, nil
	}

	records, err := s.progress.List(ctx, userID)
	if err != nil {
		// partial records are still usable
		s.logger.Warn("failed to load some mastery records", "user_id", userID, "error", err)
	}

	weak := lo.Filter(records, func(r progress.MasteryRecord, _ int) bool {
		return r.NeedsPractice()
	})
	sort.SliceStable(weak, func(i, j int) bool {
		return weak[i].MasteryLevel < weak[j].MasteryLevel
	})
	ids := lo.Map(weak, func(r progress.MasteryRecord, _ int) string {
		return r.WordID
	})
	if len(ids) > desiredCount {
		ids = ids[:desiredCount]
	}

	catalog, err := s.vocabulary.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("vocabulary.All() > %w", err)
	}

	if len(ids) < desiredCount {
		settings, err := s.settings.Get(ctx)
		if err != nil {
			s.logger.Warn("failed to load settings, using defaults", "error", err)
		}
		seen := lo.Associate(records, func(r progress.MasteryRecord) (string, struct{}) {
			return r.WordID, struct{}{}
		})
		for _, word := range catalog {
			if len(ids) >= desiredCount {
				break
			}
			if _, ok := seen[word.ID]; ok {
				continue
			}
			if word.Difficulty > settings.Difficulty {
				continue
			}
			ids = append(ids, word.ID)
		}
	}

	byID := lo.KeyBy(catalog, func(w vocabulary.WordEntry) string {
		return w.ID
	})
	result := make([]vocabulary.WordEntry, 0, len(ids))
	for _, id := range ids {
		word, ok := byID[id]
		if !ok {
			s.logger.Debug("dropping recommendation for unknown word", "word_id", id)
			continue
		}
		result = append(result, word)
	}
	return result, nil
}
