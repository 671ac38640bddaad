package usecase

import (
	"context"
	"fmt"

	"TopicTracker/internal/domain"
)

// RefilterResult reports what an explicit re-filter changed.
type RefilterResult struct {
	Period  domain.Period
	Items   int
	Matched int
}

// Refilter re-runs admission and classification over every stored item of a
// period against the current query set. By default new matches are unioned
// with the stored ones (recomputation is additive); reset rebuilds every
// match set from scratch. Historical matches are otherwise never deleted.
// The whole read-classify-write runs inside the store's locked update, so a
// concurrent run's append cannot land in between and be overwritten. The
// operation is idempotent: re-running it with the same queries changes
// nothing.
func (p *Pipeline) Refilter(ctx context.Context, period domain.Period, reset bool) (RefilterResult, error) {
	result := RefilterResult{Period: period}

	err := p.store.Update(period, func(records []domain.Record) ([]domain.Record, error) {
		if len(records) == 0 {
			return nil, fmt.Errorf("period %s has no stored items", period)
		}

		now := p.now().UTC()
		updated := make([]domain.Record, 0, len(records))
		for _, rec := range records {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			var matches []domain.MatchAnnotation
			if p.classifier.Admit(rec.Item) {
				matches = p.classifier.Classify(rec.Item, now)
			}

			if !reset {
				matches = unionMatches(rec.Matches, matches)
			}

			updated = append(updated, domain.Record{Item: rec.Item, Matches: matches})
			if len(matches) > 0 {
				result.Matched++
			}
		}
		result.Items = len(updated)
		return updated, nil
	})
	if err != nil {
		return RefilterResult{Period: period}, err
	}

	p.info("period refiltered",
		"period", period.String(),
		"items", result.Items,
		"matched", result.Matched,
		"reset", reset)

	return result, nil
}

func unionMatches(stored, fresh []domain.MatchAnnotation) []domain.MatchAnnotation {
	present := make(map[string]bool, len(stored))
	for _, m := range stored {
		present[m.QueryName] = true
	}
	merged := stored
	for _, m := range fresh {
		if present[m.QueryName] {
			continue
		}
		present[m.QueryName] = true
		merged = append(merged, m)
	}
	return merged
}
