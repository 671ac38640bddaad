package filter

import (
	"time"

	"TopicTracker/internal/domain"
	"TopicTracker/internal/query"
)

// Thresholds holds the minimum-popularity admission settings. The threshold
// bounds volume before classification; it is not a correctness filter.
type Thresholds struct {
	Default   int
	PerSource map[domain.Source]int
}

// For resolves the threshold applied to items of a source.
func (t Thresholds) For(source domain.Source) int {
	if v, ok := t.PerSource[source]; ok {
		return v
	}
	return t.Default
}

// Engine applies the admission threshold and tags admitted items with the
// queries they satisfy.
type Engine struct {
	queries    []query.Query
	thresholds Thresholds
}

// NewEngine builds an engine over an immutable query snapshot.
func NewEngine(queries []query.Query, thresholds Thresholds) *Engine {
	return &Engine{queries: queries, thresholds: thresholds}
}

// QueryCount reports how many enabled queries the engine evaluates.
func (e *Engine) QueryCount() int { return len(e.queries) }

// Admit reports whether an item's popularity clears the source threshold.
func (e *Engine) Admit(item domain.Item) bool {
	return item.Popularity >= e.thresholds.For(item.Source)
}

// Classify evaluates every query independently against the same item
// snapshot. Query order does not affect the result set. An empty result is
// valid: the item is still stored, it just carries no matches.
func (e *Engine) Classify(item domain.Item, now time.Time) []domain.MatchAnnotation {
	var matches []domain.MatchAnnotation
	for _, q := range e.queries {
		if !q.Matches(item) {
			continue
		}
		matches = append(matches, domain.MatchAnnotation{
			ItemID:    item.ID,
			Source:    item.Source,
			QueryName: q.Name,
			MatchedAt: now.UTC(),
		})
	}
	return matches
}
