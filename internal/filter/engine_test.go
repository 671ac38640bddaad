package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TopicTracker/internal/domain"
	"TopicTracker/internal/query"
)

func mustQuery(t *testing.T, name, expr string, scope query.Scope) query.Query {
	t.Helper()
	q, err := query.New(name, expr, true, scope)
	require.NoError(t, err)
	return q
}

func TestThresholds_For(t *testing.T) {
	th := Thresholds{Default: 10, PerSource: map[domain.Source]int{domain.SourceArxiv: 0}}
	assert.Equal(t, 10, th.For(domain.SourceHN))
	assert.Equal(t, 0, th.For(domain.SourceArxiv))
}

func TestEngine_Admit(t *testing.T) {
	engine := NewEngine(nil, Thresholds{Default: 30})

	assert.False(t, engine.Admit(domain.Item{Source: domain.SourceHN, Popularity: 25}))
	assert.True(t, engine.Admit(domain.Item{Source: domain.SourceHN, Popularity: 30}))
	assert.True(t, engine.Admit(domain.Item{Source: domain.SourceHN, Popularity: 45}))
}

func TestEngine_ClassifyMultipleQueries(t *testing.T) {
	// Two queries matching the same abstract yield one item with two
	// annotations.
	engine := NewEngine([]query.Query{
		mustQuery(t, "databases", "databases", query.ScopeAll),
		mustQuery(t, "storage engines", `"storage engine"`, query.ScopeAll),
		mustQuery(t, "rust", "rust", query.ScopeAll),
	}, Thresholds{Default: 0})

	now := time.Date(2024, time.February, 1, 12, 0, 0, 0, time.UTC)
	item := domain.Item{
		ID:       "2401.00001",
		Source:   domain.SourceArxiv,
		Title:    "A survey of modern databases",
		FullText: "We benchmark every storage engine released since 2015.",
	}

	matches := engine.Classify(item, now)
	require.Len(t, matches, 2)

	names := []string{matches[0].QueryName, matches[1].QueryName}
	assert.ElementsMatch(t, []string{"databases", "storage engines"}, names)
	for _, m := range matches {
		assert.Equal(t, item.ID, m.ItemID)
		assert.Equal(t, domain.SourceArxiv, m.Source)
		assert.Equal(t, now, m.MatchedAt)
	}
}

func TestEngine_ClassifyZeroMatches(t *testing.T) {
	engine := NewEngine([]query.Query{
		mustQuery(t, "rust", "rust", query.ScopeAll),
	}, Thresholds{Default: 0})

	matches := engine.Classify(domain.Item{Title: "Gardening tips"}, time.Now())
	assert.Empty(t, matches)
}

func TestEngine_ClassificationOrderIndependent(t *testing.T) {
	a := mustQuery(t, "a", "alpha", query.ScopeAll)
	b := mustQuery(t, "b", "beta", query.ScopeAll)
	item := domain.Item{Title: "alpha beta"}
	now := time.Now()

	forward := NewEngine([]query.Query{a, b}, Thresholds{}).Classify(item, now)
	reverse := NewEngine([]query.Query{b, a}, Thresholds{}).Classify(item, now)

	names := func(ms []domain.MatchAnnotation) []string {
		var out []string
		for _, m := range ms {
			out = append(out, m.QueryName)
		}
		return out
	}
	assert.ElementsMatch(t, names(forward), names(reverse))
}
