package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TopicTracker/internal/domain"
)

func TestQuery_ScopeTitleIgnoresFullText(t *testing.T) {
	q, err := New("dbs", "databases", true, ScopeTitle)
	require.NoError(t, err)

	item := domain.Item{
		Title:    "A week in infrastructure",
		FullText: "We migrated our databases to a new region.",
	}
	assert.False(t, q.Matches(item), "title-scoped query must not inspect full text")

	item.Title = "Databases at scale"
	assert.True(t, q.Matches(item))
}

func TestQuery_ScopeAllSearchesBothFields(t *testing.T) {
	q, err := New("dbs", "databases", true, ScopeAll)
	require.NoError(t, err)

	assert.True(t, q.Matches(domain.Item{
		Title:    "A week in infrastructure",
		FullText: "We migrated our databases to a new region.",
	}))
	assert.True(t, q.Matches(domain.Item{Title: "Databases at scale"}))
}

func TestQuery_MissingFullTextIsEmpty(t *testing.T) {
	q, err := New("dbs", "databases", true, ScopeAll)
	require.NoError(t, err)

	// No full text at all: the term can only match the title.
	assert.False(t, q.Matches(domain.Item{Title: "Compilers weekly"}))
}

func TestNew_RejectsMalformedExpression(t *testing.T) {
	_, err := New("broken", `("a" OR`, true, ScopeAll)
	require.Error(t, err)

	var parseErr *domain.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParseScope(t *testing.T) {
	scope, err := ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeAll, scope)

	scope, err = ParseScope("title")
	require.NoError(t, err)
	assert.Equal(t, ScopeTitle, scope)

	_, err = ParseScope("body")
	assert.Error(t, err)
}
