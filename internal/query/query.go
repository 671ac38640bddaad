package query

import (
	"fmt"

	"TopicTracker/internal/domain"
)

// Scope selects which item fields a query inspects.
type Scope string

const (
	// ScopeTitle restricts matching to the item title.
	ScopeTitle Scope = "title"
	// ScopeAll matches against title plus full text (abstract, self-text).
	ScopeAll Scope = "all"
)

// ParseScope validates a scope value from a query definition file. An empty
// value defaults to ScopeAll.
func ParseScope(value string) (Scope, error) {
	switch Scope(value) {
	case "":
		return ScopeAll, nil
	case ScopeTitle, ScopeAll:
		return Scope(value), nil
	}
	return "", fmt.Errorf("unknown scope %q", value)
}

// Query is a named boolean filter, immutable for the duration of a run.
type Query struct {
	Name       string
	Expression string
	Enabled    bool
	Scope      Scope

	compiled Expr
}

// New compiles a query definition. The expression must parse; disabled
// queries still compile so definitions stay validated.
func New(name, expression string, enabled bool, scope Scope) (Query, error) {
	expr, err := Parse(expression)
	if err != nil {
		return Query{}, err
	}
	if scope == "" {
		scope = ScopeAll
	}
	return Query{
		Name:       name,
		Expression: expression,
		Enabled:    enabled,
		Scope:      scope,
		compiled:   expr,
	}, nil
}

// Matches evaluates the query against an item snapshot. A title-scoped query
// never inspects full text even when present; a missing full text is treated
// as empty and never matches a non-empty term.
func (q Query) Matches(item domain.Item) bool {
	text := item.Title
	if q.Scope == ScopeAll && item.FullText != "" {
		text = item.Title + "\n" + item.FullText
	}
	return q.compiled.Eval(text)
}
