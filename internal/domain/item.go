package domain

import (
	"fmt"
	"time"
)

// Source identifies an external content provider.
type Source string

const (
	SourceHN    Source = "hn"
	SourceArxiv Source = "arxiv"
)

// Sources lists every known source in fixed order.
func Sources() []Source {
	return []Source{SourceHN, SourceArxiv}
}

// ParseSource validates a source name coming from config or CLI input.
func ParseSource(value string) (Source, error) {
	switch Source(value) {
	case SourceHN, SourceArxiv:
		return Source(value), nil
	}
	return "", fmt.Errorf("unknown source %q", value)
}

// Item is a normalized record of one article/post fetched from a source.
type Item struct {
	ID          string    `json:"id"`
	Source      Source    `json:"source"`
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	FullText    string    `json:"full_text,omitempty"`
	Popularity  int       `json:"popularity"`
	PublishedAt time.Time `json:"published_at"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Key returns the dedup key, unique across sources.
func (i Item) Key() string {
	return string(i.Source) + ":" + i.ID
}

// MatchAnnotation records that an Item satisfied a Query during a run.
type MatchAnnotation struct {
	ItemID    string    `json:"item_id"`
	Source    Source    `json:"source"`
	QueryName string    `json:"query_name"`
	MatchedAt time.Time `json:"matched_at"`
}

// Record pairs a stored item with the annotations of every query it has
// matched so far. It is the unit persisted into period partitions.
type Record struct {
	Item    Item              `json:"item"`
	Matches []MatchAnnotation `json:"matches"`
}
