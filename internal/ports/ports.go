package ports

import (
	"context"
	"time"

	"TopicTracker/internal/domain"
)

// ItemSource pulls fresh items for one source from upstream providers.
type ItemSource interface {
	Fetch(ctx context.Context, source domain.Source, since *time.Time) ([]domain.Item, error)
}

// Classifier tags items with the interest queries they satisfy. The
// pipeline is polymorphic over this capability so a scored-ranking engine
// can replace the boolean one.
type Classifier interface {
	Admit(item domain.Item) bool
	Classify(item domain.Item, now time.Time) []domain.MatchAnnotation
}

// ItemStore persists items and match annotations into period partitions and
// tracks the dedup index plus per-source incremental cursors.
type ItemStore interface {
	Append(period domain.Period, records []domain.Record) error
	Update(period domain.Period, transform func([]domain.Record) ([]domain.Record, error)) error
	Read(period domain.Period) ([]domain.Record, error)
	ListPeriods() ([]domain.Period, error)
	Counters(period domain.Period) (total, matched int, err error)
	SeenIndex(sources ...domain.Source) (map[string]domain.Period, error)
	Cursor(source domain.Source) (*time.Time, error)
	SetCursor(source domain.Source, t time.Time) error
}
