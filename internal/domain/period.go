package domain

import (
	"fmt"
	"time"
)

// Period is an ISO-8601 week used to partition stored items. Periods are
// contiguous, never overlap, and start Monday 00:00 UTC.
type Period struct {
	Year int
	Week int
}

// PeriodOf derives the period a timestamp belongs to.
func PeriodOf(t time.Time) Period {
	year, week := t.UTC().ISOWeek()
	return Period{Year: year, Week: week}
}

// ParsePeriod parses the canonical partition form "2024-W05". Re-rendering
// the parsed value must reproduce the input exactly, which rejects trailing
// garbage and unpadded week numbers.
func ParsePeriod(value string) (Period, error) {
	var p Period
	if _, err := fmt.Sscanf(value, "%d-W%d", &p.Year, &p.Week); err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", value, err)
	}
	if p.String() != value || PeriodOf(p.Start()) != p {
		return Period{}, fmt.Errorf("invalid period %q", value)
	}
	return p, nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-W%02d", p.Year, p.Week)
}

// Start returns the Monday 00:00 UTC boundary opening the period.
// January 4th always falls inside ISO week 1 of its year.
func (p Period) Start() time.Time {
	jan4 := time.Date(p.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := jan4.AddDate(0, 0, 1-weekday)
	return monday.AddDate(0, 0, (p.Week-1)*7)
}

// End returns the first instant of the following period.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 0, 7)
}

// Before orders periods chronologically.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Week < other.Week
}

// Closed reports whether the period's end boundary has passed. Late writes
// into a closed period are still permitted by the store.
func (p Period) Closed(now time.Time) bool {
	return !now.UTC().Before(p.End())
}
