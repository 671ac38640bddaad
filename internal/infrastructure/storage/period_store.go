package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"TopicTracker/internal/domain"
)

const itemsFile = "items.json"

// PeriodStore is an append-only, ISO-week-partitioned file store. Each
// period owns one directory with an items.json partition; the layout is the
// read contract of the dashboard collaborator.
type PeriodStore struct {
	dir    string
	logger *slog.Logger
}

// NewPeriodStore ensures the store directory exists.
func NewPeriodStore(dir string, logger *slog.Logger) (*PeriodStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &domain.StoreError{Op: "init", Err: err}
	}
	return &PeriodStore{dir: dir, logger: logger}, nil
}

func (s *PeriodStore) partitionDir(p domain.Period) string {
	return filepath.Join(s.dir, p.String())
}

func (s *PeriodStore) partitionPath(p domain.Period) string {
	return filepath.Join(s.partitionDir(p), itemsFile)
}

// Read returns the records of one period in stored (fetch) order. A missing
// partition reads as empty.
func (s *PeriodStore) Read(p domain.Period) ([]domain.Record, error) {
	raw, err := os.ReadFile(s.partitionPath(p))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &domain.StoreError{Op: "read " + p.String(), Err: err}
	}
	var records []domain.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &domain.StoreError{Op: "decode " + p.String(), Err: err}
	}
	return records, nil
}

// ListPeriods returns every stored period in chronological order.
func (s *PeriodStore) ListPeriods() ([]domain.Period, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &domain.StoreError{Op: "list", Err: err}
	}
	var periods []domain.Period
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, err := domain.ParsePeriod(entry.Name())
		if err != nil {
			continue
		}
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
	return periods, nil
}

// Append merges records into a period partition under the partition lock.
// New keys are appended in fetch order. For a key already stored, mutable
// fields (popularity, url, full text, fetched_at) take the incoming value
// while id/title/published_at stay as first stored; match sets are unioned
// by query name so recomputation stays additive. Re-running the pipeline in
// the same period therefore never creates duplicate rows. Writes into a
// closed period are still permitted (late corrections).
func (s *PeriodStore) Append(p domain.Period, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	release, err := s.lockPartition(p)
	if err != nil {
		return err
	}
	defer release()

	existing, err := s.Read(p)
	if err != nil {
		return err
	}

	index := make(map[string]int, len(existing))
	for i, rec := range existing {
		index[rec.Item.Key()] = i
	}

	for _, rec := range records {
		i, seen := index[rec.Item.Key()]
		if !seen {
			index[rec.Item.Key()] = len(existing)
			existing = append(existing, rec)
			continue
		}
		existing[i] = mergeRecord(existing[i], rec)
	}

	return s.writePartition(p, existing)
}

// Update applies transform to the partition contents and writes the result
// back, all under the partition lock. Read, transform, and write form one
// critical section, so an Append from a concurrent run either lands before
// the read (and is seen by transform) or fails loudly on the held lock; it
// is never silently overwritten. A transform error aborts without writing.
func (s *PeriodStore) Update(p domain.Period, transform func([]domain.Record) ([]domain.Record, error)) error {
	release, err := s.lockPartition(p)
	if err != nil {
		return err
	}
	defer release()

	records, err := s.Read(p)
	if err != nil {
		return err
	}
	updated, err := transform(records)
	if err != nil {
		return err
	}
	return s.writePartition(p, updated)
}

func mergeRecord(stored, incoming domain.Record) domain.Record {
	item := stored.Item
	item.Popularity = incoming.Item.Popularity
	if incoming.Item.URL != "" {
		item.URL = incoming.Item.URL
	}
	if incoming.Item.FullText != "" {
		item.FullText = incoming.Item.FullText
	}
	item.FetchedAt = incoming.Item.FetchedAt

	matched := make(map[string]bool, len(stored.Matches))
	for _, m := range stored.Matches {
		matched[m.QueryName] = true
	}
	matches := stored.Matches
	for _, m := range incoming.Matches {
		if matched[m.QueryName] {
			continue
		}
		matched[m.QueryName] = true
		matches = append(matches, m)
	}

	return domain.Record{Item: item, Matches: matches}
}

func (s *PeriodStore) writePartition(p domain.Period, records []domain.Record) error {
	if err := os.MkdirAll(s.partitionDir(p), 0o755); err != nil {
		return &domain.StoreError{Op: "mkdir " + p.String(), Err: err}
	}
	if err := writeJSONAtomic(s.partitionPath(p), records); err != nil {
		return &domain.StoreError{Op: "write " + p.String(), Err: err}
	}
	if s.logger != nil {
		s.logger.Debug("partition written", "period", p.String(), "records", len(records))
	}
	return nil
}

// SeenIndex loads the dedup index for the given sources by scanning every
// partition once. Each key maps to the period its row lives in, so refreshes
// of a seen item target the stored partition even when the source reports a
// shifted publication time. Lookups afterwards are O(1) on the item key.
func (s *PeriodStore) SeenIndex(sources ...domain.Source) (map[string]domain.Period, error) {
	wanted := make(map[domain.Source]bool, len(sources))
	for _, src := range sources {
		wanted[src] = true
	}

	periods, err := s.ListPeriods()
	if err != nil {
		return nil, err
	}

	seen := map[string]domain.Period{}
	for _, p := range periods {
		records, err := s.Read(p)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if len(wanted) > 0 && !wanted[rec.Item.Source] {
				continue
			}
			seen[rec.Item.Key()] = p
		}
	}
	return seen, nil
}

// Counters reports the two independent counts the dashboard distinguishes:
// total stored items and items with at least one match.
func (s *PeriodStore) Counters(p domain.Period) (total, matched int, err error) {
	records, err := s.Read(p)
	if err != nil {
		return 0, 0, err
	}
	for _, rec := range records {
		total++
		if len(rec.Matches) > 0 {
			matched++
		}
	}
	return total, matched, nil
}

// writeJSONAtomic writes via a temp file and rename so readers never observe
// a partial partition.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename partition: %w", err)
	}
	return nil
}
