package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"TopicTracker/internal/domain"
	"TopicTracker/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.ItemSource
	Store      ports.ItemStore
	Classifier ports.Classifier
	Logger     *slog.Logger
	Now        func() time.Time
}

// Pipeline implements the collect-and-filter workflow of a single run:
// fetch, normalize, dedup, admit, classify, persist. Sources are processed
// sequentially; a failing source degrades the run without aborting the
// others.
type Pipeline struct {
	source     ports.ItemSource
	store      ports.ItemStore
	classifier ports.Classifier
	logger     *slog.Logger
	now        func() time.Time
}

// SourceResult reports counters of one source within a run. Fetched and
// Matched are independent: the dashboard shows total fetched and total
// matched as separate numbers.
type SourceResult struct {
	Source    domain.Source
	Fetched   int
	New       int
	Refreshed int
	Admitted  int
	Matched   int
	Err       error
}

// Summary aggregates the per-source results of one run.
type Summary struct {
	Results []SourceResult
}

// Failed reports whether any requested source failed entirely. The process
// exits non-zero in that case even when the other source succeeded, so the
// scheduler's log surfaces the degradation.
func (s Summary) Failed() bool {
	for _, r := range s.Results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		source:     deps.Source,
		store:      deps.Store,
		classifier: deps.Classifier,
		logger:     deps.Logger,
		now:        now,
	}
}

// Run executes the pipeline for the requested sources. since overrides the
// persisted cursor when non-nil (arXiv backfill); otherwise each source
// resumes from its own cursor. A store write failure is fatal for the run.
func (p *Pipeline) Run(ctx context.Context, sources []domain.Source, since *time.Time) Summary {
	var summary Summary

	seen, err := p.store.SeenIndex(sources...)
	if err != nil {
		p.error("load seen index", err)
		for _, src := range sources {
			summary.Results = append(summary.Results, SourceResult{Source: src, Err: err})
		}
		return summary
	}

	for _, src := range sources {
		result := p.runSource(ctx, src, since, seen)
		summary.Results = append(summary.Results, result)

		var storeErr *domain.StoreError
		if errors.As(result.Err, &storeErr) {
			// Partition writes already committed stay intact; stop before
			// touching anything else this run.
			p.error("store failure, aborting run", result.Err)
			return summary
		}
	}

	return summary
}

func (p *Pipeline) runSource(ctx context.Context, src domain.Source, override *time.Time, seen map[string]domain.Period) SourceResult {
	result := SourceResult{Source: src}
	runStart := p.now().UTC()

	since := override
	if since == nil {
		cursor, err := p.store.Cursor(src)
		if err != nil {
			result.Err = err
			return result
		}
		since = cursor
	}

	items, err := p.source.Fetch(ctx, src, since)
	if err != nil {
		fetchErr := &domain.FetchError{Source: src, Err: err}
		p.error("source degraded for this run", fetchErr)
		result.Err = fetchErr
		return result
	}
	result.Fetched = len(items)

	byPeriod := map[domain.Period][]domain.Record{}
	assigned := map[string]domain.Period{}
	for _, item := range items {
		record := domain.Record{Item: item}

		period, isSeen := seen[item.Key()]
		if isSeen {
			// Seen items are refreshed, not re-inserted: the merge updates
			// popularity in the partition that already holds the row, even
			// when the source reports a shifted publication time. Routing
			// by the incoming snapshot would plant a duplicate row in a
			// second partition.
			result.Refreshed++
		} else {
			period = domain.PeriodOf(item.PublishedAt)
			result.New++
			if p.classifier.Admit(item) {
				result.Admitted++
				record.Matches = p.classifier.Classify(item, runStart)
				if len(record.Matches) > 0 {
					result.Matched++
				}
			} else {
				p.debug("item below admission threshold, stored unmatched",
					"key", item.Key(), "popularity", item.Popularity)
			}
		}

		assigned[item.Key()] = period
		byPeriod[period] = append(byPeriod[period], record)
	}

	periods := make([]domain.Period, 0, len(byPeriod))
	for period := range byPeriod {
		periods = append(periods, period)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	for _, period := range periods {
		if err := p.store.Append(period, byPeriod[period]); err != nil {
			result.Err = err
			return result
		}
	}

	for key, period := range assigned {
		seen[key] = period
	}

	if err := p.store.SetCursor(src, runStart); err != nil {
		result.Err = err
		return result
	}

	p.info("source processed",
		"source", src,
		"fetched", result.Fetched,
		"new", result.New,
		"refreshed", result.Refreshed,
		"admitted", result.Admitted,
		"matched", result.Matched)

	return result
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) error(msg string, err error) {
	if p.logger != nil {
		p.logger.Error(msg, "error", err)
	}
}
