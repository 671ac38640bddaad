package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"TopicTracker/internal/config"
	"TopicTracker/internal/domain"
	"TopicTracker/internal/ports"
	"TopicTracker/internal/scanner"
)

// StrategySource implements ItemSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.ItemSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// Fetch executes every configured site whose scanner produces items for the
// requested source and aggregates the results, dropping duplicate ids
// across sites.
func (s *StrategySource) Fetch(ctx context.Context, source domain.Source, since *time.Time) ([]domain.Item, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	var (
		aggregated []domain.Item
		matched    int
		seen       = map[string]struct{}{}
	)

	for _, site := range s.sites {
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}
		if strategy.Source() != source {
			continue
		}
		matched++

		s.debug("process site", "site", site.Name, "scanner", site.Scanner, "categories", len(site.Categories))

		req := scanner.Request{
			Since:      since,
			SiteName:   site.Name,
			Options:    site.Options,
			Categories: toScannerCategories(site.Categories),
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("scan site %s: %w", site.Name, err)
		}

		for _, item := range results {
			if _, ok := seen[item.Key()]; ok {
				continue
			}
			seen[item.Key()] = struct{}{}
			aggregated = append(aggregated, item)
		}
	}

	if matched == 0 {
		return nil, fmt.Errorf("no site configured for source %s", source)
	}

	s.debug("strategy source done", "source", source, "total_items", len(aggregated))
	return aggregated, nil
}

func toScannerCategories(cfg []config.CategoryConfig) []scanner.Category {
	categories := make([]scanner.Category, 0, len(cfg))
	for _, cat := range cfg {
		categories = append(categories, scanner.Category{
			Name: cat.Name,
			URL:  cat.URL,
		})
	}
	return categories
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
