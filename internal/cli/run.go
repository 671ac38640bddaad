package cli

import (
	"context"
	"fmt"
	"time"

	"TopicTracker/internal/app"
	"TopicTracker/internal/config"
	"TopicTracker/internal/domain"
	"TopicTracker/internal/logging"
)

// Execute runs the collection pipeline once and reports per-source counters.
// The command fails (non-zero exit) when any requested source failed
// entirely, even if the other one succeeded.
func (c *RunCommand) Execute(args []string) error {
	if c.HNOnly && c.ArxivOnly {
		return fmt.Errorf("--hn-only and --arxiv-only are mutually exclusive")
	}

	sources := domain.Sources()
	switch {
	case c.HNOnly:
		sources = []domain.Source{domain.SourceHN}
	case c.ArxivOnly:
		sources = []domain.Source{domain.SourceArxiv}
	}

	var since *time.Time
	if c.Since != "" {
		parsed, err := time.Parse("2006-01-02", c.Since)
		if err != nil {
			return fmt.Errorf("invalid --since value %q: %w", c.Since, err)
		}
		utc := parsed.UTC()
		since = &utc
	}

	cfg := config.Load(c.globals.Config)
	if c.globals.LogLevel != "" {
		cfg.Logging.Level = c.globals.LogLevel
	}
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}

	summary := application.Run(context.Background(), sources, since)

	for _, r := range summary.Results {
		if r.Err != nil {
			fmt.Printf("%s: FAILED (%v)\n", r.Source, r.Err)
			continue
		}
		fmt.Printf("%s: fetched=%d new=%d refreshed=%d admitted=%d matched=%d\n",
			r.Source, r.Fetched, r.New, r.Refreshed, r.Admitted, r.Matched)
	}

	if summary.Failed() {
		return fmt.Errorf("one or more sources failed")
	}
	return nil
}
