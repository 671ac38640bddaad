package cli

import (
	"context"
	"fmt"

	"TopicTracker/internal/app"
	"TopicTracker/internal/config"
	"TopicTracker/internal/domain"
	"TopicTracker/internal/logging"
)

// Execute re-runs admission and classification over one stored period. This
// is the only path that touches stored match sets outside a normal append.
func (c *RefilterCommand) Execute(args []string) error {
	if c.Period == "" {
		return fmt.Errorf("--period is required")
	}
	period, err := domain.ParsePeriod(c.Period)
	if err != nil {
		return err
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

	result, err := application.Refilter(context.Background(), period, c.Reset)
	if err != nil {
		return err
	}

	fmt.Printf("%s: items=%d matched=%d\n", result.Period, result.Items, result.Matched)
	return nil
}
