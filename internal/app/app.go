package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"TopicTracker/internal/config"
	"TopicTracker/internal/domain"
	"TopicTracker/internal/filter"
	"TopicTracker/internal/infrastructure/parser"
	"TopicTracker/internal/infrastructure/storage"
	"TopicTracker/internal/logging"
	"TopicTracker/internal/query"
	"TopicTracker/internal/scanner"
	"TopicTracker/internal/usecase"
	"TopicTracker/pkg/retry"
)

// Application wires configs to use cases for a single run-to-completion
// invocation.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *storage.PeriodStore
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance. Query definitions are read
// fresh here, so every invocation sees the current query set.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second}

	retryCfg := retry.DefaultConfig()
	if cfg.HTTP.RetryAttempts > 0 {
		retryCfg.MaxAttempts = cfg.HTTP.RetryAttempts
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewArxivScanner(httpClient, retryCfg, baseLogger.With("component", "scanner.arxiv")))
	registry.Register(parser.NewHNScanner(httpClient, cfg.HTTP.HNBaseURL, retryCfg, baseLogger.With("component", "scanner.hn")))

	source := parser.NewStrategySource(registry, cfg.Sites, baseLogger.With("component", "source"))

	store, err := storage.NewPeriodStore(cfg.Store.Dir, baseLogger.With("component", "store"))
	if err != nil {
		return nil, err
	}

	queries, skipped, err := query.LoadDir(cfg.Queries.Dir, baseLogger.With("component", "queries"))
	if err != nil {
		return nil, err
	}
	baseLogger.Info("queries loaded", "enabled", len(queries), "skipped", skipped)

	thresholds := filter.Thresholds{
		PerSource: map[domain.Source]int{},
	}
	if cfg.Filter.MinPopularity != nil {
		thresholds.Default = *cfg.Filter.MinPopularity
	}
	for name, value := range cfg.Filter.PerSource {
		src, err := domain.ParseSource(name)
		if err != nil {
			baseLogger.Warn("ignore threshold override", "source", name, "error", err)
			continue
		}
		thresholds.PerSource[src] = value
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Store:      store,
		Classifier: filter.NewEngine(queries, thresholds),
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, logger: baseLogger, store: store, pipeline: pipeline}, nil
}

// Run executes one pipeline invocation over the requested sources.
func (a *Application) Run(ctx context.Context, sources []domain.Source, since *time.Time) usecase.Summary {
	return a.pipeline.Run(ctx, sources, since)
}

// Refilter re-runs admission and classification for one stored period.
func (a *Application) Refilter(ctx context.Context, period domain.Period, reset bool) (usecase.RefilterResult, error) {
	return a.pipeline.Refilter(ctx, period, reset)
}

// Store exposes the persistence layer for read-only inspection commands.
func (a *Application) Store() *storage.PeriodStore {
	return a.store
}
