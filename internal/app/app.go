package app

import (
	"context"
	"log/slog"
	"time"

	"ResearchBriefing/internal/config"
	"ResearchBriefing/internal/infrastructure/arxiv"
	"ResearchBriefing/internal/infrastructure/rss"
	"ResearchBriefing/internal/infrastructure/slack"
	"ResearchBriefing/internal/logging"
	"ResearchBriefing/internal/state"
	"ResearchBriefing/internal/usecase"
)

// Application wires config to the collect and brief use cases. Each
// process invocation builds a fresh instance, runs one cycle, and exits;
// the state blob on disk is the only thing carried between runs.
type Application struct {
	cfg       config.Config
	collector *usecase.Collector
	deliverer *usecase.Deliverer
}

// New builds a runnable application instance from validated config.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store := state.NewFileStore(cfg.State.Path, baseLogger.With("component", "state"))

	papers := arxiv.NewClient(arxiv.Options{
		APIURL:     cfg.Arxiv.APIURL,
		Categories: cfg.Arxiv.Categories,
		Window:     cfg.Window(),
		MaxResults: cfg.Fetch.MaxResults,
	}, nil, baseLogger.With("component", "arxiv"))

	blogs := rss.NewClient(cfg.Blogs, cfg.Window(), nil, baseLogger.With("component", "rss"))

	renderer := slack.NewRenderer(cfg.Arxiv.Categories, cfg.Fetch.Hours, cfg.Matcher().Display)
	briefer := slack.NewNotifier(cfg.Slack, renderer, nil, baseLogger.With("component", "slack"))

	collector := usecase.NewCollector(usecase.CollectorDeps{
		Blogs:     blogs,
		Papers:    papers,
		Store:     store,
		Matcher:   cfg.Matcher(),
		Retention: cfg.Retention(),
		Location:  cfg.Location(),
		Logger:    baseLogger.With("component", "collector"),
	})

	deliverer := usecase.NewDeliverer(usecase.DelivererDeps{
		Briefer:   briefer,
		Store:     store,
		Retention: cfg.Retention(),
		Location:  cfg.Location(),
		Logger:    baseLogger.With("component", "deliverer"),
	})

	return &Application{cfg: cfg, collector: collector, deliverer: deliverer}
}

// Collect runs one collect cycle at the current time.
func (a *Application) Collect(ctx context.Context) error {
	return a.collector.Run(ctx, time.Now().UTC())
}

// Brief runs one deliver cycle at the current time.
func (a *Application) Brief(ctx context.Context) error {
	return a.deliverer.Run(ctx, time.Now().UTC())
}
