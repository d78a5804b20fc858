package crawler

import (
	"context"
	"fmt"
	"net/http"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler/handlers"
	"mobiledev-news/internal/features/crawler/services"
)

// Feature represents the crawl-ingest pipeline running as a daemon
type Feature struct {
	*core.BaseFeature
	config    *Config
	pipeline  *Pipeline
	scheduler *services.SchedulerService
	handlers  *handlers.Handlers
}

// NewFeature creates a new crawler feature
func NewFeature(logger *core.Logger, db *core.Database, config *Config) (*Feature, error) {
	featureLogger := logger.ForFeature("crawler")

	pipeline, err := NewPipeline(featureLogger, db, config)
	if err != nil {
		return nil, err
	}

	scheduler := services.NewSchedulerService(pipeline.Runner, pipeline.Registry, featureLogger, config.SchedulerConfig())
	h := handlers.NewHandlers(featureLogger, pipeline.Registry, pipeline.Runner, pipeline.Sources, pipeline.Runs)

	return &Feature{
		BaseFeature: core.NewBaseFeature("crawler", "Mobile dev news crawler", true, logger, db),
		config:      config,
		pipeline:    pipeline,
		scheduler:   scheduler,
		handlers:    h,
	}, nil
}

// Init runs migrations and starts the scheduler
func (f *Feature) Init(ctx context.Context) error {
	if err := f.BaseFeature.Init(ctx); err != nil {
		return err
	}

	if err := f.config.Validate(); err != nil {
		return core.NewFeatureError(f.Name(), "invalid configuration", err)
	}

	if err := f.pipeline.Migrations.Migrate(ctx); err != nil {
		return err
	}

	categories, err := f.pipeline.Categories.List(ctx)
	if err != nil {
		return core.NewFeatureError(f.Name(), "failed to load categories", err)
	}
	if len(categories) == 0 {
		f.Logger().Warn("No categories stored, every batch will be rejected")
	}

	if !f.config.Reddit.HasCredentials() {
		f.Logger().Warn("Reddit credentials not set, Reddit sources will fail")
	}

	if f.config.EnableScheduler {
		if err := f.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start crawl scheduler: %w", err)
		}
		f.Logger().Info("Crawl scheduler started")
	}

	f.Logger().Info("Crawler feature initialized",
		"sources", len(f.pipeline.Registry.All()),
		"categories", len(categories),
	)
	return nil
}

// Routes returns the operator routes of the crawler
func (f *Feature) Routes() []core.Route {
	return []core.Route{
		{Method: http.MethodGet, Path: "/crawler/sources", Handler: f.handlers.ListSources},
		{Method: http.MethodGet, Path: "/crawler/runs", Handler: f.handlers.ListRuns},
		{Method: http.MethodPost, Path: "/crawler/sources/{key}/crawl", Handler: f.handlers.CrawlSource},
	}
}

// Shutdown stops the scheduler, waiting for a running wave to wind down
func (f *Feature) Shutdown(ctx context.Context) error {
	if f.config.EnableScheduler {
		if err := f.scheduler.Stop(ctx); err != nil {
			f.Logger().LogFeatureError(f.Name(), "Failed to stop crawl scheduler", err)
		}
	}

	return f.BaseFeature.Shutdown(ctx)
}

// Pipeline returns the wired pipeline
func (f *Feature) Pipeline() *Pipeline {
	return f.pipeline
}
