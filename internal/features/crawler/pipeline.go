package crawler

import (
	"net/http"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler/adapters"
	"mobiledev-news/internal/features/crawler/categorize"
	"mobiledev-news/internal/features/crawler/migrations"
	"mobiledev-news/internal/features/crawler/services"
	"mobiledev-news/internal/features/crawler/sources"
)

// Pipeline is the wired crawl-ingest pipeline shared by the daemon and the CLI
type Pipeline struct {
	Registry   *sources.Registry
	Migrations *migrations.Manager
	Sources    *services.SourceService
	Categories *services.CategoryService
	Articles   *services.ArticleService
	Runs       *services.RunLogService
	Ingest     *services.IngestService
	Runner     *services.Runner
}

// NewPipeline loads the source registry and wires storage, adapters and the runner
func NewPipeline(logger *core.Logger, db *core.Database, config *Config) (*Pipeline, error) {
	registry, err := sources.LoadOrDefault(config.SourcesFile)
	if err != nil {
		return nil, core.NewConfigurationError("failed to load source registry", err)
	}

	sourceService := services.NewSourceService(db, logger)
	categoryService := services.NewCategoryService(db, logger)
	articleService := services.NewArticleService(db, logger)
	runLogService := services.NewRunLogService(db, logger)

	ingestService := services.NewIngestService(
		sourceService,
		categoryService,
		articleService,
		categorize.New(registry.Rules()),
		logger,
	)

	factory := adapters.NewFactory(adapters.Deps{
		Logger:      logger,
		HTTPClient:  &http.Client{Timeout: config.HTTPTimeout},
		UserAgent:   config.UserAgent,
		Reddit:      config.Reddit,
		RedditLimit: config.RedditLimit,
	})

	runner := services.NewRunner(factory, ingestService, sourceService, runLogService, logger, config.MaxConcurrentCrawls)

	return &Pipeline{
		Registry:   registry,
		Migrations: migrations.NewManager(db, logger),
		Sources:    sourceService,
		Categories: categoryService,
		Articles:   articleService,
		Runs:       runLogService,
		Ingest:     ingestService,
		Runner:     runner,
	}, nil
}
