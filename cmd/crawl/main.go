// Command crawl runs the crawl-ingest pipeline once, for every source, one
// kind of source, or a single source key, and prints per-source counts.
//
// It exits non-zero only when it cannot run at all: bad configuration, an
// unreachable database or an unknown source key. Article errors and failed
// sources are reported but do not change the exit code.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler"
	"mobiledev-news/internal/features/crawler/sources"
)

type options struct {
	kind   string
	source string
	limit  int
	config string
	list   bool
}

func main() {
	// Load .env file if it exists
	godotenv.Load()

	var opts options
	flag.StringVar(&opts.kind, "type", "all", "sources to crawl: all, blog or reddit")
	flag.StringVar(&opts.source, "source", "", "crawl a single source by key")
	flag.IntVar(&opts.limit, "limit", 0, "Reddit post limit per subreddit (1-100, default from NEWS_REDDIT_LIMIT)")
	flag.StringVar(&opts.config, "config", "", "YAML source registry (default from NEWS_SOURCES_FILE, else built-in)")
	flag.BoolVar(&opts.list, "list", false, "list registered sources and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "crawl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	config, err := core.LoadConfig()
	if err != nil {
		return err
	}
	if opts.config != "" {
		config.Crawler.SourcesFile = opts.config
	}
	if opts.limit != 0 {
		if opts.limit < 1 || opts.limit > 100 {
			return core.NewConfigurationError(fmt.Sprintf("limit must be between 1 and 100, got %d", opts.limit), nil)
		}
		config.Crawler.RedditLimit = opts.limit
	}

	level, _ := core.ParseLevel(config.Log.Level)
	logger := core.NewLoggerWithOptions(os.Stderr, level).ForFeature("crawler")

	if opts.list {
		registry, err := sources.LoadOrDefault(config.Crawler.SourcesFile)
		if err != nil {
			return core.NewConfigurationError("failed to load source registry", err)
		}
		writeSourceTable(out, registry)
		return nil
	}

	db, err := core.OpenSQLite(config.Database.Path, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := crawler.NewPipeline(logger, db, crawler.NewConfig(config))
	if err != nil {
		return err
	}

	specs, err := selectSpecs(pipeline.Registry, opts)
	if err != nil {
		return err
	}
	if opts.limit != 0 {
		specs = withRedditLimit(specs, opts.limit)
	}

	if err := pipeline.Migrations.Migrate(ctx); err != nil {
		return err
	}

	wave, err := pipeline.Runner.ProcessAll(ctx, specs)
	if wave != nil {
		writeWaveTable(out, wave)
	}
	db.LogStats()
	if errors.Is(err, context.Canceled) {
		logger.Warn("Crawl interrupted")
		return nil
	}
	return err
}

// selectSpecs applies -source or -type to the registry
func selectSpecs(registry *sources.Registry, opts options) ([]sources.Spec, error) {
	if opts.source != "" {
		spec, err := registry.Get(opts.source)
		if err != nil {
			return nil, err
		}
		return []sources.Spec{spec}, nil
	}

	switch opts.kind {
	case "", "all":
		return registry.All(), nil
	case "blog", "feed":
		return registry.ByKind(sources.KindFeed), nil
	case "reddit":
		return registry.ByKind(sources.KindReddit), nil
	default:
		return nil, core.NewConfigurationError(fmt.Sprintf("unknown -type %q (want all, blog or reddit)", opts.kind), nil)
	}
}

// withRedditLimit returns a copy of specs with every Reddit limit set to limit
func withRedditLimit(specs []sources.Spec, limit int) []sources.Spec {
	out := make([]sources.Spec, len(specs))
	for i, spec := range specs {
		if spec.Kind == sources.KindReddit {
			spec.Limit = limit
		}
		out[i] = spec
	}
	return out
}

