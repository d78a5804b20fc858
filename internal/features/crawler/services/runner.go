package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler/adapters"
	"mobiledev-news/internal/features/crawler/models"
	"mobiledev-news/internal/features/crawler/sources"
)

// Runner crawls sources and records one run log entry per adapter call
type Runner struct {
	factory       adapters.Factory
	ingest        *IngestService
	sources       SourceStore
	runs          RunLogStore
	logger        *core.Logger
	maxConcurrent int
	now           func() time.Time

	mu   sync.Mutex
	busy map[string]bool
}

// NewRunner creates a new runner. maxConcurrent bounds the sources crawled
// in parallel within one wave.
func NewRunner(
	factory adapters.Factory,
	ingest *IngestService,
	sourceStore SourceStore,
	runs RunLogStore,
	logger *core.Logger,
	maxConcurrent int,
) *Runner {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Runner{
		factory:       factory,
		ingest:        ingest,
		sources:       sourceStore,
		runs:          runs,
		logger:        logger,
		maxConcurrent: maxConcurrent,
		now:           time.Now,
		busy:          make(map[string]bool),
	}
}

// NewWaveID returns a sortable identifier grouping the runs of one wave
func NewWaveID() string {
	return ulid.Make().String()
}

// RunSource crawls one source and ingests what it returns. The run is
// recorded whether or not the adapter succeeded. The returned error is the
// adapter or batch failure, already reflected in the result and run log.
//
// A source already being crawled by this runner is not crawled again;
// ErrSourceBusy is returned and nothing is recorded.
func (r *Runner) RunSource(ctx context.Context, spec sources.Spec, waveID string) (models.SourceResult, error) {
	result := models.SourceResult{Key: spec.Key, Name: spec.Name}

	if !r.acquire(spec.Key) {
		result.Busy = true
		return result, ErrSourceBusy
	}
	defer r.release(spec.Key)

	ctx = core.ContextWithWaveID(ctx, waveID)
	logger := r.logger.WithContext(ctx).WithSource(spec.Key)

	run := &models.RunLog{
		WaveID:    waveID,
		SourceKey: spec.Key,
		StartedAt: r.now().UTC(),
	}

	articles, err := r.crawl(ctx, spec)
	run.FinishedAt = r.now().UTC()

	if err != nil {
		run.Status = models.RunStatusFailed
		run.ErrorMessage = err.Error()
		logger.Error("Crawl failed", "error", err)

		result.Status = models.RunStatusFailed
		result.Error = err.Error()
		r.record(ctx, logger, spec, run)
		return result, err
	}

	run.Status = models.RunStatusSuccess
	run.ArticlesFound = len(articles)

	stats, batchErr := r.ingest.ProcessBatch(ctx, articles, spec.Name, spec.SiteURL, spec.DefaultCategory)
	run.Created, run.Skipped, run.Errors = stats.Created, stats.Skipped, stats.Errors
	if batchErr != nil {
		run.ErrorMessage = batchErr.Error()
		result.Error = batchErr.Error()
	}

	result.Status = models.RunStatusSuccess
	result.Stats = stats
	r.record(ctx, logger, spec, run)

	logger.Info("Crawl finished",
		"found", run.ArticlesFound,
		"created", stats.Created,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"duration", run.Duration(),
	)
	return result, batchErr
}

// RunWave crawls specs with bounded parallelism under one wave ID. A failing
// source never stops its siblings; the only error returned is the context's.
// Results keep the order of specs.
func (r *Runner) RunWave(ctx context.Context, waveID string, specs []sources.Spec) (*models.WaveResult, error) {
	wave := &models.WaveResult{
		WaveID:  waveID,
		Results: make([]models.SourceResult, len(specs)),
	}
	logger := r.logger.WithContext(core.ContextWithWaveID(ctx, waveID))
	logger.Info("Starting crawl wave", "sources", len(specs), "max_concurrent", r.maxConcurrent)

	var g errgroup.Group
	g.SetLimit(r.maxConcurrent)

	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				wave.Results[i] = models.SourceResult{Key: spec.Key, Name: spec.Name, Status: models.RunStatusFailed, Error: err.Error()}
				return nil
			}
			result, err := r.RunSource(ctx, spec, waveID)
			if errors.Is(err, ErrSourceBusy) {
				logger.Info("Source already being crawled, skipping", "source", spec.Key)
			}
			wave.Results[i] = result
			return nil
		})
	}
	g.Wait()

	for _, result := range wave.Results {
		wave.Totals.Add(result.Stats)
	}

	logger.Info("Crawl wave finished",
		"sources", len(specs),
		"total", wave.Totals.Total,
		"created", wave.Totals.Created,
		"skipped", wave.Totals.Skipped,
		"errors", wave.Totals.Errors,
	)
	return wave, ctx.Err()
}

// ProcessAll runs every spec as one new wave
func (r *Runner) ProcessAll(ctx context.Context, specs []sources.Spec) (*models.WaveResult, error) {
	return r.RunWave(ctx, NewWaveID(), specs)
}

func (r *Runner) crawl(ctx context.Context, spec sources.Spec) ([]models.RawArticle, error) {
	adapter, err := r.factory(spec)
	if err != nil {
		return nil, err
	}
	return adapter.Crawl(ctx)
}

// record appends the run log entry. The source may not exist yet when its
// first crawl failed; the entry then only carries the key.
func (r *Runner) record(ctx context.Context, logger *core.Logger, spec sources.Spec, run *models.RunLog) {
	if source, err := r.sources.ByURL(ctx, spec.SiteURL); err == nil {
		run.SourceID = &source.ID
	} else if !core.HasCode(err, core.ErrCodeNotFound) {
		logger.Warn("Failed to resolve source for run log", "error", err)
	}

	// the run is recorded even when the crawl was cancelled
	if err := r.runs.Append(context.WithoutCancel(ctx), run); err != nil {
		logger.Error("Failed to record crawl run", "error", err)
	}
}

func (r *Runner) acquire(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy[key] {
		return false
	}
	r.busy[key] = true
	return true
}

func (r *Runner) release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.busy, key)
}
