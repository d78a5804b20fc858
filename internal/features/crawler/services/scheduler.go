package services

import (
	"context"
	"sync"
	"time"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler/models"
	"mobiledev-news/internal/features/crawler/sources"
)

// SchedulerService launches crawl waves on two cadences: one for feed
// sources and a faster one for Reddit
type SchedulerService struct {
	runner   *Runner
	registry *sources.Registry
	logger   *core.Logger
	config   *models.SchedulerConfig
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSchedulerService creates a new scheduler service
func NewSchedulerService(
	runner *Runner,
	registry *sources.Registry,
	logger *core.Logger,
	config *models.SchedulerConfig,
) *SchedulerService {
	return &SchedulerService{
		runner:   runner,
		registry: registry,
		logger:   logger,
		config:   config,
		stopChan: make(chan struct{}),
	}
}

// Start begins both update loops
func (s *SchedulerService) Start(ctx context.Context) error {
	s.logger.Info("Starting crawl scheduler",
		"blog_interval", s.config.BlogInterval,
		"reddit_interval", s.config.RedditInterval,
		"run_on_start", s.config.RunOnStart,
	)

	s.wg.Add(2)
	go s.updateLoop(ctx, sources.KindFeed, s.config.BlogInterval)
	go s.updateLoop(ctx, sources.KindReddit, s.config.RedditInterval)

	return nil
}

// Stop signals both loops and waits for any running wave to finish, or for
// ctx to expire
func (s *SchedulerService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping crawl scheduler")
	s.stopOnce.Do(func() { close(s.stopChan) })

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunKind crawls every enabled source of one kind as a single wave
func (s *SchedulerService) RunKind(ctx context.Context, kind sources.Kind) (*models.WaveResult, error) {
	specs := s.registry.ByKind(kind)
	if len(specs) == 0 {
		s.logger.Info("No sources to crawl", "kind", kind)
		return &models.WaveResult{}, nil
	}
	return s.runner.ProcessAll(ctx, specs)
}

func (s *SchedulerService) updateLoop(ctx context.Context, kind sources.Kind, interval time.Duration) {
	defer s.wg.Done()

	// A wave in flight is cancelled when the scheduler stops
	waveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-waveCtx.Done():
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if s.config.RunOnStart {
		s.runWave(waveCtx, kind)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler context cancelled", "kind", kind)
			return
		case <-s.stopChan:
			s.logger.Info("Scheduler stop signal received", "kind", kind)
			return
		case <-ticker.C:
			s.runWave(waveCtx, kind)
		}
	}
}

func (s *SchedulerService) runWave(ctx context.Context, kind sources.Kind) {
	wave, err := s.RunKind(ctx, kind)
	if err != nil {
		s.logger.Warn("Crawl wave interrupted", "kind", kind, "error", err)
		return
	}

	failed := 0
	for _, result := range wave.Results {
		if result.Status == models.RunStatusFailed {
			failed++
		}
	}
	s.logger.LogFeatureEvent("crawler", "crawl_wave_completed",
		"kind", kind,
		"wave_id", wave.WaveID,
		"sources", len(wave.Results),
		"failed", failed,
		"created", wave.Totals.Created,
	)
}
