package services

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler/adapters"
	"mobiledev-news/internal/features/crawler/models"
	"mobiledev-news/internal/features/crawler/sources"
)

func testRegistry(t *testing.T) *sources.Registry {
	t.Helper()
	registry, err := sources.NewRegistry([]sources.Spec{
		feedSpec("blog"),
		{Key: "reddit-test", Kind: sources.KindReddit, Subreddit: "test", DefaultCategory: "android"},
	}, nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return registry
}

func TestSchedulerRunKind(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	runner := env.runner(stubFactory(map[string]adapters.Adapter{
		"blog":        returning(rawArticle("https://blog.example.com/1", "Compose")),
		"reddit-test": returning(rawArticle("https://reddit.com/r/test/comments/1/", "Kotlin")),
	}), 2)
	scheduler := NewSchedulerService(runner, testRegistry(t), env.logger, models.DefaultSchedulerConfig())

	wave, err := scheduler.RunKind(ctx, sources.KindReddit)
	if err != nil {
		t.Fatalf("RunKind: %v", err)
	}
	if len(wave.Results) != 1 || wave.Results[0].Key != "reddit-test" {
		t.Errorf("results = %+v, want only the reddit source", wave.Results)
	}

	source, err := env.sources.ByURL(ctx, "https://reddit.com/r/test")
	if err != nil {
		t.Fatalf("reddit source not stored: %v", err)
	}
	if source.SourceType != models.SourceTypeReddit {
		t.Errorf("source type = %s", source.SourceType)
	}
}

func TestSchedulerRunsOnStartAndStops(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	runner := env.runner(stubFactory(map[string]adapters.Adapter{
		"blog":        returning(rawArticle("https://blog.example.com/1", "Compose")),
		"reddit-test": returning(),
	}), 2)
	config := &models.SchedulerConfig{
		BlogInterval:        time.Hour,
		RedditInterval:      time.Hour,
		MaxConcurrentCrawls: 2,
		RunOnStart:          true,
	}
	scheduler := NewSchedulerService(runner, testRegistry(t), env.logger, config)

	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		runs, err := env.runs.Recent(ctx, 10)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		if len(runs) == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("initial waves did not run, got %d runs", len(runs))
		}
		time.Sleep(20 * time.Millisecond)
	}

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := scheduler.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	// stopping twice is harmless
	if err := scheduler.Stop(stopCtx); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestSchedulerLogsWaveCompletedEvent(t *testing.T) {
	env := newTestEnv(t)

	runner := env.runner(stubFactory(map[string]adapters.Adapter{
		"blog": returning(rawArticle("https://blog.example.com/1", "Compose")),
	}), 1)

	var buf bytes.Buffer
	logger := core.NewLoggerWithOptions(&buf, slog.LevelInfo).ForFeature("crawler")
	scheduler := NewSchedulerService(runner, testRegistry(t), logger, models.DefaultSchedulerConfig())

	scheduler.runWave(context.Background(), sources.KindFeed)

	var line string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.Contains(l, "event=crawl_wave_completed") {
			line = l
		}
	}
	if line == "" {
		t.Fatalf("no wave completed event in log:\n%s", buf.String())
	}
	for _, want := range []string{"kind=feed", "sources=1", "failed=0", "created=1"} {
		if !strings.Contains(line, want) {
			t.Errorf("event %q missing %q", line, want)
		}
	}
	if n := strings.Count(line, "feature=crawler"); n != 1 {
		t.Errorf("feature attribute appears %d times in %q", n, line)
	}
}
