package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler/categorize"
	"mobiledev-news/internal/features/crawler/migrations"
	"mobiledev-news/internal/features/crawler/models"
)

type testEnv struct {
	db         *core.Database
	logger     *core.Logger
	sources    *SourceService
	categories *CategoryService
	articles   *ArticleService
	runs       *RunLogService
	ingest     *IngestService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := core.NewLoggerWithOptions(io.Discard, slog.LevelDebug)
	db, err := core.OpenSQLite(filepath.Join(t.TempDir(), "news.db"), logger)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.NewManager(db, logger).Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	env := &testEnv{
		db:         db,
		logger:     logger,
		sources:    NewSourceService(db, logger),
		categories: NewCategoryService(db, logger),
		articles:   NewArticleService(db, logger),
		runs:       NewRunLogService(db, logger),
	}
	env.ingest = NewIngestService(env.sources, env.categories, env.articles, categorize.New(categorize.DefaultRules()), logger)
	return env
}

func (e *testEnv) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	if err := e.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	return n
}

func (e *testEnv) categorySlugOf(t *testing.T, url string) string {
	t.Helper()
	var slug string
	err := e.db.QueryRow(`
		SELECT c.slug FROM articles a JOIN categories c ON c.id = a.category_id
		WHERE a.original_url = ?`, url).Scan(&slug)
	if err != nil {
		t.Fatalf("failed to load category of %s: %v", url, err)
	}
	return slug
}

func rawArticle(url, title string, tags ...string) models.RawArticle {
	return models.RawArticle{
		Title:       title,
		URL:         url,
		PublishedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Summary:     "",
		Content:     "",
		Tags:        tags,
	}
}
