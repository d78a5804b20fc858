// Package services holds the crawl-ingest pipeline: storage access, batch
// ingestion, run recording and scheduling.
package services

import (
	"context"
	"errors"
	"time"

	"mobiledev-news/internal/features/crawler/models"
)

var (
	// ErrDuplicateArticle marks an article whose URL is already stored. It is
	// counted as skipped, never as an error.
	ErrDuplicateArticle = errors.New("article already exists")

	// ErrCategorizationExhausted means no category could be resolved at all,
	// so nothing in the batch can be stored
	ErrCategorizationExhausted = errors.New("no category available for articles")

	// ErrSourceBusy is returned when the source is already being crawled by this process
	ErrSourceBusy = errors.New("source is already being crawled")
)

// SourceStore persists content origins, unique by URL
type SourceStore interface {
	GetOrCreate(ctx context.Context, source *models.SourceCreate) (*models.Source, error)
	ByURL(ctx context.Context, url string) (*models.Source, error)
	List(ctx context.Context) ([]models.Source, error)
	TouchLastCrawled(ctx context.Context, id int64, at time.Time) error
}

// CategoryStore reads the seeded categories
type CategoryStore interface {
	BySlug(ctx context.Context, slug string) (*models.Category, error)
	First(ctx context.Context) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}

// ArticleStore checks and inserts articles. Create stores the article and
// its tags atomically.
type ArticleStore interface {
	ExistsByURL(ctx context.Context, url string) (bool, error)
	Create(ctx context.Context, article *models.ArticleCreate) (*models.Article, error)
}

// RunLogStore is the append-only crawl run audit log
type RunLogStore interface {
	Append(ctx context.Context, run *models.RunLog) error
	Recent(ctx context.Context, limit int) ([]models.RunLog, error)
	BySource(ctx context.Context, sourceID int64, limit int) ([]models.RunLog, error)
}
