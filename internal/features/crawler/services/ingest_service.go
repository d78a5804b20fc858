package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler/categorize"
	"mobiledev-news/internal/features/crawler/models"
	"mobiledev-news/internal/features/crawler/normalize"
	"mobiledev-news/internal/features/crawler/tags"
)

// IngestService deduplicates, categorizes and stores batches of raw articles
type IngestService struct {
	sources     SourceStore
	categories  CategoryStore
	articles    ArticleStore
	categorizer *categorize.Categorizer
	logger      *core.Logger
	now         func() time.Time
}

// NewIngestService creates a new ingest service
func NewIngestService(
	sources SourceStore,
	categories CategoryStore,
	articles ArticleStore,
	categorizer *categorize.Categorizer,
	logger *core.Logger,
) *IngestService {
	return &IngestService{
		sources:     sources,
		categories:  categories,
		articles:    articles,
		categorizer: categorizer,
		logger:      logger,
		now:         time.Now,
	}
}

// ProcessBatch stores the articles of one source. Each article is checked,
// categorized and written independently: a failed write is counted in
// Errors and never affects its siblings. Articles whose URL is already
// stored are counted as skipped.
//
// The only batch-level failures are an unresolvable category, which counts
// every article as an error and returns ErrCategorizationExhausted, and a
// storage failure resolving the source row.
func (s *IngestService) ProcessBatch(
	ctx context.Context,
	articles []models.RawArticle,
	sourceName, sourceURL, defaultCategorySlug string,
) (models.BatchStats, error) {
	stats := models.BatchStats{Total: len(articles)}
	startedAt := s.now().UTC()
	logger := s.logger.WithContext(ctx)

	fallback, err := s.resolveDefaultCategory(ctx, defaultCategorySlug)
	if err != nil {
		stats.Errors = stats.Total
		return stats, err
	}

	source, err := s.sources.GetOrCreate(ctx, &models.SourceCreate{
		Name:       sourceName,
		URL:        sourceURL,
		SourceType: models.SourceTypeForURL(sourceURL),
		CategoryID: fallback.ID,
	})
	if err != nil {
		stats.Errors = stats.Total
		return stats, fmt.Errorf("failed to resolve source %s: %w", sourceURL, err)
	}

	resolved := map[string]*models.Category{fallback.Slug: fallback}

	for i := range articles {
		if ctx.Err() != nil {
			stats.Errors += len(articles) - i
			logger.Warn("Batch cancelled", "source", sourceName, "remaining", len(articles)-i)
			break
		}

		err := s.ingest(ctx, &articles[i], source, fallback, resolved)
		switch {
		case err == nil:
			stats.Created++
		case errors.Is(err, ErrDuplicateArticle):
			stats.Skipped++
			logger.Debug("Skipping existing article", "url", articles[i].URL)
		default:
			stats.Errors++
			logger.Error("Failed to store article", "url", articles[i].URL, "source", sourceName, "error", err)
		}
	}

	if err := s.sources.TouchLastCrawled(ctx, source.ID, startedAt); err != nil {
		logger.Error("Failed to update source crawl time", "source", sourceName, "error", err)
	}

	logger.Info("Processed batch",
		"source", sourceName,
		"total", stats.Total,
		"created", stats.Created,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
	)
	return stats, ctx.Err()
}

func (s *IngestService) ingest(
	ctx context.Context,
	raw *models.RawArticle,
	source *models.Source,
	fallback *models.Category,
	resolved map[string]*models.Category,
) error {
	url := strings.TrimSpace(raw.URL)
	title := normalize.Truncate(strings.TrimSpace(raw.Title), models.MaxTitleLength)
	if url == "" || title == "" {
		return core.NewValidationError("article needs a title and a URL", nil)
	}

	exists, err := s.articles.ExistsByURL(ctx, url)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateArticle
	}

	slug := s.categorizer.Categorize(raw.Title, raw.Summary, raw.Content, fallback.Slug)
	category := s.categoryFor(ctx, slug, fallback, resolved)

	publishedAt := raw.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = s.now()
	}

	_, err = s.articles.Create(ctx, &models.ArticleCreate{
		Title:        title,
		Summary:      raw.Summary,
		Content:      raw.Content,
		OriginalURL:  url,
		ThumbnailURL: raw.ThumbnailURL,
		CategoryID:   category.ID,
		SourceID:     source.ID,
		PublishedAt:  publishedAt.UTC(),
		Tags:         tags.Process(raw.Tags),
	})
	return err
}

// resolveDefaultCategory walks the fallback chain: the caller's slug, the
// cross-platform category, then any category at all
func (s *IngestService) resolveDefaultCategory(ctx context.Context, slug string) (*models.Category, error) {
	for _, candidate := range []string{slug, models.FallbackCategorySlug} {
		if candidate == "" {
			continue
		}
		category, err := s.categories.BySlug(ctx, candidate)
		if err == nil {
			return category, nil
		}
		if !core.HasCode(err, core.ErrCodeNotFound) {
			return nil, err
		}
	}

	category, err := s.categories.First(ctx)
	if err != nil {
		if core.HasCode(err, core.ErrCodeNotFound) {
			return nil, core.NewCategorizationExhaustedError(
				fmt.Sprintf("no category for default slug %q", slug), ErrCategorizationExhausted)
		}
		return nil, err
	}

	s.logger.Warn("Default category missing, using first category", "slug", slug, "category", category.Slug)
	return category, nil
}

// categoryFor maps a scored slug to a stored category, falling back when
// the rule table names a slug the database does not have
func (s *IngestService) categoryFor(
	ctx context.Context,
	slug string,
	fallback *models.Category,
	resolved map[string]*models.Category,
) *models.Category {
	if category, ok := resolved[slug]; ok {
		return category
	}

	category, err := s.categories.BySlug(ctx, slug)
	if err != nil {
		if !core.HasCode(err, core.ErrCodeNotFound) {
			s.logger.Error("Failed to load category", "slug", slug, "error", err)
			return fallback
		}
		category = fallback
	}
	resolved[slug] = category
	return category
}
