package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler/models"
)

// ArticleService handles article rows and their tags
type ArticleService struct {
	db     *core.Database
	logger *core.Logger
}

// NewArticleService creates a new article service
func NewArticleService(db *core.Database, logger *core.Logger) *ArticleService {
	return &ArticleService{
		db:     db,
		logger: logger,
	}
}

// ExistsByURL reports whether an article with this original URL is stored
func (s *ArticleService) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM articles WHERE original_url = ?)`, url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check article existence: %w", err)
	}
	return exists, nil
}

// Create inserts the article and associates its tags in one transaction.
// Tags are get-or-created by slug. A unique violation on the URL, from a
// writer that got there first, is returned as a WRITE_CONFLICT error.
func (s *ArticleService) Create(ctx context.Context, article *models.ArticleCreate) (*models.Article, error) {
	now := time.Now().UTC()
	created := &models.Article{
		Title:        article.Title,
		Summary:      article.Summary,
		Content:      article.Content,
		OriginalURL:  article.OriginalURL,
		ThumbnailURL: article.ThumbnailURL,
		SourceID:     article.SourceID,
		PublishedAt:  article.PublishedAt.UTC(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if article.CategoryID > 0 {
		categoryID := article.CategoryID
		created.CategoryID = &categoryID
	}

	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO articles (title, summary, content, original_url, thumbnail_url,
			                      category_id, source_id, published_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			created.Title,
			created.Summary,
			created.Content,
			created.OriginalURL,
			created.ThumbnailURL,
			created.CategoryID,
			created.SourceID,
			created.PublishedAt,
			now,
			now,
		)
		if err != nil {
			return err
		}

		created.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read article id: %w", err)
		}

		for _, tag := range article.Tags {
			stored, err := getOrCreateTag(ctx, tx, tag)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO article_tags (article_id, tag_id) VALUES (?, ?)`,
				created.ID, stored.ID); err != nil {
				return fmt.Errorf("failed to associate tag %s: %w", tag.Slug, err)
			}
			created.Tags = append(created.Tags, *stored)
		}
		return nil
	})
	if err != nil {
		if core.IsUniqueViolation(err) {
			return nil, core.NewWriteConflictError(fmt.Sprintf("article already stored: %s", article.OriginalURL), err)
		}
		return nil, fmt.Errorf("failed to create article %s: %w", article.OriginalURL, err)
	}

	s.logger.Debug("Created article", "id", created.ID, "url", created.OriginalURL, "tags", len(created.Tags))
	return created, nil
}

// ByURL returns the stored article with its tags
func (s *ArticleService) ByURL(ctx context.Context, url string) (*models.Article, error) {
	var article models.Article
	var categoryID sql.NullInt64

	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, summary, content, original_url, thumbnail_url, category_id, source_id,
		       published_at, like_count, comment_count, created_at, updated_at
		FROM articles WHERE original_url = ?`, url).Scan(
		&article.ID,
		&article.Title,
		&article.Summary,
		&article.Content,
		&article.OriginalURL,
		&article.ThumbnailURL,
		&categoryID,
		&article.SourceID,
		&article.PublishedAt,
		&article.LikeCount,
		&article.CommentCount,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError(fmt.Sprintf("article not found: %s", url), err)
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	if categoryID.Valid {
		article.CategoryID = &categoryID.Int64
	}

	tags, err := s.articleTags(ctx, article.ID)
	if err != nil {
		return nil, err
	}
	article.Tags = tags

	return &article, nil
}

// Count returns the number of stored articles
func (s *ArticleService) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

func (s *ArticleService) articleTags(ctx context.Context, articleID int64) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug
		FROM tags t
		JOIN article_tags at ON at.tag_id = t.id
		WHERE at.article_id = ?
		ORDER BY t.id`, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query article tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// getOrCreateTag must only use tx: the pool holds a single connection
func getOrCreateTag(ctx context.Context, tx *sql.Tx, tag models.TagCreate) (*models.Tag, error) {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO tags (name, slug) VALUES (?, ?) ON CONFLICT(slug) DO NOTHING`,
		tag.Name, tag.Slug); err != nil {
		return nil, fmt.Errorf("failed to create tag %s: %w", tag.Slug, err)
	}

	var stored models.Tag
	err := tx.QueryRowContext(ctx, `SELECT id, name, slug FROM tags WHERE slug = ?`, tag.Slug).
		Scan(&stored.ID, &stored.Name, &stored.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to load tag %s: %w", tag.Slug, err)
	}
	return &stored, nil
}
