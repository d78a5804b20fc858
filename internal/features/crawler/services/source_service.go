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

// SourceService handles source rows
type SourceService struct {
	db     *core.Database
	logger *core.Logger
}

// NewSourceService creates a new source service
func NewSourceService(db *core.Database, logger *core.Logger) *SourceService {
	return &SourceService{
		db:     db,
		logger: logger,
	}
}

const sourceColumns = `id, name, url, feed_url, source_type, category_id, is_active, last_crawled_at, created_at, updated_at`

// GetOrCreate returns the source with the given URL, inserting it first if
// needed. Concurrent callers converge on one row through the UNIQUE url.
func (s *SourceService) GetOrCreate(ctx context.Context, source *models.SourceCreate) (*models.Source, error) {
	sourceType := source.SourceType
	if sourceType == "" {
		sourceType = models.SourceTypeForURL(source.URL)
	}

	var categoryID sql.NullInt64
	if source.CategoryID > 0 {
		categoryID = sql.NullInt64{Int64: source.CategoryID, Valid: true}
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (name, url, feed_url, source_type, category_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(url) DO NOTHING`,
		source.Name, source.URL, source.FeedURL, string(sourceType), categoryID, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create source %s: %w", source.URL, err)
	}

	if n, _ := result.RowsAffected(); n > 0 {
		s.logger.Info("Created source", "name", source.Name, "url", source.URL, "source_type", sourceType)
	}

	return s.ByURL(ctx, source.URL)
}

// ByURL returns the source with the given URL or a NOT_FOUND error
func (s *SourceService) ByURL(ctx context.Context, url string) (*models.Source, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM sources WHERE url = ?`, url)

	source, err := scanSource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError(fmt.Sprintf("source not found: %s", url), err)
		}
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	return source, nil
}

// List returns all sources ordered by name
func (s *SourceService) List(ctx context.Context) ([]models.Source, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sourceColumns+` FROM sources ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []models.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, *source)
	}

	return sources, rows.Err()
}

// TouchLastCrawled sets last_crawled_at. Overlapping runs may race here; the
// last writer wins.
func (s *SourceService) TouchLastCrawled(ctx context.Context, id int64, at time.Time) error {
	_, err := s.db.ExecWithTimeout(ctx,
		`UPDATE sources SET last_crawled_at = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update last crawled time for source %d: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*models.Source, error) {
	var source models.Source
	var sourceType string
	var categoryID sql.NullInt64
	var lastCrawled sql.NullTime

	err := row.Scan(
		&source.ID,
		&source.Name,
		&source.URL,
		&source.FeedURL,
		&sourceType,
		&categoryID,
		&source.IsActive,
		&lastCrawled,
		&source.CreatedAt,
		&source.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	source.SourceType = models.SourceType(sourceType)
	if categoryID.Valid {
		source.CategoryID = &categoryID.Int64
	}
	if lastCrawled.Valid {
		t := lastCrawled.Time.UTC()
		source.LastCrawledAt = &t
	}
	return &source, nil
}
