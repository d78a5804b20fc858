package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler/models"
)

// CategoryService reads categories. The pipeline never creates them.
type CategoryService struct {
	db     *core.Database
	logger *core.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(db *core.Database, logger *core.Logger) *CategoryService {
	return &CategoryService{
		db:     db,
		logger: logger,
	}
}

const categoryColumns = `id, name, slug, description, created_at, updated_at`

// BySlug returns the category with the given slug or a NOT_FOUND error
func (s *CategoryService) BySlug(ctx context.Context, slug string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug)
	return s.scanOne(row, fmt.Sprintf("category not found: %s", slug))
}

// First returns the oldest category. It backs the last step of the
// categorization fallback chain.
func (s *CategoryService) First(ctx context.Context) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id LIMIT 1`)
	return s.scanOne(row, "no categories exist")
}

// List returns all categories by id
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *CategoryService) scanOne(row *sql.Row, notFound string) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError(notFound, err)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}
