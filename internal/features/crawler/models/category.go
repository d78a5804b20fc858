package models

import (
	"time"
)

// Category is a top-level topic such as android or ios. Categories are
// seeded by migration and never created by the pipeline.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FallbackCategorySlug is used for sources whose default category is missing
const FallbackCategorySlug = "cross-platform"
