package models

import (
	"time"
)

// RawArticle is the source-agnostic shape every adapter produces
type RawArticle struct {
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	PublishedAt  time.Time `json:"published_at"`
	Summary      string    `json:"summary"`
	Content      string    `json:"content"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Tags         []string  `json:"tags"`
}

// Article represents a persisted, deduplicated article
type Article struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	Content      string    `json:"content"`
	OriginalURL  string    `json:"original_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	CategoryID   *int64    `json:"category_id"`
	SourceID     int64     `json:"source_id"`
	PublishedAt  time.Time `json:"published_at"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	Tags         []Tag     `json:"tags,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ArticleCreate represents the data needed to create a new article
type ArticleCreate struct {
	Title        string
	Summary      string
	Content      string
	OriginalURL  string
	ThumbnailURL string
	CategoryID   int64
	SourceID     int64
	PublishedAt  time.Time
	Tags         []TagCreate
}

// MaxTitleLength bounds stored article titles, in characters
const MaxTitleLength = 500
