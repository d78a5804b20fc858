package models

import (
	"strings"
	"time"
)

// SourceType classifies where a source's articles come from
type SourceType string

const (
	SourceTypeBlog   SourceType = "blog"
	SourceTypeReddit SourceType = "reddit"
	SourceTypeForum  SourceType = "forum"
)

// SourceTypeForURL infers the source type from its canonical URL
func SourceTypeForURL(url string) SourceType {
	if strings.Contains(strings.ToLower(url), "reddit.com") {
		return SourceTypeReddit
	}
	return SourceTypeBlog
}

// Source represents a persisted content origin, unique by URL
type Source struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	FeedURL       string     `json:"feed_url,omitempty"`
	SourceType    SourceType `json:"source_type"`
	CategoryID    *int64     `json:"category_id"`
	IsActive      bool       `json:"is_active"`
	LastCrawledAt *time.Time `json:"last_crawled_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SourceCreate represents the data needed to create a new source
type SourceCreate struct {
	Name       string
	URL        string
	FeedURL    string
	SourceType SourceType
	CategoryID int64
}
