package handlers

import (
	"context"

	"mobiledev-news/internal/features/crawler/models"
	"mobiledev-news/internal/features/crawler/sources"
)

// CrawlRunner triggers a single source crawl
type CrawlRunner interface {
	RunSource(ctx context.Context, spec sources.Spec, waveID string) (models.SourceResult, error)
}
