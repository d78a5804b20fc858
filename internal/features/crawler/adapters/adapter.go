// Package adapters fetches articles from external sources and maps them to
// models.RawArticle.
package adapters

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler/models"
	"mobiledev-news/internal/features/crawler/sources"
)

// Adapter fetches the current window of one source. Each call re-fetches;
// nothing is retained between calls.
type Adapter interface {
	Crawl(ctx context.Context) ([]models.RawArticle, error)
}

// AdapterFunc lets a plain function act as an Adapter
type AdapterFunc func(ctx context.Context) ([]models.RawArticle, error)

func (f AdapterFunc) Crawl(ctx context.Context) ([]models.RawArticle, error) {
	return f(ctx)
}

// Deps are the shared dependencies adapters are built with
type Deps struct {
	Logger     *core.Logger
	HTTPClient *http.Client
	UserAgent  string
	Reddit     core.RedditConfig
	// RedditLimit is the post limit for Reddit sources that set none
	RedditLimit int
	// RedditTokenURL and RedditAPIBase point the Reddit adapter at another host
	RedditTokenURL string
	RedditAPIBase  string
}

// Factory builds the adapter for a registry entry
type Factory func(spec sources.Spec) (Adapter, error)

// NewFactory returns a Factory bound to deps
func NewFactory(deps Deps) Factory {
	return func(spec sources.Spec) (Adapter, error) {
		return New(spec, deps)
	}
}

// New builds the adapter for spec
func New(spec sources.Spec, deps Deps) (Adapter, error) {
	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if deps.Logger == nil {
		deps.Logger = core.NewLogger()
	}
	logger := deps.Logger.WithSource(spec.Key)

	switch spec.Kind {
	case sources.KindFeed:
		return NewFeedAdapter(FeedConfig{
			FeedURL:   spec.FeedURL,
			UserAgent: deps.UserAgent,
		}, deps.HTTPClient, logger), nil
	case sources.KindReddit:
		limit := spec.Limit
		if limit == 0 {
			limit = deps.RedditLimit
		}
		return NewRedditAdapter(RedditConfig{
			Subreddit:    spec.Subreddit,
			Limit:        limit,
			Listing:      spec.Listing,
			ClientID:     deps.Reddit.ClientID,
			ClientSecret: deps.Reddit.ClientSecret,
			UserAgent:    deps.Reddit.UserAgent,
			TokenURL:     deps.RedditTokenURL,
			APIBase:      deps.RedditAPIBase,
		}, deps.HTTPClient, logger), nil
	default:
		return nil, core.NewConfigurationError(fmt.Sprintf("source %s has unsupported kind %q", spec.Key, spec.Kind), nil)
	}
}
