package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler/models"
	"mobiledev-news/internal/features/crawler/normalize"
)

const (
	redditTokenURL     = "https://www.reddit.com/api/v1/access_token"
	redditAPIBase      = "https://oauth.reddit.com"
	redditPermalinkURL = "https://reddit.com"

	defaultRedditLimit = 25
	maxRedditLimit     = 100
)

// ErrMissingCredentials is returned when no Reddit client id or secret is configured
var ErrMissingCredentials = errors.New("reddit client id and secret are required")

// RedditConfig configures a RedditAdapter
type RedditConfig struct {
	Subreddit    string
	Limit        int
	Listing      string
	ClientID     string
	ClientSecret string
	UserAgent    string
	TokenURL     string
	APIBase      string
}

// RedditAdapter reads a subreddit listing through the OAuth API using
// application-only credentials
type RedditAdapter struct {
	config RedditConfig
	client *http.Client
	logger *core.Logger
}

type redditListing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []redditChild `json:"children"`
	} `json:"data"`
}

type redditChild struct {
	Kind string     `json:"kind"`
	Data redditPost `json:"data"`
}

type redditPost struct {
	Title         string  `json:"title"`
	Permalink     string  `json:"permalink"`
	CreatedUTC    float64 `json:"created_utc"`
	Selftext      string  `json:"selftext"`
	LinkFlairText *string `json:"link_flair_text"`
	Thumbnail     string  `json:"thumbnail"`
	Preview       *struct {
		Images []struct {
			Source struct {
				URL string `json:"url"`
			} `json:"source"`
		} `json:"images"`
	} `json:"preview"`
}

// NewRedditAdapter creates a new Reddit adapter
func NewRedditAdapter(config RedditConfig, client *http.Client, logger *core.Logger) *RedditAdapter {
	if config.Limit <= 0 {
		config.Limit = defaultRedditLimit
	}
	if config.Limit > maxRedditLimit {
		config.Limit = maxRedditLimit
	}
	if config.Listing == "" {
		config.Listing = "hot"
	}
	if config.TokenURL == "" {
		config.TokenURL = redditTokenURL
	}
	if config.APIBase == "" {
		config.APIBase = redditAPIBase
	}

	return &RedditAdapter{
		config: config,
		client: client,
		logger: logger,
	}
}

// Crawl fetches up to Limit posts from the configured listing
func (r *RedditAdapter) Crawl(ctx context.Context) ([]models.RawArticle, error) {
	source := "r/" + r.config.Subreddit

	if strings.TrimSpace(r.config.ClientID) == "" || strings.TrimSpace(r.config.ClientSecret) == "" {
		return nil, core.NewSourceFetchError(source, ErrMissingCredentials)
	}

	listing, err := r.fetchListing(ctx)
	if err != nil {
		return nil, core.NewSourceFetchError(source, err)
	}

	articles := make([]models.RawArticle, 0, len(listing.Data.Children))
	for i, child := range listing.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		article, err := mapRedditPost(child.Data)
		if err != nil {
			r.logger.Warn("Skipping reddit post", "subreddit", r.config.Subreddit, "index", i, "error", err)
			continue
		}
		articles = append(articles, article)
	}

	r.logger.Info("Fetched subreddit", "subreddit", r.config.Subreddit, "listing", r.config.Listing, "articles", len(articles))
	return articles, nil
}

func (r *RedditAdapter) fetchListing(ctx context.Context) (*redditListing, error) {
	// Every request, the token exchange included, must carry the user agent
	base := &http.Client{
		Timeout:   r.client.Timeout,
		Transport: &userAgentTransport{userAgent: r.config.UserAgent, base: r.client.Transport},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	creds := clientcredentials.Config{
		ClientID:     r.config.ClientID,
		ClientSecret: r.config.ClientSecret,
		TokenURL:     r.config.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	client := creds.Client(ctx)

	query := url.Values{}
	query.Set("limit", strconv.Itoa(r.config.Limit))
	query.Set("raw_json", "1")
	endpoint := fmt.Sprintf("%s/r/%s/%s?%s",
		strings.TrimRight(r.config.APIBase, "/"),
		url.PathEscape(r.config.Subreddit),
		url.PathEscape(r.config.Listing),
		query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("listing returned status %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	if listing.Kind != "" && listing.Kind != "Listing" {
		return nil, fmt.Errorf("unexpected response kind %q", listing.Kind)
	}

	return &listing, nil
}

func mapRedditPost(post redditPost) (models.RawArticle, error) {
	title := normalize.CollapseWhitespace(post.Title)
	if title == "" {
		return models.RawArticle{}, core.NewEntryParseError("post has no title", nil)
	}
	if !strings.HasPrefix(post.Permalink, "/") {
		return models.RawArticle{}, core.NewEntryParseError(fmt.Sprintf("post %q has no permalink", title), nil)
	}

	content := strings.TrimSpace(post.Selftext)
	summary := ""
	if content != "" {
		summary = normalize.Truncate(normalize.CollapseWhitespace(content), normalize.SummaryLength)
	}

	var tags []string
	if post.LinkFlairText != nil {
		if flair := strings.TrimSpace(*post.LinkFlairText); flair != "" {
			tags = []string{flair}
		}
	}

	published := normalize.Now()
	if post.CreatedUTC > 0 {
		published = normalize.FromUnix(post.CreatedUTC)
	}

	return models.RawArticle{
		Title:        title,
		URL:          redditPermalinkURL + post.Permalink,
		PublishedAt:  published,
		Summary:      summary,
		Content:      content,
		ThumbnailURL: redditThumbnail(post),
		Tags:         tags,
	}, nil
}

// redditThumbnail prefers the full preview image over the small thumbnail.
// Placeholder thumbnails such as "self" or "default" are ignored.
func redditThumbnail(post redditPost) string {
	if post.Preview != nil {
		for _, img := range post.Preview.Images {
			if u := html.UnescapeString(img.Source.URL); isHTTPURL(u) {
				return u
			}
		}
	}
	if isHTTPURL(post.Thumbnail) {
		return post.Thumbnail
	}
	return ""
}

type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.userAgent == "" {
		return base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return base.RoundTrip(clone)
}
