package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler/models"
)

const blogURL = "https://android-developers.googleblog.com/"

func TestProcessBatchCreatesArticles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	crawledAt := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	env.ingest.now = func() time.Time { return crawledAt }

	batch := []models.RawArticle{
		rawArticle("https://example.com/compose", "Building Android apps with Jetpack Compose and Kotlin"),
		rawArticle("https://example.com/swiftui", "What's new in SwiftUI and Xcode"),
		rawArticle("https://example.com/general", "Weekly roundup"),
	}

	stats, err := env.ingest.ProcessBatch(ctx, batch, "Android Developers Blog", blogURL, "cross-platform")
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}

	want := models.BatchStats{Total: 3, Created: 3}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	for url, slug := range map[string]string{
		"https://example.com/compose": "android",
		"https://example.com/swiftui": "ios",
		"https://example.com/general": "cross-platform",
	} {
		if got := env.categorySlugOf(t, url); got != slug {
			t.Errorf("category of %s = %s, want %s", url, got, slug)
		}
	}

	source, err := env.sources.ByURL(ctx, blogURL)
	if err != nil {
		t.Fatalf("source not created: %v", err)
	}
	if source.SourceType != models.SourceTypeBlog {
		t.Errorf("source type = %s, want blog", source.SourceType)
	}
	if source.LastCrawledAt == nil || !source.LastCrawledAt.Equal(crawledAt) {
		t.Errorf("last crawled = %v, want %v", source.LastCrawledAt, crawledAt)
	}

	article, err := env.articles.ByURL(ctx, "https://example.com/compose")
	if err != nil {
		t.Fatalf("ByURL: %v", err)
	}
	if article.SourceID != source.ID || article.LikeCount != 0 || article.CommentCount != 0 {
		t.Errorf("article = %+v", article)
	}
}

func TestProcessBatchIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	batch := []models.RawArticle{
		rawArticle("https://example.com/1", "Flutter 3.22 released"),
		rawArticle("https://example.com/2", "React Native 0.74"),
		rawArticle("https://example.com/3", "Kotlin Multiplatform stable"),
	}

	if _, err := env.ingest.ProcessBatch(ctx, batch, "Blog", blogURL, "cross-platform"); err != nil {
		t.Fatalf("first ProcessBatch: %v", err)
	}
	stats, err := env.ingest.ProcessBatch(ctx, batch, "Blog", blogURL, "cross-platform")
	if err != nil {
		t.Fatalf("second ProcessBatch: %v", err)
	}

	if stats.Created != 0 || stats.Skipped != stats.Total || stats.Errors != 0 {
		t.Errorf("second run stats = %+v, want everything skipped", stats)
	}
	if n := env.count(t, `SELECT COUNT(*) FROM articles`); n != 3 {
		t.Errorf("stored %d articles, want 3", n)
	}
	if n := env.count(t, `SELECT COUNT(*) FROM sources`); n != 1 {
		t.Errorf("stored %d sources, want 1", n)
	}
}

func TestProcessBatchStoresProcessedTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	batch := []models.RawArticle{
		rawArticle("https://example.com/rn", "Expo SDK 51", "React Native", "react-native", "Expo", ""),
		rawArticle("https://example.com/rn2", "Metro bundler tips", "react native", "Metro"),
	}
	if _, err := env.ingest.ProcessBatch(ctx, batch, "Blog", blogURL, "react-native"); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}

	article, err := env.articles.ByURL(ctx, "https://example.com/rn")
	if err != nil {
		t.Fatalf("ByURL: %v", err)
	}
	if len(article.Tags) != 2 {
		t.Fatalf("tags = %+v, want 2", article.Tags)
	}
	if article.Tags[0].Slug != "react-native" || article.Tags[0].Name != "React Native" || article.Tags[1].Slug != "expo" {
		t.Errorf("tags = %+v", article.Tags)
	}

	// tag rows are shared between articles
	if n := env.count(t, `SELECT COUNT(*) FROM tags`); n != 3 {
		t.Errorf("stored %d tags, want 3", n)
	}
	if n := env.count(t, `SELECT COUNT(*) FROM article_tags`); n != 4 {
		t.Errorf("stored %d tag links, want 4", n)
	}
}

func TestProcessBatchRedditSourceType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	batch := []models.RawArticle{rawArticle("https://reddit.com/r/androiddev/comments/1/x/", "Gradle question")}
	if _, err := env.ingest.ProcessBatch(ctx, batch, "Reddit: r/androiddev", "https://reddit.com/r/androiddev", "android"); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}

	source, err := env.sources.ByURL(ctx, "https://reddit.com/r/androiddev")
	if err != nil {
		t.Fatalf("ByURL: %v", err)
	}
	if source.SourceType != models.SourceTypeReddit {
		t.Errorf("source type = %s, want reddit", source.SourceType)
	}
}

type failingArticles struct {
	ArticleStore
	failURL string
}

func (f *failingArticles) Create(ctx context.Context, article *models.ArticleCreate) (*models.Article, error) {
	if article.OriginalURL == f.failURL {
		return nil, core.NewWriteConflictError("simulated failure", errors.New("disk on fire"))
	}
	return f.ArticleStore.Create(ctx, article)
}

func TestProcessBatchIsolatesFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// one article already stored so the batch mixes all three outcomes
	seed := []models.RawArticle{rawArticle("https://example.com/old", "Old news")}
	if _, err := env.ingest.ProcessBatch(ctx, seed, "Blog", blogURL, "cross-platform"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	env.ingest.articles = &failingArticles{ArticleStore: env.articles, failURL: "https://example.com/bad"}

	batch := []models.RawArticle{
		rawArticle("https://example.com/a", "First"),
		rawArticle("https://example.com/bad", "Broken"),
		rawArticle("https://example.com/old", "Old news"),
		rawArticle("https://example.com/b", "Second"),
	}
	stats, err := env.ingest.ProcessBatch(ctx, batch, "Blog", blogURL, "cross-platform")
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}

	want := models.BatchStats{Total: 4, Created: 2, Skipped: 1, Errors: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if exists, _ := env.articles.ExistsByURL(ctx, "https://example.com/bad"); exists {
		t.Error("failed article was stored")
	}
}

// racingArticles hides existing rows from the pre-check, the way a
// concurrent writer committing between check and insert would
type racingArticles struct {
	*ArticleService
}

func (racingArticles) ExistsByURL(context.Context, string) (bool, error) { return false, nil }

func TestProcessBatchUniqueViolationCountsAsError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	batch := []models.RawArticle{rawArticle("https://example.com/race", "Race")}
	if _, err := env.ingest.ProcessBatch(ctx, batch, "Blog", blogURL, "cross-platform"); err != nil {
		t.Fatalf("first ProcessBatch: %v", err)
	}

	env.ingest.articles = racingArticles{env.articles}
	stats, err := env.ingest.ProcessBatch(ctx, batch, "Blog", blogURL, "cross-platform")
	if err != nil {
		t.Fatalf("second ProcessBatch: %v", err)
	}
	if stats.Errors != 1 || stats.Created != 0 {
		t.Errorf("stats = %+v, want one error", stats)
	}

	_, err = env.articles.Create(ctx, &models.ArticleCreate{
		Title: "Race", OriginalURL: "https://example.com/race", SourceID: 1, PublishedAt: time.Now(),
	})
	if !core.HasCode(err, core.ErrCodeWriteConflict) {
		t.Errorf("duplicate insert err = %v, want write conflict", err)
	}
	if n := env.count(t, `SELECT COUNT(*) FROM articles WHERE original_url = ?`, "https://example.com/race"); n != 1 {
		t.Errorf("stored %d rows for one URL", n)
	}
}

func TestProcessBatchConcurrentRunsStoreOneRowPerURL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var batch []models.RawArticle
	for i := 0; i < 8; i++ {
		batch = append(batch, rawArticle(fmt.Sprintf("https://example.com/post-%d", i), fmt.Sprintf("Post %d", i), "Shared"))
	}

	const workers = 4
	results := make([]models.BatchStats, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats, err := env.ingest.ProcessBatch(ctx, batch, "Blog", blogURL, "cross-platform")
			if err != nil {
				t.Errorf("worker %d: %v", w, err)
			}
			results[w] = stats
		}()
	}
	wg.Wait()

	created := 0
	for w, stats := range results {
		if stats.Created+stats.Skipped+stats.Errors != stats.Total {
			t.Errorf("worker %d counts do not add up: %+v", w, stats)
		}
		created += stats.Created
	}
	if created != len(batch) {
		t.Errorf("created %d articles across workers, want %d", created, len(batch))
	}
	if n := env.count(t, `SELECT COUNT(*) FROM articles`); n != len(batch) {
		t.Errorf("stored %d articles, want %d", n, len(batch))
	}
	if n := env.count(t, `SELECT COUNT(*) FROM sources`); n != 1 {
		t.Errorf("stored %d sources, want 1", n)
	}
}

func TestProcessBatchUnknownDefaultCategoryFallsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	batch := []models.RawArticle{rawArticle("https://example.com/x", "Nothing to see")}
	stats, err := env.ingest.ProcessBatch(ctx, batch, "Blog", blogURL, "no-such-category")
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if stats.Created != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if got := env.categorySlugOf(t, "https://example.com/x"); got != models.FallbackCategorySlug {
		t.Errorf("category = %s, want %s", got, models.FallbackCategorySlug)
	}
}

func TestProcessBatchFallsBackToAnyCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.db.Exec(`DELETE FROM categories WHERE slug <> 'flutter'`); err != nil {
		t.Fatalf("delete categories: %v", err)
	}

	batch := []models.RawArticle{rawArticle("https://example.com/swift", "Swift concurrency")}
	stats, err := env.ingest.ProcessBatch(ctx, batch, "Blog", blogURL, "ios")
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if stats.Created != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if got := env.categorySlugOf(t, "https://example.com/swift"); got != "flutter" {
		t.Errorf("category = %s, want the only remaining category", got)
	}
}

func TestProcessBatchWithoutCategoriesAborts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.db.Exec(`DELETE FROM categories`); err != nil {
		t.Fatalf("delete categories: %v", err)
	}

	batch := []models.RawArticle{
		rawArticle("https://example.com/1", "Android"),
		rawArticle("https://example.com/2", "iOS"),
	}
	stats, err := env.ingest.ProcessBatch(ctx, batch, "Blog", blogURL, "android")
	if !errors.Is(err, ErrCategorizationExhausted) {
		t.Fatalf("err = %v, want ErrCategorizationExhausted", err)
	}
	if !core.HasCode(err, core.ErrCodeCategorizationExhausted) {
		t.Errorf("err code mismatch: %v", err)
	}

	want := models.BatchStats{Total: 2, Errors: 2}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if n := env.count(t, `SELECT COUNT(*) FROM articles`); n != 0 {
		t.Errorf("stored %d articles, want 0", n)
	}
}

func TestProcessBatchCancelledContext(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	batch := []models.RawArticle{rawArticle("https://example.com/1", "One")}

	stats, err := env.ingest.ProcessBatch(ctx, batch, "Blog", blogURL, "android")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if stats.Total != 1 || stats.Errors != 1 || stats.Created != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if n := env.count(t, `SELECT COUNT(*) FROM articles`); n != 0 {
		t.Errorf("stored %d articles after cancellation", n)
	}
}
