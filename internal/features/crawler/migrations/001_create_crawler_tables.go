package migrations

import (
	"mobiledev-news/internal/core"
)

// Migration001CreateCrawlerTables creates the article, source, tag and run log tables
var Migration001CreateCrawlerTables = core.Migration{
	Version:     1,
	Name:        "create_crawler_tables",
	Description: "Create news article, source, category, tag and crawl run tables",
	UpSQL: `
		CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			slug TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS sources (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			url TEXT NOT NULL UNIQUE,
			feed_url TEXT NOT NULL DEFAULT '',
			source_type TEXT NOT NULL DEFAULT 'blog' CHECK (source_type IN ('blog', 'reddit', 'forum')),
			category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			last_crawled_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS tags (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS articles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			original_url TEXT NOT NULL UNIQUE,
			thumbnail_url TEXT NOT NULL DEFAULT '',
			category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
			source_id INTEGER NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
			published_at DATETIME NOT NULL,
			like_count INTEGER NOT NULL DEFAULT 0,
			comment_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS article_tags (
			article_id INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			PRIMARY KEY (article_id, tag_id)
		);

		CREATE TABLE IF NOT EXISTS crawl_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			wave_id TEXT NOT NULL DEFAULT '',
			source_id INTEGER REFERENCES sources(id) ON DELETE SET NULL,
			source_key TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL CHECK (status IN ('success', 'failed')),
			articles_found INTEGER NOT NULL DEFAULT 0,
			created INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			errors INTEGER NOT NULL DEFAULT 0,
			error_message TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at);
		CREATE INDEX IF NOT EXISTS idx_articles_category_id ON articles(category_id);
		CREATE INDEX IF NOT EXISTS idx_articles_source_id ON articles(source_id);
		CREATE INDEX IF NOT EXISTS idx_article_tags_tag_id ON article_tags(tag_id);
		CREATE INDEX IF NOT EXISTS idx_sources_source_type ON sources(source_type);
		CREATE INDEX IF NOT EXISTS idx_crawl_runs_source_id ON crawl_runs(source_id);
		CREATE INDEX IF NOT EXISTS idx_crawl_runs_wave_id ON crawl_runs(wave_id);
		CREATE INDEX IF NOT EXISTS idx_crawl_runs_started_at ON crawl_runs(started_at);
	`,
	DownSQL: `
		DROP INDEX IF EXISTS idx_crawl_runs_started_at;
		DROP INDEX IF EXISTS idx_crawl_runs_wave_id;
		DROP INDEX IF EXISTS idx_crawl_runs_source_id;
		DROP INDEX IF EXISTS idx_sources_source_type;
		DROP INDEX IF EXISTS idx_article_tags_tag_id;
		DROP INDEX IF EXISTS idx_articles_source_id;
		DROP INDEX IF EXISTS idx_articles_category_id;
		DROP INDEX IF EXISTS idx_articles_published_at;

		DROP TABLE IF EXISTS crawl_runs;
		DROP TABLE IF EXISTS article_tags;
		DROP TABLE IF EXISTS articles;
		DROP TABLE IF EXISTS tags;
		DROP TABLE IF EXISTS sources;
		DROP TABLE IF EXISTS categories;
	`,
}
