package migrations

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"mobiledev-news/internal/core"
)

var crawlerTables = []string{"categories", "sources", "tags", "articles", "article_tags", "crawl_runs"}

func openTestDB(t *testing.T) *core.Database {
	t.Helper()

	logger := core.NewLoggerWithOptions(io.Discard, slog.LevelInfo)
	db, err := core.OpenSQLite(filepath.Join(t.TempDir(), "news.db"), logger)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *core.Database, table string) bool {
	t.Helper()

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to check table %s: %v", table, err)
	}
	return count == 1
}

func TestCrawlerMigrations(t *testing.T) {
	db := openTestDB(t)
	manager := NewManager(db, core.NewLoggerWithOptions(io.Discard, slog.LevelInfo))
	ctx := context.Background()

	if err := manager.Migrate(ctx); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	for _, table := range crawlerTables {
		if !tableExists(t, db, table) {
			t.Errorf("Table %s was not created", table)
		}
	}

	var categories int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&categories); err != nil {
		t.Fatalf("Failed to count categories: %v", err)
	}
	if categories != 5 {
		t.Errorf("Expected 5 seeded categories, got %d", categories)
	}

	// Re-running is a no-op
	if err := manager.Migrate(ctx); err != nil {
		t.Fatalf("Failed to re-apply migrations: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to query migrations table: %v", err)
	}
	if count != len(manager.Migrations()) {
		t.Errorf("Expected %d migrations after re-apply, got %d", len(manager.Migrations()), count)
	}

	pending, err := manager.GetPendingMigrations(ctx)
	if err != nil {
		t.Fatalf("GetPendingMigrations: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("Expected no pending migrations, got %d", len(pending))
	}
}

func TestArticleURLIsUnique(t *testing.T) {
	db := openTestDB(t)
	manager := NewManager(db, core.NewLoggerWithOptions(io.Discard, slog.LevelInfo))
	ctx := context.Background()

	if err := manager.Migrate(ctx); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	if _, err := db.Exec(`INSERT INTO sources (name, url) VALUES ('Blog', 'https://example.com')`); err != nil {
		t.Fatalf("insert source: %v", err)
	}

	insert := `INSERT INTO articles (title, original_url, source_id, published_at) VALUES ('t', 'https://example.com/a', 1, CURRENT_TIMESTAMP)`
	if _, err := db.Exec(insert); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := db.Exec(insert)
	if err == nil {
		t.Fatal("expected unique violation on duplicate original_url")
	}
	if !core.IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
}

func TestMigrationRollback(t *testing.T) {
	db := openTestDB(t)
	manager := NewManager(db, core.NewLoggerWithOptions(io.Discard, slog.LevelInfo))
	ctx := context.Background()

	if err := manager.Migrate(ctx); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	// First rollback removes only the seed data
	if err := manager.Rollback(ctx); err != nil {
		t.Fatalf("Failed to rollback seed migration: %v", err)
	}
	var categories int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&categories); err != nil {
		t.Fatalf("Failed to count categories: %v", err)
	}
	if categories != 0 {
		t.Errorf("Expected seeded categories removed, got %d", categories)
	}

	if err := manager.Rollback(ctx); err != nil {
		t.Fatalf("Failed to rollback table migration: %v", err)
	}
	for _, table := range crawlerTables {
		if tableExists(t, db, table) {
			t.Errorf("Table %s was not removed during rollback", table)
		}
	}

	if err := manager.Rollback(ctx); err == nil {
		t.Error("Expected error when nothing is left to roll back")
	}
}
