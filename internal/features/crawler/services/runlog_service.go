package services

import (
	"context"
	"database/sql"
	"fmt"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler/models"
)

const (
	defaultRunLimit = 50
	maxRunLimit     = 500
)

// RunLogService appends and reads crawl run records
type RunLogService struct {
	db     *core.Database
	logger *core.Logger
}

// NewRunLogService creates a new run log service
func NewRunLogService(db *core.Database, logger *core.Logger) *RunLogService {
	return &RunLogService{
		db:     db,
		logger: logger,
	}
}

// Append inserts run and sets its ID. Run records are never updated.
func (s *RunLogService) Append(ctx context.Context, run *models.RunLog) error {
	result, err := s.db.ExecWithTimeout(ctx, `
		INSERT INTO crawl_runs (wave_id, source_id, source_key, status, articles_found,
		                        created, skipped, errors, error_message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.WaveID,
		run.SourceID,
		run.SourceKey,
		string(run.Status),
		run.ArticlesFound,
		run.Created,
		run.Skipped,
		run.Errors,
		run.ErrorMessage,
		run.StartedAt.UTC(),
		run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record crawl run for %s: %w", run.SourceKey, err)
	}

	run.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read crawl run id: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first
func (s *RunLogService) Recent(ctx context.Context, limit int) ([]models.RunLog, error) {
	return s.query(ctx, `SELECT `+runColumns+` FROM crawl_runs ORDER BY started_at DESC, id DESC LIMIT ?`,
		clampRunLimit(limit))
}

// BySource returns the latest runs of one source, newest first
func (s *RunLogService) BySource(ctx context.Context, sourceID int64, limit int) ([]models.RunLog, error) {
	return s.query(ctx, `SELECT `+runColumns+` FROM crawl_runs WHERE source_id = ? ORDER BY started_at DESC, id DESC LIMIT ?`,
		sourceID, clampRunLimit(limit))
}

const runColumns = `id, wave_id, source_id, source_key, status, articles_found, created, skipped, errors, error_message, started_at, finished_at`

func (s *RunLogService) query(ctx context.Context, query string, args ...any) ([]models.RunLog, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query crawl runs: %w", err)
	}
	defer rows.Close()

	runs := []models.RunLog{}
	for rows.Next() {
		var run models.RunLog
		var sourceID sql.NullInt64
		var status string
		err := rows.Scan(
			&run.ID,
			&run.WaveID,
			&sourceID,
			&run.SourceKey,
			&status,
			&run.ArticlesFound,
			&run.Created,
			&run.Skipped,
			&run.Errors,
			&run.ErrorMessage,
			&run.StartedAt,
			&run.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crawl run: %w", err)
		}
		run.Status = models.RunStatus(status)
		if sourceID.Valid {
			run.SourceID = &sourceID.Int64
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func clampRunLimit(limit int) int {
	if limit <= 0 {
		return defaultRunLimit
	}
	if limit > maxRunLimit {
		return maxRunLimit
	}
	return limit
}
