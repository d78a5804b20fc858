package migrations

import (
	"context"
	"fmt"

	"mobiledev-news/internal/core"
)

// Manager applies and rolls back the crawler schema
type Manager struct {
	migrationService *core.MigrationService
	logger           *core.Logger
}

// NewManager creates a new crawler migration manager
func NewManager(db *core.Database, logger *core.Logger) *Manager {
	return &Manager{
		migrationService: core.NewMigrationService(db, logger),
		logger:           logger,
	}
}

// Migrations returns all crawler migrations in order
func (m *Manager) Migrations() []core.Migration {
	return []core.Migration{
		Migration001CreateCrawlerTables,
		Migration002SeedCategories,
	}
}

// Migrate applies all pending crawler migrations
func (m *Manager) Migrate(ctx context.Context) error {
	migrations := m.Migrations()
	m.logger.Info("Starting crawler migrations", "count", len(migrations))

	if err := m.migrationService.ApplyAll(ctx, migrations); err != nil {
		return fmt.Errorf("failed to apply crawler migrations: %w", err)
	}

	m.logger.Info("Crawler migrations completed")
	return nil
}

// Rollback rolls back the most recently applied crawler migration
func (m *Manager) Rollback(ctx context.Context) error {
	if err := m.migrationService.InitMigrations(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	applied, err := m.migrationService.GetAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	known := make(map[int]core.Migration)
	for _, migration := range m.Migrations() {
		known[migration.Version] = migration
	}

	for i := len(applied) - 1; i >= 0; i-- {
		migration, ok := known[applied[i].Version]
		if !ok {
			continue
		}
		if err := m.migrationService.RollbackMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to rollback migration %d (%s): %w", migration.Version, migration.Name, err)
		}
		return nil
	}

	return fmt.Errorf("no crawler migrations have been applied")
}

// Status returns the current migration status
func (m *Manager) Status(ctx context.Context) (*core.MigrationStatus, error) {
	return m.migrationService.GetMigrationStatus(ctx)
}

// GetPendingMigrations returns migrations that haven't been applied yet
func (m *Manager) GetPendingMigrations(ctx context.Context) ([]core.Migration, error) {
	if err := m.migrationService.InitMigrations(ctx); err != nil {
		return nil, err
	}
	return m.migrationService.Pending(ctx, m.Migrations())
}
