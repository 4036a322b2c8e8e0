package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "baseline_checkin_pipeline",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_report_date_to_reports",
		Up:      migrationV2,
	},
}

func ensureVersionTable(database *sql.DB) error {
	_, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// RunMigrations applies every migration newer than the recorded schema version.
func RunMigrations(database *sql.DB) error {
	if err := ensureVersionTable(database); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var current int
	if err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := m.Up(database); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// CurrentVersion returns the highest applied migration version.
func CurrentVersion(database *sql.DB) (int, error) {
	var version int
	err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	return version, err
}

// migrationV1 creates the tables that predate report dating.
func migrationV1(database *sql.DB) error {
	_, err := database.Exec(SchemaSQL)
	return err
}

// migrationV2 backfills reports.report_date for databases created before the
// reminder scheduler counted staff reports as submissions.
func migrationV2(database *sql.DB) error {
	var count int
	err := database.QueryRow("SELECT COUNT(*) FROM pragma_table_info('reports') WHERE name = 'report_date'").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if _, err := database.Exec("ALTER TABLE reports ADD COLUMN report_date TEXT NOT NULL DEFAULT ''"); err != nil {
		return err
	}
	_, err = database.Exec("UPDATE reports SET report_date = DATE(created_at) WHERE report_date = ''")
	return err
}
