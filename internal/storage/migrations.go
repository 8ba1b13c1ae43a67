package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Run dataset tables",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS runs (
					id TEXT PRIMARY KEY,
					started_at DATETIME NOT NULL,
					finished_at DATETIME NOT NULL,
					documents INTEGER NOT NULL,
					succeeded INTEGER NOT NULL,
					failures INTEGER NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS students (
					run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
					anonymous_id TEXT NOT NULL,
					name_hash TEXT NOT NULL,
					major TEXT NOT NULL,
					admission_type TEXT NOT NULL,
					current_grade INTEGER,
					grade1_year INTEGER,
					grade2_year INTEGER,
					grade3_year INTEGER,
					graduation_year INTEGER,
					grade1_covid INTEGER NOT NULL,
					grade2_covid INTEGER NOT NULL,
					grade3_covid INTEGER NOT NULL,
					covid_intensity INTEGER NOT NULL,
					grade1_remote_days INTEGER,
					grade2_remote_days INTEGER,
					grade3_remote_days INTEGER,
					PRIMARY KEY (run_id, anonymous_id)
				)`,

				`CREATE TABLE IF NOT EXISTS grades (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
					anonymous_id TEXT NOT NULL,
					grade_year INTEGER NOT NULL,
					year INTEGER,
					term INTEGER NOT NULL,
					subject TEXT NOT NULL,
					subject_raw TEXT NOT NULL,
					subject_group TEXT NOT NULL,
					achievement TEXT NOT NULL,
					severity INTEGER NOT NULL,
					grade_type TEXT NOT NULL,
					match_score INTEGER NOT NULL,
					strategy TEXT NOT NULL,
					units INTEGER,
					raw_score REAL,
					cohort_average REAL,
					std_dev REAL,
					cohort_size INTEGER,
					rank INTEGER
				)`,
				`CREATE INDEX idx_grades_student ON grades(run_id, anonymous_id)`,

				`CREATE TABLE IF NOT EXISTS narratives (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
					anonymous_id TEXT NOT NULL,
					grade_year INTEGER NOT NULL,
					year INTEGER,
					subject TEXT NOT NULL,
					subject_raw TEXT NOT NULL,
					match_score INTEGER NOT NULL,
					content_length INTEGER NOT NULL,
					exploration INTEGER NOT NULL,
					online INTEGER NOT NULL,
					qualitative INTEGER NOT NULL
				)`,
				`CREATE INDEX idx_narratives_student ON narratives(run_id, anonymous_id)`,

				`CREATE TABLE IF NOT EXISTS volatility (
					run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
					anonymous_id TEXT NOT NULL,
					grade_year INTEGER NOT NULL,
					std_dev REAL NOT NULL,
					mean REAL NOT NULL,
					count INTEGER NOT NULL,
					PRIMARY KEY (run_id, anonymous_id, grade_year)
				)`,

				`CREATE TABLE IF NOT EXISTS yearly_covid (
					run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
					anonymous_id TEXT NOT NULL,
					grade INTEGER NOT NULL,
					year INTEGER NOT NULL,
					is_covid_period INTEGER NOT NULL,
					PRIMARY KEY (run_id, anonymous_id, grade)
				)`,

				`CREATE TABLE IF NOT EXISTS keyword_totals (
					run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
					anonymous_id TEXT NOT NULL,
					exploration INTEGER NOT NULL,
					online INTEGER NOT NULL,
					qualitative INTEGER NOT NULL,
					PRIMARY KEY (run_id, anonymous_id)
				)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Run failures and checkpoint metadata",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS run_failures (
					run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
					document INTEGER NOT NULL,
					anonymous_id TEXT NOT NULL,
					reason TEXT NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS checkpoint_metadata (
					id TEXT PRIMARY KEY,
					created_at DATETIME NOT NULL,
					file_size INTEGER NOT NULL,
					runs INTEGER NOT NULL,
					schema_version INTEGER NOT NULL
				)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate applies pending migrations and verifies the resulting schema version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Debug("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
