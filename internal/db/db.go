package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"arrow-trader/internal/logger"
)

// DB is the run archive: a SQLite file every run appends to.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the archive at path and runs migrations.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS runs (
				id          TEXT PRIMARY KEY,
				timestamp   TEXT NOT NULL,
				requested   INTEGER NOT NULL,
				fetched     INTEGER NOT NULL,
				skipped     INTEGER NOT NULL,
				no_trade    INTEGER NOT NULL,
				row_errors  INTEGER NOT NULL,
				count       INTEGER NOT NULL,
				top_profit  INTEGER NOT NULL,
				duration_ms INTEGER NOT NULL,
				params_json TEXT NOT NULL DEFAULT '{}'
			);
			CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp);

			CREATE TABLE IF NOT EXISTS trade_results (
				id              INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id          TEXT NOT NULL REFERENCES runs(id),
				position        INTEGER NOT NULL,
				commodity_id    INTEGER NOT NULL,
				commodity_name  TEXT NOT NULL,
				best_profit     INTEGER NOT NULL,
				profit_per_unit INTEGER NOT NULL,
				units           INTEGER NOT NULL,
				buy_price       INTEGER NOT NULL,
				buy_station     TEXT NOT NULL,
				buy_system      TEXT NOT NULL,
				sell_price      INTEGER NOT NULL,
				sell_station    TEXT NOT NULL,
				sell_system     TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_trade_run ON trade_results(run_id);
			CREATE INDEX IF NOT EXISTS idx_trade_commodity ON trade_results(commodity_id);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			ALTER TABLE runs ADD COLUMN report TEXT NOT NULL DEFAULT '';
			INSERT OR IGNORE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		logger.Info("DB", "Applied migration v2 (run report text)")
	}

	return nil
}
