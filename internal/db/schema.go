package db

import (
	"database/sql"
	"fmt"
)

const runMetaTableDDL = `
CREATE TABLE IF NOT EXISTS run_meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    roots TEXT NOT NULL,
    output_root TEXT NOT NULL,
    preview INTEGER NOT NULL DEFAULT 0,
    start_time INTEGER NOT NULL,
    end_time INTEGER,
    found INTEGER DEFAULT 0,
    created INTEGER DEFAULT 0,
    failed INTEGER DEFAULT 0,
    skipped INTEGER DEFAULT 0,
    system_skipped INTEGER DEFAULT 0,
    scan_errors INTEGER DEFAULT 0
);
`

const categoriesTableDDL = `
CREATE TABLE IF NOT EXISTS categories (
    name TEXT PRIMARY KEY,
    found INTEGER NOT NULL
);
`

const linksTableDDL = `
CREATE TABLE IF NOT EXISTS links (
    id INTEGER PRIMARY KEY,
    category TEXT NOT NULL,
    namespace TEXT NOT NULL,
    name TEXT NOT NULL,
    source TEXT NOT NULL,
    target TEXT NOT NULL,
    outcome INTEGER NOT NULL,
    reason TEXT NOT NULL DEFAULT ''
);
`

const linksCategoryIndexDDL = `CREATE INDEX IF NOT EXISTS idx_links_category_ns ON links(category, namespace);`
const linksOutcomeIndexDDL = `CREATE INDEX IF NOT EXISTS idx_links_outcome ON links(outcome);`
const linksTargetIndexDDL = `CREATE INDEX IF NOT EXISTS idx_links_target ON links(target);`

// InitSchema creates all tables in the database.
func InitSchema(db *sql.DB) error {
	ddls := []string{
		runMetaTableDDL,
		categoriesTableDDL,
		linksTableDDL,
	}

	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}

// ApplyWritePragmas configures SQLite for bulk journaling.
func ApplyWritePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -16000", // 16MB cache
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}

// ApplyReadPragmas configures SQLite for read-only browsing.
func ApplyReadPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA temp_store = MEMORY",
		"PRAGMA query_only = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}

// BuildIndexes creates indexes after the link records are loaded.
func BuildIndexes(db *sql.DB) error {
	indexes := []string{
		linksCategoryIndexDDL,
		linksOutcomeIndexDDL,
		linksTargetIndexDDL,
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// Finalize prepares the database for read-only access.
func Finalize(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA optimize"); err != nil {
		return fmt.Errorf("failed to optimize: %w", err)
	}

	// Switch from WAL to DELETE for better portability
	if _, err := db.Exec("PRAGMA journal_mode = DELETE"); err != nil {
		return fmt.Errorf("failed to set journal mode: %w", err)
	}

	return nil
}
