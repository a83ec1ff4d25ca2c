package main

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/michaelscutari/symsort/internal/db"
	"github.com/michaelscutari/symsort/internal/snapshot"

	_ "modernc.org/sqlite"
)

// openJournal opens the journal at path, or the latest journal of the
// output directory when path is empty. out overrides the configured output.
func openJournal(path, out string) (*sql.DB, error) {
	if out != "" {
		cfg.Output = out
	}
	if path == "" {
		if cfg.Output == "" {
			return nil, fmt.Errorf("no journal given: pass --db or --out")
		}
		latest, err := snapshot.ResolveLatest(filepath.Join(cfg.Output, snapshot.DirName))
		if err != nil {
			return nil, err
		}
		path = latest
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.ApplyReadPragmas(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	return database, nil
}
