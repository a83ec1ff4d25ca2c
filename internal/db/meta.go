package db

import (
	"database/sql"
	"strings"

	"github.com/michaelscutari/symsort/internal/entry"
)

const rootsSep = "\n"

// InitRunMeta records the start of a run.
func InitRunMeta(db *sql.DB, m entry.RunMeta) error {
	_, err := db.Exec(
		`INSERT INTO run_meta (id, roots, output_root, preview, start_time) VALUES (1, ?, ?, ?, ?)`,
		strings.Join(m.Roots, rootsSep), m.OutputRoot, boolToInt(m.Preview), m.StartTime.Unix(),
	)
	return err
}

// FinalizeRunMeta stores the resolved roots, the end time and the final
// counters of a run.
func FinalizeRunMeta(db *sql.DB, m entry.RunMeta) error {
	_, err := db.Exec(
		`UPDATE run_meta SET roots = ?, output_root = ?, end_time = ?, found = ?, created = ?, failed = ?, skipped = ?, system_skipped = ?, scan_errors = ? WHERE id = 1`,
		strings.Join(m.Roots, rootsSep), m.OutputRoot, m.EndTime.Unix(), m.Found, m.Created, m.Failed, m.Skipped, m.SystemSkipped, m.ScanErrors,
	)
	return err
}

// WriteCategoryCounts stores how many files each category found.
func WriteCategoryCounts(db *sql.DB, found map[string]int) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO categories (name, found) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for name, n := range found {
		if _, err := stmt.Exec(name, n); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
