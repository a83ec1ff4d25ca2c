package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/michaelscutari/symsort/internal/entry"
)

// CategoryRow is one category with its found and linked counts.
type CategoryRow struct {
	Name    string
	Found   int64
	Created int64
	Failed  int64
	Skipped int64
}

// NamespaceRow is one namespace directory under a category.
type NamespaceRow struct {
	Name  string
	Links int64
}

// LinkRow is one journaled link.
type LinkRow struct {
	Category  string
	Namespace string
	Name      string
	Source    string
	Target    string
	Outcome   entry.Outcome
	Reason    string
}

// GetRunMeta retrieves run metadata.
func GetRunMeta(db *sql.DB) (*entry.RunMeta, error) {
	var m entry.RunMeta
	var roots string
	var preview int
	var startTime, endTime int64

	err := db.QueryRow(`
		SELECT roots, output_root, preview, start_time, COALESCE(end_time, 0),
		       found, created, failed, skipped, system_skipped, scan_errors
		FROM run_meta WHERE id = 1
	`).Scan(&roots, &m.OutputRoot, &preview, &startTime, &endTime,
		&m.Found, &m.Created, &m.Failed, &m.Skipped, &m.SystemSkipped, &m.ScanErrors)
	if err != nil {
		return nil, err
	}

	if roots != "" {
		m.Roots = strings.Split(roots, rootsSep)
	}
	m.Preview = preview != 0
	m.StartTime = time.Unix(startTime, 0)
	if endTime > 0 {
		m.EndTime = time.Unix(endTime, 0)
	}

	return &m, nil
}

// LoadCategories returns every category that found files, busiest first.
func LoadCategories(db *sql.DB) ([]CategoryRow, error) {
	rows, err := db.Query(`
		SELECT c.name, c.found,
		       COALESCE(SUM(CASE WHEN l.outcome = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN l.outcome = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN l.outcome = ? THEN 1 ELSE 0 END), 0)
		FROM categories c
		LEFT JOIN links l ON l.category = c.name
		GROUP BY c.name, c.found
		ORDER BY c.found DESC, c.name ASC
	`, int(entry.Created), int(entry.Failed), int(entry.Skipped))
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []CategoryRow
	for rows.Next() {
		var c CategoryRow
		if err := rows.Scan(&c.Name, &c.Found, &c.Created, &c.Failed, &c.Skipped); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LoadNamespaces lists the namespaces of a category.
func LoadNamespaces(db *sql.DB, category, sortBy string, limit int) ([]NamespaceRow, error) {
	orderClause := "links DESC, namespace ASC"
	if sortBy == "name" {
		orderClause = "namespace ASC"
	}

	query := fmt.Sprintf(`
		SELECT namespace, COUNT(*) AS links
		FROM links
		WHERE category = ?
		GROUP BY namespace
		ORDER BY %s
		LIMIT ?
	`, orderClause)

	rows, err := db.Query(query, category, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []NamespaceRow
	for rows.Next() {
		var n NamespaceRow
		if err := rows.Scan(&n.Name, &n.Links); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// LoadLinks lists the links placed in one namespace directory.
func LoadLinks(db *sql.DB, category, namespace string, limit int) ([]LinkRow, error) {
	return queryLinks(db, `
		SELECT category, namespace, name, source, target, outcome, reason
		FROM links
		WHERE category = ? AND namespace = ?
		ORDER BY name ASC
		LIMIT ?
	`, category, namespace, limit)
}

// LoadFailures lists the links that could not be created.
func LoadFailures(db *sql.DB, limit int) ([]LinkRow, error) {
	return queryLinks(db, `
		SELECT category, namespace, name, source, target, outcome, reason
		FROM links
		WHERE outcome = ?
		ORDER BY target ASC
		LIMIT ?
	`, int(entry.Failed), limit)
}

// FindBySource returns the links whose source path contains substr.
func FindBySource(db *sql.DB, substr string, limit int) ([]LinkRow, error) {
	return queryLinks(db, `
		SELECT category, namespace, name, source, target, outcome, reason
		FROM links
		WHERE instr(source, ?) > 0
		ORDER BY source ASC
		LIMIT ?
	`, substr, limit)
}

func queryLinks(db *sql.DB, query string, args ...any) ([]LinkRow, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []LinkRow
	for rows.Next() {
		var l LinkRow
		if err := rows.Scan(&l.Category, &l.Namespace, &l.Name, &l.Source, &l.Target, &l.Outcome, &l.Reason); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
