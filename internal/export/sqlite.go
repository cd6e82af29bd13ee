package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// schema contains the DDL executed on every open. IF NOT EXISTS makes it
// safe to re-run against an existing database.
const schema = `
CREATE TABLE IF NOT EXISTS records (
    eco_name   TEXT NOT NULL,
    branch     TEXT NOT NULL DEFAULT '',
    repo_url   TEXT NOT NULL,
    tags       TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (eco_name, branch, repo_url)
);
`

// WriteSQLite upserts records into a SQLite database at dbPath, creating the
// schema if needed. The (eco_name, branch, repo_url) triple is the identity
// key, so re-exporting after a rebuild refreshes rows in place and the
// database stays queryable by downstream tooling between runs.
func WriteSQLite(ctx context.Context, dbPath string, recs []Record) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("export: open database: %w", err)
	}
	defer db.Close()

	// One connection: SQLite has a single writer, and a lone pooled
	// connection avoids SQLITE_BUSY between connections that each need
	// their own PRAGMA setup.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("export: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("export: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("export: create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("export: begin transaction: %w", err)
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO records (eco_name, branch, repo_url, tags, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(eco_name, branch, repo_url)
		DO UPDATE SET tags = excluded.tags, updated_at = CURRENT_TIMESTAMP`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("export: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		branch := strings.Join(r.Branch, "/")
		tags := strings.Join(r.Tags, " ")
		if _, err := stmt.ExecContext(ctx, r.EcoName, branch, r.RepoURL, tags); err != nil {
			return fmt.Errorf("export: upsert %s: %w", r.RepoURL, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("export: commit: %w", err)
	}
	return nil
}
