// Package index records the definitions of each completions run in sqlite so
// a trigger can be traced back to the file and line it came from.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // sqlite driver for database/sql
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNoIndex is returned when the database holds no recorded run.
var ErrNoIndex = errors.New("no run recorded; run generate with --index-db")

// Run summarizes one generate invocation.
type Run struct {
	ID          string
	Root        string
	Output      string
	Classes     int
	Constants   int
	Methods     int
	StartedAt   time.Time
	CompletedAt time.Time
}

// Entry is one emitted definition.
type Entry struct {
	Kind    string
	Name    string
	Trigger string
	Snippet string
	File    string
	Line    int
	Private bool
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Open opens the sqlite database at the given path and applies pragmas.
func Open(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(context.Background(), p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %s: %w", p, err)
		}
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// migrations are applied in order starting from version 0.
// Never modify an existing migration, only append.
var migrations = []func(*sql.Tx) error{
	migrateV0,
}

func migrateV0(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
            id TEXT PRIMARY KEY,
            root TEXT NOT NULL,
            output TEXT NOT NULL,
            classes INTEGER NOT NULL,
            constants INTEGER NOT NULL,
            methods INTEGER NOT NULL,
            started_at TEXT NOT NULL,
            completed_at TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS definitions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            run_id TEXT NOT NULL,
            kind TEXT NOT NULL,
            name TEXT NOT NULL,
            completion_trigger TEXT NOT NULL,
            snippet TEXT DEFAULT '',
            file_path TEXT NOT NULL,
            line INTEGER NOT NULL,
            private INTEGER DEFAULT 0,
            FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
        );`,
		`CREATE INDEX IF NOT EXISTS idx_definitions_trigger ON definitions(completion_trigger);`,
		`CREATE INDEX IF NOT EXISTS idx_definitions_name ON definitions(name);`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(context.Background(), stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

func ensureSchema(db *sql.DB) error {
	if _, err := db.ExecContext(context.Background(), schemaVersionTable); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current int
	row := db.QueryRowContext(context.Background(), "SELECT COALESCE(MAX(version), -1) FROM schema_version")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	for i := current + 1; i < len(migrations); i++ {
		if err := runMigration(db, i); err != nil {
			return fmt.Errorf("run migration %d: %w", i, err)
		}
	}
	return nil
}

func runMigration(db *sql.DB, version int) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := migrations[version](tx); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(context.Background(), "INSERT INTO schema_version (version, applied_at) VALUES (?, ?)", version, now); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}

// SchemaVersion returns the current schema version.
func SchemaVersion(db *sql.DB) (int, error) {
	var version int
	row := db.QueryRowContext(context.Background(), "SELECT COALESCE(MAX(version), -1) FROM schema_version")
	err := row.Scan(&version)
	return version, err
}

// Record stores run and replaces the definitions of any earlier run with entries.
func Record(ctx context.Context, db *sql.DB, run Run, entries []Entry) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM definitions`); err != nil {
		return fmt.Errorf("clear definitions: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, root, output, classes, constants, methods, started_at, completed_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Root, run.Output, run.Classes, run.Constants, run.Methods,
		run.StartedAt.UTC().Format(timeLayout), run.CompletedAt.UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO definitions (run_id, kind, name, completion_trigger, snippet, file_path, line, private)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, run.ID, e.Kind, e.Name, e.Trigger, e.Snippet, e.File, e.Line, boolToInt(e.Private)); err != nil {
			return fmt.Errorf("insert definition %s: %w", e.Trigger, err)
		}
	}
	return tx.Commit()
}

// Locate returns the definitions whose trigger or bare name equals query.
func Locate(ctx context.Context, db *sql.DB, query string) ([]Entry, error) {
	query = strings.TrimSpace(query)
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}
	if n == 0 {
		return nil, ErrNoIndex
	}

	rows, err := db.QueryContext(ctx,
		`SELECT kind, name, completion_trigger, snippet, file_path, line, private
         FROM definitions
         WHERE completion_trigger = ? OR name = ?
         ORDER BY kind, completion_trigger`, query, query)
	if err != nil {
		return nil, fmt.Errorf("query definitions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var private int
		if err := rows.Scan(&e.Kind, &e.Name, &e.Trigger, &e.Snippet, &e.File, &e.Line, &private); err != nil {
			return nil, err
		}
		e.Private = private != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// Runs returns up to limit recorded runs, newest first. A limit of 0 returns all.
func Runs(ctx context.Context, db *sql.DB, limit int) ([]Run, error) {
	q := `SELECT id, root, output, classes, constants, methods, started_at, completed_at
          FROM runs ORDER BY completed_at DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, completed string
		if err := rows.Scan(&r.ID, &r.Root, &r.Output, &r.Classes, &r.Constants, &r.Methods, &started, &completed); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(timeLayout, started)
		r.CompletedAt, _ = time.Parse(timeLayout, completed)
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
