// Package trace records completion runs to a SQLite file for later
// inspection with the trace CLI command.
//
// The recorder is diagnostic only. The rewrite system itself is never
// persisted or reconstructed from a trace; a run row just captures what
// a Complete call was asked to do and the rule vector it ended with.
package trace

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Recorder writes completion traces to a SQLite database.
// SQLite only supports one writer at a time; the recorder keeps a
// single connection to avoid SQLITE_BUSY errors.
type Recorder struct {
	db *sql.DB
}

// Run is one recorded Complete invocation.
type Run struct {
	ID        int64
	Token     string
	Source    string
	Result    string
	MaxIter   uint32
	MaxDepth  uint32
	CreatedAt string
}

// RuleRow is one rule of a recorded run, in dump order.
type RuleRow struct {
	Seq     int
	LHS     string
	RHS     string
	Depth   uint32
	Deleted bool
}

// Open creates or opens a trace database at the given path and applies
// the schema. Safe to call on an existing trace file.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open trace database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to trace database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply trace schema: %w", err)
	}

	return &Recorder{db: db}, nil
}

// Close closes the database connection.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// RecordRun writes one completed run and its final rule vector in a
// single transaction. Returns the new run's ID.
func (r *Recorder) RecordRun(ctx context.Context, run Run, rules []RuleRow) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (token, source, result, max_iter, max_depth)
		VALUES (?, ?, ?, ?, ?)
	`, run.Token, run.Source, run.Result, run.MaxIter, run.MaxDepth)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}

	for _, rule := range rules {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO rules (run_id, seq, lhs, rhs, depth, deleted)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, rule.Seq, rule.LHS, rule.RHS, rule.Depth, rule.Deleted); err != nil {
			return 0, fmt.Errorf("record rule %d: %w", rule.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// ListRuns returns all recorded runs, oldest first.
func (r *Recorder) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, token, source, result, max_iter, max_depth, created_at
		FROM runs ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Token, &run.Source, &run.Result,
			&run.MaxIter, &run.MaxDepth, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Rules returns the recorded rule vector of a run, in dump order.
func (r *Recorder) Rules(ctx context.Context, runID int64) ([]RuleRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT seq, lhs, rhs, depth, deleted
		FROM rules WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rules []RuleRow
	for rows.Next() {
		var rule RuleRow
		if err := rows.Scan(&rule.Seq, &rule.LHS, &rule.RHS, &rule.Depth, &rule.Deleted); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
