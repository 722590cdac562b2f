/*
* SQLite history of scan runs
* Copyright (C) 2025  Artem Stefankiv
*
* This program is free software: you can redistribute it and/or modify
* it under the terms of the GNU General Public License as published by
* the Free Software Foundation, either version 3 of the License, or
* (at your option) any later version.
*
* This program is distributed in the hope that it will be useful,
* but WITHOUT ANY WARRANTY; without even the implied warranty of
* MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
* GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License
* along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

// Package store keeps a SQLite history of scan runs and their findings.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Gilah-EnE/sampen_scanner/internal/scanner"
)

// Schema for the run history. Non-finite values are stored as NULL with the
// matching *_infinite flag set.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id                  TEXT PRIMARY KEY,
    root                TEXT NOT NULL,
    started_ns          INTEGER NOT NULL,
    finished_ns         INTEGER NOT NULL,
    shingle_length      INTEGER NOT NULL,
    comparison_length   INTEGER NOT NULL,
    tolerance           REAL NOT NULL,
    threshold           REAL NOT NULL,
    files               INTEGER NOT NULL,
    analyzed            INTEGER NOT NULL,
    skipped             INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_ns);

CREATE TABLE IF NOT EXISTS findings (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id              TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    ordinal             INTEGER NOT NULL,
    group_key           TEXT NOT NULL,
    group_type          TEXT NOT NULL,
    path                TEXT NOT NULL,
    entropy             REAL,
    entropy_infinite    INTEGER NOT NULL,
    z_score             REAL,
    z_infinite          INTEGER NOT NULL,
    signature_confirmed INTEGER NOT NULL,
    digest              TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id, ordinal);
CREATE INDEX IF NOT EXISTS idx_findings_path ON findings(path);
CREATE INDEX IF NOT EXISTS idx_findings_digest ON findings(digest);
`

// Run is a stored scan run.
type Run struct {
	ID               uuid.UUID
	Root             string
	Started          time.Time
	Finished         time.Time
	ShingleLength    int
	ComparisonLength int
	Tolerance        float64
	Threshold        float64
	Files            int
	Analyzed         int
	Skipped          int
}

// Finding is a stored anomaly. Entropy and ZScore are +Inf when stored as
// infinite.
type Finding struct {
	RunID              uuid.UUID
	Group              string
	Type               string
	Path               string
	Entropy            float64
	ZScore             float64
	SignatureConfirmed bool
	Digest             string
}

// Store represents the SQLite run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and applies
// the schema.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func nullable(v float64) (sql.NullFloat64, bool) {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return sql.NullFloat64{}, true
	}
	return sql.NullFloat64{Float64: v, Valid: true}, false
}

func restore(v sql.NullFloat64, infinite bool) float64 {
	if infinite || !v.Valid {
		return math.Inf(1)
	}
	return v.Float64
}

// SaveRun stores res and its findings in one transaction.
func (s *Store) SaveRun(ctx context.Context, res *scanner.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, root, started_ns, finished_ns, shingle_length, comparison_length, tolerance, threshold, files, analyzed, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID.String(), res.Root, res.Started.UnixNano(), res.Finished.UnixNano(),
		res.Options.ShingleLength, res.Options.ComparisonLength, res.Options.Tolerance, res.Options.Threshold,
		res.Files, res.Analyzed(), len(res.Skipped),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO findings (run_id, ordinal, group_key, group_type, path, entropy, entropy_infinite, z_score, z_infinite, signature_confirmed, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	ordinal := 0
	for _, g := range res.Groups {
		for _, f := range g.Findings {
			entropy, entropyInf := nullable(f.Entropy)
			z, zInf := nullable(f.ZScore)
			if _, err := stmt.ExecContext(ctx,
				res.ID.String(), ordinal, g.Key.String(), g.Key.Type, f.Path,
				entropy, entropyInf, z, zInf, f.SignatureConfirmed, f.Digest,
			); err != nil {
				return fmt.Errorf("insert finding: %w", err)
			}
			ordinal++
		}
	}

	return tx.Commit()
}

// Runs returns the most recent runs, newest first. A limit of 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, root, started_ns, finished_ns, shingle_length, comparison_length, tolerance, threshold, files, analyzed, skipped
		FROM runs ORDER BY started_ns DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			id                string
			started, finished int64
		)
		if err := rows.Scan(&id, &r.Root, &started, &finished, &r.ShingleLength, &r.ComparisonLength,
			&r.Tolerance, &r.Threshold, &r.Files, &r.Analyzed, &r.Skipped); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse run id: %w", err)
		}
		r.Started = time.Unix(0, started)
		r.Finished = time.Unix(0, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Findings returns the findings of one run in report order.
func (s *Store) Findings(ctx context.Context, runID uuid.UUID) ([]Finding, error) {
	return s.queryFindings(ctx, `WHERE run_id = ? ORDER BY ordinal`, runID.String())
}

// History returns every stored finding for path, oldest first.
func (s *Store) History(ctx context.Context, path string) ([]Finding, error) {
	return s.queryFindings(ctx, `WHERE path = ? ORDER BY id`, path)
}

func (s *Store) queryFindings(ctx context.Context, where string, args ...any) ([]Finding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, group_key, group_type, path, entropy, entropy_infinite, z_score, z_infinite, signature_confirmed, digest
		FROM findings `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query findings: %w", err)
	}
	defer rows.Close()

	var out []Finding
	for rows.Next() {
		var (
			f                Finding
			runID            string
			entropy, z       sql.NullFloat64
			entropyInf, zInf bool
		)
		if err := rows.Scan(&runID, &f.Group, &f.Type, &f.Path, &entropy, &entropyInf, &z, &zInf,
			&f.SignatureConfirmed, &f.Digest); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		if f.RunID, err = uuid.Parse(runID); err != nil {
			return nil, fmt.Errorf("parse run id: %w", err)
		}
		f.Entropy = restore(entropy, entropyInf)
		f.ZScore = restore(z, zInf)
		out = append(out, f)
	}
	return out, rows.Err()
}
