// Package history persists extraction runs into a Dolt-backed table so
// schema drift across runs can be logged, diffed, and time-traveled
// (an expansion of the external-contracts group of spec.md §6; the
// core extraction pipeline never depends on this package).
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/dolthub/driver"

	"github.com/anthropics/cmdschema/internal/schema"
)

// History manages a Dolt-backed database of extraction runs.
type History struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the history database at dir/extractions, a Dolt
// repository directory, initializing its schema if new.
func Open(dir string) (*History, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	dbPath := filepath.Join(dir, "extractions")
	if err := os.MkdirAll(dbPath, 0o755); err != nil {
		return nil, fmt.Errorf("create dolt directory: %w", err)
	}

	initDSN := fmt.Sprintf("file://%s?commitname=cmdschema&commitemail=cmdschema@local", dbPath)
	initDB, err := sql.Open("dolt", initDSN)
	if err != nil {
		return nil, fmt.Errorf("open dolt for init: %w", err)
	}
	if _, err := initDB.Exec("CREATE DATABASE IF NOT EXISTS extractions"); err != nil {
		initDB.Close()
		return nil, fmt.Errorf("create database: %w", err)
	}
	initDB.Close()

	dsn := fmt.Sprintf("file://%s?commitname=cmdschema&commitemail=cmdschema@local&database=extractions", dbPath)
	db, err := sql.Open("dolt", dsn)
	if err != nil {
		return nil, fmt.Errorf("open dolt db: %w", err)
	}

	h := &History{db: db, dbPath: dbPath}
	if err := h.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return h, nil
}

// Close closes the database connection.
func (h *History) Close() error {
	if h.db == nil {
		return nil
	}
	return h.db.Close()
}

func (h *History) initSchema() error {
	_, err := h.db.Exec(`
CREATE TABLE IF NOT EXISTS extraction_runs (
    command TEXT NOT NULL,
    run_version TEXT NOT NULL,
    quality_tier TEXT NOT NULL,
    confidence REAL NOT NULL,
    schema_json TEXT NOT NULL,
    PRIMARY KEY (command, run_version)
);
`)
	return err
}

// RecordRun upserts one command's schema for runVersion and commits the
// change, labeling the Dolt commit with runVersion and command so later
// DoltLog/DoltDiff calls can locate it.
func (h *History) RecordRun(command, runVersion string, sch schema.CommandSchema, tier schema.QualityTier) error {
	raw, err := marshalSchema(sch)
	if err != nil {
		return fmt.Errorf("marshal schema for history: %w", err)
	}

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`REPLACE INTO extraction_runs (command, run_version, quality_tier, confidence, schema_json) VALUES (?, ?, ?, ?, ?)`,
		command, runVersion, string(tier), sch.Confidence, raw,
	)
	if err != nil {
		return fmt.Errorf("upsert extraction run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	message := fmt.Sprintf("record %s @ %s", command, runVersion)
	if _, err := h.db.Exec("CALL DOLT_COMMIT('-A', '-m', ?)", message); err != nil {
		return fmt.Errorf("dolt commit: %w", err)
	}
	return nil
}

// LogEntry is one recorded Dolt commit over the extraction_runs table.
type LogEntry struct {
	CommitHash string
	Message    string
	Date       string
}

// Log returns the most recent commits, newest first.
func (h *History) Log(limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := h.db.Query(`SELECT commit_hash, message, date FROM dolt_log ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("dolt log query: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.CommitHash, &e.Message, &e.Date); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func marshalSchema(sch schema.CommandSchema) (string, error) {
	raw, err := json.Marshal(sch)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
