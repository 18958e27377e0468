// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package audit persists redaction audit trails. Every applied
// redaction produces one journal row, so the question "what was
// removed from this document, when, and by whom" can be answered long
// after the operation response is gone.
package audit

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"foia-stream/internal/redaction"
)

// Journal is SQLite-backed storage for audit entries. It manages a
// single-writer connection and creates its schema on open.
type Journal struct {
	db   *sql.DB
	path string
}

// StoredEntry is one persisted audit row.
type StoredEntry struct {
	ID           int64     `json:"id"`
	DocumentID   string    `json:"documentId"`
	DocumentHash string    `json:"documentHash"`
	OperatorID   string    `json:"operatorId,omitempty"`
	Page         int       `json:"page"`
	Area         string    `json:"area"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DefaultJournalPath returns the journal location under the user data
// directory.
func DefaultJournalPath() string {
	return filepath.Join(xdg.DataHome, "foia-stream", "audit.db")
}

// HashDocument fingerprints document content for the journal, so an
// entry stays tied to the exact input bytes it described.
func HashDocument(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// OpenJournal opens or creates the journal database at path. An empty
// path selects DefaultJournalPath.
func OpenJournal(path string) (*Journal, error) {
	if path == "" {
		path = DefaultJournalPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &Journal{db: db, path: path}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := j.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}
	return j, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Path returns the journal database location.
func (j *Journal) Path() string {
	return j.path
}

func (j *Journal) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS redaction_audit (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id TEXT NOT NULL,
		document_hash TEXT NOT NULL,
		operator_id TEXT,
		page INTEGER NOT NULL,
		area TEXT NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_document ON redaction_audit(document_id);
	CREATE INDEX IF NOT EXISTS idx_audit_created ON redaction_audit(created_at);
	`

	_, err := j.db.ExecContext(context.Background(), schema)
	return err
}

// RecordOperation stores the audit entries from one completed apply.
// All entries land in a single transaction; a partially journaled
// operation would be worse than a failed one.
func (j *Journal) RecordOperation(ctx context.Context, documentID, documentHash string, entries []redaction.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start journal transaction: %w", err)
	}

	query := `
	INSERT INTO redaction_audit (document_id, document_hash, operator_id, page, area, reason, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, entry := range entries {
		_, err := tx.ExecContext(ctx, query,
			documentID,
			documentHash,
			entry.OperatorID,
			entry.Page,
			entry.AreaDescription,
			entry.Reason,
			entry.Timestamp.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to journal audit entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit journal transaction: %w", err)
	}
	return nil
}

// EntriesForDocument returns all journal rows for a document id, in
// insertion order.
func (j *Journal) EntriesForDocument(ctx context.Context, documentID string) ([]StoredEntry, error) {
	query := `
	SELECT id, document_id, document_hash, operator_id, page, area, reason, created_at
	FROM redaction_audit
	WHERE document_id = ?
	ORDER BY id
	`
	rows, err := j.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// RecentEntries returns the newest rows across all documents, capped
// at limit.
func (j *Journal) RecentEntries(ctx context.Context, limit int) ([]StoredEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
	SELECT id, document_id, document_hash, operator_id, page, area, reason, created_at
	FROM redaction_audit
	ORDER BY id DESC
	LIMIT ?
	`
	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]StoredEntry, error) {
	var entries []StoredEntry
	for rows.Next() {
		var (
			e         StoredEntry
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.DocumentID, &e.DocumentHash, &e.OperatorID, &e.Page, &e.Area, &e.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("journal row %d has a bad timestamp: %w", e.ID, err)
		}
		e.CreatedAt = ts
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal rows: %w", err)
	}
	return entries, nil
}
