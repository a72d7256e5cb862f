// audit.go - Embedded SQLite audit trail of uploads and views.
package server

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	// Pure-Go SQLite driver for database/sql (no CGO required).
	_ "modernc.org/sqlite"
)

// AuditAction is the kind of event being recorded.
type AuditAction string

const (
	AuditActionUpload AuditAction = "upload"
	AuditActionView   AuditAction = "view"
)

// AuditEntry is one recorded event.
type AuditEntry struct {
	ID         string
	Timestamp  time.Time
	Action     AuditAction
	Filename   string
	RemoteAddr string
	RequestID  string
	Success    bool
	ErrorMsg   string
}

// AuditStore records upload and view events in an embedded SQLite database.
// A store with an empty path is disabled and every call is a no-op, so
// callers never branch on configuration.
type AuditStore struct {
	path string
	db   *sql.DB
}

// NewAuditStore creates a store persisting to path. An empty path disables
// auditing.
func NewAuditStore(path string) *AuditStore {
	return &AuditStore{path: path}
}

// Enabled reports whether the store writes anywhere.
func (a *AuditStore) Enabled() bool { return a.path != "" }

// Init opens the database and creates the schema. WAL mode and a busy
// timeout keep the single-writer setup responsive under concurrent workers.
func (a *AuditStore) Init() error {
	if !a.Enabled() {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(a.path), 0o750); err != nil {
		return fmt.Errorf("failed to create audit database directory: %w", err)
	}

	dsn := a.path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open audit database: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping audit database: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS audit_log (
			id TEXT PRIMARY KEY,
			timestamp DATETIME NOT NULL,
			action TEXT NOT NULL,
			filename TEXT NOT NULL,
			remote_addr TEXT NOT NULL,
			request_id TEXT,
			success INTEGER NOT NULL,
			error_message TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_log(timestamp);
		CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_log(action);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create audit_log table: %w", err)
	}

	a.db = db
	return nil
}

// Record writes one entry. Auditing is best-effort: a failure is logged and
// never surfaces into the request path.
func (a *AuditStore) Record(entry AuditEntry) {
	if a.db == nil {
		return
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	_, err := a.db.Exec(
		`INSERT INTO audit_log (id, timestamp, action, filename, remote_addr, request_id, success, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp,
		string(entry.Action),
		entry.Filename,
		entry.RemoteAddr,
		entry.RequestID,
		entry.Success,
		entry.ErrorMsg,
	)
	if err != nil {
		Warn("failed to record audit entry", map[string]any{
			"action":   string(entry.Action),
			"filename": entry.Filename,
			"error":    err.Error(),
		})
	}
}

// Recent returns up to limit entries, newest first.
func (a *AuditStore) Recent(limit int) ([]AuditEntry, error) {
	if a.db == nil {
		return nil, nil
	}

	rows, err := a.db.Query(
		`SELECT id, timestamp, action, filename, remote_addr, request_id, success, error_message
		 FROM audit_log
		 ORDER BY timestamp DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []AuditEntry
	for rows.Next() {
		var entry AuditEntry
		var action string
		if err := rows.Scan(
			&entry.ID,
			&entry.Timestamp,
			&action,
			&entry.Filename,
			&entry.RemoteAddr,
			&entry.RequestID,
			&entry.Success,
			&entry.ErrorMsg,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.Action = AuditAction(action)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Close closes the database connection.
func (a *AuditStore) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
