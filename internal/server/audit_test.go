package server

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestAuditStore(t *testing.T) *AuditStore {
	t.Helper()

	store := NewAuditStore(filepath.Join(t.TempDir(), "audit.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAuditStoreRecordAndRecent(t *testing.T) {
	store := newTestAuditStore(t)

	store.Record(AuditEntry{
		Action:     AuditActionUpload,
		Filename:   "note.txt",
		RemoteAddr: "127.0.0.1:1111",
		RequestID:  "req-1",
		Success:    true,
	})
	store.Record(AuditEntry{
		Timestamp:  time.Now().UTC().Add(time.Second),
		Action:     AuditActionView,
		Filename:   "/uploads/../secret.txt",
		RemoteAddr: "127.0.0.1:2222",
		RequestID:  "req-2",
		Success:    false,
		ErrorMsg:   "not_permitted: path escapes uploads directory",
	})

	entries, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent returned %d entries, want 2", len(entries))
	}

	// Newest first.
	newest := entries[0]
	if newest.Action != AuditActionView {
		t.Errorf("newest action = %q, want view", newest.Action)
	}
	if newest.Success {
		t.Error("newest entry should record a failure")
	}
	if newest.ErrorMsg == "" {
		t.Error("failed entry missing error message")
	}
	if newest.ID == "" {
		t.Error("entry missing generated ID")
	}

	oldest := entries[1]
	if oldest.Action != AuditActionUpload || oldest.Filename != "note.txt" {
		t.Errorf("oldest entry = %+v", oldest)
	}
}

func TestAuditStoreRecentLimit(t *testing.T) {
	store := newTestAuditStore(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		store.Record(AuditEntry{
			Timestamp:  base.Add(time.Duration(i) * time.Second),
			Action:     AuditActionUpload,
			Filename:   "f.txt",
			RemoteAddr: "127.0.0.1:1",
			Success:    true,
		})
	}

	entries, err := store.Recent(3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Recent(3) returned %d entries", len(entries))
	}
}

func TestAuditStoreDisabled(t *testing.T) {
	store := NewAuditStore("")

	if store.Enabled() {
		t.Error("store with empty path reports enabled")
	}
	if err := store.Init(); err != nil {
		t.Fatalf("Init on disabled store failed: %v", err)
	}

	// Every operation must be a safe no-op.
	store.Record(AuditEntry{Action: AuditActionUpload, Filename: "x.txt"})
	entries, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if entries != nil {
		t.Errorf("Recent on disabled store = %v, want nil", entries)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
