package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ruslano69/dsbot/pkg/adapters"
	_ "github.com/ruslano69/dsbot/pkg/adapters/sqlite"
	"github.com/ruslano69/dsbot/pkg/audit"
	"github.com/ruslano69/dsbot/pkg/core/query"
)

func TestDatabaseAppender_SQLite(t *testing.T) {
	ctx := context.Background()

	store, err := adapters.New(ctx, adapters.Config{Type: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to open SQLite: %v", err)
	}
	defer store.Close(ctx)

	appender, err := audit.NewDatabaseAppender(ctx, audit.DatabaseAppenderConfig{
		Store:           store,
		Level:           audit.LevelFull,
		AutoCreateTable: true,
	})
	if err != nil {
		t.Fatalf("Failed to create database appender: %v", err)
	}
	defer appender.Close()

	entry := audit.NewEntry(audit.OpUpdate, audit.StatusSuccess).
		WithUser("1234").
		WithEntity("experience", "experiences").
		WithRecordsAffected(1).
		WithDuration(15*time.Millisecond).
		WithMetadata("method", "update").
		WithData(map[string]any{"hours": 12})
	entry.WithError(errors.New("Data too long for column 'main' at row 1"))

	if err := appender.Append(ctx, entry); err != nil {
		t.Fatalf("Failed to append entry: %v", err)
	}

	entries, err := appender.Query(ctx, query.Eq("user_id", "1234"))
	if err != nil {
		t.Fatalf("Failed to query entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	got := entries[0]
	if got.ID != entry.ID || got.Status != audit.StatusFailure {
		t.Errorf("Unexpected entry: %+v", got)
	}
	if got.RecordsAffected != 1 || got.Duration != 15*time.Millisecond {
		t.Errorf("Unexpected counters: records=%d duration=%v", got.RecordsAffected, got.Duration)
	}
	if got.Metadata["method"] != "update" {
		t.Errorf("Metadata lost: %v", got.Metadata)
	}
	if !got.Timestamp.Equal(entry.Timestamp) {
		t.Errorf("Timestamp mismatch: %v vs %v", got.Timestamp, entry.Timestamp)
	}

	// Повторное создание не пересоздает таблицу
	if _, err := audit.NewDatabaseAppender(ctx, audit.DatabaseAppenderConfig{
		Store: store, AutoCreateTable: true,
	}); err != nil {
		t.Fatalf("Second appender failed: %v", err)
	}
}

func TestDatabaseAppender_RequiresStore(t *testing.T) {
	if _, err := audit.NewDatabaseAppender(context.Background(), audit.DatabaseAppenderConfig{}); err == nil {
		t.Error("Expected error without store")
	}
}
