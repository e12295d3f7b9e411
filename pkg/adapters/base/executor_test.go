package base

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/ruslano69/dsbot/pkg/core/query"
)

func newTestExecutor(t *testing.T, buf *bytes.Buffer) *Executor {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	exec, err := NewExecutor(db, ExecutorConfig{
		DBType: "sqlite",
		Style:  query.StyleQuestion,
		Logger: zerolog.New(buf).Level(zerolog.DebugLevel),
	})
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	return exec
}

// logLines разбирает JSON строки zerolog
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("Invalid log line %q: %v", line, err)
		}
		lines = append(lines, m)
	}
	return lines
}

func TestExecutor_QueryLogsRenderedSQL(t *testing.T) {
	var buf bytes.Buffer
	exec := newTestExecutor(t, &buf)

	rows, err := exec.Query(context.Background(), query.New(query.StyleQuestion, "SELECT ? AS a", "Alice"), true)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(rows) != 1 || rows[0]["a"] != "Alice" {
		t.Errorf("Unexpected rows: %v", rows)
	}

	lines := logLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d: %s", len(lines), buf.String())
	}
	if lines[0]["level"] != "info" {
		t.Errorf("Expected info level, got %v", lines[0]["level"])
	}
	if lines[0]["sql"] != `SELECT "Alice" AS a` {
		t.Errorf("Expected rendered SQL, got %v", lines[0]["sql"])
	}
	if lines[0]["component"] != "executor" || lines[0]["db"] != "sqlite" {
		t.Errorf("Missing logger context: %v", lines[0])
	}
}

func TestExecutor_NoInfoWithoutLogFlag(t *testing.T) {
	var buf bytes.Buffer
	exec := newTestExecutor(t, &buf)
	ctx := context.Background()

	if _, err := exec.Exec(ctx, query.New(query.StyleQuestion, "CREATE TABLE players (name TEXT)"), false); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	res, err := exec.Exec(ctx, query.New(query.StyleQuestion, "INSERT INTO players (name) VALUES (?)", "Alice"), false)
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if res.RowsAffected != 1 || res.LastInsertID != 1 {
		t.Errorf("Unexpected result: %+v", res)
	}

	for _, line := range logLines(t, &buf) {
		if line["level"] == "info" {
			t.Errorf("Unexpected info line: %v", line)
		}
		// Без флага значения аргументов в лог не попадают
		if strings.Contains(line["sql"].(string), "Alice") {
			t.Errorf("Argument leaked into log: %v", line)
		}
	}

	buf.Reset()
	exec.logger = exec.logger.Level(zerolog.InfoLevel)
	if _, err := exec.Query(ctx, query.New(query.StyleQuestion, "SELECT name FROM players"), false); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no output at info level, got %q", buf.String())
	}
}
