package mysql

import (
	"testing"

	"github.com/ruslano69/dsbot/pkg/adapters/base"
	"github.com/ruslano69/dsbot/pkg/core/query"
)

func TestColumnType(t *testing.T) {
	tests := []struct {
		col      query.Column
		expected string
	}{
		{query.Column{Name: "id", Kind: query.KindInteger, PrimaryKey: true, AutoIncrement: true}, "INT AUTO_INCREMENT PRIMARY KEY"},
		{query.Column{Name: "hours", Kind: query.KindInteger}, "INT"},
		{query.Column{Name: "born", Kind: query.KindDate}, "DATE"},
		{query.Column{Name: "main", Kind: query.KindString, Length: 64}, "VARCHAR(64)"},
		{query.Column{Name: "platform", Kind: query.KindString}, "VARCHAR(255)"},
		{query.Column{Name: "lang", Kind: query.KindOption, Values: []string{"ptbr", "en"}}, "ENUM('ptbr','en')"},
	}

	for _, tt := range tests {
		if got := ColumnType(tt.col); got != tt.expected {
			t.Errorf("ColumnType(%s) = %q, expected %q", tt.col.Name, got, tt.expected)
		}
	}
}

func TestCreateTableSQL(t *testing.T) {
	sql, err := base.CreateTableSQL("servers", []query.Column{
		{Name: "id", Kind: query.KindString, Length: 32, PrimaryKey: true},
		{Name: "lang", Kind: query.KindOption, Values: []string{"ptbr", "en"}},
	}, ColumnType)
	if err != nil {
		t.Fatalf("CreateTableSQL failed: %v", err)
	}

	expected := "CREATE TABLE servers (id VARCHAR(32) PRIMARY KEY, lang ENUM('ptbr','en'))"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}

	if _, err := base.CreateTableSQL("bad name", []query.Column{{Name: "id"}}, ColumnType); err == nil {
		t.Error("Expected error for invalid table name")
	}
}

func TestWithStrictMode(t *testing.T) {
	cfg, err := parseDSN("root:secret@tcp(localhost:3306)/dontstarvebot")
	if err != nil {
		t.Fatalf("parseDSN failed: %v", err)
	}
	if cfg.Params["sql_mode"] != "'STRICT_ALL_TABLES'" {
		t.Errorf("Expected strict sql_mode by default, got %q", cfg.Params["sql_mode"])
	}

	cfg, err = parseDSN("root:secret@tcp(localhost:3306)/dontstarvebot?sql_mode=%27ANSI%27")
	if err != nil {
		t.Fatalf("parseDSN failed: %v", err)
	}
	if cfg.Params["sql_mode"] != "'ANSI'" {
		t.Errorf("Explicit sql_mode should be kept, got %q", cfg.Params["sql_mode"])
	}
}
