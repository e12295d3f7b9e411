package adapters_test

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/ruslano69/dsbot/pkg/adapters"
	_ "github.com/ruslano69/dsbot/pkg/adapters/mssql"    // Register mssql
	_ "github.com/ruslano69/dsbot/pkg/adapters/mysql"    // Register mysql
	_ "github.com/ruslano69/dsbot/pkg/adapters/postgres" // Register postgres
	_ "github.com/ruslano69/dsbot/pkg/adapters/sqlite"   // Register sqlite
	"github.com/ruslano69/dsbot/pkg/core/query"
)

// TestFactory_RegisteredTypes проверяет, что все адаптеры зарегистрированы через init()
func TestFactory_RegisteredTypes(t *testing.T) {
	types := adapters.GetRegisteredTypes()
	expected := []string{"mssql", "mysql", "postgres", "sqlite"}

	if !reflect.DeepEqual(types, expected) {
		t.Errorf("Expected %v, got %v", expected, types)
	}
}

// TestFactory_Aliases проверяет альтернативные имена типов
func TestFactory_Aliases(t *testing.T) {
	tests := map[string]string{
		"PostgreSQL": "postgres",
		"pg":         "postgres",
		"mariadb":    "mysql",
		" MySQL ":    "mysql",
		"sqlserver":  "mssql",
		"sqlite3":    "sqlite",
	}

	for input, expected := range tests {
		if got := adapters.NormalizeType(input); got != expected {
			t.Errorf("NormalizeType(%q) = %q, expected %q", input, got, expected)
		}
		if !adapters.IsRegistered(input) {
			t.Errorf("Alias %q should resolve to a registered adapter", input)
		}
	}
}

// TestFactory_UnknownType проверяет ошибку для неизвестного типа
func TestFactory_UnknownType(t *testing.T) {
	_, err := adapters.NewWithoutConnect("oracle")
	if err == nil {
		t.Fatal("Expected error for unknown database type")
	}
	if !strings.Contains(err.Error(), "unknown database type") {
		t.Errorf("Unexpected error: %v", err)
	}
}

// TestFactory_WithoutConnect проверяет создание адаптера без подключения
func TestFactory_WithoutConnect(t *testing.T) {
	adapter, err := adapters.NewWithoutConnect("mysql")
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}

	if adapter.GetDatabaseType() != "mysql" {
		t.Errorf("Expected type 'mysql', got '%s'", adapter.GetDatabaseType())
	}

	// Не подключенный адаптер закрывается без ошибки и не пингуется
	if err := adapter.Close(context.Background()); err != nil {
		t.Errorf("Close on unconnected adapter failed: %v", err)
	}
	if err := adapter.Ping(context.Background()); err == nil {
		t.Error("Ping on unconnected adapter should fail")
	}
}

// TestFactory_SQLiteRoundTrip проверяет SQLite адаптер целиком: DDL, INSERT, SELECT
func TestFactory_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()

	adapter, err := adapters.New(ctx, adapters.Config{Type: "sqlite3", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to create SQLite adapter: %v", err)
	}
	defer adapter.Close(ctx)

	if adapter.Style() != query.StyleQuestion {
		t.Errorf("Expected question placeholders, got %v", adapter.Style())
	}

	version, err := adapter.GetDatabaseVersion(ctx)
	if err != nil {
		t.Fatalf("Failed to get version: %v", err)
	}
	if !strings.HasPrefix(version, "SQLite ") {
		t.Errorf("Unexpected version: %s", version)
	}

	exists, err := adapter.TableExists(ctx, "players")
	if err != nil {
		t.Fatalf("TableExists failed: %v", err)
	}
	if exists {
		t.Fatal("Table should not exist yet")
	}

	columns := []query.Column{
		{Name: "id", Kind: query.KindInteger, PrimaryKey: true, AutoIncrement: true},
		{Name: "name", Kind: query.KindString},
		{Name: "hours", Kind: query.KindInteger},
		{Name: "level", Kind: query.KindOption, Values: []string{"beginner", "veteran"}},
	}
	if err := adapter.CreateTable(ctx, "players", columns); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	if exists, _ := adapter.TableExists(ctx, "players"); !exists {
		t.Fatal("Table should exist after CreateTable")
	}

	b := query.NewBuilder(adapter.Style())
	insert, err := b.Insert("players", query.Fields{{Name: "name", Value: "Alice"}, {Name: "hours", Value: 12}, {Name: "level", Value: "veteran"}})
	if err != nil {
		t.Fatalf("Insert build failed: %v", err)
	}

	res, err := adapter.Exec(ctx, insert, true)
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if res.RowsAffected != 1 {
		t.Errorf("Expected 1 row affected, got %d", res.RowsAffected)
	}
	if res.LastInsertID != 1 {
		t.Errorf("Expected last insert id 1, got %d", res.LastInsertID)
	}

	sel, err := b.Select("players", query.Eq("name", "Alice"))
	if err != nil {
		t.Fatalf("Select build failed: %v", err)
	}
	rows, err := adapter.Query(ctx, sel, false)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0]["name"] != "Alice" {
		t.Errorf("Expected name Alice, got %v", rows[0]["name"])
	}
	if rows[0]["hours"] != int64(12) {
		t.Errorf("Expected hours 12, got %v (%T)", rows[0]["hours"], rows[0]["hours"])
	}

	// CHECK ограничение отклоняет значение вне перечисления
	bad, _ := b.Insert("players", query.Fields{{Name: "name", Value: "Bob"}, {Name: "level", Value: "expert"}})
	if _, err := adapter.Exec(ctx, bad, false); err == nil {
		t.Error("Expected CHECK constraint violation")
	}
}
