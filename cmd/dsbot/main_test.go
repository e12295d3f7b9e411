package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ruslano69/dsbot/pkg/entities"
	"github.com/ruslano69/dsbot/pkg/entity"
	"github.com/ruslano69/dsbot/pkg/xlsx"
)

// writeConfig пишет конфигурацию с SQLite файлом во временном каталоге
func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	config := `
database:
  type: sqlite
  database: ` + filepath.Join(dir, "dsbot.db") + `
bot:
  prefix: "!"
  default_lang: ptbr
log:
  level: error
audit:
  enabled: true
  level: full
  file: ` + filepath.Join(dir, "audit.log") + `
  database: true
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(config), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path, dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

// importRecords создает записи сущности через --import-xlsx
func importRecords(t *testing.T, configPath, name string, records []entity.Record) string {
	t.Helper()

	defs, err := entities.Definitions()
	if err != nil {
		t.Fatalf("Definitions failed: %v", err)
	}
	sheetPath := filepath.Join(t.TempDir(), name+".xlsx")
	file, err := os.Create(sheetPath)
	if err != nil {
		t.Fatalf("Failed to create sheet: %v", err)
	}
	err = xlsx.ToXLSX(defs[name], records, file)
	file.Close()
	if err != nil {
		t.Fatalf("ToXLSX failed: %v", err)
	}

	out, err := runCLI(t, "-config", configPath, "-import-xlsx", sheetPath, "-entity", name)
	if err != nil {
		t.Fatalf("import-xlsx failed: %v", err)
	}
	return out
}

func TestRun_Workflow(t *testing.T) {
	configPath, dir := writeConfig(t)

	out, err := runCLI(t, "-config", configPath, "-init-schema")
	if err != nil {
		t.Fatalf("init-schema failed: %v", err)
	}
	if !strings.Contains(out, "experiences") || !strings.Contains(out, "servers") {
		t.Errorf("Expected created tables, got:\n%s", out)
	}

	// Лист в формате выгрузки: автоинкрементный id отбрасывается при импорте
	out = importRecords(t, configPath, "experience", []entity.Record{
		{"id": int64(99), "user_id": "42", "version": "ds", "hours": int64(10)},
		{"id": int64(100), "user_id": "42", "version": "dst", "level": "beginner"},
	})
	if !strings.Contains(out, "Imported 2 records") {
		t.Errorf("Unexpected import output:\n%s", out)
	}

	out, err = runCLI(t, "-config", configPath, "-set", "horas=300", "-entity", "experience",
		"-where", "user_id=42,version=ds", "-user", "42")
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if !strings.Contains(out, "horas atualizado com sucesso. (1)") {
		t.Errorf("Unexpected set output:\n%s", out)
	}

	out, err = runCLI(t, "-config", configPath, "-get", "experience", "-where", "user_id=42,version=ds")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !strings.Contains(out, "hours: 300") || !strings.Contains(out, "id: 1") {
		t.Errorf("Unexpected get output:\n%s", out)
	}

	exportPath := filepath.Join(dir, "export.xlsx")
	out, err = runCLI(t, "-config", configPath, "-export-xlsx", "experience", "-where", "user_id=42", "-output", exportPath)
	if err != nil {
		t.Fatalf("export-xlsx failed: %v", err)
	}
	if !strings.Contains(out, "Exported 2 records") {
		t.Errorf("Unexpected export output:\n%s", out)
	}

	out, err = runCLI(t, "-config", configPath, "-audit", "-where", "entity=experience,operation=update")
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}
	if !strings.Contains(out, "update success 42") {
		t.Errorf("Expected update audit entry, got:\n%s", out)
	}

	if _, err := os.Stat(filepath.Join(dir, "audit.log")); err != nil {
		t.Errorf("Expected audit file: %v", err)
	}
}

func TestRun_SetRejectedValue(t *testing.T) {
	configPath, _ := writeConfig(t)

	if _, err := runCLI(t, "-config", configPath, "-init-schema"); err != nil {
		t.Fatalf("init-schema failed: %v", err)
	}

	importRecords(t, configPath, "experience", []entity.Record{{"user_id": "42", "version": "ds"}})

	_, err := runCLI(t, "-config", configPath, "-set", "level=vet", "-entity", "experience", "-where", "user_id=42")
	if err == nil {
		t.Fatal("Expected CHECK constraint failure")
	}
}

func TestRun_ServerLanguage(t *testing.T) {
	configPath, _ := writeConfig(t)

	if _, err := runCLI(t, "-config", configPath, "-init-schema"); err != nil {
		t.Fatalf("init-schema failed: %v", err)
	}
	importRecords(t, configPath, "server", []entity.Record{{"id": "g1", "lang": "en"}})

	// Сервер g1 настроен на английский, сообщение берется из en
	out, err := runCLI(t, "-config", configPath, "-set", "prefix=?", "-entity", "server", "-where", "id=g1", "-guild", "g1")
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if !strings.Contains(out, "Server configuration updated. (1)") {
		t.Errorf("Expected English message, got:\n%s", out)
	}
}

func TestRun_UnknownLanguage(t *testing.T) {
	configPath, _ := writeConfig(t)

	if _, err := runCLI(t, "-config", configPath, "-init-schema"); err != nil {
		t.Fatalf("init-schema failed: %v", err)
	}

	_, err := runCLI(t, "-config", configPath, "-get", "server", "-where", "id=g1", "-lang", "fr")
	if err == nil || !strings.Contains(err.Error(), `unknown language "fr"`) {
		t.Errorf("Expected unknown language error, got %v", err)
	}

	if _, err := runCLI(t, "-config", configPath, "-get", "server", "-where", "id=g1", "-lang", "en"); err != nil {
		t.Errorf("get with -lang en failed: %v", err)
	}
}

func TestRun_Usage(t *testing.T) {
	if _, err := runCLI(t); err == nil {
		t.Error("Expected error without command")
	}

	out, err := runCLI(t, "-version")
	if err != nil || !strings.Contains(out, "dsbot") {
		t.Errorf("Unexpected version output %q (%v)", out, err)
	}
}

func TestRun_CreateConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if _, err := runCLI(t, "-create-config", "sqlite", "-config", path); err != nil {
		t.Fatalf("create-config failed: %v", err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Errorf("Generated config does not load: %v", err)
	}

	if _, err := runCLI(t, "-create-config", "oracle", "-config", path); err == nil {
		t.Error("Expected error for unsupported type")
	}
}
