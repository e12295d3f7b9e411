package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/dsbot/pkg/core/query"
	"github.com/ruslano69/dsbot/pkg/entity"
	"github.com/ruslano69/dsbot/pkg/xlsx"
)

// parseAssignments разбирает "name=value,name=value" в порядке ввода
func parseAssignments(s string) (query.Fields, error) {
	var fields query.Fields
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("expected name=value, got %q", part)
		}
		fields = fields.Set(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return fields, nil
}

func (a *app) lookup(name string) (*entity.Entity, error) {
	e, ok := a.entities.Get(strings.ToLower(name))
	if !ok {
		return nil, fmt.Errorf("unknown entity %q (available: %s)", name, strings.Join(a.entities.Names(), ", "))
	}
	return e, nil
}

// initSchema создает недостающие таблицы
func (a *app) initSchema(ctx context.Context, out io.Writer) error {
	created, err := a.entities.EnsureSchema(ctx, a.db)
	if err != nil {
		return err
	}
	if len(created) == 0 {
		fmt.Fprintln(out, "All tables already exist")
		return nil
	}
	for _, table := range created {
		fmt.Fprintf(out, "✓ Created table %s\n", table)
	}
	return nil
}

// get печатает записи сущности в YAML
func (a *app) get(ctx context.Context, out io.Writer, name, where string, log bool) error {
	e, err := a.lookup(name)
	if err != nil {
		return err
	}
	filter, err := parseAssignments(where)
	if err != nil {
		return err
	}

	records, err := e.GetBy(ctx, filter, log)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No records found")
		return nil
	}

	enc := yaml.NewEncoder(out)
	defer enc.Close()
	return enc.Encode(records)
}

// set изменяет свойства; имена свойств можно вводить на языке сервера
// Понятная пользователю ошибка печатается в out
func (a *app) set(ctx context.Context, out io.Writer, name, assignments, where string, cfg entity.ServerConfig, log bool) error {
	e, err := a.lookup(name)
	if err != nil {
		return err
	}
	data, err := parseAssignments(assignments)
	if err != nil {
		return err
	}
	filter, err := parseAssignments(where)
	if err != nil {
		return err
	}

	res, err := e.Update(ctx, data, filter, entity.MethodUpdate, cfg, log)
	if err != nil {
		var userErr *entity.UserError
		if errors.As(err, &userErr) {
			fmt.Fprintln(out, userErr.Message)
		}
		return err
	}

	msg := e.Localizer().Message(cfg.Lang, e.Name(), "updateSuccess",
		map[string]string{"field": strings.Join(data.Names(), ", ")})
	fmt.Fprintf(out, "%s (%d)\n", msg, res.RowsAffected)
	return nil
}

// exportXLSX выгружает записи сущности в файл Excel
func (a *app) exportXLSX(ctx context.Context, out io.Writer, name, where, output string, log bool) error {
	e, err := a.lookup(name)
	if err != nil {
		return err
	}
	filter, err := parseAssignments(where)
	if err != nil {
		return err
	}

	records, err := e.GetBy(ctx, filter, log)
	if err != nil {
		return err
	}

	if output == "" {
		output = e.Name() + ".xlsx"
	}
	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := xlsx.ToXLSX(e.Definition(), records, file); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Exported %d records to %s\n", len(records), output)
	return nil
}

// importXLSX создает записи из листа Excel
// Автоинкрементный ключ из выгрузки отбрасывается
func (a *app) importXLSX(ctx context.Context, out io.Writer, name, path, sheetName string, cfg entity.ServerConfig, log bool) error {
	e, err := a.lookup(name)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	sheet, err := xlsx.FromXLSX(file, sheetName)
	if err != nil {
		return err
	}

	def := e.Definition()
	key := def.Key
	if key == "" {
		key = "id"
	}
	_, keyDeclared := def.Property(key)

	imported := 0
	for i, row := range sheet.Rows {
		data := make(query.Fields, 0, len(row))
		for _, f := range row {
			if f.Name == key && !keyDeclared {
				continue
			}
			data = append(data, f)
		}

		if _, err := e.Create(ctx, data, cfg, log); err != nil {
			return fmt.Errorf("row %d: %w (imported %d)", i+2, err, imported)
		}
		imported++
	}

	fmt.Fprintf(out, "✓ Imported %d records into %s\n", imported, e.Table())
	return nil
}

// auditLog печатает записи аудита из таблицы
func (a *app) auditLog(ctx context.Context, out io.Writer, where string) error {
	if a.auditDB == nil {
		return fmt.Errorf("audit database appender is disabled (set audit.enabled and audit.database)")
	}
	filter, err := parseAssignments(where)
	if err != nil {
		return err
	}

	entries, err := a.auditDB.Query(ctx, filter)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Fprintln(out, entry.String())
	}
	return nil
}
