package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ruslano69/dsbot/pkg/core/query"
)

// Store - часть адаптера БД, нужная для хранения аудита
type Store interface {
	Query(ctx context.Context, stmt query.Statement, log bool) ([]map[string]any, error)
	Exec(ctx context.Context, stmt query.Statement, log bool) (query.Result, error)
	Style() query.Style
	TableExists(ctx context.Context, tableName string) (bool, error)
	CreateTable(ctx context.Context, tableName string, columns []query.Column) error
}

// DatabaseAppender - запись в таблицу той же БД, что и сущности
type DatabaseAppender struct {
	store     Store
	builder   *query.Builder
	tableName string
	level     Level
}

// DatabaseAppenderConfig - конфигурация database appender
type DatabaseAppenderConfig struct {
	// Store - подключенный адаптер
	Store Store

	// TableName - имя таблицы для аудита (по умолчанию audit_log)
	TableName string

	// Level - уровень логирования
	Level Level

	// AutoCreateTable - создать таблицу если не существует
	AutoCreateTable bool
}

// Columns - схема таблицы аудита
func Columns() []query.Column {
	return []query.Column{
		{Name: "id", Kind: query.KindString, Length: 64, PrimaryKey: true},
		{Name: "created_at", Kind: query.KindString, Length: 40},
		{Name: "operation", Kind: query.KindString, Length: 16},
		{Name: "status", Kind: query.KindString, Length: 16},
		{Name: "user_id", Kind: query.KindString, Length: 64},
		{Name: "guild_id", Kind: query.KindString, Length: 64},
		{Name: "entity", Kind: query.KindString, Length: 64},
		{Name: "resource", Kind: query.KindString, Length: 64},
		{Name: "records_affected", Kind: query.KindInteger},
		{Name: "duration_ms", Kind: query.KindInteger},
		{Name: "error_message", Kind: query.KindString, Length: 1024},
		{Name: "error_class", Kind: query.KindString, Length: 32},
		{Name: "metadata", Kind: query.KindString, Length: 2048},
		{Name: "data", Kind: query.KindString, Length: 4096},
	}
}

// NewDatabaseAppender - создать database appender
func NewDatabaseAppender(ctx context.Context, config DatabaseAppenderConfig) (*DatabaseAppender, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("database store is required")
	}
	if config.TableName == "" {
		config.TableName = "audit_log"
	}
	if !query.ValidIdentifier(config.TableName) {
		return nil, fmt.Errorf("%w: %q", query.ErrInvalidIdentifier, config.TableName)
	}

	da := &DatabaseAppender{
		store:     config.Store,
		builder:   query.NewBuilder(config.Store.Style()),
		tableName: config.TableName,
		level:     config.Level,
	}

	if config.AutoCreateTable {
		exists, err := da.store.TableExists(ctx, da.tableName)
		if err != nil {
			return nil, err
		}
		if !exists {
			if err := da.store.CreateTable(ctx, da.tableName, Columns()); err != nil {
				return nil, fmt.Errorf("failed to create audit table: %w", err)
			}
		}
	}

	return da, nil
}

// Append - записать entry в базу данных
func (da *DatabaseAppender) Append(ctx context.Context, entry *Entry) error {
	filtered := entry.FilterByLevel(da.level)

	stmt, err := da.builder.Insert(da.tableName, toFields(filtered))
	if err != nil {
		return err
	}

	if _, err := da.store.Exec(ctx, stmt, false); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// Query - прочитать записи по равенству колонок (например user_id, entity)
func (da *DatabaseAppender) Query(ctx context.Context, filter query.Fields) ([]*Entry, error) {
	stmt, err := da.builder.Select(da.tableName, filter)
	if err != nil {
		return nil, err
	}

	rows, err := da.store.Query(ctx, stmt, false)
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, fromRow(row))
	}
	return entries, nil
}

// Close - таблица принадлежит адаптеру, закрывать нечего
func (da *DatabaseAppender) Close() error {
	return nil
}

func toFields(e *Entry) query.Fields {
	metadata := ""
	if len(e.Metadata) > 0 {
		if b, err := json.Marshal(e.Metadata); err == nil {
			metadata = string(b)
		}
	}
	data := ""
	if e.Data != nil {
		if b, err := json.Marshal(e.Data); err == nil {
			data = string(b)
		}
	}

	return query.Fields{
		{Name: "id", Value: e.ID},
		{Name: "created_at", Value: e.Timestamp.UTC().Format(time.RFC3339Nano)},
		{Name: "operation", Value: string(e.Operation)},
		{Name: "status", Value: string(e.Status)},
		{Name: "user_id", Value: e.User},
		{Name: "guild_id", Value: e.Guild},
		{Name: "entity", Value: e.Entity},
		{Name: "resource", Value: e.Resource},
		{Name: "records_affected", Value: e.RecordsAffected},
		{Name: "duration_ms", Value: e.Duration.Milliseconds()},
		{Name: "error_message", Value: e.ErrorMessage},
		{Name: "error_class", Value: e.ErrorClass},
		{Name: "metadata", Value: metadata},
		{Name: "data", Value: data},
	}
}

func fromRow(row map[string]any) *Entry {
	str := func(key string) string {
		if v, ok := row[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
		return ""
	}
	num := func(key string) int64 {
		switch v := row[key].(type) {
		case int64:
			return v
		case int32:
			return int64(v)
		case int:
			return int64(v)
		}
		var n int64
		fmt.Sscan(str(key), &n)
		return n
	}

	e := &Entry{
		ID:              str("id"),
		Operation:       Operation(str("operation")),
		Status:          Status(str("status")),
		User:            str("user_id"),
		Guild:           str("guild_id"),
		Entity:          str("entity"),
		Resource:        str("resource"),
		RecordsAffected: num("records_affected"),
		Duration:        time.Duration(num("duration_ms")) * time.Millisecond,
		ErrorMessage:    str("error_message"),
		ErrorClass:      str("error_class"),
	}
	e.Timestamp, _ = time.Parse(time.RFC3339Nano, str("created_at"))

	if m := str("metadata"); m != "" {
		json.Unmarshal([]byte(m), &e.Metadata)
	}
	if d := str("data"); d != "" {
		json.Unmarshal([]byte(d), &e.Data)
	}
	return e
}
