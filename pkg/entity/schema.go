package entity

import (
	"context"
	"fmt"

	"github.com/ruslano69/dsbot/pkg/core/query"
)

// Schema - операции адаптера для создания таблиц
type Schema interface {
	TableExists(ctx context.Context, tableName string) (bool, error)
	CreateTable(ctx context.Context, tableName string, columns []query.Column) error
}

// EnsureTable создает таблицу сущности, если ее нет
// Возвращает true, если таблица была создана
func (e *Entity) EnsureTable(ctx context.Context, schema Schema) (bool, error) {
	exists, err := schema.TableExists(ctx, e.def.Table)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if err := schema.CreateTable(ctx, e.def.Table, e.def.Columns()); err != nil {
		return false, fmt.Errorf("entity %s: %w", e.id, err)
	}

	e.logger.Info().Str("table", e.def.Table).Msg("table created")
	return true, nil
}
