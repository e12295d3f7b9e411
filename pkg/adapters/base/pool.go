package base

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ruslano69/dsbot/pkg/adapters"
	"github.com/ruslano69/dsbot/pkg/core/query"
)

// Attach настраивает пул, проверяет соединение и создает Executor
// При ошибке пул закрывается
func Attach(ctx context.Context, db *sql.DB, cfg adapters.Config, style query.Style, transient func(error) bool) (*Executor, error) {
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	exec, err := NewExecutor(db, ExecutorConfig{
		DBType:    cfg.Type,
		Style:     style,
		Timeout:   cfg.Timeout,
		Logger:    cfg.Logger,
		Retry:     cfg.Retry,
		Transient: transient,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return exec, nil
}
