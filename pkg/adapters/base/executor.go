package base

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruslano69/dsbot/pkg/core/query"
	"github.com/ruslano69/dsbot/pkg/retry"
)

// ExecutorConfig - параметры общего исполнителя database/sql
type ExecutorConfig struct {
	// DBType - тип СУБД для логов
	DBType string

	// Style - стиль плейсхолдеров
	Style query.Style

	// Timeout - таймаут одного запроса (0 = без таймаута)
	Timeout time.Duration

	// Logger - логгер для текста запросов
	Logger zerolog.Logger

	// Retry - повторы SELECT при временных ошибках соединения
	Retry retry.Config

	// Transient - какие ошибки драйвера считаются временными
	Transient func(error) bool
}

// Executor выполняет Statement через *sql.DB
// Ошибки драйвера возвращаются без обертки
type Executor struct {
	db      *sql.DB
	dbType  string
	style   query.Style
	timeout time.Duration
	logger  zerolog.Logger
	retryer *retry.Retryer
}

// NewExecutor создает исполнителя поверх открытого пула
func NewExecutor(db *sql.DB, cfg ExecutorConfig) (*Executor, error) {
	retryCfg := cfg.Retry
	if retryCfg.Retryable == nil {
		retryCfg.Retryable = cfg.Transient
	}
	// Повторяем только временные ошибки соединения, остальные уходят вызывающему сразу
	if retryCfg.Retryable == nil && len(retryCfg.RetryableErrors) == 0 {
		retryCfg.Enabled = false
	}

	retryer, err := retry.NewRetryer(retryCfg)
	if err != nil {
		return nil, err
	}

	return &Executor{
		db:      db,
		dbType:  cfg.DBType,
		style:   cfg.Style,
		timeout: cfg.Timeout,
		logger:  cfg.Logger.With().Str("component", "executor").Str("db", cfg.DBType).Logger(),
		retryer: retryer,
	}, nil
}

// Style возвращает стиль плейсхолдеров
func (e *Executor) Style() query.Style {
	return e.style
}

// Query выполняет SELECT
// Повторяется при временных ошибках соединения: чтение идемпотентно
func (e *Executor) Query(ctx context.Context, stmt query.Statement, log bool) ([]map[string]any, error) {
	e.trace(stmt, log)

	var rows []map[string]any
	err := e.retryer.Do(ctx, func(ctx context.Context) error {
		ctx, cancel := e.withTimeout(ctx)
		defer cancel()

		result, err := e.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			return err
		}
		defer result.Close()

		rows, err = ScanRows(result)
		return err
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// Exec выполняет INSERT/UPDATE/DDL
// Не повторяется: запрос мог быть применен до обрыва соединения
func (e *Executor) Exec(ctx context.Context, stmt query.Statement, log bool) (query.Result, error) {
	e.trace(stmt, log)

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	res, err := e.db.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return query.Result{}, err
	}

	var result query.Result
	if n, err := res.RowsAffected(); err == nil {
		result.RowsAffected = n
	}
	// PostgreSQL и MS SQL не поддерживают LastInsertId
	if id, err := res.LastInsertId(); err == nil {
		result.LastInsertID = id
	}

	return result, nil
}

// Count выполняет запрос, возвращающий одно число
func (e *Executor) Count(ctx context.Context, stmt query.Statement) (int64, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	var n int64
	if err := e.db.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to scan count: %w", err)
	}
	return n, nil
}

// Version выполняет запрос версии СУБД
func (e *Executor) Version(ctx context.Context, sqlText string) (string, error) {
	var version string
	if err := e.db.QueryRowContext(ctx, sqlText).Scan(&version); err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// Ping проверяет соединение
func (e *Executor) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

// Close закрывает пул
func (e *Executor) Close() error {
	return e.db.Close()
}

func (e *Executor) trace(stmt query.Statement, log bool) {
	if log {
		e.logger.Info().Str("sql", stmt.String()).Msg("executing query")
		return
	}
	e.logger.Debug().Str("sql", stmt.SQL).Int("args", len(stmt.Args)).Msg("executing query")
}

func (e *Executor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(ctx, e.timeout)
	}
	return context.WithCancel(ctx)
}

// ScanRows читает все строки в map колонка → значение
// []byte (MySQL отдает текст так) превращается в string
func ScanRows(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		record := make(map[string]any, len(columns))
		for i, col := range columns {
			record[col] = normalizeValue(values[i])
		}
		result = append(result, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	default:
		return val
	}
}
