package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/ruslano69/dsbot/pkg/adapters"
	"github.com/ruslano69/dsbot/pkg/adapters/base"
	"github.com/ruslano69/dsbot/pkg/core/query"
)

// AdapterType идентификатор PostgreSQL адаптера
const AdapterType = "postgres"

var _ adapters.Adapter = (*Adapter)(nil)

func init() {
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{}
	})
}

// Adapter реализует adapters.Adapter для PostgreSQL через pgx (database/sql интерфейс)
type Adapter struct {
	*base.Executor
}

// Connect устанавливает подключение к PostgreSQL
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	connConfig, err := pgx.ParseConfig(cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to parse connection string: %w", err)
	}

	cfg.Type = AdapterType
	exec, err := base.Attach(ctx, stdlib.OpenDB(*connConfig), cfg, query.StyleDollar, IsTransient)
	if err != nil {
		return err
	}

	a.Executor = exec
	return nil
}

// Close закрывает пул
func (a *Adapter) Close(ctx context.Context) error {
	if a.Executor != nil {
		return a.Executor.Close()
	}
	return nil
}

// Ping проверяет доступность БД
func (a *Adapter) Ping(ctx context.Context) error {
	if a.Executor == nil {
		return adapters.ErrNotConnected
	}
	return a.Executor.Ping(ctx)
}

// GetDatabaseType возвращает тип СУБД
func (a *Adapter) GetDatabaseType() string {
	return AdapterType
}

// GetDatabaseVersion возвращает версию PostgreSQL
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	return a.Version(ctx, "SELECT version()")
}

// TableExists проверяет существование таблицы в текущей схеме
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	stmt := query.New(query.StyleDollar, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_name = $1
	`, tableName)

	n, err := a.Count(ctx, stmt)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return n > 0, nil
}

// CreateTable создает таблицу
func (a *Adapter) CreateTable(ctx context.Context, tableName string, columns []query.Column) error {
	sqlText, err := base.CreateTableSQL(tableName, columns, ColumnType)
	if err != nil {
		return err
	}
	_, err = a.Exec(ctx, query.New(query.StyleDollar, sqlText), false)
	return err
}

// IsTransient сообщает, что соединение оборвалось и SELECT можно повторить
func IsTransient(err error) bool {
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone)
}
