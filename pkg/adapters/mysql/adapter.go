package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/ruslano69/dsbot/pkg/adapters"
	"github.com/ruslano69/dsbot/pkg/adapters/base"
	"github.com/ruslano69/dsbot/pkg/core/query"
)

// AdapterType идентификатор MySQL адаптера
const AdapterType = "mysql"

var _ adapters.Adapter = (*Adapter)(nil)

func init() {
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{}
	})
}

// Adapter реализует adapters.Adapter для MySQL
type Adapter struct {
	*base.Executor
}

// Connect подключается к MySQL базе данных
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	dsn, err := parseDSN(cfg.DSN)
	if err != nil {
		return err
	}

	connector, err := mysql.NewConnector(dsn)
	if err != nil {
		return fmt.Errorf("failed to create connector: %w", err)
	}

	cfg.Type = AdapterType
	exec, err := base.Attach(ctx, sql.OpenDB(connector), cfg, query.StyleQuestion, IsTransient)
	if err != nil {
		return err
	}

	a.Executor = exec
	return nil
}

// Close закрывает соединение с базой данных
func (a *Adapter) Close(ctx context.Context) error {
	if a.Executor != nil {
		return a.Executor.Close()
	}
	return nil
}

// Ping проверяет соединение с базой данных
func (a *Adapter) Ping(ctx context.Context) error {
	if a.Executor == nil {
		return adapters.ErrNotConnected
	}
	return a.Executor.Ping(ctx)
}

// GetDatabaseType возвращает тип адаптера
func (a *Adapter) GetDatabaseType() string {
	return AdapterType
}

// GetDatabaseVersion возвращает версию MySQL
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	return a.Version(ctx, "SELECT VERSION()")
}

// TableExists проверяет существование таблицы в текущей базе
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	stmt := query.New(query.StyleQuestion, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
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
	_, err = a.Exec(ctx, query.New(query.StyleQuestion, sqlText), false)
	return err
}

// parseDSN разбирает DSN и включает строгий режим, если sql_mode не задан явно
// STRICT_ALL_TABLES: некорректные значения должны отклоняться ошибкой,
// а не молча усекаться с предупреждением
func parseDSN(raw string) (*mysql.Config, error) {
	dsn, err := mysql.ParseDSN(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if dsn.Params == nil {
		dsn.Params = map[string]string{}
	}
	if _, ok := dsn.Params["sql_mode"]; !ok {
		dsn.Params["sql_mode"] = "'STRICT_ALL_TABLES'"
	}
	return dsn, nil
}

// IsTransient сообщает, что соединение оборвалось и SELECT можно повторить
func IsTransient(err error) bool {
	return errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, driver.ErrBadConn)
}
