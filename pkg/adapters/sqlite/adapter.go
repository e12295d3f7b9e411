package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/ruslano69/dsbot/pkg/adapters"
	"github.com/ruslano69/dsbot/pkg/adapters/base"
	"github.com/ruslano69/dsbot/pkg/core/query"
)

const driverSqlite = "sqlite"

// AdapterType идентификатор SQLite адаптера
const AdapterType = "sqlite"

var _ adapters.Adapter = (*Adapter)(nil)

func init() {
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{}
	})
}

// Adapter представляет адаптер для работы с SQLite
// Используется для локального запуска бота и в тестах (":memory:")
type Adapter struct {
	*base.Executor
}

// Connect устанавливает подключение к SQLite
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	db, err := sql.Open(driverSqlite, cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Одно соединение: SQLite допускает одного писателя, а in-memory база
	// живет в соединении и второе увидело бы пустую БД
	cfg.MaxConns = 1

	cfg.Type = AdapterType
	exec, err := base.Attach(ctx, db, cfg, query.StyleQuestion, IsTransient)
	if err != nil {
		return err
	}

	a.Executor = exec
	return nil
}

// Close закрывает соединение с БД
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

// GetDatabaseVersion возвращает версию SQLite
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	version, err := a.Version(ctx, "SELECT sqlite_version()")
	if err != nil {
		return "", err
	}
	return "SQLite " + version, nil
}

// TableExists проверяет существование таблицы
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	stmt := query.New(query.StyleQuestion,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", tableName)

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

// IsTransient сообщает, что соединение оборвалось и SELECT можно повторить
func IsTransient(err error) bool {
	return errors.Is(err, driver.ErrBadConn)
}
