package mssql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	_ "github.com/denisenkom/go-mssqldb" // MS SQL Server driver

	"github.com/ruslano69/dsbot/pkg/adapters"
	"github.com/ruslano69/dsbot/pkg/adapters/base"
	"github.com/ruslano69/dsbot/pkg/core/query"
)

// AdapterType идентификатор MS SQL адаптера
const AdapterType = "mssql"

var _ adapters.Adapter = (*Adapter)(nil)

func init() {
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{}
	})
}

// Adapter implements adapters.Adapter for Microsoft SQL Server.
type Adapter struct {
	*base.Executor
}

// Connect opens a sqlserver:// connection pool.
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	cfg.Type = AdapterType
	exec, err := base.Attach(ctx, db, cfg, query.StyleAtP, IsTransient)
	if err != nil {
		return err
	}

	a.Executor = exec
	return nil
}

// Close closes the pool.
func (a *Adapter) Close(ctx context.Context) error {
	if a.Executor != nil {
		return a.Executor.Close()
	}
	return nil
}

// Ping checks the connection.
func (a *Adapter) Ping(ctx context.Context) error {
	if a.Executor == nil {
		return adapters.ErrNotConnected
	}
	return a.Executor.Ping(ctx)
}

// GetDatabaseType returns "mssql".
func (a *Adapter) GetDatabaseType() string {
	return AdapterType
}

// GetDatabaseVersion returns @@VERSION.
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	return a.Version(ctx, "SELECT @@VERSION")
}

// TableExists checks INFORMATION_SCHEMA for the table.
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	stmt := query.New(query.StyleAtP,
		"SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_NAME = @p1", tableName)

	n, err := a.Count(ctx, stmt)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return n > 0, nil
}

// CreateTable creates the table.
func (a *Adapter) CreateTable(ctx context.Context, tableName string, columns []query.Column) error {
	sqlText, err := base.CreateTableSQL(tableName, columns, ColumnType)
	if err != nil {
		return err
	}
	_, err = a.Exec(ctx, query.New(query.StyleAtP, sqlText), false)
	return err
}

// IsTransient reports a dropped connection.
func IsTransient(err error) bool {
	return errors.Is(err, driver.ErrBadConn)
}
