package mssql

import (
	"fmt"

	"github.com/ruslano69/dsbot/pkg/adapters/base"
	"github.com/ruslano69/dsbot/pkg/core/query"
)

// ColumnType maps a column description to a SQL Server type.
func ColumnType(col query.Column) string {
	var def string

	switch col.Kind {
	case query.KindInteger:
		def = "INT"
		if col.AutoIncrement {
			def += " IDENTITY(1,1)"
		}

	case query.KindDate:
		def = "DATE"

	case query.KindOption:
		def = fmt.Sprintf("NVARCHAR(%d)", base.OptionLength(col)) + base.CheckIn(col)

	default:
		def = fmt.Sprintf("NVARCHAR(%d)", base.StringLength(col))
	}

	if col.PrimaryKey {
		def += " PRIMARY KEY"
	}
	return def
}
