package postgres

import (
	"fmt"

	"github.com/ruslano69/dsbot/pkg/adapters/base"
	"github.com/ruslano69/dsbot/pkg/core/query"
)

// ColumnType конвертирует описание колонки в PostgreSQL тип
func ColumnType(col query.Column) string {
	var def string

	switch col.Kind {
	case query.KindInteger:
		if col.AutoIncrement {
			def = "SERIAL"
		} else {
			def = "INTEGER"
		}

	case query.KindDate:
		def = "DATE"

	case query.KindOption:
		def = fmt.Sprintf("VARCHAR(%d)", base.OptionLength(col)) + base.CheckIn(col)

	default:
		def = fmt.Sprintf("VARCHAR(%d)", base.StringLength(col))
	}

	if col.PrimaryKey {
		def += " PRIMARY KEY"
	}
	return def
}
