package sqlite

import (
	"github.com/ruslano69/dsbot/pkg/adapters/base"
	"github.com/ruslano69/dsbot/pkg/core/query"
)

// ColumnType конвертирует описание колонки в SQLite тип
// SQLite не проверяет длину VARCHAR, поэтому строки хранятся как TEXT
func ColumnType(col query.Column) string {
	switch col.Kind {
	case query.KindInteger:
		if col.PrimaryKey && col.AutoIncrement {
			return "INTEGER PRIMARY KEY AUTOINCREMENT"
		}
		if col.PrimaryKey {
			return "INTEGER PRIMARY KEY"
		}
		return "INTEGER"

	case query.KindOption:
		def := "TEXT" + base.CheckIn(col)
		if col.PrimaryKey {
			def += " PRIMARY KEY"
		}
		return def

	default:
		// KindString, KindDate
		if col.PrimaryKey {
			return "TEXT PRIMARY KEY"
		}
		return "TEXT"
	}
}
