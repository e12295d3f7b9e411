package mysql

import (
	"fmt"

	"github.com/ruslano69/dsbot/pkg/adapters/base"
	"github.com/ruslano69/dsbot/pkg/core/query"
)

// ColumnType конвертирует описание колонки в MySQL тип
func ColumnType(col query.Column) string {
	var def string

	switch col.Kind {
	case query.KindInteger:
		def = "INT"
		if col.AutoIncrement {
			def += " AUTO_INCREMENT"
		}

	case query.KindDate:
		def = "DATE"

	case query.KindOption:
		// ENUM: значение вне списка дает WARN_DATA_TRUNCATED (1265)
		def = fmt.Sprintf("ENUM(%s)", base.QuotedValues(col.Values))

	default:
		def = fmt.Sprintf("VARCHAR(%d)", base.StringLength(col))
	}

	if col.PrimaryKey {
		def += " PRIMARY KEY"
	}
	return def
}
