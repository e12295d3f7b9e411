package base

import (
	"fmt"
	"strings"

	"github.com/ruslano69/dsbot/pkg/core/query"
)

// TypeMapper возвращает определение колонки для конкретной СУБД
// (тип и ограничения, без имени)
type TypeMapper func(col query.Column) string

// CreateTableSQL строит CREATE TABLE из описаний колонок
func CreateTableSQL(tableName string, columns []query.Column, mapper TypeMapper) (string, error) {
	if !query.ValidIdentifier(tableName) {
		return "", fmt.Errorf("%w: %q", query.ErrInvalidIdentifier, tableName)
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("table %s has no columns", tableName)
	}

	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		if !query.ValidIdentifier(col.Name) {
			return "", fmt.Errorf("%w: %q", query.ErrInvalidIdentifier, col.Name)
		}
		defs = append(defs, col.Name+" "+mapper(col))
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", tableName, strings.Join(defs, ", ")), nil
}

// StringLength возвращает длину строковой колонки (по умолчанию 255)
func StringLength(col query.Column) int {
	if col.Length > 0 {
		return col.Length
	}
	return 255
}

// OptionLength возвращает длину, достаточную для самого длинного значения
func OptionLength(col query.Column) int {
	length := 16
	for _, v := range col.Values {
		if len(v) > length {
			length = len(v)
		}
	}
	return length
}

// QuotedValues возвращает значения в одинарных кавычках для ENUM/CHECK
// Апостроф внутри значения удваивается
func QuotedValues(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return strings.Join(quoted, ",")
}

// CheckIn возвращает CHECK ограничение для колонки-перечисления
func CheckIn(col query.Column) string {
	if len(col.Values) == 0 {
		return ""
	}
	return fmt.Sprintf(" CHECK (%s IN (%s))", col.Name, QuotedValues(col.Values))
}
