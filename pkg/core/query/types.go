package query

import (
	"errors"
	"sort"
)

var (
	// ErrEmptyFilter - фильтр без условий (запрос был бы некорректным)
	ErrEmptyFilter = errors.New("filter must contain at least one condition")

	// ErrEmptyData - нет колонок для INSERT/UPDATE
	ErrEmptyData = errors.New("data must contain at least one column")

	// ErrInvalidIdentifier - недопустимое имя таблицы или колонки
	ErrInvalidIdentifier = errors.New("invalid SQL identifier")
)

// Field - пара колонка/значение
// nil в Value означает отсутствующее значение
type Field struct {
	Name  string
	Value any
}

// Fields - упорядоченный набор колонок
// Порядок сохраняется при построении INSERT/UPDATE/WHERE
type Fields []Field

// Get возвращает значение по имени
func (f Fields) Get(name string) (any, bool) {
	for _, field := range f {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

// Set заменяет значение существующей колонки или добавляет новую в конец
func (f Fields) Set(name string, value any) Fields {
	for i := range f {
		if f[i].Name == name {
			f[i].Value = value
			return f
		}
	}
	return append(f, Field{Name: name, Value: value})
}

// Names возвращает имена колонок в исходном порядке
func (f Fields) Names() []string {
	names := make([]string, len(f))
	for i, field := range f {
		names[i] = field.Name
	}
	return names
}

// Map преобразует в map (порядок теряется)
func (f Fields) Map() map[string]any {
	m := make(map[string]any, len(f))
	for _, field := range f {
		m[field.Name] = field.Value
	}
	return m
}

// FromMap создает Fields из map, колонки сортируются по имени
func FromMap(m map[string]any) Fields {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make(Fields, 0, len(names))
	for _, name := range names {
		fields = append(fields, Field{Name: name, Value: m[name]})
	}
	return fields
}

// Eq - фильтр из одного условия равенства
func Eq(name string, value any) Fields {
	return Fields{{Name: name, Value: value}}
}

// Result - результат INSERT/UPDATE
type Result struct {
	RowsAffected int64
	LastInsertID int64
}

// ColumnKind - тип колонки для генерации DDL
type ColumnKind string

const (
	KindString  ColumnKind = "string"
	KindDate    ColumnKind = "date"
	KindOption  ColumnKind = "option"
	KindInteger ColumnKind = "integer"
)

// Column - описание колонки для CREATE TABLE
type Column struct {
	Name          string
	Kind          ColumnKind
	Values        []string // допустимые значения для KindOption
	Length        int      // длина для KindString (0 = 255)
	PrimaryKey    bool
	AutoIncrement bool
}
