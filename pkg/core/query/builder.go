package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Style - стиль плейсхолдеров конкретной СУБД
type Style int

const (
	// StyleQuestion - "?" (MySQL, SQLite)
	StyleQuestion Style = iota
	// StyleDollar - "$1, $2" (PostgreSQL)
	StyleDollar
	// StyleAtP - "@p1, @p2" (MS SQL Server)
	StyleAtP
)

// Placeholder возвращает плейсхолдер для n-го аргумента (нумерация с 1)
func (s Style) Placeholder(n int) string {
	switch s {
	case StyleDollar:
		return "$" + strconv.Itoa(n)
	case StyleAtP:
		return "@p" + strconv.Itoa(n)
	default:
		return "?"
	}
}

// Statement - SQL с позиционными аргументами
type Statement struct {
	SQL   string
	Args  []any
	Style Style
}

// New создает Statement
func New(style Style, sql string, args ...any) Statement {
	return Statement{SQL: sql, Args: args, Style: style}
}

// String возвращает SQL с подставленными значениями (только для логов)
func (s Statement) String() string {
	return Render(s)
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier проверяет имя таблицы или колонки
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

func checkIdentifiers(names ...string) error {
	for _, name := range names {
		if !ValidIdentifier(name) {
			return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
		}
	}
	return nil
}

// Builder строит параметризованные SELECT/INSERT/UPDATE
type Builder struct {
	style Style
}

// NewBuilder создает построитель для стиля плейсхолдеров
func NewBuilder(style Style) *Builder {
	return &Builder{style: style}
}

// Style возвращает стиль плейсхолдеров
func (b *Builder) Style() Style {
	return b.style
}

// Select строит SELECT * FROM table WHERE ...
func (b *Builder) Select(table string, where Fields) (Statement, error) {
	if err := checkIdentifiers(table); err != nil {
		return Statement{}, err
	}

	clause, args, err := b.Where(where, 1)
	if err != nil {
		return Statement{}, err
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s", table, clause)
	return Statement{SQL: sql, Args: args, Style: b.style}, nil
}

// Insert строит INSERT INTO table (cols) VALUES (...) в порядке data
func (b *Builder) Insert(table string, data Fields) (Statement, error) {
	if len(data) == 0 {
		return Statement{}, ErrEmptyData
	}
	if err := checkIdentifiers(table); err != nil {
		return Statement{}, err
	}
	if err := checkIdentifiers(data.Names()...); err != nil {
		return Statement{}, err
	}

	placeholders := make([]string, len(data))
	args := make([]any, len(data))
	for i, field := range data {
		placeholders[i] = b.style.Placeholder(i + 1)
		args[i] = field.Value
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(data.Names(), ", "),
		strings.Join(placeholders, ", "),
	)
	return Statement{SQL: sql, Args: args, Style: b.style}, nil
}

// Update строит UPDATE table SET col = ?, ... WHERE ...
func (b *Builder) Update(table string, data, where Fields) (Statement, error) {
	if len(data) == 0 {
		return Statement{}, ErrEmptyData
	}
	if err := checkIdentifiers(table); err != nil {
		return Statement{}, err
	}

	sets := make([]string, len(data))
	args := make([]any, 0, len(data)+len(where))
	for i, field := range data {
		if err := checkIdentifiers(field.Name); err != nil {
			return Statement{}, err
		}
		sets[i] = fmt.Sprintf("%s = %s", field.Name, b.style.Placeholder(i+1))
		args = append(args, field.Value)
	}

	clause, whereArgs, err := b.Where(where, len(data)+1)
	if err != nil {
		return Statement{}, err
	}
	args = append(args, whereArgs...)

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(sets, ", "), clause)
	return Statement{SQL: sql, Args: args, Style: b.style}, nil
}

// Where конвертирует фильтр в конъюнкцию равенств
// first - номер первого плейсхолдера (для UPDATE аргументы WHERE идут после SET)
// nil значение превращается в "col IS NULL" без аргумента
func (b *Builder) Where(where Fields, first int) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, ErrEmptyFilter
	}

	conditions := make([]string, 0, len(where))
	args := make([]any, 0, len(where))
	n := first

	for _, field := range where {
		if err := checkIdentifiers(field.Name); err != nil {
			return "", nil, err
		}

		if field.Value == nil {
			conditions = append(conditions, field.Name+" IS NULL")
			continue
		}

		conditions = append(conditions, fmt.Sprintf("%s = %s", field.Name, b.style.Placeholder(n)))
		args = append(args, field.Value)
		n++
	}

	return strings.Join(conditions, " AND "), args, nil
}
