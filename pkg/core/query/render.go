package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Render подставляет аргументы в SQL текст
// Результат предназначен только для логов и диагностики, НЕ для выполнения:
// строки оборачиваются в двойные кавычки без экранирования
func Render(s Statement) string {
	var b strings.Builder
	b.Grow(len(s.SQL) + 16*len(s.Args))

	sql := s.SQL
	next := 0 // для StyleQuestion аргументы идут по порядку

	for i := 0; i < len(sql); i++ {
		c := sql[i]

		switch {
		case s.Style == StyleQuestion && c == '?':
			b.WriteString(literal(argAt(s.Args, next)))
			next++

		case s.Style == StyleDollar && c == '$':
			n, width := leadingNumber(sql[i+1:])
			if width == 0 {
				b.WriteByte(c)
				continue
			}
			b.WriteString(literal(argAt(s.Args, n-1)))
			i += width

		case s.Style == StyleAtP && c == '@' && strings.HasPrefix(sql[i+1:], "p"):
			n, width := leadingNumber(sql[i+2:])
			if width == 0 {
				b.WriteByte(c)
				continue
			}
			b.WriteString(literal(argAt(s.Args, n-1)))
			i += width + 1

		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

func argAt(args []any, i int) any {
	if i < 0 || i >= len(args) {
		return missingArg{}
	}
	return args[i]
}

type missingArg struct{}

func leadingNumber(s string) (int, int) {
	width := 0
	for width < len(s) && s[width] >= '0' && s[width] <= '9' {
		width++
	}
	if width == 0 {
		return 0, 0
	}
	n, _ := strconv.Atoi(s[:width])
	return n, width
}

// literal форматирует значение так, как оно выглядело бы в SQL тексте
func literal(v any) string {
	switch val := v.(type) {
	case missingArg:
		return "?"
	case nil:
		return "NULL"
	case string:
		return `"` + val + `"`
	case []byte:
		return `"` + string(val) + `"`
	case time.Time:
		return `"` + val.Format("2006-01-02 15:04:05") + `"`
	case *time.Time:
		if val == nil {
			return "NULL"
		}
		return `"` + val.Format("2006-01-02 15:04:05") + `"`
	case bool:
		if val {
			return "1"
		}
		return "0"
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
