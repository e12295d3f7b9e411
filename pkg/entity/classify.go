package entity

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrorClass - класс ошибки СУБД, для которого есть понятное сообщение
type ErrorClass int

const (
	Unclassified ErrorClass = iota
	TruncatedEnumValue
	InvalidDate
	TextTooLong
	InvalidInteger
)

func (c ErrorClass) String() string {
	switch c {
	case TruncatedEnumValue:
		return "TruncatedEnumValue"
	case InvalidDate:
		return "InvalidDate"
	case TextTooLong:
		return "TextTooLong"
	case InvalidInteger:
		return "InvalidInteger"
	default:
		return "Unclassified"
	}
}

// Коды ошибок MySQL
const (
	codeDataTruncated = 1265 // WARN_DATA_TRUNCATED
	codeDataTooLong   = 1406 // ER_DATA_TOO_LONG
)

// Classification - результат разбора ошибки драйвера
type Classification struct {
	Class  ErrorClass
	Code   uint16
	Column string
}

var (
	columnPattern = regexp.MustCompile("for column (\\S+)")
	codePattern   = regexp.MustCompile(`^Error (\d+)`)
)

// Classify относит ошибку драйвера к одному из классов
// Вся привязка к тексту сообщений MySQL находится здесь
func Classify(err error) Classification {
	if err == nil {
		return Classification{}
	}

	var (
		code uint16
		msg  = err.Error()
	)

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		code = myErr.Number
		msg = myErr.Message
	} else {
		code = codeFromText(msg)
	}

	c := Classification{Code: code}

	switch {
	// Дата распознается по тексту при любом коде
	case strings.Contains(msg, "Incorrect date value:"),
		strings.Contains(msg, "Incorrect datetime value:"):
		c.Class = InvalidDate

	case code == codeDataTruncated:
		c.Class = TruncatedEnumValue

	case code == codeDataTooLong, strings.Contains(msg, "Data too long for column"):
		c.Class = TextTooLong

	case strings.Contains(msg, "Incorrect integer value:"):
		c.Class = InvalidInteger

	default:
		return c
	}

	c.Column = columnFromText(msg)
	return c
}

// columnFromText извлекает имя колонки
// MySQL 5.x: for column 'hours'; MySQL 8: for column `db`.`table`.`hours`
// Отклоненное значение стоит в сообщении раньше колонки, поэтому берется последнее совпадение
func columnFromText(msg string) string {
	all := columnPattern.FindAllStringSubmatch(msg, -1)
	if len(all) == 0 {
		return ""
	}

	ref := all[len(all)-1][1]
	if i := strings.LastIndex(ref, "."); i >= 0 {
		ref = ref[i+1:]
	}
	return strings.Trim(ref, "'`\"")
}

func codeFromText(msg string) uint16 {
	m := codePattern.FindStringSubmatch(msg)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseUint(m[1], 10, 16)
	if err != nil {
		return 0
	}
	return uint16(n)
}
