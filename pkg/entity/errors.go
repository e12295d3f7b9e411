package entity

import (
	"fmt"

	"github.com/ruslano69/dsbot/pkg/core/query"
)

// QueryError - ошибка выполнения запроса
// Оборачивает ошибку драйвера без изменений
type QueryError struct {
	Statement query.Statement
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %s: %v", e.Statement.SQL, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// UserError - ошибка с локализованным сообщением для пользователя
// Message можно показывать как есть
type UserError struct {
	Message string
	Class   ErrorClass
	Column  string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}
