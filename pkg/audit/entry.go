package audit

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

// Level - уровень детализации логирования
type Level int

const (
	// LevelMinimal - только основная информация
	LevelMinimal Level = iota

	// LevelStandard - без записываемых данных
	LevelStandard

	// LevelFull - полная информация включая данные
	LevelFull
)

// String - строковое представление уровня
func (l Level) String() string {
	switch l {
	case LevelMinimal:
		return "minimal"
	case LevelStandard:
		return "standard"
	case LevelFull:
		return "full"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// ParseLevel разбирает уровень из конфигурации
func ParseLevel(s string) (Level, error) {
	switch s {
	case "minimal":
		return LevelMinimal, nil
	case "", "standard":
		return LevelStandard, nil
	case "full":
		return LevelFull, nil
	default:
		return 0, fmt.Errorf("unknown audit level: %s", s)
	}
}

// Operation - тип операции
type Operation string

const (
	OpQuery  Operation = "query"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpSchema Operation = "schema"
	OpExport Operation = "export"
)

// Status - статус выполнения операции
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Entry - запись в audit логе
type Entry struct {
	ID              string         `json:"id"`
	Timestamp       time.Time      `json:"timestamp"`
	Operation       Operation      `json:"operation"`
	Status          Status         `json:"status"`
	User            string         `json:"user,omitempty"`   // пользователь чата
	Guild           string         `json:"guild,omitempty"`  // сервер чата
	Entity          string         `json:"entity,omitempty"` // имя сущности
	Resource        string         `json:"resource,omitempty"`
	RecordsAffected int64          `json:"records_affected,omitempty"`
	Duration        time.Duration  `json:"duration,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	ErrorClass      string         `json:"error_class,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	Data            any            `json:"data,omitempty"` // только для LevelFull
}

// NewEntry - создать новую audit запись
func NewEntry(operation Operation, status Status) *Entry {
	return &Entry{
		ID:        generateID(),
		Timestamp: time.Now(),
		Operation: operation,
		Status:    status,
	}
}

// WithUser - установить пользователя
func (e *Entry) WithUser(user string) *Entry {
	e.User = user
	return e
}

// WithGuild - установить сервер чата
func (e *Entry) WithGuild(guild string) *Entry {
	e.Guild = guild
	return e
}

// WithEntity - установить сущность и ее таблицу
func (e *Entry) WithEntity(entity, table string) *Entry {
	e.Entity = entity
	e.Resource = table
	return e
}

// WithRecordsAffected - установить количество записей
func (e *Entry) WithRecordsAffected(count int64) *Entry {
	e.RecordsAffected = count
	return e
}

// WithDuration - установить длительность
func (e *Entry) WithDuration(duration time.Duration) *Entry {
	e.Duration = duration
	return e
}

// WithError - установить ошибку
func (e *Entry) WithError(err error) *Entry {
	if err != nil {
		e.ErrorMessage = err.Error()
		e.Status = StatusFailure
	}
	return e
}

// WithErrorClass - установить класс ошибки СУБД
func (e *Entry) WithErrorClass(class string) *Entry {
	e.ErrorClass = class
	return e
}

// WithMetadata - добавить метаданные
func (e *Entry) WithMetadata(key string, value any) *Entry {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}

// WithData - установить данные операции
func (e *Entry) WithData(data any) *Entry {
	e.Data = data
	return e
}

// ToJSON - преобразовать в JSON
func (e *Entry) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// String - строковое представление
func (e *Entry) String() string {
	return fmt.Sprintf("[%s] %s %s %s (entity=%s, resource=%s, records=%d, duration=%v)",
		e.Timestamp.Format(time.RFC3339),
		e.Operation,
		e.Status,
		e.User,
		e.Entity,
		e.Resource,
		e.RecordsAffected,
		e.Duration,
	)
}

// Clone - создать копию записи
func (e *Entry) Clone() *Entry {
	clone := *e

	if e.Metadata != nil {
		clone.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			clone.Metadata[k] = v
		}
	}

	return &clone
}

// FilterByLevel - фильтрация данных по уровню
func (e *Entry) FilterByLevel(level Level) *Entry {
	filtered := e.Clone()

	switch level {
	case LevelMinimal:
		filtered.Metadata = nil
		filtered.Data = nil
	case LevelStandard:
		filtered.Data = nil
	}

	return filtered
}

var idCounter atomic.Uint64

// generateID - уникальный в пределах процесса ID
func generateID() string {
	return fmt.Sprintf("audit-%d-%d", time.Now().UnixNano(), idCounter.Add(1))
}
