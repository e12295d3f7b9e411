package events

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zeebo/xxh3"
)

// Operation - тип изменения
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
)

// Change - событие об успешной записи в таблицу сущности
type Change struct {
	Entity    string         `json:"entity"`
	Table     string         `json:"table"`
	Operation Operation      `json:"operation"`
	Data      map[string]any `json:"data"`
	Filter    map[string]any `json:"filter,omitempty"`
	Checksum  string         `json:"checksum"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewChange создает событие и вычисляет контрольную сумму данных
func NewChange(entity, table string, op Operation, data, filter map[string]any) Change {
	return Change{
		Entity:    entity,
		Table:     table,
		Operation: op,
		Data:      data,
		Filter:    filter,
		Checksum:  Checksum(data, filter),
		Timestamp: time.Now().UTC(),
	}
}

// Key - ключ события: одинаковый для изменений одной и той же записи
func (c Change) Key() string {
	if len(c.Filter) > 0 {
		return c.Entity + ":" + Checksum(c.Filter, nil)
	}
	return c.Entity + ":" + c.Checksum
}

// Marshal сериализует событие в JSON
func (c Change) Marshal() ([]byte, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal change: %w", err)
	}
	return payload, nil
}

// Checksum вычисляет xxh3 хеш данных и фильтра и возвращает hex строку
// encoding/json сортирует ключи map, поэтому порядок полей не влияет на результат
func Checksum(data, filter map[string]any) string {
	payload, err := json.Marshal([2]map[string]any{data, filter})
	if err != nil {
		payload = []byte(fmt.Sprint(data, filter))
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], xxh3.Hash(payload))
	return hex.EncodeToString(buf[:])
}

// Publisher публикует события изменений
type Publisher interface {
	Publish(ctx context.Context, change Change) error
	Close() error
}

// NopPublisher ничего не публикует
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, change Change) error { return nil }
func (NopPublisher) Close() error                                     { return nil }
