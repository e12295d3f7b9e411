package adapters

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// AdapterConstructor возвращает новый, еще не подключенный адаптер
type AdapterConstructor func() Adapter

// aliases - альтернативные имена типов из конфигов
var aliases = map[string]string{
	"postgresql": "postgres",
	"pg":         "postgres",
	"mariadb":    "mysql",
	"sqlserver":  "mssql",
	"sqlite3":    "sqlite",
}

// NormalizeType приводит имя типа СУБД к имени регистрации
func NormalizeType(dbType string) string {
	t := strings.ToLower(strings.TrimSpace(dbType))
	if canonical, ok := aliases[t]; ok {
		return canonical
	}
	return t
}

// Factory - реестр конструкторов адаптеров
type Factory struct {
	registry map[string]AdapterConstructor
	mu       sync.RWMutex
}

// NewFactory создает пустую фабрику
func NewFactory() *Factory {
	return &Factory{
		registry: make(map[string]AdapterConstructor),
	}
}

// Register регистрирует конструктор для типа СУБД
func (f *Factory) Register(dbType string, constructor AdapterConstructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registry[NormalizeType(dbType)] = constructor
}

// IsRegistered проверяет, зарегистрирован ли тип
func (f *Factory) IsRegistered(dbType string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.registry[NormalizeType(dbType)]
	return ok
}

// GetRegisteredTypes возвращает отсортированный список типов
func (f *Factory) GetRegisteredTypes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]string, 0, len(f.registry))
	for dbType := range f.registry {
		types = append(types, dbType)
	}
	sort.Strings(types)
	return types
}

// CreateWithoutConnect создает адаптер БЕЗ подключения к БД
func (f *Factory) CreateWithoutConnect(dbType string) (Adapter, error) {
	f.mu.RLock()
	constructor, ok := f.registry[NormalizeType(dbType)]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown database type: %s (available types: %v)",
			dbType, f.GetRegisteredTypes())
	}

	return constructor(), nil
}

// Create создает и подключает адаптер по конфигурации
func (f *Factory) Create(ctx context.Context, cfg Config) (Adapter, error) {
	adapter, err := f.CreateWithoutConnect(cfg.Type)
	if err != nil {
		return nil, err
	}

	cfg.Type = NormalizeType(cfg.Type)
	if err := adapter.Connect(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Type, err)
	}

	return adapter, nil
}

// ========== Global Factory ==========

var globalFactory = NewFactory()

// Register регистрирует адаптер в глобальной фабрике
// Вызывается из init() пакетов адаптеров
func Register(dbType string, constructor AdapterConstructor) {
	globalFactory.Register(dbType, constructor)
}

// IsRegistered проверяет регистрацию в глобальной фабрике
func IsRegistered(dbType string) bool {
	return globalFactory.IsRegistered(dbType)
}

// GetRegisteredTypes возвращает типы из глобальной фабрики
func GetRegisteredTypes() []string {
	return globalFactory.GetRegisteredTypes()
}

// New создает и подключает адаптер через глобальную фабрику
func New(ctx context.Context, cfg Config) (Adapter, error) {
	return globalFactory.Create(ctx, cfg)
}

// NewWithoutConnect создает адаптер без подключения через глобальную фабрику
func NewWithoutConnect(dbType string) (Adapter, error) {
	return globalFactory.CreateWithoutConnect(dbType)
}
