// Package entities - сущности бота поверх общего доступа к таблицам
package entities

import (
	"context"
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/dsbot/pkg/entity"
)

//go:embed definitions.yaml
var definitionsYAML []byte

// Definitions разбирает встроенные описания таблиц
func Definitions() (map[string]entity.Definition, error) {
	var defs map[string]entity.Definition
	if err := yaml.Unmarshal(definitionsYAML, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse entity definitions: %w", err)
	}

	for name, def := range defs {
		def.Name = name
		if err := def.Validate(); err != nil {
			return nil, err
		}
		defs[name] = def
	}
	return defs, nil
}

// Set - все сущности бота, созданные над одним исполнителем
type Set struct {
	Experience *Experience
	Servers    *Servers

	byName map[string]*entity.Entity
}

// New создает сущности
func New(exec entity.Executor, loc entity.Localizer, defaults ServerDefaults, opts ...entity.Option) (*Set, error) {
	defs, err := Definitions()
	if err != nil {
		return nil, err
	}

	opts = append([]entity.Option{entity.WithLocalizer(loc)}, opts...)

	set := &Set{byName: make(map[string]*entity.Entity, len(defs))}
	for name, def := range defs {
		e, err := entity.New(def, exec, opts...)
		if err != nil {
			return nil, err
		}
		set.byName[name] = e
	}

	set.Experience = &Experience{Entity: set.byName["experience"]}
	set.Servers = &Servers{Entity: set.byName["server"], defaults: defaults}
	return set, nil
}

// Get возвращает сущность по имени
func (s *Set) Get(name string) (*entity.Entity, bool) {
	e, ok := s.byName[name]
	return e, ok
}

// Names возвращает имена сущностей по алфавиту
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnsureSchema создает недостающие таблицы и возвращает созданные
func (s *Set) EnsureSchema(ctx context.Context, schema entity.Schema) ([]string, error) {
	var created []string
	for _, name := range s.Names() {
		e := s.byName[name]
		ok, err := e.EnsureTable(ctx, schema)
		if err != nil {
			return created, err
		}
		if ok {
			created = append(created, e.Table())
		}
	}
	return created, nil
}
