package entity

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/dsbot/pkg/core/query"
)

// PropertyType - тип свойства сущности (закрытый набор)
type PropertyType int

const (
	TypeString PropertyType = iota
	TypeDate
	TypeOption
	TypeInteger
)

// String возвращает имя типа как в описаниях сущностей
func (t PropertyType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeDate:
		return "date"
	case TypeOption:
		return "option"
	case TypeInteger:
		return "integer"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// ParsePropertyType разбирает имя типа (регистр не важен)
func ParsePropertyType(s string) (PropertyType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "text":
		return TypeString, nil
	case "date":
		return TypeDate, nil
	case "option", "enum":
		return TypeOption, nil
	case "integer", "int":
		return TypeInteger, nil
	default:
		return 0, fmt.Errorf("unknown property type: %q", s)
	}
}

// Property - описание свойства
// Values заполняется только для TypeOption и сохраняет порядок объявления
type Property struct {
	Type   PropertyType
	Values []string
	Length int
}

// OptionOf создает свойство-перечисление
func OptionOf(values ...string) Property {
	return Property{Type: TypeOption, Values: values}
}

// Of создает свойство заданного типа без ограничений
func Of(t PropertyType) Property {
	return Property{Type: t}
}

// UnmarshalYAML принимает как голое имя типа ("integer"),
// так и полное описание ({type: option, values: [a, b]})
func (p *Property) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		t, err := ParsePropertyType(node.Value)
		if err != nil {
			return err
		}
		*p = Property{Type: t}
		return nil
	}

	var raw struct {
		Type   string   `yaml:"type"`
		Values []string `yaml:"values"`
		Length int      `yaml:"length"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	t, err := ParsePropertyType(raw.Type)
	if err != nil {
		return err
	}
	*p = Property{Type: t, Values: raw.Values, Length: raw.Length}
	return nil
}

// Validate проверяет согласованность описания
func (p Property) Validate() error {
	if p.Type == TypeOption && len(p.Values) == 0 {
		return fmt.Errorf("option property requires values")
	}
	if p.Type != TypeOption && len(p.Values) > 0 {
		return fmt.Errorf("values are only allowed for option properties, got %s", p.Type)
	}
	return nil
}

// Prop - именованное свойство
type Prop struct {
	Name string
	Property
}

// Props - свойства в порядке объявления
type Props []Prop

// UnmarshalYAML читает mapping, сохраняя порядок ключей
func (ps *Props) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("props must be a mapping, got line %d", node.Line)
	}

	result := make(Props, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var p Property
		if err := node.Content[i+1].Decode(&p); err != nil {
			return fmt.Errorf("property %s: %w", node.Content[i].Value, err)
		}
		result = append(result, Prop{Name: node.Content[i].Value, Property: p})
	}

	*ps = result
	return nil
}

// Definition - описание сущности: таблица и свойства
// Создается один раз при старте и после этого не меняется
type Definition struct {
	Name  string `yaml:"-"`
	Table string `yaml:"table"`
	Key   string `yaml:"key"`
	Props Props  `yaml:"props"`
}

// Define создает описание сущности
// props: имя свойства → PropertyType | Property | имя типа
// Свойства упорядочиваются по имени
func Define(name, table string, props map[string]any) (Definition, error) {
	def := Definition{Name: name, Table: table}

	for _, field := range query.FromMap(props) {
		var p Property
		switch v := field.Value.(type) {
		case Property:
			p = v
		case PropertyType:
			p = Property{Type: v}
		case string:
			t, err := ParsePropertyType(v)
			if err != nil {
				return Definition{}, fmt.Errorf("property %s: %w", field.Name, err)
			}
			p = Property{Type: t}
		default:
			return Definition{}, fmt.Errorf("property %s: unsupported descriptor %T", field.Name, field.Value)
		}
		def.Props = append(def.Props, Prop{Name: field.Name, Property: p})
	}

	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// Validate проверяет имя таблицы, ключ и свойства
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("entity name is required")
	}
	if !query.ValidIdentifier(d.Table) {
		return fmt.Errorf("entity %s: %w: %q", d.Name, query.ErrInvalidIdentifier, d.Table)
	}
	if d.Key == "" {
		d.Key = "id"
	}

	seen := make(map[string]bool, len(d.Props))
	for _, p := range d.Props {
		if !query.ValidIdentifier(p.Name) {
			return fmt.Errorf("entity %s: %w: %q", d.Name, query.ErrInvalidIdentifier, p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("entity %s: duplicate property %s", d.Name, p.Name)
		}
		seen[p.Name] = true

		if err := p.Validate(); err != nil {
			return fmt.Errorf("entity %s: property %s: %w", d.Name, p.Name, err)
		}
	}
	return nil
}

// Property возвращает описание свойства по имени
func (d Definition) Property(name string) (Property, bool) {
	for _, p := range d.Props {
		if p.Name == name {
			return p.Property, true
		}
	}
	return Property{}, false
}

// Columns возвращает колонки для CREATE TABLE
// Если ключ не объявлен среди свойств, добавляется целочисленный автоинкремент
func (d Definition) Columns() []query.Column {
	columns := make([]query.Column, 0, len(d.Props)+1)

	key := d.Key
	if key == "" {
		key = "id"
	}
	if _, ok := d.Property(key); !ok {
		columns = append(columns, query.Column{
			Name:          key,
			Kind:          query.KindInteger,
			PrimaryKey:    true,
			AutoIncrement: true,
		})
	}

	for _, p := range d.Props {
		col := query.Column{
			Name:       p.Name,
			Kind:       p.Type.kind(),
			Values:     p.Values,
			Length:     p.Length,
			PrimaryKey: p.Name == key,
		}
		columns = append(columns, col)
	}
	return columns
}

func (t PropertyType) kind() query.ColumnKind {
	switch t {
	case TypeDate:
		return query.KindDate
	case TypeOption:
		return query.KindOption
	case TypeInteger:
		return query.KindInteger
	default:
		return query.KindString
	}
}
