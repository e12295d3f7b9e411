// Package dictionary - словари сообщений и имен параметров по языкам.
//
// Каждый язык - YAML файл:
//
//	date_layout: "02/01/2006"
//	params:
//	  experience:
//	    update:
//	      horas: hours      # что вводит пользователь → имя свойства
//	messages:
//	  errors:
//	    textTooLong: "{field} é longo demais."
package dictionary

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed langs/*.yaml
var builtin embed.FS

// engineDateLayout - формат даты, который принимают все поддерживаемые СУБД
const engineDateLayout = "2006-01-02"

// Language - словарь одного языка
type Language struct {
	DateLayout string                                  `yaml:"date_layout"`
	Params     map[string]map[string]map[string]string `yaml:"params"`
	Messages   map[string]map[string]string            `yaml:"messages"`
}

// Dictionary - набор языков с языком по умолчанию
type Dictionary struct {
	defaultLang string
	langs       map[string]*Language
}

// New создает словарь из готовых языков
func New(defaultLang string, langs map[string]*Language) (*Dictionary, error) {
	if _, ok := langs[defaultLang]; !ok {
		return nil, fmt.Errorf("default language %q is not loaded", defaultLang)
	}
	return &Dictionary{defaultLang: defaultLang, langs: langs}, nil
}

// Load читает все *.yaml из fsys; имя файла без расширения - код языка
func Load(fsys fs.FS, dir, defaultLang string) (*Dictionary, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}

	langs := make(map[string]*Language, len(files))
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		var lang Language
		if err := yaml.Unmarshal(data, &lang); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		if lang.DateLayout == "" {
			lang.DateLayout = engineDateLayout
		}

		langs[strings.TrimSuffix(path.Base(file), ".yaml")] = &lang
	}

	return New(defaultLang, langs)
}

// Default возвращает встроенный словарь (ptbr, en)
func Default(defaultLang string) (*Dictionary, error) {
	return Load(builtin, "langs", defaultLang)
}

// Langs возвращает коды загруженных языков
func (d *Dictionary) Langs() []string {
	codes := make([]string, 0, len(d.langs))
	for code := range d.langs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Has сообщает, загружен ли язык
func (d *Dictionary) Has(lang string) bool {
	_, ok := d.langs[lang]
	return ok
}

// DefaultLang возвращает язык по умолчанию
func (d *Dictionary) DefaultLang() string {
	return d.defaultLang
}

func (d *Dictionary) lang(code string) *Language {
	if l, ok := d.langs[code]; ok {
		return l
	}
	return d.langs[d.defaultLang]
}

// TranslateMethodParam переводит введенное имя параметра в имя свойства
// Регистр и пробелы по краям не важны; без перевода возвращается исходное имя
func (d *Dictionary) TranslateMethodParam(lang, entity, method, param string) string {
	key := strings.ToLower(strings.TrimSpace(param))
	if name, ok := d.lang(lang).Params[entity][method][key]; ok {
		return name
	}
	return param
}

// TranslateMethodParamReverse возвращает отображаемое имя свойства
// При нескольких синонимах выбирается первый по алфавиту
func (d *Dictionary) TranslateMethodParamReverse(lang, entity, method, prop string) string {
	best := ""
	for display, name := range d.lang(lang).Params[entity][method] {
		if name == prop && (best == "" || display < best) {
			best = display
		}
	}
	if best == "" {
		return prop
	}
	return best
}

// FormatDate приводит дату к виду 2006-01-02
// Строка сначала читается в формате языка, затем как ISO дата;
// нераспознанное значение возвращается как есть, и его отклонит СУБД
func (d *Dictionary) FormatDate(lang string, value any) string {
	switch v := value.(type) {
	case time.Time:
		return v.Format(engineDateLayout)
	case *time.Time:
		if v != nil {
			return v.Format(engineDateLayout)
		}
		return ""
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range []string{d.lang(lang).DateLayout, engineDateLayout} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(engineDateLayout)
			}
		}
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Message возвращает сообщение с подставленными параметрами {name}
// Ищет в языке сервера, затем в языке по умолчанию; иначе возвращает "namespace.key"
func (d *Dictionary) Message(lang, namespace, key string, params map[string]string) string {
	msg, ok := d.lang(lang).Messages[namespace][key]
	if !ok {
		msg, ok = d.langs[d.defaultLang].Messages[namespace][key]
	}
	if !ok {
		return namespace + "." + key
	}

	if len(params) == 0 {
		return msg
	}

	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}
