package entity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruslano69/dsbot/pkg/audit"
	"github.com/ruslano69/dsbot/pkg/core/query"
	"github.com/ruslano69/dsbot/pkg/events"
)

// Методы, под которыми ищутся переводы параметров
const (
	MethodGet    = "get"
	MethodCreate = "create"
	MethodUpdate = "update"
)

// Executor выполняет запросы; соединение принадлежит вызывающему
type Executor interface {
	Query(ctx context.Context, stmt query.Statement, log bool) ([]map[string]any, error)
	Exec(ctx context.Context, stmt query.Statement, log bool) (query.Result, error)
	Style() query.Style
}

// Localizer - словарь сообщений и имен параметров
type Localizer interface {
	// TranslateMethodParam переводит имя параметра, введенное пользователем, в имя свойства
	TranslateMethodParam(lang, entity, method, param string) string

	// TranslateMethodParamReverse переводит имя свойства в отображаемое имя
	TranslateMethodParamReverse(lang, entity, method, prop string) string

	// FormatDate приводит дату в формате языка к виду, который принимает СУБД
	FormatDate(lang string, value any) string

	// Message возвращает сообщение с подставленными {param}
	Message(lang, namespace, key string, params map[string]string) string
}

// ServerConfig - настройки сервера чата, влияющие на перевод
type ServerConfig struct {
	Guild  string
	User   string
	Lang   string
	Prefix string
}

// Record - строка таблицы
type Record map[string]any

// Entity - доступ к записям одной таблицы
// Не хранит состояния кроме описания; безопасна для конкурентного использования
type Entity struct {
	def       Definition
	id        string
	exec      Executor
	builder   *query.Builder
	loc       Localizer
	logger    zerolog.Logger
	audit     audit.Logger
	publisher events.Publisher
}

// Option настраивает Entity
type Option func(*Entity)

// WithLocalizer задает словарь; nil оставляет имена и сообщения без перевода
func WithLocalizer(loc Localizer) Option {
	return func(e *Entity) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithLogger задает логгер
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Entity) { e.logger = logger }
}

// WithAudit включает аудит записей
func WithAudit(logger audit.Logger) Option {
	return func(e *Entity) { e.audit = logger }
}

// WithPublisher включает публикацию событий изменений
func WithPublisher(p events.Publisher) Option {
	return func(e *Entity) { e.publisher = p }
}

// New создает сущность по описанию
func New(def Definition, exec Executor, opts ...Option) (*Entity, error) {
	if exec == nil {
		return nil, fmt.Errorf("entity %s: executor is required", def.Name)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	e := &Entity{
		def:       def,
		id:        strings.ToLower(def.Name),
		exec:      exec,
		builder:   query.NewBuilder(exec.Style()),
		loc:       identity{},
		logger:    zerolog.Nop(),
		audit:     audit.NewNullLogger(),
		publisher: events.NopPublisher{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With().Str("entity", e.id).Logger()

	return e, nil
}

// Name возвращает идентификатор сущности для словаря
func (e *Entity) Name() string {
	return e.id
}

// Table возвращает имя таблицы
func (e *Entity) Table() string {
	return e.def.Table
}

// Localizer возвращает словарь сущности
func (e *Entity) Localizer() Localizer {
	return e.loc
}

// Definition возвращает описание сущности
func (e *Entity) Definition() Definition {
	return e.def
}

// GetByID возвращает запись по ключу или nil, если ее нет
func (e *Entity) GetByID(ctx context.Context, id any, log bool) (Record, error) {
	records, err := e.GetBy(ctx, query.Eq(e.def.Key, id), log)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// GetBy возвращает все записи, у которых каждое поле фильтра равно значению
// Пустой фильтр отклоняется с query.ErrEmptyFilter без обращения к БД
func (e *Entity) GetBy(ctx context.Context, filter query.Fields, log bool) ([]Record, error) {
	stmt, err := e.builder.Select(e.def.Table, filter)
	if err != nil {
		return nil, err
	}

	rows, err := e.exec.Query(ctx, stmt, log)
	if err != nil {
		return nil, &QueryError{Statement: stmt, Err: err}
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = Record(row)
	}
	return records, nil
}

// Create вставляет запись; колонки идут в порядке data
// Ошибки не классифицируются
func (e *Entity) Create(ctx context.Context, data query.Fields, cfg ServerConfig, log bool) (query.Result, error) {
	start := time.Now()
	formatted := e.FormatData(data, MethodCreate, cfg)

	stmt, err := e.builder.Insert(e.def.Table, formatted)
	if err != nil {
		return query.Result{}, err
	}

	res, err := e.exec.Exec(ctx, stmt, log)
	if err != nil {
		qerr := &QueryError{Statement: stmt, Err: err}
		e.record(ctx, audit.OpCreate, MethodCreate, cfg, formatted, res, start, qerr, Unclassified)
		return query.Result{}, qerr
	}

	e.record(ctx, audit.OpCreate, MethodCreate, cfg, formatted, res, start, nil, Unclassified)
	e.publish(ctx, events.OpCreate, formatted, nil)
	return res, nil
}

// Update изменяет записи по фильтру
// Пустые data - успех без запроса. Распознанная ошибка СУБД возвращается как *UserError
// с сообщением на языке сервера, остальные - как *QueryError
func (e *Entity) Update(ctx context.Context, data, filter query.Fields, method string, cfg ServerConfig, log bool) (query.Result, error) {
	if len(data) == 0 {
		return query.Result{}, nil
	}

	start := time.Now()
	formatted := e.FormatData(data, method, cfg)

	stmt, err := e.builder.Update(e.def.Table, formatted, filter)
	if err != nil {
		return query.Result{}, err
	}

	res, err := e.exec.Exec(ctx, stmt, log)
	if err != nil {
		qerr := &QueryError{Statement: stmt, Err: err}

		if uerr := e.treatError(qerr, method, cfg, formatted); uerr != nil {
			e.record(ctx, audit.OpUpdate, method, cfg, formatted, res, start, qerr, uerr.Class)
			return query.Result{}, uerr
		}

		e.record(ctx, audit.OpUpdate, method, cfg, formatted, res, start, qerr, Unclassified)
		return query.Result{}, qerr
	}

	e.record(ctx, audit.OpUpdate, method, cfg, formatted, res, start, nil, Unclassified)
	e.publish(ctx, events.OpUpdate, formatted, filter)
	return res, nil
}

// FormatData приводит данные к виду для записи
// Имя параметра переводится в имя свойства; неизвестные свойства остаются как есть.
// nil становится пустой строкой, даты форматируются по языку сервера
func (e *Entity) FormatData(record query.Fields, method string, cfg ServerConfig) query.Fields {
	out := make(query.Fields, 0, len(record))

	for _, field := range record {
		name := e.loc.TranslateMethodParam(cfg.Lang, e.id, method, field.Name)

		prop, ok := e.def.Property(name)
		if !ok {
			out = out.Set(field.Name, field.Value)
			continue
		}

		out = out.Set(name, e.formatValue(prop, field.Value, cfg))
	}

	return out
}

func (e *Entity) formatValue(prop Property, value any, cfg ServerConfig) any {
	if value == nil {
		return ""
	}

	switch prop.Type {
	case TypeDate:
		return e.loc.FormatDate(cfg.Lang, value)
	case TypeString, TypeOption, TypeInteger:
		return value
	default:
		return value
	}
}

// TreatError возвращает сообщение для пользователя, если ошибка распознана
func (e *Entity) TreatError(err error, method string, cfg ServerConfig) (string, bool) {
	uerr := e.treatError(err, method, cfg, nil)
	if uerr == nil {
		return "", false
	}
	return uerr.Message, true
}

// treatError классифицирует ошибку и строит сообщение
// data (если есть) используется для подсказки ближайшего допустимого значения
func (e *Entity) treatError(err error, method string, cfg ServerConfig, data query.Fields) *UserError {
	c := Classify(err)
	if c.Class == Unclassified || c.Column == "" {
		return nil
	}

	params := map[string]string{
		"field": e.loc.TranslateMethodParamReverse(cfg.Lang, e.id, method, c.Column),
	}

	var key string
	switch c.Class {
	case TruncatedEnumValue:
		prop, ok := e.def.Property(c.Column)
		if !ok || prop.Type != TypeOption {
			return nil
		}
		key = "truncatedEnumValue"
		params["values"] = strings.Join(prop.Values, ", ")

	case InvalidDate:
		key = "invalidDate"

	case TextTooLong:
		key = "textTooLong"
		if prop, ok := e.def.Property(c.Column); ok && prop.Length > 0 {
			params["length"] = fmt.Sprint(prop.Length)
		}

	case InvalidInteger:
		key = "invalidInteger"

	default:
		return nil
	}

	msg := e.loc.Message(cfg.Lang, "errors", key, params)

	if c.Class == TruncatedEnumValue {
		if submitted, ok := data.Get(c.Column); ok {
			prop, _ := e.def.Property(c.Column)
			if suggestion, ok := Suggest(submitted, prop.Values); ok {
				msg += " " + e.loc.Message(cfg.Lang, "errors", "didYouMean", map[string]string{"value": suggestion})
			}
		}
	}

	e.logger.Debug().
		Str("class", c.Class.String()).
		Uint16("code", c.Code).
		Str("column", c.Column).
		Msg("database error classified")

	return &UserError{Message: msg, Class: c.Class, Column: c.Column, Err: err}
}

func (e *Entity) record(ctx context.Context, op audit.Operation, method string, cfg ServerConfig,
	data query.Fields, res query.Result, start time.Time, err error, class ErrorClass) {

	entry := audit.NewEntry(op, audit.StatusSuccess).
		WithUser(cfg.User).
		WithGuild(cfg.Guild).
		WithEntity(e.id, e.def.Table).
		WithRecordsAffected(res.RowsAffected).
		WithDuration(time.Since(start)).
		WithMetadata("method", method).
		WithData(data.Map()).
		WithError(err)
	if class != Unclassified {
		entry.WithErrorClass(class.String())
	}
	if cfg.Lang != "" {
		entry.WithMetadata("lang", cfg.Lang)
	}

	if aerr := e.audit.Log(ctx, entry); aerr != nil {
		e.logger.Warn().Err(aerr).Msg("audit write failed")
	}
}

// publish - ошибка публикации не отменяет уже выполненную запись
func (e *Entity) publish(ctx context.Context, op events.Operation, data, filter query.Fields) {
	var filterMap map[string]any
	if len(filter) > 0 {
		filterMap = filter.Map()
	}

	change := events.NewChange(e.id, e.def.Table, op, data.Map(), filterMap)
	if err := e.publisher.Publish(ctx, change); err != nil {
		e.logger.Warn().Err(err).Str("operation", string(op)).Msg("change event not published")
	}
}

// identity - словарь по умолчанию: имена не переводятся, сообщения - ключи
type identity struct{}

func (identity) TranslateMethodParam(lang, entity, method, param string) string { return param }

func (identity) TranslateMethodParamReverse(lang, entity, method, prop string) string { return prop }

func (identity) FormatDate(lang string, value any) string {
	if t, ok := value.(time.Time); ok {
		return t.Format("2006-01-02")
	}
	return fmt.Sprint(value)
}

func (identity) Message(lang, namespace, key string, params map[string]string) string {
	parts := make([]string, 0, len(params))
	for _, f := range query.FromMap(toAny(params)) {
		parts = append(parts, fmt.Sprintf("%s=%v", f.Name, f.Value))
	}
	return fmt.Sprintf("%s.%s(%s)", namespace, key, strings.Join(parts, ", "))
}

func toAny(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
