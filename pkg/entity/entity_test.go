package entity

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/ruslano69/dsbot/pkg/audit"
	"github.com/ruslano69/dsbot/pkg/core/query"
	"github.com/ruslano69/dsbot/pkg/events"
)

// fakeExecutor записывает выполненные запросы
type fakeExecutor struct {
	style    query.Style
	rows     []map[string]any
	result   query.Result
	err      error
	executed []query.Statement
}

func (f *fakeExecutor) Query(ctx context.Context, stmt query.Statement, log bool) ([]map[string]any, error) {
	f.executed = append(f.executed, stmt)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeExecutor) Exec(ctx context.Context, stmt query.Statement, log bool) (query.Result, error) {
	f.executed = append(f.executed, stmt)
	if f.err != nil {
		return query.Result{}, f.err
	}
	return f.result, nil
}

func (f *fakeExecutor) Style() query.Style {
	return f.style
}

// fakeLocalizer переводит португальские имена параметров
type fakeLocalizer struct{}

var ptbrParams = map[string]string{
	"horas":      "hours",
	"nivel":      "level",
	"nascimento": "born",
}

var messages = map[string]string{
	"truncatedEnumValue": "O valor de {field} deve ser um de: {values}.",
	"invalidDate":        "{field} não é uma data válida.",
	"textTooLong":        "{field} é longo demais.",
	"invalidInteger":     "{field} deve ser um número inteiro.",
	"didYouMean":         "Você quis dizer {value}?",
}

func (fakeLocalizer) TranslateMethodParam(lang, entity, method, param string) string {
	if lang == "ptbr" {
		if name, ok := ptbrParams[param]; ok {
			return name
		}
	}
	return param
}

func (fakeLocalizer) TranslateMethodParamReverse(lang, entity, method, prop string) string {
	if lang == "ptbr" {
		for display, name := range ptbrParams {
			if name == prop {
				return display
			}
		}
	}
	return prop
}

func (fakeLocalizer) FormatDate(lang string, value any) string {
	s := fmt.Sprint(value)
	if t, err := time.Parse("02/01/2006", s); err == nil {
		return t.Format("2006-01-02")
	}
	return s
}

func (fakeLocalizer) Message(lang, namespace, key string, params map[string]string) string {
	msg := messages[key]
	for k, v := range params {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

func testDefinition(t *testing.T) Definition {
	t.Helper()
	def, err := Define("Experience", "experiences", map[string]any{
		"user_id": TypeString,
		"hours":   "integer",
		"born":    Of(TypeDate),
		"main":    Property{Type: TypeString, Length: 32},
		"level":   OptionOf("a", "b"),
	})
	if err != nil {
		t.Fatalf("Define failed: %v", err)
	}
	return def
}

func newTestEntity(t *testing.T, exec *fakeExecutor, opts ...Option) *Entity {
	t.Helper()
	opts = append([]Option{WithLocalizer(fakeLocalizer{})}, opts...)
	e, err := New(testDefinition(t), exec, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

var ptbr = ServerConfig{Lang: "ptbr", Guild: "g1", User: "u1"}

func TestEntity_NameIsLowercased(t *testing.T) {
	e := newTestEntity(t, &fakeExecutor{})
	if e.Name() != "experience" {
		t.Errorf("Expected experience, got %s", e.Name())
	}
}

func TestFormatData_IsPure(t *testing.T) {
	e := newTestEntity(t, &fakeExecutor{})

	input := query.Fields{{Name: "horas", Value: 10}, {Name: "nascimento", Value: "25/12/2019"}, {Name: "nivel", Value: nil}}
	snapshot := append(query.Fields(nil), input...)

	first := e.FormatData(input, MethodUpdate, ptbr)
	second := e.FormatData(input, MethodUpdate, ptbr)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("FormatData is not deterministic: %v vs %v", first, second)
	}
	if !reflect.DeepEqual(input, snapshot) {
		t.Errorf("FormatData modified its input: %v", input)
	}

	expected := query.Fields{{Name: "hours", Value: 10}, {Name: "born", Value: "2019-12-25"}, {Name: "level", Value: ""}}
	if !reflect.DeepEqual(first, expected) {
		t.Errorf("Expected %v, got %v", expected, first)
	}
}

func TestFormatData_UnknownPropertyPassesThrough(t *testing.T) {
	e := newTestEntity(t, &fakeExecutor{})

	got := e.FormatData(query.Fields{{Name: "favorite_mob", Value: nil}, {Name: "Horas", Value: "x"}}, MethodUpdate, ptbr)
	expected := query.Fields{{Name: "favorite_mob", Value: nil}, {Name: "Horas", Value: "x"}}

	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Unknown properties must be unchanged, got %v", got)
	}
}

func TestFormatData_NilBecomesEmptyString(t *testing.T) {
	e := newTestEntity(t, &fakeExecutor{})

	for _, prop := range []string{"user_id", "hours", "born", "main", "level"} {
		got := e.FormatData(query.Eq(prop, nil), MethodUpdate, ServerConfig{Lang: "en"})
		if v, _ := got.Get(prop); v != "" {
			t.Errorf("%s: expected empty string, got %#v", prop, v)
		}
	}
}

func TestCreate_RendersInsertInInputOrder(t *testing.T) {
	exec := &fakeExecutor{result: query.Result{RowsAffected: 1, LastInsertID: 5}}
	def, err := Define("Player", "players", map[string]any{"name": "string", "hours": "integer"})
	if err != nil {
		t.Fatalf("Define failed: %v", err)
	}
	e, err := New(def, exec)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res, err := e.Create(context.Background(), query.Fields{{Name: "name", Value: "Alice"}, {Name: "hours", Value: 12}}, ServerConfig{}, false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if res.LastInsertID != 5 {
		t.Errorf("Expected last insert id 5, got %d", res.LastInsertID)
	}

	if len(exec.executed) != 1 {
		t.Fatalf("Expected 1 statement, got %d", len(exec.executed))
	}
	expected := `INSERT INTO players (name, hours) VALUES ("Alice", 12)`
	if got := exec.executed[0].String(); got != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, got)
	}
}

func TestCreate_FailureIsQueryError(t *testing.T) {
	driverErr := &mysql.MySQLError{Number: 1406, Message: "Data too long for column 'main' at row 1"}
	exec := &fakeExecutor{err: driverErr}
	e := newTestEntity(t, exec)

	_, err := e.Create(context.Background(), query.Fields{{Name: "main", Value: "Wilson"}}, ptbr, false)

	var qerr *QueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("Expected *QueryError, got %T: %v", err, err)
	}
	var uerr *UserError
	if errors.As(err, &uerr) {
		t.Error("Create must not classify errors")
	}
	if !errors.Is(err, driverErr) {
		t.Error("QueryError must wrap the driver error")
	}
}

func TestUpdate_EmptyDataIssuesNoQuery(t *testing.T) {
	exec := &fakeExecutor{}
	e := newTestEntity(t, exec)

	res, err := e.Update(context.Background(), query.Fields{}, query.Eq("user_id", "42"), MethodUpdate, ptbr, false)
	if err != nil {
		t.Fatalf("Empty update should succeed, got %v", err)
	}
	if res != (query.Result{}) {
		t.Errorf("Expected zero result, got %+v", res)
	}
	if len(exec.executed) != 0 {
		t.Errorf("Expected no queries, got %d", len(exec.executed))
	}
}

func TestUpdate_TranslatesAndFormats(t *testing.T) {
	exec := &fakeExecutor{style: query.StyleDollar, result: query.Result{RowsAffected: 1}}
	e := newTestEntity(t, exec)

	_, err := e.Update(context.Background(),
		query.Fields{{Name: "horas", Value: 10}, {Name: "nascimento", Value: "01/02/2020"}},
		query.Fields{{Name: "user_id", Value: "42"}, {Name: "version", Value: "ds"}},
		MethodUpdate, ptbr, true)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	expected := `UPDATE experiences SET hours = 10, born = "2020-02-01" WHERE user_id = "42" AND version = "ds"`
	if got := exec.executed[0].String(); got != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, got)
	}
}

func TestUpdate_EmptyFilterRejected(t *testing.T) {
	exec := &fakeExecutor{}
	e := newTestEntity(t, exec)

	_, err := e.Update(context.Background(), query.Eq("hours", 1), nil, MethodUpdate, ptbr, false)
	if !errors.Is(err, query.ErrEmptyFilter) {
		t.Errorf("Expected ErrEmptyFilter, got %v", err)
	}
	if len(exec.executed) != 0 {
		t.Error("No query should be issued for an empty filter")
	}
}

func TestTreatError_TruncatedEnumListsAllowedValues(t *testing.T) {
	e := newTestEntity(t, &fakeExecutor{})

	err := &mysql.MySQLError{Number: 1265, Message: "Data truncated for column 'level' at row 1"}
	msg, ok := e.TreatError(err, MethodUpdate, ptbr)
	if !ok {
		t.Fatal("Expected a message for WARN_DATA_TRUNCATED")
	}

	expected := "O valor de nivel deve ser um de: a, b."
	if msg != expected {
		t.Errorf("Expected %q, got %q", expected, msg)
	}
}

func TestTreatError_InvalidDateRegardlessOfCode(t *testing.T) {
	e := newTestEntity(t, &fakeExecutor{})

	for _, code := range []uint16{1292, 1366, 0} {
		err := &mysql.MySQLError{Number: code, Message: "Incorrect date value: '31/02/2020' for column 'born' at row 1"}
		if c := Classify(err); c.Class != InvalidDate {
			t.Errorf("code %d: expected InvalidDate, got %s", code, c.Class)
		}

		msg, ok := e.TreatError(err, MethodUpdate, ptbr)
		if !ok || msg != "nascimento não é uma data válida." {
			t.Errorf("code %d: unexpected message %q (%v)", code, msg, ok)
		}
	}
}

func TestTreatError_OtherClasses(t *testing.T) {
	e := newTestEntity(t, &fakeExecutor{})

	tests := []struct {
		err      error
		expected string
	}{
		{&mysql.MySQLError{Number: 1406, Message: "Data too long for column 'main' at row 1"}, "main é longo demais."},
		{&mysql.MySQLError{Number: 1366, Message: "Incorrect integer value: 'dez' for column 'hours' at row 1"}, "horas deve ser um número inteiro."},
	}

	for _, tt := range tests {
		msg, ok := e.TreatError(tt.err, MethodUpdate, ptbr)
		if !ok || msg != tt.expected {
			t.Errorf("Expected %q, got %q (%v)", tt.expected, msg, ok)
		}
	}
}

func TestTreatError_UnrecognizedReturnsNothing(t *testing.T) {
	e := newTestEntity(t, &fakeExecutor{})

	errs := []error{
		&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '42' for key 'PRIMARY'"},
		errors.New("connection refused"),
		// 1265 для колонки, которая не является перечислением
		&mysql.MySQLError{Number: 1265, Message: "Data truncated for column 'hours' at row 1"},
	}
	for _, err := range errs {
		if msg, ok := e.TreatError(err, MethodUpdate, ptbr); ok {
			t.Errorf("Expected no message for %v, got %q", err, msg)
		}
	}
}

func TestUpdate_UnclassifiedRejectsWithOriginalError(t *testing.T) {
	original := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '42' for key 'PRIMARY'"}
	exec := &fakeExecutor{err: original}
	e := newTestEntity(t, exec)

	_, err := e.Update(context.Background(), query.Eq("hours", 1), query.Eq("user_id", "42"), MethodUpdate, ptbr, false)
	if err == nil {
		t.Fatal("Update must reject on failure")
	}

	var qerr *QueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("Expected *QueryError, got %T", err)
	}
	if qerr.Err != original {
		t.Errorf("Expected the original driver error, got %v", qerr.Err)
	}
}

func TestUpdate_ClassifiedRejectsWithUserError(t *testing.T) {
	driverErr := &mysql.MySQLError{Number: 1265, Message: "Data truncated for column 'level' at row 1"}
	exec := &fakeExecutor{err: driverErr}
	e := newTestEntity(t, exec)

	_, err := e.Update(context.Background(), query.Eq("nivel", "c"), query.Eq("user_id", "42"), MethodUpdate, ptbr, false)

	var uerr *UserError
	if !errors.As(err, &uerr) {
		t.Fatalf("Expected *UserError, got %T: %v", err, err)
	}
	if uerr.Class != TruncatedEnumValue || uerr.Column != "level" {
		t.Errorf("Unexpected classification: %s %s", uerr.Class, uerr.Column)
	}
	if !errors.Is(err, driverErr) {
		t.Error("UserError must wrap the driver error")
	}
}

func TestUpdate_SuggestsClosestOption(t *testing.T) {
	def, err := Define("Experience", "experiences", map[string]any{
		"level": OptionOf("beginner", "intermediate", "advanced", "veteran"),
	})
	if err != nil {
		t.Fatalf("Define failed: %v", err)
	}
	exec := &fakeExecutor{err: &mysql.MySQLError{Number: 1265, Message: "Data truncated for column 'level' at row 1"}}
	e, _ := New(def, exec, WithLocalizer(fakeLocalizer{}))

	_, err = e.Update(context.Background(), query.Eq("nivel", "Veteren"), query.Eq("user_id", "42"), MethodUpdate, ptbr, false)
	if err == nil || !strings.HasSuffix(err.Error(), "Você quis dizer veteran?") {
		t.Errorf("Expected suggestion, got %v", err)
	}

	_, err = e.Update(context.Background(), query.Eq("nivel", "zzz"), query.Eq("user_id", "42"), MethodUpdate, ptbr, false)
	if err == nil || strings.Contains(err.Error(), "quis dizer") {
		t.Errorf("Distant values must not get a suggestion, got %v", err)
	}
}

func TestGetBy_EmptyFilterIssuesNoQuery(t *testing.T) {
	exec := &fakeExecutor{}
	e := newTestEntity(t, exec)

	if _, err := e.GetBy(context.Background(), query.Fields{}, false); !errors.Is(err, query.ErrEmptyFilter) {
		t.Errorf("Expected ErrEmptyFilter, got %v", err)
	}
	if len(exec.executed) != 0 {
		t.Errorf("Expected no queries, got %d", len(exec.executed))
	}
}

func TestGetByID(t *testing.T) {
	exec := &fakeExecutor{rows: []map[string]any{{"id": int64(7), "hours": int64(3)}, {"id": int64(7)}}}
	e := newTestEntity(t, exec)

	rec, err := e.GetByID(context.Background(), 7, false)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if n, _ := rec.Int("hours"); n != 3 {
		t.Errorf("Expected first row, got %v", rec)
	}
	if exec.executed[0].SQL != "SELECT * FROM experiences WHERE id = ?" {
		t.Errorf("Unexpected SQL: %s", exec.executed[0].SQL)
	}

	exec.rows = nil
	rec, err = e.GetByID(context.Background(), 8, false)
	if err != nil || rec != nil {
		t.Errorf("Expected nil record without error, got %v, %v", rec, err)
	}
}

func TestGetBy_FailureIsQueryError(t *testing.T) {
	driverErr := errors.New("invalid connection")
	e := newTestEntity(t, &fakeExecutor{err: driverErr})

	_, err := e.GetBy(context.Background(), query.Eq("user_id", "42"), false)

	var qerr *QueryError
	if !errors.As(err, &qerr) || qerr.Err != driverErr {
		t.Errorf("Expected QueryError wrapping the driver error, got %v", err)
	}
	if qerr != nil && qerr.Statement.SQL != "SELECT * FROM experiences WHERE user_id = ?" {
		t.Errorf("QueryError should carry the statement, got %s", qerr.Statement.SQL)
	}
}

type memoryAudit struct {
	mu      sync.Mutex
	entries []*audit.Entry
}

func (m *memoryAudit) Log(ctx context.Context, entry *audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}
func (m *memoryAudit) Flush() error { return nil }
func (m *memoryAudit) Close() error { return nil }

type memoryPublisher struct {
	changes []events.Change
	err     error
}

func (m *memoryPublisher) Publish(ctx context.Context, change events.Change) error {
	if m.err != nil {
		return m.err
	}
	m.changes = append(m.changes, change)
	return nil
}
func (m *memoryPublisher) Close() error { return nil }

func TestWrites_AreAuditedAndPublished(t *testing.T) {
	exec := &fakeExecutor{result: query.Result{RowsAffected: 1}}
	trail := &memoryAudit{}
	pub := &memoryPublisher{}
	e := newTestEntity(t, exec, WithAudit(trail), WithPublisher(pub))

	ctx := context.Background()
	if _, err := e.Create(ctx, query.Fields{{Name: "user_id", Value: "42"}, {Name: "hours", Value: 1}}, ptbr, false); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := e.Update(ctx, query.Eq("horas", 2), query.Eq("user_id", "42"), MethodUpdate, ptbr, false); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	exec.err = &mysql.MySQLError{Number: 1366, Message: "Incorrect integer value: 'x' for column 'hours' at row 1"}
	_, _ = e.Update(ctx, query.Eq("horas", "x"), query.Eq("user_id", "42"), MethodUpdate, ptbr, false)

	if len(trail.entries) != 3 {
		t.Fatalf("Expected 3 audit entries, got %d", len(trail.entries))
	}
	if trail.entries[0].Operation != audit.OpCreate || trail.entries[0].User != "u1" || trail.entries[0].Guild != "g1" {
		t.Errorf("Unexpected create entry: %+v", trail.entries[0])
	}
	failed := trail.entries[2]
	if failed.Status != audit.StatusFailure || failed.ErrorClass != "InvalidInteger" {
		t.Errorf("Unexpected failure entry: %+v", failed)
	}

	// Неудачная запись не публикуется
	if len(pub.changes) != 2 {
		t.Fatalf("Expected 2 change events, got %d", len(pub.changes))
	}
	if pub.changes[1].Operation != events.OpUpdate || pub.changes[1].Data["hours"] != 2 {
		t.Errorf("Unexpected update event: %+v", pub.changes[1])
	}
	if pub.changes[1].Filter["user_id"] != "42" {
		t.Errorf("Update event should carry the filter: %+v", pub.changes[1].Filter)
	}
}

func TestWrites_PublishFailureDoesNotFailWrite(t *testing.T) {
	exec := &fakeExecutor{result: query.Result{RowsAffected: 1}}
	e := newTestEntity(t, exec, WithPublisher(&memoryPublisher{err: errors.New("redis down")}))

	if _, err := e.Create(context.Background(), query.Eq("user_id", "42"), ptbr, false); err != nil {
		t.Errorf("Publish failure must not fail the write: %v", err)
	}
}

func TestNew_RequiresExecutor(t *testing.T) {
	if _, err := New(testDefinition(t), nil); err == nil {
		t.Error("Expected error without executor")
	}
}
