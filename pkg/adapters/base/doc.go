// Package base содержит общую для всех адаптеров логику database/sql:
// исполнение Statement с логированием и повторами (Executor),
// чтение строк в map (ScanRows) и генерацию CREATE TABLE (CreateTableSQL).
//
// Адаптер конкретной СУБД открывает *sql.DB своим драйвером и делегирует
// запросы Executor:
//
//	type Adapter struct {
//	    *base.Executor
//	}
//
//	func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
//	    db, err := sql.Open("mysql", cfg.DSN)
//	    ...
//	    a.Executor, err = base.NewExecutor(db, base.ExecutorConfig{...})
//	}
package base
