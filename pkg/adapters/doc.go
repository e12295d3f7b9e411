/*
Package adapters предоставляет исполнителей SQL для поддерживаемых СУБД.

Каждый адаптер (mysql, postgres, sqlite, mssql) регистрируется в глобальной
фабрике в init() и создается через New:

	adapter, err := adapters.New(ctx, adapters.Config{
	    Type: "mysql",
	    DSN:  "root:secret@tcp(localhost:3306)/dontstarvebot",
	})
	if err != nil {
	    log.Fatal(err)
	}
	defer adapter.Close(ctx)

Адаптер только передает запросы драйверу: текст SQL строит pkg/core/query,
ошибки драйвера возвращаются без обертки, их классифицирует pkg/entity.
Общая логика database/sql живет в pkg/adapters/base.
*/
package adapters
