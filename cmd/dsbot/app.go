package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ruslano69/dsbot/pkg/adapters"
	_ "github.com/ruslano69/dsbot/pkg/adapters/mssql"
	_ "github.com/ruslano69/dsbot/pkg/adapters/mysql"
	_ "github.com/ruslano69/dsbot/pkg/adapters/postgres"
	_ "github.com/ruslano69/dsbot/pkg/adapters/sqlite"
	"github.com/ruslano69/dsbot/pkg/audit"
	"github.com/ruslano69/dsbot/pkg/dictionary"
	"github.com/ruslano69/dsbot/pkg/entities"
	"github.com/ruslano69/dsbot/pkg/entity"
	"github.com/ruslano69/dsbot/pkg/events"
	"github.com/ruslano69/dsbot/pkg/logger"
)

// app - подключенные зависимости одного запуска
type app struct {
	cfg      *Config
	log      zerolog.Logger
	db       adapters.Adapter
	dict     *dictionary.Dictionary
	audit    audit.Logger
	auditDB  *audit.DatabaseAppender
	events   events.Publisher
	entities *entities.Set
}

func newApp(ctx context.Context, cfg *Config, log zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log, audit: audit.NewNullLogger(), events: events.NopPublisher{}}

	adapterCfg, err := cfg.AdapterConfig()
	if err != nil {
		return nil, err
	}
	adapterCfg.Logger = log

	a.db, err = adapters.New(ctx, adapterCfg)
	if err != nil {
		return nil, err
	}

	if cfg.Bot.LangsDir != "" {
		a.dict, err = dictionary.Load(os.DirFS(cfg.Bot.LangsDir), ".", cfg.Bot.DefaultLang)
	} else {
		a.dict, err = dictionary.Default(cfg.Bot.DefaultLang)
	}
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to load dictionary: %w", err)
	}

	if cfg.Audit.Enabled {
		if err := a.setupAudit(ctx); err != nil {
			a.Close(ctx)
			return nil, err
		}
	}

	a.events, err = events.New(ctx, cfg.Events)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to set up events: %w", err)
	}

	a.entities, err = entities.New(a.db, a.dict,
		entities.ServerDefaults{Lang: cfg.Bot.DefaultLang, Prefix: cfg.Bot.Prefix},
		entity.WithLogger(logger.Component(log, "entity")),
		entity.WithAudit(a.audit),
		entity.WithPublisher(a.events),
	)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	return a, nil
}

func (a *app) setupAudit(ctx context.Context) error {
	level, err := audit.ParseLevel(a.cfg.Audit.Level)
	if err != nil {
		return err
	}

	var appenders []audit.Appender
	if a.cfg.Audit.File != "" {
		fa, err := audit.NewFileAppender(audit.FileAppenderConfig{
			FilePath:   a.cfg.Audit.File,
			MaxSize:    int64(a.cfg.Audit.MaxSize) << 20,
			Level:      level,
			FormatJSON: true,
		})
		if err != nil {
			return fmt.Errorf("failed to open audit file: %w", err)
		}
		appenders = append(appenders, fa)
	}
	if a.cfg.Audit.Database {
		da, err := audit.NewDatabaseAppender(ctx, audit.DatabaseAppenderConfig{
			Store:           a.db,
			Level:           level,
			AutoCreateTable: true,
		})
		if err != nil {
			for _, ap := range appenders {
				ap.Close()
			}
			return err
		}
		a.auditDB = da
		appenders = append(appenders, da)
	}
	if a.cfg.Audit.Log {
		appenders = append(appenders, audit.NewZerologAppender(a.log, level))
	}

	a.audit = audit.NewLogger(audit.LoggerConfig{
		AsyncMode: true,
		OnError: func(err error) {
			a.log.Warn().Err(err).Str("component", "audit").Msg("audit write failed")
		},
	}, appenders...)
	return nil
}

// serverConfig собирает настройки вызова: сервер из БД, затем явные флаги
func (a *app) serverConfig(ctx context.Context, guild, user, lang string) (entity.ServerConfig, error) {
	cfg := entity.ServerConfig{
		Guild:  guild,
		User:   user,
		Lang:   a.cfg.Bot.DefaultLang,
		Prefix: a.cfg.Bot.Prefix,
	}
	if guild != "" {
		var err error
		if cfg, err = a.entities.Servers.Config(ctx, guild); err != nil {
			return cfg, err
		}
		cfg.User = user
	}
	if lang != "" {
		if !a.dict.Has(lang) {
			return cfg, fmt.Errorf("unknown language %q (available: %s)", lang, strings.Join(a.dict.Langs(), ", "))
		}
		cfg.Lang = lang
	}
	return cfg, nil
}

// Close сбрасывает аудит и закрывает подключения
func (a *app) Close(ctx context.Context) {
	if err := a.audit.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close audit")
	}
	if err := a.events.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close events publisher")
	}
	if a.db != nil {
		if err := a.db.Close(ctx); err != nil {
			a.log.Warn().Err(err).Msg("failed to close database")
		}
	}
}
