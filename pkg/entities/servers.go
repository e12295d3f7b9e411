package entities

import (
	"context"

	"github.com/ruslano69/dsbot/pkg/core/query"
	"github.com/ruslano69/dsbot/pkg/entity"
)

// ServerDefaults - настройки для серверов без записи в таблице
type ServerDefaults struct {
	Lang   string
	Prefix string
}

// Servers - настройки серверов чата
type Servers struct {
	*entity.Entity
	defaults ServerDefaults
}

// Config возвращает настройки сервера; пустые значения берутся из умолчаний
func (s *Servers) Config(ctx context.Context, guildID string) (entity.ServerConfig, error) {
	cfg := entity.ServerConfig{
		Guild:  guildID,
		Lang:   s.defaults.Lang,
		Prefix: s.defaults.Prefix,
	}

	rec, err := s.GetByID(ctx, guildID, false)
	if err != nil {
		return cfg, err
	}
	if rec == nil {
		return cfg, nil
	}

	if lang := rec.String("lang"); lang != "" {
		cfg.Lang = lang
	}
	if prefix := rec.String("prefix"); prefix != "" {
		cfg.Prefix = prefix
	}
	return cfg, nil
}

// Save записывает настройки сервера, создавая запись при первом сохранении
func (s *Servers) Save(ctx context.Context, guildID string, data query.Fields, cfg entity.ServerConfig) (query.Result, error) {
	rec, err := s.GetByID(ctx, guildID, false)
	if err != nil {
		return query.Result{}, err
	}
	if rec == nil {
		if _, err := s.Create(ctx, query.Eq("id", guildID), cfg, false); err != nil {
			return query.Result{}, err
		}
	}
	return s.Update(ctx, data, query.Eq("id", guildID), entity.MethodUpdate, cfg, false)
}
