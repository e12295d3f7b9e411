package entities

import (
	"context"
	"fmt"

	"github.com/ruslano69/dsbot/pkg/core/query"
	"github.com/ruslano69/dsbot/pkg/entity"
)

// ErrUnknownVersion - код версии игры не из таблицы версий
var ErrUnknownVersion = fmt.Errorf("unknown game version")

// Experience - опыт пользователя в одной версии игры
type Experience struct {
	*entity.Entity
}

func experienceFilter(user, version string) query.Fields {
	return query.Fields{{Name: "user_id", Value: user}, {Name: "version", Value: version}}
}

// Find возвращает опыт пользователя в версии или nil
func (x *Experience) Find(ctx context.Context, user, version string) (entity.Record, error) {
	records, err := x.GetBy(ctx, experienceFilter(user, version), false)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// UpdateProp изменяет одно свойство опыта
// Запись для пары пользователь/версия создается при первом изменении
func (x *Experience) UpdateProp(ctx context.Context, prop string, value any, user, version string, cfg entity.ServerConfig) (query.Result, error) {
	if _, ok := VersionName(version); !ok {
		return query.Result{}, fmt.Errorf("%w: %q", ErrUnknownVersion, version)
	}

	existing, err := x.Find(ctx, user, version)
	if err != nil {
		return query.Result{}, err
	}
	if existing == nil {
		if _, err := x.Create(ctx, experienceFilter(user, version), cfg, false); err != nil {
			return query.Result{}, err
		}
	}

	return x.Update(ctx, query.Eq(prop, value), experienceFilter(user, version), entity.MethodUpdate, cfg, false)
}

// Summary - строки описания опыта на языке сервера; пустые свойства пропускаются
func (x *Experience) Summary(rec entity.Record, cfg entity.ServerConfig) []string {
	loc := x.Localizer()
	msg := func(key string, params map[string]string) string {
		return loc.Message(cfg.Lang, "experience", key, params)
	}

	var lines []string

	if have, ok := rec.Int("have"); ok {
		answer := "no"
		if have == 1 {
			answer = "yes"
		}
		lines = append(lines, msg("have", nil)+": "+loc.Message(cfg.Lang, "general", answer, nil))
	}
	if platform := rec.String("platform"); platform != "" {
		lines = append(lines, msg("platform", nil)+": "+platform)
	}
	if hours, ok := rec.Int("hours"); ok && hours > 0 {
		lines = append(lines, fmt.Sprintf("%s: %d", msg("hours", nil), hours))
	}
	if main := rec.String("main"); main != "" {
		lines = append(lines, msg("main", nil)+": "+main)
	}
	if survived, ok := rec.Int("survived"); ok && survived > 0 {
		lines = append(lines, fmt.Sprintf("%s: %d %s", msg("survived", nil), survived, msg("days", nil)))
	}
	if level := rec.String("level"); level != "" {
		lines = append(lines, fmt.Sprintf("%s: %s - %s", msg("level", nil), msg(level+"Name", nil), msg(level+"Resume", nil)))
	}

	if len(lines) == 0 {
		return []string{msg("noInformation", nil)}
	}
	return lines
}
