// Package logger настраивает zerolog для бота
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config - настройки логирования из файла конфигурации
type Config struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Pretty bool   `yaml:"pretty"` // читаемый вывод для консоли
	Caller bool   `yaml:"caller"`

	// Output - куда писать; по умолчанию stderr
	Output io.Writer `yaml:"-"`
}

// New создает корневой логгер
func New(cfg Config) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if s := strings.TrimSpace(cfg.Level); s != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(output).Level(level).With().Timestamp().Str("service", "dsbot")
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger(), nil
}

// Init создает логгер и делает его глобальным
func Init(cfg Config) (zerolog.Logger, error) {
	l, err := New(cfg)
	if err != nil {
		return l, err
	}
	log.Logger = l
	return l, nil
}

// Component возвращает дочерний логгер подсистемы
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
