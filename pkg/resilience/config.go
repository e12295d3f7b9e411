package resilience

import (
	"fmt"
	"time"
)

// Config - конфигурация Circuit Breaker
type Config struct {
	// Enabled - включить Circuit Breaker
	Enabled bool `yaml:"enabled"`

	// Name - имя для логирования
	Name string `yaml:"-"`

	// MaxFailures - последовательных ошибок для открытия
	MaxFailures uint32 `yaml:"max_failures"`

	// Timeout - время в Open перед пробным вызовом
	Timeout time.Duration `yaml:"timeout"`

	// SuccessThreshold - успешных пробных вызовов для закрытия
	SuccessThreshold uint32 `yaml:"success_threshold"`

	// OnStateChange - вызывается при смене состояния (без удержания lock)
	OnStateChange func(name string, from, to State) `yaml:"-"`
}

// Validate - валидация и значения по умолчанию
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MaxFailures == 0 {
		return fmt.Errorf("max_failures must be greater than 0")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be greater than 0")
	}
	if c.SuccessThreshold == 0 {
		c.SuccessThreshold = 1
	}
	if c.Name == "" {
		c.Name = "circuit-breaker"
	}
	return nil
}

// DefaultConfig - 5 ошибок подряд открывают breaker на 30 секунд
func DefaultConfig(name string) Config {
	return Config{
		Enabled:          true,
		Name:             name,
		MaxFailures:      5,
		Timeout:          30 * time.Second,
		SuccessThreshold: 1,
	}
}
