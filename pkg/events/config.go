package events

import (
	"context"
	"fmt"

	"github.com/ruslano69/dsbot/pkg/brokers"
	"github.com/ruslano69/dsbot/pkg/resilience"
)

// Config - выбор транспорта событий
type Config struct {
	// Type: "" или "none" (отключено), "redis", "rabbitmq", "kafka"
	Type   string         `yaml:"type"`
	Redis  RedisConfig    `yaml:"redis"`
	Broker brokers.Config `yaml:"broker"`

	// Breaker - отключение публикации при недоступном транспорте
	Breaker resilience.Config `yaml:"breaker"`
}

// New создает Publisher по конфигурации
func New(ctx context.Context, cfg Config) (Publisher, error) {
	p, err := newTransport(ctx, cfg)
	if err != nil || !cfg.Breaker.Enabled {
		return p, err
	}
	if _, nop := p.(NopPublisher); nop {
		return p, nil
	}

	breakerCfg := cfg.Breaker
	breakerCfg.Name = "events-" + cfg.Type
	guarded, err := NewGuardedPublisher(p, breakerCfg)
	if err != nil {
		p.Close()
		return nil, err
	}
	return guarded, nil
}

func newTransport(ctx context.Context, cfg Config) (Publisher, error) {
	switch cfg.Type {
	case "", "none":
		return NopPublisher{}, nil

	case "redis":
		p := NewRedisPublisher(cfg.Redis)
		if err := p.client.Ping(ctx).Err(); err != nil {
			p.Close()
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return p, nil

	case "rabbitmq", "kafka":
		brokerCfg := cfg.Broker
		brokerCfg.Type = cfg.Type
		return NewBrokerPublisher(ctx, brokerCfg)

	default:
		return nil, fmt.Errorf("unsupported events type: %s (supported: redis, rabbitmq, kafka)", cfg.Type)
	}
}
