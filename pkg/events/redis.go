package events

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig - параметры публикации в Redis
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"` // по умолчанию "dsbot"
	TTL      int    `yaml:"ttl"`    // секунды жизни ключа последнего состояния (0 = без TTL)
}

// RedisPublisher публикует события в Redis
//
// Redis-ключи:
//
//	SET  <prefix>:<entity>:last  <JSON>  EX <ttl>  - последнее изменение сущности
//	PUB  <prefix>:<entity>                         - поток изменений для подписчиков
type RedisPublisher struct {
	client *redis.Client
	config RedisConfig
}

// NewRedisPublisher создает publisher на основе конфигурации
func NewRedisPublisher(config RedisConfig) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	return NewRedisPublisherWithClient(client, config)
}

// NewRedisPublisherWithClient использует готовый клиент
func NewRedisPublisherWithClient(client *redis.Client, config RedisConfig) *RedisPublisher {
	if config.Prefix == "" {
		config.Prefix = "dsbot"
	}
	return &RedisPublisher{client: client, config: config}
}

// Channel возвращает канал PUB/SUB для сущности
func (p *RedisPublisher) Channel(entity string) string {
	return fmt.Sprintf("%s:%s", p.config.Prefix, entity)
}

// StateKey возвращает ключ последнего изменения сущности
func (p *RedisPublisher) StateKey(entity string) string {
	return fmt.Sprintf("%s:%s:last", p.config.Prefix, entity)
}

// Publish сохраняет последнее изменение и рассылает его подписчикам
func (p *RedisPublisher) Publish(ctx context.Context, change Change) error {
	payload, err := change.Marshal()
	if err != nil {
		return err
	}

	ttl := time.Duration(p.config.TTL) * time.Second

	if err := p.client.Set(ctx, p.StateKey(change.Entity), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}

	if err := p.client.Publish(ctx, p.Channel(change.Entity), payload).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}

	return nil
}

// Close закрывает соединение с Redis
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
