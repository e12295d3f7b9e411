package brokers

import (
	"context"
	"fmt"
)

// MessageBroker - транспорт событий изменений
// Бот только публикует: чтение из очереди остается подписчикам
type MessageBroker interface {
	// Connect устанавливает соединение с брокером
	Connect(ctx context.Context) error

	// Close закрывает соединение с брокером
	Close() error

	// Send отправляет сообщение
	// key - ключ партиционирования (Kafka) или routing key (RabbitMQ, если пуст - имя очереди)
	Send(ctx context.Context, key string, message []byte) error

	// Ping проверяет доступность брокера
	Ping(ctx context.Context) error

	// GetBrokerType возвращает тип брокера (rabbitmq, kafka)
	GetBrokerType() string
}

// Config содержит параметры подключения к message broker
type Config struct {
	Type     string `yaml:"type"`     // rabbitmq, kafka
	Host     string `yaml:"host"`     // Хост (для RabbitMQ)
	Port     int    `yaml:"port"`     // Порт (для RabbitMQ)
	User     string `yaml:"user"`     // Пользователь (для RabbitMQ)
	Password string `yaml:"password"` // Пароль (для RabbitMQ)
	Queue    string `yaml:"queue"`    // Имя очереди (для RabbitMQ)
	VHost    string `yaml:"vhost"`    // Virtual host (для RabbitMQ, по умолчанию "/")
	UseTLS   bool   `yaml:"tls"`      // amqps:// для RabbitMQ
	Exchange string `yaml:"exchange"` // RabbitMQ exchange (пустая строка = default exchange)
	Durable  bool   `yaml:"durable"`  // Очередь переживает перезапуск RabbitMQ

	// Kafka
	Brokers []string `yaml:"brokers"` // ["localhost:9092"]
	Topic   string   `yaml:"topic"`
}

// New создает MessageBroker по конфигурации (без подключения)
func New(cfg Config) (MessageBroker, error) {
	switch cfg.Type {
	case "rabbitmq":
		return NewRabbitMQ(cfg)
	case "kafka":
		return NewKafka(cfg)
	default:
		return nil, fmt.Errorf("unsupported broker type: %s (supported: rabbitmq, kafka)", cfg.Type)
	}
}
