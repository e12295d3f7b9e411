package events

import (
	"context"
	"fmt"

	"github.com/ruslano69/dsbot/pkg/brokers"
)

// BrokerPublisher публикует события через RabbitMQ или Kafka
type BrokerPublisher struct {
	broker brokers.MessageBroker
}

// NewBrokerPublisher подключается к брокеру
func NewBrokerPublisher(ctx context.Context, cfg brokers.Config) (*BrokerPublisher, error) {
	broker, err := brokers.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := broker.Connect(ctx); err != nil {
		return nil, err
	}
	return &BrokerPublisher{broker: broker}, nil
}

// NewBrokerPublisherWith использует уже подключенный брокер
func NewBrokerPublisherWith(broker brokers.MessageBroker) *BrokerPublisher {
	return &BrokerPublisher{broker: broker}
}

// Publish отправляет событие; ключ сообщения - Change.Key()
func (p *BrokerPublisher) Publish(ctx context.Context, change Change) error {
	payload, err := change.Marshal()
	if err != nil {
		return err
	}
	if err := p.broker.Send(ctx, change.Key(), payload); err != nil {
		return fmt.Errorf("%s: %w", p.broker.GetBrokerType(), err)
	}
	return nil
}

// Close закрывает брокер
func (p *BrokerPublisher) Close() error {
	return p.broker.Close()
}
