package events

import (
	"context"

	"github.com/ruslano69/dsbot/pkg/resilience"
)

// GuardedPublisher перестает обращаться к транспорту после серии сбоев
// Пока breaker открыт, Publish сразу возвращает resilience.ErrCircuitOpen
type GuardedPublisher struct {
	next    Publisher
	breaker *resilience.CircuitBreaker
}

// NewGuardedPublisher оборачивает publisher в Circuit Breaker
func NewGuardedPublisher(next Publisher, cfg resilience.Config) (*GuardedPublisher, error) {
	breaker, err := resilience.New(cfg)
	if err != nil {
		return nil, err
	}
	return &GuardedPublisher{next: next, breaker: breaker}, nil
}

// Publish публикует событие через breaker
func (p *GuardedPublisher) Publish(ctx context.Context, change Change) error {
	return p.breaker.Execute(ctx, func(ctx context.Context) error {
		return p.next.Publish(ctx, change)
	})
}

// State - состояние breaker
func (p *GuardedPublisher) State() resilience.State {
	return p.breaker.State()
}

// Close закрывает транспорт
func (p *GuardedPublisher) Close() error {
	return p.next.Close()
}
