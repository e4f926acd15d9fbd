// Package eventpublisher fans committed change events out to in-process
// subscribers such as the balance cache and the metrics counters.
package eventpublisher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
)

type subscription struct {
	name    string
	handler usecase.EventPublisher
}

// Broker implements usecase.EventPublisher. Subscribers run synchronously in
// registration order, so a cache invalidation is done before the mutating
// call returns.
type Broker struct {
	mu     sync.RWMutex
	subs   []subscription
	logger zerolog.Logger
}

// NewBroker creates a Broker with no subscribers.
func NewBroker(logger zerolog.Logger) *Broker {
	return &Broker{logger: logger}
}

// Subscribe registers handler under name.
func (b *Broker) Subscribe(name string, handler usecase.EventPublisher) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{name: name, handler: handler})
}

// SubscribeFunc registers fn under name.
func (b *Broker) SubscribeFunc(name string, fn func(ctx context.Context, event domain.ChangeEvent) error) {
	b.Subscribe(name, usecase.EventHandlerFunc(fn))
}

// Publish delivers event to every subscriber. A failing subscriber does not
// stop delivery to the others; all failures are joined into the result.
func (b *Broker) Publish(ctx context.Context, event domain.ChangeEvent) error {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs...)
	b.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := s.handler.Publish(ctx, event); err != nil {
			b.logger.Warn().Err(err).
				Str("subscriber", s.name).
				Str("event_type", event.EventType).
				Str("aggregate_id", event.AggregateID).
				Msg("subscriber failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}

	return errors.Join(errs...)
}

// LogPublisher logs every event at debug level.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(_ context.Context, event domain.ChangeEvent) error {
	p.logger.Debug().
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		Str("party_id", event.PartyID).
		Str("item_id", event.ItemID).
		Int64("stock_delta", event.StockDelta).
		Time("occurred_at", event.OccurredAt).
		Msg("ledger changed")

	return nil
}
