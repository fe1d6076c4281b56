package common

import (
	"context"

	"github.com/erp/posledger/internal/domain/shared"
	"go.uber.org/zap"
)

// EventCollector gathers the events raised inside a transaction so they are
// published only after it commits
type EventCollector struct {
	events []shared.DomainEvent
}

// Collect pulls the pending events of the aggregates
func (c *EventCollector) Collect(aggregates ...interface{ PullDomainEvents() []shared.DomainEvent }) {
	for _, a := range aggregates {
		c.events = append(c.events, a.PullDomainEvents()...)
	}
}

// Add appends events built outside an aggregate
func (c *EventCollector) Add(events ...shared.DomainEvent) {
	c.events = append(c.events, events...)
}

// Events returns the collected events
func (c *EventCollector) Events() []shared.DomainEvent {
	return c.events
}

// Reset drops the collected events, e.g. before a retried attempt
func (c *EventCollector) Reset() {
	c.events = nil
}

// Publish sends the collected events. Publishing failures are logged and do
// not fail the committed operation.
func (c *EventCollector) Publish(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger) {
	if publisher == nil || len(c.events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, c.events...); err != nil {
		logger.Error("failed to publish domain events",
			zap.Int("event_count", len(c.events)),
			zap.Error(err),
		)
	}
	c.events = nil
}
