// Package queue defines the message-queue boundary of the worker. The
// abstraction keeps the processing loop independent of the broker; the only
// implementation today is AMQP.
package queue

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by Receive once the underlying consumer is gone.
var ErrClosed = errors.New("queue: consumer closed")

// Source hands out batches of pending work items. Receive blocks for up to
// wait (the long poll) and returns between zero and max items; visibility is
// the window during which a returned item stays hidden from other consumers.
type Source interface {
	Receive(ctx context.Context, max int, visibility, wait time.Duration) ([]WorkItem, error)
}

// WorkItem is one received notification. Exactly one of Acknowledge or
// SetVisibility should be called per processing attempt: Acknowledge removes
// the item permanently, SetVisibility(0) releases it for immediate
// redelivery. Items that exceed the broker's delivery limit are routed to the
// dead-letter queue by the broker itself.
type WorkItem interface {
	Body() []byte
	Acknowledge() error
	SetVisibility(d time.Duration) error
}
