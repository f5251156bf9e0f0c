package infrastructure

import (
	"drawhouse/domain/events"
)

// NoopEventPublisher swallows draw events. Used where no listener
// exists, such as the migrate subcommand and one-off maintenance paths.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish drops the event
func (n *NoopEventPublisher) Publish(event events.Event) error {
	return nil
}
