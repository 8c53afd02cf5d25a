package events

import "context"

// NoopPublisher discards events. Used when no broker is configured and
// in tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
