package ports

import "context"

// Routing keys published by the dispatch service.
const (
	EventDeliveryCreated       = "delivery.created"
	EventDeliveryStatusChanged = "delivery.status_changed"
	EventRoutePlanned          = "route.planned"
	EventRouteStarted          = "route.started"
	EventRouteCompleted        = "route.completed"
	EventZoneActivated         = "zone.activated"
	EventZoneDeactivated       = "zone.deactivated"
)

// Contract for publishing domain events to the message broker. Payloads
// are JSON-serializable; delivery guarantees are the broker adapter's
// concern.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}
