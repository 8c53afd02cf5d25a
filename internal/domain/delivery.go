package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Delivery urgency tier. The tier determines the travel time multiplier
// applied during ETA estimation (URGENT >= HIGH >= NORMAL).
type Priority string

const (
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return Priority(s), nil
	}
	return "", fmt.Errorf("parse priority: unknown value %q", s)
}

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "PENDING"
	DeliveryAssigned  DeliveryStatus = "ASSIGNED"
	DeliveryInTransit DeliveryStatus = "IN_TRANSIT"
	DeliveryDelivered DeliveryStatus = "DELIVERED"
	DeliveryCancelled DeliveryStatus = "CANCELLED"
)

func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	switch DeliveryStatus(s) {
	case DeliveryPending, DeliveryAssigned, DeliveryInTransit, DeliveryDelivered, DeliveryCancelled:
		return DeliveryStatus(s), nil
	}
	return "", fmt.Errorf("parse delivery status: unknown value %q", s)
}

var ErrInvalidTransition = errors.New("invalid delivery status transition")

// Legal forward transitions. Deliveries are never deleted; terminal
// states (DELIVERED, CANCELLED) have no outgoing edges.
var deliveryTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryPending:   {DeliveryAssigned, DeliveryCancelled},
	DeliveryAssigned:  {DeliveryInTransit, DeliveryCancelled},
	DeliveryInTransit: {DeliveryDelivered, DeliveryCancelled},
}

func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	for _, allowed := range deliveryTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// A single oxygen cylinder delivery: pickup at a supplier depot,
// drop-off at the customer. Status is only ever mutated through
// TransitionTo.
type DeliveryStop struct {
	ID         uuid.UUID
	OrderID    string
	CustomerID string
	DriverID   *uuid.UUID

	CylinderSize string
	Quantity     int
	Priority     Priority
	Status       DeliveryStatus

	PickupAddress   string
	Pickup          Coordinate
	DeliveryAddress string
	Delivery        Coordinate

	DistanceKM            float64
	EstimatedPickupTime   *time.Time
	EstimatedDeliveryTime *time.Time
	ActualPickupTime      *time.Time
	ActualDeliveryTime    *time.Time

	SpecialInstructions string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (d *DeliveryStop) TransitionTo(next DeliveryStatus, now time.Time) error {
	if !d.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, next)
	}

	switch next {
	case DeliveryInTransit:
		d.ActualPickupTime = &now
	case DeliveryDelivered:
		d.ActualDeliveryTime = &now
	}

	d.Status = next
	d.UpdatedAt = now
	return nil
}
