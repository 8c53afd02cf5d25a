package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RouteStatus string

const (
	RoutePlanned   RouteStatus = "PLANNED"
	RouteActive    RouteStatus = "ACTIVE"
	RouteCompleted RouteStatus = "COMPLETED"
)

var ErrRouteLocked = errors.New("route is locked")

type WaypointKind string

const (
	WaypointStart    WaypointKind = "start"
	WaypointPickup   WaypointKind = "pickup"
	WaypointDelivery WaypointKind = "delivery"
)

// A point the driver passes through while executing a route. StopID is
// nil only for the start waypoint (the driver's location at dispatch).
type Waypoint struct {
	Kind     WaypointKind
	Position Coordinate
	StopID   *uuid.UUID
}

// The planned visit sequence for one driver. A Route is the output of
// the route sequencer and describes the ordered delivery stops together
// with aggregate distance and duration estimates. Once the driver starts
// the route it is locked: stop membership and ordering never change.
type Route struct {
	ID       uuid.UUID
	DriverID uuid.UUID
	Name     string

	StopIDs   []uuid.UUID
	Waypoints []Waypoint

	TotalDistanceKM          float64
	EstimatedDurationMinutes int

	Status      RouteStatus
	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// Start marks the route ACTIVE. Only a PLANNED route can start; an
// ACTIVE or COMPLETED route is already locked.
func (r *Route) Start(now time.Time) error {
	if r.Status != RoutePlanned {
		return fmt.Errorf("start route %s: %w (status=%s)", r.ID, ErrRouteLocked, r.Status)
	}
	r.Status = RouteActive
	r.StartedAt = &now
	return nil
}

// Complete marks an ACTIVE route COMPLETED.
func (r *Route) Complete(now time.Time) error {
	if r.Status != RouteActive {
		return fmt.Errorf("complete route %s: route must be ACTIVE, got %s", r.ID, r.Status)
	}
	r.Status = RouteCompleted
	r.CompletedAt = &now
	return nil
}
