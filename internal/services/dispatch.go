package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"oxygen-dispatch-service/internal/domain"
	"oxygen-dispatch-service/internal/geo"
	"oxygen-dispatch-service/internal/ports"
)

// Dispatcher orchestrates route planning and lifecycle: it loads stops,
// sequences them, computes waypoints and per-stop ETAs, persists the
// result, and publishes the corresponding events. The computation itself
// stays in the pure helpers (SequenceStops, ETAEstimator).
type Dispatcher struct {
	deliveries ports.DeliveryRepository
	routes     ports.RouteRepository
	drivers    ports.DriverRepository
	estimator  *ETAEstimator
	events     ports.EventPublisher
	maxStops   int
}

func NewDispatcher(
	deliveries ports.DeliveryRepository,
	routes ports.RouteRepository,
	drivers ports.DriverRepository,
	estimator *ETAEstimator,
	events ports.EventPublisher,
	maxStops int,
) *Dispatcher {
	return &Dispatcher{
		deliveries: deliveries,
		routes:     routes,
		drivers:    drivers,
		estimator:  estimator,
		events:     events,
		maxStops:   maxStops,
	}
}

// DriverLocation may be nil, in which case the driver's last reported
// position is used as the route origin.
type PlanRouteRequest struct {
	DriverID       uuid.UUID
	DriverLocation *domain.Coordinate
	DeliveryIDs    []uuid.UUID
	RouteName      string
	Now            time.Time
}

// PlanRoute builds a PLANNED route for one driver. Requested stops must
// be PENDING; they come out ASSIGNED with ETA fields populated.
func (s *Dispatcher) PlanRoute(ctx context.Context, req PlanRouteRequest) (*domain.Route, error) {
	origin, err := s.resolveOrigin(ctx, req)
	if err != nil {
		return nil, err
	}

	stops, err := s.deliveries.GetByIDs(ctx, req.DeliveryIDs)
	if err != nil {
		return nil, fmt.Errorf("plan route: load deliveries: %w", err)
	}
	if len(stops) != len(req.DeliveryIDs) {
		return nil, fmt.Errorf("plan route: %w: requested %d deliveries, found %d",
			ports.ErrNotFound, len(req.DeliveryIDs), len(stops))
	}

	for _, stop := range stops {
		if stop.Status != domain.DeliveryPending {
			return nil, fmt.Errorf("plan route: delivery %s is %s, want PENDING", stop.ID, stop.Status)
		}
	}

	ordered, err := SequenceStops(origin, stops, s.maxStops)
	if err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}

	name := req.RouteName
	if name == "" {
		name = "Route_" + req.Now.UTC().Format("20060102_150405")
	}

	route := &domain.Route{
		ID:        uuid.New(),
		DriverID:  req.DriverID,
		Name:      name,
		Status:    domain.RoutePlanned,
		CreatedAt: req.Now,
		Waypoints: []domain.Waypoint{{Kind: domain.WaypointStart, Position: origin}},
	}

	// Walk the sequence accumulating distance and time. The driver
	// departs after the dispatch delay; every stop adds its pickup leg,
	// its delivery leg, and the loading/unloading buffer.
	current := origin
	cursor := req.Now.Add(s.estimator.DispatchDelay())
	totalKM := 0.0

	for _, stop := range ordered {
		id := stop.ID

		pickupLeg := geo.DistanceKM(current, stop.Pickup)
		cursor = cursor.Add(minutesToDuration(s.estimator.TravelMinutes(pickupLeg, stop.Priority)))
		pickupETA := cursor

		deliveryLeg := geo.DistanceKM(stop.Pickup, stop.Delivery)
		cursor = cursor.Add(minutesToDuration(s.estimator.TravelMinutes(deliveryLeg, stop.Priority)))
		cursor = cursor.Add(time.Duration(s.estimator.BufferMinutes()) * time.Minute)
		deliveryETA := cursor

		totalKM += pickupLeg + deliveryLeg
		current = stop.Delivery

		stop.EstimatedPickupTime = &pickupETA
		stop.EstimatedDeliveryTime = &deliveryETA

		route.StopIDs = append(route.StopIDs, id)
		route.Waypoints = append(route.Waypoints,
			domain.Waypoint{Kind: domain.WaypointPickup, Position: stop.Pickup, StopID: &id},
			domain.Waypoint{Kind: domain.WaypointDelivery, Position: stop.Delivery, StopID: &id},
		)
	}

	route.TotalDistanceKM = totalKM
	route.EstimatedDurationMinutes = int(cursor.Sub(req.Now.Add(s.estimator.DispatchDelay())).Minutes())

	if err := s.routes.Create(ctx, route); err != nil {
		return nil, fmt.Errorf("plan route: persist route: %w", err)
	}

	for _, stop := range ordered {
		if err := stop.TransitionTo(domain.DeliveryAssigned, req.Now); err != nil {
			return nil, fmt.Errorf("plan route: assign delivery %s: %w", stop.ID, err)
		}
		stop.DriverID = &req.DriverID
		if err := s.deliveries.SetAssignment(ctx, stop); err != nil {
			return nil, fmt.Errorf("plan route: persist assignment for %s: %w", stop.ID, err)
		}
	}

	s.publish(ctx, ports.EventRoutePlanned, map[string]any{
		"route_id":          route.ID.String(),
		"driver_id":         route.DriverID.String(),
		"stop_count":        len(route.StopIDs),
		"total_distance_km": route.TotalDistanceKM,
		"duration_minutes":  route.EstimatedDurationMinutes,
	})

	return route, nil
}

// StartRoute locks the route and marks its stops IN_TRANSIT. Every stop
// is checked before any state is persisted: a stop cancelled after
// assignment fails the whole start and leaves the route PLANNED, so it
// can be re-planned without the cancelled stop.
func (s *Dispatcher) StartRoute(ctx context.Context, routeID uuid.UUID, now time.Time) (*domain.Route, error) {
	route, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("start route: %w", err)
	}

	if route.Status != domain.RoutePlanned {
		return nil, fmt.Errorf("start route %s: %w (status=%s)", route.ID, domain.ErrRouteLocked, route.Status)
	}

	stops, err := s.deliveries.GetByIDs(ctx, route.StopIDs)
	if err != nil {
		return nil, fmt.Errorf("start route: load stops: %w", err)
	}
	if len(stops) != len(route.StopIDs) {
		return nil, fmt.Errorf("start route: %w: route has %d stops, found %d",
			ports.ErrNotFound, len(route.StopIDs), len(stops))
	}
	for _, stop := range stops {
		if !stop.Status.CanTransitionTo(domain.DeliveryInTransit) {
			return nil, fmt.Errorf("start route: delivery %s: %w: %s -> %s",
				stop.ID, domain.ErrInvalidTransition, stop.Status, domain.DeliveryInTransit)
		}
	}

	if err := route.Start(now); err != nil {
		return nil, err
	}
	if err := s.routes.UpdateStatus(ctx, route); err != nil {
		return nil, fmt.Errorf("start route: persist: %w", err)
	}

	for _, stop := range stops {
		if err := stop.TransitionTo(domain.DeliveryInTransit, now); err != nil {
			return nil, fmt.Errorf("start route: delivery %s: %w", stop.ID, err)
		}
		if err := s.deliveries.UpdateStatus(ctx, stop, "dispatcher"); err != nil {
			return nil, fmt.Errorf("start route: persist delivery %s: %w", stop.ID, err)
		}
	}

	s.setDriverStatus(ctx, route.DriverID, domain.DriverBusy, 0, now)

	s.publish(ctx, ports.EventRouteStarted, map[string]any{
		"route_id":  route.ID.String(),
		"driver_id": route.DriverID.String(),
	})

	return route, nil
}

func (s *Dispatcher) CompleteRoute(ctx context.Context, routeID uuid.UUID, now time.Time) (*domain.Route, error) {
	route, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("complete route: %w", err)
	}

	if err := route.Complete(now); err != nil {
		return nil, err
	}
	if err := s.routes.UpdateStatus(ctx, route); err != nil {
		return nil, fmt.Errorf("complete route: persist: %w", err)
	}

	s.setDriverStatus(ctx, route.DriverID, domain.DriverAvailable, len(route.StopIDs), now)

	s.publish(ctx, ports.EventRouteCompleted, map[string]any{
		"route_id":  route.ID.String(),
		"driver_id": route.DriverID.String(),
	})

	return route, nil
}

// resolveOrigin returns the explicit driver location, or falls back to
// the driver's last reported position.
func (s *Dispatcher) resolveOrigin(ctx context.Context, req PlanRouteRequest) (domain.Coordinate, error) {
	if req.DriverLocation != nil {
		return *req.DriverLocation, nil
	}
	if s.drivers == nil {
		return domain.Coordinate{}, fmt.Errorf("plan route: driver location required")
	}

	driver, err := s.drivers.GetByID(ctx, req.DriverID)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("plan route: resolve driver: %w", err)
	}
	if driver.Location == nil {
		return domain.Coordinate{}, fmt.Errorf("plan route: driver %s has never reported a location", driver.ID)
	}
	return *driver.Location, nil
}

// Driver bookkeeping is best-effort: the route is the source of truth
// and planning also works for drivers registered in another system.
func (s *Dispatcher) setDriverStatus(ctx context.Context, driverID uuid.UUID, status domain.DriverStatus, completedStops int, now time.Time) {
	if s.drivers == nil {
		return
	}

	driver, err := s.drivers.GetByID(ctx, driverID)
	if errors.Is(err, ports.ErrNotFound) {
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("driver_id", driverID.String()).Msg("load driver failed")
		return
	}

	driver.SetStatus(status, now)
	driver.TotalDeliveries += completedStops
	if err := s.drivers.SetStatus(ctx, driver); err != nil {
		log.Warn().Err(err).Str("driver_id", driverID.String()).Msg("persist driver status failed")
	}
}

// Event publishing is best-effort: a broker failure must not fail the
// request whose state is already persisted.
func (s *Dispatcher) publish(ctx context.Context, key string, payload map[string]any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, payload); err != nil {
		log.Warn().Err(err).Str("event", key).Msg("publish failed")
	}
}

func minutesToDuration(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}
