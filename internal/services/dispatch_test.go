package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"oxygen-dispatch-service/internal/domain"
	"oxygen-dispatch-service/internal/ports"
)

type fakeDeliveryRepo struct {
	stops map[uuid.UUID]*domain.DeliveryStop
}

func newFakeDeliveryRepo(stops ...*domain.DeliveryStop) *fakeDeliveryRepo {
	m := make(map[uuid.UUID]*domain.DeliveryStop, len(stops))
	for _, s := range stops {
		m[s.ID] = s
	}
	return &fakeDeliveryRepo{stops: m}
}

func (f *fakeDeliveryRepo) Create(_ context.Context, d *domain.DeliveryStop) error {
	f.stops[d.ID] = d
	return nil
}

func (f *fakeDeliveryRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.DeliveryStop, error) {
	s, ok := f.stops[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return s, nil
}

func (f *fakeDeliveryRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*domain.DeliveryStop, error) {
	out := make([]*domain.DeliveryStop, 0, len(ids))
	for _, id := range ids {
		if s, ok := f.stops[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeDeliveryRepo) List(_ context.Context, _ ports.DeliveryFilters) ([]*domain.DeliveryStop, error) {
	out := make([]*domain.DeliveryStop, 0, len(f.stops))
	for _, s := range f.stops {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeDeliveryRepo) UpdateStatus(_ context.Context, d *domain.DeliveryStop, _ string) error {
	f.stops[d.ID] = d
	return nil
}

func (f *fakeDeliveryRepo) SetAssignment(_ context.Context, d *domain.DeliveryStop) error {
	f.stops[d.ID] = d
	return nil
}

func (f *fakeDeliveryRepo) ListTracking(_ context.Context, _ uuid.UUID) ([]ports.TrackingEntry, error) {
	return nil, nil
}

type fakeDriverRepo struct {
	drivers map[uuid.UUID]*domain.Driver
}

func newFakeDriverRepo(drivers ...*domain.Driver) *fakeDriverRepo {
	m := make(map[uuid.UUID]*domain.Driver, len(drivers))
	for _, d := range drivers {
		m[d.ID] = d
	}
	return &fakeDriverRepo{drivers: m}
}

func (f *fakeDriverRepo) Create(_ context.Context, d *domain.Driver) error {
	f.drivers[d.ID] = d
	return nil
}

func (f *fakeDriverRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Driver, error) {
	d, ok := f.drivers[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return d, nil
}

func (f *fakeDriverRepo) List(_ context.Context, status domain.DriverStatus) ([]*domain.Driver, error) {
	out := []*domain.Driver{}
	for _, d := range f.drivers {
		if status == "" || d.Status == status {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDriverRepo) UpdateLocation(_ context.Context, d *domain.Driver) error {
	f.drivers[d.ID] = d
	return nil
}

func (f *fakeDriverRepo) SetStatus(_ context.Context, d *domain.Driver) error {
	f.drivers[d.ID] = d
	return nil
}

type fakeRouteRepo struct {
	routes map[uuid.UUID]*domain.Route
}

func newFakeRouteRepo() *fakeRouteRepo {
	return &fakeRouteRepo{routes: map[uuid.UUID]*domain.Route{}}
}

func (f *fakeRouteRepo) Create(_ context.Context, r *domain.Route) error {
	f.routes[r.ID] = r
	return nil
}

func (f *fakeRouteRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Route, error) {
	r, ok := f.routes[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r, nil
}

func (f *fakeRouteRepo) ListByDriver(_ context.Context, driverID uuid.UUID, _ domain.RouteStatus) ([]*domain.Route, error) {
	out := []*domain.Route{}
	for _, r := range f.routes {
		if r.DriverID == driverID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRouteRepo) UpdateStatus(_ context.Context, r *domain.Route) error {
	f.routes[r.ID] = r
	return nil
}

type recordingPublisher struct {
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	p.keys = append(p.keys, key)
	return nil
}

func newTestDispatcher(t *testing.T, deliveries *fakeDeliveryRepo, routes *fakeRouteRepo, pub ports.EventPublisher) *Dispatcher {
	t.Helper()
	return NewDispatcher(deliveries, routes, newFakeDriverRepo(), newTestEstimator(t), pub, 10)
}

func coordPtr(t *testing.T, lat, lng float64) *domain.Coordinate {
	t.Helper()
	c := mustCoord(t, lat, lng)
	return &c
}

func TestPlanRouteAssignsAndPersists(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	driverID := uuid.New()

	near := testStop(t, 6.51, 3.38, 6.52, 3.39, now)
	far := testStop(t, 6.80, 3.38, 6.81, 3.39, now)

	deliveries := newFakeDeliveryRepo(near, far)
	routes := newFakeRouteRepo()
	pub := &recordingPublisher{}

	d := newTestDispatcher(t, deliveries, routes, pub)

	route, err := d.PlanRoute(context.Background(), PlanRouteRequest{
		DriverID:       driverID,
		DriverLocation: coordPtr(t, 6.50, 3.38),
		DeliveryIDs:    []uuid.UUID{far.ID, near.ID},
		Now:            now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if route.Status != domain.RoutePlanned {
		t.Fatalf("route status = %s, want PLANNED", route.Status)
	}
	if len(route.StopIDs) != 2 || route.StopIDs[0] != near.ID {
		t.Fatalf("stop order = %v, want nearest (%v) first", route.StopIDs, near.ID)
	}

	// start waypoint + pickup/delivery per stop
	if len(route.Waypoints) != 5 {
		t.Fatalf("waypoint count = %d, want 5", len(route.Waypoints))
	}
	if route.Waypoints[0].Kind != domain.WaypointStart {
		t.Fatalf("first waypoint kind = %s, want start", route.Waypoints[0].Kind)
	}
	if route.TotalDistanceKM <= 0 {
		t.Fatalf("total distance = %v, want > 0", route.TotalDistanceKM)
	}
	if route.EstimatedDurationMinutes < 2*15 {
		t.Fatalf("duration = %d, must include two stop buffers", route.EstimatedDurationMinutes)
	}

	for _, stop := range []*domain.DeliveryStop{near, far} {
		if stop.Status != domain.DeliveryAssigned {
			t.Errorf("stop %v status = %s, want ASSIGNED", stop.ID, stop.Status)
		}
		if stop.DriverID == nil || *stop.DriverID != driverID {
			t.Errorf("stop %v driver not set", stop.ID)
		}
		if stop.EstimatedPickupTime == nil || stop.EstimatedDeliveryTime == nil {
			t.Errorf("stop %v missing ETA fields", stop.ID)
		}
	}

	if _, err := routes.GetByID(context.Background(), route.ID); err != nil {
		t.Fatalf("route not persisted: %v", err)
	}
	if len(pub.keys) != 1 || pub.keys[0] != ports.EventRoutePlanned {
		t.Fatalf("published events = %v, want [%s]", pub.keys, ports.EventRoutePlanned)
	}
}

func TestPlanRouteRejectsUnknownDelivery(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	d := newTestDispatcher(t, newFakeDeliveryRepo(), newFakeRouteRepo(), &recordingPublisher{})

	_, err := d.PlanRoute(context.Background(), PlanRouteRequest{
		DriverID:       uuid.New(),
		DriverLocation: coordPtr(t, 6.50, 3.38),
		DeliveryIDs:    []uuid.UUID{uuid.New()},
		Now:            now,
	})
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlanRouteRejectsNonPendingDelivery(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	stop := testStop(t, 6.51, 3.38, 6.52, 3.39, now)
	stop.Status = domain.DeliveryDelivered

	d := newTestDispatcher(t, newFakeDeliveryRepo(stop), newFakeRouteRepo(), &recordingPublisher{})

	_, err := d.PlanRoute(context.Background(), PlanRouteRequest{
		DriverID:       uuid.New(),
		DriverLocation: coordPtr(t, 6.50, 3.38),
		DeliveryIDs:    []uuid.UUID{stop.ID},
		Now:            now,
	})
	if err == nil {
		t.Fatal("expected error for non-pending delivery")
	}
}

func TestStartRouteRejectsCancelledStopWithoutSideEffects(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	a := testStop(t, 6.51, 3.38, 6.52, 3.39, now)
	b := testStop(t, 6.60, 3.38, 6.61, 3.39, now)

	deliveries := newFakeDeliveryRepo(a, b)
	routes := newFakeRouteRepo()
	pub := &recordingPublisher{}
	d := newTestDispatcher(t, deliveries, routes, pub)

	route, err := d.PlanRoute(context.Background(), PlanRouteRequest{
		DriverID:       uuid.New(),
		DriverLocation: coordPtr(t, 6.50, 3.38),
		DeliveryIDs:    []uuid.UUID{a.ID, b.ID},
		Now:            now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One stop is cancelled between planning and departure.
	if err := b.TransitionTo(domain.DeliveryCancelled, now.Add(time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = d.StartRoute(context.Background(), route.ID, now.Add(2*time.Minute))
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	// The failed start must leave no partial state behind.
	stored, getErr := routes.GetByID(context.Background(), route.ID)
	if getErr != nil {
		t.Fatalf("unexpected error: %v", getErr)
	}
	if stored.Status != domain.RoutePlanned || stored.StartedAt != nil {
		t.Fatalf("route mutated by failed start: %+v", stored)
	}
	if a.Status != domain.DeliveryAssigned {
		t.Fatalf("stop %v status = %s, want ASSIGNED untouched", a.ID, a.Status)
	}
	for _, k := range pub.keys {
		if k == ports.EventRouteStarted {
			t.Fatal("route.started must not be published for a failed start")
		}
	}
}

func TestPlanRouteUsesDriverLastReportedLocation(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	driver, err := domain.NewDriver("Ngozi", "+2348000000000", domain.VehicleVan, "LND-123-XY", 8, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	driver.UpdateLocation(mustCoord(t, 6.50, 3.38), now)

	stop := testStop(t, 6.51, 3.38, 6.52, 3.39, now)
	deliveries := newFakeDeliveryRepo(stop)
	routes := newFakeRouteRepo()
	d := NewDispatcher(deliveries, routes, newFakeDriverRepo(driver), newTestEstimator(t), &recordingPublisher{}, 10)

	route, err := d.PlanRoute(context.Background(), PlanRouteRequest{
		DriverID:    driver.ID,
		DeliveryIDs: []uuid.UUID{stop.ID},
		Now:         now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := route.Waypoints[0]
	if start.Kind != domain.WaypointStart || start.Position != *driver.Location {
		t.Fatalf("route origin = %+v, want driver location %+v", start, *driver.Location)
	}
}

func TestPlanRouteRequiresKnownDriverLocation(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	driver, err := domain.NewDriver("Ngozi", "+2348000000000", domain.VehicleVan, "LND-123-XY", 8, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stop := testStop(t, 6.51, 3.38, 6.52, 3.39, now)
	d := NewDispatcher(newFakeDeliveryRepo(stop), newFakeRouteRepo(), newFakeDriverRepo(driver), newTestEstimator(t), &recordingPublisher{}, 10)

	if _, err := d.PlanRoute(context.Background(), PlanRouteRequest{
		DriverID:    driver.ID,
		DeliveryIDs: []uuid.UUID{stop.ID},
		Now:         now,
	}); err == nil {
		t.Fatal("expected error when the driver never reported a location")
	}
}

func TestRouteLifecycleUpdatesDriver(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	driver, err := domain.NewDriver("Ngozi", "+2348000000000", domain.VehicleVan, "LND-123-XY", 8, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	driver.UpdateLocation(mustCoord(t, 6.50, 3.38), now)

	stop := testStop(t, 6.51, 3.38, 6.52, 3.39, now)
	deliveries := newFakeDeliveryRepo(stop)
	routes := newFakeRouteRepo()
	d := NewDispatcher(deliveries, routes, newFakeDriverRepo(driver), newTestEstimator(t), &recordingPublisher{}, 10)

	route, err := d.PlanRoute(context.Background(), PlanRouteRequest{
		DriverID:    driver.ID,
		DeliveryIDs: []uuid.UUID{stop.ID},
		Now:         now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := d.StartRoute(context.Background(), route.ID, now.Add(time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.Status != domain.DriverBusy {
		t.Fatalf("driver status = %s after start, want BUSY", driver.Status)
	}

	if _, err := d.CompleteRoute(context.Background(), route.ID, now.Add(time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.Status != domain.DriverAvailable {
		t.Fatalf("driver status = %s after complete, want AVAILABLE", driver.Status)
	}
	if driver.TotalDeliveries != 1 {
		t.Fatalf("total deliveries = %d, want 1", driver.TotalDeliveries)
	}
}

func TestRouteLifecycle(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	stop := testStop(t, 6.51, 3.38, 6.52, 3.39, now)

	deliveries := newFakeDeliveryRepo(stop)
	routes := newFakeRouteRepo()
	pub := &recordingPublisher{}
	d := newTestDispatcher(t, deliveries, routes, pub)

	route, err := d.PlanRoute(context.Background(), PlanRouteRequest{
		DriverID:       uuid.New(),
		DriverLocation: coordPtr(t, 6.50, 3.38),
		DeliveryIDs:    []uuid.UUID{stop.ID},
		Now:            now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	started, err := d.StartRoute(context.Background(), route.ID, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started.Status != domain.RouteActive || started.StartedAt == nil {
		t.Fatalf("route not active after start: %+v", started)
	}
	if stop.Status != domain.DeliveryInTransit {
		t.Fatalf("stop status = %s, want IN_TRANSIT", stop.Status)
	}

	// A started route is locked: starting again must fail.
	if _, err := d.StartRoute(context.Background(), route.ID, now.Add(2*time.Minute)); !errors.Is(err, domain.ErrRouteLocked) {
		t.Fatalf("expected ErrRouteLocked, got %v", err)
	}

	completed, err := d.CompleteRoute(context.Background(), route.ID, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completed.Status != domain.RouteCompleted || completed.CompletedAt == nil {
		t.Fatalf("route not completed: %+v", completed)
	}

	want := []string{ports.EventRoutePlanned, ports.EventRouteStarted, ports.EventRouteCompleted}
	if len(pub.keys) != len(want) {
		t.Fatalf("published events = %v, want %v", pub.keys, want)
	}
	for i, k := range want {
		if pub.keys[i] != k {
			t.Fatalf("event %d = %s, want %s", i, pub.keys[i], k)
		}
	}
}
