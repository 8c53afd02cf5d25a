package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewCoordinateRanges(t *testing.T) {
	valid := [][2]float64{{0, 0}, {-90, -180}, {90, 180}, {6.5244, 3.3792}}
	for _, v := range valid {
		if _, err := NewCoordinate(v[0], v[1]); err != nil {
			t.Errorf("NewCoordinate(%v, %v) unexpected error: %v", v[0], v[1], err)
		}
	}

	invalid := [][2]float64{{91, 0}, {-91, 0}, {0, 181}, {0, -181}, {200, 200}}
	for _, v := range invalid {
		_, err := NewCoordinate(v[0], v[1])
		if !errors.Is(err, ErrInvalidCoordinate) {
			t.Errorf("NewCoordinate(%v, %v) expected ErrInvalidCoordinate, got %v", v[0], v[1], err)
		}
	}
}

func TestDeliveryStatusTransitions(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	d := &DeliveryStop{ID: uuid.New(), Status: DeliveryPending, CreatedAt: now}

	steps := []DeliveryStatus{DeliveryAssigned, DeliveryInTransit, DeliveryDelivered}
	for _, next := range steps {
		if err := d.TransitionTo(next, now); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	if d.ActualPickupTime == nil || d.ActualDeliveryTime == nil {
		t.Fatal("actual pickup/delivery times not recorded")
	}

	// DELIVERED is terminal.
	if err := d.TransitionTo(DeliveryCancelled, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from terminal state, got %v", err)
	}
}

func TestDeliveryStatusRejectsSkips(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	d := &DeliveryStop{ID: uuid.New(), Status: DeliveryPending}

	if err := d.TransitionTo(DeliveryDelivered, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("PENDING -> DELIVERED must be rejected, got %v", err)
	}
	if d.Status != DeliveryPending {
		t.Fatalf("status mutated on rejected transition: %s", d.Status)
	}
}

func TestRouteLifecycleLocking(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r := &Route{ID: uuid.New(), Status: RoutePlanned, CreatedAt: now}

	if err := r.Complete(now); err == nil {
		t.Fatal("completing a PLANNED route must fail")
	}

	if err := r.Start(now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Status != RouteActive || r.StartedAt == nil {
		t.Fatalf("route not active: %+v", r)
	}

	if err := r.Start(now); !errors.Is(err, ErrRouteLocked) {
		t.Fatalf("expected ErrRouteLocked, got %v", err)
	}

	if err := r.Complete(now.Add(time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Status != RouteCompleted || r.CompletedAt == nil {
		t.Fatalf("route not completed: %+v", r)
	}
}

func TestNewEmergencyZoneValidation(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	center, _ := NewCoordinate(6.52, 3.38)

	if _, err := NewEmergencyZone("z", "", center, 0, SeverityLow, "admin", now); err == nil {
		t.Fatal("zero radius must be rejected")
	}
	if _, err := NewEmergencyZone("z", "", center, -3, SeverityLow, "admin", now); err == nil {
		t.Fatal("negative radius must be rejected")
	}

	z, err := NewEmergencyZone("hospital cordon", "gas leak", center, 2.5, SeverityCritical, "admin", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if z.IsActive {
		t.Fatal("new zones must start inactive")
	}

	z.Activate("evacuate the area", now.Add(time.Minute))
	if !z.IsActive || z.ActivatedAt == nil || z.AlertMessage == "" {
		t.Fatalf("activation incomplete: %+v", z)
	}

	z.Deactivate(now.Add(time.Hour))
	if z.IsActive || z.DeactivatedAt == nil {
		t.Fatalf("deactivation incomplete: %+v", z)
	}
}

func TestSeverityRankOrdering(t *testing.T) {
	if !(SeverityCritical.Rank() > SeverityHigh.Rank() &&
		SeverityHigh.Rank() > SeverityMedium.Rank() &&
		SeverityMedium.Rank() > SeverityLow.Rank()) {
		t.Fatal("severity ranks must be strictly ordered critical > high > medium > low")
	}
}

func TestNewDriverValidation(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if _, err := NewDriver("", "+234800", VehicleVan, "LND-1", 4, now); err == nil {
		t.Fatal("empty name must be rejected")
	}
	if _, err := NewDriver("Ngozi", "+234800", VehicleVan, "LND-1", 0, now); err == nil {
		t.Fatal("zero capacity must be rejected")
	}

	d, err := NewDriver("Ngozi", "+234800", VehicleVan, "LND-1", 4, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Status != DriverAvailable || d.Rating != 5.0 {
		t.Fatalf("new driver defaults wrong: %+v", d)
	}
	if d.Location != nil {
		t.Fatal("new drivers must start without a location")
	}

	loc, _ := NewCoordinate(6.52, 3.38)
	d.UpdateLocation(loc, now.Add(time.Minute))
	if d.Location == nil || *d.Location != loc || d.LocationUpdatedAt == nil {
		t.Fatalf("location update incomplete: %+v", d)
	}
}

func TestParseDriverStatus(t *testing.T) {
	for _, s := range []string{"AVAILABLE", "BUSY", "OFF_DUTY"} {
		if _, err := ParseDriverStatus(s); err != nil {
			t.Errorf("ParseDriverStatus(%q) unexpected error: %v", s, err)
		}
	}
	if _, err := ParseDriverStatus("NAPPING"); err == nil {
		t.Error("ParseDriverStatus must reject unknown values")
	}
}

func TestParsePriority(t *testing.T) {
	for _, s := range []string{"NORMAL", "HIGH", "URGENT"} {
		if _, err := ParsePriority(s); err != nil {
			t.Errorf("ParsePriority(%q) unexpected error: %v", s, err)
		}
	}
	if _, err := ParsePriority("ASAP"); err == nil {
		t.Error("ParsePriority must reject unknown values")
	}
}
