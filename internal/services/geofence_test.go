package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"oxygen-dispatch-service/internal/domain"
)

func testZone(t *testing.T, lat, lng, radiusKM float64, severity domain.Severity, active bool, activatedAt *time.Time) *domain.EmergencyZone {
	t.Helper()
	return &domain.EmergencyZone{
		ID:          uuid.New(),
		Name:        string(severity) + " zone",
		Center:      mustCoord(t, lat, lng),
		RadiusKM:    radiusKM,
		Severity:    severity,
		IsActive:    active,
		ActivatedAt: activatedAt,
	}
}

func TestZonesContainingExcludesInactive(t *testing.T) {
	point := mustCoord(t, 6.52, 3.38)
	when := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Point is geometrically inside both; only the active one qualifies.
	active := testZone(t, 6.52, 3.38, 10, domain.SeverityHigh, true, &when)
	inactive := testZone(t, 6.52, 3.38, 10, domain.SeverityCritical, false, nil)

	out := ZonesContaining(point, []*domain.EmergencyZone{inactive, active})

	if len(out) != 1 {
		t.Fatalf("expected 1 zone, got %d", len(out))
	}
	if out[0].ID != active.ID {
		t.Fatalf("expected the active zone, got %v", out[0].ID)
	}
}

func TestZonesContainingExcludesOutOfRadius(t *testing.T) {
	point := mustCoord(t, 6.52, 3.38)
	when := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Center ~85 km away with a 5 km radius cannot contain the point.
	farAway := testZone(t, 7.28, 3.38, 5, domain.SeverityCritical, true, &when)

	if out := ZonesContaining(point, []*domain.EmergencyZone{farAway}); len(out) != 0 {
		t.Fatalf("expected no zones, got %d", len(out))
	}
}

func TestZonesContainingSeverityOrdering(t *testing.T) {
	point := mustCoord(t, 6.52, 3.38)
	when := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	low := testZone(t, 6.52, 3.38, 20, domain.SeverityLow, true, &when)
	critical := testZone(t, 6.53, 3.38, 20, domain.SeverityCritical, true, &when)
	medium := testZone(t, 6.51, 3.38, 20, domain.SeverityMedium, true, &when)

	out := ZonesContaining(point, []*domain.EmergencyZone{low, critical, medium})

	if len(out) != 3 {
		t.Fatalf("expected 3 zones, got %d", len(out))
	}
	want := []domain.Severity{domain.SeverityCritical, domain.SeverityMedium, domain.SeverityLow}
	for i, sev := range want {
		if out[i].Severity != sev {
			t.Fatalf("position %d: severity = %s, want %s", i, out[i].Severity, sev)
		}
	}
}

func TestZonesContainingTieBreakByActivation(t *testing.T) {
	point := mustCoord(t, 6.52, 3.38)
	earlier := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	later := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first := testZone(t, 6.52, 3.38, 20, domain.SeverityHigh, true, &earlier)
	second := testZone(t, 6.53, 3.38, 20, domain.SeverityHigh, true, &later)

	out := ZonesContaining(point, []*domain.EmergencyZone{first, second})

	if len(out) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(out))
	}
	if out[0].ID != second.ID {
		t.Fatalf("expected the most recently activated zone first")
	}
}

func TestZonesContainingBoundaryInclusive(t *testing.T) {
	center := mustCoord(t, 6.52, 3.38)
	when := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Point at the zone center: distance 0 <= any positive radius.
	zone := testZone(t, 6.52, 3.38, 0.5, domain.SeverityMedium, true, &when)
	if out := ZonesContaining(center, []*domain.EmergencyZone{zone}); len(out) != 1 {
		t.Fatalf("center point must be contained, got %d zones", len(out))
	}
}
