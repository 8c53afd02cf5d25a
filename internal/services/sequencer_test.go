package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"oxygen-dispatch-service/internal/domain"
	"oxygen-dispatch-service/internal/geo"
)

func testStop(t *testing.T, pickupLat, pickupLng, deliveryLat, deliveryLng float64, createdAt time.Time) *domain.DeliveryStop {
	t.Helper()
	return &domain.DeliveryStop{
		ID:        uuid.New(),
		Priority:  domain.PriorityNormal,
		Status:    domain.DeliveryPending,
		Pickup:    mustCoord(t, pickupLat, pickupLng),
		Delivery:  mustCoord(t, deliveryLat, deliveryLng),
		CreatedAt: createdAt,
	}
}

func TestSequenceStopsEmptyInput(t *testing.T) {
	out, err := SequenceStops(mustCoord(t, 6.5, 3.38), nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty sequence, got %d stops", len(out))
	}
}

func TestSequenceStopsCapExceeded(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	stops := make([]*domain.DeliveryStop, 0, 3)
	for i := 0; i < 3; i++ {
		stops = append(stops, testStop(t, 6.5, 3.38, 6.6, 3.40, now))
	}

	_, err := SequenceStops(mustCoord(t, 6.5, 3.38), stops, 2)
	if !errors.Is(err, ErrTooManyStops) {
		t.Fatalf("expected ErrTooManyStops, got %v", err)
	}
}

func TestSequenceStopsVisitsNearestFirst(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	driver := mustCoord(t, 6.50, 3.38)

	// Pickups at increasing distance from the driver.
	near := testStop(t, 6.51, 3.38, 6.52, 3.39, now)
	mid := testStop(t, 6.60, 3.38, 6.61, 3.39, now)
	far := testStop(t, 6.80, 3.38, 6.81, 3.39, now)

	out, err := SequenceStops(driver, []*domain.DeliveryStop{far, near, mid}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(out))
	}

	if out[0].ID != near.ID {
		t.Fatalf("first stop = %v, want nearest %v", out[0].ID, near.ID)
	}

	// The first stop must have minimal pickup distance among all inputs.
	first := geo.DistanceKM(driver, out[0].Pickup)
	for _, s := range []*domain.DeliveryStop{near, mid, far} {
		if geo.DistanceKM(driver, s.Pickup) < first {
			t.Fatalf("stop %v is closer than the chosen first stop", s.ID)
		}
	}
}

func TestSequenceStopsPreservesSetMembership(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	stops := []*domain.DeliveryStop{
		testStop(t, 6.80, 3.38, 6.81, 3.39, now),
		testStop(t, 6.51, 3.38, 6.52, 3.39, now.Add(time.Minute)),
		testStop(t, 6.60, 3.45, 6.61, 3.46, now.Add(2*time.Minute)),
		testStop(t, 6.40, 3.30, 6.41, 3.31, now.Add(3*time.Minute)),
	}

	out, err := SequenceStops(mustCoord(t, 6.50, 3.38), stops, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[uuid.UUID]bool{}
	for _, s := range out {
		if seen[s.ID] {
			t.Fatalf("duplicate stop %v in output", s.ID)
		}
		seen[s.ID] = true
	}

	if len(seen) != len(stops) {
		t.Fatalf("output has %d unique stops, want %d", len(seen), len(stops))
	}
	for _, s := range stops {
		if !seen[s.ID] {
			t.Fatalf("stop %v missing from output", s.ID)
		}
	}
}

func TestSequenceStopsTieBreakByCreationOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Identical pickup coordinates: distance ties, creation order decides.
	older := testStop(t, 6.55, 3.40, 6.90, 3.50, now)
	newer := testStop(t, 6.55, 3.40, 6.56, 3.41, now.Add(time.Hour))

	out, err := SequenceStops(mustCoord(t, 6.50, 3.38), []*domain.DeliveryStop{newer, older}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out[0].ID != older.ID {
		t.Fatalf("expected the earlier-created stop first, got %v", out[0].ID)
	}
}
