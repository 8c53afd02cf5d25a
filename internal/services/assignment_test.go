package services

import (
	"testing"
	"time"

	"oxygen-dispatch-service/internal/domain"
)

func testDriver(t *testing.T, lat, lng float64, status domain.DriverStatus, capacity int) *domain.Driver {
	t.Helper()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	d, err := domain.NewDriver("driver", "+2348000000000", domain.VehicleVan, "LND-000-AA", capacity, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d.UpdateLocation(mustCoord(t, lat, lng), now)
	d.Status = status
	return d
}

func TestAvailableDriversNearSortsByDistance(t *testing.T) {
	pickup := mustCoord(t, 6.50, 3.38)

	near := testDriver(t, 6.51, 3.38, domain.DriverAvailable, 8)
	mid := testDriver(t, 6.60, 3.38, domain.DriverAvailable, 8)
	far := testDriver(t, 6.80, 3.38, domain.DriverAvailable, 8)

	out := AvailableDriversNear(pickup, []*domain.Driver{far, near, mid}, 50)

	if len(out) != 3 {
		t.Fatalf("expected 3 drivers, got %d", len(out))
	}
	if out[0].ID != near.ID || out[1].ID != mid.ID || out[2].ID != far.ID {
		t.Fatalf("drivers not sorted closest first: %v", []any{out[0].ID, out[1].ID, out[2].ID})
	}
}

func TestAvailableDriversNearFilters(t *testing.T) {
	pickup := mustCoord(t, 6.50, 3.38)

	busy := testDriver(t, 6.51, 3.38, domain.DriverBusy, 8)
	offDuty := testDriver(t, 6.51, 3.38, domain.DriverOffDuty, 8)
	outOfRange := testDriver(t, 7.50, 3.38, domain.DriverAvailable, 8)
	noLocation := testDriver(t, 6.51, 3.38, domain.DriverAvailable, 8)
	noLocation.Location = nil
	ok := testDriver(t, 6.52, 3.38, domain.DriverAvailable, 8)

	out := AvailableDriversNear(pickup, []*domain.Driver{busy, offDuty, outOfRange, noLocation, ok}, 50)

	if len(out) != 1 || out[0].ID != ok.ID {
		t.Fatalf("expected only the in-range available driver, got %d", len(out))
	}
}

func TestBestDriverSkipsInsufficientCapacity(t *testing.T) {
	pickup := mustCoord(t, 6.50, 3.38)

	small := testDriver(t, 6.51, 3.38, domain.DriverAvailable, 2)
	large := testDriver(t, 6.60, 3.38, domain.DriverAvailable, 10)

	best := BestDriver(pickup, []*domain.Driver{small, large}, 5, 50)
	if best == nil || best.ID != large.ID {
		t.Fatal("expected the driver whose vehicle fits the quantity")
	}
}

func TestBestDriverPrefersRatingOverSmallDistanceEdge(t *testing.T) {
	pickup := mustCoord(t, 6.50, 3.38)

	// ~1 km closer but rated far lower; the weighted score favors the
	// better-rated driver.
	closeLowRated := testDriver(t, 6.505, 3.38, domain.DriverAvailable, 8)
	closeLowRated.Rating = 2.0
	fartherTopRated := testDriver(t, 6.52, 3.38, domain.DriverAvailable, 8)

	best := BestDriver(pickup, []*domain.Driver{closeLowRated, fartherTopRated}, 1, 50)
	if best == nil || best.ID != fartherTopRated.ID {
		t.Fatal("expected the higher-rated driver to win over a ~1 km distance edge")
	}
}

func TestBestDriverNilWhenNoneQualify(t *testing.T) {
	pickup := mustCoord(t, 6.50, 3.38)

	if best := BestDriver(pickup, nil, 1, 50); best != nil {
		t.Fatalf("expected nil for empty input, got %v", best.ID)
	}

	busy := testDriver(t, 6.51, 3.38, domain.DriverBusy, 8)
	if best := BestDriver(pickup, []*domain.Driver{busy}, 1, 50); best != nil {
		t.Fatalf("expected nil when no driver is available, got %v", best.ID)
	}
}
