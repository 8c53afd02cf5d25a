package geo

import (
	"math"
	"testing"

	"oxygen-dispatch-service/internal/domain"
)

func coord(t *testing.T, lat, lng float64) domain.Coordinate {
	t.Helper()
	c, err := domain.NewCoordinate(lat, lng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestDistanceKMSymmetry(t *testing.T) {
	pairs := [][2]domain.Coordinate{
		{coord(t, 6.5244, 3.3792), coord(t, 6.4474, 3.3903)},
		{coord(t, 51.5074, -0.1278), coord(t, 48.8566, 2.3522)},
		{coord(t, -33.8688, 151.2093), coord(t, 35.6762, 139.6503)},
		{coord(t, 0, 0), coord(t, 0, 180)},
	}

	for _, p := range pairs {
		ab := DistanceKM(p[0], p[1])
		ba := DistanceKM(p[1], p[0])
		if ab != ba {
			t.Errorf("distance not symmetric: %v vs %v for %v <-> %v", ab, ba, p[0], p[1])
		}
		if ab < 0 {
			t.Errorf("distance negative: %v", ab)
		}
	}
}

func TestDistanceKMZeroForEqualPoints(t *testing.T) {
	points := []domain.Coordinate{
		coord(t, 0, 0),
		coord(t, 6.5244, 3.3792),
		coord(t, -90, 0),
		coord(t, 90, 180),
	}

	for _, p := range points {
		if d := DistanceKM(p, p); d != 0 {
			t.Errorf("distance(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceKMLagosFixture(t *testing.T) {
	// Victoria Island to an Ikeja-area point; Haversine reference ~8.65 km.
	a := coord(t, 6.5244, 3.3792)
	b := coord(t, 6.4474, 3.3903)

	d := DistanceKM(a, b)
	if math.Abs(d-8.65) > 0.5 {
		t.Fatalf("distance = %v km, want 8.65 +/- 0.5", d)
	}
}

func TestDistanceKMKnownLongHaul(t *testing.T) {
	// London to Paris is roughly 344 km great-circle.
	d := DistanceKM(coord(t, 51.5074, -0.1278), coord(t, 48.8566, 2.3522))
	if d < 330 || d > 360 {
		t.Fatalf("London-Paris distance = %v km, want ~344", d)
	}
}
