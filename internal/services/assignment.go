package services

import (
	"slices"
	"strings"

	"oxygen-dispatch-service/internal/domain"
	"oxygen-dispatch-service/internal/geo"
)

// AvailableDriversNear returns the AVAILABLE drivers with a known
// location within maxDistanceKM of the point, closest first. Drivers
// that never reported a position are skipped.
func AvailableDriversNear(point domain.Coordinate, drivers []*domain.Driver, maxDistanceKM float64) []*domain.Driver {
	nearby := make([]*domain.Driver, 0, len(drivers))
	for _, d := range drivers {
		if d.Status != domain.DriverAvailable || d.Location == nil {
			continue
		}
		if geo.DistanceKM(point, *d.Location) <= maxDistanceKM {
			nearby = append(nearby, d)
		}
	}

	slices.SortStableFunc(nearby, func(a, b *domain.Driver) int {
		da := geo.DistanceKM(point, *a.Location)
		db := geo.DistanceKM(point, *b.Location)
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	return nearby
}

// BestDriver picks the most suitable driver for a pickup: among the
// available drivers in range whose vehicle fits the quantity, it scores
// each one on proximity, rating, and delivery experience (weighted
// 0.4/0.4/0.2) and returns the highest scorer. Returns nil when no
// driver qualifies.
func BestDriver(pickup domain.Coordinate, drivers []*domain.Driver, quantity int, maxDistanceKM float64) *domain.Driver {
	candidates := AvailableDriversNear(pickup, drivers, maxDistanceKM)

	var (
		best      *domain.Driver
		bestScore float64
		bestDist  float64
	)
	for _, d := range candidates {
		if d.VehicleCapacity < quantity {
			continue
		}

		dist := geo.DistanceKM(pickup, *d.Location)
		score := driverScore(d, dist)

		if best == nil || score > bestScore || (score == bestScore && dist < bestDist) {
			best = d
			bestScore = score
			bestDist = dist
		}
	}
	return best
}

func driverScore(d *domain.Driver, distanceKM float64) float64 {
	distanceScore := 100 - distanceKM*2
	if distanceScore < 0 {
		distanceScore = 0
	}

	ratingScore := d.Rating * 20

	experienceScore := float64(d.TotalDeliveries) * 2
	if experienceScore > 100 {
		experienceScore = 100
	}

	return distanceScore*0.4 + ratingScore*0.4 + experienceScore*0.2
}
