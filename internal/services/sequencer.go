package services

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"oxygen-dispatch-service/internal/domain"
	"oxygen-dispatch-service/internal/geo"
)

// Returned when the caller hands more stops than the configured cap.
// The caller must split the batch into multiple routes; the sequencer
// never silently truncates.
var ErrTooManyStops = errors.New("stop count exceeds maximum per route")

// SequenceStops orders deliveries for one driver using a greedy
// nearest-neighbor heuristic over pickup coordinates.
//
// At each step the unvisited stop with the smallest distance from the
// current position is chosen; the position then advances to that stop's
// delivery coordinate. Ties break by earliest creation time, then by ID,
// so the result is deterministic.
//
// This is a greedy approximation, not a traveling-salesman-optimal
// solver. Route sizes are capped small (maxStops), where "good enough,
// fast" beats optimality.
func SequenceStops(driverLocation domain.Coordinate, stops []*domain.DeliveryStop, maxStops int) ([]*domain.DeliveryStop, error) {
	if len(stops) == 0 {
		return []*domain.DeliveryStop{}, nil
	}
	if len(stops) > maxStops {
		return nil, fmt.Errorf("sequence stops: %w: %d > %d", ErrTooManyStops, len(stops), maxStops)
	}

	remaining := slices.Clone(stops)
	current := driverLocation
	ordered := make([]*domain.DeliveryStop, 0, len(stops))

	for len(remaining) > 0 {
		best := 0
		bestDist := geo.DistanceKM(current, remaining[0].Pickup)

		for i := 1; i < len(remaining); i++ {
			d := geo.DistanceKM(current, remaining[i].Pickup)
			if d < bestDist || (d == bestDist && createdBefore(remaining[i], remaining[best])) {
				bestDist = d
				best = i
			}
		}

		next := remaining[best]
		ordered = append(ordered, next)
		current = next.Delivery
		remaining = slices.Delete(remaining, best, best+1)
	}

	return ordered, nil
}

// Tie-breaker: earliest creation wins; equal timestamps fall back to ID
// ordering for determinism.
func createdBefore(a, b *domain.DeliveryStop) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return strings.Compare(a.ID.String(), b.ID.String()) < 0
}
