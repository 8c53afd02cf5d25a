package services

import (
	"slices"

	"oxygen-dispatch-service/internal/domain"
	"oxygen-dispatch-service/internal/geo"
)

// ZonesContaining returns the active emergency zones whose radius covers
// the given point, ordered by severity descending (critical first).
// Zones of equal severity order by most recent activation. Inactive
// zones are excluded even when the point is geometrically inside.
//
// The result is informational: raising alerts from a zone's
// AlertMessage is the notification layer's job, not this function's.
func ZonesContaining(point domain.Coordinate, zones []*domain.EmergencyZone) []*domain.EmergencyZone {
	matched := make([]*domain.EmergencyZone, 0, len(zones))
	for _, z := range zones {
		if !z.IsActive {
			continue
		}
		if geo.DistanceKM(point, z.Center) <= z.RadiusKM {
			matched = append(matched, z)
		}
	}

	slices.SortStableFunc(matched, func(a, b *domain.EmergencyZone) int {
		if d := b.Severity.Rank() - a.Severity.Rank(); d != 0 {
			return d
		}
		return compareActivation(a, b)
	})

	return matched
}

// Most recently activated first; zones without an activation timestamp
// sort last within their severity.
func compareActivation(a, b *domain.EmergencyZone) int {
	switch {
	case a.ActivatedAt == nil && b.ActivatedAt == nil:
		return 0
	case a.ActivatedAt == nil:
		return 1
	case b.ActivatedAt == nil:
		return -1
	case a.ActivatedAt.After(*b.ActivatedAt):
		return -1
	case b.ActivatedAt.After(*a.ActivatedAt):
		return 1
	}
	return 0
}
