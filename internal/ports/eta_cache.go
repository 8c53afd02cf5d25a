package ports

import (
	"context"
	"time"
)

// A cached ETA computation.
type ETARecord struct {
	DistanceKM      float64   `json:"distance_km"`
	DurationMinutes int       `json:"duration_minutes"`
	PickupTime      time.Time `json:"pickup_time"`
	DeliveryTime    time.Time `json:"delivery_time"`
}

// Contract for short-lived caching of ETA results. A miss (or an
// unavailable backend, at the adapter's discretion) returns ok=false,
// never an error the caller must branch on to keep serving.
type ETACache interface {
	Get(ctx context.Context, key string) (ETARecord, bool, error)
	Put(ctx context.Context, key string, rec ETARecord) error
}
