package dto

import "time"

type ETARequest struct {
	PickupLat   float64 `json:"pickup_lat"`
	PickupLng   float64 `json:"pickup_lng"`
	DeliveryLat float64 `json:"delivery_lat"`
	DeliveryLng float64 `json:"delivery_lng"`
	Priority    string  `json:"priority"`
}

type ETAResponse struct {
	DistanceKM      float64   `json:"distance_km"`
	DurationMinutes int       `json:"estimated_duration_minutes"`
	PickupTime      time.Time `json:"estimated_pickup_time"`
	DeliveryTime    time.Time `json:"estimated_delivery_time"`
	Cached          bool      `json:"cached"`
}
