package dto

import (
	"time"

	"oxygen-dispatch-service/internal/domain"
)

// DriverLat/DriverLng are optional; when omitted the route starts from
// the driver's last reported location.
type PlanRouteRequest struct {
	DriverID    string   `json:"driver_id"`
	DriverLat   *float64 `json:"driver_lat"`
	DriverLng   *float64 `json:"driver_lng"`
	DeliveryIDs []string `json:"delivery_ids"`
	RouteName   string   `json:"route_name"`
}

type WaypointResponse struct {
	Kind   string  `json:"kind"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	StopID *string `json:"stop_id,omitempty"`
}

type RouteResponse struct {
	ID                       string             `json:"id"`
	DriverID                 string             `json:"driver_id"`
	Name                     string             `json:"name"`
	StopIDs                  []string           `json:"stop_ids"`
	Waypoints                []WaypointResponse `json:"waypoints"`
	TotalDistanceKM          float64            `json:"total_distance_km"`
	EstimatedDurationMinutes int                `json:"estimated_duration_minutes"`
	Status                   string             `json:"status"`
	StartedAt                *time.Time         `json:"started_at"`
	CompletedAt              *time.Time         `json:"completed_at"`
	CreatedAt                time.Time          `json:"created_at"`
}

type ListRoutesResponse struct {
	Routes []RouteResponse `json:"routes"`
}

func NewRouteResponse(r *domain.Route) RouteResponse {
	stopIDs := make([]string, 0, len(r.StopIDs))
	for _, id := range r.StopIDs {
		stopIDs = append(stopIDs, id.String())
	}

	waypoints := make([]WaypointResponse, 0, len(r.Waypoints))
	for _, wp := range r.Waypoints {
		var stopID *string
		if wp.StopID != nil {
			s := wp.StopID.String()
			stopID = &s
		}
		waypoints = append(waypoints, WaypointResponse{
			Kind:   string(wp.Kind),
			Lat:    wp.Position.Lat,
			Lng:    wp.Position.Lng,
			StopID: stopID,
		})
	}

	return RouteResponse{
		ID:                       r.ID.String(),
		DriverID:                 r.DriverID.String(),
		Name:                     r.Name,
		StopIDs:                  stopIDs,
		Waypoints:                waypoints,
		TotalDistanceKM:          r.TotalDistanceKM,
		EstimatedDurationMinutes: r.EstimatedDurationMinutes,
		Status:                   string(r.Status),
		StartedAt:                r.StartedAt,
		CompletedAt:              r.CompletedAt,
		CreatedAt:                r.CreatedAt,
	}
}
