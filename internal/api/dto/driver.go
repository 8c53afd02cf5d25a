package dto

import (
	"time"

	"oxygen-dispatch-service/internal/domain"
)

type CreateDriverRequest struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	VehicleType     string `json:"vehicle_type"`
	VehiclePlate    string `json:"vehicle_plate"`
	VehicleCapacity int    `json:"vehicle_capacity"`
}

type UpdateDriverLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type UpdateDriverStatusRequest struct {
	Status string `json:"status"`
}

type NearestDriverRequest struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Quantity int     `json:"quantity"`
}

type DriverResponse struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone"`
	VehicleType       string     `json:"vehicle_type"`
	VehiclePlate      string     `json:"vehicle_plate"`
	VehicleCapacity   int        `json:"vehicle_capacity"`
	Lat               *float64   `json:"lat"`
	Lng               *float64   `json:"lng"`
	LocationUpdatedAt *time.Time `json:"location_updated_at"`
	Status            string     `json:"status"`
	Rating            float64    `json:"rating"`
	TotalDeliveries   int        `json:"total_deliveries"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type ListDriversResponse struct {
	Drivers []DriverResponse `json:"drivers"`
}

type NearestDriverResponse struct {
	Driver     DriverResponse `json:"driver"`
	DistanceKM float64        `json:"distance_km"`
}

func NewDriverResponse(d *domain.Driver) DriverResponse {
	var lat, lng *float64
	if d.Location != nil {
		lat, lng = &d.Location.Lat, &d.Location.Lng
	}

	return DriverResponse{
		ID:                d.ID.String(),
		Name:              d.Name,
		Phone:             d.Phone,
		VehicleType:       string(d.VehicleType),
		VehiclePlate:      d.VehiclePlate,
		VehicleCapacity:   d.VehicleCapacity,
		Lat:               lat,
		Lng:               lng,
		LocationUpdatedAt: d.LocationUpdatedAt,
		Status:            string(d.Status),
		Rating:            d.Rating,
		TotalDeliveries:   d.TotalDeliveries,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}
