package dto

import (
	"time"

	"oxygen-dispatch-service/internal/domain"
)

type CreateDeliveryRequest struct {
	OrderID             string  `json:"order_id"`
	CustomerID          string  `json:"customer_id"`
	CylinderSize        string  `json:"cylinder_size"`
	Quantity            int     `json:"quantity"`
	Priority            string  `json:"priority"`
	PickupAddress       string  `json:"pickup_address"`
	PickupLat           float64 `json:"pickup_lat"`
	PickupLng           float64 `json:"pickup_lng"`
	DeliveryAddress     string  `json:"delivery_address"`
	DeliveryLat         float64 `json:"delivery_lat"`
	DeliveryLng         float64 `json:"delivery_lng"`
	SpecialInstructions string  `json:"special_instructions"`
}

type UpdateDeliveryStatusRequest struct {
	Status    string `json:"status"`
	UpdatedBy string `json:"updated_by"`
}

type DeliveryResponse struct {
	ID                    string     `json:"id"`
	OrderID               string     `json:"order_id"`
	CustomerID            string     `json:"customer_id"`
	DriverID              *string    `json:"driver_id"`
	CylinderSize          string     `json:"cylinder_size"`
	Quantity              int        `json:"quantity"`
	Priority              string     `json:"priority"`
	Status                string     `json:"status"`
	PickupAddress         string     `json:"pickup_address"`
	PickupLat             float64    `json:"pickup_lat"`
	PickupLng             float64    `json:"pickup_lng"`
	DeliveryAddress       string     `json:"delivery_address"`
	DeliveryLat           float64    `json:"delivery_lat"`
	DeliveryLng           float64    `json:"delivery_lng"`
	DistanceKM            float64    `json:"distance_km"`
	EstimatedPickupTime   *time.Time `json:"estimated_pickup_time"`
	EstimatedDeliveryTime *time.Time `json:"estimated_delivery_time"`
	ActualPickupTime      *time.Time `json:"actual_pickup_time"`
	ActualDeliveryTime    *time.Time `json:"actual_delivery_time"`
	SpecialInstructions   string     `json:"special_instructions,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type TrackingEntryResponse struct {
	Status    string    `json:"status"`
	UpdatedBy string    `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
}

type TrackingHistoryResponse struct {
	DeliveryID string                  `json:"delivery_id"`
	History    []TrackingEntryResponse `json:"history"`
}

type ListDeliveriesResponse struct {
	Deliveries []DeliveryResponse `json:"deliveries"`
}

func NewDeliveryResponse(d *domain.DeliveryStop) DeliveryResponse {
	var driverID *string
	if d.DriverID != nil {
		s := d.DriverID.String()
		driverID = &s
	}

	return DeliveryResponse{
		ID:                    d.ID.String(),
		OrderID:               d.OrderID,
		CustomerID:            d.CustomerID,
		DriverID:              driverID,
		CylinderSize:          d.CylinderSize,
		Quantity:              d.Quantity,
		Priority:              string(d.Priority),
		Status:                string(d.Status),
		PickupAddress:         d.PickupAddress,
		PickupLat:             d.Pickup.Lat,
		PickupLng:             d.Pickup.Lng,
		DeliveryAddress:       d.DeliveryAddress,
		DeliveryLat:           d.Delivery.Lat,
		DeliveryLng:           d.Delivery.Lng,
		DistanceKM:            d.DistanceKM,
		EstimatedPickupTime:   d.EstimatedPickupTime,
		EstimatedDeliveryTime: d.EstimatedDeliveryTime,
		ActualPickupTime:      d.ActualPickupTime,
		ActualDeliveryTime:    d.ActualDeliveryTime,
		SpecialInstructions:   d.SpecialInstructions,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
}
