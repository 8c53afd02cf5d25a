package dto

import (
	"time"

	"oxygen-dispatch-service/internal/domain"
)

type CreateZoneRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	CenterLat   float64 `json:"center_lat"`
	CenterLng   float64 `json:"center_lng"`
	RadiusKM    float64 `json:"radius_km"`
	Severity    string  `json:"severity"`
	CreatedBy   string  `json:"created_by"`
}

type ActivateZoneRequest struct {
	AlertMessage string `json:"alert_message"`
}

type CheckZonesRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type ZoneResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	CenterLat     float64    `json:"center_lat"`
	CenterLng     float64    `json:"center_lng"`
	RadiusKM      float64    `json:"radius_km"`
	Severity      string     `json:"severity"`
	IsActive      bool       `json:"is_active"`
	AlertMessage  string     `json:"alert_message,omitempty"`
	CreatedBy     string     `json:"created_by"`
	ActivatedAt   *time.Time `json:"activated_at"`
	DeactivatedAt *time.Time `json:"deactivated_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

type ListZonesResponse struct {
	Zones []ZoneResponse `json:"zones"`
}

func NewZoneResponse(z *domain.EmergencyZone) ZoneResponse {
	return ZoneResponse{
		ID:            z.ID.String(),
		Name:          z.Name,
		Description:   z.Description,
		CenterLat:     z.Center.Lat,
		CenterLng:     z.Center.Lng,
		RadiusKM:      z.RadiusKM,
		Severity:      string(z.Severity),
		IsActive:      z.IsActive,
		AlertMessage:  z.AlertMessage,
		CreatedBy:     z.CreatedBy,
		ActivatedAt:   z.ActivatedAt,
		DeactivatedAt: z.DeactivatedAt,
		CreatedAt:     z.CreatedAt,
	}
}
