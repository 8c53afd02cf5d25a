package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(s), nil
	}
	return "", fmt.Errorf("parse severity: unknown value %q", s)
}

// Rank maps severity to a comparable weight (critical highest).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// A circular geographic region carrying an emergency alert. Zones are
// created by administrators, toggled active/inactive, and never
// physically deleted.
type EmergencyZone struct {
	ID          uuid.UUID
	Name        string
	Description string

	Center   Coordinate
	RadiusKM float64

	Severity     Severity
	IsActive     bool
	AlertMessage string

	CreatedBy     string
	ActivatedAt   *time.Time
	DeactivatedAt *time.Time
	CreatedAt     time.Time
}

// NewEmergencyZone builds an inactive zone. The radius must be strictly
// positive; center coordinates are assumed already validated.
func NewEmergencyZone(name, description string, center Coordinate, radiusKM float64, severity Severity, createdBy string, now time.Time) (*EmergencyZone, error) {
	if radiusKM <= 0 {
		return nil, fmt.Errorf("new emergency zone: radius_km must be > 0, got %v", radiusKM)
	}

	return &EmergencyZone{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Center:      center,
		RadiusKM:    radiusKM,
		Severity:    severity,
		IsActive:    false,
		CreatedBy:   createdBy,
		CreatedAt:   now,
	}, nil
}

// Activate turns the zone live and records the alert message consumed
// by the notification layer.
func (z *EmergencyZone) Activate(alertMessage string, now time.Time) {
	z.IsActive = true
	z.AlertMessage = alertMessage
	z.ActivatedAt = &now
	z.DeactivatedAt = nil
}

func (z *EmergencyZone) Deactivate(now time.Time) {
	z.IsActive = false
	z.DeactivatedAt = &now
}
