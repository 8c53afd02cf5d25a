package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type DriverStatus string

const (
	DriverAvailable DriverStatus = "AVAILABLE"
	DriverBusy      DriverStatus = "BUSY"
	DriverOffDuty   DriverStatus = "OFF_DUTY"
)

func ParseDriverStatus(s string) (DriverStatus, error) {
	switch DriverStatus(s) {
	case DriverAvailable, DriverBusy, DriverOffDuty:
		return DriverStatus(s), nil
	}
	return "", fmt.Errorf("parse driver status: unknown value %q", s)
}

type VehicleType string

const (
	VehicleMotorcycle VehicleType = "MOTORCYCLE"
	VehicleCar        VehicleType = "CAR"
	VehicleVan        VehicleType = "VAN"
	VehicleTruck      VehicleType = "TRUCK"
)

func ParseVehicleType(s string) (VehicleType, error) {
	switch VehicleType(s) {
	case VehicleMotorcycle, VehicleCar, VehicleVan, VehicleTruck:
		return VehicleType(s), nil
	}
	return "", fmt.Errorf("parse vehicle type: unknown value %q", s)
}

// A delivery driver together with the last location they reported.
// Location is nil until the first position update arrives, so proximity
// selection must skip drivers that have never reported one.
type Driver struct {
	ID    uuid.UUID
	Name  string
	Phone string

	VehicleType     VehicleType
	VehiclePlate    string
	VehicleCapacity int

	Location          *Coordinate
	LocationUpdatedAt *time.Time

	Status          DriverStatus
	Rating          float64
	TotalDeliveries int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDriver builds an AVAILABLE driver with the default rating. The
// vehicle capacity is the number of cylinders it can carry and must be
// at least one.
func NewDriver(name, phone string, vehicleType VehicleType, plate string, capacity int, now time.Time) (*Driver, error) {
	if name == "" {
		return nil, fmt.Errorf("new driver: name must not be empty")
	}
	if capacity < 1 {
		return nil, fmt.Errorf("new driver: vehicle capacity must be >= 1, got %d", capacity)
	}

	return &Driver{
		ID:              uuid.New(),
		Name:            name,
		Phone:           phone,
		VehicleType:     vehicleType,
		VehiclePlate:    plate,
		VehicleCapacity: capacity,
		Status:          DriverAvailable,
		Rating:          5.0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (d *Driver) UpdateLocation(c Coordinate, now time.Time) {
	d.Location = &c
	d.LocationUpdatedAt = &now
	d.UpdatedAt = now
}

func (d *Driver) SetStatus(s DriverStatus, now time.Time) {
	d.Status = s
	d.UpdatedAt = now
}
