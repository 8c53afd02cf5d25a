package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidCoordinate = errors.New("coordinate out of range")

// Immutable geographic coordinate (latitude, longitude) in degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// NewCoordinate validates that latitude is within [-90, 90] and
// longitude within [-180, 180]. All coordinates entering the system
// pass through here, so downstream distance math never sees an
// out-of-range point.
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	if lat < -90 || lat > 90 {
		return Coordinate{}, fmt.Errorf("%w: latitude %v must be in [-90, 90]", ErrInvalidCoordinate, lat)
	}
	if lng < -180 || lng > 180 {
		return Coordinate{}, fmt.Errorf("%w: longitude %v must be in [-180, 180]", ErrInvalidCoordinate, lng)
	}
	return Coordinate{Lat: lat, Lng: lng}, nil
}
