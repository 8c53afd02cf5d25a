package geo

import (
	"math"

	"oxygen-dispatch-service/internal/domain"
)

// Mean Earth radius in kilometers.
const earthRadiusKM = 6371.0

// DistanceKM returns the great-circle distance between two coordinates
// using the Haversine formula. The function is symmetric and returns
// zero for equal points. Inputs are assumed validated (see
// domain.NewCoordinate); there are no error conditions here.
func DistanceKM(a, b domain.Coordinate) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Asin(math.Sqrt(h))

	return earthRadiusKM * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
