package utils

import "math"

const (
	earthRadiusM = 6371000.0

	// MetersPerDegreeLat is effectively constant; longitude shrinks with cos(lat).
	MetersPerDegreeLat = 111320.0
)

// HaversineDistance returns the great-circle distance between two points in meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// MetersPerDegreeLon returns the longitude scale at the given latitude.
func MetersPerDegreeLon(lat float64) float64 {
	return MetersPerDegreeLat * math.Cos(lat*math.Pi/180.0)
}

// Interpolate returns the point at fraction t (0..1) along the segment
// from (lat1, lon1) to (lat2, lon2). Linear in coordinate space, which is
// accurate enough at street-segment scale.
func Interpolate(lat1, lon1, lat2, lon2, t float64) (float64, float64) {
	return lat1 + (lat2-lat1)*t, lon1 + (lon2-lon1)*t
}

// ValidateCoordinates checks that a point is a real geographic coordinate.
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
