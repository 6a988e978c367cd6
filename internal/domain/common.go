package domain

import "github.com/saferoute-service/internal/pkg/utils"

type Point struct {
	Lat float64 `json:"lat" db:"lat"`
	Lon float64 `json:"lon" db:"lon"`
}

type BoundingBox struct {
	MinLat float64 `json:"min_lat" db:"min_lat"`
	MinLon float64 `json:"min_lon" db:"min_lon"`
	MaxLat float64 `json:"max_lat" db:"max_lat"`
	MaxLon float64 `json:"max_lon" db:"max_lon"`
}

func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

func (b BoundingBox) Center() Point {
	return Point{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lon: (b.MinLon + b.MaxLon) / 2,
	}
}

// Expand grows the box by bufferM meters on every side. Used to pull in
// incidents just outside the network bounds so edge scores near the boundary
// are not artificially low.
func (b BoundingBox) Expand(bufferM float64) BoundingBox {
	latBuf := bufferM / utils.MetersPerDegreeLat
	lonBuf := bufferM / utils.MetersPerDegreeLon(b.Center().Lat)
	return BoundingBox{
		MinLat: b.MinLat - latBuf,
		MinLon: b.MinLon - lonBuf,
		MaxLat: b.MaxLat + latBuf,
		MaxLon: b.MaxLon + lonBuf,
	}
}
