package risk

import (
	"math"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/errors"
	"github.com/saferoute-service/internal/pkg/utils"
)

// ProximityField scores a point by summing the decayed influence of every
// incident within the influence radius. It is grid-free and quantity
// sensitive: N incidents near a point always outscore a single incident at
// the same distance.
type ProximityField struct {
	radiusM     float64
	decay       DecayFunc
	minBaseline float64

	incidents []domain.Incident
	tree      *kdTree
	fitted    bool
}

func NewProximityField(radiusM float64, decay DecayFunc, minBaseline float64) *ProximityField {
	return &ProximityField{
		radiusM:     radiusM,
		decay:       decay,
		minBaseline: minBaseline,
	}
}

// Fit builds the spatial index over the incident set. A negative incident
// weight rejects the whole batch: silently dropping records would make
// ScoreAt depend on which records happened to survive.
func (f *ProximityField) Fit(incidents []domain.Incident, bounds domain.BoundingBox) error {
	for _, inc := range incidents {
		if inc.Weight < 0 {
			return errors.ErrNegativeIncidentWeight.WithDetails(map[string]interface{}{
				"lat":    inc.Lat,
				"lon":    inc.Lon,
				"weight": inc.Weight,
			})
		}
	}

	f.incidents = make([]domain.Incident, len(incidents))
	copy(f.incidents, incidents)
	for i := range f.incidents {
		if f.incidents[i].Weight == 0 {
			f.incidents[i].Weight = 1.0
		}
	}

	if len(f.incidents) == 0 {
		f.tree = nil
		f.fitted = true
		return nil
	}

	entries := make([]kdEntry, len(f.incidents))
	for i, inc := range f.incidents {
		entries[i] = kdEntry{lat: inc.Lat, lon: inc.Lon, idx: i}
	}
	f.tree = newKDTree(entries)
	f.fitted = true
	return nil
}

// ScoreAt returns the summed decayed influence of all incidents within the
// influence radius of the query point. Incidents beyond the radius contribute
// exactly zero; this hard cutoff bounds the work per query.
func (f *ProximityField) ScoreAt(lat, lon float64) (float64, error) {
	if !f.fitted {
		return 0, errors.ErrNotFitted
	}
	if f.tree == nil {
		return f.minBaseline, nil
	}

	// Degree-space search radius: use the larger of the lat/lon conversions so
	// no in-range incident is missed, then re-check with haversine.
	latRadiusDeg := f.radiusM / utils.MetersPerDegreeLat
	lonRadiusDeg := f.radiusM / utils.MetersPerDegreeLon(lat)
	searchRadiusDeg := math.Max(latRadiusDeg, lonRadiusDeg)

	total := 0.0
	for _, idx := range f.tree.within(lat, lon, searchRadiusDeg) {
		inc := f.incidents[idx]
		d := utils.HaversineDistance(lat, lon, inc.Lat, inc.Lon)
		if d > f.radiusM {
			continue
		}
		total += inc.Weight * f.decay.Apply(d/f.radiusM)
	}

	return math.Max(total, f.minBaseline), nil
}
