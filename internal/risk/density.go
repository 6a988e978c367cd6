package risk

import (
	"math"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/errors"
	"github.com/saferoute-service/internal/pkg/utils"
)

// DensityField is a smooth Gaussian-kernel risk surface used for heatmap
// rendering. ScoreAt evaluates the kernel sum directly at the query point, so
// the result never depends on any evaluation grid; a grid only appears when a
// presentation layer chooses where to sample.
//
// Routing uses ProximityField; this strategy exists for visualization.
type DensityField struct {
	bandwidthM float64

	incidents []domain.Incident
	fitted    bool
}

func NewDensityField(bandwidthM float64) *DensityField {
	return &DensityField{bandwidthM: bandwidthM}
}

func (f *DensityField) Fit(incidents []domain.Incident, bounds domain.BoundingBox) error {
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
	f.fitted = true
	return nil
}

// ScoreAt sums the Gaussian kernel over every incident. O(N) per query is
// acceptable here: heatmap sampling is batched and off the routing path.
func (f *DensityField) ScoreAt(lat, lon float64) (float64, error) {
	if !f.fitted {
		return 0, errors.ErrNotFitted
	}

	twoSigmaSq := 2 * f.bandwidthM * f.bandwidthM
	total := 0.0
	for _, inc := range f.incidents {
		d := utils.HaversineDistance(lat, lon, inc.Lat, inc.Lon)
		total += inc.Weight * math.Exp(-d*d/twoSigmaSq)
	}
	return total, nil
}
