package risk

import (
	"fmt"
	"sync"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/utils"
	"go.uber.org/zap"
)

// EdgeScorer samples a street edge's geometry, queries the risk field at each
// sample and aggregates by arithmetic mean, so an edge's score stays
// independent of its length (length is priced separately by the composer).
// Scores are cached per edge identity; the cache is valid only for the current
// fit of the field. The route pipeline fits one field per network cell and
// never refits it, so there the cache lives as long as the scorer. A caller
// that does refit a field in place must call Invalidate afterwards.
type EdgeScorer struct {
	field       Field
	sampleCount int
	intervalM   float64
	logger      *zap.Logger

	mu    sync.RWMutex
	cache map[domain.EdgeKey]float64
}

func NewEdgeScorer(field Field, sampleCount int, intervalM float64, logger *zap.Logger) *EdgeScorer {
	return &EdgeScorer{
		field:       field,
		sampleCount: sampleCount,
		intervalM:   intervalM,
		logger:      logger,
		cache:       make(map[domain.EdgeKey]float64),
	}
}

// ScoreEdge returns the mean risk across sample points along the edge
// geometry. A repeated call with the same identity returns the cached value
// without resampling.
func (s *EdgeScorer) ScoreEdge(geometry []domain.Point, key domain.EdgeKey) (float64, error) {
	s.mu.RLock()
	if score, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return score, nil
	}
	s.mu.RUnlock()

	samples, err := s.samplePoints(geometry)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, p := range samples {
		score, err := s.field.ScoreAt(p.Lat, p.Lon)
		if err != nil {
			return 0, err
		}
		total += score
	}
	score := total / float64(len(samples))

	s.mu.Lock()
	s.cache[key] = score
	s.mu.Unlock()

	return score, nil
}

// Invalidate drops every cached edge score. Required after refitting the
// underlying field in place; unused when each fit gets a fresh scorer, as the
// route pipeline does per network cell.
func (s *EdgeScorer) Invalidate() {
	s.mu.Lock()
	n := len(s.cache)
	s.cache = make(map[domain.EdgeKey]float64)
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("Edge score cache invalidated", zap.Int("entries_dropped", n))
	}
}

// CacheSize reports the number of cached edge scores.
func (s *EdgeScorer) CacheSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// samplePoints generates the evaluation points for one edge. Straight edges
// (two vertices) get sampleCount evenly spaced points, endpoints included;
// sampleCount of 1 means the midpoint alone. Polylines are sampled every
// intervalM meters along cumulative arc length, always including both
// endpoints.
func (s *EdgeScorer) samplePoints(geometry []domain.Point) ([]domain.Point, error) {
	if len(geometry) < 2 {
		return nil, fmt.Errorf("edge geometry needs at least 2 vertices, got %d", len(geometry))
	}

	if len(geometry) == 2 {
		a, b := geometry[0], geometry[1]
		if s.sampleCount == 1 {
			lat, lon := utils.Interpolate(a.Lat, a.Lon, b.Lat, b.Lon, 0.5)
			return []domain.Point{{Lat: lat, Lon: lon}}, nil
		}
		samples := make([]domain.Point, s.sampleCount)
		for i := 0; i < s.sampleCount; i++ {
			t := float64(i) / float64(s.sampleCount-1)
			lat, lon := utils.Interpolate(a.Lat, a.Lon, b.Lat, b.Lon, t)
			samples[i] = domain.Point{Lat: lat, Lon: lon}
		}
		return samples, nil
	}

	// Cumulative arc length along the polyline.
	cum := make([]float64, len(geometry))
	for i := 1; i < len(geometry); i++ {
		seg := utils.HaversineDistance(
			geometry[i-1].Lat, geometry[i-1].Lon,
			geometry[i].Lat, geometry[i].Lon,
		)
		cum[i] = cum[i-1] + seg
	}
	total := cum[len(cum)-1]
	if total == 0 {
		return []domain.Point{geometry[0]}, nil
	}

	numSamples := int(total/s.intervalM) + 1
	if numSamples < 2 {
		numSamples = 2
	}

	samples := make([]domain.Point, 0, numSamples)
	for i := 0; i < numSamples; i++ {
		target := total * float64(i) / float64(numSamples-1)
		samples = append(samples, pointAlong(geometry, cum, target))
	}
	return samples, nil
}

// pointAlong walks the polyline to the vertex pair bracketing target arc
// length and interpolates within it.
func pointAlong(geometry []domain.Point, cum []float64, target float64) domain.Point {
	if target <= 0 {
		return geometry[0]
	}
	last := len(geometry) - 1
	if target >= cum[last] {
		return geometry[last]
	}

	for i := 1; i < len(geometry); i++ {
		if cum[i] >= target {
			segLen := cum[i] - cum[i-1]
			t := 0.0
			if segLen > 0 {
				t = (target - cum[i-1]) / segLen
			}
			lat, lon := utils.Interpolate(
				geometry[i-1].Lat, geometry[i-1].Lon,
				geometry[i].Lat, geometry[i].Lon, t,
			)
			return domain.Point{Lat: lat, Lon: lon}
		}
	}
	return geometry[last]
}
