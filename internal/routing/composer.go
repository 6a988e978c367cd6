package routing

import (
	"math"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/errors"
)

// WeightComposer turns an edge's physical length and risk score into a single
// traversal cost:
//
//	weight = length * (1 + risk * multiplier)
//	multiplier = (crimeWeight / distanceWeight) * penaltyScale
//
// Risk can only add penalty, never discount, so the composed weight is always
// at least the physical length. Instead of mutating the caller's graph, the
// composer returns a separate edge-key → weight map consumed by the
// pathfinder.
type WeightComposer struct {
	distanceWeight   float64
	crimeWeight      float64
	penaltyScale     float64
	adaptive         bool
	minDetourThreshM float64
}

// NewWeightComposer validates the weight split eagerly: both weights in
// [0,1], summing to 1, with a strictly positive distance weight (a zero
// distance weight would make the multiplier unbounded).
//
// adaptive enables the short-edge policy: edges below minDetourThreshM get
// their effective crime weight blended linearly toward zero to damp erratic
// short-hop detours. It also suppresses legitimate avoidance on short blocks,
// so deployments can run with it off.
func NewWeightComposer(distanceWeight, crimeWeight, penaltyScale float64,
	adaptive bool, minDetourThreshM float64) (*WeightComposer, error) {

	if distanceWeight < 0 || distanceWeight > 1 || crimeWeight < 0 || crimeWeight > 1 {
		return nil, errors.ErrInvalidWeights.WithDetails(map[string]interface{}{
			"distance_weight": distanceWeight,
			"crime_weight":    crimeWeight,
		})
	}
	if math.Abs(distanceWeight+crimeWeight-1.0) > 1e-6 {
		return nil, errors.ErrInvalidWeights.WithDetails(map[string]interface{}{
			"distance_weight": distanceWeight,
			"crime_weight":    crimeWeight,
			"sum":             distanceWeight + crimeWeight,
		})
	}
	if distanceWeight == 0 {
		return nil, errors.ErrInvalidWeights.WithDetails(map[string]interface{}{
			"reason": "distance_weight must be positive",
		})
	}
	if penaltyScale < 0 {
		return nil, errors.ErrInvalidWeights.WithDetails(map[string]interface{}{
			"reason":              "crime_penalty_scale must be non-negative",
			"crime_penalty_scale": penaltyScale,
		})
	}

	return &WeightComposer{
		distanceWeight:   distanceWeight,
		crimeWeight:      crimeWeight,
		penaltyScale:     penaltyScale,
		adaptive:         adaptive,
		minDetourThreshM: minDetourThreshM,
	}, nil
}

// Compose returns the traversal cost for one edge.
func (c *WeightComposer) Compose(lengthM, riskScore float64) float64 {
	cw := c.crimeWeight
	dw := c.distanceWeight

	if c.adaptive && c.minDetourThreshM > 0 && lengthM < c.minDetourThreshM {
		cw = c.crimeWeight * (lengthM / c.minDetourThreshM)
		dw = 1.0 - cw
	}

	if cw == 0 || riskScore <= 0 {
		return lengthM
	}

	multiplier := (cw / dw) * c.penaltyScale
	return lengthM * (1.0 + riskScore*multiplier)
}

// ComposeAll builds the composite weight map for every edge in the graph.
// riskByEdge carries the scorer's per-edge scores; edges without a score are
// priced at pure length.
func (c *WeightComposer) ComposeAll(graph *domain.StreetGraph,
	riskByEdge map[domain.EdgeKey]float64) map[domain.EdgeKey]float64 {

	weights := make(map[domain.EdgeKey]float64, len(graph.Edges))
	for _, e := range graph.Edges {
		weights[e.EdgeKey()] = c.Compose(e.LengthM, riskByEdge[e.EdgeKey()])
	}
	return weights
}
