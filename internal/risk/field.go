package risk

import (
	"fmt"

	"github.com/saferoute-service/internal/config"
	"github.com/saferoute-service/internal/domain"
)

// Field converts a set of crime incidents into a queryable continuous risk
// function over geographic points. A field is fit once per bounded area and
// reused across many route requests; ScoreAt is a pure function of the fitted
// incidents, the configuration and the query point.
type Field interface {
	Fit(incidents []domain.Incident, bounds domain.BoundingBox) error
	ScoreAt(lat, lon float64) (float64, error)
}

// NewField constructs the configured strategy. Selection is a configuration
// time choice; callers only ever see the Field interface.
func NewField(cfg *config.RoutingConfig) (Field, error) {
	switch cfg.Strategy {
	case "proximity":
		return NewProximityField(cfg.InfluenceRadiusM, DecayFunc(cfg.DecayFunction), cfg.MinBaselineRisk), nil
	case "density":
		return NewDensityField(cfg.KDEBandwidthM), nil
	default:
		return nil, fmt.Errorf("unknown risk strategy %q", cfg.Strategy)
	}
}
