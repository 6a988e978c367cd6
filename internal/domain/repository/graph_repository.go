package repository

import (
	"context"

	"github.com/saferoute-service/internal/domain"
)

// StreetGraphProvider supplies a walkable street network around a center
// point. The core never performs network downloads itself.
type StreetGraphProvider interface {
	FetchNetwork(ctx context.Context, center domain.Point, radiusM float64) (*domain.StreetGraph, error)
}
