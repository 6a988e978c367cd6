package repository

import (
	"context"

	"github.com/saferoute-service/internal/domain"
)

// IncidentRepository supplies crime incidents for a geographic area.
// Implementations must reject malformed records (missing coordinates,
// coordinates outside a sane envelope) at load time; the risk engine assumes
// every incident it receives is well-formed.
type IncidentRepository interface {
	GetIncidentsInBounds(ctx context.Context, bounds domain.BoundingBox) ([]domain.Incident, error)
	CountIncidents(ctx context.Context) (int, error)
}
