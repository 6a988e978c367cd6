package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/domain/repository"
	"github.com/saferoute-service/internal/pkg/errors"
	"github.com/saferoute-service/internal/pkg/utils"
	"go.uber.org/zap"
)

type incidentRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewIncidentRepository(db *DB) repository.IncidentRepository {
	return &incidentRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

type incidentRow struct {
	Lat    float64  `db:"lat"`
	Lon    float64  `db:"lon"`
	Weight *float64 `db:"weight"`
}

// GetIncidentsInBounds loads all incidents inside bounds. Rows with
// coordinates outside the valid geographic range are dropped here with a
// warning so the risk engine only ever sees well-formed records. A NULL
// weight means an unweighted incident and becomes 1.0.
func (r *incidentRepository) GetIncidentsInBounds(ctx context.Context, bounds domain.BoundingBox) ([]domain.Incident, error) {
	query := `
		SELECT lat, lon, weight
		FROM crime_incidents
		WHERE lat BETWEEN $1 AND $2
		  AND lon BETWEEN $3 AND $4
	`

	var rows []incidentRow
	err := r.db.SelectContext(ctx, &rows, query,
		bounds.MinLat, bounds.MaxLat, bounds.MinLon, bounds.MaxLon)
	if err != nil {
		r.logger.Error("Failed to query incidents",
			zap.Float64("min_lat", bounds.MinLat),
			zap.Float64("max_lat", bounds.MaxLat),
			zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	incidents := make([]domain.Incident, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		if !utils.ValidateCoordinates(row.Lat, row.Lon) {
			dropped++
			continue
		}
		weight := 1.0
		if row.Weight != nil {
			weight = *row.Weight
		}
		incidents = append(incidents, domain.Incident{
			Lat:    row.Lat,
			Lon:    row.Lon,
			Weight: weight,
		})
	}

	if dropped > 0 {
		r.logger.Warn("Dropped malformed incident records",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(incidents)))
	}

	return incidents, nil
}

func (r *incidentRepository) CountIncidents(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM crime_incidents`)
	if err != nil {
		r.logger.Error("Failed to count incidents", zap.Error(err))
		return 0, errors.ErrDatabaseError
	}
	return count, nil
}
