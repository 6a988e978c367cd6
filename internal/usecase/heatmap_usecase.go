package usecase

import (
	"context"

	"github.com/saferoute-service/internal/config"
	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/domain/repository"
	"github.com/saferoute-service/internal/pkg/errors"
	"github.com/saferoute-service/internal/pkg/utils"
	"github.com/saferoute-service/internal/risk"
	"github.com/saferoute-service/internal/usecase/dto"
	"go.uber.org/zap"
)

// HeatmapUseCase samples the smooth density surface over a bounding box for
// map overlays. The grid is chosen by the caller and exists only in this
// presentation path; routing decisions never touch it.
type HeatmapUseCase struct {
	incidentRepo repository.IncidentRepository
	cfg          *config.Config
	logger       *zap.Logger
}

func NewHeatmapUseCase(incidentRepo repository.IncidentRepository, cfg *config.Config, logger *zap.Logger) *HeatmapUseCase {
	return &HeatmapUseCase{
		incidentRepo: incidentRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

func (uc *HeatmapUseCase) GetHeatmap(ctx context.Context, req dto.HeatmapRequest) (*dto.HeatmapResponse, error) {
	if req.MinLat >= req.MaxLat || req.MinLon >= req.MaxLon {
		return nil, errors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{
			"reason": "min bounds must be strictly below max bounds",
		})
	}
	if !utils.ValidateCoordinates(req.MinLat, req.MinLon) || !utils.ValidateCoordinates(req.MaxLat, req.MaxLon) {
		return nil, errors.ErrInvalidCoordinates
	}

	// The sampling loops need at least two points per axis to span the box.
	rows := req.Rows
	if rows < 2 {
		rows = 50
	}
	cols := req.Cols
	if cols < 2 {
		cols = 50
	}

	bounds := domain.BoundingBox{
		MinLat: req.MinLat,
		MinLon: req.MinLon,
		MaxLat: req.MaxLat,
		MaxLon: req.MaxLon,
	}

	incidents, err := uc.incidentRepo.GetIncidentsInBounds(ctx, bounds.Expand(uc.cfg.Routing.IncidentBufferM))
	if err != nil {
		uc.logger.Error("Failed to load incidents for heatmap", zap.Error(err))
		return nil, err
	}

	field := risk.NewDensityField(uc.cfg.Routing.KDEBandwidthM)
	if err := field.Fit(incidents, bounds); err != nil {
		return nil, err
	}

	cells := make([][]float64, rows)
	maxScore := 0.0
	for r := 0; r < rows; r++ {
		cells[r] = make([]float64, cols)
		lat := bounds.MinLat + (bounds.MaxLat-bounds.MinLat)*float64(r)/float64(rows-1)
		for c := 0; c < cols; c++ {
			lon := bounds.MinLon + (bounds.MaxLon-bounds.MinLon)*float64(c)/float64(cols-1)
			score, err := field.ScoreAt(lat, lon)
			if err != nil {
				return nil, err
			}
			cells[r][c] = score
			if score > maxScore {
				maxScore = score
			}
		}
	}

	uc.logger.Debug("Heatmap sampled",
		zap.Int("rows", rows),
		zap.Int("cols", cols),
		zap.Int("incidents", len(incidents)),
		zap.Float64("max_score", maxScore),
	)

	return &dto.HeatmapResponse{
		Rows:     rows,
		Cols:     cols,
		MinLat:   bounds.MinLat,
		MinLon:   bounds.MinLon,
		MaxLat:   bounds.MaxLat,
		MaxLon:   bounds.MaxLon,
		MaxScore: maxScore,
		Cells:    cells,
	}, nil
}
