package usecase_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/errors"
	"github.com/saferoute-service/internal/usecase"
	"github.com/saferoute-service/internal/usecase/dto"
)

func heatmapRequest() dto.HeatmapRequest {
	return dto.HeatmapRequest{
		MinLat: 43.64, MinLon: -79.39,
		MaxLat: 43.66, MaxLon: -79.37,
	}
}

func TestHeatmapUseCase_GetHeatmap(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("samples the density surface over the grid", func(t *testing.T) {
		mockIncidents := &MockIncidentRepository{}
		mockIncidents.On("GetIncidentsInBounds", ctx, mock.Anything).Return([]domain.Incident{
			{Lat: 43.6500, Lon: -79.3800, Weight: 1},
		}, nil)

		uc := usecase.NewHeatmapUseCase(mockIncidents, testConfig(), logger)

		req := heatmapRequest()
		req.Rows = 10
		req.Cols = 20
		resp, err := uc.GetHeatmap(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, 10, resp.Rows)
		assert.Equal(t, 20, resp.Cols)
		require.Len(t, resp.Cells, 10)
		for _, row := range resp.Cells {
			assert.Len(t, row, 20)
		}
		assert.Greater(t, resp.MaxScore, 0.0)

		// Every cell is bounded by the reported maximum.
		for _, row := range resp.Cells {
			for _, score := range row {
				assert.LessOrEqual(t, score, resp.MaxScore)
			}
		}
	})

	t.Run("defaults to a 50x50 grid", func(t *testing.T) {
		mockIncidents := &MockIncidentRepository{}
		mockIncidents.On("GetIncidentsInBounds", ctx, mock.Anything).Return([]domain.Incident{}, nil)

		uc := usecase.NewHeatmapUseCase(mockIncidents, testConfig(), logger)

		resp, err := uc.GetHeatmap(ctx, heatmapRequest())

		require.NoError(t, err)
		assert.Equal(t, 50, resp.Rows)
		assert.Equal(t, 50, resp.Cols)
		assert.Equal(t, 0.0, resp.MaxScore)
	})

	t.Run("single-row grid falls back to the default", func(t *testing.T) {
		mockIncidents := &MockIncidentRepository{}
		mockIncidents.On("GetIncidentsInBounds", ctx, mock.Anything).Return([]domain.Incident{
			{Lat: 43.6500, Lon: -79.3800, Weight: 1},
		}, nil)

		uc := usecase.NewHeatmapUseCase(mockIncidents, testConfig(), logger)

		req := heatmapRequest()
		req.Rows = 1
		req.Cols = 1
		resp, err := uc.GetHeatmap(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, 50, resp.Rows)
		assert.Equal(t, 50, resp.Cols)
		for _, row := range resp.Cells {
			for _, score := range row {
				assert.False(t, math.IsNaN(score))
			}
		}
	})

	t.Run("rejects inverted bounds", func(t *testing.T) {
		uc := usecase.NewHeatmapUseCase(&MockIncidentRepository{}, testConfig(), logger)

		req := heatmapRequest()
		req.MinLat, req.MaxLat = req.MaxLat, req.MinLat
		_, err := uc.GetHeatmap(ctx, req)

		assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)
	})

	t.Run("propagates repository failure", func(t *testing.T) {
		mockIncidents := &MockIncidentRepository{}
		mockIncidents.On("GetIncidentsInBounds", ctx, mock.Anything).Return(nil, errors.ErrDatabaseError)

		uc := usecase.NewHeatmapUseCase(mockIncidents, testConfig(), logger)

		_, err := uc.GetHeatmap(ctx, heatmapRequest())

		assert.ErrorIs(t, err, errors.ErrDatabaseError)
	})
}
