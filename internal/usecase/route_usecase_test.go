package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saferoute-service/internal/config"
	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/errors"
	"github.com/saferoute-service/internal/usecase"
	"github.com/saferoute-service/internal/usecase/dto"
)

// MockStreetGraphProvider is a mock of StreetGraphProvider
type MockStreetGraphProvider struct {
	mock.Mock
}

func (m *MockStreetGraphProvider) FetchNetwork(ctx context.Context, center domain.Point, radiusM float64) (*domain.StreetGraph, error) {
	args := m.Called(ctx, center, radiusM)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StreetGraph), args.Error(1)
}

// MockIncidentRepository is a mock of IncidentRepository
type MockIncidentRepository struct {
	mock.Mock
}

func (m *MockIncidentRepository) GetIncidentsInBounds(ctx context.Context, bounds domain.BoundingBox) ([]domain.Incident, error) {
	args := m.Called(ctx, bounds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Incident), args.Error(1)
}

func (m *MockIncidentRepository) CountIncidents(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) GetNetwork(ctx context.Context, key string) (*domain.StreetGraph, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StreetGraph), args.Error(1)
}

func (m *MockCacheRepository) SetNetwork(ctx context.Context, key string, graph *domain.StreetGraph, ttl time.Duration) error {
	args := m.Called(ctx, key, graph, ttl)
	return args.Error(0)
}

func testConfig() *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{
			NetworkCacheTTL: 24 * time.Hour,
		},
		Routing: config.RoutingConfig{
			Strategy:            "proximity",
			InfluenceRadiusM:    50,
			DecayFunction:       "linear",
			MinBaselineRisk:     0,
			KDEBandwidthM:       200,
			DistanceWeight:      0.7,
			CrimeWeight:         0.3,
			CrimePenaltyScale:   1.0,
			AdaptiveWeighting:   false,
			MinDetourThreshM:    200,
			SafestCrimeWeight:   0.7,
			EdgeSampleCount:     3,
			EdgeSampleIntervalM: 25,
			MinNetworkRadiusM:   800,
			MaxNetworkRadiusM:   5000,
			NetworkBufferFactor: 0.8,
			IncidentBufferM:     500,
			EnvelopeMinLat:      43.0,
			EnvelopeMaxLat:      44.5,
			EnvelopeMinLon:      -80.5,
			EnvelopeMaxLon:      -78.5,
		},
	}
}

// testGraph builds a diamond street network: short path 1-2-4 and longer path
// 1-3-4 between the request endpoints.
func testGraph() *domain.StreetGraph {
	g := domain.NewStreetGraph()
	g.AddNode(&domain.Node{ID: 1, Lat: 43.6495, Lon: -79.3800})
	g.AddNode(&domain.Node{ID: 2, Lat: 43.6500, Lon: -79.3800})
	g.AddNode(&domain.Node{ID: 3, Lat: 43.6500, Lon: -79.3780})
	g.AddNode(&domain.Node{ID: 4, Lat: 43.6505, Lon: -79.3800})

	add := func(u, v int64, length float64) {
		uNode, vNode := g.Nodes[u], g.Nodes[v]
		g.AddEdge(&domain.Edge{U: u, V: v, LengthM: length, Geometry: []domain.Point{
			{Lat: uNode.Lat, Lon: uNode.Lon},
			{Lat: vNode.Lat, Lon: vNode.Lon},
		}})
		g.AddEdge(&domain.Edge{U: v, V: u, LengthM: length, Geometry: []domain.Point{
			{Lat: vNode.Lat, Lon: vNode.Lon},
			{Lat: uNode.Lat, Lon: uNode.Lon},
		}})
	}
	add(1, 2, 100)
	add(2, 4, 100)
	add(1, 3, 120)
	add(3, 4, 120)
	return g
}

func computeRequest() dto.ComputeRouteRequest {
	return dto.ComputeRouteRequest{
		Start: dto.Coordinate{Lat: 43.6495, Lon: -79.3800},
		End:   dto.Coordinate{Lat: 43.6505, Lon: -79.3800},
	}
}

func TestRouteUseCase_ComputeRoute(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("detours around an incident cluster", func(t *testing.T) {
		mockProvider := &MockStreetGraphProvider{}
		mockIncidents := &MockIncidentRepository{}
		mockCache := &MockCacheRepository{}

		incidents := make([]domain.Incident, 5)
		for i := range incidents {
			incidents[i] = domain.Incident{Lat: 43.6500, Lon: -79.3800, Weight: 1}
		}

		mockCache.On("Get", ctx, mock.Anything).Return(nil, nil)
		mockCache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		mockCache.On("GetNetwork", ctx, mock.Anything).Return(nil, nil)
		mockCache.On("SetNetwork", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		mockProvider.On("FetchNetwork", ctx, mock.Anything, mock.Anything).Return(testGraph(), nil)
		mockIncidents.On("GetIncidentsInBounds", ctx, mock.Anything).Return(incidents, nil)

		uc := usecase.NewRouteUseCase(mockProvider, mockIncidents, mockCache, testConfig(), logger)

		resp, err := uc.ComputeRoute(ctx, computeRequest())

		require.NoError(t, err)
		assert.Equal(t, "crime_aware", resp.Mode)
		assert.Equal(t, []int64{1, 2, 4}, resp.Baseline.Nodes)
		assert.Equal(t, []int64{1, 3, 4}, resp.Route.Nodes)
		assert.Greater(t, resp.Comparison.RiskReduction, 0.0)
		assert.Greater(t, resp.Comparison.DistanceIncreaseM, 0.0)
		assert.False(t, resp.Route.Degraded)
	})

	t.Run("shortest mode returns the baseline as the route", func(t *testing.T) {
		mockProvider := &MockStreetGraphProvider{}
		mockIncidents := &MockIncidentRepository{}
		mockCache := &MockCacheRepository{}

		mockCache.On("Get", ctx, mock.Anything).Return(nil, nil)
		mockCache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		mockCache.On("GetNetwork", ctx, mock.Anything).Return(nil, nil)
		mockCache.On("SetNetwork", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		mockProvider.On("FetchNetwork", ctx, mock.Anything, mock.Anything).Return(testGraph(), nil)
		mockIncidents.On("GetIncidentsInBounds", ctx, mock.Anything).Return([]domain.Incident{
			{Lat: 43.6500, Lon: -79.3800, Weight: 1},
		}, nil)

		uc := usecase.NewRouteUseCase(mockProvider, mockIncidents, mockCache, testConfig(), logger)

		req := computeRequest()
		req.Mode = "shortest"
		resp, err := uc.ComputeRoute(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, resp.Baseline, resp.Route)
		assert.Equal(t, 0.0, resp.Comparison.DistanceIncreaseM)
	})

	t.Run("coordinates outside envelope are rejected", func(t *testing.T) {
		uc := usecase.NewRouteUseCase(&MockStreetGraphProvider{}, &MockIncidentRepository{},
			&MockCacheRepository{}, testConfig(), logger)

		req := computeRequest()
		req.Start = dto.Coordinate{Lat: 51.5, Lon: -0.12} // London

		_, err := uc.ComputeRoute(ctx, req)

		assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)
	})

	t.Run("request weights not summing to one are rejected", func(t *testing.T) {
		uc := usecase.NewRouteUseCase(&MockStreetGraphProvider{}, &MockIncidentRepository{},
			&MockCacheRepository{}, testConfig(), logger)

		req := computeRequest()
		dw, cw := 0.9, 0.9
		req.DistanceWeight = &dw
		req.CrimeWeight = &cw

		_, err := uc.ComputeRoute(ctx, req)

		assert.ErrorIs(t, err, errors.ErrInvalidWeights)
	})

	t.Run("single weight is complemented", func(t *testing.T) {
		mockProvider := &MockStreetGraphProvider{}
		mockIncidents := &MockIncidentRepository{}
		mockCache := &MockCacheRepository{}

		mockCache.On("Get", ctx, mock.Anything).Return(nil, nil)
		mockCache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		mockCache.On("GetNetwork", ctx, mock.Anything).Return(nil, nil)
		mockCache.On("SetNetwork", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		mockProvider.On("FetchNetwork", ctx, mock.Anything, mock.Anything).Return(testGraph(), nil)
		mockIncidents.On("GetIncidentsInBounds", ctx, mock.Anything).Return([]domain.Incident{}, nil)

		uc := usecase.NewRouteUseCase(mockProvider, mockIncidents, mockCache, testConfig(), logger)

		req := computeRequest()
		cw := 0.4
		req.CrimeWeight = &cw

		_, err := uc.ComputeRoute(ctx, req)

		assert.NoError(t, err)
	})

	t.Run("provider failure surfaces as data unavailable", func(t *testing.T) {
		mockProvider := &MockStreetGraphProvider{}
		mockCache := &MockCacheRepository{}

		mockCache.On("Get", ctx, mock.Anything).Return(nil, nil)
		mockCache.On("GetNetwork", ctx, mock.Anything).Return(nil, nil)
		mockProvider.On("FetchNetwork", ctx, mock.Anything, mock.Anything).
			Return(nil, assert.AnError)

		uc := usecase.NewRouteUseCase(mockProvider, &MockIncidentRepository{}, mockCache, testConfig(), logger)

		_, err := uc.ComputeRoute(ctx, computeRequest())

		assert.ErrorIs(t, err, errors.ErrDataUnavailable)
	})

	t.Run("disconnected network degrades to straight line", func(t *testing.T) {
		mockProvider := &MockStreetGraphProvider{}
		mockIncidents := &MockIncidentRepository{}
		mockCache := &MockCacheRepository{}

		// Nodes exist but no edges connect them.
		g := domain.NewStreetGraph()
		g.AddNode(&domain.Node{ID: 1, Lat: 43.6495, Lon: -79.3800})
		g.AddNode(&domain.Node{ID: 4, Lat: 43.6505, Lon: -79.3800})

		mockCache.On("Get", ctx, mock.Anything).Return(nil, nil)
		mockCache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		mockCache.On("GetNetwork", ctx, mock.Anything).Return(nil, nil)
		mockCache.On("SetNetwork", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		mockProvider.On("FetchNetwork", ctx, mock.Anything, mock.Anything).Return(g, nil)
		mockIncidents.On("GetIncidentsInBounds", ctx, mock.Anything).Return([]domain.Incident{}, nil)

		uc := usecase.NewRouteUseCase(mockProvider, mockIncidents, mockCache, testConfig(), logger)

		resp, err := uc.ComputeRoute(ctx, computeRequest())

		require.NoError(t, err)
		assert.True(t, resp.Route.Degraded)
		assert.True(t, resp.Baseline.Degraded)
		assert.Equal(t, 0.0, resp.Route.TotalRisk)
		assert.Len(t, resp.Route.Coordinates, 2)
	})

	t.Run("cached network skips the provider", func(t *testing.T) {
		mockProvider := &MockStreetGraphProvider{}
		mockIncidents := &MockIncidentRepository{}
		mockCache := &MockCacheRepository{}

		mockCache.On("Get", ctx, mock.Anything).Return(nil, nil)
		mockCache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		mockCache.On("GetNetwork", ctx, mock.Anything).Return(testGraph(), nil)
		mockIncidents.On("GetIncidentsInBounds", ctx, mock.Anything).Return([]domain.Incident{}, nil)

		uc := usecase.NewRouteUseCase(mockProvider, mockIncidents, mockCache, testConfig(), logger)

		_, err := uc.ComputeRoute(ctx, computeRequest())

		require.NoError(t, err)
		mockProvider.AssertNotCalled(t, "FetchNetwork", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cached route response short-circuits the pipeline", func(t *testing.T) {
		mockProvider := &MockStreetGraphProvider{}
		mockIncidents := &MockIncidentRepository{}
		mockCache := &MockCacheRepository{}

		cached := dto.ComputeRouteResponse{
			Mode:     "crime_aware",
			Route:    &domain.RoutePlan{Nodes: []int64{1, 3, 4}, TotalDistanceM: 240},
			Baseline: &domain.RoutePlan{Nodes: []int64{1, 2, 4}, TotalDistanceM: 200},
			Comparison: &domain.RouteComparison{
				DistanceIncreaseM: 40,
				DetourRatio:       1.2,
			},
		}
		data, err := json.Marshal(cached)
		require.NoError(t, err)
		mockCache.On("Get", ctx, mock.Anything).Return(data, nil)

		uc := usecase.NewRouteUseCase(mockProvider, mockIncidents, mockCache, testConfig(), logger)

		resp, err := uc.ComputeRoute(ctx, computeRequest())

		require.NoError(t, err)
		assert.Equal(t, cached.Route.Nodes, resp.Route.Nodes)
		mockProvider.AssertNotCalled(t, "FetchNetwork", mock.Anything, mock.Anything, mock.Anything)
		mockIncidents.AssertNotCalled(t, "GetIncidentsInBounds", mock.Anything, mock.Anything)
	})

	t.Run("risk field is fitted once per network cell", func(t *testing.T) {
		mockProvider := &MockStreetGraphProvider{}
		mockIncidents := &MockIncidentRepository{}
		mockCache := &MockCacheRepository{}

		mockCache.On("Get", ctx, mock.Anything).Return(nil, nil)
		mockCache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		mockCache.On("GetNetwork", ctx, mock.Anything).Return(testGraph(), nil)
		mockIncidents.On("GetIncidentsInBounds", ctx, mock.Anything).Return([]domain.Incident{}, nil).Once()

		uc := usecase.NewRouteUseCase(mockProvider, mockIncidents, mockCache, testConfig(), logger)

		_, err := uc.ComputeRoute(ctx, computeRequest())
		require.NoError(t, err)
		_, err = uc.ComputeRoute(ctx, computeRequest())
		require.NoError(t, err)

		mockIncidents.AssertNumberOfCalls(t, "GetIncidentsInBounds", 1)
	})
}

func TestRouteUseCase_GetHealth(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("healthy with incident count", func(t *testing.T) {
		mockIncidents := &MockIncidentRepository{}
		mockIncidents.On("CountIncidents", ctx).Return(1234, nil)

		uc := usecase.NewRouteUseCase(&MockStreetGraphProvider{}, mockIncidents,
			&MockCacheRepository{}, testConfig(), logger)

		resp := uc.GetHealth(ctx)

		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, 1234, resp.IncidentCount)
	})

	t.Run("degraded when the database is down", func(t *testing.T) {
		mockIncidents := &MockIncidentRepository{}
		mockIncidents.On("CountIncidents", ctx).Return(0, assert.AnError)

		uc := usecase.NewRouteUseCase(&MockStreetGraphProvider{}, mockIncidents,
			&MockCacheRepository{}, testConfig(), logger)

		resp := uc.GetHealth(ctx)

		assert.Equal(t, "degraded", resp.Status)
	})
}
