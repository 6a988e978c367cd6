package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/saferoute-service/internal/config"
	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/domain/repository"
	"github.com/saferoute-service/internal/pkg/errors"
	"github.com/saferoute-service/internal/pkg/utils"
	"github.com/saferoute-service/internal/risk"
	"github.com/saferoute-service/internal/routing"
	"github.com/saferoute-service/internal/usecase/dto"
	"go.uber.org/zap"
)

// areaEngine is one fitted risk field plus its edge-score cache, reused for
// every request that resolves to the same network cell. Fitting is the
// expensive step, so it is amortized across requests.
type areaEngine struct {
	field  risk.Field
	scorer *risk.EdgeScorer
}

type RouteUseCase struct {
	graphProvider repository.StreetGraphProvider
	incidentRepo  repository.IncidentRepository
	cacheRepo     repository.CacheRepository
	cfg           *config.Config
	logger        *zap.Logger

	mu      sync.Mutex
	engines map[string]*areaEngine
}

func NewRouteUseCase(
	graphProvider repository.StreetGraphProvider,
	incidentRepo repository.IncidentRepository,
	cacheRepo repository.CacheRepository,
	cfg *config.Config,
	logger *zap.Logger,
) *RouteUseCase {
	return &RouteUseCase{
		graphProvider: graphProvider,
		incidentRepo:  incidentRepo,
		cacheRepo:     cacheRepo,
		cfg:           cfg,
		logger:        logger,
		engines:       make(map[string]*areaEngine),
	}
}

// ComputeRoute runs the full pipeline for one request: resolve weights,
// obtain the street network, fit or reuse the risk field, score edges,
// compose weights, search twice (composite and pure length) and compare.
func (uc *RouteUseCase) ComputeRoute(ctx context.Context, req dto.ComputeRouteRequest) (*dto.ComputeRouteResponse, error) {
	start := domain.Point{Lat: req.Start.Lat, Lon: req.Start.Lon}
	end := domain.Point{Lat: req.End.Lat, Lon: req.End.Lon}

	if err := uc.validateEnvelope(start, end); err != nil {
		return nil, err
	}

	mode, distanceWeight, crimeWeight, err := uc.resolveWeights(req)
	if err != nil {
		return nil, err
	}

	routeKey := fmt.Sprintf("route:%.5f:%.5f:%.5f:%.5f:%s:%.2f:%.2f",
		start.Lat, start.Lon, end.Lat, end.Lon, mode, distanceWeight, crimeWeight)
	if cached := uc.cachedResponse(ctx, routeKey); cached != nil {
		return cached, nil
	}

	graph, networkKey, err := uc.obtainNetwork(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(graph.Nodes) == 0 {
		return nil, errors.ErrDataUnavailable
	}

	engine, err := uc.obtainEngine(ctx, networkKey, graph)
	if err != nil {
		return nil, err
	}

	riskByEdge, err := uc.scoreEdges(graph, engine)
	if err != nil {
		return nil, err
	}

	composer, err := routing.NewWeightComposer(
		distanceWeight,
		crimeWeight,
		uc.cfg.Routing.CrimePenaltyScale,
		uc.cfg.Routing.AdaptiveWeighting,
		uc.cfg.Routing.MinDetourThreshM,
	)
	if err != nil {
		return nil, err
	}
	weights := composer.ComposeAll(graph, riskByEdge)

	startNode, okStart := graph.NearestNode(start.Lat, start.Lon)
	endNode, okEnd := graph.NearestNode(end.Lat, end.Lon)
	if !okStart || !okEnd {
		return nil, errors.ErrDataUnavailable
	}

	pathfinder := routing.NewPathfinder(uc.logger)

	baseline := uc.searchWithFallback(pathfinder, graph, startNode, endNode,
		routing.LengthWeight(), riskByEdge, start, end, "baseline")

	var route *domain.RoutePlan
	if mode == domain.RouteModeShortest {
		route = baseline
	} else {
		route = uc.searchWithFallback(pathfinder, graph, startNode, endNode,
			routing.CompositeWeight(weights), riskByEdge, start, end, "weighted")
	}

	comparison := routing.Compare(route, baseline)

	uc.logger.Info("Route computed",
		zap.String("mode", string(mode)),
		zap.Float64("route_distance_m", route.TotalDistanceM),
		zap.Float64("baseline_distance_m", baseline.TotalDistanceM),
		zap.Float64("risk_reduction_percent", comparison.RiskReductionPercent),
		zap.Bool("degraded", route.Degraded || baseline.Degraded),
	)

	resp := &dto.ComputeRouteResponse{
		Mode:       string(mode),
		Route:      route,
		Baseline:   baseline,
		Comparison: &comparison,
	}

	// Degraded plans are transient (sparse network, provider hiccup); caching
	// them would pin the bad answer for the TTL.
	if !route.Degraded && !baseline.Degraded {
		uc.storeResponse(ctx, routeKey, resp)
	}

	return resp, nil
}

// cachedResponse returns an identical earlier response, if one is still live.
func (uc *RouteUseCase) cachedResponse(ctx context.Context, key string) *dto.ComputeRouteResponse {
	if uc.cacheRepo == nil {
		return nil
	}
	data, err := uc.cacheRepo.Get(ctx, key)
	if err != nil || data == nil {
		return nil
	}
	var resp dto.ComputeRouteResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		uc.logger.Warn("Failed to unmarshal cached route", zap.String("key", key), zap.Error(err))
		return nil
	}
	return &resp
}

func (uc *RouteUseCase) storeResponse(ctx context.Context, key string, resp *dto.ComputeRouteResponse) {
	if uc.cacheRepo == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		uc.logger.Warn("Failed to marshal route for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := uc.cacheRepo.Set(ctx, key, data, uc.cfg.Cache.RouteCacheTTL); err != nil {
		uc.logger.Warn("Failed to cache route", zap.String("key", key), zap.Error(err))
	}
}

// GetHealth reports service readiness and the size of the incident dataset.
func (uc *RouteUseCase) GetHealth(ctx context.Context) *dto.HealthResponse {
	resp := &dto.HealthResponse{
		Status:  "healthy",
		Version: "1.0.0",
	}

	count, err := uc.incidentRepo.CountIncidents(ctx)
	if err != nil {
		uc.logger.Warn("Incident count unavailable", zap.Error(err))
		resp.Status = "degraded"
		return resp
	}
	resp.IncidentCount = count
	return resp
}

func (uc *RouteUseCase) validateEnvelope(points ...domain.Point) error {
	envelope := domain.BoundingBox{
		MinLat: uc.cfg.Routing.EnvelopeMinLat,
		MaxLat: uc.cfg.Routing.EnvelopeMaxLat,
		MinLon: uc.cfg.Routing.EnvelopeMinLon,
		MaxLon: uc.cfg.Routing.EnvelopeMaxLon,
	}
	for _, p := range points {
		if !utils.ValidateCoordinates(p.Lat, p.Lon) || !envelope.Contains(p.Lat, p.Lon) {
			return errors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{
				"lat": p.Lat,
				"lon": p.Lon,
			})
		}
	}
	return nil
}

// resolveWeights merges the mode preset with any request-level weights.
func (uc *RouteUseCase) resolveWeights(req dto.ComputeRouteRequest) (domain.RouteMode, float64, float64, error) {
	mode := domain.RouteMode(req.Mode)
	if mode == "" {
		mode = domain.RouteModeCrimeAware
	}

	distanceWeight := uc.cfg.Routing.DistanceWeight
	crimeWeight := uc.cfg.Routing.CrimeWeight
	if mode == domain.RouteModeSafest {
		crimeWeight = uc.cfg.Routing.SafestCrimeWeight
		distanceWeight = 1.0 - crimeWeight
	}

	switch {
	case req.DistanceWeight != nil && req.CrimeWeight != nil:
		distanceWeight = *req.DistanceWeight
		crimeWeight = *req.CrimeWeight
	case req.DistanceWeight != nil:
		distanceWeight = *req.DistanceWeight
		crimeWeight = 1.0 - distanceWeight
	case req.CrimeWeight != nil:
		crimeWeight = *req.CrimeWeight
		distanceWeight = 1.0 - crimeWeight
	}

	if math.Abs(distanceWeight+crimeWeight-1.0) > 1e-6 || distanceWeight <= 0 || crimeWeight < 0 {
		return mode, 0, 0, errors.ErrInvalidWeights.WithDetails(map[string]interface{}{
			"distance_weight": distanceWeight,
			"crime_weight":    crimeWeight,
		})
	}

	return mode, distanceWeight, crimeWeight, nil
}

// obtainNetwork loads the street graph for the request area, preferring the
// redis cell cache and falling back to the live provider. The cell key rounds
// the network center so nearby requests share one cached network.
func (uc *RouteUseCase) obtainNetwork(ctx context.Context, start, end domain.Point) (*domain.StreetGraph, string, error) {
	center := domain.Point{
		Lat: (start.Lat + end.Lat) / 2,
		Lon: (start.Lon + end.Lon) / 2,
	}

	routeDistance := utils.HaversineDistance(start.Lat, start.Lon, end.Lat, end.Lon)
	radius := math.Max(uc.cfg.Routing.MinNetworkRadiusM, routeDistance*uc.cfg.Routing.NetworkBufferFactor)
	radius = math.Min(radius, uc.cfg.Routing.MaxNetworkRadiusM)

	key := fmt.Sprintf("network:%.3f:%.3f:%.0f", center.Lat, center.Lon, radius)

	if uc.cacheRepo != nil {
		if cached, err := uc.cacheRepo.GetNetwork(ctx, key); err == nil && cached != nil {
			uc.logger.Debug("Street network cache hit", zap.String("key", key))
			return cached, key, nil
		}
	}

	graph, err := uc.graphProvider.FetchNetwork(ctx, center, radius)
	if err != nil {
		uc.logger.Error("Failed to fetch street network", zap.Error(err))
		return nil, "", errors.ErrDataUnavailable.WithDetails(map[string]interface{}{
			"center_lat": center.Lat,
			"center_lon": center.Lon,
			"radius_m":   radius,
		})
	}

	if uc.cacheRepo != nil {
		if err := uc.cacheRepo.SetNetwork(ctx, key, graph, uc.cfg.Cache.NetworkCacheTTL); err != nil {
			uc.logger.Warn("Failed to cache street network", zap.String("key", key), zap.Error(err))
		}
	}

	return graph, key, nil
}

// obtainEngine returns the fitted risk engine for a network cell, fitting a
// fresh field on the cell's incident data when none exists yet. Refitting
// always starts with an empty edge-score cache.
func (uc *RouteUseCase) obtainEngine(ctx context.Context, networkKey string, graph *domain.StreetGraph) (*areaEngine, error) {
	uc.mu.Lock()
	engine, ok := uc.engines[networkKey]
	uc.mu.Unlock()
	if ok {
		return engine, nil
	}

	bounds := graph.Bounds().Expand(uc.cfg.Routing.IncidentBufferM)
	incidents, err := uc.incidentRepo.GetIncidentsInBounds(ctx, bounds)
	if err != nil {
		uc.logger.Error("Failed to load incidents", zap.Error(err))
		return nil, err
	}

	field, err := risk.NewField(&uc.cfg.Routing)
	if err != nil {
		return nil, err
	}
	if err := field.Fit(incidents, bounds); err != nil {
		return nil, err
	}

	scorer := risk.NewEdgeScorer(field,
		uc.cfg.Routing.EdgeSampleCount,
		uc.cfg.Routing.EdgeSampleIntervalM,
		uc.logger,
	)

	engine = &areaEngine{field: field, scorer: scorer}

	uc.mu.Lock()
	uc.engines[networkKey] = engine
	uc.mu.Unlock()

	uc.logger.Info("Risk field fitted",
		zap.String("network_key", networkKey),
		zap.Int("incidents", len(incidents)),
		zap.String("strategy", uc.cfg.Routing.Strategy),
	)

	return engine, nil
}

// scoreEdges produces the per-edge risk map. Edges without geometry fall back
// to the straight segment between their endpoint nodes.
func (uc *RouteUseCase) scoreEdges(graph *domain.StreetGraph, engine *areaEngine) (map[domain.EdgeKey]float64, error) {
	riskByEdge := make(map[domain.EdgeKey]float64, len(graph.Edges))

	for _, e := range graph.Edges {
		geometry := e.Geometry
		if len(geometry) < 2 {
			u, okU := graph.Nodes[e.U]
			v, okV := graph.Nodes[e.V]
			if !okU || !okV {
				continue
			}
			geometry = []domain.Point{
				{Lat: u.Lat, Lon: u.Lon},
				{Lat: v.Lat, Lon: v.Lon},
			}
		}

		score, err := engine.scorer.ScoreEdge(geometry, e.EdgeKey())
		if err != nil {
			return nil, err
		}
		riskByEdge[e.EdgeKey()] = score
	}

	return riskByEdge, nil
}

// searchWithFallback runs one search and degrades to the straight-line plan
// on ErrNoPath instead of propagating the failure.
func (uc *RouteUseCase) searchWithFallback(pathfinder *routing.Pathfinder,
	graph *domain.StreetGraph, startNode, endNode int64, weight routing.WeightFunc,
	riskByEdge map[domain.EdgeKey]float64, start, end domain.Point, label string) *domain.RoutePlan {

	plan, err := pathfinder.FindRoute(graph, startNode, endNode, weight, riskByEdge)
	if err != nil {
		uc.logger.Warn("Falling back to straight-line route",
			zap.String("search", label),
			zap.Int64("start_node", startNode),
			zap.Int64("end_node", endNode),
			zap.Error(err),
		)
		return routing.FallbackRoute(start, end)
	}
	return plan
}
