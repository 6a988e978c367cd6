package routing

import (
	"container/heap"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/errors"
	"github.com/saferoute-service/internal/pkg/utils"
	"go.uber.org/zap"
)

// WeightFunc prices one edge for the search. The second return value reports
// whether a weight exists; a missing weight fails the search so the caller
// can fall back rather than silently routing on a partial weighting.
type WeightFunc func(e *domain.Edge) (float64, bool)

// LengthWeight prices edges by physical length alone (the baseline).
func LengthWeight() WeightFunc {
	return func(e *domain.Edge) (float64, bool) {
		return e.LengthM, true
	}
}

// CompositeWeight prices edges from a composed weight map.
func CompositeWeight(weights map[domain.EdgeKey]float64) WeightFunc {
	return func(e *domain.Edge) (float64, bool) {
		w, ok := weights[e.EdgeKey()]
		return w, ok
	}
}

// Pathfinder runs deterministic Dijkstra search over a street graph. Ties
// between equal-cost frontier entries are broken by smaller node id, so the
// same inputs always reproduce the same route.
type Pathfinder struct {
	logger *zap.Logger
}

func NewPathfinder(logger *zap.Logger) *Pathfinder {
	return &Pathfinder{logger: logger}
}

// FindRoute searches from startID to endID using the given weight function
// and reconstructs a RoutePlan, accumulating physical length and per-edge
// risk from riskByEdge along the traversed edges. Returns ErrNoPath when the
// nodes are not connected or an edge on the frontier has no weight.
func (p *Pathfinder) FindRoute(graph *domain.StreetGraph, startID, endID int64,
	weight WeightFunc, riskByEdge map[domain.EdgeKey]float64) (*domain.RoutePlan, error) {

	if _, ok := graph.Nodes[startID]; !ok {
		return nil, errors.ErrNoPath.WithDetails(map[string]interface{}{"missing_node": startID})
	}
	if _, ok := graph.Nodes[endID]; !ok {
		return nil, errors.ErrNoPath.WithDetails(map[string]interface{}{"missing_node": endID})
	}

	dist := map[int64]float64{startID: 0}
	prevEdge := map[int64]*domain.Edge{}
	visited := map[int64]bool{}

	pq := &frontier{}
	heap.Init(pq)
	heap.Push(pq, frontierItem{nodeID: startID, cost: 0})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(frontierItem)
		if visited[item.nodeID] {
			continue
		}
		visited[item.nodeID] = true

		if item.nodeID == endID {
			break
		}

		for _, e := range graph.OutEdges(item.nodeID) {
			if visited[e.V] {
				continue
			}
			w, ok := weight(e)
			if !ok {
				return nil, errors.ErrNoPath.WithDetails(map[string]interface{}{
					"reason": "edge missing weight",
					"u":      e.U,
					"v":      e.V,
				})
			}

			next := item.cost + w
			current, seen := dist[e.V]
			// Strict improvement relaxes; an equal-cost path through a
			// smaller predecessor id wins for reproducibility.
			if !seen || next < current ||
				(next == current && prevEdge[e.V] != nil && e.U < prevEdge[e.V].U) {
				dist[e.V] = next
				prevEdge[e.V] = e
				heap.Push(pq, frontierItem{nodeID: e.V, cost: next})
			}
		}
	}

	if !visited[endID] {
		return nil, errors.ErrNoPath.WithDetails(map[string]interface{}{
			"start": startID,
			"end":   endID,
		})
	}

	return p.buildPlan(graph, startID, endID, prevEdge, riskByEdge), nil
}

// buildPlan walks the predecessor edges back from the end node and assembles
// the immutable RoutePlan.
func (p *Pathfinder) buildPlan(graph *domain.StreetGraph, startID, endID int64,
	prevEdge map[int64]*domain.Edge, riskByEdge map[domain.EdgeKey]float64) *domain.RoutePlan {

	var edges []*domain.Edge
	for at := endID; at != startID; {
		e := prevEdge[at]
		edges = append(edges, e)
		at = e.U
	}
	// Reverse into travel order.
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	plan := &domain.RoutePlan{
		Nodes:       make([]int64, 0, len(edges)+1),
		NumSegments: len(edges),
	}
	plan.Nodes = append(plan.Nodes, startID)

	startNode := graph.Nodes[startID]
	plan.Coordinates = append(plan.Coordinates, domain.Point{Lat: startNode.Lat, Lon: startNode.Lon})

	for _, e := range edges {
		plan.Nodes = append(plan.Nodes, e.V)
		plan.TotalDistanceM += e.LengthM

		risk := riskByEdge[e.EdgeKey()]
		plan.TotalRisk += risk
		if risk > plan.MaxEdgeRisk {
			plan.MaxEdgeRisk = risk
		}

		// Follow the edge polyline when present so the rendered route hugs
		// the street; otherwise connect the endpoint nodes directly.
		if len(e.Geometry) > 1 {
			plan.Coordinates = append(plan.Coordinates, e.Geometry[1:]...)
		} else {
			v := graph.Nodes[e.V]
			plan.Coordinates = append(plan.Coordinates, domain.Point{Lat: v.Lat, Lon: v.Lon})
		}
	}

	if plan.NumSegments > 0 {
		plan.AvgEdgeRisk = plan.TotalRisk / float64(plan.NumSegments)
	}
	return plan
}

// FallbackRoute builds the degraded straight-line plan used when no graph
// path exists between the request coordinates. All fields are populated with
// best-effort values: haversine distance, zero risk, Degraded set.
func FallbackRoute(start, end domain.Point) *domain.RoutePlan {
	return &domain.RoutePlan{
		Coordinates:    []domain.Point{start, end},
		TotalDistanceM: utils.HaversineDistance(start.Lat, start.Lon, end.Lat, end.Lon),
		TotalRisk:      0,
		NumSegments:    1,
		Degraded:       true,
	}
}

type frontierItem struct {
	nodeID int64
	cost   float64
}

type frontier []frontierItem

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	return f[i].nodeID < f[j].nodeID
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x interface{}) {
	*f = append(*f, x.(frontierItem))
}

func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}
