package domain

import (
	"math"

	"github.com/saferoute-service/internal/pkg/utils"
)

// Node is a street intersection or way vertex.
type Node struct {
	ID  int64   `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// EdgeKey identifies one directed edge in a multigraph: the node pair plus a
// parallel-edge index for multiple street segments between the same nodes.
type EdgeKey struct {
	U   int64 `json:"u"`
	V   int64 `json:"v"`
	Key int   `json:"key"`
}

// Edge is a directed street segment. Geometry is the ordered polyline from U
// to V and may be empty, in which case callers interpolate between the
// endpoint nodes.
type Edge struct {
	U        int64   `json:"u"`
	V        int64   `json:"v"`
	Key      int     `json:"key"`
	LengthM  float64 `json:"length_m"`
	Geometry []Point `json:"geometry,omitempty"`
}

func (e *Edge) EdgeKey() EdgeKey {
	return EdgeKey{U: e.U, V: e.V, Key: e.Key}
}

// StreetGraph is a directed multigraph over street nodes. The graph itself is
// never mutated by routing: composite weights live in a separate map keyed by
// EdgeKey (see routing.WeightComposer).
//
// Exported fields keep the graph JSON-serializable for the redis network
// cache; the adjacency index is rebuilt on first use after decoding.
type StreetGraph struct {
	Nodes map[int64]*Node `json:"nodes"`
	Edges []*Edge         `json:"edges"`

	out map[int64][]*Edge
}

func NewStreetGraph() *StreetGraph {
	return &StreetGraph{
		Nodes: make(map[int64]*Node),
		out:   make(map[int64][]*Edge),
	}
}

func (g *StreetGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
}

// AddEdge appends a directed edge, assigning the next free parallel-edge key
// for the (U, V) pair.
func (g *StreetGraph) AddEdge(e *Edge) {
	key := 0
	for _, existing := range g.outEdges(e.U) {
		if existing.V == e.V {
			key++
		}
	}
	e.Key = key
	g.Edges = append(g.Edges, e)
	if g.out == nil {
		g.out = make(map[int64][]*Edge)
	}
	g.out[e.U] = append(g.out[e.U], e)
}

// OutEdges returns the directed edges leaving the given node.
func (g *StreetGraph) OutEdges(id int64) []*Edge {
	return g.outEdges(id)
}

func (g *StreetGraph) outEdges(id int64) []*Edge {
	if g.out == nil || (len(g.out) == 0 && len(g.Edges) > 0) {
		g.rebuildIndex()
	}
	return g.out[id]
}

func (g *StreetGraph) rebuildIndex() {
	g.out = make(map[int64][]*Edge, len(g.Nodes))
	for _, e := range g.Edges {
		g.out[e.U] = append(g.out[e.U], e)
	}
}

// NearestNode resolves a coordinate to the closest graph node. Ties are broken
// by smaller node id so resolution is reproducible.
func (g *StreetGraph) NearestNode(lat, lon float64) (int64, bool) {
	best := int64(-1)
	bestDist := math.Inf(1)
	for id, n := range g.Nodes {
		d := utils.HaversineDistance(lat, lon, n.Lat, n.Lon)
		if d < bestDist || (d == bestDist && (best == -1 || id < best)) {
			best = id
			bestDist = d
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// FindEdge returns the edge for an exact EdgeKey, if present.
func (g *StreetGraph) FindEdge(key EdgeKey) (*Edge, bool) {
	for _, e := range g.outEdges(key.U) {
		if e.V == key.V && e.Key == key.Key {
			return e, true
		}
	}
	return nil, false
}

// Bounds returns the geographic envelope of all nodes.
func (g *StreetGraph) Bounds() BoundingBox {
	b := BoundingBox{
		MinLat: math.Inf(1), MinLon: math.Inf(1),
		MaxLat: math.Inf(-1), MaxLon: math.Inf(-1),
	}
	for _, n := range g.Nodes {
		b.MinLat = math.Min(b.MinLat, n.Lat)
		b.MaxLat = math.Max(b.MaxLat, n.Lat)
		b.MinLon = math.Min(b.MinLon, n.Lon)
		b.MaxLon = math.Max(b.MaxLon, n.Lon)
	}
	return b
}
