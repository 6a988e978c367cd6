package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/saferoute-service/internal/config"
	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/domain/repository"
	"github.com/saferoute-service/internal/pkg/utils"
	"go.uber.org/zap"
)

// walkableHighways filters the Overpass query to ways a pedestrian can use.
const walkableHighways = "primary|secondary|tertiary|unclassified|residential|living_street|pedestrian|footway|path|steps|service"

type client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClient creates a street-graph provider backed by the Overpass API.
func NewClient(cfg *config.OverpassConfig, logger *zap.Logger) repository.StreetGraphProvider {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: cfg.BaseURL,
		logger:  logger,
	}
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type     string          `json:"type"`
	ID       int64           `json:"id"`
	Nodes    []int64         `json:"nodes"`
	Geometry []overpassPoint `json:"geometry"`
}

type overpassPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// FetchNetwork downloads all walkable ways within radiusM of center and
// assembles them into a directed multigraph. Ways are split at shared nodes
// so every intersection becomes a graph node, and each segment is added in
// both directions since pedestrians are not bound by oneway restrictions.
func (c *client) FetchNetwork(ctx context.Context, center domain.Point, radiusM float64) (*domain.StreetGraph, error) {
	query := fmt.Sprintf(
		`[out:json][timeout:25];(way["highway"~"^(%s)$"](around:%.0f,%.6f,%.6f););out geom;`,
		walkableHighways, radiusM, center.Lat, center.Lon,
	)

	c.logger.Debug("Calling Overpass API",
		zap.Float64("center_lat", center.Lat),
		zap.Float64("center_lon", center.Lon),
		zap.Float64("radius_m", radiusM),
	)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Overpass request failed", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Overpass API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("overpass API error: status %d", resp.StatusCode)
	}

	var decoded overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	graph := BuildGraph(decoded.Elements)

	c.logger.Info("Street network loaded",
		zap.Int("nodes", len(graph.Nodes)),
		zap.Int("edges", len(graph.Edges)),
	)

	return graph, nil
}

// BuildGraph converts raw Overpass ways into a street graph. Exported so the
// decoding path can be tested without a live endpoint.
func BuildGraph(elements []overpassElement) *domain.StreetGraph {
	// A node shared by two or more ways is an intersection; ways are split
	// there so the router can turn.
	usage := make(map[int64]int)
	for _, el := range elements {
		if el.Type != "way" {
			continue
		}
		for _, nodeID := range el.Nodes {
			usage[nodeID]++
		}
	}

	graph := domain.NewStreetGraph()

	for _, el := range elements {
		if el.Type != "way" || len(el.Nodes) < 2 || len(el.Geometry) != len(el.Nodes) {
			continue
		}

		segStart := 0
		for i := 1; i < len(el.Nodes); i++ {
			isCut := i == len(el.Nodes)-1 || usage[el.Nodes[i]] > 1
			if !isCut {
				continue
			}

			addSegment(graph, el, segStart, i)
			segStart = i
		}
	}

	return graph
}

func addSegment(graph *domain.StreetGraph, el overpassElement, from, to int) {
	uID, vID := el.Nodes[from], el.Nodes[to]
	if uID == vID {
		return
	}

	geometry := make([]domain.Point, 0, to-from+1)
	length := 0.0
	for i := from; i <= to; i++ {
		geometry = append(geometry, domain.Point{Lat: el.Geometry[i].Lat, Lon: el.Geometry[i].Lon})
		if i > from {
			length += utils.HaversineDistance(
				el.Geometry[i-1].Lat, el.Geometry[i-1].Lon,
				el.Geometry[i].Lat, el.Geometry[i].Lon,
			)
		}
	}
	if length == 0 {
		return
	}

	graph.AddNode(&domain.Node{ID: uID, Lat: geometry[0].Lat, Lon: geometry[0].Lon})
	graph.AddNode(&domain.Node{ID: vID, Lat: geometry[len(geometry)-1].Lat, Lon: geometry[len(geometry)-1].Lon})

	reversed := make([]domain.Point, len(geometry))
	for i, p := range geometry {
		reversed[len(geometry)-1-i] = p
	}

	graph.AddEdge(&domain.Edge{U: uID, V: vID, LengthM: length, Geometry: geometry})
	graph.AddEdge(&domain.Edge{U: vID, V: uID, LengthM: length, Geometry: reversed})
}
