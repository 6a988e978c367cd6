package domain

// RouteMode selects the weighting preset for a routing request.
type RouteMode string

const (
	RouteModeShortest   RouteMode = "shortest"
	RouteModeCrimeAware RouteMode = "crime_aware"
	RouteModeSafest     RouteMode = "safest"
)

// RoutePlan is an immutable computed walking route. Degraded marks the
// straight-line fallback produced when the street graph had no path between
// the resolved nodes; its distance is then a haversine estimate and its risk
// is zero.
type RoutePlan struct {
	Nodes          []int64 `json:"nodes"`
	Coordinates    []Point `json:"coordinates"`
	TotalDistanceM float64 `json:"total_distance_m"`
	TotalRisk      float64 `json:"total_risk"`
	AvgEdgeRisk    float64 `json:"avg_edge_risk"`
	MaxEdgeRisk    float64 `json:"max_edge_risk"`
	NumSegments    int     `json:"num_segments"`
	Degraded       bool    `json:"degraded"`
}

// RouteComparison contrasts a candidate route with the pure-distance baseline.
// Negative values are meaningful (candidate worse than baseline) and are
// never clamped.
type RouteComparison struct {
	DistanceIncreaseM       float64 `json:"distance_increase_m"`
	DistanceIncreasePercent float64 `json:"distance_increase_percent"`
	RiskReduction           float64 `json:"risk_reduction"`
	RiskReductionPercent    float64 `json:"risk_reduction_percent"`
	DetourRatio             float64 `json:"detour_ratio"`
}
