package dto

// HeatmapRequest asks for a sampled grid of the density risk surface over a
// bounding box. The grid is purely presentational; routing never consumes it.
type HeatmapRequest struct {
	MinLat float64 `json:"min_lat" validate:"min=-90,max=90"`
	MinLon float64 `json:"min_lon" validate:"min=-180,max=180"`
	MaxLat float64 `json:"max_lat" validate:"min=-90,max=90"`
	MaxLon float64 `json:"max_lon" validate:"min=-180,max=180"`
	Rows   int     `json:"rows" validate:"omitempty,min=2,max=200"`
	Cols   int     `json:"cols" validate:"omitempty,min=2,max=200"`
}

// HeatmapResponse carries row-major density samples; Cells[0][0] is the
// south-west corner.
type HeatmapResponse struct {
	Rows     int         `json:"rows"`
	Cols     int         `json:"cols"`
	MinLat   float64     `json:"min_lat"`
	MinLon   float64     `json:"min_lon"`
	MaxLat   float64     `json:"max_lat"`
	MaxLon   float64     `json:"max_lon"`
	MaxScore float64     `json:"max_score"`
	Cells    [][]float64 `json:"cells"`
}
