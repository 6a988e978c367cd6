package dto

import "github.com/saferoute-service/internal/domain"

type Coordinate struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
}

// ComputeRouteRequest is the body of POST /api/v1/routes/compute. Weights are
// optional; when absent the mode preset decides them. When only one weight is
// given the other is derived as its complement.
type ComputeRouteRequest struct {
	Start          Coordinate `json:"start" validate:"required"`
	End            Coordinate `json:"end" validate:"required"`
	Mode           string     `json:"mode" validate:"omitempty,oneof=shortest crime_aware safest"`
	DistanceWeight *float64   `json:"distance_weight" validate:"omitempty,min=0,max=1"`
	CrimeWeight    *float64   `json:"crime_weight" validate:"omitempty,min=0,max=1"`
}

type ComputeRouteResponse struct {
	Mode       string                  `json:"mode"`
	Route      *domain.RoutePlan       `json:"route"`
	Baseline   *domain.RoutePlan       `json:"baseline"`
	Comparison *domain.RouteComparison `json:"comparison"`
}
