// Package docs SafeRoute Service API.
//
// Crime-risk-aware walking route service. Computes pedestrian routes that
// trade a small detour for lower exposure to reported crime, using street
// networks from OpenStreetMap and a spatial risk field fitted over crime
// incident data.
//
// Main capabilities:
// - Crime-aware route computation with distance/safety weight control
// - Shortest-route baseline and route comparison metrics
// - Crime density heatmap sampling for map overlays
// - Health and dataset status
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs
