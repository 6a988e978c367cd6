package dto

type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	IncidentCount int    `json:"incident_count"`
}
