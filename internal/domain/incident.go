package domain

// Incident is a single recorded crime event. Immutable once loaded; the
// collection may contain duplicates and they are intentionally not collapsed,
// since repeated incidents at one location additively increase risk.
type Incident struct {
	Lat    float64 `json:"lat" db:"lat"`
	Lon    float64 `json:"lon" db:"lon"`
	Weight float64 `json:"weight" db:"weight"`
}
