package errors

import "net/http"

var (
	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Coordinates are outside the supported geographic envelope",
		http.StatusBadRequest,
	)

	ErrInvalidWeights = New(
		"INVALID_WEIGHTS",
		"distance_weight and crime_weight must be in [0,1] and sum to 1.0",
		http.StatusBadRequest,
	)

	ErrNegativeIncidentWeight = New(
		"NEGATIVE_INCIDENT_WEIGHT",
		"Incident weights must be non-negative",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	// ErrNoPath is consumed internally: the route use case converts it into a
	// degraded straight-line plan instead of surfacing it to the client.
	ErrNoPath = New(
		"NO_PATH",
		"No path exists between the resolved street nodes",
		http.StatusUnprocessableEntity,
	)

	ErrNotFitted = New(
		"RISK_FIELD_NOT_FITTED",
		"Risk field queried before fit",
		http.StatusInternalServerError,
	)

	ErrDataUnavailable = New(
		"DATA_UNAVAILABLE",
		"No street network could be obtained for the requested area",
		http.StatusServiceUnavailable,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
