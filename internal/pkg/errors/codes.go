package errors

import "net/http"

var (
	ErrLocationNotFound = New(
		"LOCATION_NOT_FOUND",
		"Location not found",
		http.StatusNotFound,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrRateLimited = New(
		"RATE_LIMIT_EXCEEDED",
		"Rate limit exceeded, try again later",
		http.StatusTooManyRequests,
	)

	ErrServiceUnavailable = New(
		"SERVICE_UNAVAILABLE",
		"External service unavailable, try again later",
		http.StatusServiceUnavailable,
	)

	ErrExternalAPI = New(
		"EXTERNAL_API_ERROR",
		"External API error",
		http.StatusBadGateway,
	)

	ErrHistoryUnavailable = New(
		"HISTORY_UNAVAILABLE",
		"History storage is not configured",
		http.StatusServiceUnavailable,
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
