package httpx

import "net/http"

// Status codes returned by tierkv handlers.
const (
	StatusOK                 = http.StatusOK                  // Report rendered
	StatusBadRequest         = http.StatusBadRequest          // Malformed body or rejected command
	StatusInternalError      = http.StatusInternalServerError // Unexpected server error
	StatusServiceUnavailable = http.StatusServiceUnavailable  // A tier failed its health check
)
