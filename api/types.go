package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler projectHandler
	commentHandler commentHandler
	profileHandler profileHandler
	healthHandler  healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"name"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// StatusResponse acknowledges operations that return no record.
type StatusResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"project deleted successfully"`
}

// HealthResponse reports liveness and the storage backend in use.
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Store   string `json:"store" example:"mongo"`
	Uptime  string `json:"uptime" example:"1h2m3s"`
	Storage string `json:"storage" example:"reachable"`
}
