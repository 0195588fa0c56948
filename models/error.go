package models

// ErrorResponse is the JSON body written for failed requests
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// ValidationError is one failed field of a request payload
type ValidationError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// ValidationErrorResponse lists every failed field
type ValidationErrorResponse struct {
	Success bool              `json:"success"`
	Errors  []ValidationError `json:"errors"`
}

// HealthCheckResponse returns the health check response duh
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}

// SuccessResponse acknowledges a state change with no other payload
type SuccessResponse struct {
	Success bool `json:"success"`
}
