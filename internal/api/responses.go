package api

// Shared response envelopes used across handlers and swagger annotations.

type ErrorResponse struct {
	Error string `json:"error" example:"gym capacity exceeded"`
}

type MessageResponse struct {
	Message string `json:"message" example:"verification code sent"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
