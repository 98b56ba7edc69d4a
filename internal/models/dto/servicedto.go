package dto

type GreetingResponseDTO struct {
	Message string `json:"message"`
}

type HealthResponseDTO struct {
	Status string `json:"status"`
}

type RateLimitResponse struct {
	Message string `json:"message"`
}
