package dto

// ErrorResponseDTO is the common error body.
type ErrorResponseDTO struct {
	Error string `json:"error"`
}

// RunAcceptedDTO acknowledges a run started in the background.
type RunAcceptedDTO struct {
	Collector string `json:"collector"`
	Status    string `json:"status"`
}

// HealthDTO is the liveness body. Running names the collector in progress, if any.
type HealthDTO struct {
	Status  string `json:"status"`
	Running string `json:"running,omitempty"`
}
