package dto

// TextRequest is the body of every processor endpoint.
type TextRequest struct {
	Text string `json:"text"`
}

type HealthDTO struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
