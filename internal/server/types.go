package server

import "github.com/mpaterson/trackml/internal/domain"

// batchRequest is the body of POST /extract_features_batch.
type batchRequest struct {
	Tracks []domain.TrackRequest `json:"tracks"`
}

// ErrorResponse represents a generic error payload used for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Track string `json:"track,omitempty"`
}
