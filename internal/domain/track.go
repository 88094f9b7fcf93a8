package domain

import (
	"errors"
	"fmt"
)

var ErrMissingFields = errors.New("missing artist or track_name")

// TrackRequest identifies a single track to acquire and analyze.
type TrackRequest struct {
	Artist    string `json:"artist"`
	TrackName string `json:"track_name"`
}

// Key returns the track key used in logs and error payloads. It is not
// guaranteed unique within a batch; duplicates are processed independently.
func (r TrackRequest) Key() string {
	return fmt.Sprintf("%s - %s", r.Artist, r.TrackName)
}

// Validate checks that both required fields are present.
func (r TrackRequest) Validate() error {
	if r.Artist == "" || r.TrackName == "" {
		return ErrMissingFields
	}
	return nil
}

// PredictionSet maps a target name to its normalized prediction. A nil
// value means the target was skipped (bad vector or model failure).
type PredictionSet map[string]*float64

// TrackResult is the outcome of one track job. Exactly one of Features or
// Error is set.
type TrackResult struct {
	Track    string        `json:"track"`
	Features PredictionSet `json:"features,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Failed reports whether the job produced an error outcome.
func (r TrackResult) Failed() bool {
	return r.Error != ""
}

// BatchResult holds one TrackResult per input request, in input order.
type BatchResult struct {
	Results []TrackResult `json:"results"`
}
