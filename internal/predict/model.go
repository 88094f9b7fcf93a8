package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	ErrModelNotFound = errors.New("model not found")
	ErrBadVector     = errors.New("vector width does not match model")
)

// Model is a serialized linear regressor for one target. Model files are
// JSON documents produced by the training pipeline.
type Model struct {
	Target  string    `json:"target"`
	Bias    float64   `json:"bias"`
	Weights []float64 `json:"weights"`
}

// LoadModel decodes a model document from r.
func LoadModel(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if m.Target == "" || len(m.Weights) == 0 {
		return nil, fmt.Errorf("model document missing target or weights")
	}
	return &m, nil
}

// Predict evaluates the regressor on vec. The raw output is unnormalized;
// callers apply Normalize.
func (m *Model) Predict(vec []float64) (float64, error) {
	if len(vec) != len(m.Weights) {
		return 0, fmt.Errorf("%w: got %d values, model %q expects %d",
			ErrBadVector, len(vec), m.Target, len(m.Weights))
	}

	out := m.Bias
	for i, w := range m.Weights {
		out += w * vec[i]
	}
	return out, nil
}
