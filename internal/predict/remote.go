package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RemotePredictor delegates prediction to an inference service, selected
// when INFERENCE_SERVICE_URL is set. The service receives the already
// vectorized input; normalization still happens on this side.
type RemotePredictor struct {
	baseURL    string
	httpClient *http.Client
}

func NewRemotePredictor(baseURL string, timeout time.Duration) *RemotePredictor {
	return &RemotePredictor{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Target string    `json:"target"`
	Vector []float64 `json:"vector"`
}

type predictResponse struct {
	Prediction float64 `json:"prediction"`
	Error      string  `json:"error,omitempty"`
}

func (p *RemotePredictor) Predict(ctx context.Context, target string, vec []float64) (float64, error) {
	payload, err := json.Marshal(predictRequest{Target: target, Vector: vec})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("inference request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return 0, fmt.Errorf("%w: %s", ErrModelNotFound, target)
	}
	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("inference service returned status %d", res.StatusCode)
	}

	var decoded predictResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return 0, fmt.Errorf("failed to decode inference response: %w", err)
	}
	if decoded.Error != "" {
		return 0, fmt.Errorf("inference error: %s", decoded.Error)
	}

	return decoded.Prediction, nil
}
