package features

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// HTTPExtractor sends the audio file to the analyzer service and decodes
// the returned feature set. The analyzer owns all feature math; this client
// only enforces the non-empty contract.
type HTTPExtractor struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPExtractor creates an extractor client for the analyzer at baseURL.
func NewHTTPExtractor(baseURL string, timeout time.Duration) *HTTPExtractor {
	return &HTTPExtractor{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type analyzeResponse struct {
	Features Set    `json:"features"`
	Error    string `json:"error,omitempty"`
}

// Extract uploads the file at path and returns the computed feature set.
// An empty or null set is reported as ErrExtractionFailed.
func (e *HTTPExtractor) Extract(ctx context.Context, path string) (Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/analyze", file)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/mpeg")

	res, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyzer request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		slog.Warn("analyzer returned error", "status", res.StatusCode, "body", string(body))
		return nil, fmt.Errorf("analyzer returned status %d", res.StatusCode)
	}

	var decoded analyzeResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode analyzer response: %w", err)
	}

	if decoded.Error != "" {
		return nil, fmt.Errorf("analyzer error: %s", decoded.Error)
	}

	if len(decoded.Features) == 0 {
		return nil, ErrExtractionFailed
	}

	return decoded.Features, nil
}
