package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPMLClient talks to a model service exposing JSON endpoints:
// GET /features, POST /predict_proba, POST /explain and GET /health.
type HTTPMLClient struct {
	baseURL  string
	client   *http.Client
	features featureNames
}

// NewHTTPMLClient creates a client for baseURL. fallback is used as the
// feature order until SyncFeatureNames succeeds.
func NewHTTPMLClient(baseURL string, timeout time.Duration, fallback []string) *HTTPMLClient {
	c := &HTTPMLClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
	c.features.set(fallback)
	return c
}

type featuresResponse struct {
	FeatureNames []string `json:"feature_names"`
}

type rowRequest struct {
	FeatureNames []string  `json:"feature_names"`
	Row          []float64 `json:"row"`
}

type predictResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (c *HTTPMLClient) FeatureNames() []string {
	return c.features.get()
}

// SyncFeatureNames fetches the feature order from the service.
func (c *HTTPMLClient) SyncFeatureNames(ctx context.Context) error {
	var resp featuresResponse
	if err := c.do(ctx, http.MethodGet, "/features", nil, &resp); err != nil {
		return err
	}
	if len(resp.FeatureNames) == 0 {
		return fmt.Errorf("ML service returned no feature names")
	}
	c.features.set(resp.FeatureNames)
	return nil
}

func (c *HTTPMLClient) PredictProbabilities(ctx context.Context, row []float64) ([]float64, error) {
	var resp predictResponse
	req := rowRequest{FeatureNames: c.FeatureNames(), Row: row}
	if err := c.do(ctx, http.MethodPost, "/predict_proba", req, &resp); err != nil {
		return nil, err
	}
	return resp.Probabilities, nil
}

func (c *HTTPMLClient) Explain(ctx context.Context, row []float64) (*Explanation, error) {
	var resp Explanation
	req := rowRequest{FeatureNames: c.FeatureNames(), Row: row}
	if err := c.do(ctx, http.MethodPost, "/explain", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPMLClient) HealthCheck(ctx context.Context) error {
	var resp healthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if resp.Status != "healthy" {
		return fmt.Errorf("service unhealthy: %s", resp.Status)
	}
	return nil
}

func (c *HTTPMLClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *HTTPMLClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal ML request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create ML request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ML service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ML service %s returned status: %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode ML response: %w", err)
	}
	return nil
}
