package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModelServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /features", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"feature_names": []string{"Age", "TUG_Score"}})
	})
	mux.HandleFunc("POST /predict_proba", func(w http.ResponseWriter, r *http.Request) {
		var req rowRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Row) != len(req.FeatureNames) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"probabilities": []float64{0.5, 0.45, 0.05}})
	})
	mux.HandleFunc("POST /explain", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Explanation{
			FeatureNames: []string{"Age", "TUG_Score"},
			BaseValues:   []float64{0.3, 0.3, 0.4},
			Values:       [][]float64{{0.1, -0.2}, {0, 0.05}, {-0.1, 0.15}},
		})
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPMLClient(t *testing.T) {
	srv := newModelServer(t)
	c := NewHTTPMLClient(srv.URL+"/", time.Second, []string{"fallback"})
	ctx := context.Background()

	assert.Equal(t, []string{"fallback"}, c.FeatureNames())
	require.NoError(t, c.SyncFeatureNames(ctx))
	assert.Equal(t, []string{"Age", "TUG_Score"}, c.FeatureNames())

	probs, err := c.PredictProbabilities(ctx, []float64{70, 9.5})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.45, 0.05}, probs)

	exp, err := c.Explain(ctx, []float64{70, 9.5})
	require.NoError(t, err)
	assert.NoError(t, exp.Check(2, 3))

	assert.NoError(t, c.HealthCheck(ctx))
	assert.NoError(t, c.Close())
}

func TestHTTPMLClientErrors(t *testing.T) {
	srv := newModelServer(t)
	c := NewHTTPMLClient(srv.URL, time.Second, []string{"Age", "TUG_Score"})

	// Row length disagrees with the feature names: the server rejects it.
	_, err := c.PredictProbabilities(context.Background(), []float64{70})
	assert.ErrorContains(t, err, "returned status: 422")

	down := NewHTTPMLClient("http://127.0.0.1:1", 200*time.Millisecond, nil)
	assert.Error(t, down.HealthCheck(context.Background()))
}

func TestHTTPMLClientUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "loading"})
	}))
	defer srv.Close()

	err := NewHTTPMLClient(srv.URL, time.Second, nil).HealthCheck(context.Background())
	assert.ErrorContains(t, err, "service unhealthy: loading")
}

func TestHTTPMLClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewHTTPMLClient(srv.URL, 50*time.Millisecond, []string{"Age"})
	_, err := c.PredictProbabilities(context.Background(), []float64{70})
	assert.Error(t, err)
}
