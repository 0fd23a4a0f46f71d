package ml

import (
	"context"
	"fmt"
	"sync"
)

// Classifier is the pre-trained fall-risk model.
type Classifier interface {
	// FeatureNames is the column order PredictProbabilities expects.
	FeatureNames() []string
	// PredictProbabilities returns one probability per risk class.
	PredictProbabilities(ctx context.Context, row []float64) ([]float64, error)
}

// Explanation holds per-class feature attributions for one row.
type Explanation struct {
	FeatureNames []string    `json:"feature_names"`
	BaseValues   []float64   `json:"base_values"`
	Values       [][]float64 `json:"values"`
}

// Check verifies the explanation has one attribution per feature for every
// class.
func (e *Explanation) Check(features, classes int) error {
	if len(e.FeatureNames) != features {
		return fmt.Errorf("explanation covers %d features, expected %d", len(e.FeatureNames), features)
	}
	if len(e.BaseValues) != classes || len(e.Values) != classes {
		return fmt.Errorf("explanation covers %d classes, expected %d", len(e.Values), classes)
	}
	for c, values := range e.Values {
		if len(values) != features {
			return fmt.Errorf("class %d has %d attributions, expected %d", c, len(values), features)
		}
	}
	return nil
}

// Explainer produces attribution values for a feature row.
type Explainer interface {
	Explain(ctx context.Context, row []float64) (*Explanation, error)
}

// HealthChecker reports whether the model backend is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// MLClient is a model backend offering prediction, explanation and health.
type MLClient interface {
	Classifier
	Explainer
	HealthChecker
	Close() error
}

// featureNames is the column order shared by the remote clients. It starts
// from a fallback and is replaced once the backend reports its own.
type featureNames struct {
	mu    sync.RWMutex
	names []string
}

func (f *featureNames) get() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.names...)
}

func (f *featureNames) set(names []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append([]string(nil), names...)
}
