package ml

import (
	"context"
	"fmt"

	"epif/internal/config"
)

// featureSyncer is implemented by clients that learn the feature order from
// their backend.
type featureSyncer interface {
	SyncFeatureNames(ctx context.Context) error
}

// NewFromConfig builds the client selected by CLASSIFIER_MODE. fallback is
// the feature order used until a remote backend reports its own.
func NewFromConfig(cfg *config.Config, fallback []string) (MLClient, error) {
	switch cfg.ClassifierMode {
	case config.ClassifierModeHTTP:
		return NewHTTPMLClient(cfg.ClassifierURL, cfg.ClassifierTimeout, fallback), nil
	case config.ClassifierModeGRPC:
		return NewGRPCMLClient(cfg.ClassifierGRPCAddress, fallback)
	case config.ClassifierModeLocal:
		return LoadLinearModel(cfg.ClassifierModelPath)
	}
	return nil, fmt.Errorf("unsupported classifier mode %q", cfg.ClassifierMode)
}

// SyncFeatureNames asks a remote client for its feature order. Local models
// already know theirs and are left untouched.
func SyncFeatureNames(ctx context.Context, c Classifier) error {
	if s, ok := c.(featureSyncer); ok {
		return s.SyncFeatureNames(ctx)
	}
	return nil
}
