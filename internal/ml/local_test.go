package ml

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestModel(t *testing.T) *LinearModel {
	t.Helper()
	m, err := LoadLinearModel("testdata/linear_model.json")
	require.NoError(t, err)
	return m
}

func TestLinearModelPredictProbabilities(t *testing.T) {
	m := loadTestModel(t)
	assert.Equal(t, []string{"Age", "TUG_Score", "has_Vertigo"}, m.FeatureNames())

	// At the scaler mean only the intercepts remain.
	probs, err := m.PredictProbabilities(context.Background(), []float64{72, 10, 0.5})
	require.NoError(t, err)
	require.Len(t, probs, 3)

	want := softmax([]float64{0.2, 0.5, -0.7})
	for i := range want {
		assert.InDelta(t, want[i], probs[i], 1e-12)
	}

	// An older, slower patient with vertigo leans to the high-risk class.
	probs, err = m.PredictProbabilities(context.Background(), []float64{80, 14, 1})
	require.NoError(t, err)
	assert.Greater(t, probs[2], probs[0])

	var sum float64
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestLinearModelExplain(t *testing.T) {
	m := loadTestModel(t)

	exp, err := m.Explain(context.Background(), []float64{76, 12, 1})
	require.NoError(t, err)
	require.NoError(t, exp.Check(3, 3))

	// z = [1, 1, 1]
	assert.InDeltaSlice(t, []float64{-0.8, -1.2, -0.4}, exp.Values[0], 1e-12)
	assert.InDeltaSlice(t, []float64{0.7, 1.0, 0.3}, exp.Values[2], 1e-12)
	assert.Equal(t, []float64{0.2, 0.5, -0.7}, exp.BaseValues)
}

func TestLinearModelRejectsWrongRowLength(t *testing.T) {
	m := loadTestModel(t)

	_, err := m.PredictProbabilities(context.Background(), []float64{72, 10})
	assert.Error(t, err)
}

func TestLinearModelHonoursCancelledContext(t *testing.T) {
	m := loadTestModel(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.PredictProbabilities(ctx, []float64{72, 10, 0.5})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseLinearModelValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `{`},
		{name: "no features", doc: `{"feature_names":[]}`},
		{name: "scaler length", doc: `{"feature_names":["a","b"],"scaler":{"mean":[0],"scale":[1,1]},"coefficients":[[1,1],[1,1]],"intercepts":[0,0]}`},
		{name: "zero scale", doc: `{"feature_names":["a"],"scaler":{"mean":[0],"scale":[0]},"coefficients":[[1],[1]],"intercepts":[0,0]}`},
		{name: "ragged coefficients", doc: `{"feature_names":["a","b"],"scaler":{"mean":[0,0],"scale":[1,1]},"coefficients":[[1,1],[1]],"intercepts":[0,0]}`},
		{name: "intercept count", doc: `{"feature_names":["a"],"scaler":{"mean":[0],"scale":[1]},"coefficients":[[1],[1]],"intercepts":[0]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLinearModel([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestSoftmaxIsStable(t *testing.T) {
	probs := softmax([]float64{1000, 1000})
	assert.InDelta(t, 0.5, probs[0], 1e-12)
	assert.False(t, math.IsNaN(probs[1]))
}
