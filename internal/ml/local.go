package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// LinearModelArtifact is the JSON export of a standard scaler followed by a
// multinomial linear classifier.
type LinearModelArtifact struct {
	FeatureNames []string `json:"feature_names"`
	Scaler       struct {
		Mean  []float64 `json:"mean"`
		Scale []float64 `json:"scale"`
	} `json:"scaler"`
	Coefficients [][]float64 `json:"coefficients"`
	Intercepts   []float64   `json:"intercepts"`
}

// LinearModel evaluates a LinearModelArtifact in process.
type LinearModel struct {
	names      []string
	mean       *mat.VecDense
	scale      *mat.VecDense
	weights    *mat.Dense
	intercepts *mat.VecDense
}

// LoadLinearModel reads a model artifact from disk.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}
	return ParseLinearModel(data)
}

// ParseLinearModel decodes and checks a model artifact.
func ParseLinearModel(data []byte) (*LinearModel, error) {
	var a LinearModelArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}

	n := len(a.FeatureNames)
	if n == 0 {
		return nil, fmt.Errorf("model artifact has no features")
	}
	if len(a.Scaler.Mean) != n || len(a.Scaler.Scale) != n {
		return nil, fmt.Errorf("scaler covers %d/%d features, expected %d", len(a.Scaler.Mean), len(a.Scaler.Scale), n)
	}
	for i, s := range a.Scaler.Scale {
		if s == 0 {
			return nil, fmt.Errorf("scaler scale for %s is zero", a.FeatureNames[i])
		}
	}
	classes := len(a.Coefficients)
	if classes < 2 || len(a.Intercepts) != classes {
		return nil, fmt.Errorf("model artifact has %d coefficient rows and %d intercepts", classes, len(a.Intercepts))
	}
	flat := make([]float64, 0, classes*n)
	for c, row := range a.Coefficients {
		if len(row) != n {
			return nil, fmt.Errorf("class %d has %d coefficients, expected %d", c, len(row), n)
		}
		flat = append(flat, row...)
	}

	return &LinearModel{
		names:      append([]string(nil), a.FeatureNames...),
		mean:       mat.NewVecDense(n, append([]float64(nil), a.Scaler.Mean...)),
		scale:      mat.NewVecDense(n, append([]float64(nil), a.Scaler.Scale...)),
		weights:    mat.NewDense(classes, n, flat),
		intercepts: mat.NewVecDense(classes, append([]float64(nil), a.Intercepts...)),
	}, nil
}

func (m *LinearModel) FeatureNames() []string {
	return append([]string(nil), m.names...)
}

func (m *LinearModel) standardize(row []float64) (*mat.VecDense, error) {
	if len(row) != len(m.names) {
		return nil, fmt.Errorf("row has %d values, model expects %d", len(row), len(m.names))
	}
	z := mat.NewVecDense(len(row), append([]float64(nil), row...))
	z.SubVec(z, m.mean)
	z.DivElemVec(z, m.scale)
	return z, nil
}

func (m *LinearModel) PredictProbabilities(ctx context.Context, row []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	z, err := m.standardize(row)
	if err != nil {
		return nil, err
	}

	classes, _ := m.weights.Dims()
	logits := mat.NewVecDense(classes, nil)
	logits.MulVec(m.weights, z)
	logits.AddVec(logits, m.intercepts)
	return softmax(logits.RawVector().Data), nil
}

// Explain returns w[c][j]·z[j] per class and feature, with the class
// intercept as base value. Attributions live in logit space.
func (m *LinearModel) Explain(ctx context.Context, row []float64) (*Explanation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	z, err := m.standardize(row)
	if err != nil {
		return nil, err
	}

	classes, n := m.weights.Dims()
	exp := &Explanation{
		FeatureNames: m.FeatureNames(),
		BaseValues:   make([]float64, classes),
		Values:       make([][]float64, classes),
	}
	for c := 0; c < classes; c++ {
		contrib := mat.NewVecDense(n, nil)
		contrib.MulElemVec(m.weights.RowView(c), z)
		exp.Values[c] = append([]float64(nil), contrib.RawVector().Data...)
		exp.BaseValues[c] = m.intercepts.AtVec(c)
	}
	return exp, nil
}

func (m *LinearModel) HealthCheck(context.Context) error { return nil }

func (m *LinearModel) Close() error { return nil }

func softmax(logits []float64) []float64 {
	maxLogit := math.Inf(-1)
	for _, l := range logits {
		maxLogit = math.Max(maxLogit, l)
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		out[i] = math.Exp(l - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
