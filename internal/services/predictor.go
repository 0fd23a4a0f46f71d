package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"epif/internal/features"
	"epif/internal/ml"
	"epif/internal/models"

	"github.com/sirupsen/logrus"
)

// CloseClassThreshold is the largest probability gap to the winner for a
// class to count as close.
const CloseClassThreshold = 0.10

// Number of attributions kept per explained class.
const maxAttributions = 10

const probabilitySumTolerance = 1e-3

var (
	// ErrPredictionFailed covers every classifier failure: transport errors,
	// timeouts and malformed output.
	ErrPredictionFailed = errors.New("prediction failed")
	// ErrFeatureMismatch means the aggregated features do not match what the
	// classifier expects.
	ErrFeatureMismatch = features.ErrFeatureMismatch
)

// Predictor runs the classifier on an aggregated feature vector.
type Predictor struct {
	classifier ml.Classifier
	explainer  ml.Explainer
	timeout    time.Duration
	logger     *logrus.Logger
}

// NewPredictor creates a predictor. explainer may be nil.
func NewPredictor(classifier ml.Classifier, explainer ml.Explainer, timeout time.Duration, logger *logrus.Logger) *Predictor {
	return &Predictor{
		classifier: classifier,
		explainer:  explainer,
		timeout:    timeout,
		logger:     logger,
	}
}

// FeatureNames is the classifier's column order.
func (p *Predictor) FeatureNames() []string {
	return p.classifier.FeatureNames()
}

// Row orders a vector by the classifier's feature names.
func (p *Predictor) Row(vector features.Vector) ([]float64, error) {
	row, err := vector.Row(p.classifier.FeatureNames())
	if err != nil {
		p.logger.WithError(err).Error("Feature vector does not match classifier")
		return nil, err
	}
	return row, nil
}

// Predict calls the classifier once and derives the winning and close
// classes.
func (p *Predictor) Predict(ctx context.Context, row []float64) (*models.PredictionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	probs, err := p.call(ctx, row)
	if err != nil {
		p.logger.WithError(err).WithField("elapsed", time.Since(start)).Error("Classifier call failed")
		return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}
	if err := checkProbabilities(probs); err != nil {
		p.logger.WithError(err).WithField("probabilities", probs).Error("Classifier returned malformed output")
		return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}

	result := ResultFromProbabilities(probs)
	p.logger.WithFields(logrus.Fields{
		"winning_class": result.WinningClass,
		"close_classes": result.CloseClasses,
		"elapsed":       time.Since(start),
	}).Info("Prediction completed")
	return result, nil
}

type probabilities struct {
	values []float64
	err    error
}

// call runs the classifier and gives up when ctx ends, even if the
// classifier itself does not watch ctx.
func (p *Predictor) call(ctx context.Context, row []float64) ([]float64, error) {
	done := make(chan probabilities, 1)
	go func() {
		values, err := p.classifier.PredictProbabilities(ctx, row)
		done <- probabilities{values: values, err: err}
	}()
	select {
	case res := <-done:
		return res.values, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ResultFromProbabilities picks the first index of the maximum as winner and
// every class within CloseClassThreshold of it as close.
func ResultFromProbabilities(probs []float64) *models.PredictionResult {
	winner := 0
	for c, p := range probs {
		if p > probs[winner] {
			winner = c
		}
	}
	var closeClasses []int
	for c, p := range probs {
		if probs[winner]-p <= CloseClassThreshold {
			closeClasses = append(closeClasses, c)
		}
	}
	return &models.PredictionResult{
		Probabilities: append([]float64(nil), probs...),
		WinningClass:  winner,
		WinningLabel:  models.ClassLabel(winner),
		CloseClasses:  closeClasses,
	}
}

func checkProbabilities(probs []float64) error {
	if len(probs) != models.NumClasses {
		return fmt.Errorf("expected %d probabilities, got %d", models.NumClasses, len(probs))
	}
	var sum float64
	for c, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 1 {
			return fmt.Errorf("probability of class %d is %v", c, p)
		}
		sum += p
	}
	if math.Abs(sum-1) > probabilitySumTolerance {
		return fmt.Errorf("probabilities sum to %v", sum)
	}
	return nil
}

// Explain returns the top attributions for each close class.
// Failures are logged and yield no explanation.
func (p *Predictor) Explain(ctx context.Context, row []float64, result *models.PredictionResult) []models.ClassExplanation {
	if p.explainer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	exp, err := p.explainer.Explain(ctx, row)
	if err == nil {
		err = exp.Check(len(row), models.NumClasses)
	}
	var index []int
	if err == nil {
		index, err = explanationIndex(p.classifier.FeatureNames(), exp.FeatureNames)
	}
	if err != nil {
		p.logger.WithError(err).Warn("Explanation unavailable")
		return nil
	}

	names := p.classifier.FeatureNames()
	out := make([]models.ClassExplanation, 0, len(result.CloseClasses))
	for _, c := range result.CloseClasses {
		attrs := make([]models.FeatureAttribution, len(row))
		for j := range row {
			attrs[j] = models.FeatureAttribution{
				Feature: names[j],
				Value:   row[j],
				Impact:  exp.Values[c][index[j]],
			}
		}
		sort.SliceStable(attrs, func(a, b int) bool {
			return math.Abs(attrs[a].Impact) > math.Abs(attrs[b].Impact)
		})
		if len(attrs) > maxAttributions {
			attrs = attrs[:maxAttributions]
		}
		out = append(out, models.ClassExplanation{
			Class:        c,
			Label:        models.ClassLabel(c),
			Winner:       c == result.WinningClass,
			BaseValue:    exp.BaseValues[c],
			Attributions: attrs,
		})
	}
	return out
}

// explanationIndex maps each row position to the explainer's column for the
// same feature. The explainer may list features in its own order.
func explanationIndex(rowNames, explained []string) ([]int, error) {
	if len(rowNames) != len(explained) {
		return nil, fmt.Errorf("%w: explanation covers %d features, row has %d", ErrFeatureMismatch, len(explained), len(rowNames))
	}
	pos := make(map[string]int, len(explained))
	for i, name := range explained {
		pos[name] = i
	}
	index := make([]int, len(rowNames))
	var missing []string
	for j, name := range rowNames {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		index[j] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: explanation lacks %s", ErrFeatureMismatch, strings.Join(missing, ", "))
	}
	return index, nil
}
