package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"epif/internal/cache"
	"epif/internal/features"
	"epif/internal/models"
	"epif/internal/repository"

	"github.com/sirupsen/logrus"
)

// ErrInvalidRequest marks a submission the form schema cannot accept.
var ErrInvalidRequest = errors.New("invalid request")

// AssessmentService runs a submitted form through aggregation, validation,
// prediction, explanation and intervention selection.
type AssessmentService struct {
	schema    *features.Schema
	validator *Validator
	predictor *Predictor
	selector  *InterventionSelector
	cache     cache.PredictionCache
	repo      repository.AssessmentRepository
	events    EventSink
	logger    *logrus.Logger
}

// NewAssessmentService wires the pipeline. predictionCache and repo may be
// nil to run without caching or persistence.
func NewAssessmentService(
	schema *features.Schema,
	validator *Validator,
	predictor *Predictor,
	selector *InterventionSelector,
	predictionCache cache.PredictionCache,
	repo repository.AssessmentRepository,
	logger *logrus.Logger,
) *AssessmentService {
	return &AssessmentService{
		schema:    schema,
		validator: validator,
		predictor: predictor,
		selector:  selector,
		cache:     predictionCache,
		repo:      repo,
		logger:    logger,
	}
}

// WithEvents publishes an AssessmentEvent for every completed assessment.
func (s *AssessmentService) WithEvents(events EventSink) *AssessmentService {
	s.events = events
	return s
}

// Assess evaluates one submission. It returns ErrInvalidRequest for input
// the schema rejects, *ValidationError for unfilled fields, and
// ErrPredictionFailed or ErrFeatureMismatch when the classifier cannot be
// used.
func (s *AssessmentService) Assess(ctx context.Context, req models.AssessmentRequest, practitionerID *uint) (*models.AssessmentResponse, error) {
	if !s.schema.ValidFallCount(req.Falls) {
		return nil, fmt.Errorf("%w: falls must be between %d and %d", ErrInvalidRequest, s.schema.MinFalls, s.schema.MaxFalls)
	}
	if !models.LocationAllowed(req.FallLocation, req.Falls) {
		return nil, fmt.Errorf("%w: fall location %s is not allowed for %d fall(s)", ErrInvalidRequest, req.FallLocation, req.Falls)
	}

	registry, err := features.BuildRegistry(s.schema, req.Falls, formInput(req))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	aggregation := features.Aggregate(registry)

	if result := s.validator.Validate(req.Falls, registry); !result.Valid() {
		return nil, &ValidationError{Result: result}
	}

	row, err := s.predictor.Row(aggregation.Features)
	if err != nil {
		return nil, err
	}

	prediction, err := s.predict(ctx, row)
	if err != nil {
		return nil, err
	}

	resp := &models.AssessmentResponse{
		Message:       fmt.Sprintf("The patient was successfully assigned to: %s profile", strings.ToUpper(prediction.WinningLabel)),
		Prediction:    *prediction,
		Features:      aggregation.Features,
		OptionWeights: aggregation.OptionWeights,
		Explanations:  s.predictor.Explain(ctx, row, prediction),
		Interventions: s.selector.Select(prediction.WinningClass, req.FallLocation),
	}

	if s.repo != nil {
		assessment := &models.Assessment{
			PractitionerID: practitionerID,
			Falls:          req.Falls,
			FallLocation:   req.FallLocation.String(),
			Features:       aggregation.Features,
			Probabilities:  prediction.Probabilities,
			WinningClass:   prediction.WinningClass,
			WinningLabel:   prediction.WinningLabel,
			CloseClasses:   prediction.CloseClasses,
		}
		if err := s.repo.SaveAssessment(assessment); err != nil {
			s.logger.WithError(err).Error("Failed to save assessment")
		} else {
			resp.AssessmentID = &assessment.ID
		}
	}

	if s.events != nil {
		if err := s.events.Submit(newAssessmentEvent(req, resp, practitionerID, time.Now())); err != nil {
			s.logger.WithError(err).Warn("Assessment event dropped")
		}
	}

	return resp, nil
}

// predict consults the prediction cache before calling the classifier.
// Cache failures are logged and otherwise ignored.
func (s *AssessmentService) predict(ctx context.Context, row []float64) (*models.PredictionResult, error) {
	if s.cache == nil {
		return s.predictor.Predict(ctx, row)
	}

	key := cache.PredictionKey(s.predictor.FeatureNames(), row)
	probs, found, err := s.cache.GetProbabilities(ctx, key)
	switch {
	case err != nil:
		s.logger.WithError(err).Warn("Prediction cache lookup failed")
	case found && checkProbabilities(probs) == nil:
		s.logger.WithField("key", key).Debug("Prediction cache hit")
		return ResultFromProbabilities(probs), nil
	}

	result, err := s.predictor.Predict(ctx, row)
	if err != nil {
		return nil, err
	}
	if err := s.cache.StoreProbabilities(ctx, key, result.Probabilities); err != nil {
		s.logger.WithError(err).Warn("Failed to cache prediction")
	}
	return result, nil
}

func formInput(req models.AssessmentRequest) features.FormInput {
	in := features.FormInput{Fields: req.Fields}
	for _, inc := range req.Incidents {
		in.Incidents = append(in.Incidents, features.IncidentInput{
			HospitalizationDays: inc.HospitalizationDays,
			Categories:          inc.Categories,
		})
	}
	return in
}
