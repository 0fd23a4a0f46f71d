// Package mocks holds testify mocks shared by the controller and service
// tests.
package mocks

import (
	"context"
	"time"

	"epif/internal/ml"
	"epif/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockAssessmentRepository struct {
	mock.Mock
}

func (m *MockAssessmentRepository) SaveAssessment(assessment *models.Assessment) error {
	args := m.Called(assessment)
	return args.Error(0)
}

func (m *MockAssessmentRepository) GetAssessmentByID(id uuid.UUID) (*models.Assessment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assessment), args.Error(1)
}

func (m *MockAssessmentRepository) GetAssessmentsByPractitionerID(practitionerID uint) ([]models.Assessment, error) {
	args := m.Called(practitionerID)
	return args.Get(0).([]models.Assessment), args.Error(1)
}

func (m *MockAssessmentRepository) GetAssessmentsByPractitionerIDAndDateRange(practitionerID uint, startDate, endDate time.Time) ([]models.Assessment, error) {
	args := m.Called(practitionerID, startDate, endDate)
	return args.Get(0).([]models.Assessment), args.Error(1)
}

func (m *MockAssessmentRepository) GetAssessmentsByDateRange(startDate, endDate time.Time) ([]models.Assessment, error) {
	args := m.Called(startDate, endDate)
	return args.Get(0).([]models.Assessment), args.Error(1)
}

func (m *MockAssessmentRepository) DeleteAssessment(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockAssessmentRepository) PurgeAssessmentsBefore(cutoff time.Time) (int64, error) {
	args := m.Called(cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockMLClient is a classifier backend. Its feature names are fixed at
// construction so Row lookups do not need expectations.
type MockMLClient struct {
	mock.Mock
	Features []string
}

func (m *MockMLClient) FeatureNames() []string {
	return m.Features
}

func (m *MockMLClient) PredictProbabilities(ctx context.Context, row []float64) ([]float64, error) {
	args := m.Called(ctx, row)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float64), args.Error(1)
}

func (m *MockMLClient) Explain(ctx context.Context, row []float64) (*ml.Explanation, error) {
	args := m.Called(ctx, row)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ml.Explanation), args.Error(1)
}

func (m *MockMLClient) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMLClient) Close() error {
	return nil
}

type MockPredictionCache struct {
	mock.Mock
}

func (m *MockPredictionCache) GetProbabilities(ctx context.Context, key string) ([]float64, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]float64), args.Bool(1), args.Error(2)
}

func (m *MockPredictionCache) StoreProbabilities(ctx context.Context, key string, probs []float64) error {
	args := m.Called(ctx, key, probs)
	return args.Error(0)
}
