package repository

import (
	"errors"
	"time"

	"epif/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrAssessmentNotFound is returned when no assessment has the requested ID.
var ErrAssessmentNotFound = errors.New("assessment not found")

type AssessmentRepository interface {
	SaveAssessment(assessment *models.Assessment) error
	GetAssessmentByID(id uuid.UUID) (*models.Assessment, error)
	GetAssessmentsByPractitionerID(practitionerID uint) ([]models.Assessment, error)
	GetAssessmentsByPractitionerIDAndDateRange(practitionerID uint, startDate, endDate time.Time) ([]models.Assessment, error)
	GetAssessmentsByDateRange(startDate, endDate time.Time) ([]models.Assessment, error)
	DeleteAssessment(id uuid.UUID) error
	PurgeAssessmentsBefore(cutoff time.Time) (int64, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db}
}

func (r *assessmentRepository) SaveAssessment(assessment *models.Assessment) error {
	return r.db.Create(assessment).Error
}

func (r *assessmentRepository) GetAssessmentByID(id uuid.UUID) (*models.Assessment, error) {
	var assessment models.Assessment
	err := r.db.First(&assessment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssessmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) GetAssessmentsByPractitionerID(practitionerID uint) ([]models.Assessment, error) {
	var assessments []models.Assessment
	err := r.db.Where("practitioner_id = ?", practitionerID).
		Order("created_at DESC").
		Find(&assessments).Error
	return assessments, err
}

func (r *assessmentRepository) GetAssessmentsByPractitionerIDAndDateRange(practitionerID uint, startDate, endDate time.Time) ([]models.Assessment, error) {
	var assessments []models.Assessment
	err := r.db.Where("practitioner_id = ? AND created_at BETWEEN ? AND ?", practitionerID, startDate, endDate).
		Order("created_at DESC").
		Find(&assessments).Error
	return assessments, err
}

func (r *assessmentRepository) GetAssessmentsByDateRange(startDate, endDate time.Time) ([]models.Assessment, error) {
	var assessments []models.Assessment
	err := r.db.Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Order("created_at ASC").
		Find(&assessments).Error
	return assessments, err
}

func (r *assessmentRepository) DeleteAssessment(id uuid.UUID) error {
	res := r.db.Delete(&models.Assessment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAssessmentNotFound
	}
	return nil
}

// PurgeAssessmentsBefore permanently removes assessments created before
// cutoff, soft-deleted ones included.
func (r *assessmentRepository) PurgeAssessmentsBefore(cutoff time.Time) (int64, error) {
	res := r.db.Unscoped().Where("created_at < ?", cutoff).Delete(&models.Assessment{})
	return res.RowsAffected, res.Error
}
