package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assessment is a stored submission together with its prediction.
type Assessment struct {
	ID             uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id" example:"7d8f2f4e-3c1a-4d1e-9b5a-2f4c1f0f6c11"`
	CreatedAt      time.Time          `gorm:"index" json:"created_at" example:"2026-01-01T00:00:00Z"`
	UpdatedAt      time.Time          `json:"updated_at" example:"2026-01-01T00:00:00Z"`
	DeletedAt      gorm.DeletedAt     `gorm:"index" json:"-" swaggerignore:"true"`
	PractitionerID *uint              `gorm:"index" json:"practitioner_id,omitempty" example:"1"`
	Falls          int                `gorm:"not null;check:falls BETWEEN 1 AND 5" json:"falls" example:"2"`
	FallLocation   string             `gorm:"size:16;not null" json:"fall_location" example:"Indoor"`
	Features       map[string]float64 `gorm:"serializer:json;type:jsonb" json:"features"`
	Probabilities  []float64          `gorm:"serializer:json;type:jsonb" json:"probabilities"`
	WinningClass   int                `gorm:"not null;check:winning_class BETWEEN 0 AND 2" json:"winning_class" example:"1"`
	WinningLabel   string             `gorm:"size:32" json:"winning_label" example:"Moderate risk"`
	CloseClasses   []int              `gorm:"serializer:json;type:jsonb" json:"close_classes"`
}

func (a *Assessment) TableName() string {
	return "assessments"
}

// BeforeCreate assigns a random ID when none was set.
func (a *Assessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AssessmentRequest is the submitted form.
type AssessmentRequest struct {
	Falls        int                        `json:"falls" binding:"required,min=1,max=5" example:"1"`
	FallLocation FallLocation               `json:"fall_location" binding:"required" swaggertype:"string" enums:"Indoor,Outdoor,Both" example:"Indoor"`
	Fields       map[string]json.RawMessage `json:"fields" swaggertype:"object"`
	Incidents    []IncidentRequest          `json:"incidents"`
}

// IncidentRequest is one reported fall.
type IncidentRequest struct {
	HospitalizationDays *int               `json:"hospitalization_days" example:"0"`
	Categories          map[string]*string `json:"categories"`
}

// AssessmentResponse is returned for a completed assessment.
type AssessmentResponse struct {
	AssessmentID  *uuid.UUID                 `json:"assessment_id,omitempty"`
	Message       string                     `json:"message" example:"The patient was successfully assigned to: LOW RISK profile"`
	Prediction    PredictionResult           `json:"prediction"`
	Features      map[string]float64         `json:"features"`
	OptionWeights map[string]float64         `json:"option_weights"`
	Explanations  []ClassExplanation         `json:"explanations,omitempty"`
	Interventions InterventionRecommendation `json:"interventions"`
}
