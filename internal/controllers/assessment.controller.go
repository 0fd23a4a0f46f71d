package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"epif/internal/export"
	"epif/internal/middleware"
	"epif/internal/models"
	"epif/internal/repository"
	"epif/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type AssessmentController struct {
	service *services.AssessmentService
	repo    repository.AssessmentRepository
	logger  *logrus.Logger
}

// NewAssessmentController creates the controller. repo may be nil when
// persistence is disabled; the history handlers are then not routed.
func NewAssessmentController(service *services.AssessmentService, repo repository.AssessmentRepository, logger *logrus.Logger) *AssessmentController {
	return &AssessmentController{
		service: service,
		repo:    repo,
		logger:  logger,
	}
}

// HasHistory reports whether stored assessments can be queried.
func (ac *AssessmentController) HasHistory() bool {
	return ac.repo != nil
}

// CreateAssessment godoc
// @Summary Assess a faller
// @Description Aggregate the fall incidents, validate the form, predict the fall-risk profile and select interventions. A bearer token is optional; with one, the assessment is stored under the practitioner.
// @Tags assessment
// @Accept json
// @Produce json
// @Param request body models.AssessmentRequest true "Assessment form"
// @Success 200 {object} map[string]interface{} "Assessment completed"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 422 {object} map[string]interface{} "Form is incomplete"
// @Failure 502 {object} map[string]interface{} "Prediction failed"
// @Router /assessment [post]
func (ac *AssessmentController) CreateAssessment(c *gin.Context) {
	var req models.AssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	var practitionerID *uint
	if id, ok := middleware.PractitionerID(c); ok {
		practitionerID = &id
	}

	resp, err := ac.service.Assess(c.Request.Context(), req, practitionerID)
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"status":  "error",
				"message": validationErr.Result.Message(),
				"errors":  validationErr.Result,
			})
		case errors.Is(err, services.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "Invalid request",
				"error":   err.Error(),
			})
		default:
			ac.logger.WithError(err).Error("Assessment failed")
			c.JSON(http.StatusBadGateway, gin.H{
				"status":  "error",
				"message": "Prediction failed",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": resp.Message,
		"data":    resp,
	})
}

// GetMyAssessments godoc
// @Summary Get the practitioner's assessments
// @Description Retrieve the assessments stored by the authenticated practitioner, newest first
// @Tags assessment
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{} "Assessments retrieved successfully"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 500 {object} map[string]interface{} "Failed to retrieve assessments"
// @Router /assessments/me [get]
func (ac *AssessmentController) GetMyAssessments(c *gin.Context) {
	practitionerID, ok := requirePractitioner(c)
	if !ok {
		return
	}

	assessments, err := ac.repo.GetAssessmentsByPractitionerID(practitionerID)
	if err != nil {
		ac.logger.WithError(err).Error("Failed to retrieve assessments")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to retrieve assessments",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Assessments retrieved successfully",
		"data":    assessments,
	})
}

// GetAssessmentsByDateRange godoc
// @Summary Get the practitioner's assessments by date range
// @Description Retrieve assessments of the authenticated practitioner created between two dates, both inclusive
// @Tags assessment
// @Produce json
// @Security ApiKeyAuth
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{} "Assessments retrieved successfully"
// @Failure 400 {object} map[string]interface{} "Invalid date format"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 500 {object} map[string]interface{} "Failed to retrieve assessments"
// @Router /assessments/me/date-range [get]
func (ac *AssessmentController) GetAssessmentsByDateRange(c *gin.Context) {
	practitionerID, ok := requirePractitioner(c)
	if !ok {
		return
	}

	startDate, endDate, err := parseDateRange(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid date format",
			"error":   err.Error(),
		})
		return
	}

	assessments, err := ac.repo.GetAssessmentsByPractitionerIDAndDateRange(practitionerID, startDate, endDate)
	if err != nil {
		ac.logger.WithError(err).Error("Failed to retrieve assessments")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to retrieve assessments",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Assessments retrieved successfully",
		"data":    assessments,
	})
}

// GetAssessmentByID godoc
// @Summary Get assessment by ID
// @Tags assessment
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} map[string]interface{} "Assessment retrieved successfully"
// @Failure 400 {object} map[string]interface{} "Invalid assessment ID"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 403 {object} map[string]interface{} "Forbidden"
// @Failure 404 {object} map[string]interface{} "Assessment not found"
// @Router /assessments/{id} [get]
func (ac *AssessmentController) GetAssessmentByID(c *gin.Context) {
	assessment, ok := ac.ownedAssessment(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Assessment retrieved successfully",
		"data":    assessment,
	})
}

// DeleteAssessment godoc
// @Summary Delete an assessment
// @Tags assessment
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} map[string]interface{} "Assessment deleted successfully"
// @Failure 400 {object} map[string]interface{} "Invalid assessment ID"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 403 {object} map[string]interface{} "Forbidden"
// @Failure 404 {object} map[string]interface{} "Assessment not found"
// @Router /assessments/{id} [delete]
func (ac *AssessmentController) DeleteAssessment(c *gin.Context) {
	assessment, ok := ac.ownedAssessment(c)
	if !ok {
		return
	}

	if err := ac.repo.DeleteAssessment(assessment.ID); err != nil {
		if errors.Is(err, repository.ErrAssessmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Assessment not found",
			})
			return
		}
		ac.logger.WithError(err).WithField("assessment_id", assessment.ID).Error("Failed to delete assessment")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to delete assessment",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Assessment deleted successfully",
	})
}

// ExportAssessments godoc
// @Summary Export the practitioner's assessments as Parquet
// @Description Download the authenticated practitioner's assessments as a zstd-compressed Parquet file. Without dates every stored assessment is exported.
// @Tags assessment
// @Produce application/octet-stream
// @Security ApiKeyAuth
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {file} file "Parquet file"
// @Failure 400 {object} map[string]interface{} "Invalid date format"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 500 {object} map[string]interface{} "Failed to export assessments"
// @Router /assessments/export [get]
func (ac *AssessmentController) ExportAssessments(c *gin.Context) {
	practitionerID, ok := requirePractitioner(c)
	if !ok {
		return
	}

	var (
		assessments []models.Assessment
		err         error
	)
	if c.Query("start_date") == "" && c.Query("end_date") == "" {
		assessments, err = ac.repo.GetAssessmentsByPractitionerID(practitionerID)
	} else {
		startDate, endDate, parseErr := parseDateRange(c.Query("start_date"), c.Query("end_date"))
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "Invalid date format",
				"error":   parseErr.Error(),
			})
			return
		}
		assessments, err = ac.repo.GetAssessmentsByPractitionerIDAndDateRange(practitionerID, startDate, endDate)
	}
	if err != nil {
		ac.logger.WithError(err).Error("Failed to retrieve assessments for export")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to export assessments",
		})
		return
	}

	filename := fmt.Sprintf("assessments-%s.parquet", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.apache.parquet")
	c.Status(http.StatusOK)

	w := export.NewWriter(c.Writer)
	if _, err := w.Write(assessments); err != nil {
		ac.logger.WithError(err).Error("Failed to write parquet export")
		return
	}
	if err := w.Close(); err != nil {
		ac.logger.WithError(err).Error("Failed to finish parquet export")
		return
	}
	ac.logger.WithFields(logrus.Fields{
		"practitioner_id": practitionerID,
		"rows":            w.Count(),
	}).Info("Exported assessments")
}

// ownedAssessment loads the assessment named in the path and checks that it
// belongs to the authenticated practitioner. It writes the error response
// itself.
func (ac *AssessmentController) ownedAssessment(c *gin.Context) (*models.Assessment, bool) {
	practitionerID, ok := requirePractitioner(c)
	if !ok {
		return nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid assessment ID",
			"error":   "ID must be a valid UUID",
		})
		return nil, false
	}

	assessment, err := ac.repo.GetAssessmentByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrAssessmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Assessment not found",
			})
			return nil, false
		}
		ac.logger.WithError(err).WithField("assessment_id", id).Error("Failed to load assessment")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to retrieve assessment",
		})
		return nil, false
	}

	if assessment.PractitionerID == nil || *assessment.PractitionerID != practitionerID {
		c.JSON(http.StatusForbidden, gin.H{
			"status":  "error",
			"message": "Access denied: assessment belongs to a different practitioner",
		})
		return nil, false
	}
	return assessment, true
}

func requirePractitioner(c *gin.Context) (uint, bool) {
	id, ok := middleware.PractitionerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "Unauthorized",
			"error":   "Practitioner ID not found in token",
		})
	}
	return id, ok
}

// parseDateRange parses two YYYY-MM-DD dates. The end date covers its whole
// day.
func parseDateRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date must be in YYYY-MM-DD format")
	}
	endDate, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date must be in YYYY-MM-DD format")
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date is before start_date")
	}
	return startDate, endDate.Add(24 * time.Hour).Add(-time.Second), nil
}
