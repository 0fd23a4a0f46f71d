package routes

import (
	"epif/internal/controllers"
	"epif/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAssessmentRoutes mounts the assessment endpoint and, when
// persistence is enabled, the practitioner history.
func RegisterAssessmentRoutes(router *gin.Engine, assessmentController *controllers.AssessmentController, jwtSecret string) {
	router.POST("/assessment", middleware.OptionalAuth(jwtSecret), assessmentController.CreateAssessment)

	if !assessmentController.HasHistory() {
		return
	}

	assessmentRoutes := router.Group("/assessments")
	assessmentRoutes.Use(middleware.AuthMiddleware(jwtSecret))
	{
		assessmentRoutes.GET("/me", assessmentController.GetMyAssessments)
		assessmentRoutes.GET("/me/date-range", assessmentController.GetAssessmentsByDateRange)
		assessmentRoutes.GET("/export", assessmentController.ExportAssessments)

		assessmentRoutes.GET("/:id", assessmentController.GetAssessmentByID)
		assessmentRoutes.DELETE("/:id", assessmentController.DeleteAssessment)
	}
}
