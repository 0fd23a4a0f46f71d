package routes

import (
	"epif/internal/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterHealthRoutes mounts the banner and the liveness and readiness
// probes.
func RegisterHealthRoutes(router *gin.Engine, healthController *controllers.HealthController) {
	router.GET("/", healthController.Banner)
	router.GET("/healthz", healthController.Healthz)
	router.GET("/readyz", healthController.Readyz)
}
