package routes

import (
	"epif/internal/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterInterventionRoutes(router *gin.Engine, interventionController *controllers.InterventionController) {
	router.GET("/interventions/:class", interventionController.GetInterventions)
}

func RegisterSchemaRoutes(router *gin.Engine, schemaController *controllers.SchemaController) {
	router.GET("/schema", schemaController.GetSchema)
}
