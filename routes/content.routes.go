package routes

import (
	"epif/internal/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterContentRoutes(router *gin.Engine, contentController *controllers.ContentController) {
	contentRoutes := router.Group("/content")
	{
		contentRoutes.GET("/glossary", contentController.GetGlossary)
		contentRoutes.GET("/faqs", contentController.GetFAQs)
		contentRoutes.GET("/summary", contentController.GetSummary)
		contentRoutes.GET("/instructions", contentController.ListInstructions)
		contentRoutes.GET("/instructions/:name", contentController.DownloadInstructions)
	}
}
