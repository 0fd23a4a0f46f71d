package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"epif/internal/content"

	"github.com/gin-gonic/gin"
)

// ContentController serves the static reference material.
type ContentController struct {
	library *content.Library
}

func NewContentController(library *content.Library) *ContentController {
	return &ContentController{library: library}
}

// GetGlossary godoc
// @Summary Get the glossary
// @Description Risk factors, interpretation of each factor and the model limitations
// @Tags content
// @Produce json
// @Success 200 {object} map[string]interface{} "Glossary retrieved successfully"
// @Router /content/glossary [get]
func (cc *ContentController) GetGlossary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Glossary retrieved successfully",
		"data":    cc.library.Glossary,
	})
}

// GetFAQs godoc
// @Summary Get the FAQ grouped by type
// @Tags content
// @Produce json
// @Success 200 {object} map[string]interface{} "FAQ retrieved successfully"
// @Router /content/faqs [get]
func (cc *ContentController) GetFAQs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "FAQ retrieved successfully",
		"data":    cc.library.FAQGroups(),
	})
}

// GetSummary godoc
// @Summary Get the data summaries
// @Description Overall summary of the training data and one summary per risk profile
// @Tags content
// @Produce json
// @Success 200 {object} map[string]interface{} "Summary retrieved successfully"
// @Router /content/summary [get]
func (cc *ContentController) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Summary retrieved successfully",
		"data":    cc.library.Summary,
	})
}

// ListInstructions godoc
// @Summary List the functional test instructions
// @Tags content
// @Produce json
// @Success 200 {object} map[string]interface{} "Instructions retrieved successfully"
// @Router /content/instructions [get]
func (cc *ContentController) ListInstructions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Instructions retrieved successfully",
		"data":    cc.library.Documents,
	})
}

// DownloadInstructions godoc
// @Summary Download a functional test instruction PDF
// @Tags content
// @Produce application/pdf
// @Param name path string true "Document file name, e.g. BBS_instructions.pdf"
// @Success 200 {file} file "PDF document"
// @Failure 404 {object} map[string]interface{} "Document not found"
// @Router /content/instructions/{name} [get]
func (cc *ContentController) DownloadInstructions(c *gin.Context) {
	name := c.Param("name")
	data, err := cc.library.Document(name)
	if err != nil {
		status, message := http.StatusInternalServerError, "Failed to read document"
		if errors.Is(err, content.ErrNotFound) {
			status, message = http.StatusNotFound, "Document not found"
		}
		c.JSON(status, gin.H{
			"status":  "error",
			"message": message,
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", data)
}
