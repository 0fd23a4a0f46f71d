package controllers

import (
	"net/http"
	"strconv"

	"epif/internal/models"
	"epif/internal/services"

	"github.com/gin-gonic/gin"
)

type InterventionController struct {
	selector *services.InterventionSelector
}

func NewInterventionController(selector *services.InterventionSelector) *InterventionController {
	return &InterventionController{selector: selector}
}

// GetInterventions godoc
// @Summary Get interventions for a risk profile
// @Description Return the intervention sections of a risk class filtered by where the falls happened. A class without content returns available=false.
// @Tags interventions
// @Produce json
// @Param class path int true "Risk class (0 = Low, 1 = Moderate, 2 = High)"
// @Param location query string true "Fall location" Enums(Indoor, Outdoor, Both)
// @Success 200 {object} map[string]interface{} "Interventions retrieved successfully"
// @Failure 400 {object} map[string]interface{} "Invalid class or location"
// @Router /interventions/{class} [get]
func (ic *InterventionController) GetInterventions(c *gin.Context) {
	class, err := strconv.Atoi(c.Param("class"))
	if err != nil || class < 0 || class >= models.NumClasses {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid risk class",
			"error":   "class must be 0, 1 or 2",
		})
		return
	}

	location, err := models.ParseFallLocation(c.Query("location"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid fall location",
			"error":   err.Error(),
		})
		return
	}

	rec := ic.selector.Select(class, location)
	message := "Interventions retrieved successfully"
	if !rec.Available {
		message = rec.Message
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": message,
		"data":    rec,
	})
}
