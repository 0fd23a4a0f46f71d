package controllers

import (
	"net/http"
	"strconv"

	"epif/internal/features"
	"epif/internal/models"

	"github.com/gin-gonic/gin"
)

type SchemaController struct {
	schema *features.Schema
}

func NewSchemaController(schema *features.Schema) *SchemaController {
	return &SchemaController{schema: schema}
}

type formIncident struct {
	Fall            int                 `json:"fall"`
	Hospitalization string              `json:"hospitalization_field"`
	Categories      map[string][]string `json:"categories"`
}

// GetSchema godoc
// @Summary Get the assessment form definition
// @Description Fixed fields with their ranges and options, the per-fall incident block and the fall locations allowed for the given number of falls
// @Tags schema
// @Produce json
// @Param falls query int false "Number of falls (1-5)" default(1)
// @Success 200 {object} map[string]interface{} "Schema retrieved successfully"
// @Failure 400 {object} map[string]interface{} "Invalid number of falls"
// @Router /schema [get]
func (sc *SchemaController) GetSchema(c *gin.Context) {
	falls, err := strconv.Atoi(c.DefaultQuery("falls", "1"))
	if err != nil || !sc.schema.ValidFallCount(falls) {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid number of falls",
			"error":   "falls must be an integer between 1 and 5",
		})
		return
	}

	var fields []features.Field
	for _, f := range sc.schema.Fields {
		if !f.Derived {
			fields = append(fields, f)
		}
	}

	categories := make(map[string][]string, len(sc.schema.Groups))
	for _, g := range sc.schema.Groups {
		categories[g.Label] = g.Options
	}
	incidents := make([]formIncident, falls)
	for i := range incidents {
		incidents[i] = formIncident{
			Fall:            i + 1,
			Hospitalization: sc.schema.HospitalizationLabel,
			Categories:      categories,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Schema retrieved successfully",
		"data": gin.H{
			"falls":                    falls,
			"fields":                   fields,
			"incidents":                incidents,
			"max_hospitalization_days": sc.schema.MaxHospitalizationDays,
			"fall_locations":           models.AllowedLocations(falls),
		},
	})
}
