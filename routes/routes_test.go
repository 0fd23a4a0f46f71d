package routes

import (
	"testing"

	"epif/internal/controllers"
	"epif/internal/logging"
	"epif/internal/mocks"
	"epif/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func registeredRoutes(router *gin.Engine) map[string]bool {
	out := map[string]bool{}
	for _, r := range router.Routes() {
		out[r.Method+" "+r.Path] = true
	}
	return out
}

func TestRegisterAssessmentRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		repo        repository.AssessmentRepository
		wantHistory bool
	}{
		{name: "without persistence", repo: nil, wantHistory: false},
		{name: "with persistence", repo: &mocks.MockAssessmentRepository{}, wantHistory: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			ctrl := controllers.NewAssessmentController(nil, tt.repo, logging.Discard())
			RegisterAssessmentRoutes(router, ctrl, "secret")

			got := registeredRoutes(router)
			assert.True(t, got["POST /assessment"])
			for _, route := range []string{
				"GET /assessments/me",
				"GET /assessments/me/date-range",
				"GET /assessments/export",
				"GET /assessments/:id",
				"DELETE /assessments/:id",
			} {
				assert.Equal(t, tt.wantHistory, got[route], route)
			}
		})
	}
}

func TestRegisterHealthRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterHealthRoutes(router, controllers.NewHealthController("test", nil, logging.Discard()))

	got := registeredRoutes(router)
	assert.True(t, got["GET /"])
	assert.True(t, got["GET /healthz"])
	assert.True(t, got["GET /readyz"])
}
