package controllers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"epif/internal/controllers"
	"epif/internal/logging"
	"epif/internal/models"
	"epif/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInterventions(t *testing.T) {
	_, lib := loadFixtures(t)
	controller := controllers.NewInterventionController(services.NewInterventionSelector(lib.Interventions))
	router := setupTestRouter()
	router.GET("/interventions/:class", controller.GetInterventions)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		excluded       models.SectionScope
	}{
		{name: "indoor hides outdoor-only", path: "/interventions/1?location=Indoor", expectedStatus: http.StatusOK, excluded: models.ScopeOutdoorOnly},
		{name: "outdoor hides indoor-only", path: "/interventions/2?location=outdoor", expectedStatus: http.StatusOK, excluded: models.ScopeIndoorOnly},
		{name: "invalid class", path: "/interventions/3?location=Indoor", expectedStatus: http.StatusBadRequest},
		{name: "invalid location", path: "/interventions/0?location=Garden", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.expectedStatus, w.Code)
			if w.Code != http.StatusOK {
				return
			}

			var resp struct {
				Data models.InterventionRecommendation `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.True(t, resp.Data.Available)
			require.NotEmpty(t, resp.Data.Sections)
			for _, s := range resp.Data.Sections {
				assert.NotEqual(t, tt.excluded, s.Code)
			}
		})
	}
}

func TestGetInterventionsWithoutBundle(t *testing.T) {
	controller := controllers.NewInterventionController(services.NewInterventionSelector(models.InterventionSet{}))
	router := setupTestRouter()
	router.GET("/interventions/:class", controller.GetInterventions)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/interventions/0?location=Both", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), services.NoInterventionsMessage)
	assert.Contains(t, w.Body.String(), `"available":false`)
}

func TestContentEndpoints(t *testing.T) {
	_, lib := loadFixtures(t)
	controller := controllers.NewContentController(lib)
	router := setupTestRouter()
	router.GET("/content/glossary", controller.GetGlossary)
	router.GET("/content/faqs", controller.GetFAQs)
	router.GET("/content/summary", controller.GetSummary)
	router.GET("/content/instructions", controller.ListInstructions)
	router.GET("/content/instructions/:name", controller.DownloadInstructions)

	tests := []struct {
		path           string
		expectedStatus int
		expectedBody   string
	}{
		{path: "/content/glossary", expectedStatus: http.StatusOK, expectedBody: `"limitations"`},
		{path: "/content/faqs", expectedStatus: http.StatusOK, expectedBody: `"questions"`},
		{path: "/content/summary", expectedStatus: http.StatusOK, expectedBody: `"Moderate risk"`},
		{path: "/content/instructions", expectedStatus: http.StatusOK, expectedBody: `"TUG_instructions.pdf"`},
		{path: "/content/instructions/BBS_instructions.pdf", expectedStatus: http.StatusOK, expectedBody: "%PDF"},
		{path: "/content/instructions/schema.yaml", expectedStatus: http.StatusNotFound, expectedBody: "Document not found"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestGetSchema(t *testing.T) {
	schema, _ := loadFixtures(t)
	controller := controllers.NewSchemaController(schema)
	router := setupTestRouter()
	router.GET("/schema", controller.GetSchema)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schema", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Falls         int               `json:"falls"`
			Fields        []json.RawMessage `json:"fields"`
			Incidents     []json.RawMessage `json:"incidents"`
			FallLocations []string          `json:"fall_locations"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Falls)
	assert.Len(t, resp.Data.Fields, 13)
	assert.Len(t, resp.Data.Incidents, 1)
	assert.Equal(t, []string{"Indoor", "Outdoor"}, resp.Data.FallLocations)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schema?falls=3", nil))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Incidents, 3)
	assert.Equal(t, []string{"Indoor", "Outdoor", "Both"}, resp.Data.FallLocations)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schema?falls=9", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	healthy := func(context.Context) error { return nil }
	failing := func(context.Context) error { return errors.New("refused") }

	tests := []struct {
		name           string
		checks         map[string]controllers.ReadinessCheck
		expectedStatus int
		expectedBody   string
	}{
		{name: "all ready", checks: map[string]controllers.ReadinessCheck{"classifier": healthy, "database": healthy}, expectedStatus: http.StatusOK, expectedBody: `"status":"ready"`},
		{name: "classifier down", checks: map[string]controllers.ReadinessCheck{"classifier": failing, "database": healthy}, expectedStatus: http.StatusServiceUnavailable, expectedBody: `"classifier":"unavailable"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller := controllers.NewHealthController("test", tt.checks, logging.Discard())
			router := setupTestRouter()
			router.GET("/", controller.Banner)
			router.GET("/healthz", controller.Healthz)
			router.GET("/readyz", controller.Readyz)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, http.StatusOK, w.Code)

			w = httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			w = httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Contains(t, w.Body.String(), "EPIF API is running")
		})
	}
}
