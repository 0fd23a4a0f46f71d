package services

import (
	"encoding/json"
	"testing"

	"epif/assets"
	"epif/internal/features"
	"epif/internal/models"

	"github.com/stretchr/testify/require"
)

func loadSchema(t *testing.T) *features.Schema {
	t.Helper()
	s, err := features.LoadSchema(assets.FS(""), assets.SchemaPath)
	require.NoError(t, err)
	return s
}

func ptr[T any](v T) *T { return &v }

var completeFields = map[string]any{
	"Age":                        72,
	"PillsPerDay":                3,
	"has_BloodTest":              true,
	"has_BalanceDeficitis":       false,
	"has_CardiovascularProblems": "yes",
	"has_Osteoporosis":           "no",
	"has_Diabetes":               false,
	"has_Vertigo":                true,
	"PhysicalActivity":           "Walk",
	"BBS_Score":                  40,
	"FICSIT4_Score":              18,
	"ShortFESI_Score":            12,
	"TUG_Score":                  11.5,
}

// completeRequest builds a fully filled submission where every fall was
// caused by dizziness in the bathroom in the morning.
func completeRequest(t *testing.T, falls int, location models.FallLocation) models.AssessmentRequest {
	t.Helper()
	req := models.AssessmentRequest{
		Falls:        falls,
		FallLocation: location,
		Fields:       map[string]json.RawMessage{},
	}
	for name, v := range completeFields {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		req.Fields[name] = data
	}
	for i := 0; i < falls; i++ {
		req.Incidents = append(req.Incidents, models.IncidentRequest{
			HospitalizationDays: ptr(0),
			Categories: map[string]*string{
				"Cause":    ptr("Dizziness"),
				"Location": ptr("Bathroom"),
				"Time":     ptr("Morning"),
			},
		})
	}
	return req
}

// completeRegistry is completeRequest decoded into a registry.
func completeRegistry(t *testing.T, s *features.Schema, falls int) *features.Registry {
	t.Helper()
	req := completeRequest(t, falls, models.LocationBoth)
	r, err := features.BuildRegistry(s, falls, formInput(req))
	require.NoError(t, err)
	return r
}
