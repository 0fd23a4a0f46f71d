package features

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNewRegistryDeclaresEveryField(t *testing.T) {
	s := loadTestSchema(t)

	r, err := NewRegistry(s, 2)
	require.NoError(t, err)

	ids := r.IDs()
	// 13 user-entered fixed fields, plus hospitalization days and 3 groups per fall.
	assert.Len(t, ids, 13+2*4)
	assert.Contains(t, ids, FieldID("Age"))
	assert.Contains(t, ids, FieldID("Cause_fall_2"))
	assert.Contains(t, ids, FieldID("hosp_days_fall_1"))
	assert.NotContains(t, ids, FieldID(FeatureHospDaysMin))

	for _, id := range ids {
		v, ok := r.Get(id)
		require.True(t, ok)
		assert.False(t, v.IsSet(), id)
	}
}

func TestNewRegistryRejectsFallCount(t *testing.T) {
	s := loadTestSchema(t)

	for _, n := range []int{0, 6} {
		_, err := NewRegistry(s, n)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestRegistrySetUnknownField(t *testing.T) {
	r, err := NewRegistry(loadTestSchema(t), 1)
	require.NoError(t, err)

	assert.ErrorIs(t, r.Set("Location_fall_2", CategoryValue("Bedroom")), ErrInvalidInput)
	assert.NoError(t, r.Set("Location_fall_1", CategoryValue("Bedroom")))
}

func rawFields(t *testing.T, fields map[string]any) map[string]json.RawMessage {
	t.Helper()
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		out[k] = b
	}
	return out
}

func TestBuildRegistryDecodesKinds(t *testing.T) {
	s := loadTestSchema(t)

	r, err := BuildRegistry(s, 1, FormInput{
		Fields: rawFields(t, map[string]any{
			"Age":              72,
			"TUG_Score":        11.25,
			"has_Diabetes":     "Yes",
			"has_Vertigo":      false,
			"PhysicalActivity": "Walk",
			"PillsPerDay":      nil,
		}),
		Incidents: []IncidentInput{{
			HospitalizationDays: ptr(3),
			Categories:          map[string]*string{"Cause": ptr("Dizziness"), "Time": nil},
		}},
	})
	require.NoError(t, err)

	age, _ := r.Get("Age")
	n, ok := age.Number()
	assert.True(t, ok)
	assert.Equal(t, 72.0, n)

	diabetes, _ := r.Get("has_Diabetes")
	b, ok := diabetes.Bool()
	assert.True(t, ok)
	assert.True(t, b)

	activity, _ := r.Get("PhysicalActivity")
	option, ok := activity.Category()
	assert.True(t, ok)
	assert.Equal(t, "Walk", option)

	pills, _ := r.Get("PillsPerDay")
	assert.False(t, pills.IsSet())

	days, _ := r.Get(HospDaysFieldID(1))
	d, _ := days.Number()
	assert.Equal(t, 3.0, d)

	timeOfDay, _ := r.Get(IncidentFieldID("Time", 1))
	assert.False(t, timeOfDay.IsSet())
}

func TestBuildRegistryOrdinalCode(t *testing.T) {
	r, err := BuildRegistry(loadTestSchema(t), 1, FormInput{
		Fields: rawFields(t, map[string]any{"PhysicalActivity": 3}),
	})
	require.NoError(t, err)

	v, _ := r.Get("PhysicalActivity")
	option, _ := v.Category()
	assert.Equal(t, "Intensive (i.e. Workout, Dance, Bike)", option)
}

func TestBuildRegistryRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		falls int
		input FormInput
	}{
		{name: "unknown field", falls: 1, input: FormInput{Fields: map[string]json.RawMessage{"Weight": json.RawMessage(`70`)}}},
		{name: "derived field supplied", falls: 1, input: FormInput{Fields: map[string]json.RawMessage{"HospDays_min": json.RawMessage(`1`)}}},
		{name: "age out of range", falls: 1, input: FormInput{Fields: map[string]json.RawMessage{"Age": json.RawMessage(`90`)}}},
		{name: "fractional integer field", falls: 1, input: FormInput{Fields: map[string]json.RawMessage{"BBS_Score": json.RawMessage(`40.5`)}}},
		{name: "number as text", falls: 1, input: FormInput{Fields: map[string]json.RawMessage{"Age": json.RawMessage(`"70"`)}}},
		{name: "binary maybe", falls: 1, input: FormInput{Fields: map[string]json.RawMessage{"has_Diabetes": json.RawMessage(`"Maybe"`)}}},
		{name: "ordinal unknown option", falls: 1, input: FormInput{Fields: map[string]json.RawMessage{"PhysicalActivity": json.RawMessage(`"Swim"`)}}},
		{name: "ordinal code out of range", falls: 1, input: FormInput{Fields: map[string]json.RawMessage{"PhysicalActivity": json.RawMessage(`4`)}}},
		{name: "too many incidents", falls: 1, input: FormInput{Incidents: make([]IncidentInput, 2)}},
		{name: "hospitalization days above cap", falls: 1, input: FormInput{Incidents: []IncidentInput{{HospitalizationDays: ptr(21)}}}},
		{name: "negative hospitalization days", falls: 1, input: FormInput{Incidents: []IncidentInput{{HospitalizationDays: ptr(-1)}}}},
		{name: "unknown group", falls: 1, input: FormInput{Incidents: []IncidentInput{{Categories: map[string]*string{"Weather": ptr("Rain")}}}}},
		{name: "option of another group", falls: 1, input: FormInput{Incidents: []IncidentInput{{Categories: map[string]*string{"Cause": ptr("Bedroom")}}}}},
		{name: "fall count out of range", falls: 7, input: FormInput{}},
	}

	s := loadTestSchema(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildRegistry(s, tt.falls, tt.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
