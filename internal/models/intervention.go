package models

import (
	"encoding/json"
	"fmt"
)

// SectionScope tags an intervention section with the fall locations it
// applies to.
type SectionScope int

const (
	ScopeGeneral SectionScope = iota
	ScopeIndoorOnly
	ScopeOutdoorOnly
)

// Section codes as stored in the intervention library.
const (
	CodeGeneral     = "general_interventions"
	CodeIndoorOnly  = "indoor_interventions"
	CodeOutdoorOnly = "outdoor_interventions"
)

func (s SectionScope) Code() string {
	switch s {
	case ScopeIndoorOnly:
		return CodeIndoorOnly
	case ScopeOutdoorOnly:
		return CodeOutdoorOnly
	default:
		return CodeGeneral
	}
}

// ParseSectionScope maps a library code to its scope. Unknown codes are an
// error so a typo in the library fails loading instead of leaking sections.
func ParseSectionScope(code string) (SectionScope, error) {
	switch code {
	case CodeGeneral:
		return ScopeGeneral, nil
	case CodeIndoorOnly:
		return ScopeIndoorOnly, nil
	case CodeOutdoorOnly:
		return ScopeOutdoorOnly, nil
	}
	return 0, fmt.Errorf("unknown intervention section code %q", code)
}

func (s SectionScope) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Code())
}

func (s *SectionScope) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	parsed, err := ParseSectionScope(code)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// InterventionSection is a titled group of recommended actions.
type InterventionSection struct {
	Code  SectionScope `json:"code" swaggertype:"string" example:"indoor_interventions"`
	Title string       `json:"title" example:"Home safety"`
	Items []string     `json:"items"`
}

// InterventionBundle is the library entry for one risk class.
type InterventionBundle struct {
	Title         string                `json:"title" example:"Low risk profile"`
	Description   string                `json:"description"`
	Focus         []string              `json:"focus"`
	Interventions []InterventionSection `json:"interventions"`
}

// InterventionSet is the whole library keyed by "class_<n>".
type InterventionSet map[string]InterventionBundle

// ClassKey is the library key of a risk class.
func ClassKey(class int) string {
	return fmt.Sprintf("class_%d", class)
}

// InterventionRecommendation is what the selector returns for one class and
// fall location.
type InterventionRecommendation struct {
	Available   bool                  `json:"available"`
	Message     string                `json:"message,omitempty" example:"No interventions found for this profile."`
	Class       int                   `json:"class"`
	Location    FallLocation          `json:"location" swaggertype:"string" example:"Indoor"`
	Title       string                `json:"title,omitempty"`
	Description string                `json:"description,omitempty"`
	Focus       []string              `json:"focus,omitempty"`
	Sections    []InterventionSection `json:"sections,omitempty"`
}
