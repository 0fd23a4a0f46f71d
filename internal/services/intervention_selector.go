package services

import (
	"epif/internal/models"
)

// NoInterventionsMessage is shown when a class has no intervention bundle.
const NoInterventionsMessage = "No interventions found for this profile."

// InterventionSelector picks the intervention sections for a risk class and
// fall location.
type InterventionSelector struct {
	library models.InterventionSet
}

func NewInterventionSelector(library models.InterventionSet) *InterventionSelector {
	return &InterventionSelector{library: library}
}

// Select returns the bundle of class filtered for location. A class without
// a bundle yields Available=false rather than an error.
func (s *InterventionSelector) Select(class int, location models.FallLocation) models.InterventionRecommendation {
	rec := models.InterventionRecommendation{Class: class, Location: location}

	bundle, ok := s.library[models.ClassKey(class)]
	if !ok {
		rec.Message = NoInterventionsMessage
		return rec
	}

	rec.Available = true
	rec.Title = bundle.Title
	rec.Description = bundle.Description
	rec.Focus = bundle.Focus
	rec.Sections = FilterSections(bundle.Interventions, location)
	return rec
}

// excludedScope is the section scope hidden for a fall location.
func excludedScope(location models.FallLocation) (models.SectionScope, bool) {
	switch location {
	case models.LocationIndoor:
		return models.ScopeOutdoorOnly, true
	case models.LocationOutdoor:
		return models.ScopeIndoorOnly, true
	default:
		return 0, false
	}
}

// FilterSections drops the sections that do not apply to location and keeps
// the order of the rest.
func FilterSections(sections []models.InterventionSection, location models.FallLocation) []models.InterventionSection {
	excluded, ok := excludedScope(location)
	out := make([]models.InterventionSection, 0, len(sections))
	for _, section := range sections {
		if ok && section.Code == excluded {
			continue
		}
		out = append(out, section)
	}
	return out
}
