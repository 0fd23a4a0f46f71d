package services

import (
	"fmt"
	"strings"

	"epif/internal/features"

	"github.com/sirupsen/logrus"
)

const validationHeader = "You must fill every input field:"

// ValidationResult lists unfilled-field messages in report order. It is
// empty when the form is complete.
type ValidationResult []string

func (r ValidationResult) Valid() bool { return len(r) == 0 }

// Message is the consolidated report shown to the practitioner, or "" when
// the form is complete.
func (r ValidationResult) Message() string {
	if r.Valid() {
		return ""
	}
	return validationHeader + "\n" + strings.Join(r, "\n")
}

// ValidationError blocks a submission with unfilled fields.
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	return e.Result.Message()
}

// Validator checks that every expected form field has been filled.
type Validator struct {
	schema *features.Schema
	logger *logrus.Logger
}

func NewValidator(schema *features.Schema, logger *logrus.Logger) *Validator {
	return &Validator{schema: schema, logger: logger}
}

// Validate reports unfilled fields: fixed non-binary fields one message
// each, then one message per fall incident, then one message for all binary
// fields. Expected keys the lookup does not know are logged and skipped.
func (v *Validator) Validate(falls int, values features.Lookup) ValidationResult {
	var result ValidationResult
	var inconsistent []string

	filled := func(id features.FieldID) bool {
		value, ok := values.Get(id)
		if !ok {
			inconsistent = append(inconsistent, string(id))
			return true
		}
		return value.IsSet()
	}

	var binaries []string
	for _, f := range v.schema.Fields {
		if f.Derived {
			continue
		}
		if filled(features.FieldID(f.Name)) {
			continue
		}
		if f.Kind == features.KindBinary {
			binaries = append(binaries, f.Label)
			continue
		}
		result = append(result, fmt.Sprintf("Field '%s' must be filled.", f.Name))
	}

	for i := 1; i <= falls; i++ {
		var labels []string
		if !filled(features.HospDaysFieldID(i)) {
			labels = append(labels, v.schema.HospitalizationLabel)
		}
		for _, g := range v.schema.Groups {
			if !filled(features.IncidentFieldID(g.Label, i)) {
				labels = append(labels, g.Label)
			}
		}
		switch len(labels) {
		case 0:
		case 1:
			result = append(result, fmt.Sprintf("In fall case %d, the %s field must be filled.", i, quoteList(labels)))
		default:
			result = append(result, fmt.Sprintf("In fall case %d, fields %s must be filled.", i, quoteList(labels)))
		}
	}

	switch len(binaries) {
	case 0:
	case 1:
		result = append(result, fmt.Sprintf("Field %s must be filled.", quoteList(binaries)))
	default:
		result = append(result, fmt.Sprintf("Fields %s must be filled.", quoteList(binaries)))
	}

	if len(inconsistent) > 0 && v.logger != nil {
		v.logger.WithFields(logrus.Fields{
			"falls":   falls,
			"missing": inconsistent,
		}).Warn("Form registry has no entry for expected fields")
	}
	return result
}

func quoteList(labels []string) string {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = "'" + l + "'"
	}
	return strings.Join(quoted, ", ")
}
