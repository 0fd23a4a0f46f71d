package features

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrFeatureMismatch is returned when a vector and a classifier disagree on
// the feature set.
var ErrFeatureMismatch = errors.New("feature mismatch")

// Vector maps model feature names to their values.
type Vector map[string]float64

// Row orders the vector by names. Every name must be present and every
// feature of the vector must be named.
func (v Vector) Row(names []string) ([]float64, error) {
	row := make([]float64, len(names))
	seen := make(map[string]bool, len(names))
	var missing []string
	for i, name := range names {
		value, ok := v[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		row[i] = value
		seen[name] = true
	}
	var extra []string
	for name := range v {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		sort.Strings(extra)
		return nil, fmt.Errorf("%w: missing %s, unrecognized %s", ErrFeatureMismatch, listOrNone(missing), listOrNone(extra))
	}
	return row, nil
}

func listOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// Aggregation is the outcome of folding a form into model features.
type Aggregation struct {
	Features Vector `json:"features"`
	// OptionWeights accumulates the weight per selected option, catch-alls
	// included.
	OptionWeights map[string]float64 `json:"option_weights"`
}

// Aggregate folds the registry's fixed fields and fall incidents into the
// model feature vector. It has no side effects.
func Aggregate(r *Registry) *Aggregation {
	s := r.schema
	weights := make(map[string]float64)
	features := make(Vector, len(s.FeatureOrder))
	for _, name := range s.FeatureOrder {
		features[name] = 0.0
	}

	for i := 1; i <= r.falls; i++ {
		for _, g := range s.Groups {
			v, _ := r.Get(IncidentFieldID(g.Label, i))
			option, ok := v.Category()
			if !ok || !g.HasOption(option) {
				continue
			}
			weights[option] += s.ProportionalWeight
			if g.IsCatchAll(option) {
				continue
			}
			if feature, ok := s.FeatureFor(option); ok {
				features[feature] += s.ProportionalWeight
			}
		}
	}

	features[FeatureHospDaysMin], features[FeatureHospitalAdmissions] = hospitalization(r)

	for _, f := range s.Fields {
		if f.Derived {
			continue
		}
		v, _ := r.Get(FieldID(f.Name))
		features[f.Name] = fixedValue(f, v)
	}

	for name, value := range features {
		features[name] = round2(value)
	}
	for option, w := range weights {
		weights[option] = round2(w)
	}
	return &Aggregation{Features: features, OptionWeights: weights}
}

// hospitalization returns the minimum days across incidents (0 without any)
// and the number of incidents with at least one day. Unset days count as 0.
func hospitalization(r *Registry) (minDays, admissions float64) {
	for i := 1; i <= r.falls; i++ {
		v, _ := r.Get(HospDaysFieldID(i))
		days, ok := v.Number()
		if !ok {
			days = strayValue(v)
		}
		if i == 1 || days < minDays {
			minDays = days
		}
		if days > 0 {
			admissions++
		}
	}
	return minDays, admissions
}

func fixedValue(f Field, v Value) float64 {
	switch f.Kind {
	case KindNumerical:
		if n, ok := v.Number(); ok {
			return n
		}
	case KindBinary:
		if b, ok := v.Bool(); ok {
			if b {
				return 1
			}
			return 0
		}
	case KindOrdinal:
		if option, ok := v.Category(); ok {
			if code, ok := f.OptionCode(option); ok {
				return float64(code)
			}
		}
	}
	return strayValue(v)
}

// strayValue is the fallback for a value that is unset or of the wrong kind
// for its field: it becomes 0.0.
func strayValue(Value) float64 {
	return 0.0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
