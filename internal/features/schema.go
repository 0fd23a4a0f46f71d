// Package features holds the form schema, the per-request field registry and
// the aggregation of fall incidents into the classifier's feature vector.
package features

import (
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// Kind partitions the fixed form fields.
type Kind string

const (
	KindNumerical Kind = "numerical"
	KindOrdinal   Kind = "ordinal"
	KindBinary    Kind = "binary"
)

// Derived feature names. They are computed from the fall incidents and never
// requested from the practitioner.
const (
	FeatureHospitalAdmissions = "HospitalAdmissions"
	FeatureHospDaysMin        = "HospDays_min"
)

// ErrInvalidSchema is returned when a schema file breaks one of its invariants.
var ErrInvalidSchema = errors.New("invalid feature schema")

// Field is a fixed (non-proportional) form field.
type Field struct {
	Name    string   `yaml:"name" json:"name"`
	Kind    Kind     `yaml:"kind" json:"kind"`
	Label   string   `yaml:"label" json:"label"`
	Section string   `yaml:"section" json:"section,omitempty"`
	Help    string   `yaml:"help" json:"help,omitempty"`
	Min     *float64 `yaml:"min" json:"min,omitempty"`
	Max     *float64 `yaml:"max" json:"max,omitempty"`
	Integer bool     `yaml:"integer" json:"integer,omitempty"`
	Options []string `yaml:"options" json:"options,omitempty"`
	Derived bool     `yaml:"derived" json:"derived,omitempty"`
}

// InRange reports whether v satisfies the field's bounds and integer flag.
func (f Field) InRange(v float64) bool {
	if f.Min != nil && v < *f.Min {
		return false
	}
	if f.Max != nil && v > *f.Max {
		return false
	}
	if f.Integer && v != float64(int64(v)) {
		return false
	}
	return true
}

// OptionCode returns the 1-based position of an ordinal option.
func (f Field) OptionCode(option string) (int, bool) {
	for i, o := range f.Options {
		if o == option {
			return i + 1, true
		}
	}
	return 0, false
}

// Group is a proportional group: one selection per fall incident, folded into
// weighted features across incidents.
type Group struct {
	Label    string   `yaml:"label" json:"label"`
	Options  []string `yaml:"options" json:"options"`
	CatchAll string   `yaml:"catch_all" json:"catch_all,omitempty"`
}

// HasOption reports whether option belongs to the group.
func (g Group) HasOption(option string) bool {
	for _, o := range g.Options {
		if o == option {
			return true
		}
	}
	return false
}

// IsCatchAll reports whether option is the group's catch-all.
func (g Group) IsCatchAll(option string) bool {
	return g.CatchAll != "" && option == g.CatchAll
}

// Schema is the immutable form definition, loaded once at startup.
type Schema struct {
	ProportionalWeight     float64           `yaml:"proportional_weight" json:"proportional_weight"`
	MaxHospitalizationDays int               `yaml:"max_hospitalization_days" json:"max_hospitalization_days"`
	MinFalls               int               `yaml:"min_falls" json:"min_falls"`
	MaxFalls               int               `yaml:"max_falls" json:"max_falls"`
	HospitalizationLabel   string            `yaml:"hospitalization_label" json:"hospitalization_label"`
	Fields                 []Field           `yaml:"fields" json:"fields"`
	Groups                 []Group           `yaml:"groups" json:"groups"`
	Mapping                map[string]string `yaml:"mapping" json:"mapping"`
	FeatureOrder           []string          `yaml:"feature_order" json:"feature_order"`

	fieldIndex map[string]int
	groupIndex map[string]int
}

// LoadSchema reads and checks the schema at path inside fsys.
func LoadSchema(fsys fs.FS, path string) (*Schema, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	return ParseSchema(data)
}

// ParseSchema decodes a YAML schema and checks its invariants.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if s.HospitalizationLabel == "" {
		s.HospitalizationLabel = "Days of hospitalization"
	}
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return &s, nil
}

func (s *Schema) check() error {
	if s.ProportionalWeight <= 0 {
		return fmt.Errorf("proportional_weight must be positive")
	}
	if s.MaxHospitalizationDays < 0 {
		return fmt.Errorf("max_hospitalization_days cannot be negative")
	}
	if s.MinFalls < 1 || s.MaxFalls < s.MinFalls {
		return fmt.Errorf("fall count range %d..%d is invalid", s.MinFalls, s.MaxFalls)
	}

	s.fieldIndex = make(map[string]int, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("field %d has no name", i)
		}
		if _, dup := s.fieldIndex[f.Name]; dup {
			return fmt.Errorf("field %q declared twice", f.Name)
		}
		switch f.Kind {
		case KindNumerical:
			if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
				return fmt.Errorf("field %q has min greater than max", f.Name)
			}
		case KindOrdinal:
			if len(f.Options) == 0 {
				return fmt.Errorf("ordinal field %q has no options", f.Name)
			}
		case KindBinary:
		default:
			return fmt.Errorf("field %q has unknown kind %q", f.Name, f.Kind)
		}
		if f.Derived && f.Kind != KindNumerical {
			return fmt.Errorf("derived field %q must be numerical", f.Name)
		}
		if f.Label == "" {
			s.Fields[i].Label = f.Name
		}
		s.fieldIndex[f.Name] = i
	}
	for _, name := range []string{FeatureHospitalAdmissions, FeatureHospDaysMin} {
		f, ok := s.Field(name)
		if !ok || !f.Derived {
			return fmt.Errorf("derived field %q must be declared", name)
		}
	}

	s.groupIndex = make(map[string]int, len(s.Groups))
	seenOptions := make(map[string]string)
	for i, g := range s.Groups {
		if g.Label == "" || len(g.Options) == 0 {
			return fmt.Errorf("group %d needs a label and options", i)
		}
		if _, dup := s.groupIndex[g.Label]; dup {
			return fmt.Errorf("group %q declared twice", g.Label)
		}
		if g.CatchAll != "" && !g.HasOption(g.CatchAll) {
			return fmt.Errorf("group %q catch-all %q is not one of its options", g.Label, g.CatchAll)
		}
		inGroup := make(map[string]bool, len(g.Options))
		for _, o := range g.Options {
			if inGroup[o] {
				return fmt.Errorf("group %q lists option %q twice", g.Label, o)
			}
			inGroup[o] = true

			_, mapped := s.Mapping[o]
			if g.IsCatchAll(o) {
				if mapped {
					return fmt.Errorf("catch-all %q of group %q must not map to a feature", o, g.Label)
				}
				continue
			}
			if !mapped {
				return fmt.Errorf("option %q of group %q has no feature mapping", o, g.Label)
			}
			if other, dup := seenOptions[o]; dup {
				return fmt.Errorf("option %q appears in groups %q and %q", o, other, g.Label)
			}
			seenOptions[o] = g.Label
		}
		s.groupIndex[g.Label] = i
	}

	featureOwner := make(map[string]string, len(s.Mapping))
	for option, feature := range s.Mapping {
		if _, ok := seenOptions[option]; !ok {
			return fmt.Errorf("mapping entry %q is not an option of any group", option)
		}
		if _, clash := s.fieldIndex[feature]; clash {
			return fmt.Errorf("proportional feature %q collides with a fixed field", feature)
		}
		if prev, dup := featureOwner[feature]; dup {
			return fmt.Errorf("options %q and %q map to the same feature %q", prev, option, feature)
		}
		featureOwner[feature] = option
	}

	if len(s.FeatureOrder) == 0 {
		s.FeatureOrder = s.defaultFeatureOrder()
		return nil
	}
	all := make(map[string]bool)
	for _, name := range s.defaultFeatureOrder() {
		all[name] = true
	}
	seen := make(map[string]bool, len(s.FeatureOrder))
	for _, name := range s.FeatureOrder {
		if !all[name] {
			return fmt.Errorf("feature_order names unknown feature %q", name)
		}
		if seen[name] {
			return fmt.Errorf("feature_order lists %q twice", name)
		}
		seen[name] = true
	}
	if len(seen) != len(all) {
		return fmt.Errorf("feature_order lists %d of %d features", len(seen), len(all))
	}
	return nil
}

func (s *Schema) defaultFeatureOrder() []string {
	names := make([]string, 0, len(s.Fields)+len(s.Mapping))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return append(names, s.ProportionalFeatures()...)
}

// Field looks up a fixed field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.fieldIndex[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// Group looks up a proportional group by label.
func (s *Schema) Group(label string) (Group, bool) {
	i, ok := s.groupIndex[label]
	if !ok {
		return Group{}, false
	}
	return s.Groups[i], true
}

// FeatureFor returns the model feature a group option contributes to.
func (s *Schema) FeatureFor(option string) (string, bool) {
	f, ok := s.Mapping[option]
	return f, ok
}

func (s *Schema) columns(kind Kind) []string {
	var out []string
	for _, f := range s.Fields {
		if f.Kind == kind {
			out = append(out, f.Name)
		}
	}
	return out
}

// NumericalColumns lists numerical fields, derived ones included.
func (s *Schema) NumericalColumns() []string { return s.columns(KindNumerical) }

// OrdinalColumns lists ordinal fields.
func (s *Schema) OrdinalColumns() []string { return s.columns(KindOrdinal) }

// BinaryColumns lists binary fields.
func (s *Schema) BinaryColumns() []string { return s.columns(KindBinary) }

// ProportionalFeatures lists the mapped model features in group and option order.
func (s *Schema) ProportionalFeatures() []string {
	var out []string
	for _, g := range s.Groups {
		for _, o := range g.Options {
			if feature, ok := s.Mapping[o]; ok && !g.IsCatchAll(o) {
				out = append(out, feature)
			}
		}
	}
	return out
}

// FeatureNames is the column order used when no classifier dictates one.
func (s *Schema) FeatureNames() []string {
	return append([]string(nil), s.FeatureOrder...)
}

// ValidFallCount reports whether n is an accepted number of fall incidents.
func (s *Schema) ValidFallCount(n int) bool {
	return n >= s.MinFalls && n <= s.MaxFalls
}
