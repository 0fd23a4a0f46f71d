package features

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput marks form input that cannot be placed in a registry.
var ErrInvalidInput = errors.New("invalid form input")

// FieldID identifies one input of the form. Fixed fields use the feature
// name; incident fields use "<Group>_fall_<i>" and "hosp_days_fall_<i>".
type FieldID string

// IncidentFieldID is the ID of a group selection for fall incident i (1-based).
func IncidentFieldID(group string, fall int) FieldID {
	return FieldID(fmt.Sprintf("%s_fall_%d", group, fall))
}

// HospDaysFieldID is the ID of the hospitalization days of fall incident i.
func HospDaysFieldID(fall int) FieldID {
	return FieldID(fmt.Sprintf("hosp_days_fall_%d", fall))
}

// ValueKind tags a Value.
type ValueKind int

const (
	Unset ValueKind = iota
	Number
	Bool
	Category
)

func (k ValueKind) String() string {
	switch k {
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Category:
		return "category"
	default:
		return "unset"
	}
}

// Value is the tagged content of one form field.
type Value struct {
	kind ValueKind
	num  float64
	flag bool
	cat  string
}

func NumberValue(v float64) Value  { return Value{kind: Number, num: v} }
func BoolValue(v bool) Value       { return Value{kind: Bool, flag: v} }
func CategoryValue(v string) Value { return Value{kind: Category, cat: v} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsSet() bool     { return v.kind != Unset }

func (v Value) Number() (float64, bool) { return v.num, v.kind == Number }
func (v Value) Bool() (bool, bool)      { return v.flag, v.kind == Bool }
func (v Value) Category() (string, bool) {
	return v.cat, v.kind == Category
}

// Lookup is read access to form values.
type Lookup interface {
	Get(id FieldID) (Value, bool)
}

// Registry is the request-scoped set of form values. Every field the schema
// expects for the given fall count is declared up front as Unset.
type Registry struct {
	schema *Schema
	falls  int
	order  []FieldID
	values map[FieldID]Value
}

// NewRegistry declares every field of the form for falls incidents.
func NewRegistry(schema *Schema, falls int) (*Registry, error) {
	if !schema.ValidFallCount(falls) {
		return nil, fmt.Errorf("%w: fall count %d outside %d..%d", ErrInvalidInput, falls, schema.MinFalls, schema.MaxFalls)
	}
	r := &Registry{
		schema: schema,
		falls:  falls,
		values: make(map[FieldID]Value),
	}
	for _, f := range schema.Fields {
		if !f.Derived {
			r.declare(FieldID(f.Name))
		}
	}
	for i := 1; i <= falls; i++ {
		r.declare(HospDaysFieldID(i))
		for _, g := range schema.Groups {
			r.declare(IncidentFieldID(g.Label, i))
		}
	}
	return r, nil
}

func (r *Registry) declare(id FieldID) {
	r.order = append(r.order, id)
	r.values[id] = Value{}
}

func (r *Registry) Schema() *Schema { return r.schema }
func (r *Registry) Falls() int      { return r.falls }

// IDs returns the declared fields in declaration order.
func (r *Registry) IDs() []FieldID {
	return append([]FieldID(nil), r.order...)
}

// Get returns the value of a declared field.
func (r *Registry) Get(id FieldID) (Value, bool) {
	v, ok := r.values[id]
	return v, ok
}

// Set stores a value for a declared field. The value kind is not checked
// here; the aggregator applies its stray-value policy to mismatches.
func (r *Registry) Set(id FieldID, v Value) error {
	if _, ok := r.values[id]; !ok {
		return fmt.Errorf("%w: unknown field %q", ErrInvalidInput, id)
	}
	r.values[id] = v
	return nil
}

// IncidentInput is one fall incident as submitted.
type IncidentInput struct {
	HospitalizationDays *int               `json:"hospitalization_days"`
	Categories          map[string]*string `json:"categories"`
}

// FormInput is the submitted form. Fixed fields are kept raw so each one can
// be decoded against its schema kind.
type FormInput struct {
	Fields    map[string]json.RawMessage `json:"fields"`
	Incidents []IncidentInput            `json:"incidents"`
}

// BuildRegistry decodes a submitted form into a registry. Absent and null
// values stay Unset; anything the schema cannot accept is ErrInvalidInput.
func BuildRegistry(schema *Schema, falls int, in FormInput) (*Registry, error) {
	r, err := NewRegistry(schema, falls)
	if err != nil {
		return nil, err
	}

	for name, raw := range in.Fields {
		field, ok := schema.Field(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidInput, name)
		}
		if field.Derived {
			return nil, fmt.Errorf("%w: field %q is derived from the fall incidents", ErrInvalidInput, name)
		}
		v, err := decodeField(field, raw)
		if err != nil {
			return nil, err
		}
		r.values[FieldID(name)] = v
	}

	if len(in.Incidents) > falls {
		return nil, fmt.Errorf("%w: %d incidents submitted for %d falls", ErrInvalidInput, len(in.Incidents), falls)
	}
	for idx, inc := range in.Incidents {
		i := idx + 1
		if d := inc.HospitalizationDays; d != nil {
			if *d < 0 || *d > schema.MaxHospitalizationDays {
				return nil, fmt.Errorf("%w: fall case %d hospitalization days must be between 0 and %d", ErrInvalidInput, i, schema.MaxHospitalizationDays)
			}
			r.values[HospDaysFieldID(i)] = NumberValue(float64(*d))
		}
		for label, selected := range inc.Categories {
			group, ok := schema.Group(label)
			if !ok {
				return nil, fmt.Errorf("%w: fall case %d has unknown group %q", ErrInvalidInput, i, label)
			}
			if selected == nil {
				continue
			}
			if !group.HasOption(*selected) {
				return nil, fmt.Errorf("%w: fall case %d: %q is not a %s option", ErrInvalidInput, i, *selected, label)
			}
			r.values[IncidentFieldID(label, i)] = CategoryValue(*selected)
		}
	}
	return r, nil
}

func decodeField(field Field, raw json.RawMessage) (Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Value{}, nil
	}

	switch field.Kind {
	case KindNumerical:
		var n float64
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return Value{}, fmt.Errorf("%w: field %q must be a number", ErrInvalidInput, field.Name)
		}
		if !field.InRange(n) {
			return Value{}, fmt.Errorf("%w: field %q %s", ErrInvalidInput, field.Name, describeRange(field))
		}
		return NumberValue(n), nil

	case KindBinary:
		var b bool
		if err := json.Unmarshal(trimmed, &b); err == nil {
			return BoolValue(b), nil
		}
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "yes":
				return BoolValue(true), nil
			case "no":
				return BoolValue(false), nil
			}
		}
		return Value{}, fmt.Errorf("%w: field %q must be Yes or No", ErrInvalidInput, field.Name)

	case KindOrdinal:
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			if _, ok := field.OptionCode(s); ok {
				return CategoryValue(s), nil
			}
			return Value{}, fmt.Errorf("%w: %q is not a %s option", ErrInvalidInput, s, field.Name)
		}
		var code int
		if err := json.Unmarshal(trimmed, &code); err == nil && code >= 1 && code <= len(field.Options) {
			return CategoryValue(field.Options[code-1]), nil
		}
		return Value{}, fmt.Errorf("%w: field %q must be one of its options", ErrInvalidInput, field.Name)
	}
	return Value{}, fmt.Errorf("%w: field %q has unsupported kind", ErrInvalidInput, field.Name)
}

func describeRange(f Field) string {
	var parts []string
	if f.Min != nil && f.Max != nil {
		parts = append(parts, fmt.Sprintf("must be between %g and %g", *f.Min, *f.Max))
	} else if f.Min != nil {
		parts = append(parts, fmt.Sprintf("must be at least %g", *f.Min))
	} else if f.Max != nil {
		parts = append(parts, fmt.Sprintf("must be at most %g", *f.Max))
	}
	if f.Integer {
		parts = append(parts, "must be a whole number")
	}
	return strings.Join(parts, " and ")
}
