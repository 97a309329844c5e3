package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Kind is the type of a factor value.
type Kind int

const (
	KindAbsent Kind = iota
	KindNumeric
	KindBoolean
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindBoolean:
		return "boolean"
	case KindCategorical:
		return "categorical"
	default:
		return "absent"
	}
}

// MarshalJSON renders the kind by name.
func (k Kind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

// Value is one typed factor value. The zero Value is the absent marker.
type Value struct {
	kind Kind
	num  float64
	flag bool
	cat  string
}

// Absent returns the explicit absent marker.
func Absent() Value { return Value{} }

// Num builds a numeric value.
func Num(v float64) Value { return Value{kind: KindNumeric, num: v} }

// Bool builds a boolean value.
func Bool(v bool) Value { return Value{kind: KindBoolean, flag: v} }

// Cat builds a categorical value.
func Cat(v string) Value { return Value{kind: KindCategorical, cat: v} }

func (v Value) Kind() Kind       { return v.kind }
func (v Value) Present() bool    { return v.kind != KindAbsent }
func (v Value) Number() float64  { return v.num }
func (v Value) Flag() bool       { return v.flag }
func (v Value) Category() string { return v.cat }

// String renders the value for audit trails.
func (v Value) String() string {
	switch v.kind {
	case KindNumeric:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.flag)
	case KindCategorical:
		return v.cat
	default:
		return "absent"
	}
}

// MarshalJSON emits the natural JSON form, null when absent.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumeric:
		return json.Marshal(v.num)
	case KindBoolean:
		return json.Marshal(v.flag)
	case KindCategorical:
		return json.Marshal(v.cat)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON restores a value from its natural JSON form.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Absent()
	case float64:
		*v = Num(x)
	case bool:
		*v = Bool(x)
	case string:
		*v = Cat(x)
	default:
		return eris.Errorf("unsupported factor value %s", string(data))
	}
	return nil
}

// FactorSet is an ordered, read-only mapping of factor name to value.
// It is built once by Extract and owned by a single assessment run.
type FactorSet struct {
	names  []string
	values map[string]Value
}

// NewFactorSet builds a FactorSet from ordered names. A name missing from
// values is absent.
func NewFactorSet(names []string, values map[string]Value) FactorSet {
	fs := FactorSet{
		names:  make([]string, len(names)),
		values: make(map[string]Value, len(names)),
	}
	copy(fs.names, names)
	for _, n := range names {
		fs.values[n] = values[n]
	}
	return fs
}

// Get returns the value for name, or the absent marker.
func (fs FactorSet) Get(name string) Value { return fs.values[name] }

// Names returns the factor names in schema order.
func (fs FactorSet) Names() []string {
	out := make([]string, len(fs.names))
	copy(out, fs.names)
	return out
}

// Len is the number of factors, absent ones included.
func (fs FactorSet) Len() int { return len(fs.names) }

// Num returns the numeric value of name and whether it is present.
func (fs FactorSet) Num(name string) (float64, bool) {
	v := fs.values[name]
	return v.num, v.kind == KindNumeric
}

// IsTrue reports whether name is a present boolean set to true.
func (fs FactorSet) IsTrue(name string) bool {
	v := fs.values[name]
	return v.kind == KindBoolean && v.flag
}

// Is reports whether name is a present category equal to want.
func (fs FactorSet) Is(name, want string) bool {
	v := fs.values[name]
	return v.kind == KindCategorical && v.cat == want
}

// Snapshot returns a plain map view suitable for persistence.
func (fs FactorSet) Snapshot() map[string]interface{} {
	out := make(map[string]interface{}, len(fs.names))
	for _, n := range fs.names {
		v := fs.values[n]
		switch v.kind {
		case KindNumeric:
			out[n] = v.num
		case KindBoolean:
			out[n] = v.flag
		case KindCategorical:
			out[n] = v.cat
		default:
			out[n] = nil
		}
	}
	return out
}

// MarshalJSON keeps schema order.
func (fs FactorSet) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, n := range fs.names {
		if i > 0 {
			b.WriteByte(',')
		}
		key, _ := json.Marshal(n)
		b.Write(key)
		b.WriteByte(':')
		val, err := fs.values[n].MarshalJSON()
		if err != nil {
			return nil, err
		}
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// Field describes one input field of a module schema.
type Field struct {
	Name     string   `json:"name"`
	Kind     Kind     `json:"kind"`
	Required bool     `json:"required"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Allowed  []string `json:"allowed,omitempty"`
	// Integer rejects numeric values with a fractional part.
	Integer bool `json:"integer,omitempty"`
	// Default is used when the field is missing and not required.
	Default *Value `json:"-"`
}

// Numeric declares a numeric field bounded to [min, max].
func Numeric(name string, min, max float64, required bool) Field {
	return Field{Name: name, Kind: KindNumeric, Required: required, Min: &min, Max: &max}
}

// Count declares a whole-number field bounded to [min, max].
func Count(name string, min, max float64, required bool) Field {
	f := Numeric(name, min, max, required)
	f.Integer = true
	return f
}

// Boolean declares an optional boolean field.
func Boolean(name string) Field {
	return Field{Name: name, Kind: KindBoolean}
}

// Categorical declares a categorical field with a closed vocabulary.
func Categorical(name string, required bool, allowed ...string) Field {
	return Field{Name: name, Kind: KindCategorical, Required: required, Allowed: allowed}
}

// Schema is a module's ordered list of input fields.
type Schema []Field

// Extract normalises raw input into a FactorSet. Fields not in the schema are
// ignored. Missing optional fields become Absent (or their Default). Values are
// range-checked, never clamped.
func (s Schema) Extract(raw map[string]interface{}) (FactorSet, error) {
	lowered := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		lowered[strings.ToLower(k)] = v
	}

	names := make([]string, 0, len(s))
	values := make(map[string]Value, len(s))
	for _, f := range s {
		rv, ok := raw[f.Name]
		if !ok {
			rv, ok = lowered[strings.ToLower(f.Name)]
		}
		if !ok || rv == nil || rv == "" {
			if f.Required {
				return FactorSet{}, &ValidationError{Field: f.Name, Reason: "required"}
			}
			v := Absent()
			if f.Default != nil {
				v = *f.Default
			}
			names = append(names, f.Name)
			values[f.Name] = v
			continue
		}

		v, err := f.coerce(rv)
		if err != nil {
			return FactorSet{}, err
		}
		names = append(names, f.Name)
		values[f.Name] = v
	}
	return NewFactorSet(names, values), nil
}

func (f Field) coerce(rv interface{}) (Value, error) {
	switch f.Kind {
	case KindNumeric:
		n, err := toFloat(rv)
		if err != nil {
			return Value{}, &ValidationError{Field: f.Name, Reason: "not a number", Value: rv, Bound: "numeric"}
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return Value{}, &ValidationError{Field: f.Name, Reason: "not a finite number", Value: rv}
		}
		if f.Integer && n != math.Trunc(n) {
			return Value{}, &ValidationError{Field: f.Name, Reason: "not a whole number", Value: n, Bound: "integer"}
		}
		if f.Min != nil && n < *f.Min {
			return Value{}, &ValidationError{Field: f.Name, Reason: "below domain bound", Value: n,
				Bound: fmt.Sprintf(">= %s", strconv.FormatFloat(*f.Min, 'f', -1, 64))}
		}
		if f.Max != nil && n > *f.Max {
			return Value{}, &ValidationError{Field: f.Name, Reason: "above domain bound", Value: n,
				Bound: fmt.Sprintf("<= %s", strconv.FormatFloat(*f.Max, 'f', -1, 64))}
		}
		return Num(n), nil

	case KindBoolean:
		switch b := rv.(type) {
		case bool:
			return Bool(b), nil
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(b))
			if err != nil {
				return Value{}, &ValidationError{Field: f.Name, Reason: "not a boolean", Value: rv, Bound: "true or false"}
			}
			return Bool(parsed), nil
		default:
			return Value{}, &ValidationError{Field: f.Name, Reason: "not a boolean", Value: rv, Bound: "true or false"}
		}

	case KindCategorical:
		str, ok := rv.(string)
		if !ok {
			return Value{}, &ValidationError{Field: f.Name, Reason: "not a string", Value: rv}
		}
		norm := strings.ToLower(strings.TrimSpace(str))
		for _, a := range f.Allowed {
			if a == norm {
				return Cat(norm), nil
			}
		}
		allowed := append([]string(nil), f.Allowed...)
		sort.Strings(allowed)
		return Value{}, &ValidationError{Field: f.Name, Reason: "unknown category", Value: str,
			Bound: fmt.Sprintf("one of %v", allowed)}
	}
	return Value{}, &ValidationError{Field: f.Name, Reason: "unsupported field kind"}
}

func toFloat(rv interface{}) (float64, error) {
	switch n := rv.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, eris.Errorf("unsupported numeric type %T", rv)
	}
}
