package recordstore

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Fields is a loosely typed mapping of field name to value, as it comes
// from user input or from a persisted file
type Fields map[string]any

type FieldType int

const (
	String FieldType = iota
	Int
	Float
	Bool
)

func (t FieldType) String() string {
	switch t {
	case String:
		return "string"
	case Int:
		return "integer"
	case Float:
		return "number"
	case Bool:
		return "boolean"
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// Field describes one named field of a record of type T.
// Get returns the field's value, Set stores a value that was already
// converted to Type. Check is optional and runs on converted values.
type Field[T any] struct {
	Name     string
	Type     FieldType
	Required bool
	Get      func(r *T) any
	Set      func(r *T, v any)
	Check    func(v any) error
}

// Kind describes a record type: its fields in display and export order,
// how to create a record with default values and an optional rule that
// applies to the whole record (e.g. fields that only make sense together).
type Kind[T any] struct {
	Name     string
	Fields   []Field[T]
	New      func() T
	Validate func(r *T) error
}

func (k *Kind[T]) field(name string) (*Field[T], bool) {
	for i := range k.Fields {
		if k.Fields[i].Name == name {
			return &k.Fields[i], true
		}
	}
	return nil, false
}

// FieldNames returns names of fields in schema order
func (k *Kind[T]) FieldNames() []string {
	res := make([]string, len(k.Fields))
	for i, f := range k.Fields {
		res[i] = f.Name
	}
	return res
}

// Values returns values of all fields of r in schema order
func (k *Kind[T]) Values(r *T) []any {
	res := make([]any, len(k.Fields))
	for i, f := range k.Fields {
		res[i] = f.Get(r)
	}
	return res
}

// ToFields converts r into a field mapping
func (k *Kind[T]) ToFields(r *T) Fields {
	res := make(Fields, len(k.Fields))
	for _, f := range k.Fields {
		res[f.Name] = f.Get(r)
	}
	return res
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func (k *Kind[T]) checkNames(fields Fields) error {
	for name := range fields {
		if _, ok := k.field(name); !ok {
			return Invalid(name, "unknown field for %s", k.Name)
		}
	}
	return nil
}

func (k *Kind[T]) assign(r *T, f *Field[T], v any) error {
	cv, err := convert(f.Type, v)
	if err != nil {
		return &ValidationError{Field: f.Name, Reason: err.Error()}
	}
	if f.Check != nil {
		if err := f.Check(cv); err != nil {
			return asValidation(f.Name, err)
		}
	}
	f.Set(r, cv)
	return nil
}

func (k *Kind[T]) validate(r *T) error {
	if k.Validate == nil {
		return nil
	}
	if err := k.Validate(r); err != nil {
		return asValidation("", err)
	}
	return nil
}

// Build creates a new record from fields. Every required field must be
// present and every supplied field must pass its checks.
func (k *Kind[T]) Build(fields Fields) (T, error) {
	var zero T
	var r T
	if k.New != nil {
		r = k.New()
	}
	if err := k.checkNames(fields); err != nil {
		return zero, err
	}
	for i := range k.Fields {
		f := &k.Fields[i]
		v, ok := fields[f.Name]
		if !ok || isEmptyValue(v) {
			if f.Required {
				return zero, Invalid(f.Name, "is required")
			}
			continue
		}
		if err := k.assign(&r, f, v); err != nil {
			return zero, err
		}
	}
	if err := k.validate(&r); err != nil {
		return zero, err
	}
	return r, nil
}

// Patch returns a copy of cur with the supplied fields overwritten.
// cur is not modified so a failed patch leaves it intact.
// Empty values are treated as "not supplied".
func (k *Kind[T]) Patch(cur T, fields Fields) (T, error) {
	var zero T
	if err := k.checkNames(fields); err != nil {
		return zero, err
	}
	staged := cur
	for i := range k.Fields {
		f := &k.Fields[i]
		v, ok := fields[f.Name]
		if !ok || isEmptyValue(v) {
			continue
		}
		if err := k.assign(&staged, f, v); err != nil {
			return zero, err
		}
	}
	if err := k.validate(&staged); err != nil {
		return zero, err
	}
	return staged, nil
}

func asValidation(field string, err error) error {
	if ve, ok := err.(*ValidationError); ok {
		if ve.Field == "" && field != "" {
			return &ValidationError{Field: field, Reason: ve.Reason}
		}
		return ve
	}
	return &ValidationError{Field: field, Reason: err.Error()}
}

// convert coerces v to the Go type backing t: string, int, float64 or bool.
// Strings are parsed, which is what user input looks like. Numbers decoded
// from files arrive as float64, int64 or json.Number.
func convert(t FieldType, v any) (any, error) {
	switch t {
	case String:
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s), nil
		}
		return nil, fmt.Errorf("must be a string, got %T", v)
	case Int:
		return toInt(v)
	case Float:
		return toFloat(v)
	case Bool:
		return toBool(v)
	}
	return nil, fmt.Errorf("unsupported field type %s", t)
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, fmt.Errorf("integer %d is out of range", n)
		}
		return int(n), nil
	case uint:
		if uint64(n) > math.MaxInt {
			return 0, fmt.Errorf("integer %d is out of range", n)
		}
		return int(n), nil
	case uint64:
		if n > math.MaxInt {
			return 0, fmt.Errorf("integer %d is out of range", n)
		}
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, fmt.Errorf("must be an integer, got %v", n)
		}
		// float64(math.MaxInt) rounds up to 2^63
		if n < math.MinInt || n >= math.MaxInt {
			return 0, fmt.Errorf("integer %v is out of range", n)
		}
		return int(n), nil
	case json.Number:
		if i, err := strconv.Atoi(string(n)); err == nil {
			return i, nil
		}
		// 2018.0 is fine, 2018.5 is not
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("must be an integer, got %s", n)
		}
		return toInt(f)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("must be an integer, got '%s'", n)
		}
		return i, nil
	}
	return 0, fmt.Errorf("must be an integer, got %T", v)
}

func toFloat(v any) (float64, error) {
	f, err := parseFloat(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("must be a finite number, got %v", f)
	}
	return f, nil
}

func parseFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("must be a number, got %s", n)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("must be a number, got '%s'", n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("must be a number, got %T", v)
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "y", "1":
			return true, nil
		case "false", "no", "n", "0":
			return false, nil
		}
		return false, fmt.Errorf("must be yes or no, got '%s'", b)
	}
	return false, fmt.Errorf("must be a boolean, got %T", v)
}
