package rulebuilder

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Type defines the type of a condition field.
// These types are used to describe condition forms, to translate forms
// into JSON Schema, and by evaluators (such as CEL) to declare variables.
type Type interface {
	// Implements the stringer interface
	String() string

	// Zero returns a 'template' of the type to enable
	// use of reflection in evaluators and elsewhere to convert to/from
	// rulebuilder types and the types native to the evaluators.
	Zero() any
}

// String defines a string field.
type String struct{}

// Int defines an integer field.
type Int struct{}

// Float defines a floating point field.
type Float struct{}

// Any defines a field of unspecified type.
type Any struct{}

// Bool defines a true/false field.
type Bool struct{}

// Duration defines a time.Duration field, written as a Go duration string ("90m").
type Duration struct{}

// Timestamp defines a time.Time field, written as an RFC 3339 string.
type Timestamp struct{}

// List defines a field holding a slice of values
type List struct {
	ValueType Type // the type of element stored in the list
}

// Map defines a field holding a map of keys and values.
type Map struct {
	KeyType   Type // the type of the map key
	ValueType Type // the type of the value stored in the map
}

// Ref defines a field whose shape is given by another part of the
// language schema, identified by a JSON pointer such as
// "#/definitions/conditionArray".
type Ref struct {
	Pointer string
}

// Zero Methods
func (String) Zero() any    { return string("") }
func (Int) Zero() any       { return int64(0) }
func (Bool) Zero() any      { return bool(false) }
func (Float) Zero() any     { return float64(0.0) }
func (Timestamp) Zero() any { return time.Time{} }
func (Duration) Zero() any  { return time.Duration(0) }
func (Any) Zero() any       { return nil }
func (Ref) Zero() any       { return []any{} }

func (t List) Zero() (retval any) {
	defer func() {
		if r := recover(); r != nil {
			retval = nil
		}
	}()

	if t.ValueType == nil || t.ValueType.Zero() == nil {
		return nil
	}

	rt := reflect.SliceOf(reflect.TypeOf(t.ValueType.Zero()))
	return reflect.MakeSlice(rt, 0, 0).Interface()
}

func (t Map) Zero() (retval any) {
	// A panic handler here because we're using reflection
	defer func() {
		if r := recover(); r != nil {
			retval = nil
		}
	}()

	if t.ValueType == nil || t.KeyType == nil {
		return nil
	}

	if t.ValueType.Zero() == nil || t.KeyType.Zero() == nil {
		return nil
	}

	tm := reflect.MapOf(reflect.TypeOf(t.KeyType.Zero()), reflect.TypeOf(t.ValueType.Zero()))
	return reflect.MakeMap(tm).Interface()
}

// String Methods
func (Int) String() string       { return "int" }
func (Bool) String() string      { return "bool" }
func (String) String() string    { return "string" }
func (Any) String() string       { return "any" }
func (Duration) String() string  { return "duration" }
func (Timestamp) String() string { return "timestamp" }
func (Float) String() string     { return "float" }
func (t Ref) String() string     { return "ref(" + t.Pointer + ")" }
func (t List) String() string    { return fmt.Sprintf("[]%v", t.ValueType) }
func (t Map) String() string     { return fmt.Sprintf("map[%s]%s", t.KeyType, t.ValueType) }

// ParseType parses a string that represents a field type and returns the type.
// The primitive types are their lower-case names (string, int, duration, etc.)
// Maps and lists look like Go maps and slices: map[string]float and []string.
// References look like this: ref(#/definitions/conditionArray)
func ParseType(t string) (Type, error) {
	t = strings.TrimSpace(t)

	if strings.HasPrefix(t, "ref(") {
		return parseRef(t)
	}

	if strings.HasPrefix(t, "map[") {
		return parseMap(t)
	}

	if strings.HasPrefix(t, "[]") {
		return parseList(t)
	}

	switch t {
	case "string":
		return String{}, nil
	case "int":
		return Int{}, nil
	case "float":
		return Float{}, nil
	case "bool":
		return Bool{}, nil
	case "duration":
		return Duration{}, nil
	case "timestamp":
		return Timestamp{}, nil
	case "any":
		return Any{}, nil
	default:
		return Any{}, fmt.Errorf("unrecognized type: %s", t)
	}
}

// parseMap parses a string and returns a map type.
// The string must in the format map[<keytype>]<valuetype>.
// Example: map[string]int
func parseMap(t string) (Type, error) {
	end := strings.Index(t, "]")
	if end == -1 {
		return Any{}, fmt.Errorf("bad map specification: %s", t)
	}

	keyType, err := ParseType(t[len("map["):end])
	if err != nil {
		return Any{}, err
	}

	valueType, err := ParseType(t[end+1:])
	if err != nil {
		return Any{}, err
	}

	return Map{
		KeyType:   keyType,
		ValueType: valueType,
	}, nil
}

// parseList parses a string and returns a list type.
// The string must be in the format []<valuetype>
// Example: []string
func parseList(t string) (Type, error) {
	valueType, err := ParseType(strings.TrimPrefix(t, "[]"))
	if err != nil {
		return Any{}, err
	}

	return List{
		ValueType: valueType,
	}, nil
}

// parseRef parses a string and returns a reference type.
// The string must be in the form ref(<pointer>).
func parseRef(t string) (Type, error) {
	startParen := strings.Index(t, "(")
	endParen := strings.LastIndex(t, ")")

	if startParen == -1 || endParen == -1 || startParen > endParen || endParen-startParen == 1 {
		return Any{}, fmt.Errorf("bad ref specification: %s", t)
	}

	return Ref{Pointer: t[startParen+1 : endParen]}, nil
}
