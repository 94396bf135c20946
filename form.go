package rulebuilder

import (
	"fmt"
	"strings"
)

// Form describes the input fields of a condition kind. It is the field
// descriptor from which the kind's JSON Schema definition is produced.
type Form struct {
	// User-friendly name of the condition kind
	Title string

	// A user-friendly description of the condition kind
	Description string

	// Fields in declaration order
	Fields []Field
}

// Field defines a single named input of a condition kind.
type Field struct {
	// The key under which the value is stored in a rule node.
	//
	// RESERVED NAMES:
	//   condition_type
	Name string

	// Short label for editors
	Label string

	// Optional description of the field.
	Description string

	// One of the Type interface defined.
	Type Type

	// Whether the field must be present in the rule node
	Required bool

	// If set, the value must be one of the choices
	Choices []Choice

	// Optional default value
	Default any
}

// Choice is one permitted value of a field.
type Choice struct {
	Value string
	Label string
}

// Field returns the field with the name, if it exists.
func (f Form) Field(name string) (Field, bool) {
	for _, fd := range f.Fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return Field{}, false
}

func (f Form) String() string {
	x := strings.Builder{}
	x.WriteString(f.Title)
	x.WriteString("\n")
	for _, fd := range f.Fields {
		x.WriteString(fd.String())
		x.WriteString("\n")
	}
	return x.String()
}

func (fd Field) String() string {
	s := fmt.Sprintf("  %s (%s)", fd.Name, fd.Type)
	if fd.Required {
		s += " required"
	}
	return s
}

// Choices builds a list of choices whose labels equal their values.
func Choices(values ...string) []Choice {
	cs := make([]Choice, len(values))
	for i, v := range values {
		cs[i] = Choice{Value: v, Label: v}
	}
	return cs
}
