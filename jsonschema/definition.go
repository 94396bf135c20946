// Package jsonschema holds the minimal JSON Schema (draft-04) representation
// used for language schemas.
package jsonschema

import "slices"

// Draft04 is the $schema URI written into every language schema.
const Draft04 = "http://json-schema.org/draft-04/schema#"

// Definition is a JSON Schema fragment. It is used for whole condition
// definitions as well as for the properties nested inside them.
type Definition struct {
	// Core
	Ref         string `json:"$ref,omitempty"`
	Type        string `json:"type,omitempty"`
	Format      string `json:"format,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`

	// Object
	Properties           map[string]*Definition `json:"properties,omitempty"`
	Required             []string               `json:"required,omitempty"`
	AdditionalProperties *Definition            `json:"additionalProperties,omitempty"`

	// Array
	Items    *Definition `json:"items,omitempty"`
	MinItems *int        `json:"minItems,omitempty"`

	// Condition annotations
	Extends       string `json:"extends,omitempty"`
	ConditionType *Enum  `json:"condition_type,omitempty"`
}

// Enum is the {"enum": [...]} tag that pins a definition to its
// condition type name.
type Enum struct {
	Enum []string `json:"enum"`
}

// RefTo returns a definition that only references the pointer.
func RefTo(pointer string) *Definition {
	return &Definition{Ref: pointer}
}

// Clone returns a deep copy of d.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	c := *d
	c.Enum = slices.Clone(d.Enum)
	c.Required = slices.Clone(d.Required)
	if d.Properties != nil {
		c.Properties = make(map[string]*Definition, len(d.Properties))
		for k, p := range d.Properties {
			c.Properties[k] = p.Clone()
		}
	}
	c.AdditionalProperties = d.AdditionalProperties.Clone()
	c.Items = d.Items.Clone()
	if d.MinItems != nil {
		n := *d.MinItems
		c.MinItems = &n
	}
	if d.ConditionType != nil {
		c.ConditionType = &Enum{Enum: slices.Clone(d.ConditionType.Enum)}
	}
	return &c
}
