package rulebuilder

import (
	"fmt"

	"github.com/ezachrisen/rulebuilder/jsonschema"
)

// Translator converts a condition form into a JSON Schema object definition.
// The registry trusts the output verbatim, apart from adding the extends
// and condition_type annotations.
type Translator interface {
	Translate(f Form) (*jsonschema.Definition, error)
}

// FormTranslator is the default Translator.
type FormTranslator struct{}

// Translate produces an object definition with one property per field.
// Required fields are listed in declaration order.
func (FormTranslator) Translate(f Form) (*jsonschema.Definition, error) {
	d := &jsonschema.Definition{
		Type:        "object",
		Title:       f.Title,
		Description: f.Description,
		Properties:  make(map[string]*jsonschema.Definition, len(f.Fields)),
	}

	for i, fd := range f.Fields {
		if fd.Name == "" {
			return nil, fmt.Errorf("%w: field %d of %q has no name", ErrTranslation, i, f.Title)
		}
		if fd.Name == KeyConditionType {
			return nil, fmt.Errorf("%w: field name %s is reserved", ErrTranslation, KeyConditionType)
		}
		if _, dup := d.Properties[fd.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %s", ErrTranslation, fd.Name)
		}
		p, err := translateType(fd.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrTranslation, fd.Name, err)
		}
		if p.Ref == "" {
			p.Title = fd.Label
			p.Description = fd.Description
			p.Default = fd.Default
			for _, c := range fd.Choices {
				p.Enum = append(p.Enum, c.Value)
			}
		}
		d.Properties[fd.Name] = p
		if fd.Required {
			d.Required = append(d.Required, fd.Name)
		}
	}
	return d, nil
}

// translateType converts a field type to a JSON Schema fragment
func translateType(t Type) (*jsonschema.Definition, error) {
	switch v := t.(type) {
	case nil:
		return nil, fmt.Errorf("missing type")
	case String:
		return &jsonschema.Definition{Type: "string"}, nil
	case Int:
		return &jsonschema.Definition{Type: "integer"}, nil
	case Float:
		return &jsonschema.Definition{Type: "number"}, nil
	case Bool:
		return &jsonschema.Definition{Type: "boolean"}, nil
	case Duration:
		return &jsonschema.Definition{Type: "string", Format: "duration"}, nil
	case Timestamp:
		return &jsonschema.Definition{Type: "string", Format: "date-time"}, nil
	case Any:
		return &jsonschema.Definition{}, nil
	case Ref:
		if v.Pointer == "" {
			return nil, fmt.Errorf("empty reference")
		}
		return jsonschema.RefTo(v.Pointer), nil
	case List:
		items, err := translateType(v.ValueType)
		if err != nil {
			return nil, fmt.Errorf("list value: %w", err)
		}
		return &jsonschema.Definition{Type: "array", Items: items}, nil
	case Map:
		if _, ok := v.KeyType.(String); !ok {
			return nil, fmt.Errorf("map keys must be strings, got %v", v.KeyType)
		}
		val, err := translateType(v.ValueType)
		if err != nil {
			return nil, fmt.Errorf("map value: %w", err)
		}
		return &jsonschema.Definition{Type: "object", AdditionalProperties: val}, nil
	default:
		return nil, fmt.Errorf("unsupported type %v", t)
	}
}
