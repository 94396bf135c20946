package rulebuilder

import "errors"

var (
	// ErrLanguageNotFound is returned when a language that no condition
	// has been registered into is used.
	ErrLanguageNotFound = errors.New("language not found")

	// ErrConditionNotFound is returned when a condition type is not registered
	// in the language.
	ErrConditionNotFound = errors.New("condition type not found")

	// ErrMalformedNode is returned when a rule node is missing required fields,
	// or the fields hold values of the wrong type.
	ErrMalformedNode = errors.New("malformed rule node")

	// ErrTranslation is returned when a condition form cannot be translated
	// into a JSON Schema definition.
	ErrTranslation = errors.New("form translation failed")

	// ErrReservedName is returned when registering a condition under a
	// name the registry manages itself.
	ErrReservedName = errors.New("reserved condition name")

	// ErrMaxDepth is returned when a rule tree is nested deeper than the
	// registry's maximum depth.
	ErrMaxDepth = errors.New("maximum rule depth exceeded")

	// ErrInvalidRule is returned when a rule tree does not conform to the
	// language schema.
	ErrInvalidRule = errors.New("rule does not conform to the language schema")
)
