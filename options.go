package rulebuilder

import "log/slog"

// defaultDepth is the deepest nesting of composite conditions evaluated
// unless the registry is created with WithMaxDepth.
const defaultDepth = 100

// RegistryOptions holds the settings applied by RegistryOption functions.
// See the functional definitions below for the meaning.
type RegistryOptions struct {
	Translator Translator
	Logger     *slog.Logger
	MaxDepth   int
}

type RegistryOption func(o *RegistryOptions)

// Given an array of RegistryOption functions, apply their effect
// on the RegistryOptions struct.
func applyRegistryOptions(o *RegistryOptions, opts ...RegistryOption) {
	for _, opt := range opts {
		opt(o)
	}
}

// WithTranslator replaces the translator used to turn condition forms
// into JSON Schema definitions.
// Default: FormTranslator
func WithTranslator(t Translator) RegistryOption {
	return func(o *RegistryOptions) {
		if t != nil {
			o.Translator = t
		}
	}
}

// WithLogger sets the logger used for registration, schema builds and
// evaluation events.
// Default: discard
func WithLogger(l *slog.Logger) RegistryOption {
	return func(o *RegistryOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithMaxDepth limits how deeply composite conditions may nest during
// evaluation. Values below 1 are ignored.
// Default: 100
func WithMaxDepth(n int) RegistryOption {
	return func(o *RegistryOptions) {
		if n > 0 {
			o.MaxDepth = n
		}
	}
}
