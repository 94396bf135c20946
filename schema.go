package rulebuilder

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/ezachrisen/rulebuilder/jsonschema"
)

// Names of the fixed entries in every language schema.
const (
	BaseConditionName  = "basecondition"
	ConditionArrayName = "conditionArray"

	// IfConditionName is the condition type of the composite condition.
	// It is reserved in every language.
	IfConditionName = "ifcondition"
)

// JSON pointers to the fixed definitions
const (
	BaseConditionRef  = "#/definitions/" + BaseConditionName
	ConditionArrayRef = "#/definitions/" + ConditionArrayName
)

// Document is the JSON Schema describing the legal rule trees of a language.
// Documents returned by the registry are shared; do not modify them.
type Document struct {
	Schema      string                            `json:"$schema"`
	Description string                            `json:"description"`
	Definitions map[string]*jsonschema.Definition `json:"definitions"`
	Properties  map[string]*jsonschema.Definition `json:"properties"`
}

// newDocument returns the skeleton every language schema starts from.
func newDocument(languageName string) *Document {
	minItems := 1
	return &Document{
		Schema:      jsonschema.Draft04,
		Description: "Language schema for " + languageName,
		Definitions: map[string]*jsonschema.Definition{
			BaseConditionName: {
				Type: "object",
			},
			ConditionArrayName: {
				Type:     "array",
				MinItems: &minItems,
				Items:    jsonschema.RefTo(BaseConditionRef),
			},
		},
		Properties: map[string]*jsonschema.Definition{
			KeyConditions: jsonschema.RefTo(ConditionArrayRef),
		},
	}
}

// addCondition tags a copy of the definition as a condition of the kind and
// adds it. Translators may return shared definitions.
func (d *Document) addCondition(name string, def *jsonschema.Definition) {
	def = def.Clone()
	def.Extends = BaseConditionRef
	def.ConditionType = &jsonschema.Enum{Enum: []string{name}}
	d.Definitions[name] = def
}

// Conditions returns the names of the condition definitions in the document, sorted.
func (d *Document) Conditions() []string {
	names := make([]string, 0, len(d.Definitions))
	for k, def := range d.Definitions {
		if def.ConditionType != nil {
			names = append(names, k)
		}
	}
	slices.Sort(names)
	return names
}

// JSON encodes the document with indentation.
func (d *Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Schema returns the JSON Schema for the language. The schema is built on the
// first request and cached until a condition is registered in the language.
//
// Building translates the form of every registered kind, then synthesizes the
// composite condition for the language, translates it, and registers it under
// IfConditionName.
func (r *Registry) Schema(languageName string) (*Document, error) {
	r.mu.RLock()
	l, ok := r.languages[languageName]
	var doc *Document
	var generation uint64
	if ok {
		doc = l.schema
		generation = l.generation
	}
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLanguageNotFound, languageName)
	}
	if doc != nil {
		return doc, nil
	}

	// Callers only share a build started for the same set of conditions
	key := languageName + "@" + strconv.FormatUint(generation, 10)
	v, err, _ := r.builds.Do(key, func() (any, error) {
		return r.buildSchema(languageName)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Document), nil
}

func (r *Registry) buildSchema(languageName string) (*Document, error) {
	// Snapshot the leaf kinds; translation happens outside the lock
	r.mu.RLock()
	l, ok := r.languages[languageName]
	if !ok {
		r.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s", ErrLanguageNotFound, languageName)
	}
	if l.schema != nil {
		doc := l.schema
		r.mu.RUnlock()
		return doc, nil
	}
	generation := l.generation
	kinds := make(map[string]Condition, len(l.conditions))
	for k, c := range l.conditions {
		if k != IfConditionName {
			kinds[k] = c
		}
	}
	r.mu.RUnlock()

	doc := newDocument(languageName)

	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	slices.Sort(names)

	for _, name := range names {
		def, err := r.translate(kinds[name].Form())
		if err != nil {
			return nil, fmt.Errorf("translating condition %s in language %s: %w", name, languageName, err)
		}
		doc.addCondition(name, def)
	}

	// The composite's conditions field refers to the generic conditionArray,
	// so it is translated before it is part of the language.
	ifc := &IfCondition{registry: r, language: languageName}
	def, err := r.translate(ifc.Form())
	if err != nil {
		return nil, fmt.Errorf("translating condition %s in language %s: %w", IfConditionName, languageName, err)
	}
	doc.addCondition(IfConditionName, def)

	r.mu.Lock()
	l = r.languages[languageName]
	l.conditions[IfConditionName] = ifc
	cached := l.generation == generation
	if cached {
		l.schema = doc
	}
	r.mu.Unlock()

	r.opts.Logger.Debug("built language schema",
		slog.String("language", languageName),
		slog.Int("conditions", len(names)+1),
		slog.Bool("cached", cached))
	return doc, nil
}

func (r *Registry) translate(f Form) (*jsonschema.Definition, error) {
	def, err := r.opts.Translator.Translate(f)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("%w: no definition produced", ErrTranslation)
	}
	return def, nil
}
