// Package config loads condition languages from YAML files.
//
// A file declares languages, and in each language a set of condition kinds
// whose evaluation is written as a CEL expression:
//
//	languages:
//	  customers:
//	    conditions:
//	      age_over:
//	        title: Age over
//	        expr: data.age > n
//	        fields:
//	          - name: n
//	            type: int
//	            label: Minimum age
//	            required: true
//	      country_is:
//	        title: Country is
//	        expr: data.country == code
//	        fields:
//	          - name: code
//	            type: string
//	            choices: [US, CA, {value: MX, label: Mexico}]
//
// Field types use the syntax of rulebuilder.ParseType.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/ezachrisen/rulebuilder"
	"github.com/ezachrisen/rulebuilder/cel"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned for files that cannot be decoded, or that
// declare conditions which cannot be built.
var ErrInvalidConfig = errors.New("invalid language configuration")

// File is a decoded configuration file.
type File struct {
	Languages map[string]Language `yaml:"languages"`
}

// Language is the set of condition kinds of one language, by name.
type Language struct {
	Conditions map[string]Condition `yaml:"conditions"`
}

// Condition declares a condition kind.
type Condition struct {
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Expr        string  `yaml:"expr"`
	Fields      []Field `yaml:"fields"`
}

// Field declares one field of a condition kind.
type Field struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Label       string   `yaml:"label"`
	Description string   `yaml:"description"`
	Required    bool     `yaml:"required"`
	Default     any      `yaml:"default"`
	Choices     []Choice `yaml:"choices"`
}

// Choice is a permitted value of a field. In YAML it is either a mapping with
// value and label, or a plain scalar used as both.
type Choice struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// UnmarshalYAML accepts both forms of a choice.
func (c *Choice) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		c.Value, c.Label = n.Value, n.Value
		return nil
	}
	type plain Choice
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	if p.Label == "" {
		p.Label = p.Value
	}
	*c = Choice(p)
	return nil
}

// Load reads and decodes the file at path.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a configuration. Unknown keys are rejected.
func Parse(b []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	f := &File{}
	if err := dec.Decode(f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrInvalidConfig)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if len(f.Languages) == 0 {
		return nil, fmt.Errorf("%w: no languages declared", ErrInvalidConfig)
	}
	return f, nil
}

// Form converts the declaration to a form.
func (c Condition) Form() (rulebuilder.Form, error) {
	form := rulebuilder.Form{
		Title:       c.Title,
		Description: c.Description,
		Fields:      make([]rulebuilder.Field, 0, len(c.Fields)),
	}
	for _, f := range c.Fields {
		if f.Type == "" {
			return rulebuilder.Form{}, fmt.Errorf("field %s: missing type", f.Name)
		}
		t, err := rulebuilder.ParseType(f.Type)
		if err != nil {
			return rulebuilder.Form{}, fmt.Errorf("field %s: %w", f.Name, err)
		}
		ff := rulebuilder.Field{
			Name:        f.Name,
			Label:       f.Label,
			Description: f.Description,
			Type:        t,
			Required:    f.Required,
			Default:     f.Default,
		}
		for _, ch := range f.Choices {
			ff.Choices = append(ff.Choices, rulebuilder.Choice{Value: ch.Value, Label: ch.Label})
		}
		form.Fields = append(form.Fields, ff)
	}
	return form, nil
}

// Register compiles every declared condition and registers it with r.
// Languages and conditions are registered in name order; registration stops
// at the first condition that cannot be built.
func (f *File) Register(r *rulebuilder.Registry) error {
	langs := make([]string, 0, len(f.Languages))
	for name := range f.Languages {
		langs = append(langs, name)
	}
	slices.Sort(langs)

	for _, lang := range langs {
		conds := f.Languages[lang].Conditions
		if len(conds) == 0 {
			return fmt.Errorf("%w: language %s declares no conditions", ErrInvalidConfig, lang)
		}
		names := make([]string, 0, len(conds))
		for name := range conds {
			names = append(names, name)
		}
		slices.Sort(names)

		for _, name := range names {
			c := conds[name]
			if c.Expr == "" {
				return fmt.Errorf("%w: language %s condition %s: missing expr", ErrInvalidConfig, lang, name)
			}
			form, err := c.Form()
			if err != nil {
				return fmt.Errorf("%w: language %s condition %s: %w", ErrInvalidConfig, lang, name, err)
			}
			kind, err := cel.NewCondition(form, c.Expr)
			if err != nil {
				return fmt.Errorf("%w: language %s condition %s: %w", ErrInvalidConfig, lang, name, err)
			}
			if err := r.Register(lang, name, kind); err != nil {
				return fmt.Errorf("%w: language %s condition %s: %w", ErrInvalidConfig, lang, name, err)
			}
		}
	}
	return nil
}
