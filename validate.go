package rulebuilder

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"
)

// Issue is a single reason a rule tree does not conform to the language schema.
type Issue struct {
	// JSON pointer to the offending rule node, e.g. /conditions/1
	Path    string
	Message string
}

// ValidationError lists everything wrong with a rule tree.
// It matches ErrInvalidRule with errors.Is.
type ValidationError struct {
	Language string
	Issues   []Issue
}

// Error summarizes the first few issues.
func (e *ValidationError) Error() string {
	const maxShown = 3
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s: language %s", ErrInvalidRule, e.Language)
	for i, it := range e.Issues {
		if i == maxShown {
			fmt.Fprintf(b, "; ... (total %d)", len(e.Issues))
			break
		}
		fmt.Fprintf(b, "; %s: %s", it.Path, it.Message)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRule
}

// Validate checks the rule tree against the language schema: the tree as a
// whole against the schema document, then every node against the definition
// of its condition type. Unregistered condition types are reported, even
// though evaluation skips them.
//
// Returns a *ValidationError if the tree does not conform.
func (r *Registry) Validate(languageName string, node Node) error {
	doc, err := r.Schema(languageName)
	if err != nil {
		return err
	}
	v := &validator{doc: doc, compiled: map[string]*gojsonschema.Schema{}}

	b, err := doc.JSON()
	if err != nil {
		return fmt.Errorf("encoding schema for language %s: %w", languageName, err)
	}
	root, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
	if err != nil {
		return fmt.Errorf("loading schema for language %s: %w", languageName, err)
	}
	v.check(root, "", node)

	if err := v.walk("", node, 0, r.opts.MaxDepth); err != nil {
		return err
	}
	if len(v.issues) > 0 {
		return &ValidationError{Language: languageName, Issues: v.issues}
	}
	return nil
}

type validator struct {
	doc      *Document
	compiled map[string]*gojsonschema.Schema
	issues   []Issue
}

// walk validates the node and, for composite nodes, its children.
// depth is the number of composite nodes enclosing the node.
func (v *validator) walk(path string, node Node, depth, maxDepth int) error {
	at := path
	if at == "" {
		at = "/"
	}

	ct := node.Type()
	def, ok := v.doc.Definitions[ct]
	switch {
	case ct == "":
		v.add(at, "missing "+KeyConditionType)
		return nil
	case !ok || def.ConditionType == nil:
		v.add(at, fmt.Sprintf("condition type %s is not registered", ct))
		return nil
	}

	s, err := v.schemaFor(ct)
	if err != nil {
		return err
	}
	if !v.check(s, path, node) || ct != IfConditionName {
		return nil
	}

	depth++
	if depth > maxDepth {
		return fmt.Errorf("%w: %d", ErrMaxDepth, maxDepth)
	}
	children, err := node.Conditions()
	if err != nil {
		v.add(at, err.Error())
		return nil
	}
	for i, child := range children {
		if err := v.walk(fmt.Sprintf("%s/%s/%d", path, KeyConditions, i), child, depth, maxDepth); err != nil {
			return err
		}
	}
	return nil
}

// schemaFor compiles the definition of the condition type as a schema of
// its own, carrying the document's definitions so references resolve.
func (v *validator) schemaFor(conditionType string) (*gojsonschema.Schema, error) {
	if s, ok := v.compiled[conditionType]; ok {
		return s, nil
	}
	b, err := json.Marshal(v.doc.Definitions[conditionType])
	if err != nil {
		return nil, fmt.Errorf("encoding definition %s: %w", conditionType, err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decoding definition %s: %w", conditionType, err)
	}
	m["$schema"] = v.doc.Schema
	m["definitions"] = v.doc.Definitions

	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(m))
	if err != nil {
		return nil, fmt.Errorf("loading definition %s: %w", conditionType, err)
	}
	v.compiled[conditionType] = s
	return s, nil
}

// check validates the node against s, recording any issues.
// Reports whether the node is valid.
func (v *validator) check(s *gojsonschema.Schema, path string, node Node) bool {
	res, err := s.Validate(gojsonschema.NewGoLoader(map[string]any(node)))
	if err != nil {
		v.add(path, err.Error())
		return false
	}
	for _, re := range res.Errors() {
		p := path
		if f := re.Field(); f != "" && f != "(root)" {
			p = path + "/" + strings.ReplaceAll(f, ".", "/")
		}
		if p == "" {
			p = "/"
		}
		v.add(p, re.Description())
	}
	return res.Valid()
}

func (v *validator) add(path, msg string) {
	if path == "" {
		path = "/"
	}
	v.issues = append(v.issues, Issue{Path: path, Message: msg})
}
