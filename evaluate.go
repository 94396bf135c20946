package rulebuilder

import (
	"context"
	"errors"
	"fmt"
)

// Evaluate evaluates the rule tree against the application data and reports
// whether it holds.
//
// The condition type of the root node must be registered in the language.
// If the root is a composite condition and no schema has been built for the
// language yet, the schema is built first, which registers the composite kind.
//
// The data is passed unmodified to every condition. Evaluation is
// synchronous; ctx is checked for cancellation between child conditions.
func (r *Registry) Evaluate(ctx context.Context, languageName string, data any, node Node) (bool, error) {
	if node == nil {
		return false, fmt.Errorf("%w: nil rule", ErrMalformedNode)
	}
	ct := node.Type()
	if ct == "" {
		return false, fmt.Errorf("%w: missing %s", ErrMalformedNode, KeyConditionType)
	}

	kind, err := r.Condition(languageName, ct)
	if errors.Is(err, ErrConditionNotFound) && ct == IfConditionName {
		if _, err = r.Schema(languageName); err != nil {
			return false, err
		}
		kind, err = r.Condition(languageName, ct)
	}
	if err != nil {
		return false, err
	}

	tr := traceFrom(ctx)
	slot := tr.begin(0, 0, ct)
	v, err := kind.Evaluate(ctx, data, node)
	tr.finish(slot, v, err)
	if err != nil {
		return false, err
	}
	return ToTriState(v) == True, nil
}
