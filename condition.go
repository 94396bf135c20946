package rulebuilder

import "context"

// Condition is the interface implemented by condition kinds. A kind is
// stateless: the parameters of a particular condition live in the rule node.
type Condition interface {
	// Form describes the fields a rule node of this kind carries.
	// It is translated into the kind's entry in the language schema.
	Form() Form

	// Evaluate tests the node against the application data.
	// The data is passed unmodified from the caller of Registry.Evaluate.
	//
	// The result may be a bool, or any value whose string form, upper-cased,
	// is "TRUE" or "FALSE". See ToTriState.
	Evaluate(ctx context.Context, data any, node Node) (any, error)
}

// Representer is implemented by condition kinds that can render a node as
// a human-readable sentence.
type Representer interface {
	Represent(node Node) string
}

// EvalFunc is the evaluation behavior of a leaf condition kind.
type EvalFunc func(ctx context.Context, data any, node Node) (any, error)

// NewCondition returns a condition kind with the form and evaluation function.
func NewCondition(form Form, fn EvalFunc) Condition {
	return &funcCondition{form: form, fn: fn}
}

type funcCondition struct {
	form Form
	fn   EvalFunc
}

func (c *funcCondition) Form() Form {
	return c.form
}

func (c *funcCondition) Evaluate(ctx context.Context, data any, node Node) (any, error) {
	if c.fn == nil {
		return true, nil
	}
	return c.fn(ctx, data, node)
}
