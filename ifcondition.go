package rulebuilder

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
)

// Values of the concatenation field
const (
	ConcatAll  = "ALL"
	ConcatAny  = "ANY"
	ConcatNone = "NONE"
)

// Values of the evaluation field
const (
	EvalTrue  = "TRUE"
	EvalFalse = "FALSE"
)

// TriState is the normalized result of a condition.
type TriState int

const (
	// Other is any result that is neither TRUE nor FALSE. It never matches
	// an evaluation target.
	Other TriState = iota
	True
	False
)

func (t TriState) String() string {
	switch t {
	case True:
		return EvalTrue
	case False:
		return EvalFalse
	default:
		return "OTHER"
	}
}

// ToTriState normalizes the result of a condition. The string form of the
// value is upper-cased and compared to "TRUE" and "FALSE", so conditions may
// return booleans, strings such as "true", or any value printing that way.
func ToTriState(v any) TriState {
	switch strings.ToUpper(fmt.Sprint(v)) {
	case EvalTrue:
		return True
	case EvalFalse:
		return False
	default:
		return Other
	}
}

// IfCondition is the composite condition of a language. It evaluates its
// child conditions and combines the results:
//
//	ALL  - every child result must equal the evaluation (TRUE or FALSE)
//	ANY  - at least one child result must equal the evaluation
//	NONE - no child result may equal the evaluation
//
// An empty list of conditions is always true. Children whose condition type
// is not registered in the language are skipped.
//
// The registry synthesizes one IfCondition per language when the language
// schema is built, and looks up child kinds in the same registry.
type IfCondition struct {
	registry *Registry
	language string
}

// Form describes the fields of a composite node.
func (c *IfCondition) Form() Form {
	return Form{
		Title: "If",
		Fields: []Field{
			{
				Name:     KeyConcatenation,
				Label:    "Concatenation",
				Type:     String{},
				Required: true,
				Choices:  Choices(ConcatAll, ConcatAny, ConcatNone),
			},
			{
				Name:     KeyEvaluation,
				Label:    "Evaluation",
				Type:     String{},
				Required: true,
				Choices:  Choices(EvalTrue, EvalFalse),
			},
			{
				Name:     KeyConditions,
				Type:     Ref{Pointer: ConditionArrayRef},
				Required: true,
			},
		},
	}
}

// Represent renders the node as "If ALL are TRUE of the following:".
func (c *IfCondition) Represent(node Node) string {
	concat, _ := node.Concatenation()
	evaluation, _ := node.Evaluation()
	return fmt.Sprintf("If %s are %s of the following:", concat, evaluation)
}

// Evaluate combines the results of the node's child conditions.
// Children are evaluated in order, and evaluation stops as soon as the
// outcome is decided.
func (c *IfCondition) Evaluate(ctx context.Context, data any, node Node) (any, error) {
	children, err := node.Conditions()
	if err != nil {
		return nil, err
	}

	// Empty conditions always evaluate to true
	if len(children) == 0 {
		return true, nil
	}

	concat, err := node.Concatenation()
	if err != nil {
		return nil, err
	}
	evaluation, err := node.Evaluation()
	if err != nil {
		return nil, err
	}

	var target TriState
	switch evaluation {
	case EvalTrue:
		target = True
	case EvalFalse:
		target = False
	default:
		return nil, fmt.Errorf("%w: unknown %s %q", ErrMalformedNode, KeyEvaluation, evaluation)
	}

	// NONE is "all must fail to match": ALL with the target flipped
	switch concat {
	case ConcatAll, ConcatAny:
	case ConcatNone:
		concat = ConcatAll
		if target == True {
			target = False
		} else {
			target = True
		}
	default:
		return nil, fmt.Errorf("%w: unknown %s %q", ErrMalformedNode, KeyConcatenation, concat)
	}

	depth := depthFrom(ctx) + 1
	if depth > c.registry.opts.MaxDepth {
		return nil, fmt.Errorf("%w: %d", ErrMaxDepth, c.registry.opts.MaxDepth)
	}
	ctx = withDepth(ctx, depth)

	if concat == ConcatAny {
		for v, err := range c.results(ctx, data, children) {
			if err != nil {
				return nil, err
			}
			if ToTriState(v) == target {
				return true, nil
			}
		}
		return false, nil
	}

	for v, err := range c.results(ctx, data, children) {
		if err != nil {
			return nil, err
		}
		if ToTriState(v) != target {
			return false, nil
		}
	}
	return true, nil
}

// results lazily evaluates the children, skipping those whose condition type
// is not registered. Stopping the iteration stops evaluation.
func (c *IfCondition) results(ctx context.Context, data any, children []Node) iter.Seq2[any, error] {
	tr := traceFrom(ctx)
	depth := depthFrom(ctx)

	return func(yield func(any, error) bool) {
		for i, child := range children {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			kind, err := c.registry.Condition(c.language, child.Type())
			if errors.Is(err, ErrConditionNotFound) {
				c.registry.opts.Logger.Debug("skipping unknown condition",
					slog.String("language", c.language),
					slog.String("condition", child.Type()),
					slog.Int("depth", depth),
					slog.Int("index", i))
				tr.skip(depth, i, child.Type())
				continue
			}
			if err != nil {
				yield(nil, err)
				return
			}

			slot := tr.begin(depth, i, child.Type())
			v, err := kind.Evaluate(ctx, data, child)
			if err != nil {
				err = fmt.Errorf("evaluating condition %d (%s): %w", i, child.Type(), err)
			}
			tr.finish(slot, v, err)

			if !yield(v, err) {
				return
			}
		}
	}
}

type contextKey int

const (
	_ctxKeyDepth contextKey = iota
	_ctxKeyTrace
)

// withDepth records how many composite conditions enclose the evaluation.
func withDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, _ctxKeyDepth, depth)
}

func depthFrom(ctx context.Context) int {
	d, _ := ctx.Value(_ctxKeyDepth).(int)
	return d
}
