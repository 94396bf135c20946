package cel

import (
	"context"
	"errors"
	"fmt"

	"github.com/ezachrisen/rulebuilder"
	celgo "github.com/google/cel-go/cel"
)

// DataName is the CEL variable holding the application data.
const DataName = "data"

// ErrCompile is returned when the expression does not compile against the form.
var ErrCompile = errors.New("compiling CEL expression")

// Condition is a rulebuilder condition kind evaluated by a compiled CEL program.
// A Condition is safe for concurrent use.
type Condition struct {
	form rulebuilder.Form
	expr string
	prg  celgo.Program
}

// Option configures the CEL environment of a Condition.
type Option func(o *options)

type options struct {
	env   []celgo.EnvOption
	funcs map[string]BinaryFunction
}

// WithEnvOptions adds options to the CEL environment the expression is
// compiled in, such as extension libraries.
func WithEnvOptions(opts ...celgo.EnvOption) Option {
	return func(o *options) {
		o.env = append(o.env, opts...)
	}
}

// WithFunction makes a binary function available to the expression.
func WithFunction(name string, f BinaryFunction) Option {
	return func(o *options) {
		if o.funcs == nil {
			o.funcs = map[string]BinaryFunction{}
		}
		o.funcs[name] = f
	}
}

// NewCondition compiles expr, declaring each field of the form as a variable.
// The expression may return any value; the registry treats results whose
// text is TRUE or FALSE (in any case) as booleans.
func NewCondition(form rulebuilder.Form, expr string, opts ...Option) (*Condition, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	env, err := newEnv(form, o)
	if err != nil {
		return nil, err
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrCompile, expr, iss.Err())
	}

	prg, err := env.Program(ast, celgo.InterruptCheckFrequency(100))
	if err != nil {
		return nil, fmt.Errorf("%w: generating program for %q: %w", ErrCompile, expr, err)
	}

	return &Condition{
		form: form,
		expr: expr,
		prg:  prg,
	}, nil
}

func newEnv(form rulebuilder.Form, o options) (*celgo.Env, error) {
	envOpts := []celgo.EnvOption{
		celgo.CrossTypeNumericComparisons(true),
		celgo.Variable(DataName, celgo.DynType),
	}

	for _, f := range form.Fields {
		if f.Name == DataName {
			return nil, fmt.Errorf("%w: field %s is reserved for the application data", ErrCompile, DataName)
		}
		t, err := celType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %w", ErrCompile, f.Name, err)
		}
		envOpts = append(envOpts, celgo.Variable(f.Name, t))
	}

	for name, f := range o.funcs {
		fn, err := binaryFunction(name, f)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCompile, err)
		}
		envOpts = append(envOpts, fn)
	}

	envOpts = append(envOpts, o.env...)
	env, err := celgo.NewEnv(envOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: creating environment: %w", ErrCompile, err)
	}
	return env, nil
}

// Form returns the form the condition was compiled against.
func (c *Condition) Form() rulebuilder.Form {
	return c.form
}

// Expr returns the CEL source of the condition.
func (c *Condition) Expr() string {
	return c.expr
}

// Evaluate binds the node's parameters and the data to the expression's
// variables and runs the program. Returns the native Go value of the result.
func (c *Condition) Evaluate(ctx context.Context, data any, node rulebuilder.Node) (any, error) {
	vars, err := activation(c.form, node)
	if err != nil {
		return nil, err
	}
	vars[DataName] = data

	out, _, err := c.prg.ContextEval(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("evaluating %q: %w", c.expr, err)
	}
	return out.Value(), nil
}

// activation converts the node's parameters to the declared field types.
func activation(form rulebuilder.Form, node rulebuilder.Node) (map[string]any, error) {
	vars := make(map[string]any, len(form.Fields)+1)
	for _, f := range form.Fields {
		v, ok := node[f.Name]
		if !ok || v == nil {
			v = f.Default
		}
		if v == nil {
			vars[f.Name] = f.Type.Zero()
			continue
		}
		cv, err := coerce(f.Type, v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: parameter %s: %w", rulebuilder.ErrMalformedNode, node.Type(), f.Name, err)
		}
		vars[f.Name] = cv
	}
	return vars, nil
}
