package cel

import (
	"fmt"

	"github.com/ezachrisen/rulebuilder"
	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// BinaryFunction is a Go function callable from expressions with two arguments.
// LHS, RHS and Return declare the types to the CEL type checker.
type BinaryFunction struct {
	LHS    rulebuilder.Type
	RHS    rulebuilder.Type
	Return rulebuilder.Type
	Func   func(lhs, rhs any) (any, error)
}

// binaryFunction creates a CEL declaration for a binary function (a function that takes
// two parameters and returns a value).
func binaryFunction(name string, v BinaryFunction) (celgo.EnvOption, error) {
	if v.Func == nil {
		return nil, fmt.Errorf("%q missing function", name)
	}

	lhs, err := celType(v.LHS)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", name, err)
	}

	rhs, err := celType(v.RHS)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", name, err)
	}

	ret, err := celType(v.Return)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", name, err)
	}

	return celgo.Function(name,
		celgo.Overload(fmt.Sprintf("%s_%s_%s", name, v.LHS, v.RHS),
			[]*celgo.Type{lhs, rhs},
			ret,
			celgo.BinaryBinding(binaryWrapper(name, v)))), nil
}

// binaryWrapper wraps a binary function in a closure that converts the CEL
// arguments to native Go values, and the return value back to CEL.
func binaryWrapper(name string, f BinaryFunction) func(lhs, rhs ref.Val) ref.Val {
	return func(lhs, rhs ref.Val) ref.Val {
		x, err := f.Func(lhs.Value(), rhs.Value())
		if err != nil {
			return types.NewErr("function %s: %s", name, err)
		}
		return types.DefaultTypeAdapter.NativeToValue(x)
	}
}
