// Package cel provides rulebuilder condition kinds backed by Google's cel-go
// expression engine.
//
// See https://github.com/google/cel-go and https://opensource.google/projects/cel for more information
// about CEL.
//
// The expressions you write must conform to the CEL spec: https://github.com/google/cel-spec.
//
// # Fields and Data
//
// Each field of the condition's form is declared to CEL as a variable of the
// field's type. When a rule node is evaluated, the node's parameters are bound
// to those variables; parameters missing from the node take the field default,
// or the zero value of the type. The application data passed to
// rulebuilder.Registry.Evaluate is available as the dynamic variable "data".
//
// For example, a condition that checks a minimum age:
//
//	form := rulebuilder.Form{
//	    Title:  "Age over",
//	    Fields: []rulebuilder.Field{{Name: "n", Type: rulebuilder.Int{}, Required: true}},
//	}
//	c, err := cel.NewCondition(form, `data.age > n`)
//
// # Number Parameters
//
// Rule nodes decoded from JSON carry all numbers as float64. Parameters of
// Int fields are converted to int64 before evaluation, provided they have no
// fractional part; parameters of Float fields are converted to float64.
// Comparisons between ints and doubles are enabled, since "data" is usually
// decoded from JSON too.
//
// # Go Structs
//
// CEL does not see the fields of Go structs passed as data. Pass maps, or
// flatten the struct into a map before evaluating.
package cel
