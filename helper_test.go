package rulebuilder_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/ezachrisen/rulebuilder"
)

// -------------------------------------------------- TEST CONDITIONS
// fixedKind is a condition kind that always returns the same result,
// and counts how often it was evaluated.
type fixedKind struct {
	title string
	value any
	err   error
	calls atomic.Int64
}

func (k *fixedKind) Form() rulebuilder.Form {
	return rulebuilder.Form{Title: k.title}
}

func (k *fixedKind) Evaluate(ctx context.Context, data any, node rulebuilder.Node) (any, error) {
	k.calls.Add(1)
	return k.value, k.err
}

var errBoom = errors.New("boom")

// testKinds are registered into the "test" language by newTestRegistry:
//
//	t     - true
//	f     - false
//	lt    - the string "true"
//	o     - the string "maybe"
//	boom  - an error
type testKinds struct {
	t, f, lt, o, boom *fixedKind
}

func newTestRegistry(t *testing.T, opts ...rulebuilder.RegistryOption) (*rulebuilder.Registry, *testKinds) {
	t.Helper()
	k := &testKinds{
		t:    &fixedKind{title: "Always true", value: true},
		f:    &fixedKind{title: "Always false", value: false},
		lt:   &fixedKind{title: "Lowercase true", value: "true"},
		o:    &fixedKind{title: "Maybe", value: "maybe"},
		boom: &fixedKind{title: "Boom", err: errBoom},
	}
	r := rulebuilder.NewRegistry(opts...)
	for name, kind := range map[string]rulebuilder.Condition{
		"t": k.t, "f": k.f, "lt": k.lt, "o": k.o, "boom": k.boom,
	} {
		if err := r.Register("test", name, kind); err != nil {
			t.Fatal(err)
		}
	}
	return r, k
}

// leaf returns a node of the condition type, with alternating keys and values.
func leaf(conditionType string, kv ...any) rulebuilder.Node {
	n := rulebuilder.Node{rulebuilder.KeyConditionType: conditionType}
	for i := 0; i+1 < len(kv); i += 2 {
		n[kv[i].(string)] = kv[i+1]
	}
	return n
}

// ifNode returns a composite node.
func ifNode(concat, evaluation string, children ...rulebuilder.Node) rulebuilder.Node {
	return rulebuilder.Node{
		rulebuilder.KeyConditionType: rulebuilder.IfConditionName,
		rulebuilder.KeyConcatenation: concat,
		rulebuilder.KeyEvaluation:    evaluation,
		rulebuilder.KeyConditions:    children,
	}
}

// customerKinds registers the age_over and country_is kinds into "L1".
func customerKinds(t *testing.T, r *rulebuilder.Registry) {
	t.Helper()

	ageOver := rulebuilder.NewCondition(rulebuilder.Form{
		Title: "Age over",
		Fields: []rulebuilder.Field{
			{Name: "n", Label: "Minimum age", Type: rulebuilder.Int{}, Required: true},
		},
	}, func(ctx context.Context, data any, node rulebuilder.Node) (any, error) {
		age, _ := data.(map[string]any)["age"].(int)
		n, _ := node["n"].(float64)
		return float64(age) > n, nil
	})

	countryIs := rulebuilder.NewCondition(rulebuilder.Form{
		Title: "Country is",
		Fields: []rulebuilder.Field{
			{Name: "code", Type: rulebuilder.String{}, Required: true, Choices: rulebuilder.Choices("US", "CA")},
		},
	}, func(ctx context.Context, data any, node rulebuilder.Node) (any, error) {
		return data.(map[string]any)["country"] == node["code"], nil
	})

	if err := r.Register("L1", "age_over", ageOver); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("L1", "country_is", countryIs); err != nil {
		t.Fatal(err)
	}
}
