package rulebuilder_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ezachrisen/rulebuilder"
	"github.com/matryer/is"
)

func TestTrace(t *testing.T) {
	is := is.New(t)
	r, _ := newTestRegistry(t)

	tr := &rulebuilder.Trace{}
	ctx := rulebuilder.WithTrace(context.Background(), tr)

	rule := ifNode("ALL", "TRUE",
		leaf("t"),
		leaf("gone"),
		ifNode("ANY", "TRUE", leaf("o"), leaf("lt")),
		leaf("f"),
		leaf("boom"), // never reached
	)
	got, err := r.Evaluate(ctx, "test", nil, rule)
	is.NoErr(err)
	is.True(!got)

	want := []struct {
		depth, index int
		ct           string
		result       rulebuilder.TriState
		skipped      bool
	}{
		{0, 0, "ifcondition", rulebuilder.False, false},
		{1, 0, "t", rulebuilder.True, false},
		{1, 1, "gone", rulebuilder.Other, true},
		{1, 2, "ifcondition", rulebuilder.True, false},
		{2, 0, "o", rulebuilder.Other, false},
		{2, 1, "lt", rulebuilder.True, false},
		{1, 3, "f", rulebuilder.False, false},
	}
	is.Equal(len(tr.Entries), len(want))
	for i, w := range want {
		e := tr.Entries[i]
		if e.Depth != w.depth || e.Index != w.index || e.ConditionType != w.ct || e.Result != w.result || e.Skipped != w.skipped {
			t.Errorf("entry %d: got %+v, wanted %+v", i, e, w)
		}
	}
	is.Equal(tr.Evaluated(), 6)

	s := tr.String()
	is.True(strings.Contains(s, "EVALUATION TRACE"))
	is.True(strings.Contains(s, "skipped: not registered"))
	is.True(strings.Contains(s, "6 evaluated"))
}

func TestTraceError(t *testing.T) {
	is := is.New(t)
	r, _ := newTestRegistry(t)

	tr := &rulebuilder.Trace{}
	_, err := r.Evaluate(rulebuilder.WithTrace(context.Background(), tr), "test", nil,
		ifNode("ANY", "TRUE", leaf("f"), leaf("boom")))
	is.True(errors.Is(err, errBoom))

	last := tr.Entries[len(tr.Entries)-1]
	is.Equal(last.ConditionType, "boom")
	is.True(errors.Is(last.Err, errBoom))
	is.True(tr.Entries[0].Err != nil) // root records the failure too
}

func TestNoTrace(t *testing.T) {
	is := is.New(t)
	r, _ := newTestRegistry(t)

	// Evaluating without a trace in the context must not record anywhere
	got, err := r.Evaluate(context.Background(), "test", nil, ifNode("ALL", "TRUE", leaf("t")))
	is.NoErr(err)
	is.True(got)
}
