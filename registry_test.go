package rulebuilder_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ezachrisen/rulebuilder"
	"github.com/matryer/is"
)

func TestRegister(t *testing.T) {
	is := is.New(t)
	r := rulebuilder.NewRegistry()

	_, err := r.Language("L1")
	is.True(errors.Is(err, rulebuilder.ErrLanguageNotFound))

	customerKinds(t, r)
	is.Equal(r.Languages(), []string{"L1"})

	kinds, err := r.Language("L1")
	is.NoErr(err)
	is.Equal(len(kinds), 2)

	// The returned map is a copy
	delete(kinds, "age_over")
	_, err = r.Condition("L1", "age_over")
	is.NoErr(err)

	_, err = r.Condition("L1", "zip_is")
	is.True(errors.Is(err, rulebuilder.ErrConditionNotFound))
	_, err = r.Condition("L2", "age_over")
	is.True(errors.Is(err, rulebuilder.ErrLanguageNotFound))

	// Registering again replaces the kind
	replacement := &fixedKind{title: "Replacement", value: true}
	is.NoErr(r.Register("L1", "age_over", replacement))
	got, err := r.Condition("L1", "age_over")
	is.NoErr(err)
	is.Equal(got, replacement)
}

func TestRegisterErrors(t *testing.T) {
	r := rulebuilder.NewRegistry()
	kind := &fixedKind{value: true}

	cases := map[string]struct {
		language, name string
		kind           rulebuilder.Condition
		want           error
	}{
		"empty language": {"", "a", kind, nil},
		"blank name":     {"L1", " ", kind, nil},
		"nil kind":       {"L1", "a", nil, nil},
		"reserved":       {"L1", "ifcondition", kind, rulebuilder.ErrReservedName},
	}

	for k, c := range cases {
		err := r.Register(c.language, c.name, c.kind)
		if err == nil {
			t.Errorf("%s: wanted error", k)
			continue
		}
		if c.want != nil && !errors.Is(err, c.want) {
			t.Errorf("%s: wanted %v, got %v", k, c.want, err)
		}
	}

	if len(r.Languages()) != 0 {
		t.Errorf("failed registrations created languages: %v", r.Languages())
	}
}

func TestLanguagesAreIsolated(t *testing.T) {
	is := is.New(t)
	r := rulebuilder.NewRegistry()
	is.NoErr(r.Register("L1", "a", &fixedKind{value: true}))
	is.NoErr(r.Register("L2", "b", &fixedKind{value: false}))

	l1, err := r.Schema("L1")
	is.NoErr(err)
	is.Equal(l1.Conditions(), []string{"a", "ifcondition"})

	// A child registered only in another language is skipped
	got, err := r.Evaluate(context.Background(), "L1", nil, ifNode("ALL", "FALSE", leaf("b")))
	is.NoErr(err)
	is.True(got)

	_, err = r.Evaluate(context.Background(), "L1", nil, leaf("b"))
	is.True(errors.Is(err, rulebuilder.ErrConditionNotFound))
}

func TestRegistryString(t *testing.T) {
	is := is.New(t)
	r := rulebuilder.NewRegistry()
	customerKinds(t, r)

	s := r.String()
	for _, want := range []string{"CONDITION REGISTRY", "age_over", "Country is", "n (int)", "2 conditions"} {
		is.True(strings.Contains(s, want)) // registry table
	}
}

func TestRegistryLogger(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := rulebuilder.NewRegistry(rulebuilder.WithLogger(logger))
	is.NoErr(r.Register("test", "t", &fixedKind{value: true}))
	_, err := r.Evaluate(context.Background(), "test", nil, ifNode("ALL", "TRUE", leaf("t"), leaf("gone")))
	is.NoErr(err)

	out := buf.String()
	is.True(strings.Contains(out, `msg="registered condition"`))
	is.True(strings.Contains(out, `msg="built language schema"`))
	is.True(strings.Contains(out, `msg="skipping unknown condition"`))
	is.True(strings.Contains(out, "condition=gone"))
}
