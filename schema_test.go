package rulebuilder_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ezachrisen/rulebuilder"
	"github.com/ezachrisen/rulebuilder/jsonschema"
	json "github.com/goccy/go-json"
	"github.com/matryer/is"
)

func TestSchema(t *testing.T) {
	is := is.New(t)
	r := rulebuilder.NewRegistry()
	customerKinds(t, r)

	doc, err := r.Schema("L1")
	is.NoErr(err)

	is.Equal(doc.Schema, "http://json-schema.org/draft-04/schema#")
	is.Equal(doc.Description, "Language schema for L1")
	is.Equal(doc.Conditions(), []string{"age_over", "country_is", "ifcondition"})
	is.Equal(doc.Properties["conditions"].Ref, "#/definitions/conditionArray")

	is.Equal(doc.Definitions["basecondition"].Type, "object")
	arr := doc.Definitions["conditionArray"]
	is.Equal(arr.Type, "array")
	is.Equal(*arr.MinItems, 1)
	is.Equal(arr.Items.Ref, "#/definitions/basecondition")

	age := doc.Definitions["age_over"]
	is.Equal(age.Extends, "#/definitions/basecondition")
	is.Equal(age.ConditionType.Enum, []string{"age_over"})
	is.Equal(age.Required, []string{"n"})
	is.Equal(age.Properties["n"].Type, "integer")

	ifc := doc.Definitions["ifcondition"]
	is.Equal(ifc.ConditionType.Enum, []string{"ifcondition"})
	is.Equal(ifc.Properties["concatenation"].Enum, []any{"ALL", "ANY", "NONE"})
	is.Equal(ifc.Properties["evaluation"].Enum, []any{"TRUE", "FALSE"})
	is.Equal(ifc.Properties["conditions"].Ref, "#/definitions/conditionArray")
	is.Equal(ifc.Required, []string{"concatenation", "evaluation", "conditions"})

	// Building the schema registers the composite kind
	_, err = r.Condition("L1", "ifcondition")
	is.NoErr(err)

	_, err = r.Schema("L2")
	is.True(errors.Is(err, rulebuilder.ErrLanguageNotFound))
}

func TestSchemaJSON(t *testing.T) {
	is := is.New(t)
	r := rulebuilder.NewRegistry()
	customerKinds(t, r)

	doc, err := r.Schema("L1")
	is.NoErr(err)
	b, err := doc.JSON()
	is.NoErr(err)

	var m map[string]any
	is.NoErr(json.Unmarshal(b, &m))
	is.Equal(m["$schema"], "http://json-schema.org/draft-04/schema#")

	defs := m["definitions"].(map[string]any)
	country := defs["country_is"].(map[string]any)
	is.Equal(country["extends"], "#/definitions/basecondition")
	is.Equal(country["condition_type"], map[string]any{"enum": []any{"country_is"}})
	is.Equal(country["properties"].(map[string]any)["code"].(map[string]any)["enum"], []any{"US", "CA"})
}

func TestSchemaCache(t *testing.T) {
	is := is.New(t)
	r := rulebuilder.NewRegistry()
	customerKinds(t, r)

	first, err := r.Schema("L1")
	is.NoErr(err)
	second, err := r.Schema("L1")
	is.NoErr(err)
	is.True(first == second) // cached

	// Registering evicts the cached schema
	is.NoErr(r.Register("L1", "zip_is", &fixedKind{title: "Zip is", value: true}))
	third, err := r.Schema("L1")
	is.NoErr(err)
	is.True(third != first)
	is.Equal(third.Conditions(), []string{"age_over", "country_is", "ifcondition", "zip_is"})

	// The old document is unchanged
	is.Equal(first.Conditions(), []string{"age_over", "country_is", "ifcondition"})

	// Registering into another language leaves the cache alone
	is.NoErr(r.Register("L2", "other", &fixedKind{value: true}))
	fourth, err := r.Schema("L1")
	is.NoErr(err)
	is.True(fourth == third)
}

// brokenTranslator fails for forms with the title "broken"
type brokenTranslator struct {
	shared *jsonschema.Definition
}

func (b brokenTranslator) Translate(f rulebuilder.Form) (*jsonschema.Definition, error) {
	if f.Title == "broken" {
		return nil, fmt.Errorf("%w: cannot translate", rulebuilder.ErrTranslation)
	}
	return b.shared, nil
}

func TestSchemaTranslator(t *testing.T) {
	is := is.New(t)
	shared := &jsonschema.Definition{Type: "object"}
	r := rulebuilder.NewRegistry(rulebuilder.WithTranslator(brokenTranslator{shared: shared}))

	is.NoErr(r.Register("L1", "a", &fixedKind{title: "a"}))
	is.NoErr(r.Register("L1", "b", &fixedKind{title: "b"}))
	doc, err := r.Schema("L1")
	is.NoErr(err)

	// Every definition gets its own tag, even from a shared translation
	is.Equal(doc.Definitions["a"].ConditionType.Enum, []string{"a"})
	is.Equal(doc.Definitions["b"].ConditionType.Enum, []string{"b"})
	is.True(shared.ConditionType == nil)

	is.NoErr(r.Register("L1", "c", &fixedKind{title: "broken"}))
	_, err = r.Schema("L1")
	is.True(errors.Is(err, rulebuilder.ErrTranslation))
}

func TestSchemaConcurrent(t *testing.T) {
	is := is.New(t)
	r := rulebuilder.NewRegistry()
	customerKinds(t, r)

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)

	for i := range n {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := r.Schema("L1"); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if err := r.Register("L1", fmt.Sprintf("kind_%d", i), &fixedKind{value: true}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		is.NoErr(err)
	}

	// After the dust settles, the schema has every kind
	doc, err := r.Schema("L1")
	is.NoErr(err)
	is.Equal(len(doc.Conditions()), n+3)
}
