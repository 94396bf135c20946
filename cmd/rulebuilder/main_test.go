package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
)

const languages = `
languages:
  customers:
    conditions:
      age_over:
        title: Age over
        expr: data.age > n
        fields:
          - {name: n, type: int, required: true}
      country_is:
        title: Country is
        expr: data.country == code
        fields:
          - {name: code, type: string, required: true}
`

const rule = `{
  "condition_type": "ifcondition",
  "concatenation": "ALL",
  "evaluation": "TRUE",
  "conditions": [
    {"condition_type": "age_over", "n": 18},
    {"condition_type": "country_is", "code": "US"}
  ]
}`

func setup(t *testing.T) (dir string) {
	t.Helper()
	dir = t.TempDir()
	files := map[string]string{
		"languages.yaml": languages,
		"rule.json":      rule,
		"adult.json":     `{"age": 20, "country": "US"}`,
		"minor.json":     `{"age": 15, "country": "US"}`,
		"invalid.json":   `{"condition_type": "age_over", "n": "eighteen"}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRun(t *testing.T) {
	dir := setup(t)
	p := func(name string) string { return filepath.Join(dir, name) }

	cases := map[string]struct {
		args     []string
		stdin    string
		wantCode int
		wantOut  []string
	}{
		"languages": {
			args:    []string{"languages", "-config", p("languages.yaml")},
			wantOut: []string{"customers", "age_over", "Country is"},
		},
		"schema": {
			args:    []string{"schema", "-config", p("languages.yaml"), "-language", "customers"},
			wantOut: []string{`"$schema": "http://json-schema.org/draft-04/schema#"`, `"ifcondition"`},
		},
		"eval true": {
			args:    []string{"eval", "-config", p("languages.yaml"), "-language", "customers", "-rule", p("rule.json"), "-data", p("adult.json")},
			wantOut: []string{"true"},
		},
		"eval false from stdin": {
			args:    []string{"eval", "-config", p("languages.yaml"), "-language", "customers", "-rule", p("rule.json"), "-data", "-"},
			stdin:   `{"age": 15, "country": "US"}`,
			wantOut: []string{"false"},
		},
		"eval trace": {
			args:    []string{"eval", "-trace", "-config", p("languages.yaml"), "-language", "customers", "-rule", p("rule.json"), "-data", p("minor.json")},
			wantOut: []string{"EVALUATION TRACE", "age_over", "false"},
		},
		"describe": {
			args:    []string{"describe", "-config", p("languages.yaml"), "-language", "customers", "-rule", p("rule.json")},
			wantOut: []string{"If ALL are TRUE of the following:", "└── Country is (code=US)"},
		},
		"validate": {
			args:    []string{"validate", "-config", p("languages.yaml"), "-language", "customers", "-rule", p("rule.json")},
			wantOut: []string{"valid"},
		},
		"validate invalid": {
			args:     []string{"validate", "-config", p("languages.yaml"), "-language", "customers", "-rule", p("invalid.json")},
			wantCode: 1,
			wantOut:  []string{"/n"},
		},
		"missing flags": {
			args:     []string{"eval", "-config", p("languages.yaml")},
			wantCode: 2,
		},
		"unknown language": {
			args:     []string{"schema", "-config", p("languages.yaml"), "-language", "orders"},
			wantCode: 2,
		},
		"unknown command": {
			args:     []string{"compile"},
			wantCode: 2,
		},
	}

	for k, c := range cases {
		t.Run(k, func(t *testing.T) {
			is := is.New(t)
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), c.args, strings.NewReader(c.stdin), &stdout, &stderr)
			is.Equal(code, c.wantCode)
			for _, w := range c.wantOut {
				if !strings.Contains(stdout.String(), w) {
					t.Errorf("output does not contain %q:\n%s", w, stdout.String())
				}
			}
		})
	}
}
