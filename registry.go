package rulebuilder

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/sync/singleflight"
)

// Registry maps language names to the condition kinds registered in them,
// and caches the JSON Schema synthesized for each language.
//
// The registry is the single source of truth for both evaluation (which kind
// handles a node) and schema generation (which shapes are legal). Registering
// a kind is the only way to change a language, and it always evicts the
// language's cached schema.
//
// A Registry is safe for concurrent use. Registration is expected to be rare
// compared to schema lookups and evaluation.
type Registry struct {
	// Mutex for the languages map and everything in it
	mu        sync.RWMutex
	languages map[string]*language

	// Collapses concurrent schema builds for the same language
	builds singleflight.Group

	opts RegistryOptions
}

// language is a namespace of condition kinds sharing one schema.
type language struct {
	conditions map[string]Condition

	// cached schema; nil until requested, and after every registration
	schema *Document

	// incremented on every registration, so that a schema built from an
	// older set of conditions is never cached
	generation uint64
}

// NewRegistry initializes an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		languages: make(map[string]*language),
		opts: RegistryOptions{
			Translator: FormTranslator{},
			Logger:     slog.New(slog.DiscardHandler),
			MaxDepth:   defaultDepth,
		},
	}
	applyRegistryOptions(&r.opts, opts...)
	return r
}

// Register adds the condition kind to the language under the name, creating
// the language if needed. Registering a name again replaces the earlier kind;
// callers must avoid accidental name collisions.
//
// The cached schema of the language is evicted, so the next call to Schema
// includes the new kind.
func (r *Registry) Register(languageName, name string, kind Condition) error {
	if strings.TrimSpace(languageName) == "" {
		return fmt.Errorf("required language name for condition %s", name)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("required condition name in language %s", languageName)
	}
	if name == IfConditionName {
		return fmt.Errorf("%w: %s is synthesized for every language", ErrReservedName, name)
	}
	if kind == nil {
		return fmt.Errorf("attempt to register nil condition %s in language %s", name, languageName)
	}

	r.mu.Lock()
	l, ok := r.languages[languageName]
	if !ok {
		l = &language{conditions: make(map[string]Condition)}
		r.languages[languageName] = l
	}
	_, replaced := l.conditions[name]
	l.conditions[name] = kind
	l.schema = nil
	l.generation++
	r.mu.Unlock()

	r.opts.Logger.Debug("registered condition",
		slog.String("language", languageName),
		slog.String("condition", name),
		slog.Bool("replaced", replaced))
	return nil
}

// Language returns the condition kinds registered in the language, keyed by
// name. The map is a copy; changing it does not change the registry.
// Once a schema has been generated for the language, the map includes the
// composite kind under IfConditionName.
func (r *Registry) Language(name string) (map[string]Condition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.languages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLanguageNotFound, name)
	}
	out := make(map[string]Condition, len(l.conditions))
	for k, c := range l.conditions {
		out[k] = c
	}
	return out, nil
}

// Condition returns the condition kind registered under the name in the language.
func (r *Registry) Condition(languageName, name string) (Condition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.languages[languageName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLanguageNotFound, languageName)
	}
	c, ok := l.conditions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s in language %s", ErrConditionNotFound, name, languageName)
	}
	return c, nil
}

// Languages returns the names of all languages, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.languages))
	for k := range r.languages {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// String lists every language and the condition kinds registered in it.
func (r *Registry) String() string {
	tw := table.NewWriter()
	tw.SetTitle("\nCONDITION REGISTRY\n")
	tw.AppendHeader(table.Row{"Language", "Condition", "Title", "Fields"})

	total := 0
	for _, lang := range r.Languages() {
		kinds, err := r.Language(lang)
		if err != nil {
			continue
		}
		names := make([]string, 0, len(kinds))
		for k := range kinds {
			names = append(names, k)
		}
		slices.Sort(names)
		for _, n := range names {
			f := kinds[n].Form()
			fields := make([]string, len(f.Fields))
			for i, fd := range f.Fields {
				fields[i] = fmt.Sprintf("%s (%s)", fd.Name, fd.Type)
			}
			tw.AppendRow(table.Row{lang, n, f.Title, strings.Join(fields, "\n")})
			total++
		}
	}
	tw.AppendFooter(table.Row{"", humanize.Comma(int64(total)) + " conditions", "", ""})

	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	style.Options.SeparateRows = true
	tw.SetStyle(style)
	return tw.Render()
}
