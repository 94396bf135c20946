package rulebuilder

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Trace records the conditions visited during an evaluation, in the order
// they were visited. Attach it to the context with WithTrace.
type Trace struct {
	mu      sync.Mutex
	Entries []TraceEntry
}

// TraceEntry is a single visited rule node.
type TraceEntry struct {
	// Number of composite conditions enclosing the node
	Depth int

	// Position of the node among its siblings
	Index int

	ConditionType string

	// The raw result of the condition
	Value any

	// The normalized result
	Result TriState

	// The error returned by the condition, if any
	Err error

	// Set if the condition type is not registered and the node was not evaluated
	Skipped bool
}

// WithTrace returns a child context that records evaluation into t.
func WithTrace(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(ctx, _ctxKeyTrace, t)
}

func traceFrom(ctx context.Context) *Trace {
	t, _ := ctx.Value(_ctxKeyTrace).(*Trace)
	return t
}

// begin reserves an entry before the node is evaluated, so that parents are
// listed before their children.
func (t *Trace) begin(depth, index int, conditionType string) int {
	if t == nil {
		return -1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Entries = append(t.Entries, TraceEntry{Depth: depth, Index: index, ConditionType: conditionType})
	return len(t.Entries) - 1
}

func (t *Trace) finish(slot int, v any, err error) {
	if t == nil || slot < 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Entries[slot].Value = v
	t.Entries[slot].Result = ToTriState(v)
	t.Entries[slot].Err = err
}

func (t *Trace) skip(depth, index int, conditionType string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Entries = append(t.Entries, TraceEntry{Depth: depth, Index: index, ConditionType: conditionType, Skipped: true})
}

// Evaluated is the number of conditions evaluated, not counting skipped ones.
func (t *Trace) Evaluated() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, e := range t.Entries {
		if !e.Skipped {
			n++
		}
	}
	return n
}

// String produces a table of the conditions visited and their results.
func (t *Trace) String() string {
	t.mu.Lock()
	entries := append([]TraceEntry(nil), t.Entries...)
	t.mu.Unlock()

	tw := table.NewWriter()
	tw.SetTitle("\nEVALUATION TRACE\n")
	tw.AppendHeader(table.Row{"Condition", "Index", "Value", "Result", "Note"})

	evaluated := 0
	for _, e := range entries {
		indent := strings.Repeat("  ", e.Depth)
		row := table.Row{indent + e.ConditionType, e.Index}
		switch {
		case e.Skipped:
			row = append(row, "", "", "skipped: not registered")
		case e.Err != nil:
			row = append(row, "", "", e.Err.Error())
			evaluated++
		default:
			row = append(row, fmt.Sprintf("%v", e.Value), e.Result.String(), "")
			evaluated++
		}
		tw.AppendRow(row)
	}
	tw.AppendFooter(table.Row{humanize.Comma(int64(evaluated)) + " evaluated", "", "", "", ""})

	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}
