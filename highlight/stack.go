// Package highlight turns a grammarcore.Line's well-nested scope events
// into the per-position scope stacks a syntax highlighter actually wants
// to render against.
package highlight

import (
	"iter"
	"slices"

	"github.com/halvorsen/grammarcore"
	"github.com/halvorsen/grammarcore/loader"
)

// Span is a run of text sharing one scope stack, innermost scope last.
type Span struct {
	Start, End int
	Scopes     []string
}

// Line walks line's sorted events once, maintaining the currently-open
// scope stack, and yields a Span each time that stack changes. Because
// grammarcore guarantees well-nested events (spec.md §4.7), a simple
// push/pop stack suffices — no interval-tree or overlap resolution is
// needed.
func Line(line *grammarcore.Line, registry *loader.ScopeRegistry) []Span {
	var spans []Span
	var stack []string
	last := line.Begin

	flush := func(end int) {
		if end <= last {
			return
		}
		spans = append(spans, Span{Start: last, End: end, Scopes: slices.Clone(stack)})
		last = end
	}

	for _, ev := range line.Events {
		flush(ev.Offset)
		switch ev.Kind {
		case grammarcore.ScopeBegin:
			stack = append(stack, registry.Name(ev.Name))
		case grammarcore.ScopeEnd:
			stack = popScope(stack, registry.Name(ev.Name))
		}
	}
	flush(line.End)
	return spans
}

// popScope removes the innermost occurrence of name from stack. Events
// are well-nested, so it is always the last element; the linear fallback
// only guards against a caller-supplied registry mismatch.
func popScope(stack []string, name string) []string {
	if n := len(stack); n > 0 && stack[n-1] == name {
		return stack[:n-1]
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == name {
			return append(stack[:i], stack[i+1:]...)
		}
	}
	return stack
}

// Changes iterates spans as (offset, scopeStack) pairs, in the shape a
// column-oriented renderer (one paint call per change, not per byte)
// wants to consume.
func Changes(spans []Span) iter.Seq2[int, []string] {
	return func(yield func(int, []string) bool) {
		for _, sp := range spans {
			if !yield(sp.Start, sp.Scopes) {
				return
			}
		}
	}
}
