package highlight

import (
	"testing"

	"github.com/halvorsen/grammarcore"
	"github.com/halvorsen/grammarcore/loader"
)

func TestLineReconstructsNestedScopeStacks(t *testing.T) {
	reg := loader.NewScopeRegistry()
	outer := reg.Intern("string.quoted.double")
	inner := reg.Intern("constant.character.escape")

	line := &grammarcore.Line{Begin: 0, End: 10}
	line.Events = []grammarcore.ScopeEvent{
		{Kind: grammarcore.ScopeBegin, Name: outer, Offset: 0},
		{Kind: grammarcore.ScopeBegin, Name: inner, Offset: 2},
		{Kind: grammarcore.ScopeEnd, Name: inner, Offset: 4},
		{Kind: grammarcore.ScopeEnd, Name: outer, Offset: 10},
	}

	spans := Line(line, reg)

	want := []Span{
		{Start: 0, End: 2, Scopes: []string{"string.quoted.double"}},
		{Start: 2, End: 4, Scopes: []string{"string.quoted.double", "constant.character.escape"}},
		{Start: 4, End: 10, Scopes: []string{"string.quoted.double"}},
	}
	if len(spans) != len(want) {
		t.Fatalf("got %d spans, want %d: %+v", len(spans), len(want), spans)
	}
	for i, sp := range spans {
		if sp.Start != want[i].Start || sp.End != want[i].End || len(sp.Scopes) != len(want[i].Scopes) {
			t.Fatalf("span %d = %+v, want %+v", i, sp, want[i])
		}
		for j, s := range sp.Scopes {
			if s != want[i].Scopes[j] {
				t.Fatalf("span %d scope %d = %q, want %q", i, j, s, want[i].Scopes[j])
			}
		}
	}
}

func TestChangesIteratesSpansInOrder(t *testing.T) {
	spans := []Span{
		{Start: 0, End: 2, Scopes: []string{"a"}},
		{Start: 2, End: 5, Scopes: []string{"a", "b"}},
	}
	var starts []int
	for off, scopes := range Changes(spans) {
		starts = append(starts, off)
		if len(scopes) == 0 {
			t.Fatalf("unexpected empty scope stack at offset %d", off)
		}
	}
	if len(starts) != 2 || starts[0] != 0 || starts[1] != 2 {
		t.Fatalf("got starts %v, want [0 2]", starts)
	}
}

func TestLineWithNoEventsYieldsOneEmptySpan(t *testing.T) {
	reg := loader.NewScopeRegistry()
	line := &grammarcore.Line{Begin: 0, End: 5}
	spans := Line(line, reg)
	if len(spans) != 1 || len(spans[0].Scopes) != 0 {
		t.Fatalf("expected one empty span, got %+v", spans)
	}
	if spans[0].Start != 0 || spans[0].End != 5 {
		t.Fatalf("expected span covering the whole line, got %+v", spans[0])
	}
}
