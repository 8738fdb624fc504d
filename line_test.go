package grammarcore

import (
	"reflect"
	"testing"
)

func TestAddScopeRangeClampsAndSkipsEmpty(t *testing.T) {
	tests := []struct {
		name       string
		lineBegin  int
		lineEnd    int
		scopeName  ScopeName
		begin, end int
		wantEvents int
	}{
		{"fully inside line", 0, 10, 1, 2, 5, 2},
		{"clamped at both ends", 5, 10, 1, 0, 20, 2},
		{"zero scope is dropped", 0, 10, NoScope, 2, 5, 0},
		{"empty after clamping is dropped", 5, 10, 1, 0, 5, 0},
		{"reversed range is dropped", 0, 10, 1, 8, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := &Line{Begin: tt.lineBegin, End: tt.lineEnd}
			addScopeRange(line, tt.scopeName, 0, tt.begin, tt.end)
			if len(line.Events) != tt.wantEvents {
				t.Fatalf("got %d events, want %d: %+v", len(line.Events), tt.wantEvents, line.Events)
			}
			for _, ev := range line.Events {
				if ev.Offset < line.Begin || ev.Offset > line.End {
					t.Errorf("event offset %d out of [%d,%d]", ev.Offset, line.Begin, line.End)
				}
			}
		})
	}
}

func TestSortScopeEventsWellNested(t *testing.T) {
	line := &Line{Begin: 0, End: 20}
	// Outer scope [2, 10), inner scope [4, 6): should nest outer-begin,
	// inner-begin, inner-end, outer-end.
	addScopeRange(line, 1, 0, 2, 10)
	addScopeRange(line, 2, 10, 4, 6)
	sortScopeEvents(line.Events)

	var trace []string
	stack := []ScopeName{}
	for _, ev := range line.Events {
		if ev.Kind == ScopeBegin {
			stack = append(stack, ev.Name)
			trace = append(trace, "begin")
		} else {
			if len(stack) == 0 || stack[len(stack)-1] != ev.Name {
				t.Fatalf("END %v does not match innermost open scope %v at offset %d", ev.Name, stack, ev.Offset)
			}
			stack = stack[:len(stack)-1]
			trace = append(trace, "end")
		}
	}
	if len(stack) != 0 {
		t.Fatalf("scopes left open: %v", stack)
	}
	want := []string{"begin", "begin", "end", "end"}
	if !reflect.DeepEqual(trace, want) {
		t.Fatalf("got trace %v, want %v", trace, want)
	}
}

func TestSortScopeEventsEndBeforeBeginAtSameOffset(t *testing.T) {
	line := &Line{Begin: 0, End: 20}
	addScopeRange(line, 1, 0, 0, 5) // closes at 5
	addScopeRange(line, 2, 2, 5, 10) // opens at 5
	sortScopeEvents(line.Events)

	if len(line.Events) != 4 {
		t.Fatalf("want 4 events, got %d", len(line.Events))
	}
	// At offset 5 the END of scope 1 must precede the BEGIN of scope 2.
	var atFive []ScopeEvent
	for _, ev := range line.Events {
		if ev.Offset == 5 {
			atFive = append(atFive, ev)
		}
	}
	if len(atFive) != 2 || atFive[0].Kind != ScopeEnd || atFive[1].Kind != ScopeBegin {
		t.Fatalf("expected END then BEGIN at offset 5, got %+v", atFive)
	}
}

func TestSortScopeEventsDeterministic(t *testing.T) {
	build := func() []ScopeEvent {
		line := &Line{Begin: 0, End: 20}
		addScopeRange(line, 1, 0, 2, 10)
		addScopeRange(line, 2, 10, 4, 6)
		addScopeRange(line, 3, 12, 4, 6)
		sortScopeEvents(line.Events)
		return line.Events
	}
	a := build()
	b := build()
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("non-deterministic sort: %+v vs %+v", a, b)
	}
}
