package grammarcore

import "slices"

// ScopeEventKind distinguishes the two halves of a scope range.
type ScopeEventKind int

const (
	ScopeBegin ScopeEventKind = iota
	ScopeEnd
)

// ScopeEvent is one endpoint of a scope range on a Line, already sorted
// into the well-nested total order defined by spec.md §4.7.
type ScopeEvent struct {
	Kind ScopeEventKind
	Name ScopeName

	// Offset is clamped to [Line.Begin, Line.End]; it is the position a
	// consumer should treat this event as occurring at.
	Offset int

	// StartOffset/EndOffset are the unclamped range bounds, kept only to
	// break sort ties; a scope opened on a previous line or still open
	// at line end will have bounds outside [Line.Begin, Line.End].
	StartOffset, EndOffset int

	// Seq is the renderer's allocation order, the final sort tie-break.
	Seq int
}

// Line is the byte range rendered by one call to Renderer.RenderNextLine,
// plus its scope events in well-nested sorted order.
type Line struct {
	// Begin/End is the line's byte range, excluding its terminator.
	Begin, End int
	// EndIncludingNewline includes the terminator (\n, \r, or \r\n); it
	// equals End for the last, unterminated line of input.
	EndIncludingNewline int

	Events []ScopeEvent
}

// addScopeRange clamps [begin, end) into the line and, unless the clamped
// range is empty or name is NoScope, appends its BEGIN/END event pair.
func addScopeRange(line *Line, name ScopeName, seq, begin, end int) {
	clampedBegin := max(begin, line.Begin)
	clampedEnd := min(end, line.End)
	if name == NoScope || clampedBegin >= clampedEnd {
		return
	}
	line.Events = append(line.Events,
		ScopeEvent{Kind: ScopeBegin, Name: name, Offset: clampedBegin, StartOffset: begin, EndOffset: end, Seq: seq},
		ScopeEvent{Kind: ScopeEnd, Name: name, Offset: clampedEnd, StartOffset: begin, EndOffset: end, Seq: seq},
	)
}

func sortScopeEvents(events []ScopeEvent) {
	slices.SortFunc(events, compareScopeEvents)
}

// compareScopeEvents is the total order from spec.md §4.7, ported
// directly from the reference implementation's compareScopes: offset,
// then END-before-BEGIN, then (direction-adjusted) unclamped start,
// unclamped end, and finally seq.
func compareScopeEvents(a, b ScopeEvent) int {
	if a.Offset != b.Offset {
		return a.Offset - b.Offset
	}
	if a.Kind == ScopeEnd && b.Kind == ScopeBegin {
		return -1
	}
	if a.Kind == ScopeBegin && b.Kind == ScopeEnd {
		return 1
	}
	dir := 1
	if a.Kind == ScopeEnd {
		dir = -1
	}
	if a.StartOffset != b.StartOffset {
		if a.StartOffset < b.StartOffset {
			return -dir
		}
		return dir
	}
	if a.EndOffset != b.EndOffset {
		if a.EndOffset < b.EndOffset {
			return dir
		}
		return -dir
	}
	if a.Seq != b.Seq {
		if a.Seq < b.Seq {
			return -dir
		}
		return dir
	}
	return 0
}
