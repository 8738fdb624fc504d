package grammarcore

import "github.com/halvorsen/grammarcore/onigregexp"

// maxStackDepth is the fixed pushdown stack depth, per spec.md §6.
const maxStackDepth = 256

// maxZeroProgressIterations bounds the dispatch loop's livelock guard:
// after this many consecutive non-advancing regular-rule matches at the
// same position, the loop gives up for the line (spec.md §4.4, §7).
const maxZeroProgressIterations = 32

// Logger receives non-fatal diagnostics (stack overflow/underflow) per
// spec.md §7's error taxonomy. NewRenderer installs a no-op Logger unless
// WithLogger is given.
type Logger interface {
	Warnf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warnf(string, ...any) {}

// RendererOption configures a Renderer at construction time.
type RendererOption func(*Renderer)

// WithLogger routes the renderer's non-fatal diagnostics to l.
func WithLogger(l Logger) RendererOption {
	return func(r *Renderer) { r.logger = l }
}

// frame is one entry on the Renderer's stack (spec.md "active state").
// pattern is nil for the permanent baseline frame and for transient
// frames entered via a capture's sub-state — neither carries an
// inner/outer scope to emit on pop.
type frame struct {
	state   *State
	pattern *Pattern

	// beginRegion is a saved copy of the begin match's capture region,
	// kept only when state.endPattern or state.whilePattern is
	// backreferencing. Its offsets are relative to beginOffset.
	beginRegion []onigregexp.Range
	beginOffset int

	outerBegin, outerSeq int
	innerBegin, innerSeq int

	endRegex   *onigregexp.Regexp
	whileRegex *onigregexp.Regexp
}

func (f *frame) free() {
	if f.endRegex != nil {
		f.endRegex.Free()
		f.endRegex = nil
	}
	if f.whileRegex != nil {
		f.whileRegex.Free()
		f.whileRegex = nil
	}
}

// Renderer owns the input bytes, the cursor, and the pushdown stack of
// active states. Not safe for concurrent use; see spec.md §5.
type Renderer struct {
	text   []byte
	offset int

	stack []frame
	seq   int

	logger Logger
}

// NewRenderer creates a Renderer over text, anchored at start.
func NewRenderer(text []byte, start *State, opts ...RendererOption) *Renderer {
	r := &Renderer{
		text:   text,
		stack:  make([]frame, 1, 8),
		logger: noopLogger{},
	}
	r.stack[0] = frame{state: start}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderNextLine advances by exactly one newline-terminated line and
// returns its scoped Line. Returns (nil, false) once the input is
// exhausted.
func (r *Renderer) RenderNextLine() (*Line, bool) {
	if r.offset >= len(r.text) {
		return nil, false
	}
	line := &Line{Begin: r.offset}
	line.End, line.EndIncludingNewline = advanceLine(r.text, r.offset)
	r.offset = line.EndIncludingNewline

	r.renderRange(line, line.Begin, line.EndIncludingNewline, 1)
	sortScopeEvents(line.Events)
	return line, true
}

// renderRange tokenizes text[begin:end] against the stack above
// stackBase, recursing for capture sub-states (stackBase == len(stack)
// in that case, so phase A below never re-verifies the frame that was
// just pushed for the capture itself).
func (r *Renderer) renderRange(line *Line, begin, end, stackBase int) {
	if begin == end {
		return
	}

	offset := begin
	maxOffset := offset

	// Phase A: while-anchor verification for already-open frames.
	for i := stackBase; i < len(r.stack); i++ {
		wp := r.stack[i].state.whilePattern
		if wp == nil {
			continue
		}
		groups, matched, err := r.searchAnchor(&r.stack[i], wp, &r.stack[i].whileRegex, line, offset, end, onigregexp.OptionNotBeginPosition)
		if err != nil || !matched {
			r.popTo(i)
			break
		}
		r.emitCaptures(line, wp, groups, line.Begin)
		r.stack[i].outerBegin = line.Begin + groups[0].Start
		r.stack[i].innerBegin = line.Begin + groups[0].End
		offset = line.Begin + groups[0].End
	}

	// Phase B: dispatch loop. An empty line (terminator only) matches no
	// rule.
	zeroProgress := 0
dispatch:
	for zeroProgress < maxZeroProgressIterations && line.End > line.Begin {
		top := r.stack[len(r.stack)-1]
		if top.state == nil {
			break dispatch
		}

		options := onigregexp.OptionNone
		if offset > top.innerBegin {
			options |= onigregexp.OptionNotBeginPosition
		}

		var endGroups []onigregexp.Range
		endMatched := false
		if top.state.endPattern != nil {
			var err error
			endGroups, endMatched, err = r.searchAnchor(&top, top.state.endPattern, &r.stack[len(r.stack)-1].endRegex, line, offset, end, options)
			if err != nil {
				endMatched = false
			}
		}

		ruleIdx, groups, matched := r.searchRegset(top.state, line, offset, end, options)

		regularWins := matched && (!endMatched ||
			groups[0].Start < endGroups[0].Start ||
			(top.state.applyEndPatternLast && groups[0].Start == endGroups[0].Start))

		switch {
		case regularWins:
			rl := top.state.rules[ruleIdx]
			r.emitCaptures(line, rl.pattern, groups, line.Begin)
			if rl.kind == ruleBegin {
				r.pushBegin(rl, groups, line.Begin)
			}
			newOffset := line.Begin + groups[0].End
			if newOffset > maxOffset {
				zeroProgress = 0
				maxOffset = newOffset
			} else {
				zeroProgress++
			}
			offset = newOffset

		case endMatched:
			r.emitCaptures(line, top.state.endPattern, endGroups, line.Begin)
			if len(r.stack) <= stackBase {
				r.logger.Warnf("grammarcore: end matched with no frame above baseline (stack underflow)")
				break dispatch
			}
			popped := r.stack[len(r.stack)-1]
			if popped.pattern != nil {
				addScopeRange(line, popped.pattern.innerScope, popped.innerSeq, popped.innerBegin, line.Begin+endGroups[0].Start)
				addScopeRange(line, popped.pattern.outerScope, popped.outerSeq, popped.outerBegin, line.Begin+endGroups[0].End)
			}
			r.popTo(len(r.stack) - 1)
			offset = line.Begin + endGroups[0].End

		default:
			break dispatch
		}
	}

	for i := stackBase; i < len(r.stack); i++ {
		f := r.stack[i]
		if f.pattern == nil {
			continue
		}
		addScopeRange(line, f.outerScope(), f.outerSeq, f.outerBegin, end)
		addScopeRange(line, f.innerScope(), f.innerSeq, f.innerBegin, end)
	}
}

func (f *frame) outerScope() ScopeName { return f.pattern.outerScope }
func (f *frame) innerScope() ScopeName { return f.pattern.innerScope }

// searchRegset finds the earliest-starting match of state's rules within
// [offset, end), breaking ties by add order (the regset's index order).
func (r *Renderer) searchRegset(state *State, line *Line, offset, end int, options onigregexp.Option) (int, []onigregexp.Range, bool) {
	best := -1
	var bestGroups []onigregexp.Range
	for i, rl := range state.rules {
		groups, matched, err := rl.pattern.regex.Search(r.text, line.Begin, line.EndIncludingNewline, offset, end, options)
		if err != nil || !matched {
			continue
		}
		if best == -1 || groups[0].Start < bestGroups[0].Start {
			best = i
			bestGroups = groups
		}
	}
	return best, bestGroups, best != -1
}

// searchAnchor searches an end or while pattern, transparently handling
// backreference expansion and the per-frame regex cache.
func (r *Renderer) searchAnchor(f *frame, p *Pattern, cache **onigregexp.Regexp, line *Line, offset, end int, options onigregexp.Option) ([]onigregexp.Range, bool, error) {
	if !p.backreferencing {
		return p.regex.Search(r.text, line.Begin, line.EndIncludingNewline, offset, end, options)
	}
	if *cache != nil {
		return (*cache).Search(r.text, line.Begin, line.EndIncludingNewline, offset, end, options)
	}
	if f.beginRegion == nil {
		return nil, false, nil
	}
	expanded, ok := templateBackreference(p.source, f.beginRegion, f.beginOffset, r.text)
	if !ok {
		return nil, false, nil
	}
	re, err := onigregexp.Compile(expanded)
	if err != nil {
		return nil, false, err
	}
	*cache = re
	return re.Search(r.text, line.Begin, line.EndIncludingNewline, offset, end, options)
}

func (r *Renderer) pushBegin(rl rule, groups []onigregexp.Range, lineBegin int) {
	if len(r.stack) >= maxStackDepth {
		r.logger.Warnf("grammarcore: stack overflow, dropping begin push (captures already emitted)")
		return
	}
	var saved []onigregexp.Range
	if (rl.to.endPattern != nil && rl.to.endPattern.backreferencing) ||
		(rl.to.whilePattern != nil && rl.to.whilePattern.backreferencing) {
		saved = append([]onigregexp.Range(nil), groups...)
	}
	seq := r.seq
	r.seq += 2
	r.stack = append(r.stack, frame{
		state:       rl.to,
		pattern:     rl.pattern,
		beginRegion: saved,
		beginOffset: lineBegin,
		outerBegin:  lineBegin + groups[0].Start,
		outerSeq:    seq,
		innerBegin:  lineBegin + groups[0].End,
		innerSeq:    seq + 1,
	})
}

func (r *Renderer) emitCaptures(line *Line, p *Pattern, groups []onigregexp.Range, lineBegin int) {
	for i, g := range groups {
		if i >= len(p.captureScopes) {
			break
		}
		if !g.Participated() {
			continue
		}
		if p.captureScopes[i] != NoScope {
			addScopeRange(line, p.captureScopes[i], r.allocSeq(), lineBegin+g.Start, lineBegin+g.End)
		} else if p.captureStates[i] != nil {
			r.renderCaptureState(line, p.captureStates[i], lineBegin+g.Start, lineBegin+g.End)
		}
	}
}

func (r *Renderer) renderCaptureState(line *Line, state *State, begin, end int) {
	if len(r.stack) >= maxStackDepth {
		r.logger.Warnf("grammarcore: stack overflow entering capture sub-state")
		return
	}
	depth := len(r.stack)
	r.stack = append(r.stack, frame{state: state})
	r.renderRange(line, begin, end, depth+1)
	r.popTo(depth)
}

func (r *Renderer) allocSeq() int {
	s := r.seq
	r.seq++
	return s
}

func (r *Renderer) popTo(n int) {
	for len(r.stack) > n {
		last := len(r.stack) - 1
		r.stack[last].free()
		r.stack = r.stack[:last]
	}
}
