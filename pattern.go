package grammarcore

import (
	"strconv"

	"github.com/halvorsen/grammarcore/onigregexp"
)

// Pattern is a compiled regex rule plus the scope/capture metadata needed
// to use it as a match, begin, end, or while rule.
type Pattern struct {
	regex *onigregexp.Regexp

	innerScope ScopeName
	outerScope ScopeName

	// captureScopes[i] / captureStates[i] are indexed by capture group
	// number (0 = whole match) and are each exactly regex.NumCaptures()
	// long. At most one is meaningfully set per index; if both are set,
	// captureScopes wins (see DESIGN.md open question).
	captureScopes []ScopeName
	captureStates []*State

	// backreferencing patterns retain their untemplated source so the
	// renderer can re-expand and recompile them per active begin frame.
	backreferencing bool
	source          string
}

// NewPattern compiles regex and returns a Pattern with no backreferences.
func NewPattern(regex string) (*Pattern, error) {
	re, err := onigregexp.Compile(regex)
	if err != nil {
		return nil, err
	}
	return newPatternFromRegex(re, false, regex), nil
}

// NewBackreferencingPattern compiles regex, which may contain `\0`-`\9`
// backreferences into a begin match's captures. If none are present this
// behaves exactly like NewPattern.
func NewBackreferencingPattern(regex string) (*Pattern, error) {
	templated := []byte(regex)
	hasBackref := false
	for i := 0; i+1 < len(templated); i++ {
		if templated[i] == '\\' && templated[i+1] >= '0' && templated[i+1] <= '9' {
			hasBackref = true
			templated[i+1] = '0'
			i++
		}
	}

	re, err := onigregexp.Compile(string(templated))
	if err != nil {
		return nil, err
	}
	return newPatternFromRegex(re, hasBackref, regex), nil
}

func newPatternFromRegex(re *onigregexp.Regexp, backreferencing bool, source string) *Pattern {
	n := re.NumCaptures()
	p := &Pattern{
		regex:           re,
		captureScopes:   make([]ScopeName, n),
		captureStates:   make([]*State, n),
		backreferencing: backreferencing,
	}
	if backreferencing {
		p.source = source
	}
	return p
}

// SetInnerScope sets the scope emitted over [beginMatch.end, endMatch.start)
// when this pattern is used as a begin rule.
func (p *Pattern) SetInnerScope(scope ScopeName) { p.innerScope = scope }

// SetOuterScope sets the scope emitted over [beginMatch.start, endMatch.end)
// when this pattern is used as a begin rule.
func (p *Pattern) SetOuterScope(scope ScopeName) { p.outerScope = scope }

// SetCaptureScope assigns scope to capture group name, which is either
// decimal digits (a capture index, "0" = whole match) or a named group.
// Out-of-range numeric names are silently ignored.
func (p *Pattern) SetCaptureScope(name string, scope ScopeName) {
	p.forEachCaptureIndex(name, func(i int) { p.captureScopes[i] = scope })
}

// SetCaptureState assigns a sub-State to recurse into for capture group
// name, the same name resolution rules as SetCaptureScope.
func (p *Pattern) SetCaptureState(name string, state *State) {
	p.forEachCaptureIndex(name, func(i int) { p.captureStates[i] = state })
}

func (p *Pattern) forEachCaptureIndex(name string, fn func(int)) {
	if i, err := strconv.Atoi(name); err == nil {
		if i >= 0 && i < len(p.captureScopes) {
			fn(i)
		}
		return
	}
	for _, i := range p.regex.SubexpIndices(name) {
		if i >= 0 && i < len(p.captureScopes) {
			fn(i)
		}
	}
}
