package grammarcore

// ruleKind tags a rule in a State's rule list.
type ruleKind int

const (
	ruleMatch ruleKind = iota
	ruleBegin
)

// rule is one entry in a State's regset, in add order (add order is the
// regset's tie-break order on same-position matches).
type rule struct {
	kind    ruleKind
	pattern *Pattern
	to      *State // only for ruleBegin
}

// State is a node in the pushdown automaton: an ordered set of match/begin
// rules searchable as a single regset, plus an optional end or while
// anchor.
type State struct {
	rules []rule

	endPattern          *Pattern
	whilePattern        *Pattern
	applyEndPatternLast bool
}

// NewState returns an empty State with no rules, end, or while pattern.
func NewState() *State {
	return &State{}
}

// AddMatch appends a MATCH rule: on a win, its captures are emitted but the
// stack is unchanged.
func (s *State) AddMatch(pattern *Pattern) {
	s.rules = append(s.rules, rule{kind: ruleMatch, pattern: pattern})
}

// AddBegin appends a BEGIN rule: on a win, its captures are emitted and a
// new frame targeting to is pushed.
func (s *State) AddBegin(to *State, pattern *Pattern) {
	s.rules = append(s.rules, rule{kind: ruleBegin, pattern: pattern, to: to})
}

// SetEnd installs the end anchor. When applyLast is true and an end match
// and a regular rule match start at the same offset, the regular rule wins
// (the end pattern is applied last); otherwise the end match wins.
func (s *State) SetEnd(pattern *Pattern, applyLast bool) {
	s.endPattern = pattern
	s.applyEndPatternLast = applyLast
}

// SetWhile installs the while anchor verified at the start of every line
// after the one the begin rule fired on.
func (s *State) SetWhile(pattern *Pattern) {
	s.whilePattern = pattern
}

// IncludeRulesFrom appends a copy of other's current rules to s, in order.
// It lets a grammar loader splice a shared (possibly self-referential)
// rule set — such as a repository entry or the whole grammar via `$self`
// — into several states without the states aliasing each other's backing
// slice. Must be called after other's own rules are finalized.
func (s *State) IncludeRulesFrom(other *State) {
	s.rules = append(s.rules, other.rules...)
}
