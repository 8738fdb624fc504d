package loader

import (
	"fmt"
	"strings"

	"github.com/halvorsen/grammarcore"
)

// compiler holds the state needed across one CompileGrammar call: the
// scope registry, the cross-grammar loader for `source.*` includes, the
// pre-allocated repository states (so `#name` and forward references
// resolve before the referenced entry is itself compiled), and the
// include edges discovered along the way.
type compiler struct {
	loader     *Loader
	registry   *ScopeRegistry
	root       *grammarcore.State
	repoStates map[string]*grammarcore.State

	pending []pendingInclude
}

// pendingInclude records that target still needs source's rules spliced
// in. Resolution is deferred to the end of CompileGrammar so that `$self`
// and mutually-referencing repository entries see each other's fully
// compiled rule sets regardless of compile order.
type pendingInclude struct {
	target, source *grammarcore.State
}

func (c *compiler) compilePatternList(target *grammarcore.State, list []RuleJSON) error {
	for _, rj := range list {
		if err := c.compileOne(target, rj); err != nil {
			return err
		}
	}
	return nil
}

// compileOne compiles a single rule, appending whatever it contributes
// (a match rule, a begin rule, an inlined container's rules, or a
// deferred include edge) onto target.
func (c *compiler) compileOne(target *grammarcore.State, rj RuleJSON) error {
	switch {
	case rj.Include != "":
		return c.compileInclude(target, rj.Include)

	case rj.Match != "":
		p, err := grammarcore.NewPattern(rj.Match)
		if err != nil {
			return fmt.Errorf("match %q: %w", rj.Match, err)
		}
		if rj.Name != "" {
			p.SetCaptureScope("0", c.registry.Intern(rj.Name))
		}
		if err := c.applyCaptures(p, rj.Captures); err != nil {
			return err
		}
		target.AddMatch(p)
		return nil

	case rj.Begin != "" && (rj.End != "" || rj.While != ""):
		begin, err := grammarcore.NewPattern(rj.Begin)
		if err != nil {
			return fmt.Errorf("begin %q: %w", rj.Begin, err)
		}
		if rj.Name != "" {
			begin.SetOuterScope(c.registry.Intern(rj.Name))
		}
		if rj.ContentName != "" {
			begin.SetInnerScope(c.registry.Intern(rj.ContentName))
		}
		if err := c.applyCaptures(begin, rj.BeginCaptures); err != nil {
			return err
		}

		sub := grammarcore.NewState()
		if rj.End != "" {
			end, err := grammarcore.NewBackreferencingPattern(rj.End)
			if err != nil {
				return fmt.Errorf("end %q: %w", rj.End, err)
			}
			if err := c.applyCaptures(end, rj.EndCaptures); err != nil {
				return err
			}
			sub.SetEnd(end, rj.ApplyEndPatternLast)
		} else {
			while, err := grammarcore.NewBackreferencingPattern(rj.While)
			if err != nil {
				return fmt.Errorf("while %q: %w", rj.While, err)
			}
			if err := c.applyCaptures(while, rj.WhileCaptures); err != nil {
				return err
			}
			sub.SetWhile(while)
		}
		if err := c.compilePatternList(sub, rj.Patterns); err != nil {
			return err
		}
		target.AddBegin(sub, begin)
		return nil

	case rj.Begin != "" || rj.End != "" || rj.While != "":
		return fmt.Errorf("rule has begin/end/while but not a complete pair")

	default:
		// A plain container: its patterns splice directly into target.
		// This recurses through literal JSON nesting only (not through a
		// named reference), so it always terminates.
		return c.compilePatternList(target, rj.Patterns)
	}
}

func (c *compiler) compileInclude(target *grammarcore.State, include string) error {
	switch {
	case include == "$self":
		c.pending = append(c.pending, pendingInclude{target, c.root})
		return nil
	case strings.HasPrefix(include, "#"):
		name := include[1:]
		src, ok := c.repoStates[name]
		if !ok {
			return fmt.Errorf("include %q: no such repository entry", include)
		}
		c.pending = append(c.pending, pendingInclude{target, src})
		return nil
	case strings.HasPrefix(include, "source."):
		if c.loader == nil {
			return fmt.Errorf("include %q: no loader available to resolve cross-grammar includes", include)
		}
		other, err := c.loader.FromScope(include)
		if err != nil {
			return fmt.Errorf("include %q: %w", include, err)
		}
		c.pending = append(c.pending, pendingInclude{target, other.Root})
		return nil
	default:
		return fmt.Errorf("include %q: unrecognized form", include)
	}
}

// resolvePending splices every deferred include edge exactly once, in an
// order that respects chains of deferred edges (a repository entry that
// itself includes another deferred entry): each distinct target state is
// resolved depth-first, with a visiting set to tolerate (by simply not
// re-entering) a genuine container-only reference cycle, which no flat
// regset could represent anyway.
func (c *compiler) resolvePending() {
	bySource := make(map[*grammarcore.State][]*grammarcore.State, len(c.pending))
	for _, p := range c.pending {
		bySource[p.target] = append(bySource[p.target], p.source)
	}

	resolved := make(map[*grammarcore.State]bool, len(bySource))
	visiting := make(map[*grammarcore.State]bool, len(bySource))
	var resolve func(s *grammarcore.State)
	resolve = func(s *grammarcore.State) {
		if resolved[s] || visiting[s] {
			return
		}
		visiting[s] = true
		for _, src := range bySource[s] {
			resolve(src)
			s.IncludeRulesFrom(src)
		}
		visiting[s] = false
		resolved[s] = true
	}
	for s := range bySource {
		resolve(s)
	}
}

// applyCaptures wires a captures/beginCaptures/endCaptures/whileCaptures
// map onto p: each entry either names a scope (SetCaptureScope) or, when
// it carries its own nested patterns, recurses into a fresh sub-state
// (SetCaptureState), mirroring how a capture group can itself contain a
// mini-grammar in TextMate's format.
func (c *compiler) applyCaptures(p *grammarcore.Pattern, captures map[string]RuleJSON) error {
	for num, rj := range captures {
		if rj.Name != "" {
			p.SetCaptureScope(num, c.registry.Intern(rj.Name))
		}
		if len(rj.Patterns) > 0 {
			sub := grammarcore.NewState()
			if err := c.compilePatternList(sub, rj.Patterns); err != nil {
				return err
			}
			p.SetCaptureState(num, sub)
		}
	}
	return nil
}
