package loader

import (
	"testing"

	"github.com/halvorsen/grammarcore"
)

func compileTestGrammar(t *testing.T, j GrammarJSON) (*Grammar, *ScopeRegistry) {
	t.Helper()
	reg := NewScopeRegistry()
	g, err := CompileGrammar(nil, reg, j, "", "")
	if err != nil {
		t.Fatalf("CompileGrammar: %v", err)
	}
	return g, reg
}

func firstEventName(t *testing.T, line *grammarcore.Line, reg *ScopeRegistry) string {
	t.Helper()
	if len(line.Events) == 0 {
		t.Fatalf("expected at least one scope event")
	}
	return reg.Name(line.Events[0].Name)
}

func TestCompileGrammarMatchRule(t *testing.T) {
	g, reg := compileTestGrammar(t, GrammarJSON{
		ScopeName: "source.test",
		Patterns: []RuleJSON{
			{Match: `\d+`, Name: "constant.numeric.test"},
		},
	})

	r := grammarcore.NewRenderer([]byte("x 42 y\n"), g.Root)
	line, ok := r.RenderNextLine()
	if !ok {
		t.Fatalf("expected a line")
	}
	if name := firstEventName(t, line, reg); name != "constant.numeric.test" {
		t.Fatalf("got scope %q, want constant.numeric.test", name)
	}
}

func TestCompileGrammarBeginEndWithCaptures(t *testing.T) {
	g, reg := compileTestGrammar(t, GrammarJSON{
		ScopeName: "source.test",
		Patterns: []RuleJSON{
			{
				Begin: `"`, End: `"`,
				Name: "string.quoted.double.test",
				Patterns: []RuleJSON{
					{Match: `\\.`, Name: "constant.character.escape.test"},
				},
			},
		},
	})

	r := grammarcore.NewRenderer([]byte(`a "b\nc" d`+"\n"), g.Root)
	line, ok := r.RenderNextLine()
	if !ok {
		t.Fatalf("expected a line")
	}

	var sawString, sawEscape bool
	for _, ev := range line.Events {
		switch reg.Name(ev.Name) {
		case "string.quoted.double.test":
			sawString = true
		case "constant.character.escape.test":
			sawEscape = true
		}
	}
	if !sawString || !sawEscape {
		t.Fatalf("expected both string and escape scopes, got events %+v", line.Events)
	}
}

func TestCompileGrammarSelfInclude(t *testing.T) {
	// A parenthesized group that recurses into the root pattern list via
	// $self, the classic "balanced parens" grammar shape.
	g, reg := compileTestGrammar(t, GrammarJSON{
		ScopeName: "source.test",
		Patterns: []RuleJSON{
			{Match: `\d+`, Name: "constant.numeric.test"},
			{
				Begin: `\(`, End: `\)`,
				Name:     "meta.group.test",
				Patterns: []RuleJSON{{Include: "$self"}},
			},
		},
	})

	r := grammarcore.NewRenderer([]byte("(1 (2) 3)\n"), g.Root)
	line, ok := r.RenderNextLine()
	if !ok {
		t.Fatalf("expected a line")
	}

	var groups, numbers int
	for _, ev := range line.Events {
		if ev.Kind != grammarcore.ScopeBegin {
			continue
		}
		switch reg.Name(ev.Name) {
		case "meta.group.test":
			groups++
		case "constant.numeric.test":
			numbers++
		}
	}
	if groups != 2 {
		t.Fatalf("expected 2 nested groups via $self, got %d", groups)
	}
	if numbers != 3 {
		t.Fatalf("expected 3 numeric matches recursing through $self, got %d", numbers)
	}
}

func TestCompileGrammarRepositoryInclude(t *testing.T) {
	g, reg := compileTestGrammar(t, GrammarJSON{
		ScopeName: "source.test",
		Repository: map[string]RuleJSON{
			"number": {Match: `\d+`, Name: "constant.numeric.test"},
		},
		Patterns: []RuleJSON{{Include: "#number"}},
	})

	r := grammarcore.NewRenderer([]byte("7\n"), g.Root)
	line, ok := r.RenderNextLine()
	if !ok {
		t.Fatalf("expected a line")
	}
	if name := firstEventName(t, line, reg); name != "constant.numeric.test" {
		t.Fatalf("got scope %q, want constant.numeric.test", name)
	}
}

func TestCompileGrammarScopeNameMismatch(t *testing.T) {
	reg := NewScopeRegistry()
	_, err := CompileGrammar(nil, reg, GrammarJSON{ScopeName: "source.other"}, "", "test.tmLanguage.json")
	if err == nil {
		t.Fatalf("expected a scopeName mismatch error")
	}
}
