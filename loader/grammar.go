// Package loader compiles TextMate-style grammar files (JSON or plist)
// into grammarcore.State/Pattern graphs, resolving include/$self/source.*
// references and interning scope names through a ScopeRegistry.
package loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/halvorsen/grammarcore"
)

var ErrScopeName = errors.New("loader: unexpected scopeName")

// GrammarExtension is the file extension CompileGrammar strips from a
// grammar's file name before checking it against the grammar's scopeName.
var GrammarExtension = ".tmLanguage.json"

// GrammarJSON mirrors the (subset of) TextMate JSON/plist grammar format
// on disk. It is decoded as-is and later compiled into a Grammar.
type GrammarJSON struct {
	ScopeName    string              `json:"scopeName" plist:"scopeName"`
	Name         string              `json:"name" plist:"name"`
	FileTypes    []string            `json:"fileTypes" plist:"fileTypes"`
	FoldingStart string              `json:"foldingStartMarker" plist:"foldingStartMarker"`
	FoldingEnd   string              `json:"foldingStopMarker" plist:"foldingStopMarker"`
	FirstLine    string              `json:"firstLineMatch" plist:"firstLineMatch"`
	Repository   map[string]RuleJSON `json:"repository" plist:"repository"`
	Patterns     []RuleJSON          `json:"patterns" plist:"patterns"`
}

// RuleJSON is a raw grammar rule as found in the on-disk grammar. Capture
// groups are addressed by string indices ("0", "1", ... or a named group).
type RuleJSON struct {
	Name                string              `json:"name" plist:"name"`
	ContentName         string              `json:"contentName" plist:"contentName"`
	Match               string              `json:"match" plist:"match"`
	Begin               string              `json:"begin" plist:"begin"`
	End                 string              `json:"end" plist:"end"`
	While               string              `json:"while" plist:"while"`
	ApplyEndPatternLast bool                `json:"applyEndPatternLast" plist:"applyEndPatternLast"`
	Patterns            []RuleJSON          `json:"patterns" plist:"patterns"`
	Captures            map[string]RuleJSON `json:"captures" plist:"captures"`
	BeginCaptures       map[string]RuleJSON `json:"beginCaptures" plist:"beginCaptures"`
	EndCaptures         map[string]RuleJSON `json:"endCaptures" plist:"endCaptures"`
	WhileCaptures       map[string]RuleJSON `json:"whileCaptures" plist:"whileCaptures"`
	Include             string              `json:"include" plist:"include"`
}

// Grammar is a compiled grammar: a root state plus enough metadata to
// select it by file type or file content, and the directory it was
// loaded from.
type Grammar struct {
	Directory    string
	ScopeName    string
	Name         string
	FileTypes    []string
	FoldingStart *grammarcore.Pattern
	FoldingEnd   *grammarcore.Pattern
	FirstLine    *grammarcore.Pattern
	Root         *grammarcore.State
}

// CompileGrammar compiles a decoded GrammarJSON into an executable
// Grammar. l resolves this grammar's own `source.*` includes (and may be
// nil if the grammar has none); registry interns every scope name the
// grammar declares. `source.*` includes are resolved by scope name through
// l. dirname is recorded as Grammar.Directory ("." when empty); filename,
// when non-empty, strictly validates j.ScopeName against "source.<basename>".
func CompileGrammar(l *Loader, registry *ScopeRegistry, j GrammarJSON, dirname, filename string) (*Grammar, error) {
	if filename != "" {
		filesource := strings.TrimSuffix(baseName(filename), GrammarExtension)
		jsonsource, _ := strings.CutPrefix(j.ScopeName, "source.")
		if jsonsource != filesource {
			return nil, fmt.Errorf("%w: expected 'source.%s', got '%s'", ErrScopeName, filesource, j.ScopeName)
		}
	}
	if dirname == "" {
		dirname = "."
	}

	g := &Grammar{
		Directory: dirname,
		ScopeName: j.ScopeName,
		Name:      j.Name,
		FileTypes: j.FileTypes,
		Root:      grammarcore.NewState(),
	}

	var err error
	if g.FoldingStart, err = compileOptionalPattern(j.FoldingStart); err != nil {
		return nil, err
	}
	if g.FoldingEnd, err = compileOptionalPattern(j.FoldingEnd); err != nil {
		return nil, err
	}
	if g.FirstLine, err = compileOptionalPattern(j.FirstLine); err != nil {
		return nil, err
	}

	c := &compiler{loader: l, registry: registry, root: g.Root, repoStates: make(map[string]*grammarcore.State, len(j.Repository))}
	for name := range j.Repository {
		c.repoStates[name] = grammarcore.NewState()
	}
	for name, rj := range j.Repository {
		if err := c.compileOne(c.repoStates[name], rj); err != nil {
			return nil, fmt.Errorf("repository %q: %w", name, err)
		}
	}
	if err := c.compilePatternList(g.Root, j.Patterns); err != nil {
		return nil, err
	}
	c.resolvePending()

	return g, nil
}

func compileOptionalPattern(regex string) (*grammarcore.Pattern, error) {
	if regex == "" {
		return nil, nil
	}
	return grammarcore.NewPattern(regex)
}

func baseName(p string) string {
	if i := strings.LastIndexAny(p, "/\\"); i >= 0 {
		return p[i+1:]
	}
	return p
}
