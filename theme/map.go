package theme

import (
	"strings"

	"github.com/halvorsen/grammarcore/highlight"
)

// ColorMapping pairs a byte offset with the TokenColor that applies to
// the span starting there, as produced by Theme.MapSpans.
type ColorMapping struct {
	TokenColor
	Offset int
}

// getSplitted resolves name against current, falling back to
// progressively shorter dotted prefixes ("string.quoted.double" ->
// "string.quoted" -> "string") the way a TextMate theme's scope
// selectors are meant to cascade.
func getSplitted(current map[string]TokenColor, name string) (TokenColor, bool) {
	for name != "" {
		s, ok := current[name]
		if ok {
			return s, true
		}
		i := strings.LastIndexByte(name, '.')
		if i == -1 {
			break
		}
		name = name[:i]
	}
	return TokenColor{}, false
}

// resolve walks a scope stack outermost-to-innermost, returning the
// TokenColor of the deepest scope with a match in the theme.
func (t *Theme) resolve(scopes []string) (TokenColor, bool) {
	current := t.Tokens
	var last TokenColor
	found := false

	for _, scope := range scopes {
		c, ok := getSplitted(current, scope)
		if !ok {
			c, ok = getSplitted(t.Tokens, scope)
		}
		if !ok {
			continue
		}
		last = c
		found = true
		current = c.Children
	}

	return last, found
}

// MapSpans colors each highlight.Span's scope stack, falling back to the
// theme's default color when no scope selector matches.
func (t *Theme) MapSpans(spans []highlight.Span) []ColorMapping {
	res := make([]ColorMapping, 0, len(spans))
	for _, sp := range spans {
		c, ok := t.resolve(sp.Scopes)
		if !ok {
			c = t.TokenColor
		}
		res = append(res, ColorMapping{c, sp.Start})
	}
	return res
}
