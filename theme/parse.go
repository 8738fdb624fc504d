package theme

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"strings"

	"howett.net/plist"
)

type ThemeJSON struct {
	Default TokenColorJSON   `json:"default"`
	Tokens  []TokenColorJSON `json:"tokens"`
}

type TokenColorJSON struct {
	Scope    any `json:"scope"`
	Settings struct {
		Foreground string `json:"foreground"`
		Background string `json:"background"`
		FontStyle  string `json:"fontStyle"`
	} `json:"settings"`
}

type FontStyle int

const (
	Bold FontStyle = 1 << iota
	Italic
	Underline
	Strikethrough
)

func (s FontStyle) Has(has FontStyle) bool {
	return s&has == has
}

type TokenColor struct {
	// uniform images
	Foreground color.Color
	Background color.Color
	Children   map[string]TokenColor
	FontStyle  FontStyle
}

type Theme struct {
	TokenColor
	Tokens map[string]TokenColor
}

// plistTheme mirrors the legacy Sublime/TextMate .tmTheme plist layout,
// which nests scope settings under "settings" rather than at the
// top level the way ThemeJSON does.
type plistTheme struct {
	Settings []struct {
		Scope    string `plist:"scope"`
		Settings struct {
			Foreground string `plist:"foreground"`
			Background string `plist:"background"`
			FontStyle  string `plist:"fontStyle"`
		} `plist:"settings"`
	} `plist:"settings"`
}

// toThemeJSON adapts the plist shape into ThemeJSON so ParseTheme has a
// single entry point regardless of on-disk format. The plist format's
// first, scope-less entry is its default color; everything else becomes
// a regular scoped token color.
func (p plistTheme) toThemeJSON() ThemeJSON {
	var j ThemeJSON
	for i, s := range p.Settings {
		tc := TokenColorJSON{Scope: s.Scope}
		tc.Settings.Foreground = s.Settings.Foreground
		tc.Settings.Background = s.Settings.Background
		tc.Settings.FontStyle = s.Settings.FontStyle
		if i == 0 && s.Scope == "" {
			j.Default = tc
			continue
		}
		j.Tokens = append(j.Tokens, tc)
	}
	return j
}

// ParseThemeBytes parses a theme file of either format, detecting plist
// content by its "<?xml" or "bplist00" preamble and falling back to JSON
// otherwise.
func ParseThemeBytes(data []byte) (*Theme, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("<?xml")) || bytes.HasPrefix(trimmed, []byte("bplist00")) {
		var pt plistTheme
		if _, err := plist.Unmarshal(data, &pt); err != nil {
			return nil, err
		}
		return ParseTheme(pt.toThemeJSON()), nil
	}
	var j ThemeJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	return ParseTheme(j), nil
}

func setName(dest map[string]TokenColor, scope string, col TokenColor) {
	parts := strings.Split(scope, " ")
	current := dest

	for i := len(parts) - 1; i >= 0; i-- {
		part := parts[i]
		c, _ := current[part]
		if i == len(parts)-1 {
			// final part, assign color
			c.Foreground = col.Foreground
			c.Background = col.Background
			c.FontStyle = col.FontStyle
		}
		if c.Children == nil {
			c.Children = make(map[string]TokenColor)
		}
		current[part] = c
		current = c.Children
	}
}

func parseToken(jc TokenColorJSON) (col TokenColor) {
	if jc.Settings.Foreground != "" {
		if c, err := parseColor(jc.Settings.Foreground); err == nil {
			col.Foreground = image.NewUniform(c)
		}
	}
	if jc.Settings.Background != "" {
		if c, err := parseColor(jc.Settings.Background); err == nil {
			col.Background = image.NewUniform(c)
		}
	}
	for field := range strings.FieldsSeq(jc.Settings.FontStyle) {
		switch field {
		case "bold":
			col.FontStyle |= Bold
		case "italic":
			col.FontStyle |= Italic
		case "underline":
			col.FontStyle |= Underline
		case "strikethrough":
			col.FontStyle |= Strikethrough
		}
	}
	return
}

func ParseTheme(j ThemeJSON) *Theme {
	tokens := make(map[string]TokenColor)
	for _, jc := range j.Tokens {
		col := parseToken(jc)
		switch name := jc.Scope.(type) {
		case string:
			setName(tokens, name, col)
		case []any:
			for _, name := range name {
				if nstr, ok := name.(string); ok {
					setName(tokens, nstr, col)
				}
			}
		}
	}

	return &Theme{
		TokenColor: parseToken(j.Default),
		Tokens:     tokens,
	}
}
