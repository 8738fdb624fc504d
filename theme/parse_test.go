package theme

import "testing"

func TestParseThemeScopeCascade(t *testing.T) {
	j := ThemeJSON{
		Default: TokenColorJSON{Settings: struct {
			Foreground string `json:"foreground"`
			Background string `json:"background"`
			FontStyle  string `json:"fontStyle"`
		}{Foreground: "#ffffff"}},
		Tokens: []TokenColorJSON{
			{Scope: "string", Settings: struct {
				Foreground string `json:"foreground"`
				Background string `json:"background"`
				FontStyle  string `json:"fontStyle"`
			}{Foreground: "#00ff00"}},
			{Scope: "string.quoted.double", Settings: struct {
				Foreground string `json:"foreground"`
				Background string `json:"background"`
				FontStyle  string `json:"fontStyle"`
			}{Foreground: "#0000ff", FontStyle: "bold italic"}},
		},
	}

	th := ParseTheme(j)

	c, ok := th.resolve([]string{"string.quoted.double.test"})
	if !ok {
		t.Fatalf("expected a cascaded match for string.quoted.double.test")
	}
	if c.Foreground == nil {
		t.Fatalf("expected the longest-prefix match (string.quoted.double) to apply")
	}
	r, g, b, _ := c.Foreground.RGBA()
	if r>>8 != 0 || g>>8 != 0 || b>>8 != 0xff {
		t.Fatalf("got color %v, want #0000ff", c.Foreground)
	}
	if !c.FontStyle.Has(Bold) || !c.FontStyle.Has(Italic) {
		t.Fatalf("expected bold and italic font style, got %v", c.FontStyle)
	}
}

func TestParseThemeArrayScope(t *testing.T) {
	j := ThemeJSON{
		Tokens: []TokenColorJSON{
			{Scope: []any{"keyword.control", "keyword.operator"}, Settings: struct {
				Foreground string `json:"foreground"`
				Background string `json:"background"`
				FontStyle  string `json:"fontStyle"`
			}{Foreground: "#ff0000"}},
		},
	}
	th := ParseTheme(j)
	for _, scope := range []string{"keyword.control.test", "keyword.operator.test"} {
		if _, ok := th.resolve([]string{scope}); !ok {
			t.Fatalf("expected %q to resolve via array scope", scope)
		}
	}
}

func TestParseThemeBytesDetectsPlist(t *testing.T) {
	plistDoc := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>settings</key>
	<array>
		<dict>
			<key>settings</key>
			<dict>
				<key>foreground</key>
				<string>#ffffff</string>
			</dict>
		</dict>
		<dict>
			<key>scope</key>
			<string>comment</string>
			<key>settings</key>
			<dict>
				<key>foreground</key>
				<string>#888888</string>
			</dict>
		</dict>
	</array>
</dict>
</plist>`)

	th, err := ParseThemeBytes(plistDoc)
	if err != nil {
		t.Fatalf("ParseThemeBytes: %v", err)
	}
	if th.Foreground == nil {
		t.Fatalf("expected the default foreground to be parsed from the plist")
	}
	if _, ok := th.resolve([]string{"comment.line.test"}); !ok {
		t.Fatalf("expected comment.line.test to cascade to the comment scope entry")
	}
}

func TestParseThemeBytesJSON(t *testing.T) {
	doc := []byte(`{"default":{"settings":{"foreground":"#eeeeee"}},"tokens":[]}`)
	th, err := ParseThemeBytes(doc)
	if err != nil {
		t.Fatalf("ParseThemeBytes: %v", err)
	}
	if th.Foreground == nil {
		t.Fatalf("expected the default foreground to be parsed from the JSON")
	}
}
