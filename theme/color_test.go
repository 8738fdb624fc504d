package theme

import (
	"image/color"
	"testing"
)

func TestParseColorForms(t *testing.T) {
	tests := []struct {
		name                   string
		in                     string
		r, g, b, a uint8
	}{
		{"short", "#0f0", 0, 0xff, 0, 0xff},
		{"long", "#336699", 0x33, 0x66, 0x99, 0xff},
		{"with alpha", "#11223380", 0x11, 0x22, 0x33, 0x80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := parseColor(tt.in)
			if err != nil {
				t.Fatalf("parseColor(%q): %v", tt.in, err)
			}
			nrgba, ok := c.(color.NRGBA)
			if !ok {
				t.Fatalf("parseColor(%q) returned %T, want color.NRGBA", tt.in, c)
			}
			if nrgba.R != tt.r || nrgba.G != tt.g || nrgba.B != tt.b || nrgba.A != tt.a {
				t.Fatalf("parseColor(%q) = %+v, want {%d %d %d %d}", tt.in, nrgba, tt.r, tt.g, tt.b, tt.a)
			}
		})
	}
}

func TestParseColorRejectsGarbage(t *testing.T) {
	if _, err := parseColor("not-a-color"); err == nil {
		t.Fatalf("expected an error for an unrecognized color string")
	}
}
