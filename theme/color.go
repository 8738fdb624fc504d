package theme

import (
	"fmt"
	"image/color"
)

// parseColor parses a CSS-style hex color ("#rgb", "#rrggbb", or
// "#rrggbbaa") as used by TextMate/VS Code theme JSON. No example
// dependency in the corpus covers hex color parsing, so this stays on
// fmt rather than reaching for a third-party color package.
func parseColor(s string) (color.Color, error) {
	var r, g, b, a uint8
	a = 0xff
	switch len(s) {
	case 4: // #rgb
		var rh, gh, bh uint8
		if _, err := fmt.Sscanf(s, "#%1x%1x%1x", &rh, &gh, &bh); err != nil {
			return nil, err
		}
		r, g, b = rh*0x11, gh*0x11, bh*0x11
	case 7: // #rrggbb
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return nil, err
		}
	case 9: // #rrggbbaa
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x%02x", &r, &g, &b, &a); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("theme: unrecognized color %q", s)
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
