package grammarcore

import "github.com/halvorsen/grammarcore/onigregexp"

// templateBackreference expands source's `\0`-`\9` backreferences against
// beginRegion — a begin match's saved capture array, whose offsets are
// relative to beginOffset — into literal byte sequences, per spec.md
// §4.3: each captured byte becomes a three-digit octal escape so that
// regex metacharacters and non-ASCII UTF-8 in the captured text are
// matched literally. Returns ok=false if a referenced group did not
// participate in the begin match, or referenced an inconsistent range.
func templateBackreference(source string, beginRegion []onigregexp.Range, beginOffset int, text []byte) (expanded string, ok bool) {
	var out []byte
	for i := 0; i < len(source); i++ {
		c := source[i]
		if c != '\\' || i+1 >= len(source) || source[i+1] < '0' || source[i+1] > '9' {
			out = append(out, c)
			continue
		}
		which := int(source[i+1] - '0')
		i++
		if which >= len(beginRegion) {
			return "", false
		}
		g := beginRegion[which]
		if !g.Participated() || g.End < g.Start {
			return "", false
		}
		for j := beginOffset + g.Start; j < beginOffset+g.End; j++ {
			b := text[j]
			out = append(out, '\\', '0'+((b>>6)&7), '0'+((b>>3)&7), '0'+(b&7))
		}
	}
	return string(out), true
}
