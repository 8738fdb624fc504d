package grammarcore

// advanceLine finds the next line boundary at or after offset, returning
// the position before the terminator (end) and after it
// (endIncludingNewline). Recognizes \n, \r, and \r\n. If no terminator is
// found before the end of text, both returned values equal len(text).
func advanceLine(text []byte, offset int) (end, endIncludingNewline int) {
	i := offset
	for i < len(text) {
		switch text[i] {
		case '\n':
			return i, i + 1
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				return i, i + 2
			}
			return i, i + 1
		}
		i++
	}
	return i, i
}

// FirstLineMatch reports whether pattern matches at the very start of
// text's first line, including its terminator bytes. Grammar loaders use
// this to select a grammar via a `firstLineMatch` rule.
func FirstLineMatch(text []byte, pattern *Pattern) bool {
	_, firstLineEnd := advanceLine(text, 0)
	matched, _ := pattern.regex.MatchAt(text, 0, firstLineEnd, 0)
	return matched
}
