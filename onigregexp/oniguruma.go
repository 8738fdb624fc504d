// Package onigregexp is a thin cgo binding over Oniguruma, adapted from a
// syntax-highlighter's in-tree binding to additionally expose named-group
// resolution and a non-participation sentinel that callers need to detect a
// capture group that did not take part in a match (as opposed to one that
// matched an empty range at position zero).
package onigregexp

// #cgo pkg-config: oniguruma
// #include <oniguruma.h>
// #include <stdlib.h>
//
// int grammarcore_error_to_str(UChar *buf, int code, OnigErrorInfo *info) {
//     return info != NULL ? onig_error_code_to_str(buf, code, info) : onig_error_code_to_str(buf, code);
// }
import "C"

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"
)

var ErrSyntax = errors.New("onigregexp: syntax error")

var initOnce sync.Once

// Initialize performs the one-time Oniguruma setup. Safe to call more than
// once; only the first call has an effect.
func Initialize() {
	initOnce.Do(func() {
		C.onig_initialize(&C.OnigEncodingType{}, 0)
	})
}

// Option mirrors a subset of Oniguruma's search-time option bitmask.
type Option C.OnigOptionType

const (
	OptionNone              Option = C.ONIG_OPTION_NONE
	OptionNotBeginPosition  Option = C.ONIG_OPTION_NOT_BEGIN_POSITION
	OptionNotBeginString    Option = C.ONIG_OPTION_NOT_BEGIN_STRING
	OptionNotEndString      Option = C.ONIG_OPTION_NOT_END_STRING
)

// Range is a half-open byte range [Start, End). NoMatch is the sentinel for
// a capture group that did not participate in a match; it is distinct from
// any valid (possibly empty) range, including Range{0, 0}.
type Range struct {
	Start, End int
}

// NoMatch is the value of a non-participating capture group.
var NoMatch = Range{-1, -1}

// Participated reports whether this capture group matched something (even
// an empty string) as opposed to not being entered at all.
func (r Range) Participated() bool {
	return r.Start >= 0 && r.End >= 0
}

func (r Range) Len() int {
	if !r.Participated() {
		return 0
	}
	return r.End - r.Start
}

// Regexp is a single compiled Oniguruma pattern.
type Regexp struct {
	re      C.OnigRegex
	source  string
	ncaptures int
}

// Compile compiles pattern under a UTF-8, capture-group-enabled
// configuration. The returned error, when non-nil, carries Oniguruma's
// message alongside the offending pattern text.
func Compile(pattern string) (*Regexp, error) {
	Initialize()

	if len(pattern) == 0 {
		return nil, fmt.Errorf("%w: empty pattern", ErrSyntax)
	}

	raw := []byte(pattern)
	start := (*C.OnigUChar)(unsafe.Pointer(&raw[0]))
	end := (*C.OnigUChar)(unsafe.Pointer(uintptr(unsafe.Pointer(&raw[0])) + uintptr(len(raw))))

	var r Regexp
	r.source = pattern

	var errInfo C.OnigErrorInfo
	ret := C.onig_new(&r.re, start, end, C.ONIG_OPTION_CAPTURE_GROUP,
		C.ONIG_ENCODING_UTF8, C.ONIG_SYNTAX_ONIGURUMA, &errInfo)
	if ret != C.ONIG_NORMAL {
		var buf [C.ONIG_MAX_ERROR_MESSAGE_LEN]C.char
		C.grammarcore_error_to_str((*C.OnigUChar)(unsafe.Pointer(&buf[0])), ret, &errInfo)
		return nil, fmt.Errorf("%w: %s (pattern %q)", ErrSyntax, C.GoString(&buf[0]), pattern)
	}
	r.ncaptures = int(C.onig_number_of_captures(r.re)) + 1
	return &r, nil
}

// Free releases the underlying Oniguruma regex. The Regexp must not be used
// afterwards.
func (r *Regexp) Free() {
	if r == nil || r.re == nil {
		return
	}
	C.onig_free(r.re)
	r.re = nil
}

func (r *Regexp) String() string { return r.source }

// NumCaptures returns the number of capture groups including group 0 (the
// whole match).
func (r *Regexp) NumCaptures() int { return r.ncaptures }

// SubexpIndices resolves a named group to every numbered group sharing that
// name. Returns nil if the name is unknown.
func (r *Regexp) SubexpIndices(name string) []int {
	raw := []byte(name)
	if len(raw) == 0 {
		return nil
	}
	start := (*C.OnigUChar)(unsafe.Pointer(&raw[0]))
	end := (*C.OnigUChar)(unsafe.Pointer(uintptr(unsafe.Pointer(&raw[0])) + uintptr(len(raw))))

	var groupList *C.int
	n := C.onig_name_to_group_numbers(r.re, start, end, &groupList)
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	slice := unsafe.Slice(groupList, n)
	for i, v := range slice {
		out[i] = int(v)
	}
	return out
}

// MatchAt reports whether r matches exactly at position at within
// text[subjectStart:subjectEnd] — an anchored probe, not a scan, used by
// FirstLineMatch.
func (r *Regexp) MatchAt(text []byte, subjectStart, subjectEnd, at int) (bool, error) {
	if len(text) == 0 || subjectStart >= subjectEnd {
		return false, nil
	}
	base := unsafe.Pointer(&text[0])
	str := (*C.OnigUChar)(unsafe.Pointer(uintptr(base) + uintptr(subjectStart)))
	strEnd := (*C.OnigUChar)(unsafe.Pointer(uintptr(base) + uintptr(subjectEnd)))
	atPtr := (*C.OnigUChar)(unsafe.Pointer(uintptr(base) + uintptr(at)))

	ret := C.onig_match(r.re, str, strEnd, atPtr, nil, C.ONIG_OPTION_NONE)
	if ret == C.ONIG_MISMATCH {
		return false, nil
	}
	if ret < 0 {
		var buf [C.ONIG_MAX_ERROR_MESSAGE_LEN]C.char
		C.grammarcore_error_to_str((*C.OnigUChar)(unsafe.Pointer(&buf[0])), ret, nil)
		return false, fmt.Errorf("%w: %s", ErrSyntax, C.GoString(&buf[0]))
	}
	return true, nil
}

// Search looks for a match of r within text[searchFrom:searchTo], treating
// text[subjectStart:subjectEnd] as the full subject string (so that \G and
// other anchors see the right string boundaries even when the search
// window is a sub-range of it). options is passed straight through to
// Oniguruma (e.g. OptionNotBeginPosition).
//
// Returns (groups, true, nil) on a match — groups[0] is the whole match,
// groups[i] for i>=1 are the capture groups, using NoMatch for groups that
// did not participate. Returns (nil, false, nil) on no match.
func (r *Regexp) Search(text []byte, subjectStart, subjectEnd, searchFrom, searchTo int, options Option) ([]Range, bool, error) {
	if len(text) == 0 || subjectStart >= subjectEnd {
		return nil, false, nil
	}
	base := unsafe.Pointer(&text[0])
	str := (*C.OnigUChar)(unsafe.Pointer(uintptr(base) + uintptr(subjectStart)))
	strEnd := (*C.OnigUChar)(unsafe.Pointer(uintptr(base) + uintptr(subjectEnd)))
	searchStart := (*C.OnigUChar)(unsafe.Pointer(uintptr(base) + uintptr(searchFrom)))
	searchRange := (*C.OnigUChar)(unsafe.Pointer(uintptr(base) + uintptr(searchTo)))

	region := C.onig_region_new()
	defer C.onig_region_free(region, 1)

	ret := C.onig_search(r.re, str, strEnd, searchStart, searchRange, region, C.OnigOptionType(options))
	if ret == C.ONIG_MISMATCH {
		return nil, false, nil
	}
	if ret < 0 {
		var buf [C.ONIG_MAX_ERROR_MESSAGE_LEN]C.char
		C.grammarcore_error_to_str((*C.OnigUChar)(unsafe.Pointer(&buf[0])), ret, nil)
		return nil, false, fmt.Errorf("%w: %s", ErrSyntax, C.GoString(&buf[0]))
	}

	n := int(region.num_regs)
	groups := make([]Range, n)
	for i := 0; i < n; i++ {
		beg := *(*C.int)(unsafe.Pointer(uintptr(unsafe.Pointer(region.beg)) + uintptr(i)*unsafe.Sizeof(*region.beg)))
		end := *(*C.int)(unsafe.Pointer(uintptr(unsafe.Pointer(region.end)) + uintptr(i)*unsafe.Sizeof(*region.end)))
		if beg < 0 || end < 0 {
			groups[i] = NoMatch
			continue
		}
		groups[i] = Range{int(beg), int(end)}
	}
	return groups, true, nil
}
