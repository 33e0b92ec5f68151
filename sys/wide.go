package sys

import (
	"unicode/utf16"
)

// ToWide encodes s as UTF-16. Property-name and script entry points expect a
// NUL terminator; length-delimited ones do not.
func ToWide(s string, nulTerminated bool) []uint16 {
	w := utf16.Encode([]rune(s))
	if nulTerminated {
		w = append(w, 0)
	}
	return w
}

// FromWide decodes UTF-16 up to the first NUL, if any.
func FromWide(w []uint16) string {
	for i, c := range w {
		if c == 0 {
			w = w[:i]
			break
		}
	}
	return string(utf16.Decode(w))
}
