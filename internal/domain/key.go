package domain

import (
	"slices"
	"strings"
)

// DateLayout is the bucket's date token format, e.g. "2024_04_26".
const DateLayout = "2006_01_02"

// ScanKey identifies one remote scan object. Keys sort lexicographically in
// chronological order; see the package documentation for the encoding.
type ScanKey string

// Basename returns the key's final path element, used to derive frame
// filenames. Most bucket keys have no directory component, in which case the
// key itself is returned.
func (k ScanKey) Basename() string {
	s := string(k)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Chronological is a sequence of scan keys ordered oldest to newest. It is
// the only key ordering that crosses package boundaries; construct one with
// [NewChronological] rather than by casting an unsorted slice.
type Chronological []ScanKey

// NewChronological copies keys and sorts them ascending (oldest first).
func NewChronological(keys []ScanKey) Chronological {
	c := slices.Clone(keys)
	slices.Sort(c)
	return Chronological(c)
}

// TrailingWindow returns the most recent n keys, still ordered oldest to
// newest. When fewer than n keys exist the whole sequence is returned; it
// never pads and never errors on under-count.
func (c Chronological) TrailingWindow(n int) Chronological {
	if n <= 0 {
		return Chronological{}
	}
	if n >= len(c) {
		return c
	}
	return c[len(c)-n:]
}
