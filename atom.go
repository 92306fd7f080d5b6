package restyle

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import "strings"

// Atom is an identity name as it appears in documents and selectors:
// an element's id, a class, a local name, an attribute name. Atoms are
// compared either byte-wise or ASCII-case-insensitively, depending on the
// document's quirks mode.
type Atom string

// NullAtom is the empty atom.
const NullAtom Atom = ""

func (a Atom) String() string {
	return string(a)
}

// IsNull checks whether an atom is the null atom, i.e. the empty string.
func (a Atom) IsNull() bool {
	return a == NullAtom
}

// Lower returns the ASCII-lowercased atom.
func (a Atom) Lower() Atom {
	return Atom(lowerASCII(string(a)))
}

// Eq compares two atoms under a given case sensitivity.
func (a Atom) Eq(other Atom, cs CaseSensitivity) bool {
	if cs == CaseSensitive {
		return a == other
	}
	return eqASCIIFold(string(a), string(other))
}

// CaseSensitivity tells how atoms are to be compared. Class and id
// comparison in quirks-mode documents is ASCII-case-insensitive.
type CaseSensitivity int8

const (
	// CaseSensitive compares byte-wise.
	CaseSensitive CaseSensitivity = iota
	// ASCIICaseInsensitive folds A–Z onto a–z before comparing.
	ASCIICaseInsensitive
)

func (cs CaseSensitivity) String() string {
	if cs == CaseSensitive {
		return "case-sensitive"
	}
	return "ascii-case-insensitive"
}

// QuirksMode is a document compatibility mode. It decides, among other
// things the cascade cares about, whether class and id comparison is
// case-sensitive during invalidation.
type QuirksMode int8

const (
	// NoQuirks is the standards mode.
	NoQuirks QuirksMode = iota
	// LimitedQuirks is the almost-standards mode.
	LimitedQuirks
	// Quirks is the full quirks mode.
	Quirks
)

func (q QuirksMode) String() string {
	switch q {
	case Quirks:
		return "quirks"
	case LimitedQuirks:
		return "limited-quirks"
	}
	return "no-quirks"
}

// ClassAndIDCaseSensitivity returns the case sensitivity for class and id
// comparison under this quirks mode.
func (q QuirksMode) ClassAndIDCaseSensitivity() CaseSensitivity {
	if q == Quirks {
		return ASCIICaseInsensitive
	}
	return CaseSensitive
}

// --- helpers ---------------------------------------------------------------

func lowerASCII(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

func eqASCIIFold(s, t string) bool {
	if len(s) != len(t) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c, d := s[i], t[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if d >= 'A' && d <= 'Z' {
			d += 'a' - 'A'
		}
		if c != d {
			return false
		}
	}
	return true
}
