package restyle

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

// RestyleHint marks the scope of style recomputation an element needs.
// Hints are stored per element and persist until the cascade pass consumes
// and clears them.
type RestyleHint uint8

const (
	// RestyleSelf requests recomputation of the element itself.
	RestyleSelf RestyleHint = 1 << iota
	// RestyleDescendants requests recomputation of every descendant.
	RestyleDescendants
)

// RestyleSubtree requests recomputation of the element and its whole
// subtree.
func RestyleSubtree() RestyleHint {
	return RestyleSelf | RestyleDescendants
}

// Insert adds the bits of other to h.
func (h *RestyleHint) Insert(other RestyleHint) {
	*h |= other
}

// ContainsSelf checks whether the element itself needs a restyle.
func (h RestyleHint) ContainsSelf() bool {
	return h&RestyleSelf != 0
}

// ContainsDescendants checks whether the element's subtree needs a restyle.
func (h RestyleHint) ContainsDescendants() bool {
	return h&RestyleDescendants != 0
}

// IsEmpty checks for the empty hint.
func (h RestyleHint) IsEmpty() bool {
	return h == 0
}

func (h RestyleHint) String() string {
	switch {
	case h.ContainsSelf() && h.ContainsDescendants():
		return "restyle(self|descendants)"
	case h.ContainsSelf():
		return "restyle(self)"
	case h.ContainsDescendants():
		return "restyle(descendants)"
	}
	return "restyle()"
}
