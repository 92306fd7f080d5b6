package restyle

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import "strings"

// ElementState is a bitset of UI states an element may be in. Style rules
// may depend on any of these bits through pseudo-classes like ':hover'.
type ElementState uint32

// Element state bits.
const (
	StateHover ElementState = 1 << iota
	StateActive
	StateFocus
	StateEnabled
	StateDisabled
	StateChecked
	StateIndeterminate
	StateTarget
	StateFullscreen
	StateVisited
	StateUnvisited
)

// StateVisitedOrUnvisited masks the two visitedness bits. Changes
// intersecting this mask are handled maximally conservative: matching is
// never run against an element's true visitedness.
const StateVisitedOrUnvisited = StateVisited | StateUnvisited

// Intersects checks whether any bit of other is set in s.
func (s ElementState) Intersects(other ElementState) bool {
	return s&other != 0
}

// Contains checks whether every bit of other is set in s.
func (s ElementState) Contains(other ElementState) bool {
	return s&other == other
}

// IsEmpty checks for the empty bitset.
func (s ElementState) IsEmpty() bool {
	return s == 0
}

var stateNames = []struct {
	bit  ElementState
	name string
}{
	{StateHover, "hover"},
	{StateActive, "active"},
	{StateFocus, "focus"},
	{StateEnabled, "enabled"},
	{StateDisabled, "disabled"},
	{StateChecked, "checked"},
	{StateIndeterminate, "indeterminate"},
	{StateTarget, "target"},
	{StateFullscreen, "fullscreen"},
	{StateVisited, "visited"},
	{StateUnvisited, "unvisited"},
}

func (s ElementState) String() string {
	if s == 0 {
		return "{}"
	}
	var names []string
	for _, sn := range stateNames {
		if s.Intersects(sn.bit) {
			names = append(names, sn.name)
		}
	}
	return "{" + strings.Join(names, "|") + "}"
}

// StateForPseudoClass maps a pseudo-class name (without the leading colon)
// to its state bit. Returns 0 for names which are not state-dependent.
func StateForPseudoClass(name string) ElementState {
	switch name {
	case "hover":
		return StateHover
	case "active":
		return StateActive
	case "focus":
		return StateFocus
	case "enabled":
		return StateEnabled
	case "disabled":
		return StateDisabled
	case "checked":
		return StateChecked
	case "indeterminate":
		return StateIndeterminate
	case "target":
		return StateTarget
	case "fullscreen":
		return StateFullscreen
	case "visited":
		return StateVisited
	case "link":
		return StateUnvisited
	}
	return 0
}
