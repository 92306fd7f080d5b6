package styledtree

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"strings"

	"github.com/npillmayer/restyle"
	"golang.org/x/net/html"
)

// Snapshot captures an element's id, classes, attributes and UI state as
// they were immediately before the current mutation batch. The DOM layer
// creates a snapshot when an element is first touched in a batch and
// destroys it once the batch's invalidation pass completes.
//
// A snapshot additionally records which facets actually changed, so the
// invalidation collector can bail out early and diff only what moved.
type Snapshot struct {
	attrs []html.Attribute
	state restyle.ElementState

	attrsChanged     bool
	classChanged     bool
	idChanged        bool
	otherAttrChanged bool
	stateChanged     bool
}

// NewSnapshot captures the current attributes and state of an element.
// Call it before mutating the element.
func NewSnapshot(el *StyNode) *Snapshot {
	snap := &Snapshot{state: el.State()}
	if h := el.HTMLNode(); h != nil {
		snap.attrs = append(snap.attrs, h.Attr...)
	}
	return snap
}

// NoteAttributeChange records that the attribute with the given
// (lowercase) name is about to change.
func (snap *Snapshot) NoteAttributeChange(name restyle.Atom) {
	snap.attrsChanged = true
	switch name {
	case "class":
		snap.classChanged = true
	case "id":
		snap.idChanged = true
	default:
		snap.otherAttrChanged = true
	}
}

// NoteStateChange records that a UI state bit is about to change.
func (snap *Snapshot) NoteStateChange() {
	snap.stateChanged = true
}

// AttrsChanged reports whether any attribute changed in this batch.
func (snap *Snapshot) AttrsChanged() bool { return snap.attrsChanged }

// ClassChanged reports whether the class attribute changed.
func (snap *Snapshot) ClassChanged() bool { return snap.classChanged }

// IDChanged reports whether the id attribute changed.
func (snap *Snapshot) IDChanged() bool { return snap.idChanged }

// OtherAttrChanged reports whether an attribute other than class/id
// changed.
func (snap *Snapshot) OtherAttrChanged() bool { return snap.otherAttrChanged }

// StateChanged reports whether a UI state bit changed.
func (snap *Snapshot) StateChanged() bool { return snap.stateChanged }

// AttrValue returns a captured attribute's value.
func (snap *Snapshot) AttrValue(name restyle.Atom) (string, bool) {
	for _, a := range snap.attrs {
		if a.Namespace == "" && restyle.Atom(a.Key) == name {
			return a.Val, true
		}
	}
	return "", false
}

// ID returns the captured id, or the null atom.
func (snap *Snapshot) ID() restyle.Atom {
	v, ok := snap.AttrValue("id")
	if !ok {
		return restyle.NullAtom
	}
	return restyle.Atom(v)
}

// EachClass calls f for every captured class.
func (snap *Snapshot) EachClass(f func(class restyle.Atom)) {
	v, ok := snap.AttrValue("class")
	if !ok {
		return
	}
	for _, c := range strings.Fields(v) {
		f(restyle.Atom(c))
	}
}

// HasClass checks for a captured class under the given case sensitivity.
func (snap *Snapshot) HasClass(class restyle.Atom, cs restyle.CaseSensitivity) bool {
	found := false
	snap.EachClass(func(c restyle.Atom) {
		if c.Eq(class, cs) {
			found = true
		}
	})
	return found
}

// State returns the captured UI state bits.
func (snap *Snapshot) State() restyle.ElementState {
	return snap.state
}

// --- Snapshot map ----------------------------------------------------------

// SnapshotMap holds the snapshots of one mutation batch. It is frozen for
// the generation being processed: no mutation may occur concurrently with
// an in-flight invalidation pass.
type SnapshotMap struct {
	snapshots map[*StyNode]*Snapshot
}

// NewSnapshotMap creates an empty snapshot map.
func NewSnapshotMap() *SnapshotMap {
	return &SnapshotMap{snapshots: make(map[*StyNode]*Snapshot)}
}

// Snapshot returns the snapshot for an element, creating it on first
// touch. Pseudo-element boxes share their originating element's snapshot.
func (m *SnapshotMap) Snapshot(el *StyNode) *Snapshot {
	el = el.PseudoElementOriginatingElement()
	if snap, ok := m.snapshots[el]; ok {
		return snap
	}
	snap := NewSnapshot(el)
	m.snapshots[el] = snap
	tracer().Debugf("snapshot taken for <%s id=%q>", el.LocalName(), el.ID())
	return snap
}

// Get returns the snapshot for an element, or nil.
func (m *SnapshotMap) Get(el *StyNode) *Snapshot {
	if m == nil {
		return nil
	}
	return m.snapshots[el.PseudoElementOriginatingElement()]
}

// Has checks whether an element has a snapshot.
func (m *SnapshotMap) Has(el *StyNode) bool {
	return m.Get(el) != nil
}

// Len returns the number of snapshots.
func (m *SnapshotMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.snapshots)
}

// Clear destroys all snapshots; called when a mutation batch's
// invalidation pass completes.
func (m *SnapshotMap) Clear() {
	for k := range m.snapshots {
		delete(m.snapshots, k)
	}
}
