package invalidation

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"github.com/npillmayer/restyle"
	"github.com/npillmayer/restyle/dom/styledtree"
	"github.com/npillmayer/restyle/selector"
)

// ElementWrapper presents a styled-tree element as it was before the
// current mutation batch. Identity reads are redirected to the element's
// snapshot where one exists and records a change; everything else falls
// through to the live element. Traversal yields wrappers again, so a full
// selector match runs entirely against the pre-mutation view.
type ElementWrapper struct {
	el        *styledtree.StyNode
	snapshots *styledtree.SnapshotMap
}

// Wrap creates the pre-mutation view of an element.
func Wrap(el *styledtree.StyNode, snapshots *styledtree.SnapshotMap) *ElementWrapper {
	return &ElementWrapper{el: el, snapshots: snapshots}
}

var _ selector.Element = &ElementWrapper{}

func (w *ElementWrapper) snapshot() *styledtree.Snapshot {
	return w.snapshots.Get(w.el)
}

// attrSnapshot returns the snapshot if it records an attribute change.
func (w *ElementWrapper) attrSnapshot() *styledtree.Snapshot {
	if snap := w.snapshot(); snap != nil && snap.AttrsChanged() {
		return snap
	}
	return nil
}

// LocalName is part of interface selector.Element. Tag names never mutate.
func (w *ElementWrapper) LocalName() restyle.Atom {
	return w.el.LocalName()
}

// ID is part of interface selector.Element.
func (w *ElementWrapper) ID() restyle.Atom {
	if snap := w.attrSnapshot(); snap != nil {
		return snap.ID()
	}
	return w.el.ID()
}

// HasClass is part of interface selector.Element.
func (w *ElementWrapper) HasClass(class restyle.Atom, cs restyle.CaseSensitivity) bool {
	if snap := w.attrSnapshot(); snap != nil {
		return snap.HasClass(class, cs)
	}
	return w.el.HasClass(class, cs)
}

// EachClass is part of interface selector.Element.
func (w *ElementWrapper) EachClass(f func(class restyle.Atom)) {
	if snap := w.attrSnapshot(); snap != nil {
		snap.EachClass(f)
		return
	}
	w.el.EachClass(f)
}

// AttrValue is part of interface selector.Element.
func (w *ElementWrapper) AttrValue(name restyle.Atom) (string, bool) {
	if snap := w.attrSnapshot(); snap != nil {
		return snap.AttrValue(name)
	}
	return w.el.AttrValue(name)
}

// State is part of interface selector.Element.
func (w *ElementWrapper) State() restyle.ElementState {
	if snap := w.snapshot(); snap != nil && snap.StateChanged() {
		return snap.State()
	}
	return w.el.State()
}

// IsLink is part of interface selector.Element. Linkness derives from the
// href attribute, so the captured attributes decide.
func (w *ElementWrapper) IsLink() bool {
	snap := w.attrSnapshot()
	if snap == nil {
		return w.el.IsLink()
	}
	name := w.el.LocalName()
	if name != "a" && name != "area" {
		return false
	}
	_, ok := snap.AttrValue("href")
	return ok
}

// IsRoot is part of interface selector.Element.
func (w *ElementWrapper) IsRoot() bool {
	return w.el.IsRoot()
}

// ImplementedPseudoElement is part of interface selector.Element.
func (w *ElementWrapper) ImplementedPseudoElement() restyle.Atom {
	return w.el.ImplementedPseudoElement()
}

// ParentElement is part of interface selector.Element.
func (w *ElementWrapper) ParentElement() selector.Element {
	if p := w.el.TraversalParent(); p != nil {
		return Wrap(p, w.snapshots)
	}
	return nil
}

// PrevSiblingElement is part of interface selector.Element.
func (w *ElementWrapper) PrevSiblingElement() selector.Element {
	if s, ok := w.el.PrevSiblingElement().(*styledtree.StyNode); ok {
		return Wrap(s, w.snapshots)
	}
	return nil
}

// NextSiblingElement is part of interface selector.Element.
func (w *ElementWrapper) NextSiblingElement() selector.Element {
	if s, ok := w.el.NextSiblingElement().(*styledtree.StyNode); ok {
		return Wrap(s, w.snapshots)
	}
	return nil
}
