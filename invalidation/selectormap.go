package invalidation

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"github.com/npillmayer/restyle"
	"github.com/npillmayer/restyle/selector"
)

// SelectorMap buckets entries by the most selective simple selector of the
// compound they belong to, with selectivity ordered id > class > local
// name. A lookup for a concrete element then only touches the buckets the
// element can possibly fall into, plus the unkeyed rest.
//
// Bucket keys are ASCII-lowercased; a bucket hit is a candidate, not a
// match, and callers re-match the full selector anyway.
type SelectorMap[E any] struct {
	ids        map[restyle.Atom][]E
	classes    map[restyle.Atom][]E
	localNames map[restyle.Atom][]E
	other      []E
	count      int
}

// NewSelectorMap creates an empty selector map.
func NewSelectorMap[E any]() *SelectorMap[E] {
	return &SelectorMap[E]{
		ids:        make(map[restyle.Atom][]E),
		classes:    make(map[restyle.Atom][]E),
		localNames: make(map[restyle.Atom][]E),
	}
}

// Len returns the number of entries.
func (sm *SelectorMap[E]) Len() int {
	return sm.count
}

// Insert stores an entry under the bucket of the given compound.
func (sm *SelectorMap[E]) Insert(entry E, seq selector.Sequence) {
	sm.count++
	var class, localName restyle.Atom
	for _, c := range seq.Components {
		switch c.Kind {
		case selector.KindID:
			key := c.Name.Lower()
			sm.ids[key] = append(sm.ids[key], entry)
			return
		case selector.KindClass:
			if class.IsNull() {
				class = c.Name.Lower()
			}
		case selector.KindLocalName:
			if localName.IsNull() {
				localName = c.LowerName
			}
		}
	}
	if !class.IsNull() {
		sm.classes[class] = append(sm.classes[class], entry)
		return
	}
	if !localName.IsNull() {
		sm.localNames[localName] = append(sm.localNames[localName], entry)
		return
	}
	sm.other = append(sm.other, entry)
}

// Lookup calls f for every entry whose bucket the element falls into.
// additionalID and additionalClasses extend the element's identity with
// pre-mutation values, so dependencies keyed by a removed id or class are
// found as well. Iteration stops when f returns false; Lookup reports
// whether it ran to completion.
func (sm *SelectorMap[E]) Lookup(el selector.Element,
	additionalID restyle.Atom, additionalClasses []restyle.Atom,
	f func(entry E) bool) bool {
	//
	for _, e := range sm.other {
		if !f(e) {
			return false
		}
	}
	if id := el.ID(); !id.IsNull() {
		if !sm.each(sm.ids[id.Lower()], f) {
			return false
		}
	}
	if !additionalID.IsNull() {
		if !sm.each(sm.ids[additionalID.Lower()], f) {
			return false
		}
	}
	complete := true
	el.EachClass(func(class restyle.Atom) {
		if complete && !sm.each(sm.classes[class.Lower()], f) {
			complete = false
		}
	})
	if !complete {
		return false
	}
	for _, class := range additionalClasses {
		if !sm.each(sm.classes[class.Lower()], f) {
			return false
		}
	}
	return sm.each(sm.localNames[el.LocalName().Lower()], f)
}

func (sm *SelectorMap[E]) each(entries []E, f func(E) bool) bool {
	for _, e := range entries {
		if !f(e) {
			return false
		}
	}
	return true
}
