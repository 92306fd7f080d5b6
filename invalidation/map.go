package invalidation

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"

	"github.com/npillmayer/restyle"
	"github.com/npillmayer/restyle/selector"
)

// Dependency records that a selector references a piece of element
// identity or state at one of its compounds. Offset addresses the first
// component of that compound; the compiled selector is shared, never
// copied.
//
// The compound's position relative to the subject determines who is
// affected when the referenced piece changes on an element:
//
//	offset 0                     → the element itself
//	ancestor combinator inward   → the element's descendants
//	sibling combinator inward    → the element's later siblings
type Dependency struct {
	Selector *selector.Selector
	Offset   int
}

// AffectsSelf checks whether the dependency sits at the subject compound.
func (d Dependency) AffectsSelf() bool {
	return d.Offset == 0
}

// combinatorToSubject is the combinator connecting the dependency's
// compound towards the subject.
func (d Dependency) combinatorToSubject() selector.Combinator {
	if d.Offset == 0 {
		return selector.NoCombinator
	}
	comb, ok := d.Selector.CombinatorAt(d.Offset - 1)
	if !ok {
		panic(fmt.Sprintf("dependency offset %d does not start a compound of %q", d.Offset, d.Selector))
	}
	return comb
}

// AffectsDescendants checks whether a change at a matching element can
// change the match result for the element's descendants.
func (d Dependency) AffectsDescendants() bool {
	return d.combinatorToSubject().IsAncestor()
}

// AffectsLaterSiblings checks whether a change at a matching element can
// change the match result for the element's later siblings (and their
// descendants).
func (d Dependency) AffectsLaterSiblings() bool {
	return d.combinatorToSubject().IsSibling()
}

// visitedDependent checks whether the dependency's selector tests link
// visitedness anywhere. Such dependencies get the second, visited-mode
// match probe during scanning.
func (d Dependency) visitedDependent() bool {
	for i := 0; i < d.Selector.Len(); i++ {
		c := d.Selector.At(i)
		if c.Kind == selector.KindState && c.States.Intersects(restyle.StateVisitedOrUnvisited) {
			return true
		}
	}
	return false
}

func (d Dependency) String() string {
	return fmt.Sprintf("%q@%d", d.Selector.String(), d.Offset)
}

// StateDependency is a dependency on UI state bits, carrying the union of
// all state bits its compound tests.
type StateDependency struct {
	Dependency
	States restyle.ElementState
}

// InvalidationMap indexes the selector dependencies of a set of style
// rules by the piece of element identity they reference. Given a concrete
// mutation, the invalidation collector looks up exactly the dependencies
// which can possibly be affected, instead of re-matching every selector.
//
// The map is rebuilt from the rule set it describes and is read-only
// during invalidation.
type InvalidationMap struct {
	// IDs and Classes bucket dependencies on #id and .class components by
	// the (ASCII-lowercased) name.
	IDs     map[restyle.Atom][]Dependency
	Classes map[restyle.Atom][]Dependency

	// StateAffecting holds dependencies on state pseudo-classes, including
	// ':link' and ':visited'.
	StateAffecting *SelectorMap[StateDependency]

	// OtherAttrAffecting holds dependencies on attribute selectors other
	// than [class…] and [id…], and on :lang()/:dir().
	OtherAttrAffecting *SelectorMap[Dependency]

	// HasClassAttrSelectors and HasIDAttrSelectors note the presence of
	// [class…] resp. [id…] attribute selectors anywhere in the rule set.
	// Class and id mutations must consult OtherAttrAffecting when the
	// corresponding flag is set.
	HasClassAttrSelectors bool
	HasIDAttrSelectors    bool

	count int
}

// NewInvalidationMap creates an empty invalidation map.
func NewInvalidationMap() *InvalidationMap {
	return &InvalidationMap{
		IDs:                make(map[restyle.Atom][]Dependency),
		Classes:            make(map[restyle.Atom][]Dependency),
		StateAffecting:     NewSelectorMap[StateDependency](),
		OtherAttrAffecting: NewSelectorMap[Dependency](),
	}
}

// Len returns the number of dependencies registered.
func (m *InvalidationMap) Len() int {
	return m.count
}

// Clear empties the map for a rebuild.
func (m *InvalidationMap) Clear() {
	m.IDs = make(map[restyle.Atom][]Dependency)
	m.Classes = make(map[restyle.Atom][]Dependency)
	m.StateAffecting = NewSelectorMap[StateDependency]()
	m.OtherAttrAffecting = NewSelectorMap[Dependency]()
	m.HasClassAttrSelectors = false
	m.HasIDAttrSelectors = false
	m.count = 0
}

// NoteSelectorList registers the dependencies of a selector list.
func (m *InvalidationMap) NoteSelectorList(list []*selector.Selector) {
	for _, sel := range list {
		m.NoteSelector(sel)
	}
}

// NoteSelector walks a compiled selector and registers a dependency for
// every piece of element identity or state it references, at the offset of
// the referencing compound.
func (m *InvalidationMap) NoteSelector(sel *selector.Selector) {
	for _, seq := range sel.Sequences() {
		dep := Dependency{Selector: sel, Offset: seq.Offset}
		var states restyle.ElementState
		for _, c := range seq.Components {
			switch c.Kind {
			case selector.KindID:
				key := c.Name.Lower()
				m.IDs[key] = append(m.IDs[key], dep)
				m.count++
			case selector.KindClass:
				key := c.Name.Lower()
				m.Classes[key] = append(m.Classes[key], dep)
				m.count++
			case selector.KindState:
				states |= c.States
			case selector.KindAnyLink:
				// linkness is attribute-backed: an href change flips it
				m.OtherAttrAffecting.Insert(dep, seq)
				m.count++
			case selector.KindAttr:
				switch c.Name {
				case "class":
					m.HasClassAttrSelectors = true
				case "id":
					m.HasIDAttrSelectors = true
				default:
					m.OtherAttrAffecting.Insert(dep, seq)
					m.count++
				}
			case selector.KindLang, selector.KindDir:
				// backed by the lang/dir attributes of the element or an
				// ancestor; an attribute change can flip them
				m.OtherAttrAffecting.Insert(dep, seq)
				m.count++
			}
		}
		if states != 0 {
			m.StateAffecting.Insert(StateDependency{Dependency: dep, States: states}, seq)
			m.count++
		}
	}
	tracer().Debugf("noted selector %q, map now holds %d dependencies", sel, m.count)
}
