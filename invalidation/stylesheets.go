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
	"github.com/npillmayer/restyle/dom/styledtree"
	"github.com/npillmayer/restyle/selector"
)

// Device answers the environment-dependent questions of stylesheet
// processing: media query evaluation and animation-name usage.
type Device interface {
	MediaQueryMatches(query string) bool

	// AnimationNameMayBeReferenced may answer true spuriously, never false
	// for a referenced name.
	AnimationNameMayBeReferenced(name restyle.Atom) bool
}

// RuleKind discriminates the CSS rule variants a stylesheet may contain.
type RuleKind int8

// Rule kinds.
const (
	RuleUnknown RuleKind = iota
	RuleStyle
	RuleImport
	RuleMedia
	RuleSupports
	RuleDocument
	RuleNamespace
	RuleFontFace
	RuleKeyframes
	RuleCounterStyle
	RulePage
	RuleViewport
	RuleFontFeatureValues
)

// Rule is one CSS rule of a stylesheet.
type Rule interface {
	Kind() RuleKind

	// Selectors returns the compiled selector list of a style rule. nil
	// for a style rule means the selector text did not compile; callers
	// must treat such a rule maximally conservative.
	Selectors() []*selector.Selector

	// KeyframesName returns the animation name of an @keyframes rule.
	KeyframesName() restyle.Atom
}

// Stylesheet is the read view of a stylesheet the invalidation engine
// needs.
type Stylesheet interface {
	Enabled() bool
	EffectiveForDevice(d Device) bool

	// EachEffectiveRule yields the sheet's rules in document order,
	// descending into conditional group rules whose condition holds for
	// the device.
	EachEffectiveRule(d Device, f func(r Rule))
}

// --- Invalidation keys -----------------------------------------------------

// invalidationKind discriminates the identity facet an Invalidation keys
// on.
type invalidationKind int8

const (
	invalidID invalidationKind = iota
	invalidClass
	invalidLocalName
)

// Invalidation is a fast-reject key derived from one compound of a
// selector: an element can only be affected by the selector's rule if the
// key matches the element or its snapshot. Keys are comparable and
// deduplicated in sets.
type Invalidation struct {
	kind      invalidationKind
	name      restyle.Atom
	lowerName restyle.Atom
}

// IDInvalidation keys on an id.
func IDInvalidation(id restyle.Atom) Invalidation {
	return Invalidation{kind: invalidID, name: id, lowerName: id.Lower()}
}

// ClassInvalidation keys on a class.
func ClassInvalidation(class restyle.Atom) Invalidation {
	return Invalidation{kind: invalidClass, name: class, lowerName: class.Lower()}
}

// LocalNameInvalidation keys on a tag name.
func LocalNameInvalidation(name restyle.Atom) Invalidation {
	return Invalidation{kind: invalidLocalName, name: name, lowerName: name.Lower()}
}

func (inv Invalidation) String() string {
	switch inv.kind {
	case invalidID:
		return "#" + string(inv.name)
	case invalidClass:
		return "." + string(inv.name)
	}
	return string(inv.name)
}

// Matches checks the key against an element's current identity and, if
// given, its pre-mutation snapshot. A key matching either must count: the
// rule change can affect how the element was or will be styled.
func (inv Invalidation) Matches(el *styledtree.StyNode, snap *styledtree.Snapshot,
	quirks restyle.QuirksMode) bool {
	//
	cs := quirks.ClassAndIDCaseSensitivity()
	switch inv.kind {
	case invalidID:
		if inv.name.Eq(el.ID(), cs) {
			return true
		}
		return snap != nil && snap.AttrsChanged() && inv.name.Eq(snap.ID(), cs)
	case invalidClass:
		if el.HasClass(inv.name, cs) {
			return true
		}
		return snap != nil && snap.AttrsChanged() && snap.HasClass(inv.name, cs)
	case invalidLocalName:
		name := el.LocalName()
		return name == inv.name || name == inv.lowerName
	}
	return false
}

// --- Stylesheet invalidation set -------------------------------------------

// StylesheetInvalidationSet accumulates the invalidations of stylesheet
// mutations (sheets added, removed, or toggled) between style flushes.
// Collection extracts per-selector fast-reject keys instead of restyling
// everything; Flush pushes the accumulated keys onto the document tree and
// empties the set.
type StylesheetInvalidationSet struct {
	invalidScopes   map[Invalidation]struct{}
	invalidElements map[Invalidation]struct{}
	fullyInvalid    bool
}

// NewStylesheetInvalidationSet creates an empty set.
func NewStylesheetInvalidationSet() *StylesheetInvalidationSet {
	return &StylesheetInvalidationSet{
		invalidScopes:   make(map[Invalidation]struct{}),
		invalidElements: make(map[Invalidation]struct{}),
	}
}

// IsEmpty checks whether a flush would be a no-op.
func (s *StylesheetInvalidationSet) IsEmpty() bool {
	return !s.fullyInvalid && len(s.invalidScopes) == 0 && len(s.invalidElements) == 0
}

// IsFullyInvalid checks whether precision has been given up for this
// flush.
func (s *StylesheetInvalidationSet) IsFullyInvalid() bool {
	return s.fullyInvalid
}

// InvalidateFully gives up on precision; the next flush restyles the whole
// document. Accumulated keys are dropped, they are subsumed.
func (s *StylesheetInvalidationSet) InvalidateFully() {
	s.fullyInvalid = true
	s.invalidScopes = make(map[Invalidation]struct{})
	s.invalidElements = make(map[Invalidation]struct{})
}

// RulesChanged collects the invalidations for a stylesheet whose presence
// or effect changed: added, removed, or enabled/disabled. Addition and
// removal need the same keys, since both change which elements the sheet's
// rules style.
func (s *StylesheetInvalidationSet) RulesChanged(device Device, sheet Stylesheet) {
	if s.fullyInvalid {
		return
	}
	if !sheet.EffectiveForDevice(device) {
		tracer().Debugf("stylesheet not effective for device, no invalidation")
		return
	}
	sheet.EachEffectiveRule(device, func(r Rule) {
		if s.fullyInvalid {
			return
		}
		s.collectForRule(device, r)
	})
	tracer().Debugf("stylesheet change: %d scope / %d element invalidations, full=%v",
		len(s.invalidScopes), len(s.invalidElements), s.fullyInvalid)
}

func (s *StylesheetInvalidationSet) collectForRule(device Device, r Rule) {
	switch r.Kind() {
	case RuleStyle:
		sels := r.Selectors()
		if sels == nil {
			// selector text did not compile, no keys to extract
			s.InvalidateFully()
			return
		}
		for _, sel := range sels {
			s.collectForSelector(sel)
			if s.fullyInvalid {
				return
			}
		}
	case RuleImport, RuleMedia, RuleSupports, RuleDocument, RuleNamespace:
		// group conditions were applied by EachEffectiveRule; @namespace
		// carries no style
	case RuleKeyframes:
		if device.AnimationNameMayBeReferenced(r.KeyframesName()) {
			tracer().Debugf("@keyframes %q may be referenced, invalidating fully", r.KeyframesName())
			s.InvalidateFully()
		}
	default:
		// @font-face, @counter-style, @page, @viewport and friends change
		// rendering in ways selectors cannot scope
		s.InvalidateFully()
	}
}

// collectForSelector extracts one fast-reject key per selector. The
// subject compound yields an element key. Walking rootward, a compound
// whose subject-side combinator is an ancestor combinator yields a scope
// candidate; sibling-adjacent compounds are skipped, their subtree does
// not contain the subject. Candidates fold into one key with an id
// sticky once found, and a remaining scope key wins over the element
// key. A selector yielding no key at all forces a full invalidation.
func (s *StylesheetInvalidationSet) collectForSelector(sel *selector.Selector) {
	seqs := sel.Sequences()
	element := compoundKey(nil, seqs[0].Components)
	var scope *Invalidation
	for _, seq := range seqs[1:] {
		if !seq.ToSubject.IsAncestor() {
			continue
		}
		scope = compoundKey(scope, seq.Components)
	}
	switch {
	case scope != nil:
		s.invalidScopes[*scope] = struct{}{}
	case element != nil:
		s.invalidElements[*element] = struct{}{}
	default:
		tracer().Debugf("selector %q yields no invalidation key", sel)
		s.InvalidateFully()
	}
}

// compoundKey folds one compound into the key accumulated so far: an id
// is sticky once found, a class overwrites a class or tag key, a tag
// name only fills an empty slot.
func compoundKey(key *Invalidation, compound []selector.Component) *Invalidation {
	for _, c := range compound {
		switch c.Kind {
		case selector.KindID:
			if key == nil || key.kind != invalidID {
				k := IDInvalidation(c.Name)
				key = &k
			}
		case selector.KindClass:
			if key == nil || key.kind != invalidID {
				k := ClassInvalidation(c.Name)
				key = &k
			}
		case selector.KindLocalName:
			if key == nil {
				k := LocalNameInvalidation(c.Name)
				key = &k
			}
		}
	}
	return key
}

// Flush pushes the accumulated invalidations onto the document tree and
// empties the set. It reports whether any element was invalidated.
// Flushing an empty set is a no-op, so Flush is idempotent.
func (s *StylesheetInvalidationSet) Flush(root *styledtree.StyNode,
	snapshots *styledtree.SnapshotMap, quirks restyle.QuirksMode) bool {
	//
	if root == nil || s.IsEmpty() {
		s.clear()
		return false
	}
	defer s.clear()
	if s.fullyInvalid {
		tracer().Debugf("flush: fully invalid, restyling the whole document")
		root.MutateStyleData().Hint.Insert(restyle.RestyleSubtree())
		return true
	}
	return s.flushNode(root, snapshots, quirks, 0)
}

// flushNode tests one element against the accumulated keys and recurses.
// It reports whether anything in el's subtree (el included) was
// invalidated.
func (s *StylesheetInvalidationSet) flushNode(el *styledtree.StyNode,
	snapshots *styledtree.SnapshotMap, quirks restyle.QuirksMode, depth int) bool {
	//
	if depth > RecursionLimit {
		el.MutateStyleData().Hint.Insert(restyle.RestyleSubtree())
		return true
	}
	if !el.HasStyleData() {
		// never styled, the first styling pass will visit it anyway
		return false
	}
	if el.StyleData().Hint.ContainsDescendants() {
		// the pending hint already covers the subtree; nothing new here
		return false
	}
	snap := snapshots.Get(el)
	for key := range s.invalidScopes {
		if key.Matches(el, snap, quirks) {
			tracer().Debugf("scope %v invalidates subtree of <%s id=%q>", key, el.LocalName(), el.ID())
			el.MutateStyleData().Hint.Insert(restyle.RestyleSubtree())
			return true
		}
	}
	invalidated := false
	for key := range s.invalidElements {
		if key.Matches(el, snap, quirks) {
			tracer().Debugf("element key %v invalidates <%s id=%q>", key, el.LocalName(), el.ID())
			el.MutateStyleData().Hint.Insert(restyle.RestyleSelf)
			invalidated = true
			break
		}
	}
	below := false
	el.TraversalChildren(func(ch *styledtree.StyNode) {
		if s.flushNode(ch, snapshots, quirks, depth+1) {
			below = true
		}
	})
	if below {
		el.SetDirtyDescendants(true)
	}
	return invalidated || below
}

func (s *StylesheetInvalidationSet) clear() {
	s.invalidScopes = make(map[Invalidation]struct{})
	s.invalidElements = make(map[Invalidation]struct{})
	s.fullyInvalid = false
}

var _ fmt.Stringer = Invalidation{}
