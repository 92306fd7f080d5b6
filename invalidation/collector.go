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

// MapProvider hands out the invalidation maps in scope for an element.
// The style engine's stylist implements it, exposing the document map and
// any scoped maps.
type MapProvider interface {
	QuirksMode() restyle.QuirksMode
	EachInvalidationMap(el *styledtree.StyNode, f func(m *InvalidationMap))
}

// StateAndAttrProcessor is the production invalidation processor: it turns
// the attribute and state deltas recorded in an element's snapshot into
// selector invalidations, by looking up the affected dependencies in the
// invalidation maps and re-matching each against the live element and its
// pre-mutation view.
type StateAndAttrProcessor struct {
	Maps      MapProvider
	Snapshots *styledtree.SnapshotMap
}

// NewStateAndAttrProcessor creates a processor over a map provider and the
// snapshots of the current mutation batch.
func NewStateAndAttrProcessor(maps MapProvider, snapshots *styledtree.SnapshotMap) *StateAndAttrProcessor {
	return &StateAndAttrProcessor{Maps: maps, Snapshots: snapshots}
}

var _ Processor = &StateAndAttrProcessor{}

// CollectInvalidations is part of interface Processor.
func (p *StateAndAttrProcessor) CollectInvalidations(el *styledtree.StyNode,
	descendants, siblings *InvalidationVector) bool {
	//
	snap := p.Snapshots.Get(el)
	if snap == nil {
		return false
	}
	if !snap.AttrsChanged() && !snap.StateChanged() {
		return false
	}
	sc := &scanner{
		processor:   p,
		el:          el,
		wrapper:     Wrap(el, p.Snapshots),
		snap:        snap,
		quirks:      p.Maps.QuirksMode(),
		descendants: descendants,
		siblings:    siblings,
	}
	changedStates := snap.State() ^ el.State()
	if changedStates.Intersects(restyle.StateVisitedOrUnvisited) {
		// History status leaks through too many selectors to chase
		// precisely; restyle the subtree. The hint does not cover later
		// siblings, so the scan below still runs.
		el.MutateStyleData().Hint.Insert(restyle.RestyleSubtree())
		sc.selfInvalid = true
	}
	oldID, newID := snap.ID(), el.ID()
	idChanged := snap.IDChanged() && oldID != newID
	removedClasses, addedClasses := classDelta(snap, el)
	classChanged := len(removedClasses) > 0 || len(addedClasses) > 0
	var additionalID restyle.Atom
	if idChanged {
		additionalID = oldID
	}
	//
	p.Maps.EachInvalidationMap(el, func(m *InvalidationMap) {
		if idChanged {
			if !oldID.IsNull() {
				sc.scanAll(m.IDs[oldID.Lower()])
			}
			if !newID.IsNull() {
				sc.scanAll(m.IDs[newID.Lower()])
			}
		}
		for _, class := range removedClasses {
			sc.scanAll(m.Classes[class.Lower()])
		}
		for _, class := range addedClasses {
			sc.scanAll(m.Classes[class.Lower()])
		}
		if snap.OtherAttrChanged() ||
			(classChanged && m.HasClassAttrSelectors) ||
			(idChanged && m.HasIDAttrSelectors) {
			m.OtherAttrAffecting.Lookup(el, additionalID, removedClasses, func(dep Dependency) bool {
				sc.scan(dep)
				return true
			})
		}
		if snap.StateChanged() && !changedStates.IsEmpty() {
			m.StateAffecting.Lookup(el, additionalID, removedClasses, func(dep StateDependency) bool {
				if dep.States.Intersects(changedStates) {
					sc.scan(dep.Dependency)
				}
				return true
			})
		}
	})
	return sc.selfInvalid
}

// ShouldProcessDescendants is part of interface Processor. Descending is
// pointless below unstyled elements and below subtrees already marked for
// a full restyle.
func (p *StateAndAttrProcessor) ShouldProcessDescendants(el *styledtree.StyNode) bool {
	data := el.StyleData()
	if data == nil {
		return false
	}
	return !data.Hint.ContainsDescendants()
}

// InvalidatedSelf is part of interface Processor.
func (p *StateAndAttrProcessor) InvalidatedSelf(el *styledtree.StyNode) {
	el.MutateStyleData().Hint.Insert(restyle.RestyleSelf)
}

// InvalidatedDescendants is part of interface Processor.
func (p *StateAndAttrProcessor) InvalidatedDescendants(el *styledtree.StyNode) {
	el.SetDirtyDescendants(true)
}

// RecursionLimitExceeded is part of interface Processor.
func (p *StateAndAttrProcessor) RecursionLimitExceeded(el *styledtree.StyNode) {
	el.MutateStyleData().Hint.Insert(restyle.RestyleSubtree())
}

// --- dependency scanning ---------------------------------------------------

// scanner re-matches candidate dependencies for one mutated element and
// routes firing dependencies into the self flag or the descendant/sibling
// invalidation vectors.
type scanner struct {
	processor   *StateAndAttrProcessor
	el          *styledtree.StyNode
	wrapper     *ElementWrapper
	snap        *styledtree.Snapshot
	quirks      restyle.QuirksMode
	descendants *InvalidationVector
	siblings    *InvalidationVector
	selfInvalid bool
}

func (sc *scanner) scanAll(deps []Dependency) {
	for _, dep := range deps {
		sc.scan(dep)
	}
}

// scan decides whether a candidate dependency fires. The dependency's
// selector is matched anchored at the dependency's compound, once against
// the live element and once against the pre-mutation view, both treating
// links as unvisited. A changed match result fires, and so does a change
// in whether a relevant link was encountered: reaching the visited test
// on one side only already means the styles diverge.
func (sc *scanner) scan(dep Dependency) {
	if sc.selfInvalid && dep.AffectsSelf() && !dep.AffectsDescendants() && !dep.AffectsLaterSiblings() {
		return
	}
	ctxNow := selector.NewContext(sc.quirks, selector.AllLinksUnvisited)
	ctxThen := selector.NewContext(sc.quirks, selector.AllLinksUnvisited)
	now := selector.Matches(dep.Selector, dep.Offset, sc.el, ctxNow)
	then := selector.Matches(dep.Selector, dep.Offset, sc.wrapper, ctxThen)
	fires := now != then || ctxNow.RelevantLinkFound != ctxThen.RelevantLinkFound
	if !fires && dep.visitedDependent() &&
		(ctxNow.RelevantLinkFound || ctxThen.RelevantLinkFound) {
		// Second probe for visited-dependent dependencies: the unvisited
		// evaluations agreed, but the visited ones may still diverge.
		now = selector.Matches(dep.Selector, dep.Offset, sc.el,
			selector.NewContext(sc.quirks, selector.RelevantLinkVisited))
		then = selector.Matches(dep.Selector, dep.Offset, sc.wrapper,
			selector.NewContext(sc.quirks, selector.RelevantLinkVisited))
		fires = now != then
	}
	if !fires {
		return
	}
	tracer().Debugf("dependency %v fires on <%s id=%q>", dep, sc.el.LocalName(), sc.el.ID())
	if dep.AffectsSelf() {
		sc.selfInvalid = true
	}
	if dep.AffectsDescendants() {
		sc.descendants.Push(SelectorInvalidation{Selector: dep.Selector, Offset: 0})
	}
	if dep.AffectsLaterSiblings() {
		sc.siblings.Push(SelectorInvalidation{Selector: dep.Selector, Offset: 0})
	}
}

// classDelta diffs the class lists of snapshot and live element.
func classDelta(snap *styledtree.Snapshot, el *styledtree.StyNode) (removed, added []restyle.Atom) {
	if !snap.ClassChanged() {
		return nil, nil
	}
	snap.EachClass(func(class restyle.Atom) {
		if !el.HasClass(class, restyle.CaseSensitive) {
			removed = append(removed, class)
		}
	})
	el.EachClass(func(class restyle.Atom) {
		if !snap.HasClass(class, restyle.CaseSensitive) {
			added = append(added, class)
		}
	})
	return removed, added
}
