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

// RecursionLimit bounds the tree depth an invalidation traversal descends
// to. Deeper subtrees are invalidated wholesale instead of precisely.
const RecursionLimit = 128

// SelectorInvalidation is a pending re-match obligation for the nodes of a
// subtree or sibling range: the selector, anchored at Offset, must be
// re-matched against each candidate element.
type SelectorInvalidation struct {
	Selector *selector.Selector
	Offset   int
}

func (inv SelectorInvalidation) String() string {
	return fmt.Sprintf("inv(%q@%d)", inv.Selector.String(), inv.Offset)
}

// InvalidationVector collects the selector invalidations of one element's
// mutation.
type InvalidationVector []SelectorInvalidation

// Push appends an invalidation.
func (v *InvalidationVector) Push(inv SelectorInvalidation) {
	*v = append(*v, inv)
}

// Processor is the strategy of a TreeStyleInvalidator: it decides which
// invalidations a mutated element produces and reacts to the nodes the
// traversal invalidates. StateAndAttrProcessor is the production
// implementation.
type Processor interface {
	// CollectInvalidations inspects the mutated element and fills the
	// descendant and sibling invalidation vectors. It reports whether the
	// element itself is invalidated.
	CollectInvalidations(el *styledtree.StyNode, descendants, siblings *InvalidationVector) bool

	// ShouldProcessDescendants checks whether a traversal may descend
	// below el at all.
	ShouldProcessDescendants(el *styledtree.StyNode) bool

	// InvalidatedSelf marks an element as needing its own style recomputed.
	InvalidatedSelf(el *styledtree.StyNode)

	// InvalidatedDescendants notes that something below el was invalidated.
	InvalidatedDescendants(el *styledtree.StyNode)

	// RecursionLimitExceeded handles an element at the depth bound; the
	// traversal will not descend further.
	RecursionLimitExceeded(el *styledtree.StyNode)
}

// TreeStyleInvalidator pushes the invalidations of one mutated element
// into the styled tree: the element itself, its descendants, and its
// later siblings with their descendants.
type TreeStyleInvalidator struct {
	element   *styledtree.StyNode
	snapshots *styledtree.SnapshotMap
	quirks    restyle.QuirksMode
	processor Processor
}

// NewTreeStyleInvalidator creates an invalidator for one mutated element.
func NewTreeStyleInvalidator(el *styledtree.StyNode, snapshots *styledtree.SnapshotMap,
	quirks restyle.QuirksMode, processor Processor) *TreeStyleInvalidator {
	//
	return &TreeStyleInvalidator{
		element:   el,
		snapshots: snapshots,
		quirks:    quirks,
		processor: processor,
	}
}

// Invalidate runs the invalidation pass and reports whether any element
// was invalidated.
func (ti *TreeStyleInvalidator) Invalidate() bool {
	var descendants, siblings InvalidationVector
	selfInvalid := ti.processor.CollectInvalidations(ti.element, &descendants, &siblings)
	if selfInvalid {
		ti.processor.InvalidatedSelf(ti.element)
	}
	tracer().Debugf("invalidating <%s id=%q>: self=%v, %d descendant / %d sibling invalidations",
		ti.element.LocalName(), ti.element.ID(), selfInvalid, len(descendants), len(siblings))
	any := selfInvalid
	if len(descendants) > 0 && ti.processor.ShouldProcessDescendants(ti.element) {
		if ti.invalidateChildren(ti.element, descendants, 0) {
			ti.processor.InvalidatedDescendants(ti.element)
			any = true
		}
	}
	if len(siblings) > 0 {
		if ti.invalidateSiblings(siblings) {
			if p := ti.element.TraversalParent(); p != nil {
				ti.processor.InvalidatedDescendants(p)
			}
			any = true
		}
	}
	if any {
		raiseDirtyDescendants(ti.element)
	}
	return any
}

// invalidateSiblings re-matches the sibling invalidations against every
// later sibling of the mutated element and against their subtrees.
func (ti *TreeStyleInvalidator) invalidateSiblings(invs InvalidationVector) bool {
	any := false
	for s := laterSibling(ti.element); s != nil; s = laterSibling(s) {
		if ti.invalidateNode(s, invs, 0) {
			any = true
		}
	}
	return any
}

// invalidateChildren descends into el's children, pseudo-element boxes
// included.
func (ti *TreeStyleInvalidator) invalidateChildren(el *styledtree.StyNode, invs InvalidationVector, depth int) bool {
	any := false
	el.TraversalChildren(func(ch *styledtree.StyNode) {
		if ti.invalidateNode(ch, invs, depth+1) {
			any = true
		}
	})
	return any
}

// invalidateNode re-matches the pending invalidations against one node and
// recurses into its subtree.
func (ti *TreeStyleInvalidator) invalidateNode(el *styledtree.StyNode, invs InvalidationVector, depth int) bool {
	if depth > RecursionLimit {
		// give up on precision for pathologically deep trees
		ti.processor.RecursionLimitExceeded(el)
		return true
	}
	if !el.HasStyleData() {
		// never styled, nothing to invalidate below either
		return false
	}
	matched := false
	for _, inv := range invs {
		if ti.matchChanged(inv, el) {
			tracer().Debugf("%v invalidates <%s id=%q>", inv, el.LocalName(), el.ID())
			matched = true
			break
		}
	}
	if matched {
		ti.processor.InvalidatedSelf(el)
	}
	any := matched
	if ti.processor.ShouldProcessDescendants(el) {
		if ti.invalidateChildren(el, invs, depth) {
			ti.processor.InvalidatedDescendants(el)
			any = true
		}
	}
	return any
}

// matchChanged checks whether an invalidation's match result for el
// differs between the live tree and the pre-mutation view. Only a changed
// result requires a restyle; a match that held before and still holds
// contributes the same styles as before.
func (ti *TreeStyleInvalidator) matchChanged(inv SelectorInvalidation, el *styledtree.StyNode) bool {
	now := selector.Matches(inv.Selector, inv.Offset, el,
		selector.NewContext(ti.quirks, selector.AllLinksUnvisited))
	then := selector.Matches(inv.Selector, inv.Offset, Wrap(el, ti.snapshots),
		selector.NewContext(ti.quirks, selector.AllLinksUnvisited))
	return now != then
}

// laterSibling steps along the sibling axis, skipping pseudo-element
// boxes.
func laterSibling(el *styledtree.StyNode) *styledtree.StyNode {
	if s, ok := el.NextSiblingElement().(*styledtree.StyNode); ok {
		return s
	}
	return nil
}

// raiseDirtyDescendants marks the ancestor chain of an invalidated
// element, so a style traversal finds the invalidated region without
// scanning clean subtrees. Stops at the first ancestor already marked.
func raiseDirtyDescendants(el *styledtree.StyNode) {
	for p := el.TraversalParent(); p != nil; p = p.TraversalParent() {
		if p.HasDirtyDescendants() {
			return
		}
		p.SetDirtyDescendants(true)
	}
}
