package selector

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"strings"

	"github.com/npillmayer/restyle"
)

// Element is the capability set selector matching needs from a DOM node.
// Both live styled-tree nodes and snapshot wrappers implement it, which is
// what enables "as-it-was" matching during invalidation.
type Element interface {
	LocalName() restyle.Atom
	ID() restyle.Atom // NullAtom if the element carries no id
	HasClass(class restyle.Atom, cs restyle.CaseSensitivity) bool
	EachClass(f func(class restyle.Atom))
	AttrValue(name restyle.Atom) (string, bool)
	State() restyle.ElementState
	IsLink() bool
	IsRoot() bool
	ImplementedPseudoElement() restyle.Atom // NullAtom for real elements
	ParentElement() Element
	PrevSiblingElement() Element
	NextSiblingElement() Element
}

// VisitedHandlingMode tells the matcher how to treat the visitedness of
// link elements. Matching never consults an element's true visited state.
type VisitedHandlingMode int8

const (
	// AllLinksUnvisited treats every link as unvisited.
	AllLinksUnvisited VisitedHandlingMode = iota
	// AllLinksVisitedAndUnvisited lets every link match both ':link' and
	// ':visited'.
	AllLinksVisitedAndUnvisited
	// RelevantLinkVisited simulates the relevant link as visited.
	RelevantLinkVisited
)

// AncestorFilter is an optional fast-reject set over the identity atoms of
// an element's ancestor chain, in the manner of a bloom filter. May answer
// "maybe" (true) spuriously, never "no" for a present atom.
type AncestorFilter interface {
	MayContain(a restyle.Atom) bool
}

// MatchingContext carries the ambient parameters of a matching run and
// collects the relevant-link flag as output.
type MatchingContext struct {
	VisitedHandling VisitedHandlingMode
	QuirksMode      restyle.QuirksMode
	AncestorFilter  AncestorFilter
	NthIndexCache   map[Element]int

	// RelevantLinkFound is set whenever a visited-dependent component was
	// evaluated on a link element during the run.
	RelevantLinkFound bool
}

// NewContext creates a matching context for a quirks mode and a visited
// handling mode.
func NewContext(q restyle.QuirksMode, v VisitedHandlingMode) *MatchingContext {
	return &MatchingContext{QuirksMode: q, VisitedHandling: v}
}

// Matches tests a selector, anchored at component offset, against an
// element. Offset 0 matches the full selector with e as the subject; a
// non-zero offset must address the first component of a compound.
func Matches(sel *Selector, offset int, e Element, ctx *MatchingContext) bool {
	if sel == nil || e == nil {
		return false
	}
	if offset < 0 || offset >= sel.Len() {
		panic(fmt.Sprintf("selector offset %d out of range [0,%d)", offset, sel.Len()))
	}
	if sel.At(offset).IsCombinator() {
		panic(fmt.Sprintf("selector offset %d addresses a combinator", offset))
	}
	if ctx == nil {
		ctx = NewContext(restyle.NoQuirks, AllLinksUnvisited)
	}
	return matchesFrom(sel, offset, e, ctx)
}

func matchesFrom(sel *Selector, i int, e Element, ctx *MatchingContext) bool {
	n := sel.Len()
	for i < n {
		c := sel.At(i)
		if c.IsCombinator() {
			break
		}
		if !matchSimple(c, e, ctx) {
			return false
		}
		i++
	}
	if i >= n {
		return true
	}
	comb := sel.At(i).Combinator
	rest := i + 1
	switch comb {
	case Child:
		p := e.ParentElement()
		return p != nil && matchesFrom(sel, rest, p, ctx)
	case Descendant:
		if ctx.AncestorFilter != nil && !mayMatchAncestors(sel, rest, ctx.AncestorFilter) {
			return false
		}
		for p := e.ParentElement(); p != nil; p = p.ParentElement() {
			if matchesFrom(sel, rest, p, ctx) {
				return true
			}
		}
		return false
	case NextSibling:
		s := e.PrevSiblingElement()
		return s != nil && matchesFrom(sel, rest, s, ctx)
	case LaterSibling:
		for s := e.PrevSiblingElement(); s != nil; s = s.PrevSiblingElement() {
			if matchesFrom(sel, rest, s, ctx) {
				return true
			}
		}
		return false
	}
	panic("unknown combinator")
}

// mayMatchAncestors consults the ancestor filter for the identity atoms of
// the compound at offset rest. A definite miss proves the remaining
// selector cannot match any ancestor.
func mayMatchAncestors(sel *Selector, rest int, filter AncestorFilter) bool {
	for i := rest; i < sel.Len(); i++ {
		c := sel.At(i)
		if c.IsCombinator() {
			break
		}
		switch c.Kind {
		case KindID, KindClass:
			if !filter.MayContain(c.Name) {
				return false
			}
		case KindLocalName:
			if !filter.MayContain(c.LowerName) {
				return false
			}
		}
	}
	return true
}

func matchSimple(c Component, e Element, ctx *MatchingContext) bool {
	switch c.Kind {
	case KindUniversal:
		return true
	case KindLocalName:
		name := e.LocalName()
		return name == c.Name || name == c.LowerName
	case KindID:
		id := e.ID()
		return !id.IsNull() && c.Name.Eq(id, ctx.QuirksMode.ClassAndIDCaseSensitivity())
	case KindClass:
		return e.HasClass(c.Name, ctx.QuirksMode.ClassAndIDCaseSensitivity())
	case KindAttr:
		return matchAttr(c, e)
	case KindState:
		if c.States.Intersects(restyle.StateVisitedOrUnvisited) {
			return matchVisitedness(c, e, ctx)
		}
		return e.State().Contains(c.States)
	case KindAnyLink:
		return e.IsLink()
	case KindLang:
		return matchInheritedAttr(e, "lang", string(c.Name), dashMatchFold)
	case KindDir:
		return matchInheritedAttr(e, "dir", string(c.Name), strings.EqualFold)
	case KindRoot:
		return e.IsRoot()
	case KindFirstChild:
		return e.PrevSiblingElement() == nil
	case KindLastChild:
		return e.NextSiblingElement() == nil
	case KindNthChild:
		return matchNth(c, e, ctx)
	case KindPseudoElement:
		return e.ImplementedPseudoElement() == c.Name
	}
	panic("unknown selector component kind")
}

// matchVisitedness evaluates ':link' and ':visited' under the context's
// simulation mode and notes the relevant link.
func matchVisitedness(c Component, e Element, ctx *MatchingContext) bool {
	if !e.IsLink() {
		return false
	}
	ctx.RelevantLinkFound = true
	switch ctx.VisitedHandling {
	case AllLinksVisitedAndUnvisited:
		return true
	case RelevantLinkVisited:
		return c.States.Intersects(restyle.StateVisited)
	}
	return c.States.Intersects(restyle.StateUnvisited)
}

func matchAttr(c Component, e Element) bool {
	v, ok := e.AttrValue(c.Name)
	if !ok {
		return false
	}
	switch c.Op {
	case AttrExists:
		return true
	case AttrEquals:
		return v == c.Value
	case AttrIncludes:
		for _, field := range strings.Fields(v) {
			if field == c.Value {
				return true
			}
		}
		return false
	case AttrDashMatch:
		return v == c.Value || strings.HasPrefix(v, c.Value+"-")
	case AttrPrefix:
		return c.Value != "" && strings.HasPrefix(v, c.Value)
	case AttrSuffix:
		return c.Value != "" && strings.HasSuffix(v, c.Value)
	case AttrSubstring:
		return c.Value != "" && strings.Contains(v, c.Value)
	}
	return false
}

// matchInheritedAttr looks for an attribute on the element or its nearest
// ancestor carrying it, then compares with cmp.
func matchInheritedAttr(e Element, attr restyle.Atom, want string, cmp func(string, string) bool) bool {
	for el := e; el != nil; el = el.ParentElement() {
		if v, ok := el.AttrValue(attr); ok {
			return cmp(v, want)
		}
	}
	return false
}

func dashMatchFold(v, want string) bool {
	if strings.EqualFold(v, want) {
		return true
	}
	return len(v) > len(want) && strings.EqualFold(v[:len(want)], want) && v[len(want)] == '-'
}

func matchNth(c Component, e Element, ctx *MatchingContext) bool {
	index := nthIndex(e, ctx)
	if c.NthA == 0 {
		return index == c.NthB
	}
	d := index - c.NthB
	return d%c.NthA == 0 && d/c.NthA >= 0
}

// nthIndex computes the 1-based index of e among its element siblings,
// memoized in the context's cache.
func nthIndex(e Element, ctx *MatchingContext) int {
	if ctx.NthIndexCache != nil {
		if idx, ok := ctx.NthIndexCache[e]; ok {
			return idx
		}
	}
	index := 1
	for s := e.PrevSiblingElement(); s != nil; s = s.PrevSiblingElement() {
		index++
	}
	if ctx.NthIndexCache == nil {
		ctx.NthIndexCache = make(map[Element]int)
	}
	ctx.NthIndexCache[e] = index
	return index
}
