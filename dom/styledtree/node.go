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
	"github.com/npillmayer/restyle/selector"
	"github.com/npillmayer/restyle/tree"
	"golang.org/x/net/html"
)

// StyNode is a style node, the building block of the styled tree.
type StyNode struct {
	tree.Node[*StyNode] // we build on top of general purpose tree
	htmlNode            *html.Node
	pseudo              restyle.Atom // "before"/"after" for pseudo-element boxes
	pseudos             []*StyNode   // pseudo-element boxes of this element
	state               restyle.ElementState
	styleData           *StyleData
}

// NewNodeForHTMLNode creates a new styled node linked to an HTML element
// node.
func NewNodeForHTMLNode(h *html.Node) *tree.Node[*StyNode] {
	sn := &StyNode{}
	sn.Payload = sn // Payload will always reference the node itself
	sn.htmlNode = h
	return &sn.Node
}

// Node gets the styled node from a generic tree node.
func Node(n *tree.Node[*StyNode]) *StyNode {
	if n == nil {
		return nil
	}
	return n.Payload
}

// HTMLNode gets the HTML DOM node corresponding to this styled node.
func (sn *StyNode) HTMLNode() *html.Node {
	return sn.htmlNode
}

// AddPseudoElement attaches a pseudo-element box ("before" or "after") to
// this element and returns it. The box shares the originating element's
// HTML node and is kept off the sibling axis.
func (sn *StyNode) AddPseudoElement(name restyle.Atom) *StyNode {
	box := &StyNode{}
	box.Payload = box
	box.htmlNode = sn.htmlNode
	box.pseudo = name
	sn.pseudos = append(sn.pseudos, box)
	sn.Node.AddChild(&box.Node)
	return box
}

// EachPseudoElement calls f for every pseudo-element box of this element.
func (sn *StyNode) EachPseudoElement(f func(*StyNode)) {
	for _, box := range sn.pseudos {
		f(box)
	}
}

// IsPseudoElement checks whether this node is a pseudo-element box.
func (sn *StyNode) IsPseudoElement() bool {
	return !sn.pseudo.IsNull()
}

// --- Style data ------------------------------------------------------------

// Property is a raw value for a CSS property, e.g. "none" for key
// "display".
type Property string

func (p Property) String() string {
	return string(p)
}

// Styles is the slice of computed style this engine cares about. The full
// computed values live with the cascade, which is a client of the hints
// this package stores.
type Styles struct {
	Display Property
}

// IsDisplayNone checks whether the element generates no box.
func (s Styles) IsDisplayNone() bool {
	return s.Display == "none"
}

// StyleData is the per-element style bookkeeping of the invalidation
// engine. It is created lazily: an element without style data has never
// been styled and needs no invalidation.
type StyleData struct {
	Hint             restyle.RestyleHint
	Styles           Styles
	dirtyDescendants bool
}

// HasStyleData checks whether the element has been styled before.
func (sn *StyNode) HasStyleData() bool {
	return sn.styleData != nil
}

// StyleData returns the element's style data, or nil if the element has
// never been styled.
func (sn *StyNode) StyleData() *StyleData {
	return sn.styleData
}

// MutateStyleData returns the element's style data, creating it on demand.
func (sn *StyNode) MutateStyleData() *StyleData {
	if sn.styleData == nil {
		sn.styleData = &StyleData{}
	}
	return sn.styleData
}

// SetDirtyDescendants marks or unmarks this element's subtree as already
// known to contain an invalidated node. This is a traversal-pruning
// marker, not a restyle hint.
func (sn *StyNode) SetDirtyDescendants(dirty bool) {
	sn.MutateStyleData().dirtyDescendants = dirty
}

// HasDirtyDescendants reads the traversal-pruning marker.
func (sn *StyNode) HasDirtyDescendants() bool {
	return sn.styleData != nil && sn.styleData.dirtyDescendants
}

// --- Identity and state ----------------------------------------------------

// LocalName returns the element's tag name. HTML parsing lowercases it.
func (sn *StyNode) LocalName() restyle.Atom {
	if sn.htmlNode == nil {
		return restyle.NullAtom
	}
	return restyle.Atom(sn.htmlNode.Data)
}

// ID returns the element's id attribute, or the null atom.
func (sn *StyNode) ID() restyle.Atom {
	v, ok := sn.AttrValue("id")
	if !ok {
		return restyle.NullAtom
	}
	return restyle.Atom(v)
}

// HasClass checks for a class under the given case sensitivity.
func (sn *StyNode) HasClass(class restyle.Atom, cs restyle.CaseSensitivity) bool {
	found := false
	sn.EachClass(func(c restyle.Atom) {
		if c.Eq(class, cs) {
			found = true
		}
	})
	return found
}

// EachClass calls f for every class of the element.
func (sn *StyNode) EachClass(f func(class restyle.Atom)) {
	v, ok := sn.AttrValue("class")
	if !ok {
		return
	}
	for _, c := range strings.Fields(v) {
		f(restyle.Atom(c))
	}
}

// AttrValue returns an attribute's value. Attribute names are lowercased
// by the HTML parser.
func (sn *StyNode) AttrValue(name restyle.Atom) (string, bool) {
	if sn.htmlNode == nil {
		return "", false
	}
	for _, a := range sn.htmlNode.Attr {
		if a.Namespace == "" && restyle.Atom(a.Key) == name {
			return a.Val, true
		}
	}
	return "", false
}

// State returns the element's UI state bits.
func (sn *StyNode) State() restyle.ElementState {
	return sn.state
}

// SetState replaces the element's UI state bits. The DOM layer is expected
// to snapshot the element before the first state change of a batch.
func (sn *StyNode) SetState(s restyle.ElementState) {
	sn.state = s
}

// AddState sets state bits.
func (sn *StyNode) AddState(s restyle.ElementState) {
	sn.state |= s
}

// RemoveState clears state bits.
func (sn *StyNode) RemoveState(s restyle.ElementState) {
	sn.state &^= s
}

// IsLink checks whether the element is a hyperlink anchor.
func (sn *StyNode) IsLink() bool {
	name := sn.LocalName()
	if name != "a" && name != "area" {
		return false
	}
	_, ok := sn.AttrValue("href")
	return ok
}

// IsRoot checks for the document element.
func (sn *StyNode) IsRoot() bool {
	return sn.TraversalParent() == nil
}

// ImplementedPseudoElement returns the pseudo-element name for a
// pseudo-element box, or the null atom for a real element.
func (sn *StyNode) ImplementedPseudoElement() restyle.Atom {
	return sn.pseudo
}

// PseudoElementOriginatingElement returns the real element owning a
// pseudo-element box. For real elements it returns the node itself.
func (sn *StyNode) PseudoElementOriginatingElement() *StyNode {
	if !sn.IsPseudoElement() {
		return sn
	}
	return Node(sn.Parent())
}

// --- Traversal -------------------------------------------------------------

// TraversalParent returns the parent element for invalidation traversal.
func (sn *StyNode) TraversalParent() *StyNode {
	return Node(sn.Parent())
}

// TraversalChildren calls f for every element child, pseudo-element boxes
// included.
func (sn *StyNode) TraversalChildren(f func(*StyNode)) {
	for _, ch := range sn.Children() {
		f(Node(ch))
	}
}

// prevElementSibling skips pseudo-element boxes on the sibling axis.
func (sn *StyNode) prevElementSibling() *StyNode {
	for n := sn.Node.PrevSibling(); n != nil; n = n.PrevSibling() {
		if !Node(n).IsPseudoElement() {
			return Node(n)
		}
	}
	return nil
}

func (sn *StyNode) nextElementSibling() *StyNode {
	for n := sn.Node.NextSibling(); n != nil; n = n.NextSibling() {
		if !Node(n).IsPseudoElement() {
			return Node(n)
		}
	}
	return nil
}

// --- selector.Element ------------------------------------------------------

// ParentElement is part of interface selector.Element.
func (sn *StyNode) ParentElement() selector.Element {
	p := sn.TraversalParent()
	if p == nil {
		return nil
	}
	return p
}

// PrevSiblingElement is part of interface selector.Element.
func (sn *StyNode) PrevSiblingElement() selector.Element {
	s := sn.prevElementSibling()
	if s == nil {
		return nil
	}
	return s
}

// NextSiblingElement is part of interface selector.Element.
func (sn *StyNode) NextSiblingElement() selector.Element {
	s := sn.nextElementSibling()
	if s == nil {
		return nil
	}
	return s
}

var _ selector.Element = &StyNode{}

// --- Tree building ---------------------------------------------------------

// BuildTree creates a styled tree for the element nodes of an HTML parse
// tree, starting at the first element found from h (usually the <html>
// element of a document node). Text and comment nodes carry no style of
// their own and are skipped.
func BuildTree(h *html.Node) *StyNode {
	root := firstElement(h)
	if root == nil {
		return nil
	}
	sn := Node(NewNodeForHTMLNode(root))
	buildChildren(sn, root)
	tracer().Debugf("built styled tree rooted at <%s>", sn.LocalName())
	return sn
}

func buildChildren(parent *StyNode, h *html.Node) {
	for ch := h.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type != html.ElementNode {
			continue
		}
		sn := Node(NewNodeForHTMLNode(ch))
		parent.Node.AddChild(&sn.Node)
		buildChildren(sn, ch)
	}
}

func firstElement(h *html.Node) *html.Node {
	if h == nil {
		return nil
	}
	if h.Type == html.ElementNode {
		return h
	}
	for ch := h.FirstChild; ch != nil; ch = ch.NextSibling {
		if e := firstElement(ch); e != nil {
			return e
		}
	}
	return nil
}
