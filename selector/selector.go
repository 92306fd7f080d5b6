package selector

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"strings"

	"github.com/npillmayer/restyle"
)

// Combinator separates two compound sequences of a selector.
type Combinator int8

// Combinators, in the order they bind compounds together.
const (
	NoCombinator Combinator = iota
	Descendant              // 'A B'
	Child                   // 'A > B'
	NextSibling             // 'A + B'
	LaterSibling            // 'A ~ B'
)

// IsAncestor checks for the descendant and child combinators.
func (c Combinator) IsAncestor() bool {
	return c == Descendant || c == Child
}

// IsSibling checks for the next-sibling and later-sibling combinators.
func (c Combinator) IsSibling() bool {
	return c == NextSibling || c == LaterSibling
}

func (c Combinator) String() string {
	switch c {
	case Descendant:
		return " "
	case Child:
		return " > "
	case NextSibling:
		return " + "
	case LaterSibling:
		return " ~ "
	}
	return ""
}

// ComponentKind discriminates the variants of a selector component.
type ComponentKind int8

// Component kinds.
const (
	KindCombinator ComponentKind = iota
	KindUniversal
	KindLocalName
	KindID
	KindClass
	KindAttr
	KindState // state-dependent pseudo-class, including :link/:visited
	KindAnyLink
	KindLang
	KindDir
	KindRoot
	KindFirstChild
	KindLastChild
	KindNthChild
	KindPseudoElement // ::before / ::after
)

// AttrOp is the comparison operator of an attribute component.
type AttrOp int8

// Attribute operators.
const (
	AttrExists    AttrOp = iota // [attr]
	AttrEquals                  // [attr=v]
	AttrIncludes                // [attr~=v]
	AttrDashMatch               // [attr|=v]
	AttrPrefix                  // [attr^=v]
	AttrSuffix                  // [attr$=v]
	AttrSubstring               // [attr*=v]
)

// Component is one piece of a compiled selector: either a simple selector
// or a combinator. The payload fields are interpreted per kind.
type Component struct {
	Kind       ComponentKind
	Combinator Combinator           // KindCombinator
	Name       restyle.Atom         // local name, id, class, attribute name, lang, dir, pseudo-element name
	LowerName  restyle.Atom         // ASCII-lowercased Name (KindLocalName)
	Value      string               // attribute comparison value
	Op         AttrOp               // KindAttr
	States     restyle.ElementState // KindState
	NthA, NthB int                  // KindNthChild: an+b
}

// IsCombinator checks whether the component is a combinator.
func (c Component) IsCombinator() bool {
	return c.Kind == KindCombinator
}

func (c Component) String() string {
	switch c.Kind {
	case KindCombinator:
		return strings.TrimSpace(c.Combinator.String())
	case KindUniversal:
		return "*"
	case KindLocalName:
		return string(c.Name)
	case KindID:
		return "#" + string(c.Name)
	case KindClass:
		return "." + string(c.Name)
	case KindAttr:
		op := map[AttrOp]string{
			AttrEquals: "=", AttrIncludes: "~=", AttrDashMatch: "|=",
			AttrPrefix: "^=", AttrSuffix: "$=", AttrSubstring: "*=",
		}[c.Op]
		if c.Op == AttrExists {
			return "[" + string(c.Name) + "]"
		}
		return "[" + string(c.Name) + op + "\"" + c.Value + "\"]"
	case KindState:
		for _, name := range []string{"hover", "active", "focus", "enabled", "disabled",
			"checked", "indeterminate", "target", "fullscreen", "visited", "link"} {
			if c.States == restyle.StateForPseudoClass(name) {
				return ":" + name
			}
		}
		return ":?"
	case KindAnyLink:
		return ":any-link"
	case KindLang:
		return ":lang(" + string(c.Name) + ")"
	case KindDir:
		return ":dir(" + string(c.Name) + ")"
	case KindRoot:
		return ":root"
	case KindFirstChild:
		return ":first-child"
	case KindLastChild:
		return ":last-child"
	case KindNthChild:
		return ":nth-child(?)"
	case KindPseudoElement:
		return "::" + string(c.Name)
	}
	return "?"
}

// Selector is a compiled selector: a flat component sequence in
// subject-to-root order. Selectors are immutable after compilation and
// shared by every dependency that references them.
type Selector struct {
	components []Component
}

// Len returns the number of components, combinators included.
func (s *Selector) Len() int {
	return len(s.components)
}

// At returns the component at offset i. Offset 0 is the subject-most
// component.
func (s *Selector) At(i int) Component {
	return s.components[i]
}

// CombinatorAt returns the combinator at offset i, if the component at
// that offset is one.
func (s *Selector) CombinatorAt(i int) (Combinator, bool) {
	if i < 0 || i >= len(s.components) || !s.components[i].IsCombinator() {
		return NoCombinator, false
	}
	return s.components[i].Combinator, true
}

// Sequence is one compound of a selector, together with its offset and the
// combinator which connects it towards the subject. The subject compound
// has ToSubject == NoCombinator.
type Sequence struct {
	Offset     int
	Components []Component
	ToSubject  Combinator
}

// Sequences splits the selector into its compounds, subject first.
func (s *Selector) Sequences() []Sequence {
	var seqs []Sequence
	toSubject := NoCombinator
	start := 0
	for i := 0; i <= len(s.components); i++ {
		if i == len(s.components) || s.components[i].IsCombinator() {
			seqs = append(seqs, Sequence{
				Offset:     start,
				Components: s.components[start:i],
				ToSubject:  toSubject,
			})
			if i < len(s.components) {
				toSubject = s.components[i].Combinator
				start = i + 1
			}
		}
	}
	return seqs
}

// HasPseudoElement checks whether the subject compound addresses a
// pseudo-element box.
func (s *Selector) HasPseudoElement() bool {
	for _, c := range s.components {
		if c.IsCombinator() {
			break
		}
		if c.Kind == KindPseudoElement {
			return true
		}
	}
	return false
}

// String reconstructs a canonical source form, root-to-subject.
func (s *Selector) String() string {
	seqs := s.Sequences()
	var b strings.Builder
	for i := len(seqs) - 1; i >= 0; i-- {
		for _, c := range seqs[i].Components {
			b.WriteString(c.String())
		}
		if len(seqs[i].Components) == 0 {
			b.WriteString("*")
		}
		if seqs[i].ToSubject != NoCombinator {
			b.WriteString(seqs[i].ToSubject.String())
		}
	}
	return b.String()
}
