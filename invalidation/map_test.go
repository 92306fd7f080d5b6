package invalidation

import (
	"testing"

	"github.com/npillmayer/restyle"
	"github.com/npillmayer/restyle/selector"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

func parseSel(t *testing.T, source string) *selector.Selector {
	sel, err := selector.ParseOne(source)
	require.NoError(t, err, "selector %q", source)
	return sel
}

func TestDependencyNature(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	// '.a > .b ~ .c' compiles subject-to-root as: .c ~ .b > .a
	sel := parseSel(t, ".a > .b ~ .c")
	seqs := sel.Sequences()
	require.Len(t, seqs, 3)
	//
	subject := Dependency{Selector: sel, Offset: seqs[0].Offset}
	require.True(t, subject.AffectsSelf())
	require.False(t, subject.AffectsDescendants())
	require.False(t, subject.AffectsLaterSiblings())
	//
	sibling := Dependency{Selector: sel, Offset: seqs[1].Offset}
	require.False(t, sibling.AffectsSelf())
	require.False(t, sibling.AffectsDescendants())
	require.True(t, sibling.AffectsLaterSiblings())
	//
	ancestor := Dependency{Selector: sel, Offset: seqs[2].Offset}
	require.False(t, ancestor.AffectsSelf())
	require.True(t, ancestor.AffectsDescendants())
	require.False(t, ancestor.AffectsLaterSiblings())
}

func TestNoteSelectorBuckets(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	m := NewInvalidationMap()
	m.NoteSelector(parseSel(t, "#Nav .Item:hover"))
	m.NoteSelector(parseSel(t, "[data-role=footer] p"))
	m.NoteSelector(parseSel(t, "[class~=x]"))
	m.NoteSelector(parseSel(t, "p:lang(en)"))
	m.NoteSelector(parseSel(t, "a:any-link"))
	//
	require.Len(t, m.IDs["nav"], 1, "id bucket keys are lowercased")
	require.Len(t, m.Classes["item"], 1, "class bucket keys are lowercased")
	require.Equal(t, 1, m.StateAffecting.Len(), ":hover lands in the state map")
	// [data-role], :lang() and :any-link are attribute-backed
	require.Equal(t, 3, m.OtherAttrAffecting.Len())
	require.True(t, m.HasClassAttrSelectors, "[class~=x] sets the flag")
	require.False(t, m.HasIDAttrSelectors)
	//
	// the class dependency belongs to the subject compound of its selector
	dep := m.Classes["item"][0]
	require.True(t, dep.AffectsSelf())
	// the id dependency sits at an ancestor compound
	require.True(t, m.IDs["nav"][0].AffectsDescendants())
}

func TestInvalidationMapClear(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	m := NewInvalidationMap()
	m.NoteSelector(parseSel(t, "#a .b:hover [x]"))
	require.NotZero(t, m.Len())
	m.Clear()
	require.Zero(t, m.Len())
	require.Empty(t, m.IDs)
	require.Empty(t, m.Classes)
	require.Zero(t, m.StateAffecting.Len())
}

func TestSelectorMapBucketPriority(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	sm := NewSelectorMap[int]()
	insert := func(id int, source string) {
		sel := parseSel(t, source)
		sm.Insert(id, sel.Sequences()[0])
	}
	insert(1, "div#main.wide") // id wins over class and tag
	insert(2, "div.wide")      // class wins over tag
	insert(3, "div")           // tag bucket
	insert(4, ":hover")        // no identity, rest bucket
	require.Equal(t, 4, sm.Len())
	//
	lookup := func(el selector.Element) (hits []int) {
		sm.Lookup(el, restyle.NullAtom, nil, func(id int) bool {
			hits = append(hits, id)
			return true
		})
		return hits
	}
	div := fakeElement{local: "div"}
	require.ElementsMatch(t, []int{3, 4}, lookup(div))
	require.ElementsMatch(t, []int{2, 3, 4}, lookup(fakeElement{local: "div", classes: []restyle.Atom{"wide"}}))
	require.ElementsMatch(t, []int{1, 3, 4}, lookup(fakeElement{local: "div", id: "main"}))
	require.ElementsMatch(t, []int{4}, lookup(fakeElement{local: "span"}))
	//
	// pre-mutation identity participates via the additional arguments
	var hits []int
	sm.Lookup(div, "main", []restyle.Atom{"wide"}, func(id int) bool {
		hits = append(hits, id)
		return true
	})
	require.ElementsMatch(t, []int{1, 2, 3, 4}, hits)
}

// fakeElement is a minimal selector.Element for bucket tests.
type fakeElement struct {
	local   restyle.Atom
	id      restyle.Atom
	classes []restyle.Atom
}

func (e fakeElement) LocalName() restyle.Atom { return e.local }
func (e fakeElement) ID() restyle.Atom        { return e.id }

func (e fakeElement) HasClass(class restyle.Atom, cs restyle.CaseSensitivity) bool {
	for _, c := range e.classes {
		if c.Eq(class, cs) {
			return true
		}
	}
	return false
}

func (e fakeElement) EachClass(f func(class restyle.Atom)) {
	for _, c := range e.classes {
		f(c)
	}
}

func (e fakeElement) AttrValue(name restyle.Atom) (string, bool) { return "", false }
func (e fakeElement) State() restyle.ElementState                { return 0 }
func (e fakeElement) IsLink() bool                               { return false }
func (e fakeElement) IsRoot() bool                               { return false }
func (e fakeElement) ImplementedPseudoElement() restyle.Atom     { return restyle.NullAtom }
func (e fakeElement) ParentElement() selector.Element            { return nil }
func (e fakeElement) PrevSiblingElement() selector.Element       { return nil }
func (e fakeElement) NextSiblingElement() selector.Element       { return nil }
