package selector_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/restyle"
	"github.com/npillmayer/restyle/dom/styledtree"
	"github.com/npillmayer/restyle/selector"
	"github.com/npillmayer/restyle/tree"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"golang.org/x/net/html"
)

const testDoc = `<html lang="en-US"><body>
<div id="main" class="content wide">
  <p class="lead">first</p>
  <p>second <a href="x" class="ext">link</a></p>
  <ul><li>one</li><li>two</li><li>three</li></ul>
</div>
<div data-role="footer">footer</div>
</body></html>`

func buildFixture(t *testing.T) *styledtree.StyNode {
	h, err := html.Parse(strings.NewReader(testDoc))
	if err != nil {
		t.Fatalf("cannot parse test document: %v", err)
	}
	root := styledtree.BuildTree(h)
	if root == nil {
		t.Fatal("no styled tree built")
	}
	return root
}

func TestParseRoundtrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.selector")
	defer teardown()
	//
	cases := []struct {
		source string
		length int // component count, combinators included
	}{
		{"p", 1},
		{"div p", 3},
		{"div > p.lead", 4},
		{"#main .wide", 3},
		{"ul li + li", 5},
		{"a[href^='x']:visited", 3},
		{"*", 1},
		{":root > body", 3},
	}
	for _, c := range cases {
		sel, err := selector.ParseOne(c.source)
		if err != nil {
			t.Errorf("cannot parse %q: %v", c.source, err)
			continue
		}
		if sel.Len() != c.length {
			t.Errorf("%q: expected %d components, got %d (%s)", c.source, c.length, sel.Len(), sel)
		}
	}
}

func TestParseList(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.selector")
	defer teardown()
	//
	list, err := selector.Parse("h1, h2, .title")
	if err != nil {
		t.Fatalf("cannot parse selector list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 selectors, got %d", len(list))
	}
	if _, err = selector.ParseOne("h1, h2"); err == nil {
		t.Error("ParseOne should reject a selector list")
	}
}

func TestParseErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.selector")
	defer teardown()
	//
	for _, source := range []string{"", "div >", "> p", "p..x", "[=v]", "p:"} {
		if _, err := selector.Parse(source); err == nil {
			t.Errorf("expected a syntax error for %q", source)
		} else if !errors.Is(err, selector.ErrSyntax) && !errors.Is(err, selector.ErrUnsupported) {
			t.Errorf("error for %q should wrap a sentinel, is %v", source, err)
		}
	}
	if _, err := selector.Parse("p:first-of-type"); !errors.Is(err, selector.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported for :first-of-type, got %v", err)
	}
}

func TestSequences(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.selector")
	defer teardown()
	//
	sel, err := selector.ParseOne("div > p ~ a.ext")
	if err != nil {
		t.Fatal(err)
	}
	seqs := sel.Sequences()
	if len(seqs) != 3 {
		t.Fatalf("expected 3 compounds, got %d", len(seqs))
	}
	if seqs[0].Offset != 0 || seqs[0].ToSubject != selector.NoCombinator {
		t.Error("subject compound should be first with no combinator")
	}
	if seqs[1].ToSubject != selector.LaterSibling || seqs[2].ToSubject != selector.Child {
		t.Errorf("combinators towards the subject are off: %v %v", seqs[1].ToSubject, seqs[2].ToSubject)
	}
}

// TestMatchAgainstCascadia re-checks our matcher against cascadia for
// selectors both engines understand.
func TestMatchAgainstCascadia(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.selector")
	defer teardown()
	//
	root := buildFixture(t)
	sources := []string{
		"p", "div p", "div > p", "p + p", "li ~ li",
		"#main", "#main .lead", ".content.wide", "*",
		"[data-role]", "[data-role=footer]", "a[href^='x']",
		"li:first-child", "li:last-child", "li:nth-child(2)",
		"li:nth-child(odd)", "body > div:nth-child(2n)",
		":root", "p a.ext",
	}
	ctx := selector.NewContext(restyle.NoQuirks, selector.AllLinksUnvisited)
	for _, source := range sources {
		sel, err := selector.ParseOne(source)
		if err != nil {
			t.Errorf("cannot parse %q: %v", source, err)
			continue
		}
		oracle, err := cascadia.Compile(source)
		if err != nil {
			t.Errorf("cascadia cannot parse %q: %v", source, err)
			continue
		}
		tree.Walk(&root.Node, -1, func(n *tree.Node[*styledtree.StyNode], depth int) bool {
			el := styledtree.Node(n)
			got := selector.Matches(sel, 0, el, ctx)
			want := oracle.Match(el.HTMLNode())
			if got != want {
				t.Errorf("%q on <%s id=%q>: got %v, cascadia says %v",
					source, el.LocalName(), el.ID(), got, want)
			}
			return true
		}, nil)
	}
}

func TestMatchAnchoredOffset(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.selector")
	defer teardown()
	//
	root := buildFixture(t)
	sel, err := selector.ParseOne("div.content a")
	if err != nil {
		t.Fatal(err)
	}
	// anchor at the ancestor compound: offset of 'div.content'
	seqs := sel.Sequences()
	anchor := seqs[len(seqs)-1].Offset
	var main *styledtree.StyNode
	tree.Walk(&root.Node, -1, func(n *tree.Node[*styledtree.StyNode], depth int) bool {
		if styledtree.Node(n).ID() == "main" {
			main = styledtree.Node(n)
		}
		return main == nil
	}, nil)
	if main == nil {
		t.Fatal("expected to find #main")
	}
	ctx := selector.NewContext(restyle.NoQuirks, selector.AllLinksUnvisited)
	if !selector.Matches(sel, anchor, main, ctx) {
		t.Error("#main should match the anchored 'div.content' compound")
	}
}

func TestMatchState(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.selector")
	defer teardown()
	//
	root := buildFixture(t)
	var link *styledtree.StyNode
	tree.Walk(&root.Node, -1, func(n *tree.Node[*styledtree.StyNode], depth int) bool {
		if styledtree.Node(n).IsLink() {
			link = styledtree.Node(n)
		}
		return link == nil
	}, nil)
	if link == nil {
		t.Fatal("expected to find a link")
	}
	hover, _ := selector.ParseOne("a:hover")
	ctx := selector.NewContext(restyle.NoQuirks, selector.AllLinksUnvisited)
	if selector.Matches(hover, 0, link, ctx) {
		t.Error("link should not match :hover yet")
	}
	link.AddState(restyle.StateHover)
	if !selector.Matches(hover, 0, link, ctx) {
		t.Error("link should match :hover now")
	}
}

func TestMatchVisitedHandling(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.selector")
	defer teardown()
	//
	root := buildFixture(t)
	var link *styledtree.StyNode
	tree.Walk(&root.Node, -1, func(n *tree.Node[*styledtree.StyNode], depth int) bool {
		if styledtree.Node(n).IsLink() {
			link = styledtree.Node(n)
		}
		return link == nil
	}, nil)
	visited, _ := selector.ParseOne("a:visited")
	unvisited, _ := selector.ParseOne("a:link")
	//
	ctx := selector.NewContext(restyle.NoQuirks, selector.AllLinksUnvisited)
	if selector.Matches(visited, 0, link, ctx) {
		t.Error(":visited must not match under AllLinksUnvisited")
	}
	if !ctx.RelevantLinkFound {
		t.Error("evaluating :visited on a link should flag the relevant link")
	}
	if !selector.Matches(unvisited, 0, link, ctx) {
		t.Error(":link should match under AllLinksUnvisited")
	}
	//
	ctx = selector.NewContext(restyle.NoQuirks, selector.RelevantLinkVisited)
	if !selector.Matches(visited, 0, link, ctx) {
		t.Error(":visited should match under RelevantLinkVisited")
	}
	if selector.Matches(unvisited, 0, link, ctx) {
		t.Error(":link must not match under RelevantLinkVisited")
	}
}

func TestMatchLangInherited(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.selector")
	defer teardown()
	//
	root := buildFixture(t)
	sel, err := selector.ParseOne("p:lang(en)")
	if err != nil {
		t.Fatal(err)
	}
	ctx := selector.NewContext(restyle.NoQuirks, selector.AllLinksUnvisited)
	found := 0
	tree.Walk(&root.Node, -1, func(n *tree.Node[*styledtree.StyNode], depth int) bool {
		if selector.Matches(sel, 0, styledtree.Node(n), ctx) {
			found++
		}
		return true
	}, nil)
	if found != 2 { // both <p> inherit lang="en-US" from <html>
		t.Errorf("expected 2 matches for p:lang(en), got %d", found)
	}
}

func TestQuirksModeClassMatching(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.selector")
	defer teardown()
	//
	root := buildFixture(t)
	sel, err := selector.ParseOne(".LEAD")
	if err != nil {
		t.Fatal(err)
	}
	var lead *styledtree.StyNode
	tree.Walk(&root.Node, -1, func(n *tree.Node[*styledtree.StyNode], depth int) bool {
		if styledtree.Node(n).HasClass("lead", restyle.CaseSensitive) {
			lead = styledtree.Node(n)
		}
		return lead == nil
	}, nil)
	if lead == nil {
		t.Fatal("expected to find p.lead")
	}
	if selector.Matches(sel, 0, lead, selector.NewContext(restyle.NoQuirks, selector.AllLinksUnvisited)) {
		t.Error("class matching should be case-sensitive in standards mode")
	}
	if !selector.Matches(sel, 0, lead, selector.NewContext(restyle.Quirks, selector.AllLinksUnvisited)) {
		t.Error("class matching should fold case in quirks mode")
	}
}
