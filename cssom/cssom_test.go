package cssom_test

import (
	"strings"
	"testing"

	"github.com/npillmayer/restyle"
	"github.com/npillmayer/restyle/cssom"
	"github.com/npillmayer/restyle/cssom/douceuradapter"
	"github.com/npillmayer/restyle/dom/styledtree"
	"github.com/npillmayer/restyle/tree"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tyse/core/dimen"
	"golang.org/x/net/html"
)

// px converts CSS pixels to device units (96 px per inch, 72 pt per inch).
func px(f float64) dimen.DU {
	return dimen.DU(f * 0.75 * float64(dimen.PT))
}

func TestDeviceMediaQueries(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.cssom")
	defer teardown()
	//
	device := cssom.NewDevice("screen", px(800), px(600))
	cases := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"all", true},
		{"screen", true},
		{"SCREEN", true},
		{"print", false},
		{"not print", true},
		{"only screen", true},
		{"print, screen", true},
		{"screen and (min-width: 600px)", true},
		{"screen and (min-width: 900px)", false},
		{"screen and (max-width: 900px)", true},
		{"(max-height: 500px)", false},
		{"(width: 800px)", true},
		{"(min-width: 7in)", true},         // 800px = 8.33in
		{"(orientation: landscape)", true}, // unsupported feature errs towards matching
	}
	for _, c := range cases {
		if got := device.MediaQueryMatches(c.query); got != c.want {
			t.Errorf("media query %q: got %v, want %v", c.query, got, c.want)
		}
	}
}

func TestDeviceAnimationNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.cssom")
	defer teardown()
	//
	device := cssom.NewDevice("screen", px(800), px(600))
	if !device.AnimationNameMayBeReferenced("spin") {
		t.Error("without a registry, every name may be referenced")
	}
	device.RegisterAnimationName("Spin")
	if !device.AnimationNameMayBeReferenced("spin") {
		t.Error("registered names fold case")
	}
	if device.AnimationNameMayBeReferenced("wobble") {
		t.Error("unregistered names are not referenced")
	}
}

const docWithStyles = `<html><head>
<style>p { color: blue } .lead { font-weight: bold }</style>
</head><body>
<div id="main"><p class="lead">first</p><p>second</p></div>
<nav id="menu"><a href="x">home</a></nav>
</body></html>`

func buildStyledDoc(t *testing.T) (*styledtree.StyNode, *cssom.Stylist) {
	h, err := html.Parse(strings.NewReader(docWithStyles))
	if err != nil {
		t.Fatal(err)
	}
	root := styledtree.BuildTree(h)
	stylist := cssom.NewStylist(cssom.NewDevice("screen", px(800), px(600)), restyle.NoQuirks)
	for _, sheet := range douceuradapter.ExtractStyleElements(h) {
		stylist.AppendStylesheet(sheet)
	}
	// flushing over the still-unstyled tree is a no-op
	stylist.FlushStylesheetInvalidations(root, styledtree.NewSnapshotMap())
	tree.Walk(&root.Node, -1, func(n *tree.Node[*styledtree.StyNode], depth int) bool {
		styledtree.Node(n).MutateStyleData() // simulate the initial style pass
		return true
	}, nil)
	return root, stylist
}

// clearHints simulates a style traversal consuming all restyle hints.
func clearHints(root *styledtree.StyNode) {
	tree.Walk(&root.Node, -1, func(n *tree.Node[*styledtree.StyNode], depth int) bool {
		if sn := styledtree.Node(n); sn.HasStyleData() {
			sn.StyleData().Hint = 0
			sn.SetDirtyDescendants(false)
		}
		return true
	}, nil)
}

func findNode(root *styledtree.StyNode, match func(*styledtree.StyNode) bool) *styledtree.StyNode {
	var found *styledtree.StyNode
	tree.Walk(&root.Node, -1, func(n *tree.Node[*styledtree.StyNode], depth int) bool {
		if found == nil && match(styledtree.Node(n)) {
			found = styledtree.Node(n)
		}
		return found == nil
	}, nil)
	return found
}

func TestStylistElementMutation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.cssom")
	defer teardown()
	//
	root, stylist := buildStyledDoc(t)
	p := findNode(root, func(sn *styledtree.StyNode) bool {
		return sn.LocalName() == "p" && !sn.HasClass("lead", restyle.CaseSensitive)
	})
	if p == nil {
		t.Fatal("expected to find the second <p>")
	}
	snapshots := styledtree.NewSnapshotMap()
	snapshots.Snapshot(p).NoteAttributeChange("class")
	p.HTMLNode().Attr = append(p.HTMLNode().Attr, html.Attribute{Key: "class", Val: "lead"})
	//
	if !stylist.InvalidateForMutation(p, snapshots) {
		t.Fatal("adding class 'lead' should invalidate via the .lead rule")
	}
	if !p.StyleData().Hint.ContainsSelf() {
		t.Error("mutated <p> should carry a self hint")
	}
}

func TestStylistSheetAppendAndFlush(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.cssom")
	defer teardown()
	//
	root, stylist := buildStyledDoc(t)
	gen := stylist.Generation()
	sheet, err := douceuradapter.Parse(`#menu a { color: red }`)
	if err != nil {
		t.Fatal(err)
	}
	stylist.AppendStylesheet(sheet)
	if stylist.Generation() != gen+1 {
		t.Error("appending a sheet should bump the generation")
	}
	if !stylist.HasPendingInvalidations() {
		t.Fatal("appending a sheet should schedule invalidations")
	}
	if !stylist.FlushStylesheetInvalidations(root, styledtree.NewSnapshotMap()) {
		t.Fatal("flush should invalidate")
	}
	menu := findNode(root, func(sn *styledtree.StyNode) bool { return sn.ID() == "menu" })
	if hint := menu.StyleData().Hint; !hint.ContainsSelf() || !hint.ContainsDescendants() {
		t.Errorf("#menu should get a subtree hint for the scoped rule, has %v", hint)
	}
	main := findNode(root, func(sn *styledtree.StyNode) bool { return sn.ID() == "main" })
	if !main.StyleData().Hint.IsEmpty() {
		t.Error("#main is outside the invalidated scope")
	}
	if stylist.HasPendingInvalidations() {
		t.Error("flush should drain the pending set")
	}
}

func TestStylistToggle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.cssom")
	defer teardown()
	//
	root, stylist := buildStyledDoc(t)
	sheet, err := douceuradapter.Parse(`.lead { color: green }`)
	if err != nil {
		t.Fatal(err)
	}
	stylist.AppendStylesheet(sheet)
	stylist.FlushStylesheetInvalidations(root, styledtree.NewSnapshotMap())
	clearHints(root)
	//
	// disabling must schedule the same keys, collected while the sheet is
	// still effective
	stylist.ToggleStylesheet(sheet, false)
	if sheet.Enabled() {
		t.Fatal("sheet should be disabled")
	}
	if !stylist.HasPendingInvalidations() {
		t.Fatal("disabling a sheet should schedule invalidations")
	}
	if !stylist.FlushStylesheetInvalidations(root, styledtree.NewSnapshotMap()) {
		t.Fatal("flush should invalidate")
	}
	lead := findNode(root, func(sn *styledtree.StyNode) bool {
		return sn.HasClass("lead", restyle.CaseSensitive)
	})
	if !lead.StyleData().Hint.ContainsSelf() {
		t.Error(".lead element should be invalidated by the toggle")
	}
	//
	// toggling to the same state is a no-op
	gen := stylist.Generation()
	stylist.ToggleStylesheet(sheet, false)
	if stylist.Generation() != gen {
		t.Error("no-op toggle should not bump the generation")
	}
}

func TestStylistRemoveSheet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.cssom")
	defer teardown()
	//
	root, stylist := buildStyledDoc(t)
	sheet, err := douceuradapter.Parse(`p { margin: 0 }`)
	if err != nil {
		t.Fatal(err)
	}
	stylist.AppendStylesheet(sheet)
	stylist.FlushStylesheetInvalidations(root, styledtree.NewSnapshotMap())
	clearHints(root)
	count := len(stylist.Stylesheets())
	//
	stylist.RemoveStylesheet(sheet)
	if len(stylist.Stylesheets()) != count-1 {
		t.Fatal("sheet should be removed from the cascade")
	}
	if !stylist.FlushStylesheetInvalidations(root, styledtree.NewSnapshotMap()) {
		t.Fatal("removal should invalidate the <p> elements")
	}
	p := findNode(root, func(sn *styledtree.StyNode) bool { return sn.LocalName() == "p" })
	if !p.StyleData().Hint.ContainsSelf() {
		t.Error("<p> should be invalidated by the removal")
	}
}
