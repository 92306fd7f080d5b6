package douceuradapter_test

import (
	"strings"
	"testing"

	"github.com/npillmayer/restyle/cssom"
	"github.com/npillmayer/restyle/cssom/douceuradapter"
	"github.com/npillmayer/restyle/invalidation"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tyse/core/dimen"
	"golang.org/x/net/html"
)

func screenDevice() *cssom.Device {
	return cssom.NewDevice("screen", 800*dimen.PT, 600*dimen.PT)
}

func TestWrapRuleKinds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.cssom")
	defer teardown()
	//
	sheet, err := douceuradapter.Parse(`
p.lead { color: blue; margin-top: 15px !important }
@media print { nav { display: none } }
@keyframes spin { from { transform: rotate(0) } }
@font-face { font-family: "Test" }
`)
	if err != nil {
		t.Fatal(err)
	}
	if sheet.Empty() || !sheet.Enabled() {
		t.Fatal("expected a non-empty, enabled sheet")
	}
	var kinds []invalidation.RuleKind
	sheet.EachEffectiveRule(screenDevice(), func(r invalidation.Rule) {
		kinds = append(kinds, r.Kind())
	})
	want := []invalidation.RuleKind{
		invalidation.RuleStyle,
		invalidation.RuleMedia, // the group rule itself; its print-only children are skipped
		invalidation.RuleKeyframes,
		invalidation.RuleFontFace,
	}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d effective rules, got %d: %v", len(want), len(kinds), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("rule %d: expected kind %d, got %d", i, want[i], kinds[i])
		}
	}
}

func TestMediaGroupDescends(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.cssom")
	defer teardown()
	//
	sheet, err := douceuradapter.Parse(`@media screen { nav { display: none } }`)
	if err != nil {
		t.Fatal(err)
	}
	sawStyle := false
	sheet.EachEffectiveRule(screenDevice(), func(r invalidation.Rule) {
		if r.Kind() == invalidation.RuleStyle {
			sawStyle = true
			if r.Selectors() == nil {
				t.Error("nested style rule should have compiled selectors")
			}
		}
	})
	if !sawStyle {
		t.Error("matching @media group should yield its nested rules")
	}
}

func TestStyleRuleAccessors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.cssom")
	defer teardown()
	//
	sheet, err := douceuradapter.Parse(`p.lead, h1 { color: blue; margin-top: 15px !important }`)
	if err != nil {
		t.Fatal(err)
	}
	var rule invalidation.Rule
	sheet.EachEffectiveRule(screenDevice(), func(r invalidation.Rule) { rule = r })
	if rule == nil || rule.Kind() != invalidation.RuleStyle {
		t.Fatal("expected one style rule")
	}
	if sels := rule.Selectors(); len(sels) != 2 {
		t.Fatalf("expected 2 compiled selectors, got %d", len(sels))
	}
	dr := rule.(*douceuradapter.Rule)
	if len(dr.Properties()) != 2 {
		t.Errorf("expected 2 properties, got %v", dr.Properties())
	}
	if dr.Value("color") != "blue" {
		t.Errorf("expected color 'blue', got %q", dr.Value("color"))
	}
	if dr.IsImportant("color") || !dr.IsImportant("margin-top") {
		t.Error("importance flags are off")
	}
}

func TestUnparsableSelectorIsNil(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.cssom")
	defer teardown()
	//
	sheet, err := douceuradapter.Parse(`p:first-of-type { color: blue }`)
	if err != nil {
		t.Fatal(err)
	}
	sheet.EachEffectiveRule(screenDevice(), func(r invalidation.Rule) {
		if r.Kind() == invalidation.RuleStyle && r.Selectors() != nil {
			t.Error("an unsupported selector should leave Selectors nil")
		}
	})
}

func TestKeyframesName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.cssom")
	defer teardown()
	//
	sheet, err := douceuradapter.Parse(`@keyframes spin { from { transform: rotate(0) } }`)
	if err != nil {
		t.Fatal(err)
	}
	sheet.EachEffectiveRule(screenDevice(), func(r invalidation.Rule) {
		if r.Kind() == invalidation.RuleKeyframes && r.KeyframesName() != "spin" {
			t.Errorf("expected keyframes name 'spin', got %q", r.KeyframesName())
		}
	})
}

func TestExtractStyleElements(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.cssom")
	defer teardown()
	//
	doc := `<html><head>
<style>p { color: blue }</style>
<style media="print">nav { display: none }</style>
</head><body>
<style>.lead { font-weight: bold }</style>
<p class="lead">text</p>
</body></html>`
	h, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	sheets := douceuradapter.ExtractStyleElements(h)
	if len(sheets) != 3 {
		t.Fatalf("expected 3 embedded stylesheets, got %d", len(sheets))
	}
	if sheets[1].Media() != "print" {
		t.Errorf("expected media 'print' on the second sheet, got %q", sheets[1].Media())
	}
	if sheets[1].EffectiveForDevice(screenDevice()) {
		t.Error("a print-only sheet is not effective on screen")
	}
	if !sheets[0].EffectiveForDevice(screenDevice()) {
		t.Error("an unconditional sheet is effective everywhere")
	}
}
