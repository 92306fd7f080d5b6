package douceuradapter

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/restyle"
	"github.com/npillmayer/restyle/dom/styledtree"
	"github.com/npillmayer/restyle/invalidation"
	"github.com/npillmayer/restyle/selector"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CSSStyles is an adapter for interface invalidation.Stylesheet.
// The douceur stylesheet's rules are wrapped once; selector compilation
// happens at wrap time, so every consumer shares the compiled selectors.
type CSSStyles struct {
	enabled bool
	media   string
	rules   []*Rule
}

// Wrap a douceur css.Stylesheet into CSSStyles.
// The stylesheet is now managed by the wrapper.
func Wrap(sheet *css.Stylesheet) *CSSStyles {
	styles := &CSSStyles{enabled: true}
	for _, r := range sheet.Rules {
		styles.rules = append(styles.rules, wrapRule(r))
	}
	return styles
}

// Parse parses CSS source text into a wrapped stylesheet.
func Parse(source string) (*CSSStyles, error) {
	sheet, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	return Wrap(sheet), nil
}

var _ invalidation.Stylesheet = &CSSStyles{}

// Empty checks if this stylesheet contains any rules.
func (sheet *CSSStyles) Empty() bool {
	return len(sheet.rules) == 0
}

// Enabled is part of interface invalidation.Stylesheet.
func (sheet *CSSStyles) Enabled() bool {
	return sheet.enabled
}

// SetEnabled flips the sheet's enabled flag. Callers go through the
// stylist, which schedules the invalidations the flip requires.
func (sheet *CSSStyles) SetEnabled(enabled bool) {
	sheet.enabled = enabled
}

// Media returns the sheet-level media query, usually from a <style media>
// attribute. Empty means unconditional.
func (sheet *CSSStyles) Media() string {
	return sheet.media
}

// SetMedia sets the sheet-level media query.
func (sheet *CSSStyles) SetMedia(media string) {
	sheet.media = media
}

// EffectiveForDevice is part of interface invalidation.Stylesheet.
func (sheet *CSSStyles) EffectiveForDevice(d invalidation.Device) bool {
	return sheet.enabled && d.MediaQueryMatches(sheet.media)
}

// EachEffectiveRule is part of interface invalidation.Stylesheet. Group
// rules are entered when their condition holds for the device; @supports
// and @document conditions are not evaluated and descend unconditionally,
// erring towards invalidation.
func (sheet *CSSStyles) EachEffectiveRule(d invalidation.Device, f func(r invalidation.Rule)) {
	eachEffective(sheet.rules, d, f)
}

func eachEffective(rules []*Rule, d invalidation.Device, f func(r invalidation.Rule)) {
	for _, r := range rules {
		f(r)
		if len(r.children) == 0 {
			continue
		}
		switch r.kind {
		case invalidation.RuleMedia:
			if d.MediaQueryMatches(r.rule.Prelude) {
				eachEffective(r.children, d, f)
			}
		case invalidation.RuleSupports, invalidation.RuleDocument:
			// conditions not evaluated, err towards invalidation
			eachEffective(r.children, d, f)
		}
		// the blocks of @keyframes, @font-feature-values etc. are not
		// style rules
	}
}

// Rule is an adapter for interface invalidation.Rule.
type Rule struct {
	rule      *css.Rule
	kind      invalidation.RuleKind
	selectors []*selector.Selector
	children  []*Rule
}

func wrapRule(r *css.Rule) *Rule {
	rule := &Rule{rule: r, kind: kindOf(r)}
	if rule.kind == invalidation.RuleStyle {
		sels, err := selector.Parse(r.Prelude)
		if err != nil {
			// leave selectors nil; consumers treat the rule conservatively
			tracer().Infof("cannot compile selector %q: %v", r.Prelude, err)
		} else {
			rule.selectors = sels
		}
	}
	for _, ch := range r.Rules {
		rule.children = append(rule.children, wrapRule(ch))
	}
	return rule
}

func kindOf(r *css.Rule) invalidation.RuleKind {
	if r.Kind == css.QualifiedRule {
		return invalidation.RuleStyle
	}
	switch r.Name {
	case "@import":
		return invalidation.RuleImport
	case "@media":
		return invalidation.RuleMedia
	case "@supports":
		return invalidation.RuleSupports
	case "@document", "@-moz-document":
		return invalidation.RuleDocument
	case "@namespace":
		return invalidation.RuleNamespace
	case "@font-face":
		return invalidation.RuleFontFace
	case "@keyframes", "@-webkit-keyframes":
		return invalidation.RuleKeyframes
	case "@counter-style":
		return invalidation.RuleCounterStyle
	case "@page":
		return invalidation.RulePage
	case "@viewport":
		return invalidation.RuleViewport
	case "@font-feature-values":
		return invalidation.RuleFontFeatureValues
	}
	return invalidation.RuleUnknown
}

var _ invalidation.Rule = &Rule{}

// Kind is part of interface invalidation.Rule.
func (r *Rule) Kind() invalidation.RuleKind {
	return r.kind
}

// Selectors is part of interface invalidation.Rule.
func (r *Rule) Selectors() []*selector.Selector {
	return r.selectors
}

// KeyframesName is part of interface invalidation.Rule.
func (r *Rule) KeyframesName() restyle.Atom {
	return restyle.Atom(strings.TrimSpace(r.rule.Prelude))
}

// Prelude returns the rule's raw prelude / selector text.
func (r *Rule) Prelude() string {
	return r.rule.Prelude
}

// Properties returns the property keys of a rule, e.g. "margin-top".
func (r *Rule) Properties() []string {
	decl := r.rule.Declarations
	props := make([]string, 0, len(decl))
	for _, d := range decl {
		props = append(props, d.Property)
	}
	return props
}

// Value returns the property value for the given key with this rule,
// e.g. "15px".
func (r *Rule) Value(key string) styledtree.Property {
	for _, d := range r.rule.Declarations {
		if d.Property == key {
			return styledtree.Property(d.Value)
		}
	}
	return ""
}

// IsImportant returns true if a style key is marked as important ("!").
func (r *Rule) IsImportant(key string) bool {
	for _, d := range r.rule.Declarations {
		if d.Property == key {
			return d.Important
		}
	}
	return false
}

// ExtractStyleElements visits <head> and <body> elements in an HTML parse
// tree and searches for embedded <style>s. It returns the content of
// style-elements as wrapped stylesheets, with a <style media> attribute
// carried over as the sheet-level media query.
func ExtractStyleElements(htmldoc *html.Node) []*CSSStyles {
	head := findElement(atom.Head, htmldoc)
	body := findElement(atom.Body, htmldoc)
	sheets := extractStyles(head)
	sheets = append(sheets, extractStyles(body)...)
	return sheets
}

func extractStyles(h *html.Node) []*CSSStyles {
	if h == nil {
		return nil
	}
	var sheets []*CSSStyles
	for ch := h.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.DataAtom != atom.Style || ch.FirstChild == nil {
			continue
		}
		sheet, err := Parse(ch.FirstChild.Data)
		if err != nil {
			tracer().Errorf("cannot parse embedded stylesheet: %v", err)
			continue
		}
		for _, a := range ch.Attr {
			if a.Key == "media" {
				sheet.SetMedia(a.Val)
			}
		}
		sheets = append(sheets, sheet)
	}
	return sheets
}

func findElement(a atom.Atom, h *html.Node) *html.Node {
	if h == nil {
		return nil
	}
	if h.DataAtom == a {
		return h
	}
	for ch := h.FirstChild; ch != nil; ch = ch.NextSibling {
		if r := findElement(a, ch); r != nil {
			return r
		}
	}
	return nil
}
