package selector

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/npillmayer/restyle"
	"github.com/speedata/css/scanner"
)

// ErrSyntax is wrapped by every error for malformed selector text.
var ErrSyntax = errors.New("selector syntax error")

// ErrUnsupported is wrapped by errors for selector components this engine
// does not recognize. Callers treat such selectors maximally conservative.
var ErrUnsupported = errors.New("unsupported selector component")

// Parse compiles a comma-separated selector list.
func Parse(source string) ([]*Selector, error) {
	toks, err := tokenize(source)
	if err != nil {
		return nil, err
	}
	var list []*Selector
	for _, group := range splitList(toks) {
		sel, err := compile(group)
		if err != nil {
			return nil, err
		}
		list = append(list, sel)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: empty selector", ErrSyntax)
	}
	return list, nil
}

// ParseOne compiles a single selector; a selector list is rejected.
func ParseOne(source string) (*Selector, error) {
	list, err := Parse(source)
	if err != nil {
		return nil, err
	}
	if len(list) != 1 {
		return nil, fmt.Errorf("%w: expected a single selector, got %d", ErrSyntax, len(list))
	}
	return list[0], nil
}

// --- tokenizing ------------------------------------------------------------

// tokenstream is a list of CSS tokens.
type tokenstream []*scanner.Token

func tokenize(source string) (tokenstream, error) {
	s := scanner.New(source)
	var toks tokenstream
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.EOF:
			return toks, nil
		case scanner.Error:
			return nil, fmt.Errorf("%w: %s", ErrSyntax, tok.Value)
		case scanner.Comment, scanner.CDO, scanner.CDC, scanner.BOM:
			continue
		}
		toks = append(toks, tok)
	}
}

func splitList(toks tokenstream) []tokenstream {
	var groups []tokenstream
	start := 0
	for i, t := range toks {
		if t.Type == scanner.Delim && t.Value == "," {
			groups = append(groups, toks[start:i])
			start = i + 1
		}
	}
	groups = append(groups, toks[start:])
	return groups
}

// --- compiling -------------------------------------------------------------

// compile builds a Selector from the token group of a single selector.
// Source order is root-to-subject; the compiled component sequence is
// subject-to-root, so compounds are collected first and flattened in
// reverse.
func compile(toks tokenstream) (*Selector, error) {
	p := &parser{toks: trimWS(toks)}
	if len(p.toks) == 0 {
		return nil, fmt.Errorf("%w: empty selector", ErrSyntax)
	}
	var compounds [][]Component
	var combinators []Combinator
	for {
		compound, err := p.parseCompound()
		if err != nil {
			return nil, err
		}
		compounds = append(compounds, compound)
		comb, more, err := p.parseCombinator()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		combinators = append(combinators, comb)
	}
	var comps []Component
	for i := len(compounds) - 1; i >= 0; i-- {
		comps = append(comps, compounds[i]...)
		if i > 0 {
			comps = append(comps, Component{Kind: KindCombinator, Combinator: combinators[i-1]})
		}
	}
	sel := &Selector{components: comps}
	tracer().Debugf("compiled selector %q, %d components", sel, sel.Len())
	return sel, nil
}

type parser struct {
	toks tokenstream
	pos  int
}

func (p *parser) peek() (*scanner.Token, bool) {
	if p.pos >= len(p.toks) {
		return nil, false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() (*scanner.Token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *parser) skipWS() bool {
	skipped := false
	for {
		t, ok := p.peek()
		if !ok || t.Type != scanner.S {
			return skipped
		}
		p.pos++
		skipped = true
	}
}

func isDelim(t *scanner.Token, val string) bool {
	return t != nil && t.Type == scanner.Delim && t.Value == val
}

// parseCompound consumes one compound of simple selectors. The compound
// must be non-empty.
func (p *parser) parseCompound() ([]Component, error) {
	var compound []Component
	for {
		t, ok := p.peek()
		if !ok || t.Type == scanner.S || isDelim(t, ">") || isDelim(t, "+") || isDelim(t, "~") {
			break
		}
		c, err := p.parseSimple()
		if err != nil {
			return nil, err
		}
		compound = append(compound, c...)
	}
	if len(compound) == 0 {
		return nil, fmt.Errorf("%w: missing compound selector", ErrSyntax)
	}
	return compound, nil
}

func (p *parser) parseSimple() ([]Component, error) {
	t, _ := p.next()
	switch {
	case t.Type == scanner.Ident:
		name := restyle.Atom(t.Value)
		return []Component{{Kind: KindLocalName, Name: name, LowerName: name.Lower()}}, nil
	case t.Type == scanner.Hash:
		return []Component{{Kind: KindID, Name: restyle.Atom(strings.TrimPrefix(t.Value, "#"))}}, nil
	case isDelim(t, "*"):
		return []Component{{Kind: KindUniversal}}, nil
	case isDelim(t, "."):
		id, ok := p.next()
		if !ok || id.Type != scanner.Ident {
			return nil, fmt.Errorf("%w: '.' must be followed by a class name", ErrSyntax)
		}
		return []Component{{Kind: KindClass, Name: restyle.Atom(id.Value)}}, nil
	case isDelim(t, ":"):
		return p.parsePseudo()
	case isDelim(t, "["):
		c, err := p.parseAttr()
		if err != nil {
			return nil, err
		}
		return []Component{c}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, t.Value)
}

func (p *parser) parsePseudo() ([]Component, error) {
	t, ok := p.next()
	if !ok {
		return nil, fmt.Errorf("%w: dangling ':'", ErrSyntax)
	}
	doubleColon := false
	if isDelim(t, ":") {
		doubleColon = true
		if t, ok = p.next(); !ok {
			return nil, fmt.Errorf("%w: dangling '::'", ErrSyntax)
		}
	}
	switch t.Type {
	case scanner.Ident:
		name := strings.ToLower(t.Value)
		if doubleColon || name == "before" || name == "after" {
			if name != "before" && name != "after" {
				return nil, fmt.Errorf("%w: pseudo-element ::%s", ErrUnsupported, name)
			}
			return []Component{{Kind: KindPseudoElement, Name: restyle.Atom(name)}}, nil
		}
		if state := restyle.StateForPseudoClass(name); state != 0 {
			return []Component{{Kind: KindState, States: state}}, nil
		}
		switch name {
		case "any-link":
			return []Component{{Kind: KindAnyLink}}, nil
		case "root":
			return []Component{{Kind: KindRoot}}, nil
		case "first-child":
			return []Component{{Kind: KindFirstChild}}, nil
		case "last-child":
			return []Component{{Kind: KindLastChild}}, nil
		}
		return nil, fmt.Errorf("%w: pseudo-class :%s", ErrUnsupported, name)
	case scanner.Function:
		name := strings.ToLower(strings.TrimSuffix(t.Value, "("))
		args, err := p.functionArgs()
		if err != nil {
			return nil, err
		}
		switch name {
		case "lang":
			return []Component{{Kind: KindLang, Name: restyle.Atom(args)}}, nil
		case "dir":
			return []Component{{Kind: KindDir, Name: restyle.Atom(strings.ToLower(args))}}, nil
		case "nth-child":
			a, b, err := parseNth(args)
			if err != nil {
				return nil, err
			}
			return []Component{{Kind: KindNthChild, NthA: a, NthB: b}}, nil
		}
		return nil, fmt.Errorf("%w: functional pseudo-class :%s(…)", ErrUnsupported, name)
	}
	return nil, fmt.Errorf("%w: ':%s'", ErrSyntax, t.Value)
}

// functionArgs consumes tokens up to the closing parenthesis and returns
// their concatenated, space-stripped text.
func (p *parser) functionArgs() (string, error) {
	var b strings.Builder
	for {
		t, ok := p.next()
		if !ok {
			return "", fmt.Errorf("%w: unterminated function arguments", ErrSyntax)
		}
		if isDelim(t, ")") {
			return strings.TrimSpace(b.String()), nil
		}
		if t.Type != scanner.S {
			b.WriteString(t.Value)
		}
	}
}

var nthPattern = regexp.MustCompile(`^(?:(odd)|(even)|([+-]?\d*)n(?:([+-]\d+))?|([+-]?\d+))$`)

func parseNth(arg string) (a int, b int, err error) {
	arg = strings.ToLower(strings.ReplaceAll(arg, " ", ""))
	m := nthPattern.FindStringSubmatch(arg)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: nth-child argument %q", ErrSyntax, arg)
	}
	switch {
	case m[1] != "": // odd
		return 2, 1, nil
	case m[2] != "": // even
		return 2, 0, nil
	case m[5] != "": // plain integer
		b, _ = strconv.Atoi(m[5])
		return 0, b, nil
	}
	switch m[3] {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		a, _ = strconv.Atoi(m[3])
	}
	if m[4] != "" {
		b, _ = strconv.Atoi(m[4])
	}
	return a, b, nil
}

func (p *parser) parseAttr() (Component, error) {
	p.skipWS()
	nameTok, ok := p.next()
	if !ok || nameTok.Type != scanner.Ident {
		return Component{}, fmt.Errorf("%w: attribute selector needs a name", ErrSyntax)
	}
	c := Component{Kind: KindAttr, Name: restyle.Atom(strings.ToLower(nameTok.Value)), Op: AttrExists}
	p.skipWS()
	t, ok := p.next()
	if !ok {
		return Component{}, fmt.Errorf("%w: unterminated attribute selector", ErrSyntax)
	}
	if isDelim(t, "]") {
		return c, nil
	}
	switch {
	case isDelim(t, "="):
		c.Op = AttrEquals
	case t.Type == scanner.Includes:
		c.Op = AttrIncludes
	case t.Type == scanner.DashMatch:
		c.Op = AttrDashMatch
	case t.Type == scanner.PrefixMatch:
		c.Op = AttrPrefix
	case t.Type == scanner.SuffixMatch:
		c.Op = AttrSuffix
	case t.Type == scanner.SubstringMatch:
		c.Op = AttrSubstring
	default:
		return Component{}, fmt.Errorf("%w: attribute operator %q", ErrSyntax, t.Value)
	}
	p.skipWS()
	val, ok := p.next()
	if !ok || (val.Type != scanner.Ident && val.Type != scanner.String && val.Type != scanner.Number) {
		return Component{}, fmt.Errorf("%w: attribute selector needs a comparison value", ErrSyntax)
	}
	c.Value = strings.Trim(val.Value, `"'`)
	p.skipWS()
	if t, ok = p.next(); !ok || !isDelim(t, "]") {
		return Component{}, fmt.Errorf("%w: unterminated attribute selector", ErrSyntax)
	}
	return c, nil
}

// parseCombinator consumes the combinator between two compounds. It
// reports more == false when the selector text is exhausted.
func (p *parser) parseCombinator() (Combinator, bool, error) {
	sawWS := p.skipWS()
	t, ok := p.peek()
	if !ok {
		return NoCombinator, false, nil
	}
	switch {
	case isDelim(t, ">"):
		p.pos++
		p.skipWS()
		return Child, true, nil
	case isDelim(t, "+"):
		p.pos++
		p.skipWS()
		return NextSibling, true, nil
	case isDelim(t, "~"):
		p.pos++
		p.skipWS()
		return LaterSibling, true, nil
	case sawWS:
		return Descendant, true, nil
	}
	return NoCombinator, false, fmt.Errorf("%w: unexpected %q", ErrSyntax, t.Value)
}

func trimWS(toks tokenstream) tokenstream {
	for len(toks) > 0 && toks[0].Type == scanner.S {
		toks = toks[1:]
	}
	for len(toks) > 0 && toks[len(toks)-1].Type == scanner.S {
		toks = toks[:len(toks)-1]
	}
	return toks
}
