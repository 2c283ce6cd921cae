// github.com/orofarne/mapnik - visual regression tests for map styles
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package style

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Filter selects features by their properties. The zero Filter matches
// every feature.
//
// Filters are comparisons "[field] op value", with op one of
// =, !=, <>, <, <=, >, >= (or eq, ne, lt, le, gt, ge), combined using
// "and", "or" and parentheses.  Values are numbers or quoted strings.
type Filter struct {
	expr node
}

// ParseFilter parses a filter expression. An empty string gives the
// filter which matches everything.
func ParseFilter(s string) (Filter, error) {
	toks, err := tokenize(s)
	if err != nil {
		return Filter{}, err
	}
	if len(toks) == 0 {
		return Filter{}, nil
	}
	p := &parser{toks: toks}
	expr, err := p.parseOr()
	if err != nil {
		return Filter{}, fmt.Errorf("filter %q: %w", s, err)
	}
	if p.pos < len(p.toks) {
		return Filter{}, fmt.Errorf("filter %q: unexpected %q", s, p.toks[p.pos].text)
	}
	return Filter{expr: expr}, nil
}

// IsZero reports whether f matches everything.
func (f Filter) IsZero() bool {
	return f.expr == nil
}

// Match reports whether a feature with the given properties passes f.
func (f Filter) Match(props map[string]any) bool {
	if f.expr == nil {
		return true
	}
	return f.expr.eval(props)
}

// String returns the canonical form of the filter.
func (f Filter) String() string {
	if f.expr == nil {
		return ""
	}
	return f.expr.String()
}

type node interface {
	eval(props map[string]any) bool
	String() string
}

type comparison struct {
	field string
	op    string
	value any // float64 or string
}

func (c *comparison) eval(props map[string]any) bool {
	v, ok := props[c.field]
	if !ok || v == nil {
		return c.op == "!="
	}

	var d int
	if want, isNum := c.value.(float64); isNum {
		got, ok := toFloat(v)
		if !ok {
			return c.op == "!="
		}
		switch {
		case got < want:
			d = -1
		case got > want:
			d = 1
		}
	} else {
		d = strings.Compare(fmt.Sprint(v), c.value.(string))
	}

	switch c.op {
	case "=":
		return d == 0
	case "!=":
		return d != 0
	case "<":
		return d < 0
	case "<=":
		return d <= 0
	case ">":
		return d > 0
	case ">=":
		return d >= 0
	}
	return false
}

func (c *comparison) String() string {
	var val string
	switch v := c.value.(type) {
	case float64:
		val = strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		val = "'" + strings.ReplaceAll(v, "'", "\\'") + "'"
	}
	return "[" + c.field + "] " + c.op + " " + val
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		x, err := strconv.ParseFloat(v, 64)
		return x, err == nil
	}
	return 0, false
}

type logical struct {
	and  bool
	a, b node
}

func (l *logical) eval(props map[string]any) bool {
	if l.and {
		return l.a.eval(props) && l.b.eval(props)
	}
	return l.a.eval(props) || l.b.eval(props)
}

func (l *logical) String() string {
	if !l.and {
		return l.a.String() + " or " + l.b.String()
	}
	return andOperand(l.a) + " and " + andOperand(l.b)
}

func andOperand(n node) string {
	if l, ok := n.(*logical); ok && !l.and {
		return "(" + l.String() + ")"
	}
	return n.String()
}

type tokenKind int

const (
	tokField tokenKind = iota
	tokNumber
	tokString
	tokOp
	tokWord
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

var opAliases = map[string]string{
	"=": "=", "==": "=", "eq": "=",
	"!=": "!=", "<>": "!=", "ne": "!=", "neq": "!=",
	"<": "<", "lt": "<",
	"<=": "<=", "le": "<=",
	">": ">", "gt": ">",
	">=": ">=", "ge": ">=",
}

func tokenize(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("filter %q: unterminated field name", s)
			}
			toks = append(toks, token{tokField, s[i+1 : i+end]})
			i += end + 1
		case c == '\'' || c == '"':
			var b strings.Builder
			j := i + 1
			for ; j < len(s) && s[j] != c; j++ {
				if s[j] == '\\' && j+1 < len(s) {
					j++
				}
				b.WriteByte(s[j])
			}
			if j >= len(s) {
				return nil, fmt.Errorf("filter %q: unterminated string", s)
			}
			toks = append(toks, token{tokString, b.String()})
			i = j + 1
		case strings.IndexByte("=!<>", c) >= 0:
			j := i + 1
			for j < len(s) && strings.IndexByte("=<>", s[j]) >= 0 {
				j++
			}
			toks = append(toks, token{tokOp, s[i:j]})
			i = j
		case c == '&' || c == '|':
			if i+1 >= len(s) || s[i+1] != c {
				return nil, fmt.Errorf("filter %q: unexpected %q", s, c)
			}
			word := "and"
			if c == '|' {
				word = "or"
			}
			toks = append(toks, token{tokWord, word})
			i += 2
		case c == '-' || c == '.' || (c >= '0' && c <= '9'):
			j := i + 1
			for j < len(s) && (s[j] == '.' || s[j] == 'e' || s[j] == 'E' || (s[j] >= '0' && s[j] <= '9') ||
				((s[j] == '-' || s[j] == '+') && (s[j-1] == 'e' || s[j-1] == 'E'))) {
				j++
			}
			toks = append(toks, token{tokNumber, s[i:j]})
			i = j
		case unicode.IsLetter(rune(c)):
			j := i + 1
			for j < len(s) && (unicode.IsLetter(rune(s[j])) || s[j] == '_') {
				j++
			}
			toks = append(toks, token{tokWord, strings.ToLower(s[i:j])})
			i = j
		default:
			return nil, fmt.Errorf("filter %q: unexpected %q", s, c)
		}
	}
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peekWord(w string) bool {
	return p.pos < len(p.toks) && p.toks[p.pos].kind == tokWord && p.toks[p.pos].text == w
}

func (p *parser) parseOr() (node, error) {
	a, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peekWord("or") {
		p.pos++
		b, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		a = &logical{a: a, b: b}
	}
	return a, nil
}

func (p *parser) parseAnd() (node, error) {
	a, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.peekWord("and") {
		p.pos++
		b, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		a = &logical{and: true, a: a, b: b}
	}
	return a, nil
}

func (p *parser) parseTerm() (node, error) {
	if p.pos >= len(p.toks) {
		return nil, fmt.Errorf("unexpected end of expression")
	}
	t := p.toks[p.pos]
	if t.kind == tokLParen {
		p.pos++
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.toks) || p.toks[p.pos].kind != tokRParen {
			return nil, fmt.Errorf("missing ')'")
		}
		p.pos++
		return n, nil
	}

	if t.kind != tokField {
		return nil, fmt.Errorf("expected [field], got %q", t.text)
	}
	if p.pos+2 >= len(p.toks) {
		return nil, fmt.Errorf("incomplete comparison after [%s]", t.text)
	}
	opTok, valTok := p.toks[p.pos+1], p.toks[p.pos+2]
	if opTok.kind != tokOp && opTok.kind != tokWord {
		return nil, fmt.Errorf("expected operator after [%s], got %q", t.text, opTok.text)
	}
	op, ok := opAliases[opTok.text]
	if !ok {
		return nil, fmt.Errorf("unknown operator %q", opTok.text)
	}

	c := &comparison{field: t.text, op: op}
	switch valTok.kind {
	case tokNumber:
		x, err := strconv.ParseFloat(valTok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", valTok.text)
		}
		c.value = x
	case tokString:
		c.value = valTok.text
	case tokWord:
		// unquoted words such as true/false compare as strings
		c.value = valTok.text
	default:
		return nil, fmt.Errorf("expected value, got %q", valTok.text)
	}
	p.pos += 3
	return c, nil
}
