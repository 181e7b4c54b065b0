// Package search implements boolean candidate search.
package search

import (
	"strings"
	"unicode"

	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// Expr is a parsed boolean query.
type Expr interface {
	// Match reports whether the lower-cased text satisfies the expression.
	Match(text string) bool
	String() string
}

type termExpr struct{ value string }

func (t termExpr) Match(text string) bool { return strings.Contains(text, t.value) }
func (t termExpr) String() string {
	if strings.ContainsAny(t.value, " \t") {
		return `"` + t.value + `"`
	}
	return t.value
}

type notExpr struct{ inner Expr }

func (n notExpr) Match(text string) bool { return !n.inner.Match(text) }
func (n notExpr) String() string         { return "NOT " + n.inner.String() }

type andExpr struct{ left, right Expr }

func (a andExpr) Match(text string) bool { return a.left.Match(text) && a.right.Match(text) }
func (a andExpr) String() string         { return "(" + a.left.String() + " AND " + a.right.String() + ")" }

type orExpr struct{ left, right Expr }

func (o orExpr) Match(text string) bool { return o.left.Match(text) || o.right.Match(text) }
func (o orExpr) String() string         { return "(" + o.left.String() + " OR " + o.right.String() + ")" }

type matchAll struct{}

func (matchAll) Match(string) bool { return true }
func (matchAll) String() string    { return "*" }

type tokenKind int

const (
	tokTerm tokenKind = iota
	tokAnd
	tokOr
	tokNot
	tokOpen
	tokClose
)

type token struct {
	kind  tokenKind
	value string
}

func lex(input string) ([]token, error) {
	var out []token
	rs := []rune(input)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			out = append(out, token{kind: tokOpen})
			i++
		case r == ')':
			out = append(out, token{kind: tokClose})
			i++
		case r == '"':
			end := i + 1
			for end < len(rs) && rs[end] != '"' {
				end++
			}
			if end >= len(rs) {
				return nil, shared.Invalid("Unterminated quote in search query")
			}
			phrase := strings.Join(strings.Fields(string(rs[i+1:end])), " ")
			if phrase != "" {
				out = append(out, token{kind: tokTerm, value: strings.ToLower(phrase)})
			}
			i = end + 1
		default:
			start := i
			for i < len(rs) && !unicode.IsSpace(rs[i]) && rs[i] != '(' && rs[i] != ')' && rs[i] != '"' {
				i++
			}
			word := string(rs[start:i])
			switch word {
			case "AND":
				out = append(out, token{kind: tokAnd})
			case "OR":
				out = append(out, token{kind: tokOr})
			case "NOT":
				out = append(out, token{kind: tokNot})
			default:
				out = append(out, token{kind: tokTerm, value: strings.ToLower(word)})
			}
		}
	}
	return out, nil
}

// Parse compiles a query. AND, OR and NOT are operators only when written in
// upper case; NOT binds tightest, then AND, then OR. Terms written next to
// each other are ORed. A blank query matches everything.
func Parse(input string) (Expr, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return matchAll{}, nil
	}
	p := &parser{toks: toks}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		if p.toks[p.pos].kind == tokClose {
			return nil, shared.Invalid("Unbalanced parentheses in search query")
		}
		return nil, shared.Invalid("Unexpected token in search query")
	}
	return expr, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func startsOperand(t token) bool {
	return t.kind == tokTerm || t.kind == tokNot || t.kind == tokOpen
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok {
			return left, nil
		}
		switch {
		case t.kind == tokOr:
			p.pos++
		case startsOperand(t):
		default:
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orExpr{left, right}
	}
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokAnd {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andExpr{left, right}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	t, ok := p.peek()
	if !ok {
		return nil, shared.Invalid("Search query ends with an operator")
	}
	switch t.kind {
	case tokNot:
		p.pos++
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notExpr{inner}, nil
	case tokOpen:
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokClose {
			return nil, shared.Invalid("Unbalanced parentheses in search query")
		}
		p.pos++
		return inner, nil
	case tokTerm:
		p.pos++
		return termExpr{t.value}, nil
	default:
		return nil, shared.Invalid("Unexpected operator in search query")
	}
}
