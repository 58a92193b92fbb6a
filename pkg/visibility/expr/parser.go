package expr

import (
	"errors"
	"fmt"
)

// Grammar, lowest precedence first:
//
//	or      = and { "||" and }
//	and     = unary { "&&" unary }
//	unary   = "!" unary | primary
//	primary = "(" or ")" | ref [ cmp operand | "in" list ]
//	list    = "[" [ operand { "," operand } ] "]"

type node interface {
	eval(s scope) (bool, error)
}

type logical struct {
	op          tokenKind
	left, right node
}

type negation struct {
	inner node
}

// comparison tests a reference against one literal.
type comparison struct {
	ref  string
	op   tokenKind
	want operand
}

// membership is true when the reference matches any listed literal.
type membership struct {
	ref string
	set []operand
}

// presence is a bare reference evaluated for truthiness.
type presence struct {
	ref string
}

type operand struct {
	kind tokenKind
	text string
}

type parser struct {
	toks []token
	pos  int
}

// parse returns a nil node for a blank rule.
func parse(src string) (node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tokEOF {
		return nil, nil
	}
	n, err := p.or()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("visibility/expr: unexpected token %q at %d", tok.text, tok.pos)
	}
	return n, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) accept(kind tokenKind) bool {
	if p.peek().kind != kind {
		return false
	}
	p.pos++
	return true
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.accept(tokOr) {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = logical{op: tokOr, left: left, right: right}
	}
	return left, nil
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.accept(tokAnd) {
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = logical{op: tokAnd, left: left, right: right}
	}
	return left, nil
}

func (p *parser) unary() (node, error) {
	if p.accept(tokNot) {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return negation{inner: inner}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	if p.accept(tokLParen) {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.accept(tokRParen) {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}

	tok := p.peek()
	switch tok.kind {
	case tokIdent:
		p.pos++
	case tokEOF:
		return nil, errors.New("visibility/expr: incomplete expression")
	default:
		return nil, fmt.Errorf("visibility/expr: expected a reference at %d, got %q", tok.pos, tok.text)
	}

	switch op := p.peek().kind; op {
	case tokEq, tokNeq, tokLt, tokLte, tokGt, tokGte:
		p.pos++
		want, err := p.operand()
		if err != nil {
			return nil, err
		}
		if isOrdering(op) && (want.kind == tokTrue || want.kind == tokFalse || want.kind == tokNull) {
			return nil, fmt.Errorf("visibility/expr: %q cannot be ordered", want.text)
		}
		return comparison{ref: tok.text, op: op, want: want}, nil
	case tokIn:
		p.pos++
		set, err := p.list()
		if err != nil {
			return nil, err
		}
		return membership{ref: tok.text, set: set}, nil
	}
	return presence{ref: tok.text}, nil
}

func (p *parser) operand() (operand, error) {
	tok := p.peek()
	switch tok.kind {
	case tokString, tokNumber, tokTrue, tokFalse, tokNull:
		p.pos++
		return operand{kind: tok.kind, text: tok.text}, nil
	case tokIdent:
		// Unquoted words on the right hand side read as strings: value == yes.
		p.pos++
		return operand{kind: tokString, text: tok.text}, nil
	case tokEOF:
		return operand{}, errors.New("visibility/expr: missing literal")
	default:
		return operand{}, fmt.Errorf("visibility/expr: expected a literal at %d, got %q", tok.pos, tok.text)
	}
}

func (p *parser) list() ([]operand, error) {
	if !p.accept(tokLBracket) {
		return nil, errors.New("visibility/expr: 'in' expects a [list]")
	}
	var set []operand
	if p.accept(tokRBracket) {
		return set, nil
	}
	for {
		item, err := p.operand()
		if err != nil {
			return nil, err
		}
		set = append(set, item)
		if p.accept(tokRBracket) {
			return set, nil
		}
		if !p.accept(tokComma) {
			return nil, errors.New("visibility/expr: expected ',' or ']' in list")
		}
	}
}

func isOrdering(op tokenKind) bool {
	return op == tokLt || op == tokLte || op == tokGt || op == tokGte
}
