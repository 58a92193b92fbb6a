package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokTrue
	tokFalse
	tokNull
	tokIn
	tokEq
	tokNeq
	tokLt
	tokLte
	tokGt
	tokGte
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// Two byte operators are matched before single byte ones.
var punctuation = map[string]tokenKind{
	"==": tokEq,
	"!=": tokNeq,
	"<=": tokLte,
	">=": tokGte,
	"&&": tokAnd,
	"||": tokOr,
	"<":  tokLt,
	">":  tokGt,
	"!":  tokNot,
	"(":  tokLParen,
	")":  tokRParen,
	"[":  tokLBracket,
	"]":  tokRBracket,
	",":  tokComma,
}

var keywords = map[string]tokenKind{
	"true":  tokTrue,
	"false": tokFalse,
	"null":  tokNull,
	"nil":   tokNull,
	"in":    tokIn,
}

type lexer struct {
	src string
	pos int
}

// lex splits a rule into tokens. The slice always ends with tokEOF.
func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	var out []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.kind == tokEOF {
			return out, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	start := l.pos
	if start >= len(l.src) {
		return token{kind: tokEOF, pos: start}, nil
	}

	ch := l.src[start]
	switch {
	case ch == '"' || ch == '\'':
		text, err := l.quoted(ch)
		if err != nil {
			return token{}, err
		}
		return token{kind: tokString, text: text, pos: start}, nil
	case isWordByte(ch):
		return l.word(), nil
	}

	for _, width := range []int{2, 1} {
		if start+width > len(l.src) {
			continue
		}
		if kind, ok := punctuation[l.src[start:start+width]]; ok {
			l.pos += width
			return token{kind: kind, text: l.src[start:l.pos], pos: start}, nil
		}
	}

	switch ch {
	case '=', '&', '|':
		return token{}, fmt.Errorf("visibility/expr: unexpected %q at %d; use %q", ch, start, string([]byte{ch, ch}))
	}
	return token{}, fmt.Errorf("visibility/expr: unexpected %q at %d", ch, start)
}

// word reads an identifier, keyword or number.
func (l *lexer) word() token {
	start := l.pos
	for l.pos < len(l.src) && isWordByte(l.src[l.pos]) {
		l.pos++
	}
	text := l.src[start:l.pos]
	if kind, ok := keywords[strings.ToLower(text)]; ok {
		return token{kind: kind, text: strings.ToLower(text), pos: start}
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return token{kind: tokNumber, text: text, pos: start}
	}
	return token{kind: tokIdent, text: text, pos: start}
}

// quoted reads a string literal. Single quoted bodies are rewritten into
// double quoted form so strconv handles the escapes for both.
func (l *lexer) quoted(quote byte) (string, error) {
	l.pos++
	start := l.pos
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case quote:
			body := l.src[start:l.pos]
			l.pos++
			if quote == '\'' {
				body = requoteSingle(body)
			}
			text, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return "", fmt.Errorf("visibility/expr: invalid string literal at %d: %w", start-1, err)
			}
			return text, nil
		}
		l.pos++
	}
	return "", errors.New("visibility/expr: unterminated string literal")
}

// requoteSingle turns a single quoted body into its double quoted form:
// \' loses the backslash and bare " gains one. Other escapes pass through.
func requoteSingle(body string) string {
	var b strings.Builder
	b.Grow(len(body) + 4)
	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case ch == '\\' && i+1 < len(body):
			i++
			if body[i] == '\'' {
				b.WriteByte('\'')
				continue
			}
			b.WriteByte('\\')
			b.WriteByte(body[i])
		case ch == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isWordByte(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	}
	return ch == '_' || ch == '.' || ch == '-' || ch == '+'
}
