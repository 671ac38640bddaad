package query

import (
	"fmt"
	"regexp"
	"strings"

	"TopicTracker/internal/domain"
)

// Expr is a compiled boolean filter expression. Evaluation is pure: the same
// (expression, text) pair always yields the same result.
type Expr interface {
	Eval(text string) bool
	String() string
}

// Parse compiles a boolean expression over search terms.
//
// Grammar:
//
//	expression -> orExpr
//	orExpr     -> andExpr (OR andExpr)*
//	andExpr    -> notExpr (AND notExpr)*
//	notExpr    -> NOT notExpr | primary
//	primary    -> PHRASE | WORD | '(' expression ')'
//
// Quoted phrases match as case-insensitive substrings, bare words match on
// word boundaries. Both compile to linear-time checks.
func Parse(text string) (Expr, error) {
	p := &parser{lex: newLexer(text)}
	if err := p.advance(); err != nil {
		return nil, &domain.ParseError{Unit: text, Err: err}
	}
	if p.current.kind == tokenEOF {
		return nil, &domain.ParseError{Unit: text, Err: fmt.Errorf("empty expression")}
	}
	expr, err := p.orExpr()
	if err != nil {
		return nil, &domain.ParseError{Unit: text, Err: err}
	}
	if p.current.kind != tokenEOF {
		return nil, &domain.ParseError{Unit: text, Err: fmt.Errorf("unexpected %q after expression", p.current.value)}
	}
	return expr, nil
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenWord
	tokenPhrase
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind  tokenKind
	value string
}

type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func isWordChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '+' || c == '#':
		return true
	}
	return false
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case c == '(':
			l.pos++
			return token{kind: tokenLParen, value: "("}, nil
		case c == ')':
			l.pos++
			return token{kind: tokenRParen, value: ")"}, nil
		case c == '"':
			return l.readPhrase()
		case isWordChar(c):
			return l.readWord(), nil
		default:
			return token{}, fmt.Errorf("unexpected character %q at position %d", c, l.pos)
		}
	}
	return token{kind: tokenEOF}, nil
}

func (l *lexer) readPhrase() (token, error) {
	l.pos++ // opening quote
	start := l.pos
	for l.pos < len(l.input) && l.input[l.pos] != '"' {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{}, fmt.Errorf("unterminated phrase")
	}
	value := l.input[start:l.pos]
	l.pos++ // closing quote
	return token{kind: tokenPhrase, value: value}, nil
}

func (l *lexer) readWord() token {
	start := l.pos
	for l.pos < len(l.input) && isWordChar(l.input[l.pos]) {
		l.pos++
	}
	word := l.input[start:l.pos]
	switch strings.ToUpper(word) {
	case "AND":
		return token{kind: tokenAnd, value: word}
	case "OR":
		return token{kind: tokenOr, value: word}
	case "NOT":
		return token{kind: tokenNot, value: word}
	}
	return token{kind: tokenWord, value: word}
}

type parser struct {
	lex     *lexer
	current token
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

func (p *parser) orExpr() (Expr, error) {
	node, err := p.andExpr()
	if err != nil {
		return nil, err
	}
	for p.current.kind == tokenOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.andExpr()
		if err != nil {
			return nil, err
		}
		node = &orExpr{left: node, right: right}
	}
	return node, nil
}

func (p *parser) andExpr() (Expr, error) {
	node, err := p.notExpr()
	if err != nil {
		return nil, err
	}
	for p.current.kind == tokenAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		node = &andExpr{left: node, right: right}
	}
	return node, nil
}

func (p *parser) notExpr() (Expr, error) {
	if p.current.kind == tokenNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		return &notExpr{operand: operand}, nil
	}
	return p.primary()
}

func (p *parser) primary() (Expr, error) {
	switch p.current.kind {
	case tokenPhrase:
		term := newTerm(p.current.value, true)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return term, nil
	case tokenWord:
		term := newTerm(p.current.value, false)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return term, nil
	case tokenLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		node, err := p.orExpr()
		if err != nil {
			return nil, err
		}
		if p.current.kind != tokenRParen {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return node, nil
	case tokenEOF:
		return nil, fmt.Errorf("dangling operator")
	default:
		return nil, fmt.Errorf("unexpected token %q", p.current.value)
	}
}

// termExpr matches a single word or quoted phrase, case-insensitively.
type termExpr struct {
	term     string
	isPhrase bool
	lowered  string
	wordRe   *regexp.Regexp
}

func newTerm(term string, isPhrase bool) *termExpr {
	t := &termExpr{term: term, isPhrase: isPhrase, lowered: strings.ToLower(term)}
	if !isPhrase {
		t.wordRe = regexp.MustCompile(`\b` + regexp.QuoteMeta(t.lowered) + `\b`)
	}
	return t
}

func (t *termExpr) Eval(text string) bool {
	lowered := strings.ToLower(text)
	if t.isPhrase {
		return t.lowered != "" && strings.Contains(lowered, t.lowered)
	}
	return t.wordRe.MatchString(lowered)
}

func (t *termExpr) String() string {
	if t.isPhrase {
		return fmt.Sprintf("%q", t.term)
	}
	return t.term
}

type notExpr struct {
	operand Expr
}

func (n *notExpr) Eval(text string) bool { return !n.operand.Eval(text) }

func (n *notExpr) String() string { return "NOT " + n.operand.String() }

type andExpr struct {
	left, right Expr
}

func (a *andExpr) Eval(text string) bool { return a.left.Eval(text) && a.right.Eval(text) }

func (a *andExpr) String() string {
	return fmt.Sprintf("(%s AND %s)", a.left.String(), a.right.String())
}

type orExpr struct {
	left, right Expr
}

func (o *orExpr) Eval(text string) bool { return o.left.Eval(text) || o.right.Eval(text) }

func (o *orExpr) String() string {
	return fmt.Sprintf("(%s OR %s)", o.left.String(), o.right.String())
}
