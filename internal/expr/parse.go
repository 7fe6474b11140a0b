package expr

import (
	"fmt"
	"math/big"
	"strings"
)

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind   tokKind
	text   string
	pos    int
	primes int
}

// Parser turns formula text into expressions. Built-in functions are always
// available; undefined functions such as a(t) must be declared.
type Parser struct {
	functions map[string]bool
}

// ParserOption configures a [Parser].
type ParserOption func(*Parser)

// WithFunctions declares undefined single-argument functions, e.g. the scale
// factor a in a(t). Their derivatives print and parse as a'(t).
func WithFunctions(names ...string) ParserOption {
	return func(p *Parser) {
		for _, n := range names {
			n = strings.TrimSpace(n)
			if n != "" && !IsBuiltinFunction(n) {
				p.functions[n] = true
			}
		}
	}
}

func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{functions: map[string]bool{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Functions returns the declared undefined function names.
func (p *Parser) Functions() []string {
	out := make([]string, 0, len(p.functions))
	for n := range p.functions {
		out = append(out, n)
	}
	return out
}

// Parse parses text with only the built-in functions available.
func Parse(text string) (*Expr, error) {
	return NewParser().Parse(text)
}

// MustParse is Parse for literals known to be valid. It panics on error.
func MustParse(text string) *Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

// Parse parses text. Precedence from low to high: + and -, * and /, unary
// minus, ^ (right associative). "**" is accepted for "^".
func (p *Parser) Parse(text string) (*Expr, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	st := &parseState{p: p, text: text, toks: toks}
	if st.peek().kind == tokEOF {
		return nil, st.fail(0, "empty expression")
	}
	e, err := st.parseExpr()
	if err != nil {
		return nil, err
	}
	switch t := st.peek(); t.kind {
	case tokEOF:
		return e, nil
	case tokRParen:
		return nil, st.fail(t.pos, "unbalanced ')'")
	default:
		return nil, st.fail(t.pos, fmt.Sprintf("unexpected %q", t.text))
	}
}

func lex(text string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(text) && isDigit(text[i+1])):
			start := i
			for i < len(text) && isDigit(text[i]) {
				i++
			}
			if i < len(text) && text[i] == '.' {
				i++
				for i < len(text) && isDigit(text[i]) {
					i++
				}
			}
			if i < len(text) && (text[i] == 'e' || text[i] == 'E') {
				j := i + 1
				if j < len(text) && (text[j] == '+' || text[j] == '-') {
					j++
				}
				if j < len(text) && isDigit(text[j]) {
					i = j
					for i < len(text) && isDigit(text[i]) {
						i++
					}
				}
			}
			toks = append(toks, token{kind: tokNum, text: text[start:i], pos: start})
		case isIdentStart(c):
			start := i
			for i < len(text) && (isIdentStart(text[i]) || isDigit(text[i])) {
				i++
			}
			t := token{kind: tokIdent, text: text[start:i], pos: start}
			for i < len(text) && text[i] == '\'' {
				t.primes++
				i++
			}
			toks = append(toks, t)
		case c == '*' && i+1 < len(text) && text[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "^", pos: i})
			i += 2
		case strings.IndexByte("+-*/^", c) >= 0:
			toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		default:
			return nil, &ParseError{Text: text, Position: i, Reason: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(text)})
	return toks, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// IsIdentifier reports whether s is a valid symbol name.
func IsIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentStart(s[i]) && !isDigit(s[i]) {
			return false
		}
	}
	return true
}

type parseState struct {
	p    *Parser
	text string
	toks []token
	i    int
}

func (st *parseState) peek() token { return st.toks[st.i] }

func (st *parseState) next() token {
	t := st.toks[st.i]
	if t.kind != tokEOF {
		st.i++
	}
	return t
}

func (st *parseState) isOp(ops string) bool {
	t := st.peek()
	return t.kind == tokOp && strings.Contains(ops, t.text)
}

func (st *parseState) fail(pos int, reason string) error {
	return &ParseError{Text: st.text, Position: pos, Reason: reason}
}

func (st *parseState) parseExpr() (*Expr, error) {
	left, err := st.parseTerm()
	if err != nil {
		return nil, err
	}
	for st.isOp("+-") {
		op := st.next()
		right, err := st.parseTerm()
		if err != nil {
			return nil, err
		}
		if op.text == "+" {
			left = Sum(left, right)
		} else {
			left = Difference(left, right)
		}
	}
	return left, nil
}

func (st *parseState) parseTerm() (*Expr, error) {
	left, err := st.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		if err := st.checkImplicit(); err != nil {
			return nil, err
		}
		if !st.isOp("*/") {
			return left, nil
		}
		op := st.next()
		right, err := st.parseUnary()
		if err != nil {
			return nil, err
		}
		if op.text == "*" {
			left = Product(left, right)
		} else {
			left = Quotient(left, right)
		}
	}
}

func (st *parseState) checkImplicit() error {
	switch t := st.peek(); t.kind {
	case tokNum, tokIdent, tokLParen:
		return st.fail(t.pos, "implicit multiplication is not supported, use '*'")
	}
	return nil
}

func (st *parseState) parseUnary() (*Expr, error) {
	if st.isOp("-") {
		st.next()
		e, err := st.parseUnary()
		if err != nil {
			return nil, err
		}
		return Negate(e), nil
	}
	if st.isOp("+") {
		st.next()
		return st.parseUnary()
	}
	return st.parsePower()
}

func (st *parseState) parsePower() (*Expr, error) {
	base, err := st.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !st.isOp("^") {
		return base, nil
	}
	st.next()
	exp, err := st.parseUnary()
	if err != nil {
		return nil, err
	}
	return Power(base, exp), nil
}

func (st *parseState) parsePrimary() (*Expr, error) {
	t := st.next()
	switch t.kind {
	case tokNum:
		r, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return nil, st.fail(t.pos, fmt.Sprintf("invalid number %q", t.text))
		}
		return newNode(KindNumber, r, "", 0), nil
	case tokIdent:
		if st.peek().kind == tokLParen {
			return st.parseCall(t)
		}
		if t.primes > 0 {
			return nil, st.fail(t.pos, "prime notation needs a function application")
		}
		if IsBuiltinFunction(t.text) || st.p.functions[t.text] {
			return nil, st.fail(t.pos, fmt.Sprintf("function %q used without an argument", t.text))
		}
		return Sym(t.text), nil
	case tokLParen:
		e, err := st.parseExpr()
		if err != nil {
			return nil, err
		}
		if st.peek().kind != tokRParen {
			return nil, st.fail(st.peek().pos, "missing closing parenthesis")
		}
		st.next()
		return e, nil
	case tokRParen:
		return nil, st.fail(t.pos, "unbalanced ')'")
	case tokEOF:
		return nil, st.fail(t.pos, "unexpected end of input")
	default:
		return nil, st.fail(t.pos, fmt.Sprintf("unexpected %q", t.text))
	}
}

func (st *parseState) parseCall(name token) (*Expr, error) {
	fn := name.text
	if alias, ok := funcAliases[fn]; ok {
		fn = alias
	}
	_, isBuiltin := builtins[fn]
	switch {
	case isBuiltin && name.primes > 0:
		return nil, st.fail(name.pos, "prime notation applies only to undefined functions")
	case !isBuiltin && !st.p.functions[fn]:
		return nil, st.fail(name.pos, fmt.Sprintf("unsupported function %q", fn))
	}
	st.next() // (
	arg, err := st.parseExpr()
	if err != nil {
		return nil, err
	}
	switch t := st.peek(); t.kind {
	case tokRParen:
		st.next()
	case tokComma:
		return nil, st.fail(t.pos, "functions take exactly one argument")
	default:
		return nil, st.fail(t.pos, "missing closing parenthesis")
	}
	if isBuiltin {
		return Call(fn, arg), nil
	}
	return Derived(fn, name.primes, arg), nil
}
