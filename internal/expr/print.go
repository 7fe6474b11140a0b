package expr

import (
	"math/big"
	"strings"
)

// binding strength of the printed forms, lowest first
const (
	precAdd = iota + 1
	precMul
	precNeg
	precPow
	precAtom
)

var ratHalf = big.NewRat(1, 2)

// String renders e in the input grammar with minimal parentheses. Parsing
// the output and simplifying yields the simplified original.
func (e *Expr) String() string {
	if s := e.str.Load(); s != nil {
		return *s
	}
	var b strings.Builder
	write(&b, e)
	s := b.String()
	e.str.Store(&s)
	return s
}

func precOf(e *Expr) int {
	switch e.kind {
	case KindNumber:
		switch {
		case !e.num.IsInt():
			return precMul
		case e.num.Sign() < 0:
			return precNeg
		}
		return precAtom
	case KindNeg:
		return precNeg
	case KindAdd, KindSub:
		return precAdd
	case KindMul, KindDiv:
		return precMul
	case KindPow:
		if isSqrt(e) {
			return precAtom
		}
		if hasNegExponent(e) {
			return precMul
		}
		return precPow
	}
	return precAtom
}

func isSqrt(e *Expr) bool {
	return e.kind == KindPow && e.args[1].kind == KindNumber && e.args[1].num.Cmp(ratHalf) == 0
}

func hasNegExponent(e *Expr) bool {
	return e.kind == KindPow && e.args[1].kind == KindNumber && e.args[1].num.Sign() < 0
}

// reciprocal of a power with a negative literal exponent
func reciprocalPow(e *Expr) *Expr {
	n := new(big.Rat).Neg(e.args[1].num)
	if n.IsInt() && n.Num().IsInt64() && n.Num().Int64() == 1 {
		return e.args[0]
	}
	return newNode(KindPow, nil, "", 0, e.args[0], newNode(KindNumber, n, "", 0))
}

func writeChild(b *strings.Builder, e *Expr, min int) {
	if precOf(e) < min {
		b.WriteByte('(')
		write(b, e)
		b.WriteByte(')')
		return
	}
	write(b, e)
}

func write(b *strings.Builder, e *Expr) {
	switch e.kind {
	case KindNumber:
		b.WriteString(e.num.RatString())
	case KindSymbol:
		b.WriteString(e.name)
	case KindFunc:
		b.WriteString(e.name)
		for i := 0; i < e.prime; i++ {
			b.WriteByte('\'')
		}
		b.WriteByte('(')
		write(b, e.args[0])
		b.WriteByte(')')
	case KindNeg:
		b.WriteByte('-')
		writeChild(b, e.args[0], precPow)
	case KindAdd:
		for i, t := range e.args {
			switch {
			case i == 0:
				write(b, t)
			case isNegative(t):
				b.WriteString(" - ")
				writeNegated(b, t)
			default:
				b.WriteString(" + ")
				writeChild(b, t, precMul)
			}
		}
	case KindSub:
		write(b, e.args[0])
		b.WriteString(" - ")
		r := e.args[1]
		if precOf(r) <= precAdd || isNegative(r) {
			b.WriteByte('(')
			write(b, r)
			b.WriteByte(')')
		} else {
			write(b, r)
		}
	case KindMul:
		writeMul(b, e, false)
	case KindDiv:
		writeChild(b, e.args[0], precMul)
		b.WriteByte('/')
		writeChild(b, e.args[1], precPow)
	case KindPow:
		writePow(b, e)
	}
}

func isNegative(e *Expr) bool {
	switch e.kind {
	case KindNumber:
		return e.num.Sign() < 0
	case KindNeg:
		return true
	case KindMul:
		return e.args[0].kind == KindNumber && e.args[0].num.Sign() < 0
	}
	return false
}

func writeNegated(b *strings.Builder, e *Expr) {
	switch e.kind {
	case KindNumber:
		b.WriteString(new(big.Rat).Neg(e.num).RatString())
	case KindNeg:
		writeChild(b, e.args[0], precMul)
	case KindMul:
		writeMul(b, e, true)
	default:
		write(b, e)
	}
}

// writeMul prints a product as [-]coef*num/den, moving the denominator of a
// leading literal and negative powers below the bar.
func writeMul(b *strings.Builder, e *Expr, negate bool) {
	coef := big.NewRat(1, 1)
	var num, den []*Expr
	for i, a := range e.args {
		switch {
		case i == 0 && a.kind == KindNumber:
			coef.Set(a.num)
		case hasNegExponent(a):
			den = append(den, reciprocalPow(a))
		default:
			num = append(num, a)
		}
	}
	if negate {
		coef.Neg(coef)
	}
	if coef.Sign() < 0 {
		b.WriteByte('-')
		coef.Abs(coef)
	}
	p, q := coef.Num(), coef.Denom()
	wrote := false
	if !p.IsInt64() || p.Int64() != 1 || len(num) == 0 {
		b.WriteString(p.String())
		wrote = true
	}
	for i, f := range num {
		if wrote {
			b.WriteByte('*')
		}
		// a leading product or quotient is left-associative
		if i == 0 && !wrote && (f.kind == KindMul || f.kind == KindDiv) {
			writeChild(b, f, precMul)
		} else {
			writeChild(b, f, precPow)
		}
		wrote = true
	}
	qIsOne := q.IsInt64() && q.Int64() == 1
	if qIsOne && len(den) == 0 {
		return
	}
	parts := len(den)
	if !qIsOne {
		parts++
	}
	b.WriteByte('/')
	if parts > 1 {
		b.WriteByte('(')
	}
	first := true
	if !qIsOne {
		b.WriteString(q.String())
		first = false
	}
	for _, d := range den {
		if !first {
			b.WriteByte('*')
		}
		writeChild(b, d, precPow)
		first = false
	}
	if parts > 1 {
		b.WriteByte(')')
	}
}

func writePow(b *strings.Builder, e *Expr) {
	base, exp := e.args[0], e.args[1]
	if isSqrt(e) {
		b.WriteString("sqrt(")
		write(b, base)
		b.WriteByte(')')
		return
	}
	if hasNegExponent(e) {
		b.WriteString("1/")
		writeChild(b, reciprocalPow(e), precPow)
		return
	}
	writeChild(b, base, precAtom)
	b.WriteByte('^')
	if exp.kind == KindNumber {
		if exp.num.IsInt() {
			b.WriteString(exp.num.RatString())
			return
		}
		b.WriteByte('(')
		b.WriteString(exp.num.RatString())
		b.WriteByte(')')
		return
	}
	writeChild(b, exp, precPow)
}
