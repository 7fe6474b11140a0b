package expr

import (
	"fmt"
	"math/big"
)

const (
	// largest root order turned into a radical atom
	maxRootOrder = 64
	// largest integer power expanded exactly
	maxIntExponent = 256
	// largest folded numeric power, in bits of numerator plus denominator
	maxConstBits = 1 << 16
)

// Normalize converts e to its normal form. The result is memoized, so
// repeated calls for equal expressions are cheap.
func (ar *Arena) Normalize(e *Expr) (*Rational, error) {
	if r, ok := ar.lookupNormal(e); ok {
		return r, nil
	}
	r, err := ar.normalize(e)
	if err != nil {
		return nil, err
	}
	ar.storeNormal(e, r)
	return r, nil
}

func (ar *Arena) normalize(e *Expr) (*Rational, error) {
	switch e.kind {
	case KindNumber:
		return ar.Const(e.num), nil
	case KindSymbol:
		return ar.atomRational(ar.atomFor(e)), nil
	case KindNeg:
		a, err := ar.Normalize(e.args[0])
		if err != nil {
			return nil, err
		}
		return a.Neg(), nil
	case KindAdd:
		sum := ar.Int(0)
		for _, t := range e.args {
			r, err := ar.Normalize(t)
			if err != nil {
				return nil, err
			}
			sum = sum.Add(r)
		}
		return sum, nil
	case KindSub:
		a, err := ar.Normalize(e.args[0])
		if err != nil {
			return nil, err
		}
		b, err := ar.Normalize(e.args[1])
		if err != nil {
			return nil, err
		}
		return a.Sub(b), nil
	case KindMul:
		prod := ar.Int(1)
		for _, f := range e.args {
			r, err := ar.Normalize(f)
			if err != nil {
				return nil, err
			}
			if r.IsZero() {
				return r, nil
			}
			prod = prod.Mul(r)
		}
		return prod, nil
	case KindDiv:
		a, err := ar.Normalize(e.args[0])
		if err != nil {
			return nil, err
		}
		b, err := ar.Normalize(e.args[1])
		if err != nil {
			return nil, err
		}
		return a.Div(b)
	case KindPow:
		return ar.normalizePow(e.args[0], e.args[1])
	case KindFunc:
		return ar.normalizeFunc(e)
	}
	return ar.Int(0), nil
}

func (ar *Arena) normalizePow(base, exp *Expr) (*Rational, error) {
	xr, err := ar.Normalize(exp)
	if err != nil {
		return nil, err
	}
	br, err := ar.Normalize(base)
	if err != nil {
		return nil, err
	}
	q, ok := xr.Constant()
	if !ok {
		if br.IsZero() {
			return br, nil
		}
		if c, ok := br.Constant(); ok && c.Cmp(big.NewRat(1, 1)) == 0 {
			return br, nil
		}
		// symbolic exponent: opaque atom over canonical parts
		e := Power(ar.Express(br), ar.Express(xr))
		return ar.atomRational(ar.atomFor(e)), nil
	}
	if q.IsInt() {
		if c, ok := br.Constant(); ok && c.Sign() != 0 && q.Num().IsInt64() {
			if v, ok := constPow(c, q.Num().Int64()); ok {
				return ar.Const(v), nil
			}
		}
		if !q.Num().IsInt64() || q.Num().Int64() > maxIntExponent || q.Num().Int64() < -maxIntExponent {
			return nil, fmt.Errorf("%w: exponent %s is too large", ErrUnsupported, q.RatString())
		}
		return br.PowInt(int(q.Num().Int64()))
	}
	if br.IsZero() {
		if q.Sign() > 0 {
			return br, nil
		}
		return nil, ErrDivisionByZero
	}
	if c, ok := br.Constant(); ok {
		if folded, ok := foldNumericPow(c, newNode(KindNumber, q, "", 0)); ok {
			return ar.Const(folded.num), nil
		}
	}
	// q = n + p/d with 0 < p/d < 1
	n := new(big.Int).Div(q.Num(), q.Denom())
	frac := new(big.Rat).Sub(q, new(big.Rat).SetInt(n))
	if !n.IsInt64() || !frac.Denom().IsInt64() || frac.Denom().Int64() > maxRootOrder {
		e := Power(ar.Express(br), Number(q))
		return ar.atomRational(ar.atomFor(e)), nil
	}
	whole, err := br.PowInt(int(n.Int64()))
	if err != nil {
		return nil, err
	}
	rad := ar.radical(br, int32(frac.Num().Int64()), int32(frac.Denom().Int64()))
	return whole.Mul(rad), nil
}

// constPow folds c^n exactly while the result stays below maxConstBits.
func constPow(c *big.Rat, n int64) (*big.Rat, bool) {
	k := n
	if k < 0 {
		k = -k
	}
	bits := int64(c.Num().BitLen() + c.Denom().BitLen())
	if k > maxConstBits || bits*k > maxConstBits {
		return nil, false
	}
	return ratPow(c, int(n)), true
}

// radical returns r^(p/d) for 0 < p < d. A polynomial base N becomes
// (N^(1/d))^p; a fraction N/D becomes (N^p D^(d-p))^(1/d) / D.
func (ar *Arena) radical(r *Rational, p, d int32) *Rational {
	if r.IsPolynomial() {
		id := ar.rootAtom(r.num, d)
		return &Rational{ar: ar, num: poly{{m: monomial{{id, p}}, c: big.NewRat(1, 1)}}}
	}
	den := expandDen(r.mono, r.facs)
	rad := ar.reduce(powPoly(r.num, int(p)))
	rad = ar.mulPoly(rad, powPoly(den, int(d-p)))
	id := ar.rootAtom(rad, d)
	return &Rational{ar: ar, num: poly{{m: monomial{{id, 1}}, c: big.NewRat(1, 1)}}, mono: r.mono, facs: r.facs}
}

func powPoly(p poly, n int) poly {
	out := constPoly(big.NewRat(1, 1))
	for i := 0; i < n; i++ {
		out = mulPolyRaw(out, p)
	}
	return out
}

func (ar *Arena) normalizeFunc(e *Expr) (*Rational, error) {
	arg := e.args[0]
	builtin := e.prime == 0 && isBuiltin(e)
	if builtin {
		switch e.name {
		case "sqrt":
			return ar.normalizePow(arg, Frac(1, 2))
		case "tan":
			return ar.Normalize(Quotient(Call("sin", arg), Call("cos", arg)))
		}
	}
	ra, err := ar.Normalize(arg)
	if err != nil {
		return nil, err
	}
	if builtin {
		if ra.IsZero() {
			switch e.name {
			case "sin", "sinh", "tanh":
				return ar.Int(0), nil
			case "cos", "cosh", "exp":
				return ar.Int(1), nil
			}
		}
		if c, ok := ra.Constant(); ok && e.name == "log" && c.Cmp(big.NewRat(1, 1)) == 0 {
			return ar.Int(0), nil
		}
	}
	canon := ar.Express(ra)
	if builtin && canon.kind == KindFunc && canon.prime == 0 {
		switch {
		case e.name == "exp" && canon.name == "log":
			return ar.Normalize(canon.args[0])
		case e.name == "log" && canon.name == "exp":
			return ar.Normalize(canon.args[0])
		}
	}
	return ar.atomRational(ar.atomFor(newNode(KindFunc, nil, e.name, e.prime, canon))), nil
}

// polyExpr rebuilds a polynomial as a simplified sum of products.
func (ar *Arena) polyExpr(p poly) *Expr {
	if len(p) == 0 {
		return Int(0)
	}
	atoms := ar.snapshot()
	terms := make([]*Expr, len(p))
	for i, t := range p {
		factors := make([]*Expr, 0, len(t.m)+1)
		if t.c.Cmp(big.NewRat(1, 1)) != 0 || len(t.m) == 0 {
			factors = append(factors, Number(t.c))
		}
		for _, pw := range t.m {
			factors = append(factors, atomPower(atoms[pw.id].expr, pw.exp))
		}
		terms[i] = Product(factors...)
	}
	return Simplify(Sum(terms...))
}

func atomPower(e *Expr, exp int32) *Expr {
	if exp == 1 {
		return e
	}
	return Power(e, Int(int64(exp)))
}

// Express converts a normal form back to a simplified, interned expression.
// The mapping is remembered so normalizing the result again is free.
func (ar *Arena) Express(r *Rational) *Expr {
	num := ar.polyExpr(r.num)
	var out *Expr
	if r.IsPolynomial() {
		out = num
	} else {
		atoms := ar.snapshot()
		den := make([]*Expr, 0, len(r.mono)+len(r.facs))
		for _, pw := range r.mono {
			den = append(den, atomPower(atoms[pw.id].expr, pw.exp))
		}
		for _, fp := range r.facs {
			den = append(den, atomPower(ar.polyExpr(fp.f.p), int32(fp.mult)))
		}
		out = Simplify(Quotient(num, Product(den...)))
	}
	out = ar.Intern(out)
	ar.storeNormal(out, r)
	return out
}

// Canonical returns the canonical form of e: normalize, then express.
func (ar *Arena) Canonical(e *Expr) (*Expr, error) {
	r, err := ar.Normalize(e)
	if err != nil {
		return nil, err
	}
	return ar.Express(r), nil
}

// Derivative differentiates through the normal form and returns the
// canonical result.
func (ar *Arena) Derivative(e *Expr, sym string) (*Expr, error) {
	r, err := ar.Normalize(e)
	if err != nil {
		return nil, err
	}
	d, err := r.Derivative(sym)
	if err != nil {
		return nil, err
	}
	return ar.Express(d), nil
}

// String prints the canonical expression of r.
func (r *Rational) String() string {
	return r.ar.Express(r).String()
}
