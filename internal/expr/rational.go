package expr

import (
	"math/big"
)

// facPow is a denominator factor with its multiplicity.
type facPow struct {
	f    *factor
	mult int
}

// addFacPow merges k more copies of f into a key-sorted list.
func addFacPow(fs []facPow, f *factor, k int) []facPow {
	out := make([]facPow, 0, len(fs)+1)
	placed := false
	for _, fp := range fs {
		switch {
		case fp.f == f:
			out = append(out, facPow{f, fp.mult + k})
			placed = true
			continue
		case !placed && fp.f.key > f.key:
			out = append(out, facPow{f, k})
			placed = true
		}
		out = append(out, fp)
	}
	if !placed {
		out = append(out, facPow{f, k})
	}
	return out
}

// mergeFacs walks two key-sorted lists and combines multiplicities with op.
func mergeFacs(a, b []facPow, op func(x, y int) int) []facPow {
	out := make([]facPow, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i].f.key < b[j].f.key):
			if m := op(a[i].mult, 0); m > 0 {
				out = append(out, facPow{a[i].f, m})
			}
			i++
		case i >= len(a) || b[j].f.key < a[i].f.key:
			if m := op(0, b[j].mult); m > 0 {
				out = append(out, facPow{b[j].f, m})
			}
			j++
		default:
			if m := op(a[i].mult, b[j].mult); m > 0 {
				out = append(out, facPow{a[i].f, m})
			}
			i++
			j++
		}
	}
	return out
}

func sumOp(x, y int) int  { return x + y }
func maxOp(x, y int) int  { return max(x, y) }
func diffOp(x, y int) int { return x - y }

func sameFacs(a, b []facPow) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].f != b[i].f || a[i].mult != b[i].mult {
			return false
		}
	}
	return true
}

func sameMono(a, b monomial) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Rational is the normal form of an expression: num / (mono * prod facs).
// The numerator is reduced by the arena's atom relations. A Rational belongs
// to the arena that built it.
type Rational struct {
	ar   *Arena
	num  poly
	mono monomial
	facs []facPow
}

func (ar *Arena) Const(c *big.Rat) *Rational {
	return &Rational{ar: ar, num: constPoly(c)}
}

func (ar *Arena) Int(n int64) *Rational {
	return ar.Const(new(big.Rat).SetInt64(n))
}

func (ar *Arena) atomRational(id int32) *Rational {
	return &Rational{ar: ar, num: poly{{m: monomial{{id, 1}}, c: big.NewRat(1, 1)}}}
}

func (ar *Arena) fromPoly(p poly) *Rational {
	return &Rational{ar: ar, num: p}
}

func (ar *Arena) mulPoly(a, b poly) poly {
	return ar.reduce(mulPolyRaw(a, b))
}

// expandDen multiplies out a denominator without applying relations.
func expandDen(m monomial, facs []facPow) poly {
	p := poly{{m: m, c: big.NewRat(1, 1)}}
	for _, fp := range facs {
		for k := 0; k < fp.mult; k++ {
			p = mulPolyRaw(p, fp.f.p)
		}
	}
	return p
}

// reduce rewrites cos(u)^2 as 1 - sin(u)^2 and (P^(1/d))^d as P until no
// term has a reducible power.
func (ar *Arena) reduce(p poly) poly {
	atoms := ar.snapshot()
	dirty := false
	for _, t := range p {
		if _, _, a := reducible(t.m, atoms); a != nil {
			dirty = true
			break
		}
	}
	if !dirty {
		return p
	}
	acc := newAccumulator(len(p) * 2)
	stack := append([]term(nil), p...)
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		id, e, a := reducible(t.m, atoms)
		if a == nil {
			acc.add(t.m, t.c)
			continue
		}
		if a.sinID >= 0 {
			base := setExponent(t.m, id, e-2)
			stack = append(stack,
				term{m: base, c: t.c},
				term{m: mulMono(base, monomial{{a.sinID, 2}}), c: new(big.Rat).Neg(t.c)},
			)
			continue
		}
		base := setExponent(t.m, id, e-a.root)
		for _, rt := range a.radicand {
			stack = append(stack, term{m: mulMono(base, rt.m), c: new(big.Rat).Mul(t.c, rt.c)})
		}
	}
	return acc.poly()
}

func reducible(m monomial, atoms []*atom) (int32, int32, *atom) {
	for _, pw := range m {
		a := atoms[pw.id]
		if a.sinID >= 0 && pw.exp >= 2 {
			return pw.id, pw.exp, a
		}
		if a.root > 0 && pw.exp >= a.root {
			return pw.id, pw.exp, a
		}
	}
	return 0, 0, nil
}

// build cancels common monomial content and known denominator factors out
// of num.
func (ar *Arena) build(num poly, mono monomial, facs []facPow) *Rational {
	if len(num) == 0 {
		return &Rational{ar: ar}
	}
	if len(mono) > 0 {
		content := minContent(num)
		var cut, rest monomial
		for _, pw := range mono {
			k := min(pw.exp, content.exponent(pw.id))
			if k > 0 {
				cut = append(cut, power{pw.id, k})
			}
			if pw.exp-k > 0 {
				rest = append(rest, power{pw.id, pw.exp - k})
			}
		}
		if len(cut) > 0 {
			num = divPolyMono(num, cut)
			mono = rest
		}
	}
	if len(facs) > 0 && !num.isConst() {
		out := make([]facPow, 0, len(facs))
		for _, fp := range facs {
			k := fp.mult
			for k > 0 && !num.isConst() {
				q, ok := divExact(num, fp.f.p)
				if !ok {
					break
				}
				num = q
				k--
			}
			if k > 0 {
				out = append(out, facPow{fp.f, k})
			}
		}
		facs = out
	}
	return &Rational{ar: ar, num: num, mono: mono, facs: facs}
}

func (r *Rational) IsZero() bool { return len(r.num) == 0 }

// IsPolynomial reports whether the denominator is 1.
func (r *Rational) IsPolynomial() bool { return len(r.mono) == 0 && len(r.facs) == 0 }

// Constant returns the value of a numeric rational.
func (r *Rational) Constant() (*big.Rat, bool) {
	if !r.IsPolynomial() || !r.num.isConst() {
		return nil, false
	}
	return new(big.Rat).Set(r.num.constant()), true
}

// Terms is the number of numerator terms.
func (r *Rational) Terms() int { return len(r.num) }

// Factors is the number of distinct denominator factors, atoms included.
func (r *Rational) Factors() int { return len(r.mono) + len(r.facs) }

func (r *Rational) Neg() *Rational {
	return &Rational{ar: r.ar, num: negPoly(r.num), mono: r.mono, facs: r.facs}
}

func (r *Rational) Scale(c *big.Rat) *Rational {
	if c.Sign() == 0 || r.IsZero() {
		return &Rational{ar: r.ar}
	}
	return &Rational{ar: r.ar, num: scalePoly(r.num, c), mono: r.mono, facs: r.facs}
}

func (r *Rational) Add(o *Rational) *Rational {
	switch {
	case r.IsZero():
		return o
	case o.IsZero():
		return r
	}
	ar := r.ar
	if sameMono(r.mono, o.mono) && sameFacs(r.facs, o.facs) {
		return ar.build(addPoly(r.num, o.num), r.mono, r.facs)
	}
	mono := lcmMono(r.mono, o.mono)
	facs := mergeFacs(r.facs, o.facs, maxOp)
	a := r.num
	if rm, _ := divMono(mono, r.mono); len(rm) > 0 || !sameFacs(facs, r.facs) {
		a = ar.mulPoly(a, expandDen(rm, mergeFacs(facs, r.facs, diffOp)))
	}
	b := o.num
	if om, _ := divMono(mono, o.mono); len(om) > 0 || !sameFacs(facs, o.facs) {
		b = ar.mulPoly(b, expandDen(om, mergeFacs(facs, o.facs, diffOp)))
	}
	return ar.build(addPoly(a, b), mono, facs)
}

func (r *Rational) Sub(o *Rational) *Rational {
	return r.Add(o.Neg())
}

func (r *Rational) Mul(o *Rational) *Rational {
	switch {
	case r.IsZero() || o.IsZero():
		return &Rational{ar: r.ar}
	}
	if c, ok := o.Constant(); ok {
		return r.Scale(c)
	}
	if c, ok := r.Constant(); ok {
		return o.Scale(c)
	}
	ar := r.ar
	// cancel each numerator against the other denominator first
	a := ar.build(r.num, o.mono, o.facs)
	b := ar.build(o.num, r.mono, r.facs)
	return &Rational{
		ar:   ar,
		num:  ar.mulPoly(a.num, b.num),
		mono: mulMono(a.mono, b.mono),
		facs: mergeFacs(a.facs, b.facs, sumOp),
	}
}

// Inv returns 1/r. The old numerator is split into known factors where
// possible so later sums find common denominators.
func (r *Rational) Inv() (*Rational, error) {
	if r.IsZero() {
		return nil, ErrDivisionByZero
	}
	coef, mono, facs := r.ar.factorize(r.num)
	num := r.ar.reduce(expandDen(r.mono, r.facs))
	num = scalePoly(num, new(big.Rat).Inv(coef))
	return &Rational{ar: r.ar, num: num, mono: mono, facs: facs}, nil
}

func (r *Rational) Div(o *Rational) (*Rational, error) {
	inv, err := o.Inv()
	if err != nil {
		return nil, err
	}
	return r.Mul(inv), nil
}

// PowInt raises r to an integer power. 0^n fails for n < 0.
func (r *Rational) PowInt(n int) (*Rational, error) {
	if n < 0 {
		inv, err := r.Inv()
		if err != nil {
			return nil, err
		}
		return inv.PowInt(-n)
	}
	result := r.ar.Int(1)
	base := r
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		n >>= 1
		if n > 0 {
			base = base.Mul(base)
		}
	}
	return result, nil
}

// Equal reports whether r - o normalizes to zero.
func (r *Rational) Equal(o *Rational) bool {
	return r.Sub(o).IsZero()
}

// Derivative differentiates with respect to sym keeping the denominator
// factored:
//
//	d(N/D) = N'/D - N/D * (sum e_j a_j'/a_j + sum k_i f_i'/f_i)
func (r *Rational) Derivative(sym string) (*Rational, error) {
	ar := r.ar
	dn, err := ar.polyDerivative(r.num, sym)
	if err != nil {
		return nil, err
	}
	res := dn
	if !r.IsPolynomial() {
		res = dn.Mul(&Rational{ar: ar, num: constPoly(big.NewRat(1, 1)), mono: r.mono, facs: r.facs})
	}
	for _, pw := range r.mono {
		da, err := ar.atomDerivative(pw.id, sym)
		if err != nil {
			return nil, err
		}
		if da.IsZero() {
			continue
		}
		t := &Rational{
			ar:   ar,
			num:  scalePoly(r.num, new(big.Rat).SetInt64(int64(pw.exp))),
			mono: mulMono(r.mono, monomial{{pw.id, 1}}),
			facs: r.facs,
		}
		res = res.Sub(t.Mul(da))
	}
	for i, fp := range r.facs {
		df, err := ar.polyDerivative(fp.f.p, sym)
		if err != nil {
			return nil, err
		}
		if df.IsZero() {
			continue
		}
		facs := append([]facPow(nil), r.facs...)
		facs[i].mult++
		t := &Rational{
			ar:   ar,
			num:  scalePoly(r.num, new(big.Rat).SetInt64(int64(fp.mult))),
			mono: r.mono,
			facs: facs,
		}
		res = res.Sub(t.Mul(df))
	}
	return res, nil
}

// polyDerivative applies the chain rule atom by atom.
func (ar *Arena) polyDerivative(p poly, sym string) (*Rational, error) {
	var flat poly
	res := ar.Int(0)
	for _, id := range atomsOf(p) {
		da, err := ar.atomDerivative(id, sym)
		if err != nil {
			return nil, err
		}
		if da.IsZero() {
			continue
		}
		part := partial(p, id)
		if da.IsPolynomial() {
			flat = addPoly(flat, ar.mulPoly(part, da.num))
			continue
		}
		res = res.Add(ar.fromPoly(part).Mul(da))
	}
	return res.Add(ar.fromPoly(flat)), nil
}

// atomDerivative differentiates one atom with the tree rules and normalizes
// the result. Results are memoized per arena.
func (ar *Arena) atomDerivative(id int32, sym string) (*Rational, error) {
	a := ar.atomAt(id)
	if !a.deps[sym] {
		return ar.Int(0), nil
	}
	if a.expr.kind == KindSymbol {
		return ar.Int(1), nil
	}
	k := derivKey{id: id, sym: sym}
	ar.mu.RLock()
	d, ok := ar.derivs[k]
	ar.mu.RUnlock()
	if ok {
		return d, nil
	}
	d, err := ar.Normalize(Differentiate(a.expr, sym))
	if err != nil {
		return nil, err
	}
	ar.mu.Lock()
	ar.derivs[k] = d
	ar.mu.Unlock()
	return d, nil
}
