package expr

import (
	"math/big"
	"sort"
)

// passes before Simplify gives up on reaching a fixed point
const maxSimplifyPasses = 16

// largest integer exponent folded for numeric bases
const maxFoldExponent = 64

// Simplify rewrites e bottom-up until nothing changes: constant folding,
// additive and multiplicative identities, flattening of nested sums and
// products, like-term and like-factor collection, and a few function
// identities. Sub, Div and Neg do not survive; they become sums with
// negative coefficients and powers with negative exponents, which the printer
// shows as "-" and "/" again.
//
// Simplify is value-preserving on the generic domain (x/x = 1).
func Simplify(e *Expr) *Expr {
	cur := e
	for i := 0; i < maxSimplifyPasses; i++ {
		next := simplifyOnce(cur)
		if next.Equal(cur) {
			return next
		}
		cur = next
	}
	return cur
}

func simplifyOnce(e *Expr) *Expr {
	switch e.kind {
	case KindNumber, KindSymbol:
		return e
	case KindNeg:
		return simplifyMul([]*Expr{Int(-1), simplifyOnce(e.args[0])})
	case KindSub:
		a := simplifyOnce(e.args[0])
		b := simplifyMul([]*Expr{Int(-1), simplifyOnce(e.args[1])})
		return simplifyAdd([]*Expr{a, b})
	case KindAdd:
		return simplifyAdd(simplifyAll(e.args))
	case KindMul:
		return simplifyMul(simplifyAll(e.args))
	case KindDiv:
		a := simplifyOnce(e.args[0])
		b := simplifyPow(simplifyOnce(e.args[1]), Int(-1))
		return simplifyMul([]*Expr{a, b})
	case KindPow:
		return simplifyPow(simplifyOnce(e.args[0]), simplifyOnce(e.args[1]))
	case KindFunc:
		return simplifyFunc(e.name, e.prime, simplifyOnce(e.args[0]))
	}
	return e
}

func simplifyAll(args []*Expr) []*Expr {
	out := make([]*Expr, len(args))
	for i, a := range args {
		out[i] = simplifyOnce(a)
	}
	return out
}

type termGroup struct {
	key  string
	rest *Expr
	coef *big.Rat
}

// splitCoefficient separates a leading literal factor from a simplified term.
func splitCoefficient(t *Expr) (*big.Rat, *Expr) {
	if t.kind != KindMul || t.args[0].kind != KindNumber {
		return big.NewRat(1, 1), t
	}
	c := new(big.Rat).Set(t.args[0].num)
	if len(t.args) == 2 {
		return c, t.args[1]
	}
	return c, newNode(KindMul, nil, "", 0, t.args[1:]...)
}

func simplifyAdd(terms []*Expr) *Expr {
	var flat []*Expr
	var expand func(t *Expr)
	expand = func(t *Expr) {
		switch {
		case t.kind == KindAdd:
			for _, a := range t.args {
				expand(a)
			}
		case t.kind == KindMul && len(t.args) == 2 && t.args[0].kind == KindNumber && t.args[1].kind == KindAdd:
			// c*(a + b) inside a sum distributes so its terms can collect
			for _, a := range t.args[1].args {
				expand(simplifyMul([]*Expr{t.args[0], a}))
			}
		default:
			flat = append(flat, t)
		}
	}
	for _, t := range terms {
		expand(t)
	}

	constant := new(big.Rat)
	groups := map[string]*termGroup{}
	var order []*termGroup
	for _, t := range flat {
		if t.kind == KindNumber {
			constant.Add(constant, t.num)
			continue
		}
		c, rest := splitCoefficient(t)
		k := rest.String()
		g, ok := groups[k]
		if !ok {
			g = &termGroup{key: k, rest: rest, coef: new(big.Rat)}
			groups[k] = g
			order = append(order, g)
		}
		g.coef.Add(g.coef, c)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].key < order[j].key })

	out := make([]*Expr, 0, len(order)+1)
	for _, g := range order {
		if g.coef.Sign() == 0 {
			continue
		}
		out = append(out, scaleTerm(g.coef, g.rest))
	}
	if constant.Sign() != 0 {
		out = append(out, newNode(KindNumber, constant, "", 0))
	}
	switch len(out) {
	case 0:
		return Int(0)
	case 1:
		return out[0]
	}
	return newNode(KindAdd, nil, "", 0, out...)
}

func scaleTerm(c *big.Rat, rest *Expr) *Expr {
	if c.Cmp(big.NewRat(1, 1)) == 0 {
		return rest
	}
	n := newNode(KindNumber, new(big.Rat).Set(c), "", 0)
	if rest.kind == KindMul {
		return newNode(KindMul, nil, "", 0, append([]*Expr{n}, rest.args...)...)
	}
	return newNode(KindMul, nil, "", 0, n, rest)
}

type factorGroup struct {
	key  string
	base *Expr
	exps []*Expr
}

func simplifyMul(factors []*Expr) *Expr {
	var flat []*Expr
	for _, f := range factors {
		if f.kind == KindMul {
			flat = append(flat, f.args...)
		} else {
			flat = append(flat, f)
		}
	}

	coef := big.NewRat(1, 1)
	groups := map[string]*factorGroup{}
	var order []*factorGroup
	for _, f := range flat {
		if f.kind == KindNumber {
			coef.Mul(coef, f.num)
			continue
		}
		base, exp := f, Int(1)
		if f.kind == KindPow {
			base, exp = f.args[0], f.args[1]
		}
		k := base.String()
		g, ok := groups[k]
		if !ok {
			g = &factorGroup{key: k, base: base}
			groups[k] = g
			order = append(order, g)
		}
		g.exps = append(g.exps, exp)
	}
	if coef.Sign() == 0 {
		return Int(0)
	}

	var out []*Expr
	for _, g := range order {
		exp := g.exps[0]
		if len(g.exps) > 1 {
			exp = simplifyAdd(g.exps)
		}
		p := simplifyPow(g.base, exp)
		switch p.kind {
		case KindNumber:
			coef.Mul(coef, p.num)
		case KindMul:
			for _, a := range p.args {
				if a.kind == KindNumber {
					coef.Mul(coef, a.num)
				} else {
					out = append(out, a)
				}
			}
		default:
			out = append(out, p)
		}
	}
	if coef.Sign() == 0 {
		return Int(0)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })

	if coef.Cmp(big.NewRat(1, 1)) != 0 {
		out = append([]*Expr{newNode(KindNumber, coef, "", 0)}, out...)
	}
	switch len(out) {
	case 0:
		return Int(1)
	case 1:
		return out[0]
	}
	return newNode(KindMul, nil, "", 0, out...)
}

func simplifyPow(base, exp *Expr) *Expr {
	if exp.kind == KindNumber {
		switch {
		case exp.num.Sign() == 0:
			return Int(1)
		case exp.IsOne():
			return base
		}
	}
	if base.kind == KindNumber {
		if folded, ok := foldNumericPow(base.num, exp); ok {
			return folded
		}
	}
	if exp.isInt() {
		switch base.kind {
		case KindPow:
			// (x^a)^n = x^(a*n) for integer n
			return simplifyPow(base.args[0], simplifyMul([]*Expr{base.args[1], exp}))
		case KindMul:
			out := make([]*Expr, len(base.args))
			for i, f := range base.args {
				out[i] = simplifyPow(f, exp)
			}
			return simplifyMul(out)
		}
	}
	return newNode(KindPow, nil, "", 0, base, exp)
}

func foldNumericPow(b *big.Rat, exp *Expr) (*Expr, bool) {
	if b.Cmp(big.NewRat(1, 1)) == 0 {
		return Int(1), true
	}
	if exp.kind != KindNumber {
		return nil, false
	}
	x := exp.num
	if b.Sign() == 0 {
		if x.Sign() > 0 {
			return Int(0), true
		}
		return nil, false
	}
	if x.IsInt() {
		n := x.Num()
		if !n.IsInt64() || n.Int64() > maxFoldExponent || n.Int64() < -maxFoldExponent {
			return nil, false
		}
		return newNode(KindNumber, ratPow(b, int(n.Int64())), "", 0), true
	}
	// exact square roots of positive rationals
	if b.Sign() > 0 && x.Denom().IsInt64() && x.Denom().Int64() == 2 {
		p, okp := exactSqrt(b.Num())
		q, okq := exactSqrt(b.Denom())
		if okp && okq {
			root := new(big.Rat).SetFrac(p, q)
			k := x.Num()
			if !k.IsInt64() || k.Int64() > maxFoldExponent || k.Int64() < -maxFoldExponent {
				return nil, false
			}
			return newNode(KindNumber, ratPow(root, int(k.Int64())), "", 0), true
		}
	}
	return nil, false
}

func exactSqrt(n *big.Int) (*big.Int, bool) {
	if n.Sign() < 0 {
		return nil, false
	}
	r := new(big.Int).Sqrt(n)
	return r, new(big.Int).Mul(r, r).Cmp(n) == 0
}

func ratPow(b *big.Rat, n int) *big.Rat {
	neg := n < 0
	if neg {
		n = -n
	}
	num := new(big.Int).Exp(b.Num(), big.NewInt(int64(n)), nil)
	den := new(big.Int).Exp(b.Denom(), big.NewInt(int64(n)), nil)
	if neg {
		num, den = den, num
	}
	if den.Sign() < 0 {
		num.Neg(num)
		den.Neg(den)
	}
	return new(big.Rat).SetFrac(num, den)
}

func simplifyFunc(name string, prime int, arg *Expr) *Expr {
	if prime != 0 {
		return newNode(KindFunc, nil, name, prime, arg)
	}
	if name == "sqrt" {
		return simplifyPow(arg, Frac(1, 2))
	}
	if arg.IsZero() {
		switch name {
		case "sin", "tan", "sinh", "tanh":
			return Int(0)
		case "cos", "cosh", "exp":
			return Int(1)
		}
	}
	switch {
	case name == "log" && arg.IsOne():
		return Int(0)
	case name == "exp" && arg.kind == KindFunc && arg.name == "log" && arg.prime == 0:
		return arg.args[0]
	case name == "log" && arg.kind == KindFunc && arg.name == "exp" && arg.prime == 0:
		return arg.args[0]
	}
	return newNode(KindFunc, nil, name, 0, arg)
}
