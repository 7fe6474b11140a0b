package expr

// Differentiate returns the simplified derivative of e with respect to the
// symbol sym. Sub-expressions free of sym differentiate to a literal zero.
// Undefined functions follow the chain rule with primes: d/dt a(t) = a'(t).
func Differentiate(e *Expr, sym string) *Expr {
	return Simplify(derive(e, sym))
}

func derive(e *Expr, x string) *Expr {
	if !DependsOn(e, x) {
		return Int(0)
	}
	switch e.kind {
	case KindSymbol:
		return Int(1)
	case KindNeg:
		return Negate(derive(e.args[0], x))
	case KindAdd:
		terms := make([]*Expr, 0, len(e.args))
		for _, a := range e.args {
			if DependsOn(a, x) {
				terms = append(terms, derive(a, x))
			}
		}
		return Sum(terms...)
	case KindSub:
		return Difference(derive(e.args[0], x), derive(e.args[1], x))
	case KindMul:
		// product rule over n factors
		var terms []*Expr
		for i, f := range e.args {
			if !DependsOn(f, x) {
				continue
			}
			factors := make([]*Expr, 0, len(e.args))
			factors = append(factors, e.args[:i]...)
			factors = append(factors, derive(f, x))
			factors = append(factors, e.args[i+1:]...)
			terms = append(terms, Product(factors...))
		}
		return Sum(terms...)
	case KindDiv:
		a, b := e.args[0], e.args[1]
		num := Difference(Product(derive(a, x), b), Product(a, derive(b, x)))
		return Quotient(num, Power(b, Int(2)))
	case KindPow:
		base, exp := e.args[0], e.args[1]
		switch {
		case !DependsOn(exp, x):
			return Product(exp, Power(base, Sum(exp, Int(-1))), derive(base, x))
		case !DependsOn(base, x):
			return Product(e, Call("log", base), derive(exp, x))
		default:
			inner := Sum(
				Product(derive(exp, x), Call("log", base)),
				Quotient(Product(exp, derive(base, x)), base),
			)
			return Product(e, inner)
		}
	case KindFunc:
		arg := e.args[0]
		var outer *Expr
		if f, ok := builtins[e.name]; ok && e.prime == 0 {
			outer = f.deriv(arg)
		} else {
			outer = Derived(e.name, e.prime+1, arg)
		}
		return Product(outer, derive(arg, x))
	}
	return Int(0)
}
