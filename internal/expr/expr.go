package expr

import (
	"encoding/binary"
	"hash/fnv"
	"math/big"
	"sort"
	"sync/atomic"
)

// Kind identifies the node type of an [Expr].
type Kind uint8

const (
	KindNumber Kind = iota
	KindSymbol
	KindNeg
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindPow
	KindFunc
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindSymbol:
		return "symbol"
	case KindNeg:
		return "neg"
	case KindAdd:
		return "add"
	case KindSub:
		return "sub"
	case KindMul:
		return "mul"
	case KindDiv:
		return "div"
	case KindPow:
		return "pow"
	case KindFunc:
		return "func"
	default:
		return "unknown"
	}
}

// Expr is an immutable expression node. Add and Mul are n-ary, every other
// operator has fixed arity. Function applications take one argument; prime
// counts derivatives of an undefined function such as a''(t).
type Expr struct {
	kind  Kind
	num   *big.Rat
	name  string
	prime int
	args  []*Expr
	hash  uint64
	str   atomic.Pointer[string]
}

func newNode(kind Kind, num *big.Rat, name string, prime int, args ...*Expr) *Expr {
	e := &Expr{kind: kind, num: num, name: name, prime: prime, args: args}
	h := fnv.New64a()
	var buf [8]byte
	buf[0] = byte(kind)
	h.Write(buf[:1])
	if num != nil {
		h.Write([]byte(num.RatString()))
	}
	h.Write([]byte(name))
	binary.LittleEndian.PutUint64(buf[:], uint64(prime))
	h.Write(buf[:])
	for _, a := range args {
		binary.LittleEndian.PutUint64(buf[:], a.hash)
		h.Write(buf[:])
	}
	e.hash = h.Sum64()
	return e
}

// Int returns the integer literal n.
func Int(n int64) *Expr {
	return newNode(KindNumber, new(big.Rat).SetInt64(n), "", 0)
}

// Frac returns the rational literal p/q. q must be non-zero.
func Frac(p, q int64) *Expr {
	return newNode(KindNumber, big.NewRat(p, q), "", 0)
}

// Number returns a literal holding a copy of r.
func Number(r *big.Rat) *Expr {
	return newNode(KindNumber, new(big.Rat).Set(r), "", 0)
}

// Sym returns the symbol called name.
func Sym(name string) *Expr {
	return newNode(KindSymbol, nil, name, 0)
}

func Negate(e *Expr) *Expr {
	return newNode(KindNeg, nil, "", 0, e)
}

func Sum(terms ...*Expr) *Expr {
	switch len(terms) {
	case 0:
		return Int(0)
	case 1:
		return terms[0]
	}
	return newNode(KindAdd, nil, "", 0, append([]*Expr(nil), terms...)...)
}

func Difference(a, b *Expr) *Expr {
	return newNode(KindSub, nil, "", 0, a, b)
}

func Product(factors ...*Expr) *Expr {
	switch len(factors) {
	case 0:
		return Int(1)
	case 1:
		return factors[0]
	}
	return newNode(KindMul, nil, "", 0, append([]*Expr(nil), factors...)...)
}

func Quotient(a, b *Expr) *Expr {
	return newNode(KindDiv, nil, "", 0, a, b)
}

func Power(base, exp *Expr) *Expr {
	return newNode(KindPow, nil, "", 0, base, exp)
}

// Call applies the named function to arg. No check is made that the name is
// known; the parser does that.
func Call(name string, arg *Expr) *Expr {
	return newNode(KindFunc, nil, name, 0, arg)
}

// Derived applies the prime-th derivative of the undefined function name.
func Derived(name string, prime int, arg *Expr) *Expr {
	return newNode(KindFunc, nil, name, prime, arg)
}

func (e *Expr) Kind() Kind { return e.kind }
func (e *Expr) Name() string { return e.name }
func (e *Expr) Prime() int { return e.prime }
func (e *Expr) Hash() uint64 { return e.hash }
func (e *Expr) NumArgs() int { return len(e.args) }
func (e *Expr) Arg(i int) *Expr { return e.args[i] }

// Args returns a copy of the operand list.
func (e *Expr) Args() []*Expr {
	return append([]*Expr(nil), e.args...)
}

// Value returns a copy of the literal value, or nil for non-numbers.
func (e *Expr) Value() *big.Rat {
	if e.kind != KindNumber {
		return nil
	}
	return new(big.Rat).Set(e.num)
}

func (e *Expr) IsNumber() bool { return e.kind == KindNumber }

// IsZero reports whether e is the literal 0. See [Arena.IsZero] for the
// semantic test.
func (e *Expr) IsZero() bool { return e.kind == KindNumber && e.num.Sign() == 0 }

func (e *Expr) IsOne() bool {
	return e.kind == KindNumber && e.num.IsInt() && e.num.Num().IsInt64() && e.num.Num().Int64() == 1
}

func (e *Expr) isInt() bool { return e.kind == KindNumber && e.num.IsInt() }

// Equal reports structural equality.
func (e *Expr) Equal(o *Expr) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil || e.hash != o.hash || e.kind != o.kind {
		return false
	}
	if e.name != o.name || e.prime != o.prime || len(e.args) != len(o.args) {
		return false
	}
	if e.kind == KindNumber && e.num.Cmp(o.num) != 0 {
		return false
	}
	for i := range e.args {
		if !e.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

// FreeSymbols returns the sorted names of symbols occurring in e. Function
// names are not symbols.
func FreeSymbols(e *Expr) []string {
	set := map[string]bool{}
	collectSymbols(e, set)
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func collectSymbols(e *Expr, set map[string]bool) {
	if e.kind == KindSymbol {
		set[e.name] = true
		return
	}
	for _, a := range e.args {
		collectSymbols(a, set)
	}
}

// DependsOn reports whether the symbol occurs anywhere in e.
func DependsOn(e *Expr, sym string) bool {
	if e.kind == KindSymbol {
		return e.name == sym
	}
	for _, a := range e.args {
		if DependsOn(a, sym) {
			return true
		}
	}
	return false
}

// Substitute replaces every occurrence of the symbol with value.
func Substitute(e *Expr, sym string, value *Expr) *Expr {
	return SubstituteAll(e, map[string]*Expr{sym: value})
}

// SubstituteAll replaces symbols simultaneously, so {x: y, y: x} swaps them.
func SubstituteAll(e *Expr, values map[string]*Expr) *Expr {
	if len(values) == 0 {
		return e
	}
	return substitute(e, values)
}

func substitute(e *Expr, values map[string]*Expr) *Expr {
	switch e.kind {
	case KindNumber:
		return e
	case KindSymbol:
		if v, ok := values[e.name]; ok {
			return v
		}
		return e
	}
	changed := false
	args := make([]*Expr, len(e.args))
	for i, a := range e.args {
		args[i] = substitute(a, values)
		if args[i] != a {
			changed = true
		}
	}
	if !changed {
		return e
	}
	return newNode(e.kind, e.num, e.name, e.prime, args...)
}

// UndefinedCalls returns the distinct applications of functions outside the
// built-in table, such as a(t) and a'(t), keyed by their printed form.
func UndefinedCalls(e *Expr) map[string]*Expr {
	out := map[string]*Expr{}
	collectUndefined(e, out)
	return out
}

func collectUndefined(e *Expr, out map[string]*Expr) {
	if e.kind == KindFunc && !isBuiltin(e) {
		out[e.String()] = e
	}
	for _, a := range e.args {
		collectUndefined(a, out)
	}
}

func isBuiltin(e *Expr) bool {
	if e.prime != 0 {
		return false
	}
	_, ok := builtins[e.name]
	return ok
}
