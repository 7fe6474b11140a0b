package expr

import (
	"math/big"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// atom is an indeterminate of the normal form: a symbol, a function
// application with a canonical argument, a radical P^(1/d) of a polynomial,
// or an opaque power with a symbolic exponent.
type atom struct {
	expr *Expr
	key  string
	deps map[string]bool

	// sin partner of a cos atom, -1 otherwise
	sinID int32
	// d for radicals, 0 otherwise
	root     int32
	radicand poly
}

// factor is a primitive polynomial with at least two terms, used as a
// denominator factor. Factors are unique per key within an arena.
type factor struct {
	p   poly
	key string
}

type normalEntry struct {
	e *Expr
	r *Rational
}

type derivKey struct {
	id  int32
	sym string
}

// Arena owns the atom table and memo caches of one invocation. Values it
// returns are only meaningful with the same arena. All methods are safe for
// concurrent use.
type Arena struct {
	mu       sync.RWMutex
	atoms    []*atom
	atomIdx  map[string]int32
	factors  []*factor
	factorIx map[string]*factor
	interned map[uint64][]*Expr
	normal   map[uint64][]normalEntry
	derivs   map[derivKey]*Rational
}

func NewArena() *Arena {
	return &Arena{
		atomIdx:  map[string]int32{},
		factorIx: map[string]*factor{},
		interned: map[uint64][]*Expr{},
		normal:   map[uint64][]normalEntry{},
		derivs:   map[derivKey]*Rational{},
	}
}

// Intern returns the arena's shared copy of e, so structurally equal
// sub-expressions are stored once.
func (ar *Arena) Intern(e *Expr) *Expr {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	return ar.internLocked(e)
}

func (ar *Arena) internLocked(e *Expr) *Expr {
	for _, c := range ar.interned[e.hash] {
		if c.Equal(e) {
			return c
		}
	}
	if len(e.args) > 0 {
		args := make([]*Expr, len(e.args))
		changed := false
		for i, a := range e.args {
			args[i] = ar.internLocked(a)
			if args[i] != a {
				changed = true
			}
		}
		if changed {
			n := &Expr{kind: e.kind, num: e.num, name: e.name, prime: e.prime, args: args, hash: e.hash}
			if s := e.str.Load(); s != nil {
				n.str.Store(s)
			}
			e = n
		}
	}
	ar.interned[e.hash] = append(ar.interned[e.hash], e)
	return e
}

// Len reports the number of distinct interned nodes and atoms.
func (ar *Arena) Len() (nodes, atoms int) {
	ar.mu.RLock()
	defer ar.mu.RUnlock()
	for _, b := range ar.interned {
		nodes += len(b)
	}
	return nodes, len(ar.atoms)
}

func (ar *Arena) snapshot() []*atom {
	ar.mu.RLock()
	defer ar.mu.RUnlock()
	return ar.atoms
}

func (ar *Arena) atomAt(id int32) *atom {
	ar.mu.RLock()
	defer ar.mu.RUnlock()
	return ar.atoms[id]
}

// atomFor returns the id of the atom for a canonical symbol or function
// application, creating it on first use. A cos atom always has its sin
// partner.
func (ar *Arena) atomFor(e *Expr) int32 {
	key := e.String()
	ar.mu.RLock()
	id, ok := ar.atomIdx[key]
	ar.mu.RUnlock()
	if ok {
		return id
	}
	var sinExpr *Expr
	if e.kind == KindFunc && e.prime == 0 && e.name == "cos" {
		sinExpr = Call("sin", e.args[0])
		// cache the printed form outside the lock
		_ = sinExpr.String()
	}

	ar.mu.Lock()
	defer ar.mu.Unlock()
	sinID := int32(-1)
	if sinExpr != nil {
		sinID = ar.addAtomLocked(&atom{expr: sinExpr, sinID: -1})
	}
	return ar.addAtomLocked(&atom{expr: e, sinID: sinID})
}

func (ar *Arena) addAtomLocked(a *atom) int32 {
	a.key = a.expr.String()
	if id, ok := ar.atomIdx[a.key]; ok {
		return id
	}
	a.expr = ar.internLocked(a.expr)
	a.deps = map[string]bool{}
	collectSymbols(a.expr, a.deps)
	id := int32(len(ar.atoms))
	ar.atoms = append(ar.atoms, a)
	ar.atomIdx[a.key] = id
	return id
}

// rootAtom returns the atom P^(1/d).
func (ar *Arena) rootAtom(p poly, d int32) int32 {
	e := Power(ar.polyExpr(p), Frac(1, int64(d)))
	key := e.String()
	ar.mu.RLock()
	id, ok := ar.atomIdx[key]
	ar.mu.RUnlock()
	if ok {
		return id
	}
	ar.mu.Lock()
	defer ar.mu.Unlock()
	return ar.addAtomLocked(&atom{expr: e, sinID: -1, root: d, radicand: p})
}

// monoKey is the id-independent name of a monomial.
func monoKey(atoms []*atom, m monomial) string {
	parts := make([]string, len(m))
	for i, p := range m {
		parts[i] = atoms[p.id].key + "^" + strconv.Itoa(int(p.exp))
	}
	sort.Strings(parts)
	return strings.Join(parts, "*")
}

// primitive scales p to integer coefficients with unit content and a
// positive leading term under the id-independent order. It returns the
// scaled poly, its key and the scale s with p = prim/s.
func (ar *Arena) primitive(p poly) (poly, string, *big.Rat) {
	atoms := ar.snapshot()
	keys := make([]string, len(p))
	lead := 0
	for i, t := range p {
		keys[i] = monoKey(atoms, t.m)
		if keys[i] > keys[lead] {
			lead = i
		}
	}
	den := big.NewInt(1)
	num := new(big.Int)
	for _, t := range p {
		g := new(big.Int).GCD(nil, nil, den, t.c.Denom())
		den.Mul(den, new(big.Int).Quo(t.c.Denom(), g))
	}
	for _, t := range p {
		v := new(big.Int).Mul(t.c.Num(), new(big.Int).Quo(den, t.c.Denom()))
		num.GCD(nil, nil, num, new(big.Int).Abs(v))
	}
	s := new(big.Rat).SetFrac(den, num)
	if p[lead].c.Sign() < 0 {
		s.Neg(s)
	}
	prim := scalePoly(p, s)

	order := make([]int, len(prim))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return keys[order[i]] < keys[order[j]] })
	var b strings.Builder
	for _, i := range order {
		b.WriteString(prim[i].c.RatString())
		b.WriteByte('|')
		b.WriteString(keys[i])
		b.WriteByte(';')
	}
	return prim, b.String(), s
}

func (ar *Arena) knownFactors() []*factor {
	ar.mu.RLock()
	defer ar.mu.RUnlock()
	return ar.factors
}

func (ar *Arena) registerFactor(prim poly, key string) *factor {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	if f, ok := ar.factorIx[key]; ok {
		return f
	}
	f := &factor{p: prim, key: key}
	ar.factorIx[key] = f
	// copy on write, readers hold snapshots
	next := make([]*factor, 0, len(ar.factors)+1)
	next = append(next, ar.factors...)
	next = append(next, f)
	sort.SliceStable(next, func(i, j int) bool { return len(next[i].p) < len(next[j].p) })
	ar.factors = next
	return f
}

// factorize splits p into coef * mono * product of primitive factors,
// reusing factors the arena has seen before.
func (ar *Arena) factorize(p poly) (*big.Rat, monomial, []facPow) {
	mono := minContent(p)
	p = divPolyMono(p, mono)
	if p.isConst() {
		return new(big.Rat).Set(p.constant()), mono, nil
	}
	var facs []facPow
	for _, f := range ar.knownFactors() {
		for !p.isConst() {
			q, ok := divExact(p, f.p)
			if !ok {
				break
			}
			facs = addFacPow(facs, f, 1)
			p = q
		}
		if p.isConst() {
			break
		}
	}
	coef := big.NewRat(1, 1)
	if p.isConst() {
		coef.Set(p.constant())
	} else {
		prim, key, s := ar.primitive(p)
		coef.Inv(s)
		facs = addFacPow(facs, ar.registerFactor(prim, key), 1)
	}
	return coef, mono, facs
}

func (ar *Arena) lookupNormal(e *Expr) (*Rational, bool) {
	ar.mu.RLock()
	defer ar.mu.RUnlock()
	for _, n := range ar.normal[e.hash] {
		if n.e.Equal(e) {
			return n.r, true
		}
	}
	return nil, false
}

func (ar *Arena) storeNormal(e *Expr, r *Rational) {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	for _, n := range ar.normal[e.hash] {
		if n.e.Equal(e) {
			return
		}
	}
	ar.normal[e.hash] = append(ar.normal[e.hash], normalEntry{e: e, r: r})
}
