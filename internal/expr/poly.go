package expr

import (
	"container/heap"
	"encoding/binary"
	"math/big"
	"sort"
)

// power is one atom raised to a positive integer exponent.
type power struct {
	id  int32
	exp int32
}

// monomial is a product of atom powers sorted by atom id. The empty
// monomial is 1.
type monomial []power

func (m monomial) degree() int {
	d := 0
	for _, p := range m {
		d += int(p.exp)
	}
	return d
}

func (m monomial) exponent(id int32) int32 {
	for _, p := range m {
		if p.id == id {
			return p.exp
		}
		if p.id > id {
			break
		}
	}
	return 0
}

func (m monomial) key() string {
	buf := make([]byte, 8*len(m))
	for i, p := range m {
		binary.LittleEndian.PutUint32(buf[8*i:], uint32(p.id))
		binary.LittleEndian.PutUint32(buf[8*i+4:], uint32(p.exp))
	}
	return string(buf)
}

func mulMono(a, b monomial) monomial {
	out := make(monomial, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].id < b[j].id:
			out = append(out, a[i])
			i++
		case a[i].id > b[j].id:
			out = append(out, b[j])
			j++
		default:
			out = append(out, power{a[i].id, a[i].exp + b[j].exp})
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// divMono returns a/b when b divides a.
func divMono(a, b monomial) (monomial, bool) {
	out := make(monomial, 0, len(a))
	j := 0
	for _, p := range a {
		if j < len(b) && b[j].id < p.id {
			return nil, false
		}
		if j < len(b) && b[j].id == p.id {
			e := p.exp - b[j].exp
			j++
			switch {
			case e < 0:
				return nil, false
			case e > 0:
				out = append(out, power{p.id, e})
			}
			continue
		}
		out = append(out, p)
	}
	if j < len(b) {
		return nil, false
	}
	return out, true
}

// lcmMono takes the larger exponent of every atom.
func lcmMono(a, b monomial) monomial {
	out := make(monomial, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].id < b[j].id:
			out = append(out, a[i])
			i++
		case a[i].id > b[j].id:
			out = append(out, b[j])
			j++
		default:
			out = append(out, power{a[i].id, max(a[i].exp, b[j].exp)})
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

func setExponent(m monomial, id, exp int32) monomial {
	out := make(monomial, 0, len(m)+1)
	placed := false
	for _, p := range m {
		if p.id == id {
			if exp > 0 {
				out = append(out, power{id, exp})
			}
			placed = true
			continue
		}
		if !placed && p.id > id {
			if exp > 0 {
				out = append(out, power{id, exp})
			}
			placed = true
		}
		out = append(out, p)
	}
	if !placed && exp > 0 {
		out = append(out, power{id, exp})
	}
	return out
}

// cmpMono is graded lexicographic order on atom ids.
func cmpMono(a, b monomial) int {
	if da, db := a.degree(), b.degree(); da != db {
		if da > db {
			return 1
		}
		return -1
	}
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i].id < b[i].id:
			return 1
		case a[i].id > b[i].id:
			return -1
		case a[i].exp > b[i].exp:
			return 1
		case a[i].exp < b[i].exp:
			return -1
		}
	}
	switch {
	case len(a) > len(b):
		return 1
	case len(a) < len(b):
		return -1
	}
	return 0
}

type term struct {
	m monomial
	c *big.Rat
}

// poly is a sum of terms sorted by descending monomial, without zero
// coefficients. The nil poly is 0.
type poly []term

func constPoly(c *big.Rat) poly {
	if c.Sign() == 0 {
		return nil
	}
	return poly{{m: nil, c: new(big.Rat).Set(c)}}
}

func (p poly) isConst() bool {
	return len(p) == 0 || (len(p) == 1 && len(p[0].m) == 0)
}

func (p poly) constant() *big.Rat {
	if len(p) == 0 {
		return new(big.Rat)
	}
	return p[0].c
}

// accumulator sums terms keyed by monomial.
type accumulator struct {
	terms map[string]*term
}

func newAccumulator(hint int) *accumulator {
	return &accumulator{terms: make(map[string]*term, hint)}
}

func (a *accumulator) add(m monomial, c *big.Rat) {
	k := m.key()
	if t, ok := a.terms[k]; ok {
		t.c.Add(t.c, c)
		return
	}
	a.terms[k] = &term{m: m, c: new(big.Rat).Set(c)}
}

func (a *accumulator) poly() poly {
	out := make(poly, 0, len(a.terms))
	for _, t := range a.terms {
		if t.c.Sign() != 0 {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return cmpMono(out[i].m, out[j].m) > 0 })
	return out
}

func addPoly(a, b poly) poly {
	out := make(poly, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch c := cmpMono(a[i].m, b[j].m); {
		case c > 0:
			out = append(out, a[i])
			i++
		case c < 0:
			out = append(out, b[j])
			j++
		default:
			s := new(big.Rat).Add(a[i].c, b[j].c)
			if s.Sign() != 0 {
				out = append(out, term{m: a[i].m, c: s})
			}
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

func scalePoly(p poly, c *big.Rat) poly {
	if c.Sign() == 0 {
		return nil
	}
	out := make(poly, len(p))
	for i, t := range p {
		out[i] = term{m: t.m, c: new(big.Rat).Mul(t.c, c)}
	}
	return out
}

func negPoly(p poly) poly {
	return scalePoly(p, big.NewRat(-1, 1))
}

func mulPolyMono(p poly, m monomial, c *big.Rat) poly {
	out := make(poly, len(p))
	for i, t := range p {
		out[i] = term{m: mulMono(t.m, m), c: new(big.Rat).Mul(t.c, c)}
	}
	return out
}

// mulPolyRaw multiplies without applying atom relations.
func mulPolyRaw(a, b poly) poly {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	if b.isConst() {
		return scalePoly(a, b[0].c)
	}
	if a.isConst() {
		return scalePoly(b, a[0].c)
	}
	acc := newAccumulator(len(a) * len(b))
	c := new(big.Rat)
	for _, x := range a {
		for _, y := range b {
			c.Mul(x.c, y.c)
			acc.add(mulMono(x.m, y.m), c)
		}
	}
	return acc.poly()
}

// minContent is the largest monomial dividing every term.
func minContent(p poly) monomial {
	if len(p) == 0 {
		return nil
	}
	content := append(monomial(nil), p[0].m...)
	for _, t := range p[1:] {
		next := content[:0:0]
		for _, c := range content {
			if e := t.m.exponent(c.id); e > 0 {
				next = append(next, power{c.id, min(c.exp, e)})
			}
		}
		content = next
		if len(content) == 0 {
			break
		}
	}
	return content
}

func divPolyMono(p poly, m monomial) poly {
	if len(m) == 0 {
		return p
	}
	out := make(poly, len(p))
	for i, t := range p {
		q, _ := divMono(t.m, m)
		out[i] = term{m: q, c: t.c}
	}
	return out
}

// partial is the formal derivative with respect to one atom.
func partial(p poly, id int32) poly {
	acc := newAccumulator(len(p))
	for _, t := range p {
		e := t.m.exponent(id)
		if e == 0 {
			continue
		}
		c := new(big.Rat).Mul(t.c, new(big.Rat).SetInt64(int64(e)))
		acc.add(setExponent(t.m, id, e-1), c)
	}
	return acc.poly()
}

func atomsOf(p poly) []int32 {
	seen := map[int32]bool{}
	var out []int32
	for _, t := range p {
		for _, pw := range t.m {
			if !seen[pw.id] {
				seen[pw.id] = true
				out = append(out, pw.id)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// monoHeap is a max-heap of monomials for exact division.
type monoHeap []monomial

func (h monoHeap) Len() int           { return len(h) }
func (h monoHeap) Less(i, j int) bool { return cmpMono(h[i], h[j]) > 0 }
func (h monoHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *monoHeap) Push(x any)        { *h = append(*h, x.(monomial)) }
func (h *monoHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// divExact divides p by d in the plain polynomial ring and reports whether
// the remainder is zero.
func divExact(p, d poly) (poly, bool) {
	if len(d) == 0 {
		return nil, false
	}
	if len(p) == 0 {
		return nil, true
	}
	if d.isConst() {
		return scalePoly(p, new(big.Rat).Inv(d[0].c)), true
	}
	lead := d[0]
	// the leading monomial of any multiple of d is at least lead
	if cmpMono(p[0].m, lead.m) < 0 {
		return nil, false
	}

	rem := make(map[string]*term, len(p))
	h := make(monoHeap, 0, len(p))
	for _, t := range p {
		rem[t.m.key()] = &term{m: t.m, c: new(big.Rat).Set(t.c)}
		h = append(h, t.m)
	}
	heap.Init(&h)

	acc := newAccumulator(len(p))
	tc := new(big.Rat)
	prod := new(big.Rat)
	for h.Len() > 0 {
		m := heap.Pop(&h).(monomial)
		k := m.key()
		t, ok := rem[k]
		if !ok {
			continue
		}
		delete(rem, k)
		if t.c.Sign() == 0 {
			continue
		}
		tm, ok := divMono(m, lead.m)
		if !ok {
			return nil, false
		}
		tc.Quo(t.c, lead.c)
		acc.add(tm, tc)
		for _, s := range d[1:] {
			sm := mulMono(tm, s.m)
			sk := sm.key()
			prod.Mul(tc, s.c)
			if r, ok := rem[sk]; ok {
				r.c.Sub(r.c, prod)
				continue
			}
			rem[sk] = &term{m: sm, c: new(big.Rat).Neg(prod)}
			heap.Push(&h, sm)
		}
	}
	return acc.poly(), true
}

// evalPoly evaluates p with atom values and returns the value and the sum of
// term magnitudes.
func evalPoly(p poly, vals []float64) (float64, float64) {
	sum, scale := 0.0, 0.0
	for _, t := range p {
		c, _ := t.c.Float64()
		v := c
		for _, pw := range t.m {
			x := vals[pw.id]
			for k := int32(0); k < pw.exp; k++ {
				v *= x
			}
		}
		sum += v
		if v < 0 {
			scale -= v
		} else {
			scale += v
		}
	}
	return sum, scale
}
