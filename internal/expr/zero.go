package expr

import (
	"math"
	"math/rand"
	"sort"
)

// Verdict is the outcome of a zero test.
type Verdict int

const (
	// Zero means the normal form is the literal zero. This is a proof.
	Zero Verdict = iota
	// NonZero means some sample evaluated clearly away from zero.
	NonZero
	// Indeterminate means the normal form is not zero but every usable
	// sample was numerically zero, or no sample was usable.
	Indeterminate
)

func (v Verdict) String() string {
	switch v {
	case Zero:
		return "zero"
	case NonZero:
		return "nonzero"
	default:
		return "indeterminate"
	}
}

// Sampler controls the numeric corroboration of the zero test. Symbols are
// drawn uniformly from [Low, High]; undefined function applications get
// independent draws.
type Sampler struct {
	Samples   int     `yaml:"samples" json:"samples"`
	Seed      int64   `yaml:"seed" json:"seed"`
	Tolerance float64 `yaml:"tolerance" json:"tolerance"`
	Low       float64 `yaml:"low" json:"low"`
	High      float64 `yaml:"high" json:"high"`
}

func DefaultSampler() Sampler {
	return Sampler{
		Samples:   8,
		Seed:      1,
		Tolerance: 1e-9,
		Low:       0.6,
		High:      2.4,
	}
}

func (s Sampler) withDefaults() Sampler {
	d := DefaultSampler()
	if s.Samples <= 0 {
		s.Samples = d.Samples
	}
	if s.Tolerance <= 0 {
		s.Tolerance = d.Tolerance
	}
	if s.High <= s.Low {
		s.Low, s.High = d.Low, d.High
	}
	return s
}

// IsZero runs the zero test with a throwaway arena.
func IsZero(e *Expr, s Sampler) Verdict {
	return NewArena().IsZero(e, s)
}

// IsZero reports Zero when the normal form of e is zero, NonZero when a
// sample shows otherwise and Indeterminate when neither is established.
func (ar *Arena) IsZero(e *Expr, s Sampler) Verdict {
	r, err := ar.Normalize(e)
	if err != nil {
		return sampleTree(e, s.withDefaults())
	}
	return r.Verdict(s)
}

// Verdict runs the zero test on a normal form.
func (r *Rational) Verdict(s Sampler) Verdict {
	if r.IsZero() {
		return Zero
	}
	s = s.withDefaults()
	atoms := r.ar.snapshot()
	// distinct symbols are algebraically independent
	if symbolsOnly(r.num, atoms) {
		return NonZero
	}

	used := map[int32]bool{}
	mark := func(p poly) {
		for _, t := range p {
			for _, pw := range t.m {
				used[pw.id] = true
			}
		}
	}
	mark(r.num)
	for _, pw := range r.mono {
		used[pw.id] = true
	}
	for _, fp := range r.facs {
		mark(fp.f.p)
	}
	ids := make([]int32, 0, len(used))
	var leaves []*Expr
	for id := range used {
		ids = append(ids, id)
		leaves = append(leaves, atoms[id].expr)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	names, calls := sampleInputs(leaves...)

	rng := rand.New(rand.NewSource(s.Seed))
	vals := make([]float64, len(atoms))
	for i := 0; i < s.Samples; i++ {
		env := s.draw(rng, names, calls)
		ok := true
		for _, id := range ids {
			v, err := Eval(atoms[id].expr, env)
			if err != nil {
				ok = false
				break
			}
			vals[id] = v
		}
		if !ok {
			continue
		}
		num, scale := evalPoly(r.num, vals)
		den := 1.0
		for _, pw := range r.mono {
			den *= math.Pow(vals[pw.id], float64(pw.exp))
		}
		for _, fp := range r.facs {
			v, _ := evalPoly(fp.f.p, vals)
			den *= math.Pow(v, float64(fp.mult))
		}
		if !finite(num) || !finite(den) || math.Abs(den) < 1e-12 {
			continue
		}
		if math.Abs(num) > s.Tolerance*math.Max(scale, 1) {
			return NonZero
		}
	}
	return Indeterminate
}

func symbolsOnly(p poly, atoms []*atom) bool {
	for _, t := range p {
		for _, pw := range t.m {
			if atoms[pw.id].expr.kind != KindSymbol {
				return false
			}
		}
	}
	return true
}

func sampleTree(e *Expr, s Sampler) Verdict {
	names, calls := sampleInputs(e)
	rng := rand.New(rand.NewSource(s.Seed))
	for i := 0; i < s.Samples; i++ {
		v, err := Eval(e, s.draw(rng, names, calls))
		if err != nil {
			continue
		}
		if math.Abs(v) > s.Tolerance {
			return NonZero
		}
	}
	return Indeterminate
}

// sampleInputs lists the free symbols and undefined calls to draw, sorted
// so the random stream is reproducible.
func sampleInputs(es ...*Expr) ([]string, []string) {
	symSet := map[string]bool{}
	callSet := map[string]*Expr{}
	for _, e := range es {
		collectSymbols(e, symSet)
		collectUndefined(e, callSet)
	}
	delete(symSet, symPi)
	names := make([]string, 0, len(symSet))
	for n := range symSet {
		names = append(names, n)
	}
	sort.Strings(names)
	calls := make([]string, 0, len(callSet))
	for c := range callSet {
		calls = append(calls, c)
	}
	sort.Strings(calls)
	return names, calls
}

func (s Sampler) draw(rng *rand.Rand, names, calls []string) Env {
	env := make(Env, len(names)+len(calls))
	for _, n := range names {
		env[n] = s.Low + rng.Float64()*(s.High-s.Low)
	}
	for _, c := range calls {
		env[c] = s.Low + rng.Float64()*(s.High-s.Low)
	}
	return env
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
