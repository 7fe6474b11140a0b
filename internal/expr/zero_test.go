package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsZeroVerdicts(t *testing.T) {
	tests := []struct {
		in   string
		want Verdict
	}{
		{"0", Zero},
		{"sin(x)^2 + cos(x)^2 - 1", Zero},
		{"(x^2 - 1)/(x - 1) - x - 1", Zero},
		{"x - y", NonZero},
		{"sin(x)", NonZero},
		{"f(t) - f'(t)", NonZero},
		{"1e-3*x", NonZero},
		{"1e-12", NonZero},
		{"1e400^2", NonZero},
		{"-1e-12*x", NonZero},
		{"1e-20*x*y - 1e-20*y*x + 1e-30*pi", NonZero},
		{"sin(2*x) - 2*sin(x)*cos(x)", Indeterminate},
		{"exp(x + y) - exp(x)*exp(y)", Indeterminate},
		{"sin(pi)", Indeterminate},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsZero(mustParse(t, tt.in), DefaultSampler()))
		})
	}
}

func TestIsZeroNeverClaimsZeroFromSamples(t *testing.T) {
	// too large to normalize, so only sampling is possible
	e := mustParse(t, "(x + 1)^1000 - (1 + x)^1000")
	assert.Equal(t, Indeterminate, IsZero(e, DefaultSampler()))
}

func TestIsZeroIsDeterministic(t *testing.T) {
	e := mustParse(t, "exp(x + y) - exp(x)*exp(y) + 1e-12*x")
	s := Sampler{Samples: 4, Seed: 7}
	first := IsZero(e, s)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, IsZero(e, s))
	}
}

func TestSamplerDefaults(t *testing.T) {
	s := Sampler{}.withDefaults()
	d := DefaultSampler()
	assert.Equal(t, d.Samples, s.Samples)
	assert.Equal(t, d.Tolerance, s.Tolerance)
	assert.Equal(t, d.Low, s.Low)
	assert.Equal(t, d.High, s.High)
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "zero", Zero.String())
	assert.Equal(t, "nonzero", NonZero.String())
	assert.Equal(t, "indeterminate", Indeterminate.String())
}
