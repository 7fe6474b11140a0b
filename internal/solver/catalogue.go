package solver

import "github.com/nightness/tensorcalc/internal/verify"

func diag(a, b, c, d string) [][]string {
	return [][]string{
		{a, "0", "0", "0"},
		{"0", b, "0", "0"},
		{"0", "0", c, "0"},
		{"0", "0", "0", d},
	}
}

// Schwarzschild is the static spherically symmetric vacuum.
func Schwarzschild() *Template {
	return &Template{
		Name:       "schwarzschild",
		Metric:     diag("-(1 - 2*M/r)", "1/(1 - 2*M/r)", "r^2", "r^2*sin(theta)^2"),
		Parameters: map[string]string{"M": "mass"},
		Domain:     "r > 2*M",
		Source:     SourceSpec{Type: verify.Vacuum},
	}
}

// ReissnerNordstrom is the charged static black hole, sourced by its
// Coulomb field.
func ReissnerNordstrom() *Template {
	const f = "(1 - 2*M/r + Q^2/r^2)"
	return &Template{
		Name:   "reissner_nordstrom",
		Metric: diag("-"+f, "1/"+f, "r^2", "r^2*sin(theta)^2"),
		Parameters: map[string]string{
			"M": "mass",
			"Q": "electric charge",
		},
		Domain: "r > M + sqrt(M^2 - Q^2)",
		Source: SourceSpec{
			Type: verify.Electromagnetic,
			T: diag(
				"Q^2*"+f+"/(8*pi*r^4)",
				"-Q^2/(8*pi*r^4*"+f+")",
				"Q^2/(8*pi*r^2)",
				"Q^2*sin(theta)^2/(8*pi*r^2)",
			),
		},
	}
}

// Kerr is the rotating vacuum in Boyer-Lindquist coordinates.
func Kerr() *Template {
	const (
		sigma = "(r^2 + a^2*cos(theta)^2)"
		delta = "(r^2 - 2*M*r + a^2)"
	)
	gtphi := "-2*M*a*r*sin(theta)^2/" + sigma
	return &Template{
		Name: "kerr",
		Metric: [][]string{
			{"-(1 - 2*M*r/" + sigma + ")", "0", "0", gtphi},
			{"0", sigma + "/" + delta, "0", "0"},
			{"0", "0", sigma, "0"},
			{gtphi, "0", "0", "(r^2 + a^2 + 2*M*a^2*r*sin(theta)^2/" + sigma + ")*sin(theta)^2"},
		},
		Parameters: map[string]string{
			"M": "mass",
			"a": "angular momentum per unit mass",
		},
		Domain: "r > M + sqrt(M^2 - a^2)",
		Source: SourceSpec{Type: verify.Vacuum},
	}
}

// DeSitter is the flat-slicing de Sitter universe, a vacuum with Λ = 3H².
func DeSitter() *Template {
	return &Template{
		Name:   "de_sitter",
		Metric: diag("-1", "exp(H*t)^2", "exp(H*t)^2*r^2", "exp(H*t)^2*r^2*sin(theta)^2"),
		Parameters: map[string]string{
			"H": "Hubble rate",
		},
		Domain: "H > 0",
		Source: SourceSpec{Type: verify.Vacuum, Lambda: "3*H^2"},
	}
}

// FLRWFlat is the spatially flat Friedmann universe filled with a perfect
// fluid of density 3a'²/(8πa²).
func FLRWFlat() *Template {
	const p = "(2*a(t)*a''(t) + a'(t)^2)"
	return &Template{
		Name:   "flrw_flat",
		Metric: diag("-1", "a(t)^2", "a(t)^2*r^2", "a(t)^2*r^2*sin(theta)^2"),
		Parameters: map[string]string{
			"a(t)": "scale factor",
		},
		Functions: []string{"a"},
		Domain:    "a(t) > 0",
		Source: SourceSpec{
			Type: verify.PerfectFluid,
			T: diag(
				"3*a'(t)^2/(8*pi*a(t)^2)",
				"-"+p+"/(8*pi)",
				"-"+p+"*r^2/(8*pi)",
				"-"+p+"*r^2*sin(theta)^2/(8*pi)",
			),
		},
	}
}
