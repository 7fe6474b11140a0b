package solver_test

import (
	"context"
	"encoding/json"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nightness/tensorcalc/internal/expr"
	"github.com/nightness/tensorcalc/internal/solver"
	"github.com/nightness/tensorcalc/internal/verify"
)

var spherical = []string{"t", "r", "theta", "phi"}

var _ = Describe("Registry", func() {
	It("lists the built-in symmetry classes", func() {
		Expect(solver.NewRegistry().List()).To(Equal([]string{"axisymmetric", "cosmological", "spherical"}))
	})

	It("rejects unknown tags", func() {
		_, err := solver.NewRegistry().Get("toroidal")
		Expect(err).To(MatchError(solver.ErrUnsupportedSymmetry))
	})
})

var _ = Describe("SolveVacuum", func() {
	var (
		s   *solver.Solver
		ctx context.Context
	)

	BeforeEach(func() {
		s = solver.New()
		ctx = context.Background()
	})

	It("finds Schwarzschild for spherical symmetry", func() {
		sol, err := s.SolveVacuum(ctx, spherical, "spherical")
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Name).To(Equal("schwarzschild"))
		Expect(sol.Type).To(Equal("exact"))
		Expect(sol.SourceType).To(Equal(verify.Vacuum))
		Expect(sol.ConstraintsSatisfied).To(Equal(verify.Satisfied))
		Expect(sol.Parameters).To(HaveKey("M"))
		Expect(sol.Domain).To(Equal("r > 2*M"))
	})

	It("renames placeholders to the given coordinates", func() {
		sol, err := s.SolveVacuum(ctx, []string{"T", "R", "th", "ph"}, "spherical")
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Coordinates).To(Equal([]string{"T", "R", "th", "ph"}))
		Expect(sol.Metric[2][2]).To(Equal("R^2"))
		Expect(sol.Metric[3][3]).To(ContainSubstring("sin(th)"))
		for _, row := range sol.Metric {
			for _, c := range row {
				Expect(c).NotTo(ContainSubstring("theta"))
			}
		}
	})

	It("finds de Sitter with its cosmological constant", func() {
		sol, err := s.SolveVacuum(ctx, spherical, "cosmological")
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Name).To(Equal("de_sitter"))
		Expect(sol.Lambda).To(Equal("3*H^2"))
	})

	It("finds Kerr for axial symmetry", func() {
		if testing.Short() {
			Skip("kerr verification is slow")
		}
		sol, err := s.SolveVacuum(ctx, spherical, "axisymmetric")
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Name).To(Equal("kerr"))
		Expect(sol.Metric[0][3]).To(Equal(sol.Metric[3][0]))
	})

	It("reports an unsupported symmetry", func() {
		_, err := s.SolveVacuum(ctx, spherical, "planar")
		Expect(err).To(MatchError(solver.ErrUnsupportedSymmetry))
	})

	DescribeTable("rejects bad coordinates",
		func(coords []string, want error) {
			_, err := s.SolveVacuum(ctx, coords, "spherical")
			Expect(err).To(MatchError(want))
		},
		Entry("three coordinates", []string{"t", "r", "theta"}, solver.ErrDimensionMismatch),
		Entry("five coordinates", []string{"t", "r", "theta", "phi", "w"}, solver.ErrDimensionMismatch),
		Entry("parameter name", []string{"t", "M", "theta", "phi"}, solver.ErrInvalidCoordinates),
		Entry("duplicate", []string{"t", "r", "r", "phi"}, solver.ErrInvalidCoordinates),
	)

	It("never reports a match without proof", func() {
		r := solver.NewRegistry()
		r.Register(&solver.Ansatz{Tag: "broken", Candidates: []func() *solver.Template{
			func() *solver.Template {
				tp := solver.Schwarzschild()
				tp.Name = "wrong_sign"
				tp.Metric[1][1] = "-1/(1 - 2*M/r)"
				return tp
			},
		}})
		_, err := solver.New(solver.WithRegistry(r)).SolveVacuum(ctx, spherical, "broken")
		Expect(err).To(MatchError(solver.ErrNoMatch))
	})

	It("does not accept an undecided candidate", func() {
		r := solver.NewRegistry()
		r.Register(&solver.Ansatz{Tag: "undecided", Candidates: []func() *solver.Template{
			func() *solver.Template {
				return &solver.Template{
					Name: "flat_log_lambda",
					Metric: [][]string{
						{"-1", "0", "0", "0"},
						{"0", "1", "0", "0"},
						{"0", "0", "1", "0"},
						{"0", "0", "0", "1"},
					},
					Parameters: map[string]string{},
					Source: solver.SourceSpec{
						Type:   verify.Custom,
						Lambda: "log(r*theta) - log(r) - log(theta)",
					},
				}
			},
		}})
		_, err := solver.New(solver.WithRegistry(r)).SolveVacuum(ctx, spherical, "undecided")
		Expect(err).To(MatchError(solver.ErrNoMatch))
	})
})

var _ = Describe("SolveAll", func() {
	It("verifies Reissner-Nordström against its field source", func() {
		sols, err := solver.New().SolveAll(context.Background(), spherical, "spherical")
		Expect(err).NotTo(HaveOccurred())
		names := make([]string, len(sols))
		for i, s := range sols {
			names[i] = s.Name
		}
		Expect(names).To(Equal([]string{"schwarzschild", "reissner_nordstrom"}))
		Expect(sols[1].SourceType).To(Equal(verify.Electromagnetic))
	})

	It("verifies flat FLRW against its perfect fluid", func() {
		sols, err := solver.New().SolveAll(context.Background(), []string{"tau", "x", "y", "z"}, "cosmological")
		Expect(err).NotTo(HaveOccurred())
		Expect(sols).To(HaveLen(2))
		Expect(sols[1].Name).To(Equal("flrw_flat"))
		Expect(sols[1].Metric[1][1]).To(Equal("a(tau)^2"))
		Expect(sols[1].SourceType).To(Equal(verify.PerfectFluid))
	})

	It("rejects a coordinate named like the scale factor", func() {
		_, err := solver.New().SolveAll(context.Background(), []string{"t", "a", "theta", "phi"}, "cosmological")
		Expect(err).To(MatchError(solver.ErrInvalidCoordinates))
	})
})

var _ = Describe("Template", func() {
	It("instantiates undefined functions in the new time coordinate", func() {
		c, err := solver.FLRWFlat().Instantiate(expr.NewArena(), []string{"tau", "r", "theta", "phi"})
		Expect(err).NotTo(HaveOccurred())
		calls := expr.UndefinedCalls(c.Source.T.At(1, 1))
		Expect(calls).To(HaveKey("a(tau)"))
		Expect(calls).To(HaveKey("a''(tau)"))
	})

	It("lists reserved names", func() {
		Expect(solver.Kerr().Reserved()).To(Equal([]string{"M", "a"}))
		Expect(solver.FLRWFlat().Reserved()).To(Equal([]string{"a"}))
	})
})

var _ = Describe("Solution", func() {
	It("serializes constraints_satisfied as a JSON boolean", func() {
		sol, err := solver.New().SolveVacuum(context.Background(), spherical, "spherical")
		Expect(err).NotTo(HaveOccurred())
		b, err := json.Marshal(sol)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(ContainSubstring(`"constraints_satisfied":true`))
		Expect(string(b)).To(ContainSubstring(`"solution_name":"schwarzschild"`))

		var fields map[string]any
		Expect(json.Unmarshal(b, &fields)).To(Succeed())
		Expect(fields).To(HaveKey("metric_tensor"))
		Expect(fields).NotTo(HaveKey("metric"))
		Expect(fields["metric_tensor"]).To(HaveLen(4))
	})
})
