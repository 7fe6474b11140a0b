package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/nightness/tensorcalc/internal/calc"
	"github.com/nightness/tensorcalc/internal/config"
	"github.com/nightness/tensorcalc/internal/storage"
	"github.com/nightness/tensorcalc/internal/verify"
)

const scenarioYAML = `
name: vacuum checks
description: curvature of the sphere, then the Schwarzschild family
steps:
  - name: sphere scalar
    command: ricci-scalar
    preset: sphere
    save: true
  - command: verify
    preset: schwarzschild
    expect: satisfied
  - name: flipped radial sign
    command: verify
    preset: schwarzschild_flipped
    expect: violated
  - command: verify
    metric: [["1", "0"], ["0", "r^2"]]
    coords: [r, theta]
    lambda: L
    expect: "false"
`

func newRunner(t *testing.T) (*Runner, *storage.Store) {
	store := storage.New(t.TempDir())
	return NewRunner(calc.New(config.DefaultConfig()), store), store
}

func TestParseScenario(t *testing.T) {
	g := NewWithT(t)
	sc, err := ParseScenario([]byte(scenarioYAML))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sc.Name).To(Equal("vacuum checks"))
	g.Expect(sc.Steps).To(HaveLen(4))
	g.Expect(sc.Steps[0].Command).To(Equal(calc.CmdRicciScalar))
	g.Expect(sc.Steps[0].Save).To(BeTrue())
	g.Expect(sc.Steps[3].Coords).To(Equal([]string{"r", "theta"}))
	g.Expect(sc.Steps[3].Metric[1][1]).To(Equal("r^2"))
}

func TestParseScenarioWithoutSteps(t *testing.T) {
	g := NewWithT(t)
	_, err := ParseScenario([]byte("name: empty\n"))
	g.Expect(err).To(MatchError(ContainSubstring("no steps")))
}

func TestRunScenario(t *testing.T) {
	g := NewWithT(t)
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	g.Expect(os.WriteFile(path, []byte(scenarioYAML), 0644)).To(Succeed())

	sc, err := LoadScenario(path)
	g.Expect(err).NotTo(HaveOccurred())

	r, store := newRunner(t)
	results, err := r.Run(context.Background(), sc)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(results).To(HaveLen(4))
	g.Expect(results[0].Name).To(Equal("sphere scalar"))
	g.Expect(results[1].Name).To(Equal(calc.CmdVerify))
	g.Expect(results[2].Outcome.Status).To(Equal(verify.Violated))

	g.Expect(results[0].RunID).NotTo(BeEmpty())
	g.Expect(results[1].RunID).To(BeEmpty())
	meta, err := store.Load(results[0].RunID)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(meta.Command).To(Equal(calc.CmdRicciScalar))
	g.Expect(meta.Tensors).To(ContainElement("ricci-scalar"))
}

func TestRunStopsAtFailedExpectation(t *testing.T) {
	g := NewWithT(t)
	sc := &Scenario{Name: "wrong", Steps: []Step{
		{Request: calc.Request{Command: calc.CmdChristoffel, Preset: "polar_plane"}},
		{Request: calc.Request{Command: calc.CmdVerify, Preset: "schwarzschild_flipped"}, Expect: "satisfied"},
		{Request: calc.Request{Command: calc.CmdVerify, Preset: "schwarzschild"}},
	}}
	r, _ := newRunner(t)
	results, err := r.Run(context.Background(), sc)
	g.Expect(err).To(MatchError(ErrExpectation))
	g.Expect(err.Error()).To(HavePrefix("step 2: "))
	g.Expect(results).To(HaveLen(1))
}

func TestRunWrapsStepErrors(t *testing.T) {
	g := NewWithT(t)
	sc := &Scenario{Steps: []Step{{Request: calc.Request{Command: "weyl", Preset: "sphere"}}}}
	r, _ := newRunner(t)
	_, err := r.Run(context.Background(), sc)
	g.Expect(err).To(MatchError(calc.ErrUnknownCommand))
	g.Expect(err.Error()).To(HavePrefix("step 1: "))
}

func TestSurveyKeepsPresetOrder(t *testing.T) {
	g := NewWithT(t)
	r, _ := newRunner(t)
	presets := []string{"schwarzschild_flipped", "polar_plane", "sphere", "de_sitter"}
	results, err := r.Survey(context.Background(), presets, 2)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(results).To(HaveLen(4))
	for i, res := range results {
		g.Expect(res.Preset).To(Equal(presets[i]))
	}
	g.Expect(results[0].Status).To(Equal(verify.Violated))
	g.Expect(results[1].Status).To(Equal(verify.Satisfied))
	// the 2-sphere has G = 0 identically in two dimensions
	g.Expect(results[2].Status).To(Equal(verify.Satisfied))
	g.Expect(results[3].Status).To(Equal(verify.Satisfied))
}

func TestSurveyUnknownPreset(t *testing.T) {
	g := NewWithT(t)
	r, _ := newRunner(t)
	_, err := r.Survey(context.Background(), []string{"sphere", "wormhole"}, 0)
	g.Expect(err).To(MatchError(ContainSubstring("unknown preset: wormhole")))
}
