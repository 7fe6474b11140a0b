package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nightness/tensorcalc/internal/batch"
	"github.com/nightness/tensorcalc/internal/calc"
	"github.com/nightness/tensorcalc/internal/config"
	"github.com/nightness/tensorcalc/internal/logger"
	"github.com/nightness/tensorcalc/internal/report"
	"github.com/nightness/tensorcalc/internal/storage"
	"github.com/nightness/tensorcalc/internal/viz"
)

var (
	configFile string
	preset     string
	dataDir    string
	save       bool
	workers    int
	logLevel   string
	logFormat  string
	format     string
	theme      string
	functions  []string

	metricJSON       string
	coordsJSON       string
	stressEnergyJSON string
	lambda           string
	symmetry         string
	all              bool
	boundary         string

	component string
	along     string
	from      float64
	to        float64
	points    int
	bindings  []string
	height    int
	width     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "tensorcalc",
		Short:         "symbolic tensor calculus for general relativity",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use a preset metric")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "archive directory")
	pf.BoolVar(&save, "save", false, "archive the result")
	pf.IntVar(&workers, "workers", 0, "parallel workers per rank (0 = all CPUs)")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", config.DefaultLogFormat, "log format: text or json")
	pf.StringVar(&format, "format", "json", "output format: json or table")
	pf.StringVar(&theme, "theme", viz.ThemeNight.Name, "table theme: "+strings.Join(viz.ThemeNames(), ", "))
	pf.StringSliceVar(&functions, "functions", nil, "undefined function names allowed in expressions, e.g. a,b")

	metricFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&metricJSON, "metric", "", "metric tensor as a JSON matrix of expressions")
		cmd.Flags().StringVar(&coordsJSON, "coords", "", "coordinates as a JSON array")
	}
	sourceFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&stressEnergyJSON, "stress-energy", "", "stress-energy tensor as JSON (matrix or object)")
		cmd.Flags().StringVar(&lambda, "lambda", "", "cosmological constant")
	}

	curvature := []struct{ use, short string }{
		{calc.CmdChristoffel, "compute Christoffel symbols"},
		{calc.CmdRiemann, "compute the Riemann tensor"},
		{calc.CmdRicci, "compute the Ricci tensor"},
		{calc.CmdRicciScalar, "compute the Ricci scalar"},
		{calc.CmdEinstein, "compute the Einstein tensor"},
	}
	for _, c := range curvature {
		cmd := &cobra.Command{
			Use:   c.use,
			Short: c.short,
			Args:  cobra.NoArgs,
			RunE:  runCommand(c.use),
		}
		metricFlags(cmd)
		rootCmd.AddCommand(cmd)
	}

	verifyCmd := &cobra.Command{
		Use:     "verify",
		Aliases: []string{"verify-solution"},
		Short:   "check a metric against the Einstein field equations",
		Args:    cobra.NoArgs,
		RunE:    runCommand(calc.CmdVerify),
	}
	metricFlags(verifyCmd)
	sourceFlags(verifyCmd)

	solveCmd := &cobra.Command{
		Use:   "solve-vacuum",
		Short: "find a catalogue solution for a symmetry class",
		Args:  cobra.NoArgs,
		RunE:  runCommand(calc.CmdSolve),
	}
	solveCmd.Flags().StringVar(&coordsJSON, "coords", "", "coordinates as a JSON array")
	solveCmd.Flags().StringVar(&symmetry, "symmetry", "", "spherical, axisymmetric or cosmological")
	solveCmd.Flags().BoolVar(&all, "all", false, "verify every candidate against its own source")
	solveCmd.Flags().StringVar(&boundary, "boundary-conditions", "", "accepted for compatibility; only an empty JSON value is allowed")

	equationsCmd := &cobra.Command{
		Use:   "construct-equations",
		Short: "write out the field equation system for a source",
		Args:  cobra.NoArgs,
		RunE:  runCommand(calc.CmdEquations),
	}
	equationsCmd.Flags().StringVar(&coordsJSON, "coords", "", "coordinates as a JSON array")
	sourceFlags(equationsCmd)

	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "plot one component along a coordinate",
		Args:  cobra.NoArgs,
		RunE:  runProfile,
	}
	metricFlags(profileCmd)
	profileCmd.Flags().StringVar(&component, "component", "einstein:0,0", "component, e.g. christoffel:1,0,0 or ricci-scalar")
	profileCmd.Flags().StringVar(&along, "along", "r", "coordinate to vary")
	profileCmd.Flags().Float64Var(&from, "from", 1, "start of the range")
	profileCmd.Flags().Float64Var(&to, "to", 10, "end of the range")
	profileCmd.Flags().IntVar(&points, "points", 60, "number of samples")
	profileCmd.Flags().StringSliceVar(&bindings, "set", nil, "symbol values, e.g. M=1,theta=1.2")
	profileCmd.Flags().IntVar(&height, "height", 12, "plot height")
	profileCmd.Flags().IntVar(&width, "width", 0, "plot width (0 = one column per sample)")

	browseCmd := &cobra.Command{
		Use:   "browse [run_id]",
		Short: "browse computed components interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBrowse,
	}
	metricFlags(browseCmd)

	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "run a batch scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	surveyCmd := &cobra.Command{
		Use:   "survey [preset...]",
		Short: "verify presets against their own sources",
		RunE:  runSurvey,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list archived runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show an archived run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCOORDS\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, strings.Join(p.Coords, ","), p.Description)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(verifyCmd, solveCmd, equationsCmd, profileCmd, browseCmd, runCmd, surveyCmd, listCmd, showCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if format == "json" {
			_ = report.WriteJSON(os.Stdout, report.Failure(err))
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// setup loads the config, applies flag overrides and installs the logger.
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("log-level") || configFile == "" {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") || configFile == "" {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("data") || configFile == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("functions") {
		cfg.Functions = append(cfg.Functions, functions...)
	}
	if format != "json" && format != "table" {
		return nil, fmt.Errorf("unknown format: %s", format)
	}
	viz.SetTheme(theme)

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Level: level, Format: cfg.Log.Format, Output: os.Stderr})
	return cfg, nil
}

var errBoundaryConditions = errors.New("tensorcalc: boundary conditions are not supported")

// request assembles a calc request from the command-line inputs.
func request(command string) (calc.Request, error) {
	req := calc.Request{Command: command, Preset: preset, Lambda: lambda, Symmetry: symmetry, All: all}
	switch strings.TrimSpace(boundary) {
	case "", "{}", "[]", "null":
	default:
		return req, errBoundaryConditions
	}
	if metricJSON != "" {
		m, err := report.ParseMatrix(metricJSON)
		if err != nil {
			return req, err
		}
		req.Metric = m
	}
	if coordsJSON != "" {
		c, err := report.ParseCoords(coordsJSON)
		if err != nil {
			return req, err
		}
		req.Coords = c
	}
	if stressEnergyJSON != "" {
		se, err := report.ParseStressEnergy(stressEnergyJSON)
		if err != nil {
			return req, err
		}
		req.StressEnergy = se
	}
	return req, nil
}

func runCommand(command string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		req, err := request(command)
		if err != nil {
			return err
		}
		out, err := calc.New(cfg).Do(cmd.Context(), req)
		if err != nil {
			return err
		}
		if save {
			if err := archive(cfg, out); err != nil {
				return err
			}
		}
		if format == "json" {
			return report.WriteJSON(os.Stdout, out.Result)
		}
		printTable(out)
		return nil
	}
}

func archive(cfg *config.Config, out *calc.Outcome) error {
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(out.Archive())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "run id: %s\n", id)
	return nil
}

func printTable(out *calc.Outcome) {
	st := viz.NewStyles(viz.CurrentTheme)
	coords := out.Result.Coordinates
	switch data := out.Result.Data.(type) {
	case *calc.VerificationData:
		fmt.Printf("%s  %s\n", st.Title.Render("field equations"), st.Status(data.ConstraintsSatisfied))
		fmt.Println(st.Subtle.Render("source: " + string(data.SourceType)))
		comps := make([]report.TensorComponent, len(data.Offending))
		for i, o := range data.Offending {
			comps[i] = report.TensorComponent{Indices: o.Indices, Expression: o.Label + ": " + o.Value}
		}
		if len(comps) > 0 {
			fmt.Print(viz.ComponentTable("offending components", comps, coords, st, 120))
		}
	case string:
		fmt.Println(st.Subtle.Render(data))
	default:
		names := []string{out.Request.Command}
		if out.Request.Command == calc.CmdSolve || out.Request.Command == calc.CmdEquations {
			names = names[:0]
			for name := range out.Tensors {
				names = append(names, name)
			}
			sort.Strings(names)
		}
		for _, name := range names {
			fmt.Print(viz.ComponentTable(name, out.Tensors[name], coords, st, 120))
		}
	}
	fmt.Println(st.Subtle.Render(fmt.Sprintf("elapsed %v", out.Elapsed.Round(time.Millisecond))))
}

func runProfile(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	ref, err := calc.ParseComponentRef(component)
	if err != nil {
		return err
	}
	env, err := calc.ParseBindings(bindings)
	if err != nil {
		return err
	}
	req, err := request(ref.Stage.String())
	if err != nil {
		return err
	}
	out, err := calc.New(cfg).Do(cmd.Context(), req)
	if err != nil {
		return err
	}
	e, err := ref.Lookup(out.Curvature)
	if err != nil {
		return err
	}
	xs, ys, err := calc.Profile(e, along, from, to, points, env)
	if err != nil {
		return err
	}
	fmt.Println(e.String())
	fmt.Println(viz.ProfilePlot(xs, ys, ref.String(), along, width, height))
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		st := storage.New(cfg.DataDir)
		meta, err := st.Load(args[0])
		if err != nil {
			return err
		}
		rows, err := st.LoadComponents(args[0])
		if err != nil {
			return err
		}
		tensors := map[string][]report.TensorComponent{}
		for _, r := range rows {
			tensors[r.Tensor] = append(tensors[r.Tensor], report.TensorComponent{Indices: r.Indices, Expression: r.Expression})
		}
		return viz.NewBrowser(meta.Command+" "+meta.ID, tensors, meta.Coordinates).Run()
	}

	req, err := request(calc.CmdEinstein)
	if err != nil {
		return err
	}
	out, err := calc.New(cfg).Do(cmd.Context(), req)
	if err != nil {
		return err
	}
	title := "metric"
	if preset != "" {
		title = preset
	}
	return viz.NewBrowser(title, out.Tensors, out.Result.Coordinates).Run()
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	sc, err := batch.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	results, err := batch.NewRunner(calc.New(cfg), st).Run(cmd.Context(), sc)
	styles := viz.NewStyles(viz.CurrentTheme)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tNAME\tRESULT\tSTATUS\tELAPSED\tRUN")
	for _, r := range results {
		status := "-"
		if r.Outcome.Request.Command == calc.CmdVerify {
			status = styles.Status(r.Outcome.Status)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%v\t%s\n", r.Step, r.Name, r.Outcome.Result.ResultType,
			status, r.Outcome.Elapsed.Round(time.Millisecond), r.RunID)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func runSurvey(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	names := args
	if len(names) == 0 {
		names = config.ListPresets()
	}
	results, err := batch.NewRunner(calc.New(cfg), nil).Survey(cmd.Context(), names, cfg.Workers)
	if err != nil {
		return err
	}
	if format == "json" {
		type row struct {
			Preset    string  `json:"preset"`
			Status    string  `json:"status"`
			ElapsedMS float64 `json:"elapsed_ms"`
		}
		rows := make([]row, len(results))
		for i, r := range results {
			rows[i] = row{r.Preset, r.Status.String(), float64(r.Elapsed.Microseconds()) / 1000}
		}
		return report.WriteJSON(os.Stdout, rows)
	}
	styles := viz.NewStyles(viz.CurrentTheme)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSTATUS\tELAPSED")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%v\n", r.Preset, styles.Status(r.Status), r.Elapsed.Round(time.Millisecond))
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	runs, err := storage.New(cfg.DataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMMAND\tTIME\tCOORDS\tSTATUS\tTENSORS")
	for _, run := range runs {
		status := run.Status
		if status == "" {
			status = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.Command,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			strings.Join(run.Coordinates, ","),
			status,
			strings.Join(run.Tensors, ","),
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			return fmt.Errorf("%w (see tensorcalc list)", err)
		}
		return err
	}
	rows, err := st.LoadComponents(args[0])
	if err != nil {
		return err
	}
	if format == "json" {
		return report.WriteJSON(os.Stdout, struct {
			*storage.RunMetadata
			Components []storage.Row `json:"components"`
		}{meta, rows})
	}

	styles := viz.NewStyles(viz.CurrentTheme)
	fmt.Printf("%s %s\n", styles.Title.Render(meta.Command), styles.Subtle.Render(meta.ID))
	fmt.Printf("time:   %s\n", meta.Timestamp.Format(time.RFC3339))
	fmt.Printf("coords: %s\n", strings.Join(meta.Coordinates, ", "))
	if meta.Status != "" {
		fmt.Printf("status: %s\n", meta.Status)
	}
	for stage, ms := range meta.Timings {
		fmt.Printf("  %-14s %.3fms\n", stage, ms)
	}
	byTensor := map[string][]report.TensorComponent{}
	for _, r := range rows {
		byTensor[r.Tensor] = append(byTensor[r.Tensor], report.TensorComponent{Indices: r.Indices, Expression: r.Expression})
	}
	for _, name := range meta.Tensors {
		fmt.Print(viz.ComponentTable(name, byTensor[name], meta.Coordinates, styles, 120))
	}
	return nil
}
