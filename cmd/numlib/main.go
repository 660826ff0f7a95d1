package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/san-kum/numlib/internal/config"
	"github.com/san-kum/numlib/internal/convergence"
	"github.com/san-kum/numlib/internal/experiment"
	"github.com/san-kum/numlib/internal/export"
	"github.com/san-kum/numlib/internal/functions"
	"github.com/san-kum/numlib/internal/numeric"
	"github.com/san-kum/numlib/internal/ode"
	"github.com/san-kum/numlib/internal/quadrature"
	"github.com/san-kum/numlib/internal/storage"
	"github.com/san-kum/numlib/internal/tui"
	"github.com/san-kum/numlib/internal/viz"
)

var (
	dataDir    string
	configFile string
	logLevel   string
	theme      string

	methodName    string
	lower, upper  float64
	y0            float64
	steps         int
	eps           float64
	maxDepth      int
	parallelDepth int
	starter       string

	levels    int
	parallel  int
	epsFactor float64

	preset   string
	plotPath bool
	noSave   bool
	outFile  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "numlib",
		Short:         "numerical quadrature and ode lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
				Level:      level,
				TimeFormat: time.Kitchen,
			})))
			viz.SetTheme(theme)
			return nil
		},
		RunE: runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".numlib", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", viz.ThemeCyberpunk.Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	integrateCmd := &cobra.Command{
		Use:   "integrate [function]",
		Short: "integrate with a fixed composite rule",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runIntegrate,
	}
	integrateCmd.Flags().StringVar(&methodName, "rule", "simpson", "rule ("+strings.Join(quadrature.RuleNames(), ", ")+")")
	addIntervalFlags(integrateCmd, "a", "b")
	integrateCmd.Flags().IntVar(&steps, "n", config.DefaultN, "number of panels")

	adaptiveCmd := &cobra.Command{
		Use:   "adaptive [function]",
		Short: "integrate with adaptive simpson",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAdaptive,
	}
	addIntervalFlags(adaptiveCmd, "a", "b")
	addAdaptiveFlags(adaptiveCmd)

	solveCmd := &cobra.Command{
		Use:   "solve [equation]",
		Short: "solve an initial value problem",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSolve,
	}
	solveCmd.Flags().StringVar(&methodName, "method", "rk4", "method ("+strings.Join(ode.MethodNames(), ", ")+")")
	addIntervalFlags(solveCmd, "x0", "x")
	solveCmd.Flags().Float64Var(&y0, "y0", 0, "initial value (defaults to the catalog value)")
	solveCmd.Flags().IntVar(&steps, "n", config.DefaultN, "number of steps")
	solveCmd.Flags().StringVar(&starter, "starter", config.DefaultStarter, "multistep starter (euler, rk4)")
	solveCmd.Flags().BoolVar(&plotPath, "plot", false, "plot the trajectory")

	studyCmd := &cobra.Command{
		Use:   "study [target]",
		Short: "measure convergence order under refinement",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStudy,
	}
	studyCmd.Flags().StringVar(&methodName, "method", "simpson", "rule, ode method or adaptive")
	addIntervalFlags(studyCmd, "a", "b")
	studyCmd.Flags().Float64Var(&y0, "y0", 0, "initial value for ode targets")
	studyCmd.Flags().IntVar(&steps, "n", config.DefaultN, "starting n, doubled per level")
	studyCmd.Flags().StringVar(&starter, "starter", config.DefaultStarter, "multistep starter (euler, rk4)")
	addAdaptiveFlags(studyCmd)
	studyCmd.Flags().IntVar(&levels, "levels", config.DefaultLevels, "refinement levels")
	studyCmd.Flags().IntVar(&parallel, "parallel", 1, "levels run concurrently")
	studyCmd.Flags().Float64Var(&epsFactor, "eps-factor", config.DefaultEpsFactor, "eps divisor per adaptive level")
	studyCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	compareCmd := &cobra.Command{
		Use:   "compare [target] [method...]",
		Short: "compare methods on one target",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareMethods,
	}
	addIntervalFlags(compareCmd, "a", "b")
	compareCmd.Flags().Float64Var(&y0, "y0", 0, "initial value for ode targets")
	compareCmd.Flags().IntVar(&steps, "n", config.DefaultN, "panels or steps")
	compareCmd.Flags().Float64Var(&eps, "eps", config.DefaultEps, "adaptive tolerance")

	for _, cmd := range []*cobra.Command{integrateCmd, adaptiveCmd, solveCmd, studyCmd} {
		cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	}
	for _, cmd := range []*cobra.Command{integrateCmd, adaptiveCmd, solveCmd} {
		cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run or study",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run with data as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export samples or trajectory as csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).CopyCSV(os.Stdout, args[0])
		},
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render trajectory or convergence curve as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	functionsCmd := &cobra.Command{
		Use:   "functions",
		Short: "list integrands, equations and methods",
		RunE:  listFunctions,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [kind]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive convergence explorer",
		RunE:  runTUI,
	}

	rootCmd.AddCommand(integrateCmd, adaptiveCmd, solveCmd, studyCmd, compareCmd,
		listCmd, plotCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, functionsCmd, presetsCmd, tuiCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func addIntervalFlags(cmd *cobra.Command, lo, hi string) {
	cmd.Flags().Float64Var(&lower, lo, 0, "interval start (unset uses the catalog)")
	cmd.Flags().Float64Var(&upper, hi, 0, "interval end (unset uses the catalog)")
}

func addAdaptiveFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&eps, "eps", config.DefaultEps, "absolute tolerance")
	cmd.Flags().IntVar(&maxDepth, "max-depth", config.DefaultMaxDepth, "recursion depth limit")
	cmd.Flags().IntVar(&parallelDepth, "parallel-depth", 0, "levels that evaluate halves concurrently")
}

// loadConfig layers defaults, a preset or config file, and the flags the
// user actually set.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	changed := func(names ...string) bool {
		for _, name := range names {
			if flags.Lookup(name) != nil && flags.Changed(name) {
				return true
			}
		}
		return false
	}
	if len(args) > 0 {
		cfg.Target = args[0]
	}
	if changed("rule", "method") {
		cfg.Method = methodName
		cfg.Kind = ""
	}
	if changed("a", "x0") {
		cfg.A = lower
	}
	if changed("b", "x") {
		cfg.B = upper
	}
	if changed("y0") {
		cfg.Y0, cfg.Y0Set = y0, true
	}
	if changed("n") {
		cfg.N = steps
	}
	if changed("eps") {
		cfg.Eps = eps
	}
	if changed("max-depth") {
		cfg.MaxDepth = maxDepth
	}
	if changed("parallel-depth") {
		cfg.ParallelDepth = parallelDepth
	}
	if changed("starter") {
		cfg.Starter = starter
	}
	if changed("levels") {
		cfg.Study.Levels = levels
	}
	if changed("parallel") {
		cfg.Study.Parallel = parallel
	}
	if changed("eps-factor") {
		cfg.Study.EpsFactor = epsFactor
	}
	return cfg, nil
}

// resolve turns the layered configuration into a runnable experiment of
// the given kind. When the configured method does not belong to kind, the
// command's default method is used.
func resolve(cmd *cobra.Command, args []string, kind experiment.Kind, registry *experiment.Registry) (experiment.Config, error) {
	if len(args) == 0 && preset == "" && configFile == "" {
		return experiment.Config{}, fmt.Errorf("no target given (see 'numlib functions')")
	}
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return experiment.Config{}, err
	}
	if kind == experiment.KindAdaptive {
		cfg.Method = "adaptive"
	} else if k, err := registry.KindOf(cfg.Method); err != nil || k != kind {
		if f := cmd.Flags().Lookup("rule"); f != nil {
			cfg.Method = f.DefValue
		} else if f := cmd.Flags().Lookup("method"); f != nil {
			cfg.Method = f.DefValue
		}
	}
	cfg.Kind = string(kind)
	return cfg.Experiment(registry)
}

func runOne(cmd *cobra.Command, args []string, kind experiment.Kind) error {
	registry := experiment.NewRegistry()
	cfg, err := resolve(cmd, args, kind, registry)
	if err != nil {
		return err
	}
	cfg.KeepPath = kind == experiment.KindODE

	res, err := experiment.New(cfg, registry, slog.Default()).Run(cmd.Context())
	if err != nil {
		return explain(err)
	}

	fmt.Println(viz.ResultTable(res))
	if plotPath && len(res.Ys) > 0 {
		exact := viz.ReferencePath(registry, cfg, res.Xs)
		fmt.Println(viz.PathPlot(res.Ys, exact, 80, 12, fmt.Sprintf("%s: %s", cfg.Method, cfg.Target)))
		fmt.Println()
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.SaveResult(res)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

// explain adds a hint for the failures a user can fix from the command line.
func explain(err error) error {
	switch {
	case errors.Is(err, numeric.ErrConvergence):
		return fmt.Errorf("%w (try a larger --max-depth, a looser --eps or more steps)", err)
	case errors.Is(err, numeric.ErrInvalidArgument):
		return fmt.Errorf("%w (see --help for valid values)", err)
	}
	return err
}

func runIntegrate(cmd *cobra.Command, args []string) error {
	return runOne(cmd, args, experiment.KindQuadrature)
}

func runAdaptive(cmd *cobra.Command, args []string) error {
	return runOne(cmd, args, experiment.KindAdaptive)
}

func runSolve(cmd *cobra.Command, args []string) error {
	return runOne(cmd, args, experiment.KindODE)
}

func runStudy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	base, err := cfg.Experiment(registry)
	if err != nil {
		return err
	}

	study := convergence.New(base, cfg.Study.Levels, registry, slog.Default())
	study.Parallel = cfg.Study.Parallel
	if cfg.Study.EpsFactor > 0 {
		study.EpsFactor = cfg.Study.EpsFactor
	}

	fmt.Printf("studying %s on %s (%d levels)...\n\n", base.Method, base.Target, cfg.Study.Levels)
	report, err := study.Run(cmd.Context())
	if err != nil {
		return explain(err)
	}

	printReport(report)

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.SaveStudy(report)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func printReport(report *convergence.Report) {
	adaptive := report.Config.Kind == experiment.KindAdaptive

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if adaptive {
		fmt.Fprintln(w, "LEVEL\tEPS\tVALUE\tERROR\tRATIO\tEVALS\tDEPTH")
	} else {
		fmt.Fprintln(w, "LEVEL\tN\tVALUE\tERROR\tRATIO\tEVALS")
	}
	for i, sm := range report.Samples {
		ratio := "-"
		if i > 0 {
			ratio = fmt.Sprintf("%.2f", report.Ratios[i-1])
		}
		if adaptive {
			fmt.Fprintf(w, "%d\t%.0e\t%.15g\t%.3e\t%s\t%d\t%d\n",
				sm.Level, sm.Eps, sm.Value, sm.Error, ratio, sm.Evaluations, sm.Depth)
		} else {
			fmt.Fprintf(w, "%d\t%d\t%.15g\t%.3e\t%s\t%d\n",
				sm.Level, sm.N, sm.Value, sm.Error, ratio, sm.Evaluations)
		}
	}
	w.Flush()

	fmt.Println()
	fmt.Println(viz.ConvergencePlot(report.Samples, 60, 10))
	fmt.Println()
	if math.IsNaN(report.Order) {
		fmt.Println("observed order: n/a (errors at roundoff)")
		return
	}
	fmt.Printf("observed order: %.2f (%d points)\n", report.Order, report.FitPoints)
}

func compareMethods(cmd *cobra.Command, args []string) error {
	target := args[0]
	methods := args[1:]
	registry := experiment.NewRegistry()

	fmt.Printf("comparing methods on %s\n\n", target)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tKIND\tVALUE\tERROR\tEVALS\tTIME")

	for _, name := range methods {
		kind, err := registry.KindOf(name)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}
		cfg, err := registry.Defaults(experiment.Config{
			Kind: kind, Method: name, Target: target,
			A: lower, B: upper, Y0: y0, Y0Set: cmd.Flags().Changed("y0"), N: steps, Eps: eps,
		})
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		res, err := experiment.New(cfg, registry, slog.Default()).Run(cmd.Context())
		if err != nil {
			fmt.Fprintf(w, "%s\t%s\terror: %v\n", name, kind, err)
			continue
		}
		errCol := "-"
		if res.HasExact {
			errCol = fmt.Sprintf("%.3e", res.AbsError)
		}
		fmt.Fprintf(w, "%s\t%s\t%.15g\t%s\t%d\t%.3fms\n",
			name, kind, res.Value, errCol, res.Evaluations, float64(res.Elapsed.Microseconds())/1000)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tTIME\tKIND\tMETHOD\tTARGET\tERROR\tORDER")

	for _, run := range runs {
		errCol, orderCol := "-", "-"
		if run.AbsError != nil {
			errCol = fmt.Sprintf("%.3e", *run.AbsError)
		}
		if run.Order != nil {
			orderCol = fmt.Sprintf("%.2f", *run.Order)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.Type,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Kind,
			run.Method,
			run.Target,
			errCol,
			orderCol,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("method: %s on %s\n\n", meta.Method, meta.Target)

	if meta.Type == storage.TypeStudy {
		samples, err := st.LoadSamples(runID)
		if err != nil {
			return err
		}
		if len(samples) == 0 {
			return fmt.Errorf("no data to plot")
		}
		fmt.Println(viz.ConvergencePlot(samples, 80, 12))
		fmt.Printf("\nerror %s\n", sparkErrors(samples))
		return nil
	}

	xs, ys, err := st.LoadPath(runID)
	if err != nil {
		return err
	}
	if len(ys) == 0 {
		return fmt.Errorf("no data to plot")
	}
	cfg := experiment.Config{Kind: experiment.Kind(meta.Kind), Target: meta.Target, A: meta.A, Y0: meta.Y0}
	exact := viz.ReferencePath(experiment.NewRegistry(), cfg, xs)
	fmt.Println(viz.PathPlot(ys, exact, 80, 12, fmt.Sprintf("y(x) on [%g, %g]", meta.A, meta.B)))
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if meta.Type == storage.TypeStudy {
		samples, err := st.LoadSamples(runID)
		if err != nil {
			return err
		}
		report := &convergence.Report{Samples: samples, Order: math.NaN()}
		if meta.Order != nil {
			report.Order = *meta.Order
		}
		adaptive := experiment.Kind(meta.Kind) == experiment.KindAdaptive
		err = export.Convergence(out, report, adaptive, 640, 400)
		if err == nil && outFile != "" {
			slog.Info("svg written", "path", outFile)
		}
		return err
	}

	xs, ys, err := st.LoadPath(runID)
	if err != nil {
		return err
	}
	if len(ys) == 0 {
		return fmt.Errorf("no data to export")
	}
	cfg := experiment.Config{Kind: experiment.Kind(meta.Kind), Target: meta.Target, A: meta.A, Y0: meta.Y0}
	exact := viz.ReferencePath(experiment.NewRegistry(), cfg, xs)
	err = export.Path(out, xs, ys, exact, 640, 400, fmt.Sprintf("%s: %s", meta.Method, meta.Target))
	if err == nil && outFile != "" {
		slog.Info("svg written", "path", outFile)
	}
	return err
}

func sparkErrors(samples []convergence.Sample) string {
	errs := make([]float64, len(samples))
	for i, sm := range samples {
		errs[i] = sm.Error
	}
	return viz.ErrorSparkline(errs)
}

func listFunctions(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "INTEGRAND\tFORMULA\tINTERVAL")
	for _, name := range functions.IntegrandNames() {
		in, _ := functions.LookupIntegrand(name)
		fmt.Fprintf(w, "%s\t%s\t[%.4g, %.4g]\n", name, in.Description, in.A, in.B)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "EQUATION\tFORMULA\tINTERVAL\tY0")
	for _, name := range functions.EquationNames() {
		eq, _ := functions.LookupEquation(name)
		fmt.Fprintf(w, "%s\t%s\t[%.4g, %.4g]\t%g\n", name, eq.Description, eq.X0, eq.X, eq.Y0)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "RULE\tORDER\tN MULTIPLE OF")
	for _, name := range quadrature.RuleNames() {
		r, _ := quadrature.Lookup(name)
		fmt.Fprintf(w, "%s\t%d\t%d\n", r.Name, r.Order, r.Multiple)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "METHOD\tORDER\tMULTISTEP")
	for _, name := range ode.MethodNames() {
		m, _ := ode.Lookup(name)
		fmt.Fprintf(w, "%s\t%d\t%v\n", m.Name, m.Order, m.Multistep)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	var kind string
	if len(args) > 0 {
		k, err := experiment.ParseKind(args[0])
		if err != nil {
			return err
		}
		kind = string(k)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tKIND\tMETHOD\tTARGET\tLEVELS")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		if kind != "" && p.Kind != kind {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", name, p.Kind, p.Method, p.Target, p.Study.Levels)
	}
	return w.Flush()
}

func runTUI(cmd *cobra.Command, args []string) error {
	p := tea.NewProgram(tui.NewExplorer(experiment.NewRegistry(), slog.New(slog.NewTextHandler(io.Discard, nil))), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
