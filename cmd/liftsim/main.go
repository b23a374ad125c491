package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/san-kum/liftsim/internal/config"
	"github.com/san-kum/liftsim/internal/elevator"
	"github.com/san-kum/liftsim/internal/logging"
	"github.com/san-kum/liftsim/internal/metrics"
	"github.com/san-kum/liftsim/internal/motor"
	"github.com/san-kum/liftsim/internal/optim"
	"github.com/san-kum/liftsim/internal/report"
	"github.com/san-kum/liftsim/internal/sim"
	"github.com/san-kum/liftsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	envFile    string
	logLevel   string
	logJSON    bool
	motorFile  string
	dt         float64
	duration   float64
	cars       int
	seed       int64
	callRate   float64
	multiplier float64
	kp         float64
	ki         float64
	kd         float64
	// run output
	every       int
	runs        int
	metricNames []string
	outFile     string
	traceFile   string
	realtime    bool
	interval    time.Duration
	// tune
	gridParams []string
	tuneMetric string
	// live view
	theme string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "liftsim",
		Short:        "elevator control and motion simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file with LIFTSIM_* overrides")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON lines")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().IntVar(&every, "every", 0, "print status every N ticks (0 disables)")
	runCmd.Flags().IntVar(&runs, "runs", 1, "number of seeded runs to execute in parallel")
	runCmd.Flags().StringSliceVar(&metricNames, "metrics", nil, "metrics to collect (default all)")
	runCmd.Flags().StringVar(&outFile, "out", "", "write a JSON report to file (- for stdout)")
	runCmd.Flags().StringVar(&traceFile, "trace", "", "write the height/energy trace as CSV")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "pace ticks by the wall clock")
	runCmd.Flags().DurationVar(&interval, "interval", 50*time.Millisecond, "wall-clock tick interval in realtime mode")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "lobby", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	motorCmd := &cobra.Command{
		Use:   "motor [parameters.yaml]",
		Short: "show a motor's sample table and limits",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showMotor,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search height-loop gains",
		Args:  cobra.NoArgs,
		RunE:  tuneGains,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().StringSliceVar(&gridParams, "param", []string{"Kp=0.5:2:4"}, "gain grid as Name=lo:hi:n (Kp, Ki, Kd)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "tracking_error", "metric to minimize ("+strings.Join(metrics.Names(), ", ")+")")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the resolved configuration as yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, motorCmd, tuneCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&motorFile, "motor", "", "motor parameter file")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep in seconds")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated duration in seconds")
	cmd.Flags().IntVar(&cars, "cars", config.DefaultCars, "number of cars")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().Float64Var(&callRate, "call-rate", config.DefaultCallRate, "random calls per second")
	cmd.Flags().Float64Var(&multiplier, "multiplier", config.DefaultTimeMultiplier, "simulated seconds per wall second")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultHeightKp, "height loop kp")
	cmd.Flags().Float64Var(&ki, "ki", 0, "height loop ki")
	cmd.Flags().Float64Var(&kd, "kd", 0, "height loop kd")
}

// loadConfig layers defaults, preset, config file, dotenv and finally any
// flag set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if err := config.ApplyEnv(cfg, envFile); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("motor") {
		cfg.Motor = motorFile
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("cars") {
		cfg.Cars = cars
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("call-rate") {
		cfg.CallRate = callRate
	}
	if flags.Changed("multiplier") {
		cfg.TimeMultiplier = multiplier
	}
	if flags.Changed("kp") {
		cfg.HeightPID.Kp = kp
	}
	if flags.Changed("ki") {
		cfg.HeightPID.Ki = ki
	}
	if flags.Changed("kd") {
		cfg.HeightPID.Kd = kd
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logging.New(logging.Options{Level: cfg.LogLevel, JSON: logJSON})
}

func selectMetrics() ([]sim.Metric, error) {
	if len(metricNames) == 0 {
		return metrics.All(), nil
	}
	out := make([]sim.Metric, 0, len(metricNames))
	for _, name := range metricNames {
		m, err := metrics.ByName(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	ms, err := selectMetrics()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if runs > 1 {
		return runEnsemble(ctx, cfg, log)
	}

	s, err := cfg.Build(cfg.Seed, log)
	if err != nil {
		return err
	}
	for _, m := range ms {
		s.AddMetric(m)
	}

	if realtime {
		return runRealtime(ctx, s, cfg)
	}

	if every > 0 {
		s.AddObserver(statusPrinter(every))
	}

	fmt.Printf("running %d cars over %d floors for %.0fs...\n", cfg.Cars, len(cfg.Floors), cfg.Duration)
	start := time.Now()

	result, err := s.Run(ctx, cfg.SimConfig(cfg.Seed))
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	printSummary(result)

	if outFile != "" {
		r := report.New(reportName(), cfg.SimConfig(cfg.Seed), cfg.Floors, result, traceFile == "")
		if err := report.Export(outFile, r); err != nil {
			return err
		}
	}
	if traceFile != "" {
		if err := report.ExportTrace(traceFile, result); err != nil {
			return err
		}
		fmt.Printf("trace: %s\n", traceFile)
	}
	return nil
}

func reportName() string {
	switch {
	case preset != "":
		return preset
	case configFile != "":
		return configFile
	}
	return "default"
}

// statusPrinter prints time, total energy and every car's height each n
// ticks.
func statusPrinter(n int) sim.Observer {
	count := 0
	return sim.ObserverFunc(func(snap elevator.Snapshot) {
		count++
		if count%n != 0 {
			return
		}
		fmt.Print(statusLine(snap))
	})
}

func statusLine(snap elevator.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "t=%7.2fs energy=%9.3fkJ", snap.Time, snap.TotalEnergy)
	for i, car := range snap.Cars {
		fmt.Fprintf(&b, "  car%d %7.2fm %5.2fm/s %s", i, car.Height, car.Speed, car.Direction)
	}
	b.WriteString("\n")
	return b.String()
}

func printSummary(result *sim.Result) {
	final := result.Final
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("calls: %d assigned, %d served, %d dropped\n", final.AssignedCalls, final.ServedCalls, final.DroppedCalls)
	if final.ServedCalls > 0 {
		fmt.Printf("mean wait: %.2f s\n", final.TotalWait/float64(final.ServedCalls))
	}
	fmt.Printf("energy: %.3f kJ\n\n", final.TotalEnergy)

	if len(result.Heights) > 0 && len(result.Times) > 1 {
		graph := asciigraph.PlotMany(result.Heights,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("car height (m)"),
		)
		fmt.Println(graph)
		fmt.Println()
		graph = asciigraph.Plot(result.Energy,
			asciigraph.Height(6),
			asciigraph.Width(80),
			asciigraph.Caption("total energy (kJ)"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Fprintf(w, "%s\t%.6f\n", name, result.Metrics[name])
	}
	w.Flush()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runEnsemble(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	build := func(runSeed int64) (*sim.Simulator, error) {
		s, err := cfg.Build(runSeed, log)
		if err != nil {
			return nil, err
		}
		ms, err := selectMetrics()
		if err != nil {
			return nil, err
		}
		for _, m := range ms {
			s.AddMetric(m)
		}
		return s, nil
	}

	fmt.Printf("running %d seeded runs from seed %d...\n", runs, cfg.Seed)
	results, err := sim.NewEnsemble(build, runs, cfg.Seed).Run(ctx, cfg.SimConfig(cfg.Seed))
	if err != nil {
		return err
	}

	names := sortedKeys(results[0].Metrics)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SEED\t%s\n", strings.ToUpper(strings.Join(names, "\t")))
	mean := make([]float64, len(names))
	for i, r := range results {
		row := []string{strconv.FormatInt(cfg.Seed+int64(i), 10)}
		for j, name := range names {
			row = append(row, fmt.Sprintf("%.4f", r.Metrics[name]))
			mean[j] += r.Metrics[name] / float64(len(results))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	row := []string{"mean"}
	for _, v := range mean {
		row = append(row, fmt.Sprintf("%.4f", v))
	}
	fmt.Fprintln(w, strings.Join(row, "\t"))
	return w.Flush()
}

func runRealtime(ctx context.Context, s *sim.Simulator, cfg *config.Config) error {
	n := every
	if n <= 0 {
		n = 1
	}
	count := 0
	err := s.Realtime(ctx, interval, func(snap elevator.Snapshot) bool {
		count++
		if count%n == 0 {
			fmt.Print(statusLine(snap))
		}
		return cfg.Duration == 0 || snap.Time < cfg.Duration
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// Logs would tear the alt-screen; only errors get through.
	cfg.LogLevel = "error"
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	s, err := cfg.Build(cfg.Seed, log)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)

	m, err := viz.NewModel(s, cfg.Dt, reportName(), cfg.Seed)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

func showMotor(cmd *cobra.Command, args []string) error {
	path := config.DefaultMotor
	if len(args) > 0 {
		path = args[0]
	}
	params, err := motor.LoadParameters(path)
	if err != nil {
		return err
	}
	table, err := motor.LoadTable(params.SamplePath)
	if err != nil {
		return err
	}
	m, err := motor.New(*params, table, zerolog.Nop())
	if err != nil {
		return err
	}

	fmt.Printf("motor: %s\n", path)
	fmt.Printf("samples: %d\n", table.Len())
	fmt.Printf("gearbox: %.1f rpm per m/s, shaft radius %.3f m\n", params.GearboxRatio, params.OutputShaftRadius)
	fmt.Printf("limits: %.1f rpm, %.2f A\n", m.RPMLimit(), m.CurrentLimit())
	fmt.Printf("max speed: %.3f m/s, max force: %.1f N\n\n", m.MaxSpeed(), m.MaxForce())

	samples := table.Samples()
	rpm := make([]float64, len(samples))
	eff := make([]float64, len(samples))
	for i, s := range samples {
		rpm[i] = s.RPM
		eff[i] = s.Efficiency
	}
	fmt.Println(asciigraph.Plot(rpm, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("rpm by sample")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(eff, asciigraph.Height(6), asciigraph.Width(60), asciigraph.Caption("efficiency (%) by sample")))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CURRENT\tRPM\tTORQUE\tPOWER\tEFF\tVOLTAGE")
	for _, s := range samples {
		fmt.Fprintf(w, "%.3f\t%.2f\t%.1f\t%.3f\t%.2f\t%.1f\n",
			s.Current,
			s.RPM,
			s.Torque,
			s.InputPower,
			s.Efficiency,
			s.Voltage,
		)
	}
	return w.Flush()
}

// parseGrid reads Name=lo:hi:n into a parameter name and its values.
func parseGrid(arg string) (string, []float64, error) {
	name, rng, ok := strings.Cut(arg, "=")
	if !ok {
		return "", nil, fmt.Errorf("bad grid %q: want Name=lo:hi:n", arg)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("bad grid %q: want Name=lo:hi:n", arg)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("bad grid %q: %w", arg, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("bad grid %q: %w", arg, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("bad grid %q: n must be a positive integer", arg)
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func tuneGains(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	if _, err := metrics.ByName(tuneMetric); err != nil {
		return err
	}

	names := make([]string, 0, len(gridParams))
	ranges := make([][]float64, 0, len(gridParams))
	for _, g := range gridParams {
		name, values, err := parseGrid(g)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	build := func(params map[string]float64) (*sim.Simulator, error) {
		s, err := cfg.Build(cfg.Seed, log)
		if err != nil {
			return nil, err
		}
		m, err := metrics.ByName(tuneMetric)
		if err != nil {
			return nil, err
		}
		s.AddMetric(m)
		for _, car := range s.System().Cars() {
			for name, v := range params {
				if err := car.HeightPID().SetParam(name, v); err != nil {
					return nil, err
				}
			}
		}
		return s, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, score, trials, err := gs.Search(ctx, build, cfg.SimConfig(cfg.Seed), tuneMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(tuneMetric))
	for _, t := range trials {
		row := make([]string, 0, len(names)+1)
		for _, name := range names {
			row = append(row, fmt.Sprintf("%.4f", t.Params[name]))
		}
		if t.Err != nil {
			row = append(row, "error: "+t.Err.Error())
		} else {
			row = append(row, fmt.Sprintf("%.6f", t.Score))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()

	if err != nil {
		return err
	}
	fmt.Printf("\nbest %s = %.6f at %v\n", tuneMetric, score, best)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFLOORS\tCARS\tDURATION\tCALL RATE\tCALLS")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%.0fs\t%.2f/s\t%d\n",
			name,
			len(p.Floors),
			p.Cars,
			p.Duration,
			p.CallRate,
			len(p.Calls),
		)
	}
	return w.Flush()
}
