package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/blackhole/internal/config"
	"github.com/san-kum/blackhole/internal/export"
	"github.com/san-kum/blackhole/internal/metrics"
	"github.com/san-kum/blackhole/internal/sim"
	"github.com/san-kum/blackhole/internal/storage"
	"github.com/san-kum/blackhole/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       uint64
	workers    int
	// per-command tick counts
	runTicks      int
	ensembleTicks int
	snapshotTicks int
	textFrame     bool
	textCols      int
	textRows      int
	untilEmpty  bool
	noSave      bool
	realtime    bool
	plotHeight  int
	plotWidth   int
	numRuns     int
	seedStart   uint64
	outFile     string
	reportEvery time.Duration
)

// main executes the root command. With no subcommand the live terminal view
// starts.
func main() {
	log.SetFlags(0)
	log.SetPrefix("blackhole: ")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd registers the command tree and binds its flags.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "blackhole",
		Short:        "particle swarm spiralling into a black hole",
		SilenceUsage: true,
		RunE:         runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".blackhole", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "random seed (0 = time based)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "integrator workers (>1 enables the parallel stepper)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the swarm in the terminal with mouse and keyboard input",
		RunE:  runLive,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the swarm headless and record the population",
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&runTicks, "ticks", 3600, "number of ticks")
	runCmd.Flags().BoolVar(&untilEmpty, "until-empty", false, "stop once every particle is absorbed")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "pace ticks at the configured interval")
	runCmd.Flags().DurationVar(&reportEvery, "report", time.Second, "progress interval in realtime mode")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run several seeds concurrently and compare decay",
		RunE:  runEnsemble,
	}
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of runs")
	ensembleCmd.Flags().Uint64Var(&seedStart, "seed-start", 1, "seed of the first run")
	ensembleCmd.Flags().IntVar(&ensembleTicks, "ticks", 3600, "ticks per run")
	ensembleCmd.Flags().BoolVar(&untilEmpty, "until-empty", false, "stop each run once its swarm is empty")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the population of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotHeight, "height", 15, "plot height")
	plotCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id] [path]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.New(dataDir).ExportJSON(args[0], args[1]); err != nil {
				return err
			}
			log.Printf("exported %s to %s", args[0], args[1])
			return nil
		},
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id] [path]",
		Short: "export the population curve of a run to SVG",
		Args:  cobra.ExactArgs(2),
		RunE:  exportSVG,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [path]",
		Short: "step the swarm headless and draw the final frame to SVG or as text",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshot,
	}
	snapshotCmd.Flags().IntVar(&snapshotTicks, "ticks", 600, "ticks to step before drawing")
	snapshotCmd.Flags().BoolVar(&textFrame, "text", false, "print the frame as braille text")
	snapshotCmd.Flags().IntVar(&textCols, "cols", 80, "text frame width in cells")
	snapshotCmd.Flags().IntVar(&textRows, "rows", 30, "text frame height in cells")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGRAVITY\tPARTICLES\tRESET\tCOLOUR")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%.0f\t%d\t%s\t%s\n", name, p.Gravity, p.RingCount, p.ResetMode, p.ColorMode)
			}
			return w.Flush()
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print or save the resolved settings",
		RunE:  showConfig,
	}
	configCmd.Flags().StringVar(&outFile, "out", "", "write settings to this yaml file")

	rootCmd.AddCommand(liveCmd, runCmd, ensembleCmd, listCmd, plotCmd, exportJSONCmd, exportSVGCmd, snapshotCmd, presetsCmd, configCmd)

	return rootCmd
}

// loadSettings resolves settings in order: preset or defaults, config file,
// environment (.env included), then command-line flags.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := config.Default()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSimulator(cmd *cobra.Command) (*config.Settings, *sim.Simulator, error) {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, err
	}
	s, err := sim.New(cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	return cfg, s, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	_, s, err := newSimulator(cmd)
	if err != nil {
		return err
	}
	return viz.Run(s)
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, s, err := newSimulator(cmd)
	if err != nil {
		return err
	}
	for _, m := range metrics.Standard() {
		s.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("seed %d, %d particles, stepper %s", s.Seed(), s.State().Len(), s.StepperName())

	var result *sim.Result
	if realtime {
		result, err = runPaced(ctx, s)
	} else {
		result, err = s.Run(ctx, sim.RunConfig{Ticks: runTicks, StopWhenEmpty: untilEmpty})
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	printSummary(result)

	if pops := result.Populations(); len(pops) > 1 {
		fmt.Println(asciigraph.Plot(pops, asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption("particles per tick")))
	}

	if noSave {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	label := preset
	if label == "" {
		label = "run"
	}
	runID, err := st.Save(label, cfg, result)
	if err != nil {
		return err
	}
	log.Printf("saved run %s", runID)
	return nil
}

// runPaced drives the simulator at its configured tick interval, logging
// progress every reportEvery.
func runPaced(ctx context.Context, s *sim.Simulator) (*sim.Result, error) {
	if runTicks <= 0 {
		return nil, fmt.Errorf("ticks must be positive, got %d", runTicks)
	}
	result := s.Begin(runTicks)
	last := time.Now()

	err := s.RunRealtime(ctx, func(s *sim.Simulator) bool {
		s.Record(result)
		st := s.State()
		if time.Since(last) >= reportEvery {
			last = time.Now()
			log.Printf("tick %d: %d particles, %d absorbed", s.Ticks(), st.Len(), st.Absorbed())
		}
		if untilEmpty && st.Len() == 0 {
			return false
		}
		return result.TicksTaken < runTicks
	})
	s.Finish(result)
	return result, err
}

func printSummary(result *sim.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "seed\t%d\n", result.Seed)
	fmt.Fprintf(w, "ticks\t%d\n", result.TicksTaken)
	if n := len(result.Samples); n > 0 {
		last := result.Samples[n-1]
		fmt.Fprintf(w, "particles\t%d\n", last.Population)
		fmt.Fprintf(w, "absorbed\t%d\n", last.Absorbed)
	}
	for _, name := range []string{"mean_speed", "kinetic_energy", "angular_momentum", "half_life"} {
		if v, ok := result.Metrics[name]; ok {
			fmt.Fprintf(w, "%s\t%.4f\n", name, v)
		}
	}
	w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results, err := sim.NewEnsemble(cfg, numRuns, seedStart).Run(ctx, sim.RunConfig{Ticks: ensembleTicks, StopWhenEmpty: untilEmpty})
	if err != nil {
		return err
	}
	log.Printf("%d runs in %s", len(results), time.Since(start).Round(time.Millisecond))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tTICKS\tLEFT\tHALF-LIFE\tMEAN SPEED")
	var sum, sumSq float64
	n := 0
	for _, r := range results {
		last := r.Samples[len(r.Samples)-1]
		hl := r.Metrics["half_life"]
		fmt.Fprintf(w, "%d\t%d\t%d\t%.0f\t%.4f\n", r.Seed, r.TicksTaken, last.Population, hl, r.Metrics["mean_speed"])
		if hl >= 0 {
			sum += hl
			sumSq += hl * hl
			n++
		}
	}
	w.Flush()

	if n > 0 {
		mean := sum / float64(n)
		std := math.Sqrt(math.Max(sumSq/float64(n)-mean*mean, 0))
		fmt.Printf("\nhalf-life: %.1f ± %.1f ticks over %d runs\n", mean, std, n)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSEED\tTICKS\tGRAVITY\tHALF-LIFE")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.0f\t%.0f\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.Seed, r.Ticks, r.Settings.Gravity, r.Metrics["half_life"])
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("run %s has no series to plot", args[0])
	}

	pops := make([]float64, len(samples))
	for i, s := range samples {
		pops[i] = float64(s.Population)
	}

	fmt.Printf("%s  seed=%d  G=%.0f  F=%.4f\n\n", meta.ID, meta.Seed, meta.Settings.Gravity, meta.Settings.Friction)
	fmt.Println(asciigraph.Plot(pops,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("particles per tick"),
	))
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if outFile != "" {
		if err := config.Save(outFile, cfg); err != nil {
			return err
		}
		log.Printf("wrote %s", outFile)
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	samples, err := storage.New(dataDir).LoadSeries(args[0])
	if err != nil {
		return err
	}
	pops := make([]float64, len(samples))
	for i, s := range samples {
		pops[i] = float64(s.Population)
	}
	svg := export.PopulationToSVG(pops, 800, 400, "#00ffff")
	if svg == "" {
		return fmt.Errorf("run %s has no series to export", args[0])
	}
	if err := os.WriteFile(args[1], []byte(svg), 0644); err != nil {
		return err
	}
	log.Printf("exported %s to %s", args[0], args[1])
	return nil
}

func snapshot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !textFrame {
		return errors.New("snapshot needs an SVG path or --text")
	}
	cfg, s, err := newSimulator(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := s.Run(ctx, sim.RunConfig{Ticks: snapshotTicks}); err != nil {
		return err
	}

	if textFrame {
		fmt.Print(viz.Snapshot(s.State(), cfg.Width, cfg.Height, textCols, textRows))
	}
	if len(args) == 1 {
		svg := export.SwarmToSVG(s.State(), int(cfg.Width), int(cfg.Height), cfg.ColorMode)
		if err := os.WriteFile(args[0], []byte(svg), 0644); err != nil {
			return err
		}
		log.Printf("tick %d: %d particles drawn to %s", s.Ticks(), s.State().Len(), args[0])
	}
	return nil
}
