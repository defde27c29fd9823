package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/kinoplan/internal/analysis"
	"github.com/san-kum/kinoplan/internal/config"
	"github.com/san-kum/kinoplan/internal/control"
	"github.com/san-kum/kinoplan/internal/export"
	"github.com/san-kum/kinoplan/internal/manifolds"
	"github.com/san-kum/kinoplan/internal/metrics"
	"github.com/san-kum/kinoplan/internal/path"
	"github.com/san-kum/kinoplan/internal/projection"
	"github.com/san-kum/kinoplan/internal/registry"
	"github.com/san-kum/kinoplan/internal/state"
	"github.com/san-kum/kinoplan/internal/storage"
	"github.com/san-kum/kinoplan/internal/systems"
	"github.com/san-kum/kinoplan/internal/viz"
)

var (
	dataDir    string
	dtFlag     float64
	stepsFlag  int
	seedFlag   int64
	resample   int
	startX     float64
	startY     float64
	heading    float64
	gear       int
	extent     float64
	gears      int
	maxSpeed   float64
	maxTurn    float64
	configFile string
	preset     string
	count      int
	exportDir  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kinoplan",
		Short: "control manifold composition and propagation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".kinoplan", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "propagate a vehicle under sampled controls",
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "print sampled controls",
		RunE:  sampleControls,
	}
	addScenarioFlags(sampleCmd)
	sampleCmd.Flags().IntVar(&count, "count", 10, "number of controls to sample")

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "describe the vehicle control manifold",
		RunE:  showInfo,
	}
	addScenarioFlags(infoCmd)

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON and an SVG trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportDir, "out", ".", "output directory")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectral analysis of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "animate a run in the terminal",
		RunE:  watchScenario,
	}
	addScenarioFlags(watchCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, sampleCmd, infoCmd, exportCmd, analyzeCmd, watchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dtFlag, "dt", config.DefaultDt, "propagation step duration")
	cmd.Flags().IntVar(&stepsFlag, "steps", config.DefaultSteps, "number of propagation steps")
	cmd.Flags().Int64Var(&seedFlag, "seed", 0, "random seed (0 = time-based)")
	cmd.Flags().IntVar(&resample, "resample", config.DefaultResample, "steps between fresh control samples")
	cmd.Flags().Float64Var(&startX, "x", 0, "initial x position")
	cmd.Flags().Float64Var(&startY, "y", 0, "initial y position")
	cmd.Flags().Float64Var(&heading, "heading", 0, "initial heading")
	cmd.Flags().IntVar(&gear, "gear", 1, "initial gear")
	cmd.Flags().Float64Var(&extent, "extent", config.DefaultExtent, "workspace half-extent")
	cmd.Flags().IntVar(&gears, "gears", config.DefaultGears, "number of gears")
	cmd.Flags().Float64Var(&maxSpeed, "max-speed", config.DefaultMaxSpeed, "forward speed bound")
	cmd.Flags().Float64Var(&maxTurn, "max-turn", config.DefaultMaxTurn, "turn rate bound")
	cmd.Flags().StringVar(&configFile, "config", "", "scenario config file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "named preset configuration")
}

// buildConfig layers preset, config file, then changed flags over the
// defaults. Flags only win when explicitly set on the command line.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		c := *p
		cfg = &c
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dtFlag
	}
	if flags.Changed("steps") {
		cfg.Steps = stepsFlag
	}
	if flags.Changed("seed") {
		cfg.Seed = seedFlag
	}
	if flags.Changed("resample") {
		cfg.Resample = resample
	}
	if flags.Changed("x") {
		cfg.Start.X = startX
	}
	if flags.Changed("y") {
		cfg.Start.Y = startY
	}
	if flags.Changed("heading") {
		cfg.Start.Heading = heading
	}
	if flags.Changed("gear") {
		cfg.Start.Gear = gear
	}
	if flags.Changed("extent") {
		cfg.Vehicle.Extent = extent
	}
	if flags.Changed("gears") {
		cfg.Vehicle.Gears = gears
	}
	if flags.Changed("max-speed") {
		cfg.Vehicle.MaxSpeed = maxSpeed
	}
	if flags.Changed("max-turn") {
		cfg.Vehicle.MaxTurn = maxTurn
	}

	if cfg.Resample < 1 {
		cfg.Resample = 1
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, nil
}

func buildVehicle(cfg *config.Config) (*systems.Vehicle, error) {
	reg := registry.New()
	veh, err := systems.NewVehicle(reg, cfg.Scenario, cfg.Vehicle.Extent, cfg.Vehicle.Gears)
	if err != nil {
		return nil, err
	}
	if err := veh.Drive.SetParam("max_speed", cfg.Vehicle.MaxSpeed); err != nil {
		veh.Close()
		return nil, err
	}
	if err := veh.Drive.SetParam("max_turn", cfg.Vehicle.MaxTurn); err != nil {
		veh.Close()
		return nil, err
	}
	return veh, nil
}

func vehicleSampler(veh *systems.Vehicle, seed int64) (control.Sampler, error) {
	drive := manifolds.NewVectorSampler(veh.Drive.RealVector, seed)
	shift := manifolds.NewIntegerSampler(veh.Gears.Discrete, seed+1)
	return control.NewCompoundSampler(veh.Compound, drive, shift)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	veh, err := buildVehicle(cfg)
	if err != nil {
		return err
	}
	defer veh.Close()

	sampler, err := vehicleSampler(veh, cfg.Seed)
	if err != nil {
		return err
	}

	ctrl, err := veh.AllocControl()
	if err != nil {
		return err
	}
	defer veh.FreeControl(ctrl)
	prev, err := veh.AllocControl()
	if err != nil {
		return err
	}
	defer veh.FreeControl(prev)

	cur := veh.StartState(cfg.Start.X, cfg.Start.Y, cfg.Start.Heading, cfg.Start.Gear)
	next := veh.States().AllocState()

	p := path.New(veh)
	defer p.Close()
	p.Start(cur)

	fmt.Printf("propagating %s for %d steps (dt=%.3f, seed=%d)...\n",
		cfg.Scenario, cfg.Steps, cfg.Dt, cfg.Seed)
	start := time.Now()

	for i := 0; i < cfg.Steps; i++ {
		if i%cfg.Resample == 0 {
			err = sampler.Sample(ctrl)
		} else {
			err = sampler.SampleNext(ctrl, prev)
		}
		if err != nil {
			return err
		}
		if err := veh.CopyControl(prev, ctrl); err != nil {
			return err
		}

		if err := veh.Propagate(cur, ctrl, cfg.Dt, next); err != nil {
			return err
		}
		if err := p.Append(ctrl, cfg.Dt, next); err != nil {
			return err
		}
		veh.States().CopyState(cur, next)
	}
	elapsed := time.Since(start)

	if err := p.Replay(); err != nil {
		return fmt.Errorf("replay verification failed: %w", err)
	}

	trace := traceFromPath(p, cfg.Dt)
	results := metrics.Collect([]metrics.Metric{
		metrics.NewControlEffort(),
		metrics.NewDisplacement(),
		metrics.NewContainment(cfg.Vehicle.Extent),
	}, trace.Times, trace.Poses, trace.Controls)
	results["path_length"] = p.Length()
	results["duration"] = p.Duration()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg.Scenario, cfg.Dt, cfg.Steps, cfg.Seed, results, trace)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("segments: %d\n", p.Len())
	fmt.Println("\nmetrics:")
	for name, val := range results {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func traceFromPath(p *path.Path, dt float64) *storage.Trace {
	trace := &storage.Trace{}
	for i, s := range p.States() {
		comp := s.(*state.Composite)
		pose := comp.Components[0].(*state.Vector)
		trace.Times = append(trace.Times, float64(i)*dt)
		trace.Poses = append(trace.Poses, append([]float64(nil), pose.Values...))
		trace.Gears = append(trace.Gears, comp.Components[1].(*state.Integer).Value)
	}
	for _, c := range p.Controls() {
		comp := c.(*control.Composite)
		drive := comp.Components[0].(*manifolds.Vector)
		row := append([]float64(nil), drive.Values...)
		row = append(row, float64(comp.Components[1].(*manifolds.Integer).Value))
		trace.Controls = append(trace.Controls, row)
	}
	return trace
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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tSTEPS\tDT\tSEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Seed,
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

	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	if len(trace.Poses) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(trace.Poses))

	captions := []string{"x position", "y position", "heading"}
	for varIdx := 0; varIdx < len(trace.Poses[0]) && varIdx < len(captions); varIdx++ {
		data := make([]float64, len(trace.Poses))
		for i := range trace.Poses {
			data[i] = trace.Poses[i][varIdx]
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(captions[varIdx]),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	gearData := make([]float64, len(trace.Gears))
	for i, g := range trace.Gears {
		gearData[i] = float64(g)
	}
	graph := asciigraph.Plot(gearData,
		asciigraph.Height(6),
		asciigraph.Width(80),
		asciigraph.Caption("gear"),
	)
	fmt.Println(graph)

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	jsonPath := filepath.Join(exportDir, runID+".json")
	if err := export.JSON(jsonPath, meta, trace); err != nil {
		return err
	}
	svgPath := filepath.Join(exportDir, runID+".svg")
	if err := export.SVG(svgPath, trace, 800, 600); err != nil {
		return err
	}

	fmt.Printf("wrote %s\n", jsonPath)
	fmt.Printf("wrote %s\n", svgPath)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(trace.Poses) == 0 {
		return fmt.Errorf("no data to analyze")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d  dt: %.4fs\n\n", len(trace.Poses), meta.Dt)

	names := []string{"x", "y", "heading"}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES\tMIN\tMAX\tMEAN\tRMS")
	series := make([][]float64, len(names))
	for varIdx := range names {
		data := make([]float64, len(trace.Poses))
		for i := range trace.Poses {
			if varIdx < len(trace.Poses[i]) {
				data[i] = trace.Poses[i][varIdx]
			}
		}
		series[varIdx] = data
		s := analysis.Summarize(data)
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", names[varIdx], s.Min, s.Max, s.Mean, s.RMS)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	// Workspace coverage: project each pose onto the x-y plane and count
	// distinct grid cells visited.
	eval, err := projection.NewOrthogonal([]int{0, 1}, []float64{1, 1})
	if err != nil {
		return err
	}
	cells := make(map[[2]int]struct{})
	pose := &state.Vector{}
	for i := range trace.Poses {
		pose.Values = trace.Poses[i]
		proj, err := eval.Project(pose)
		if err != nil {
			return err
		}
		cc := projection.CellCoordinates(proj, eval.CellSizes())
		cells[[2]int{cc[0], cc[1]}] = struct{}{}
	}
	fmt.Printf("\nworkspace cells visited (1x1 grid): %d\n", len(cells))

	// Heading oscillation spectrum: turning behavior shows up as
	// spectral lines, drift shows up near DC.
	freqs, power, err := analysis.Spectrum(series[2], meta.Dt)
	if err != nil {
		return err
	}
	freq, mag, err := analysis.DominantFrequency(series[2], meta.Dt)
	if err != nil {
		return err
	}
	fmt.Printf("\ndominant heading frequency: %.4f Hz (magnitude %.4f)\n\n", freq, mag)

	maxBins := 80
	if len(power) > maxBins {
		power = power[:maxBins]
	}
	graph := asciigraph.Plot(power,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("heading power spectrum (0 - %.2f Hz)", freqs[len(power)-1])),
	)
	fmt.Println(graph)

	return nil
}

func sampleControls(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	veh, err := buildVehicle(cfg)
	if err != nil {
		return err
	}
	defer veh.Close()

	sampler, err := vehicleSampler(veh, cfg.Seed)
	if err != nil {
		return err
	}

	ctrl, err := veh.AllocControl()
	if err != nil {
		return err
	}
	defer veh.FreeControl(ctrl)

	fmt.Printf("sampling %d controls from %s (seed=%d)\n", count, veh.Name(), cfg.Seed)
	for i := 0; i < count; i++ {
		if err := sampler.Sample(ctrl); err != nil {
			return err
		}
		fmt.Printf("%3d: ", i)
		veh.PrintControl(ctrl, os.Stdout)
	}

	return nil
}

func showInfo(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	veh, err := buildVehicle(cfg)
	if err != nil {
		return err
	}
	defer veh.Close()

	fmt.Printf("name: %s\n", veh.Name())
	fmt.Printf("state manifold: %s\n", veh.States().Name())
	fmt.Printf("control dimension: %d\n", veh.Dimension())
	fmt.Printf("submanifolds: %d\n", veh.SubmanifoldCount())
	fmt.Printf("backward propagation: %v\n", veh.CanPropagateBackward())
	fmt.Println("\nsettings:")
	veh.PrintSettings(os.Stdout)

	fmt.Println("\ndrive parameters:")
	for name, val := range veh.Drive.Params() {
		fmt.Printf("  %s: %.3f\n", name, val)
	}

	return nil
}

func watchScenario(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	veh, err := buildVehicle(cfg)
	if err != nil {
		return err
	}
	defer veh.Close()

	sampler, err := vehicleSampler(veh, cfg.Seed)
	if err != nil {
		return err
	}

	w, err := viz.NewWatch(cfg, veh, sampler)
	if err != nil {
		return err
	}
	defer w.Free()

	_, err = tea.NewProgram(w, tea.WithAltScreen()).Run()
	return err
}
