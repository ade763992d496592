package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ocrbench/ocrbench/internal/accuracy"
	"github.com/ocrbench/ocrbench/internal/client"
	"github.com/ocrbench/ocrbench/internal/config"
	"github.com/ocrbench/ocrbench/internal/executor"
	"github.com/ocrbench/ocrbench/internal/loader"
	"github.com/ocrbench/ocrbench/internal/metrics"
	"github.com/ocrbench/ocrbench/internal/monitor"
	"github.com/ocrbench/ocrbench/internal/output"
	"github.com/ocrbench/ocrbench/internal/report"
)

var (
	runConfigPath  string
	runMode        string
	runName        string
	runConcurrency int
	runRuns        int
	runWarmup      int
	runDuration    int
	runOutputDir   string
	runNoMonitor   bool
	runNoColor     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a benchmark scenario against an OCR server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}
		return runBenchmark(cmd.Context(), cfg)
	},
}

func init() {
	flags := runCmd.Flags()
	flags.StringVarP(&runConfigPath, "config", "c", "", "Path to YAML config file")
	flags.StringVar(&runMode, "mode", "", "Workload mode: latency, throughput, stress, stability, capacity")
	flags.StringVar(&runName, "name", "", "Scenario name used in report file names")
	flags.IntVar(&runConcurrency, "concurrency", 0, "Concurrency gate width (starting level for ramp modes)")
	flags.IntVar(&runRuns, "runs", 0, "Repetitions per target")
	flags.IntVar(&runWarmup, "warmup", -1, "Warmup requests before measurement")
	flags.IntVar(&runDuration, "duration", 0, "Run duration in seconds (stability mode)")
	flags.StringVar(&runOutputDir, "output-dir", "", "Directory for report files")
	flags.BoolVar(&runNoMonitor, "no-monitor", false, "Disable resource monitoring")
	flags.BoolVar(&runNoColor, "no-color", false, "Disable colored output")
}

// loadRunConfig builds the effective configuration: defaults, then the
// config file, then explicit command-line overrides.
func loadRunConfig() (*config.Config, error) {
	cfg := config.Default()
	if runConfigPath != "" {
		loaded, err := config.Load(runConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if runMode != "" {
		cfg.Scenario.Mode = config.Mode(runMode)
	}
	if runName != "" {
		cfg.Scenario.Name = runName
	}
	if runConcurrency > 0 {
		cfg.Scenario.Concurrency = runConcurrency
	}
	if runRuns > 0 {
		cfg.Scenario.RunsPerTarget = runRuns
	}
	if runWarmup >= 0 {
		cfg.Scenario.WarmupRequests = runWarmup
	}
	if runDuration > 0 {
		cfg.Scenario.DurationSeconds = runDuration
	}
	if runOutputDir != "" {
		cfg.Report.OutputDir = runOutputDir
	}
	if runNoMonitor {
		cfg.Monitor.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runBenchmark(parent context.Context, cfg *config.Config) error {
	console := output.NewConsole(os.Stdout, runNoColor)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	console.Banner("OCR API Server Benchmark")
	console.Field("Test Mode", "%s", cfg.Scenario.Mode)
	console.Field("Server URL", "%s", cfg.Server.URL)
	console.Field("Concurrency", "%d", cfg.Scenario.Concurrency)
	console.Field("Runs/Target", "%d", cfg.Scenario.RunsPerTarget)
	console.Field("Output Dir", "%s", cfg.Report.OutputDir)
	console.Field("Formats", "%s", strings.Join(cfg.Report.Formats, ", "))
	console.Rule()

	console.Stepf(1, 4, "Loading test targets...")
	targets, err := loader.Load(cfg.Data, cfg.OCR)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no test targets found under %q or %q", cfg.Data.ImagesDir, cfg.Data.PDFsDir)
	}
	console.Successf("Loaded %d targets", len(targets))

	var labels map[string]string
	if cfg.Data.LabelsFile != "" {
		labels, err = loader.LoadLabels(cfg.Data.LabelsFile)
		if err != nil {
			return err
		}
		console.Successf("Loaded %d reference labels", len(labels))
	}

	cl := client.NewClient(
		client.WithBaseURL(cfg.Server.URL),
		client.WithToken(cfg.Server.Token),
		client.WithTimeout(cfg.Server.Timeout()),
		client.WithMaxConnections(maxConnections(cfg.Scenario)),
		client.WithTLSVerification(cfg.Server.VerifySSL),
	)

	if err := cl.HealthCheck(ctx); err != nil {
		return fmt.Errorf("server health check failed: %w", err)
	}
	console.Successf("Server is healthy")

	if cfg.Scenario.WarmupRequests > 0 {
		ok, total := cl.Warmup(ctx, targets[0].Payload, cfg.Scenario.WarmupRequests, cfg.Scenario.Concurrency, nil)
		console.Printf("Warmup: %d/%d succeeded", ok, total)
	}

	console.Stepf(2, 4, "Running %s benchmark...", cfg.Scenario.Mode)

	var mon *monitor.Monitor
	if cfg.Monitor.Enabled {
		opts := []monitor.Option{monitor.WithLogf(console.Logf)}
		if !cfg.Monitor.Accel {
			opts = append(opts, monitor.WithAccelRoot(""))
		}
		mon = monitor.New(cfg.Monitor.Interval(), opts...)
		mon.Start()
	}

	collector := metrics.NewCollector(cfg.Scenario.Name)
	env := &executor.Env{
		Scenario:  cfg.Scenario,
		Targets:   targets,
		Client:    cl,
		Collector: collector,
		Logf:      console.Logf,
	}

	exec, err := executor.New(cfg.Scenario.Mode, env)
	if err != nil {
		if mon != nil {
			mon.Stop()
		}
		return err
	}

	runErr := exec.Run(ctx)
	collector.Finalize()

	var monSummary *monitor.Summary
	if mon != nil {
		mon.Stop()
		s := mon.Summarize()
		monSummary = &s
	}

	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		console.Warnf("Benchmark interrupted; reporting partial results")
	default:
		return runErr
	}

	console.Stepf(3, 4, "Computing metrics...")
	summary := collector.Compute(labels, metrics.Scorer(accuracy.ResearchStandard.Ratio))
	console.Printf("%s", collector.SummaryLine())

	console.Stepf(4, 4, "Generating reports...")
	files, err := report.Generate(report.Input{
		Summary: summary,
		Monitor: monSummary,
		Config:  cfg,
	}, cfg.Report.Formats, cfg.Report.OutputDir)
	for _, f := range files {
		console.Successf("Report saved to: %s", f)
	}
	if err != nil {
		return err
	}

	console.Banner("Benchmark completed")
	console.Printf("Results saved to: %s", cfg.Report.OutputDir)
	return nil
}

// maxConnections sizes the connection pool to the highest concurrency the
// scenario can reach.
func maxConnections(sc config.ScenarioConfig) int {
	n := sc.Concurrency
	if sc.MaxConcurrency > n {
		n = sc.MaxConcurrency
	}
	return n
}
