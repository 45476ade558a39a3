package main

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dglo/payload-sub005/internal/pipeline"
	"github.com/dglo/payload-sub005/pkg/config"
	"github.com/dglo/payload-sub005/pkg/domgeo"
	"github.com/dglo/payload-sub005/pkg/factory"
	"github.com/dglo/payload-sub005/pkg/json"
	"github.com/dglo/payload-sub005/pkg/logger"
	"github.com/dglo/payload-sub005/pkg/metrics"
	"github.com/dglo/payload-sub005/pkg/observability"
	"github.com/dglo/payload-sub005/pkg/payload"
	"github.com/dglo/payload-sub005/pkg/pool"
)

// report is the JSON document printed at the end of a run.
type report struct {
	Name    string         `json:"name"`
	Version string         `json:"version"`
	RunID   string         `json:"run_id"`
	Stats   pipeline.Stats `json:"stats"`
	Error   string         `json:"error,omitempty"`
}

type runFlags struct {
	configFile     string
	producers      int
	events         int
	hitsPerTrigger int
	beaconEvery    int
	logLevel       string
	trace          bool
	metricsAddr    string
}

func newRunCommand() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulated trigger workload",
		Long: `Run a simulated trigger workload and print a JSON report.

Example:
  payloadsim run --config payloadsim.yaml --producers 8 --events 20000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runSimulation(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().IntVar(&f.producers, "producers", 0, "Number of simulated string hubs")
	cmd.Flags().IntVar(&f.events, "events", 0, "Hits emitted by each producer")
	cmd.Flags().IntVar(&f.hitsPerTrigger, "hits-per-trigger", 0, "Payloads grouped into one trigger request")
	cmd.Flags().IntVar(&f.beaconEvery, "beacon-every", -1, "Emit a beacon every n hits (0 disables)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&f.trace, "trace", false, "Export trace spans to stderr")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the run")

	return cmd
}

// loadConfig reads the configuration file, if any, and applies the flags
// that were set explicitly.
func loadConfig(cmd *cobra.Command, f runFlags) (*config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		var err error
		if cfg, err = config.LoadFile(f.configFile); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("producers") {
		cfg.Pipeline.Producers = f.producers
	}
	if flags.Changed("events") {
		cfg.Pipeline.Events = f.events
	}
	if flags.Changed("hits-per-trigger") {
		cfg.Pipeline.HitsPerTrigger = f.hitsPerTrigger
	}
	if flags.Changed("beacon-every") {
		cfg.Pipeline.BeaconEvery = f.beaconEvery
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if flags.Changed("trace") {
		cfg.Tracing.Enabled = f.trace
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Enabled = f.metricsAddr != ""
		cfg.Metrics.Address = f.metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runSimulation wires the factories, runs the pipeline and writes the report
// to w. Exported spans go to diag so w holds only the report. A pipeline
// failure is reported in the document and returned.
func runSimulation(ctx context.Context, cfg *config.Config, w, diag io.Writer) error {
	if err := logger.Init(cfg.Logging); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	runID := time.Now().UTC().Format("20060102T150405.000")
	ctx = logger.WithRun(ctx, runID)
	log := logger.WithContext(ctx)

	var geometry domgeo.Lookup
	if cfg.GeometryFile != "" {
		g, err := domgeo.Load(cfg.GeometryFile)
		if err != nil {
			return err
		}
		log.Info("loaded DOM geometry", zap.Int("doms", g.Len()))
		geometry = g
	}

	suite, err := factory.NewSuite(factory.SuiteOptions{
		Hits:     cfg.PoolOptions(payload.KindSimpleHit),
		Beacons:  cfg.PoolOptions(payload.KindBeaconHit),
		Triggers: cfg.PoolOptions(payload.KindTriggerRequest),
		Geometry: geometry,
	}, log)
	if err != nil {
		return err
	}
	pools := pool.NewRegistry()
	if err := suite.Register(pools); err != nil {
		return err
	}
	defer pools.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewPoolCollector(cfg.Metrics.Namespace, pools))
	pm := metrics.NewPipelineMetrics(cfg.Metrics.Namespace, reg)

	if cfg.Metrics.Enabled {
		srv := &http.Server{
			Addr:              cfg.Metrics.Address,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn("metrics server failed", zap.Error(err))
			}
		}()
		defer func() { _ = srv.Shutdown(context.Background()) }()
	}

	tracing, err := observability.InitTracing(cfg.Tracing,
		observability.WithVersion(version),
		observability.WithWriter(diag))
	if err != nil {
		return err
	}
	defer func() { _ = tracing.Shutdown(context.Background()) }()

	p := pipeline.New(cfg.Pipeline, suite, log,
		pipeline.WithMetrics(pm),
		pipeline.WithTracer(tracing.Tracer()))
	stats, runErr := p.Run(ctx)

	rep := report{
		Name:    cfg.Name,
		Version: version,
		RunID:   runID,
		Stats:   stats,
	}
	if runErr != nil {
		rep.Error = runErr.Error()
	}

	if err := json.Encode(w, rep, true); err != nil {
		return err
	}
	return runErr
}
