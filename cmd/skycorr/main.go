package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/signalsfoundry/skymap-correlator/core"
	"github.com/signalsfoundry/skymap-correlator/internal/cache"
	"github.com/signalsfoundry/skymap-correlator/internal/injection"
	"github.com/signalsfoundry/skymap-correlator/internal/logging"
	"github.com/signalsfoundry/skymap-correlator/internal/observability"
	"github.com/signalsfoundry/skymap-correlator/internal/pipeline"
	"github.com/signalsfoundry/skymap-correlator/internal/plotting"
	"github.com/signalsfoundry/skymap-correlator/kb"
	"github.com/signalsfoundry/skymap-correlator/model"
)

// repeatableFlag collects every occurrence of a repeated string flag.
type repeatableFlag []string

func (f *repeatableFlag) String() string     { return strings.Join(*f, ",") }
func (f *repeatableFlag) Set(v string) error { *f = append(*f, v); return nil }

func main() {
	network := flag.String("network", "H1,K1,L1,V1", "comma-separated detector codes of the default network")
	underplot := flag.String("underplot", "network", "antenna quantity for the sky underlay (network|alignment|dpf)")
	overplot := flag.String("overplot", "alignment", "antenna quantity for the sky iso-level overlay (network|alignment|dpf)")
	injPath := flag.String("inj", "", "path to the injection table JSON")
	scenarioPath := flag.String("scenario", "", "optional detector/network scenario JSON")
	outDir := flag.String("out-dir", ".", "directory for generated images")
	gridPts := flag.Int("grid-pts", core.DefaultGridPts, "side length of the interpolated probability grid")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics, empty to disable")

	var pathSpecs, colorSpecs repeatableFlag
	flag.Var(&pathSpecs, "pathspec", "label=globpattern; repeatable, one per configuration label")
	flag.Var(&colorSpecs, "colorspec", "label=color or label=quantity,colormap; repeatable")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	if *injPath == "" || len(pathSpecs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: skycorr -inj <table.json> -pathspec label=glob [-pathspec ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewPipelineCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	underQ, err := plotting.ParseQuantity(*underplot)
	if err != nil {
		log.Error(ctx, "bad -underplot", logging.String("error", err.Error()))
		os.Exit(2)
	}
	overQ, err := plotting.ParseQuantity(*overplot)
	if err != nil {
		log.Error(ctx, "bad -overplot", logging.String("error", err.Error()))
		os.Exit(2)
	}

	specs := make(map[string]plotting.ColorSpec, len(colorSpecs))
	for _, raw := range colorSpecs {
		label, spec, err := plotting.ParseColorSpec(raw)
		if err != nil {
			log.Error(ctx, "bad -colorspec", logging.String("error", err.Error()))
			os.Exit(2)
		}
		specs[label] = spec
	}

	reg := kb.NewRegistry()
	for _, site := range core.BuiltinDetectors() {
		s := site
		if err := reg.AddDetector(&s); err != nil {
			log.Error(ctx, "failed to register detector", logging.String("error", err.Error()))
			os.Exit(1)
		}
	}
	if *scenarioPath != "" {
		loadScenario(ctx, log, reg, *scenarioPath)
	}

	// Pathspec labels without a scenario-defined network fall back to
	// the -network detector set.
	defaultCodes := splitCodes(*network)
	runSpecs := make([]pipeline.PathSpec, 0, len(pathSpecs))
	for _, raw := range pathSpecs {
		label, pattern, ok := strings.Cut(raw, "=")
		if !ok || label == "" || pattern == "" {
			log.Error(ctx, "bad -pathspec", logging.String("value", raw))
			os.Exit(2)
		}
		if reg.GetNetwork(label) == nil {
			cfg := &model.NetworkConfiguration{Label: label, Detectors: defaultCodes}
			if err := reg.AddNetwork(cfg); err != nil {
				log.Error(ctx, "failed to register network", logging.String("label", label), logging.String("error", err.Error()))
				os.Exit(1)
			}
		}
		runSpecs = append(runSpecs, pipeline.PathSpec{Label: label, Pattern: pattern})
	}

	injections, err := injection.Load(*injPath)
	if err != nil {
		log.Error(ctx, "failed to load injection table", logging.String("path", *injPath), logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "loaded injection table", logging.String("path", *injPath), logging.Int("records", injections.Len()))

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Error(ctx, "failed to create output directory", logging.String("path", *outDir), logging.String("error", err.Error()))
		os.Exit(1)
	}

	antenna := core.NewAntennaPatternEvaluator(reg.AllDetectors())
	rotator := &core.GridRotator{}
	renderer := &plotting.Renderer{
		OutDir:   *outDir,
		Underlay: underQ,
		Overlay:  overQ,
		Antenna:  antenna,
		Rotator:  rotator,
		Registry: reg,
		Specs:    specs,
		Log:      log,
	}

	agg := pipeline.NewAggregator()
	runner := &pipeline.Runner{
		Processor: &pipeline.Processor{
			Injections: injections,
			Cache:      &cache.InterpolationCache{},
			Rotator:    rotator,
			Analyzer:   &core.CredibleRegionAnalyzer{},
			Antenna:    antenna,
			GridPts:    *gridPts,
			Log:        log,
			Metrics:    collector,
		},
		Aggregator: agg,
		Registry:   reg,
		Sink:       renderer,
		Log:        log,
		Metrics:    collector,
	}

	failed, err := runner.Run(ctx, runSpecs)
	if err != nil {
		log.Error(ctx, "run aborted", logging.String("error", err.Error()))
		os.Exit(1)
	}

	for _, label := range agg.Labels() {
		s := agg.Summarize(label)
		log.Info(ctx, "label summary",
			logging.String("label", s.Label),
			logging.Int("events", s.Count),
			logging.Int("non_converged", s.NonConverged),
			logging.Float64("mean_area68_deg2", s.MeanArea68),
			logging.Float64("mean_snr", s.MeanSNR),
			logging.Float64("mean_response", s.MeanResponse),
		)
		if err := renderer.RenderSummary(ctx, label, agg.Records(label)); err != nil {
			log.Warn(ctx, "summary render failed", logging.String("label", label), logging.String("error", err.Error()))
		}
	}
	if failed > 0 {
		log.Warn(ctx, "some events failed", logging.Int("failed", failed))
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func splitCodes(s string) []string {
	var codes []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

func loadScenario(ctx context.Context, log logging.Logger, reg *kb.Registry, path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Error(ctx, "failed to open scenario", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	scenario, err := kb.LoadDetectorScenario(reg, f)
	if err != nil {
		log.Error(ctx, "failed to load scenario", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "loaded detector scenario",
		logging.String("path", path),
		logging.Int("detectors", len(scenario.DetectorCodes)),
		logging.Int("networks", len(scenario.NetworkLabels)),
	)
}

func serveMetrics(addr string, collector *observability.PipelineCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
