package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/skymap-correlator/internal/logging"
	"github.com/signalsfoundry/skymap-correlator/internal/observability"
	"github.com/signalsfoundry/skymap-correlator/kb"
	"github.com/signalsfoundry/skymap-correlator/model"
)

// PathSpec binds a configuration label to a glob of sky-map files.
type PathSpec struct {
	Label   string
	Pattern string
}

// EventSink receives each successful event result; the plotting layer
// implements it. Sink errors are reported but never fail the event.
type EventSink interface {
	HandleEvent(ctx context.Context, label string, result *EventResult) error
}

// Runner drives the batch: one pass per label, one pass per globbed file
// within a label, sequential. A failed event is reported and skipped; the
// batch always continues to the next file.
type Runner struct {
	Processor  *Processor
	Aggregator *Aggregator
	Registry   *kb.Registry

	// Sink is optional.
	Sink EventSink

	Log     logging.Logger
	Metrics *observability.PipelineCollector
}

// Run processes every path spec in order and returns the number of
// events that failed. Only setup problems (an unknown label, a bad glob
// pattern) return an error.
func (r *Runner) Run(ctx context.Context, specs []PathSpec) (int, error) {
	tracer := otel.Tracer(tracerName)
	log := r.Log
	if log == nil {
		log = logging.Noop()
	}

	failed := 0
	for _, spec := range specs {
		cfg := r.Registry.GetNetwork(spec.Label)
		if cfg == nil {
			return failed, fmt.Errorf("run: no network configuration for label %q", spec.Label)
		}

		files, err := filepath.Glob(spec.Pattern)
		if err != nil {
			return failed, fmt.Errorf("run: bad glob %q: %w", spec.Pattern, err)
		}
		sort.Strings(files)
		log.Info(ctx, "globbed sky maps",
			logging.String("label", spec.Label),
			logging.String("pattern", spec.Pattern),
			logging.Int("files", len(files)),
		)

		labelCtx, labelSpan := tracer.Start(ctx, "process_label")
		labelSpan.SetAttributes(
			attribute.String("label", spec.Label),
			attribute.Int("files", len(files)),
		)

		for _, file := range files {
			failed += r.runOne(labelCtx, cfg, file)
		}
		labelSpan.End()

		r.Metrics.SetLabelRecords(spec.Label, len(r.Aggregator.Records(spec.Label)))
	}
	return failed, nil
}

// runOne isolates a single event pass, returning 1 on failure so the
// caller can tally.
func (r *Runner) runOne(ctx context.Context, cfg *model.NetworkConfiguration, file string) int {
	log := r.Log
	if log == nil {
		log = logging.Noop()
	}

	start := time.Now()
	result, err := r.Processor.ProcessEvent(ctx, cfg, file)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		r.Metrics.ObserveEvent(cfg.Label, "failed", elapsed)
		log.Error(ctx, "event failed; continuing batch",
			logging.String("label", cfg.Label),
			logging.String("map_path", file),
			logging.String("error", err.Error()),
		)
		return 1
	}

	r.Aggregator.Append(cfg.Label, result.Record)
	r.Metrics.ObserveEvent(cfg.Label, "ok", elapsed)
	r.Metrics.ObserveCredibleArea(result.Record.CredibleArea68)

	if r.Sink != nil {
		if err := r.Sink.HandleEvent(ctx, cfg.Label, result); err != nil {
			log.Warn(ctx, "event sink failed",
				logging.String("label", cfg.Label),
				logging.Int("event", result.Event.Index),
				logging.String("error", err.Error()),
			)
		}
	}
	return 0
}
