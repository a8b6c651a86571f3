// Package pipeline orchestrates the per-event analysis chain and the
// per-configuration aggregation of its results.
package pipeline

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/skymap-correlator/core"
	"github.com/signalsfoundry/skymap-correlator/gwtime"
	"github.com/signalsfoundry/skymap-correlator/internal/cache"
	"github.com/signalsfoundry/skymap-correlator/internal/injection"
	"github.com/signalsfoundry/skymap-correlator/internal/logging"
	"github.com/signalsfoundry/skymap-correlator/internal/observability"
	"github.com/signalsfoundry/skymap-correlator/model"
)

const tracerName = "skymap-correlator/pipeline"

// Processor runs the strictly sequential per-event chain:
// load map, cache lookup, rotate, credible regions, locate peak,
// evaluate antenna, emit. One Processor serves every label in a run.
type Processor struct {
	Injections *injection.Table
	Cache      *cache.InterpolationCache
	Rotator    *core.GridRotator
	Analyzer   *core.CredibleRegionAnalyzer
	Antenna    *core.AntennaPatternEvaluator

	// GridPts is the dense-grid side length; zero means the default.
	GridPts int

	Log     logging.Logger
	Metrics *observability.PipelineCollector
}

// EventResult carries everything one event pass produced: the aggregate
// record plus the intermediate products the plotting layer draws.
type EventResult struct {
	Event  model.Event
	Record model.AggregateRecord

	Region68 model.CredibleRegion
	Region95 model.CredibleRegion
	Region99 model.CredibleRegion

	// Grid is the rotated dense grid (RA in projection degrees).
	Grid *model.InterpolatedGrid

	PeakRADeg  float64
	PeakDecDeg float64

	CacheHit bool
}

// ProcessEvent runs the full chain for one map file under the given
// network configuration. Any error is fatal for this event only; the
// caller decides whether to continue the batch.
func (p *Processor) ProcessEvent(ctx context.Context, cfg *model.NetworkConfiguration, mapPath string) (*EventResult, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "process_event")
	defer span.End()
	span.SetAttributes(
		attribute.String("label", cfg.Label),
		attribute.String("map_path", mapPath),
	)

	log := p.Log
	if log == nil {
		log = logging.Noop()
	}

	// LOAD_MAP: event identity, injection record, sidereal offset, and
	// the recovered network SNR from the sidecar.
	index, err := injection.EventIndexFromPath(mapPath)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("event_index", index))
	log = logging.WithEventLogger(log, cfg.Label, index)

	rec, err := p.Injections.Record(index)
	if err != nil {
		return nil, err
	}
	sidereal := gwtime.SiderealHours(rec.GeocentEndTime)

	snrs, err := injection.ParseSNRFile(injection.SNRPath(mapPath))
	if err != nil {
		return nil, err
	}
	networkSNR := snrs["Network"]

	skyMap, err := core.ReadSkyMap(mapPath)
	if err != nil {
		return nil, err
	}
	ordering := core.NewCumulativeOrdering(skyMap)

	event := model.Event{
		Index:          index,
		MapPath:        mapPath,
		GeocentEndTime: rec.GeocentEndTime,
		SiderealHours:  sidereal,
		InjectedRADeg:  rec.RADeg,
		InjectedDecDeg: rec.DecDeg,
		NetworkSNR:     networkSNR,
	}

	// CACHE_LOOKUP: the resampled grid, memoized per map file.
	nPts := p.GridPts
	if nPts <= 0 {
		nPts = core.DefaultGridPts
	}
	grid, hit, err := p.Cache.GetOrCompute(mapPath, func() (*model.InterpolatedGrid, error) {
		return core.InterpolateMap(skyMap, nPts)
	})
	if err != nil {
		return nil, err
	}
	p.Metrics.ObserveCacheLookup(hit)
	span.SetAttributes(attribute.Bool("cache_hit", hit))
	if hit {
		log.Debug(ctx, "loaded cached interpolated grid",
			logging.String("artifact", cache.ArtifactPath(mapPath)))
	}

	// ROTATE: shift the Earth-fixed grid into the event's sidereal frame.
	if _, err := p.Rotator.Rotate(grid.RA, sidereal, grid.Prob); err != nil {
		return nil, fmt.Errorf("event %d: %w", index, err)
	}

	// CREDIBLE_REGIONS: 68/95/99. The 68% result drives both the
	// contour threshold and the convergence check.
	r68, err := p.Analyzer.Region(ordering, 0.68)
	if err != nil {
		return nil, err
	}
	r95, err := p.Analyzer.Region(ordering, 0.95)
	if err != nil {
		return nil, err
	}
	r99, err := p.Analyzer.Region(ordering, 0.99)
	if err != nil {
		return nil, err
	}
	if r68.Suspect {
		log.Warn(ctx, "68% region exceeds sanity bound; localization may not have converged",
			logging.Float64("area_deg2", r68.AreaDeg2))
	}
	span.SetAttributes(attribute.Float64("area68_deg2", r68.AreaDeg2))

	// LOCATE_PEAK: grid cell of maximum interpolated probability.
	peakRow, peakCol := argmax2D(grid.Prob)
	peakRA := grid.RA[peakRow][peakCol]
	peakDec := grid.Dec[peakRow][peakCol]

	// EVALUATE_ANTENNA: network response at the peak, normalized so
	// configurations of different sizes stay comparable.
	resp, err := p.Antenna.EvaluatePoint(sidereal, cfg.Detectors, peakRA, peakDec, true)
	if err != nil {
		return nil, err
	}

	// EMIT.
	result := &EventResult{
		Event: event,
		Record: model.AggregateRecord{
			EventIndex:      index,
			CredibleArea68:  r68.AreaDeg2,
			NetworkSNR:      networkSNR,
			AntennaResponse: resp.Response,
			Converged:       !r68.Suspect,
		},
		Region68:   r68,
		Region95:   r95,
		Region99:   r99,
		Grid:       grid,
		PeakRADeg:  peakRA,
		PeakDecDeg: peakDec,
		CacheHit:   hit,
	}

	log.Info(ctx, "event processed",
		logging.Float64("area68_deg2", r68.AreaDeg2),
		logging.Float64("network_snr", networkSNR),
		logging.Float64("antenna_response", resp.Response),
	)
	return result, nil
}

// argmax2D returns the indices of the maximum value in a rectangular
// grid. Ties resolve to the first occurrence in row-major order.
func argmax2D(grid [][]float64) (int, int) {
	bestRow, bestCol := 0, 0
	best := grid[0][0]
	for i, row := range grid {
		for j, v := range row {
			if v > best {
				best = v
				bestRow, bestCol = i, j
			}
		}
	}
	return bestRow, bestCol
}
