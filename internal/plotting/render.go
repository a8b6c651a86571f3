package plotting

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/signalsfoundry/skymap-correlator/core"
	"github.com/signalsfoundry/skymap-correlator/gwtime"
	"github.com/signalsfoundry/skymap-correlator/internal/logging"
	"github.com/signalsfoundry/skymap-correlator/internal/pipeline"
	"github.com/signalsfoundry/skymap-correlator/kb"
	"github.com/signalsfoundry/skymap-correlator/model"
)

// Renderer draws one overlay image per event and one summary figure per
// label. It implements pipeline.EventSink.
type Renderer struct {
	OutDir   string
	Underlay Quantity
	Overlay  Quantity

	Antenna  *core.AntennaPatternEvaluator
	Rotator  *core.GridRotator
	Registry *kb.Registry

	// Specs maps a label to its summary-scatter coloring; labels without
	// an entry color by SNR through viridis.
	Specs map[string]ColorSpec

	Log logging.Logger
}

// HandleEvent renders skymap_<label>_<event>.png: the selected antenna
// quantity as a whole-sky underlay, iso-level points of the overlay
// quantity, the event's 68% credible boundary, and markers for the
// probability peak and the injected location. The underlay is pinned to
// the sidereal time of the event day's midnight so every event of a day
// shares one background frame; only the probability overlay and markers
// move with the event's own sidereal offset.
func (r *Renderer) HandleEvent(ctx context.Context, label string, result *pipeline.EventResult) error {
	cfg := r.Registry.GetNetwork(label)
	if cfg == nil {
		return fmt.Errorf("render: no network configuration for label %q", label)
	}

	epochHours := backgroundEpochHours(result.Event.GeocentEndTime)
	ag, err := r.Antenna.EvaluateGrid(epochHours, cfg.Detectors)
	if err != nil {
		return err
	}
	if _, err := r.Rotator.Rotate(ag.RA, epochHours, ag.Pattern, ag.Alignment, ag.DPF); err != nil {
		return fmt.Errorf("render: antenna grid rotation: %w", err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s event %d", label, result.Event.Index)
	p.X.Label.Text = "RA offset [deg]"
	p.Y.Label.Text = "Dec [deg]"
	p.X.Min, p.X.Max = -180, 180
	p.Y.Min, p.Y.Max = -90, 90

	under := quantityField(ag, r.Underlay)
	if err := addField(p, ag.RA, ag.Dec, under); err != nil {
		return err
	}
	over := quantityField(ag, r.Overlay)
	if err := addIsoLevels(p, ag.RA, ag.Dec, over); err != nil {
		return err
	}
	if err := addBoundary(p, result.Grid, result.Region68.Threshold); err != nil {
		return err
	}
	if err := addMarkers(p, result); err != nil {
		return err
	}

	name := fmt.Sprintf("skymap_%s_%d.png", label, result.Event.Index)
	path := filepath.Join(r.OutDir, name)
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}
	if r.Log != nil {
		r.Log.Info(ctx, "wrote sky overlay", logging.String("path", path))
	}
	return nil
}

// quantityField picks one grid out of an antenna evaluation.
func quantityField(ag *core.AntennaGrid, q Quantity) [][]float64 {
	switch q {
	case QuantityAlignment:
		return ag.Alignment
	case QuantityDPF:
		return ag.DPF
	default:
		return ag.Pattern
	}
}

// addField draws the quantity as a dense colored scatter over the sky.
func addField(p *plot.Plot, ra, dec, field [][]float64) error {
	lo, hi := fieldRange(field)
	span := hi - lo
	if span == 0 {
		span = 1
	}

	pts := make(plotter.XYs, 0, len(field)*len(field[0]))
	vals := make([]float64, 0, cap(pts))
	for i := range field {
		for j := range field[i] {
			pts = append(pts, plotter.XY{X: ra[i][j], Y: dec[i][j]})
			vals = append(vals, (field[i][j]-lo)/span)
		}
	}

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Shape = draw.BoxGlyph{}
	sc.GlyphStyle.Radius = vg.Points(1.6)
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		gs := sc.GlyphStyle
		gs.Color = colormapAt("viridis", vals[i])
		return gs
	}
	p.Add(sc)
	return nil
}

// addIsoLevels marks grid cells near the quarter, half and
// three-quarter levels of the overlay quantity.
func addIsoLevels(p *plot.Plot, ra, dec, field [][]float64) error {
	lo, hi := fieldRange(field)
	span := hi - lo
	if span == 0 {
		return nil
	}
	tol := span / 80

	var pts plotter.XYs
	for _, level := range []float64{0.25, 0.5, 0.75} {
		target := lo + level*span
		for i := range field {
			for j := range field[i] {
				if math.Abs(field[i][j]-target) <= tol {
					pts = append(pts, plotter.XY{X: ra[i][j], Y: dec[i][j]})
				}
			}
		}
	}
	if len(pts) == 0 {
		return nil
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Radius = vg.Points(0.7)
	sc.GlyphStyle.Color = color.NRGBA{R: 255, G: 255, B: 255, A: 180}
	p.Add(sc)
	return nil
}

// addBoundary marks grid cells on the edge of the 68% credible region:
// cells at or above the threshold with at least one lower neighbor.
func addBoundary(p *plot.Plot, grid *model.InterpolatedGrid, threshold float64) error {
	rows, cols := grid.Shape()
	var pts plotter.XYs
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if grid.Prob[i][j] < threshold {
				continue
			}
			if !onEdge(grid.Prob, i, j, threshold) {
				continue
			}
			pts = append(pts, plotter.XY{X: grid.RA[i][j], Y: grid.Dec[i][j]})
		}
	}
	if len(pts) == 0 {
		return nil
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Radius = vg.Points(1)
	sc.GlyphStyle.Color = color.RGBA{A: 255}
	p.Add(sc)
	p.Legend.Add("68% region", sc)
	return nil
}

func onEdge(prob [][]float64, i, j int, threshold float64) bool {
	rows, cols := len(prob), len(prob[0])
	for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		ni, nj := i+d[0], j+d[1]
		if ni < 0 || ni >= rows || nj < 0 || nj >= cols {
			return true
		}
		if prob[ni][nj] < threshold {
			return true
		}
	}
	return false
}

// addMarkers draws the probability peak and, when the injection carries
// a position, the injected location projected into the rotated frame.
func addMarkers(p *plot.Plot, result *pipeline.EventResult) error {
	peak, err := plotter.NewScatter(plotter.XYs{{X: result.PeakRADeg, Y: result.PeakDecDeg}})
	if err != nil {
		return err
	}
	peak.GlyphStyle.Shape = draw.RingGlyph{}
	peak.GlyphStyle.Radius = vg.Points(5)
	peak.GlyphStyle.Color = color.RGBA{R: 200, A: 255}
	p.Add(peak)
	p.Legend.Add("peak", peak)

	injRA := projectRA(result.Event.InjectedRADeg, result.Event.SiderealHours)
	inj, err := plotter.NewScatter(plotter.XYs{{X: injRA, Y: result.Event.InjectedDecDeg}})
	if err != nil {
		return err
	}
	inj.GlyphStyle.Shape = draw.CrossGlyph{}
	inj.GlyphStyle.Radius = vg.Points(5)
	inj.GlyphStyle.Color = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	p.Add(inj)
	p.Legend.Add("injected", inj)
	return nil
}

// backgroundEpochHours returns the Greenwich mean sidereal time of the
// event day's midnight, the fixed epoch the antenna underlay is drawn at.
func backgroundEpochHours(gpsSeconds float64) float64 {
	return gwtime.GMSTHoursGPS(gwtime.MidnightEpoch(gpsSeconds))
}

// projectRA maps a sky RA in degrees into the rotated frame: subtract
// the sidereal offset, wrap to (-180, 180], negate. Cell values in the
// rotated grids go through the same transform.
func projectRA(raDeg, siderealHours float64) float64 {
	v := raDeg - siderealHours*15
	for v > 180 {
		v -= 360
	}
	for v <= -180 {
		v += 360
	}
	return -v
}

func fieldRange(field [][]float64) (lo, hi float64) {
	lo, hi = field[0][0], field[0][0]
	for _, row := range field {
		for _, v := range row {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}

// RenderSummary draws snr_vs_err_<label>.png: the credible-area versus
// antenna-response scatter with the label's coloring spec, flanked by
// marginal histograms of both axes.
func (r *Renderer) RenderSummary(ctx context.Context, label string, records []model.AggregateRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("render: no records for label %q", label)
	}

	spec, ok := r.Specs[label]
	if !ok {
		spec = ColorSpec{Quantity: "snr", Colormap: "viridis"}
	}

	pts := make(plotter.XYs, len(records))
	areas := make(plotter.Values, len(records))
	resps := make(plotter.Values, len(records))
	for i, rec := range records {
		pts[i] = plotter.XY{X: rec.CredibleArea68, Y: rec.AntennaResponse}
		areas[i] = rec.CredibleArea68
		resps[i] = rec.AntennaResponse
	}

	scatterPlot := plot.New()
	scatterPlot.Title.Text = label
	scatterPlot.X.Label.Text = "68% credible area [deg²]"
	scatterPlot.Y.Label.Text = "normalized network response"

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Radius = vg.Points(3)
	if spec.Gradient() {
		vmin, vmax, err := scaleFor(spec.Quantity)
		if err != nil {
			return err
		}
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			v := records[i].NetworkSNR
			if spec.Quantity == "error_region" {
				v = records[i].CredibleArea68
			}
			gs := sc.GlyphStyle
			gs.Color = colormapAt(spec.Colormap, (v-vmin)/(vmax-vmin))
			return gs
		}
	} else {
		sc.GlyphStyle.Color = spec.Flat
	}
	scatterPlot.Add(sc)

	areaHist, err := marginalHist(areas, "68% credible area [deg²]")
	if err != nil {
		return err
	}
	respHist, err := marginalHist(resps, "normalized network response")
	if err != nil {
		return err
	}

	img := vgimg.New(10*vg.Inch, 8*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 2,
		Cols: 2,
		PadX: vg.Points(8),
		PadY: vg.Points(8),
	}
	plots := [][]*plot.Plot{
		{areaHist, nil},
		{scatterPlot, respHist},
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j := range plots[i] {
			if plots[i][j] != nil {
				plots[i][j].Draw(canvases[i][j])
			}
		}
	}

	path := filepath.Join(r.OutDir, fmt.Sprintf("snr_vs_err_%s.png", label))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}
	if r.Log != nil {
		r.Log.Info(ctx, "wrote label summary",
			logging.String("label", label),
			logging.String("path", path),
			logging.Int("records", len(records)),
		)
	}
	return nil
}

func marginalHist(vals plotter.Values, label string) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = label
	p.Y.Label.Text = "events"
	h, err := plotter.NewHist(vals, 16)
	if err != nil {
		return nil, err
	}
	h.FillColor = color.NRGBA{R: 70, G: 120, B: 180, A: 200}
	p.Add(h)
	return p, nil
}
