package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/skymap-correlator/model"
)

// DefaultAntennaGridPts is the side length of the whole-sky antenna grid
// used for background plotting.
const DefaultAntennaGridPts = 100

// AntennaGrid holds the dense whole-sky evaluation of a network's
// directional sensitivity at a fixed time. RA is in radians over [0, 2π)
// and Dec in degrees, the same conventions as the interpolated
// probability grids, so one rotator serves both.
type AntennaGrid struct {
	RA        [][]float64
	Dec       [][]float64
	Pattern   [][]float64 // network antenna pattern √(F+d² + F×d²)
	Alignment [][]float64 // |F×d| / |F+d| in the dominant polarization frame
	DPF       [][]float64 // dominant polarization frame angle, radians
}

// PointResponse is the network sensitivity at one sky location and time.
type PointResponse struct {
	Pattern   float64
	Alignment float64
	DPF       float64
	// Response is Pattern scaled by the per-network normalization when
	// requested, so differently sized configurations stay comparable.
	Response float64
}

// AntennaPatternEvaluator computes a detector network's directional
// response as a pure function of (time, network, location).
type AntennaPatternEvaluator struct {
	// GridPts sets the whole-sky grid resolution; zero means the default.
	GridPts int

	tensors map[string]SymTensor
}

// NewAntennaPatternEvaluator precomputes the response tensor of every
// known detector site.
func NewAntennaPatternEvaluator(sites []model.DetectorSite) *AntennaPatternEvaluator {
	tensors := make(map[string]SymTensor, len(sites))
	for _, s := range sites {
		u := armVector(s.LatitudeDeg, s.LongitudeDeg, s.XArmAzimuthDeg)
		v := armVector(s.LatitudeDeg, s.LongitudeDeg, s.YArmAzimuthDeg)
		tensors[s.Code] = detectorTensor(u, v)
	}
	return &AntennaPatternEvaluator{tensors: tensors}
}

// singleResponse computes F+ and F× of one detector for a source at
// (gha, dec) with polarization angle zero. gha is the Greenwich hour
// angle GMST − RA in radians; dec in radians.
func singleResponse(d SymTensor, gha, dec float64) (fplus, fcross float64) {
	singha, cosgha := math.Sincos(gha)
	sindec, cosdec := math.Sincos(dec)

	// Wave-frame basis on the sky with psi = 0.
	x := [3]float64{-singha, -cosgha, 0}
	y := [3]float64{-cosgha * sindec, singha * sindec, cosdec}

	fplus = d.contract(x, x) - d.contract(y, y)
	fcross = d.contract(x, y) + d.contract(y, x)
	return fplus, fcross
}

// networkQuantities folds the per-detector responses into the dominant
// polarization frame: pattern √(F+d²+F×d²), alignment |F×d|/|F+d|, and
// the DPF rotation angle.
func networkQuantities(tensors []SymTensor, gha, dec float64) (pattern, alignment, dpf float64) {
	var fp2, fc2, fpc float64
	for _, d := range tensors {
		fp, fc := singleResponse(d, gha, dec)
		fp2 += fp * fp
		fc2 += fc * fc
		fpc += fp * fc
	}

	dpf = 0.25 * math.Atan2(2*fpc, fp2-fc2)

	half := 0.5 * (fp2 + fc2)
	disc := math.Sqrt(0.25*(fp2-fc2)*(fp2-fc2) + fpc*fpc)
	fpd2 := half + disc
	fcd2 := half - disc
	if fcd2 < 0 {
		// Floating cancellation can push the minor eigenvalue slightly
		// below zero.
		fcd2 = 0
	}

	pattern = math.Sqrt(fpd2 + fcd2)
	if fpd2 > 0 {
		alignment = math.Sqrt(fcd2 / fpd2)
	}
	return pattern, alignment, dpf
}

// resolve maps detector codes to tensors, failing on unknown codes.
func (e *AntennaPatternEvaluator) resolve(network []string) ([]SymTensor, error) {
	if len(network) == 0 {
		return nil, fmt.Errorf("antenna pattern: empty detector network")
	}
	tensors := make([]SymTensor, 0, len(network))
	for _, code := range network {
		d, ok := e.tensors[code]
		if !ok {
			return nil, fmt.Errorf("antenna pattern: unknown detector %q", code)
		}
		tensors = append(tensors, d)
	}
	return tensors, nil
}

// EvaluateGrid computes the network quantities over a fixed-resolution
// whole-sky grid at the given sidereal time (hours).
func (e *AntennaPatternEvaluator) EvaluateGrid(siderealHours float64, network []string) (*AntennaGrid, error) {
	tensors, err := e.resolve(network)
	if err != nil {
		return nil, err
	}

	n := e.GridPts
	if n <= 0 {
		n = DefaultAntennaGridPts
	}
	gmst := siderealHours * math.Pi / 12

	g := &AntennaGrid{
		RA:        make([][]float64, n),
		Dec:       make([][]float64, n),
		Pattern:   make([][]float64, n),
		Alignment: make([][]float64, n),
		DPF:       make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		g.RA[i] = make([]float64, n)
		g.Dec[i] = make([]float64, n)
		g.Pattern[i] = make([]float64, n)
		g.Alignment[i] = make([]float64, n)
		g.DPF[i] = make([]float64, n)

		decDeg := 90 - 180*(float64(i)+0.5)/float64(n)
		dec := decDeg * math.Pi / 180
		for j := 0; j < n; j++ {
			ra := 2 * math.Pi * (float64(j) + 0.5) / float64(n)
			pat, align, dpf := networkQuantities(tensors, gmst-ra, dec)
			g.RA[i][j] = ra
			g.Dec[i][j] = decDeg
			g.Pattern[i][j] = pat
			g.Alignment[i][j] = align
			g.DPF[i][j] = dpf
		}
	}
	return g, nil
}

// EvaluatePoint computes the network quantities at one (RA, Dec) in
// degrees at the given sidereal time (hours). With normalized set, the
// response is divided by √N so configurations of different sizes remain
// comparable.
func (e *AntennaPatternEvaluator) EvaluatePoint(siderealHours float64, network []string, raDeg, decDeg float64, normalized bool) (PointResponse, error) {
	tensors, err := e.resolve(network)
	if err != nil {
		return PointResponse{}, err
	}

	gmst := siderealHours * math.Pi / 12
	ra := raDeg * math.Pi / 180
	dec := decDeg * math.Pi / 180

	pat, align, dpf := networkQuantities(tensors, gmst-ra, dec)
	resp := pat
	if normalized {
		resp /= math.Sqrt(float64(len(tensors)))
	}
	return PointResponse{Pattern: pat, Alignment: align, DPF: dpf, Response: resp}, nil
}
