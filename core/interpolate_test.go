package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/skymap-correlator/model"
)

func uniformMap(nside int) *model.SkyProbabilityMap {
	npix := 12 * nside * nside
	pixels := make([]float64, npix)
	for i := range pixels {
		pixels[i] = 1 / float64(npix)
	}
	return &model.SkyProbabilityMap{Pixels: pixels, Nside: nside, PixelAreaDeg2: PixelAreaDeg2(nside)}
}

func TestInterpolateUniformMap(t *testing.T) {
	g, err := InterpolateMap(uniformMap(2), 40)
	if err != nil {
		t.Fatalf("InterpolateMap error: %v", err)
	}
	rows, cols := g.Shape()
	if rows != 40 || cols != 40 {
		t.Fatalf("shape = %dx%d, want 40x40", rows, cols)
	}

	want := 1.0 / 48
	for i := range g.Prob {
		for j, p := range g.Prob[i] {
			if math.Abs(p-want) > 1e-15 {
				t.Fatalf("Prob[%d][%d] = %v, want uniform %v", i, j, p, want)
			}
		}
	}
}

func TestInterpolateGridConventions(t *testing.T) {
	n := 10
	g, err := InterpolateMap(uniformMap(1), n)
	if err != nil {
		t.Fatalf("InterpolateMap error: %v", err)
	}

	// Columns sweep RA eastwards in radians at cell centers.
	if got, want := g.RA[0][0], 2*math.Pi*0.5/float64(n); math.Abs(got-want) > 1e-12 {
		t.Fatalf("RA[0][0] = %v, want %v", got, want)
	}
	// Rows sweep Dec north to south in degrees.
	if got, want := g.Dec[0][0], 90-180*0.5/float64(n); math.Abs(got-want) > 1e-12 {
		t.Fatalf("Dec[0][0] = %v, want %v", got, want)
	}
	if g.Dec[0][0] <= g.Dec[n-1][0] {
		t.Fatalf("rows should run north to south: %v .. %v", g.Dec[0][0], g.Dec[n-1][0])
	}
}

func TestInterpolatePeakNearPole(t *testing.T) {
	// All mass in pixel 0, the first north-cap pixel: the top grid row's
	// first quadrant must see it.
	pixels := make([]float64, 12)
	pixels[0] = 1
	m := &model.SkyProbabilityMap{Pixels: pixels, Nside: 1, PixelAreaDeg2: PixelAreaDeg2(1)}

	g, err := InterpolateMap(m, 20)
	if err != nil {
		t.Fatalf("InterpolateMap error: %v", err)
	}
	if g.Prob[0][0] != 1 {
		t.Fatalf("Prob[0][0] = %v, want 1", g.Prob[0][0])
	}
}

func TestInterpolateRejectsTinyGrid(t *testing.T) {
	if _, err := InterpolateMap(uniformMap(1), 1); err == nil {
		t.Fatalf("expected error for 1x1 grid")
	}
}
