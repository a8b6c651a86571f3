package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/skymap-correlator/model"
)

// DefaultGridPts is the side length of the dense resampling grid. It must
// stay constant within one run: later array-wide operations (rotation,
// argmax) assume every event's grid has the same shape.
const DefaultGridPts = 500

// InterpolateMap resamples a pixelized map onto an nPts x nPts Cartesian
// grid by nearest-pixel lookup. Rows sweep Dec from north to south
// (degrees); columns sweep RA eastwards in radians over [0, 2π), the
// Earth-fixed frame the rotator later shifts into sidereal alignment.
func InterpolateMap(m *model.SkyProbabilityMap, nPts int) (*model.InterpolatedGrid, error) {
	if nPts <= 1 {
		return nil, fmt.Errorf("interpolate: grid size %d too small", nPts)
	}

	g := &model.InterpolatedGrid{
		RA:   make([][]float64, nPts),
		Dec:  make([][]float64, nPts),
		Prob: make([][]float64, nPts),
	}
	for i := 0; i < nPts; i++ {
		g.RA[i] = make([]float64, nPts)
		g.Dec[i] = make([]float64, nPts)
		g.Prob[i] = make([]float64, nPts)

		decDeg := 90 - 180*(float64(i)+0.5)/float64(nPts)
		theta := (90 - decDeg) * math.Pi / 180
		for j := 0; j < nPts; j++ {
			ra := 2 * math.Pi * (float64(j) + 0.5) / float64(nPts)
			g.RA[i][j] = ra
			g.Dec[i][j] = decDeg
			g.Prob[i][j] = m.Pixels[AngToPix(m.Nside, theta, ra)]
		}
	}
	return g, nil
}
