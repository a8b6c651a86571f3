package core

import (
	"fmt"
	"sort"

	"github.com/signalsfoundry/skymap-correlator/model"
)

// DefaultMaxSaneArea68 is the sanity bound on the 68% credible area in
// square degrees. Regions beyond it usually mean the sampler never
// converged on the event.
const DefaultMaxSaneArea68 = 64.0

// CredibleRegionAnalyzer extracts credible-region statistics from a
// ranked cumulative ordering. It only reports the suspect flag; dropping
// flagged events is the caller's policy decision.
type CredibleRegionAnalyzer struct {
	// MaxSaneArea68 overrides the sanity bound; zero means the default.
	MaxSaneArea68 float64
}

// Region returns the smallest credible region whose cumulative mass
// reaches targetMass: the leftmost rank whose running sum is at least the
// target, the boundary probability at that rank, and the implied area.
func (a *CredibleRegionAnalyzer) Region(ord *model.CumulativeOrdering, targetMass float64) (model.CredibleRegion, error) {
	if ord.Len() == 0 {
		return model.CredibleRegion{}, fmt.Errorf("credible region: empty ordering")
	}
	if targetMass <= 0 || targetMass > 1 {
		return model.CredibleRegion{}, fmt.Errorf("credible region: target mass %v outside (0, 1]", targetMass)
	}

	// Leftmost rank whose running sum reaches the target; that pixel is
	// inside the region, so the region holds idx+1 pixels.
	idx := sort.Search(ord.Len(), func(i int) bool {
		return ord.Cumulative[i] >= targetMass
	})
	if idx >= ord.Len() {
		// Cumulative sum fell short of the target by floating error;
		// the region is the whole sky.
		idx = ord.Len() - 1
	}
	count := idx + 1

	bound := a.MaxSaneArea68
	if bound <= 0 {
		bound = DefaultMaxSaneArea68
	}
	area := float64(count) * ord.PixelAreaDeg2

	return model.CredibleRegion{
		Rank:      count,
		Threshold: ord.Prob[idx],
		AreaDeg2:  area,
		Suspect:   area > bound,
	}, nil
}
