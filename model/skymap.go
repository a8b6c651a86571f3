package model

// SkyProbabilityMap is an immutable pixelized posterior over the sphere,
// one probability per HEALPix pixel in RING ordering. It is produced once
// per event by the FITS loader and read-only thereafter.
type SkyProbabilityMap struct {
	// Pixels holds one probability per pixel; the slice index is the
	// RING-scheme pixel number.
	Pixels []float64

	// Nside is the HEALPix resolution parameter (Npix = 12*Nside^2).
	Nside int

	// PixelAreaDeg2 is the solid angle of one pixel in square degrees.
	// All pixels in a HEALPix map share the same area.
	PixelAreaDeg2 float64
}

// Npix returns the total pixel count.
func (m *SkyProbabilityMap) Npix() int { return len(m.Pixels) }

// CumulativeOrdering holds the map's pixels sorted by descending
// probability together with the running cumulative sum. Rank k covers the
// smallest sky region containing Cumulative[k] of the total mass.
type CumulativeOrdering struct {
	// RADeg/DecDeg give the pixel-center coordinates (degrees) per rank.
	RADeg  []float64
	DecDeg []float64

	// Prob is non-increasing; Cumulative is non-decreasing and ends at
	// 1.0 up to floating tolerance.
	Prob       []float64
	Cumulative []float64

	PixelAreaDeg2 float64
}

// Len returns the number of ranked pixels.
func (o *CumulativeOrdering) Len() int { return len(o.Prob) }

// InterpolatedGrid is a dense rectangular resampling of a probability map
// onto a Cartesian (RA, Dec) grid. The interpolation kernel emits RA in
// Earth-fixed radians and Dec in degrees; the rotation step rewrites RA
// into wrapped degrees. All three grids share one shape for the lifetime
// of a run.
type InterpolatedGrid struct {
	RA   [][]float64
	Dec  [][]float64
	Prob [][]float64
}

// Shape returns (rows, cols) of the grid, (0, 0) when empty.
func (g *InterpolatedGrid) Shape() (int, int) {
	if len(g.RA) == 0 {
		return 0, 0
	}
	return len(g.RA), len(g.RA[0])
}

// CredibleRegion describes the smallest sky area reaching a target
// cumulative probability mass.
type CredibleRegion struct {
	// Rank is the number of highest-probability pixels inside the region.
	Rank int
	// Threshold is the per-pixel probability at the region boundary; a
	// contour drawn at this level encloses the region.
	Threshold float64
	// AreaDeg2 = Rank * pixel area.
	AreaDeg2 float64
	// Suspect marks a region larger than the configured sanity bound,
	// usually a sign the localization never converged. The analyzer only
	// reports the flag; it never drops the event.
	Suspect bool
}
