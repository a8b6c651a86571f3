package core

import (
	"fmt"
	"math"
	"sort"

	"github.com/signalsfoundry/skymap-correlator/model"
)

// RING-scheme HEALPix pixel math. Only the pieces the pipeline needs:
// resolution/area bookkeeping, pixel-to-angle for building the sky table,
// and angle-to-pixel for the grid resampler. NESTED maps are rejected at
// load time, so no reordering code lives here.

// NpixToNside derives the resolution parameter from the pixel count.
func NpixToNside(npix int) (int, error) {
	if npix <= 0 || npix%12 != 0 {
		return 0, fmt.Errorf("healpix: invalid pixel count %d", npix)
	}
	nside := int(math.Round(math.Sqrt(float64(npix) / 12)))
	if 12*nside*nside != npix {
		return 0, fmt.Errorf("healpix: pixel count %d is not 12*nside^2", npix)
	}
	return nside, nil
}

// PixelAreaDeg2 returns the solid angle of one pixel in square degrees.
func PixelAreaDeg2(nside int) float64 {
	npix := float64(12 * nside * nside)
	steradian := 4 * math.Pi / npix
	degPerRad := 180 / math.Pi
	return steradian * degPerRad * degPerRad
}

// PixToAng converts a RING-scheme pixel number to (colatitude theta,
// longitude phi) in radians.
func PixToAng(nside, pix int) (theta, phi float64) {
	npix := 12 * nside * nside
	ncap := 2 * nside * (nside - 1)
	ns := float64(nside)

	ip := pix + 1 // 1-based
	switch {
	case ip <= ncap: // north polar cap
		hip := float64(ip) / 2
		fihip := math.Floor(hip)
		iring := int(math.Sqrt(hip-math.Sqrt(fihip))) + 1
		iphi := ip - 2*iring*(iring-1)
		z := 1 - float64(iring*iring)/(3*ns*ns)
		theta = math.Acos(z)
		phi = (float64(iphi) - 0.5) * math.Pi / (2 * float64(iring))

	case ip <= 2*nside*(5*nside+1): // equatorial belt
		ipBelt := ip - ncap - 1
		iring := ipBelt/(4*nside) + nside
		iphi := ipBelt%(4*nside) + 1
		// fodd is 1 when the ring is shifted by half a pixel.
		fodd := 0.5 * float64(1+(iring+nside)%2)
		z := (2*ns - float64(iring)) * 2 / (3 * ns)
		theta = math.Acos(z)
		phi = (float64(iphi) - fodd) * math.Pi / (2 * ns)

	default: // south polar cap
		ipSouth := npix - pix
		hip := float64(ipSouth) / 2
		fihip := math.Floor(hip)
		iring := int(math.Sqrt(hip-math.Sqrt(fihip))) + 1
		iphi := 4*iring + 1 - (ipSouth - 2*iring*(iring-1))
		z := -1 + float64(iring*iring)/(3*ns*ns)
		theta = math.Acos(z)
		phi = (float64(iphi) - 0.5) * math.Pi / (2 * float64(iring))
	}
	return theta, phi
}

// AngToPix converts (colatitude theta, longitude phi) in radians to a
// RING-scheme pixel number.
func AngToPix(nside int, theta, phi float64) int {
	npix := 12 * nside * nside
	ncap := 2 * nside * (nside - 1)
	ns := float64(nside)

	z := math.Cos(theta)
	za := math.Abs(z)
	tt := math.Mod(phi, 2*math.Pi)
	if tt < 0 {
		tt += 2 * math.Pi
	}
	tt /= math.Pi / 2 // in [0,4)

	if za <= 2.0/3.0 { // equatorial belt
		temp1 := ns * (0.5 + tt)
		temp2 := ns * z * 0.75
		jp := int(temp1 - temp2)
		jm := int(temp1 + temp2)

		ir := nside + 1 + jp - jm
		kshift := 1 - ir&1
		ip := (jp + jm - nside + kshift + 1) / 2
		ip = ((ip % (4 * nside)) + 4*nside) % (4 * nside)

		return ncap + (ir-1)*4*nside + ip
	}

	// polar caps
	tp := tt - math.Floor(tt)
	tmp := ns * math.Sqrt(3*(1-za))
	jp := int(tp * tmp)
	jm := int((1 - tp) * tmp)

	ir := jp + jm + 1
	ip := int(tt * float64(ir))
	ip = ((ip % (4 * ir)) + 4*ir) % (4 * ir)

	if z > 0 {
		return 2*ir*(ir-1) + ip
	}
	return npix - 2*ir*(ir+1) + ip
}

// RADecForPix returns the pixel center in (RA, Dec) degrees.
func RADecForPix(nside, pix int) (raDeg, decDeg float64) {
	theta, phi := PixToAng(nside, pix)
	return phi * 180 / math.Pi, 90 - theta*180/math.Pi
}

// NewCumulativeOrdering ranks the map's pixels by descending probability
// and accumulates the running sum. The result is the sky table every
// credible-region query searches.
func NewCumulativeOrdering(m *model.SkyProbabilityMap) *model.CumulativeOrdering {
	n := m.Npix()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return m.Pixels[order[a]] > m.Pixels[order[b]]
	})

	ord := &model.CumulativeOrdering{
		RADeg:         make([]float64, n),
		DecDeg:        make([]float64, n),
		Prob:          make([]float64, n),
		Cumulative:    make([]float64, n),
		PixelAreaDeg2: m.PixelAreaDeg2,
	}
	var running float64
	for rank, pix := range order {
		ra, dec := RADecForPix(m.Nside, pix)
		ord.RADeg[rank] = ra
		ord.DecDeg[rank] = dec
		p := m.Pixels[pix]
		ord.Prob[rank] = p
		running += p
		ord.Cumulative[rank] = running
	}
	return ord
}
