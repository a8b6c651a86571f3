package core

import (
	"errors"
	"fmt"
	"math"
)

// ErrRollDiverged reports a wraparound-roll loop that failed to find the
// RA discontinuity within one full cycle of columns. A well-formed
// near-monotonic RA grid always canonicalizes in fewer steps, so hitting
// the cap means the map is corrupt.
var ErrRollDiverged = errors.New("grid rotation: roll loop exceeded grid width")

// GridRotator shifts an Earth-fixed (RA, Dec) grid into the frame of a
// specific observation instant and normalizes the result so the RA wrap
// discontinuity sits at the array boundary instead of splitting the map.
type GridRotator struct {
	// MaxRolls caps the canonicalization loop. Zero means "grid width".
	MaxRolls int
}

// Rotate subtracts the sidereal offset (hours) from the RA grid
// (radians), converts to degrees wrapped into (-180, 180], and rolls the
// columns of ra and every co-indexed field grid until the first and last
// RA column straddle zero. The final sign flip matches the outside-in
// orientation of the sky projection. Grids are modified in place; the
// number of rolls performed is returned.
func (r *GridRotator) Rotate(ra [][]float64, siderealHours float64, fields ...[][]float64) (int, error) {
	if len(ra) == 0 || len(ra[0]) == 0 {
		return 0, fmt.Errorf("grid rotation: empty RA grid")
	}
	width := len(ra[0])
	for _, f := range fields {
		if len(f) != len(ra) || len(f[0]) != width {
			return 0, fmt.Errorf("grid rotation: field shape %dx%d does not match RA grid %dx%d",
				len(f), len(f[0]), len(ra), width)
		}
	}

	offsetRad := siderealHours * math.Pi / 12
	for _, row := range ra {
		for j, v := range row {
			deg := (v - offsetRad) * 180 / math.Pi
			if deg < -180 {
				deg += 360
			} else if deg > 180 {
				deg -= 360
			}
			row[j] = deg
		}
	}

	maxRolls := r.MaxRolls
	if maxRolls <= 0 {
		maxRolls = width
	}

	// Walk the wrap point to the boundary: stop once ra[0][0] and
	// ra[0][-1] straddle zero. A zero last column would divide by zero;
	// a grid exactly anti-symmetric about zero is already canonical.
	rolls := 0
	for {
		first, last := ra[0][0], ra[0][width-1]
		if last == 0 || first/last <= 0 {
			break
		}
		if rolls >= maxRolls {
			return rolls, ErrRollDiverged
		}
		rollLeft(ra)
		for _, f := range fields {
			rollLeft(f)
		}
		rolls++
	}

	for _, row := range ra {
		for j := range row {
			row[j] = -row[j]
		}
	}
	return rolls, nil
}

// rollLeft moves every column one position left, wrapping column 0 to the
// end of each row.
func rollLeft(grid [][]float64) {
	for _, row := range grid {
		if len(row) < 2 {
			continue
		}
		first := row[0]
		copy(row, row[1:])
		row[len(row)-1] = first
	}
}
