package core

import (
	"errors"
	"math"
	"testing"
)

func degGrid(rows ...[]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, len(row))
		for j, deg := range row {
			out[i][j] = deg * math.Pi / 180
		}
	}
	return out
}

func TestRotateWrapAndNegate(t *testing.T) {
	r := &GridRotator{}
	ra := degGrid([]float64{10, 100, 190, 280})

	rolls, err := r.Rotate(ra, 0)
	if err != nil {
		t.Fatalf("Rotate error: %v", err)
	}
	if rolls != 0 {
		t.Fatalf("rolls = %d, want 0", rolls)
	}
	want := []float64{-10, -100, 170, 80}
	for j, w := range want {
		if math.Abs(ra[0][j]-w) > 1e-9 {
			t.Fatalf("ra[0][%d] = %v, want %v", j, ra[0][j], w)
		}
	}
}

func TestRotateSiderealOffset(t *testing.T) {
	r := &GridRotator{}
	// 6 sidereal hours shift RA by 90 degrees.
	ra := degGrid([]float64{100, 280})

	if _, err := r.Rotate(ra, 6); err != nil {
		t.Fatalf("Rotate error: %v", err)
	}
	want := []float64{-10, 170}
	for j, w := range want {
		if math.Abs(ra[0][j]-w) > 1e-9 {
			t.Fatalf("ra[0][%d] = %v, want %v", j, ra[0][j], w)
		}
	}
}

func TestRotateRollsWrapToBoundary(t *testing.T) {
	r := &GridRotator{}
	ra := degGrid([]float64{10, 20, -170, 30})
	field := [][]float64{{1, 2, 3, 4}}

	rolls, err := r.Rotate(ra, 0, field)
	if err != nil {
		t.Fatalf("Rotate error: %v", err)
	}
	if rolls != 2 {
		t.Fatalf("rolls = %d, want 2", rolls)
	}

	wantRA := []float64{170, -30, -10, -20}
	for j, w := range wantRA {
		if math.Abs(ra[0][j]-w) > 1e-9 {
			t.Fatalf("ra[0][%d] = %v, want %v", j, ra[0][j], w)
		}
	}
	wantField := []float64{3, 4, 1, 2}
	for j, w := range wantField {
		if field[0][j] != w {
			t.Fatalf("field[0][%d] = %v, want %v", j, field[0][j], w)
		}
	}
}

func TestRotateZeroLastColumnTerminates(t *testing.T) {
	r := &GridRotator{}
	ra := degGrid([]float64{50, 0})

	rolls, err := r.Rotate(ra, 0)
	if err != nil {
		t.Fatalf("Rotate error: %v", err)
	}
	if rolls != 0 {
		t.Fatalf("rolls = %d, want 0", rolls)
	}
	if math.Abs(ra[0][0]+50) > 1e-9 {
		t.Fatalf("ra[0][0] = %v, want -50", ra[0][0])
	}
}

func TestRotateDiverged(t *testing.T) {
	r := &GridRotator{}
	// Every column positive: the roll loop can never find the wrap.
	ra := degGrid([]float64{10, 20, 30, 40})

	_, err := r.Rotate(ra, 0)
	if !errors.Is(err, ErrRollDiverged) {
		t.Fatalf("Rotate error = %v, want ErrRollDiverged", err)
	}
}

func TestRotateFieldShapeMismatch(t *testing.T) {
	r := &GridRotator{}
	ra := degGrid([]float64{10, 190})
	bad := [][]float64{{1, 2, 3}}

	if _, err := r.Rotate(ra, 0, bad); err == nil {
		t.Fatalf("expected shape mismatch error")
	}
}

func TestRotateEmptyGrid(t *testing.T) {
	r := &GridRotator{}
	if _, err := r.Rotate(nil, 0); err == nil {
		t.Fatalf("expected error for empty grid")
	}
}
