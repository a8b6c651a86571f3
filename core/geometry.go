package core

import "math"

// Vec3 is a unit-sphere direction or Earth-fixed basis vector.
type Vec3 struct {
	X, Y, Z float64
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// SymTensor is a symmetric 3x3 tensor, stored in full for simple
// contraction loops.
type SymTensor [3][3]float64

// detectorTensor builds the response tensor (u⊗u − v⊗v)/2 from the two
// arm direction vectors of an interferometer.
func detectorTensor(u, v Vec3) SymTensor {
	ua := [3]float64{u.X, u.Y, u.Z}
	va := [3]float64{v.X, v.Y, v.Z}
	var d SymTensor
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d[i][j] = 0.5 * (ua[i]*ua[j] - va[i]*va[j])
		}
	}
	return d
}

// contract computes aᵀ D b.
func (d SymTensor) contract(a, b [3]float64) float64 {
	var sum float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum += a[i] * d[i][j] * b[j]
		}
	}
	return sum
}

// localBasis returns the East and North unit vectors of the tangent plane
// at the given geodetic location (spherical Earth).
func localBasis(latDeg, lonDeg float64) (east, north Vec3) {
	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180
	east = Vec3{X: -math.Sin(lon), Y: math.Cos(lon), Z: 0}
	north = Vec3{
		X: -math.Cos(lon) * math.Sin(lat),
		Y: -math.Sin(lon) * math.Sin(lat),
		Z: math.Cos(lat),
	}
	return east, north
}

// armVector builds the unit vector of a detector arm from its site
// location and azimuth (degrees clockwise from local North).
func armVector(latDeg, lonDeg, azimuthDeg float64) Vec3 {
	east, north := localBasis(latDeg, lonDeg)
	az := azimuthDeg * math.Pi / 180
	return north.Scale(math.Cos(az)).Add(east.Scale(math.Sin(az)))
}
