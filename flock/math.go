package flock

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/spatial/r2"
)

// NormalizeSafe returns v scaled to unit length, or the zero vector when v
// has zero length.
func NormalizeSafe(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}

// LookRotation returns the unit rotation facing along v.
// A zero vector yields the identity rotation (facing +x).
func LookRotation(v r2.Vec) complex128 {
	u := NormalizeSafe(v)
	if u == (r2.Vec{}) {
		return 1
	}
	return complex(u.X, u.Y)
}

// ToComplex converts a vector to a complex number.
func ToComplex(v r2.Vec) complex128 {
	return complex(v.X, v.Y)
}

// ToVec converts a complex number to a vector.
func ToVec(c complex128) r2.Vec {
	return r2.Vec{X: real(c), Y: imag(c)}
}

// Bearing returns the signed angle between heading h and the direction d,
// Arg(conj(normalize(d)) * h), in (-π, π].
func Bearing(d r2.Vec, h complex128) float64 {
	dn := ToComplex(NormalizeSafe(d))
	return cmplx.Phase(cmplx.Conj(dn) * h)
}

// Unit rescales a rotation to unit modulus. Degenerate values map to the
// identity rotation.
func Unit(c complex128) complex128 {
	a := cmplx.Abs(c)
	if a == 0 || math.IsNaN(a) || math.IsInf(a, 0) {
		return 1
	}
	return c / complex(a, 0)
}
