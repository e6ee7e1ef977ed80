// Package math provides math types and helpers for sculpt geometry code.
package math

import "math"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Normalize returns a unit vector, or the zero vector for zero input.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Distance returns the distance to another point.
func (v Vec3) Distance(other Vec3) float32 {
	return v.Sub(other).Length()
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// MirrorFlip returns v mirrored across the symmetry planes selected by
// axisBits (bit 0 = X plane, bit 1 = Y plane, bit 2 = Z plane).
func (v Vec3) MirrorFlip(axisBits int) Vec3 {
	out := v
	if axisBits&1 != 0 {
		out.X = -out.X
	}
	if axisBits&2 != 0 {
		out.Y = -out.Y
	}
	if axisBits&4 != 0 {
		out.Z = -out.Z
	}
	return out
}

// SafeAcos clamps x into [-1, 1] before taking the arc cosine, so slightly
// denormalized dot products never produce NaN.
func SafeAcos(x float32) float32 {
	if x <= -1 {
		return math.Pi
	}
	if x >= 1 {
		return 0
	}
	return float32(math.Acos(float64(x)))
}

// Smoothstep is the cubic Hermite interpolation of t in [0, 1].
func Smoothstep(t float32) float32 {
	return t * t * (3 - 2*t)
}

// Clamp limits x to the [lo, hi] range.
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
