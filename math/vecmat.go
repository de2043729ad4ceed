// math/vecmat.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import "github.com/go-gl/mathgl/mgl32"

///////////////////////////////////////////////////////////////////////////
// point 3f

// Various useful functions for arithmetic with 3D points/vectors.
// Names are brief in order to avoid clutter when they're used.

// a+b
func Add3f(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// a-b
func Sub3f(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// a*s
func Scale3f(a [3]float32, s float32) [3]float32 {
	return [3]float32{s * a[0], s * a[1], s * a[2]}
}

func Dot3f(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func Cross3f(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0]}
}

// Lerp3f linearly interpolates x of the way between a and b. x==0
// corresponds to a, x==1 corresponds to b, etc.
func Lerp3f(x float32, a, b [3]float32) [3]float32 {
	return [3]float32{(1-x)*a[0] + x*b[0], (1-x)*a[1] + x*b[1], (1-x)*a[2] + x*b[2]}
}

// Length of v
func Length3f(v [3]float32) float32 {
	return Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Distance between two points
func Distance3f(a, b [3]float32) float32 {
	return Length3f(Sub3f(a, b))
}

// Normalize3f normalizes the given vector; a zero vector is returned
// unchanged rather than dividing by zero.
func Normalize3f(a [3]float32) [3]float32 {
	l := Length3f(a)
	if l == 0 {
		return a
	}
	return Scale3f(a, 1/l)
}

///////////////////////////////////////////////////////////////////////////
// orientation frames

// FrameFromForwardUp returns the rotation matrix whose +z axis is the given
// forward direction and whose +y axis is the given up direction; the third
// axis is chosen to make a right-handed orthonormal frame. Both inputs are
// assumed to be normalized and orthogonal (which holds for the frames built
// from curve tangents and sphere normals).
func FrameFromForwardUp(forward, up [3]float32) mgl32.Mat4 {
	right := Cross3f(up, forward)
	return mgl32.Mat4FromCols(
		mgl32.Vec4{right[0], right[1], right[2], 0},
		mgl32.Vec4{up[0], up[1], up[2], 0},
		mgl32.Vec4{forward[0], forward[1], forward[2], 0},
		mgl32.Vec4{0, 0, 0, 1})
}

// TRS composes a translation, rotation, and uniform scale into a single
// transform, equivalent to applying the scale first, then the rotation, then
// the translation.
func TRS(p [3]float32, rot mgl32.Mat4, scale float32) mgl32.Mat4 {
	m := rot
	for i := 0; i < 12; i++ {
		m[i] *= scale
	}
	m[12], m[13], m[14] = p[0], p[1], p[2]
	return m
}
