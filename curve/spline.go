// curve/spline.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package curve

import (
	"github.com/skyarc/flightglobe/math"
)

// NumControlPoints is the number of control points in every flight path:
// a liftoff point, five cruise points, and a landing point. The GPU
// renderer packs exactly this many points per instance and its vertex
// shader unpacks the same count, so it is a wire constant, not a tunable.
const NumControlPoints = 7

// numSegments is the number of Catmull-Rom segments spanned by the control
// polygon: segment i interpolates between points i+1 and i+2, so the first
// and last control points serve as tangent anchors only.
const numSegments = NumControlPoints - 3

// arcLengthSamples is the sampling rate used to approximate a path's arc
// length at generation time.
const arcLengthSamples = 100

// FlightPath is a Catmull-Rom spline through a fixed-size control polygon,
// immutable once generated. Paths are created by GeneratePath and replaced
// wholesale when a flight swaps legs; nothing mutates one in place.
type FlightPath struct {
	Points    [NumControlPoints][3]float32
	ArcLength float32
}

// catmullRom evaluates the uniform Catmull-Rom basis for the four control
// points around one segment, returning the interpolated position between p1
// and p2 at local parameter u in [0,1].
func catmullRom(p0, p1, p2, p3 [3]float32, u float32) [3]float32 {
	u2 := u * u
	u3 := u2 * u

	var q [3]float32
	for c := 0; c < 3; c++ {
		q[c] = 0.5 * (2*p1[c] +
			(-p0[c]+p2[c])*u +
			(2*p0[c]-5*p1[c]+4*p2[c]-p3[c])*u2 +
			(-p0[c]+3*p1[c]-3*p2[c]+p3[c])*u3)
	}
	return q
}

// catmullRomDeriv is the derivative of catmullRom with respect to u.
func catmullRomDeriv(p0, p1, p2, p3 [3]float32, u float32) [3]float32 {
	u2 := u * u

	var q [3]float32
	for c := 0; c < 3; c++ {
		q[c] = 0.5 * ((-p0[c] + p2[c]) +
			2*(2*p0[c]-5*p1[c]+4*p2[c]-p3[c])*u +
			3*(-p0[c]+3*p1[c]-3*p2[c]+p3[c])*u2)
	}
	return q
}

// segment maps the global curve parameter t in [0,1] to a segment index and
// the local parameter within it. The same mapping is implemented in the
// instanced vertex shader; the two must not drift apart.
func segment(t float32) (int, float32) {
	t = math.Clamp(t, 0, 1)
	i := int(math.Floor(t * numSegments))
	if i > numSegments-1 {
		i = numSegments - 1
	}
	return i, t*numSegments - float32(i)
}

// Evaluate returns the position on the path at parameter t in [0,1]; t is
// clamped, so callers holding an aircraft at the end of its leg can simply
// pass 1.
func (fp *FlightPath) Evaluate(t float32) [3]float32 {
	i, u := segment(t)
	return catmullRom(fp.Points[i], fp.Points[i+1], fp.Points[i+2], fp.Points[i+3], u)
}

// Tangent returns the (non-normalized) direction of travel at parameter t.
func (fp *FlightPath) Tangent(t float32) [3]float32 {
	i, u := segment(t)
	return catmullRomDeriv(fp.Points[i], fp.Points[i+1], fp.Points[i+2], fp.Points[i+3], u)
}

// Sample fills out with n evenly spaced points along the path, at parameter
// values j/(n-1). It allocates only if out is too small.
func (fp *FlightPath) Sample(n int, out [][3]float32) [][3]float32 {
	if cap(out) < n {
		out = make([][3]float32, n)
	}
	out = out[:n]
	for j := 0; j < n; j++ {
		t := float32(0)
		if n > 1 {
			t = float32(j) / float32(n-1)
		}
		out[j] = fp.Evaluate(t)
	}
	return out
}

// measureArcLength approximates the length of the path by sampling it
// finely and summing segment lengths.
func (fp *FlightPath) measureArcLength() float32 {
	var length float32
	prev := fp.Evaluate(0)
	for i := 1; i <= arcLengthSamples; i++ {
		p := fp.Evaluate(float32(i) / arcLengthSamples)
		length += math.Distance3f(prev, p)
		prev = p
	}
	return length
}
