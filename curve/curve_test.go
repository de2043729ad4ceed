// curve/curve_test.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package curve

import (
	"testing"

	"github.com/skyarc/flightglobe/globe"
	"github.com/skyarc/flightglobe/math"
	"github.com/stretchr/testify/assert"
)

const testRadius = 600

func testPath(from, to globe.GeoCoordinate) FlightPath {
	o := globe.ToPoint3(from, testRadius)
	d := globe.ToPoint3(to, testRadius)
	return GeneratePath(o, d, testRadius, DefaultPathConfig)
}

func TestPathEndpoints(t *testing.T) {
	pairs := [][2]globe.GeoCoordinate{
		{{Lat: 40.64, Lng: -73.78}, {Lat: 51.47, Lng: -0.45}},  // JFK-LHR
		{{Lat: 35.55, Lng: 139.78}, {Lat: -33.95, Lng: 151.18}}, // HND-SYD
		{{Lat: 1.36, Lng: 103.99}, {Lat: 1.35, Lng: 103.98}},    // short hop
	}

	surface := float32(testRadius) + DefaultPathConfig.SurfaceOffset
	for _, pair := range pairs {
		fp := testPath(pair[0], pair[1])

		o := globe.ToPoint3(pair[0], surface)
		d := globe.ToPoint3(pair[1], surface)
		assert.InDelta(t, 0, math.Distance3f(fp.Points[0], o), 1e-2)
		assert.InDelta(t, 0, math.Distance3f(fp.Points[6], d), 1e-2)

		// All control points should be at or above the surface sphere.
		for i, p := range fp.Points {
			assert.GreaterOrEqual(t, math.Length3f(p), surface-1e-2,
				"control point %d below surface", i)
		}
	}
}

func TestCruiseAltitudeMonotonicInDistance(t *testing.T) {
	cfg := DefaultPathConfig
	maxDistance := float32(testRadius) * math.Pi

	prev := float32(-1)
	for _, frac := range []float32{0, 0.05, 0.1, 0.15, 0.2, 0.25, 0.29} {
		alt := CruiseAltitude(frac*maxDistance, testRadius, cfg)
		assert.Greater(t, alt, prev, "altitude not monotonic at fraction %v", frac)
		prev = alt
	}

	// Beyond the saturation threshold the altitude pins at the maximum.
	assert.InDelta(t, cfg.MaxCruiseAltitude, CruiseAltitude(0.5*maxDistance, testRadius, cfg), 1e-3)
	assert.InDelta(t, cfg.MaxCruiseAltitude, CruiseAltitude(maxDistance, testRadius, cfg), 1e-3)
}

func TestDegeneratePathNoNaNs(t *testing.T) {
	p := globe.ToPoint3(globe.GeoCoordinate{Lat: 12, Lng: 34}, testRadius)
	fp := GeneratePath(p, p, testRadius, DefaultPathConfig)

	for i, cp := range fp.Points {
		for c := 0; c < 3; c++ {
			if math.IsNaN(cp[c]) {
				t.Fatalf("NaN in control point %d", i)
			}
		}
	}
	if math.IsNaN(fp.ArcLength) {
		t.Fatal("NaN arc length")
	}

	// The degenerate path is still a little vertical bump: its peak is
	// above the surface.
	peak := fp.Evaluate(0.5)
	assert.Greater(t, math.Length3f(peak), float32(testRadius)+DefaultPathConfig.SurfaceOffset)
}

func TestSegmentMapping(t *testing.T) {
	for _, tc := range []struct {
		t     float32
		seg   int
		local float32
	}{
		{0, 0, 0},
		{0.25, 1, 0},
		{0.5, 2, 0},
		{0.375, 1, 0.5},
		{1, 3, 1},
		{-0.5, 0, 0},
		{1.5, 3, 1},
	} {
		seg, u := segment(tc.t)
		if seg != tc.seg {
			t.Errorf("t=%v: got segment %d, expected %d", tc.t, seg, tc.seg)
		}
		assert.InDelta(t, tc.local, u, 1e-5, "t=%v local parameter", tc.t)
	}
}

func TestEvaluateContinuity(t *testing.T) {
	fp := testPath(globe.GeoCoordinate{Lat: 40, Lng: -74}, globe.GeoCoordinate{Lat: 48, Lng: 2})

	// Adjacent samples should be close together everywhere, in particular
	// across segment boundaries.
	prev := fp.Evaluate(0)
	for i := 1; i <= 400; i++ {
		p := fp.Evaluate(float32(i) / 400)
		assert.Less(t, math.Distance3f(prev, p), fp.ArcLength/50,
			"discontinuity at t=%v", float32(i)/400)
		prev = p
	}
}

func TestTangentPointsForward(t *testing.T) {
	fp := testPath(globe.GeoCoordinate{Lat: 0, Lng: 0}, globe.GeoCoordinate{Lat: 0, Lng: 60})

	for _, tv := range []float32{0.1, 0.3, 0.5, 0.7, 0.9} {
		tangent := fp.Tangent(tv)
		ahead := fp.Evaluate(math.Clamp(tv+0.01, 0, 1))
		behind := fp.Evaluate(math.Clamp(tv-0.01, 0, 1))
		travel := math.Sub3f(ahead, behind)
		assert.Greater(t, math.Dot3f(tangent, travel), float32(0),
			"tangent opposes travel at t=%v", tv)
	}
}

func TestSample(t *testing.T) {
	fp := testPath(globe.GeoCoordinate{Lat: 10, Lng: 10}, globe.GeoCoordinate{Lat: -20, Lng: 80})

	pts := fp.Sample(32, nil)
	if len(pts) != 32 {
		t.Fatalf("got %d samples, expected 32", len(pts))
	}
	assert.Equal(t, fp.Evaluate(0), pts[0])
	assert.Equal(t, fp.Evaluate(1), pts[31])

	// Reusing a big enough buffer must not allocate a new one.
	buf := make([][3]float32, 64)
	pts2 := fp.Sample(32, buf)
	if &pts2[0] != &buf[0] {
		t.Error("Sample reallocated despite sufficient capacity")
	}
}
