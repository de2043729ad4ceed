// globe/globe_test.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package globe

import (
	"testing"

	"github.com/skyarc/flightglobe/math"
	"github.com/skyarc/flightglobe/rand"
	"github.com/stretchr/testify/assert"
)

func TestGeoCoordinateRoundTrip(t *testing.T) {
	const radius = 600

	for lat := float32(-85); lat <= 85; lat += 17 {
		for lng := float32(-180); lng < 180; lng += 23 {
			c := GeoCoordinate{Lat: lat, Lng: lng}
			p := ToPoint3(c, radius)
			back := ToGeoCoordinate(p, radius)

			assert.InDelta(t, lat, back.Lat, 1e-3, "latitude for %+v", c)

			dlng := math.Abs(back.Lng - lng)
			if dlng > 180 {
				dlng = 360 - dlng
			}
			assert.InDelta(t, 0, dlng, 1e-3, "longitude for %+v", c)
		}
	}
}

func TestGeoCoordinateRoundTripPoles(t *testing.T) {
	// Longitude is undefined at the poles; only latitude must survive.
	for _, lat := range []float32{90, -90} {
		p := ToPoint3(GeoCoordinate{Lat: lat, Lng: 42}, 100)
		back := ToGeoCoordinate(p, 100)
		assert.InDelta(t, lat, back.Lat, 1e-3)
	}
}

func TestToPoint3OnSphere(t *testing.T) {
	const radius = 250
	for _, c := range []GeoCoordinate{
		{Lat: 0, Lng: 0},
		{Lat: 40.64, Lng: -73.78},  // JFK
		{Lat: -33.95, Lng: 151.18}, // SYD
		{Lat: 89.9, Lng: 10},
	} {
		p := ToPoint3(c, radius)
		assert.InDelta(t, radius, math.Length3f(p), 1e-2, "%+v not on sphere", c)
	}
}

func TestMeshRotationPermutationInverse(t *testing.T) {
	pts := [][3]float32{{1, 2, 3}, {-4, 0, 2}, {0, 0, 0}, {0, -1, 0}}
	for _, p := range pts {
		q := unrotateForMesh(rotateForMesh(p))
		if q != p {
			t.Errorf("permutation round trip: got %v, expected %v", q, p)
		}
	}
}

func TestRandomSurfacePointDistribution(t *testing.T) {
	const radius = 10
	const n = 20000

	rng := rand.New()
	rng.Seed(1)

	var mean [3]float32
	var northern int
	for i := 0; i < n; i++ {
		p := RandomSurfacePoint(radius, &rng)
		assert.InDelta(t, radius, math.Length3f(p), 1e-3)
		mean = math.Add3f(mean, math.Scale3f(p, 1.0/n))
		if p[1] > 0 {
			northern++
		}
	}

	// Uniform sampling should center on the origin and split evenly
	// across hemispheres.
	assert.Less(t, math.Length3f(mean), float32(0.5))
	assert.InDelta(t, n/2, northern, n/20)
}

func TestGridLinesOnSphere(t *testing.T) {
	g := Globe{Radius: 100}
	lines := g.GridLines(8, 12, 16)
	if len(lines) == 0 {
		t.Fatal("no grid lines generated")
	}
	for _, seg := range lines {
		for _, p := range seg {
			assert.InDelta(t, g.Radius, math.Length3f(p), 1e-2)
		}
	}
}
