// globe/mesh.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package globe

import (
	"github.com/skyarc/flightglobe/math"
	"github.com/skyarc/flightglobe/rand"
)

// Globe describes the sphere everything is drawn on. Radius is in scene
// units; all speeds and altitudes elsewhere are expressed in the same
// units.
type Globe struct {
	Radius float32
}

func (g Globe) GetRadius() float32 { return g.Radius }

// GridLines returns line segments for a latitude/longitude wireframe of the
// globe, generated through ToPoint3 so the grid carries the same mesh
// rotation as every other consumer of the sphere convention. Each returned
// pair is one segment endpoint pair.
func (g Globe) GridLines(nLat, nLng, nSegs int) [][2][3]float32 {
	var lines [][2][3]float32

	// Latitude circles, skipping the poles where the circle degenerates.
	for i := 1; i < nLat; i++ {
		lat := -90 + 180*float32(i)/float32(nLat)
		for s := 0; s < nSegs; s++ {
			lng0 := -180 + 360*float32(s)/float32(nSegs)
			lng1 := -180 + 360*float32(s+1)/float32(nSegs)
			lines = append(lines, [2][3]float32{
				ToPoint3(GeoCoordinate{Lat: lat, Lng: lng0}, g.Radius),
				ToPoint3(GeoCoordinate{Lat: lat, Lng: lng1}, g.Radius)})
		}
	}

	// Meridians.
	for i := 0; i < nLng; i++ {
		lng := -180 + 360*float32(i)/float32(nLng)
		for s := 0; s < nSegs; s++ {
			lat0 := -90 + 180*float32(s)/float32(nSegs)
			lat1 := -90 + 180*float32(s+1)/float32(nSegs)
			lines = append(lines, [2][3]float32{
				ToPoint3(GeoCoordinate{Lat: lat0, Lng: lng}, g.Radius),
				ToPoint3(GeoCoordinate{Lat: lat1, Lng: lng}, g.Radius)})
		}
	}

	return lines
}

// Starfield returns n points scattered uniformly over a spherical shell
// between minRadius and maxRadius, for the background star dome.
func Starfield(n int, minRadius, maxRadius float32, r *rand.Rand) [][3]float32 {
	pts := make([][3]float32, n)
	for i := range pts {
		radius := math.Lerp(r.Float32(), minRadius, maxRadius)
		pts[i] = RandomSurfacePoint(radius, r)
	}
	return pts
}
