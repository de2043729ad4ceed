// globe/globe.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package globe

import (
	"github.com/skyarc/flightglobe/math"
	"github.com/skyarc/flightglobe/rand"
)

// The globe mesh is baked with a -90 degree rotation about the y axis so
// that the prime meridian faces the camera at startup. Every lat/long
// conversion compensates for that rotation with the axis permutation below;
// the permutation and the mesh orientation must change together or
// coordinates and visuals desynchronize.
const MeshRotationDegrees = -90

// GeoCoordinate is a position on the globe surface; latitude is in
// [-90,90] degrees, longitude in [-180,180] degrees.
type GeoCoordinate struct {
	Lat float32 `json:"lat" yaml:"lat"`
	Lng float32 `json:"lng" yaml:"lng"`
}

// rotateForMesh applies the axis permutation corresponding to
// MeshRotationDegrees: (x,y,z) -> (z,y,-x).
func rotateForMesh(p [3]float32) [3]float32 {
	return [3]float32{p[2], p[1], -p[0]}
}

// unrotateForMesh is the inverse permutation: (x,y,z) -> (-z,y,x).
func unrotateForMesh(p [3]float32) [3]float32 {
	return [3]float32{-p[2], p[1], p[0]}
}

// ToPoint3 converts a latitude/longitude to a 3D point on a sphere of the
// given radius centered at the origin, in the globe mesh's coordinate
// system.
func ToPoint3(c GeoCoordinate, radius float32) [3]float32 {
	phi := math.Radians(90 - c.Lat)
	theta := math.Radians(180 - c.Lng)

	p := [3]float32{
		radius * math.Sin(phi) * math.Cos(theta),
		radius * math.Cos(phi),
		radius * math.Sin(phi) * math.Sin(theta)}
	return rotateForMesh(p)
}

// ToGeoCoordinate inverts ToPoint3: given a point in the globe mesh's
// coordinate system it recovers the latitude/longitude, normalizing the
// point onto the sphere first so that points slightly off the surface (or
// lifted along the normal) still map back sensibly. The radius argument is
// accepted for symmetry with ToPoint3; only the point's direction matters.
func ToGeoCoordinate(p [3]float32, radius float32) GeoCoordinate {
	_ = radius
	q := math.Normalize3f(unrotateForMesh(p))

	lat := 90 - math.Degrees(math.SafeACos(q[1]))
	lng := 180 - math.Degrees(math.Atan2(q[2], q[0]))
	if lng > 180 {
		lng -= 360
	}
	return GeoCoordinate{Lat: lat, Lng: lng}
}

// RandomSurfacePoint returns a uniformly distributed random point on the
// sphere of the given radius. Sampling the polar angle via acos(2u-1)
// gives uniform area; sampling latitude directly would cluster points at
// the poles.
func RandomSurfacePoint(radius float32, r *rand.Rand) [3]float32 {
	theta := math.SafeACos(2*r.Float32() - 1)
	phi := 2 * math.Pi * r.Float32()

	p := [3]float32{
		radius * math.Sin(theta) * math.Cos(phi),
		radius * math.Cos(theta),
		radius * math.Sin(theta) * math.Sin(phi)}
	return rotateForMesh(p)
}
