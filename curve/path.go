// curve/path.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package curve

import (
	"github.com/skyarc/flightglobe/math"
)

// PathConfig gives the altitude profile parameters for generated flight
// paths, in the same length units as the globe radius.
type PathConfig struct {
	// SurfaceOffset lifts the liftoff/landing points slightly off the
	// sphere so paths don't z-fight with the globe mesh.
	SurfaceOffset float32 `yaml:"surface_offset"`
	// MinCruiseAltitude is the peak altitude of a zero-length hop.
	MinCruiseAltitude float32 `yaml:"min_cruise_altitude"`
	// MaxCruiseAltitude is the peak altitude of a path that saturates the
	// distance ratio.
	MaxCruiseAltitude float32 `yaml:"max_cruise_altitude"`
}

// DefaultPathConfig is scaled for a globe of radius ~600.
var DefaultPathConfig = PathConfig{
	SurfaceOffset:     2,
	MinCruiseAltitude: 15,
	MaxCruiseAltitude: 120,
}

// Path fractions and cruise-altitude weights for the five interior control
// points: climb, climb, peak, descent, descent. Together they trace a
// bell-shaped altitude profile without an explicit altitude function.
var (
	cruiseFractions = [5]float32{0.2, 0.35, 0.5, 0.65, 0.8}
	cruiseWeights   = [5]float32{0.4, 0.75, 0.85, 0.75, 0.4}
)

// CruiseAltitude returns the peak altitude for a path of the given
// straight-line endpoint distance. Altitude saturates at 30% of the half
// circumference; the 0.7 exponent keeps short hops from hugging the
// surface.
func CruiseAltitude(distance, radius float32, cfg PathConfig) float32 {
	maxDistance := radius * math.Pi
	ratio := math.Clamp(distance/(maxDistance*0.3), 0, 1)
	return cfg.MinCruiseAltitude + (cfg.MaxCruiseAltitude-cfg.MinCruiseAltitude)*math.Pow(ratio, 0.7)
}

// GeneratePath builds the flight arc from origin to destination over a
// sphere of the given radius. The endpoints are projected onto the sphere
// at radius+SurfaceOffset; the five interior points are found by lerping
// between them and re-projecting onto progressively higher spheres.
//
// Coincident endpoints degenerate gracefully: the distance collapses to
// zero, the cruise altitude to MinCruiseAltitude, and the result is a short
// vertical hop with no NaNs.
func GeneratePath(origin, destination [3]float32, radius float32, cfg PathConfig) FlightPath {
	surface := radius + cfg.SurfaceOffset
	o := projectOntoSphere(origin, surface)
	d := projectOntoSphere(destination, surface)

	distance := math.Distance3f(o, d)
	altitude := CruiseAltitude(distance, radius, cfg)

	var fp FlightPath
	fp.Points[0] = o
	for i := 0; i < 5; i++ {
		mid := math.Lerp3f(cruiseFractions[i], o, d)
		if math.Length3f(mid) == 0 {
			// Antipodal endpoints can lerp through the center of the
			// sphere; fall back to the origin's direction so the point
			// still projects somewhere finite.
			mid = o
		}
		fp.Points[i+1] = projectOntoSphere(mid, radius+altitude*cruiseWeights[i])
	}
	fp.Points[6] = d

	fp.ArcLength = fp.measureArcLength()
	return fp
}

func projectOntoSphere(p [3]float32, radius float32) [3]float32 {
	return math.Scale3f(math.Normalize3f(p), radius)
}
