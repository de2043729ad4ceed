// flight/controller.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flight

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/skyarc/flightglobe/curve"
	"github.com/skyarc/flightglobe/globe"
	"github.com/skyarc/flightglobe/math"
	"github.com/skyarc/flightglobe/rand"
)

// NumVariants is the number of visual appearances (texture/tint indices)
// an aircraft can be assigned.
const NumVariants = 8

// Renderer is the subset of an instance renderer that a controller drives.
// The CPU strategy consumes SetTransform every frame and ignores
// SetPathData; the GPU strategy consumes SetPathData once per leg and
// ignores SetTransform. Both tolerate out-of-range slots silently.
type Renderer interface {
	SetTransform(slot int, position [3]float32, orientation mgl32.Mat4,
		scale float32, variant int, deferUpload bool)
	SetPathData(slot int, points [curve.NumControlPoints][3]float32,
		duration, phaseOffset float32, variant int)
	Hide(slot int)
}

// ControllerConfig collects the shared parameters for all flight
// controllers.
type ControllerConfig struct {
	Radius      float32          `yaml:"radius"`
	Path        curve.PathConfig `yaml:"path"`
	DwellTime   float32          `yaml:"dwell_time"`   // seconds held at the destination
	DwellJitter float32          `yaml:"dwell_jitter"` // extra random dwell in [0,DwellJitter)
	Scale       float32          `yaml:"scale"`        // per-aircraft base scale
	LiftOffset  float32          `yaml:"lift_offset"`  // lift along the sphere normal so aircraft clear their trails
}

// DefaultControllerConfig is scaled for a globe of radius ~600.
var DefaultControllerConfig = ControllerConfig{
	Radius:      600,
	Path:        curve.DefaultPathConfig,
	DwellTime:   2,
	DwellJitter: 3,
	Scale:       1,
	LiftOffset:  1.5,
}

// The aircraft model's nose points along +x in model space while the
// orientation frame puts the direction of travel along +z, so every
// transform carries this corrective rotation. Re-derive it if the model's
// default facing ever changes.
var assetCorrection = mgl32.HomogRotate3DY(-math.Pi / 2)

// Controller animates one aircraft: it owns the timeline and the current
// leg's endpoints, regenerates the path when the leg swaps, and pushes the
// resulting transform into its renderer slot each tick.
type Controller struct {
	slot    int
	variant int
	speed   float32

	origin, destination globe.GeoCoordinate

	cfg  ControllerConfig
	path curve.FlightPath
	tl   Timeline
	rng  *rand.Rand
}

// NewController creates the controller for one schedule entry, generating
// its initial outbound path. The rng is shared by all controllers on the
// single simulation goroutine.
func NewController(slot int, sched Schedule, cfg ControllerConfig, rng *rand.Rand) *Controller {
	c := &Controller{
		slot:        slot,
		variant:     rng.Intn(NumVariants),
		speed:       sched.SpeedOrDefault(),
		origin:      sched.Departure,
		destination: sched.Arrival,
		cfg:         cfg,
		rng:         rng,
	}
	c.regenerate()
	return c
}

func (c *Controller) Slot() int                        { return c.slot }
func (c *Controller) Variant() int                     { return c.variant }
func (c *Controller) Origin() globe.GeoCoordinate      { return c.origin }
func (c *Controller) Destination() globe.GeoCoordinate { return c.destination }
func (c *Controller) Path() *curve.FlightPath          { return &c.path }
func (c *Controller) Timeline() Timeline               { return c.tl }

// regenerate rebuilds the path for the current origin/destination and
// recomputes the leg duration from its arc length.
func (c *Controller) regenerate() {
	o := globe.ToPoint3(c.origin, c.cfg.Radius)
	d := globe.ToPoint3(c.destination, c.cfg.Radius)
	c.path = curve.GeneratePath(o, d, c.cfg.Radius, c.cfg.Path)

	duration := float32(0)
	if c.speed > 0 {
		duration = c.path.ArcLength / c.speed
	}
	c.tl.SetLeg(duration, c.cfg.DwellTime+c.cfg.DwellJitter*c.rng.Float32())
}

// Advance moves this aircraft forward by dt seconds and writes its
// transform into the renderer. The write is deferred; the caller flushes
// the renderer once after advancing every controller. Returns true if the
// aircraft swapped legs on this tick.
func (c *Controller) Advance(dt float32, r Renderer) bool {
	swapped := c.tl.Advance(dt)
	if swapped {
		c.origin, c.destination = c.destination, c.origin
		c.regenerate()
	}

	pos, orient := c.transformAt(c.tl.Progress)
	r.SetTransform(c.slot, pos, orient, c.cfg.Scale, c.variant, true)
	return swapped
}

// transformAt converts a curve parameter into the rendered position and
// orientation: forward along the tangent, up perpendicular to both the
// tangent and the outward sphere normal, position lifted along the normal.
func (c *Controller) transformAt(t float32) ([3]float32, mgl32.Mat4) {
	p := c.path.Evaluate(t)
	tangent := math.Normalize3f(c.path.Tangent(t))
	normal := math.Normalize3f(p)

	up := math.Cross3f(normal, tangent)
	if math.Length3f(up) < 1e-6 {
		// Degenerate (vertical hop): the tangent is parallel to the
		// normal, so any perpendicular will do.
		up = math.Cross3f(normal, [3]float32{1, 0, 0})
		if math.Length3f(up) < 1e-6 {
			up = math.Cross3f(normal, [3]float32{0, 0, 1})
		}
	}
	up = math.Normalize3f(up)

	frame := math.FrameFromForwardUp(tangent, up)
	pos := math.Add3f(p, math.Scale3f(normal, c.cfg.LiftOffset))
	return pos, frame.Mul4(assetCorrection)
}

// WritePathData pushes this aircraft's static per-leg data into a
// GPU-strategy renderer slot: the control polygon, the leg duration, a
// random phase offset spanning the full round-trip cycle so the fleet
// doesn't move in lockstep, and the variant.
func (c *Controller) WritePathData(r Renderer) {
	cycle := 2*c.tl.Duration + c.tl.DwellTarget
	r.SetPathData(c.slot, c.path.Points, c.tl.Duration, c.rng.Float32()*cycle, c.variant)
}
