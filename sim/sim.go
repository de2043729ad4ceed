// sim/sim.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"

	"github.com/skyarc/flightglobe/flight"
	"github.com/skyarc/flightglobe/globe"
	"github.com/skyarc/flightglobe/log"
	"github.com/skyarc/flightglobe/math"
	"github.com/skyarc/flightglobe/rand"
	"github.com/skyarc/flightglobe/renderer"
)

// Strategy selects how aircraft instances are animated and drawn.
type Strategy string

const (
	// StrategyCPU recomputes every active aircraft's transform on the
	// host each tick; O(activeCount) per frame.
	StrategyCPU Strategy = "cpu"
	// StrategyGPU pushes static per-leg curve data once and animates
	// entirely in the vertex shader; O(1) per frame.
	StrategyGPU Strategy = "gpu"
)

// slowTickSeconds is the tick duration past which a warning is logged;
// well past the frame budget, so it fires on real stalls, not jitter.
const slowTickSeconds = 0.1

// Config collects the simulation parameters.
type Config struct {
	Capacity      int      `yaml:"capacity"`
	ActiveCount   int      `yaml:"active_count"`
	Strategy      Strategy `yaml:"strategy"`
	TrailsEnabled bool     `yaml:"trails"`
	PointsPerPath int      `yaml:"points_per_path"`
	Seed          int64    `yaml:"seed"`

	Controller flight.ControllerConfig `yaml:"controller"`
}

// DefaultConfig runs ten thousand aircraft on the CPU strategy.
var DefaultConfig = Config{
	Capacity:      10000,
	ActiveCount:   10000,
	Strategy:      StrategyCPU,
	TrailsEnabled: true,
	PointsPerPath: renderer.DefaultPointsPerPath,
	Controller:    flight.DefaultControllerConfig,
}

func (c *Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	if c.Strategy != StrategyCPU && c.Strategy != StrategyGPU {
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	if c.Controller.Radius <= 0 {
		return fmt.Errorf("globe radius must be positive, got %v", c.Controller.Radius)
	}
	return nil
}

// Sim owns the whole animated scene: the fleet of flight controllers, the
// instancing strategy, the merged trails, and the static globe scenery.
// Everything runs on the single tick goroutine; nothing here locks.
type Sim struct {
	cfg    Config
	lg     *log.Logger
	rng    rand.Rand
	sphere globe.Globe

	activeCount int
	controllers []*flight.Controller
	planes      renderer.InstanceRenderer
	trails      *renderer.MergedTrails

	grid  renderer.LinesDrawBuilder
	stars renderer.PointsDrawBuilder
}

// New builds the simulation. schedules seeds the fleet; if it has fewer
// entries than capacity, the remainder fly random great-circle routes. The
// plane program must match the configured strategy's vertex shader.
func New(cfg Config, planeProgram renderer.Program, schedules []flight.Schedule, lg *log.Logger) (*Sim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Sim{
		cfg:    cfg,
		lg:     lg,
		rng:    rand.New(),
		sphere: globe.Globe{Radius: cfg.Controller.Radius},
	}
	if cfg.Seed != 0 {
		s.rng.Seed(cfg.Seed)
	}

	switch cfg.Strategy {
	case StrategyGPU:
		s.planes = renderer.NewGPUPlanes(cfg.Capacity, planeProgram,
			cfg.Controller.DwellTime, cfg.Controller.LiftOffset)
	default:
		s.planes = renderer.NewCPUPlanes(cfg.Capacity, planeProgram)
	}

	ppp := cfg.PointsPerPath
	if ppp == 0 {
		ppp = renderer.DefaultPointsPerPath
	}
	s.trails = renderer.NewMergedTrails(cfg.Capacity, ppp)
	s.trails.SetEnabled(cfg.TrailsEnabled)

	s.controllers = make([]*flight.Controller, cfg.Capacity)
	for slot := range s.controllers {
		sched := flight.RandomSchedule(cfg.Controller.Radius, &s.rng)
		if slot < len(schedules) {
			sched = schedules[slot]
		}
		c := flight.NewController(slot, sched, cfg.Controller, &s.rng)
		s.controllers[slot] = c

		if cfg.Strategy == StrategyGPU {
			c.WritePathData(s.planes)
		}
		s.trails.AddPath(slot, c.Path(), c.Origin())
	}
	s.planes.Flush()
	s.trails.Flush()

	s.SetActiveCount(cfg.ActiveCount)
	s.buildScenery()

	lg.Infof("sim: %d aircraft (%d active), %s strategy, trails %v",
		cfg.Capacity, s.activeCount, cfg.Strategy, cfg.TrailsEnabled)
	return s, nil
}

func (s *Sim) ActiveCount() int { return s.activeCount }
func (s *Sim) Capacity() int    { return s.cfg.Capacity }
func (s *Sim) Radius() float32  { return s.sphere.GetRadius() }
func (s *Sim) Controller(slot int) *flight.Controller {
	if slot < 0 || slot >= len(s.controllers) {
		return nil
	}
	return s.controllers[slot]
}

// buildScenery bakes the static backdrop: the globe's lat/lng grid and a
// starfield. Built once; re-emitted into the frame's command buffer each
// tick.
func (s *Sim) buildScenery() {
	for _, seg := range s.sphere.GridLines(8, 12, 32) {
		s.grid.AddLine(seg[0], seg[1])
	}

	r := s.sphere.GetRadius()
	starColor := renderer.RGB{R: 0.8, G: 0.8, B: 0.9}
	for _, p := range globe.Starfield(2000, r*6, r*10, &s.rng) {
		s.stars.AddPoint(p, starColor.Scale(0.4+0.6*s.rng.Float32()))
	}
}

// Advance moves the whole scene forward by dt seconds: one call per
// rendered frame. For the CPU strategy this advances every active
// controller and coalesces their transform writes into one upload; for
// the GPU strategy it advances the shared clock.
func (s *Sim) Advance(dt float32) {
	swaps := 0
	switch s.cfg.Strategy {
	case StrategyGPU:
		s.planes.AdvanceTime(dt)
	default:
		for _, c := range s.controllers[:s.activeCount] {
			if c.Advance(dt, s.planes) {
				// New leg: refresh this aircraft's trail.
				s.trails.AddPath(c.Slot(), c.Path(), c.Origin())
				swaps++
			}
		}
		s.planes.Flush()
		s.trails.Flush()
	}

	recordTick(dt, swaps, s.activeCount)
	if dt > slowTickSeconds {
		s.lg.Warnf("slow tick: %.0f ms for %d aircraft", dt*1000, s.activeCount)
	}
}

// SetActiveCount changes how many aircraft are live. Deactivated slots'
// visuals disappear this tick; reactivated slots come back with their
// state intact.
func (s *Sim) SetActiveCount(n int) {
	n = math.Clamp(n, 0, s.cfg.Capacity)
	s.activeCount = n
	s.planes.SetActiveCount(n)
	s.trails.SetVisibleCount(n)
}

// SetGlobalScale adjusts the rendered size of all aircraft.
func (s *Sim) SetGlobalScale(scale float32) {
	s.planes.SetGlobalScale(scale)
}

// SetTrailsEnabled toggles trail drawing. Re-enabling repopulates every
// active aircraft's trail, since paths added while hidden were dropped.
func (s *Sim) SetTrailsEnabled(enabled bool) {
	s.trails.SetEnabled(enabled)
	if enabled {
		for _, c := range s.controllers[:s.activeCount] {
			s.trails.AddPath(c.Slot(), c.Path(), c.Origin())
		}
		s.trails.Flush()
	}
}

// GenerateCommands emits the frame: viewport and clear, camera matrices,
// static scenery, trails, then aircraft. The caller owns the buffer and
// hands it to the rendering backend.
func (s *Sim) GenerateCommands(cb *renderer.CommandBuffer, width, height int, spin float32) {
	cb.Viewport(0, 0, width, height)
	cb.ClearRGB(renderer.RGB{R: 0.02, G: 0.02, B: 0.05})

	proj, view := renderer.ViewMatrices(s.sphere.GetRadius(), float32(width)/float32(height), spin)
	cb.LoadProjectionMatrix(proj)
	cb.LoadModelViewMatrix(view)

	cb.PointSize(2)
	s.stars.GenerateCommands(cb)

	cb.SetRGB(renderer.RGB{R: 0.15, G: 0.25, B: 0.35})
	cb.LineWidth(1)
	s.grid.GenerateCommands(cb)

	s.trails.GenerateCommands(cb)
	s.planes.GenerateCommands(cb)

	cb.ResetState()
}
