// sim/sim_test.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyarc/flightglobe/flight"
	"github.com/skyarc/flightglobe/globe"
	"github.com/skyarc/flightglobe/renderer"
)

func testConfig(strategy Strategy) Config {
	cfg := DefaultConfig
	cfg.Capacity = 16
	cfg.ActiveCount = 16
	cfg.Strategy = strategy
	cfg.Seed = 1
	return cfg
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig(StrategyCPU)
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Capacity = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Strategy = "vulkan"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Controller.Radius = 0
	assert.Error(t, bad.Validate())
}

func TestSimAdvanceCPU(t *testing.T) {
	s, err := New(testConfig(StrategyCPU), renderer.Program{}, nil, nil)
	require.NoError(t, err)

	before := s.Controller(0).Timeline().Progress
	s.Advance(0.1)
	after := s.Controller(0).Timeline().Progress
	assert.Greater(t, after, before, "advancing must move aircraft along their legs")

	// One batched upload per tick, regardless of fleet size.
	planes := s.planes.(*renderer.CPUPlanes)
	uploads := planes.Uploads()
	s.Advance(0.1)
	assert.Equal(t, uploads+1, planes.Uploads())
}

func TestSimAdvanceGPU(t *testing.T) {
	s, err := New(testConfig(StrategyGPU), renderer.Program{}, nil, nil)
	require.NoError(t, err)

	planes := s.planes.(*renderer.GPUPlanes)
	s.Advance(0.25)
	s.Advance(0.25)
	assert.InDelta(t, 0.5, planes.Time(), 1e-6)

	// Controllers hold their initial state; the shader owns the animation.
	assert.Zero(t, s.Controller(0).Timeline().Progress)
}

func TestSimActiveCountCascades(t *testing.T) {
	s, err := New(testConfig(StrategyCPU), renderer.Program{}, nil, nil)
	require.NoError(t, err)

	s.SetActiveCount(5)
	assert.Equal(t, 5, s.ActiveCount())
	assert.Equal(t, 5, s.planes.ActiveCount())
	assert.Equal(t, 5, s.trails.VisibleCount())

	// Clamped to capacity.
	s.SetActiveCount(1000)
	assert.Equal(t, 16, s.ActiveCount())
	s.SetActiveCount(-1)
	assert.Equal(t, 0, s.ActiveCount())

	// Advancing with a reduced count must not touch deactivated slots.
	s.SetActiveCount(3)
	s.Advance(0.1)
}

func TestSimActiveCountGPUReactivation(t *testing.T) {
	s, err := New(testConfig(StrategyGPU), renderer.Program{}, nil, nil)
	require.NoError(t, err)

	planes := s.planes.(*renderer.GPUPlanes)
	before, _, ok := planes.EvaluateAt(0, 1)
	require.True(t, ok)

	// The GPU strategy never re-pushes path data, so gating the count down
	// and back up must not disturb the stored legs.
	s.SetActiveCount(0)
	s.SetActiveCount(16)
	after, _, ok := planes.EvaluateAt(0, 1)
	require.True(t, ok, "reactivated aircraft must come back with state intact")
	assert.Equal(t, before, after)
}

func TestSimSchedulesSeedControllers(t *testing.T) {
	scheds := []flight.Schedule{{
		Departure: globe.GeoCoordinate{Lat: 51, Lng: 0},
		Arrival:   globe.GeoCoordinate{Lat: 40, Lng: -74},
		Speed:     450,
	}}
	s, err := New(testConfig(StrategyCPU), renderer.Program{}, scheds, nil)
	require.NoError(t, err)

	c := s.Controller(0)
	assert.Equal(t, scheds[0].Departure, c.Origin())
	assert.Equal(t, scheds[0].Arrival, c.Destination())

	// Remaining slots are filled with random routes on the sphere.
	assert.NotNil(t, s.Controller(15))
	assert.Nil(t, s.Controller(16))
}

func TestSimTrailsToggle(t *testing.T) {
	cfg := testConfig(StrategyCPU)
	cfg.TrailsEnabled = false
	s, err := New(cfg, renderer.Program{}, nil, nil)
	require.NoError(t, err)

	// Paths added at startup were dropped while disabled.
	assert.Equal(t, [3]float32{}, s.trails.Block(0)[0])

	s.SetTrailsEnabled(true)
	assert.NotEqual(t, [3]float32{}, s.trails.Block(0)[0],
		"re-enabling must repopulate active trails")
}

func TestSimGenerateCommands(t *testing.T) {
	s, err := New(testConfig(StrategyCPU), renderer.Program{}, nil, nil)
	require.NoError(t, err)
	s.Advance(0.016)

	cb := renderer.GetCommandBuffer()
	defer renderer.ReturnCommandBuffer(cb)
	s.GenerateCommands(cb, 1280, 720, 0)
	assert.NotEmpty(t, cb.Buf)
}
