// flight/flight_test.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flight

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/skyarc/flightglobe/curve"
	"github.com/skyarc/flightglobe/globe"
	"github.com/skyarc/flightglobe/math"
	"github.com/skyarc/flightglobe/rand"
)

func TestTimelineProgressBounds(t *testing.T) {
	tl := Timeline{Duration: 10, DwellTarget: 2}

	check := func() {
		if tl.Progress < 0 || tl.Progress > 1 {
			t.Fatalf("progress %v out of [0,1]", tl.Progress)
		}
	}

	for _, dt := range []float32{0, 0.5, 3, 0, 7.5, 100, 0.1} {
		tl.Advance(dt)
		check()
	}
}

func TestTimelinePhaseSequence(t *testing.T) {
	tl := Timeline{Duration: 10, DwellTarget: 2}

	// After total elapsed >= duration the timeline dwells.
	tl.Advance(10)
	if tl.Phase != Dwelling {
		t.Fatalf("expected Dwelling after full flight, got %v", tl.Phase)
	}
	if tl.Progress != 1 {
		t.Fatalf("expected progress clamped to 1, got %v", tl.Progress)
	}

	// Three one-second dwell advances trigger exactly one swap.
	swaps := 0
	for i := 0; i < 3; i++ {
		if tl.Advance(1) {
			swaps++
		}
	}
	if swaps != 1 {
		t.Fatalf("expected exactly one swap, got %d", swaps)
	}
	if tl.Phase != Flying {
		t.Fatalf("expected Flying after dwell, got %v", tl.Phase)
	}
}

func TestTimelineZeroDuration(t *testing.T) {
	tl := Timeline{Duration: 0, DwellTarget: 1}
	tl.Advance(0.016)
	if tl.Phase != Dwelling || tl.Progress != 1 {
		t.Fatalf("zero-duration leg should complete immediately: %+v", tl)
	}
}

///////////////////////////////////////////////////////////////////////////
// Controller

// recordingRenderer captures the most recent write per slot.
type recordingRenderer struct {
	positions  map[int][3]float32
	rotations  map[int]mgl32.Mat4
	variants   map[int]int
	pathWrites int
	hidden     map[int]bool
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{
		positions: make(map[int][3]float32),
		rotations: make(map[int]mgl32.Mat4),
		variants:  make(map[int]int),
		hidden:    make(map[int]bool),
	}
}

func (r *recordingRenderer) SetTransform(slot int, p [3]float32, rot mgl32.Mat4,
	scale float32, variant int, deferUpload bool) {
	r.positions[slot] = p
	r.rotations[slot] = rot
	r.variants[slot] = variant
	r.hidden[slot] = false
}

func (r *recordingRenderer) SetPathData(slot int, pts [curve.NumControlPoints][3]float32,
	duration, phase float32, variant int) {
	r.pathWrites++
}

func (r *recordingRenderer) Hide(slot int) { r.hidden[slot] = true }

func testController(t *testing.T) (*Controller, *rand.Rand) {
	t.Helper()
	rng := rand.New()
	rng.Seed(42)
	cfg := DefaultControllerConfig
	cfg.DwellJitter = 0 // deterministic dwell for tests
	sched := Schedule{
		Departure: globe.GeoCoordinate{Lat: 40.64, Lng: -73.78},
		Arrival:   globe.GeoCoordinate{Lat: 51.47, Lng: -0.45},
		Speed:     500,
	}
	return NewController(7, sched, cfg, &rng), &rng
}

func TestControllerRoundTrip(t *testing.T) {
	c, _ := testController(t)
	r := newRecordingRenderer()

	origOrigin, origDest := c.Origin(), c.Destination()
	duration := c.Timeline().Duration
	if duration <= 0 {
		t.Fatal("expected positive leg duration")
	}

	// Fly the whole outbound leg.
	swaps := 0
	steps := int(duration/0.1) + 2
	for i := 0; i < steps; i++ {
		if c.Advance(0.1, r) {
			swaps++
		}
	}
	if c.Timeline().Phase != Dwelling {
		t.Fatalf("expected Dwelling at end of leg, got %v", c.Timeline().Phase)
	}
	if swaps != 0 {
		t.Fatal("swap should not happen until the dwell completes")
	}

	// Sit out the dwell, stopping on the tick the swap fires; the return
	// leg is short enough that further advancing would complete it and
	// land the aircraft back in Dwelling.
	for i := 0; i < 30; i++ {
		if c.Advance(0.1, r) {
			swaps++
			break
		}
	}
	if swaps != 1 {
		t.Fatalf("expected exactly one swap, got %d", swaps)
	}
	if c.Origin() != origDest || c.Destination() != origOrigin {
		t.Error("endpoints not swapped after dwell")
	}
	if c.Timeline().Phase != Flying {
		t.Fatalf("expected Flying after swap, got %v", c.Timeline().Phase)
	}
}

func TestControllerVariantStable(t *testing.T) {
	c, _ := testController(t)
	r := newRecordingRenderer()

	v := c.Variant()
	for i := 0; i < 100; i++ {
		c.Advance(0.25, r)
	}
	if c.Variant() != v {
		t.Errorf("variant changed from %d to %d", v, c.Variant())
	}
	if r.variants[c.Slot()] != v {
		t.Errorf("renderer saw variant %d, expected %d", r.variants[c.Slot()], v)
	}
}

func TestControllerPositionAboveSurface(t *testing.T) {
	c, _ := testController(t)
	r := newRecordingRenderer()

	for i := 0; i < 200; i++ {
		c.Advance(0.05, r)
		p := r.positions[c.Slot()]
		if got := math.Length3f(p); got < c.cfg.Radius {
			t.Fatalf("aircraft below the globe surface: |p|=%v < %v", got, c.cfg.Radius)
		}
	}
}

func TestControllerOrientationOrthonormal(t *testing.T) {
	c, _ := testController(t)
	r := newRecordingRenderer()

	c.Advance(1, r)
	m := r.rotations[c.Slot()]
	for col := 0; col < 3; col++ {
		v := [3]float32{m[4*col], m[4*col+1], m[4*col+2]}
		if d := math.Abs(math.Length3f(v) - 1); d > 1e-4 {
			t.Errorf("rotation column %d not unit length: %v", col, math.Length3f(v))
		}
	}
}

///////////////////////////////////////////////////////////////////////////
// Schedules

func TestLoadSchedules(t *testing.T) {
	input := `[
		{"departure": {"lat": 40.64, "lng": -73.78}, "arrival": {"lat": 51.47, "lng": -0.45}, "speed": 650},
		{"departure": {"lat": 1.36, "lng": 103.99}, "arrival": {"lat": 35.55, "lng": 139.78}}
	]`
	scheds, err := LoadSchedules(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scheds) != 2 {
		t.Fatalf("got %d schedules, expected 2", len(scheds))
	}
	if scheds[0].SpeedOrDefault() != 650 {
		t.Errorf("got speed %v, expected 650", scheds[0].SpeedOrDefault())
	}
	if scheds[1].SpeedOrDefault() != DefaultSpeed {
		t.Errorf("missing speed should default to %v, got %v", float32(DefaultSpeed), scheds[1].SpeedOrDefault())
	}
}

func TestLoadSchedulesRejectsBadCoordinates(t *testing.T) {
	for _, input := range []string{
		`[{"departure": {"lat": 91, "lng": 0}, "arrival": {"lat": 0, "lng": 0}}]`,
		`[{"departure": {"lat": 0, "lng": 181}, "arrival": {"lat": 0, "lng": 0}}]`,
		`[{"departure": {"lat": 0, "lng": 0}, "arrival": {"lat": -120, "lng": 0}}]`,
	} {
		if _, err := LoadSchedules(strings.NewReader(input)); err == nil {
			t.Errorf("no error for invalid input %s", input)
		}
	}
}
