// renderer/trails.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"github.com/skyarc/flightglobe/curve"
	"github.com/skyarc/flightglobe/globe"
)

// DefaultPointsPerPath is the trail sampling rate: enough to keep arcs
// smooth at the default camera distance without ballooning the merged
// buffer.
const DefaultPointsPerPath = 32

// MergedTrails draws every aircraft's flight arc from one pair of merged
// vertex/color buffers, a fixed-size block per agent, so the whole fleet's
// trails cost a single draw call. Each block holds pointsPerPath samples
// plus one duplicate of the last sample; the duplicate keeps block strides
// uniform while the static index buffer skips it, so consecutive agents'
// trails never get bridged by a stray segment.
type MergedTrails struct {
	maxAgents     int
	pointsPerPath int
	visibleCount  int
	enabled       bool

	positions [][3]float32
	colors    []RGB
	indices   []int32 // static, built once at initialization

	sampleScratch [][3]float32

	dirty   bool
	uploads int
}

// NewMergedTrails allocates the merged buffers for maxAgents trails of
// pointsPerPath samples each. Trails start enabled and fully hidden.
func NewMergedTrails(maxAgents, pointsPerPath int) *MergedTrails {
	if pointsPerPath < 2 {
		pointsPerPath = 2
	}
	block := pointsPerPath + 1

	t := &MergedTrails{
		maxAgents:     maxAgents,
		pointsPerPath: pointsPerPath,
		enabled:       true,
		positions:     make([][3]float32, maxAgents*block),
		colors:        make([]RGB, maxAgents*block),
		sampleScratch: make([][3]float32, pointsPerPath),
	}

	// Index every sample pair within each block, skipping the duplicate
	// sentinel at the end of the block.
	t.indices = make([]int32, 0, maxAgents*(pointsPerPath-1)*2)
	for agent := 0; agent < maxAgents; agent++ {
		base := int32(agent * block)
		for i := 0; i < pointsPerPath-1; i++ {
			t.indices = append(t.indices, base+int32(i), base+int32(i)+1)
		}
	}
	return t
}

func (t *MergedTrails) MaxAgents() int     { return t.maxAgents }
func (t *MergedTrails) PointsPerPath() int { return t.pointsPerPath }
func (t *MergedTrails) VisibleCount() int  { return t.visibleCount }
func (t *MergedTrails) Enabled() bool      { return t.enabled }
func (t *MergedTrails) Uploads() int       { return t.uploads }

// Block returns the agent's sample block, sentinel included; tests and
// debug overlays read it, nothing else should.
func (t *MergedTrails) Block(agentIndex int) [][3]float32 {
	block := t.pointsPerPath + 1
	return t.positions[agentIndex*block : (agentIndex+1)*block]
}

// SetEnabled toggles trail drawing entirely; while disabled, AddPath calls
// are dropped rather than deferred, so re-enabling shows only paths added
// afterwards.
func (t *MergedTrails) SetEnabled(enabled bool) {
	t.enabled = enabled
}

// AddPath samples the flight path into the agent's block and colors it
// with a hue derived from the origin longitude and a dark-to-light
// lightness ramp, so a trail reads as both "where from" and "which way".
func (t *MergedTrails) AddPath(agentIndex int, fp *curve.FlightPath, origin globe.GeoCoordinate) {
	if !t.enabled || agentIndex < 0 || agentIndex >= t.maxAgents {
		return
	}

	t.sampleScratch = fp.Sample(t.pointsPerPath, t.sampleScratch)

	hue := (origin.Lng + 180) / 360
	block := t.pointsPerPath + 1
	base := agentIndex * block
	for i, p := range t.sampleScratch {
		along := float32(i) / float32(t.pointsPerPath-1)
		t.positions[base+i] = p
		t.colors[base+i] = RGBFromHSL(hue, 0.8, 0.3+0.4*along)
	}
	t.positions[base+t.pointsPerPath] = t.sampleScratch[t.pointsPerPath-1]
	t.colors[base+t.pointsPerPath] = t.colors[base+t.pointsPerPath-1]

	t.dirty = true
}

// HidePath zeroes the agent's block, collapsing its trail to a point at
// the globe's center.
func (t *MergedTrails) HidePath(agentIndex int) {
	if agentIndex < 0 || agentIndex >= t.maxAgents {
		return
	}
	block := t.pointsPerPath + 1
	base := agentIndex * block
	for i := 0; i < block; i++ {
		t.positions[base+i] = [3]float32{}
	}
	t.dirty = true
}

// SetVisibleCount restricts drawing to the first n agents' blocks; showing
// or hiding a prefix of the fleet is O(1), no buffer rewrite.
func (t *MergedTrails) SetVisibleCount(n int) {
	if n < 0 {
		n = 0
	}
	if n > t.maxAgents {
		n = t.maxAgents
	}
	t.visibleCount = n
}

// Flush marks the end of a batch of AddPath/HidePath calls; the merged
// buffers are uploaded once by the next GenerateCommands.
func (t *MergedTrails) Flush() {
	if t.dirty {
		t.uploads++
		t.dirty = false
	}
}

// GenerateCommands adds one draw for all visible trails to the command
// buffer.
func (t *MergedTrails) GenerateCommands(cb *CommandBuffer) {
	if !t.enabled || t.visibleCount == 0 {
		return
	}

	block := t.pointsPerPath + 1
	p := cb.Float3Buffer(t.positions[:t.visibleCount*block])
	cb.VertexArray(p, 3, 3*4)
	rgb := cb.RGBBuffer(t.colors[:t.visibleCount*block])
	cb.ColorArray(rgb, 3, 3*4)

	ind := cb.IntBuffer(t.indices[:t.visibleCount*(t.pointsPerPath-1)*2])
	cb.LineWidth(1)
	cb.DrawLines(ind, t.visibleCount*(t.pointsPerPath-1)*2)

	cb.DisableColorArray()
}
