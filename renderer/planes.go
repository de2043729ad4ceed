// renderer/planes.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/skyarc/flightglobe/curve"
	"github.com/skyarc/flightglobe/math"
)

// InstanceRenderer is the capability interface shared by the plane
// rendering strategies. A strategy implements the subset that applies to
// it and stubs the rest: the CPU strategy consumes per-frame SetTransform
// writes and ignores SetPathData/AdvanceTime; the GPU strategy consumes
// per-leg SetPathData writes plus a per-frame AdvanceTime and ignores
// SetTransform.
//
// All slot-addressed operations silently ignore out-of-range slots; the
// indices are generated internally, never from user input, and a dropped
// write is preferable to a dropped frame.
type InstanceRenderer interface {
	SetTransform(slot int, position [3]float32, orientation mgl32.Mat4,
		scale float32, variant int, deferUpload bool)
	SetPathData(slot int, points [curve.NumControlPoints][3]float32,
		duration, phaseOffset float32, variant int)
	Hide(slot int)
	SetActiveCount(n int)
	SetGlobalScale(s float32)
	AdvanceTime(dt float32)
	Flush()
	GenerateCommands(cb *CommandBuffer)
	ActiveCount() int
	Capacity() int
}

// Shared quad mesh for all plane strategies: a unit quad in the xz plane,
// instanced once per aircraft.
var (
	planeQuadCorners = [][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	planeQuadIndices = []int32{0, 1, 2, 0, 2, 3}
)

// Attribute locations shared between the Go side and the shader sources;
// location 0 is always the quad corner.
const (
	cpuAttribMatrix  = 1 // 4 consecutive vec4 locations
	cpuAttribVariant = 5

	gpuAttribPoints = 1 // 7 consecutive vec3 locations
	gpuAttribMeta   = 8 // vec3: duration, phase offset, variant
)

// cpuFloatsPerInstance is the packed per-instance stride for the CPU
// strategy: a 4x4 transform plus the variant tag.
const cpuFloatsPerInstance = 17

// CPUPlanesVertexShader consumes a full per-instance transform computed on
// the CPU each frame; all animation state lives on the host.
const CPUPlanesVertexShader = `
#version 330 core

uniform mat4 uProjection;
uniform mat4 uModelView;

layout(location = 0) in vec2 aCorner;
layout(location = 1) in vec4 aTransform0;
layout(location = 2) in vec4 aTransform1;
layout(location = 3) in vec4 aTransform2;
layout(location = 4) in vec4 aTransform3;
layout(location = 5) in float aVariant;

flat out int vVariant;

void main() {
    mat4 transform = mat4(aTransform0, aTransform1, aTransform2, aTransform3);
    vec4 world = transform * vec4(aCorner.x, 0.0, aCorner.y, 1.0);
    gl_Position = uProjection * uModelView * world;
    vVariant = int(aVariant + 0.5);
}
`

// PlanesFragmentShader tints each aircraft by its variant tag; it stands
// in for the texture atlas lookup when textures are unavailable, which the
// simulation treats as a cosmetic fallback rather than an error.
const PlanesFragmentShader = `
#version 330 core

flat in int vVariant;
out vec4 fragColor;

const vec3 palette[8] = vec3[8](
    vec3(0.98, 0.86, 0.35), vec3(0.92, 0.50, 0.25), vec3(0.85, 0.29, 0.40),
    vec3(0.58, 0.76, 0.95), vec3(0.43, 0.88, 0.65), vec3(0.80, 0.67, 0.95),
    vec3(0.95, 0.95, 0.95), vec3(0.99, 0.62, 0.72));

void main() {
    fragColor = vec4(palette[vVariant & 7], 1.0);
}
`

// CPUPlanes is the CPU-transform instancing strategy: a fixed-capacity
// pool of per-instance transforms recomputed by the flight controllers
// every frame and uploaded in one batch. Per-frame cost is O(activeCount)
// on the host but the vertex program stays trivial.
type CPUPlanes struct {
	program     Program
	capacity    int
	activeCount int
	globalScale float32

	// Packed interleaved instance attributes, cpuFloatsPerInstance per
	// slot. A zero matrix is an invisible (degenerate) instance, so the
	// initial state of every slot is hidden.
	data []float32

	dirty   bool
	uploads int
}

func NewCPUPlanes(capacity int, program Program) *CPUPlanes {
	return &CPUPlanes{
		program:     program,
		capacity:    capacity,
		globalScale: 1,
		data:        make([]float32, capacity*cpuFloatsPerInstance),
	}
}

func (p *CPUPlanes) Capacity() int    { return p.capacity }
func (p *CPUPlanes) ActiveCount() int { return p.activeCount }

// Uploads returns how many batched uploads have been flushed; it exists so
// the write-coalescing contract is testable.
func (p *CPUPlanes) Uploads() int { return p.uploads }

// SetTransform composes translation/rotation/scale into the slot's
// transform. With deferUpload set the write is only staged; the caller
// must Flush once after its batch of writes, before command generation.
func (p *CPUPlanes) SetTransform(slot int, position [3]float32, orientation mgl32.Mat4,
	scale float32, variant int, deferUpload bool) {
	if slot < 0 || slot >= p.capacity {
		return
	}

	m := math.TRS(position, orientation, scale*p.globalScale)
	base := slot * cpuFloatsPerInstance
	copy(p.data[base:base+16], m[:])
	p.data[base+16] = float32(variant)
	p.dirty = true

	if !deferUpload {
		p.Flush()
	}
}

// SetPathData is inapplicable to the CPU strategy; the controllers own all
// animation state.
func (p *CPUPlanes) SetPathData(slot int, points [curve.NumControlPoints][3]float32,
	duration, phaseOffset float32, variant int) {
}

// AdvanceTime is inapplicable to the CPU strategy.
func (p *CPUPlanes) AdvanceTime(dt float32) {}

// Hide writes a zero-scale transform into the slot. The instanced draw
// call has a fixed instance count, so invisibility is degenerate geometry,
// not exclusion from the batch.
func (p *CPUPlanes) Hide(slot int) {
	if slot < 0 || slot >= p.capacity {
		return
	}
	base := slot * cpuFloatsPerInstance
	variant := p.data[base+16]
	for i := 0; i < 16; i++ {
		p.data[base+i] = 0
	}
	p.data[base+16] = variant
	p.dirty = true
}

// SetActiveCount clamps n to capacity and hides every slot at or beyond
// it. Slots below n are left as they are; their controllers keep writing
// them, and their variants stay stable across count changes.
func (p *CPUPlanes) SetActiveCount(n int) {
	n = math.Clamp(n, 0, p.capacity)
	for slot := n; slot < p.capacity; slot++ {
		p.Hide(slot)
	}
	p.activeCount = n
	p.Flush()
}

// SetGlobalScale sets a multiplier applied to all subsequent SetTransform
// calls; transforms already written this frame are not revisited.
func (p *CPUPlanes) SetGlobalScale(s float32) {
	p.globalScale = s
}

// Flush marks the end of a batch of staged writes; the accumulated state
// is uploaded once by the next GenerateCommands.
func (p *CPUPlanes) Flush() {
	if p.dirty {
		p.uploads++
		p.dirty = false
	}
}

// GenerateCommands adds a single instanced draw for all active slots to
// the command buffer.
func (p *CPUPlanes) GenerateCommands(cb *CommandBuffer) {
	if p.activeCount == 0 {
		return
	}

	cb.UseProgram(p.program.Handle)

	quad := cb.Float2Buffer(planeQuadCorners)
	cb.VertexArray(quad, 2, 2*4)

	inst := cb.RawFloatBuffer(p.data[:p.activeCount*cpuFloatsPerInstance])
	stride := cpuFloatsPerInstance * 4
	for col := 0; col < 4; col++ {
		cb.InstanceAttribArray(cpuAttribMatrix+int32(col), inst+4*col, 4, stride, 1)
	}
	cb.InstanceAttribArray(cpuAttribVariant, inst+16, 1, stride, 1)

	idx := cb.IntBuffer(planeQuadIndices)
	cb.DrawTrianglesInstanced(idx, len(planeQuadIndices), p.activeCount)

	cb.DisableInstanceAttribs()
	cb.UseProgram(0)
}
