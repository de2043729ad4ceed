// renderer/planes_gpu.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/skyarc/flightglobe/curve"
	"github.com/skyarc/flightglobe/math"
)

// gpuFloatsPerInstance is the packed per-instance stride for the GPU
// strategy: seven vec3 control points, then duration, phase offset, and
// variant.
const gpuFloatsPerInstance = curve.NumControlPoints*3 + 3

// GPUPlanesVertexShader re-runs the full flight animation per vertex:
// spline evaluation, tangent, orientation frame, and lift all happen here,
// driven by one global time uniform. The spline basis and segment mapping
// must match the curve package exactly; EvaluateAt is the Go-side mirror
// that the parity tests hold against it.
const GPUPlanesVertexShader = `
#version 330 core

uniform mat4 uProjection;
uniform mat4 uModelView;
uniform float uTime;
uniform float uDwell;
uniform float uLift;
uniform float uScale;

layout(location = 0) in vec2 aCorner;
layout(location = 1) in vec3 aP0;
layout(location = 2) in vec3 aP1;
layout(location = 3) in vec3 aP2;
layout(location = 4) in vec3 aP3;
layout(location = 5) in vec3 aP4;
layout(location = 6) in vec3 aP5;
layout(location = 7) in vec3 aP6;
layout(location = 8) in vec3 aMeta; // duration, phase offset, variant

flat out int vVariant;

vec3 catmullRom(vec3 p0, vec3 p1, vec3 p2, vec3 p3, float u) {
    float u2 = u * u;
    float u3 = u2 * u;
    return 0.5 * (2.0 * p1 +
        (-p0 + p2) * u +
        (2.0 * p0 - 5.0 * p1 + 4.0 * p2 - p3) * u2 +
        (-p0 + 3.0 * p1 - 3.0 * p2 + p3) * u3);
}

vec3 catmullRomDeriv(vec3 p0, vec3 p1, vec3 p2, vec3 p3, float u) {
    float u2 = u * u;
    return 0.5 * ((-p0 + p2) +
        2.0 * (2.0 * p0 - 5.0 * p1 + 4.0 * p2 - p3) * u +
        3.0 * (-p0 + 3.0 * p1 - 3.0 * p2 + p3) * u2);
}

void main() {
    float duration = aMeta.x;
    if (duration <= 0.0) {
        // Hidden slot; collapse to a degenerate vertex.
        gl_Position = vec4(0.0, 0.0, 0.0, 1.0);
        vVariant = 0;
        return;
    }

    // Round-trip cycle: outbound leg, dwell at the destination, return
    // leg. The return leg runs the same curve backwards.
    float cycle = 2.0 * duration + uDwell;
    float local = mod(uTime + aMeta.y, cycle);
    float t;
    float dir;
    if (local < duration) {
        t = local / duration;
        dir = 1.0;
    } else if (local < duration + uDwell) {
        t = 1.0;
        dir = 1.0;
    } else {
        t = 1.0 - (local - duration - uDwell) / duration;
        dir = -1.0;
    }

    // Same segment mapping as the CPU evaluator: four segments, the outer
    // control points anchoring tangents only.
    float s = min(floor(t * 4.0), 3.0);
    float u = t * 4.0 - s;
    vec3 pts[7] = vec3[7](aP0, aP1, aP2, aP3, aP4, aP5, aP6);
    int i = int(s);
    vec3 p = catmullRom(pts[i], pts[i + 1], pts[i + 2], pts[i + 3], u);
    vec3 tangent = dir * normalize(catmullRomDeriv(pts[i], pts[i + 1], pts[i + 2], pts[i + 3], u));

    vec3 normal = normalize(p);
    vec3 up = cross(normal, tangent);
    if (dot(up, up) < 1e-12) {
        up = cross(normal, vec3(1.0, 0.0, 0.0));
        if (dot(up, up) < 1e-12) {
            up = cross(normal, vec3(0.0, 0.0, 1.0));
        }
    }
    up = normalize(up);
    vec3 right = cross(up, tangent);

    // The model's nose points along +x while the frame's forward axis is
    // +z, so rotate the corner a quarter turn about the local y axis.
    vec3 corner = vec3(-aCorner.y, 0.0, aCorner.x) * uScale;
    vec3 world = p + normal * uLift +
        corner.x * right + corner.y * up + corner.z * tangent;

    gl_Position = uProjection * uModelView * vec4(world, 1.0);
    vVariant = int(aMeta.z + 0.5);
}
`

// GPUPlanes is the GPU-curve instancing strategy: the controller pushes
// each aircraft's control polygon and timing once per leg, and from then
// on the per-frame CPU cost is advancing a single clock. The vertex
// program replays the whole animation, so current positions cannot be
// read back on the CPU side; EvaluateAt recomputes them for tests and
// debugging rather than reading anything back.
type GPUPlanes struct {
	program     Program
	capacity    int
	activeCount int

	globalScale float32
	time        float32
	dwell       float32
	lift        float32

	// Packed interleaved instance attributes, gpuFloatsPerInstance per
	// slot. A non-positive duration marks the slot hidden.
	data []float32

	dirty   bool
	uploads int
}

// NewGPUPlanes creates the strategy with the shared dwell time and lift
// offset baked into uniforms. Per-aircraft dwell jitter is unavailable
// here; every instance follows the shared cycle model.
func NewGPUPlanes(capacity int, program Program, dwellTime, liftOffset float32) *GPUPlanes {
	return &GPUPlanes{
		program:     program,
		capacity:    capacity,
		globalScale: 1,
		dwell:       dwellTime,
		lift:        liftOffset,
		data:        make([]float32, capacity*gpuFloatsPerInstance),
	}
}

func (p *GPUPlanes) Capacity() int    { return p.capacity }
func (p *GPUPlanes) ActiveCount() int { return p.activeCount }
func (p *GPUPlanes) Time() float32    { return p.time }
func (p *GPUPlanes) Uploads() int     { return p.uploads }

// SetTransform is inapplicable to the GPU strategy; per-frame transforms
// are computed in the vertex program.
func (p *GPUPlanes) SetTransform(slot int, position [3]float32, orientation mgl32.Mat4,
	scale float32, variant int, deferUpload bool) {
}

// SetPathData stores one aircraft's static per-leg animation inputs.
func (p *GPUPlanes) SetPathData(slot int, points [curve.NumControlPoints][3]float32,
	duration, phaseOffset float32, variant int) {
	if slot < 0 || slot >= p.capacity {
		return
	}

	base := slot * gpuFloatsPerInstance
	for i, pt := range points {
		copy(p.data[base+3*i:base+3*i+3], pt[:])
	}
	base += 3 * curve.NumControlPoints
	p.data[base] = duration
	p.data[base+1] = phaseOffset
	p.data[base+2] = float32(variant)
	p.dirty = true
}

// Hide zeroes the slot's duration, which the vertex program treats as a
// degenerate instance.
func (p *GPUPlanes) Hide(slot int) {
	if slot < 0 || slot >= p.capacity {
		return
	}
	p.data[slot*gpuFloatsPerInstance+3*curve.NumControlPoints] = 0
	p.dirty = true
}

// SetActiveCount clamps n to capacity. Unlike the CPU strategy, nothing
// re-writes a slot after startup here, so deactivated slots keep their
// path data: the instanced draw covers only the first n slots, which
// culls them, and reactivation restores them untouched.
func (p *GPUPlanes) SetActiveCount(n int) {
	p.activeCount = math.Clamp(n, 0, p.capacity)
}

func (p *GPUPlanes) SetGlobalScale(s float32) {
	p.globalScale = s
}

// AdvanceTime moves the shared animation clock forward; this is the
// entirety of the per-frame CPU work for this strategy.
func (p *GPUPlanes) AdvanceTime(dt float32) {
	p.time += dt
}

func (p *GPUPlanes) Flush() {
	if p.dirty {
		p.uploads++
		p.dirty = false
	}
}

// GenerateCommands adds a single instanced draw for all active slots to
// the command buffer.
func (p *GPUPlanes) GenerateCommands(cb *CommandBuffer) {
	if p.activeCount == 0 {
		return
	}

	cb.UseProgram(p.program.Handle)
	cb.UniformFloat(p.program.UniformLocation("uTime"), p.time)
	cb.UniformFloat(p.program.UniformLocation("uDwell"), p.dwell)
	cb.UniformFloat(p.program.UniformLocation("uLift"), p.lift)
	cb.UniformFloat(p.program.UniformLocation("uScale"), p.globalScale)

	quad := cb.Float2Buffer(planeQuadCorners)
	cb.VertexArray(quad, 2, 2*4)

	inst := cb.RawFloatBuffer(p.data[:p.activeCount*gpuFloatsPerInstance])
	stride := gpuFloatsPerInstance * 4
	for i := 0; i < curve.NumControlPoints; i++ {
		cb.InstanceAttribArray(gpuAttribPoints+int32(i), inst+3*i, 3, stride, 1)
	}
	cb.InstanceAttribArray(gpuAttribMeta, inst+3*curve.NumControlPoints, 3, stride, 1)

	idx := cb.IntBuffer(planeQuadIndices)
	cb.DrawTrianglesInstanced(idx, len(planeQuadIndices), p.activeCount)

	cb.DisableInstanceAttribs()
	cb.UseProgram(0)
}

// EvaluateAt mirrors the vertex program's animation math on the CPU for
// the given slot at the given clock value, returning the lifted position
// and orientation. It reports false for out-of-range or hidden slots.
// Any change to the shader's cycle model or spline evaluation must be
// made here too; the parity tests exist to catch drift between the two.
func (p *GPUPlanes) EvaluateAt(slot int, atTime float32) ([3]float32, mgl32.Mat4, bool) {
	if slot < 0 || slot >= p.capacity {
		return [3]float32{}, mgl32.Mat4{}, false
	}

	base := slot * gpuFloatsPerInstance
	var fp curve.FlightPath
	for i := range fp.Points {
		copy(fp.Points[i][:], p.data[base+3*i:base+3*i+3])
	}
	duration := p.data[base+3*curve.NumControlPoints]
	phase := p.data[base+3*curve.NumControlPoints+1]
	if duration <= 0 {
		return [3]float32{}, mgl32.Mat4{}, false
	}

	cycle := 2*duration + p.dwell
	local := math.Mod(atTime+phase, cycle)
	if local < 0 {
		local += cycle
	}

	t, dir := float32(1), float32(1)
	switch {
	case local < duration:
		t = local / duration
	case local < duration+p.dwell:
		t = 1
	default:
		t = 1 - (local-duration-p.dwell)/duration
		dir = -1
	}

	pt := fp.Evaluate(t)
	tangent := math.Scale3f(math.Normalize3f(fp.Tangent(t)), dir)
	normal := math.Normalize3f(pt)

	up := math.Cross3f(normal, tangent)
	if math.Length3f(up) < 1e-6 {
		up = math.Cross3f(normal, [3]float32{1, 0, 0})
		if math.Length3f(up) < 1e-6 {
			up = math.Cross3f(normal, [3]float32{0, 0, 1})
		}
	}
	up = math.Normalize3f(up)

	pos := math.Add3f(pt, math.Scale3f(normal, p.lift))
	return pos, math.FrameFromForwardUp(tangent, up), true
}
