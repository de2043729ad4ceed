// renderer/renderer.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Renderer defines an interface for all of the drawing that happens in
// flightglobe. There is currently a single implementation of it--
// OpenGL3Renderer--though having all of these details behind the Renderer
// interface would make it relatively easy to write a Vulkan, Metal, or
// WebGPU rendering backend.
type Renderer interface {
	// CreateProgram compiles and links a vertex/fragment shader pair and
	// returns a handle for use with CommandBuffer.UseProgram.
	CreateProgram(vertexSrc, fragmentSrc string) (Program, error)

	// RenderCommandBuffer executes all of the commands encoded in the
	// provided command buffer, returning statistics about what was
	// rendered.
	RenderCommandBuffer(*CommandBuffer) RendererStats

	// Dispose releases resources allocated by the renderer.
	Dispose()
}

// Program is a compiled shader program plus the uniform locations the
// command stream needs; a zero Program selects the built-in flat-color
// pipeline used for lines and points.
type Program struct {
	Handle   uint32
	Uniforms map[string]int32
}

// UniformLocation returns the location of a named uniform, or -1 if the
// program doesn't have one; setting a uniform at -1 is ignored by the
// backend, matching the permissive style of the rest of the renderer.
func (p Program) UniformLocation(name string) int32 {
	if loc, ok := p.Uniforms[name]; ok {
		return loc
	}
	return -1
}

// RendererStats encapsulates assorted statistics from rendering.
type RendererStats struct {
	Buffers, BufferBytes int
	DrawCalls            int
	Points, Lines        int
	Instances            int
}

func (rs *RendererStats) String() string {
	return fmt.Sprintf("%d buffers (%.2f MB), %d draw calls: %d points, %d lines, %d instances",
		rs.Buffers, float32(rs.BufferBytes)/(1024*1024), rs.DrawCalls, rs.Points, rs.Lines, rs.Instances)
}

func (rs *RendererStats) Merge(s RendererStats) {
	rs.Buffers += s.Buffers
	rs.BufferBytes += s.BufferBytes
	rs.DrawCalls += s.DrawCalls
	rs.Points += s.Points
	rs.Lines += s.Lines
	rs.Instances += s.Instances
}

// ViewMatrices returns perspective projection and orbit-camera modelview
// matrices for a globe of the given radius, with the camera pulled back
// along +z and the globe rotated by the given spin angle (radians) about
// the y axis.
func ViewMatrices(radius, aspect, spin float32) (proj, view mgl32.Mat4) {
	proj = mgl32.Perspective(mgl32.DegToRad(40), aspect, radius/100, radius*20)
	view = mgl32.Translate3D(0, 0, -radius*3.2).Mul4(mgl32.HomogRotate3DY(spin))
	return
}
