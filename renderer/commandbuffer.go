// renderer/commandbuffer.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// The command buffer stores a series of rendering commands, represented by
// the following values. Each one is followed in the buffer by a number of
// command arguments, after which the next command follows.  Comments
// after each command briefly describe its arguments.
//
// Buffers (vertex, color, instance attribute, index) are all stored
// directly in the CommandBuffer, following RendererFloatBuffer and
// RendererIntBuffer commands; the first argument after those commands is
// the length of the buffer and then its values follow directly. Rendering
// commands that use buffers are then directed to those buffers via integer
// parameters that encode the offset from the start of the command buffer
// where a buffer begins. (Note that this implies that one CommandBuffer
// cannot refer to a vertex/index buffer in another CommandBuffer.)

const (
	RendererLoadProjectionMatrix   = iota // 16 float32: matrix
	RendererLoadModelViewMatrix           // 16 float32: matrix
	RendererClearRGBA                     // 4 float32: RGBA
	RendererViewport                      // 4 int32: x, y, width, height
	RendererBlend                         // no args: for now always src alpha, 1-src alpha
	RendererDisableBlend                  // no args
	RendererSetRGBA                       // 4 float32: RGBA
	RendererFloatBuffer                   // int32 size, then size*float32 values
	RendererIntBuffer                     // int32: size, then size*int32 values
	RendererVertexArray                   // int32 offset to array values, n components, stride (bytes)
	RendererDisableVertexArray            // no args
	RendererColorArray                    // int32 offset to array values, n components, stride (bytes)
	RendererDisableColorArray             // no args
	RendererPointSize                     // float32
	RendererLineWidth                     // float32
	RendererDrawPoints                    // 2 int32: offset to the index buffer, count
	RendererDrawLines                     // 2 int32: offset to the index buffer, count
	RendererUseProgram                    // int32: program handle; 0 selects the flat-color pipeline
	RendererUniformFloat                  // int32 location, float32 value
	RendererUniformInt                    // 2 int32: location, value
	RendererInstanceAttribArray           // int32 location, offset, n components, stride (bytes), divisor
	RendererDisableInstanceAttribs        // no args
	RendererDrawTrianglesInstanced        // 3 int32: offset to the index buffer, index count, instance count
	RendererResetState                    // no args
)

// CommandBuffer encodes a sequence of rendering commands in an
// API-agnostic manner. It makes it possible for other parts of the system
// to "pre-bake" rendering work into a form that can be efficiently
// processed by a Renderer and possibly reused over multiple frames.
type CommandBuffer struct {
	Buf []uint32
}

// Reset resets the command buffer's length to zero so that it can be
// reused, maintaining the underlying allocation.
func (cb *CommandBuffer) Reset() {
	cb.Buf = cb.Buf[:0]
}

// growFor ensures that at least n more values can be added to the end of
// the buffer without going past its capacity.
func (cb *CommandBuffer) growFor(n int) {
	if len(cb.Buf)+n > cap(cb.Buf) {
		sz := 2 * cap(cb.Buf)
		if sz < 1024 {
			sz = 1024
		}
		if sz < len(cb.Buf)+n {
			sz = 2 * (len(cb.Buf) + n)
		}
		b := make([]uint32, len(cb.Buf), sz)
		copy(b, cb.Buf)
		cb.Buf = b
	}
}

func (cb *CommandBuffer) appendFloats(floats ...float32) {
	for _, f := range floats {
		// Convert each one to a uint32 since that's the type that is
		// actually stored...
		cb.Buf = append(cb.Buf, math.Float32bits(f))
	}
}

func (cb *CommandBuffer) appendInts(ints ...int) {
	for _, i := range ints {
		cb.Buf = append(cb.Buf, uint32(i))
	}
}

// FloatSlice returns a []float32 for the specified segment of the command
// buffer.  It is up to the caller to be sure that this region actually
// stores float32 values.  This method allows code to patch data in an
// already-generated CommandBuffer, for example to change colors in a color
// buffer without needing to regenerate a new command buffer from scratch.
func (cb *CommandBuffer) FloatSlice(start, length int) []float32 {
	if length == 0 {
		return nil
	}
	ptr := (*float32)(unsafe.Pointer(&cb.Buf[start]))
	return unsafe.Slice(ptr, length)
}

func (cb *CommandBuffer) LoadProjectionMatrix(m mgl32.Mat4) {
	cb.appendInts(RendererLoadProjectionMatrix)
	for i := 0; i < 16; i++ {
		cb.appendFloats(m[i])
	}
}

func (cb *CommandBuffer) LoadModelViewMatrix(m mgl32.Mat4) {
	cb.appendInts(RendererLoadModelViewMatrix)
	for i := 0; i < 16; i++ {
		cb.appendFloats(m[i])
	}
}

// ClearRGB adds a command to the command buffer to clear the framebuffer
// to the specified RGB color.
func (cb *CommandBuffer) ClearRGB(color RGB) {
	cb.appendInts(RendererClearRGBA)
	cb.appendFloats(color.R, color.G, color.B, 1)
}

// Viewport adds a command to the command buffer to set the viewport to the
// specified rectangle.
func (cb *CommandBuffer) Viewport(x, y, w, h int) {
	cb.appendInts(RendererViewport, x, y, w, h)
}

// Blend adds a command to the command buffer to enable blending.  The
// blend mode cannot be specified currently, since only one mode (alpha
// over blending) is used.
func (cb *CommandBuffer) Blend() {
	cb.appendInts(RendererBlend)
}

// DisableBlend adds a command to the command buffer that disables
// blending.
func (cb *CommandBuffer) DisableBlend() {
	cb.appendInts(RendererDisableBlend)
}

// SetRGBA adds a command to the command buffer to set the current RGBA
// color. Subsequent draw commands will inherit this color unless they
// specify e.g., per-vertex colors themselves.
func (cb *CommandBuffer) SetRGBA(rgba RGBA) {
	cb.appendInts(RendererSetRGBA)
	cb.appendFloats(rgba.R, rgba.G, rgba.B, rgba.A)
}

// SetRGB adds a command to the command buffer to set the current RGB
// color (alpha is set to 1). Subsequent draw commands will inherit this
// color unless they specify e.g., per-vertex colors themselves.
func (cb *CommandBuffer) SetRGB(rgb RGB) {
	cb.appendInts(RendererSetRGBA)
	cb.appendFloats(rgb.R, rgb.G, rgb.B, 1)
}

// Float2Buffer stores the provided slice of [2]float32 values in the
// CommandBuffer and returns the offset where the first value of the slice
// is stored; this offset can then be passed to commands like VertexArray
// to specify this array.
func (cb *CommandBuffer) Float2Buffer(buf [][2]float32) int {
	cb.appendInts(RendererFloatBuffer, 2*len(buf))
	offset := len(cb.Buf)

	n := 2 * len(buf)
	cb.growFor(n)
	start := len(cb.Buf)
	cb.Buf = cb.Buf[:start+n]
	copy(cb.Buf[start:start+n], unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), n))

	return offset
}

// Float3Buffer stores the provided slice of [3]float32 values in the
// CommandBuffer, analogously to Float2Buffer.
func (cb *CommandBuffer) Float3Buffer(buf [][3]float32) int {
	cb.appendInts(RendererFloatBuffer, 3*len(buf))
	offset := len(cb.Buf)

	n := 3 * len(buf)
	cb.growFor(n)
	start := len(cb.Buf)
	cb.Buf = cb.Buf[:start+n]
	copy(cb.Buf[start:start+n], unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), n))

	return offset
}

// RawFloatBuffer stores an already-packed float32 slice (e.g. interleaved
// per-instance attributes) in the CommandBuffer and returns its offset.
func (cb *CommandBuffer) RawFloatBuffer(buf []float32) int {
	cb.appendInts(RendererFloatBuffer, len(buf))
	offset := len(cb.Buf)

	n := len(buf)
	if n == 0 {
		return offset
	}
	cb.growFor(n)
	start := len(cb.Buf)
	cb.Buf = cb.Buf[:start+n]
	copy(cb.Buf[start:start+n], unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), n))

	return offset
}

// RGBBuffer stores the provided slice of RGB values in the command buffer
// and returns the offset where the first value of the slice is stored.
func (cb *CommandBuffer) RGBBuffer(buf []RGB) int {
	cb.appendInts(RendererFloatBuffer, 3*len(buf))
	offset := len(cb.Buf)

	n := 3 * len(buf)
	cb.growFor(n)
	start := len(cb.Buf)
	copy(cb.Buf[start:start+n], unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), n))
	cb.Buf = cb.Buf[:start+n]

	return offset
}

// IntBuffer stores the provided slice of int32 values in the command
// buffer and returns the offset where the first value of the slice is
// stored.
func (cb *CommandBuffer) IntBuffer(buf []int32) int {
	cb.appendInts(RendererIntBuffer, len(buf))
	offset := len(cb.Buf)

	n := len(buf)
	cb.growFor(n)
	start := len(cb.Buf)
	copy(cb.Buf[start:start+n], unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), n))
	cb.Buf = cb.Buf[:start+n]

	return offset
}

// VertexArray adds a command to the command buffer that specifies an array
// of vertex coordinates to use for a subsequent draw command. offset gives
// the offset into the current command buffer where the vertices begin
// (e.g., as returned by Float3Buffer), nComps is the number of components
// per vertex, and stride gives the stride in bytes between vertices.
func (cb *CommandBuffer) VertexArray(offset, nComps, stride int) {
	cb.appendInts(RendererVertexArray, offset, nComps, stride)
}

// DisableVertexArray adds a command to the command buffer to disable the
// current vertex array.
func (cb *CommandBuffer) DisableVertexArray() {
	cb.appendInts(RendererDisableVertexArray)
}

// ColorArray adds a command to the command buffer that specifies an array
// of RGB per-vertex colors to use for a subsequent draw command. Its
// arguments are analogous to the ones passed to VertexArray.
func (cb *CommandBuffer) ColorArray(offset, nComps, stride int) {
	cb.appendInts(RendererColorArray, offset, nComps, stride)
}

// DisableColorArray adds a command to the command buffer that disables
// the current array of RGB per-vertex colors.
func (cb *CommandBuffer) DisableColorArray() {
	cb.appendInts(RendererDisableColorArray)
}

// PointSize adds a command to the command buffer that specifies the size
// of subsequent points that are drawn in pixels.
func (cb *CommandBuffer) PointSize(w float32) {
	cb.appendInts(RendererPointSize)
	cb.appendFloats(w)
}

// LineWidth adds a command to the command buffer that sets the width in
// pixels of subsequent lines that are drawn.
func (cb *CommandBuffer) LineWidth(w float32) {
	cb.appendInts(RendererLineWidth)
	cb.appendFloats(w)
}

// DrawPoints adds a command to the command buffer to draw a number of
// points. offset gives the offset in the command buffer where the vertex
// indices for the points begin (as returned by e.g., the IntBuffer method)
// and count is the number of points to draw.
func (cb *CommandBuffer) DrawPoints(offset, count int) {
	cb.appendInts(RendererDrawPoints, offset, count)
}

// DrawLines adds a command to the command buffer to draw a number of
// lines; each line is specified by two indices in the index buffer.
// offset gives the offset in the current command buffer where the index
// buffer is (e.g., as returned by IntBuffer), and count gives the total
// number of indices.
func (cb *CommandBuffer) DrawLines(offset, count int) {
	cb.appendInts(RendererDrawLines, offset, count)
}

// UseProgram adds a command to the command buffer to select the given
// shader program for subsequent draw commands; a zero handle restores the
// built-in flat-color pipeline.
func (cb *CommandBuffer) UseProgram(handle uint32) {
	cb.appendInts(RendererUseProgram, int(handle))
}

// UniformFloat adds a command to the command buffer that sets a float
// uniform on the currently bound program. A location of -1 is a no-op,
// mirroring GL semantics.
func (cb *CommandBuffer) UniformFloat(location int32, value float32) {
	cb.appendInts(RendererUniformFloat, int(location))
	cb.appendFloats(value)
}

// UniformInt is the integer analog of UniformFloat.
func (cb *CommandBuffer) UniformInt(location int32, value int32) {
	cb.appendInts(RendererUniformInt, int(location), int(value))
}

// InstanceAttribArray adds a command to the command buffer that binds a
// per-instance vertex attribute array: location is the shader attribute
// location, offset the start of the data in the command buffer, nComps the
// components per attribute, stride the bytes between consecutive
// instances' values, and divisor the instancing divisor (1 to advance the
// attribute once per instance).
func (cb *CommandBuffer) InstanceAttribArray(location int32, offset, nComps, stride, divisor int) {
	cb.appendInts(RendererInstanceAttribArray, int(location), offset, nComps, stride, divisor)
}

// DisableInstanceAttribs adds a command to the command buffer that
// disables all currently enabled per-instance attribute arrays.
func (cb *CommandBuffer) DisableInstanceAttribs() {
	cb.appendInts(RendererDisableInstanceAttribs)
}

// DrawTrianglesInstanced adds a command to the command buffer to draw
// instanceCount copies of the indexed triangles starting at the given
// index buffer offset with indexCount indices.
func (cb *CommandBuffer) DrawTrianglesInstanced(offset, indexCount, instanceCount int) {
	cb.appendInts(RendererDrawTrianglesInstanced, offset, indexCount, instanceCount)
}

// ResetState adds a command to the command buffer that resets all of the
// assorted graphics state (blending, vertex arrays, bound program, etc.)
// to default values.
func (cb *CommandBuffer) ResetState() {
	cb.appendInts(RendererResetState)
}
