// renderer/builders.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

///////////////////////////////////////////////////////////////////////////
// DrawBuilders

// The various *DrawBuilder classes provide capabilities for specifying a
// number of independent things of the same type to draw and then
// generating corresponding buffer storage and draw commands in a
// CommandBuffer. This allows batching up many things to be drawn all in a
// single draw command, with corresponding GPU performance benefits.

// PointsDrawBuilder accumulates colored 3D points to be drawn.
type PointsDrawBuilder struct {
	p       [][3]float32
	color   []RGB
	indices []int32
}

// Reset resets all of the internal storage in the PointsDrawBuilder so
// that new points can be specified. It maintains the memory allocations so
// that once the system reaches steady state, there will generally not be
// dynamic memory allocations when it is used.
func (p *PointsDrawBuilder) Reset() {
	p.p = p.p[:0]
	p.color = p.color[:0]
	p.indices = p.indices[:0]
}

// AddPoint adds the specified point to the draw list in the
// PointsDrawBuilder.
func (p *PointsDrawBuilder) AddPoint(pt [3]float32, color RGB) {
	p.p = append(p.p, pt)
	p.color = append(p.color, color)
	p.indices = append(p.indices, int32(len(p.p)-1))
}

// GenerateCommands adds a draw command for all of the points in the
// PointsDrawBuilder to the provided command buffer.
func (p *PointsDrawBuilder) GenerateCommands(cb *CommandBuffer) {
	if len(p.indices) == 0 {
		return
	}

	// Create arrays for the vertex positions and colors.
	pi := cb.Float3Buffer(p.p)
	cb.VertexArray(pi, 3, 3*4)
	rgb := cb.RGBBuffer(p.color)
	cb.ColorArray(rgb, 3, 3*4)

	// Create an index buffer from the indices.
	ind := cb.IntBuffer(p.indices)

	// Add the draw command to the command buffer.
	cb.DrawPoints(ind, len(p.indices))
}

// LinesDrawBuilder accumulates 3D lines to be drawn together. Note that it
// does not allow specifying the colors of the lines; instead, whatever the
// current color is (as set via the CommandBuffer SetRGB method) is used
// when drawing them.
type LinesDrawBuilder struct {
	p       [][3]float32
	indices []int32
}

// Reset resets the internal arrays used for accumulating lines,
// maintaining the initial allocations.
func (l *LinesDrawBuilder) Reset() {
	l.p = l.p[:0]
	l.indices = l.indices[:0]
}

// AddLine adds a line with the specified vertex positions to the set of
// lines to be drawn.
func (l *LinesDrawBuilder) AddLine(p0, p1 [3]float32) {
	idx := int32(len(l.p))
	l.p = append(l.p, p0, p1)
	l.indices = append(l.indices, idx, idx+1)
}

// GenerateCommands adds commands to the specified command buffer to draw
// the lines stored in the LinesDrawBuilder.
func (l *LinesDrawBuilder) GenerateCommands(cb *CommandBuffer) {
	if len(l.indices) == 0 {
		return
	}

	// Add the vertex positions to the command buffer.
	p := cb.Float3Buffer(l.p)
	cb.VertexArray(p, 3, 3*4)

	// Add the vertex indices and issue the draw command.
	ind := cb.IntBuffer(l.indices)
	cb.DrawLines(ind, len(l.indices))
}
