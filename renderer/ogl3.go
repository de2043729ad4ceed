// renderer/ogl3.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/skyarc/flightglobe/log"
)

// OpenGL3Renderer implements the Renderer interface with OpenGL 3.3 core.
// Each frame the whole command buffer is uploaded as one GL buffer and the
// commands are interpreted in order; vertex/index buffer offsets in the
// command stream address directly into that one upload, so no per-draw
// buffer creation happens at render time.
type OpenGL3Renderer struct {
	lg *log.Logger

	vao, vbo uint32

	// Registry of linked programs by GL handle, used to re-set the matrix
	// uniforms when the command stream switches programs.
	programs map[uint32]Program

	// builtin is the flat/vertex-color pipeline used for lines and points
	// when the command stream selects program 0.
	builtin Program
}

// Built-in pipeline for lines and points: position at location 0, optional
// per-vertex color at location 1, falling back to the uColor uniform.
const builtinVertexShader = `
#version 330 core

uniform mat4 uProjection;
uniform mat4 uModelView;

layout(location = 0) in vec3 aPosition;
layout(location = 1) in vec3 aColor;

out vec3 vColor;

void main() {
    gl_Position = uProjection * uModelView * vec4(aPosition, 1.0);
    vColor = aColor;
}
`

const builtinFragmentShader = `
#version 330 core

uniform vec4 uColor;
uniform bool uUseVertexColor;

in vec3 vColor;
out vec4 fragColor;

void main() {
    if (uUseVertexColor) {
        fragColor = vec4(vColor, 1.0);
    } else {
        fragColor = uColor;
    }
}
`

// NewOpenGL3Renderer initializes OpenGL and returns the renderer; it must
// be called with a current GL context on the calling thread.
func NewOpenGL3Renderer(lg *log.Logger) (Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	lg.Infof("OpenGL: %s, renderer %s", gl.GoStr(gl.GetString(gl.VERSION)),
		gl.GoStr(gl.GetString(gl.RENDERER)))

	r := &OpenGL3Renderer{lg: lg, programs: make(map[uint32]Program)}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)
	gl.GenBuffers(1, &r.vbo)

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	var err error
	if r.builtin, err = r.CreateProgram(builtinVertexShader, builtinFragmentShader); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *OpenGL3Renderer) Dispose() {
	for handle := range r.programs {
		gl.DeleteProgram(handle)
	}
	gl.DeleteBuffers(1, &r.vbo)
	gl.DeleteVertexArrays(1, &r.vao)
}

// CreateProgram compiles and links a vertex/fragment shader pair, querying
// all active uniform locations so the command stream can address them by
// name.
func (r *OpenGL3Renderer) CreateProgram(vertexSrc, fragmentSrc string) (Program, error) {
	vs, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return Program{}, err
	}
	fs, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return Program{}, err
	}

	handle := gl.CreateProgram()
	gl.AttachShader(handle, vs)
	gl.AttachShader(handle, fs)
	gl.LinkProgram(handle)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	var status int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &n)
		msg := strings.Repeat("\x00", int(n+1))
		gl.GetProgramInfoLog(handle, n, nil, gl.Str(msg))
		gl.DeleteProgram(handle)
		return Program{}, fmt.Errorf("linking program: %s", msg)
	}

	p := Program{Handle: handle, Uniforms: make(map[string]int32)}
	var nUniforms int32
	gl.GetProgramiv(handle, gl.ACTIVE_UNIFORMS, &nUniforms)
	for i := int32(0); i < nUniforms; i++ {
		var length, size int32
		var utype uint32
		var name [256]byte
		gl.GetActiveUniform(handle, uint32(i), int32(len(name)), &length, &size, &utype, &name[0])
		p.Uniforms[string(name[:length])] = gl.GetUniformLocation(handle, &name[0])
	}

	r.programs[handle] = p
	return p, nil
}

func compileShader(src string, stage uint32) (uint32, error) {
	shader := gl.CreateShader(stage)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &n)
		msg := strings.Repeat("\x00", int(n+1))
		gl.GetShaderInfoLog(shader, n, nil, gl.Str(msg))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compiling shader: %s", msg)
	}
	return shader, nil
}

// setMatrices sets the standard matrix uniforms on the given program; both
// are re-sent whenever the bound program changes since uniforms are
// per-program state.
func (r *OpenGL3Renderer) setMatrices(p Program, proj, mv *[16]float32) {
	if loc := p.UniformLocation("uProjection"); loc != -1 {
		gl.UniformMatrix4fv(loc, 1, false, &proj[0])
	}
	if loc := p.UniformLocation("uModelView"); loc != -1 {
		gl.UniformMatrix4fv(loc, 1, false, &mv[0])
	}
}

// RenderCommandBuffer executes all of the commands in the provided command
// buffer.
func (r *OpenGL3Renderer) RenderCommandBuffer(cb *CommandBuffer) RendererStats {
	var stats RendererStats
	if len(cb.Buf) == 0 {
		return stats
	}

	// One upload for everything the frame references; offsets in the
	// command stream are word indices into this buffer.
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(cb.Buf), unsafe.Pointer(&cb.Buf[0]), gl.STREAM_DRAW)
	stats.Buffers++
	stats.BufferBytes += 4 * len(cb.Buf)

	var proj, mv [16]float32
	identity := func(m *[16]float32) {
		*m = [16]float32{}
		m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	}
	identity(&proj)
	identity(&mv)

	current := r.builtin
	gl.UseProgram(current.Handle)
	r.setMatrices(current, &proj, &mv)

	var instanceAttribs []uint32
	disableInstanceAttribs := func() {
		for _, loc := range instanceAttribs {
			gl.VertexAttribDivisor(loc, 0)
			gl.DisableVertexAttribArray(loc)
		}
		instanceAttribs = instanceAttribs[:0]
	}

	buf := cb.Buf
	i := 0
	ui := func() int { v := int(buf[i]); i++; return v }
	uf := func() float32 { v := cb.FloatSlice(i, 1)[0]; i++; return v }

	for i < len(buf) {
		cmd := ui()
		switch cmd {
		case RendererLoadProjectionMatrix:
			copy(proj[:], cb.FloatSlice(i, 16))
			i += 16
			r.setMatrices(current, &proj, &mv)

		case RendererLoadModelViewMatrix:
			copy(mv[:], cb.FloatSlice(i, 16))
			i += 16
			r.setMatrices(current, &proj, &mv)

		case RendererClearRGBA:
			gl.ClearColor(uf(), uf(), uf(), uf())
			gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		case RendererViewport:
			x, y := ui(), ui()
			w, h := ui(), ui()
			gl.Viewport(int32(x), int32(y), int32(w), int32(h))

		case RendererBlend:
			gl.Enable(gl.BLEND)
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

		case RendererDisableBlend:
			gl.Disable(gl.BLEND)

		case RendererSetRGBA:
			rc, gc, bc, ac := uf(), uf(), uf(), uf()
			if loc := current.UniformLocation("uColor"); loc != -1 {
				gl.Uniform4f(loc, rc, gc, bc, ac)
			}

		case RendererFloatBuffer, RendererIntBuffer:
			// The data is already on the GPU; skip over it.
			n := ui()
			i += n
			stats.Buffers++
			stats.BufferBytes += 4 * n

		case RendererVertexArray:
			offset, nComps, stride := ui(), ui(), ui()
			gl.EnableVertexAttribArray(0)
			gl.VertexAttribPointerWithOffset(0, int32(nComps), gl.FLOAT, false,
				int32(stride), uintptr(4*offset))

		case RendererDisableVertexArray:
			gl.DisableVertexAttribArray(0)

		case RendererColorArray:
			offset, nComps, stride := ui(), ui(), ui()
			gl.EnableVertexAttribArray(1)
			gl.VertexAttribPointerWithOffset(1, int32(nComps), gl.FLOAT, false,
				int32(stride), uintptr(4*offset))
			if loc := current.UniformLocation("uUseVertexColor"); loc != -1 {
				gl.Uniform1i(loc, 1)
			}

		case RendererDisableColorArray:
			gl.DisableVertexAttribArray(1)
			if loc := current.UniformLocation("uUseVertexColor"); loc != -1 {
				gl.Uniform1i(loc, 0)
			}

		case RendererPointSize:
			gl.PointSize(uf())

		case RendererLineWidth:
			gl.LineWidth(uf())

		case RendererDrawPoints:
			offset, count := ui(), ui()
			gl.DrawElementsWithOffset(gl.POINTS, int32(count), gl.UNSIGNED_INT, uintptr(4*offset))
			stats.DrawCalls++
			stats.Points += count

		case RendererDrawLines:
			offset, count := ui(), ui()
			gl.DrawElementsWithOffset(gl.LINES, int32(count), gl.UNSIGNED_INT, uintptr(4*offset))
			stats.DrawCalls++
			stats.Lines += count / 2

		case RendererUseProgram:
			handle := uint32(ui())
			if handle == 0 {
				current = r.builtin
			} else if p, ok := r.programs[handle]; ok {
				current = p
			} else {
				r.lg.Errorf("unknown program handle %d in command buffer", handle)
				current = r.builtin
			}
			gl.UseProgram(current.Handle)
			r.setMatrices(current, &proj, &mv)

		case RendererUniformFloat:
			loc := int32(ui())
			v := uf()
			if loc != -1 {
				gl.Uniform1f(loc, v)
			}

		case RendererUniformInt:
			loc := int32(ui())
			v := int32(ui())
			if loc != -1 {
				gl.Uniform1i(loc, v)
			}

		case RendererInstanceAttribArray:
			loc := uint32(ui())
			offset, nComps, stride, divisor := ui(), ui(), ui(), ui()
			gl.EnableVertexAttribArray(loc)
			gl.VertexAttribPointerWithOffset(loc, int32(nComps), gl.FLOAT, false,
				int32(stride), uintptr(4*offset))
			gl.VertexAttribDivisor(loc, uint32(divisor))
			instanceAttribs = append(instanceAttribs, loc)

		case RendererDisableInstanceAttribs:
			disableInstanceAttribs()

		case RendererDrawTrianglesInstanced:
			offset, indexCount, instanceCount := ui(), ui(), ui()
			gl.DrawElementsInstanced(gl.TRIANGLES, int32(indexCount), gl.UNSIGNED_INT,
				unsafe.Pointer(uintptr(4*offset)), int32(instanceCount))
			stats.DrawCalls++
			stats.Instances += instanceCount

		case RendererResetState:
			gl.Disable(gl.BLEND)
			gl.DisableVertexAttribArray(0)
			gl.DisableVertexAttribArray(1)
			disableInstanceAttribs()
			current = r.builtin
			gl.UseProgram(current.Handle)
			r.setMatrices(current, &proj, &mv)

		default:
			r.lg.Errorf("unhandled command in buffer: %d", cmd)
			return stats
		}
	}

	disableInstanceAttribs()
	gl.UseProgram(0)
	return stats
}
