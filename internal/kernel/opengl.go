package kernel

import (
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/san-kum/ddzoom/internal/view"
)

//go:embed shaders/escape.comp
var escapeShader string

const workgroup = 16

// OpenGL runs the escape iteration as a compute shader. Init must be
// called on the thread that owns the GL context, and so must every
// Escape.
type OpenGL struct {
	program     uint32
	ssbo        uint32
	capacity    int
	initialized bool
	log         *slog.Logger
}

func NewOpenGL() *OpenGL {
	return &OpenGL{log: slog.Default()}
}

// Init loads GL entry points and compiles the shader.
func (g *OpenGL) Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("%w: init opengl: %v", ErrUnavailable, err)
	}
	program, err := createComputeProgram(escapeShader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	g.program = program
	gl.GenBuffers(1, &g.ssbo)
	g.initialized = true

	var maxCount [3]int32
	gl.GetIntegeri_v(gl.MAX_COMPUTE_WORK_GROUP_COUNT, 0, &maxCount[0])
	g.log.Info("opengl compute ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"max_groups_x", maxCount[0])
	return nil
}

func (g *OpenGL) Name() string    { return "opengl" }
func (g *OpenGL) Available() bool { return g.initialized }

func (g *OpenGL) Close() {
	if !g.initialized {
		return
	}
	gl.DeleteBuffers(1, &g.ssbo)
	gl.DeleteProgram(g.program)
	g.initialized = false
}

func (g *OpenGL) Escape(dst *Counts, t view.Transform, iters uint32) error {
	if !g.initialized {
		return ErrUnavailable
	}
	if dst.W <= 0 || dst.H <= 0 {
		return ErrSize
	}
	if err := t.Validate(); err != nil {
		return err
	}

	n := dst.W * dst.H
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, g.ssbo)
	if n > g.capacity {
		gl.BufferData(gl.SHADER_STORAGE_BUFFER, n*4, nil, gl.DYNAMIC_READ)
		g.capacity = n
	}
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 0, g.ssbo)

	gl.UseProgram(g.program)
	gl.Uniform2i(g.uniform("size"), int32(dst.W), int32(dst.H))
	gl.Uniform1ui(g.uniform("iters"), iters)
	gl.Uniform2d(g.uniform("offset_x"), t.X.Hi, t.X.Lo)
	gl.Uniform2d(g.uniform("offset_y"), t.Y.Hi, t.Y.Lo)
	inv := invMag(t)
	gl.Uniform2d(g.uniform("inv_mag"), inv.Hi, inv.Lo)

	gx := (dst.W + workgroup - 1) / workgroup
	gy := (dst.H + workgroup - 1) / workgroup
	gl.DispatchCompute(uint32(gx), uint32(gy), 1)
	gl.MemoryBarrier(gl.BUFFER_UPDATE_BARRIER_BIT)

	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, n*4, gl.Ptr(&dst.N[0]))
	if e := gl.GetError(); e != gl.NO_ERROR {
		return fmt.Errorf("kernel: opengl error 0x%x", e)
	}
	return nil
}

func (g *OpenGL) uniform(name string) int32 {
	return gl.GetUniformLocation(g.program, gl.Str(name+"\x00"))
}

func createComputeProgram(source string) (uint32, error) {
	shader := gl.CreateShader(gl.COMPUTE_SHADER)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile compute shader: %v", strings.TrimRight(log, "\x00"))
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)
	gl.DeleteShader(shader)

	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link compute program")
	}
	return program, nil
}
