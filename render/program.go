// Package render draws a fractal program over the whole viewport with OpenGL.
package render

import (
	"fmt"
	"log"
	"reflect"
	"strings"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/fraktale/programs"
)

// quad covers clip space as a triangle strip.
var quad = []float32{
	-1, -1,
	1, -1,
	-1, 1,
	1, 1,
}

// Program is a linked shader program and the quad it is drawn on. All
// methods must be called with the owning GL context current.
type Program struct {
	Name string

	program          uint32
	vao              uint32
	vbo              uint32
	vertexAttrib     uint32
	uniformLocations map[string]int32
}

// NewProgram translates, compiles and links p. Errors carry the driver's
// info log.
func NewProgram(p programs.Program) (*Program, error) {
	fragmentSource, uniformNames, err := TranslateFragment(p.FragmentShader)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", p.Name, err)
	}

	vertexShader, err := compileShader(p.VertexShader+"\x00", gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", p.Name, err)
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentSource+"\x00", gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", p.Name, err)
	}
	defer gl.DeleteShader(fragmentShader)

	r := &Program{
		Name:    p.Name,
		program: gl.CreateProgram(),
	}
	gl.AttachShader(r.program, vertexShader)
	gl.AttachShader(r.program, fragmentShader)
	gl.LinkProgram(r.program)

	var status int32
	gl.GetProgramiv(r.program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		msg := infoLog(r.program, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(r.program)
		return nil, fmt.Errorf("linking program %v: %v", p.Name, msg)
	}

	r.uniformLocations = make(map[string]int32)
	t := reflect.TypeOf(programs.Uniforms{})
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("uniform")
		mapped, ok := uniformNames[name]
		if !ok {
			mapped = name
		}
		r.uniformLocations[name] = gl.GetUniformLocation(r.program, gl.Str(mapped+"\x00"))
	}

	attrib := gl.GetAttribLocation(r.program, gl.Str("position\x00"))
	if attrib < 0 {
		r.Delete()
		return nil, fmt.Errorf("program %v has no position attribute", p.Name)
	}
	r.vertexAttrib = uint32(attrib)

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(r.vertexAttrib)
	gl.VertexAttribPointerWithOffset(r.vertexAttrib, 2, gl.FLOAT, false, 2*4, 0)
	gl.BindVertexArray(0)

	return r, nil
}

// Draw clears the bound framebuffer and draws the quad with uniforms.
func (r *Program) Draw(uniforms programs.Uniforms) {
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(r.program)
	r.loadUniforms(&uniforms)
	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, int32(len(quad)/2))
	gl.BindVertexArray(0)
}

func (r *Program) Delete() {
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	gl.DeleteProgram(r.program)
	r.program, r.vao, r.vbo = 0, 0, 0
}

func (r *Program) loadUniforms(uniforms *programs.Uniforms) {
	v := reflect.ValueOf(uniforms).Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)

		ptr := f.Addr().UnsafePointer()
		loc, ok := r.uniformLocations[v.Type().Field(i).Tag.Get("uniform")]
		if !ok || loc < 0 {
			continue
		}

		switch f.Type() {
		case reflect.TypeOf(mgl32.Vec2{}):
			gl.Uniform2fv(loc, 1, (*float32)(ptr))
		case reflect.TypeOf(mgl32.Vec3{}):
			gl.Uniform3fv(loc, 1, (*float32)(ptr))
		case reflect.TypeOf(mgl32.Vec4{}):
			gl.Uniform4fv(loc, 1, (*float32)(ptr))
		case reflect.TypeOf(mgl64.Vec2{}):
			gl.Uniform2dv(loc, 1, (*float64)(ptr))
		case reflect.TypeOf(mgl32.Mat4{}):
			gl.UniformMatrix4fv(loc, 1, false, (*float32)(ptr))
		case reflect.TypeOf(int32(0)):
			gl.Uniform1iv(loc, 1, (*int32)(ptr))
		case reflect.TypeOf(float32(0)):
			gl.Uniform1fv(loc, 1, (*float32)(ptr))
		case reflect.TypeOf(float64(0)):
			gl.Uniform1dv(loc, 1, (*float64)(ptr))
		default:
			log.Printf("unsupported uniform type %v", f.Type())
		}
	}
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	csources, free := gl.Strs(source)
	defer free()

	shader := gl.CreateShader(shaderType)
	gl.ShaderSource(shader, 1, csources, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.TRUE {
		return shader, nil
	}

	msg := infoLog(shader, gl.GetShaderiv, gl.GetShaderInfoLog)
	gl.DeleteShader(shader)
	return 0, fmt.Errorf("compiling %v shader: %v", shaderKind(shaderType), msg)
}

// infoLog reads the info log of a shader or program object.
func infoLog(
	object uint32,
	getiv func(uint32, uint32, *int32),
	getLog func(uint32, int32, *int32, *uint8),
) string {
	var length int32
	getiv(object, gl.INFO_LOG_LENGTH, &length)
	if length == 0 {
		return "no info log"
	}

	buf := make([]uint8, length)
	getLog(object, length, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00\n")
}

func shaderKind(shaderType uint32) string {
	switch shaderType {
	case gl.VERTEX_SHADER:
		return "vertex"
	case gl.FRAGMENT_SHADER:
		return "fragment"
	}
	return "unknown"
}
