package programs

import (
	_ "embed"
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrNoCPUImplementation = errors.New("fractal does not have a CPU implementation")

//go:embed shaders/default.vert
var defaultVertexShader string

// ProgramByName returns the registered program with the given name.
func ProgramByName(name string) (Program, error) {
	for _, p := range programs {
		if p.Name == name {
			return p, nil
		}
	}
	return Program{}, fmt.Errorf("no program named %q", name)
}

func NewProgram(p Program) error {
	if _, err := ProgramByName(p.Name); err == nil {
		return fmt.Errorf("program %q already registered", p.Name)
	}
	programs = append(programs, p)
	return nil
}

var programs []Program

// PixelFunc computes the colour of the fragment at fragCoord, measured in
// pixels from the bottom left corner like gl_FragCoord.
type PixelFunc func(uniforms Uniforms, fragCoord mgl32.Vec2) mgl32.Vec3

type Program struct {
	Name           string
	VertexShader   string
	FragmentShader string
	GetPixel       PixelFunc
}

// GetImage returns a CPU rendition of the program. The resolution uniform is
// replaced with width and height.
func (p *Program) GetImage(uniforms Uniforms, width, height int) (Image, error) {
	if p.GetPixel == nil {
		return nil, ErrNoCPUImplementation
	}

	uniforms.Resolution = mgl32.Vec2{float32(width), float32(height)}

	return &programImage{
		uniforms:  uniforms,
		bounds:    image.Rect(0, 0, width, height),
		pixelFunc: p.GetPixel,
	}, nil
}

type Image interface {
	GetPixel(fragCoord mgl32.Vec2) mgl32.Vec3
	Bounds() image.Rectangle
}

type programImage struct {
	uniforms  Uniforms
	bounds    image.Rectangle
	pixelFunc PixelFunc
}

func (i *programImage) GetPixel(fragCoord mgl32.Vec2) mgl32.Vec3 {
	return i.pixelFunc(i.uniforms, fragCoord)
}

func (i *programImage) Bounds() image.Rectangle {
	return i.bounds
}
