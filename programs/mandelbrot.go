package programs

import (
	_ "embed"
	"math"
	"math/cmplx"

	"github.com/go-gl/mathgl/mgl32"
)

//go:embed shaders/mandelbrot.frag
var mandelbrotFragment string

// MaxIterations bounds the escape-time loop in both the shader and the CPU
// implementation.
const MaxIterations = 300

const escapeRadius = 2

var (
	InteriorColour = mgl32.Vec3{0, 0, 0}

	fireStops = [...]mgl32.Vec3{
		{0, 0, 0},     // black
		{0.9, 0.1, 0}, // dark red
		{1, 0.6, 0},   // orange
		{1, 0.9, 0.3}, // yellow
	}
)

func init() {
	NewProgram(Program{
		Name:           "mandelbrot",
		VertexShader:   defaultVertexShader,
		FragmentShader: mandelbrotFragment,
		GetPixel: func(uniforms Uniforms, fragCoord mgl32.Vec2) mgl32.Vec3 {
			iterations := Escape(PlanePoint(uniforms, fragCoord), MaxIterations)
			return Shade(iterations, MaxIterations)
		},
	})
}

// PlanePoint maps a fragment coordinate to the complex plane. The screen
// centre maps to the offset and the screen height spans 2/zoom units on both
// axes.
func PlanePoint(uniforms Uniforms, fragCoord mgl32.Vec2) complex128 {
	width, height := float64(uniforms.Resolution[0]), float64(uniforms.Resolution[1])
	scale := 0.5 * float64(uniforms.Zoom) * height

	return complex(
		(float64(fragCoord[0])-width/2)/scale+float64(uniforms.Offset[0]),
		(float64(fragCoord[1])-height/2)/scale+float64(uniforms.Offset[1]),
	)
}

// Escape iterates z = z*z + c starting from z = c and returns the number of
// steps taken before |z| exceeded 2. A return value of maxIterations means
// the point did not escape.
func Escape(c complex128, maxIterations int) int {
	z := c
	iterations := 0
	for ; iterations < maxIterations; iterations++ {
		if cmplx.Abs(z) > escapeRadius {
			break
		}
		z = z*z + c
	}
	return iterations
}

// Shade colours an escape count. Interior points are black, the rest are
// spread over the fire gradient with a square root to lift low counts.
func Shade(iterations, maxIterations int) mgl32.Vec3 {
	if iterations >= maxIterations {
		return InteriorColour
	}

	t := math.Sqrt(float64(iterations) / float64(maxIterations))
	return FireColour(float32(t))
}

// FireColour interpolates linearly between the four fire stops, one third of
// [0, 1] per segment.
func FireColour(t float32) mgl32.Vec3 {
	switch {
	case t < 1.0/3:
		return fireSegment(0, t)
	case t < 2.0/3:
		return fireSegment(1, t)
	default:
		return fireSegment(2, t)
	}
}

func fireSegment(segment int, t float32) mgl32.Vec3 {
	from, to := fireStops[segment], fireStops[segment+1]
	return mix(from, to, (t-float32(segment)/3)*3)
}

// mix matches GLSL mix.
func mix(x, y mgl32.Vec3, a float32) mgl32.Vec3 {
	return x.Add(y.Sub(x).Mul(a))
}
