// Package viewport owns the visible region of the complex plane and turns
// button holds and gestures into updates of it.
package viewport

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/fraktale/programs"
)

// Viewport is the centre and zoom of the visible region. It is a value type;
// copies handed to the renderer never change.
type Viewport struct {
	Offset mgl64.Vec2
	Zoom   float64
}

func Default() Viewport {
	return Viewport{Zoom: 1}
}

func (v Viewport) String() string {
	return fmt.Sprintf("offset (%g, %g) zoom %g", v.Offset[0], v.Offset[1], v.Zoom)
}

// Uniforms converts v to the shader's uniform block for a surface of the
// given size in pixels.
func (v Viewport) Uniforms(width, height int) programs.Uniforms {
	return programs.Uniforms{
		Resolution: mgl32.Vec2{float32(width), float32(height)},
		Zoom:       float32(v.Zoom),
		Offset:     mgl32.Vec2{float32(v.Offset[0]), float32(v.Offset[1])},
	}
}

// Sink receives every new viewport. Implementations are expected to request
// a redraw.
type Sink interface {
	Update(Viewport)
}

type SinkFunc func(Viewport)

func (f SinkFunc) Update(v Viewport) {
	f(v)
}
