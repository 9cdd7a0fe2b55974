package programs

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Uniforms holds the values uploaded to the fragment shader on every draw.
// The uniform tag names the GLSL uniform each field is bound to.
type Uniforms struct {
	Resolution mgl32.Vec2 `uniform:"resolution"`
	Zoom       float32    `uniform:"zoom"`
	Offset     mgl32.Vec2 `uniform:"offset"`
}

func (u *Uniforms) DefaultValues() {
	u.Zoom = 1
	u.Offset = mgl32.Vec2{}
}
