package render

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stewi1014/fraktale/programs"
)

// Headless renders into an offscreen framebuffer owned by a hidden GLFW
// window. It must be created, used and closed on the main thread.
type Headless struct {
	window  *glfw.Window
	program *Program

	fbo     uint32
	texture uint32
	width   int
	height  int
}

func NewHeadless(width, height int, program programs.Program, debug bool) (*Headless, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw.Init failed: %w", err)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if debug {
		glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	}

	window, err := glfw.CreateWindow(width, height, "fraktale", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfw.CreateWindow failed: %w", err)
	}

	h := &Headless{
		window: window,
		width:  width,
		height: height,
	}

	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		h.Close()
		return nil, fmt.Errorf("gl.Init failed: %w", err)
	}
	if debug {
		EnableDebugOutput()
	}

	gl.GenFramebuffers(1, &h.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, h.fbo)
	gl.GenTextures(1, &h.texture)
	gl.BindTexture(gl.TEXTURE_2D, h.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, h.texture, 0)
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		h.Close()
		return nil, fmt.Errorf("offscreen framebuffer is not complete: 0x%x", status)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	h.program, err = NewProgram(program)
	if err != nil {
		h.Close()
		return nil, err
	}

	return h, nil
}

// Snapshot draws one frame with uniforms and reads it back. The resolution
// uniform is replaced with the framebuffer size.
func (h *Headless) Snapshot(uniforms programs.Uniforms) (*image.NRGBA, error) {
	uniforms.Resolution[0], uniforms.Resolution[1] = float32(h.width), float32(h.height)

	gl.BindFramebuffer(gl.FRAMEBUFFER, h.fbo)
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	gl.Viewport(0, 0, int32(h.width), int32(h.height))
	h.program.Draw(uniforms)

	stride := h.width * 4
	pixels := make([]byte, stride*h.height)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(h.width), int32(h.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	if e := gl.GetError(); e != gl.NO_ERROR {
		return nil, fmt.Errorf("reading framebuffer: GL error 0x%x", e)
	}

	// GL rows start at the bottom.
	img := image.NewNRGBA(image.Rect(0, 0, h.width, h.height))
	for y := 0; y < h.height; y++ {
		src := pixels[(h.height-1-y)*stride : (h.height-y)*stride]
		copy(img.Pix[y*img.Stride:], src)
	}
	return img, nil
}

func (h *Headless) Close() {
	if h.program != nil {
		h.program.Delete()
	}
	if h.texture != 0 {
		gl.DeleteTextures(1, &h.texture)
	}
	if h.fbo != 0 {
		gl.DeleteFramebuffers(1, &h.fbo)
	}
	h.window.Destroy()
	glfw.Terminate()
}
