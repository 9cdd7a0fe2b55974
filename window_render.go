package main

// #cgo pkg-config: gdk-3.0 glib-2.0 gobject-2.0
// #include <gdk/gdk.h>
import "C"

import (
	"context"
	"fmt"
	"log"
	"time"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/fraktale/programs"
	"github.com/stewi1014/fraktale/render"
	"github.com/stewi1014/fraktale/snapshot"
	"github.com/stewi1014/fraktale/viewport"
)

// scrollStep is the zoom factor of one mouse wheel notch.
const scrollStep = 1.1

func NewRenderWindow(
	app *gtk.Application,
	ctx context.Context,
	quit context.CancelCauseFunc,
	program programs.Program,
	debug bool,
) (*RenderWindow, error) {
	var err error
	w := &RenderWindow{
		ctx:    ctx,
		quit:   quit,
		source: program,
		debug:  debug,
	}

	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		return nil, fmt.Errorf("gtk.ApplicationWindowNew: %w", err)
	}

	w.SetDefaultSize(defaultWindowSize())

	w.gla, err = gtk.GLAreaNew()
	if err != nil {
		return nil, fmt.Errorf("gtk.GLAreaNew: %w", err)
	}

	w.gla.SetRequiredVersion(4, 6)
	w.gla.SetHExpand(true)
	w.gla.SetVExpand(true)
	w.gla.Connect("realize", w.glaRealize)
	w.gla.Connect("render", w.glaRender)
	w.gla.Connect("unrealize", w.glaUnrealize)
	w.gla.Connect("resize", w.resize)

	w.gla.SetEvents(
		int(gdk.BUTTON_PRESS_MASK) |
			int(gdk.BUTTON_RELEASE_MASK) |
			int(gdk.BUTTON_MOTION_MASK) |
			int(gdk.TOUCH_MASK) |
			int(gdk.SCROLL_MASK),
	)
	w.gla.Connect("scroll-event", w.scroll)
	w.gla.Connect("button-press-event", w.button)
	w.gla.Connect("button-release-event", w.button)
	w.gla.Connect("motion-notify-event", w.motion)
	w.gla.Connect("touch-event", w.touch)

	w.controller = viewport.New(ctx, w, func(f func()) {
		glib.IdleAdd(f)
	})
	w.view = w.controller.Viewport()

	w.controls, err = NewControls(w.controller, w.save)
	if err != nil {
		return nil, err
	}

	overlay, err := gtk.OverlayNew()
	if err != nil {
		return nil, fmt.Errorf("gtk.OverlayNew: %w", err)
	}
	overlay.Add(w.gla)
	overlay.AddOverlay(w.controls)

	w.Add(overlay)
	w.ShowAll()

	return w, nil
}

// windowFraction is the share of the primary monitor's work area the window
// opens at.
const windowFraction = 0.6

func defaultWindowSize() (int, int) {
	display, err := gdk.DisplayGetDefault()
	if err != nil {
		return 1200, 800
	}

	// Wayland has no primary monitor.
	monitor, err := display.GetPrimaryMonitor()
	if err != nil || monitor == nil {
		return 1200, 800
	}

	area := monitor.GetWorkarea()
	return int(float64(area.GetWidth()) * windowFraction), int(float64(area.GetHeight()) * windowFraction)
}

// RenderWindow shows the fractal full size with the controls on top. It is
// the controller's sink; every method runs on the GTK main thread.
type RenderWindow struct {
	*gtk.ApplicationWindow
	gla      *gtk.GLArea
	controls *Controls

	// framebuffer size in device pixels
	width  int
	height int

	gestures viewport.GestureTracker

	ctx   context.Context
	quit  context.CancelCauseFunc
	debug bool

	source     programs.Program
	program    *render.Program
	controller *viewport.Controller
	view       viewport.Viewport
}

// Update stores the latest snapshot and schedules a redraw.
func (w *RenderWindow) Update(v viewport.Viewport) {
	w.view = v
	if w.gla != nil {
		w.gla.QueueRender()
	}
}

func (w *RenderWindow) glaRealize(gla *gtk.GLArea) {
	gla.MakeCurrent()

	err := gl.Init()
	if err != nil {
		w.quit(fmt.Errorf("gl.Init: %w", err))
		return
	}
	version := gl.GoStr(gl.GetString(gl.VERSION))
	log.Println("OpenGL version", version)

	if w.debug {
		render.EnableDebugOutput()
	}

	w.program, err = render.NewProgram(w.source)
	if err != nil {
		w.quit(err)
	}
}

func (w *RenderWindow) glaRender(gla *gtk.GLArea) {
	if w.program == nil {
		return
	}

	gla.AttachBuffers()
	gl.Viewport(0, 0, int32(w.width), int32(w.height))
	w.program.Draw(w.view.Uniforms(w.width, w.height))
}

func (w *RenderWindow) glaUnrealize(gla *gtk.GLArea) {
	gla.MakeCurrent()
	if w.program != nil {
		w.program.Delete()
		w.program = nil
	}
}

func (w *RenderWindow) resize(gla *gtk.GLArea, width, height int) {
	w.width, w.height = width, height
	gla.QueueRender()
}

// surfaceSize is the widget size in the units gesture offsets are reported in.
func (w *RenderWindow) surfaceSize() (float64, float64) {
	return float64(w.gla.GetAllocatedWidth()), float64(w.gla.GetAllocatedHeight())
}

// mouseContact is the tracker id of the primary mouse button. Touch
// sequences are identified by their GdkEventSequence pointer, which is never
// zero.
const mouseContact uintptr = 0

func (w *RenderWindow) gesture(pan mgl64.Vec2, scale float64) {
	width, height := w.surfaceSize()
	w.controller.Gesture(pan, scale, width, height)
}

// pointerEmulated reports whether GDK synthesised event from a touch. Those
// are already seen through touch-event.
func pointerEmulated(event *gdk.Event) bool {
	return C.gdk_event_get_pointer_emulated((*C.GdkEvent)(unsafe.Pointer(event.Native()))) != 0
}

func (w *RenderWindow) button(gla *gtk.GLArea, event *gdk.Event) bool {
	button := gdk.EventButtonNewFromEvent(event)
	native := (*C.GdkEventButton)(unsafe.Pointer(button.Native()))
	if native.button != C.GDK_BUTTON_PRIMARY || pointerEmulated(event) {
		return false
	}

	switch button.Type() {
	case gdk.EVENT_BUTTON_PRESS:
		w.gestures.Begin(mouseContact, mgl64.Vec2{button.X(), button.Y()})
	case gdk.EVENT_BUTTON_RELEASE:
		w.gestures.End(mouseContact)
	}
	return true
}

func (w *RenderWindow) motion(gla *gtk.GLArea, event *gdk.Event) bool {
	if pointerEmulated(event) {
		return false
	}

	x, y := gdk.EventMotionNewFromEvent(event).MotionVal()
	pan, scale, ok := w.gestures.Move(mouseContact, mgl64.Vec2{x, y})
	if !ok {
		return false
	}
	w.gesture(pan, scale)
	return true
}

func (w *RenderWindow) touch(gla *gtk.GLArea, event *gdk.Event) bool {
	touch := (*C.GdkEventTouch)(unsafe.Pointer(event.Native()))
	id := uintptr(unsafe.Pointer(touch.sequence))
	pos := mgl64.Vec2{float64(touch.x), float64(touch.y)}

	switch touch._type {
	case C.GDK_TOUCH_BEGIN:
		w.gestures.Begin(id, pos)
	case C.GDK_TOUCH_UPDATE:
		if pan, scale, ok := w.gestures.Move(id, pos); ok {
			w.gesture(pan, scale)
		}
	case C.GDK_TOUCH_END, C.GDK_TOUCH_CANCEL:
		w.gestures.End(id)
	default:
		return false
	}
	return true
}

func (w *RenderWindow) scroll(gla *gtk.GLArea, event *gdk.Event) bool {
	switch gdk.EventScrollNewFromEvent(event).Direction() {
	case gdk.SCROLL_UP:
		w.gesture(mgl64.Vec2{}, scrollStep)
	case gdk.SCROLL_DOWN:
		w.gesture(mgl64.Vec2{}, 1/scrollStep)
	default:
		return false
	}
	return true
}

func (w *RenderWindow) save() {
	if w.width <= 0 || w.height <= 0 {
		return
	}

	opts := snapshot.SaveOptions{
		Name:        snapshot.FileName(time.Now()),
		Width:       w.width,
		Height:      w.height,
		Multithread: true,
	}
	go save(w.ctx, w.ApplicationWindow, opts, w.source, w.view)
}
