package viewport

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// TickInterval is the cadence of continuous movement while a button is
	// held, roughly 60 Hz.
	TickInterval = 16 * time.Millisecond

	// MoveStep is the distance moved per tick at zoom 1. It is divided by
	// the zoom so the on-screen speed stays the same at every zoom level.
	MoveStep = 0.01

	// ZoomStep is the zoom factor applied per tick.
	ZoomStep = 1.01
)

var ErrInvalidZoom = errors.New("zoom must be greater than zero")

type Button uint8

const (
	Up Button = iota
	Down
	Left
	Right
	ZoomIn
	ZoomOut
	numButtons
)

var buttonNames = [numButtons]string{"up", "down", "left", "right", "zoom-in", "zoom-out"}

func (b Button) String() string {
	if b >= numButtons {
		return "unknown"
	}
	return buttonNames[b]
}

// Input is the set of buttons currently held.
type Input uint8

func (i Input) Held(b Button) bool { return i&(1<<b) != 0 }
func (i Input) With(b Button) Input { return i | 1<<b }
func (i Input) Without(b Button) Input { return i &^ (1 << b) }
func (i Input) Any() bool { return i != 0 }

func (i Input) String() string {
	var held []string
	for b := Button(0); b < numButtons; b++ {
		if i.Held(b) {
			held = append(held, b.String())
		}
	}
	return "[" + strings.Join(held, " ") + "]"
}

// Dispatcher runs f on the goroutine that owns the Controller. The GTK front
// end passes a wrapper around glib.IdleAdd.
type Dispatcher func(f func())

// Controller owns the viewport. Every method must be called from the
// goroutine that dispatch runs functions on; the tick loop only ever touches
// the state through dispatch.
type Controller struct {
	ctx      context.Context
	sink     Sink
	dispatch Dispatcher
	interval time.Duration

	view    Viewport
	input   Input
	ticking bool
}

type Option func(*Controller)

func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		c.interval = d
	}
}

// New returns a Controller at the default viewport. The tick loop stops when
// ctx is cancelled.
func New(ctx context.Context, sink Sink, dispatch Dispatcher, opts ...Option) *Controller {
	c := &Controller{
		ctx:      ctx,
		sink:     sink,
		dispatch: dispatch,
		interval: TickInterval,
		view:     Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dispatch == nil {
		c.dispatch = func(f func()) { f() }
	}
	return c
}

func (c *Controller) Viewport() Viewport {
	return c.view
}

func (c *Controller) Input() Input {
	return c.input
}

func (c *Controller) SetOffset(x, y float64) {
	c.view.Offset[0], c.view.Offset[1] = x, y
	c.push()
}

func (c *Controller) SetZoom(zoom float64) error {
	if !(zoom > 0) {
		return ErrInvalidZoom
	}
	c.view.Zoom = zoom
	c.push()
	return nil
}

func (c *Controller) Reset() {
	c.view = Default()
	c.push()
}

// Press marks b as held. The first press applies a step straight away and
// starts the tick loop.
func (c *Controller) Press(b Button) {
	c.input = c.input.With(b)
	if c.ticking {
		return
	}

	c.ticking = true
	c.Step()
	go c.tick()
}

func (c *Controller) Release(b Button) {
	c.input = c.input.Without(b)
}

// Step applies one tick of continuous movement for every held button and
// reports whether anything is still held. The offset change is computed from
// the zoom before this tick's zoom change.
func (c *Controller) Step() bool {
	if !c.input.Any() {
		c.ticking = false
		return false
	}

	step := MoveStep / c.view.Zoom
	if c.input.Held(Left) {
		c.view.Offset[0] -= step
	}
	if c.input.Held(Right) {
		c.view.Offset[0] += step
	}
	if c.input.Held(Up) {
		c.view.Offset[1] += step
	}
	if c.input.Held(Down) {
		c.view.Offset[1] -= step
	}
	if c.input.Held(ZoomIn) {
		c.view.Zoom *= ZoomStep
	}
	if c.input.Held(ZoomOut) {
		c.view.Zoom /= ZoomStep
	}

	c.push()
	return true
}

// Gesture applies a pan of pan pixels and a pinch of scale on a surface of
// width by height pixels. Dragging right moves the view left so the content
// follows the finger; the vertical sign flips because screen y grows
// downwards and plane y upwards.
func (c *Controller) Gesture(pan mgl64.Vec2, scale, width, height float64) {
	if width > 0 && height > 0 {
		c.view.Offset[0] -= pan[0] / (width * c.view.Zoom)
		c.view.Offset[1] += pan[1] / (height * c.view.Zoom)
	}
	if scale > 0 {
		c.view.Zoom *= scale
	}
	c.push()
}

func (c *Controller) push() {
	if c.sink != nil {
		c.sink.Update(c.view)
	}
}

func (c *Controller) tick() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	held := make(chan bool, 1)
	for {
		select {
		case <-ticker.C:
		case <-c.ctx.Done():
			return
		}

		c.dispatch(func() {
			held <- c.Step()
		})

		select {
		case h := <-held:
			if !h {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}
