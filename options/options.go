// Package options holds the command-line configuration.
package options

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/fraktale/viewport"
)

type Options struct {
	Render    *string  // PNG file to render to without opening a window
	Width     *int     // width of the -render output
	Height    *int     // height of the -render output
	X         *float64 // real part of the -render centre
	Y         *float64 // imaginary part of the -render centre
	Zoom      *float64 // zoom of the -render output
	CPU       *bool    // render with the CPU implementation instead of the GPU
	Antialias *float64 // 9x supersampling distance in pixels, CPU only
	Debug     *bool    // log GL debug messages
}

// Parse parses args, not including the program name. Usage and errors are
// written to output.
func Parse(args []string, output io.Writer) (*Options, error) {
	fs := flag.NewFlagSet("fraktale", flag.ContinueOnError)
	fs.SetOutput(output)

	o := &Options{
		Render:    fs.String("render", "", "Render the view to this PNG file and exit instead of opening a window"),
		Width:     fs.Int("width", 1200, "Width of the -render output in pixels"),
		Height:    fs.Int("height", 800, "Height of the -render output in pixels"),
		X:         fs.Float64("x", 0, "Real part of the -render view centre"),
		Y:         fs.Float64("y", 0, "Imaginary part of the -render view centre"),
		Zoom:      fs.Float64("zoom", 1, "Zoom of the -render view"),
		CPU:       fs.Bool("cpu", false, "Use the CPU renderer for -render"),
		Antialias: fs.Float64("antialias", 0, "Supersampling distance in pixels for -cpu, 0 disables it"),
		Debug:     fs.Bool("debug", false, "Log OpenGL debug messages"),
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments %v", fs.Args())
	}

	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Options) validate() error {
	var errs []error
	if *o.Width <= 0 || *o.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid size %vx%v", *o.Width, *o.Height))
	}
	if !(*o.Zoom > 0) {
		errs = append(errs, fmt.Errorf("invalid zoom %v: %w", *o.Zoom, viewport.ErrInvalidZoom))
	}
	if !(*o.Antialias >= 0) {
		errs = append(errs, fmt.Errorf("invalid antialias distance %v", *o.Antialias))
	}
	return errors.Join(errs...)
}

// Headless reports whether a -render file was requested.
func (o *Options) Headless() bool {
	return *o.Render != ""
}

// Viewport is the view requested for -render. Interactive sessions always
// start from viewport.Default.
func (o *Options) Viewport() viewport.Viewport {
	return viewport.Viewport{
		Offset: mgl64.Vec2{*o.X, *o.Y},
		Zoom:   *o.Zoom,
	}
}
