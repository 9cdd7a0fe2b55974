package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/stewi1014/fraktale/options"
	"github.com/stewi1014/fraktale/programs"
	"github.com/stewi1014/fraktale/render"
	"github.com/stewi1014/fraktale/snapshot"
)

func init() {
	// glfw must be used from the main thread.
	runtime.LockOSThread()
}

func main() {
	opts, err := options.Parse(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	signalContext, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	mainContext, mainQuit := context.WithCancelCause(signalContext)

	if opts.Headless() {
		if err := renderHeadless(mainContext, opts); err != nil {
			log.Fatal(err)
		}
		return
	}

	go func() {
		defer CatchPanicToContext(mainQuit)
		mainQuit(gtkMain(mainContext, opts))
	}()

	<-mainContext.Done()
	if err := context.Cause(mainContext); err != nil && !errors.Is(err, context.Canceled) {
		log.Println(err)
	}
}

// renderHeadless writes the view described by opts to a PNG file without
// opening a window.
func renderHeadless(ctx context.Context, opts *options.Options) error {
	program, err := programs.ProgramByName("mandelbrot")
	if err != nil {
		return err
	}

	width, height := *opts.Width, *opts.Height
	uniforms := opts.Viewport().Uniforms(width, height)

	if *opts.CPU {
		return snapshot.Save(ctx, snapshot.SaveOptions{
			Name:        *opts.Render,
			Width:       width,
			Height:      height,
			Antialias:   float32(*opts.Antialias),
			Multithread: true,
		}, program, uniforms, nil)
	}

	headless, err := render.NewHeadless(width, height, program, *opts.Debug)
	if err != nil {
		return err
	}
	defer headless.Close()

	img, err := headless.Snapshot(uniforms)
	if err != nil {
		return err
	}
	if err := snapshot.WritePNG(ctx, *opts.Render, img); err != nil {
		return err
	}

	log.Printf("rendered %v (%v)", *opts.Render, opts.Viewport())
	return nil
}
