package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/fraktale/options"
	"github.com/stewi1014/fraktale/programs"
)

const applicationID = "com.github.stewi1014.fraktale"

// gtkMain runs the interactive viewer until its window is closed or ctx is
// cancelled. It locks the calling goroutine to its thread for GTK.
func gtkMain(ctx context.Context, opts *options.Options) error {
	runtime.LockOSThread()

	program, err := programs.ProgramByName("mandelbrot")
	if err != nil {
		return err
	}

	gtk.Init(&os.Args)
	app, err := gtk.ApplicationNew(applicationID, glib.APPLICATION_FLAGS_NONE)
	if err != nil {
		return fmt.Errorf("gtk.ApplicationNew failed: %w", err)
	}

	appContext, appQuit := context.WithCancelCause(ctx)
	app.Connect("activate", func() {
		renderWindow, err := NewRenderWindow(app, appContext, appQuit, program, *opts.Debug)
		if err != nil {
			appQuit(err)
			return
		}
		renderWindow.Connect("destroy", func() {
			appQuit(nil)
		})
		renderWindow.SetTitle("Fraktale")
	})

	go func() {
		<-appContext.Done()
		glib.IdleAdd(app.Quit)
	}()
	app.Run(nil)
	appQuit(nil)
	return context.Cause(appContext)
}
