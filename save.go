package main

import (
	"context"
	"errors"
	"log"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/fraktale/programs"
	"github.com/stewi1014/fraktale/snapshot"
	"github.com/stewi1014/fraktale/viewport"
)

// save renders view on the CPU behind a SaveDialog. It blocks until the file
// is written and must not be called on the GTK main thread.
func save(
	parent context.Context,
	window *gtk.ApplicationWindow,
	opts snapshot.SaveOptions,
	program programs.Program,
	view viewport.Viewport,
) {
	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	err := func() (err error) {
		defer CatchPanicToContext(func(cause error) { err = cause })

		dialogs := make(chan *SaveDialog, 1)
		glib.IdleAdd(func() {
			dialog, err := NewSaveDialog(window, opts, view, func() { cancel(context.Canceled) })
			if err != nil {
				log.Println(err)
				dialogs <- nil
				return
			}
			dialog.ShowAll()
			dialogs <- dialog
		})

		var stage func(func() float64, string)
		if dialog := <-dialogs; dialog != nil {
			go dialog.watch(ctx)
			stage = dialog.Stage
		}

		uniforms := view.Uniforms(opts.Width, opts.Height)
		return snapshot.Save(ctx, opts, program, uniforms, stage)
	}()

	switch {
	case err == nil:
		log.Printf("saved %v (%v)", opts.Name, view)
	case errors.Is(err, context.Canceled):
		log.Printf("cancelled saving %v", opts.Name)
	default:
		log.Println(err)
		glib.IdleAdd(func() {
			showError(window, opts.Name, err)
		})
	}
}
