package main

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/fraktale/snapshot"
	"github.com/stewi1014/fraktale/viewport"
)

// CatchPanicToContext recovers a panic in the calling goroutine and cancels
// the context with it, stack attached. It must be deferred directly.
func CatchPanicToContext(cancel context.CancelCauseFunc) {
	v := recover()
	if v == nil {
		return
	}

	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", v)
	}
	cancel(fmt.Errorf("%w\n%s", err, debug.Stack()))
}

// showError reports a failed save over parent. The text is selectable so it
// can be copied into a bug report.
func showError(parent gtk.IWindow, name string, err error) {
	dialog := gtk.MessageDialogNew(
		parent,
		gtk.DIALOG_DESTROY_WITH_PARENT,
		gtk.MESSAGE_ERROR,
		gtk.BUTTONS_CLOSE,
		"Could not save %s",
		name,
	)
	dialog.FormatSecondaryText("%s", err.Error())
	dialog.Connect("response", dialog.Destroy)

	if area, err := dialog.GetMessageArea(); err == nil {
		area.GetChildren().Foreach(func(item interface{}) {
			widget, ok := item.(*gtk.Widget)
			if !ok {
				return
			}
			if label, err := gtk.WidgetToLabel(widget); err == nil {
				label.SetSelectable(true)
			}
		})
	}

	dialog.Show()
}

// SaveDialog shows what is being written and how far along it is. It closes
// itself when the save finishes.
type SaveDialog struct {
	*gtk.Dialog
	stage    *gtk.ProgressBar
	progress func() float64
}

func NewSaveDialog(
	parent gtk.IWindow,
	opts snapshot.SaveOptions,
	view viewport.Viewport,
	onCancel func(),
) (*SaveDialog, error) {
	dialog, err := gtk.DialogNewWithButtons(
		"Save Image",
		parent,
		gtk.DIALOG_DESTROY_WITH_PARENT,
		[]interface{}{"Cancel", gtk.RESPONSE_CANCEL},
	)
	if err != nil {
		return nil, fmt.Errorf("gtk.DialogNewWithButtons: %w", err)
	}
	dialog.Connect("response", func(_ *gtk.Dialog, response gtk.ResponseType) {
		if response == gtk.RESPONSE_CANCEL {
			onCancel()
		}
	})

	grid, err := gtk.GridNew()
	if err != nil {
		return nil, fmt.Errorf("gtk.GridNew: %w", err)
	}
	grid.SetRowSpacing(4)
	grid.SetColumnSpacing(12)
	grid.SetMarginStart(12)
	grid.SetMarginEnd(12)
	grid.SetMarginTop(12)

	rows := snapshot.Details(opts, view)
	for i, row := range rows {
		for col, text := range row {
			label, err := gtk.LabelNew(text)
			if err != nil {
				return nil, fmt.Errorf("gtk.LabelNew: %w", err)
			}
			label.SetXAlign(0)
			label.SetSelectable(col == 1)
			grid.Attach(label, col, i, 1, 1)
		}
	}

	bar, err := gtk.ProgressBarNew()
	if err != nil {
		return nil, fmt.Errorf("gtk.ProgressBarNew: %w", err)
	}
	bar.SetShowText(true)
	bar.SetText("Starting")
	bar.SetSizeRequest(400, -1)
	grid.Attach(bar, 0, len(rows), 2, 1)

	content, err := dialog.GetContentArea()
	if err != nil {
		return nil, fmt.Errorf("GetContentArea: %w", err)
	}
	content.Add(grid)

	return &SaveDialog{
		Dialog: dialog,
		stage:  bar,
	}, nil
}

// Stage switches the progress bar to a new render stage. It is safe to call
// from any goroutine.
func (d *SaveDialog) Stage(progress func() float64, name string) {
	glib.IdleAdd(func() {
		d.progress = progress
		d.stage.SetText(name)
	})
}

// watch refreshes the progress bar until ctx is done, then closes the dialog.
func (d *SaveDialog) watch(ctx context.Context) {
	ticker := time.NewTicker(time.Second / 10)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			glib.IdleAdd(func() {
				if d.progress != nil {
					d.stage.SetFraction(d.progress())
				}
			})
		case <-ctx.Done():
			glib.IdleAdd(d.Destroy)
			return
		}
	}
}
