package main

import (
	"fmt"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/fraktale/viewport"
)

const controlsCSS = `
button.control {
	background-image: none;
	background-color: rgba(128, 0, 0, 0.67);
	color: white;
	min-width: 50px;
	min-height: 50px;
	padding: 0;
}
`

// Controls is the on-screen button pad laid over the render area: a
// direction pad in the middle of the bottom edge and a zoom column on the
// right. Buttons act while held.
type Controls struct {
	*gtk.Box
}

func NewControls(controller *viewport.Controller, onSave func()) (*Controls, error) {
	if err := loadControlsCSS(); err != nil {
		return nil, err
	}

	box, err := gtk.BoxNew(gtk.ORIENTATION_HORIZONTAL, 0)
	if err != nil {
		return nil, fmt.Errorf("gtk.BoxNew: %w", err)
	}
	box.SetVAlign(gtk.ALIGN_END)
	box.SetHAlign(gtk.ALIGN_FILL)
	box.SetMarginStart(16)
	box.SetMarginEnd(16)
	box.SetMarginBottom(16)

	// Balances the zoom column so the direction pad sits in the middle.
	spacer, err := gtk.LabelNew("")
	if err != nil {
		return nil, fmt.Errorf("gtk.LabelNew: %w", err)
	}
	spacer.SetSizeRequest(50, -1)

	pad, err := gtk.GridNew()
	if err != nil {
		return nil, fmt.Errorf("gtk.GridNew: %w", err)
	}
	pad.SetVAlign(gtk.ALIGN_END)

	for _, b := range []struct {
		label  string
		button viewport.Button
		left   int
		top    int
	}{
		{"^", viewport.Up, 1, 0},
		{"<", viewport.Left, 0, 1},
		{">", viewport.Right, 2, 1},
		{"v", viewport.Down, 1, 2},
	} {
		button, err := newHoldButton(b.label, controller, b.button)
		if err != nil {
			return nil, err
		}
		pad.Attach(button, b.left, b.top, 1, 1)
	}

	// Empty centre cell of the pad.
	centre, err := gtk.LabelNew("")
	if err != nil {
		return nil, fmt.Errorf("gtk.LabelNew: %w", err)
	}
	centre.SetSizeRequest(50, 50)
	pad.Attach(centre, 1, 1, 1, 1)

	zoom, err := gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 8)
	if err != nil {
		return nil, fmt.Errorf("gtk.BoxNew: %w", err)
	}
	zoom.SetVAlign(gtk.ALIGN_END)

	save, err := gtk.ButtonNewWithLabel("Save")
	if err != nil {
		return nil, fmt.Errorf("gtk.ButtonNewWithLabel: %w", err)
	}
	save.Connect("clicked", onSave)
	zoom.PackStart(save, false, false, 0)

	for _, b := range []struct {
		label  string
		button viewport.Button
	}{
		{"+", viewport.ZoomIn},
		{"-", viewport.ZoomOut},
	} {
		button, err := newHoldButton(b.label, controller, b.button)
		if err != nil {
			return nil, err
		}
		zoom.PackStart(button, false, false, 0)
	}

	box.PackStart(spacer, false, false, 0)
	box.PackStart(pad, true, false, 0)
	box.PackEnd(zoom, false, false, 0)

	return &Controls{Box: box}, nil
}

// newHoldButton returns a button that holds b on the controller between
// press and release.
func newHoldButton(label string, controller *viewport.Controller, b viewport.Button) (*gtk.Button, error) {
	button, err := gtk.ButtonNewWithLabel(label)
	if err != nil {
		return nil, fmt.Errorf("gtk.ButtonNewWithLabel: %w", err)
	}

	style, err := button.GetStyleContext()
	if err != nil {
		return nil, fmt.Errorf("GetStyleContext: %w", err)
	}
	style.AddClass("control")

	button.Connect("pressed", func() {
		controller.Press(b)
	})
	button.Connect("released", func() {
		controller.Release(b)
	})

	return button, nil
}

func loadControlsCSS() error {
	provider, err := gtk.CssProviderNew()
	if err != nil {
		return fmt.Errorf("gtk.CssProviderNew: %w", err)
	}
	if err := provider.LoadFromData(controlsCSS); err != nil {
		return fmt.Errorf("loading controls css: %w", err)
	}

	screen, err := gdk.ScreenGetDefault()
	if err != nil {
		return fmt.Errorf("gdk.ScreenGetDefault: %w", err)
	}
	gtk.AddProviderForScreen(screen, provider, uint(gtk.STYLE_PROVIDER_PRIORITY_APPLICATION))
	return nil
}
