// Package snapshot renders fractal programs on the CPU and writes PNG files.
package snapshot

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/stewi1014/fraktale/programs"
	"github.com/stewi1014/fraktale/viewport"
)

type SaveOptions struct {
	Name          string
	Width, Height int
	Antialias     float32
	Multithread   bool
}

// FileName is the default name of a snapshot taken at t.
func FileName(t time.Time) string {
	return "fraktale-" + t.Format("20060102-150405") + ".png"
}

// Details lists what a save of view writes as label and value pairs, for
// display while it runs.
func Details(opts SaveOptions, view viewport.Viewport) [][2]string {
	details := [][2]string{
		{"File", opts.Name},
		{"Size", fmt.Sprintf("%d x %d", opts.Width, opts.Height)},
		{"Centre", fmt.Sprintf("%g %+gi", view.Offset[0], view.Offset[1])},
		{"Zoom", fmt.Sprintf("%g", view.Zoom)},
	}
	if opts.Antialias > 0 {
		details = append(details, [2]string{"Antialias", fmt.Sprintf("%g px", opts.Antialias)})
	}
	return details
}

// Render returns a CPU rendition of program. Each stage that can report
// progress is handed to addProgress, which may be nil.
func Render(
	ctx context.Context,
	opts SaveOptions,
	program programs.Program,
	uniforms programs.Uniforms,
	addProgress func(supplier func() float64, stage string),
) (image.Image, error) {
	if addProgress == nil {
		addProgress = func(func() float64, string) {}
	}

	source, err := program.GetImage(uniforms, opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}

	if opts.Antialias > 0 {
		source = AntiAlias9x(source, opts.Antialias)
	}

	img := ToImage(source)
	if !opts.Multithread {
		addProgress(WrapWithProgress(&img), "Rendering to PNG")
		return img, nil
	}

	addProgress(WrapWithProgress(&img), "Rendering to Buffer")
	buff := BufferImage(img)
	if err := buff.Buffer(ctx); err != nil {
		return nil, err
	}
	return buff, nil
}

// WritePNG encodes img to a new file called name. The file is removed if
// encoding fails or ctx is cancelled first.
func WritePNG(ctx context.Context, name string, img image.Image) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := file.Close()
		if err == nil {
			err = closeErr
		}
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			os.Remove(name)
			err = fmt.Errorf("writing %v: %w", name, err)
		}
	}()

	return png.Encode(file, img)
}

// Save renders program on the CPU and writes it to opts.Name.
func Save(
	ctx context.Context,
	opts SaveOptions,
	program programs.Program,
	uniforms programs.Uniforms,
	addProgress func(supplier func() float64, stage string),
) error {
	img, err := Render(ctx, opts, program, uniforms, addProgress)
	if err != nil {
		return err
	}
	return WritePNG(ctx, opts.Name, img)
}
