package snapshot

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/fraktale/programs"
	"github.com/stewi1014/fraktale/viewport"
)

// fragImage encodes the fragment coordinate it was sampled at.
type fragImage struct {
	bounds  image.Rectangle
	samples []mgl32.Vec2
}

func (f *fragImage) GetPixel(pos mgl32.Vec2) mgl32.Vec3 {
	f.samples = append(f.samples, pos)
	return mgl32.Vec3{pos[0] / float32(f.bounds.Dx()), pos[1] / float32(f.bounds.Dy()), 1}
}

func (f *fragImage) Bounds() image.Rectangle {
	return f.bounds
}

type constImage struct {
	bounds image.Rectangle
}

func (c constImage) GetPixel(pos mgl32.Vec2) mgl32.Vec3 {
	return mgl32.Vec3{pos[0], pos[1], 0}
}

func (c constImage) Bounds() image.Rectangle {
	return c.bounds
}

func TestToImageFlipsRows(t *testing.T) {
	src := &fragImage{bounds: image.Rect(0, 0, 4, 2)}
	img := ToImage(src)

	img.At(0, 0)
	img.At(3, 1)
	want := []mgl32.Vec2{{0.5, 1.5}, {3.5, 0.5}}
	for i := range want {
		if src.samples[i] != want[i] {
			t.Errorf("sample %d at %v; want %v", i, src.samples[i], want[i])
		}
	}

	if got := img.At(3, 0).(color.NRGBA); got.A != 0xff || got.B != 0xff {
		t.Errorf("At(3, 0) = %v; want opaque with full blue", got)
	}
}

func TestColourByte(t *testing.T) {
	tests := []struct {
		v    float32
		want uint8
	}{
		{-1, 0},
		{0, 0},
		{0.5, 128},
		{1, 255},
		{2, 255},
	}
	for _, test := range tests {
		if got := colourByte(test.v); got != test.want {
			t.Errorf("colourByte(%v) = %v; want %v", test.v, got, test.want)
		}
	}
}

func TestAntiAlias9x(t *testing.T) {
	// The samples are symmetric around pos, so a linear image is unchanged.
	img := AntiAlias9x(constImage{bounds: image.Rect(0, 0, 10, 10)}, 0.25)
	got := img.GetPixel(mgl32.Vec2{3, 4})
	if want := (mgl32.Vec3{3, 4, 0}); !got.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("GetPixel = %v; want %v", got, want)
	}

	src := &fragImage{bounds: image.Rect(0, 0, 10, 10)}
	AntiAlias9x(src, 1).GetPixel(mgl32.Vec2{5, 5})
	if len(src.samples) != 9 {
		t.Errorf("took %d samples; want 9", len(src.samples))
	}
	if src.samples[0] != (mgl32.Vec2{4, 4}) || src.samples[8] != (mgl32.Vec2{6, 6}) {
		t.Errorf("unexpected sample positions %v", src.samples)
	}
}

func TestBufferImageMatchesSource(t *testing.T) {
	p, err := programs.ProgramByName("mandelbrot")
	if err != nil {
		t.Fatal(err)
	}
	var uniforms programs.Uniforms
	uniforms.DefaultValues()
	source, err := p.GetImage(uniforms, 123, 45)
	if err != nil {
		t.Fatal(err)
	}

	direct := ToImage(source)
	buff := BufferImage(direct)
	if err := buff.Buffer(context.Background()); err != nil {
		t.Fatal(err)
	}

	if buff.Bounds() != direct.Bounds() {
		t.Fatalf("bounds = %v; want %v", buff.Bounds(), direct.Bounds())
	}
	for y := 0; y < 45; y++ {
		for x := 0; x < 123; x++ {
			if got, want := buff.At(x, y), direct.At(x, y); got != want {
				t.Fatalf("At(%d, %d) = %v; want %v", x, y, got, want)
			}
		}
	}
}

func TestBufferCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	buff := BufferImage(ToImage(constImage{bounds: image.Rect(0, 0, 200, 10)}))
	if err := buff.Buffer(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Buffer error = %v; want %v", err, context.Canceled)
	}
}

func TestWrapWithProgress(t *testing.T) {
	img := ToImage(constImage{bounds: image.Rect(0, 0, 10, 10)})
	progress := WrapWithProgress(&img)
	if progress() != 0 {
		t.Errorf("progress before reading = %v; want 0", progress())
	}

	buff := BufferImage(img)
	if err := buff.Buffer(context.Background()); err != nil {
		t.Fatal(err)
	}
	if progress() != 1 {
		t.Errorf("progress after buffering = %v; want 1", progress())
	}
}

func TestRenderAndWritePNG(t *testing.T) {
	p, err := programs.ProgramByName("mandelbrot")
	if err != nil {
		t.Fatal(err)
	}

	var uniforms programs.Uniforms
	uniforms.DefaultValues()

	for _, multithread := range []bool{false, true} {
		var stages []string
		opts := SaveOptions{
			Name:        filepath.Join(t.TempDir(), "out.png"),
			Width:       40,
			Height:      20,
			Antialias:   0.25,
			Multithread: multithread,
		}
		err := Save(context.Background(), opts, p, uniforms, func(_ func() float64, stage string) {
			stages = append(stages, stage)
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(stages) != 1 {
			t.Errorf("multithread=%v: got progress stages %v; want one", multithread, stages)
		}

		file, err := os.Open(opts.Name)
		if err != nil {
			t.Fatal(err)
		}
		img, err := png.Decode(file)
		file.Close()
		if err != nil {
			t.Fatal(err)
		}

		if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
			t.Errorf("decoded size %v; want 40x20", img.Bounds())
		}
		// The centre of the default view is inside the set.
		if r, g, b, _ := img.At(20, 10).RGBA(); r != 0 || g != 0 || b != 0 {
			t.Errorf("centre pixel = %v %v %v; want black", r, g, b)
		}
	}
}

func TestWritePNGCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	name := filepath.Join(t.TempDir(), "cancelled.png")
	err := WritePNG(ctx, name, image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("WritePNG error = %v; want %v", err, context.Canceled)
	}
	if _, err := os.Stat(name); !os.IsNotExist(err) {
		t.Errorf("cancelled snapshot left a file behind: %v", err)
	}
}

func TestRenderWithoutCPUImplementation(t *testing.T) {
	_, err := Render(context.Background(), SaveOptions{Width: 1, Height: 1}, programs.Program{Name: "gpu"}, programs.Uniforms{}, nil)
	if !errors.Is(err, programs.ErrNoCPUImplementation) {
		t.Errorf("Render error = %v; want %v", err, programs.ErrNoCPUImplementation)
	}
}

func TestFileName(t *testing.T) {
	got := FileName(time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC))
	if want := "fraktale-20240309-140506.png"; got != want {
		t.Errorf("FileName = %q; want %q", got, want)
	}
}

func TestDetails(t *testing.T) {
	opts := SaveOptions{Name: "out.png", Width: 640, Height: 480}
	view := viewport.Viewport{Offset: mgl64.Vec2{-0.75, 0.1}, Zoom: 4}

	want := [][2]string{
		{"File", "out.png"},
		{"Size", "640 x 480"},
		{"Centre", "-0.75 +0.1i"},
		{"Zoom", "4"},
	}
	got := Details(opts, view)
	if len(got) != len(want) {
		t.Fatalf("Details = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %v; want %v", i, got[i], want[i])
		}
	}

	opts.Antialias = 0.5
	got = Details(opts, viewport.Default())
	if last := got[len(got)-1]; last != [2]string{"Antialias", "0.5 px"} {
		t.Errorf("last row with antialiasing = %v; want Antialias 0.5 px", last)
	}
	if centre := got[2][1]; centre != "0 +0i" {
		t.Errorf("default centre = %q; want %q", centre, "0 +0i")
	}
}
