package programs

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func vecClose(a, b mgl32.Vec3, tolerance float32) bool {
	for i := range a {
		if float32(math.Abs(float64(a[i]-b[i]))) > tolerance {
			return false
		}
	}
	return true
}

func TestEscapeTerminates(t *testing.T) {
	points := []complex128{
		0, 2, -2, 1 + 1i, -0.75 + 0.1i, 0.25, 0.2501, -1.401155, 100 + 100i,
		complex(math.Inf(1), 0), complex(math.NaN(), 0),
	}
	for _, c := range points {
		for _, limit := range []int{0, 1, 10, MaxIterations} {
			got := Escape(c, limit)
			if got < 0 || got > limit {
				t.Errorf("Escape(%v, %d) = %d; want a value in [0, %d]", c, limit, got, limit)
			}
		}
	}
}

func TestEscapeInterior(t *testing.T) {
	interior := []complex128{
		0,
		-1,          // period-2 bulb centre
		-0.1 + 0.1i, // main cardioid
		0.25 - 0.1i,
		-0.5 + 0.5i,
		-1.1 + 0.1i,
		-0.75 + 0i,
	}
	for _, c := range interior {
		if got := Escape(c, MaxIterations); got != MaxIterations {
			t.Errorf("Escape(%v) = %d; expected interior point to reach %d", c, got, MaxIterations)
		}
		if got := Shade(Escape(c, MaxIterations), MaxIterations); got != InteriorColour {
			t.Errorf("Shade of interior point %v = %v; want black", c, got)
		}
	}
}

func TestEscapeExterior(t *testing.T) {
	tests := []struct {
		c    complex128
		want int
	}{
		{3, 0},
		{-2.5, 0},
		{1, 2},  // 1, 2, 5
		{2i, 1}, // 2i, -4+2i
	}
	for _, test := range tests {
		if got := Escape(test.c, MaxIterations); got != test.want {
			t.Errorf("Escape(%v) = %d; want %d", test.c, got, test.want)
		}
	}
}

func TestEscapeMatchesDirectIteration(t *testing.T) {
	for x := -2.0; x <= 1; x += 0.125 {
		for y := -1.25; y <= 1.25; y += 0.125 {
			c := complex(x, y)
			z, want := c, 0
			for want < MaxIterations && cmplx.Abs(z) <= 2 {
				z = z*z + c
				want++
			}
			if got := Escape(c, MaxIterations); got != want {
				t.Errorf("Escape(%v) = %d; want %d", c, got, want)
			}
		}
	}
}

func TestFireColourStops(t *testing.T) {
	tests := []struct {
		t    float32
		want mgl32.Vec3
	}{
		{0, fireStops[0]},
		{1.0 / 3, fireStops[1]},
		{2.0 / 3, fireStops[2]},
		{1, fireStops[3]},
		{1.0 / 6, mgl32.Vec3{0.45, 0.05, 0}},
	}
	for _, test := range tests {
		if got := FireColour(test.t); !vecClose(got, test.want, 1e-5) {
			t.Errorf("FireColour(%v) = %v; want %v", test.t, got, test.want)
		}
	}
}

func TestFireColourContinuous(t *testing.T) {
	for _, boundary := range []struct {
		segment int
		t       float32
	}{
		{0, 1.0 / 3},
		{1, 2.0 / 3},
	} {
		below := fireSegment(boundary.segment, boundary.t)
		above := fireSegment(boundary.segment+1, boundary.t)
		if !vecClose(below, above, 1e-5) {
			t.Errorf("gradient jumps at t=%v: %v from below, %v from above", boundary.t, below, above)
		}

		const epsilon = 1e-4
		if a, b := FireColour(boundary.t-epsilon), FireColour(boundary.t+epsilon); !vecClose(a, b, 1e-3) {
			t.Errorf("FireColour is not continuous around %v: %v vs %v", boundary.t, a, b)
		}
	}
}

func TestShadeSquareRoot(t *testing.T) {
	// 75 of 300 iterations gives t = 0.25, sqrt 0.5, in the middle segment.
	got := Shade(75, 300)
	want := FireColour(0.5)
	if !vecClose(got, want, 1e-6) {
		t.Errorf("Shade(75, 300) = %v; want %v", got, want)
	}

	if got := Shade(0, 300); got != fireStops[0] {
		t.Errorf("Shade(0, 300) = %v; want %v", got, fireStops[0])
	}
}

func TestPlanePoint(t *testing.T) {
	uniforms := Uniforms{
		Resolution: mgl32.Vec2{200, 100},
		Zoom:       1,
		Offset:     mgl32.Vec2{0.5, -0.25},
	}

	tests := []struct {
		frag mgl32.Vec2
		want complex128
	}{
		{mgl32.Vec2{100, 50}, complex(0.5, -0.25)},
		{mgl32.Vec2{100, 100}, complex(0.5, 0.75)},
		{mgl32.Vec2{0, 50}, complex(-1.5, -0.25)},
		{mgl32.Vec2{200, 0}, complex(2.5, -1.25)},
	}
	for _, test := range tests {
		got := PlanePoint(uniforms, test.frag)
		if cmplx.Abs(got-test.want) > 1e-6 {
			t.Errorf("PlanePoint(%v) = %v; want %v", test.frag, got, test.want)
		}
	}

	uniforms.Zoom = 4
	got := PlanePoint(uniforms, mgl32.Vec2{100, 100})
	if want := complex(0.5, 0); cmplx.Abs(got-want) > 1e-6 {
		t.Errorf("PlanePoint at zoom 4 = %v; want %v", got, want)
	}
}

func TestMandelbrotProgram(t *testing.T) {
	p, err := ProgramByName("mandelbrot")
	if err != nil {
		t.Fatal(err)
	}
	if p.FragmentShader == "" || p.VertexShader == "" {
		t.Fatal("mandelbrot program has empty shader sources")
	}

	var uniforms Uniforms
	uniforms.DefaultValues()
	img, err := p.GetImage(uniforms, 64, 32)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 32 {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}

	// The centre of the default view is c = 0.
	if got := img.GetPixel(mgl32.Vec2{32, 16}); got != InteriorColour {
		t.Errorf("centre pixel = %v; want black", got)
	}
	// c = 0.5 escapes after four steps.
	want := Shade(4, MaxIterations)
	if got := img.GetPixel(mgl32.Vec2{40, 16}); !vecClose(got, want, 1e-6) || got == InteriorColour {
		t.Errorf("pixel at c = 0.5 is %v; want %v", got, want)
	}
}

func TestGetImageWithoutPixelFunc(t *testing.T) {
	p := Program{Name: "gpu only"}
	if _, err := p.GetImage(Uniforms{}, 1, 1); !errors.Is(err, ErrNoCPUImplementation) {
		t.Errorf("GetImage error = %v; want %v", err, ErrNoCPUImplementation)
	}
}

func TestNewProgramDuplicate(t *testing.T) {
	if err := NewProgram(Program{Name: "mandelbrot"}); err == nil {
		t.Error("registering a second mandelbrot program succeeded")
	}
	if _, err := ProgramByName("julia"); err == nil {
		t.Error("ProgramByName found an unregistered program")
	}
}
