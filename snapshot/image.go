package snapshot

import (
	"context"
	"image"
	"image/color"
	"log"
	"math"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/fraktale/programs"
)

func WrapWithProgress(img *image.Image) func() float64 {
	p := &ProgressImage{
		Image: *img,
	}

	*img = p
	return p.Progress
}

// ProgressImage counts the pixels read from it. It is safe to read from
// several goroutines.
type ProgressImage struct {
	image.Image
	count atomic.Int64
}

func (i *ProgressImage) At(x, y int) color.Color {
	i.count.Add(1)
	return i.Image.At(x, y)
}

func (i *ProgressImage) Progress() float64 {
	end := i.Bounds().Dx() * i.Bounds().Dy()
	if end == 0 {
		return 1
	}
	return math.Min(float64(i.count.Load())/float64(end), 1)
}

func (i *ProgressImage) Opaque() bool {
	return true
}

// AntiAlias9x samples 9 posititions for each sampled position,
// returning the average colour.
//
// antialias is the number of pixels apart the sampled locations are.
func AntiAlias9x(img programs.Image, antialias float32) programs.Image {
	if antialias == 0 {
		log.Println("image uselessly antialiased with distance of 0")
	}

	return &antialias9xImage{
		Image:  img,
		offset: antialias,
	}
}

type antialias9xImage struct {
	programs.Image
	offset float32
}

func (i *antialias9xImage) GetPixel(pos mgl32.Vec2) mgl32.Vec3 {
	avg := mgl32.Vec3{}
	for _, dx := range [...]float32{-i.offset, 0, i.offset} {
		for _, dy := range [...]float32{-i.offset, 0, i.offset} {
			avg = avg.Add(i.Image.GetPixel(mgl32.Vec2{pos[0] + dx, pos[1] + dy}))
		}
	}
	return avg.Mul(1 / float32(9))
}

// BufferImage wraps img in an image that is rendered up front by Buffer.
func BufferImage(img image.Image) *BufferedImage {
	return &BufferedImage{
		Image: img,
	}
}

type BufferedImage struct {
	image.Image
	buff *image.NRGBA
}

func (b *BufferedImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Image.Bounds().Dx(), b.Image.Bounds().Dy())
}

func (b *BufferedImage) ColorModel() color.Model {
	return color.NRGBAModel
}

func (b *BufferedImage) At(x, y int) color.Color {
	return b.buff.NRGBAAt(x, y)
}

// Buffer renders the wrapped image in column chunks on separate goroutines.
func (b *BufferedImage) Buffer(ctx context.Context) error {
	b.buff = image.NewNRGBA(b.Bounds())

	min, max := b.Image.Bounds().Min, b.Image.Bounds().Max
	chunkSize := 50
	var wg sync.WaitGroup

	for chunkMin := min.X; chunkMin < max.X; chunkMin += chunkSize {
		chunkMax := chunkMin + chunkSize
		if chunkMax > max.X {
			chunkMax = max.X
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			for x := chunkMin; x < chunkMax; x++ {
				if ctx.Err() != nil {
					return
				}

				for y := min.Y; y < max.Y; y++ {
					c := color.NRGBAModel.Convert(b.Image.At(x, y)).(color.NRGBA)
					b.buff.SetNRGBA(x-min.X, y-min.Y, c)
				}
			}
		}()
	}

	wg.Wait()

	return ctx.Err()
}

func (i *BufferedImage) Opaque() bool {
	return true
}

// ToImage samples img at pixel centres. Image rows grow downwards and
// fragment rows upwards, so rows are flipped.
func ToImage(img programs.Image) image.Image {
	return &imageImage{
		Image: img,
	}
}

type imageImage struct {
	programs.Image
}

func (i *imageImage) At(x, y int) color.Color {
	bounds := i.Bounds()
	c := i.GetPixel(mgl32.Vec2{
		float32(x-bounds.Min.X) + .5,
		float32(bounds.Max.Y-1-y) + .5,
	})

	return color.NRGBA{
		R: colourByte(c[0]),
		G: colourByte(c[1]),
		B: colourByte(c[2]),
		A: 0xff,
	}
}

func (i *imageImage) ColorModel() color.Model {
	return color.NRGBAModel
}

func (i *imageImage) Opaque() bool {
	return true
}

func colourByte(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xff
	}
	return uint8(v*255 + .5)
}
