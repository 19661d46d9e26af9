package coverbuilder

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
)

// Field is the working pixel buffer threaded through the pipeline.
type Field struct {
	W, H int
	Pix  []float64 // Interleaved RGB in [0,1], len = W*H*3
}

func NewField(w, h int) *Field {
	return &Field{W: w, H: h, Pix: make([]float64, w*h*3)}
}

func pixOffset(w, x, y int) int {
	return (y*w + x) * 3
}

func (f *Field) At(x, y int) colorful.Color {
	off := pixOffset(f.W, x, y)
	return colorful.Color{R: f.Pix[off], G: f.Pix[off+1], B: f.Pix[off+2]}
}

func (f *Field) Set(x, y int, c colorful.Color) {
	off := pixOffset(f.W, x, y)
	f.Pix[off] = c.R
	f.Pix[off+1] = c.G
	f.Pix[off+2] = c.B
}

func (f *Field) Clone() *Field {
	return &Field{W: f.W, H: f.H, Pix: append([]float64(nil), f.Pix...)}
}

// Range returns the smallest and largest channel value.
func (f *Field) Range() (lo, hi float64) {
	if len(f.Pix) == 0 {
		return 0, 0
	}
	return floats.Min(f.Pix), floats.Max(f.Pix)
}

// Image converts the field to an opaque 8-bit image.
func (f *Field) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.W, f.H))
	for y := range f.H {
		for x := range f.W {
			off := pixOffset(f.W, x, y)
			img.SetNRGBA(x, y, color.NRGBA{
				to8(f.Pix[off]),
				to8(f.Pix[off+1]),
				to8(f.Pix[off+2]),
				255,
			})
		}
	}
	return img
}

// image64 converts the field to a 16-bit image, used for resampling.
func (f *Field) image64() *image.RGBA64 {
	img := image.NewRGBA64(image.Rect(0, 0, f.W, f.H))
	for y := range f.H {
		for x := range f.W {
			off := pixOffset(f.W, x, y)
			img.SetRGBA64(x, y, color.RGBA64{
				to16(f.Pix[off]),
				to16(f.Pix[off+1]),
				to16(f.Pix[off+2]),
				0xffff,
			})
		}
	}
	return img
}

func fieldFromImage64(img *image.RGBA64) *Field {
	b := img.Bounds()
	f := NewField(b.Dx(), b.Dy())
	for y := range f.H {
		for x := range f.W {
			c := img.RGBA64At(b.Min.X+x, b.Min.Y+y)
			off := pixOffset(f.W, x, y)
			f.Pix[off] = float64(c.R) / 0xffff
			f.Pix[off+1] = float64(c.G) / 0xffff
			f.Pix[off+2] = float64(c.B) / 0xffff
		}
	}
	return f
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}

func to8(v float64) uint8 {
	return uint8(clamp01(v) * 255)
}

func to16(v float64) uint16 {
	return uint16(clamp01(v) * 0xffff)
}
