package coverbuilder

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Enhancement multipliers. Saturation is applied first, in HSV, then
// contrast and brightness per RGB channel.
type Enhancement struct {
	Saturation float64
	Contrast   float64
	Brightness float64
}

func (e Enhancement) validate() error {
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"saturation", e.Saturation},
		{"contrast", e.Contrast},
		{"brightness", e.Brightness},
	} {
		if math.IsNaN(p.v) || p.v < 0 {
			return &InvalidParameterError{Name: p.name, Value: p.v, Reason: "must not be negative"}
		}
	}
	return nil
}

// Enhance applies e to every pixel of f in place.
func Enhance(f *Field, e Enhancement) error {
	if err := e.validate(); err != nil {
		return err
	}
	for i := 0; i < len(f.Pix); i += 3 {
		c := colorful.Color{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2]}.Clamped()
		h, s, v := c.Hsv()
		c = colorful.Hsv(h, clamp01(s*e.Saturation), v)
		f.Pix[i] = clamp01(((c.R-0.5)*e.Contrast + 0.5) * e.Brightness)
		f.Pix[i+1] = clamp01(((c.G-0.5)*e.Contrast + 0.5) * e.Brightness)
		f.Pix[i+2] = clamp01(((c.B-0.5)*e.Contrast + 0.5) * e.Brightness)
	}
	return nil
}
