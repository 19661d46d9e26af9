package coverbuilder

import (
	"math"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
)

// Center is a weighted color source. X, Y lie within the canvas.
type Center struct {
	X, Y     float64
	Color    colorful.Color
	Radius   float64
	Strength float64
	// Falloff exponent p in exp(-(d/Radius)^p).
	Falloff float64
}

// anchorPositions returns corners first, then edge midpoints.
func anchorPositions(w, h float64) [8][2]float64 {
	return [8][2]float64{
		{0, 0}, {w, 0}, {0, h}, {w, h},
		{w / 2, 0}, {w, h / 2}, {w / 2, h}, {0, h / 2},
	}
}

// LayoutCenters places n centers over a w×h canvas.
// Draws per center, in order: anchor coin, x, y, radius, strength, falloff.
// Colors cycle through the palette, so every entry is used once n >= len(palette).
func LayoutCenters(w, h, n int, palette Palette, rng *rand.Rand) ([]Center, error) {
	if n < 4 || n > 10 {
		return nil, paramRangeError("num-centers", n, 4, 10)
	}
	if len(palette) == 0 {
		return nil, &InvalidParameterError{Name: "palette", Value: 0, Reason: "must not be empty"}
	}
	fw, fh := float64(w), float64(h)
	diag := math.Hypot(fw, fh)
	anchors := anchorPositions(fw, fh)

	centers := make([]Center, n)
	for i := range n {
		var x, y float64
		if coin := rng.Float64(); i < len(anchors) && coin > 0.3 {
			x = anchors[i][0] + uniform(rng, -0.2*fw, 0.2*fw)
			y = anchors[i][1] + uniform(rng, -0.2*fh, 0.2*fh)
		} else {
			x = uniform(rng, 0, fw)
			y = uniform(rng, 0, fh)
		}
		centers[i] = Center{
			X:        max(0, min(fw, x)),
			Y:        max(0, min(fh, y)),
			Color:    palette[i%len(palette)].Color,
			Radius:   diag * uniform(rng, 0.2, 0.6),
			Strength: uniform(rng, 0.7, 1.3),
			Falloff:  uniform(rng, 1.5, 2.5),
		}
	}
	return centers, nil
}
