package coverbuilder

import (
	"context"
	"image"
	"math"
	"runtime"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// Total weight below which a sample falls back to the background color.
const minTotalWeight = 1e-6

var background = [3]float64{0.5, 0.5, 0.5}

// Compositor blends centers into a field.
type Compositor struct {
	Centers []Center
	// Optional coordinate warp. nil or an identity FlowField skips warping.
	Warp Warp
	// Grid step; 1 samples every pixel.
	Subsample int
	// Row workers; 0 => runtime.NumCPU().
	Workers int
}

// Composite renders a w×h field.
func (c *Compositor) Composite(ctx context.Context, w, h int) (*Field, error) {
	step := max(c.Subsample, 1)
	if step == 1 || w <= step || h <= step {
		return c.render(ctx, w, h, 1)
	}
	gw := (w-1)/step + 2
	gh := (h-1)/step + 2
	grid, err := c.render(ctx, gw, gh, float64(step))
	if err != nil {
		return nil, err
	}
	// The grid covers (gw-1)*step >= w-1 pixels; scale the covered span onto the canvas.
	src := grid.image64()
	dst := image.NewRGBA64(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return fieldFromImage64(dst), nil
}

// render evaluates a w×h grid whose sample (i, j) sits at canvas point (i*step, j*step).
func (c *Compositor) render(ctx context.Context, w, h int, step float64) (*Field, error) {
	f := NewField(w, h)
	warp := c.Warp
	if ff, ok := warp.(*FlowField); ok && ff.Identity() {
		warp = nil
	}

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := range h {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for x := range w {
				px, py := float64(x)*step, float64(y)*step
				if warp != nil {
					px, py = warp.Warp(px, py)
				}
				off := pixOffset(w, x, y)
				r, gr, b := blendAt(c.Centers, px, py)
				f.Pix[off] = r
				f.Pix[off+1] = gr
				f.Pix[off+2] = b
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return f, nil
}

// blendAt returns the weight-normalized color of all centers at (px, py).
func blendAt(centers []Center, px, py float64) (r, g, b float64) {
	total := 0.0
	for i := range centers {
		ct := &centers[i]
		d := math.Hypot(px-ct.X, py-ct.Y)
		wgt := ct.Strength * math.Exp(-math.Pow(d/ct.Radius, ct.Falloff))
		r += wgt * ct.Color.R
		g += wgt * ct.Color.G
		b += wgt * ct.Color.B
		total += wgt
	}
	if total < minTotalWeight {
		return background[0], background[1], background[2]
	}
	inv := 1.0 / total
	return clamp01(r * inv), clamp01(g * inv), clamp01(b * inv)
}
