package coverbuilder

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Blur scales: sigma_k = base * blurScaleGrowth^k, blended with alpha_k = 0.3/(k+1).
const (
	blurScales      = 3
	blurScaleGrowth = 1.5
	blurBlend       = 0.3
)

// MultiScaleBlur smooths f in place over three growing scales. Each pass
// blends the current result with its blurred copy, so the output stays within
// the input's value range.
func MultiScaleBlur(ctx context.Context, f *Field, base float64, workers int) error {
	if math.IsNaN(base) || base <= 0 {
		return &InvalidParameterError{Name: "blur", Value: base, Reason: "must be positive"}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	blurred := make([]float64, len(f.Pix))
	for k := range blurScales {
		sigma := base * math.Pow(blurScaleGrowth, float64(k))
		copy(blurred, f.Pix)
		if err := gaussianBlur(ctx, &Field{W: f.W, H: f.H, Pix: blurred}, sigma, workers); err != nil {
			return err
		}
		alpha := blurBlend / float64(k+1)
		floats.Scale(1-alpha, f.Pix)
		floats.AddScaled(f.Pix, alpha, blurred)
	}
	return nil
}

// gaussianBlur approximates a Gaussian of the given sigma with three box passes.
func gaussianBlur(ctx context.Context, f *Field, sigma float64, workers int) error {
	tmp := make([]float64, len(f.Pix))
	for _, size := range boxSizes(sigma, 3) {
		r := (size - 1) / 2
		if err := boxBlurH(ctx, f.Pix, tmp, f.W, f.H, r, workers); err != nil {
			return err
		}
		if err := boxBlurV(ctx, tmp, f.Pix, f.W, f.H, r, workers); err != nil {
			return err
		}
	}
	return nil
}

// boxSizes returns n odd box widths whose successive application matches a
// Gaussian of the given sigma.
func boxSizes(sigma float64, n int) []int {
	fn := float64(n)
	wIdeal := math.Sqrt(12*sigma*sigma/fn + 1)
	wl := int(math.Floor(wIdeal))
	if wl%2 == 0 {
		wl--
	}
	wl = max(wl, 1)
	wu := wl + 2
	fl := float64(wl)
	m := int(math.Round((12*sigma*sigma - fn*fl*fl - 4*fn*fl - 3*fn) / (-4*fl - 4)))
	sizes := make([]int, n)
	for i := range n {
		if i < m {
			sizes[i] = wl
		} else {
			sizes[i] = wu
		}
	}
	return sizes
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// boxBlurLine averages a window of 2r+1 samples along one line, clamping at the edges.
// at(i) reads sample i of the line and put(i, v) writes output sample i.
func boxBlurLine(n, r int, at func(int) float64, put func(int, float64)) {
	inv := 1.0 / float64(2*r+1)
	acc := 0.0
	for k := -r; k <= r; k++ {
		acc += at(clampInt(k, 0, n-1))
	}
	for i := range n {
		put(i, acc*inv)
		acc += at(clampInt(i+r+1, 0, n-1)) - at(clampInt(i-r, 0, n-1))
	}
}

func boxBlurH(ctx context.Context, src, dst []float64, w, h, r, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := range h {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for ch := range 3 {
				boxBlurLine(w, r,
					func(x int) float64 { return src[pixOffset(w, x, y)+ch] },
					func(x int, v float64) { dst[pixOffset(w, x, y)+ch] = v },
				)
			}
			return nil
		})
	}
	return g.Wait()
}

func boxBlurV(ctx context.Context, src, dst []float64, w, h, r, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for x := range w {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for ch := range 3 {
				boxBlurLine(h, r,
					func(y int) float64 { return src[pixOffset(w, x, y)+ch] },
					func(y int, v float64) { dst[pixOffset(w, x, y)+ch] = v },
				)
			}
			return nil
		})
	}
	return g.Wait()
}
