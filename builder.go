// Package coverbuilder renders gradient cover images: a vibrant palette is
// spread over weighted color centers, blended with exponential falloff,
// optionally warped by a flow field, blurred over several scales and
// enhanced for vibrancy.
//
// Every random decision draws from one seeded stream in this order:
// base hue (only when no theme is given), palette, centers, flow phases.
package coverbuilder

import (
	"context"
	"errors"
	"image"
	"log"
	"math"
	"math/rand/v2"
	"time"

	"github.com/setanarut/coverbuilder/utils"
)

// Second PCG word, fixed so that a seed fully determines the stream.
const pcgStream = 0x9e3779b97f4a7c15

type CoverBuilder struct {
	Options Options
	// Seed actually used; equals Options.Seed when Options.Seeded.
	Seed    int64
	BaseHue float64
	Palette Palette
	Centers []Center
	Flow    *FlowField
	Field   *Field
	// Progress output. nil discards.
	Logger *log.Logger
}

func NewCoverBuilder(opt Options) *CoverBuilder {
	return &CoverBuilder{Options: opt}
}

func newStream(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), pcgStream))
}

func (cb *CoverBuilder) logf(format string, args ...any) {
	if cb.Logger != nil {
		cb.Logger.Printf(format, args...)
	}
}

// Build runs palette, layout, compositing, blur and enhancement.
// The intermediates stay on the builder for inspection.
func (cb *CoverBuilder) Build(ctx context.Context) error {
	opt := cb.Options
	if err := opt.Validate(); err != nil {
		return err
	}

	cb.Seed = opt.Seed
	if !opt.Seeded {
		cb.Seed = time.Now().UnixNano()
	}
	rng := newStream(cb.Seed)
	cb.logf("generating %dx%d cover (seed %d)", opt.Width, opt.Height, cb.Seed)

	if err := cb.resolveBaseHue(rng); err != nil {
		return err
	}

	palette, err := BuildPalette(cb.BaseHue, opt.NumColors, !opt.NoWhite, rng)
	if err != nil {
		return err
	}
	cb.Palette = palette
	for _, s := range palette {
		cb.logf("   palette %s highlight=%v", s.Color.Hex(), s.Highlight)
	}

	centers, err := LayoutCenters(opt.Width, opt.Height, opt.NumCenters, palette, rng)
	if err != nil {
		return err
	}
	cb.Centers = centers

	// Phases are always drawn so the stream does not depend on Distortion.
	phaseX := rng.Float64() * 2 * math.Pi
	phaseY := rng.Float64() * 2 * math.Pi
	flow, err := NewFlowField(opt.Distortion, opt.Width, opt.Height, phaseX, phaseY)
	if err != nil {
		return err
	}
	cb.Flow = flow

	start := time.Now()
	comp := Compositor{
		Centers:   centers,
		Warp:      flow,
		Subsample: opt.Subsample,
		Workers:   opt.Workers,
	}
	field, err := comp.Composite(ctx, opt.Width, opt.Height)
	if err != nil {
		return err
	}
	cb.logf("   composited %d centers (distortion=%.3f, subsample=%d) in %s",
		len(centers), opt.Distortion, max(opt.Subsample, 1), time.Since(start))

	start = time.Now()
	if err := MultiScaleBlur(ctx, field, opt.Blur, opt.Workers); err != nil {
		return err
	}
	cb.logf("   blurred (base sigma=%.1f) in %s", opt.Blur, time.Since(start))

	if err := Enhance(field, Enhancement{
		Saturation: opt.Saturation,
		Contrast:   opt.Contrast,
		Brightness: opt.Brightness,
	}); err != nil {
		return err
	}
	lo, hi := field.Range()
	cb.logf("   enhanced (saturation=%.2f contrast=%.2f) range=[%.3f, %.3f]",
		opt.Saturation, opt.Contrast, lo, hi)

	cb.Field = field
	return nil
}

func (cb *CoverBuilder) resolveBaseHue(rng *rand.Rand) error {
	opt := cb.Options
	if opt.ThemeImage != "" {
		if opt.ThemeImageMethod == utils.PaletteMethodKMeans {
			log.Println("theme warning: kmeans theme extraction is not reproducible from the seed")
		}
		h, err := themeImageHue(opt.ThemeImage, opt.ThemeImageMethod)
		if err != nil {
			return err
		}
		cb.BaseHue = h
		cb.logf("   theme image %s (%s) hue=%.3f", opt.ThemeImage, opt.ThemeImageMethod, h)
		return nil
	}
	h, ok, err := ResolveTheme(opt.Theme)
	if err != nil {
		return err
	}
	if !ok {
		h = rng.Float64()
	}
	cb.BaseHue = h
	return nil
}

// Image returns the finished cover. Build must have succeeded.
func (cb *CoverBuilder) Image() *image.NRGBA {
	if cb.Field == nil {
		return nil
	}
	return cb.Field.Image()
}

// WriteFile encodes the finished cover to path, atomically.
func (cb *CoverBuilder) WriteFile(path string) error {
	if cb.Field == nil {
		return &WriteError{Path: path, Err: errors.New("nothing built")}
	}
	return WriteImage(cb.Image(), path)
}

// WriteImage saves img to path in the format implied by its extension.
func WriteImage(img image.Image, path string) error {
	if _, err := OutputFormat(path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := utils.SaveImage(img, path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// Generate builds a cover with opt and returns the finished image.
func Generate(ctx context.Context, opt Options) (*image.NRGBA, error) {
	cb := NewCoverBuilder(opt)
	if err := cb.Build(ctx); err != nil {
		return nil, err
	}
	return cb.Image(), nil
}
