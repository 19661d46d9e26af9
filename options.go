package coverbuilder

import (
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/setanarut/coverbuilder/utils"
)

type Options struct {
	// Output canvas size in pixels. 1-16384 each.
	Width  int
	Height int
	// Seed for the random stream. Only used when Seeded is true;
	// otherwise the builder picks a time-based seed and records it.
	Seed   int64
	Seeded bool
	// Theme color: one of the names in ThemeNames, or a hex value (#RGB, #RRGGBB).
	// Empty means a random base hue drawn from the stream.
	Theme string
	// Optional image whose dominant color sets the base hue. Overrides Theme.
	// The kmeans method is not reproducible from Seed.
	ThemeImage       string
	ThemeImageMethod utils.PaletteMethod
	// Palette size including the highlight entry. 3-7.
	NumColors int
	// Drop the near-white highlight entry from the palette.
	NoWhite bool
	// Number of color centers. 4-10.
	NumCenters int
	// Flow distortion strength, as a fraction of canvas size. 0-1.
	// 0 disables the warp. Ideal start: 0.02-0.06.
	Distortion float64
	// Base Gaussian sigma of the first blur scale. 30-80.
	// Higher => smoother, flatter gradients.
	Blur float64
	// Saturation multiplier applied in HSV. 1.0-1.5.
	Saturation float64
	// Contrast multiplier around mid gray. 1.0-1.3.
	Contrast float64
	// Brightness multiplier applied last. 0.8-1.2.
	Brightness float64
	// Compositor grid step. 1 evaluates every pixel; larger values evaluate a
	// coarse grid and upscale it. 1-16.
	Subsample int
	// Row workers. 0 => runtime.NumCPU().
	Workers int
}

func DefaultOptions() Options {
	return Options{
		Width:      3840,
		Height:     2160,
		NumColors:  5,
		NumCenters: 6,
		Distortion: 0.03,
		Blur:       50,
		Saturation: 1.25,
		Contrast:   1.15,
		Brightness: 1.03,
		Subsample:  4,
	}
}

func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	opt.Width = size.X
	opt.Height = size.Y
	pixels := size.X * size.Y
	switch {
	case pixels <= 512*512:
		opt.Subsample = 1
	case pixels <= 1920*1080:
		opt.Subsample = 2
	default:
		opt.Subsample = 4
	}
	return opt
}

// Validate checks every option against its documented range.
// The first violation is returned.
func (o Options) Validate() error {
	checkInt := func(name string, v, lo, hi int) error {
		if v < lo || v > hi {
			return paramRangeError(name, v, lo, hi)
		}
		return nil
	}
	checkFloat := func(name string, v, lo, hi float64) error {
		if math.IsNaN(v) || v < lo || v > hi {
			return paramRangeError(name, v, lo, hi)
		}
		return nil
	}
	for _, err := range []error{
		checkInt("width", o.Width, 1, 16384),
		checkInt("height", o.Height, 1, 16384),
		checkInt("num-colors", o.NumColors, 3, 7),
		checkInt("num-centers", o.NumCenters, 4, 10),
		checkFloat("distortion", o.Distortion, 0, 1),
		checkFloat("blur", o.Blur, 30, 80),
		checkFloat("saturation", o.Saturation, 1.0, 1.5),
		checkFloat("contrast", o.Contrast, 1.0, 1.3),
		checkFloat("brightness", o.Brightness, 0.8, 1.2),
		checkInt("subsample", o.Subsample, 1, 16),
	} {
		if err != nil {
			return err
		}
	}
	if o.Workers < 0 {
		return &InvalidParameterError{Name: "workers", Value: o.Workers, Reason: "must not be negative"}
	}
	return nil
}

// ParseRatio parses an aspect ratio of the form "W:H" with both parts positive.
func ParseRatio(s string) (w, h int, err error) {
	left, right, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, &InvalidParameterError{Name: "ratio", Value: s, Reason: "want W:H"}
	}
	w, errW := strconv.Atoi(left)
	h, errH := strconv.Atoi(right)
	if errW != nil || errH != nil {
		return 0, 0, &InvalidParameterError{Name: "ratio", Value: s, Reason: "parts must be integers"}
	}
	if w <= 0 || h <= 0 {
		return 0, 0, &InvalidParameterError{Name: "ratio", Value: s, Reason: "parts must be positive"}
	}
	return w, h, nil
}

// HeightForRatio returns round(width * h / w) for a "W:H" ratio.
func HeightForRatio(width int, ratio string) (int, error) {
	rw, rh, err := ParseRatio(ratio)
	if err != nil {
		return 0, err
	}
	return int(math.Round(float64(width) * float64(rh) / float64(rw))), nil
}

// ApplyRatio overrides Height from Width and ratio. An empty ratio is a no-op.
func (o *Options) ApplyRatio(ratio string) error {
	if ratio == "" {
		return nil
	}
	h, err := HeightForRatio(o.Width, ratio)
	if err != nil {
		return err
	}
	o.Height = h
	return nil
}

// OutputFormat reports the encoder name for path, or an error for
// extensions without a lossless encoder.
func OutputFormat(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := utils.FormatForExt(ext); ok {
		return f, nil
	}
	return "", fmt.Errorf("unsupported extension %q", ext)
}
