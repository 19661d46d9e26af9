package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/setanarut/coverbuilder"
	"github.com/setanarut/coverbuilder/utils"
)

// Exit codes
const (
	ExitOK           = 0
	ExitError        = 1
	ExitInvalidTheme = 2
	ExitInvalidParam = 3
	ExitWrite        = 4
	ExitUsage        = 64
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("coverbuilder", flag.ContinueOnError)
	fs.SetOutput(stderr)
	def := coverbuilder.DefaultOptions()

	opt := def
	var output, ratio, theme, themeImage, themeMethod, paletteOut string
	var seed int64
	var subsample int
	fs.StringVar(&output, "output", "cover.png", "output file (.png, .bmp, .tif, .tiff)")
	fs.StringVar(&output, "o", "cover.png", "shorthand for -output")
	fs.IntVar(&opt.Width, "width", def.Width, "image width")
	fs.IntVar(&opt.Width, "w", def.Width, "shorthand for -width")
	fs.IntVar(&opt.Height, "height", def.Height, "image height")
	fs.StringVar(&ratio, "ratio", "", "aspect ratio W:H, overrides -height")
	fs.StringVar(&ratio, "r", "", "shorthand for -ratio")
	fs.StringVar(&theme, "theme-color", "", "theme color: hex or one of "+strings.Join(coverbuilder.ThemeNames(), ", "))
	fs.StringVar(&theme, "c", "", "shorthand for -theme-color")
	fs.StringVar(&themeImage, "theme-image", "", "take the theme hue from this image's dominant color")
	fs.StringVar(&themeMethod, "theme-method", "dominantcolor", "theme image method: dominantcolor or kmeans")
	fs.IntVar(&opt.NumColors, "num-colors", def.NumColors, "palette colors (3-7)")
	fs.BoolVar(&opt.NoWhite, "no-white", false, "exclude the white highlight from the palette")
	fs.IntVar(&opt.NumCenters, "num-centers", def.NumCenters, "color centers (4-10)")
	fs.Float64Var(&opt.Distortion, "distortion", def.Distortion, "flow distortion strength (0-1)")
	fs.Float64Var(&opt.Blur, "blur", def.Blur, "base blur sigma (30-80)")
	fs.Float64Var(&opt.Saturation, "saturation", def.Saturation, "saturation boost (1.0-1.5)")
	fs.Float64Var(&opt.Contrast, "contrast", def.Contrast, "contrast boost (1.0-1.3)")
	fs.Float64Var(&opt.Brightness, "brightness", def.Brightness, "brightness boost (0.8-1.2)")
	fs.Int64Var(&seed, "seed", 0, "random seed for reproducible output")
	fs.IntVar(&subsample, "subsample", 0, "compositor grid step (1-16, default from size)")
	fs.IntVar(&opt.Workers, "workers", 0, "worker goroutines (0 = all CPUs)")
	fs.StringVar(&paletteOut, "palette-out", "", "also write the palette as a swatch image")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		return ExitUsage
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opt.Seeded = true
		}
	})

	if err := opt.ApplyRatio(ratio); err != nil {
		return report(stderr, err)
	}
	opt.Seed = seed
	opt.Theme = theme
	opt.ThemeImage = themeImage
	method, err := utils.ParsePaletteMethod(themeMethod)
	if err != nil {
		return report(stderr, &coverbuilder.InvalidParameterError{Name: "theme-method", Value: themeMethod, Reason: err.Error()})
	}
	opt.ThemeImageMethod = method
	if subsample > 0 {
		opt.Subsample = subsample
	} else {
		opt.Subsample = coverbuilder.OptionsFromSize(image.Pt(opt.Width, opt.Height)).Subsample
	}
	if _, err := coverbuilder.OutputFormat(output); err != nil {
		return report(stderr, &coverbuilder.WriteError{Path: output, Err: err})
	}

	cb := coverbuilder.NewCoverBuilder(opt)
	cb.Logger = log.New(stderr, "", 0)
	if err := cb.Build(ctx); err != nil {
		return report(stderr, err)
	}
	if err := cb.WriteFile(output); err != nil {
		return report(stderr, err)
	}
	if paletteOut != "" {
		if err := utils.SavePalette(cb.Palette.Colors(), 64, paletteOut); err != nil {
			return report(stderr, &coverbuilder.WriteError{Path: paletteOut, Err: err})
		}
	}

	fmt.Fprintf(stdout, "cover saved to %s (%dx%d, %d colors, %d centers, seed %d)\n",
		output, opt.Width, opt.Height, len(cb.Palette), len(cb.Centers), cb.Seed)
	return ExitOK
}

func report(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "error: %v\n", err)
	var (
		themeErr *coverbuilder.InvalidThemeError
		paramErr *coverbuilder.InvalidParameterError
		writeErr *coverbuilder.WriteError
	)
	switch {
	case errors.As(err, &themeErr):
		return ExitInvalidTheme
	case errors.As(err, &paramErr):
		return ExitInvalidParam
	case errors.As(err, &writeErr):
		return ExitWrite
	}
	return ExitError
}
