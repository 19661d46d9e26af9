package coverbuilder

import (
	"errors"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/coverbuilder/utils"
)

// Base hues in [0,1) for the named themes.
var themeHues = map[string]float64{
	"red":     0.0,
	"orange":  0.08,
	"yellow":  0.16,
	"green":   0.33,
	"cyan":    0.5,
	"blue":    0.6,
	"purple":  0.75,
	"magenta": 0.83,
	"pink":    0.9,
}

// ThemeNames returns the accepted theme names in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themeHues))
	for n := range themeHues {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ResolveTheme maps a theme name or hex color to a base hue in [0,1).
// ok is false for an empty theme, which means "draw a random hue".
func ResolveTheme(theme string) (hue float64, ok bool, err error) {
	t := strings.ToLower(strings.TrimSpace(theme))
	if t == "" {
		return 0, false, nil
	}
	if h, found := themeHues[t]; found {
		return h, true, nil
	}
	if !strings.HasPrefix(t, "#") {
		t = "#" + t
	}
	if len(t) != 4 && len(t) != 7 {
		return 0, false, &InvalidThemeError{Theme: theme}
	}
	c, herr := colorful.Hex(t)
	if herr != nil {
		return 0, false, &InvalidThemeError{Theme: theme}
	}
	h, _, _ := c.Hsv()
	return wrapHue(h / 360), true, nil
}

// themeImageHue returns the hue of the most dominant color of the image at path.
func themeImageHue(path string, method utils.PaletteMethod) (float64, error) {
	img, err := utils.ReadImage(path)
	if err != nil {
		return 0, &InvalidThemeError{Theme: path, Err: err}
	}
	palette := utils.ExtractPalette(img, 3, method)
	if len(palette) == 0 {
		return 0, &InvalidThemeError{Theme: path, Err: errors.New("no colors found")}
	}
	h, _, _ := palette[0].Hsv()
	return wrapHue(h / 360), nil
}

// Swatch is one palette entry. Highlight marks the near-white entry,
// which is exempt from the bold saturation range.
type Swatch struct {
	Color     colorful.Color
	Highlight bool
}

type Palette []Swatch

// Colors returns the palette colors in order.
func (p Palette) Colors() []colorful.Color {
	out := make([]colorful.Color, len(p))
	for i, s := range p {
		out[i] = s.Color
	}
	return out
}

const (
	boldSatMin = 0.65
	boldSatMax = 0.95

	highlightSat = 0.04
)

// BuildPalette returns exactly n swatches around baseHue (in [0,1)).
// Draws per entry, in order: the base color takes s, v; the second takes a
// complementary coin, then (if analogous) an offset and a sign, then s, v;
// the rest take a hue offset, s, v. The highlight draws nothing.
func BuildPalette(baseHue float64, n int, includeWhite bool, rng *rand.Rand) (Palette, error) {
	if n < 3 || n > 7 {
		return nil, paramRangeError("num-colors", n, 3, 7)
	}
	colored := n
	if includeWhite {
		colored--
	}
	p := make(Palette, 0, n)
	for i := range colored {
		var hue, sat, val float64
		switch i {
		case 0:
			hue = baseHue
			sat = uniform(rng, 0.75, 0.95)
			val = uniform(rng, 0.85, 1.0)
		case 1:
			if rng.Float64() > 0.5 {
				hue = baseHue + 0.5
			} else {
				offset := uniform(rng, 1.0/12, 1.0/6)
				if rng.Float64() < 0.5 {
					offset = -offset
				}
				hue = baseHue + offset
			}
			sat = uniform(rng, 0.70, 0.95)
			val = uniform(rng, 0.80, 1.0)
		default:
			hue = baseHue + uniform(rng, -0.3, 0.3)
			sat = uniform(rng, boldSatMin, boldSatMax)
			val = uniform(rng, 0.80, 1.0)
		}
		p = append(p, Swatch{Color: colorful.Hsv(wrapHue(hue)*360, sat, val)})
	}
	if includeWhite {
		p = append(p, Swatch{
			Color:     colorful.Hsv(wrapHue(baseHue)*360, highlightSat, 1.0),
			Highlight: true,
		})
	}
	return p, nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

func wrapHue(h float64) float64 {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	if h >= 1 {
		h = 0
	}
	return h
}
