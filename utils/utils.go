package utils

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// ParsePaletteMethod is the inverse of PaletteMethod.String.
func ParsePaletteMethod(s string) (PaletteMethod, error) {
	switch strings.ToLower(s) {
	case "", "dominantcolor":
		return PaletteMethodDominantColor, nil
	case "kmeans":
		return PaletteMethodKMeans, nil
	}
	return 0, fmt.Errorf("unknown palette method %q", s)
}

type weightedColor struct {
	Col    colorful.Color
	Weight float64
}

// SortPaletteByBrightness orders colors from darkest to brightest by relative luminance.
func SortPaletteByBrightness(palette []colorful.Color) {
	luma := func(c colorful.Color) float64 {
		r, g, b := c.LinearRgb()
		return 0.2126*r + 0.7152*g + 0.0722*b
	}
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		la, lb := luma(a), luma(b)
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		}
		return 0
	})
}

func ExtractDominantPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	candidates := dominantcolor.FindWeight(img, max(24, k*8))
	if len(candidates) == 0 {
		log.Println("palette warning: no dominant colors found, using mid gray")
		candidates = append(candidates, dominantcolor.Color{
			RGBA:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
			Weight: 1.0,
		})
	}
	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		weighted = append(weighted, weightedColor{Col: col.Clamped(), Weight: max(c.Weight, 1e-6)})
	}
	return selectDiverse(weighted, k)
}

// selectDiverse picks k colors, starting from the heaviest and then greedily
// taking the candidate farthest (in Lab) from those already picked, scaled by weight.
func selectDiverse(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	k = min(k, len(cands))
	labs := make([][3]float64, len(cands))
	maxW := 1e-6
	seed := 0
	for i, c := range cands {
		l, a, b := c.Col.Lab()
		labs[i] = [3]float64{l, a, b}
		if c.Weight > maxW {
			maxW = c.Weight
			seed = i
		}
	}

	picked := []int{seed}
	used := make([]bool, len(cands))
	used[seed] = true
	for len(picked) < k {
		best, bestScore := -1, -1.0
		for i := range cands {
			if used[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range picked {
				d0 := labs[i][0] - labs[s][0]
				d1 := labs[i][1] - labs[s][1]
				d2 := labs[i][2] - labs[s][2]
				minD2 = min(minD2, d0*d0+d1*d1+d2*d2)
			}
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(cands[i].Weight/maxW))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		picked = append(picked, best)
	}

	out := make([]colorful.Color, len(picked))
	for i, idx := range picked {
		out[i] = cands[idx].Col
	}
	return out
}

// ExtractKMeansPalette clusters a subsample of img in RGB. Results vary
// between runs because cluster seeding is not controllable.
func ExtractKMeansPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	// Subsample to keep kmeans tractable on large images.
	const maxSamples = 12000
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/maxSamples)) + 1
	}
	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	workK := min(max(k*4, k+2), len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}
	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		weighted = append(weighted, weightedColor{Col: col, Weight: float64(len(c.Observations))})
	}
	return selectDiverse(weighted, k)
}

// ExtractPalette returns up to k colors of img, most dominant first.
func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	switch method {
	case PaletteMethodKMeans:
		p := ExtractKMeansPalette(img, k)
		if len(p) != 0 {
			return p
		}
		log.Println("palette warning: kmeans returned empty palette, falling back to dominantcolor")
		return ExtractDominantPalette(img, k)
	default:
		return ExtractDominantPalette(img, k)
	}
}

func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

type encodeFunc func(io.Writer, image.Image) error

var encoders = map[string]struct {
	name string
	enc  encodeFunc
}{
	".png":  {"png", png.Encode},
	".bmp":  {"bmp", bmp.Encode},
	".tif":  {"tiff", encodeTIFF},
	".tiff": {"tiff", encodeTIFF},
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

// FormatForExt returns the lossless format written for a file extension
// (with leading dot, any case).
func FormatForExt(ext string) (string, bool) {
	e, ok := encoders[strings.ToLower(ext)]
	return e.name, ok
}

// SaveImage encodes img in the format implied by the filename extension.
// The file is written to a temp file next to filename and renamed into place,
// so a failed save never leaves a partial file behind.
func SaveImage(img image.Image, filename string) error {
	e, ok := encoders[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return fmt.Errorf("unsupported image extension %q", filepath.Ext(filename))
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), ".cover-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := e.enc(tmp, img); err != nil {
		return fmt.Errorf("encode %s: %w", e.name, err)
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, filename)
}

// SavePalette writes the palette as a row of square tiles.
func SavePalette(palette []colorful.Color, tileSize int, filename string) error {
	if len(palette) == 0 {
		return fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}

	w := tileSize * len(palette)
	h := tileSize
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, c := range palette {
		r, g, b := c.Clamped().RGB255()
		x0 := i * tileSize
		for y := range h {
			for x := x0; x < x0+tileSize; x++ {
				img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
			}
		}
	}
	return SaveImage(img, filename)
}
