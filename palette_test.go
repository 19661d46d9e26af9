package coverbuilder

import (
	"errors"
	"math"
	"testing"
)

func TestResolveTheme(t *testing.T) {
	testCases := []struct {
		name    string
		theme   string
		wantHue float64
		wantOK  bool
		wantErr bool
	}{
		{"Empty", "", 0, false, false},
		{"Named blue", "blue", 0.6, true, false},
		{"Named mixed case", "Magenta", 0.83, true, false},
		{"Named padded", "  cyan ", 0.5, true, false},
		{"Hex red", "#FF0000", 0, true, false},
		{"Hex without hash", "00ff00", 1.0 / 3, true, false},
		{"Short hex", "#00F", 2.0 / 3, true, false},
		{"Unknown name", "not-a-color", 0, false, true},
		{"Bad hex digits", "#GG0000", 0, false, true},
		{"Bad hex length", "#12345", 0, false, true},
		{"Just hash", "#", 0, false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hue, ok, err := ResolveTheme(tc.theme)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ResolveTheme(%q) error = %v, wantErr %v", tc.theme, err, tc.wantErr)
			}
			if tc.wantErr {
				var themeErr *InvalidThemeError
				if !errors.As(err, &themeErr) {
					t.Fatalf("ResolveTheme(%q) error %T, want *InvalidThemeError", tc.theme, err)
				}
				if themeErr.Theme != tc.theme {
					t.Errorf("error names theme %q, want %q", themeErr.Theme, tc.theme)
				}
				return
			}
			if ok != tc.wantOK {
				t.Errorf("ResolveTheme(%q) ok = %v, want %v", tc.theme, ok, tc.wantOK)
			}
			if math.Abs(hue-tc.wantHue) > 1e-9 {
				t.Errorf("ResolveTheme(%q) hue = %.6f, want %.6f", tc.theme, hue, tc.wantHue)
			}
		})
	}
}

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 9 {
		t.Fatalf("got %d theme names, want 9", len(names))
	}
	for _, n := range names {
		if _, ok, err := ResolveTheme(n); !ok || err != nil {
			t.Errorf("theme %q does not resolve: ok=%v err=%v", n, ok, err)
		}
	}
}

func TestBuildPaletteSizeAndBoldRange(t *testing.T) {
	for n := 3; n <= 7; n++ {
		for _, includeWhite := range []bool{true, false} {
			for seed := range int64(20) {
				p, err := BuildPalette(0.6, n, includeWhite, newStream(seed))
				if err != nil {
					t.Fatalf("BuildPalette(n=%d) error: %v", n, err)
				}
				if len(p) != n {
					t.Fatalf("BuildPalette(n=%d) returned %d colors", n, len(p))
				}
				highlights := 0
				for i, s := range p {
					if s.Highlight {
						highlights++
						if i != n-1 {
							t.Errorf("highlight at index %d, want last", i)
						}
						continue
					}
					_, sat, val := s.Color.Hsv()
					if sat < boldSatMin-1e-9 || sat > boldSatMax+1e-9 {
						t.Errorf("n=%d seed=%d color %d saturation %.4f outside bold range", n, seed, i, sat)
					}
					if val < 0.8-1e-9 {
						t.Errorf("n=%d seed=%d color %d value %.4f too dark", n, seed, i, val)
					}
				}
				wantHighlights := 0
				if includeWhite {
					wantHighlights = 1
				}
				if highlights != wantHighlights {
					t.Errorf("n=%d white=%v: %d highlights, want %d", n, includeWhite, highlights, wantHighlights)
				}
			}
		}
	}
}

func TestBuildPaletteBaseHueFirst(t *testing.T) {
	p, err := BuildPalette(0.6, 5, true, newStream(7))
	if err != nil {
		t.Fatal(err)
	}
	h, _, _ := p[0].Color.Hsv()
	if math.Abs(h-216) > 1e-6 {
		t.Errorf("base color hue = %.4f, want 216", h)
	}
}

func TestBuildPaletteDeterministic(t *testing.T) {
	a, _ := BuildPalette(0.1, 6, true, newStream(99))
	b, _ := BuildPalette(0.1, 6, true, newStream(99))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("palette entry %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestBuildPaletteRejectsCount(t *testing.T) {
	for _, n := range []int{2, 8} {
		_, err := BuildPalette(0.5, n, true, newStream(1))
		var paramErr *InvalidParameterError
		if !errors.As(err, &paramErr) {
			t.Fatalf("BuildPalette(n=%d) error = %v, want *InvalidParameterError", n, err)
		}
		if paramErr.Name != "num-colors" {
			t.Errorf("error names %q, want num-colors", paramErr.Name)
		}
	}
}

func TestWrapHue(t *testing.T) {
	testCases := []struct{ in, want float64 }{
		{0.25, 0.25},
		{1.1, 0.1},
		{-0.2, 0.8},
		{1, 0},
		{-1e-18, 0},
	}
	for _, tc := range testCases {
		if got := wrapHue(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("wrapHue(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
