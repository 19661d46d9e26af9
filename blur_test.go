package coverbuilder

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"testing"
)

func randomField(w, h int, seed uint64) *Field {
	rng := rand.New(rand.NewPCG(seed, 1))
	f := NewField(w, h)
	for i := range f.Pix {
		f.Pix[i] = rng.Float64()
	}
	return f
}

func TestBoxSizes(t *testing.T) {
	testCases := []struct {
		sigma float64
		want  []int
	}{
		{50, []int{99, 99, 101}},
		{1, []int{1, 1, 3}},
		{0.1, []int{1, 1, 1}},
	}
	for _, tc := range testCases {
		got := boxSizes(tc.sigma, 3)
		if !slices.Equal(got, tc.want) {
			t.Errorf("boxSizes(%v) = %v, want %v", tc.sigma, got, tc.want)
		}
		for _, s := range got {
			if s%2 != 1 {
				t.Errorf("boxSizes(%v) has even width %d", tc.sigma, s)
			}
		}
	}
}

func TestMultiScaleBlurKeepsConstantField(t *testing.T) {
	f := NewField(40, 30)
	for i := range f.Pix {
		f.Pix[i] = 0.7
	}
	if err := MultiScaleBlur(context.Background(), f, 50, 0); err != nil {
		t.Fatal(err)
	}
	for i, v := range f.Pix {
		if math.Abs(v-0.7) > 1e-9 {
			t.Fatalf("Pix[%d] = %v, want 0.7", i, v)
		}
	}
}

func TestMultiScaleBlurPreservesRange(t *testing.T) {
	f := randomField(64, 48, 3)
	inLo, inHi := f.Range()
	if err := MultiScaleBlur(context.Background(), f, 30, 2); err != nil {
		t.Fatal(err)
	}
	lo, hi := f.Range()
	if lo < inLo-1e-9 || hi > inHi+1e-9 {
		t.Errorf("range [%v, %v] grew beyond input [%v, %v]", lo, hi, inLo, inHi)
	}
	if hi-lo >= inHi-inLo {
		t.Errorf("blur did not narrow the range: [%v, %v]", lo, hi)
	}
}

func TestMultiScaleBlurStepEdgeSymmetric(t *testing.T) {
	f := NewField(50, 1)
	for x := range 50 {
		v := 0.0
		if x >= 25 {
			v = 1
		}
		f.Set(x, 0, colorfulGray(v))
	}
	if err := MultiScaleBlur(context.Background(), f, 30, 1); err != nil {
		t.Fatal(err)
	}
	left, right := f.At(0, 0).R, f.At(49, 0).R
	if left >= right {
		t.Errorf("edge ordering lost: left %v right %v", left, right)
	}
	if math.Abs(f.At(24, 0).R-(1-f.At(25, 0).R)) > 1e-9 {
		t.Errorf("step edge not symmetric: %v vs %v", f.At(24, 0).R, f.At(25, 0).R)
	}
}

func TestMultiScaleBlurRejectsSigma(t *testing.T) {
	f := NewField(4, 4)
	for _, s := range []float64{0, -5, math.NaN()} {
		if err := MultiScaleBlur(context.Background(), f, s, 1); err == nil {
			t.Errorf("MultiScaleBlur(sigma=%v) accepted", s)
		}
	}
}

func TestMultiScaleBlurWorkersDeterministic(t *testing.T) {
	a := randomField(33, 21, 9)
	b := a.Clone()
	if err := MultiScaleBlur(context.Background(), a, 40, 1); err != nil {
		t.Fatal(err)
	}
	if err := MultiScaleBlur(context.Background(), b, 40, 8); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a.Pix, b.Pix) {
		t.Error("worker count changed blur output")
	}
}
