package coverbuilder

import "math"

// Warp maps a sample coordinate to the coordinate the compositor evaluates.
type Warp interface {
	Warp(x, y float64) (float64, float64)
}

// FlowField offsets each axis by a sine/cosine wave of the other axis.
// Both axes span 4π over the canvas.
type FlowField struct {
	Strength       float64
	W, H           float64
	PhaseX, PhaseY float64
}

func NewFlowField(strength float64, w, h int, phaseX, phaseY float64) (*FlowField, error) {
	if math.IsNaN(strength) || strength < 0 || strength > 1 {
		return nil, paramRangeError("distortion", strength, 0, 1)
	}
	return &FlowField{
		Strength: strength,
		W:        float64(w),
		H:        float64(h),
		PhaseX:   phaseX,
		PhaseY:   phaseY,
	}, nil
}

// Identity reports whether the field leaves every coordinate unchanged.
func (f *FlowField) Identity() bool {
	return f == nil || f.Strength == 0
}

func (f *FlowField) Warp(x, y float64) (float64, float64) {
	if f.Identity() {
		return x, y
	}
	u := 4 * math.Pi * x / f.W
	v := 4 * math.Pi * y / f.H
	dx := math.Sin(v+math.Cos(u)+f.PhaseX) * f.Strength * f.W
	dy := math.Cos(u+math.Sin(v)+f.PhaseY) * f.Strength * f.H
	return x + dx, y + dy
}
