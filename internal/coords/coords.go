// Package coords maps the guide's logical coordinate space onto surface pixels.
package coords

import (
	"math"

	"github.com/gogpu/gg"
)

// Bounds is a rectangle in logical guide coordinates (y axis pointing up).
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// HanziBounds is the logical box used by hanzi-writer stroke data.
var HanziBounds = Bounds{MinX: 0, MinY: -124, MaxX: 1024, MaxY: 900}

// Transform maps logical coordinates to surface pixels.
// A logical point (x, y) lands at (OffsetX + x*Scale, OffsetY - y*Scale).
type Transform struct {
	OffsetX float64
	OffsetY float64
	Scale   float64
}

// Apply maps a logical point to surface pixels.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return t.OffsetX + x*t.Scale, t.OffsetY - y*t.Scale
}

// Matrix returns the transform as a gg affine matrix.
func (t Transform) Matrix() gg.Matrix {
	return gg.Matrix{
		A: t.Scale, B: 0, C: t.OffsetX,
		D: 0, E: -t.Scale, F: t.OffsetY,
	}
}

// Compute fits bounds into a width x height surface with padding on every
// side, centered, with the vertical axis flipped.
func Compute(width, height float64, b Bounds, padding float64) Transform {
	if padding < 0 {
		padding = 0
	}
	effW := width - 2*padding
	effH := height - 2*padding
	bw, bh := b.Width(), b.Height()
	if effW <= 0 || effH <= 0 || bw <= 0 || bh <= 0 {
		return Transform{OffsetX: width / 2, OffsetY: height / 2}
	}
	scale := math.Min(effW/bw, effH/bh)
	xBuf := padding + (effW-scale*bw)/2
	yBuf := padding + (effH-scale*bh)/2
	originX := -b.MinX*scale + xBuf
	originY := -b.MinY*scale + yBuf
	return Transform{
		OffsetX: originX,
		OffsetY: height - originY,
		Scale:   scale,
	}
}

// Mapper recomputes and remembers the last transform.
type Mapper struct {
	Bounds  Bounds
	Padding float64
	last    Transform
}

// NewMapper returns a mapper for the given logical bounds and padding.
func NewMapper(b Bounds, padding float64) *Mapper {
	return &Mapper{Bounds: b, Padding: padding}
}

// Update computes the transform for a surface size and stores it.
func (m *Mapper) Update(width, height int) Transform {
	m.last = Compute(float64(width), float64(height), m.Bounds, m.Padding)
	return m.last
}

// Last returns the most recently computed transform.
func (m *Mapper) Last() Transform {
	return m.last
}
