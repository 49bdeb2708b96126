package coords

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeSquareSurface(t *testing.T) {
	tr := Compute(1084, 1084, HanziBounds, 30)
	if !almostEqual(tr.Scale, 1) {
		t.Fatalf("expected scale 1, got %f", tr.Scale)
	}
	// Logical (0, 900) is the top-left corner of the box, one padding in.
	x, y := tr.Apply(0, 900)
	if !almostEqual(x, 30) || !almostEqual(y, 30) {
		t.Fatalf("expected top-left at (30,30), got (%f,%f)", x, y)
	}
	x, y = tr.Apply(1024, -124)
	if !almostEqual(x, 1054) || !almostEqual(y, 1054) {
		t.Fatalf("expected bottom-right at (1054,1054), got (%f,%f)", x, y)
	}
}

func TestComputeFlipsVerticalAxis(t *testing.T) {
	tr := Compute(300, 300, HanziBounds, 0)
	_, low := tr.Apply(0, 0)
	_, high := tr.Apply(0, 500)
	if high >= low {
		t.Fatalf("expected larger logical y to map higher on screen: %f vs %f", high, low)
	}
}

func TestComputeCentersNonSquare(t *testing.T) {
	tr := Compute(400, 200, HanziBounds, 0)
	scale := 200.0 / 1024.0
	if !almostEqual(tr.Scale, scale) {
		t.Fatalf("expected scale %f, got %f", scale, tr.Scale)
	}
	left, _ := tr.Apply(0, 0)
	right, _ := tr.Apply(1024, 0)
	if !almostEqual(left, 400-right) {
		t.Fatalf("expected horizontal centering, got left=%f right=%f", left, right)
	}
}

func TestComputeDegenerateSurface(t *testing.T) {
	tr := Compute(40, 40, HanziBounds, 30)
	if tr.Scale != 0 || math.IsNaN(tr.OffsetX) || math.IsNaN(tr.OffsetY) {
		t.Fatalf("expected zero scale without NaN, got %+v", tr)
	}
}

func TestMatrixMatchesApply(t *testing.T) {
	tr := Compute(256, 256, HanziBounds, 10)
	m := tr.Matrix()
	for _, p := range [][2]float64{{0, 0}, {512, 388}, {1024, 900}} {
		wantX, wantY := tr.Apply(p[0], p[1])
		gotX := m.A*p[0] + m.B*p[1] + m.C
		gotY := m.D*p[0] + m.E*p[1] + m.F
		if !almostEqual(gotX, wantX) || !almostEqual(gotY, wantY) {
			t.Fatalf("matrix mismatch for %v: got (%f,%f) want (%f,%f)", p, gotX, gotY, wantX, wantY)
		}
	}
}

func TestMapperResizeChangesTransform(t *testing.T) {
	m := NewMapper(HanziBounds, 30)
	small := m.Update(200, 200)
	if m.Last() != small {
		t.Fatalf("expected Last to return latest transform")
	}
	large := m.Update(400, 400)
	if large.Scale <= small.Scale {
		t.Fatalf("expected scale to grow with surface: %f -> %f", small.Scale, large.Scale)
	}
	if large == small {
		t.Fatalf("expected transform to change on resize")
	}
}
