// Package render redraws the practice surface from state.
package render

import (
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"

	"github.com/verte-zerg/tuihanzi/internal/coords"
	"github.com/verte-zerg/tuihanzi/internal/guide"
	"github.com/verte-zerg/tuihanzi/internal/input"
	"github.com/verte-zerg/tuihanzi/internal/model"
)

// Palette holds the surface colors and line widths.
type Palette struct {
	Background string
	Grid       string
	Completed  string
	Pending    string
	Ink        string
	GridWidth  float64
	InkWidth   float64
}

// DefaultPalette returns the standard practice colors.
func DefaultPalette() Palette {
	return Palette{
		Background: "#ffffff",
		Grid:       "#dbeafe",
		Completed:  "#2563eb",
		Pending:    "#d4d4d8",
		Ink:        "#2563eb",
		GridWidth:  1,
		InkWidth:   5,
	}
}

// Frame is everything a redraw depends on.
type Frame struct {
	State     model.PracticeState
	Guide     *guide.Path
	Transform coords.Transform
	Live      []input.Point
}

// Pipeline owns the drawing surface.
type Pipeline struct {
	dc      *gg.Context
	palette Palette
}

// New returns a pipeline with a width x height surface.
func New(width, height int, palette Palette) (*Pipeline, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	return &Pipeline{dc: gg.NewContext(width, height), palette: palette}, nil
}

// Width returns the surface width in pixels.
func (p *Pipeline) Width() int { return p.dc.Width() }

// Height returns the surface height in pixels.
func (p *Pipeline) Height() int { return p.dc.Height() }

// Palette returns the active palette.
func (p *Pipeline) Palette() Palette { return p.palette }

// SetInkWidth changes the live ink width.
func (p *Pipeline) SetInkWidth(width float64) {
	p.palette.InkWidth = width
}

// Resize changes the surface size. Contents are discarded.
func (p *Pipeline) Resize(width, height int) error {
	if err := p.dc.Resize(width, height); err != nil {
		return fmt.Errorf("failed to resize surface: %w", err)
	}
	return nil
}

// Redraw clears the surface and paints grid, guide and live ink.
func (p *Pipeline) Redraw(f Frame) error {
	dc := p.dc
	dc.Identity()
	dc.ClearWithColor(gg.Hex(p.palette.Background))
	if err := p.drawGrid(); err != nil {
		return fmt.Errorf("failed to draw grid: %w", err)
	}
	if err := p.drawGuide(f); err != nil {
		return fmt.Errorf("failed to draw guide: %w", err)
	}
	if err := p.drawInk(f.Live); err != nil {
		return fmt.Errorf("failed to draw ink: %w", err)
	}
	return nil
}

func (p *Pipeline) drawGrid() error {
	dc := p.dc
	w, h := float64(dc.Width()), float64(dc.Height())
	half := p.palette.GridWidth / 2
	dc.SetHexColor(p.palette.Grid)
	dc.SetLineWidth(p.palette.GridWidth)
	dc.SetLineCap(gg.LineCapButt)
	dc.SetLineJoin(gg.LineJoinMiter)
	dc.DrawRectangle(half, half, w-2*half, h-2*half)
	if err := dc.Stroke(); err != nil {
		return err
	}
	dc.MoveTo(w/2, 0)
	dc.LineTo(w/2, h)
	dc.MoveTo(0, h/2)
	dc.LineTo(w, h/2)
	dc.MoveTo(0, 0)
	dc.LineTo(w, h)
	dc.MoveTo(w, 0)
	dc.LineTo(0, h)
	return dc.Stroke()
}

func (p *Pipeline) drawGuide(f Frame) error {
	if f.Guide.Len() == 0 || f.Transform.Scale <= 0 {
		return nil
	}
	dc := p.dc
	completed := min(f.State.CompletedCount, f.Guide.Len())
	for i, stroke := range f.Guide.Strokes {
		dc.SetTransform(f.Transform.Matrix())
		tracePath(dc, stroke)
		dc.Identity()
		if i < completed {
			dc.SetHexColor(p.palette.Completed)
		} else {
			dc.SetHexColor(p.palette.Pending)
		}
		if err := dc.Fill(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) drawInk(points []input.Point) error {
	if len(points) < 2 {
		return nil
	}
	dc := p.dc
	dc.SetHexColor(p.palette.Ink)
	dc.SetLineWidth(p.palette.InkWidth)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.MoveTo(points[0].X, points[0].Y)
	for _, pt := range points[1:] {
		dc.LineTo(pt.X, pt.Y)
	}
	return dc.Stroke()
}

// tracePath replays a path through the context so the current transform applies.
func tracePath(dc *gg.Context, path *gg.Path) {
	for _, elem := range path.Elements() {
		switch e := elem.(type) {
		case gg.MoveTo:
			dc.MoveTo(e.Point.X, e.Point.Y)
		case gg.LineTo:
			dc.LineTo(e.Point.X, e.Point.Y)
		case gg.QuadTo:
			dc.QuadraticTo(e.Control.X, e.Control.Y, e.Point.X, e.Point.Y)
		case gg.CubicTo:
			dc.CubicTo(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Point.X, e.Point.Y)
		case gg.Close:
			dc.ClosePath()
		}
	}
}

// Image returns the current surface.
func (p *Pipeline) Image() image.Image {
	return p.dc.Image()
}

// SavePNG writes the surface to a PNG file.
func (p *Pipeline) SavePNG(path string) error {
	return p.dc.SavePNG(path)
}

// EncodePNG writes the surface as PNG.
func (p *Pipeline) EncodePNG(w io.Writer) error {
	return p.dc.EncodePNG(w)
}
