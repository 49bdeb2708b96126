package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xdraw "golang.org/x/image/draw"

	"github.com/verte-zerg/tuihanzi/internal/render"
	"github.com/verte-zerg/tuihanzi/internal/session"
)

const halfBlock = "▀"

// inkWidth is the stroke width at session.ReferenceSize.
const inkWidth = 5

// Canvas adapts a render pipeline to the terminal. Each cell shows two
// vertically stacked pixels of the downscaled surface.
type Canvas struct {
	pipe        *render.Pipeline
	supersample int
	dirty       bool
	lines       []string
}

// NewCanvas wraps pipe. Each terminal cell covers supersample x 2*supersample
// surface pixels.
func NewCanvas(pipe *render.Pipeline, supersample int) *Canvas {
	return &Canvas{pipe: pipe, supersample: max(supersample, 1), dirty: true}
}

// surfaceSize returns the pixel size backing a cols x rows cell area.
func (c *Canvas) surfaceSize(cols, rows int) (int, int) {
	return cols * c.supersample, rows * 2 * c.supersample
}

// Resize implements session.Renderer.
func (c *Canvas) Resize(width, height int) error {
	if err := c.pipe.Resize(width, height); err != nil {
		return err
	}
	scaled := inkWidth * float64(min(width, height)) / session.ReferenceSize
	c.pipe.SetInkWidth(max(scaled, 1.5*float64(c.supersample)))
	c.dirty = true
	return nil
}

// Redraw implements session.Renderer.
func (c *Canvas) Redraw(f render.Frame) error {
	if err := c.pipe.Redraw(f); err != nil {
		return err
	}
	c.dirty = true
	return nil
}

// View returns the surface as terminal lines, converting only after a redraw.
func (c *Canvas) View() []string {
	if c.dirty {
		cols := c.pipe.Width() / c.supersample
		rows := c.pipe.Height() / (2 * c.supersample)
		c.lines = halfBlocks(c.pipe.Image(), cols, rows)
		c.dirty = false
	}
	return c.lines
}

// halfBlocks downsamples img to cols x 2*rows pixels and encodes each pair
// of rows as upper-half-block cells.
func halfBlocks(img image.Image, cols, rows int) []string {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	small := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	xdraw.BiLinear.Scale(small, small.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	lines := make([]string, rows)
	for row := 0; row < rows; row++ {
		var b strings.Builder
		runStart := 0
		var runTop, runBottom color.RGBA
		flush := func(end int) {
			if end <= runStart {
				return
			}
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hexColor(runTop))).
				Background(lipgloss.Color(hexColor(runBottom)))
			b.WriteString(style.Render(strings.Repeat(halfBlock, end-runStart)))
		}
		for col := 0; col < cols; col++ {
			top := small.RGBAAt(col, row*2)
			bottom := small.RGBAAt(col, row*2+1)
			if col > 0 && (top != runTop || bottom != runBottom) {
				flush(col)
				runStart = col
			}
			runTop, runBottom = top, bottom
		}
		flush(cols)
		lines[row] = b.String()
	}
	return lines
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
