package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// Series is a named sequence of values to plot.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight = 8
	minPlotWidth      = 10
	plotGutter        = " │ "
	plotLabelWidth    = 4
	fallbackWidth     = 80
	ansiReset         = "\x1b[0m"
)

var seriesColors = []string{"\x1b[34m", "\x1b[33m", "\x1b[32m", "\x1b[35m"}

// braille dot bits indexed by [row][col] within a 2x4 cell.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// PlotSeries writes a braille line chart, each series scaled to its own range.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	return PlotSeriesWithColor(w, title, series, width, height, false)
}

// PlotSeriesWithColor is PlotSeries with color forced on when forceColor is set.
func PlotSeriesWithColor(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	var nonEmpty []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)
	color := useColor(w, forceColor)

	// owner[y][x] is the first series touching a cell, -1 for none.
	masks := make([][]uint8, height)
	owner := make([][]int, height)
	for y := range masks {
		masks[y] = make([]uint8, width)
		owner[y] = make([]int, width)
		for x := range owner[y] {
			owner[y][x] = -1
		}
	}
	dotsH := height * 4
	var ranges []string
	for si, s := range nonEmpty {
		values := resample(s.Values, width)
		lo, hi := bounds(s.Values)
		ranges = append(ranges, fmt.Sprintf("%s: %.1f..%.1f", s.Name, lo, hi))
		if hi-lo < 1e-9 {
			lo, hi = lo-1, hi+1
		}
		prevX, prevY := -1, -1
		for i, v := range values {
			x := i * 2
			y := int(math.Round((hi - v) / (hi - lo) * float64(dotsH-1)))
			y = min(max(y, 0), dotsH-1)
			plot := func(px, py int) {
				cy, cx := py/4, px/2
				if cy >= height || cx >= width {
					return
				}
				masks[cy][cx] |= brailleBits[py%4][px%2]
				if owner[cy][cx] < 0 {
					owner[cy][cx] = si
				}
			}
			if prevX < 0 {
				plot(x, y)
			} else {
				line(prevX, prevY, x, y, plot)
			}
			prevX, prevY = x, y
		}
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	b.WriteString(strings.Join(ranges, "  ") + "\n")
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = "max"
		case height - 1:
			label = "min"
		}
		b.WriteString(fmt.Sprintf("%*s%s", plotLabelWidth, label, plotGutter))
		for x := 0; x < width; x++ {
			r := rune(0x2800 + int(masks[y][x]))
			if color && owner[y][x] >= 0 {
				b.WriteString(seriesColors[owner[y][x]%len(seriesColors)] + string(r) + ansiReset)
				continue
			}
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	legend := make([]string, 0, len(nonEmpty))
	for i, s := range nonEmpty {
		item := "⣿ " + s.Name
		if color {
			item = seriesColors[i%len(seriesColors)] + item + ansiReset
		}
		legend = append(legend, item)
	}
	b.WriteString("Legend: " + strings.Join(legend, "  ") + "\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// PlotWidthFor returns the chart width that fits totalWidth columns.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	return max(totalWidth-plotLabelWidth-displayWidth(plotGutter), minPlotWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

func useColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// resample stretches or squeezes values to n points. Squeezing averages
// buckets; stretching interpolates linearly.
func resample(values []float64, n int) []float64 {
	out := make([]float64, n)
	switch {
	case len(values) == 0 || n == 0:
		return out
	case len(values) == 1:
		for i := range out {
			out[i] = values[0]
		}
		return out
	case len(values) >= n:
		for i := range out {
			start := i * len(values) / n
			end := max((i+1)*len(values)/n, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
		return out
	}
	for i := range out {
		pos := float64(i) * float64(len(values)-1) / float64(max(n-1, 1))
		idx := int(pos)
		if idx >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = values[idx]*(1-frac) + values[idx+1]*frac
	}
	return out
}

func bounds(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// line walks the Bresenham line between two dots.
func line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
