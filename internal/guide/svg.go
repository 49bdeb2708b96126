package guide

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
)

// ParseStrokes converts SVG path data strings into outlines.
func ParseStrokes(data []string) ([]*gg.Path, error) {
	out := make([]*gg.Path, 0, len(data))
	for i, d := range data {
		p, err := ParsePathData(d)
		if err != nil {
			return nil, fmt.Errorf("stroke %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ParsePathData parses SVG path data using the M, L, H, V, Q, C and Z
// commands in both absolute and relative form.
func ParsePathData(d string) (*gg.Path, error) {
	toks, err := tokenizePath(d)
	if err != nil {
		return nil, err
	}
	p := gg.NewPath()
	var (
		cmd        byte
		cur, start gg.Point
		hasPoint   bool
	)
	i := 0
	num := func() (float64, error) {
		if i >= len(toks) || toks[i].isCmd {
			return 0, fmt.Errorf("command %q: missing number", cmd)
		}
		v := toks[i].val
		i++
		return v, nil
	}
	pair := func(rel bool) (gg.Point, error) {
		x, err := num()
		if err != nil {
			return gg.Point{}, err
		}
		y, err := num()
		if err != nil {
			return gg.Point{}, err
		}
		if rel {
			return gg.Pt(cur.X+x, cur.Y+y), nil
		}
		return gg.Pt(x, y), nil
	}

	for i < len(toks) {
		if toks[i].isCmd {
			cmd = toks[i].cmd
			i++
		} else if cmd == 0 {
			return nil, fmt.Errorf("path data must start with a command")
		}
		rel := cmd >= 'a' && cmd <= 'z'
		if cmd != 'M' && cmd != 'm' && !hasPoint {
			return nil, fmt.Errorf("command %q before moveto", cmd)
		}
		switch cmd {
		case 'M', 'm':
			pt, err := pair(rel && hasPoint)
			if err != nil {
				return nil, err
			}
			p.MoveTo(pt.X, pt.Y)
			cur, start, hasPoint = pt, pt, true
			// Extra coordinate pairs after a moveto are implicit linetos.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L', 'l':
			pt, err := pair(rel)
			if err != nil {
				return nil, err
			}
			p.LineTo(pt.X, pt.Y)
			cur = pt
		case 'H', 'h':
			x, err := num()
			if err != nil {
				return nil, err
			}
			if rel {
				x += cur.X
			}
			cur = gg.Pt(x, cur.Y)
			p.LineTo(cur.X, cur.Y)
		case 'V', 'v':
			y, err := num()
			if err != nil {
				return nil, err
			}
			if rel {
				y += cur.Y
			}
			cur = gg.Pt(cur.X, y)
			p.LineTo(cur.X, cur.Y)
		case 'Q', 'q':
			c, err := pair(rel)
			if err != nil {
				return nil, err
			}
			pt, err := pair(rel)
			if err != nil {
				return nil, err
			}
			p.QuadraticTo(c.X, c.Y, pt.X, pt.Y)
			cur = pt
		case 'C', 'c':
			c1, err := pair(rel)
			if err != nil {
				return nil, err
			}
			c2, err := pair(rel)
			if err != nil {
				return nil, err
			}
			pt, err := pair(rel)
			if err != nil {
				return nil, err
			}
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, pt.X, pt.Y)
			cur = pt
		case 'Z', 'z':
			p.Close()
			cur = start
			// Z takes no arguments; a following number is malformed.
			if i < len(toks) && !toks[i].isCmd {
				return nil, fmt.Errorf("unexpected number after closepath")
			}
		default:
			return nil, fmt.Errorf("unsupported path command %q", cmd)
		}
	}
	if !hasPoint {
		return nil, fmt.Errorf("path data is empty")
	}
	return p, nil
}

type pathToken struct {
	isCmd bool
	cmd   byte
	val   float64
}

func tokenizePath(d string) ([]pathToken, error) {
	var toks []pathToken
	i := 0
	for i < len(d) {
		ch := d[i]
		switch {
		case ch == ' ' || ch == ',' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case strings.IndexByte("MmLlHhVvQqCcZz", ch) >= 0:
			toks = append(toks, pathToken{isCmd: true, cmd: ch})
			i++
		case ch == '-' || ch == '+' || ch == '.' || (ch >= '0' && ch <= '9'):
			j := scanNumber(d, i)
			v, err := strconv.ParseFloat(d[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q: %w", d[i:j], err)
			}
			toks = append(toks, pathToken{val: v})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q at %d", ch, i)
		}
	}
	return toks, nil
}

func scanNumber(d string, i int) int {
	j := i
	if d[j] == '-' || d[j] == '+' {
		j++
	}
	seenDot := false
	for j < len(d) {
		ch := d[j]
		if ch >= '0' && ch <= '9' {
			j++
			continue
		}
		if ch == '.' && !seenDot {
			seenDot = true
			j++
			continue
		}
		if (ch == 'e' || ch == 'E') && j+1 < len(d) {
			k := j + 1
			if d[k] == '-' || d[k] == '+' {
				k++
			}
			if k < len(d) && d[k] >= '0' && d[k] <= '9' {
				j = k
				for j < len(d) && d[j] >= '0' && d[j] <= '9' {
					j++
				}
			}
		}
		break
	}
	return j
}
