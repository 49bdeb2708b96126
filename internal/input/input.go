// Package input turns pointer events into freehand strokes.
package input

// Point is a position in surface pixels.
type Point struct {
	X, Y float64
}

// Rect is the on-screen bounding box of the surface in device units.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// Event is a raw pointer event in device coordinates.
type Event struct {
	PointerID int
	X, Y      float64
	Bounds    Rect
}

// State is the capture state.
type State int

const (
	// Idle waits for a pointer press.
	Idle State = iota
	// Drawing collects points for the current stroke.
	Drawing
)

func (s State) String() string {
	if s == Drawing {
		return "drawing"
	}
	return "idle"
}

// MinCommitPoints is the smallest stroke that counts as a stroke.
const MinCommitPoints = 2

// Capturer grants exclusive ownership of a pointer stream.
// The returned function releases it and must be safe to call once.
type Capturer interface {
	Acquire(pointerID int) (release func())
}

// CapturerFunc adapts a function to Capturer.
type CapturerFunc func(pointerID int) func()

// Acquire implements Capturer.
func (f CapturerFunc) Acquire(pointerID int) func() {
	return f(pointerID)
}

// Capture is the Idle/Drawing state machine holding the single stroke buffer.
type Capture struct {
	capturer Capturer
	commit   func([]Point)

	surfaceW, surfaceH float64

	state   State
	pointer int
	stroke  []Point
	release func()
}

// New returns a capture that reports committed strokes to commit.
// A nil capturer grants ownership unconditionally.
func New(capturer Capturer, commit func([]Point)) *Capture {
	return &Capture{capturer: capturer, commit: commit}
}

// SetSurface sets the surface size in pixels used to map device coordinates.
func (c *Capture) SetSurface(width, height int) {
	c.surfaceW = float64(width)
	c.surfaceH = float64(height)
}

// State returns the current state.
func (c *Capture) State() State {
	return c.state
}

// Stroke returns a copy of the in-progress stroke, or nil when idle.
func (c *Capture) Stroke() []Point {
	if c.state != Drawing {
		return nil
	}
	return append([]Point(nil), c.stroke...)
}

// MapPoint converts a device coordinate to surface pixels using the ratio of
// surface size to on-screen bounds.
func (c *Capture) MapPoint(ev Event) Point {
	b := ev.Bounds
	if b.Width <= 0 || b.Height <= 0 || c.surfaceW <= 0 || c.surfaceH <= 0 {
		return Point{X: ev.X, Y: ev.Y}
	}
	return Point{
		X: (ev.X - b.Left) * c.surfaceW / b.Width,
		Y: (ev.Y - b.Top) * c.surfaceH / b.Height,
	}
}

// PointerDown starts a stroke. It is ignored while already drawing.
func (c *Capture) PointerDown(ev Event) bool {
	if c.state == Drawing {
		return false
	}
	release := func() {}
	if c.capturer != nil {
		if r := c.capturer.Acquire(ev.PointerID); r != nil {
			release = r
		}
	}
	c.state = Drawing
	c.pointer = ev.PointerID
	c.release = release
	c.stroke = []Point{c.MapPoint(ev)}
	return true
}

// PointerMove appends a point to the current stroke.
func (c *Capture) PointerMove(ev Event) bool {
	if c.state != Drawing || ev.PointerID != c.pointer {
		return false
	}
	c.stroke = append(c.stroke, c.MapPoint(ev))
	return true
}

// PointerUp ends the stroke, committing it when it has enough points.
func (c *Capture) PointerUp(ev Event) bool {
	return c.end(ev.PointerID)
}

// PointerLeave ends the stroke like PointerUp.
func (c *Capture) PointerLeave(ev Event) bool {
	return c.end(ev.PointerID)
}

// Cancel discards any stroke without committing and releases the pointer.
func (c *Capture) Cancel() {
	if c.state != Drawing {
		return
	}
	release := c.reset()
	release()
}

// end reports whether a stroke was committed.
func (c *Capture) end(pointerID int) bool {
	if c.state != Drawing || pointerID != c.pointer {
		return false
	}
	stroke := c.stroke
	release := c.reset()
	defer release()
	if len(stroke) < MinCommitPoints {
		return false
	}
	if c.commit != nil {
		c.commit(stroke)
	}
	return true
}

// reset returns to Idle and hands back the pending release.
func (c *Capture) reset() func() {
	release := c.release
	if release == nil {
		release = func() {}
	}
	c.state = Idle
	c.stroke = nil
	c.release = nil
	return release
}
