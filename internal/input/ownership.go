package input

// Ownership is a Capturer for a single pointer device. It records which
// pointer currently owns the stream.
type Ownership struct {
	owner int
	held  bool
}

// Acquire implements Capturer.
func (o *Ownership) Acquire(pointerID int) func() {
	o.owner = pointerID
	o.held = true
	released := false
	return func() {
		if released {
			return
		}
		released = true
		if o.held && o.owner == pointerID {
			o.held = false
		}
	}
}

// Held reports whether a pointer owns the stream and which one.
func (o *Ownership) Held() (int, bool) {
	return o.owner, o.held
}
