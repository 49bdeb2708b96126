// Package demo plays a looping stroke-order animation on its own surface.
package demo

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/verte-zerg/tuihanzi/internal/coords"
	"github.com/verte-zerg/tuihanzi/internal/guide"
	"github.com/verte-zerg/tuihanzi/internal/model"
	"github.com/verte-zerg/tuihanzi/internal/render"
)

const (
	// StrokeInterval is how long each stroke takes to appear.
	StrokeInterval = 450 * time.Millisecond
	// LoopPause is the hold on the finished character before restarting.
	LoopPause = 800 * time.Millisecond
)

// ErrNoCharacter is returned when Play is called without a character.
var ErrNoCharacter = errors.New("no character to demonstrate")

// Player animates one character at a time. It is driven from the event
// loop: Play queues a geometry request, the caller fetches it and hands the
// result to Apply, then calls Advance on every tick.
type Player struct {
	store    *guide.Store
	pipeline *render.Pipeline
	padding  float64

	pending    guide.Pending
	hasPending bool
	playing    bool
	shown      int
	elapsed    time.Duration
}

// NewPlayer returns a player rendering onto a size x size surface.
func NewPlayer(provider guide.Provider, size int, palette render.Palette) (*Player, error) {
	pipeline, err := render.New(size, size, palette)
	if err != nil {
		return nil, fmt.Errorf("failed to create demo surface: %w", err)
	}
	return &Player{
		store:    guide.NewStore(provider),
		pipeline: pipeline,
		padding:  float64(size) / 20,
	}, nil
}

// Play restarts the animation for character.
func (p *Player) Play(character string) error {
	if character == "" {
		return ErrNoCharacter
	}
	p.pending = p.store.Request(character)
	p.hasPending = true
	p.playing = false
	p.shown = 0
	p.elapsed = 0
	return p.redraw()
}

// TakePending hands out the queued geometry request once.
func (p *Player) TakePending() (guide.Pending, bool) {
	if !p.hasPending {
		return guide.Pending{}, false
	}
	p.hasPending = false
	return p.pending, true
}

// Apply installs fetched geometry. Results for an earlier Play are ignored.
func (p *Player) Apply(res guide.Result) (bool, error) {
	if !p.store.Apply(res) {
		return false, nil
	}
	p.shown = 0
	p.elapsed = 0
	p.playing = res.Err == nil && p.store.Current().Len() > 0
	if err := p.redraw(); err != nil {
		return true, err
	}
	return true, res.Err
}

// Advance moves the animation forward by d and reports whether the frame changed.
func (p *Player) Advance(d time.Duration) (bool, error) {
	total := p.store.Current().Len()
	if !p.playing || total == 0 || d <= 0 {
		return false, nil
	}
	p.elapsed += d
	changed := false
	for {
		need := StrokeInterval
		if p.shown >= total {
			need = LoopPause
		}
		if p.elapsed < need {
			break
		}
		p.elapsed -= need
		if p.shown >= total {
			p.shown = 0
		} else {
			p.shown++
		}
		changed = true
	}
	if !changed {
		return false, nil
	}
	return true, p.redraw()
}

// Stop halts the animation and leaves the current frame in place.
func (p *Player) Stop() {
	p.playing = false
}

// Playing reports whether the animation is running.
func (p *Player) Playing() bool {
	return p.playing
}

// Shown returns how many strokes the current frame shows.
func (p *Player) Shown() int {
	return p.shown
}

// Character returns the character being demonstrated.
func (p *Player) Character() string {
	return p.store.Character()
}

// Image returns the current frame.
func (p *Player) Image() image.Image {
	return p.pipeline.Image()
}

func (p *Player) redraw() error {
	path := p.store.Current()
	size := p.pipeline.Width()
	tr := coords.Compute(float64(size), float64(p.pipeline.Height()), coords.HanziBounds, p.padding)
	return p.pipeline.Redraw(render.Frame{
		State: model.PracticeState{
			Active:         model.CharacterEntry{Character: p.store.Character()},
			CompletedCount: p.shown,
			TotalStrokes:   path.Len(),
		},
		Guide:     path,
		Transform: tr,
	})
}
