// Package guide loads and holds reference stroke geometry for characters.
package guide

import (
	"context"
	"errors"

	"github.com/gogpu/gg"
)

// ErrLoad marks a failure to fetch or parse guide geometry.
var ErrLoad = errors.New("guide load failed")

// Path is the ordered reference strokes of one character in logical space.
type Path struct {
	Character string
	Strokes   []*gg.Path
}

// Len returns the number of reference strokes.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Strokes)
}

// Provider loads stroke geometry for a character.
type Provider interface {
	Load(ctx context.Context, character string) (*Path, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, character string) (*Path, error)

// Load implements Provider.
func (f ProviderFunc) Load(ctx context.Context, character string) (*Path, error) {
	return f(ctx, character)
}

// charData is the hanzi-writer-data JSON payload.
type charData struct {
	Strokes []string       `json:"strokes"`
	Medians [][][2]float64 `json:"medians,omitempty"`
}
