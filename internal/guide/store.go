package guide

import (
	"context"
	"errors"
	"fmt"
)

// Store holds the geometry for the active character. Requests are tagged
// with a generation and only the latest one may change the store.
// Store is not safe for concurrent use; Request and Apply belong on the
// event loop, Pending.Fetch may run anywhere.
type Store struct {
	provider  Provider
	gen       uint64
	character string
	current   *Path
	err       error
	loading   bool
}

// NewStore returns a store backed by provider.
func NewStore(provider Provider) *Store {
	return &Store{provider: provider}
}

// Pending is an issued request that has not been fetched yet.
type Pending struct {
	Gen       uint64
	Character string
	provider  Provider
}

// Result is the outcome of a fetch, tagged with its generation.
type Result struct {
	Gen       uint64
	Character string
	Path      *Path
	Err       error
}

// Request starts a load for character, superseding any earlier request.
func (s *Store) Request(character string) Pending {
	s.gen++
	s.character = character
	s.current = nil
	s.err = nil
	s.loading = true
	return Pending{Gen: s.gen, Character: character, provider: s.provider}
}

// Fetch runs the provider. It does not touch the store.
func (p Pending) Fetch(ctx context.Context) Result {
	res := Result{Gen: p.Gen, Character: p.Character}
	if p.provider == nil {
		res.Err = fmt.Errorf("%w: no provider configured", ErrLoad)
		return res
	}
	path, err := p.provider.Load(ctx, p.Character)
	switch {
	case err != nil && errors.Is(err, ErrLoad):
		res.Err = err
	case err != nil:
		res.Err = fmt.Errorf("%w: %w", ErrLoad, err)
	case path == nil:
		res.Err = fmt.Errorf("%w: no data for %q", ErrLoad, p.Character)
	default:
		res.Path = path
	}
	return res
}

// Apply installs a result if it belongs to the latest request and reports
// whether it did. Stale results are dropped.
func (s *Store) Apply(res Result) bool {
	if res.Gen != s.gen {
		return false
	}
	s.loading = false
	if res.Err != nil {
		s.current = nil
		s.err = res.Err
		return true
	}
	s.current = res.Path
	s.err = nil
	return true
}

// Current returns the loaded geometry, or nil.
func (s *Store) Current() *Path {
	return s.current
}

// Generation returns the latest issued generation.
func (s *Store) Generation() uint64 {
	return s.gen
}

// Character returns the character of the latest request.
func (s *Store) Character() string {
	return s.character
}

// Loading reports whether the latest request is still outstanding.
func (s *Store) Loading() bool {
	return s.loading
}

// Err returns the error of the latest applied result.
func (s *Store) Err() error {
	return s.err
}
