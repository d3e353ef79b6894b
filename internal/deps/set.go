package deps

import (
	"context"
	"sync"
)

// Set is a named group of coordinates. It starts empty; default dependencies
// are installed only when the set is first read and nothing was added explicitly.
type Set struct {
	Name string

	mu        sync.Mutex
	coords    []Coordinate
	defaults  func() []Coordinate
	populated bool
}

// NewSet returns an empty set.
func NewSet(name string) *Set {
	return &Set{Name: name}
}

// Add appends coordinates explicitly.
func (s *Set) Add(coords ...Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coords = append(s.coords, coords...)
}

// DefaultDependencies installs the hook that populates an empty set.
func (s *Set) DefaultDependencies(fn func() []Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = fn
}

// Coordinates returns the set contents, running the default hook once if needed.
func (s *Set) Coordinates() []Coordinate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.populated {
		s.populated = true
		if len(s.coords) == 0 && s.defaults != nil {
			s.coords = append(s.coords, s.defaults()...)
		}
	}
	out := make([]Coordinate, len(s.coords))
	copy(out, s.coords)
	return out
}

// Classpath produces the jars a linter process runs with.
type Classpath interface {
	Classpath(ctx context.Context) ([]string, error)
}

// Static is a fixed classpath.
type Static []string

// Classpath implements Classpath.
func (s Static) Classpath(context.Context) ([]string, error) {
	return append([]string(nil), s...), nil
}

// Resolved binds a set to the resolver that downloads it.
type Resolved struct {
	Set      *Set
	Resolver *Resolver
}

// Classpath implements Classpath.
func (r Resolved) Classpath(ctx context.Context) ([]string, error) {
	return r.Resolver.Resolve(ctx, r.Set)
}
