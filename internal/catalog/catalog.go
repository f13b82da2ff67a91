// Package catalog holds the read-only movie catalog, its search engine and
// the HTTP surface that serves both.
package catalog

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrInvalidID   = errors.New("movie id must be positive")
	ErrDuplicateID = errors.New("duplicate movie id")
)

// Catalog is an immutable snapshot of movies in load order plus an id index.
// It is built once and safe for concurrent reads without locking.
type Catalog struct {
	movies []Movie
	byID   map[int64]Movie
}

// New builds a catalog from movies, keeping their order. Ids must be positive
// and unique.
func New(movies []Movie) (*Catalog, error) {
	c := &Catalog{
		movies: make([]Movie, 0, len(movies)),
		byID:   make(map[int64]Movie, len(movies)),
	}

	for i, m := range movies {
		if m.ID <= 0 {
			return nil, fmt.Errorf("record %d: %w: %d", i, ErrInvalidID, m.ID)
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, fmt.Errorf("record %d: %w: %d", i, ErrDuplicateID, m.ID)
		}
		c.byID[m.ID] = m
		c.movies = append(c.movies, m)
	}

	return c, nil
}

func Empty() *Catalog {
	return &Catalog{movies: []Movie{}, byID: map[int64]Movie{}}
}

// All returns every movie in load order. The slice is a copy and never nil.
func (c *Catalog) All() []Movie {
	return slices.Clone(c.movies)
}

func (c *Catalog) Len() int { return len(c.movies) }

// ByID returns the movie with the given id. Non-positive ids are never found.
func (c *Catalog) ByID(id int64) (Movie, bool) {
	if id <= 0 {
		return Movie{}, false
	}
	m, ok := c.byID[id]
	return m, ok
}

func (c *Catalog) Genres() []string {
	return Genres(c.movies)
}
