package catalog

import (
	"slices"
	"strings"
)

// Criteria narrows a search. Blank strings and non-positive ids count as not
// supplied; whatever is supplied is combined with AND.
type Criteria struct {
	Name  string
	ID    int64
	Genre string
}

func (c Criteria) name() (string, bool)  { return normalize(c.Name) }
func (c Criteria) genre() (string, bool) { return normalize(c.Genre) }
func (c Criteria) hasID() bool           { return c.ID > 0 }

// Valid reports whether at least one criterion is usable. It uses the same
// predicates as Search, so a valid request is exactly one Search narrows.
func (c Criteria) Valid() bool {
	_, hasName := c.name()
	_, hasGenre := c.genre()
	return hasName || c.hasID() || hasGenre
}

// normalize trims ASCII control characters and spaces only, so a value made
// of Unicode spaces such as U+00A0 is still a criterion.
func normalize(s string) (string, bool) {
	s = strings.ToLower(strings.TrimFunc(s, isBlank))
	return s, s != ""
}

func isBlank(r rune) bool { return r <= ' ' }

// Search filters movies by name, then id, then genre. Name and genre are
// case-insensitive substring matches, the id must match exactly. Relative
// order is kept and the input is never modified.
func Search(movies []Movie, c Criteria) []Movie {
	out := append(make([]Movie, 0, len(movies)), movies...)

	if name, ok := c.name(); ok {
		out = slices.DeleteFunc(out, func(m Movie) bool {
			return !strings.Contains(strings.ToLower(m.Title), name)
		})
	}

	if c.hasID() {
		out = slices.DeleteFunc(out, func(m Movie) bool {
			return m.ID != c.ID
		})
	}

	if genre, ok := c.genre(); ok {
		out = slices.DeleteFunc(out, func(m Movie) bool {
			return !strings.Contains(strings.ToLower(m.Genre), genre)
		})
	}

	return out
}

// Search runs Search over the catalog. An id narrows to at most one movie,
// so it goes through the index first; the result is the same.
func (c *Catalog) Search(cr Criteria) []Movie {
	if !cr.hasID() {
		return Search(c.movies, cr)
	}

	m, ok := c.byID[cr.ID]
	if !ok {
		return []Movie{}
	}
	return Search([]Movie{m}, cr)
}

// SearchByName matches on title only. Unlike Search, a blank name matches
// nothing.
func (c *Catalog) SearchByName(name string) []Movie {
	if _, ok := normalize(name); !ok {
		return []Movie{}
	}
	return c.Search(Criteria{Name: name})
}

// SearchByGenre matches on genre only. A blank genre matches nothing.
func (c *Catalog) SearchByGenre(genre string) []Movie {
	if _, ok := normalize(genre); !ok {
		return []Movie{}
	}
	return c.Search(Criteria{Genre: genre})
}

// Genres lists the distinct genre values, sorted ascending. Composite values
// such as "Action/Sci-Fi" are kept whole.
func Genres(movies []Movie) []string {
	seen := make(map[string]struct{}, len(movies))
	out := make([]string, 0, len(movies))

	for _, m := range movies {
		if _, ok := seen[m.Genre]; ok {
			continue
		}
		seen[m.Genre] = struct{}{}
		out = append(out, m.Genre)
	}

	slices.Sort(out)
	return out
}
