package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Source supplies the movies a catalog is built from.
type Source interface {
	Name() string
	Movies(ctx context.Context) ([]Movie, error)
}

// LoadResult is the outcome of building the catalog at startup. When Err is
// set, Catalog is the empty catalog and the service keeps running on it.
type LoadResult struct {
	Catalog *Catalog
	Source  string
	Err     error
}

// Degraded reports whether the catalog came up empty because loading failed.
func (r LoadResult) Degraded() bool { return r.Err != nil }

// Load reads src once and builds the catalog. It never fails the caller: read,
// decode and validation errors are logged and recorded on the result.
func Load(ctx context.Context, src Source, log *zap.Logger) LoadResult {
	if log == nil {
		log = zap.NewNop()
	}

	res := LoadResult{Catalog: Empty(), Source: src.Name()}

	movies, err := src.Movies(ctx)
	if err != nil {
		res.Err = fmt.Errorf("load movies from %s: %w", res.Source, err)
		log.Error("catalog load failed, serving empty catalog",
			zap.String("source", res.Source), zap.Error(err))
		return res
	}

	c, err := New(movies)
	if err != nil {
		res.Err = fmt.Errorf("build catalog from %s: %w", res.Source, err)
		log.Error("catalog data invalid, serving empty catalog",
			zap.String("source", res.Source), zap.Error(err))
		return res
	}

	res.Catalog = c
	log.Info("catalog loaded",
		zap.String("source", res.Source),
		zap.Int("movies", c.Len()),
		zap.Int("genres", len(c.Genres())),
	)
	return res
}
