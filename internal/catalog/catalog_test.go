package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"MovieCatalog/internal/catalog"
)

func bundled(t *testing.T) *catalog.Catalog {
	t.Helper()

	res := catalog.Load(context.Background(), catalog.BundledSource(), zap.NewNop())
	require.NoError(t, res.Err)
	return res.Catalog
}

func sample() []catalog.Movie {
	return []catalog.Movie{
		{ID: 3, Title: "Gamma", Genre: "Drama"},
		{ID: 1, Title: "Alpha", Genre: "Action/Sci-Fi"},
		{ID: 2, Title: "Beta", Genre: "Drama"},
	}
}

func TestNew_KeepsLoadOrder(t *testing.T) {
	c, err := catalog.New(sample())
	require.NoError(t, err)

	all := c.All()
	require.Len(t, all, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, 3, c.Len())
}

func TestNew_RejectsBadIDs(t *testing.T) {
	_, err := catalog.New([]catalog.Movie{{ID: 1}, {ID: 1}})
	assert.ErrorIs(t, err, catalog.ErrDuplicateID)

	_, err = catalog.New([]catalog.Movie{{ID: 0}})
	assert.ErrorIs(t, err, catalog.ErrInvalidID)

	_, err = catalog.New([]catalog.Movie{{ID: 4}, {ID: -2}})
	assert.ErrorIs(t, err, catalog.ErrInvalidID)
}

func TestAll_ReturnsCopy(t *testing.T) {
	c, err := catalog.New(sample())
	require.NoError(t, err)

	all := c.All()
	all[0].Title = "changed"

	m, ok := c.ByID(3)
	require.True(t, ok)
	assert.Equal(t, "Gamma", m.Title)
	assert.Equal(t, "Gamma", c.All()[0].Title)
}

func TestEmpty(t *testing.T) {
	c := catalog.Empty()

	assert.NotNil(t, c.All())
	assert.Empty(t, c.All())
	assert.NotNil(t, c.Genres())
	assert.Empty(t, c.Search(catalog.Criteria{}))
	_, ok := c.ByID(1)
	assert.False(t, ok)
}

func TestByID(t *testing.T) {
	c := bundled(t)

	for _, m := range c.All() {
		got, ok := c.ByID(m.ID)
		require.True(t, ok, "id %d", m.ID)
		assert.Equal(t, m, got)
	}

	m, ok := c.ByID(1)
	require.True(t, ok)
	assert.Equal(t, "The Prison Escape", m.Title)

	for _, id := range []int64{999, 0, -1} {
		_, ok := c.ByID(id)
		assert.False(t, ok, "id %d", id)
	}
}

func TestGenres_SortedDistinct(t *testing.T) {
	c := bundled(t)

	genres := c.Genres()
	assert.IsIncreasing(t, genres)
	for _, g := range []string{"Drama", "Crime/Drama", "Action/Crime", "Adventure/Fantasy", "Action/Sci-Fi"} {
		assert.Contains(t, genres, g)
	}
	assert.NotContains(t, genres, "Sci-Fi")
}

func TestGenres_CaseSensitive(t *testing.T) {
	got := catalog.Genres([]catalog.Movie{
		{ID: 1, Genre: "drama"},
		{ID: 2, Genre: "Drama"},
		{ID: 3, Genre: "Drama"},
		{ID: 4, Genre: "Action"},
	})
	assert.Equal(t, []string{"Action", "Drama", "drama"}, got)
}
