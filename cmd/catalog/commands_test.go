package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"MovieCatalog/internal/catalog"
	"MovieCatalog/internal/config"
)

const testMovies = `[
  {"id": 1, "movieName": "Alpha Run", "director": "A. Director", "year": 2001, "genre": "Action", "description": "First.", "duration": 100, "imdbRating": 4.1},
  {"id": 2, "movieName": "Beta Days", "director": "B. Director", "year": 2002, "genre": "Drama", "description": "Second.", "duration": 110, "imdbRating": 3.9},
  {"id": 3, "movieName": "Gamma Nights", "director": "C. Director", "year": 2003, "genre": "Action/Drama", "description": "Third.", "duration": 120, "imdbRating": 4.5}
]`

// writeFixture writes a movies file and a config pointing at it and returns
// the config path.
func writeFixture(t *testing.T, movies string) string {
	t.Helper()

	dir := t.TempDir()
	dataPath := filepath.Join(dir, "movies.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(movies), 0o644))

	cfgPath := filepath.Join(dir, "catalog.toml")
	cfg := "[catalog]\nsource = \"file\"\npath = \"" + filepath.ToSlash(dataPath) + "\"\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestSearchCmd_Table(t *testing.T) {
	cfg := writeFixture(t, testMovies)

	out, err := run(t, "--config", cfg, "search", "--genre", "action")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Alpha Run")
	assert.Contains(t, lines[2], "Gamma Nights")
}

func TestSearchCmd_JSON(t *testing.T) {
	cfg := writeFixture(t, testMovies)

	out, err := run(t, "--config", cfg, "search", "--name", "a", "--id", "2", "--json")
	require.NoError(t, err)

	var movies []catalog.Movie
	require.NoError(t, json.Unmarshal([]byte(out), &movies))
	require.Len(t, movies, 1)
	assert.Equal(t, "Beta Days", movies[0].Title)
}

func TestSearchCmd_NoMatches(t *testing.T) {
	cfg := writeFixture(t, testMovies)

	out, err := run(t, "--config", cfg, "search", "--name", "zzz")
	require.NoError(t, err)
	assert.Equal(t, "No movies found\n", out)

	out, err = run(t, "--config", cfg, "search", "--id", "99", "--json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestSearchCmd_RequiresCriteria(t *testing.T) {
	cfg := writeFixture(t, testMovies)

	for _, args := range [][]string{
		{"search"},
		{"search", "--name", "  "},
		{"search", "--id", "0"},
	} {
		_, err := run(t, append([]string{"--config", cfg}, args...)...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "at least one of")
	}
}

func TestSearchCmd_BundledByDefault(t *testing.T) {
	out, err := run(t, "search", "--id", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "The Prison Escape")
}

func TestShowCmd(t *testing.T) {
	cfg := writeFixture(t, testMovies)

	out, err := run(t, "--config", cfg, "show", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Gamma Nights (2003)")
	assert.Contains(t, out, "Directed by C. Director")
	assert.Contains(t, out, "Third.")

	_, err = run(t, "--config", cfg, "show", "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "movie 42 not found")

	_, err = run(t, "--config", cfg, "show", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid id")
}

func TestGenresCmd(t *testing.T) {
	cfg := writeFixture(t, testMovies)

	out, err := run(t, "--config", cfg, "genres")
	require.NoError(t, err)
	assert.Equal(t, "Action\nAction/Drama\nDrama\n", out)
}

func TestCommands_DegradedCatalogIsAnError(t *testing.T) {
	dup := strings.Replace(testMovies, `"id": 2`, `"id": 1`, 1)
	cfg := writeFixture(t, dup)

	_, err := run(t, "--config", cfg, "genres")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog unavailable")
	assert.ErrorIs(t, err, catalog.ErrDuplicateID)

	cfg = writeFixture(t, `[{"id": 1, "movieName": "A"}]`)

	_, err = run(t, "--config", cfg, "search", "--name", "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrBadRecord)
}

func TestCommands_InvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")

	_, err := run(t, "genres")
	require.Error(t, err)

	var verr *config.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestLoadCatalog_UnreachableSourceDegrades(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.Source = config.SourceSQLite
	cfg.Catalog.DSN = filepath.Join(t.TempDir(), "missing-dir", "movies.db")

	res := loadCatalog(context.Background(), cfg, zap.NewNop())
	assert.True(t, res.Degraded())
	assert.Equal(t, 0, res.Catalog.Len())
}

func TestNewHandler(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Token = "t"

	h, err := newHandler(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(h)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/movies/search?genre=sci-fi")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 4, body.Count)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/metrics", nil)
	req.Header.Set("Authorization", "Bearer t")
	mresp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	mresp.Body.Close()
	assert.Equal(t, http.StatusOK, mresp.StatusCode)
}

func TestNewHandler_BadTrustedProxy(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit.TrustedProxies = []string{"not-an-ip"}

	_, err := newHandler(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-an-ip")
}
