//go:build integration
// +build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8082")

type searchResponse struct {
	Success bool `json:"success"`
	Movies  []struct {
		ID    int64  `json:"id"`
		Title string `json:"movieName"`
		Genre string `json:"genre"`
	} `json:"movies"`
	Count int    `json:"count"`
	Code  string `json:"pirateCode"`
}

func TestSystem_E2E(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	var found searchResponse
	getJSON(t, baseURL+"/movies/search?name=the", &found, http.StatusOK)
	require.True(t, found.Success)
	require.Equal(t, "TREASURE_FOUND", found.Code)
	require.NotEmpty(t, found.Movies)
	assert.Equal(t, len(found.Movies), found.Count)
	for _, m := range found.Movies {
		assert.Contains(t, strings.ToLower(m.Title), "the")
	}

	first := found.Movies[0]

	var byID searchResponse
	getJSON(t, fmt.Sprintf("%s/movies/search?id=%d", baseURL, first.ID), &byID, http.StatusOK)
	require.Len(t, byID.Movies, 1)
	assert.Equal(t, first.Title, byID.Movies[0].Title)

	var invalid searchResponse
	getJSON(t, baseURL+"/movies/search", &invalid, http.StatusBadRequest)
	assert.Equal(t, "INVALID_SEARCH_PARAMS", invalid.Code)

	page := getBody(t, fmt.Sprintf("%s/movies/%d/details", baseURL, first.ID), http.StatusOK)
	assert.Contains(t, page, first.Title)

	if os.Getenv("E2E_RESTART_CATALOG") == "1" {
		restartContainer(t, ctx, "catalog")
		waitReady(t, ctx, baseURL+"/readyz")

		var again searchResponse
		getJSON(t, baseURL+"/movies/search?name=the", &again, http.StatusOK)
		assert.Equal(t, found.Count, again.Count)
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func get(t *testing.T, url string, want int) *http.Response {
	t.Helper()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	require.NoError(t, err)
	if resp.StatusCode != want {
		resp.Body.Close()
		t.Fatalf("GET %s: status=%d want=%d", url, resp.StatusCode, want)
	}
	return resp
}

func getJSON(t *testing.T, url string, out any, want int) {
	t.Helper()

	resp := get(t, url, want)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out), "decode %s", url)
}

func getBody(t *testing.T, url string, want int) string {
	t.Helper()

	resp := get(t, url, want)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
