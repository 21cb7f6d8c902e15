package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/movie-lookup/internal/omdb"
)

func TestLoadFixtures(t *testing.T) {
	fixtures, err := loadFixtures("mock-omdb.json")
	require.NoError(t, err)

	cars, ok := fixtures["tt0317219"]
	require.True(t, ok)
	assert.Equal(t, "True", cars.Response)
	assert.Equal(t, "Cars", cars.Title)
	assert.Len(t, cars.Ratings, 3)
}

func TestLoadFixtures_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := loadFixtures(path)
	assert.Error(t, err)

	_, err = loadFixtures(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestHandler_WithOMDbClient(t *testing.T) {
	fixtures, err := loadFixtures("mock-omdb.json")
	require.NoError(t, err)

	ts := httptest.NewServer(newHandler(fixtures, "secret", 0, nil))
	defer ts.Close()

	client, err := omdb.NewHTTPClient(ts.URL, "secret", time.Second, nil)
	require.NoError(t, err)

	found, err := client.Fetch(context.Background(), "tt0111161")
	require.NoError(t, err)
	assert.True(t, found.Found())
	assert.Equal(t, "The Shawshank Redemption", found.Title)

	missing, err := client.Fetch(context.Background(), "tt9999999")
	require.NoError(t, err)
	assert.False(t, missing.Found())
	assert.Equal(t, "Incorrect IMDb ID.", missing.Error)
}

func TestHandler_RejectsWrongKey(t *testing.T) {
	ts := httptest.NewServer(newHandler(map[string]omdb.Payload{}, "secret", 0, nil))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/?i=tt0111161&apikey=wrong")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_DelayTriggersClientTimeout(t *testing.T) {
	ts := httptest.NewServer(newHandler(map[string]omdb.Payload{}, "", 500*time.Millisecond, nil))
	defer ts.Close()

	client, err := omdb.NewHTTPClient(ts.URL, "any", 50*time.Millisecond, nil)
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), "tt0111161")
	require.Error(t, err)
	assert.True(t, omdb.IsTimeout(err))
}
