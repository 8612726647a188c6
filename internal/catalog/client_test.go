package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinematch/cinematch/internal/catalog"
	"github.com/cinematch/cinematch/internal/config"
)

// newClient points a catalog client at a stub provider.
func newClient(t *testing.T, handler http.HandlerFunc) *catalog.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.TMDB.APIKey = "test-key"
	cfg.TMDB.BaseURL = srv.URL
	cfg.TMDB.ImageBaseURL = "https://img.example/w500"
	cfg.TMDB.Language = "en-US"
	return catalog.New(cfg)
}

func TestSearchMovie(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "Inception", r.URL.Query().Get("query"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		w.Write([]byte(`{"results":[
			{"id":27205,"title":"Inception","overview":"A thief enters dreams.","poster_path":"/inc.jpg","release_date":"2010-07-16"},
			{"id":1,"title":"Inception: The Cobol Job","overview":"","poster_path":"","release_date":""}
		]}`))
	})

	movie, err := client.SearchMovie(context.Background(), "Inception")
	require.NoError(t, err)

	assert.Equal(t, int64(27205), movie.ID)
	assert.Equal(t, "Inception", movie.Title)
	assert.Equal(t, "2010", movie.Year)
	assert.Equal(t, "https://img.example/w500/inc.jpg", movie.Poster)
	assert.Equal(t, "A thief enters dreams.", movie.Overview)
}

func TestSearchMovieNoResults(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})

	_, err := client.SearchMovie(context.Background(), "does-not-exist")
	assert.True(t, errors.Is(err, catalog.ErrNotFound))
}

func TestOverviewPlaceholder(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"id":7,"title":"Obscure","overview":"","release_date":"1999-01-01"}]}`))
	})

	movie, err := client.SearchMovie(context.Background(), "Obscure")
	require.NoError(t, err)
	assert.Equal(t, catalog.OverviewPlaceholder, movie.Overview)
}

func TestMovieDetails(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/27205", r.URL.Path)
		w.Write([]byte(`{"id":27205,"title":"Inception","overview":"Dreams.","poster_path":"/inc.jpg","release_date":"2010-07-16"}`))
	})

	movie, err := client.MovieDetails(context.Background(), 27205)
	require.NoError(t, err)
	assert.Equal(t, "Inception", movie.Title)
	assert.Equal(t, "2010", movie.Year)
}

func TestProviderError(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.PopularMovies(context.Background())
	assert.Error(t, err)
}
