package movies_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinematch/cinematch/internal/app"
	"github.com/cinematch/cinematch/internal/catalog"
	svcErr "github.com/cinematch/cinematch/internal/errors"
	"github.com/cinematch/cinematch/internal/service/movies"
)

// fakeCatalog serves canned lists and records which method was hit.
type fakeCatalog struct {
	searched bool
	popular  bool
	err      error
}

func (f *fakeCatalog) SearchMovies(ctx context.Context, query string) ([]catalog.Movie, error) {
	f.searched = true
	if f.err != nil {
		return nil, f.err
	}
	return []catalog.Movie{{ID: 1, Title: query}}, nil
}

func (f *fakeCatalog) PopularMovies(ctx context.Context) ([]catalog.Movie, error) {
	f.popular = true
	if f.err != nil {
		return nil, f.err
	}
	return []catalog.Movie{{ID: 2, Title: "Dune"}}, nil
}

func (f *fakeCatalog) SearchMovie(ctx context.Context, query string) (*catalog.Movie, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &catalog.Movie{ID: 1, Title: query}, nil
}

func (f *fakeCatalog) MovieDetails(ctx context.Context, id int64) (*catalog.Movie, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &catalog.Movie{ID: id, Title: "Dune"}, nil
}

func setupService(t *testing.T, cat movies.Catalog) *movies.Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests
	return movies.NewService(app.New(nil, nil, logger), cat)
}

func requireAPIError(t *testing.T, err error, status int) {
	t.Helper()
	var apiErr *svcErr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, status, apiErr.Status)
}

func TestBrowseDispatch(t *testing.T) {
	ctx := context.Background()
	cat := &fakeCatalog{}
	svc := setupService(t, cat)

	// empty query → popular feed
	list, err := svc.Browse(ctx, "  ")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, cat.popular)
	assert.False(t, cat.searched)

	// non-empty query → search
	list, err = svc.Browse(ctx, "Inception")
	require.NoError(t, err)
	assert.Equal(t, "Inception", list[0].Title)
	assert.True(t, cat.searched)
}

func TestBrowseProviderFailure(t *testing.T) {
	svc := setupService(t, &fakeCatalog{err: errors.New("provider down")})

	_, err := svc.Browse(context.Background(), "")
	requireAPIError(t, err, 502)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	svc := setupService(t, &fakeCatalog{})
	movie, err := svc.Search(ctx, "Inception")
	require.NoError(t, err)
	assert.Equal(t, "Inception", movie.Title)

	_, err = svc.Search(ctx, "")
	requireAPIError(t, err, 400)

	svc = setupService(t, &fakeCatalog{err: catalog.ErrNotFound})
	_, err = svc.Search(ctx, "No Such Film")
	requireAPIError(t, err, 404)
}

func TestDetails(t *testing.T) {
	ctx := context.Background()

	svc := setupService(t, &fakeCatalog{})
	movie, err := svc.Details(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), movie.ID)

	svc = setupService(t, &fakeCatalog{err: catalog.ErrNotFound})
	_, err = svc.Details(ctx, 42)
	requireAPIError(t, err, 404)

	svc = setupService(t, &fakeCatalog{err: errors.New("provider down")})
	_, err = svc.Details(ctx, 42)
	requireAPIError(t, err, 502)
}
