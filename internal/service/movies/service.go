package movies

import (
	"context"
	"errors"
	"strings"

	"github.com/cinematch/cinematch/internal/app"
	"github.com/cinematch/cinematch/internal/catalog"
	svcErr "github.com/cinematch/cinematch/internal/errors"
)

// Catalog is the slice of the catalog gateway the proxy endpoints need.
// Unlike the match flows, these endpoints surface provider failures to the
// caller (as 502): they exist purely to browse the external catalog.
type Catalog interface {
	SearchMovies(ctx context.Context, query string) ([]catalog.Movie, error)
	PopularMovies(ctx context.Context) ([]catalog.Movie, error)
	SearchMovie(ctx context.Context, query string) (*catalog.Movie, error)
	MovieDetails(ctx context.Context, id int64) (*catalog.Movie, error)
}

// Service proxies catalog browsing for the frontend.
type Service struct {
	appCtx  *app.AppContext
	catalog Catalog
}

// NewService creates the movies service.
func NewService(appCtx *app.AppContext, cat Catalog) *Service {
	return &Service{appCtx: appCtx, catalog: cat}
}

// Browse lists popular movies, or search results when query is non-empty.
func (s *Service) Browse(ctx context.Context, query string) ([]catalog.Movie, error) {
	var (
		movies []catalog.Movie
		err    error
	)
	if strings.TrimSpace(query) != "" {
		movies, err = s.catalog.SearchMovies(ctx, query)
	} else {
		movies, err = s.catalog.PopularMovies(ctx)
	}
	if err != nil {
		s.appCtx.Logger.Error("catalog browse failed", "query", query, "err", err)
		return nil, svcErr.BadGateway("could not fetch movies from the catalog")
	}
	return movies, nil
}

// Search resolves the single best match for a title.
func (s *Service) Search(ctx context.Context, query string) (*catalog.Movie, error) {
	if strings.TrimSpace(query) == "" {
		return nil, svcErr.BadRequest("query is required")
	}
	movie, err := s.catalog.SearchMovie(ctx, query)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, svcErr.NotFound("no movie found")
		}
		return nil, svcErr.BadGateway("could not fetch movie from the catalog")
	}
	return movie, nil
}

// Details resolves full metadata for one provider movie id.
func (s *Service) Details(ctx context.Context, id int64) (*catalog.Movie, error) {
	movie, err := s.catalog.MovieDetails(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, svcErr.NotFound("movie not found")
		}
		return nil, svcErr.BadGateway("could not fetch movie details from the catalog")
	}
	return movie, nil
}
