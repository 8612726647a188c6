package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cinematch/cinematch/internal/config"
)

// ErrNotFound is returned when the provider has no movie for the query.
var ErrNotFound = errors.New("movie not found")

// OverviewPlaceholder is substituted when the provider returns no overview.
const OverviewPlaceholder = "No overview available."

// Movie is the canonical metadata shape the rest of the service consumes.
type Movie struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Year     string `json:"year,omitempty"`
	Poster   string `json:"poster,omitempty"`
	Overview string `json:"overview,omitempty"`
}

// Client resolves movie titles/ids to canonical metadata from a TMDB-style
// provider. Pure lookup, no state. Callers on the match path treat every
// failure as non-fatal and fall back to stored fields.
type Client struct {
	http         *http.Client
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
}

// New creates a catalog client from config.
func New(cfg *config.Config) *Client {
	return &Client{
		http:         &http.Client{Timeout: 5 * time.Second},
		apiKey:       cfg.TMDB.APIKey,
		baseURL:      strings.TrimRight(cfg.TMDB.BaseURL, "/"),
		imageBaseURL: strings.TrimRight(cfg.TMDB.ImageBaseURL, "/"),
		language:     cfg.TMDB.Language,
	}
}

// provider wire formats
type tmdbMovie struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	PosterPath  string `json:"poster_path"`
	ReleaseDate string `json:"release_date"`
}

type tmdbList struct {
	Results []tmdbMovie `json:"results"`
}

// SearchMovie returns the best (first) result for a title query.
func (c *Client) SearchMovie(ctx context.Context, query string) (*Movie, error) {
	list, err := c.SearchMovies(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

// SearchMovies returns all results for a title query.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]Movie, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	return c.list(ctx, "/search/movie", params)
}

// PopularMovies returns the provider's current popular list.
func (c *Client) PopularMovies(ctx context.Context) ([]Movie, error) {
	params := url.Values{}
	params.Set("page", "1")
	return c.list(ctx, "/movie/popular", params)
}

// MovieDetails resolves a single movie by its provider id.
func (c *Client) MovieDetails(ctx context.Context, id int64) (*Movie, error) {
	var raw tmdbMovie
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), url.Values{}, &raw); err != nil {
		return nil, err
	}
	m := c.toMovie(raw)
	return &m, nil
}

func (c *Client) list(ctx context.Context, path string, params url.Values) ([]Movie, error) {
	var raw tmdbList
	if err := c.get(ctx, path, params, &raw); err != nil {
		return nil, err
	}
	movies := make([]Movie, 0, len(raw.Results))
	for _, r := range raw.Results {
		movies = append(movies, c.toMovie(r))
	}
	return movies, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) toMovie(raw tmdbMovie) Movie {
	m := Movie{
		ID:       raw.ID,
		Title:    raw.Title,
		Overview: raw.Overview,
	}
	if m.Overview == "" {
		m.Overview = OverviewPlaceholder
	}
	if raw.PosterPath != "" {
		m.Poster = c.imageBaseURL + raw.PosterPath
	}
	// release_date is "YYYY-MM-DD"; only the year is surfaced
	if len(raw.ReleaseDate) >= 4 {
		m.Year = raw.ReleaseDate[:4]
	}
	return m
}
