package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"cinelist/internal/types"
)

// genreCacheTTL controls how long the genre snapshot is served before being
// refreshed wholesale from upstream.
const genreCacheTTL = 30 * time.Minute

type TMDBClient struct {
	APIKey  string
	BaseURL string
	client  *http.Client

	genreMu      sync.Mutex
	genres       []types.Genre
	genreFetched time.Time
}

// TMDB API response types
type tmdbListResponse struct {
	Page         int          `json:"page"`
	Results      []tmdbResult `json:"results"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
}

type tmdbResult struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`      // movies
	Name         string  `json:"name"`       // tv
	MediaType    string  `json:"media_type"` // only on /search/multi
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   *string `json:"poster_path"`
	VoteAverage  float64 `json:"vote_average"`
}

type tmdbGenreResponse struct {
	Genres []types.Genre `json:"genres"`
}

func NewTMDBClient(apiKey string) *TMDBClient {
	return &TMDBClient{
		APIKey:  apiKey,
		BaseURL: "https://api.themoviedb.org/3",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *TMDBClient) makeRequest(endpoint string, params map[string]string) (*http.Response, error) {
	u, err := url.Parse(c.BaseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	query := u.Query()
	query.Set("api_key", c.APIKey)
	for key, value := range params {
		query.Set(key, value)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequest("GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	return resp, nil
}

func (c *TMDBClient) fetchPage(endpoint string, params map[string]string, mediaType string) (*types.CatalogPage, error) {
	resp, err := c.makeRequest(endpoint, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var listResp tmdbListResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	page := &types.CatalogPage{
		Results:     []types.CatalogItem{},
		TotalPages:  listResp.TotalPages,
		CurrentPage: listResp.Page,
	}
	for _, r := range listResp.Results {
		item, ok := reshapeResult(r, mediaType)
		if !ok {
			continue
		}
		page.Results = append(page.Results, item)
	}
	return page, nil
}

// reshapeResult maps one upstream result into the internal item schema.
// mediaType overrides the upstream media_type for single-medium endpoints;
// when empty (multi search), results that are neither movie nor tv are
// dropped.
func reshapeResult(r tmdbResult, mediaType string) (types.CatalogItem, bool) {
	mt := mediaType
	if mt == "" {
		switch r.MediaType {
		case "movie":
			mt = "movie"
		case "tv":
			mt = "series"
		default:
			return types.CatalogItem{}, false
		}
	}

	title := r.Title
	date := r.ReleaseDate
	if mt == "series" {
		title = r.Name
		date = r.FirstAirDate
	}

	return types.CatalogItem{
		TMDBID:      r.ID,
		Title:       title,
		Year:        ExtractYear(date),
		PosterURL:   posterURL(r.PosterPath),
		Description: r.Overview,
		Rating:      r.VoteAverage,
		MediaType:   mt,
	}, true
}

func posterURL(posterPath *string) string {
	if posterPath == nil || *posterPath == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/w500" + *posterPath
}

// ExtractYear pulls the year out of a TMDB release date (YYYY-MM-DD).
func ExtractYear(releaseDate string) string {
	if releaseDate == "" {
		return ""
	}
	parts := strings.SplitN(releaseDate, "-", 2)
	if _, err := strconv.Atoi(parts[0]); err != nil {
		return ""
	}
	return parts[0]
}

// Search runs a multi search over movies and series.
func (c *TMDBClient) Search(query string, page int) (*types.CatalogPage, error) {
	if page <= 0 {
		page = 1
	}
	return c.fetchPage("/search/multi", map[string]string{
		"query": query,
		"page":  strconv.Itoa(page),
	}, "")
}

// PopularMovies lists popular movies.
func (c *TMDBClient) PopularMovies(page int) (*types.CatalogPage, error) {
	if page <= 0 {
		page = 1
	}
	return c.fetchPage("/movie/popular", map[string]string{
		"page": strconv.Itoa(page),
	}, "movie")
}

// PopularSeries lists popular series.
func (c *TMDBClient) PopularSeries(page int) (*types.CatalogPage, error) {
	if page <= 0 {
		page = 1
	}
	return c.fetchPage("/tv/popular", map[string]string{
		"page": strconv.Itoa(page),
	}, "series")
}

// TopRatedMovies lists top rated movies.
func (c *TMDBClient) TopRatedMovies(page int) (*types.CatalogPage, error) {
	if page <= 0 {
		page = 1
	}
	return c.fetchPage("/movie/top_rated", map[string]string{
		"page": strconv.Itoa(page),
	}, "movie")
}

// NowPlayingMovies lists movies currently in theaters.
func (c *TMDBClient) NowPlayingMovies(page int) (*types.CatalogPage, error) {
	if page <= 0 {
		page = 1
	}
	return c.fetchPage("/movie/now_playing", map[string]string{
		"page": strconv.Itoa(page),
	}, "movie")
}

// DiscoverMovies lists movies filtered by genre and/or year.
func (c *TMDBClient) DiscoverMovies(genre, year string, page int) (*types.CatalogPage, error) {
	if page <= 0 {
		page = 1
	}
	params := map[string]string{
		"page": strconv.Itoa(page),
	}
	if genre != "" {
		params["with_genres"] = genre
	}
	if year != "" {
		params["primary_release_year"] = year
	}
	return c.fetchPage("/discover/movie", params, "movie")
}

// Genres returns the movie genre list. The snapshot is cached in memory and
// refreshed wholesale once its TTL expires.
func (c *TMDBClient) Genres() ([]types.Genre, error) {
	c.genreMu.Lock()
	defer c.genreMu.Unlock()

	if c.genres != nil && time.Since(c.genreFetched) < genreCacheTTL {
		return c.genres, nil
	}

	resp, err := c.makeRequest("/genre/movie/list", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var genreResp tmdbGenreResponse
	if err := json.NewDecoder(resp.Body).Decode(&genreResp); err != nil {
		return nil, fmt.Errorf("failed to decode genres: %w", err)
	}

	c.genres = genreResp.Genres
	c.genreFetched = time.Now()
	return c.genres, nil
}
