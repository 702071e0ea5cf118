package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func stubClient(t *testing.T, handler http.HandlerFunc) *TMDBClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewTMDBClient("test-key")
	client.BaseURL = server.URL
	return client
}

func TestSearchReshapesMultiResults(t *testing.T) {
	poster := "/inception.jpg"
	client := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search/multi", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		require.Equal(t, "inception", r.URL.Query().Get("query"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"page":        1,
			"total_pages": 3,
			"results": []map[string]interface{}{
				{"id": 27205, "media_type": "movie", "title": "Inception", "release_date": "2010-07-16", "poster_path": poster, "overview": "Dreams.", "vote_average": 8.4},
				{"id": 1396, "media_type": "tv", "name": "Breaking Bad", "first_air_date": "2008-01-20", "vote_average": 8.9},
				{"id": 999, "media_type": "person", "name": "Christopher Nolan"},
			},
		})
	})

	page, err := client.Search("inception", 1)
	require.NoError(t, err)
	require.Equal(t, 3, page.TotalPages)
	require.Equal(t, 1, page.CurrentPage)
	require.Len(t, page.Results, 2) // the person result is dropped

	movie := page.Results[0]
	require.Equal(t, 27205, movie.TMDBID)
	require.Equal(t, "Inception", movie.Title)
	require.Equal(t, "2010", movie.Year)
	require.Equal(t, "https://image.tmdb.org/t/p/w500/inception.jpg", movie.PosterURL)
	require.Equal(t, "Dreams.", movie.Description)
	require.Equal(t, 8.4, movie.Rating)
	require.Equal(t, "movie", movie.MediaType)

	series := page.Results[1]
	require.Equal(t, "Breaking Bad", series.Title)
	require.Equal(t, "series", series.MediaType)
	require.Equal(t, "2008", series.Year)
	require.Empty(t, series.PosterURL)
}

func TestPopularSeriesUsesTVEndpoint(t *testing.T) {
	client := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tv/popular", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"page":        2,
			"total_pages": 10,
			"results": []map[string]interface{}{
				{"id": 1396, "name": "Breaking Bad", "first_air_date": "2008-01-20"},
			},
		})
	})

	page, err := client.PopularSeries(2)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	require.Equal(t, "series", page.Results[0].MediaType)
}

func TestDiscoverPassesFilters(t *testing.T) {
	client := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/discover/movie", r.URL.Path)
		require.Equal(t, "28", r.URL.Query().Get("with_genres"))
		require.Equal(t, "1999", r.URL.Query().Get("primary_release_year"))
		json.NewEncoder(w).Encode(map[string]interface{}{"page": 1, "results": []interface{}{}})
	})

	_, err := client.DiscoverMovies("28", "1999", 1)
	require.NoError(t, err)
}

func TestUpstreamFailureSurfacesAsError(t *testing.T) {
	client := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.PopularMovies(1)
	require.Error(t, err)
}

func TestGenresSnapshotCache(t *testing.T) {
	var hits atomic.Int32
	client := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		require.Equal(t, "/genre/movie/list", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"genres": []map[string]interface{}{{"id": 28, "name": "Action"}},
		})
	})

	genres, err := client.Genres()
	require.NoError(t, err)
	require.Len(t, genres, 1)
	require.Equal(t, "Action", genres[0].Name)

	// Served from the snapshot while the TTL holds
	_, err = client.Genres()
	require.NoError(t, err)
	require.Equal(t, int32(1), hits.Load())

	// Expire the snapshot; the next call refreshes it wholesale
	client.genreFetched = client.genreFetched.Add(-2 * genreCacheTTL)
	_, err = client.Genres()
	require.NoError(t, err)
	require.Equal(t, int32(2), hits.Load())
}

func TestExtractYear(t *testing.T) {
	require.Equal(t, "2010", ExtractYear("2010-07-16"))
	require.Equal(t, "2010", ExtractYear("2010"))
	require.Equal(t, "", ExtractYear(""))
	require.Equal(t, "", ExtractYear("not-a-date"))
}
