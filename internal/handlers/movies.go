package handlers

import (
	"log"
	"net/http"

	"cinelist/internal/services"
	"cinelist/internal/types"
	"cinelist/internal/utils"
)

type MovieHandler struct {
	tmdb *services.TMDBClient
}

func NewMovieHandler(tmdb *services.TMDBClient) *MovieHandler {
	return &MovieHandler{tmdb: tmdb}
}

// respondPage writes a catalog page or collapses any upstream failure into a
// generic server error; upstream details never reach the client.
func respondPage(w http.ResponseWriter, page *types.CatalogPage, err error) {
	if err != nil {
		log.Printf("TMDB request failed: %v", err)
		utils.RespondError(w, "Server error", http.StatusInternalServerError)
		return
	}
	utils.RespondJSON(w, page, http.StatusOK)
}

func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := utils.GetQueryParam(r, "query", "")
	if query == "" {
		utils.RespondError(w, "Search query is required", http.StatusBadRequest)
		return
	}
	page := utils.GetQueryParamInt(r, "page", 1)

	results, err := h.tmdb.Search(query, page)
	respondPage(w, results, err)
}

func (h *MovieHandler) Popular(w http.ResponseWriter, r *http.Request) {
	page := utils.GetQueryParamInt(r, "page", 1)
	results, err := h.tmdb.PopularMovies(page)
	respondPage(w, results, err)
}

func (h *MovieHandler) PopularSeries(w http.ResponseWriter, r *http.Request) {
	page := utils.GetQueryParamInt(r, "page", 1)
	results, err := h.tmdb.PopularSeries(page)
	respondPage(w, results, err)
}

func (h *MovieHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	page := utils.GetQueryParamInt(r, "page", 1)
	results, err := h.tmdb.TopRatedMovies(page)
	respondPage(w, results, err)
}

func (h *MovieHandler) NowPlaying(w http.ResponseWriter, r *http.Request) {
	page := utils.GetQueryParamInt(r, "page", 1)
	results, err := h.tmdb.NowPlayingMovies(page)
	respondPage(w, results, err)
}

func (h *MovieHandler) Discover(w http.ResponseWriter, r *http.Request) {
	genre := utils.GetQueryParam(r, "genre", "")
	year := utils.GetQueryParam(r, "year", "")
	page := utils.GetQueryParamInt(r, "page", 1)

	results, err := h.tmdb.DiscoverMovies(genre, year, page)
	respondPage(w, results, err)
}

func (h *MovieHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.tmdb.Genres()
	if err != nil {
		log.Printf("TMDB genres request failed: %v", err)
		utils.RespondError(w, "Server error", http.StatusInternalServerError)
		return
	}
	utils.RespondJSON(w, map[string]interface{}{
		"genres": genres,
	}, http.StatusOK)
}
