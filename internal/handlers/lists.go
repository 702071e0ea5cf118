package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"cinelist/internal/auth"
	"cinelist/internal/database"
	"cinelist/internal/types"
	"cinelist/internal/utils"
)

type ListHandler struct {
	db *sql.DB
}

func NewListHandler(db *sql.DB) *ListHandler {
	return &ListHandler{db: db}
}

// respondListError maps store errors onto the HTTP taxonomy shared by every
// list endpoint.
func respondListError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		utils.RespondError(w, "List not found", http.StatusNotFound)
	case errors.Is(err, database.ErrForbidden):
		utils.RespondError(w, "Unauthorized", http.StatusForbidden)
	case errors.Is(err, database.ErrDefaultList):
		utils.RespondError(w, "Default lists cannot be modified", http.StatusBadRequest)
	case errors.Is(err, database.ErrNotFriend):
		utils.RespondError(w, "You can only share lists with your friends", http.StatusBadRequest)
	case errors.Is(err, database.ErrConflict):
		utils.RespondError(w, "You already have a list with that name", http.StatusConflict)
	default:
		log.Printf("List operation failed: %v", err)
		utils.RespondError(w, "Server error", http.StatusInternalServerError)
	}
}

func (h *ListHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		utils.RespondError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	var req types.CreateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.RespondError(w, "List name is required", http.StatusBadRequest)
		return
	}

	list, err := database.CreateList(h.db, userID, req.Name)
	if err != nil {
		respondListError(w, err)
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"message": "List created successfully",
		"list":    list,
	}, http.StatusCreated)
}

func (h *ListHandler) GetMyLists(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		utils.RespondError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	lists, err := database.GetListsByOwner(h.db, userID)
	if err != nil {
		respondListError(w, err)
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"lists": lists,
	}, http.StatusOK)
}

func (h *ListHandler) GetSharedWithMe(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		utils.RespondError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	lists, err := database.GetListsSharedWith(h.db, userID)
	if err != nil {
		respondListError(w, err)
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"lists": lists,
	}, http.StatusOK)
}

func (h *ListHandler) GetList(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		utils.RespondError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	listID, err := utils.GetPathParamInt(r, "id")
	if err != nil {
		utils.RespondError(w, "Invalid list ID", http.StatusBadRequest)
		return
	}

	list, err := database.GetListForViewer(h.db, listID, userID)
	if err != nil {
		respondListError(w, err)
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"list": list,
	}, http.StatusOK)
}

func (h *ListHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		utils.RespondError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	listID, err := utils.GetPathParamInt(r, "id")
	if err != nil {
		utils.RespondError(w, "Invalid list ID", http.StatusBadRequest)
		return
	}

	var req types.UpdateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.RespondError(w, "List name is required", http.StatusBadRequest)
		return
	}

	list, err := database.UpdateListName(h.db, listID, userID, req.Name)
	if err != nil {
		respondListError(w, err)
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"message": "List updated successfully",
		"list":    list,
	}, http.StatusOK)
}

func (h *ListHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		utils.RespondError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	listID, err := utils.GetPathParamInt(r, "id")
	if err != nil {
		utils.RespondError(w, "Invalid list ID", http.StatusBadRequest)
		return
	}

	if err := database.DeleteList(h.db, listID, userID); err != nil {
		respondListError(w, err)
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"message": "List deleted successfully",
	}, http.StatusOK)
}

func (h *ListHandler) AddMovieToList(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		utils.RespondError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	listID, err := utils.GetPathParamInt(r, "id")
	if err != nil {
		utils.RespondError(w, "Invalid list ID", http.StatusBadRequest)
		return
	}

	var req types.AddMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.TMDBID == 0 || strings.TrimSpace(req.Title) == "" {
		utils.RespondError(w, "Movie id and title are required", http.StatusBadRequest)
		return
	}

	mediaType := req.MediaType
	if mediaType != "movie" && mediaType != "series" {
		mediaType = "movie"
	}

	list, err := database.AddItem(h.db, listID, userID, types.ListItem{
		TMDBID:    req.TMDBID,
		Title:     strings.TrimSpace(req.Title),
		PosterURL: req.PosterURL,
		Year:      req.Year,
		Genre:     req.Genre,
		MediaType: mediaType,
	})
	if err != nil {
		respondListError(w, err)
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"message": "Movie added to list",
		"list":    list,
	}, http.StatusOK)
}

func (h *ListHandler) RemoveMovieFromList(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		utils.RespondError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	listID, err := utils.GetPathParamInt(r, "id")
	if err != nil {
		utils.RespondError(w, "Invalid list ID", http.StatusBadRequest)
		return
	}
	tmdbID, err := utils.GetPathParamInt(r, "movieId")
	if err != nil {
		utils.RespondError(w, "Invalid movie ID", http.StatusBadRequest)
		return
	}

	list, err := database.RemoveItem(h.db, listID, userID, tmdbID)
	if err != nil {
		respondListError(w, err)
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"message": "Movie removed from list",
		"list":    list,
	}, http.StatusOK)
}

func (h *ListHandler) ShareList(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		utils.RespondError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	listID, err := utils.GetPathParamInt(r, "id")
	if err != nil {
		utils.RespondError(w, "Invalid list ID", http.StatusBadRequest)
		return
	}

	var req types.ShareListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.FriendID == 0 {
		utils.RespondError(w, "Friend id is required", http.StatusBadRequest)
		return
	}

	list, err := database.ShareList(h.db, listID, userID, req.FriendID)
	if err != nil {
		respondListError(w, err)
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"message": "List shared successfully",
		"list":    list,
	}, http.StatusOK)
}
