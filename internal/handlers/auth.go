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

type AuthHandler struct {
	db     *sql.DB
	issuer *auth.Issuer
}

func NewAuthHandler(db *sql.DB, issuer *auth.Issuer) *AuthHandler {
	return &AuthHandler{db: db, issuer: issuer}
}

func publicView(user *types.User, friends []types.Friend) types.PublicUser {
	if friends == nil {
		friends = []types.Friend{}
	}
	return types.PublicUser{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Friends: friends,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		utils.RespondError(w, "Please provide all required fields", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		utils.RespondError(w, "Server error", http.StatusInternalServerError)
		return
	}

	user, err := database.CreateUser(h.db, strings.TrimSpace(req.Name), req.Email, hash)
	if errors.Is(err, database.ErrConflict) {
		utils.RespondError(w, "User already exists", http.StatusConflict)
		return
	}
	if err != nil {
		log.Printf("Failed to create user: %v", err)
		utils.RespondError(w, "Server error", http.StatusInternalServerError)
		return
	}

	token, err := h.issuer.IssueToken(user.ID)
	if err != nil {
		log.Printf("Failed to issue token: %v", err)
		utils.RespondError(w, "Server error", http.StatusInternalServerError)
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"message": "User registered successfully",
		"token":   token,
		"user":    publicView(user, nil),
	}, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		utils.RespondError(w, "Please provide email and password", http.StatusBadRequest)
		return
	}

	user, err := database.GetUserByEmail(h.db, req.Email)
	if errors.Is(err, database.ErrNotFound) {
		// Same cost and same message as the wrong-password branch, so the
		// response does not reveal whether the email is registered.
		auth.BurnPasswordCheck(req.Password)
		utils.RespondError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		log.Printf("Failed to look up user: %v", err)
		utils.RespondError(w, "Server error", http.StatusInternalServerError)
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		utils.RespondError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.issuer.IssueToken(user.ID)
	if err != nil {
		log.Printf("Failed to issue token: %v", err)
		utils.RespondError(w, "Server error", http.StatusInternalServerError)
		return
	}

	friends, err := database.GetFriends(h.db, user.ID)
	if err != nil {
		log.Printf("Failed to load friends: %v", err)
		utils.RespondError(w, "Server error", http.StatusInternalServerError)
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"user":    publicView(user, friends),
	}, http.StatusOK)
}

func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		utils.RespondError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	user, err := database.GetUserByID(h.db, userID)
	if errors.Is(err, database.ErrNotFound) {
		utils.RespondError(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Failed to load user: %v", err)
		utils.RespondError(w, "Server error", http.StatusInternalServerError)
		return
	}

	friends, err := database.GetFriends(h.db, userID)
	if err != nil {
		log.Printf("Failed to load friends: %v", err)
		utils.RespondError(w, "Server error", http.StatusInternalServerError)
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"user": publicView(user, friends),
	}, http.StatusOK)
}

func (h *AuthHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		utils.RespondError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	friends, err := database.GetFriends(h.db, userID)
	if err != nil {
		log.Printf("Failed to load friends: %v", err)
		utils.RespondError(w, "Server error", http.StatusInternalServerError)
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"friends": friends,
	}, http.StatusOK)
}

func (h *AuthHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		utils.RespondError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	var req types.AddFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		utils.RespondError(w, "Friend email is required", http.StatusBadRequest)
		return
	}

	friends, err := database.AddFriendByEmail(h.db, userID, req.Email)
	switch {
	case errors.Is(err, database.ErrNotFound):
		utils.RespondError(w, "User with that email was not found", http.StatusNotFound)
		return
	case errors.Is(err, database.ErrSelfFriend):
		utils.RespondError(w, "You cannot add yourself", http.StatusBadRequest)
		return
	case errors.Is(err, database.ErrConflict):
		utils.RespondError(w, "This user is already your friend", http.StatusConflict)
		return
	case err != nil:
		log.Printf("Failed to add friend: %v", err)
		utils.RespondError(w, "Server error", http.StatusInternalServerError)
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"message": "Friend added successfully",
		"friends": friends,
	}, http.StatusOK)
}
