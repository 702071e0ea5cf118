package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"cinelist/internal/auth"
	"cinelist/internal/database"
)

// newTestMux wires the API routes the way cmd/server does, over a fresh
// in-memory database.
func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(db))

	issuer := auth.NewIssuer("test-secret")
	requireAuth := auth.RequireAuth(issuer)

	authHandler := NewAuthHandler(db, issuer)
	listHandler := NewListHandler(db)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/me", requireAuth(http.HandlerFunc(authHandler.GetMe)).ServeHTTP)
	mux.HandleFunc("GET /api/auth/friends", requireAuth(http.HandlerFunc(authHandler.GetFriends)).ServeHTTP)
	mux.HandleFunc("POST /api/auth/friends/add", requireAuth(http.HandlerFunc(authHandler.AddFriend)).ServeHTTP)

	mux.HandleFunc("POST /api/lists", requireAuth(http.HandlerFunc(listHandler.CreateList)).ServeHTTP)
	mux.HandleFunc("GET /api/lists", requireAuth(http.HandlerFunc(listHandler.GetMyLists)).ServeHTTP)
	mux.HandleFunc("GET /api/lists/shared/with-me", requireAuth(http.HandlerFunc(listHandler.GetSharedWithMe)).ServeHTTP)
	mux.HandleFunc("GET /api/lists/{id}", requireAuth(http.HandlerFunc(listHandler.GetList)).ServeHTTP)
	mux.HandleFunc("PUT /api/lists/{id}", requireAuth(http.HandlerFunc(listHandler.UpdateList)).ServeHTTP)
	mux.HandleFunc("DELETE /api/lists/{id}", requireAuth(http.HandlerFunc(listHandler.DeleteList)).ServeHTTP)
	mux.HandleFunc("POST /api/lists/{id}/movies", requireAuth(http.HandlerFunc(listHandler.AddMovieToList)).ServeHTTP)
	mux.HandleFunc("DELETE /api/lists/{id}/movies/{movieId}", requireAuth(http.HandlerFunc(listHandler.RemoveMovieFromList)).ServeHTTP)
	mux.HandleFunc("POST /api/lists/{id}/share", requireAuth(http.HandlerFunc(listHandler.ShareList)).ServeHTTP)

	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func registerUser(t *testing.T, mux *http.ServeMux, name, email string) string {
	t.Helper()
	rec := doJSON(t, mux, "POST", "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "hunter2",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	token, ok := body["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterValidation(t *testing.T) {
	mux := newTestMux(t)

	rec := doJSON(t, mux, "POST", "/api/auth/register", "", map[string]string{
		"name": "Alice", "email": "alice@example.com",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterReturnsTokenAndPublicUser(t *testing.T) {
	mux := newTestMux(t)

	rec := doJSON(t, mux, "POST", "/api/auth/register", "", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "hunter2",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	raw := rec.Body.String()
	require.NotContains(t, raw, "password")
	require.NotContains(t, raw, "$2a$") // no bcrypt hash leaks

	body := decodeBody(t, rec)
	user := body["user"].(map[string]interface{})
	require.Equal(t, "Alice", user["name"])
	require.Equal(t, "alice@example.com", user["email"])
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	mux := newTestMux(t)
	registerUser(t, mux, "Alice", "alice@example.com")

	rec := doJSON(t, mux, "POST", "/api/auth/register", "", map[string]string{
		"name": "Impostor", "email": "alice@example.com", "password": "hunter2",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	mux := newTestMux(t)
	registerUser(t, mux, "Alice", "alice@example.com")

	wrongPassword := doJSON(t, mux, "POST", "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	unknownEmail := doJSON(t, mux, "POST", "/api/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "wrong",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	require.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLoginReturnsFriends(t *testing.T) {
	mux := newTestMux(t)
	aliceToken := registerUser(t, mux, "Alice", "alice@example.com")
	registerUser(t, mux, "Bob", "bob@example.com")

	rec := doJSON(t, mux, "POST", "/api/auth/friends/add", aliceToken, map[string]string{
		"email": "bob@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, "POST", "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	user := body["user"].(map[string]interface{})
	friends := user["friends"].([]interface{})
	require.Len(t, friends, 1)
	require.Equal(t, "Bob", friends[0].(map[string]interface{})["name"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	mux := newTestMux(t)

	for _, tc := range []struct{ method, path string }{
		{"GET", "/api/auth/me"},
		{"GET", "/api/auth/friends"},
		{"GET", "/api/lists"},
		{"POST", "/api/lists"},
	} {
		rec := doJSON(t, mux, tc.method, tc.path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}

	// A garbage token is rejected too
	rec := doJSON(t, mux, "GET", "/api/auth/me", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddFriendTwiceConflicts(t *testing.T) {
	mux := newTestMux(t)
	aliceToken := registerUser(t, mux, "Alice", "alice@example.com")
	registerUser(t, mux, "Bob", "bob@example.com")

	rec := doJSON(t, mux, "POST", "/api/auth/friends/add", aliceToken, map[string]string{"email": "bob@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, "POST", "/api/auth/friends/add", aliceToken, map[string]string{"email": "bob@example.com"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, mux, "GET", "/api/auth/friends", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	friends := decodeBody(t, rec)["friends"].([]interface{})
	require.Len(t, friends, 1)
}

func TestAddFriendEdgeCasesOverHTTP(t *testing.T) {
	mux := newTestMux(t)
	aliceToken := registerUser(t, mux, "Alice", "alice@example.com")

	rec := doJSON(t, mux, "POST", "/api/auth/friends/add", aliceToken, map[string]string{"email": "ghost@example.com"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, mux, "POST", "/api/auth/friends/add", aliceToken, map[string]string{"email": "alice@example.com"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
