package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"cinelist/internal/utils"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserID extracts the authenticated user's id from the request context.
func UserID(ctx context.Context) (int, error) {
	id, ok := ctx.Value(userIDKey).(int)
	if !ok {
		return 0, fmt.Errorf("no user id found in context")
	}
	return id, nil
}

// RequireAuth wraps a handler and rejects requests without a valid bearer
// token. On success the decoded user id is attached to the request context.
func RequireAuth(issuer *Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.RespondError(w, "Not authorized to access this route", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				utils.RespondError(w, "Not authorized to access this route", http.StatusUnauthorized)
				return
			}

			userID, err := issuer.VerifyToken(parts[1])
			if err != nil {
				utils.RespondError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
