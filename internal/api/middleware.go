package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"dealerdash/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// requireLogin resolves the bearer token to a user and puts the user on
// the request context. Every store-scoped query downstream reads the
// store id from this user, never from a global.
func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || token == r.Header.Get("Authorization") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
			return
		}

		user, err := s.Store.GetUserByToken(token)
		if err != nil || !user.Active || time.Now().After(user.TokenExpiry) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getUserFromContext(ctx context.Context) *models.User {
	if u, ok := ctx.Value(userKey).(*models.User); ok {
		return u
	}
	return nil
}
