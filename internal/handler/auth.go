package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/efreitasn/orderdesk/internal/domain"
	"github.com/efreitasn/orderdesk/internal/service"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	tokenKey
)

// requireAuth resolves the bearer token in the Authorization header and
// stores the user id in the request context. Requests without a valid
// token get 401.
func requireAuth(userSvc *service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "A bearer token is required")
				return
			}

			userID, err := userSvc.Authenticate(r.Context(), token)
			if errors.Is(err, domain.ErrInvalidToken) {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}
			if err != nil {
				WriteError(w, http.StatusServiceUnavailable, "session_unavailable", "Session store is temporarily unavailable")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// userIDFrom returns the authenticated user id set by requireAuth.
func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func tokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}
