package middleware

import (
	"context"
	"net/http"
	"strings"

	"artisan/internal/model"
)

type contextKey string

const ctxUser contextKey = "user"

// Auth requires Authorization: Bearer <session token> and injects the
// resolved user into the request context.
func Auth(validateToken func(ctx context.Context, token string) (*model.User, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, `{"error":{"code":"E_UNAUTHORIZED","message":"missing token"}}`, http.StatusUnauthorized)
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")
			user, err := validateToken(r.Context(), token)
			if err != nil {
				http.Error(w, `{"error":{"code":"E_UNAUTHORIZED","message":"invalid or expired token"}}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromCtx extracts the authenticated user from context.
func UserFromCtx(ctx context.Context) *model.User {
	u, _ := ctx.Value(ctxUser).(*model.User)
	return u
}
