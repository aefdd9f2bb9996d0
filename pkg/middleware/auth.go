// Package middleware provides HTTP middleware shared across routes.
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/finledger/groupledger/pkg/response"
)

type contextKey string

const userIDKey contextKey = "user_id"

// GetUserID extracts the authenticated user ID from the request context.
func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// WithUserID returns a context carrying the given user ID. Exposed for
// handler tests.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// Auth validates a Bearer JWT signed with the given secret and stores
// the subject user ID in the request context. When allowDebugHeader is
// set, an X-Debug-User-ID header bypasses token validation; this is for
// local development only and must stay off in production.
func Auth(secret string, allowDebugHeader bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowDebugHeader {
				if raw := r.Header.Get("X-Debug-User-ID"); raw != "" {
					id, err := strconv.ParseInt(raw, 10, 64)
					if err != nil {
						response.Unauthorized(w, "Invalid debug user ID")
						return
					}
					next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
					return
				}
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				response.Unauthorized(w, "Missing bearer token")
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				response.Unauthorized(w, "Invalid token")
				return
			}

			sub, err := token.Claims.GetSubject()
			if err != nil {
				response.Unauthorized(w, "Invalid token subject")
				return
			}
			id, err := strconv.ParseInt(sub, 10, 64)
			if err != nil {
				response.Unauthorized(w, "Invalid token subject")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
		})
	}
}
