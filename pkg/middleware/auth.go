package middleware

import (
	"net/http"
	"strings"

	"github.com/lumenera/backend/pkg/auth"
	"github.com/lumenera/backend/pkg/response"
)

// tokenFromRequest reads the shop frontend's `token` header, falling back to
// a standard Authorization bearer token, then to a `token` query parameter
// (browser WebSocket clients cannot set headers).
func tokenFromRequest(r *http.Request) string {
	if t := r.Header.Get("token"); t != "" {
		return t
	}
	if t := strings.Replace(r.Header.Get("Authorization"), "Bearer ", "", 1); t != "" {
		return t
	}
	return r.URL.Query().Get("token")
}

// UserAuth validates the request token and injects the authenticated user id
// into the request context. The frontends key off the success flag, so a
// missing or bad token answers 200 with success=false.
func UserAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			response.Fail(w, "Not Authorized. Login Again.")
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Fail(w, "Not Authorized. Login Again.")
			return
		}

		ctx := auth.WithUserID(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminAuth validates the request token and requires the admin claim.
func AdminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			response.Fail(w, "Not Authorized. Login Again.")
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil || !claims.Admin {
			response.Fail(w, "Not Authorized. Login Again.")
			return
		}

		next.ServeHTTP(w, r)
	})
}
